// Package exec drives cell execution against a kernel session and keeps
// per-cell records the front end renders. It owns the refresh of the
// namespace and schema catalog after successful runs.
package exec

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scribe-term/scribe/internal/catalog"
	"github.com/scribe-term/scribe/internal/kernel"
	"github.com/scribe-term/scribe/internal/notebook"
)

// Status is the lifecycle state of one cell's most recent run.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrorInfo describes why a cell failed.
type ErrorInfo struct {
	Kind      string
	Message   string
	Traceback []string
}

// Record is the outcome of one cell. Records are reported by value; the
// coordinator keeps the mutable copies.
type Record struct {
	Cell       int
	Label      string
	Count      int
	Status     Status
	Outputs    []kernel.OutputChunk
	ResultRepr string
	Err        *ErrorInfo
	Started    time.Time
	Finished   time.Time
}

// Runner is the slice of the kernel session the coordinator needs.
type Runner interface {
	State() kernel.State
	Execute(source string) (*kernel.Future, error)
	Introspect(query string) (*kernel.Future, error)
}

// defaultRefreshQuery is the introspection request issued after each
// successful execution. The kernel side treats the query line as reserved.
const defaultRefreshQuery = "metadata"

// Options configures a Coordinator. Zero values pick sane defaults.
type Options struct {
	Logger       *slog.Logger
	RefreshQuery string
}

// Coordinator serializes cell execution on one session and tracks records.
// It never queues: while the session is busy, Execute calls are rejected by
// the session and the caller retries once Ready.
type Coordinator struct {
	runner       Runner
	store        *catalog.Store
	log          *slog.Logger
	refreshQuery string
	runID        string

	mu      sync.Mutex
	records map[int]*Record

	wg sync.WaitGroup
}

// NewCoordinator wires a coordinator to a session and a catalog store.
func NewCoordinator(r Runner, store *catalog.Store, opts Options) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	query := opts.RefreshQuery
	if query == "" {
		query = defaultRefreshQuery
	}
	return &Coordinator{
		runner:       r,
		store:        store,
		log:          log,
		refreshQuery: query,
		runID:        uuid.NewString(),
		records:      make(map[int]*Record),
	}
}

// RunID identifies this coordinator's run for persistence and logs.
func (c *Coordinator) RunID() string { return c.runID }

// Reset seeds a Pending record per cell, dropping any prior outputs. The
// session is untouched: interpreter state survives a reset.
func (c *Coordinator) Reset(cells []notebook.Cell) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[int]*Record, len(cells))
	for _, cell := range cells {
		c.records[cell.Index] = &Record{Cell: cell.Index, Label: cell.Label}
	}
}

// Record returns a copy of the record for the cell, if one exists.
func (c *Coordinator) Record(index int) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[index]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Records returns copies of all records ordered by cell index.
func (c *Coordinator) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return out
}

// ExecuteCell submits one cell to the session. The record moves to Running
// immediately and is finalized in the background when the result arrives;
// the returned future lets the caller observe the same result. Submitting
// while the session is busy or down fails with the session's error and
// leaves the record as it was.
func (c *Coordinator) ExecuteCell(doc string, cell notebook.Cell) (*kernel.Future, error) {
	fut, err := c.runner.Execute(cell.Source(doc))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.records[cell.Index] = &Record{
		Cell:    cell.Index,
		Label:   cell.Label,
		Status:  StatusRunning,
		Started: time.Now(),
	}
	c.mu.Unlock()

	c.wg.Add(1)
	go c.finalize(cell.Index, fut)
	return fut, nil
}

func (c *Coordinator) finalize(index int, fut *kernel.Future) {
	defer c.wg.Done()
	res, err := fut.Wait(context.Background())

	c.mu.Lock()
	rec, ok := c.records[index]
	if !ok {
		// Reset raced the run; nothing to record.
		c.mu.Unlock()
		return
	}
	rec.Finished = time.Now()
	switch {
	case err != nil:
		rec.Status = StatusFailed
		rec.Err = &ErrorInfo{Kind: "KernelError", Message: err.Error()}
	case res.OK():
		rec.Status = StatusSucceeded
		rec.Count = res.Count
		rec.Outputs = res.Outputs
		rec.ResultRepr = res.ResultRepr
	default:
		rec.Status = StatusFailed
		rec.Count = res.Count
		rec.Outputs = res.Outputs
		rec.Err = &ErrorInfo{Kind: res.ErrorKind, Message: res.Message, Traceback: res.Traceback}
	}
	c.mu.Unlock()

	if err == nil && res.OK() {
		if rerr := c.Refresh(); rerr != nil {
			// Stale snapshots stay in place; completion keeps working.
			c.log.Warn("metadata refresh failed", "run", c.runID, "error", rerr)
		}
	}
}

// Refresh introspects the session and swaps the new namespace snapshot and
// schema catalog into the store. On failure the previous snapshots are kept.
func (c *Coordinator) Refresh() error {
	fut, err := c.runner.Introspect(c.refreshQuery)
	if err != nil {
		return &catalog.RefreshError{Query: c.refreshQuery, Err: err}
	}
	res, err := fut.Wait(context.Background())
	if err != nil {
		return &catalog.RefreshError{Query: c.refreshQuery, Err: err}
	}
	if res.Namespace != nil {
		c.store.SetNamespace(res.Namespace)
	}
	if res.Schema != nil {
		c.store.SetSchema(res.Schema)
	}
	return nil
}

// Wait blocks until all background finalizers have settled.
func (c *Coordinator) Wait() { c.wg.Wait() }

// Summary is the outcome of a headless run. FailedCell is the index of the
// first failing cell, or -1 when every executed cell succeeded.
type Summary struct {
	Records    []Record
	FailedCell int
}

// OK reports whether the run completed without failures.
func (s Summary) OK() bool { return s.FailedCell < 0 }

// RunAll executes every cell in document order, stopping at the first
// failure. Cells after a failure keep their Pending records. The error
// return covers infrastructure faults only; user errors land in the
// summary.
func (c *Coordinator) RunAll(ctx context.Context, doc string, cells []notebook.Cell) (Summary, error) {
	c.Reset(cells)
	failed := -1
	for _, cell := range cells {
		fut, err := c.ExecuteCell(doc, cell)
		if err != nil {
			return c.summary(failed), err
		}
		res, err := fut.Wait(ctx)
		// Let the finalizer (and its refresh) settle before the next cell,
		// otherwise the session is still busy introspecting.
		c.Wait()
		if err != nil {
			return c.summary(cell.Index), err
		}
		if !res.OK() {
			failed = cell.Index
			break
		}
	}
	return c.summary(failed), nil
}

func (c *Coordinator) summary(failed int) Summary {
	return Summary{Records: c.Records(), FailedCell: failed}
}
