// Package kernel owns the interpreter subprocess and the framed
// request/response protocol used to execute cells and introspect state.
package kernel

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/scribe-term/scribe/internal/catalog"
)

// DefaultStartTimeout bounds the launch-plus-handshake phase.
const DefaultStartTimeout = 10 * time.Second

// OutputChunk is one tagged piece of captured output.
type OutputChunk struct {
	Stream string // "stdout" or "stderr"
	Data   string
}

// Result is the decoded terminal outcome of one request, together with any
// partial output and metadata frames that preceded it.
type Result struct {
	Status     string // "ok" or "error"
	ResultRepr string
	ErrorKind  string
	Message    string
	Traceback  []string
	Outputs    []OutputChunk
	Namespace  *catalog.Snapshot // nil unless metadata frames arrived
	Schema     *catalog.Schema
	Count      int // execution counter; 0 for introspection
}

// OK reports whether the request completed without a user error.
func (r *Result) OK() bool { return r.Status == "ok" }

// Future is the handle returned to the front end, which polls it without
// blocking input handling.
type Future struct {
	done chan struct{}
	res  *Result
	err  error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

// Done is closed when the result is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Poll returns the result if available without blocking.
func (f *Future) Poll() (*Result, error, bool) {
	select {
	case <-f.done:
		return f.res, f.err, true
	default:
		return nil, nil, false
	}
}

// Wait blocks until the result is available or the context ends.
func (f *Future) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) resolve(res *Result, err error) {
	f.res, f.err = res, err
	close(f.done)
}

// CompletedFuture returns an already-resolved future. It exists so callers
// can fake a session in their tests; the session itself never uses it.
func CompletedFuture(res *Result, err error) *Future {
	f := newFuture()
	f.resolve(res, err)
	return f
}

type requestKind int

const (
	requestExecute requestKind = iota
	requestIntrospect
)

type request struct {
	kind   requestKind
	source string
	count  int
	fut    *Future
}

// Options configures a session.
type Options struct {
	Logger       *slog.Logger
	StartTimeout time.Duration
}

// Session owns one interpreter subprocess. All pipe I/O happens on a
// dedicated worker goroutine; Execute, Introspect, and Interrupt are
// message-passed and never block on the pipe. At most one request is in
// flight, enforced by the Busy state rather than queuing.
type Session struct {
	id          string
	interpreter string
	logger      *slog.Logger
	timeout     time.Duration

	mu          sync.Mutex
	state       State
	interrupted bool
	execCount   int

	cmd      *exec.Cmd
	stdin    io.WriteCloser
	reader   *bufio.Reader
	requests chan *request
	group    *errgroup.Group
}

// NewSession returns an unstarted session for the given interpreter path.
func NewSession(interpreter string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.StartTimeout
	if timeout <= 0 {
		timeout = DefaultStartTimeout
	}
	return &Session{
		id:          uuid.NewString(),
		interpreter: interpreter,
		logger:      logger.With("kernel", interpreter),
		timeout:     timeout,
		state:       StateUnstarted,
		// Capacity 1: the Busy gate guarantees at most one outstanding
		// request, so sends under the mutex never block.
		requests: make(chan *request, 1),
	}
}

// ID returns the session identity.
func (s *Session) ID() string { return s.id }

// Interpreter returns the interpreter path the session was created with.
func (s *Session) Interpreter() string { return s.interpreter }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ExecutionCount returns the monotonic counter of user executions.
func (s *Session) ExecutionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execCount
}

// Start launches the subprocess and performs the handshake. A launch failure
// or handshake timeout moves the session to Errored; it must be restarted
// with a fresh session, never retried in place.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUnstarted {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("start: session is %s", state)
	}
	s.state = StateStarting
	s.mu.Unlock()

	fail := func(err error) error {
		s.mu.Lock()
		s.state = StateErrored
		s.mu.Unlock()
		return &StartError{Interpreter: s.interpreter, Err: err}
	}

	cmd := exec.Command(s.interpreter, "-u", "-c", bootstrapScript)
	cmd.Env = append(os.Environ(), "TERM=dumb")
	// Own process group so interrupt signals reach the interpreter and its
	// children without touching the editor.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fail(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fail(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fail(err)
	}
	if err := cmd.Start(); err != nil {
		return fail(err)
	}

	reader := bufio.NewReader(stdout)
	if err := awaitHandshake(ctx, reader, s.timeout); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fail(err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.stdin = stdin
	s.reader = reader
	s.group = &errgroup.Group{}
	s.state = StateReady
	s.mu.Unlock()

	s.group.Go(func() error { return s.pumpStderr(stderr) })
	s.group.Go(s.serve)

	s.logger.Info("kernel ready", "session", s.id)
	return nil
}

// awaitHandshake waits for the ready marker, bounded by the timeout.
func awaitHandshake(ctx context.Context, r *bufio.Reader, timeout time.Duration) error {
	type lineResult struct {
		line string
		err  error
	}
	ch := make(chan lineResult, 1)
	go func() {
		line, err := r.ReadString('\n')
		ch <- lineResult{line, err}
	}()

	select {
	case lr := <-ch:
		if lr.err != nil {
			return fmt.Errorf("interpreter exited before handshake: %w", lr.err)
		}
		if got := trimLine(lr.line); got != markerReady {
			return fmt.Errorf("unexpected handshake %q", got)
		}
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("handshake timeout after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execute submits one cell's source. Returns ErrBusy while a request is in
// flight and ErrNotReady when the session is not running.
func (s *Session) Execute(source string) (*Future, error) {
	return s.submit(requestExecute, source)
}

// Introspect submits a privileged metadata query. It does not increment the
// user-visible execution counter.
func (s *Session) Introspect(query string) (*Future, error) {
	return s.submit(requestIntrospect, query)
}

func (s *Session) submit(kind requestKind, source string) (*Future, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateBusy:
		return nil, ErrBusy
	case StateReady:
	default:
		return nil, fmt.Errorf("%w: session is %s", ErrNotReady, s.state)
	}

	req := &request{kind: kind, source: source, fut: newFuture()}
	if kind == requestExecute {
		s.execCount++
		req.count = s.execCount
	}
	s.state = StateBusy
	s.requests <- req
	return req.fut, nil
}

// Interrupt signals the interpreter's process group while Busy. The session
// returns to Ready only after the worker drains the acknowledging error
// frame; callers must wait for that transition. Interrupting an idle session
// is a no-op.
func (s *Session) Interrupt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBusy {
		return nil
	}
	s.interrupted = true
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-s.cmd.Process.Pid, syscall.SIGINT)
}

// serve is the worker loop. It owns the pipes: one request at a time, write
// the frames, read until the terminal frame, resolve the future.
func (s *Session) serve() error {
	for req := range s.requests {
		res, err := s.roundTrip(req)

		s.mu.Lock()
		interrupted := s.interrupted
		s.interrupted = false
		if err != nil {
			if s.state != StateTerminated {
				s.state = StateErrored
			}
		} else if s.state == StateBusy {
			s.state = StateReady
		}
		s.mu.Unlock()

		if err == nil && interrupted {
			// Partial results are discarded on interrupt.
			res = &Result{
				Status:    "error",
				ErrorKind: ErrorKindInterrupted,
				Message:   "execution interrupted",
				Count:     res.Count,
			}
		}
		req.fut.resolve(res, err)
		if err != nil {
			s.logger.Error("kernel protocol failure", "session", s.id, "error", err)
			return err
		}
	}
	return nil
}

// roundTrip performs one request/response exchange on the pipe.
func (s *Session) roundTrip(req *request) (*Result, error) {
	switch req.kind {
	case requestIntrospect:
		if _, err := fmt.Fprintf(s.stdin, "%s\n%s\n", markerIntrospect, req.source); err != nil {
			return nil, &ProtocolError{Detail: "writing introspect request", Err: err}
		}
	default:
		if _, err := fmt.Fprintln(s.stdin, markerExecStart); err != nil {
			return nil, &ProtocolError{Detail: "writing request", Err: err}
		}
		if _, err := io.WriteString(s.stdin, req.source); err != nil {
			return nil, &ProtocolError{Detail: "writing source", Err: err}
		}
		if _, err := fmt.Fprintf(s.stdin, "\n%s\n", markerExecEnd); err != nil {
			return nil, &ProtocolError{Detail: "writing request end", Err: err}
		}
	}

	res := &Result{Count: req.count}
	var symbols []symbolItem
	var rels typeRelationships
	var haveMeta bool

	for {
		f, err := readFrame(s.reader)
		if err != nil {
			return nil, err
		}
		switch f.Type {
		case frameStdout, frameStderr:
			var data string
			if err := json.Unmarshal(f.Data, &data); err != nil {
				return nil, &ProtocolError{Detail: "decoding output chunk", Err: err}
			}
			res.Outputs = append(res.Outputs, OutputChunk{Stream: f.Type, Data: data})
		case frameSymbols:
			if err := json.Unmarshal(f.Data, &symbols); err != nil {
				return nil, &ProtocolError{Detail: "decoding namespace", Err: err}
			}
			haveMeta = true
		case frameTypeRels:
			if err := json.Unmarshal(f.Data, &rels); err != nil {
				return nil, &ProtocolError{Detail: "decoding type relationships", Err: err}
			}
			haveMeta = true
		case frameSQLSchema:
			var meta sqlMetadata
			if err := json.Unmarshal(f.Data, &meta); err != nil {
				return nil, &ProtocolError{Detail: "decoding sql metadata", Err: err}
			}
			res.Schema = decodeSchema(meta)
		case frameResult:
			var repr string
			if err := json.Unmarshal(f.Data, &repr); err != nil {
				return nil, &ProtocolError{Detail: "decoding result", Err: err}
			}
			res.Status = "ok"
			res.ResultRepr = repr
		case frameSuccess:
			res.Status = "ok"
		case frameError:
			res.Status = "error"
			res.ErrorKind = f.Ename
			res.Message = f.Evalue
			res.Traceback = f.Traceback
		default:
			return nil, &ProtocolError{Detail: "unknown frame type " + f.Type}
		}
		if f.terminal() {
			break
		}
	}

	if haveMeta {
		res.Namespace = decodeNamespace(symbols, rels)
	}
	return res, nil
}

// pumpStderr drains the interpreter's real stderr. The bootstrap captures
// user stderr into frames, so anything arriving here is interpreter noise.
func (s *Session) pumpStderr(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.logger.Debug("kernel stderr", "line", scanner.Text())
	}
	return nil
}

// Close terminates the session: EOF on stdin, then kill if the process
// lingers. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateTerminated {
		s.mu.Unlock()
		return nil
	}
	started := s.cmd != nil
	s.state = StateTerminated
	close(s.requests)
	s.mu.Unlock()

	if !started {
		return nil
	}

	_ = s.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		_ = s.cmd.Process.Kill()
		<-done
	}
	_ = s.group.Wait()
	s.logger.Info("kernel terminated", "session", s.id)
	return nil
}

func trimLine(line string) string {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
