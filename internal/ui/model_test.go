package ui

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/scribe-term/scribe/internal/catalog"
	"github.com/scribe-term/scribe/internal/complete"
	"github.com/scribe-term/scribe/internal/exec"
	"github.com/scribe-term/scribe/internal/kernel"
)

func TestOffsetAt(t *testing.T) {
	doc := "abc\ndéf\nghi"
	tests := []struct {
		name string
		row  int
		col  int
		want int
	}{
		{"start", 0, 0, 0},
		{"first line middle", 0, 2, 2},
		{"second line start", 1, 0, 4},
		{"after multibyte rune", 1, 2, 7}, // d + é (2 bytes)
		{"col clamped to line end", 0, 99, 3},
		{"row past end", 9, 0, len(doc)},
		{"last line", 2, 3, len(doc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := offsetAt(doc, tt.row, tt.col); got != tt.want {
				t.Errorf("offsetAt(%d, %d) = %d, want %d", tt.row, tt.col, got, tt.want)
			}
		})
	}
}

func TestCompletionStateNavigation(t *testing.T) {
	c := completionState{
		open: true,
		candidates: []complete.Candidate{
			{Text: "head"}, {Text: "hist"}, {Text: "hasnans"},
		},
	}

	c.next()
	c.next()
	if got, _ := c.current(); got.Text != "hasnans" {
		t.Errorf("after two next: %q", got.Text)
	}
	c.next()
	if got, _ := c.current(); got.Text != "head" {
		t.Errorf("wraparound: %q", got.Text)
	}
	c.prev()
	if got, _ := c.current(); got.Text != "hasnans" {
		t.Errorf("prev wraps: %q", got.Text)
	}

	c.close()
	if _, ok := c.current(); ok {
		t.Error("closed dropdown must have no current candidate")
	}
}

func TestAcceptCompletionSplicesRemainder(t *testing.T) {
	m := NewModel(Options{Doc: "df.he"})
	m.editor.SetWidth(80)
	m.editor.SetHeight(10)

	m.completion = completionState{
		open:       true,
		candidates: []complete.Candidate{{Text: "head"}},
		prefix:     "he",
	}
	m.acceptCompletion()

	if got := m.editor.Value(); got != "df.head" {
		t.Errorf("buffer = %q, want %q", got, "df.head")
	}
	if m.completion.open {
		t.Error("dropdown must close after accept")
	}
}

func TestTriggerCompletionFromSnapshot(t *testing.T) {
	m := NewModel(Options{Doc: "df.he"})
	m.editor.SetWidth(80)
	m.editor.SetHeight(10)

	snap := catalog.NewSnapshot()
	snap.Symbols["df"] = catalog.Symbol{Name: "df", TypeTag: "DataFrame"}
	snap.TypeMethods["DataFrame"] = []string{"head", "tail", "merge"}
	m.store.SetNamespace(snap)

	m.triggerCompletion()
	if !m.completion.open {
		t.Fatal("expected dropdown to open")
	}
	if got, _ := m.completion.current(); got.Text != "head" {
		t.Errorf("first candidate = %q, want head", got.Text)
	}
	if m.completion.prefix != "he" {
		t.Errorf("prefix = %q", m.completion.prefix)
	}
}

func TestTriggerCompletionNoCandidates(t *testing.T) {
	m := NewModel(Options{Doc: "zz.qq"})
	m.editor.SetWidth(80)
	m.editor.SetHeight(10)

	m.triggerCompletion()
	if m.completion.open {
		t.Error("unknown receiver must not open the dropdown")
	}
}

func TestRunQueueAbandonedOnEmpty(t *testing.T) {
	m := NewModel(Options{Doc: "a = 1"})
	if cmd := m.runNextQueued(); cmd != nil {
		t.Error("empty queue must yield no command")
	}
}

// stubRunner answers executes immediately and holds the refresh introspect
// open until released, mimicking a session busy with the catalog refresh.
type stubRunner struct {
	mu         sync.Mutex
	execs      []string
	introspect chan struct{}
}

func (r *stubRunner) State() kernel.State { return kernel.StateReady }

func (r *stubRunner) Execute(source string) (*kernel.Future, error) {
	r.mu.Lock()
	r.execs = append(r.execs, source)
	r.mu.Unlock()
	return kernel.CompletedFuture(&kernel.Result{Status: "ok"}, nil), nil
}

func (r *stubRunner) Introspect(string) (*kernel.Future, error) {
	if r.introspect != nil {
		<-r.introspect
	}
	return kernel.CompletedFuture(&kernel.Result{Status: "ok"}, nil), nil
}

func (r *stubRunner) execCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.execs)
}

func TestRunQueueWaitsForRefresh(t *testing.T) {
	doc := "a = 1\n# %% second\nb = 2\n"
	m := NewModel(Options{Doc: doc})
	runner := &stubRunner{introspect: make(chan struct{})}
	m.coord = exec.NewCoordinator(runner, m.store, exec.Options{Logger: m.logger})

	cells := m.cells()
	m.runQueue = cells[1:]
	fut, err := m.coord.ExecuteCell(doc, cells[0])
	if err != nil {
		t.Fatalf("ExecuteCell: %v", err)
	}
	res, err := fut.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	// The first cell's completion arrives while the refresh is still in
	// flight; the queued cell must not be submitted yet.
	model, _ := m.Update(execDoneMsg{cell: cells[0].Index, res: res})
	m = model.(*Model)
	if got := runner.execCount(); got != 1 {
		t.Fatalf("executes while refresh in flight = %d, want 1", got)
	}
	if len(m.runQueue) != 1 {
		t.Fatal("queue popped before refresh settled")
	}

	close(runner.introspect)
	msg := m.awaitRefresh()()
	if _, ok := msg.(refreshSettledMsg); !ok {
		t.Fatalf("awaitRefresh message = %#v", msg)
	}
	model, _ = m.Update(msg)
	m = model.(*Model)
	if got := runner.execCount(); got != 2 {
		t.Fatalf("executes after refresh settled = %d, want 2", got)
	}
	runner.mu.Lock()
	last := runner.execs[1]
	runner.mu.Unlock()
	if !strings.Contains(last, "b = 2") {
		t.Errorf("second submission = %q", last)
	}
	if len(m.runQueue) != 0 {
		t.Errorf("queue length = %d, want 0", len(m.runQueue))
	}
}
