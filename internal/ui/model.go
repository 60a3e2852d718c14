package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/scribe-term/scribe/internal/catalog"
	"github.com/scribe-term/scribe/internal/complete"
	"github.com/scribe-term/scribe/internal/exec"
	"github.com/scribe-term/scribe/internal/kernel"
	"github.com/scribe-term/scribe/internal/notebook"
)

// ViewMode determines which component owns the keyboard.
type ViewMode int

const (
	ViewEditor ViewMode = iota
	ViewPicker
)

// interpreterItem adapts a discovered interpreter to the picker list.
type interpreterItem struct{ in kernel.Interpreter }

func (i interpreterItem) Title() string       { return i.in.Name }
func (i interpreterItem) Description() string { return i.in.Source + "  " + i.in.Path }
func (i interpreterItem) FilterValue() string { return i.in.Name + " " + i.in.Path }

// Model is the bubbletea model for the notebook editor.
type Model struct {
	opts   Options
	logger *slog.Logger

	editor textarea.Model
	output viewport.Model
	picker list.Model
	styles Styles

	viewMode ViewMode

	store    *catalog.Store
	provider *complete.Provider
	session  *kernel.Session
	coord    *exec.Coordinator

	results map[int]*kernel.Result
	running map[int]bool
	// runQueue holds cells awaiting execution during an interactive run-all.
	runQueue []notebook.Cell

	completion completionState

	watcher  *fsnotify.Watcher
	lastSave time.Time

	dirty  bool
	status string
	width  int
	height int
	ready  bool
}

// NewModel builds the editor model; the kernel starts from Init.
func NewModel(opts Options) *Model {
	if opts.Delimiter == "" {
		opts.Delimiter = notebook.DefaultDelimiter
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ed := textarea.New()
	ed.SetValue(opts.Doc)
	ed.Placeholder = "write cells, split with " + opts.Delimiter
	ed.CharLimit = 0
	ed.Focus()

	items := make([]list.Item, 0, len(opts.Candidates))
	for _, in := range opts.Candidates {
		items = append(items, interpreterItem{in})
	}
	picker := list.New(items, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "Choose an interpreter"
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(true)

	store := catalog.NewStore()

	m := &Model{
		opts:     opts,
		logger:   logger,
		editor:   ed,
		output:   viewport.New(0, 0),
		picker:   picker,
		styles:   DefaultStyles(),
		store:    store,
		provider: complete.NewProvider(store, opts.SQLPatterns...),
		results:  map[int]*kernel.Result{},
		running:  map[int]bool{},
		status:   "no kernel",
	}
	if opts.Interpreter == "" && len(opts.Candidates) > 0 {
		m.viewMode = ViewPicker
	}
	if opts.Path != "" {
		if w, err := fsnotify.NewWatcher(); err == nil {
			if err := w.Add(opts.Path); err == nil {
				m.watcher = w
			} else {
				w.Close()
			}
		}
	}
	return m
}

// Init starts the resolved kernel and the file watcher.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.opts.Interpreter != "" {
		cmds = append(cmds, m.startKernel(m.opts.Interpreter))
	}
	if m.watcher != nil {
		cmds = append(cmds, m.waitForFileEvent())
	}
	cmds = append(cmds, textarea.Blink)
	return tea.Batch(cmds...)
}

// shutdown releases the kernel and watcher. Called after the program exits.
func (m *Model) shutdown() {
	if m.session != nil {
		if err := m.session.Close(); err != nil {
			m.logger.Warn("kernel close failed", "error", err)
		}
	}
	if m.watcher != nil {
		m.watcher.Close()
	}
}

// startKernel creates a fresh session for the interpreter and launches it.
// Any previous session is closed first; interpreter state does not carry
// over between kernels.
func (m *Model) startKernel(interpreter string) tea.Cmd {
	if m.session != nil {
		old := m.session
		go func() {
			if err := old.Close(); err != nil {
				m.logger.Warn("kernel close failed", "error", err)
			}
		}()
	}
	m.session = kernel.NewSession(interpreter, kernel.Options{
		Logger:       m.logger,
		StartTimeout: m.opts.StartTimeout,
	})
	m.coord = exec.NewCoordinator(m.session, m.store, exec.Options{Logger: m.logger})
	m.store.SetNamespace(catalog.NewSnapshot())
	m.store.SetSchema(catalog.NewSchema())
	m.results = map[int]*kernel.Result{}
	m.running = map[int]bool{}
	m.status = "starting " + interpreter

	session := m.session
	return func() tea.Msg {
		err := session.Start(context.Background())
		return kernelStartedMsg{interpreter: interpreter, err: err}
	}
}

func (m *Model) waitForFileEvent() tea.Cmd {
	w := m.watcher
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return watchErrMsg{err: fmt.Errorf("watcher closed")}
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					return fileChangedMsg{}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return watchErrMsg{err: fmt.Errorf("watcher closed")}
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

// waitExec converts a future resolution into a message.
func waitExec(cell int, fut *kernel.Future) tea.Cmd {
	return func() tea.Msg {
		res, err := fut.Wait(context.Background())
		return execDoneMsg{cell: cell, res: res, err: err}
	}
}

// awaitRefresh blocks until the coordinator's finalizer, including its
// catalog refresh, has settled. A run-all submits the next cell only after
// this message arrives; submitting earlier races the refresh introspect for
// the Busy slot.
func (m *Model) awaitRefresh() tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		coord.Wait()
		return refreshSettledMsg{}
	}
}

func repaintSoon() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return repaintMsg{} })
}

// cells segments the current buffer.
func (m *Model) cells() []notebook.Cell {
	return notebook.Segment(m.editor.Value(), m.opts.Delimiter)
}

// cursorOffset returns the byte offset of the cursor in the buffer.
func (m *Model) cursorOffset() int {
	value := m.editor.Value()
	row := m.editor.Line()
	li := m.editor.LineInfo()
	col := li.StartColumn + li.CharOffset
	return offsetAt(value, row, col)
}

// offsetAt converts a (row, rune column) cursor position to a byte offset.
func offsetAt(value string, row, col int) int {
	lines := strings.Split(value, "\n")
	if row >= len(lines) {
		return len(value)
	}
	offset := 0
	for i := 0; i < row; i++ {
		offset += len(lines[i]) + 1
	}
	runes := []rune(lines[row])
	if col > len(runes) {
		col = len(runes)
	}
	return offset + len(string(runes[:col]))
}

// currentCell returns the cell under the cursor.
func (m *Model) currentCell() notebook.Cell {
	return notebook.CellAt(m.cells(), m.cursorOffset())
}

// runCell submits one cell; busy and not-ready states surface in the status
// line rather than queueing.
func (m *Model) runCell(cell notebook.Cell) tea.Cmd {
	if m.coord == nil {
		m.status = "no kernel"
		return nil
	}
	doc := m.editor.Value()
	fut, err := m.coord.ExecuteCell(doc, cell)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.running[cell.Index] = true
	delete(m.results, cell.Index)
	m.status = fmt.Sprintf("running cell %d", cell.Index)
	return waitExec(cell.Index, fut)
}

// runNextQueued pops the run-all queue.
func (m *Model) runNextQueued() tea.Cmd {
	if len(m.runQueue) == 0 {
		return nil
	}
	next := m.runQueue[0]
	m.runQueue = m.runQueue[1:]
	return m.runCell(next)
}

func (m *Model) save() {
	if m.opts.Path == "" {
		m.status = "scratch buffer has no file; start scribe with a path to save"
		return
	}
	if err := os.WriteFile(m.opts.Path, []byte(m.editor.Value()), 0o644); err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.lastSave = time.Now()
	m.dirty = false
	m.status = "saved " + m.opts.Path
}

// reload replaces the buffer after an external change. Unsaved local edits
// win: reload is skipped while the buffer is dirty.
func (m *Model) reload() {
	if m.dirty {
		m.status = "file changed on disk; buffer has unsaved edits"
		return
	}
	data, err := os.ReadFile(m.opts.Path)
	if err != nil {
		m.status = "reload failed: " + err.Error()
		return
	}
	m.editor.SetValue(string(data))
	m.status = "reloaded from disk"
}

func (m *Model) kernelStateLabel() string {
	if m.session == nil {
		return "no kernel"
	}
	return m.session.State().String()
}
