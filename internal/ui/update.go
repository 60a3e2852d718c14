package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-term/scribe/internal/kernel"
)

// reloadQuiet is how long after a save file events are treated as our own.
const reloadQuiet = 500 * time.Millisecond

// Update is the bubbletea message loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.ready = true
		return m, nil

	case kernelStartedMsg:
		if msg.err != nil {
			m.status = "kernel failed: " + msg.err.Error()
			m.logger.Error("kernel start failed", "interpreter", msg.interpreter, "error", msg.err)
			return m, nil
		}
		m.status = "kernel ready (" + msg.interpreter + ")"
		return m, nil

	case execDoneMsg:
		delete(m.running, msg.cell)
		if msg.err != nil {
			m.status = "kernel error: " + msg.err.Error()
			m.runQueue = nil
			m.refreshOutput()
			return m, repaintSoon()
		}
		m.results[msg.cell] = msg.res
		if msg.res.OK() {
			m.status = fmt.Sprintf("cell %d done [%d]", msg.cell, msg.res.Count)
		} else {
			m.status = fmt.Sprintf("cell %d failed: %s", msg.cell, msg.res.ErrorKind)
			// A failure abandons the rest of a run-all.
			m.runQueue = nil
		}
		m.refreshOutput()
		if len(m.runQueue) > 0 {
			return m, tea.Batch(m.awaitRefresh(), repaintSoon())
		}
		return m, repaintSoon()

	case refreshSettledMsg:
		m.refreshOutput()
		if next := m.runNextQueued(); next != nil {
			return m, tea.Batch(next, repaintSoon())
		}
		return m, nil

	case fileChangedMsg:
		if time.Since(m.lastSave) > reloadQuiet {
			m.reload()
		}
		return m, m.waitForFileEvent()

	case watchErrMsg:
		m.logger.Warn("file watch stopped", "error", msg.err)
		return m, nil

	case repaintMsg:
		m.refreshOutput()
		return m, nil

	case tea.KeyMsg:
		if m.viewMode == ViewPicker {
			return m.updatePicker(msg)
		}
		return m.updateEditor(msg)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		item, ok := m.picker.SelectedItem().(interpreterItem)
		if !ok {
			return m, nil
		}
		m.viewMode = ViewEditor
		if m.opts.OnInterpreterChosen != nil {
			m.opts.OnInterpreterChosen(item.in.Path)
		}
		return m, m.startKernel(item.in.Path)
	case "esc":
		if m.session != nil {
			m.viewMode = ViewEditor
			return m, nil
		}
	case "ctrl+c", "ctrl+q":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.completion.open {
		switch key {
		case "down", "ctrl+n":
			m.completion.next()
			return m, nil
		case "up", "ctrl+p":
			m.completion.prev()
			return m, nil
		case "enter", "tab":
			m.acceptCompletion()
			m.dirty = true
			return m, nil
		case "esc":
			m.completion.close()
			return m, nil
		}
	}

	switch key {
	case "ctrl+q":
		return m, tea.Quit
	case "ctrl+c":
		if m.session != nil && m.session.State() == kernel.StateBusy {
			if err := m.session.Interrupt(); err != nil {
				m.status = "interrupt failed: " + err.Error()
			} else {
				m.status = "interrupt sent"
			}
			return m, nil
		}
		return m, tea.Quit
	case "ctrl+s":
		m.save()
		return m, nil
	case "ctrl+e":
		return m, m.runCell(m.currentCell())
	case "ctrl+r":
		cells := m.cells()
		if len(cells) == 0 {
			return m, nil
		}
		m.runQueue = cells[1:]
		return m, m.runCell(cells[0])
	case "ctrl+k":
		if len(m.opts.Candidates) > 0 {
			m.viewMode = ViewPicker
		} else {
			m.status = "no interpreters discovered"
		}
		return m, nil
	case "tab":
		m.triggerCompletion()
		if m.completion.open {
			return m, nil
		}
		// No candidates: fall through and let the editor indent.
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if m.editor.Value() != before {
		m.dirty = true
		// Typing refilters an open dropdown.
		if m.completion.open {
			m.triggerCompletion()
		}
	}
	return m, cmd
}
