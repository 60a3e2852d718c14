package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// layout divides the terminal: title, editor, output, status. The editor
// gets the larger share.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	body := m.height - 2 // title and status bars
	editorH := body * 3 / 5
	if editorH < 3 {
		editorH = 3
	}
	outputH := body - editorH
	if outputH < 2 {
		outputH = 2
	}

	m.editor.SetWidth(m.width)
	m.editor.SetHeight(editorH)
	m.output.Width = m.width
	m.output.Height = outputH
	m.picker.SetSize(m.width, body)
	m.refreshOutput()
}

// refreshOutput rebuilds the output pane from the per-cell results.
func (m *Model) refreshOutput() {
	var b strings.Builder
	cells := m.cells()
	shown := 0
	for _, cell := range cells {
		res, hasRes := m.results[cell.Index]
		running := m.running[cell.Index]
		if !hasRes && !running {
			continue
		}
		shown++

		header := fmt.Sprintf("cell %d", cell.Index)
		if cell.Label != "" {
			header += " · " + cell.Label
		}
		switch {
		case running:
			header += "  …"
		case res.OK():
			header += fmt.Sprintf("  [%d]", res.Count)
		default:
			header += "  ✗"
		}
		b.WriteString(m.styles.CellHeader.Render(header))
		b.WriteByte('\n')

		if running {
			continue
		}
		for _, chunk := range res.Outputs {
			if chunk.Stream == "stderr" {
				b.WriteString(m.styles.ErrorText.Render(strings.TrimRight(chunk.Data, "\n")))
				b.WriteByte('\n')
			} else {
				b.WriteString(chunk.Data)
				if !strings.HasSuffix(chunk.Data, "\n") {
					b.WriteByte('\n')
				}
			}
		}
		if res.OK() {
			if res.ResultRepr != "" {
				b.WriteString(res.ResultRepr)
				b.WriteByte('\n')
			}
		} else {
			if len(res.Traceback) > 0 {
				b.WriteString(m.styles.ErrorText.Render(strings.Join(res.Traceback, "\n")))
			} else {
				b.WriteString(m.styles.ErrorText.Render(res.ErrorKind + ": " + res.Message))
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	if shown == 0 {
		b.WriteString(m.styles.Muted.Render("no outputs yet — ctrl+e runs the current cell"))
	}
	m.output.SetContent(b.String())
}

// View renders the whole screen.
func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}
	if m.viewMode == ViewPicker {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.titleBar(),
			m.picker.View(),
			m.statusBar(),
		)
	}

	sections := []string{
		m.titleBar(),
		m.editor.View(),
	}
	if m.completion.open {
		sections = append(sections, m.dropdownView())
	}
	sections = append(sections, m.output.View(), m.statusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) titleBar() string {
	name := m.opts.Path
	if name == "" {
		name = "[scratch]"
	}
	if m.dirty {
		name += " *"
	}
	title := m.styles.TitleBar.Render("scribe · " + name)
	state := m.styles.Muted.Render(" " + m.kernelStateLabel())
	return title + state
}

func (m *Model) statusBar() string {
	help := m.styles.Help.Render("  ctrl+e run · ctrl+r run all · tab complete · ctrl+s save · ctrl+k kernel · ctrl+q quit")
	return m.styles.StatusBar.Render(m.status) + help
}

// dropdownView renders the completion list; a window of rows slides with
// the selection.
func (m *Model) dropdownView() string {
	cands := m.completion.candidates
	sel := m.completion.selected

	start := 0
	if sel >= maxDropdownRows {
		start = sel - maxDropdownRows + 1
	}
	end := start + maxDropdownRows
	if end > len(cands) {
		end = len(cands)
	}

	var rows []string
	for i := start; i < end; i++ {
		row := categoryGlyph(cands[i].Category) + " " + cands[i].Text
		if i == sel {
			row = m.styles.DropdownSel.Render(row)
		}
		rows = append(rows, row)
	}
	if len(cands) > end {
		rows = append(rows, m.styles.Muted.Render(fmt.Sprintf("… %d more", len(cands)-end)))
	}
	return m.styles.Dropdown.Render(strings.Join(rows, "\n"))
}
