package ui

import (
	"strings"

	"github.com/scribe-term/scribe/internal/complete"
)

// maxDropdownRows caps the visible dropdown height.
const maxDropdownRows = 8

// completionState is the dropdown: candidates for the prefix at the cursor.
type completionState struct {
	open       bool
	candidates []complete.Candidate
	selected   int
	prefix     string
}

func (c *completionState) close() {
	c.open = false
	c.candidates = nil
	c.selected = 0
	c.prefix = ""
}

func (c *completionState) next() {
	if len(c.candidates) > 0 {
		c.selected = (c.selected + 1) % len(c.candidates)
	}
}

func (c *completionState) prev() {
	if len(c.candidates) > 0 {
		c.selected = (c.selected - 1 + len(c.candidates)) % len(c.candidates)
	}
}

func (c *completionState) current() (complete.Candidate, bool) {
	if !c.open || c.selected >= len(c.candidates) {
		return complete.Candidate{}, false
	}
	return c.candidates[c.selected], true
}

// triggerCompletion classifies the cursor position and opens the dropdown
// when candidates exist. An empty result leaves the dropdown closed.
func (m *Model) triggerCompletion() {
	cell := m.currentCell()
	doc := m.editor.Value()
	cursorInCell := m.cursorOffset() - cell.Start

	ctx, candidates := m.provider.CompleteContext(cell.Source(doc), cursorInCell)
	if len(candidates) == 0 {
		m.completion.close()
		return
	}
	m.completion = completionState{
		open:       true,
		candidates: candidates,
		prefix:     ctx.Prefix,
	}
}

// acceptCompletion splices the selected candidate into the buffer. The
// typed prefix stays; only the remainder is inserted.
func (m *Model) acceptCompletion() {
	cand, ok := m.completion.current()
	if !ok {
		return
	}
	prefix := m.completion.prefix
	if len(cand.Text) > len(prefix) && strings.EqualFold(cand.Text[:len(prefix)], prefix) {
		m.editor.InsertString(cand.Text[len(prefix):])
	}
	m.completion.close()
}

func categoryGlyph(c complete.Category) string {
	switch c {
	case complete.CategoryTable:
		return "⊞"
	case complete.CategoryColumn:
		return "▤"
	case complete.CategoryFunction:
		return "ƒ"
	case complete.CategoryKeyword:
		return "κ"
	case complete.CategoryAttribute:
		return "·"
	default:
		return "∘"
	}
}
