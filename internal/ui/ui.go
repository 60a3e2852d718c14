// Package ui implements the interactive notebook editor: a cell-aware text
// buffer, an output pane, the completion dropdown, and the kernel picker.
package ui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-term/scribe/internal/kernel"
)

// Options wires the editor to everything resolved by the CLI layer.
type Options struct {
	// Path is the notebook file; empty for an unsaved scratch buffer.
	Path string
	// Doc is the initial document content.
	Doc string
	// Delimiter is the cell delimiter token.
	Delimiter string
	// Interpreter is the resolved interpreter path; empty opens the picker.
	Interpreter string
	// Candidates feed the kernel picker.
	Candidates []kernel.Interpreter
	// SQLPatterns adds configured SQL call spellings to the completer.
	SQLPatterns []string
	// StartTimeout bounds kernel launch plus handshake.
	StartTimeout time.Duration
	Logger       *slog.Logger
	// OnInterpreterChosen persists a picker choice for this notebook.
	OnInterpreterChosen func(path string)
}

// Run opens the editor and blocks until the user quits.
func Run(opts Options) error {
	m := NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	m.shutdown()
	return err
}
