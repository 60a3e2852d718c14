package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles groups the lipgloss styles used by the editor chrome.
type Styles struct {
	TitleBar    lipgloss.Style
	StatusBar   lipgloss.Style
	CellHeader  lipgloss.Style
	ErrorText   lipgloss.Style
	Muted       lipgloss.Style
	Dropdown    lipgloss.Style
	DropdownSel lipgloss.Style
	Help        lipgloss.Style
}

// DefaultStyles returns the stock color scheme, dimming the chrome on
// light backgrounds.
func DefaultStyles() Styles {
	muted := lipgloss.Color("243")
	if !termenv.HasDarkBackground() {
		muted = lipgloss.Color("248")
	}
	return Styles{
		TitleBar: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")).
			Padding(0, 1),
		CellHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		ErrorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Dropdown: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		DropdownSel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}
