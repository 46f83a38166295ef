package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ------- styling helpers (Lip Gloss) -------
var (
	Title   = lipgloss.NewStyle().Bold(true)
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	Accent  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	Muted   = lipgloss.NewStyle().Faint(true)
	Error   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	Selected = lipgloss.NewStyle().Bold(true).Reverse(true)
	Done     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	Help     = lipgloss.NewStyle().Faint(true)
	Tag      = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

const (
	BoxChecked   = "☑"
	BoxUnchecked = "☐"
)

// Panel frames lines in a rounded box.
func Panel(lines ...string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// Box is the checkbox glyph for a completion state.
func Box(done bool) string {
	if done {
		return Success.Render(BoxChecked)
	}
	return Muted.Render(BoxUnchecked)
}

// Tags renders tags as "#a #b", or "" when there are none.
func Tags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return Tag.Render("#" + strings.Join(tags, " #"))
}
