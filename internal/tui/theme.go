package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the chat screen.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	UserLabel     lipgloss.Style
	AssistantText lipgloss.Style
	StatusPending lipgloss.Style
	StatusError   lipgloss.Style
	Transcript    lipgloss.Style
	Input         lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#D08C4F"),
	Muted:   lipgloss.Color("#777777"),
	Border:  lipgloss.Color("#404040"),
	Error:   lipgloss.Color("#EB5757"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#D08C4F")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	UserLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	AssistantText: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8AB4F8")),
	StatusPending: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#777777")).
		Italic(true),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EB5757")).
		Bold(true),
	Transcript: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	Input: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(lipgloss.Color("#404040")),
}
