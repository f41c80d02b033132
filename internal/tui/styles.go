package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
const (
	ColorAccent = lipgloss.Color("39")
	ColorMatch  = lipgloss.Color("214")
	ColorSubtle = lipgloss.Color("241")
	ColorLabel  = lipgloss.Color("252")
)

// Shared styles.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	LabelStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorLabel)
	ValueStyle    = lipgloss.NewStyle()
	SubtleStyle   = lipgloss.NewStyle().Foreground(ColorSubtle)
	MatchStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorMatch)
	CursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	SelectedStyle = lipgloss.NewStyle().Bold(true)
	WarningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)
