package tui

import (
	"current-weather/internal/daypart"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorRed   = lipgloss.Color("#FF4444")
	ColorBlue  = lipgloss.Color("#4466FF")
	ColorGreen = lipgloss.Color("#44FF44")
	ColorGray  = lipgloss.Color("#888888")
)

// backdropColors stand in for the backdrop images on a terminal
var backdropColors = map[daypart.TimeOfDay]lipgloss.Color{
	daypart.Morning:   lipgloss.Color("#F4A261"),
	daypart.Afternoon: lipgloss.Color("#2A9D8F"),
	daypart.Evening:   lipgloss.Color("#6D597A"),
	daypart.Night:     lipgloss.Color("#1D3557"),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			MarginBottom(1)

	textStyle  = lipgloss.NewStyle().Foreground(ColorWhite)
	errorStyle = lipgloss.NewStyle().Foreground(ColorRed)
	helpStyle  = lipgloss.NewStyle().Foreground(ColorGray).MarginTop(1)

	panelStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#000000")).
			Padding(1, 3).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)
)

// backdropColor fills the screen behind the panel; none until the time of day is known
func backdropColor(tod *daypart.TimeOfDay) lipgloss.TerminalColor {
	if tod == nil {
		return lipgloss.NoColor{}
	}
	if c, ok := backdropColors[*tod]; ok {
		return c
	}
	return lipgloss.NoColor{}
}
