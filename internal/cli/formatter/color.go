package formatter

import "github.com/charmbracelet/lipgloss"

// Palette. Each color has a light-background and a dark-background variant;
// lipgloss picks one from the terminal.
var (
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#2f7d4f", Dark: "#8ec07c"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#a86a00", Dark: "#fabd2f"}
	ColorRed    = lipgloss.AdaptiveColor{Light: "#b3261e", Dark: "#fb4934"}
	ColorBlue   = lipgloss.AdaptiveColor{Light: "#2b6689", Dark: "#83a598"}
	ColorPurple = lipgloss.AdaptiveColor{Light: "#8f3f71", Dark: "#d3869b"}
	ColorDim    = lipgloss.AdaptiveColor{Light: "#7c6f64", Dark: "#928374"}
	ColorFg     = lipgloss.AdaptiveColor{Light: "#3c3836", Dark: "#ebdbb2"}
	// ColorAccent marks the clock, titles and focused inputs.
	ColorAccent = lipgloss.AdaptiveColor{Light: "#af3a03", Dark: "#fe8019"}
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	// StyleClock frames the running timer.
	StyleClock = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Padding(0, 1)
)

func Dim(s string) string { return StyleDim.Render(s) }

func Bold(s string) string { return StyleBold.Render(s) }
