// Package styles provides shared lipgloss styles for CLI and TUI output.
package styles

import "github.com/charmbracelet/lipgloss"

// Tokyo Night palette.
var (
	ColorPrimary   = lipgloss.Color("#7aa2f7")
	ColorSecondary = lipgloss.Color("#7dcfff")
	ColorMuted     = lipgloss.Color("#565f89")
	ColorSuccess   = lipgloss.Color("#9ece6a")
	ColorWarning   = lipgloss.Color("#e0af68")
	ColorError     = lipgloss.Color("#f7768e")
)

var (
	TextBold        = lipgloss.NewStyle().Bold(true)
	TextPrimary     = lipgloss.NewStyle().Foreground(ColorPrimary)
	TextPrimaryBold = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	TextSecondary   = lipgloss.NewStyle().Foreground(ColorSecondary)
	TextMuted       = lipgloss.NewStyle().Foreground(ColorMuted)
	TextSuccess     = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextWarning     = lipgloss.NewStyle().Foreground(ColorWarning)
	TextError       = lipgloss.NewStyle().Foreground(ColorError)
	TextErrorBold   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)

// Gradient endpoints for progress bars.
var (
	ProgressStart = "#7aa2f7"
	ProgressEnd   = "#9ece6a"
)

// KeyValue renders an aligned "label value" summary line.
func KeyValue(label string, value string) string {
	return TextMuted.Width(12).Render(label) + " " + value
}
