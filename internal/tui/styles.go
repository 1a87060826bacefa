package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette shared by the pager and command output.
const (
	ColorBrand   = "42"  // Green - brand, success states
	ColorPrimary = "255" // White - main text, emphasis
	ColorMuted   = "240" // Dark gray - hints, less important info
	ColorError   = "203" // Red - errors, failures
	ColorWarning = "214" // Orange - cautions
)

var (
	TitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrand)).Bold(true)
	PrimaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimary))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted))
	HintStyle    = MutedStyle.Italic(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrand))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))
)

// Badge renders a muted tag such as a config value source.
func Badge(text string) string {
	return MutedStyle.Render("(" + text + ")")
}

// Bullet returns a muted bullet point.
func Bullet() string {
	return MutedStyle.Render("·")
}
