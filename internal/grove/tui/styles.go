package tui

import "github.com/charmbracelet/lipgloss"

// Tokyo Night inspired palette.
var (
	ColorPrimary = lipgloss.Color("#7aa2f7")
	ColorSuccess = lipgloss.Color("#9ece6a")
	ColorWarning = lipgloss.Color("#e0af68")
	ColorError   = lipgloss.Color("#f7768e")
	ColorMuted   = lipgloss.Color("#565f89")
	ColorFg      = lipgloss.Color("#c0caf5")
	ColorBorder  = lipgloss.Color("#3b4261")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorFg).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	ToastStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	DisabledStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	PaneFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	PaneUnfocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// statusIndicator returns a colored dot for a task status.
func statusIndicator(status string) string {
	switch status {
	case "live":
		return ToastStyle.Render("●")
	case "idle":
		return LabelStyle.Render("●")
	case "merged":
		return TitleStyle.Render("●")
	case "conflict", "broken":
		return ErrorStyle.Render("●")
	case "archived":
		return DisabledStyle.Render("○")
	default:
		return LabelStyle.Render("○")
	}
}

// hookIndicator returns a colored marker for a hook level.
func hookIndicator(level string) string {
	switch level {
	case "critical":
		return ErrorStyle.Render("!")
	case "warn":
		return WarnStyle.Render("!")
	default:
		return TitleStyle.Render("·")
	}
}
