package ui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	primary, success, failure, warning, info, muted, border, highlight, text, onPrimary lipgloss.Color
}

var (
	darkPalette = palette{
		primary:   "#7C3AED",
		success:   "#10B981",
		failure:   "#EF4444",
		warning:   "#F59E0B",
		info:      "#3B82F6",
		muted:     "#6B7280",
		border:    "#374151",
		highlight: "#1F2937",
		text:      "#F9FAFB",
		onPrimary: "#F9FAFB",
	}
	lightPalette = palette{
		primary:   "#6D28D9",
		success:   "#047857",
		failure:   "#B91C1C",
		warning:   "#B45309",
		info:      "#1D4ED8",
		muted:     "#6B7280",
		border:    "#D1D5DB",
		highlight: "#EDE9FE",
		text:      "#111827",
		onPrimary: "#FFFFFF",
	}
)

var (
	ColorPrimary   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorFailure   lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorInfo      lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorBorder    lipgloss.Color
	ColorHighlight lipgloss.Color
	ColorText      lipgloss.Color

	StylePane        lipgloss.Style
	StylePaneFocused lipgloss.Style
	StyleHeader      lipgloss.Style
	StyleTitle       lipgloss.Style
	StyleSelected    lipgloss.Style

	StyleSuccess lipgloss.Style
	StyleFailure lipgloss.Style
	StyleWarning lipgloss.Style
	StyleInfo    lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleStar    lipgloss.Style
	StyleLink    lipgloss.Style

	dark bool
)

func init() {
	apply(lightPalette)
}

// SetTheme switches every exported style to the dark or light palette.
// Views read the package variables on each render, so the change shows on
// the next frame.
func SetTheme(useDark bool) {
	dark = useDark
	if useDark {
		apply(darkPalette)
		return
	}
	apply(lightPalette)
}

func Dark() bool {
	return dark
}

func apply(p palette) {
	ColorPrimary = p.primary
	ColorSuccess = p.success
	ColorFailure = p.failure
	ColorWarning = p.warning
	ColorInfo = p.info
	ColorMuted = p.muted
	ColorBorder = p.border
	ColorHighlight = p.highlight
	ColorText = p.text

	StylePane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StylePaneFocused = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.onPrimary).
		Background(ColorPrimary).
		Padding(0, 1)

	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	StyleSelected = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Background(ColorHighlight)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleStar = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleLink = lipgloss.NewStyle().Underline(true).Foreground(ColorInfo)
}

func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "completed":
		return StyleSuccess
	case "failed":
		return StyleFailure
	case "running":
		return StyleInfo
	default:
		return StyleWarning
	}
}

func StatusIcon(status string) string {
	switch status {
	case "completed":
		return StyleSuccess.Render("V")
	case "failed":
		return StyleFailure.Render("X")
	case "running":
		return StyleInfo.Render("*")
	case "pending":
		return StyleWarning.Render("o")
	default:
		return StyleMuted.Render("?")
	}
}
