package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/scrapedash/scrapedash/internal/prefs"
	"github.com/scrapedash/scrapedash/internal/ui"
)

func RenderHeader(apiURL string, theme prefs.Theme, width int) string {
	left := ui.StyleHeader.Render(fmt.Sprintf("scrapedash | %s", apiURL))

	icon := "☀"
	if theme == prefs.ThemeDark {
		icon = "☾"
	}
	right := lipgloss.NewStyle().Foreground(ui.ColorMuted).
		Render(fmt.Sprintf("%s %s ", icon, theme))

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Width(width).
		Render(left + padding + right)
}
