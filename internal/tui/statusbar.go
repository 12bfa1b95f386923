package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/scrapedash/scrapedash/internal/ui"
)

func RenderStatusBar(status, hints string, width int) string {
	left := lipgloss.NewStyle().Foreground(ui.ColorText).Render("  " + status)
	help := hints + " "

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(help), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(ui.ColorHighlight).
		Width(width).
		MaxWidth(width).
		Render(left + padding + help)
}
