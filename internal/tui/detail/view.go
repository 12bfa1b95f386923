package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/resultview"
	"github.com/scrapedash/scrapedash/internal/ui"
)

const notAvailable = "Not available"

// Model shows one result in a centred modal. It never clears the selection
// itself; esc emits ui.DetailClosedMsg and the parent decides.
type Model struct {
	result   *model.Result
	emails   []string
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

func New() Model {
	return Model{}
}

func (m Model) IsOpen() bool {
	return m.result != nil
}

func (m Model) Result() *model.Result {
	return m.result
}

// Emails returns the addresses shown in the modal, in their numbered order.
func (m Model) Emails() []string {
	return m.emails
}

func (m *Model) SetResult(r *model.Result) {
	m.result = r
	m.emails = nil
	if r != nil {
		m.emails = resultview.Emails(r.Emails)
	}
	if m.ready {
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
	}
}

// SetSize sizes the modal from the terminal dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	vw, vh := m.boxSize()
	if !m.ready {
		m.viewport = viewport.New(vw, vh)
		m.ready = true
	} else {
		m.viewport.Width = vw
		m.viewport.Height = vh
	}
	m.viewport.SetContent(m.render())
}

func (m Model) boxSize() (int, int) {
	w := max(min(m.width-8, 80), 30)
	h := max(m.height-8, 8)
	return w, h
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.result == nil {
		return m, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch s := kmsg.String(); s {
		case "esc", "q":
			return m, func() tea.Msg { return ui.DetailClosedMsg{} }
		case "w":
			if site := m.result.WebsiteURL(); site != "" {
				url := resultview.Href(site)
				return m, func() tea.Msg { return ui.OpenURLMsg{URL: url} }
			}
			return m, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			i := int(s[0] - '1')
			if i < len(m.emails) {
				url := "mailto:" + m.emails[i]
				return m, func() tea.Msg { return ui.OpenURLMsg{URL: url} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.result == nil {
		return ""
	}
	pct := m.viewport.ScrollPercent() * 100
	hints := ui.StyleMuted.Render(fmt.Sprintf("j/k:scroll  w:website  1-9:email  esc:close  %3.0f%%", pct))
	body := m.viewport.View() + "\n" + hints

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(0, 1).
		Render(body)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// StarBar renders five stars, lit up to the rating.
func StarBar(rating string) string {
	var b strings.Builder
	for _, lit := range resultview.Stars(rating) {
		if lit {
			b.WriteString(ui.StyleStar.Render("★"))
		} else {
			b.WriteString(ui.StyleMuted.Render("☆"))
		}
	}
	return b.String()
}

func (m Model) render() string {
	if m.result == nil {
		return ""
	}
	r := m.result
	width, _ := m.boxSize()
	valueWidth := max(width-18, 10)

	bold := lipgloss.NewStyle().Bold(true)
	label := lipgloss.NewStyle().Foreground(ui.ColorMuted).Width(16)
	value := lipgloss.NewStyle().Foreground(ui.ColorText)
	muted := ui.StyleMuted

	orNA := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return muted.Render(notAvailable)
		}
		return value.Render(wordwrap.String(s, valueWidth))
	}
	row := func(l, v string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, " "+label.Render(l), v) + "\n"
	}

	var b strings.Builder
	b.WriteString("\n " + ui.StyleTitle.Render(wordwrap.String(r.Name, width-2)) + "\n\n")
	b.WriteString(row("Address", orNA(r.Address)))
	b.WriteString(row("Type", orNA(r.Type)))

	rating := muted.Render(notAvailable)
	if r.Rating != "" {
		rating = StarBar(r.Rating) + " " + value.Render(r.Rating)
	}
	b.WriteString(row("Rating", rating))
	b.WriteString(row("Reviews", orNA(r.Reviews)))
	b.WriteString(row("Phone", orNA(r.Phone)))

	site := muted.Render(notAvailable)
	if u := r.WebsiteURL(); u != "" {
		site = ui.StyleLink.Render(resultview.DomainOf(u)) + muted.Render("  (w)")
	}
	b.WriteString(row("Website", site))
	b.WriteString("\n")

	b.WriteString(" " + bold.Render("Email Contacts") + "\n\n")
	if len(m.emails) == 0 {
		b.WriteString("   " + muted.Render(notAvailable) + "\n")
	}
	for i, e := range m.emails {
		n := fmt.Sprintf("%d.", i+1)
		if i >= 9 {
			n = "  "
		}
		b.WriteString(fmt.Sprintf("   %s %s\n", muted.Render(n), ui.StyleLink.Render(e)))
	}
	return b.String()
}
