package jobform

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/ui"
)

// ---------------------------------------------------------------------------
// Result messages
// ---------------------------------------------------------------------------

// SubmitMsg carries a validated job request.
type SubmitMsg struct {
	Request model.ScrapeRequest
}

// CancelMsg is emitted when the form is dismissed without submitting.
type CancelMsg struct{}

// ---------------------------------------------------------------------------
// Field enum
// ---------------------------------------------------------------------------

type field int

const (
	fieldLocation field = iota
	fieldRadius
	fieldType
	fieldSubmit
	fieldCount
)

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model is the job submission form. It keeps its values between openings so
// a failed submission can be retried.
type Model struct {
	active     bool
	focused    field
	location   textinput.Model
	radius     int
	typeIdx    int
	submitting bool
	err        string
	width      int
	height     int
}

func New() Model {
	loc := textinput.New()
	loc.Placeholder = "e.g. Lisbon, Portugal"
	loc.CharLimit = 200
	loc.Width = 34

	return Model{
		location: loc,
		radius:   model.DefaultRadius,
	}
}

func (m Model) IsActive() bool     { return m.active }
func (m Model) Submitting() bool   { return m.submitting }
func (m Model) Location() string   { return m.location.Value() }
func (m Model) Radius() int        { return m.radius }
func (m Model) Type() model.JobType { return model.JobTypes[m.typeIdx] }
func (m Model) Err() string        { return m.err }

// Open shows the form with the location field focused.
func (m *Model) Open() tea.Cmd {
	m.active = true
	m.focused = fieldLocation
	m.location.Focus()
	return textinput.Blink
}

func (m *Model) Close() {
	m.active = false
	m.location.Blur()
}

// SetSize stores terminal dimensions so the form can centre itself.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Submitted records the outcome of a submission. Success clears the
// location and closes the form; failure keeps every value and shows err.
func (m *Model) Submitted(err error) {
	m.submitting = false
	if err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
	m.location.SetValue("")
	m.Close()
}

func (m Model) Init() tea.Cmd { return nil }

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.location.Focused() {
			var cmd tea.Cmd
			m.location, cmd = m.location.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.Close()
		return m, func() tea.Msg { return CancelMsg{} }
	case "enter":
		return m.submit()
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	}

	if m.location.Focused() {
		var cmd tea.Cmd
		m.location, cmd = m.location.Update(keyMsg)
		m.err = ""
		return m, cmd
	}

	switch keyMsg.String() {
	case "j":
		m.moveFocus(1)
	case "k":
		m.moveFocus(-1)
	case "right", "l":
		m.adjust(1)
	case "left", "h":
		m.adjust(-1)
	case "shift+right", "L":
		m.adjust(5)
	case "shift+left", "H":
		m.adjust(-5)
	}
	return m, nil
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	req := model.ScrapeRequest{
		Location: strings.TrimSpace(m.location.Value()),
		Radius:   float64(m.radius),
		Type:     m.Type(),
	}
	if err := req.Validate(); err != nil {
		m.err = capitalize(err.Error())
		m.focused = fieldLocation
		m.location.Focus()
		return m, nil
	}
	m.err = ""
	m.submitting = true
	return m, func() tea.Msg { return SubmitMsg{Request: req} }
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	if !m.active {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Width(10).Foreground(ui.ColorMuted)
	focusedLabelStyle := lipgloss.NewStyle().Width(10).Bold(true).Foreground(ui.ColorPrimary)
	valueStyle := lipgloss.NewStyle().Foreground(ui.ColorText)

	rows := make([]string, 0, int(fieldCount))
	for f := field(0); f < fieldCount; f++ {
		ls := labelStyle
		if f == m.focused {
			ls = focusedLabelStyle
		}
		cursor := "  "
		if f == m.focused {
			cursor = lipgloss.NewStyle().Foreground(ui.ColorPrimary).Render("> ")
		}

		var row string
		switch f {
		case fieldLocation:
			row = ls.Render("Location:") + " " + m.location.View()
		case fieldRadius:
			row = ls.Render("Radius:") + " " + valueStyle.Render(fmt.Sprintf("< %d km >", m.radius)) + " " + radiusBar(m.radius)
		case fieldType:
			row = ls.Render("Type:") + " " + valueStyle.Render("< "+m.Type().Label()+" >")
		case fieldSubmit:
			label := "[ Start Scraping ]"
			if m.submitting {
				label = "[ Submitting... ]"
			}
			btn := lipgloss.NewStyle().Foreground(ui.ColorMuted)
			if f == m.focused {
				btn = ui.StyleHeader
			}
			row = strings.Repeat(" ", 11) + btn.Render(label)
		}
		rows = append(rows, cursor+row)
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		MarginBottom(1).
		Render("New Scraping Job")

	var errLine string
	if m.err != "" {
		errLine = "\n" + ui.StyleFailure.Render(m.err)
	}

	help := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		MarginTop(1).
		Render("tab: next field  h/l: change  enter: submit  esc: cancel")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(rows, "\n")+errLine,
		help,
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2).
		Width(60).
		Render(body)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			box)
	}
	return box
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (m *Model) moveFocus(delta int) {
	next := int(m.focused) + delta
	if next < 0 {
		next = int(fieldCount) - 1
	}
	if next >= int(fieldCount) {
		next = 0
	}
	m.focused = field(next)
	if m.focused == fieldLocation {
		m.location.Focus()
	} else {
		m.location.Blur()
	}
}

func (m *Model) adjust(delta int) {
	switch m.focused {
	case fieldRadius:
		m.radius = min(max(m.radius+delta, model.MinRadius), model.MaxRadius)
	case fieldType:
		n := len(model.JobTypes)
		step := 1
		if delta < 0 {
			step = -1
		}
		m.typeIdx = ((m.typeIdx+step)%n + n) % n
	}
}

// radiusBar draws the radius as a 25-cell slider.
func radiusBar(r int) string {
	const cells = 25
	filled := r * cells / model.MaxRadius
	return ui.StyleInfo.Render(strings.Repeat("━", filled)) +
		ui.StyleMuted.Render(strings.Repeat("─", cells-filled))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
