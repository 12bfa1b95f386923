package results

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/scrapedash/scrapedash/internal/api"
	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/resultview"
	"github.com/scrapedash/scrapedash/internal/ui"
)

const (
	msgNoJob       = "No Job Selected"
	msgNoJobHint   = "Select a job from the jobs list to view its results."
	msgLoadFailed  = "Failed to load job data. Please try again later."
	msgMalformed   = "No results found in the job data"
	msgNoMatches   = "No results found for your search"
	msgEmpty       = "No hotels found"
	chromeLines    = 5 // search, notice, status and pager lines around the table
	mailMarker     = "✉"
	fixedColsWidth = 2 + 7 + 8 + 12 + 16 + 22
)

// Model is the results pane: a search box, a sortable table of the current
// page and a pager, all driven by a resultview.ViewModel.
type Model struct {
	table     table.Model
	search    textinput.Model
	searching bool
	vm        *resultview.ViewModel
	jobID     string
	col       int // sort-column cursor into model.Fields
	loading   bool
	err       error
	notice    string
	exportDir string
	now       func() time.Time
	width     int
	height    int
}

func New(pageSize int, exportDir string) Model {
	search := textinput.New()
	search.Placeholder = "name, address, phone..."
	search.Prompt = "/ "
	search.CharLimit = 100

	vm := resultview.New(nil)
	_ = vm.SetPageSize(pageSize)

	t := table.New(table.WithFocused(false), table.WithHeight(5))

	return Model{
		table:     t,
		search:    search,
		vm:        vm,
		exportDir: exportDir,
		now:       time.Now,
	}
}

func (m Model) JobID() string                    { return m.jobID }
func (m Model) Loading() bool                    { return m.loading }
func (m Model) Err() error                       { return m.err }
func (m Model) IsSearching() bool                { return m.searching }
func (m Model) ViewModel() *resultview.ViewModel { return m.vm }

// SetJob switches to a new job. Search, sort and page size carry over; the
// page and any selection reset.
func (m *Model) SetJob(id string) {
	st := m.vm.State
	st.Page = 1
	st.Selected = nil
	m.vm = resultview.Restore(nil, st)
	m.jobID = id
	m.loading = id != ""
	m.err = nil
	m.notice = ""
	m.refresh()
}

func (m *Model) ClearSelection() {
	m.vm.ClearSelection()
}

func (m *Model) Focus() { m.table.Focus() }
func (m *Model) Blur() {
	m.table.Blur()
	m.searching = false
	m.search.Blur()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.ResultsLoadedMsg:
		if msg.JobID != m.jobID {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.notice = ""
		switch {
		case errors.Is(msg.Err, api.ErrMalformedPayload):
			m.notice = msgMalformed
			m.vm.SetRecords(nil)
		case msg.Err != nil:
			m.err = msg.Err
			m.vm.SetRecords(nil)
		default:
			m.vm.SetRecords(msg.Results)
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(msg.Width-12, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab":
		m.searching = false
		m.search.Blur()
		m.table.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.vm.Search {
		m.vm.SetSearch(v)
		m.table.SetCursor(0)
		m.refresh()
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.jobID == "" || m.loading {
		return m, nil
	}
	switch {
	case key.Matches(msg, ui.Keys.Search):
		m.searching = true
		m.table.Blur()
		return m, m.search.Focus()
	case key.Matches(msg, ui.Keys.Left):
		m.col = (m.col + len(model.Fields) - 1) % len(model.Fields)
		m.refresh()
		return m, nil
	case key.Matches(msg, ui.Keys.Right):
		m.col = (m.col + 1) % len(model.Fields)
		m.refresh()
		return m, nil
	case key.Matches(msg, ui.Keys.Sort):
		m.vm.ToggleSort(model.Fields[m.col])
		m.refresh()
		return m, nil
	case key.Matches(msg, ui.Keys.ClearSort):
		m.vm.ClearSort()
		m.refresh()
		return m, nil
	case key.Matches(msg, ui.Keys.PrevPage):
		m.vm.PrevPage()
		m.table.SetCursor(0)
		m.refresh()
		return m, nil
	case key.Matches(msg, ui.Keys.NextPage):
		m.vm.NextPage()
		m.table.SetCursor(0)
		m.refresh()
		return m, nil
	case key.Matches(msg, ui.Keys.PageSize):
		m.vm.CyclePageSize()
		m.table.SetCursor(0)
		m.refresh()
		return m, nil
	case key.Matches(msg, ui.Keys.Export):
		return m, m.export()
	case key.Matches(msg, ui.Keys.Enter):
		if !m.vm.SelectIndex(m.table.Cursor()) {
			return m, nil
		}
		r, _ := m.vm.SelectedRecord()
		return m, func() tea.Msg { return ui.ResultSelectedMsg{Result: r} }
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// export writes the filtered and sorted records, not just the visible page.
// An empty set does nothing.
func (m Model) export() tea.Cmd {
	records := m.vm.Filtered()
	if len(records) == 0 {
		return nil
	}
	dir, jobID, now := m.exportDir, m.jobID, m.now()
	return func() tea.Msg {
		path, err := resultview.WriteExport(dir, jobID, records, now)
		return ui.ExportDoneMsg{Path: path, Count: len(records), Err: err}
	}
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func (m *Model) refresh() {
	cols := m.columns()
	p := m.vm.Projection()
	rows := make([]table.Row, len(p.Items))
	for i, r := range p.Items {
		rows[i] = m.row(r, cols)
	}
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetWidth(max(m.width, 20))
	m.table.SetHeight(max(m.height-chromeLines, 3))
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) columns() []table.Column {
	flex := max(m.width-fixedColsWidth-2*(len(model.Fields)), 20)
	widths := map[model.Field]int{
		model.FieldName:    flex * 11 / 20,
		model.FieldAddress: flex * 9 / 20,
		model.FieldRating:  7,
		model.FieldReviews: 8,
		model.FieldType:    12,
		model.FieldPhone:   16,
		model.FieldWebsite: 22,
		model.FieldEmails:  2,
	}
	cols := make([]table.Column, 0, len(model.Fields))
	for i, f := range model.Fields {
		title := f.Title()
		if f == model.FieldEmails {
			title = mailMarker
		}
		if s := m.vm.Sort; s != nil && s.Key == f {
			if s.Dir == resultview.Asc {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		if i == m.col {
			title = "›" + title
		}
		cols = append(cols, table.Column{Title: title, Width: widths[f]})
	}
	return cols
}

func (m Model) row(r model.Result, cols []table.Column) table.Row {
	cells := make(table.Row, len(model.Fields))
	for i, f := range model.Fields {
		var v string
		switch f {
		case model.FieldWebsite:
			v = resultview.DomainOf(r.WebsiteURL())
		case model.FieldEmails:
			if resultview.HasEmails(r.Emails) {
				v = mailMarker
			}
		default:
			v = r.Get(f)
		}
		if v == "" && f != model.FieldEmails {
			v = "-"
		}
		cells[i] = truncate.StringWithTail(v, uint(max(cols[i].Width, 1)), "…")
	}
	return cells
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ui.ColorText).
		Background(ui.ColorHighlight).
		Bold(true)
	return s
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	if m.jobID == "" {
		return fmt.Sprintf("\n  %s\n  %s", ui.StyleTitle.Render(msgNoJob), ui.StyleMuted.Render(msgNoJobHint))
	}
	if m.loading {
		return "\n  Loading results..."
	}
	if m.err != nil {
		return fmt.Sprintf("\n  %s\n  %s", ui.StyleFailure.Render(msgLoadFailed), ui.StyleMuted.Render(m.err.Error()))
	}

	var b strings.Builder
	b.WriteString(" " + m.search.View() + "\n")
	if m.notice != "" {
		b.WriteString(" " + ui.StyleWarning.Render(m.notice) + "\n")
	}

	p := m.vm.Projection()
	switch {
	case len(m.vm.Records()) == 0:
		b.WriteString("\n  " + ui.StyleMuted.Render(msgEmpty) + "\n")
		return b.String()
	case p.Total == 0:
		b.WriteString("\n  " + ui.StyleMuted.Render(msgNoMatches) + "\n")
		return b.String()
	}

	t := m.table
	t.SetStyles(tableStyles())
	b.WriteString(t.View() + "\n")
	b.WriteString(m.footer(p))
	return b.String()
}

func (m Model) footer(p resultview.Projection) string {
	status := ui.StyleMuted.Render(fmt.Sprintf(" Showing %d-%d of %d results", p.First, p.Last, p.Total))

	var pager []string
	pager = append(pager, ui.StyleMuted.Render("‹"))
	for _, n := range resultview.PageWindow(p.Page, p.TotalPages) {
		if n == p.Page {
			pager = append(pager, ui.StyleSelected.Render(fmt.Sprintf("[%d]", n)))
		} else {
			pager = append(pager, fmt.Sprintf(" %d ", n))
		}
	}
	pager = append(pager, ui.StyleMuted.Render("›"))

	size := ui.StyleMuted.Render(fmt.Sprintf("Rows per page: %d", m.vm.PageSize))
	return status + "   " + strings.Join(pager, "") + "   " + size
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{
		ui.Keys.Search,
		ui.Keys.Sort,
		ui.Keys.PrevPage,
		ui.Keys.NextPage,
		ui.Keys.PageSize,
		ui.Keys.Export,
		ui.Keys.Enter,
	}
}
