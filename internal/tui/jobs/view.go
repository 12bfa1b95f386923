package jobs

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/ui"
)

const (
	createdLayout = "Jan 2, 2006 15:04"
	serverHint    = "Please ensure the backend server is running and try again"
)

// --- Custom delegate ---

type jobDelegate struct {
	active *string // job whose results are open
	now    func() time.Time
}

func (d jobDelegate) Height() int                              { return 2 }
func (d jobDelegate) Spacing() int                             { return 0 }
func (d jobDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d jobDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ji, ok := item.(jobItem)
	if !ok {
		return
	}
	j := ji.job

	mark := " "
	if *d.active == j.ID {
		mark = ui.StyleWarning.Render("●")
	}
	status := ui.StatusStyle(string(j.Status)).Render(string(j.Status))
	location := fmt.Sprintf("%s (%skm)", j.Location, FormatRadius(j.Radius))
	kind := ui.StyleMuted.Render(j.Type.Label())

	created := j.CreatedAt.Local().Format(createdLayout)
	ago := ui.StyleMuted.Render(text.RelativeTimeAgo(d.now(), j.CreatedAt))

	line1 := fmt.Sprintf(" %s%s %-9s %s  %s", mark, ui.StatusIcon(string(j.Status)), status, location, kind)
	line2 := fmt.Sprintf("    %s  %s  %s", created, ago, ResultsLabel(j))

	if index == m.Index() {
		hl := lipgloss.NewStyle().Background(ui.ColorHighlight).Width(m.Width())
		line1 = hl.Render(line1)
		line2 = hl.Render(line2)
	}

	fmt.Fprintf(w, "%s\n%s", line1, line2)
}

// --- Item ---

type jobItem struct {
	job model.Job
}

func (j jobItem) FilterValue() string {
	return j.job.Location + " " + string(j.job.Status) + " " + string(j.job.Type)
}

func FormatRadius(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// ResultsLabel is "N items" once a job has results and "-" before.
func ResultsLabel(j model.Job) string {
	if n := j.ResultCount(); n > 0 {
		return fmt.Sprintf("%d items", n)
	}
	return "-"
}

// SortJobs orders jobs newest first. Jobs created at the same instant keep
// the backend's order.
func SortJobs(jobs []model.Job) []model.Job {
	out := slices.Clone(jobs)
	slices.SortStableFunc(out, func(a, b model.Job) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return out
}

// --- Model ---

type Model struct {
	list     list.Model
	jobs     []model.Job
	active   *string
	page     int
	pageSize int
	width    int
	height   int
	loading  bool
	err      error
}

func New(pageSize int) Model {
	if pageSize < 1 {
		pageSize = 10
	}
	active := new(string)
	delegate := jobDelegate{active: active, now: time.Now}

	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// Paging is done here on fixed-size pages; keep the list's own paging
	// off the h/l keys.
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "next page"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "prev page"))
	l.DisableQuitKeybindings()

	return Model{
		list:     l,
		active:   active,
		page:     1,
		pageSize: pageSize,
		loading:  true,
	}
}

func (m Model) Jobs() []model.Job { return m.jobs }
func (m Model) Page() int         { return m.page }
func (m Model) Loading() bool     { return m.loading }
func (m Model) Err() error        { return m.err }

func (m Model) PageCount() int {
	if len(m.jobs) == 0 {
		return 1
	}
	return (len(m.jobs) + m.pageSize - 1) / m.pageSize
}

// PageJobs returns the jobs on the current page.
func (m Model) PageJobs() []model.Job {
	start := (m.page - 1) * m.pageSize
	if start >= len(m.jobs) {
		return nil
	}
	return m.jobs[start:min(start+m.pageSize, len(m.jobs))]
}

func (m Model) SelectedJob() *model.Job {
	if item, ok := m.list.SelectedItem().(jobItem); ok {
		return &item.job
	}
	return nil
}

// JobByID returns the job with the given ID, or nil.
func (m Model) JobByID(id string) *model.Job {
	for i := range m.jobs {
		if m.jobs[i].ID == id {
			return &m.jobs[i]
		}
	}
	return nil
}

// ActiveID is the job last chosen with enter.
func (m Model) ActiveID() string {
	return *m.active
}

func (m *Model) SetActive(id string) {
	*m.active = id
}

func (m *Model) SetLoading() {
	m.loading = true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.JobsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		var cursorID string
		if j := m.SelectedJob(); j != nil {
			cursorID = j.ID
		}
		m.jobs = SortJobs(msg.Jobs)
		m.page = min(max(m.page, 1), m.PageCount())
		return m, m.syncItems(cursorID)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ui.Keys.Enter):
			j := m.SelectedJob()
			if j == nil {
				return m, nil
			}
			id := j.ID
			*m.active = id
			return m, func() tea.Msg { return ui.JobSelectedMsg{ID: id} }
		case key.Matches(msg, ui.Keys.Left):
			if m.page > 1 {
				m.page--
				return m, m.syncItems("")
			}
			return m, nil
		case key.Matches(msg, ui.Keys.Right):
			if m.page < m.PageCount() {
				m.page++
				return m, m.syncItems("")
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-1, 0))
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// syncItems loads the current page into the list and puts the cursor on
// cursorID when it is on this page, otherwise on the first row.
func (m *Model) syncItems(cursorID string) tea.Cmd {
	pageJobs := m.PageJobs()
	items := make([]list.Item, len(pageJobs))
	idx := 0
	for i, j := range pageJobs {
		items[i] = jobItem{job: j}
		if j.ID == cursorID {
			idx = i
		}
	}
	cmd := m.list.SetItems(items)
	m.list.Select(idx)
	return cmd
}

func (m Model) View() string {
	if m.loading && len(m.jobs) == 0 {
		return "\n  Loading jobs..."
	}
	if m.err != nil && len(m.jobs) == 0 {
		return fmt.Sprintf("\n  Error: %v\n  %s", m.err, ui.StyleMuted.Render(serverHint))
	}
	if len(m.jobs) == 0 {
		return "\n  No scraping jobs yet. Press n to submit one."
	}

	footer := ui.StyleMuted.Render(fmt.Sprintf(" Page %d/%d  %d jobs  h/l page", m.page, m.PageCount(), len(m.jobs)))
	if m.err != nil {
		footer = ui.StyleFailure.Render(fmt.Sprintf(" Refresh failed: %v", m.err))
	} else if m.loading {
		footer += ui.StyleMuted.Render("  refreshing...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), footer)
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{
		ui.Keys.Enter,
		ui.Keys.Left,
		ui.Keys.Right,
		ui.Keys.Refresh,
	}
}
