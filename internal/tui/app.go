package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scrapedash/scrapedash/internal/api"
	"github.com/scrapedash/scrapedash/internal/cache"
	"github.com/scrapedash/scrapedash/internal/config"
	"github.com/scrapedash/scrapedash/internal/logging"
	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/prefs"
	"github.com/scrapedash/scrapedash/internal/tui/cacheview"
	"github.com/scrapedash/scrapedash/internal/tui/confirm"
	"github.com/scrapedash/scrapedash/internal/tui/detail"
	"github.com/scrapedash/scrapedash/internal/tui/jobform"
	"github.com/scrapedash/scrapedash/internal/tui/jobs"
	"github.com/scrapedash/scrapedash/internal/tui/results"
	"github.com/scrapedash/scrapedash/internal/ui"
)

type Pane int

const (
	PaneJobs Pane = iota
	PaneResults
)

// Browser opens links outside the terminal. *browser.Browser from go-gh
// satisfies it.
type Browser interface {
	Browse(url string) error
}

type App struct {
	cfg         config.Config
	client      *api.Client
	resultCache *cache.ResultCache
	prefs       *prefs.Store
	browser     Browser
	log         *logging.Logger

	// Views
	jobsView    jobs.Model
	resultsView results.Model
	detailView  detail.Model
	form        jobform.Model
	help        help.Model

	cacheView     cacheview.Model
	confirmDialog confirm.Model

	// State
	theme       prefs.Theme
	focusedPane Pane
	width       int
	height      int
	status      string
	showHelp    bool
	showCache   bool

	// Request sequencing. A jobs response older than the last applied one
	// is dropped; a results response must match the latest request.
	jobsSeq     int
	jobsApplied int
	resultsSeq  int

	// Status of the job shown in the results pane, as of the last poll.
	activeStatus model.JobStatus
}

// NewApp builds the dashboard. resultCache may be nil to disable caching.
func NewApp(cfg config.Config, client *api.Client, resultCache *cache.ResultCache, store *prefs.Store, theme prefs.Theme, log *logging.Logger) App {
	if log == nil {
		log = logging.NewNop()
	}
	return App{
		cfg:         cfg,
		client:      client,
		resultCache: resultCache,
		prefs:       store,
		log:         log.Named("tui"),
		jobsView:    jobs.New(cfg.JobsPageSize),
		resultsView: results.New(cfg.ResultsPageSize, cfg.ExportDir),
		detailView:  detail.New(),
		form:        jobform.New(),
		help:        help.New(),
		cacheView:   cacheview.New(),
		theme:       theme,
		status:      "Loading jobs...",
		jobsSeq:     1,
	}
}

// SetBrowser sets what opens website and mail links.
func (a *App) SetBrowser(b Browser) {
	a.browser = b
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.fetchJobs(a.jobsSeq), a.scheduleJobsPoll())
}

// --- Data fetching commands ---

// fetchJobs lists jobs, retrying once after RetryDelay before reporting the
// failure.
func (a App) fetchJobs(seq int) tea.Cmd {
	client, delay, log := a.client, a.cfg.RetryDelay, a.log
	return func() tea.Msg {
		list, err := client.ListJobs(context.Background())
		if err != nil {
			log.Warn("list jobs failed, retrying", "seq", seq, "delay", delay, "error", err)
			time.Sleep(delay)
			list, err = client.ListJobs(context.Background())
		}
		if err != nil {
			log.Error("list jobs failed", "seq", seq, "error", err)
		}
		return ui.JobsLoadedMsg{Jobs: list, Seq: seq, Err: err}
	}
}

// scheduleJobsPoll ticks on a fixed interval whether or not the previous
// fetch has finished.
func (a App) scheduleJobsPoll() tea.Cmd {
	interval := a.cfg.PollInterval
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return ui.JobsTickMsg{}
	})
}

// fetchResults serves a job's results from the cache when present and
// otherwise from the backend. The results view does not retry.
func (a App) fetchResults(id string, seq int) tea.Cmd {
	client, rc, log := a.client, a.resultCache, a.log
	var job *model.Job
	if j := a.jobsView.JobByID(id); j != nil {
		cp := *j
		job = &cp
	}
	return func() tea.Msg {
		if rc != nil {
			cached, ok, err := rc.Get(id)
			if err != nil {
				log.Warn("read result cache", "job", id, "error", err)
			} else if ok {
				return ui.ResultsLoadedMsg{JobID: id, Results: cached, Seq: seq, FromCache: true}
			}
		}
		list, err := client.GetJobResults(context.Background(), id)
		if err != nil {
			log.Warn("get job results failed", "job", id, "error", err)
			return ui.ResultsLoadedMsg{JobID: id, Seq: seq, Err: err}
		}
		if rc != nil && job != nil && job.Status == model.JobStatusCompleted {
			if err := rc.Put(*job, list); err != nil {
				log.Warn("write result cache", "job", id, "error", err)
			}
		}
		return ui.ResultsLoadedMsg{JobID: id, Results: list, Seq: seq}
	}
}

func (a App) createJob(req model.ScrapeRequest) tea.Cmd {
	client, log := a.client, a.log
	return func() tea.Msg {
		job, err := client.CreateJob(context.Background(), req)
		if err != nil {
			log.Error("create job failed", "location", req.Location, "error", err)
		} else {
			log.Info("job created", "job", job.ID, "location", job.Location, "type", string(job.Type))
		}
		return ui.JobCreatedMsg{Job: job, Err: err}
	}
}

func (a App) openURL(url string) tea.Cmd {
	b := a.browser
	return func() tea.Msg {
		if b == nil {
			return ui.BrowseDoneMsg{URL: url, Err: fmt.Errorf("no browser configured")}
		}
		return ui.BrowseDoneMsg{URL: url, Err: b.Browse(url)}
	}
}

func (a App) loadCacheEntries() tea.Cmd {
	rc := a.resultCache
	return func() tea.Msg {
		entries, err := rc.ListEntries()
		return ui.CacheEntriesLoadedMsg{Entries: entries, Err: err}
	}
}

func (a App) deleteCached(jobID string) tea.Cmd {
	rc, log := a.resultCache, a.log
	return func() tea.Msg {
		err := rc.Delete(jobID)
		if err == nil {
			log.Info("deleted cached results", "job", jobID)
		}
		return ui.CacheChangedMsg{Action: "Deleted cached results for " + jobID, Err: err}
	}
}

func (a App) clearCache() tea.Cmd {
	rc, log := a.resultCache, a.log
	return func() tea.Msg {
		err := rc.DeleteAll()
		if err == nil {
			log.Info("cleared result cache", "dir", rc.Dir())
		}
		return ui.CacheChangedMsg{Action: "Cleared result cache", Err: err}
	}
}

func (a *App) refreshJobs() tea.Cmd {
	a.jobsSeq++
	a.jobsView.SetLoading()
	return a.fetchJobs(a.jobsSeq)
}

func (a *App) loadResults(id string) tea.Cmd {
	a.resultsSeq++
	a.resultsView.SetJob(id)
	a.propagateSize()
	return a.fetchResults(id, a.resultsSeq)
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case confirm.ResultMsg:
		if !msg.Confirmed {
			return &a, nil
		}
		switch msg.Action {
		case "delete-cache":
			return &a, a.deleteCached(msg.Data.(string))
		case "clear-cache":
			return &a, a.clearCache()
		}
		return &a, nil

	case cacheview.DeleteRequestMsg:
		name := msg.Entry.Location
		if name == "" {
			name = msg.Entry.JobID
		}
		a.confirmDialog = confirm.New("Delete cached results",
			fmt.Sprintf("Remove the %d cached results for %s?", msg.Entry.Count, name),
			"delete-cache", msg.Entry.JobID)
		a.confirmDialog.SetSize(a.width, a.height-2)
		return &a, nil

	case cacheview.ClearRequestMsg:
		a.confirmDialog = confirm.New("Clear result cache",
			fmt.Sprintf("Remove all %d cached jobs?", msg.Count),
			"clear-cache", nil)
		a.confirmDialog.SetSize(a.width, a.height-2)
		return &a, nil

	case cacheview.CloseMsg:
		a.showCache = false
		return &a, nil

	case ui.CacheEntriesLoadedMsg:
		var cmd tea.Cmd
		a.cacheView, cmd = a.cacheView.Update(msg)
		return &a, cmd

	case ui.CacheChangedMsg:
		if msg.Err != nil {
			a.status = "Error: " + msg.Err.Error()
			a.log.Error("result cache", "error", msg.Err)
		} else {
			a.status = msg.Action
		}
		a.cacheView.SetLoading()
		return &a, a.loadCacheEntries()

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.propagateSize()
		return &a, nil

	case ui.JobsTickMsg:
		return &a, tea.Batch(a.refreshJobs(), a.scheduleJobsPoll())

	case ui.JobsLoadedMsg:
		if msg.Seq < a.jobsApplied {
			a.log.Debug("dropping stale jobs response", "seq", msg.Seq, "applied", a.jobsApplied)
			return &a, nil
		}
		a.jobsApplied = msg.Seq
		var cmd tea.Cmd
		a.jobsView, cmd = a.jobsView.Update(msg)
		cmds = append(cmds, cmd)
		if msg.Err != nil {
			a.status = "Failed to load jobs"
			return &a, tea.Batch(cmds...)
		}
		if a.status == "Loading jobs..." {
			a.status = fmt.Sprintf("%d jobs", len(msg.Jobs))
		}
		cmds = append(cmds, a.followActiveJob())
		return &a, tea.Batch(cmds...)

	case ui.JobSelectedMsg:
		a.setFocus(PaneResults)
		a.jobsView.SetActive(msg.ID)
		a.activeStatus = ""
		if j := a.jobsView.JobByID(msg.ID); j != nil {
			a.activeStatus = j.Status
		}
		a.status = "Loading job " + msg.ID + "..."
		return &a, a.loadResults(msg.ID)

	case ui.ResultsLoadedMsg:
		if msg.Seq != a.resultsSeq || msg.JobID != a.resultsView.JobID() {
			a.log.Debug("dropping stale results response", "job", msg.JobID, "seq", msg.Seq)
			return &a, nil
		}
		var cmd tea.Cmd
		a.resultsView, cmd = a.resultsView.Update(msg)
		switch {
		case msg.Err != nil:
			a.status = "Failed to load job " + msg.JobID
		case msg.FromCache:
			a.status = fmt.Sprintf("%d results (cached)", len(msg.Results))
		default:
			a.status = fmt.Sprintf("%d results", len(msg.Results))
		}
		return &a, cmd

	case jobform.SubmitMsg:
		a.status = "Submitting job for " + msg.Request.Location + "..."
		return &a, a.createJob(msg.Request)

	case jobform.CancelMsg:
		a.form.Close()
		return &a, nil

	case ui.JobCreatedMsg:
		a.form.Submitted(msg.Err)
		if msg.Err != nil {
			a.status = "Error: " + msg.Err.Error()
			return &a, nil
		}
		a.status = fmt.Sprintf("Job submitted for %s", msg.Job.Location)
		return &a, a.refreshJobs()

	case ui.ResultSelectedMsg:
		r := msg.Result
		a.detailView.SetResult(&r)
		return &a, nil

	case ui.DetailClosedMsg:
		a.detailView.SetResult(nil)
		a.resultsView.ClearSelection()
		return &a, nil

	case ui.OpenURLMsg:
		a.status = "Opening " + msg.URL + "..."
		return &a, a.openURL(msg.URL)

	case ui.BrowseDoneMsg:
		if msg.Err != nil {
			a.status = "Error: " + msg.Err.Error()
		} else {
			a.status = "Opened " + msg.URL
		}
		return &a, nil

	case ui.ExportDoneMsg:
		if msg.Err != nil {
			a.status = "Export failed: " + msg.Err.Error()
			a.log.Error("export failed", "error", msg.Err)
		} else {
			a.status = fmt.Sprintf("Exported %d results to %s", msg.Count, msg.Path)
			a.log.Info("exported results", "path", msg.Path, "count", msg.Count)
		}
		return &a, nil

	case ui.StatusMsg:
		a.status = msg.Text
		return &a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Everything else (cursor blink and similar) goes to the active input.
	var cmd tea.Cmd
	switch {
	case a.form.IsActive():
		a.form, cmd = a.form.Update(msg)
	case a.focusedPane == PaneResults:
		a.resultsView, cmd = a.resultsView.Update(msg)
	default:
		a.jobsView, cmd = a.jobsView.Update(msg)
	}
	return &a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return &a, tea.Quit
	}

	// Overlays take every key while shown.
	if a.confirmDialog.IsActive() {
		var cmd tea.Cmd
		a.confirmDialog, cmd = a.confirmDialog.Update(msg)
		return &a, cmd
	}
	if a.form.IsActive() {
		var cmd tea.Cmd
		a.form, cmd = a.form.Update(msg)
		return &a, cmd
	}
	if a.detailView.IsOpen() {
		var cmd tea.Cmd
		a.detailView, cmd = a.detailView.Update(msg)
		return &a, cmd
	}
	if a.showCache {
		var cmd tea.Cmd
		a.cacheView, cmd = a.cacheView.Update(msg)
		return &a, cmd
	}
	if a.showHelp {
		if key.Matches(msg, ui.Keys.Help, ui.Keys.Back, ui.Keys.Quit) {
			a.showHelp = false
		}
		return &a, nil
	}
	if a.focusedPane == PaneResults && a.resultsView.IsSearching() {
		var cmd tea.Cmd
		a.resultsView, cmd = a.resultsView.Update(msg)
		return &a, cmd
	}

	switch {
	case key.Matches(msg, ui.Keys.Quit):
		return &a, tea.Quit
	case key.Matches(msg, ui.Keys.Help):
		a.showHelp = true
		return &a, nil
	case key.Matches(msg, ui.Keys.Tab), key.Matches(msg, ui.Keys.ShiftTab):
		a.setFocus(1 - a.focusedPane)
		return &a, nil
	case key.Matches(msg, ui.Keys.Back):
		if a.focusedPane == PaneResults {
			a.setFocus(PaneJobs)
		}
		return &a, nil
	case key.Matches(msg, ui.Keys.Cache):
		if a.resultCache == nil {
			a.status = "Result cache is disabled"
			return &a, nil
		}
		a.showCache = true
		a.cacheView.SetLoading()
		return &a, a.loadCacheEntries()
	case key.Matches(msg, ui.Keys.NewJob):
		a.form.SetSize(a.width, a.height)
		return &a, a.form.Open()
	case key.Matches(msg, ui.Keys.Theme):
		next, err := prefs.ToggleTheme(a.prefs, a.theme)
		a.theme = next
		ui.SetTheme(next == prefs.ThemeDark)
		a.propagateSize()
		if err != nil {
			a.log.Warn("save theme preference", "error", err)
			a.status = "Theme not saved: " + err.Error()
		} else {
			a.status = "Theme: " + string(next)
		}
		return &a, nil
	case key.Matches(msg, ui.Keys.Refresh):
		cmds := []tea.Cmd{a.refreshJobs()}
		if id := a.resultsView.JobID(); id != "" && a.focusedPane == PaneResults {
			cmds = append(cmds, a.loadResults(id))
		}
		a.status = "Refreshing..."
		return &a, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	if a.focusedPane == PaneResults {
		a.resultsView, cmd = a.resultsView.Update(msg)
	} else {
		a.jobsView, cmd = a.jobsView.Update(msg)
	}
	return &a, cmd
}

// followActiveJob reloads the results pane once its job reaches a terminal
// state, so a running job's results appear without another selection.
func (a *App) followActiveJob() tea.Cmd {
	id := a.resultsView.JobID()
	if id == "" {
		return nil
	}
	j := a.jobsView.JobByID(id)
	if j == nil {
		return nil
	}
	prev := a.activeStatus
	a.activeStatus = j.Status
	if prev == "" || prev.Terminal() || !j.Status.Terminal() {
		return nil
	}
	a.log.Info("active job finished", "job", id, "status", string(j.Status))
	return a.loadResults(id)
}

func (a *App) setFocus(p Pane) {
	a.focusedPane = p
	if p == PaneResults {
		a.resultsView.Focus()
	} else {
		a.resultsView.Blur()
	}
}

func (a *App) propagateSize() {
	// header(1) + status(1) = 2 lines of chrome, pane borders 2 more.
	contentH := max(a.height-4, 1)

	// 2-pane layout: each border = 2 chars horizontal, 2 panes = 4
	leftW := a.width * 35 / 100
	rightW := max(a.width-leftW-4, 1)

	a.jobsView, _ = a.jobsView.Update(
		tea.WindowSizeMsg{Width: leftW, Height: contentH})
	a.resultsView, _ = a.resultsView.Update(
		tea.WindowSizeMsg{Width: rightW, Height: contentH})
	a.cacheView, _ = a.cacheView.Update(
		tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
	a.detailView.SetSize(a.width, a.height-2)
	a.confirmDialog.SetSize(a.width, a.height-2)
	a.form.SetSize(a.width, a.height-2)
}

// --- View ---

func (a App) View() string {
	header := RenderHeader(a.client.BaseURL(), a.theme, a.width)

	var content string
	switch {
	case a.confirmDialog.IsActive():
		content = a.confirmDialog.View()
	case a.showHelp:
		content = a.renderHelp()
	case a.form.IsActive():
		content = a.form.View()
	case a.detailView.IsOpen():
		content = a.detailView.View()
	case a.showCache:
		contentH := max(a.height-4, 1)
		content = ui.StylePaneFocused.Width(max(a.width-2, 1)).Height(contentH).Render(a.cacheView.View())
	default:
		content = a.renderPanes()
	}

	statusBar := RenderStatusBar(a.status, a.contextHints(), a.width)

	// Hard clamp: header(1) + statusbar(1) = 2 lines of chrome.
	if maxLines := a.height - 2; maxLines > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > maxLines {
			content = strings.Join(lines[:maxLines], "\n")
		}
	}

	return header + "\n" + content + "\n" + statusBar
}

func (a App) renderPanes() string {
	contentH := max(a.height-4, 1)
	leftW := a.width * 35 / 100
	rightW := max(a.width-leftW-4, 1)

	leftStyle, rightStyle := ui.StylePane, ui.StylePane
	if a.focusedPane == PaneJobs {
		leftStyle = ui.StylePaneFocused
	} else {
		rightStyle = ui.StylePaneFocused
	}

	left := leftStyle.Width(leftW).Height(contentH).Render(a.jobsView.View())
	right := rightStyle.Width(rightW).Height(contentH).Render(a.resultsView.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (a App) contextHints() string {
	var bindings []key.Binding
	switch {
	case a.form.IsActive(), a.detailView.IsOpen(), a.confirmDialog.IsActive():
		return ""
	case a.showCache:
		bindings = a.cacheView.ShortHelp()
	case a.showHelp:
		bindings = []key.Binding{ui.Keys.Back}
	case a.focusedPane == PaneResults:
		bindings = append(a.resultsView.ShortHelp(), ui.Keys.Tab, ui.Keys.Help)
	default:
		bindings = append(a.jobsView.ShortHelp(), ui.Keys.NewJob, ui.Keys.Tab, ui.Keys.Help)
	}
	return a.help.ShortHelpView(bindings)
}

func (a App) renderHelp() string {
	contentH := max(a.height-4, 1)
	title := ui.StyleTitle.Render("Keys")
	body := lipgloss.JoinVertical(lipgloss.Left, title, "", a.help.FullHelpView(ui.Keys.FullHelp()))
	return ui.StylePaneFocused.Width(max(a.width-2, 1)).Height(contentH).Padding(1, 2).Render(body)
}
