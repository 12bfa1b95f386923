package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scrapedash/scrapedash/internal/api"
	"github.com/scrapedash/scrapedash/internal/cache"
	"github.com/scrapedash/scrapedash/internal/config"
	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/prefs"
	"github.com/scrapedash/scrapedash/internal/testutil"
	"github.com/scrapedash/scrapedash/internal/tui/jobform"
	"github.com/scrapedash/scrapedash/internal/ui"
)

type fakeBrowser struct {
	opened []string
}

func (f *fakeBrowser) Browse(url string) error {
	f.opened = append(f.opened, url)
	return nil
}

func newTestApp(t *testing.T, b *testutil.Backend) App {
	t.Helper()
	cfg := config.Default()
	cfg.APIURL = b.URL()
	cfg.PollInterval = time.Hour
	cfg.RetryDelay = time.Millisecond
	cfg.ExportDir = t.TempDir()

	rc, err := cache.NewResultCache(t.TempDir(), 10, time.Hour)
	if err != nil {
		t.Fatalf("failed to create result cache: %v", err)
	}
	store := prefs.NewStore(filepath.Join(t.TempDir(), "preferences.json"))

	app := NewApp(cfg, api.NewClient(cfg.APIURL), rc, store, prefs.ThemeLight, nil)
	m, _ := app.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return *m.(*App)
}

func update(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := app.Update(msg)
	return *m.(*App), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestJobsLoadSortedNewestFirst(t *testing.T) {
	b := testutil.NewBackend(t)
	now := time.Now().UTC()
	b.AddJob(testutil.FakeJob{ID: "old", Location: "Rome", CreatedAt: now.Add(-time.Hour).Format("2006-01-02 15:04:05.000000-07:00")})
	b.AddJob(testutil.FakeJob{ID: "new", Location: "Oslo", CreatedAt: now.Format("2006-01-02 15:04:05.000000-07:00")})

	app := newTestApp(t, b)
	app, _ = update(t, app, app.fetchJobs(1)())

	got := app.jobsView.Jobs()
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Fatalf("jobs = %+v", got)
	}
	if !strings.Contains(app.View(), "Oslo") {
		t.Error("view should list the loaded jobs")
	}
}

func TestFetchJobsRetriesOnce(t *testing.T) {
	b := testutil.NewBackend(t)
	b.AddJob(testutil.FakeJob{Location: "Lyon"})
	app := newTestApp(t, b)

	b.FailNext(1, 503)
	msg := app.fetchJobs(1)().(ui.JobsLoadedMsg)
	if msg.Err != nil {
		t.Fatalf("expected retry to succeed, got %v", msg.Err)
	}
	if n := b.Hits("/api/jobs"); n != 2 {
		t.Errorf("hits = %d, want 2", n)
	}

	b.FailNext(2, 503)
	msg = app.fetchJobs(2)().(ui.JobsLoadedMsg)
	if msg.Err == nil {
		t.Fatal("expected failure after one retry")
	}
	if n := b.Hits("/api/jobs"); n != 4 {
		t.Errorf("hits = %d, want 4", n)
	}
}

func TestStaleJobsResponseDropped(t *testing.T) {
	b := testutil.NewBackend(t)
	app := newTestApp(t, b)

	fresh := []model.Job{{ID: "a", Status: model.JobStatusPending, CreatedAt: time.Now()}, {ID: "b", Status: model.JobStatusRunning, CreatedAt: time.Now()}}
	app, _ = update(t, app, ui.JobsLoadedMsg{Jobs: fresh, Seq: 3})
	app, _ = update(t, app, ui.JobsLoadedMsg{Jobs: nil, Seq: 2})

	if n := len(app.jobsView.Jobs()); n != 2 {
		t.Errorf("stale response replaced jobs: have %d", n)
	}
}

func TestFailedRefreshKeepsJobs(t *testing.T) {
	b := testutil.NewBackend(t)
	app := newTestApp(t, b)

	app, _ = update(t, app, ui.JobsLoadedMsg{Jobs: []model.Job{{ID: "a", CreatedAt: time.Now()}}, Seq: 1})
	app, _ = update(t, app, ui.JobsLoadedMsg{Seq: 2, Err: api.ErrNetwork})

	if len(app.jobsView.Jobs()) != 1 {
		t.Error("jobs should survive a failed refresh")
	}
	if !strings.Contains(app.jobsView.View(), "Refresh failed") {
		t.Error("failure should be shown inline")
	}
}

func TestSelectJobLoadsAndCachesResults(t *testing.T) {
	b := testutil.NewBackend(t)
	job := b.AddJob(testutil.FakeJob{
		Location: "Porto",
		Status:   "completed",
		Results: []map[string]any{
			{"name": "Casa Azul", "address": "Rua 1", "rating": "4,6", "reviews": "120", "type": "hotel", "phone": "", "website": nil, "emails": "ola@azul.pt"},
			{"name": "Hotel Sol", "address": "Rua 2", "rating": "3,9", "reviews": "40", "type": "hotel", "phone": "", "website": nil, "emails": ""},
		},
	})
	app := newTestApp(t, b)
	app, _ = update(t, app, app.fetchJobs(1)())

	app, cmd := update(t, app, ui.JobSelectedMsg{ID: job.ID})
	if app.focusedPane != PaneResults {
		t.Error("selecting a job should focus the results pane")
	}
	if !app.resultsView.Loading() {
		t.Error("results should be loading")
	}
	msg := cmd().(ui.ResultsLoadedMsg)
	if msg.FromCache {
		t.Fatal("first load must come from the backend")
	}
	app, _ = update(t, app, msg)
	if n := len(app.resultsView.ViewModel().Records()); n != 2 {
		t.Fatalf("records = %d, want 2", n)
	}
	if !strings.Contains(app.View(), "Casa Azul") {
		t.Error("results table should render records")
	}

	hits := b.Hits("/api/jobs/" + job.ID)
	_, cmd = update(t, app, ui.JobSelectedMsg{ID: job.ID})
	msg = cmd().(ui.ResultsLoadedMsg)
	if !msg.FromCache {
		t.Error("completed job should be served from cache")
	}
	if b.Hits("/api/jobs/"+job.ID) != hits {
		t.Error("cache hit should not reach the backend")
	}
}

func TestStaleResultsResponseDropped(t *testing.T) {
	b := testutil.NewBackend(t)
	app := newTestApp(t, b)

	app, _ = update(t, app, ui.JobSelectedMsg{ID: "first"})
	firstSeq := app.resultsSeq
	app, _ = update(t, app, ui.JobSelectedMsg{ID: "second"})

	app, _ = update(t, app, ui.ResultsLoadedMsg{JobID: "first", Seq: firstSeq, Results: []model.Result{{Name: "Late"}}})
	if app.resultsView.JobID() != "second" {
		t.Fatalf("job = %q", app.resultsView.JobID())
	}
	if !app.resultsView.Loading() {
		t.Error("late response for an old job must not finish the current load")
	}
	if len(app.resultsView.ViewModel().Records()) != 0 {
		t.Error("late response leaked into the current job")
	}
}

func TestSubmitJobShowsPending(t *testing.T) {
	b := testutil.NewBackend(t)
	app := newTestApp(t, b)

	app, _ = update(t, app, runes("n"))
	if !app.form.IsActive() {
		t.Fatal("n should open the job form")
	}

	req := model.ScrapeRequest{Location: "Paris", Radius: 10, Type: model.JobTypeBoth}
	app, cmd := update(t, app, jobform.SubmitMsg{Request: req})
	created := cmd().(ui.JobCreatedMsg)
	if created.Err != nil {
		t.Fatalf("create: %v", created.Err)
	}

	app, cmd = update(t, app, created)
	if app.form.IsActive() {
		t.Error("form should close after a successful submit")
	}
	app, _ = update(t, app, cmd())

	jobs := app.jobsView.Jobs()
	if len(jobs) != 1 || jobs[0].Location != "Paris" || jobs[0].Status != model.JobStatusPending {
		t.Errorf("jobs = %+v", jobs)
	}
}

func TestThemeTogglePersists(t *testing.T) {
	t.Cleanup(func() { ui.SetTheme(false) })
	b := testutil.NewBackend(t)
	app := newTestApp(t, b)

	app, _ = update(t, app, runes("t"))
	if app.theme != prefs.ThemeDark || !ui.Dark() {
		t.Fatalf("theme = %s, dark = %v", app.theme, ui.Dark())
	}
	stored, ok, err := app.prefs.Theme()
	if err != nil || !ok || stored != prefs.ThemeDark {
		t.Errorf("stored = %s %v %v", stored, ok, err)
	}

	app, _ = update(t, app, runes("t"))
	if stored, _, _ := app.prefs.Theme(); stored != prefs.ThemeLight {
		t.Errorf("stored after second toggle = %s", stored)
	}
}

func TestDetailOpensMailLinkAndCloses(t *testing.T) {
	b := testutil.NewBackend(t)
	app := newTestApp(t, b)
	fb := &fakeBrowser{}
	app.SetBrowser(fb)

	app, _ = update(t, app, ui.ResultSelectedMsg{Result: model.Result{Name: "Inn", Emails: "desk@inn.example, logo.png"}})
	if !app.detailView.IsOpen() {
		t.Fatal("detail should open")
	}

	app, cmd := update(t, app, runes("1"))
	app, cmd = update(t, app, cmd())
	app, _ = update(t, app, cmd())
	if len(fb.opened) != 1 || fb.opened[0] != "mailto:desk@inn.example" {
		t.Errorf("opened = %v", fb.opened)
	}

	app, cmd = update(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	app, _ = update(t, app, cmd())
	if app.detailView.IsOpen() {
		t.Error("detail should close after esc")
	}
}

func TestActiveJobReloadsWhenFinished(t *testing.T) {
	b := testutil.NewBackend(t)
	app := newTestApp(t, b)
	created := time.Now()

	app, _ = update(t, app, ui.JobsLoadedMsg{Jobs: []model.Job{{ID: "j", Status: model.JobStatusRunning, CreatedAt: created}}, Seq: 1})
	app, _ = update(t, app, ui.JobSelectedMsg{ID: "j"})
	seq := app.resultsSeq

	app, cmd := update(t, app, ui.JobsLoadedMsg{Jobs: []model.Job{{ID: "j", Status: model.JobStatusCompleted, CreatedAt: created}}, Seq: 2})
	if cmd == nil || app.resultsSeq != seq+1 || !app.resultsView.Loading() {
		t.Error("finished job should trigger a results reload")
	}

	app, _ = update(t, app, ui.JobsLoadedMsg{Jobs: []model.Job{{ID: "j", Status: model.JobStatusCompleted, CreatedAt: created}}, Seq: 3})
	if app.resultsSeq != seq+1 {
		t.Error("no reload once the job is already terminal")
	}
}

func TestQuitKey(t *testing.T) {
	b := testutil.NewBackend(t)
	app := newTestApp(t, b)
	_, cmd := update(t, app, runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestClearResultCache(t *testing.T) {
	b := testutil.NewBackend(t)
	job := b.AddJob(testutil.FakeJob{
		Location: "Bergen",
		Status:   "completed",
		Results:  []map[string]any{{"name": "Fjord Hotel", "address": "", "rating": "", "reviews": "", "type": "hotel", "phone": "", "website": nil, "emails": ""}},
	})
	app := newTestApp(t, b)
	app, _ = update(t, app, app.fetchJobs(1)())
	app, cmd := update(t, app, ui.JobSelectedMsg{ID: job.ID})
	app, _ = update(t, app, cmd())
	if !app.resultCache.Has(job.ID) {
		t.Fatal("completed job should be cached")
	}

	app, cmd = update(t, app, runes("c"))
	app, _ = update(t, app, cmd())
	if n := len(app.cacheView.Entries()); n != 1 {
		t.Fatalf("cache entries = %d, want 1", n)
	}

	app, cmd = update(t, app, runes("x"))
	app, _ = update(t, app, cmd())
	if !app.confirmDialog.IsActive() {
		t.Fatal("clearing should ask for confirmation")
	}
	app, cmd = update(t, app, runes("y"))
	app, cmd = update(t, app, cmd())
	app, cmd = update(t, app, cmd())
	app, _ = update(t, app, cmd())

	if app.resultCache.Has(job.ID) {
		t.Error("cache should be empty")
	}
	if n := len(app.cacheView.Entries()); n != 0 {
		t.Errorf("cache view still lists %d entries", n)
	}
	if app.status != "Cleared result cache" {
		t.Errorf("status = %q", app.status)
	}
}
