package jobs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/ui"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func job(id string, minutes int) model.Job {
	return model.Job{
		ID:        id,
		Location:  "City " + id,
		Radius:    5,
		Status:    model.JobStatusPending,
		Type:      model.JobTypeBoth,
		CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
	}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loaded(t *testing.T, pageSize int, jobs ...model.Job) Model {
	t.Helper()
	m := New(pageSize)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m, _ = m.Update(ui.JobsLoadedMsg{Jobs: jobs})
	return m
}

func TestJobsSortedNewestFirst(t *testing.T) {
	m := loaded(t, 10, job("a", 1), job("b", 3), job("c", 2))
	var ids []string
	for _, j := range m.PageJobs() {
		ids = append(ids, j.ID)
	}
	if strings.Join(ids, ",") != "b,c,a" {
		t.Errorf("order = %v", ids)
	}
	if m.SelectedJob().ID != "b" {
		t.Errorf("cursor on %s, want b", m.SelectedJob().ID)
	}
}

func TestPaging(t *testing.T) {
	var jobs []model.Job
	for i := 0; i < 25; i++ {
		jobs = append(jobs, job(fmt.Sprint(i), i))
	}
	m := loaded(t, 10, jobs...)
	if m.PageCount() != 3 {
		t.Fatalf("PageCount = %d", m.PageCount())
	}
	m, _ = m.Update(runeKey('l'))
	m, _ = m.Update(runeKey('l'))
	m, _ = m.Update(runeKey('l'))
	if m.Page() != 3 || len(m.PageJobs()) != 5 {
		t.Errorf("page=%d items=%d", m.Page(), len(m.PageJobs()))
	}
	if m.SelectedJob().ID != "4" {
		t.Errorf("first job on last page = %s, want 4", m.SelectedJob().ID)
	}
	m, _ = m.Update(runeKey('h'))
	if m.Page() != 2 {
		t.Errorf("page after h = %d", m.Page())
	}
}

func TestEnterEmitsSelection(t *testing.T) {
	m := loaded(t, 10, job("a", 1), job("b", 2))
	m, _ = m.Update(runeKey('j'))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(ui.JobSelectedMsg)
	if !ok || msg.ID != "a" {
		t.Fatalf("got %#v", msg)
	}
	if m.ActiveID() != "a" {
		t.Errorf("active = %q", m.ActiveID())
	}
}

func TestCursorFollowsJobAcrossRefresh(t *testing.T) {
	m := loaded(t, 10, job("a", 1), job("b", 2))
	m, _ = m.Update(runeKey('j'))
	if m.SelectedJob().ID != "a" {
		t.Fatalf("cursor on %s", m.SelectedJob().ID)
	}
	m, _ = m.Update(ui.JobsLoadedMsg{Jobs: []model.Job{job("a", 1), job("b", 2), job("new", 3)}})
	if m.SelectedJob().ID != "a" {
		t.Errorf("cursor moved to %s after refresh", m.SelectedJob().ID)
	}
}

func TestErrorStates(t *testing.T) {
	m := New(10)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if !strings.Contains(m.View(), "Loading jobs") {
		t.Errorf("view = %q", m.View())
	}

	m, _ = m.Update(ui.JobsLoadedMsg{Err: errors.New("boom")})
	view := m.View()
	if !strings.Contains(view, "boom") || !strings.Contains(view, "backend server is running") {
		t.Errorf("error view = %q", view)
	}

	m, _ = m.Update(ui.JobsLoadedMsg{Jobs: []model.Job{job("a", 1)}})
	m, _ = m.Update(ui.JobsLoadedMsg{Err: errors.New("flaky")})
	view = m.View()
	if !strings.Contains(view, "City a") || !strings.Contains(view, "flaky") {
		t.Errorf("failed refresh should keep jobs visible: %q", view)
	}
}

func TestLabels(t *testing.T) {
	j := job("a", 0)
	if ResultsLabel(j) != "-" {
		t.Errorf("empty label = %q", ResultsLabel(j))
	}
	j.Results = make([]model.Result, 3)
	if ResultsLabel(j) != "3 items" {
		t.Errorf("label = %q", ResultsLabel(j))
	}
	if FormatRadius(7.5) != "7.5" || FormatRadius(10) != "10" {
		t.Error("FormatRadius mismatch")
	}
}
