package results

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scrapedash/scrapedash/internal/api"
	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/resultview"
	"github.com/scrapedash/scrapedash/internal/ui"
)

func venues(n int) []model.Result {
	rs := make([]model.Result, n)
	for i := range rs {
		rs[i] = model.Result{
			Name:    fmt.Sprintf("Venue %02d", n-i),
			Address: fmt.Sprintf("%d Main St", i),
			Rating:  fmt.Sprintf("%d,5", i%5),
			Type:    "hotel",
			Emails:  "desk@venue.example",
		}
	}
	return rs
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loaded(t *testing.T, records []model.Result) Model {
	t.Helper()
	m := New(resultview.DefaultPageSize, t.TempDir())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 30})
	m.SetJob("j1")
	m.Focus()
	m, _ = m.Update(ui.ResultsLoadedMsg{JobID: "j1", Results: records})
	return m
}

func TestNoJobSelected(t *testing.T) {
	m := New(5, t.TempDir())
	if !strings.Contains(m.View(), "No Job Selected") {
		t.Errorf("view = %q", m.View())
	}
}

func TestLoadAndPaginate(t *testing.T) {
	m := loaded(t, venues(12))
	if !strings.Contains(m.View(), "Showing 1-5 of 12 results") {
		t.Errorf("view = %s", m.View())
	}
	m, _ = m.Update(runeKey(']'))
	if !strings.Contains(m.View(), "Showing 6-10 of 12 results") {
		t.Errorf("after ] view = %s", m.View())
	}
	m, _ = m.Update(runeKey('z'))
	if m.ViewModel().PageSize != 10 || m.ViewModel().Page != 1 {
		t.Errorf("page size cycle: %+v", m.ViewModel().State)
	}
}

func TestStaleResponseIgnored(t *testing.T) {
	m := New(5, t.TempDir())
	m.SetJob("new")
	m, _ = m.Update(ui.ResultsLoadedMsg{JobID: "old", Results: venues(3)})
	if !m.Loading() {
		t.Error("response for another job should not end loading")
	}
}

func TestErrors(t *testing.T) {
	m := New(5, t.TempDir())
	m.SetJob("j1")
	m, _ = m.Update(ui.ResultsLoadedMsg{JobID: "j1", Err: &api.PayloadError{Op: "get", Reason: "results is not an array"}})
	view := m.View()
	if !strings.Contains(view, "No results found in the job data") || !strings.Contains(view, "No hotels found") {
		t.Errorf("malformed view = %q", view)
	}

	m.SetJob("j2")
	m, _ = m.Update(ui.ResultsLoadedMsg{JobID: "j2", Err: errors.New("HTTP 500")})
	if !strings.Contains(m.View(), "Failed to load job data. Please try again later.") {
		t.Errorf("error view = %q", m.View())
	}
}

func TestSearchResetsPageAndFilters(t *testing.T) {
	m := loaded(t, venues(12))
	m, _ = m.Update(runeKey(']'))
	m, _ = m.Update(runeKey('/'))
	if !m.IsSearching() {
		t.Fatal("expected search mode")
	}
	for _, r := range "zz" {
		m, _ = m.Update(runeKey(r))
	}
	if m.ViewModel().Page != 1 {
		t.Errorf("page = %d, want 1", m.ViewModel().Page)
	}
	if !strings.Contains(m.View(), "No results found for your search") {
		t.Errorf("view = %q", m.View())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.IsSearching() {
		t.Error("esc should leave search")
	}
}

func TestSortAndSelect(t *testing.T) {
	m := loaded(t, venues(12))
	m, _ = m.Update(runeKey('s'))
	if s := m.ViewModel().Sort; s == nil || s.Key != model.FieldName || s.Dir != resultview.Asc {
		t.Fatalf("sort = %+v", s)
	}
	m, _ = m.Update(runeKey('j'))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}
	msg, ok := cmd().(ui.ResultSelectedMsg)
	if !ok || msg.Result.Name != "Venue 02" {
		t.Errorf("selected %#v", msg)
	}

	m, _ = m.Update(runeKey('l'))
	m, _ = m.Update(runeKey('l'))
	m, _ = m.Update(runeKey('s'))
	if s := m.ViewModel().Sort; s.Key != model.FieldRating {
		t.Errorf("sort key = %s, want rating", s.Key)
	}
}

func TestExport(t *testing.T) {
	m := loaded(t, venues(12))
	m.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	_, cmd := m.Update(runeKey('e'))
	if cmd == nil {
		t.Fatal("expected export command")
	}
	done, ok := cmd().(ui.ExportDoneMsg)
	if !ok || done.Err != nil {
		t.Fatalf("export = %#v", done)
	}
	if done.Count != 12 || !strings.HasSuffix(done.Path, "hotel-data-j1-2024-01-02T03-04-05-000Z.csv") {
		t.Errorf("export = %#v", done)
	}
	data, err := os.ReadFile(done.Path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(string(data), "\n"); len(lines) != 13 {
		t.Errorf("exported %d lines, want 13", len(lines))
	}

	empty := loaded(t, nil)
	if _, cmd := empty.Update(runeKey('e')); cmd != nil {
		t.Error("exporting nothing should be a no-op")
	}
}
