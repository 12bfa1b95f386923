package cacheview

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scrapedash/scrapedash/internal/cache"
	"github.com/scrapedash/scrapedash/internal/ui"
)

func loaded() Model {
	now := time.Now()
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m, _ = m.Update(ui.CacheEntriesLoadedMsg{Entries: []cache.CacheEntry{
		{CacheMeta: cache.CacheMeta{JobID: "a", Location: "Zagreb", Count: 3, StoredAt: now.Add(-time.Hour)}, Size: 900},
		{CacheMeta: cache.CacheMeta{JobID: "b", Location: "Athens", Count: 12, StoredAt: now}, Size: 4096},
	}})
	return m
}

func TestSortModes(t *testing.T) {
	m := loaded()
	if got := m.Entries()[0].JobID; got != "b" {
		t.Errorf("newest first, got %s", got)
	}
	s := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}}
	m, _ = m.Update(s) // size
	if got := m.Entries()[0].JobID; got != "b" {
		t.Errorf("largest first, got %s", got)
	}
	m, _ = m.Update(s) // location
	if got := m.Entries()[0].Location; got != "Athens" {
		t.Errorf("alphabetical, got %s", got)
	}
	if !strings.Contains(m.View(), "Sort: location") {
		t.Error("header should show sort mode")
	}
}

func TestRequests(t *testing.T) {
	m := loaded()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if req, ok := cmd().(DeleteRequestMsg); !ok || req.Entry.JobID != "b" {
		t.Errorf("d -> %#v", cmd())
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if req, ok := cmd().(ClearRequestMsg); !ok || req.Count != 2 {
		t.Errorf("x -> %#v", cmd())
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(CloseMsg); !ok {
		t.Error("esc should close")
	}
}

func TestEmpty(t *testing.T) {
	m := New()
	m, _ = m.Update(ui.CacheEntriesLoadedMsg{})
	if !strings.Contains(m.View(), "No cached results") {
		t.Error(m.View())
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}); cmd != nil {
		t.Error("clear on empty cache should do nothing")
	}
}

func TestFormatSize(t *testing.T) {
	for in, want := range map[int64]string{512: "512 B", 2048: "2.0 KB", 3 << 20: "3.0 MB"} {
		if got := formatSize(in); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", in, got, want)
		}
	}
}
