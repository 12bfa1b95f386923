package cacheview

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/scrapedash/scrapedash/internal/cache"
	"github.com/scrapedash/scrapedash/internal/ui"
)

// DeleteRequestMsg asks the parent to confirm removing one cached job.
type DeleteRequestMsg struct {
	Entry cache.CacheEntry
}

// ClearRequestMsg asks the parent to confirm removing every cached job.
type ClearRequestMsg struct {
	Count int
}

type CloseMsg struct{}

type cacheItem struct {
	entry cache.CacheEntry
	now   time.Time
}

func (c cacheItem) Title() string {
	name := c.entry.Location
	if name == "" {
		name = c.entry.JobID
	}
	size := ui.StyleWarning.Render(formatSize(c.entry.Size))
	return fmt.Sprintf("%s  %s", name, size)
}

func (c cacheItem) Description() string {
	parts := []string{}
	if c.entry.Type != "" {
		parts = append(parts, ui.StyleInfo.Render(c.entry.Type))
	}
	parts = append(parts, ui.StyleMuted.Render(fmt.Sprintf("%d results", c.entry.Count)))
	if !c.entry.StoredAt.IsZero() {
		parts = append(parts, ui.StyleMuted.Render("cached "+text.RelativeTimeAgo(c.now, c.entry.StoredAt)))
	}
	return strings.Join(parts, "  ")
}

func (c cacheItem) FilterValue() string {
	return c.entry.Location + " " + c.entry.JobID
}

// SortMode determines how cache entries are ordered.
type SortMode int

const (
	SortByStored SortMode = iota
	SortBySize
	SortByLocation
)

func (s SortMode) String() string {
	switch s {
	case SortBySize:
		return "size"
	case SortByLocation:
		return "location"
	default:
		return "cached"
	}
}

// Model lists the job results kept on disk.
type Model struct {
	list     list.Model
	entries  []cache.CacheEntry
	sortMode SortMode
	width    int
	height   int
	loading  bool
	err      error
	now      func() time.Time
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{list: l, loading: true, now: time.Now}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Entries() []cache.CacheEntry { return m.entries }

// SetLoading marks the list stale until the next CacheEntriesLoadedMsg.
func (m *Model) SetLoading() {
	m.loading = true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.CacheEntriesLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.entries = msg.Entries
		m.sortEntries()
		return m, m.list.SetItems(m.buildItems())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve one line for the header.
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "c":
			return m, func() tea.Msg { return CloseMsg{} }
		case "s":
			m.sortMode = (m.sortMode + 1) % 3
			m.sortEntries()
			return m, m.list.SetItems(m.buildItems())
		case "d":
			if e := m.SelectedEntry(); e != nil {
				entry := *e
				return m, func() tea.Msg { return DeleteRequestMsg{Entry: entry} }
			}
			return m, nil
		case "x":
			if n := len(m.entries); n > 0 {
				return m, func() tea.Msg { return ClearRequestMsg{Count: n} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return "\n  Loading cache..."
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v", m.err)
	}
	if len(m.entries) == 0 {
		return "\n  No cached results.\n\n  Results of completed jobs are kept here after you open them."
	}

	var total int64
	for _, e := range m.entries {
		total += e.Size
	}
	header := fmt.Sprintf("  %d jobs | Total: %s | Sort: %s | s: sort  d: delete  x: clear all  esc: close",
		len(m.entries), formatSize(total), m.sortMode)
	return ui.StyleMuted.Render(header) + "\n" + m.list.View()
}

// SelectedEntry returns the highlighted entry, or nil.
func (m Model) SelectedEntry() *cache.CacheEntry {
	if item, ok := m.list.SelectedItem().(cacheItem); ok {
		return &item.entry
	}
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear all")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

func (m *Model) sortEntries() {
	switch m.sortMode {
	case SortByStored:
		slices.SortStableFunc(m.entries, func(a, b cache.CacheEntry) int {
			return b.StoredAt.Compare(a.StoredAt)
		})
	case SortBySize:
		slices.SortStableFunc(m.entries, func(a, b cache.CacheEntry) int {
			return cmp.Compare(b.Size, a.Size)
		})
	case SortByLocation:
		slices.SortStableFunc(m.entries, func(a, b cache.CacheEntry) int {
			return cmp.Compare(strings.ToLower(a.Location), strings.ToLower(b.Location))
		})
	}
}

func (m Model) buildItems() []list.Item {
	now := m.now()
	items := make([]list.Item, len(m.entries))
	for i, e := range m.entries {
		items[i] = cacheItem{entry: e, now: now}
	}
	return items
}

// formatSize formats a byte count into a human-readable string (KB, MB, GB).
func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
