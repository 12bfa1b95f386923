package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Tab       key.Binding
	ShiftTab  key.Binding
	Enter     key.Binding
	Back      key.Binding
	Refresh   key.Binding
	Search    key.Binding
	NewJob    key.Binding
	Theme     key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Sort      key.Binding
	ClearSort key.Binding
	PageSize  key.Binding
	Export    key.Binding
	Website   key.Binding
	Cache     key.Binding
}

var Keys = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
	ShiftTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev pane")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	NewJob:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new job")),
	Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/left", "left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/right", "right")),
	PrevPage:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
	NextPage:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
	Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
	ClearSort: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "clear sort")),
	PageSize:  key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "rows per page")),
	Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export csv")),
	Website:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "open website")),
	Cache:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "result cache")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Search, k.Sort, k.Export, k.Theme, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.NewJob, k.Refresh, k.Theme, k.Cache},
		{k.Up, k.Down, k.Left, k.Right, k.Enter, k.Back},
		{k.Search, k.Sort, k.ClearSort, k.PrevPage, k.NextPage, k.PageSize},
		{k.Export, k.Website, k.Help, k.Quit},
	}
}
