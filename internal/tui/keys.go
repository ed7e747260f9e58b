package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Tab     key.Binding
	Add     key.Binding
	Done    key.Binding
	Delete  key.Binding
	Restore key.Binding
	Purge   key.Binding
	Sort    key.Binding
	Filter  key.Binding
	Context key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Done:    key.NewBinding(key.WithKeys("x", "enter"), key.WithHelp("x", "toggle done")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "archive")),
	Restore: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore")),
	Purge:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "purge")),
	Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
	Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Context: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "switch context")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh/sync")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}
