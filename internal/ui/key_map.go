package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	next       key.Binding
	prev       key.Binding
	repeat     key.Binding
	results    key.Binding
	marker     key.Binding
	search     key.Binding
	directions key.Binding
	login      key.Binding
	signup     key.Binding
	logout     key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:       key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:       key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		repeat:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "repeat search")),
		results:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "results")),
		marker:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "next marker")),
		search:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new location")),
		directions: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "directions")),
		login:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login")),
		signup:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sign up")),
		logout:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "logout")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.repeat, k.results, k.marker, k.search, k.directions},
		{k.login, k.signup, k.logout, k.quit},
	}
}
