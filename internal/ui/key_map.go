package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	next     key.Binding
	prev     key.Binding
	submit   key.Binding
	back     key.Binding
	yes      key.Binding
	no       key.Binding
	refresh  key.Binding
	remove   key.Binding
	edit     key.Binding
	home     key.Binding
	profile  key.Binding
	settings key.Binding
	register key.Binding
	logout   key.Binding
	deleteMe key.Binding
	quit     key.Binding
	forceQ   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		remove:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		home:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		profile:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		register: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "register")),
		logout:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
		deleteMe: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "delete account")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		forceQ:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.refresh, k.remove, k.profile, k.settings, k.logout, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.submit, k.back},
		{k.refresh, k.remove, k.edit},
		{k.home, k.profile, k.settings, k.logout, k.quit},
	}
}
