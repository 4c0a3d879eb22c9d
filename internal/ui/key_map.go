package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	submit  key.Binding
	voice   key.Binding
	lang    key.Binding
	toggle  key.Binding
	next    key.Binding
	prev    key.Binding
	forward key.Binding
	rewind  key.Binding
	louder  key.Binding
	quieter key.Binding
	shuffle key.Binding
	repeat  key.Binding
	like    key.Binding
	export  key.Binding
	open    key.Binding
	choose  key.Binding
	search  key.Binding
	retry   key.Binding
	back    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "discover")),
		voice:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "speak")),
		lang:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "language")),
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		forward: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+5s")),
		rewind:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-5s")),
		louder:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "louder")),
		quieter: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "quieter")),
		shuffle: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		repeat:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		like:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		choose:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "new search")),
		retry:   key.NewBinding(key.WithKeys("enter", "r"), key.WithHelp("enter", "retry")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// idleQuit excludes q, which the text input needs.
var idleQuit = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit"))

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.next, k.export, k.search, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.next, k.prev, k.choose},
		{k.forward, k.rewind, k.louder, k.quieter},
		{k.shuffle, k.repeat, k.like},
		{k.export, k.open, k.search, k.quit},
	}
}
