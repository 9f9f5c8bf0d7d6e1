package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	left     key.Binding
	right    key.Binding
	enter    key.Binding
	back     key.Binding
	tab      key.Binding
	toggle   key.Binding
	wishlist key.Binding
	remove   key.Binding
	open     key.Binding
	next     key.Binding
	prev     key.Binding
	reset    key.Binding
	mode     key.Binding
	remember key.Binding
	toHome   key.Binding
	toPop    key.Binding
	toSearch key.Binding
	toWish   key.Binding
	logout   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		wishlist: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wishlist")),
		remove:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "remove")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		reset:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset filters")),
		mode:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "sign in/sign up")),
		remember: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "remember me")),
		toHome:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "home")),
		toPop:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "popular")),
		toSearch: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "search")),
		toWish:   key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "wishlist")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right, k.enter},
		{k.wishlist, k.remove, k.open, k.next, k.prev},
		{k.toHome, k.toPop, k.toSearch, k.toWish, k.logout, k.quit},
	}
}
