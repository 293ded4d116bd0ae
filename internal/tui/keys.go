package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	esc     key.Binding
	tab     key.Binding
	quit    key.Binding
	abort   key.Binding
	refresh key.Binding
	newItem key.Binding
	copy    key.Binding
	accept  key.Binding
	ready   key.Binding
	deliver key.Binding
	cancel  key.Binding
	yes     key.Binding
	no      key.Binding
}

var keys = keyMap{
	up:      key.NewBinding(key.WithKeys("up", "k")),
	down:    key.NewBinding(key.WithKeys("down", "j")),
	enter:   key.NewBinding(key.WithKeys("enter")),
	esc:     key.NewBinding(key.WithKeys("esc")),
	tab:     key.NewBinding(key.WithKeys("tab")),
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	// abort leaves plain letters free for text inputs
	abort:   key.NewBinding(key.WithKeys("ctrl+c", "esc")),
	refresh: key.NewBinding(key.WithKeys("r")),
	newItem: key.NewBinding(key.WithKeys("n")),
	copy:    key.NewBinding(key.WithKeys("c")),
	accept:  key.NewBinding(key.WithKeys("a")),
	ready:   key.NewBinding(key.WithKeys("l")),
	deliver: key.NewBinding(key.WithKeys("e")),
	cancel:  key.NewBinding(key.WithKeys("x")),
	yes:     key.NewBinding(key.WithKeys("y")),
	no:      key.NewBinding(key.WithKeys("n")),
}
