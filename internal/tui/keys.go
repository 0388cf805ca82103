package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Dec    key.Binding
	Inc    key.Binding
	Add    key.Binding
	Remove key.Binding
	Switch key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Dec: key.NewBinding(
			key.WithKeys("-", "left"),
			key.WithHelp("-", "decrease"),
		),
		Inc: key.NewBinding(
			key.WithKeys("+", "=", "right"),
			key.WithHelp("+", "increase"),
		),
		Add: key.NewBinding(
			key.WithKeys("enter", "a"),
			key.WithHelp("enter/a", "add to cart"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remove"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Dec, k.Inc, k.Add, k.Remove, k.Switch, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Switch},
		{k.Dec, k.Inc, k.Add, k.Remove},
		{k.Quit},
	}
}
