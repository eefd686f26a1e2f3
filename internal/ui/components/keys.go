package components

import "charm.land/bubbles/v2/key"

// KeyMap is the shared set of bindings used by the screens.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Back    key.Binding
	Pick    key.Binding
	Explain key.Binding
	Refill  key.Binding
	Courses key.Binding
	History key.Binding
	Quit    key.Binding
	Yes     key.Binding
	No      key.Binding
}

// DefaultKeys returns the default bindings.
func DefaultKeys() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "Up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "Down")),
		Confirm: key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("Enter", "Confirm")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Back")),
		Pick:    key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "Pick")),
		Explain: key.NewBinding(key.WithKeys("e"), key.WithHelp("E", "Explain")),
		Refill:  key.NewBinding(key.WithKeys("r"), key.WithHelp("R", "Refill hearts")),
		Courses: key.NewBinding(key.WithKeys("c"), key.WithHelp("C", "Courses")),
		History: key.NewBinding(key.WithKeys("h"), key.WithHelp("H", "History")),
		Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("Q", "Quit")),
		Yes:     key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("Y", "Yes")),
		No:      key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("N", "No")),
	}
}

// PickIndex maps a 1-4 key to a zero-based option index.
func PickIndex(k string) (int, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '4' {
		return 0, false
	}
	return int(k[0] - '1'), true
}
