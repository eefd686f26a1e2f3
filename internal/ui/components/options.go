package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/ui/theme"
)

// Reveal is the answer state an OptionList renders.
type Reveal int

const (
	RevealNone Reveal = iota
	RevealCorrect
	RevealWrong
)

// OptionList renders the answer choices of a challenge. Selection state
// lives with the caller; the list only tracks the keyboard cursor.
type OptionList struct {
	Labels   []string
	Cursor   int
	Selected int // -1 when nothing is selected
	Reveal   Reveal
	Disabled bool
}

// NewOptionList creates an option list with nothing selected.
func NewOptionList(labels []string) OptionList {
	return OptionList{Labels: labels, Selected: -1}
}

// MoveUp moves the cursor up one option.
func (m *OptionList) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

// MoveDown moves the cursor down one option.
func (m *OptionList) MoveDown() {
	if m.Cursor < len(m.Labels)-1 {
		m.Cursor++
	}
}

// View renders the options as numbered cards.
func (m OptionList) View(width int) string {
	cardWidth := min(width-4, 50)
	var b strings.Builder

	for i, label := range m.Labels {
		line := fmt.Sprintf("%d  %s", i+1, label)

		border := theme.Border
		fg := theme.Text
		switch {
		case i == m.Selected && m.Reveal == RevealCorrect:
			border, fg = theme.Success, theme.Success
		case i == m.Selected && m.Reveal == RevealWrong:
			border, fg = theme.Error, theme.Error
		case i == m.Selected:
			border, fg = theme.Secondary, theme.Secondary
		case m.Disabled || m.Reveal != RevealNone:
			fg = theme.TextDim
		case i == m.Cursor:
			border = theme.TextDim
		}

		card := lipgloss.NewStyle().
			Width(cardWidth).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Foreground(fg).
			Bold(i == m.Selected).
			Padding(0, 1).
			Render(line)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
		b.WriteString("\n")
	}

	return b.String()
}
