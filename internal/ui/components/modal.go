package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for cards and modals.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Modal renders a centered dialog with a title, body text and action lines.
func Modal(title, body string, actions []string, width, height int) string {
	cw := ContentWidth(width)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(cw - 8).Render(body))
	if len(actions) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(actions, "\n"))
	}

	box := theme.Modal.
		Width(cw).
		Align(lipgloss.Center).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// Card wraps content in a rounded-border card at the given content width.
func Card(title, value string, accent lipgloss.Style, cw int) string {
	content := lipgloss.NewStyle().Foreground(theme.TextDim).Render(title) + "\n" +
		accent.Bold(true).Render(value)
	return theme.Card.
		Width(cw).
		Align(lipgloss.Center).
		Render(content)
}

// Toast renders a one-line notice.
func Toast(msg string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Toast.Render(msg))
}
