package components

import (
	"github.com/abhisek/lingo/internal/ui/theme"
)

// ButtonVariant selects the button colouring.
type ButtonVariant int

const (
	ButtonPrimary ButtonVariant = iota
	ButtonDanger
	ButtonDisabled
)

// Button is a styled, display-only button.
type Button struct {
	Label   string
	Variant ButtonVariant
}

// NewButton creates a new button.
func NewButton(label string, variant ButtonVariant) Button {
	return Button{Label: label, Variant: variant}
}

// View renders the button.
func (b Button) View() string {
	label := " " + b.Label + " "
	switch b.Variant {
	case ButtonDanger:
		return theme.ButtonWrong.Render(label)
	case ButtonDisabled:
		return theme.ButtonInactive.Render(label)
	default:
		return theme.ButtonActive.Render(label)
	}
}
