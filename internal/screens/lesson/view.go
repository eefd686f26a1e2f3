package lesson

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	engine "github.com/abhisek/lingo/internal/lesson"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/theme"
)

func (s *LessonScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.session == nil {
		return renderLoading(width)
	}

	switch s.modal {
	case modalExit:
		return components.Modal("Wait, don't go!",
			"You're about to leave the lesson. Are you sure?",
			[]string{
				theme.Incorrect.Render("[Y] End session"),
				theme.Selected.Render("[N] Keep learning"),
			}, width, height)
	case modalHearts:
		return components.Modal("You ran out of hearts!",
			"Get Pro for unlimited hearts, or refill them with points.",
			[]string{
				theme.Correct.Render("[R] Refill hearts (10 points)"),
				lipgloss.NewStyle().Foreground(theme.TextDim).Render("[Esc] No thanks"),
			}, width, height)
	case modalPractice:
		return components.Modal("Practice lesson",
			"Use practice lessons to regain hearts and points. You cannot lose hearts or points in practice lessons.",
			[]string{theme.Correct.Render("[Enter] I understand")}, width, height)
	}

	if s.finished {
		return s.renderFinish(width, height)
	}
	return s.renderChallenge(width)
}

// renderChallenge renders the progress bar, the active challenge and the
// status footer.
func (s *LessonScreen) renderChallenge(width int) string {
	ch, ok := s.session.Current()
	if !ok {
		return ""
	}

	var b strings.Builder

	bar := components.NewProgressBar("", s.session.Percentage(), false, min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	b.WriteString(theme.Title.Width(width).Render(ch.Title()))
	b.WriteString("\n\n")

	if ch.Type == engine.TypeAssist {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Bubble.Render(ch.Question)))
		b.WriteString("\n\n")
	}

	b.WriteString(s.options.View(width))
	b.WriteString("\n")
	b.WriteString(s.renderStatus(width))

	if s.explanation != nil {
		b.WriteString("\n\n")
		b.WriteString(renderExplanation(width, s.explanation.Text, s.explanation.Tip))
	} else if s.explaining {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Width(width).Align(lipgloss.Center).Render("Asking your tutor..."))
	}

	if s.toast != "" {
		b.WriteString("\n\n")
		b.WriteString(components.Toast(s.toast, width))
	}

	return b.String()
}

// renderStatus renders the footer message and action button.
func (s *LessonScreen) renderStatus(width int) string {
	var msg string
	variant := components.ButtonPrimary

	switch s.session.Status() {
	case engine.StatusCorrect:
		msg = theme.Correct.Render("✓ Nicely done!")
	case engine.StatusWrong:
		msg = theme.Incorrect.Render("✗ Try again.")
		variant = components.ButtonDanger
	default:
		if _, ok := s.session.Selected(); !ok {
			variant = components.ButtonDisabled
		}
		if s.session.IsPractice() {
			msg = theme.Hint.Render("Practice: no hearts lost")
		}
	}
	if s.confirming || s.session.Pending() {
		variant = components.ButtonDisabled
	}

	button := components.NewButton(s.actionLabel(), variant).View()
	line := msg
	if line != "" {
		line += "    "
	}
	line += button
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
}

func (s *LessonScreen) renderFinish(width, height int) string {
	sum, ok := s.session.Summary()
	if !ok {
		return ""
	}
	cw := min(components.ContentWidth(width)/2-2, 24)

	hearts := fmt.Sprintf("♥ %d", sum.FinalHearts)
	if s.session.HasActiveSubscription() {
		hearts = "♥ ∞"
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		components.Card("Total XP", fmt.Sprintf("★ %d", sum.TotalPoints), lipgloss.NewStyle().Foreground(theme.Accent), cw),
		"  ",
		components.Card("Hearts Left", hearts, lipgloss.NewStyle().Foreground(theme.Heart), cw),
	)

	var b strings.Builder
	b.WriteString(theme.Title.Foreground(theme.Primary).Width(width).Render("Great job!"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("You've completed the lesson."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, cards))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.NewButton("Continue", components.ButtonPrimary).View()))

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}

func renderExplanation(width int, text, tip string) string {
	body := theme.Body.Render(text)
	if tip != "" {
		body += "\n\n" + theme.Hint.Render("Tip: "+tip)
	}
	box := theme.Card.Width(min(width-8, 70)).Render(body)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}

func renderLoading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Loading lesson...")
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", errMsg))
}
