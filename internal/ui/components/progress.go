package components

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/ui/theme"
)

// eighths are the partial block glyphs, from one eighth to seven eighths.
var eighths = []string{"▏", "▎", "▍", "▌", "▋", "▊", "▉"}

// ProgressBar draws lesson progress with eighth-cell resolution, so short
// lessons still advance visibly on every answer.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

func (p ProgressBar) View() string {
	pct := math.Max(0, math.Min(p.Percent, 100))

	var prefix, suffix string
	if p.Label != "" {
		prefix = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	if p.ShowPercent {
		suffix = lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %3.0f%%", pct))
	}

	cells := max(p.Width-lipgloss.Width(prefix)-lipgloss.Width(suffix), 4)
	units := int(math.Round(float64(cells*8) * pct / 100))
	full, part := units/8, units%8

	var bar strings.Builder
	bar.WriteString(strings.Repeat("█", full))
	used := full
	if part > 0 {
		bar.WriteString(eighths[part-1])
		used++
	}

	return prefix +
		theme.ProgressFilled.Render(bar.String()) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", cells-used)) +
		suffix
}
