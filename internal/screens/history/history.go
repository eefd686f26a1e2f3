package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/store"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

const sessionLimit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionRecord
	Titles   map[int]string // lessonID → title
	Answers  int
	Correct  int
	Err      error
}

// HistoryScreen displays past lesson sessions.
type HistoryScreen struct {
	deps     screen.Deps
	sessions []store.SessionRecord
	titles   map[int]string
	answers  int
	correct  int
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps screen.Deps) *HistoryScreen {
	return &HistoryScreen{
		deps:     deps,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	st, userID := s.deps.Store, s.deps.UserID
	return func() tea.Msg {
		ctx := context.Background()

		sessions, err := st.RecentSessions(ctx, userID, sessionLimit)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		total, correct, err := st.AnswerStats(ctx, userID)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// Titles are cosmetic; a lesson removed by a re-import shows its ID.
		titles := make(map[int]string)
		for _, sess := range sessions {
			if _, ok := titles[sess.LessonID]; ok {
				continue
			}
			if t, err := st.LessonTitle(ctx, sess.LessonID); err == nil {
				titles[sess.LessonID] = t
			}
		}

		return historyLoadedMsg{Sessions: sessions, Titles: titles, Answers: total, Correct: correct}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.titles = msg.Titles
			s.answers, s.correct = msg.Answers, msg.Correct
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) lessonTitle(id int) string {
	if t, ok := s.titles[id]; ok {
		return t
	}
	return fmt.Sprintf("Lesson %d", id)
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No lessons yet. Start learning!")
	}

	var b strings.Builder
	b.WriteString("\n")

	if s.answers > 0 {
		summary := fmt.Sprintf("%d answers  %.0f%% correct",
			s.answers, float64(s.correct)/float64(s.answers)*100)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Subtitle.Render(summary)))
		b.WriteString("\n\n")
	}

	for i, sess := range s.sessions {
		dateStr := sess.Timestamp.Local().Format("Jan 02, 2006")
		durationStr := fmt.Sprintf("%d:%02d", sess.DurationSecs/60, sess.DurationSecs%60)

		outcome := "finished"
		if sess.Action == store.SessionQuit {
			outcome = "quit"
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %-20s  %d/%d correct  %s",
			prefix, dateStr, durationStr, s.lessonTitle(sess.LessonID),
			sess.ChallengesCorrect, sess.ChallengesTotal, outcome)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %d wrong answers  ♥ %d left", sess.WrongAnswers, sess.HeartsLeft)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
