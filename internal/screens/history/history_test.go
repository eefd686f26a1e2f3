package history

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingo/internal/logging"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/store"
)

func testDeps(t *testing.T) screen.Deps {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := store.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return screen.Deps{Store: st, UserID: "learner", Logger: logging.Discard()}
}

func TestHistory_Empty(t *testing.T) {
	s := New(testDeps(t))
	s.Update(s.Init()())

	assert.True(t, s.loaded)
	assert.Contains(t, s.View(100, 30), "No lessons yet")
}

func TestHistory_ListsSessions(t *testing.T) {
	deps := testDeps(t)
	ctx := context.Background()
	_, err := deps.Store.SeedDefaults(ctx)
	require.NoError(t, err)

	events := deps.Store.EventRepo()
	require.NoError(t, events.AppendSessionEvent(ctx, store.SessionEventData{
		UserID: "learner", SessionID: "s1", LessonID: 999, Action: store.SessionEnd,
		ChallengesTotal: 3, ChallengesCorrect: 3, WrongAnswers: 1, HeartsLeft: 4, DurationSecs: 75,
	}))
	require.NoError(t, events.AppendAnswerEvent(ctx, store.AnswerEventData{
		UserID: "learner", SessionID: "s1", LessonID: 999, ChallengeID: 1, OptionID: 1, Correct: true, Outcome: "correct",
	}))

	s := New(deps)
	s.Update(s.Init()())
	require.Empty(t, s.errMsg)
	require.Len(t, s.sessions, 1)

	view := s.View(120, 30)
	assert.Contains(t, view, "Lesson 999")
	assert.Contains(t, view, "3/3 correct")
	assert.Contains(t, view, "1:15")
	assert.Contains(t, view, "100% correct")
	assert.NotContains(t, view, "wrong answers")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(120, 30), "1 wrong answers")
}

func TestHistory_EscPops(t *testing.T) {
	s := New(testDeps(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(s.Title(), "History"))
}
