package lesson

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingo/internal/explain"
	engine "github.com/abhisek/lingo/internal/lesson"
	"github.com/abhisek/lingo/internal/llm"
	"github.com/abhisek/lingo/internal/logging"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/store"
)

const testUser = "learner"

func testDeps(t *testing.T) screen.Deps {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := store.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if _, err := st.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	courses, err := st.Courses(ctx)
	if err != nil {
		t.Fatalf("Courses: %v", err)
	}
	for _, c := range courses {
		if c.Title == "Spanish" {
			if err := st.SelectCourse(ctx, testUser, c.ID); err != nil {
				t.Fatalf("SelectCourse: %v", err)
			}
		}
	}
	return screen.Deps{Store: st, UserID: testUser, Logger: logging.Discard()}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// deliver runs cmd and feeds its message back to the screen.
func deliver(s *LessonScreen, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	_, next := s.Update(cmd())
	return next
}

func press(s *LessonScreen, k tea.KeyPressMsg) tea.Cmd {
	_, cmd := s.Update(k)
	return cmd
}

func loadedScreen(t *testing.T, deps screen.Deps, lessonID int) *LessonScreen {
	t.Helper()
	s := New(deps, lessonID)
	deliver(s, s.Init())
	if s.session == nil {
		t.Fatalf("session not loaded: %s", s.errMsg)
	}
	return s
}

// answer picks option n (1-based), confirms and persists the answer event.
func answer(t *testing.T, s *LessonScreen, n rune) engine.Outcome {
	t.Helper()
	press(s, keyPress(n))
	cmd := press(s, specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a confirm command")
	}
	msg, ok := cmd().(confirmedMsg)
	if !ok {
		t.Fatal("expected confirmedMsg")
	}
	_, next := s.Update(msg)
	if next != nil && (msg.Outcome == engine.OutcomeCorrect || msg.Outcome == engine.OutcomeWrong) {
		next()
	}
	return msg.Outcome
}

// proceed presses Enter on a revealed answer.
func proceed(t *testing.T, s *LessonScreen) engine.Outcome {
	t.Helper()
	msg := press(s, specialKey(tea.KeyEnter))().(confirmedMsg)
	next := deliver(s, func() tea.Msg { return msg })
	if next != nil && msg.Outcome == engine.OutcomeAdvanced {
		next()
	}
	return msg.Outcome
}

func TestLessonScreen_LoadsActiveLesson(t *testing.T) {
	s := loadedScreen(t, testDeps(t), 0)

	if s.Title() != "Nouns" {
		t.Errorf("Title = %q, want %q", s.Title(), "Nouns")
	}
	if s.session.Total() != 3 {
		t.Errorf("Total = %d, want 3", s.session.Total())
	}
	if got := len(s.options.Labels); got != 3 {
		t.Errorf("options = %d, want 3", got)
	}
	if st := s.Status(); st == nil || st.Hearts != engine.MaxHearts {
		t.Errorf("Status = %+v, want %d hearts", st, engine.MaxHearts)
	}
	if !strings.Contains(s.View(100, 30), `Which one of these is "the man"?`) {
		t.Error("expected question in view")
	}
}

func TestLessonScreen_NoCourse(t *testing.T) {
	deps := testDeps(t)
	deps.UserID = "someone-else"
	s := New(deps, 0)
	deliver(s, s.Init())

	if s.errMsg == "" {
		t.Fatal("expected an error message")
	}
	msg := press(s, keyPress('x'))()
	if _, ok := msg.(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", msg)
	}
}

func TestLessonScreen_EnterSelectsCursorFirst(t *testing.T) {
	s := loadedScreen(t, testDeps(t), 0)

	press(s, keyPress('j'))
	if cmd := press(s, specialKey(tea.KeyEnter)); cmd != nil {
		t.Error("first Enter should only select")
	}
	if _, ok := s.session.Selected(); !ok {
		t.Fatal("expected a selection")
	}
	if s.options.Selected != 1 {
		t.Errorf("options.Selected = %d, want 1", s.options.Selected)
	}
}

func TestLessonScreen_CorrectThenNext(t *testing.T) {
	s := loadedScreen(t, testDeps(t), 0)

	if got := answer(t, s, '1'); got != engine.OutcomeCorrect {
		t.Fatalf("outcome = %v, want correct", got)
	}
	if s.points != engine.PointsPerChallenge {
		t.Errorf("points = %d, want %d", s.points, engine.PointsPerChallenge)
	}
	if !strings.Contains(s.View(100, 30), "Nicely done!") {
		t.Error("expected correct footer")
	}

	if got := proceed(t, s); got != engine.OutcomeAdvanced {
		t.Fatalf("outcome = %v, want advanced", got)
	}
	if s.session.ActiveIndex() != 1 {
		t.Errorf("ActiveIndex = %d, want 1", s.session.ActiveIndex())
	}
	if s.options.Selected != -1 {
		t.Error("expected a fresh option list")
	}
	// ASSIST challenge: fixed title with the prompt in a bubble.
	if !strings.Contains(s.View(100, 30), "Select the correct meaning") {
		t.Error("expected ASSIST title")
	}
}

func TestLessonScreen_SecondEnterWhileConfirming(t *testing.T) {
	s := loadedScreen(t, testDeps(t), 0)

	press(s, keyPress('1'))
	first := press(s, specialKey(tea.KeyEnter))
	if first == nil {
		t.Fatal("expected a confirm command")
	}
	if second := press(s, specialKey(tea.KeyEnter)); second != nil {
		t.Fatal("second Enter issued another command before the first resolved")
	}

	deliver(s, first)
	if s.session.Status() != engine.StatusCorrect {
		t.Errorf("Status = %v, want correct", s.session.Status())
	}
	if s.session.ActiveIndex() != 0 {
		t.Errorf("ActiveIndex = %d, want 0", s.session.ActiveIndex())
	}
	if got := proceed(t, s); got != engine.OutcomeAdvanced {
		t.Errorf("outcome = %v, want advanced", got)
	}
}

func TestLessonScreen_WrongThenRetry(t *testing.T) {
	s := loadedScreen(t, testDeps(t), 0)

	if got := answer(t, s, '2'); got != engine.OutcomeWrong {
		t.Fatalf("outcome = %v, want wrong", got)
	}
	if s.session.Hearts() != engine.MaxHearts-1 {
		t.Errorf("Hearts = %d, want %d", s.session.Hearts(), engine.MaxHearts-1)
	}
	if s.actionLabel() != "Retry" {
		t.Errorf("action = %q, want Retry", s.actionLabel())
	}

	if got := proceed(t, s); got != engine.OutcomeRetry {
		t.Fatalf("outcome = %v, want retry", got)
	}
	if s.session.Status() != engine.StatusNone || s.options.Reveal != 0 {
		t.Error("expected the challenge to reset")
	}

	up, err := s.deps.Store.UserProgress(context.Background(), testUser)
	if err != nil {
		t.Fatal(err)
	}
	if up.Hearts != engine.MaxHearts-1 {
		t.Errorf("stored hearts = %d, want %d", up.Hearts, engine.MaxHearts-1)
	}
}

func TestLessonScreen_HeartsGate(t *testing.T) {
	s := loadedScreen(t, testDeps(t), 0)

	for i := 0; i < engine.MaxHearts; i++ {
		if got := answer(t, s, '2'); got != engine.OutcomeWrong {
			t.Fatalf("wrong #%d: outcome = %v", i+1, got)
		}
		proceed(t, s)
	}
	if got := answer(t, s, '2'); got != engine.OutcomeGated {
		t.Fatalf("outcome = %v, want gated", got)
	}
	if s.modal != modalHearts {
		t.Fatal("expected hearts modal")
	}
	if !strings.Contains(s.View(100, 30), "You ran out of hearts!") {
		t.Error("expected hearts modal view")
	}

	// No points yet: the refill fails and the modal stays.
	msg := press(s, keyPress('r'))()
	if _, ok := msg.(refilledMsg); !ok {
		t.Fatalf("expected refilledMsg, got %T", msg)
	}
	s.Update(msg)
	if s.modal != modalHearts || s.toast == "" {
		t.Error("expected modal to stay with a toast")
	}

	press(s, specialKey(tea.KeyEscape))
	if s.modal != modalNone {
		t.Error("expected Esc to close the hearts modal")
	}
}

func TestLessonScreen_RefillReloads(t *testing.T) {
	deps := testDeps(t)
	s := loadedScreen(t, deps, 0)

	// Earn points on the first challenge, then burn every heart.
	answer(t, s, '1')
	proceed(t, s)
	for i := 0; i < engine.MaxHearts; i++ {
		answer(t, s, '2')
		proceed(t, s)
	}
	answer(t, s, '2')
	if s.modal != modalHearts {
		t.Fatal("expected hearts modal")
	}

	reload := deliver(s, press(s, keyPress('r')))
	if reload == nil {
		t.Fatal("expected a reload after refill")
	}
	deliver(s, reload)

	if s.modal != modalNone {
		t.Error("expected modal closed")
	}
	if s.session.Hearts() != engine.MaxHearts {
		t.Errorf("Hearts = %d, want %d", s.session.Hearts(), engine.MaxHearts)
	}
	if s.session.ActiveIndex() != 1 {
		t.Errorf("ActiveIndex = %d, want 1 (completed challenge skipped)", s.session.ActiveIndex())
	}
}

func TestLessonScreen_ExitModal(t *testing.T) {
	s := loadedScreen(t, testDeps(t), 0)

	press(s, specialKey(tea.KeyEscape))
	if s.modal != modalExit {
		t.Fatal("expected exit modal")
	}
	if !strings.Contains(s.View(100, 30), "Wait, don't go!") {
		t.Error("expected exit modal text")
	}

	press(s, keyPress('n'))
	if s.modal != modalNone {
		t.Fatal("expected modal dismissed")
	}

	press(s, specialKey(tea.KeyEscape))
	if cmd := press(s, keyPress('y')); cmd == nil {
		t.Error("expected a command after leaving")
	}
}

func TestLessonScreen_FinishAndExit(t *testing.T) {
	deps := testDeps(t)
	s := loadedScreen(t, deps, 0)

	for _, n := range []rune{'1', '1', '3'} {
		if got := answer(t, s, n); got != engine.OutcomeCorrect {
			t.Fatalf("outcome = %v, want correct", got)
		}
		proceed(t, s)
	}

	if !s.finished {
		t.Fatal("expected finish view")
	}
	view := s.View(100, 30)
	for _, want := range []string{"Great job!", "★ 30", "♥ 5"} {
		if !strings.Contains(view, want) {
			t.Errorf("finish view missing %q", want)
		}
	}

	msg := press(s, specialKey(tea.KeyEnter))()
	if _, ok := msg.(router.PopToRootMsg); !ok {
		t.Errorf("expected PopToRootMsg, got %T", msg)
	}
	if !s.exited {
		t.Error("expected exit hook to run")
	}

	sessions, err := deps.Store.RecentSessions(context.Background(), testUser, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Action != store.SessionEnd || sessions[0].ChallengesCorrect != 3 {
		t.Errorf("sessions = %+v", sessions)
	}
	total, correct, err := deps.Store.AnswerStats(context.Background(), testUser)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || correct != 3 {
		t.Errorf("answer stats = %d/%d, want 3/3", correct, total)
	}
}

func TestLessonScreen_PracticeModal(t *testing.T) {
	deps := testDeps(t)
	ctx := context.Background()

	p, err := deps.Store.LessonPayload(ctx, testUser, 0)
	if err != nil {
		t.Fatal(err)
	}
	repo := deps.Store.ProgressRepo(testUser)
	for _, c := range p.Challenges {
		if err := repo.CommitCorrect(ctx, c.ID); err != nil {
			t.Fatal(err)
		}
	}

	s := loadedScreen(t, deps, p.LessonID)
	if s.modal != modalPractice {
		t.Fatal("expected practice modal")
	}
	if s.session.Percentage() != 0 {
		t.Errorf("Percentage = %v, want 0", s.session.Percentage())
	}

	press(s, specialKey(tea.KeyEnter))
	if s.modal != modalNone {
		t.Error("expected practice modal dismissed")
	}

	if got := answer(t, s, '2'); got != engine.OutcomeWrong {
		t.Fatalf("outcome = %v, want wrong", got)
	}
	if s.session.Hearts() != engine.MaxHearts {
		t.Errorf("practice should not cost hearts, got %d", s.session.Hearts())
	}
}

func TestLessonScreen_Explain(t *testing.T) {
	deps := testDeps(t)
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: []byte(`{"explanation":"\"el hombre\" is the man.","tip":"hombre, like hombre"}`),
	})
	deps.Explainer = explain.NewService(mock, explain.Config{MaxTokens: 200, Timeout: time.Second})
	s := loadedScreen(t, deps, 0)

	if s.canExplain() {
		t.Error("explain should wait for a wrong answer")
	}
	answer(t, s, '2')
	if !s.canExplain() {
		t.Fatal("expected explain to be available")
	}

	deliver(s, press(s, keyPress('e')))
	if s.explanation == nil {
		t.Fatal("expected an explanation")
	}
	if !strings.Contains(s.View(100, 40), "is the man.") {
		t.Error("expected explanation in view")
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "Learner chose: la mujer") {
		t.Error("expected chosen option in prompt")
	}

	proceed(t, s)
	if s.explanation != nil {
		t.Error("retry should clear the explanation")
	}
}
