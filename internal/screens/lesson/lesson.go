package lesson

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/lingo/internal/explain"
	engine "github.com/abhisek/lingo/internal/lesson"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/store"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
)

// modal is the overlay currently covering the lesson.
type modal int

const (
	modalNone     modal = iota
	modalExit           // leave-lesson confirmation
	modalHearts         // out of hearts
	modalPractice       // replaying a finished lesson
)

const toastDuration = 3 * time.Second

const genericError = "Something went wrong. Please try again."

// LessonScreen is the shell around a lesson session: it renders the
// engine's state, turns keys into Select and Confirm calls and runs
// commits off the UI goroutine.
type LessonScreen struct {
	deps     screen.Deps
	lessonID int
	keys     components.KeyMap

	session   *engine.Session
	sessionID string
	title     string
	course    string
	points    int
	started   time.Time
	correct   int
	wrong     int

	options components.OptionList
	modal   modal

	// confirming is set as soon as a Confirm command is issued, before the
	// engine marks its commit pending on the command goroutine.
	confirming bool

	// practiceSeen keeps the practice notice from reopening after a
	// refill reloads the session.
	practiceSeen bool
	exited       bool
	finished     bool

	explanation *explain.Explanation
	explaining  bool

	toast   string
	toastID int
	errMsg  string
}

var _ screen.Screen = (*LessonScreen)(nil)
var _ screen.KeyHintProvider = (*LessonScreen)(nil)
var _ screen.StatusProvider = (*LessonScreen)(nil)

// New creates a lesson screen. A lessonID of 0 plays the active lesson of
// the learner's current course.
func New(deps screen.Deps, lessonID int) *LessonScreen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &LessonScreen{
		deps:     deps,
		lessonID: lessonID,
		keys:     components.DefaultKeys(),
	}
}

func (s *LessonScreen) Init() tea.Cmd {
	return s.loadPayload()
}

func (s *LessonScreen) Title() string {
	if s.title == "" {
		return "Lesson"
	}
	return s.title
}

func (s *LessonScreen) Status() *layout.Status {
	if s.session == nil {
		return nil
	}
	return &layout.Status{
		Hearts:    s.session.Hearts(),
		Unlimited: s.session.HasActiveSubscription(),
		Points:    s.points,
	}
}

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.session == nil:
		return nil
	case s.modal == modalExit:
		return []layout.KeyHint{{Key: "Y", Description: "End session"}, {Key: "N", Description: "Keep learning"}}
	case s.modal == modalHearts:
		return []layout.KeyHint{{Key: "R", Description: "Refill hearts"}, {Key: "Esc", Description: "No thanks"}}
	case s.modal == modalPractice:
		return []layout.KeyHint{{Key: "Enter", Description: "I understand"}}
	case s.finished:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	}

	hints := []layout.KeyHint{
		{Key: "1-4", Description: "Select"},
		{Key: "Enter", Description: s.actionLabel()},
	}
	if s.canExplain() {
		hints = append(hints, layout.KeyHint{Key: "E", Description: "Explain"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

// actionLabel is the footer button text for the current status.
func (s *LessonScreen) actionLabel() string {
	switch s.session.Status() {
	case engine.StatusCorrect:
		return "Next"
	case engine.StatusWrong:
		return "Retry"
	default:
		return "Check"
	}
}

func (s *LessonScreen) canExplain() bool {
	return s.deps.Explainer != nil && s.session != nil &&
		s.session.Status() == engine.StatusWrong && !s.explaining
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case payloadLoadedMsg:
		return s.handlePayload(msg)
	case confirmedMsg:
		return s.handleConfirmed(msg)
	case refilledMsg:
		return s.handleRefilled(msg)
	case explainedMsg:
		return s.handleExplained(msg)
	case toastExpiredMsg:
		if msg.ID == s.toastID {
			s.toast = ""
		}
		return s, nil
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *LessonScreen) loadPayload() tea.Cmd {
	st, userID, lessonID := s.deps.Store, s.deps.UserID, s.lessonID
	return func() tea.Msg {
		ctx := context.Background()

		p, err := st.LessonPayload(ctx, userID, lessonID)
		if err != nil {
			return payloadLoadedMsg{Err: err}
		}
		title, err := st.LessonTitle(ctx, p.LessonID)
		if err != nil {
			return payloadLoadedMsg{Err: err}
		}
		up, err := st.UserProgress(ctx, userID)
		if err != nil {
			return payloadLoadedMsg{Err: err}
		}

		var course string
		if up.ActiveCourseID != 0 {
			if c, err := st.Course(ctx, up.ActiveCourseID); err == nil {
				course = c.Title
			}
		}
		return payloadLoadedMsg{Payload: p, Title: title, Course: course, Points: up.Points}
	}
}

func (s *LessonScreen) handlePayload(msg payloadLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.deps.Logger.Error("load lesson", "lesson_id", s.lessonID, "error", msg.Err)
		if errors.Is(msg.Err, store.ErrNotFound) {
			s.errMsg = "There is no lesson to play. Pick a course first."
		} else {
			s.errMsg = genericError
		}
		return s, nil
	}
	if len(msg.Payload.Challenges) == 0 {
		s.errMsg = "This lesson has no challenges yet."
		return s, nil
	}

	s.lessonID = msg.Payload.LessonID
	s.title = msg.Title
	s.course = msg.Course
	s.points = msg.Points
	s.modal = modalNone

	// Hooks that fire inside Confirm run on a command goroutine, so the
	// gate and error notices are driven by the returned Outcome instead.
	hooks := engine.Hooks{
		OnFullyComplete: func() {
			if !s.practiceSeen {
				s.practiceSeen = true
				s.modal = modalPractice
			}
		},
		OnExit: func() { s.exited = true },
	}
	repo := s.deps.Store.ProgressRepo(s.deps.UserID)
	s.session = engine.New(msg.Payload, repo, hooks, s.deps.Logger)

	cmds := []tea.Cmd{}
	if s.sessionID == "" {
		s.sessionID = uuid.New().String()
		s.started = time.Now()
		cmds = append(cmds, s.appendSessionEvent(store.SessionStart))
	}
	s.resetOptions()
	return s, tea.Batch(cmds...)
}

func (s *LessonScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.session == nil {
		return s, nil
	}

	switch s.modal {
	case modalExit:
		switch {
		case key.Matches(msg, s.keys.Yes):
			s.modal = modalNone
			return s, tea.Sequence(s.appendSessionEvent(store.SessionQuit), popToRoot)
		case key.Matches(msg, s.keys.No):
			s.modal = modalNone
		}
		return s, nil

	case modalHearts:
		switch {
		case key.Matches(msg, s.keys.Refill):
			return s, s.refill()
		case key.Matches(msg, s.keys.Back):
			s.modal = modalNone
		}
		return s, nil

	case modalPractice:
		if key.Matches(msg, s.keys.Confirm, s.keys.Back) {
			s.modal = modalNone
		}
		return s, nil
	}

	if s.finished {
		if key.Matches(msg, s.keys.Confirm) && s.session.Finish() && s.exited {
			return s, popToRoot
		}
		return s, nil
	}

	if key.Matches(msg, s.keys.Back) {
		s.modal = modalExit
		return s, nil
	}
	if s.confirming || s.session.Pending() {
		return s, nil
	}

	switch {
	case key.Matches(msg, s.keys.Up):
		s.options.MoveUp()
	case key.Matches(msg, s.keys.Down):
		s.options.MoveDown()
	case key.Matches(msg, s.keys.Pick):
		if i, ok := components.PickIndex(msg.String()); ok {
			s.selectIndex(i)
		}
	case key.Matches(msg, s.keys.Explain):
		if s.canExplain() {
			return s, s.explain()
		}
	case key.Matches(msg, s.keys.Confirm):
		if s.session.Status() == engine.StatusNone {
			if _, ok := s.session.Selected(); !ok {
				s.selectIndex(s.options.Cursor)
				return s, nil
			}
		}
		return s, s.confirm()
	}
	return s, nil
}

// selectIndex selects the i-th option of the active challenge.
func (s *LessonScreen) selectIndex(i int) {
	ch, ok := s.session.Current()
	if !ok || i < 0 || i >= len(ch.Options) || s.session.Status() != engine.StatusNone {
		return
	}
	if err := s.session.Select(ch.Options[i].ID); err != nil {
		return
	}
	s.options.Selected = i
	s.options.Cursor = i
}

func (s *LessonScreen) confirm() tea.Cmd {
	sess := s.session
	ch, _ := sess.Current()
	optID, _ := sess.Selected()
	s.options.Disabled = true
	s.confirming = true
	return func() tea.Msg {
		outcome, err := sess.Confirm(context.Background())
		return confirmedMsg{Outcome: outcome, Err: err, ChallengeID: ch.ID, OptionID: optID}
	}
}

func (s *LessonScreen) handleConfirmed(msg confirmedMsg) (screen.Screen, tea.Cmd) {
	s.options.Disabled = false
	s.confirming = false

	switch msg.Outcome {
	case engine.OutcomeCorrect:
		s.correct++
		s.points += engine.PointsPerChallenge
		s.options.Reveal = components.RevealCorrect
		return s, s.appendAnswerEvent(msg, true)

	case engine.OutcomeWrong:
		s.wrong++
		s.options.Reveal = components.RevealWrong
		return s, s.appendAnswerEvent(msg, false)

	case engine.OutcomeRetry:
		s.explanation = nil
		s.options.Reveal = components.RevealNone
		s.options.Selected = -1

	case engine.OutcomeAdvanced:
		s.explanation = nil
		if s.session.IsComplete() {
			s.finished = true
			return s, s.appendSessionEvent(store.SessionEnd)
		}
		s.resetOptions()

	case engine.OutcomeGated:
		s.modal = modalHearts

	case engine.OutcomeFailed:
		return s, s.showToast(genericError)
	}
	return s, nil
}

func (s *LessonScreen) resetOptions() {
	ch, ok := s.session.Current()
	if !ok {
		return
	}
	labels := make([]string, len(ch.Options))
	for i, o := range ch.Options {
		labels[i] = o.Text
	}
	s.options = components.NewOptionList(labels)
}

func (s *LessonScreen) refill() tea.Cmd {
	st, userID := s.deps.Store, s.deps.UserID
	return func() tea.Msg {
		_, err := st.RefillHearts(context.Background(), userID)
		return refilledMsg{Err: err}
	}
}

func (s *LessonScreen) handleRefilled(msg refilledMsg) (screen.Screen, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, store.ErrNotEnoughPoints):
		return s, s.showToast("You need 10 points to refill your hearts.")
	case errors.Is(msg.Err, store.ErrHeartsFull):
		// Hearts came back some other way; reload below.
	case msg.Err != nil:
		s.deps.Logger.Error("refill hearts", "error", msg.Err)
		return s, s.showToast(genericError)
	}
	s.modal = modalNone
	return s, s.loadPayload()
}

func (s *LessonScreen) explain() tea.Cmd {
	ch, ok := s.session.Current()
	if !ok {
		return nil
	}
	in := explain.Input{Course: s.course, ChallengeID: ch.ID, Question: ch.Question}
	for i, o := range ch.Options {
		in.Options = append(in.Options, o.Text)
		if o.Correct {
			in.Correct = o.Text
		}
		if i == s.options.Selected {
			in.Chosen = o.Text
		}
	}

	s.explaining = true
	svc := s.deps.Explainer
	return func() tea.Msg {
		e, err := svc.Explain(context.Background(), in)
		return explainedMsg{ChallengeID: ch.ID, Explanation: e, Err: err}
	}
}

func (s *LessonScreen) handleExplained(msg explainedMsg) (screen.Screen, tea.Cmd) {
	s.explaining = false
	if msg.Err != nil {
		s.deps.Logger.Warn("explain answer", "challenge_id", msg.ChallengeID, "error", msg.Err)
		return s, s.showToast("Couldn't get an explanation right now.")
	}
	if ch, ok := s.session.Current(); ok && ch.ID == msg.ChallengeID {
		s.explanation = msg.Explanation
	}
	return s, nil
}

func (s *LessonScreen) showToast(text string) tea.Cmd {
	s.toastID++
	s.toast = text
	id := s.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{ID: id}
	})
}

func (s *LessonScreen) appendAnswerEvent(msg confirmedMsg, correct bool) tea.Cmd {
	events, logger := s.deps.Store.EventRepo(), s.deps.Logger
	data := store.AnswerEventData{
		UserID:      s.deps.UserID,
		SessionID:   s.sessionID,
		LessonID:    s.lessonID,
		ChallengeID: msg.ChallengeID,
		OptionID:    msg.OptionID,
		Correct:     correct,
		Outcome:     msg.Outcome.String(),
	}
	return func() tea.Msg {
		if err := events.AppendAnswerEvent(context.Background(), data); err != nil {
			logger.Warn("append answer event", "error", err)
		}
		return nil
	}
}

func (s *LessonScreen) appendSessionEvent(action string) tea.Cmd {
	events, logger := s.deps.Store.EventRepo(), s.deps.Logger
	data := store.SessionEventData{
		UserID:            s.deps.UserID,
		SessionID:         s.sessionID,
		LessonID:          s.lessonID,
		Action:            action,
		ChallengesTotal:   s.session.Total(),
		ChallengesCorrect: s.correct,
		WrongAnswers:      s.wrong,
		HeartsLeft:        s.session.Hearts(),
		DurationSecs:      int(time.Since(s.started).Seconds()),
	}
	return func() tea.Msg {
		if err := events.AppendSessionEvent(context.Background(), data); err != nil {
			logger.Warn("append session event", "action", action, "error", err)
		}
		return nil
	}
}

func popToRoot() tea.Msg { return router.PopToRootMsg{} }
