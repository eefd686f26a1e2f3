package lesson

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Session drives a learner through the challenges of one lesson.
//
// Select and Confirm are the only mutators. A Session is safe for use from
// multiple goroutines, but at most one commit is in flight at any time:
// while Confirm waits on the store, Select and Confirm fail with
// ErrCommitPending.
type Session struct {
	mu     sync.Mutex
	store  ProgressStore
	hooks  Hooks
	logger *slog.Logger

	lessonID          int
	challenges        []Challenge
	initialPercentage float64
	subscribed        bool

	activeIndex int
	selected    int
	hasSelected bool
	status      Status
	hearts      int
	percentage  float64
	pending     bool
}

// New builds a session from the initial payload. The challenge slice is
// copied; later changes to p do not affect the session.
func New(p Payload, store ProgressStore, hooks Hooks, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	challenges := make([]Challenge, len(p.Challenges))
	for i, c := range p.Challenges {
		c.Options = append([]Option(nil), c.Options...)
		challenges[i] = c
	}

	s := &Session{
		store:             store,
		hooks:             hooks,
		logger:            logger.With("lesson_id", p.LessonID),
		lessonID:          p.LessonID,
		challenges:        challenges,
		initialPercentage: p.InitialPercentage,
		subscribed:        p.HasActiveSubscription,
		activeIndex:       firstUncompleted(challenges),
		hearts:            clampHearts(p.InitialHearts),
		percentage:        p.InitialPercentage,
	}

	// A finished lesson is replayed from zero.
	if s.isPractice() {
		s.percentage = 0
		hooks.fullyComplete()
	}

	return s
}

// firstUncompleted returns the index of the first challenge not completed
// earlier, or 0 when all of them are.
func firstUncompleted(challenges []Challenge) int {
	for i, c := range challenges {
		if !c.Completed {
			return i
		}
	}
	return 0
}

func clampHearts(h int) int {
	return max(0, min(h, MaxHearts))
}

// isPractice reports whether the lesson was already complete at mount.
func (s *Session) isPractice() bool {
	return s.initialPercentage == 100
}

// Select records a tentative answer for the active challenge. It is a
// no-op once the answer has been revealed.
func (s *Session) Select(optionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAcceptingInput(); err != nil {
		return err
	}
	if s.status != StatusNone {
		return nil
	}

	s.selected = optionID
	s.hasSelected = true
	return nil
}

// Confirm acts on the current status: it dismisses a wrong reveal, moves
// past a correct reveal, or commits the selected answer to the store.
//
// A transient store failure leaves the session untouched and is returned
// wrapped alongside OutcomeFailed; the caller may Confirm again.
func (s *Session) Confirm(ctx context.Context) (Outcome, error) {
	s.mu.Lock()

	if err := s.checkAcceptingInput(); err != nil {
		s.mu.Unlock()
		return OutcomeNone, err
	}

	switch s.status {
	case StatusWrong:
		s.clearSelection()
		s.status = StatusNone
		s.mu.Unlock()
		return OutcomeRetry, nil

	case StatusCorrect:
		s.activeIndex++
		s.clearSelection()
		s.status = StatusNone
		if s.activeIndex >= len(s.challenges) {
			s.logger.Info("lesson complete", "hearts", s.hearts, "challenges", len(s.challenges))
		}
		s.mu.Unlock()
		return OutcomeAdvanced, nil
	}

	if !s.hasSelected {
		s.mu.Unlock()
		return OutcomeNone, nil
	}

	challenge := s.challenges[s.activeIndex]
	correctOpt, ok := challenge.CorrectOption()
	if !ok {
		s.logger.Warn("challenge has no correct option", "challenge_id", challenge.ID)
		s.mu.Unlock()
		return OutcomeNone, nil
	}
	if _, ok := challenge.Option(s.selected); !ok {
		s.logger.Warn("selected option not in challenge",
			"challenge_id", challenge.ID, "option_id", s.selected)
		s.mu.Unlock()
		return OutcomeNone, nil
	}

	isCorrect := s.selected == correctOpt.ID
	s.pending = true
	s.mu.Unlock()

	var err error
	if isCorrect {
		err = s.store.CommitCorrect(ctx, challenge.ID)
	} else {
		err = s.store.CommitIncorrect(ctx, challenge.ID)
	}

	return s.resolve(challenge.ID, isCorrect, err)
}

// resolve applies a finished commit to the session. Hooks run after the
// lock is released so they may read the session.
func (s *Session) resolve(challengeID int, isCorrect bool, err error) (Outcome, error) {
	s.mu.Lock()
	s.pending = false

	switch {
	case err == nil && isCorrect:
		s.status = StatusCorrect
		s.percentage += 100 / float64(len(s.challenges))
		if s.isPractice() {
			s.hearts = min(s.hearts+1, MaxHearts)
		}
		s.mu.Unlock()
		return OutcomeCorrect, nil

	case err == nil:
		s.status = StatusWrong
		s.hearts = max(s.hearts-1, 0)
		s.mu.Unlock()
		return OutcomeWrong, nil

	case IsHeartsExhausted(err):
		s.logger.Info("hearts exhausted", "challenge_id", challengeID, "correct", isCorrect)
		s.mu.Unlock()
		s.hooks.heartsExhausted()
		return OutcomeGated, nil

	case !isCorrect && IsPenaltyWaived(err):
		s.status = StatusWrong
		s.mu.Unlock()
		return OutcomeWrong, nil
	}

	s.mu.Unlock()
	s.logger.Error("commit failed", "challenge_id", challengeID, "correct", isCorrect, "error", err)
	wrapped := fmt.Errorf("commit challenge %d: %w", challengeID, err)
	s.hooks.transientError(wrapped)
	return OutcomeFailed, wrapped
}

// Finish leaves a completed lesson through the exit hook. It reports
// whether the hook was invoked.
func (s *Session) Finish() bool {
	s.mu.Lock()
	complete := s.isComplete()
	s.mu.Unlock()

	if !complete {
		return false
	}
	s.hooks.exit()
	return true
}

func (s *Session) checkAcceptingInput() error {
	if s.isComplete() {
		return ErrSessionComplete
	}
	if s.pending {
		return ErrCommitPending
	}
	return nil
}

func (s *Session) clearSelection() {
	s.selected = 0
	s.hasSelected = false
}
