package lesson

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore implements ProgressStore for testing.
type fakeStore struct {
	mu             sync.Mutex
	correctErrs    []error
	incorrectErrs  []error
	correctCalls   []int
	incorrectCalls []int
}

func (f *fakeStore) CommitCorrect(_ context.Context, challengeID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.correctCalls = append(f.correctCalls, challengeID)
	return pop(&f.correctErrs)
}

func (f *fakeStore) CommitIncorrect(_ context.Context, challengeID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incorrectCalls = append(f.incorrectCalls, challengeID)
	return pop(&f.incorrectErrs)
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

// testChallenges builds n challenges; option 10*i+1 is correct and 10*i+2 is wrong.
func testChallenges(n int) []Challenge {
	out := make([]Challenge, n)
	for i := range out {
		id := i + 1
		out[i] = Challenge{
			ID:       id,
			Type:     TypeSelect,
			Question: "question",
			Options: []Option{
				{ID: 10*id + 1, Text: "right", Correct: true},
				{ID: 10*id + 2, Text: "wrong"},
				{ID: 10*id + 3, Text: "also wrong"},
			},
		}
	}
	return out
}

func correctID(c Challenge) int { return 10*c.ID + 1 }
func wrongID(c Challenge) int   { return 10*c.ID + 2 }

func newTestSession(t *testing.T, p Payload, store ProgressStore, hooks Hooks) *Session {
	t.Helper()
	return New(p, store, hooks, nil)
}

func answer(t *testing.T, s *Session, optionID int) Outcome {
	t.Helper()
	require.NoError(t, s.Select(optionID))
	out, err := s.Confirm(context.Background())
	require.NoError(t, err)
	return out
}

func TestNew_StartsAtFirstUncompleted(t *testing.T) {
	cs := testChallenges(4)
	cs[0].Completed = true
	cs[1].Completed = true

	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5, InitialPercentage: 50}, &fakeStore{}, Hooks{})

	assert.Equal(t, 2, s.ActiveIndex())
	assert.Equal(t, StatusNone, s.Status())
	assert.Equal(t, 50.0, s.Percentage())
}

func TestNew_AllCompletedStartsAtZero(t *testing.T) {
	cs := testChallenges(3)
	for i := range cs {
		cs[i].Completed = true
	}

	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 3, InitialPercentage: 100}, &fakeStore{}, Hooks{})

	assert.Equal(t, 0, s.ActiveIndex())
}

func TestNew_ClampsHearts(t *testing.T) {
	s := newTestSession(t, Payload{Challenges: testChallenges(1), InitialHearts: 9}, &fakeStore{}, Hooks{})
	assert.Equal(t, MaxHearts, s.Hearts())

	s = newTestSession(t, Payload{Challenges: testChallenges(1), InitialHearts: -2}, &fakeStore{}, Hooks{})
	assert.Equal(t, 0, s.Hearts())
}

func TestNew_CopiesChallenges(t *testing.T) {
	cs := testChallenges(2)
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, &fakeStore{}, Hooks{})

	cs[0].Question = "mutated"
	cs[0].Options[0].Correct = false

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "question", cur.Question)
	assert.True(t, cur.Options[0].Correct)
}

func TestSelect_IgnoredAfterReveal(t *testing.T) {
	cs := testChallenges(2)
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, &fakeStore{}, Hooks{})

	assert.Equal(t, OutcomeCorrect, answer(t, s, correctID(cs[0])))

	require.NoError(t, s.Select(wrongID(cs[0])))
	sel, ok := s.Selected()
	assert.True(t, ok)
	assert.Equal(t, correctID(cs[0]), sel, "selection must not change after reveal")
}

func TestConfirm_NoSelectionIsNoop(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, Payload{Challenges: testChallenges(1), InitialHearts: 5}, store, Hooks{})

	out, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, out)
	assert.Empty(t, store.correctCalls)
	assert.Empty(t, store.incorrectCalls)
}

func TestConfirm_CorrectThenAdvance(t *testing.T) {
	cs := testChallenges(2)
	store := &fakeStore{}
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, store, Hooks{})

	assert.Equal(t, OutcomeCorrect, answer(t, s, correctID(cs[0])))
	assert.Equal(t, StatusCorrect, s.Status())
	assert.Equal(t, 0, s.ActiveIndex())
	assert.Equal(t, []int{1}, store.correctCalls)

	out, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdvanced, out)
	assert.Equal(t, 1, s.ActiveIndex())
	assert.Equal(t, StatusNone, s.Status())
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Len(t, store.correctCalls, 1, "advance must not resubmit")
}

func TestConfirm_WrongThenRetry(t *testing.T) {
	cs := testChallenges(2)
	store := &fakeStore{}
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, store, Hooks{})

	assert.Equal(t, OutcomeWrong, answer(t, s, wrongID(cs[0])))
	assert.Equal(t, StatusWrong, s.Status())
	assert.Equal(t, 4, s.Hearts())

	out, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetry, out)
	assert.Equal(t, StatusNone, s.Status())
	assert.Equal(t, 0, s.ActiveIndex())
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Len(t, store.incorrectCalls, 1, "retry must not resubmit")
}

func TestConfirm_PercentageMonotonic(t *testing.T) {
	cs := testChallenges(4)
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, &fakeStore{}, Hooks{})

	prev := s.Percentage()
	for _, c := range cs {
		answer(t, s, wrongID(c))
		assert.Equal(t, prev, s.Percentage(), "wrong answers leave percentage alone")
		answer(t, s, 0) // Select is ignored while wrong; Confirm dismisses
		answer(t, s, correctID(c))
		assert.InDelta(t, prev+25, s.Percentage(), 1e-9)
		prev = s.Percentage()
		_, err := s.Confirm(context.Background())
		require.NoError(t, err)
	}
}

func TestConfirm_HeartsNeverBelowZero(t *testing.T) {
	cs := testChallenges(1)
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 0}, &fakeStore{}, Hooks{})

	assert.Equal(t, OutcomeWrong, answer(t, s, wrongID(cs[0])))
	assert.Equal(t, 0, s.Hearts())
}

func TestConfirm_PracticeRestoresHeartCapped(t *testing.T) {
	cs := testChallenges(3)
	for i := range cs {
		cs[i].Completed = true
	}
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 4, InitialPercentage: 100}, &fakeStore{}, Hooks{})

	for _, c := range cs {
		answer(t, s, correctID(c))
		_, err := s.Confirm(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, MaxHearts, s.Hearts())
}

func TestConfirm_NoHeartBonusOutsidePractice(t *testing.T) {
	cs := testChallenges(1)
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 3, InitialPercentage: 0}, &fakeStore{}, Hooks{})

	answer(t, s, correctID(cs[0]))
	assert.Equal(t, 3, s.Hearts())
}

func TestConfirm_PenaltyWaived(t *testing.T) {
	cs := testChallenges(1)
	store := &fakeStore{incorrectErrs: []error{&PenaltyWaivedError{Reason: WaivedSubscription}}}
	gated := 0
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 3}, store, Hooks{
		OnHeartsExhausted: func() { gated++ },
	})

	assert.Equal(t, OutcomeWrong, answer(t, s, wrongID(cs[0])))
	assert.Equal(t, StatusWrong, s.Status())
	assert.Equal(t, 3, s.Hearts())
	assert.Zero(t, gated)
}

func TestConfirm_HeartsExhaustedOnIncorrect(t *testing.T) {
	cs := testChallenges(1)
	store := &fakeStore{incorrectErrs: []error{ErrHeartsExhausted}}
	gated := 0
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 0}, store, Hooks{
		OnHeartsExhausted: func() { gated++ },
	})

	assert.Equal(t, OutcomeGated, answer(t, s, wrongID(cs[0])))
	assert.Equal(t, 1, gated)
	assert.Equal(t, StatusNone, s.Status())
	assert.Equal(t, 0, s.Hearts())
}

func TestConfirm_TransientFailurePreservesState(t *testing.T) {
	cs := testChallenges(2)
	boom := errors.New("connection reset")
	store := &fakeStore{correctErrs: []error{boom}}
	var notified error
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5, InitialPercentage: 0}, store, Hooks{
		OnTransientError: func(err error) { notified = err },
	})

	require.NoError(t, s.Select(correctID(cs[0])))
	out, err := s.Confirm(context.Background())
	assert.Equal(t, OutcomeFailed, out)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, notified, boom)

	assert.Equal(t, StatusNone, s.Status())
	assert.Equal(t, 0, s.ActiveIndex())
	assert.Equal(t, 0.0, s.Percentage())
	assert.Equal(t, 5, s.Hearts())
	sel, ok := s.Selected()
	assert.True(t, ok, "selection is kept for retry")
	assert.Equal(t, correctID(cs[0]), sel)
	assert.False(t, s.Pending())

	// Retry succeeds.
	out, err = s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out)
	assert.Len(t, store.correctCalls, 2)
}

func TestConfirm_MalformedChallengeIsNoop(t *testing.T) {
	cs := testChallenges(1)
	cs[0].Options[0].Correct = false
	store := &fakeStore{}
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, store, Hooks{})

	require.NoError(t, s.Select(correctID(cs[0])))
	out, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, out)
	assert.Empty(t, store.correctCalls)
	assert.Empty(t, store.incorrectCalls)
}

func TestConfirm_UnknownOptionIsNoop(t *testing.T) {
	cs := testChallenges(1)
	store := &fakeStore{}
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, store, Hooks{})

	require.NoError(t, s.Select(999))
	out, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, out)
	assert.Equal(t, StatusNone, s.Status())
	assert.Empty(t, store.incorrectCalls)
}

// blockingStore holds every commit until release is closed.
type blockingStore struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingStore) CommitCorrect(ctx context.Context, _ int) error {
	close(b.started)
	<-b.release
	return nil
}

func (b *blockingStore) CommitIncorrect(ctx context.Context, id int) error {
	return b.CommitCorrect(ctx, id)
}

func TestConfirm_SingleCommitInFlight(t *testing.T) {
	cs := testChallenges(1)
	store := &blockingStore{started: make(chan struct{}), release: make(chan struct{})}
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, store, Hooks{})
	require.NoError(t, s.Select(correctID(cs[0])))

	done := make(chan Outcome)
	go func() {
		out, _ := s.Confirm(context.Background())
		done <- out
	}()
	<-store.started

	assert.True(t, s.Pending())
	assert.ErrorIs(t, s.Select(wrongID(cs[0])), ErrCommitPending)
	_, err := s.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrCommitPending)

	close(store.release)
	assert.Equal(t, OutcomeCorrect, <-done)
	assert.False(t, s.Pending())
	sel, _ := s.Selected()
	assert.Equal(t, correctID(cs[0]), sel)
}

func TestComplete_RejectsInput(t *testing.T) {
	cs := testChallenges(1)
	store := &fakeStore{}
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, store, Hooks{})

	answer(t, s, correctID(cs[0]))
	_, err := s.Confirm(context.Background())
	require.NoError(t, err)
	require.True(t, s.IsComplete())

	assert.ErrorIs(t, s.Select(correctID(cs[0])), ErrSessionComplete)
	_, err = s.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrSessionComplete)
	assert.Equal(t, 1, s.ActiveIndex())
	assert.Len(t, store.correctCalls, 1)

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestFinish(t *testing.T) {
	cs := testChallenges(1)
	exits := 0
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5}, &fakeStore{}, Hooks{
		OnExit: func() { exits++ },
	})

	assert.False(t, s.Finish(), "cannot finish before completion")
	assert.Zero(t, exits)

	answer(t, s, correctID(cs[0]))
	_, err := s.Confirm(context.Background())
	require.NoError(t, err)

	assert.True(t, s.Finish())
	assert.Equal(t, 1, exits)
}

func TestEmptyLessonIsComplete(t *testing.T) {
	s := newTestSession(t, Payload{InitialHearts: 5}, &fakeStore{}, Hooks{})
	assert.True(t, s.IsComplete())
	sum, ok := s.Summary()
	require.True(t, ok)
	assert.Equal(t, Summary{TotalPoints: 0, FinalHearts: 5}, sum)
}

func TestScenarioA_AllCorrect(t *testing.T) {
	cs := testChallenges(3)
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 5, InitialPercentage: 0}, &fakeStore{}, Hooks{})

	for _, c := range cs {
		assert.Equal(t, OutcomeCorrect, answer(t, s, correctID(c)))
		out, err := s.Confirm(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeAdvanced, out)
	}

	assert.InDelta(t, 100.0, s.Percentage(), 1e-9)
	assert.Equal(t, 3, s.ActiveIndex())
	assert.True(t, s.IsComplete())
	sum, ok := s.Summary()
	require.True(t, ok)
	assert.Equal(t, 30, sum.TotalPoints)
	assert.Equal(t, 5, sum.FinalHearts)
}

func TestScenarioB_CorrectButHeartsExhausted(t *testing.T) {
	cs := testChallenges(1)
	store := &fakeStore{correctErrs: []error{ErrHeartsExhausted}}
	gated := 0
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 0}, store, Hooks{
		OnHeartsExhausted: func() { gated++ },
	})

	assert.Equal(t, OutcomeGated, answer(t, s, correctID(cs[0])))
	assert.Equal(t, 1, gated)
	assert.Equal(t, StatusNone, s.Status())
	assert.Equal(t, 0, s.ActiveIndex())
	assert.Equal(t, 0.0, s.Percentage())
}

func TestScenarioC_WrongTwice(t *testing.T) {
	cs := testChallenges(1)
	store := &fakeStore{}
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 2}, store, Hooks{})

	for i := 0; i < 2; i++ {
		assert.Equal(t, OutcomeWrong, answer(t, s, wrongID(cs[0])))
		assert.Equal(t, StatusWrong, s.Status())
		assert.Equal(t, 0, s.ActiveIndex())

		out, err := s.Confirm(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeRetry, out)
	}

	assert.Equal(t, 0, s.Hearts())
	assert.Len(t, store.incorrectCalls, 2)
	assert.Equal(t, 0, s.ActiveIndex())
}

func TestScenarioD_PracticeReplay(t *testing.T) {
	cs := testChallenges(2)
	for i := range cs {
		cs[i].Completed = true
	}
	prompts := 0
	s := newTestSession(t, Payload{Challenges: cs, InitialHearts: 3, InitialPercentage: 100}, &fakeStore{}, Hooks{
		OnFullyComplete: func() { prompts++ },
	})

	assert.Equal(t, 1, prompts)
	assert.Equal(t, 0.0, s.Percentage())
	assert.Equal(t, 100.0, s.InitialPercentage())
	assert.True(t, s.IsPractice())

	answer(t, s, correctID(cs[0]))
	assert.Equal(t, 4, s.Hearts(), "practice correct answers restore a heart")
	assert.InDelta(t, 50.0, s.Percentage(), 1e-9)
	assert.Equal(t, 1, prompts, "prompt fires only at mount")
}

func TestNew_NoPracticePromptBelowHundred(t *testing.T) {
	prompts := 0
	newTestSession(t, Payload{Challenges: testChallenges(1), InitialHearts: 5, InitialPercentage: 99.9}, &fakeStore{}, Hooks{
		OnFullyComplete: func() { prompts++ },
	})
	assert.Zero(t, prompts)
}
