package lesson

import (
	"context"
	"errors"
	"fmt"
)

// ProgressStore records answer outcomes durably. It is the authority for
// hearts; the session only mirrors it for display.
type ProgressStore interface {
	// CommitCorrect records that the learner answered challengeID correctly.
	CommitCorrect(ctx context.Context, challengeID int) error

	// CommitIncorrect records a wrong answer and deducts a heart.
	CommitIncorrect(ctx context.Context, challengeID int) error
}

var (
	// ErrHeartsExhausted is returned by a commit when the learner has no
	// hearts left to play or lose.
	ErrHeartsExhausted = errors.New("hearts exhausted")

	// ErrCommitPending is returned by Select and Confirm while a commit is
	// in flight.
	ErrCommitPending = errors.New("commit already in flight")

	// ErrSessionComplete is returned by Select and Confirm once every
	// challenge has been answered.
	ErrSessionComplete = errors.New("session complete")
)

// Reasons a store may waive the heart deduction of an incorrect commit.
const (
	WaivedPractice     = "practice"
	WaivedSubscription = "subscription"
)

// PenaltyWaivedError is returned by CommitIncorrect when the wrong answer
// was recorded but no heart was deducted.
type PenaltyWaivedError struct {
	Reason string
}

func (e *PenaltyWaivedError) Error() string {
	return fmt.Sprintf("heart deduction waived: %s", e.Reason)
}

// IsPenaltyWaived reports whether err carries a PenaltyWaivedError.
func IsPenaltyWaived(err error) bool {
	var pw *PenaltyWaivedError
	return errors.As(err, &pw)
}

// Outcome describes what a Confirm call did to the session.
type Outcome int

const (
	OutcomeNone     Outcome = iota // Nothing changed
	OutcomeRetry                   // Wrong answer dismissed; same challenge again
	OutcomeAdvanced                // Moved to the next challenge
	OutcomeCorrect                 // Commit succeeded; answer revealed correct
	OutcomeWrong                   // Commit succeeded; answer revealed wrong
	OutcomeGated                   // Hearts exhausted; diverted to the resource gate
	OutcomeFailed                  // Commit failed transiently; state unchanged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRetry:
		return "retry"
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeCorrect:
		return "correct"
	case OutcomeWrong:
		return "wrong"
	case OutcomeGated:
		return "gated"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}
