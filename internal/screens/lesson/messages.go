package lesson

import (
	"github.com/abhisek/lingo/internal/explain"
	engine "github.com/abhisek/lingo/internal/lesson"
)

// payloadLoadedMsg is sent when the lesson content and the learner's
// resources have been read from the store.
type payloadLoadedMsg struct {
	Payload engine.Payload
	Title   string
	Course  string
	Points  int
	Err     error
}

// confirmedMsg carries the result of a Confirm call.
type confirmedMsg struct {
	Outcome     engine.Outcome
	Err         error
	ChallengeID int
	OptionID    int
}

// refilledMsg is sent when a refill from the hearts modal completes.
type refilledMsg struct {
	Err error
}

// explainedMsg carries an answer explanation.
type explainedMsg struct {
	ChallengeID int
	Explanation *explain.Explanation
	Err         error
}

// toastExpiredMsg hides the toast with the matching id.
type toastExpiredMsg struct {
	ID int
}
