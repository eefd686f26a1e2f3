package lesson

// MaxHearts is the heart ceiling shared by the engine and the progress store.
const MaxHearts = 5

// PointsPerChallenge is the score awarded per challenge on the finish screen.
const PointsPerChallenge = 10

// ChallengeType distinguishes how a challenge is presented.
type ChallengeType string

const (
	// TypeSelect shows the question as the title and the options below it.
	TypeSelect ChallengeType = "SELECT"

	// TypeAssist shows a fixed title and the question inside a speech bubble.
	TypeAssist ChallengeType = "ASSIST"
)

// assistTitle is the fixed heading used for ASSIST challenges.
const assistTitle = "Select the correct meaning"

// ParseChallengeType maps a course-file type name to a ChallengeType.
// "STANDARD" is accepted as an alias for SELECT.
func ParseChallengeType(s string) (ChallengeType, bool) {
	switch s {
	case "SELECT", "STANDARD", "":
		return TypeSelect, true
	case "ASSIST":
		return TypeAssist, true
	}
	return "", false
}

// Option is one answer choice of a challenge.
type Option struct {
	ID      int
	Text    string
	Correct bool
}

// Challenge is one question unit in a lesson.
type Challenge struct {
	ID       int
	Type     ChallengeType
	Question string

	// Completed is true when the learner finished this challenge in an
	// earlier session.
	Completed bool

	Options []Option
}

// Title returns the heading shown above the options.
func (c Challenge) Title() string {
	if c.Type == TypeAssist {
		return assistTitle
	}
	return c.Question
}

// CorrectOption returns the option flagged correct, if any.
func (c Challenge) CorrectOption() (Option, bool) {
	for _, o := range c.Options {
		if o.Correct {
			return o, true
		}
	}
	return Option{}, false
}

// Option returns the option with the given id, if it belongs to c.
func (c Challenge) Option(id int) (Option, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Status is the reveal state of the active challenge.
type Status int

const (
	StatusNone    Status = iota // Awaiting or holding a tentative selection
	StatusCorrect               // Last confirmation was right
	StatusWrong                 // Last confirmation was wrong
)

func (s Status) String() string {
	switch s {
	case StatusCorrect:
		return "correct"
	case StatusWrong:
		return "wrong"
	default:
		return "none"
	}
}

// Payload is the initial data a session is built from.
type Payload struct {
	LessonID              int
	Challenges            []Challenge
	InitialHearts         int
	InitialPercentage     float64
	HasActiveSubscription bool
}

// Summary is the terminal result of a completed session.
type Summary struct {
	TotalPoints int
	FinalHearts int
}
