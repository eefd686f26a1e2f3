package lesson

import "errors"

// Hooks are the side effects a session triggers in its surrounding shell.
// Every hook is optional.
//
// OnHeartsExhausted and OnTransientError run on the goroutine that called
// Confirm, after the session lock is released.
type Hooks struct {
	// OnHeartsExhausted opens the hearts limit / upsell flow.
	OnHeartsExhausted func()

	// OnFullyComplete fires once from New when the lesson was already
	// finished, marking the session as a practice replay.
	OnFullyComplete func()

	// OnExit leaves the lesson after the finish summary.
	OnExit func()

	// OnTransientError surfaces a non-blocking failure notice.
	OnTransientError func(err error)
}

// IsHeartsExhausted reports whether a commit error must be routed to the
// resource gate instead of being treated as a failure.
func IsHeartsExhausted(err error) bool {
	return errors.Is(err, ErrHeartsExhausted)
}

func (h Hooks) heartsExhausted() {
	if h.OnHeartsExhausted != nil {
		h.OnHeartsExhausted()
	}
}

func (h Hooks) fullyComplete() {
	if h.OnFullyComplete != nil {
		h.OnFullyComplete()
	}
}

func (h Hooks) exit() {
	if h.OnExit != nil {
		h.OnExit()
	}
}

func (h Hooks) transientError(err error) {
	if h.OnTransientError != nil {
		h.OnTransientError(err)
	}
}
