package lesson

// Read-only views of the session. Each takes the lock so they are safe to
// call while a commit is running on another goroutine.

// LessonID returns the id of the lesson being played.
func (s *Session) LessonID() int {
	return s.lessonID
}

// Total returns the number of challenges in the lesson.
func (s *Session) Total() int {
	return len(s.challenges)
}

// ActiveIndex returns the cursor into the challenge sequence. It equals
// Total once the lesson is complete.
func (s *Session) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeIndex
}

// Current returns the active challenge, or false once complete.
func (s *Session) Current() (Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isComplete() {
		return Challenge{}, false
	}
	return s.challenges[s.activeIndex], true
}

// Selected returns the tentatively selected option id.
func (s *Session) Selected() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSelected
}

// Status returns the reveal state of the active challenge.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Hearts returns the locally mirrored heart count.
func (s *Session) Hearts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hearts
}

// Percentage returns the working completion percentage.
func (s *Session) Percentage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.percentage
}

// InitialPercentage returns the percentage the session was seeded with.
func (s *Session) InitialPercentage() float64 {
	return s.initialPercentage
}

// IsPractice reports whether this is a replay of an already finished lesson.
func (s *Session) IsPractice() bool {
	return s.isPractice()
}

// HasActiveSubscription reports whether hearts are unlimited for display.
func (s *Session) HasActiveSubscription() bool {
	return s.subscribed
}

// Pending reports whether a commit is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
