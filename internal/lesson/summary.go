package lesson

// IsComplete reports whether the cursor has moved past the last challenge.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isComplete()
}

func (s *Session) isComplete() bool {
	return s.activeIndex >= len(s.challenges)
}

// Summary returns the finish-screen result. The second value is false
// while challenges remain.
func (s *Session) Summary() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isComplete() {
		return Summary{}, false
	}
	return Summary{
		TotalPoints: len(s.challenges) * PointsPerChallenge,
		FinalHearts: s.hearts,
	}, true
}
