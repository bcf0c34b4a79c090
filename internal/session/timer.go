package session

import "time"

// startTimerLocked schedules the one-second countdown.  Each schedule
// gets a generation number so that ticks of a replaced timer are
// ignored even if they were already in flight.
func (s *Session) startTimerLocked() {
	s.timerGen++
	gen := s.timerGen
	s.stopTimer = s.clock.Every(time.Second, func() bool { return s.tick(gen) })
}

// restartTimerLocked replaces the running countdown with a fresh one
// that continues from the remaining seconds.  The returned function
// stops the old timer and must be called after s.mu is released.
func (s *Session) restartTimerLocked() func() {
	stale := s.detachTimerLocked()
	s.startTimerLocked()
	return stale
}

// detachTimerLocked invalidates the running countdown and returns its
// stop function, to be called after s.mu is released.  Stopping blocks
// until an in-flight tick has returned.
func (s *Session) detachTimerLocked() func() {
	s.timerGen++
	stop := s.stopTimer
	s.stopTimer = nil
	if stop == nil {
		return func() {}
	}
	return stop
}

// tick runs once per second on the timer goroutine.
func (s *Session) tick(gen uint64) bool {
	s.mu.Lock()
	if gen != s.timerGen || s.final != 0 {
		s.mu.Unlock()
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	remaining := s.remaining
	expired := false
	// an in-flight commit decides the outcome; see FinishCommit
	if remaining == 0 && !s.committing {
		s.expireLocked()
		expired = true
	}
	onTick, onExpire := s.onTick, s.onExpire
	s.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if expired {
		s.log.Info("seat hold expired")
		if onExpire != nil {
			onExpire()
		}
	}
	return remaining > 0
}

// Remaining returns the seconds left on the hold.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}
