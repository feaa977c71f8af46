package session

import (
	"sync"
	"time"
)

// Scheduler gates frame captures to the configured interval. The first
// frame of a session is always due immediately so short prints still
// yield at least one frame.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewScheduler returns a scheduler with the given capture interval.
func NewScheduler(interval time.Duration) *Scheduler {
	return &Scheduler{interval: interval}
}

// SetInterval updates the capture interval. Safe to call mid-session;
// the next due check uses the new value.
func (s *Scheduler) SetInterval(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
}

// Due reports whether a capture should happen at the given time.
func (s *Scheduler) Due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last.IsZero() {
		return true
	}
	return now.Sub(s.last) >= s.interval
}

// MarkCaptured records a successful capture at the given time.
func (s *Scheduler) MarkCaptured(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = now
}

// Reset clears the capture history so the next session starts with an
// immediately due frame.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = time.Time{}
}
