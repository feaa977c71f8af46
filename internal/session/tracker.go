package session

import "sync"

// Transition describes the change observed between two printer polls.
type Transition int

const (
	// NoChange means the printer stayed in the same printing state.
	NoChange Transition = iota
	// Started means a print began since the previous poll.
	Started
	// Ended means the active print finished or was stopped.
	Ended
)

func (t Transition) String() string {
	switch t {
	case Started:
		return "started"
	case Ended:
		return "ended"
	default:
		return "no change"
	}
}

// Tracker derives print start/end transitions from successive status
// polls and holds the active session between them. A paused print is
// reported as still printing by the caller, so pauses never end a
// session.
type Tracker struct {
	mu       sync.Mutex
	printing bool
	active   *Session
}

// NewTracker returns a tracker in the idle state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records the latest printing state and returns the transition
// relative to the previous poll.
func (t *Tracker) Observe(printing bool) Transition {
	t.mu.Lock()
	defer t.mu.Unlock()

	was := t.printing
	t.printing = printing
	switch {
	case printing && !was:
		return Started
	case !printing && was:
		return Ended
	default:
		return NoChange
	}
}

// Begin attaches a freshly created session to the tracker.
func (t *Tracker) Begin(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = s
}

// End detaches and returns the active session, or nil when no session
// was in flight.
func (t *Tracker) End() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.active
	t.active = nil
	return s
}

// Active returns the session currently being recorded, if any.
func (t *Tracker) Active() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Printing reports the state seen on the most recent poll.
func (t *Tracker) Printing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.printing
}
