package session

import (
	"testing"
	"time"
)

func TestTrackerTransitions(t *testing.T) {
	tracker := NewTracker()

	if got := tracker.Observe(false); got != NoChange {
		t.Fatalf("idle poll: got %v", got)
	}
	if got := tracker.Observe(true); got != Started {
		t.Fatalf("first printing poll: got %v", got)
	}
	if got := tracker.Observe(true); got != NoChange {
		t.Fatalf("steady printing poll: got %v", got)
	}
	if got := tracker.Observe(false); got != Ended {
		t.Fatalf("print finished poll: got %v", got)
	}
	if got := tracker.Observe(false); got != NoChange {
		t.Fatalf("idle after end: got %v", got)
	}
}

func TestTrackerSessionLifecycle(t *testing.T) {
	tracker := NewTracker()
	if tracker.Active() != nil {
		t.Fatal("expected no active session initially")
	}

	s, err := New(t.TempDir(), "benchy", time.Now())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tracker.Begin(s)
	if tracker.Active() != s {
		t.Fatal("expected active session after Begin")
	}

	ended := tracker.End()
	if ended != s {
		t.Fatal("End should return the active session")
	}
	if tracker.Active() != nil {
		t.Fatal("expected no active session after End")
	}
	if tracker.End() != nil {
		t.Fatal("second End should return nil")
	}
}

func TestTrackerRestartBetweenPolls(t *testing.T) {
	tracker := NewTracker()
	tracker.Observe(true)
	tracker.Observe(false)

	// A new print starting on the very next poll is a fresh Started.
	if got := tracker.Observe(true); got != Started {
		t.Fatalf("restart poll: got %v", got)
	}
}
