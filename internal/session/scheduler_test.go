package session

import (
	"testing"
	"time"
)

func TestSchedulerFirstCaptureImmediate(t *testing.T) {
	sched := NewScheduler(30 * time.Second)
	if !sched.Due(time.Now()) {
		t.Fatal("first capture should be due immediately")
	}
}

func TestSchedulerHonorsInterval(t *testing.T) {
	sched := NewScheduler(30 * time.Second)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	sched.MarkCaptured(base)
	if sched.Due(base.Add(29 * time.Second)) {
		t.Fatal("capture due before interval elapsed")
	}
	if !sched.Due(base.Add(30 * time.Second)) {
		t.Fatal("capture not due at interval boundary")
	}
	if !sched.Due(base.Add(5 * time.Minute)) {
		t.Fatal("capture not due long after interval")
	}
}

func TestSchedulerResetMakesNextCaptureDue(t *testing.T) {
	sched := NewScheduler(time.Hour)
	base := time.Now()
	sched.MarkCaptured(base)
	if sched.Due(base.Add(time.Second)) {
		t.Fatal("capture should not be due yet")
	}

	sched.Reset()
	if !sched.Due(base.Add(time.Second)) {
		t.Fatal("capture should be due after reset")
	}
}

func TestSchedulerSetIntervalAppliesImmediately(t *testing.T) {
	sched := NewScheduler(time.Hour)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sched.MarkCaptured(base)

	sched.SetInterval(10 * time.Second)
	if !sched.Due(base.Add(15 * time.Second)) {
		t.Fatal("shortened interval should make capture due")
	}
	if sched.Due(base.Add(5 * time.Second)) {
		t.Fatal("capture due before shortened interval elapsed")
	}
}
