package daemon

import (
	"context"
	"testing"

	"lapse/internal/logging"
	"lapse/internal/monitor"
	"lapse/internal/testsupport"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	store := testsupport.MustOpenHistory(t, cfg)

	mon, err := monitor.New(monitor.Options{
		Config:  cfg,
		Logger:  logging.NewNop(),
		History: store,
	})
	if err != nil {
		t.Fatalf("monitor.New: %v", err)
	}

	d, err := New(cfg, store, logging.NewNop(), mon)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestStartStop(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail")
	}
	d.Stop()
	d.Stop() // idempotent

	// Lock released; a fresh start succeeds.
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart after Stop: %v", err)
	}
	d.Stop()
}

func TestSecondInstanceLosesLockRace(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	store := testsupport.MustOpenHistory(t, cfg)

	build := func() *Daemon {
		mon, err := monitor.New(monitor.Options{
			Config:  cfg,
			Logger:  logging.NewNop(),
			History: store,
		})
		if err != nil {
			t.Fatalf("monitor.New: %v", err)
		}
		d, err := New(cfg, store, logging.NewNop(), mon)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return d
	}

	first := build()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	// The loser must get an error back so its process can exit non-zero.
	second := build()
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance should fail to acquire the lock")
	}
}

func TestRunningProbe(t *testing.T) {
	d := newTestDaemon(t)

	running, err := Running(d.cfg)
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if running {
		t.Fatal("no daemon should be running before Start")
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	running, err = Running(d.cfg)
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if !running {
		t.Fatal("probe should detect the held lock")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := New(cfg, nil, logging.NewNop(), nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
