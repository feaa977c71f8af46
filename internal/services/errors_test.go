package services_test

import (
	"errors"
	"testing"

	"lapse/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "camera", "capture", "rpicam-still failed", cause)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "printer", "status", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	if !services.IsFatal(services.Wrap(services.ErrConfiguration, "config", "load", "bad value", nil)) {
		t.Fatal("configuration errors are fatal")
	}
	if services.IsFatal(services.Wrap(services.ErrExternalTool, "camera", "capture", "", nil)) {
		t.Fatal("tool errors are not fatal")
	}
	if services.IsFatal(nil) {
		t.Fatal("nil is not fatal")
	}
}
