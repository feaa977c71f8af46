package camera

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"lapse/internal/services"
	"lapse/internal/testsupport"
)

type fakeExecutor struct {
	binary string
	args   []string
	output string
	err    error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) (string, error) {
	f.binary = binary
	f.args = args
	return f.output, f.err
}

func TestCaptureArguments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Camera.Width = 1280
	cfg.Camera.Height = 720
	cfg.Camera.FocusDistance = 50

	exec := &fakeExecutor{}
	client, err := New(cfg, WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Capture(context.Background(), "/tmp/frame_00001.jpg"); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if exec.binary != "rpicam-still" {
		t.Fatalf("unexpected binary %q", exec.binary)
	}
	want := []string{
		"--width", "1280",
		"--height", "720",
		"--output", "/tmp/frame_00001.jpg",
		"--nopreview",
		"--autofocus-mode", "manual",
		"--timeout", "1",
		"--immediate",
		"--lens-position", "2.00",
	}
	if !reflect.DeepEqual(exec.args, want) {
		t.Fatalf("args mismatch:\n got %v\nwant %v", exec.args, want)
	}
}

func TestCaptureAppendsExtraParams(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Camera.ExtraParams = "--hflip --vflip"

	exec := &fakeExecutor{}
	client, err := New(cfg, WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Capture(context.Background(), "/tmp/out.jpg"); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	tail := exec.args[len(exec.args)-2:]
	if tail[0] != "--hflip" || tail[1] != "--vflip" {
		t.Fatalf("extra params not appended, args %v", exec.args)
	}
}

func TestNewRejectsDangerousExtraParams(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Camera.ExtraParams = "--hflip && rm -rf /"

	_, err := New(cfg)
	if err == nil {
		t.Fatal("expected error for shell metacharacters")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCaptureFailureIncludesToolOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &fakeExecutor{output: "ERROR: no cameras available", err: fmt.Errorf("exit status 1")}
	client, err := New(cfg, WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = client.Capture(context.Background(), "/tmp/out.jpg")
	if err == nil {
		t.Fatal("expected capture failure")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "no cameras available") {
		t.Fatalf("expected tool output in error, got %q", got)
	}
}

func TestCaptureRequiresOutputPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client, err := New(cfg, WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Capture(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty output path")
	}
}
