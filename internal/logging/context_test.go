package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"lapse/internal/services"
)

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "abc-123")
	ctx = services.WithSessionName(ctx, "Benchy")

	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	WithContext(ctx, logger).Info("contextual log")

	line := buf.String()
	if !strings.Contains(line, "session_id=abc-123") {
		t.Fatalf("missing session id: %q", line)
	}
	if !strings.Contains(line, "print=Benchy") {
		t.Fatalf("missing print name: %q", line)
	}
}

func TestWithContextWithoutAnnotations(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	WithContext(context.Background(), logger).Info("plain log")

	if strings.Contains(buf.String(), "session_id") {
		t.Fatalf("unexpected session field: %q", buf.String())
	}
}
