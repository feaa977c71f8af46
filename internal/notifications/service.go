package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lapse/internal/config"
	"lapse/internal/report"
)

const userAgent = "Lapse-Go/0.1.0"

// Service defines the notification surface exposed to the monitor.
type Service interface {
	NotifyPrintStarted(ctx context.Context, printName string) error
	NotifyTimelapseReady(ctx context.Context, printName, videoPath string, frames int, printDuration time.Duration) error
	NotifyPrintEndedWithoutFrames(ctx context.Context, printName string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyPrintStarted(ctx context.Context, printName string) error {
	printName = strings.TrimSpace(printName)
	data := payload{
		title:   "Lapse - Print Started",
		message: fmt.Sprintf("Recording timelapse for: %s", printName),
		tags:    []string{"lapse", "print", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTimelapseReady(ctx context.Context, printName, videoPath string, frames int, printDuration time.Duration) error {
	printName = strings.TrimSpace(printName)
	message := fmt.Sprintf("Timelapse ready: %s\n%d frames over %s",
		printName, frames, report.FormatDuration(printDuration))
	if videoPath = strings.TrimSpace(videoPath); videoPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, videoPath)
	}
	data := payload{
		title:    "Lapse - Timelapse Ready",
		message:  message,
		tags:     []string{"lapse", "timelapse", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPrintEndedWithoutFrames(ctx context.Context, printName string) error {
	printName = strings.TrimSpace(printName)
	data := payload{
		title:   "Lapse - No Frames Captured",
		message: fmt.Sprintf("Print ended before any frame was captured: %s", printName),
		tags:    []string{"lapse", "print", "empty"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Lapse - Error",
		message:  builder.String(),
		tags:     []string{"lapse", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Lapse - Test",
		message:  "Notification system test",
		tags:     []string{"lapse", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyPrintStarted(context.Context, string) error { return nil }
func (noopService) NotifyTimelapseReady(context.Context, string, string, int, time.Duration) error {
	return nil
}
func (noopService) NotifyPrintEndedWithoutFrames(context.Context, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error            { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }
