package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lapse/internal/logging"
	"lapse/internal/services/printer"
	"lapse/internal/testsupport"
)

func sampleSummary() *Summary {
	job := &printer.Job{}
	job.File.DisplayName = "Benchy"
	job.File.Name = "benchy.gcode"
	job.File.Path = "/usb/benchy.gcode"
	job.File.Size = 2 * 1024 * 1024
	job.File.Meta = map[string]any{
		"filament_type":        "PLA",
		"layer_height":         0.2,
		"estimated_print_time": float64(7200),
		"bed_temperature":      60,
		"thumbnail":            "base64junk",
	}
	return &Summary{
		Name:            "Benchy",
		RawName:         "Benchy v2",
		StartedAt:       time.Date(2026, 2, 1, 8, 0, 0, 0, time.Local),
		EndedAt:         time.Date(2026, 2, 1, 10, 5, 0, 0, time.Local),
		Duration:        2*time.Hour + 5*time.Minute,
		FrameCount:      250,
		CaptureInterval: 30 * time.Second,
		Job:             job,
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{2*time.Hour + 5*time.Minute, "2h 5m"},
		{45 * time.Second, "0h 0m"},
		{26 * time.Hour, "26h 0m"},
		{-time.Minute, "0h 0m"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestWritePrintLog(t *testing.T) {
	summary := sampleSummary()
	path := filepath.Join(t.TempDir(), "print.log")
	if err := WritePrintLog(path, summary); err != nil {
		t.Fatalf("WritePrintLog: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"File Name: Benchy v2",
		"Duration: 2h 5m",
		"Frames Captured: 250",
		"Capture Interval: 30 seconds",
		"Display Name: Benchy",
		"File Path: /usb/benchy.gcode",
		"File Size: 2.00 MB",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestWritePrintLogWithoutJob(t *testing.T) {
	summary := sampleSummary()
	summary.Job = nil
	path := filepath.Join(t.TempDir(), "print.log")
	if err := WritePrintLog(path, summary); err != nil {
		t.Fatalf("WritePrintLog: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Job Metadata") {
		t.Fatal("metadata section should be omitted without job details")
	}
}

func TestBuildEmailBody(t *testing.T) {
	body, err := BuildEmailBody(sampleSummary())
	if err != nil {
		t.Fatalf("BuildEmailBody: %v", err)
	}

	for _, want := range []string{
		"Print Complete",
		"Benchy v2",
		"2h 5m",
		"250",
		"Filament",
		"PLA",
		"Time Comparison",
		"Estimated: 2h 0m",
		"+5 min",
		"Bed Temperature",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("email body missing %q", want)
		}
	}
	if strings.Contains(body, "base64junk") {
		t.Error("thumbnail blob should never appear in the email")
	}
}

func TestBuildEmailBodyFasterThanEstimate(t *testing.T) {
	summary := sampleSummary()
	summary.Duration = time.Hour
	body, err := BuildEmailBody(summary)
	if err != nil {
		t.Fatalf("BuildEmailBody: %v", err)
	}
	if !strings.Contains(body, "-60 min") {
		t.Fatalf("expected negative time diff, body:\n%s", body)
	}
}

func TestBuildEmailBodyWithoutMetadata(t *testing.T) {
	summary := sampleSummary()
	summary.Job = nil
	body, err := BuildEmailBody(summary)
	if err != nil {
		t.Fatalf("BuildEmailBody: %v", err)
	}
	if strings.Contains(body, "Time Comparison") {
		t.Fatal("comparison requires an estimate")
	}
	if strings.Contains(body, "settings-table\">") {
		t.Fatal("settings table requires metadata")
	}
}

func TestMailerDisabledWithoutConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mailer := NewMailer(cfg, logging.NewNop())
	if mailer.Enabled() {
		t.Fatal("mailer should be disabled without SMTP settings")
	}
	if err := mailer.Send(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("disabled Send should be a no-op, got %v", err)
	}
}

func TestMailerEnabledWithConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Email.SMTPServer = "smtp.test"
	cfg.Email.To = "me@example.com"
	cfg.Email.From = "lapse@example.com"
	mailer := NewMailer(cfg, logging.NewNop())
	if !mailer.Enabled() {
		t.Fatal("mailer should be enabled with server and recipient")
	}
}
