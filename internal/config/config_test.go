package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lapse/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[printer]
host = "printer.local"
api_key = "secret"
`

func TestLoadAppliesDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := writeConfig(t, minimalConfig)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.PrintsDir != filepath.Join(tempHome, "prints") {
		t.Fatalf("unexpected prints dir: %q", cfg.Paths.PrintsDir)
	}
	if cfg.Printer.PollInterval != 10 {
		t.Fatalf("unexpected poll interval: %d", cfg.Printer.PollInterval)
	}
	if cfg.Camera.CaptureInterval != 30 {
		t.Fatalf("unexpected capture interval: %d", cfg.Camera.CaptureInterval)
	}
	if cfg.Video.BatchSize != 150 {
		t.Fatalf("unexpected batch size: %d", cfg.Video.BatchSize)
	}
	if cfg.EmailConfigured() {
		t.Fatal("expected email disabled by default")
	}
	if cfg.ConnectEnabled() {
		t.Fatal("expected connect uploads disabled by default")
	}
	if len(cfg.Warnings()) != 0 {
		t.Fatalf("unexpected warnings: %v", cfg.Warnings())
	}
}

func TestLoadUsesEnvAPIKeyFallback(t *testing.T) {
	t.Setenv("LAPSE_PRINTER_API_KEY", "env-key")
	path := writeConfig(t, `
[printer]
host = "printer.local"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Printer.APIKey != "env-key" {
		t.Fatalf("expected env API key, got %q", cfg.Printer.APIKey)
	}
}

func TestLoadRequiresPrinterHost(t *testing.T) {
	path := writeConfig(t, `
[printer]
api_key = "secret"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "printer.host") {
		t.Fatalf("expected printer.host error, got %v", err)
	}
}

func TestLoadRejectsDangerousExtraParams(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[camera]
extra_params = "--gain 2 && rm -rf /"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected rejection of shell metacharacters in extra_params")
	}
}

func TestSanitizeExtraParams(t *testing.T) {
	for _, params := range []string{
		"--gain 2 && rm -rf /",
		"--gain 2; reboot",
		"--gain `id`",
		"--gain $(id)",
		"--gain ${HOME}",
		"--gain 2 || true",
		"--gain\n--other",
		"--gain\r--other",
	} {
		if err := config.SanitizeExtraParams(params); err == nil {
			t.Errorf("expected rejection of %q", params)
		}
	}
	for _, params := range []string{"", "--gain 2 --awb daylight", "--denoise cdn_off"} {
		if err := config.SanitizeExtraParams(params); err != nil {
			t.Errorf("expected %q to pass, got %v", params, err)
		}
	}
}

func TestLoadWarnsOnConflictingExtraParams(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[camera]
extra_params = "--width 640"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Warnings()) == 0 || !strings.Contains(cfg.Warnings()[0], "--width") {
		t.Fatalf("expected conflicting flag warning, got %v", cfg.Warnings())
	}
}

func TestLoadCoercesInvalidRotation(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[camera]
rotation = 45
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Camera.Rotation != 0 {
		t.Fatalf("expected rotation coerced to 0, got %d", cfg.Camera.Rotation)
	}
	if len(cfg.Warnings()) == 0 {
		t.Fatal("expected a rotation warning")
	}
}

func TestLoadCoercesFocusDistance(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[camera]
focus_distance = 5
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Camera.FocusDistance != 22 {
		t.Fatalf("expected default focus distance, got %d", cfg.Camera.FocusDistance)
	}
}

func TestLensPosition(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.FocusDistance = 22
	if got := cfg.LensPosition(); got != 4.55 {
		t.Fatalf("lens position for 22cm: got %v want 4.55", got)
	}
	cfg.Camera.FocusDistance = 100
	if got := cfg.LensPosition(); got != 1.0 {
		t.Fatalf("lens position for 100cm: got %v want 1", got)
	}
}

func TestLoadRejectsPartialEmailConfig(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[email]
to = "me@example.com"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for email.to without smtp_server")
	}

	path = writeConfig(t, minimalConfig+`
[email]
smtp_server = "smtp.example.com"
to = "me@example.com"
username = "user"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for username without password")
	}
}

func TestApplyRuntimeReportsChanges(t *testing.T) {
	cfg := config.Default()
	updated := config.Default()
	updated.Camera.CaptureInterval = 60
	updated.Video.FPS = 24
	updated.Camera.Rotation = 90

	changes := cfg.ApplyRuntime(&updated)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %v", changes)
	}
	if cfg.Camera.CaptureInterval != 60 || cfg.Video.FPS != 24 || cfg.Camera.Rotation != 90 {
		t.Fatal("runtime settings not applied")
	}

	if changes := cfg.ApplyRuntime(&updated); len(changes) != 0 {
		t.Fatalf("expected no changes on identical config, got %v", changes)
	}
}

func TestApplyRuntimeNeverTouchesConnection(t *testing.T) {
	cfg := config.Default()
	cfg.Printer.Host = "printer.local"
	updated := config.Default()
	updated.Printer.Host = "other.local"

	cfg.ApplyRuntime(&updated)
	if cfg.Printer.Host != "printer.local" {
		t.Fatal("printer host must not change at runtime")
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[printer]") {
		t.Fatal("sample config missing printer section")
	}
}
