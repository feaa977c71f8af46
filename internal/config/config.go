package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	PrintsDir string `toml:"prints_dir"`
	LogDir    string `toml:"log_dir"`
}

// Printer contains PrusaLink API connection settings.
type Printer struct {
	Host          string `toml:"host"`
	APIKey        string `toml:"api_key"`
	PollInterval  int    `toml:"poll_interval"`
	StatusTimeout int    `toml:"status_timeout"`
	JobTimeout    int    `toml:"job_timeout"`
}

// Camera contains capture settings for rpicam-still.
type Camera struct {
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	Rotation        int    `toml:"rotation"`
	FocusDistance   int    `toml:"focus_distance"`
	ExtraParams     string `toml:"extra_params"`
	CaptureInterval int    `toml:"capture_interval"`
	CaptureTimeout  int    `toml:"capture_timeout"`
}

// Video contains encoding settings for the assembled timelapse.
type Video struct {
	FPS           int `toml:"fps"`
	Quality       int `toml:"quality"`
	BatchSize     int `toml:"batch_size"`
	EncodeTimeout int `toml:"encode_timeout"`
}

// Connect contains Prusa Connect camera upload settings. Uploads are
// enabled when both token and fingerprint are present.
type Connect struct {
	Token       string `toml:"token"`
	Fingerprint string `toml:"fingerprint"`
	UploadURL   string `toml:"upload_url"`
	Timeout     int    `toml:"timeout"`
}

// Email contains SMTP settings for the completion notification.
type Email struct {
	SMTPServer string `toml:"smtp_server"`
	SMTPPort   int    `toml:"smtp_port"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	From       string `toml:"from"`
	To         string `toml:"to"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the timelapse daemon.
//
// Sections by subsystem:
//   - Paths: prints output directory and log directory
//   - Printer: PrusaLink host, API key, polling cadence
//   - Camera: rpicam-still geometry, focus, rotation, capture cadence
//   - Video: ffmpeg fps/crf and batch sizing for assembly
//   - Connect: Prusa Connect live snapshot uploads
//   - Email: SMTP completion notification
//   - Notifications: ntfy push settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Printer       Printer       `toml:"printer"`
	Camera        Camera        `toml:"camera"`
	Video         Video         `toml:"video"`
	Connect       Connect       `toml:"connect"`
	Email         Email         `toml:"email"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`

	warnings []string
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lapse/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lapse.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.PrintsDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Warnings returns non-fatal findings collected during normalization,
// e.g. a rotation value that was coerced to 0. The caller is expected to
// log them once after Load.
func (c *Config) Warnings() []string {
	return c.warnings
}

// LensPosition derives the rpicam-still lens position from the configured
// focus distance (100/distance, rounded to two decimals).
func (c *Config) LensPosition() float64 {
	if c.Camera.FocusDistance <= 0 {
		return 0
	}
	return math.Round(100.0/float64(c.Camera.FocusDistance)*100) / 100
}

// EmailConfigured reports whether completion emails should be sent.
func (c *Config) EmailConfigured() bool {
	return strings.TrimSpace(c.Email.To) != "" && strings.TrimSpace(c.Email.SMTPServer) != ""
}

// ConnectEnabled reports whether Prusa Connect snapshot uploads are active.
func (c *Config) ConnectEnabled() bool {
	return strings.TrimSpace(c.Connect.Token) != "" && strings.TrimSpace(c.Connect.Fingerprint) != ""
}

// CameraBinary returns the capture executable name.
func (c *Config) CameraBinary() string {
	return "rpicam-still"
}

// FFmpegBinary returns the encoder executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
