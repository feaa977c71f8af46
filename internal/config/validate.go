package config

import (
	"errors"
	"fmt"
	"strings"
)

// dangerousParamPatterns are rejected in camera.extra_params. The capture
// command is spawned without a shell, but these patterns have no legitimate
// use in rpicam-still arguments and rejecting them keeps the contract even
// if the invocation path changes.
var dangerousParamPatterns = []string{"&&", ";", "||", "`", "$(", "${", "\n", "\r"}

// conflictingParamFlags are set from [camera] configuration and are ignored
// when they also appear in extra_params.
var conflictingParamFlags = []string{"--output", "--width", "--height"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePrinter(); err != nil {
		return err
	}
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePrinter() error {
	if c.Printer.Host == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/lapse/config.toml"
		}
		return fmt.Errorf("printer.host is required. Edit %s (create with 'lapse config init')", defaultPath)
	}
	if c.Printer.APIKey == "" {
		return errors.New("printer.api_key is required. Set LAPSE_PRINTER_API_KEY env var or add it to the config file")
	}
	return ensurePositiveMap(map[string]int{
		"printer.poll_interval":  c.Printer.PollInterval,
		"printer.status_timeout": c.Printer.StatusTimeout,
		"printer.job_timeout":    c.Printer.JobTimeout,
	})
}

func (c *Config) validateCamera() error {
	if err := SanitizeExtraParams(c.Camera.ExtraParams); err != nil {
		return err
	}
	for _, flag := range conflictingParamFlags {
		if strings.Contains(c.Camera.ExtraParams, flag) {
			c.warnings = append(c.warnings, fmt.Sprintf("camera.extra_params flag %q is ignored (set by configuration)", flag))
		}
	}
	return ensurePositiveMap(map[string]int{
		"camera.capture_interval": c.Camera.CaptureInterval,
		"camera.capture_timeout":  c.Camera.CaptureTimeout,
		"video.fps":               c.Video.FPS,
		"video.batch_size":        c.Video.BatchSize,
		"video.encode_timeout":    c.Video.EncodeTimeout,
	})
}

func (c *Config) validateEmail() error {
	hasTo := c.Email.To != ""
	hasServer := c.Email.SMTPServer != ""
	if hasTo != hasServer {
		return errors.New("email configuration incomplete: email.to and email.smtp_server must be provided together, or both left empty to disable notifications")
	}
	hasUser := c.Email.Username != ""
	hasPass := c.Email.Password != ""
	if hasUser != hasPass {
		return errors.New("email.username and email.password must be provided together, or both left empty for no authentication")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

// SanitizeExtraParams rejects capture parameters containing command
// injection patterns. A match is a configuration error that aborts startup
// or reload; patterns are never silently stripped.
func SanitizeExtraParams(params string) error {
	if params == "" {
		return nil
	}
	for _, pattern := range dangerousParamPatterns {
		if strings.Contains(params, pattern) {
			return fmt.Errorf("camera.extra_params: dangerous pattern %q detected", pattern)
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
