package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePrinter()
	c.normalizeCamera()
	c.normalizeVideo()
	c.normalizeConnect()
	c.normalizeEmail()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.PrintsDir) == "" {
		c.Paths.PrintsDir = defaultPrintsDir
	}
	if c.Paths.PrintsDir, err = expandPath(c.Paths.PrintsDir); err != nil {
		return fmt.Errorf("paths.prints_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePrinter() {
	c.Printer.Host = strings.TrimSpace(c.Printer.Host)
	c.Printer.APIKey = strings.TrimSpace(c.Printer.APIKey)
	if c.Printer.APIKey == "" {
		if value, ok := os.LookupEnv("LAPSE_PRINTER_API_KEY"); ok {
			c.Printer.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Printer.PollInterval <= 0 {
		c.Printer.PollInterval = defaultPollInterval
	}
	if c.Printer.StatusTimeout <= 0 {
		c.Printer.StatusTimeout = defaultStatusTimeout
	}
	if c.Printer.JobTimeout <= 0 {
		c.Printer.JobTimeout = defaultJobTimeout
	}
}

func (c *Config) normalizeCamera() {
	if c.Camera.Width <= 0 {
		c.Camera.Width = defaultImageWidth
	}
	if c.Camera.Height <= 0 {
		c.Camera.Height = defaultImageHeight
	}
	switch c.Camera.Rotation {
	case 0, 90, 180, 270:
	default:
		c.warnings = append(c.warnings, fmt.Sprintf("camera.rotation %d is not one of 0/90/180/270, using 0", c.Camera.Rotation))
		c.Camera.Rotation = 0
	}
	if c.Camera.FocusDistance < 10 || c.Camera.FocusDistance > 100 {
		c.warnings = append(c.warnings, fmt.Sprintf("camera.focus_distance %dcm outside 10-100cm, using %dcm", c.Camera.FocusDistance, defaultFocusDistance))
		c.Camera.FocusDistance = defaultFocusDistance
	}
	c.Camera.ExtraParams = strings.TrimSpace(c.Camera.ExtraParams)
	if c.Camera.CaptureInterval <= 0 {
		c.Camera.CaptureInterval = defaultCaptureInterval
	}
	if c.Camera.CaptureTimeout <= 0 {
		c.Camera.CaptureTimeout = defaultCaptureTimeout
	}
}

func (c *Config) normalizeVideo() {
	if c.Video.FPS <= 0 {
		c.Video.FPS = defaultVideoFPS
	}
	if c.Video.BatchSize <= 0 {
		c.Video.BatchSize = defaultVideoBatchSize
	}
	if c.Video.EncodeTimeout <= 0 {
		c.Video.EncodeTimeout = defaultEncodeTimeout
	}
}

func (c *Config) normalizeConnect() {
	c.Connect.Token = strings.TrimSpace(c.Connect.Token)
	c.Connect.Fingerprint = strings.TrimSpace(c.Connect.Fingerprint)
	c.Connect.UploadURL = strings.TrimSpace(c.Connect.UploadURL)
	if c.Connect.UploadURL == "" {
		c.Connect.UploadURL = defaultConnectUploadURL
	}
	if c.Connect.Timeout <= 0 {
		c.Connect.Timeout = defaultConnectTimeout
	}
}

func (c *Config) normalizeEmail() {
	c.Email.SMTPServer = strings.TrimSpace(c.Email.SMTPServer)
	c.Email.Username = strings.TrimSpace(c.Email.Username)
	c.Email.From = strings.TrimSpace(c.Email.From)
	c.Email.To = strings.TrimSpace(c.Email.To)
	if c.Email.SMTPPort <= 0 {
		c.Email.SMTPPort = defaultSMTPPort
	}
	if c.Email.From == "" {
		c.Email.From = c.Email.Username
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
