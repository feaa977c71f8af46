package connect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"lapse/internal/config"
	"lapse/internal/services"
)

// Uploader defines the snapshot upload surface the monitor depends on.
type Uploader interface {
	Upload(ctx context.Context, imagePath string) error
	Enabled() bool
}

// HTTPDoer describes the HTTP client used by the uploader.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the uploader.
type Option func(*Service)

// WithHTTPDoer injects a custom HTTP client (primarily for tests).
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(s *Service) {
		if doer != nil {
			s.client = doer
		}
	}
}

// Service uploads snapshots to Prusa Connect.
type Service struct {
	uploadURL   string
	token       string
	fingerprint string
	rotation    int
	timeout     time.Duration
	client      HTTPDoer
}

// New constructs a snapshot uploader from configuration. When the token
// or fingerprint is missing the service is disabled and Upload becomes
// a no-op.
func New(cfg *config.Config, opts ...Option) *Service {
	service := &Service{
		client: http.DefaultClient,
	}
	if cfg != nil {
		service.uploadURL = strings.TrimSpace(cfg.Connect.UploadURL)
		service.token = strings.TrimSpace(cfg.Connect.Token)
		service.fingerprint = strings.TrimSpace(cfg.Connect.Fingerprint)
		service.rotation = cfg.Camera.Rotation
		service.timeout = time.Duration(cfg.Connect.Timeout) * time.Second
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Enabled reports whether the uploader has credentials to work with.
func (s *Service) Enabled() bool {
	return s.token != "" && s.fingerprint != ""
}

// Upload PUTs the JPEG at imagePath to the Connect webcam endpoint.
func (s *Service) Upload(ctx context.Context, imagePath string) error {
	if !s.Enabled() {
		return nil
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "connect", "read snapshot", imagePath, err)
	}
	// Connect renders the bytes as-is, so the camera rotation has to be
	// baked into the image before it leaves the box.
	data = rotateJPEG(data, s.rotation)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.uploadURL, bytes.NewReader(data))
	if err != nil {
		return services.Wrap(services.ErrTransient, "connect", "build request", "", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-type", "image/jpg")
	req.Header.Set("Fingerprint", s.fingerprint)
	req.Header.Set("Token", s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "connect", "upload snapshot", "", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return services.Wrap(services.ErrTransient, "connect", "upload snapshot",
			fmt.Sprintf("endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
}

var _ Uploader = (*Service)(nil)
