package printer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"lapse/internal/config"
	"lapse/internal/services"
)

// Status is the PrusaLink /api/v1/status payload, reduced to the fields
// the monitor consumes.
type Status struct {
	Printer struct {
		State string `json:"state"`
	} `json:"printer"`
}

// Printing reports whether the printer state counts as an active print.
// PAUSED counts: a paused print is still a session in progress.
func (s *Status) Printing() bool {
	if s == nil {
		return false
	}
	switch strings.ToUpper(strings.TrimSpace(s.Printer.State)) {
	case "PRINTING", "PAUSED":
		return true
	default:
		return false
	}
}

// JobFile describes the file being printed.
type JobFile struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Path        string         `json:"path"`
	Size        int64          `json:"size"`
	Meta        map[string]any `json:"meta"`
}

// Job is the PrusaLink /api/v1/job payload.
type Job struct {
	ID           int64   `json:"id"`
	State        string  `json:"state"`
	Progress     float64 `json:"progress"`
	TimePrinting int64   `json:"time_printing"`
	File         JobFile `json:"file"`
}

// Name returns the job's display name with any path and extension
// stripped, or "" when the job carries no usable name.
func (j *Job) Name() string {
	if j == nil {
		return ""
	}
	name := strings.TrimSpace(j.File.DisplayName)
	if name == "" {
		name = strings.TrimSpace(j.File.Name)
	}
	if name == "" {
		return ""
	}
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Client defines the printer API surface the monitor depends on.
type Client interface {
	Status(ctx context.Context) (*Status, error)
	Job(ctx context.Context) (*Job, error)
}

// HTTPDoer describes the HTTP client used by the PrusaLink service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient talks to a PrusaLink instance over plain HTTP.
type HTTPClient struct {
	baseURL       string
	apiKey        string
	client        HTTPDoer
	statusTimeout time.Duration
	jobTimeout    time.Duration
}

// Option configures the HTTP client.
type Option func(*HTTPClient)

// WithHTTPDoer injects a custom HTTP client (primarily for tests).
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(c *HTTPClient) {
		if doer != nil {
			c.client = doer
		}
	}
}

// WithBaseURL overrides the derived base URL (primarily for tests).
func WithBaseURL(baseURL string) Option {
	return func(c *HTTPClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// New constructs a PrusaLink client from configuration.
func New(cfg *config.Config, opts ...Option) (*HTTPClient, error) {
	if cfg == nil {
		return nil, errors.New("printer client requires config")
	}
	host := strings.TrimSpace(cfg.Printer.Host)
	if host == "" {
		return nil, errors.New("printer host required")
	}
	client := &HTTPClient{
		baseURL:       fmt.Sprintf("http://%s/api/v1", host),
		apiKey:        strings.TrimSpace(cfg.Printer.APIKey),
		client:        http.DefaultClient,
		statusTimeout: time.Duration(cfg.Printer.StatusTimeout) * time.Second,
		jobTimeout:    time.Duration(cfg.Printer.JobTimeout) * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Status fetches the current printer state.
func (c *HTTPClient) Status(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.get(ctx, "/status", c.statusTimeout, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Job fetches details of the job currently being printed.
func (c *HTTPClient) Job(ctx context.Context) (*Job, error) {
	var job Job
	if err := c.get(ctx, "/job", c.jobTimeout, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, timeout time.Duration, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "printer", "build request", endpoint, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "printer", "request", endpoint, err)
		}
		return services.Wrap(services.ErrTransient, "printer", "request", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransient, "printer", "request",
			fmt.Sprintf("%s returned %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, "printer", "decode response", endpoint, err)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
