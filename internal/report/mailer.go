package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wneessen/go-mail"

	"lapse/internal/config"
	"lapse/internal/logging"
)

// Mailer sends the completion email with the timelapse attached. A
// mailer built from a config without email settings is disabled and
// Send becomes a no-op.
type Mailer struct {
	cfg    config.Email
	logger *slog.Logger
}

// NewMailer constructs a mailer from configuration.
func NewMailer(cfg *config.Config, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Mailer{logger: logger}
	if cfg != nil && cfg.EmailConfigured() {
		m.cfg = cfg.Email
	}
	return m
}

// Enabled reports whether the mailer has a destination to send to.
func (m *Mailer) Enabled() bool {
	return m.cfg.SMTPServer != "" && m.cfg.To != ""
}

// Send delivers the completion email for a finished print. The video
// at summary.VideoPath is attached when it exists.
func (m *Mailer) Send(ctx context.Context, summary *Summary) error {
	if !m.Enabled() {
		m.logger.Info("email not configured, skipping notification")
		return nil
	}

	body, err := BuildEmailBody(summary)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}
	if err := msg.From(from); err != nil {
		return fmt.Errorf("set email sender: %w", err)
	}
	if err := msg.To(m.cfg.To); err != nil {
		return fmt.Errorf("set email recipient: %w", err)
	}
	name := summary.RawName
	if name == "" {
		name = summary.Name
	}
	msg.Subject(fmt.Sprintf("Print Complete: %s", name))
	msg.SetBodyString(mail.TypeTextHTML, body)

	if summary.VideoPath != "" {
		if info, statErr := os.Stat(summary.VideoPath); statErr == nil {
			m.logger.Info("attaching timelapse video",
				logging.String("path", summary.VideoPath),
				logging.Int64("bytes", info.Size()))
			msg.AttachFile(summary.VideoPath)
		} else {
			m.logger.Warn("timelapse video missing, sending email without attachment",
				logging.String("path", summary.VideoPath))
		}
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.SMTPServer, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send completion email: %w", err)
	}
	return nil
}
