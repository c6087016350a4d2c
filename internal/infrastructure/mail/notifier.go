// Package mail is the best-effort email notifier. Delivery failures are
// reported to the caller as ports.NotifyResult, never as errors.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/suivipro/platform/internal/api/metrics"
	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// ErrDisabled is reported when no SMTP transport is configured.
var ErrDisabled = errors.New("mail: smtp transport not configured")

// Config holds SMTP settings.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
	Timeout     time.Duration
}

// Enabled reports whether the transport is configured.
func (c Config) Enabled() bool {
	return c.Host != "" && c.Username != ""
}

type email struct {
	To      string
	Subject string
	HTML    string
}

// Notifier implements ports.Notifier over SMTP.
type Notifier struct {
	cfg     Config
	deliver func(ctx context.Context, e email) error
	log     zerolog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier returns a Notifier. A config without host or user yields a
// notifier that reports every send as not sent.
func NewNotifier(cfg Config, log zerolog.Logger) (*Notifier, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	n := &Notifier{cfg: cfg, log: log}
	if !cfg.Enabled() {
		log.Warn().Msg("smtp not configured, notification emails are disabled")
		return n, nil
	}

	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}

	n.deliver = func(ctx context.Context, e email) error {
		msg, err := buildMessage(cfg.From, e)
		if err != nil {
			return err
		}
		return client.DialAndSendWithContext(ctx, msg)
	}
	return n, nil
}

func (n *Notifier) SendWelcome(ctx context.Context, user *domain.User, tempPassword string) ports.NotifyResult {
	body, err := render(welcomeTmpl, templateData{
		Name:     displayName(user),
		Username: user.Username,
		Password: tempPassword,
		LoginURL: n.loginURL(),
	})
	if err != nil {
		return n.finish("welcome", user, err)
	}
	return n.send(ctx, "welcome", user, email{To: user.Email, Subject: "Your new account", HTML: body})
}

func (n *Notifier) SendPasswordChanged(ctx context.Context, user *domain.User) ports.NotifyResult {
	body, err := render(passwordChangedTmpl, templateData{
		Name:     displayName(user),
		Username: user.Username,
		LoginURL: n.loginURL(),
	})
	if err != nil {
		return n.finish("password_changed", user, err)
	}
	return n.send(ctx, "password_changed", user, email{To: user.Email, Subject: "Your password was changed", HTML: body})
}

func (n *Notifier) send(ctx context.Context, kind string, user *domain.User, e email) ports.NotifyResult {
	if n.deliver == nil {
		metrics.NotificationsTotal.WithLabelValues(kind, "disabled").Inc()
		n.log.Warn().Str("kind", kind).Str("user_id", user.ID).Msg("notification skipped, smtp not configured")
		return ports.NotifyResult{Err: ErrDisabled}
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()
	return n.finish(kind, user, n.deliver(ctx, e))
}

func (n *Notifier) finish(kind string, user *domain.User, err error) ports.NotifyResult {
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(kind, "failed").Inc()
		n.log.Warn().Err(err).Str("kind", kind).Str("user_id", user.ID).Msg("notification failed")
		return ports.NotifyResult{Err: err}
	}
	metrics.NotificationsTotal.WithLabelValues(kind, "sent").Inc()
	n.log.Info().Str("kind", kind).Str("user_id", user.ID).Msg("notification sent")
	return ports.NotifyResult{Sent: true}
}

func (n *Notifier) loginURL() string {
	return strings.TrimRight(n.cfg.FrontendURL, "/") + "/login"
}

func buildMessage(from string, e email) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(e.To); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, e.HTML)
	return msg, nil
}

func displayName(u *domain.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
