// Package mail delivers transactional email over SMTP.
//
// A Mailer captures its settings once. When the username or password is
// missing it stays disabled: every send is skipped and reported as false.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"

	gomail "github.com/go-mail/mail"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ecsetu/portal/internal/core/domain"
)

// Config holds the SMTP settings.
type Config struct {
	Host   string
	Port   int
	Secure bool
	From   string
	User   string
	Pass   string
}

// Transport sends fully built messages.
type Transport interface {
	DialAndSend(m ...*gomail.Message) error
}

// TransportFactory builds a transport for one send.
type TransportFactory func(cfg Config) Transport

// Mailer implements ports.Mailer.
type Mailer struct {
	cfg          Config
	newTransport TransportFactory
	log          zerolog.Logger
}

// Option customizes a Mailer.
type Option func(*Mailer)

// WithTransportFactory replaces the SMTP dialer, mainly for tests.
func WithTransportFactory(f TransportFactory) Option {
	return func(m *Mailer) { m.newTransport = f }
}

// New returns a Mailer for cfg. From falls back to User when empty.
func New(cfg Config, log zerolog.Logger, opts ...Option) *Mailer {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	m := &Mailer{
		cfg:          cfg,
		newTransport: newDialer,
		log:          log.With().Str("component", "mailer").Str("host", cfg.Host).Int("port", cfg.Port).Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.Enabled() {
		m.log.Warn().Msg("SMTP configuration is missing, email delivery disabled")
	}
	return m
}

// Enabled reports whether credentials were configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.User != "" && m.cfg.Pass != ""
}

func newDialer(cfg Config) Transport {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.SSL = cfg.Secure
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return d
}

// transport returns nil when the mailer is disabled.
func (m *Mailer) transport() Transport {
	if !m.Enabled() {
		return nil
	}
	return m.newTransport(m.cfg)
}

// Send delivers msg and reports whether the SMTP server accepted it.
func (m *Mailer) Send(ctx context.Context, msg domain.EmailMessage) bool {
	log := m.log.With().Str("to", msg.To).Str("subject", msg.Subject).Logger()

	t := m.transport()
	if t == nil {
		log.Warn().Msg("email transport not configured, skipping delivery")
		return false
	}
	if err := ctx.Err(); err != nil {
		log.Error().Err(err).Msg("failed to send email")
		return false
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.cfg.Host)
	if err := t.DialAndSend(m.build(msg, messageID)); err != nil {
		log.Error().Err(err).Msg("failed to send email")
		return false
	}

	log.Info().Str("message_id", messageID).Msg("email sent successfully")
	return true
}

func (m *Mailer) build(msg domain.EmailMessage, messageID string) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetHeader("Message-ID", messageID)

	switch {
	case msg.Text != "" && msg.HTML != "":
		gm.SetBody("text/plain", msg.Text)
		gm.AddAlternative("text/html", msg.HTML)
	case msg.Text != "":
		gm.SetBody("text/plain", msg.Text)
	default:
		gm.SetBody("text/html", msg.HTML)
	}
	return gm
}
