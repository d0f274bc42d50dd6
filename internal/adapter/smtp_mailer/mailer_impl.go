package smtp_mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/gbp-leads/internal/repository"
	"github.com/user/gbp-leads/pkg/config"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPMailer sends the report to the configured account over a STARTTLS
// submission session.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

var _ repository.ReportMailer = (*SMTPMailer)(nil)

// NewSMTPMailer returns config.ErrMissingCredentials if either the account
// or the secret is empty.
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	return &SMTPMailer{cfg: cfg, logger: logger}, nil
}

func (m *SMTPMailer) buildMessage(subject, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Username); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.cfg.Username); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}

// Send opens one session, authenticates and submits a single message.
func (m *SMTPMailer) Send(ctx context.Context, subject, htmlBody string) (*repository.Delivery, error) {
	msg, err := m.buildMessage(subject, htmlBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrSendFailed, err)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	}
	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %w", repository.ErrSendFailed, err)
	}

	m.logger.Debug("submitting report",
		zap.String("host", m.cfg.Host),
		zap.Int("port", m.cfg.Port),
	)
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrSendFailed, err)
	}

	return &repository.Delivery{
		MessageID: strings.Join(msg.GetGenHeader(mail.HeaderMessageID), ","),
		Recipient: m.cfg.Username,
	}, nil
}
