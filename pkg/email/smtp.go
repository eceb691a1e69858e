package email

import (
	"bytes"
	"context"
	"errors"

	"gopkg.in/mail.v2"
)

type smtpSender struct {
	dialer *mail.Dialer
	config Config
}

// NewSMTPSender creates a sender that relays through an SMTP server.
func NewSMTPSender(cfg Config) (Sender, error) {
	if cfg.SMTPHost == "" {
		return nil, invalidConfig("SMTPHost is required")
	}
	if cfg.SMTPPort <= 0 {
		return nil, invalidConfig("SMTPPort must be positive")
	}
	if err := cfg.validateIdentity(); err != nil {
		return nil, err
	}

	dialer := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	if cfg.SMTPTimeout > 0 {
		dialer.Timeout = cfg.SMTPTimeout
	}
	return &smtpSender{dialer: dialer, config: cfg}, nil
}

// SendEmail dials the server for every message. The dial itself is bounded by
// the configured timeout; ctx is only checked before dialing.
func (s *smtpSender) SendEmail(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.Validate(); err != nil {
		return Receipt{}, err
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, errors.Join(ErrFailedToSendEmail, err)
	}

	if err := s.dialer.DialAndSend(buildMIME(s.config, msg)); err != nil {
		return Receipt{}, errors.Join(ErrFailedToSendEmail, err)
	}
	return Receipt{}, nil
}

// buildMIME assembles the multipart message: text first, HTML as the
// preferred alternative, then attachments.
func buildMIME(cfg Config, msg Message) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", cfg.SenderEmail)
	m.SetHeader("Reply-To", cfg.SupportEmail)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	if msg.Tag != "" {
		m.SetHeader("X-Tag", msg.Tag)
	}

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	for _, a := range msg.Attachments {
		var settings []mail.FileSetting
		if a.ContentType != "" {
			settings = append(settings, mail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		m.AttachReader(a.Name, bytes.NewReader(a.Content), settings...)
	}
	return m
}
