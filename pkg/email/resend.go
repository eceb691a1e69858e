package email

import (
	"context"
	"errors"
	"net/url"

	"github.com/resend/resend-go/v2"
)

type resendSender struct {
	client *resend.Client
	config Config
}

// ResendOption configures the Resend sender.
type ResendOption func(*resend.Client)

// WithResendBaseURL points the client at another API endpoint.
func WithResendBaseURL(u *url.URL) ResendOption {
	return func(c *resend.Client) {
		if u != nil {
			c.BaseURL = u
		}
	}
}

// NewResendSender creates a Resend-backed email sender.
func NewResendSender(cfg Config, opts ...ResendOption) (Sender, error) {
	if cfg.ResendAPIKey == "" {
		return nil, invalidConfig("ResendAPIKey is required")
	}
	if err := cfg.validateIdentity(); err != nil {
		return nil, err
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	for _, opt := range opts {
		opt(client)
	}
	return &resendSender{client: client, config: cfg}, nil
}

func (s *resendSender) SendEmail(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.Validate(); err != nil {
		return Receipt{}, err
	}

	req := &resend.SendEmailRequest{
		From:    s.config.SenderEmail,
		To:      []string{msg.To},
		ReplyTo: s.config.SupportEmail,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if msg.Tag != "" {
		req.Tags = []resend.Tag{{Name: "category", Value: msg.Tag}}
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Name,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return Receipt{}, errors.Join(ErrFailedToSendEmail, err)
	}
	return Receipt{MessageID: resp.Id}, nil
}
