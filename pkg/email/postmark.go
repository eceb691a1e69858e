package email

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type postmarkSender struct {
	client *postmark.Client
	config Config
}

// NewPostmarkSender creates a Postmark-backed email sender.
// Both tokens are required.
func NewPostmarkSender(cfg Config) (Sender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, invalidConfig("PostmarkServerToken is required")
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, invalidConfig("PostmarkAccountToken is required")
	}
	if err := cfg.validateIdentity(); err != nil {
		return nil, err
	}

	return &postmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

// SendEmail implements Sender using Postmark's transactional API.
// Opens and HTML link clicks are tracked; Reply-To is the support address.
func (c *postmarkSender) SendEmail(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.Validate(); err != nil {
		return Receipt{}, err
	}

	attachments := make([]postmark.Attachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, postmark.Attachment{
			Name:        a.Name,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
		})
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:        c.config.SenderEmail,
		ReplyTo:     c.config.SupportEmail,
		To:          msg.To,
		Subject:     msg.Subject,
		Tag:         msg.Tag,
		HTMLBody:    msg.HTML,
		TextBody:    msg.Text,
		Attachments: attachments,
		TrackOpens:  true,
		TrackLinks:  "HtmlOnly",
	})
	if err != nil {
		return Receipt{}, errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return Receipt{}, errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return Receipt{MessageID: resp.MessageID}, nil
}
