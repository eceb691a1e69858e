package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/riskhub/notify/pkg/validator"
)

// Sender delivers one email. Implementations validate the message first and
// wrap transport failures with ErrFailedToSendEmail.
type Sender interface {
	SendEmail(ctx context.Context, msg Message) (Receipt, error)
}

// Message is a rendered email.
type Message struct {
	To          string       `json:"to"`
	ToName      string       `json:"to_name,omitempty"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html,omitempty"`
	Text        string       `json:"text,omitempty"`
	Tag         string       `json:"tag,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a file sent along with a message.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// Receipt is what the provider reports for an accepted message.
type Receipt struct {
	MessageID string `json:"message_id,omitempty"`
}

// Validate checks the message can be handed to a provider.
func (m Message) Validate() error {
	rules := []validator.Rule{
		validator.RequiredString("to", m.To),
		validator.Email("to", m.To),
		validator.RequiredString("subject", m.Subject),
		{
			Check: func() bool { return strings.TrimSpace(m.HTML) != "" || strings.TrimSpace(m.Text) != "" },
			Error: validator.ValidationError{
				Field:   "body",
				Message: "html or text body is required",
				Code:    "validation.required",
			},
		},
	}
	for i, a := range m.Attachments {
		rules = append(rules, validator.RequiredString(fmt.Sprintf("attachments[%d].name", i), a.Name))
	}

	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func invalidConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

// NewSender builds the sender selected by cfg.Provider.
func NewSender(cfg Config) (Sender, error) {
	switch cfg.Provider {
	case ProviderPostmark:
		return NewPostmarkSender(cfg)
	case ProviderResend:
		return NewResendSender(cfg)
	case ProviderSMTP:
		return NewSMTPSender(cfg)
	case ProviderDev, "":
		return NewDevSender(cfg.DevDir), nil
	default:
		return nil, invalidConfig("unknown provider " + cfg.Provider)
	}
}

// MustNewSender is NewSender that panics on invalid config.
func MustNewSender(cfg Config) Sender {
	s, err := NewSender(cfg)
	if err != nil {
		panic(err)
	}
	return s
}
