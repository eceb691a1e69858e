package email

import "time"

// Provider names accepted by EMAIL_PROVIDER.
const (
	ProviderPostmark = "postmark"
	ProviderResend   = "resend"
	ProviderSMTP     = "smtp"
	ProviderDev      = "dev"
)

// Config holds email service configuration. Only the settings of the selected
// provider are required; SenderEmail and SupportEmail always are, since they
// set the From and Reply-To of every message.
type Config struct {
	Provider string `env:"EMAIL_PROVIDER" envDefault:"dev"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	ResendAPIKey string `env:"RESEND_API_KEY"`

	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`

	DevDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`

	SenderEmail  string `env:"SENDER_EMAIL,required"`
	SupportEmail string `env:"SUPPORT_EMAIL,required"`
}

func (c Config) validateIdentity() error {
	if c.SenderEmail == "" {
		return invalidConfig("SenderEmail is required")
	}
	if !emailRegex.MatchString(c.SenderEmail) {
		return invalidConfig("SenderEmail must be a valid email address")
	}
	if c.SupportEmail == "" {
		return invalidConfig("SupportEmail is required")
	}
	if !emailRegex.MatchString(c.SupportEmail) {
		return invalidConfig("SupportEmail must be a valid email address")
	}
	return nil
}
