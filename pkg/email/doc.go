// Package email is the email transport used to deliver notifications.
//
// Sender is the provider-neutral contract. Implementations:
//   - NewPostmarkSender: Postmark transactional API
//   - NewResendSender: Resend API
//   - NewSMTPSender: any SMTP relay
//   - NewDevSender: writes messages to a local directory
//
// NewSender picks one from Config.Provider (EMAIL_PROVIDER).
//
// Every implementation validates the Message first, returning an error
// matching ErrInvalidParams, and wraps provider failures with
// ErrFailedToSendEmail:
//
//	receipt, err := sender.SendEmail(ctx, email.Message{
//		To:      "ana@example.com",
//		Subject: "Riesgo crítico: Fuga de datos",
//		HTML:    html,
//		Text:    text,
//	})
//
// Layout is the HTML shell notifications are rendered into; RenderHTML turns
// any templ component into a string.
package email
