package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riskhub/notify/pkg/email"
	"github.com/riskhub/notify/pkg/logger"
	"github.com/riskhub/notify/pkg/notification"
)

// dispatch hands n to the transport of its channel.
func (m *Manager) dispatch(ctx context.Context, n notification.Notification, user User) error {
	switch n.Channel {
	case notification.ChannelSystem:
		// In-app notifications are delivered once stored.
		return nil
	case notification.ChannelEmail:
		return m.sendEmail(ctx, n, user)
	case notification.ChannelSMS:
		return ErrChannelNotImplemented
	default:
		return fmt.Errorf("%w: unknown channel %q", notification.ErrDelivery, n.Channel)
	}
}

func (m *Manager) sendEmail(ctx context.Context, n notification.Notification, user User) error {
	if m.sender == nil {
		return ErrNoEmailTransport
	}
	if user.Email == "" {
		return ErrNoEmailAddress
	}

	html, err := email.RenderHTML(ctx, email.Layout(email.LayoutData{
		Title:        n.Title,
		Body:         n.Body,
		Badge:        string(n.Priority),
		SupportEmail: m.supportEmail,
	}))
	if err != nil {
		return fmt.Errorf("%w: render email: %w", notification.ErrDelivery, err)
	}

	if _, err := m.sender.SendEmail(ctx, email.Message{
		To:      user.Email,
		ToName:  user.Name,
		Subject: n.Title,
		HTML:    html,
		Text:    n.Title + "\n\n" + n.Body,
		Tag:     string(n.Type),
	}); err != nil {
		return fmt.Errorf("%w: %w", notification.ErrDelivery, err)
	}
	return nil
}

// deliverAndRecord dispatches a stored PENDING record, applies the outcome to
// its lifecycle and persists the result. The returned error is the delivery
// failure, joined with the storage failure when the outcome could not be
// saved.
func (m *Manager) deliverAndRecord(ctx context.Context, n notification.Notification, user User) (notification.Notification, error) {
	deliveryErr := m.dispatch(ctx, n, user)
	return m.record(ctx, n, deliveryErr)
}

// record applies a delivery outcome to n and stores it.
func (m *Manager) record(ctx context.Context, n notification.Notification, deliveryErr error) (notification.Notification, error) {
	at := m.now()

	var (
		next notification.Notification
		err  error
	)
	if deliveryErr == nil {
		next, err = n.MarkSent(at)
	} else {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "notification delivery failed",
			logger.NotificationID(n.ID),
			logger.UserID(n.UserID),
			logger.Channel(n.Channel),
			logger.Attempts(n.Attempts+1),
			logger.Error(deliveryErr),
		)
		next, err = n.MarkError(deliveryErr.Error(), at)
	}
	if err != nil {
		return n, errors.Join(deliveryErr, err)
	}

	saved, err := m.notifications.Update(ctx, next)
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "failed to save delivery outcome",
			logger.NotificationID(n.ID),
			logger.Channel(n.Channel),
			logger.Error(err),
		)
		return next, errors.Join(deliveryErr, notification.ErrDependency, err)
	}
	return saved, deliveryErr
}
