package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/riskhub/notify/pkg/logger"
	"github.com/riskhub/notify/pkg/notification"
)

// isDuplicate reports whether the user already got a notification of the
// same type about the same entities within the dedup window. Related ids
// unset on the candidate are not compared. Lookup errors count as "no
// duplicate".
func (m *Manager) isDuplicate(ctx context.Context, candidate notification.Notification, now time.Time) bool {
	since := now.Add(-m.dedupWindow)

	found, err := m.notifications.Find(ctx, notification.Filter{
		UserID:      &candidate.UserID,
		Types:       []notification.Type{candidate.Type},
		CreatedFrom: &since,
		Related:     candidate.Related,
		Page:        notification.Page{Limit: 1},
	})
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "duplicate check failed, sending anyway",
			logger.UserID(candidate.UserID),
			logger.NotificationType(candidate.Type),
			logger.Error(err),
		)
		return false
	}
	return len(found) > 0
}
