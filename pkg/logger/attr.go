package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// UserID records the target user under "user_id".
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}

// NotificationID records a notification id under "notification_id".
// A nil id (record not persisted yet) yields an empty Attr.
func NotificationID(id *int64) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Int64("notification_id", *id)
}

// NotificationType records the notification type under "notification_type".
func NotificationType[T ~string](t T) slog.Attr {
	return slog.String("notification_type", string(t))
}

// Channel records the delivery channel under "channel".
func Channel[T ~string](c T) slog.Attr {
	return slog.String("channel", string(c))
}

// Attempts records the send-attempt counter under "attempts".
func Attempts(n int) slog.Attr {
	return slog.Int("attempts", n)
}

// Count records a generic counter under key.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Duration records d under "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
