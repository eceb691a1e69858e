// Package notification defines the notification record of the risk and
// compliance platform, its delivery lifecycle and the storage contract used
// to persist it.
//
// A Notification is a value. Lifecycle methods never mutate the receiver;
// they return the next version of the record, which the caller persists:
//
//	n, err := notification.New(notification.Params{
//		Type:     notification.TypeCriticalRisk,
//		Title:    "Riesgo crítico detectado",
//		Body:     "El riesgo R-12 superó el umbral",
//		UserID:   42,
//		Channel:  notification.ChannelEmail,
//		Priority: notification.PriorityCritical,
//	})
//	if err != nil {
//		return err
//	}
//	n, _ = store.Create(ctx, n)
//	if sent, err := n.MarkSent(time.Now()); err == nil {
//		n, err = store.Update(ctx, sent)
//	}
//
// # Lifecycle
//
// PENDIENTE -> ENVIADA -> LEIDA. Any non-READ state may move to ERROR, which
// counts an attempt. ERROR returns to PENDIENTE through Retry while fewer than
// MaxAttempts attempts were made. Illegal moves fail with *InvalidStateError,
// which matches ErrInvalidState.
//
// # Storage
//
// Storage is the persistence contract. MemoryStorage backs tests and local
// development; pkg/pgstore provides the PostgreSQL implementation.
package notification
