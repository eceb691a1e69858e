package delivery

import (
	"errors"
	"fmt"

	"github.com/riskhub/notify/pkg/notification"
)

var (
	// ErrChannelNotImplemented is returned for channels without a transport.
	ErrChannelNotImplemented = fmt.Errorf("%w: channel not implemented", notification.ErrDelivery)
	// ErrNoEmailTransport is returned when EMAIL is resolved but no sender is configured.
	ErrNoEmailTransport = fmt.Errorf("%w: no email transport configured", notification.ErrDelivery)
	// ErrNoEmailAddress is returned when the target user has no address.
	ErrNoEmailAddress = fmt.Errorf("%w: user has no email address", notification.ErrDelivery)

	ErrInvalidConfig = errors.New("delivery: invalid config")
	ErrLockNotHeld   = errors.New("delivery: sweep lock held by another process")
	ErrSweepRunning  = errors.New("delivery: sweep already running")
)
