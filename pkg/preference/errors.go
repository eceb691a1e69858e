package preference

import "errors"

var (
	ErrNotFound = errors.New("preference: not found")
	// ErrDuplicate is returned when a (user, type, channel) triple already has
	// a preference.
	ErrDuplicate = errors.New("preference: already exists")
)
