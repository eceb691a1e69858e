package validator

import "errors"

// ErrValidationFailed is a generic failure for callers that do not need field details.
var ErrValidationFailed = errors.New("validation failed")
