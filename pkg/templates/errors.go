package templates

import "errors"

var (
	ErrUnknownType       = errors.New("templates: no template for notification type")
	ErrInvalidTemplate   = errors.New("templates: invalid template")
	ErrFailedToReadFile  = errors.New("templates: failed to read catalog file")
	ErrFailedToParseYAML = errors.New("templates: failed to parse catalog YAML")
)
