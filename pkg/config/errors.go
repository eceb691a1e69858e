package config

import "errors"

var (
	ErrParsingConfig     = errors.New("failed to parse environment variables into config")
	ErrInvalidConfigType = errors.New("invalid config type: must be a struct")
	ErrNilPointer        = errors.New("nil pointer provided to config loader")
	ErrLoadingEnvFile    = errors.New("failed to load env file")
)
