package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidMode     = errors.New("invalid timer mode")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrEngineStopped   = errors.New("timer engine is not running")
	ErrUnauthorized    = errors.New("not authorized")
)
