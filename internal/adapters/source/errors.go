package source

import "errors"

// Sentinel error kinds for event sources.
var (
	ErrInvalidRow    = errors.New("invalid row")
	ErrMissingColumn = errors.New("missing column")
	ErrUnavailable   = errors.New("source unavailable")
	ErrEmpty         = errors.New("source empty")
	ErrNoSource      = errors.New("no usable event source")
)
