package model

import "errors"

// Validation errors returned while constructing events.
var (
	ErrInvalidOutcome = errors.New("invalid outcome")
	ErrInvalidZone    = errors.New("invalid zone")
	ErrInvalidRole    = errors.New("invalid role")
	ErrMissingField   = errors.New("missing field")
)
