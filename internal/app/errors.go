package service

import "errors"

// Service errors.
var (
	ErrInvalidQuery = errors.New("invalid query")
	ErrNotStarted   = errors.New("service not started")
	ErrUnknownTeam  = errors.New("unknown team")
)
