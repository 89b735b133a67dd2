package repository

import "errors"

// Sentinel kinds for event store errors.
var (
	ErrNotFound  = errors.New("entity not found")
	ErrNotLoaded = errors.New("event log not loaded")
)
