package distribution

import "errors"

// ErrInvalidField is returned for unknown category fields.
var ErrInvalidField = errors.New("invalid distribution field")
