package decay

import "errors"

var (
	// ErrIntegrity marks a weight or ratio outside its valid range.
	ErrIntegrity = errors.New("integrity error")
	// ErrInvalidRate marks a decay rate that is not a positive finite number.
	ErrInvalidRate = errors.New("invalid decay rate")
)
