package trend

import "errors"

// Query validation errors.
var (
	ErrInvalidBucket = errors.New("invalid bucket")
	ErrInvalidMetric = errors.New("invalid metric")
	ErrInvalidFill   = errors.New("invalid fill policy")
	ErrRangeTooLarge = errors.New("period range too large")
)
