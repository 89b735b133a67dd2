package ranking

import "errors"

// ErrInvalidTieBreak is returned for unknown tie-break names.
var ErrInvalidTieBreak = errors.New("invalid tie-break")
