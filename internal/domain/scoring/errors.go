package scoring

import "errors"

// ErrInvalidPointMap is returned for point maps with unknown outcomes or non-finite values.
var ErrInvalidPointMap = errors.New("invalid point map")
