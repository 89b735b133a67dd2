package cache

import "errors"

// ErrNilClient is returned when a Redis cache is built without a client.
var ErrNilClient = errors.New("redis client is nil")
