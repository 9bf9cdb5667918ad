package repository

import (
	"context"
	"time"
)

// CounterStore counts hits per key inside a fixed window. The window starts
// with the first hit on a key.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
