package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get for missing or expired keys
var ErrNotFound = errors.New("key not found")

// Store is a key/value store with per-key expiry
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}
