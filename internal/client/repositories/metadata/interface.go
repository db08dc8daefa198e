package metadata

import (
	"context"
	"time"
)

// Keys used by the cache store.
const (
	KeyFetchedAt     = "fetched_at"
	KeyExpiresAt     = "expires_at"
	KeyLastSubmitted = "last_submitted"
)

// Repository is a small key/value table next to the cached rows.
// Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error

	// GetTime returns the zero time and false when the key is missing.
	GetTime(ctx context.Context, key string) (time.Time, bool, error)
	SetTime(ctx context.Context, key string, t time.Time) error
}
