package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed keys to prevent duplicate side effects.
// MarkProcessed is the atomic claim: two concurrent callers with the same
// key get exactly one true. Event submission claims the key before its
// transaction, releases it when the transaction fails, and attaches the
// created event ID as the result so a replayed request can return the
// original outcome.
type IdempotencyStore interface {
	// MarkProcessed atomically marks a key as processed with a TTL
	// Returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release removes a key so the operation can be retried with the same key
	Release(ctx context.Context, key string) error

	// SetResult attaches the operation's outcome to an already marked key
	SetResult(ctx context.Context, key, result string, ttl time.Duration) error

	// GetResult returns the outcome attached to a key, or "" when the key is
	// unknown or its operation has not completed yet
	GetResult(ctx context.Context, key string) (string, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed keys
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
