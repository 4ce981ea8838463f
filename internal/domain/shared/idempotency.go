package shared

import (
	"context"
	"time"
)

// IdempotencyStore records consumed idempotency keys so that replaying an
// already-committed operation does not double-apply its stock and balance
// mutations.
type IdempotencyStore interface {
	// MarkProcessed claims a key with a TTL. Returns true if the key was
	// newly claimed, false if it was already consumed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a key has already been consumed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Clear releases a claimed key. Called when the operation that claimed
	// the key fails before commit, so the caller may safely resubmit.
	Clear(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a consumed key stays claimed. After this duration the
	// same key is accepted again. Default: 24 hours.
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled.
	// Default: true.
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
