package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed command keys to prevent duplicate processing
// of redriven commands.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// IsProcessed reports whether the key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Remove deletes a key, allowing the command to be retried
	Remove(ctx context.Context, key string) error
}
