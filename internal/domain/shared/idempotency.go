package shared

import (
	"context"
	"time"
)

// IdempotencyRecord is what an IdempotencyStore keeps for one request key.
// While the first request is still running the record is InProgress and carries
// no response; once it finishes the response is stored for replay.
type IdempotencyRecord struct {
	InProgress  bool      `json:"in_progress"`
	StatusCode  int       `json:"status_code"`
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type"`
	BodyHash    string    `json:"body_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// IdempotencyStore remembers the outcome of mutating requests keyed by a
// client-supplied idempotency key
type IdempotencyStore interface {
	// Reserve atomically claims key with an in-progress record.
	// Returns true if the key was newly claimed, false if it already existed.
	Reserve(ctx context.Context, key string, record IdempotencyRecord, ttl time.Duration) (bool, error)

	// Load returns the stored record, or nil if the key is unknown
	Load(ctx context.Context, key string) (*IdempotencyRecord, error)

	// Complete stores the final response for key
	Complete(ctx context.Context, key string, record IdempotencyRecord, ttl time.Duration) error

	// Release forgets key so the request may be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed response is replayed for
	TTL time.Duration

	// LockTTL bounds how long an in-progress reservation survives a crashed request
	LockTTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		LockTTL: 60 * time.Second,
		Enabled: true,
	}
}
