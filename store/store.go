// Package store defines the key/value contract shared by the session binder and
// the sign-in flow, plus in-memory and Redis backed implementations.
package store

import (
	"context"
	"time"
)

// Store is a key/value store with per-key TTL and hash style multi-field access.
// Implementations must provide per-key atomicity; no cross-key transactions are
// assumed by callers.
type Store interface {
	// Exists reports whether key holds a live (non-expired) entry.
	Exists(ctx context.Context, key string) (bool, error)

	// GetMultiple returns one entry per requested field, nil where the field is missing.
	GetMultiple(ctx context.Context, key string, fields ...string) ([]*string, error)

	// SetMultiple writes a flat alternating field/value list into the hash at key.
	SetMultiple(ctx context.Context, key string, fieldValues ...string) error

	// SetSingle stores a plain value at key.
	SetSingle(ctx context.Context, key, value string) error

	// GetSingle returns the plain value at key and whether it was present.
	GetSingle(ctx context.Context, key string) (string, bool, error)

	// Take atomically reads and deletes the plain value at key. At most one
	// concurrent caller observes ok == true for the same entry.
	Take(ctx context.Context, key string) (value string, ok bool, err error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Expire sets the time to live of key. Missing keys are ignored.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
