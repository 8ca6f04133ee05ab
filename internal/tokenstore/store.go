// Package tokenstore holds short-lived opaque tokens (CSRF tokens) behind an
// injected interface so a multi-instance deployment can share them through
// Redis instead of a process-local map.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a token is absent or expired.
var ErrNotFound = errors.New("tokenstore: not found")

// Store is a key-value store with per-entry TTL. Expiry is real deletion;
// tokens are the one record type that is never soft-deleted.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
