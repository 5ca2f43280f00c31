// internal/pkg/session/store.go
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecord is returned by a Store when a key is absent or already expired.
var ErrNoRecord = errors.New("session: no record")

// Store is the persistence boundary for session state. The Manager is the
// only code that touches these keys; nothing else in the service reads or
// writes them directly.
type Store interface {
	// Set stores a value under key with the given TTL. A non-positive TTL
	// stores the value without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key, or ErrNoRecord if absent.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
