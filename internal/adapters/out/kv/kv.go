// internal/adapters/out/kv/kv.go
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: not found")

// Store is the durable key-value storage port the cart repository is
// built on. Implementations: Memory (tests), Firestore, Redis and
// Postgres adapters.
//
// Get returns ErrNotFound for an absent key; Remove of an absent key
// is a no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
