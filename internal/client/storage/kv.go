// Package storage is the planner's durable local persistence layer:
// a string-keyed key-value store holding JSON documents, with a Store
// on top that knows the planner's key scheme (user collection, current
// session, one document per user per date).
package storage

import "context"

// KV is the raw key-value surface. Values are JSON text; a nil value
// from Get means the key is absent (never an error).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists all stored keys with the given prefix, ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Clear(ctx context.Context) error
}
