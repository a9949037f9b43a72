// Package kv defines the key-value store behind user settings and the
// settings service built on it.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// KV is a persistent key-value store. Keys are strings and values are
// JSON-serializable.
type KV interface {
	// Get deserializes the value at key into dest. A missing key returns an
	// error wrapping ErrNotFound.
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	// ListKeys returns every key in sorted order.
	ListKeys(ctx context.Context) ([]string, error)
}
