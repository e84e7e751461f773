// Package storage defines the key-value persistence gateway and its local backends.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key holds no value.
var ErrKeyNotFound = errors.New("key not found")

// Gateway is a flat key-value store. Set overwrites the whole value of a key.
// Removing an absent key is not an error.
type Gateway interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
