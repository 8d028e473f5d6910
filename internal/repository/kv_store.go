package repository

import (
	"context"
	"errors"
	"fmt"
)

// Keys kept in the local store.
const (
	KeyProducts = "products_offline"
	KeyToken    = "token"
	KeyCart     = "cart"
)

var ErrNotFound = errors.New("key not found")

// KVStore is the persistent local key-value store behind the cache, the
// cart and the session token.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// StorageError reports a local store read or write that failed, or a
// stored value that could not be decoded.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
