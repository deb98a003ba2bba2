// Package storage provides abstractions for persistent document storage.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no document is stored under the key.
var ErrNotFound = errors.New("document not found")

// Store defines the interface for key/value document storage.
// The ledger keeps its whole group collection as one JSON document under a
// fixed key, so a backend only needs to get, put and remove opaque blobs.
// This abstraction allows swapping storage backends (memory, SQLite, Redis)
// without changing the ledger.
type Store interface {
	// Load returns the document stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores doc under key, replacing any previous document.
	Save(ctx context.Context, key string, doc []byte) error

	// Remove deletes the document under key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
