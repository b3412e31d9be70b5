// Package memorystorage provides the in-memory storage tier: the jsondb
// cache without any file persistence. It is the default backend when neither
// a database DSN nor a storage file is configured, and the backend of choice
// for tests.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/clipnotes/internal/db/jsondb"
)

// MemoryStorage is a jsondb whose Close and Ping do nothing.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: jsondb.NewEmpty(),
	}, nil
}

// Close is a no-op: nothing is persisted.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping always succeeds.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
