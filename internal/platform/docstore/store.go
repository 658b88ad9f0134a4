// Package docstore is a small document store abstraction: collections of
// JSON documents addressed by id, with field-equality queries, merge writes
// and array union/remove mutations. It has no dependencies on the rest of
// the application.
package docstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

type Document struct {
	ID   string
	Data map[string]any
}

// Store is implemented by every driver. Mutations on a missing document
// return ErrNotFound, except Set which creates it.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	// FindBy returns the documents whose top-level field equals value,
	// ordered by id.
	FindBy(ctx context.Context, collection, field string, value any) ([]Document, error)
	// Set writes data. With merge, top-level fields of data replace those of
	// the stored document and other fields are kept.
	Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error
	ArrayUnion(ctx context.Context, collection, id, field string, values ...any) error
	ArrayRemove(ctx context.Context, collection, id, field string, values ...any) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*RedisStore)(nil)
)
