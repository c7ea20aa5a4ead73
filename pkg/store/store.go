// Package store defines the document store used for booking records.
//
// A store keeps semi-structured records in named collections. Records come back
// with their identifier under IDField regardless of how the backend represents it.
package store

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

import (
	"context"
)

// IDField is the normalized identifier key on every listed record.
const IDField = "id"

type Document map[string]any

type DocumentStore interface {
	// Create inserts record into collection and returns the generated id.
	Create(ctx context.Context, collection string, record Document) (string, error)
	// List returns up to limit records from collection, newest first.
	List(ctx context.Context, collection string, limit int) ([]Document, error)
}

// Inspector exposes connection state for health and diagnostics endpoints.
type Inspector interface {
	Available() bool
	Name() string
	Ping(ctx context.Context) error
	CollectionNames(ctx context.Context) ([]string, error)
}

type Store interface {
	DocumentStore
	Inspector
}
