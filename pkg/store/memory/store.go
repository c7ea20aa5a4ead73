package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"surfaura/pkg/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const Name = "memory"

// Store keeps documents in process memory. Identifiers are ObjectID hex strings
// so clients see the same id shape as with the mongo backend.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]store.Document
}

func New() *Store {
	return &Store{collections: make(map[string][]store.Document)}
}

func (s *Store) Available() bool {
	return true
}

func (s *Store) Name() string {
	return Name
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Create(ctx context.Context, collection string, record store.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &store.WriteError{Collection: collection, Err: err}
	}

	id := primitive.NewObjectID().Hex()
	doc := maps.Clone(record)
	if doc == nil {
		doc = store.Document{}
	}
	doc[store.IDField] = id

	s.mu.Lock()
	s.collections[collection] = append(s.collections[collection], doc)
	s.mu.Unlock()

	return id, nil
}

func (s *Store) List(ctx context.Context, collection string, limit int) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &store.ReadError{Collection: collection, Err: err}
	}
	if limit <= 0 {
		return []store.Document{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.collections[collection]
	n := min(limit, len(stored))
	docs := make([]store.Document, 0, n)
	for i := len(stored) - 1; i >= 0 && len(docs) < n; i-- {
		docs = append(docs, maps.Clone(stored[i]))
	}
	return docs, nil
}

func (s *Store) CollectionNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
