package mongostore

import (
	"context"
	"fmt"
	"time"

	"surfaura/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const nativeIDField = "_id"

type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// New builds a store on top of an already connected client. A nil client yields a
// store whose operations fail with store.ErrUnavailable.
func New(client *mongo.Client, databaseName string, readTimeout, writeTimeout time.Duration) *Store {
	s := &Store{
		client:       client,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
	if client != nil {
		s.db = client.Database(databaseName)
	}
	return s
}

// withTimeout keeps an earlier caller deadline when it is shorter than timeout.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}

func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

func (s *Store) Name() string {
	if !s.Available() {
		return ""
	}
	return s.db.Name()
}

func (s *Store) Create(ctx context.Context, collection string, record store.Document) (string, error) {
	if !s.Available() {
		return "", store.ErrUnavailable
	}

	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	doc := make(bson.M, len(record))
	for k, v := range record {
		if k == store.IDField || k == nativeIDField {
			continue
		}
		doc[k] = v
	}

	result, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", &store.WriteError{Collection: collection, Err: err}
	}

	return identifier(result.InsertedID), nil
}

func (s *Store) List(ctx context.Context, collection string, limit int) ([]store.Document, error) {
	if !s.Available() {
		return nil, store.ErrUnavailable
	}
	if limit <= 0 {
		return []store.Document{}, nil
	}

	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	// ObjectIDs lead with their creation second, so descending _id is newest first.
	opts := options.Find().
		SetSort(bson.D{{Key: nativeIDField, Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, &store.ReadError{Collection: collection, Err: err}
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, &store.ReadError{Collection: collection, Err: err}
	}

	docs := make([]store.Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, normalize(r))
	}
	return docs, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if !s.Available() {
		return store.ErrUnavailable
	}

	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	return s.client.Ping(ctx, nil)
}

func (s *Store) CollectionNames(ctx context.Context) ([]string, error) {
	if !s.Available() {
		return nil, store.ErrUnavailable
	}

	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// normalize moves the native _id to IDField and converts BSON-specific values
// into plain Go ones.
func normalize(raw bson.M) store.Document {
	doc := make(store.Document, len(raw))
	for k, v := range raw {
		if k == nativeIDField {
			doc[store.IDField] = identifier(v)
			continue
		}
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case bson.M:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = normalizeValue(inner)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return v
	}
}

func identifier(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
