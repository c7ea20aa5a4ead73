package mongostore

import (
	"context"
	"errors"
	"testing"
	"time"

	"surfaura/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const (
	testDatabase = "surfaura"
	testNS       = testDatabase + ".booking"
)

func TestStore_NotConfigured(t *testing.T) {
	s := New(nil, testDatabase, time.Second, time.Second)
	ctx := context.Background()

	assert.False(t, s.Available())
	assert.Empty(t, s.Name())

	_, err := s.Create(ctx, "booking", store.Document{"name": "Ann"})
	assert.ErrorIs(t, err, store.ErrUnavailable)

	_, err = s.List(ctx, "booking", 10)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	assert.ErrorIs(t, s.Ping(ctx), store.ErrUnavailable)

	_, err = s.CollectionNames(ctx)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestStore_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns generated id", func(mt *mtest.T) {
		s := New(mt.Client, testDatabase, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := s.Create(context.Background(), "booking", store.Document{
			"id":           "client-supplied",
			"name":         "Ann",
			"participants": 2,
		})
		require.NoError(mt, err)
		assert.Len(mt, id, 24)
		assert.NotEqual(mt, "client-supplied", id)

		_, err = primitive.ObjectIDFromHex(id)
		assert.NoError(mt, err)
	})

	mt.Run("wraps write failures", func(mt *mtest.T) {
		s := New(mt.Client, testDatabase, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    121,
			Message: "Document failed validation",
		}))

		_, err := s.Create(context.Background(), "booking", store.Document{"name": "Ann"})
		require.Error(mt, err)

		var writeErr *store.WriteError
		require.True(mt, errors.As(err, &writeErr))
		assert.Equal(mt, "booking", writeErr.Collection)
	})
}

func TestStore_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("normalizes identifiers and values", func(mt *mtest.T) {
		s := New(mt.Client, testDatabase, time.Second, time.Second)
		newer := primitive.NewObjectID()
		older := primitive.NewObjectID()
		createdAt := time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: newer},
				{Key: "name", Value: "Ann"},
				{Key: "participants", Value: int32(2)},
				{Key: "created_at", Value: primitive.NewDateTimeFromTime(createdAt)},
			},
			bson.D{
				{Key: "_id", Value: older},
				{Key: "name", Value: "Ben"},
				{Key: "participants", Value: int32(4)},
			},
		))

		docs, err := s.List(context.Background(), "booking", 2)
		require.NoError(mt, err)
		require.Len(mt, docs, 2)

		assert.Equal(mt, newer.Hex(), docs[0][store.IDField])
		assert.NotContains(mt, docs[0], "_id")
		assert.Equal(mt, "Ann", docs[0]["name"])
		assert.Equal(mt, int32(2), docs[0]["participants"])
		assert.Equal(mt, createdAt, docs[0]["created_at"])
		assert.Equal(mt, older.Hex(), docs[1][store.IDField])
	})

	mt.Run("wraps read failures", func(mt *mtest.T) {
		s := New(mt.Client, testDatabase, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on surfaura",
		}))

		_, err := s.List(context.Background(), "booking", 10)
		require.Error(mt, err)

		var readErr *store.ReadError
		assert.True(mt, errors.As(err, &readErr))
	})

	mt.Run("zero limit skips the query", func(mt *mtest.T) {
		s := New(mt.Client, testDatabase, time.Second, time.Second)

		docs, err := s.List(context.Background(), "booking", 0)
		require.NoError(mt, err)
		assert.Empty(mt, docs)
	})
}

func TestStore_CollectionNames(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lists names", func(mt *mtest.T) {
		s := New(mt.Client, testDatabase, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDatabase+".$cmd.listCollections", mtest.FirstBatch,
			bson.D{{Key: "name", Value: "booking"}, {Key: "type", Value: "collection"}},
		))

		names, err := s.CollectionNames(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []string{"booking"}, names)
		assert.Equal(mt, testDatabase, s.Name())
	})
}

func TestNormalizeValue(t *testing.T) {
	oid := primitive.NewObjectID()
	nested := bson.M{
		"ref":   oid,
		"items": bson.A{oid, "x"},
	}

	got := normalizeValue(nested).(map[string]any)

	assert.Equal(t, oid.Hex(), got["ref"])
	assert.Equal(t, []any{oid.Hex(), "x"}, got["items"])
}

func TestWithTimeout_KeepsShorterDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ctx, cancelInner := withTimeout(parent, time.Hour)
	defer cancelInner()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
}
