package repository

import (
	"context"
	"fmt"

	"surfaura/pkg/model"
	"surfaura/pkg/store"
)

const (
	CollectionName = "booking"
)

type BookingRepository interface {
	// Create stores booking and returns the id assigned by the store.
	Create(ctx context.Context, booking *model.Booking) (string, error)
	// FindRecent returns up to limit bookings, newest first.
	FindRecent(ctx context.Context, limit int) ([]*model.Booking, error)
}

type documentBookingRepository struct {
	store store.DocumentStore
}

func NewBookingRepository(s store.DocumentStore) BookingRepository {
	return &documentBookingRepository{store: s}
}

func (r *documentBookingRepository) Create(ctx context.Context, booking *model.Booking) (string, error) {
	return r.store.Create(ctx, CollectionName, booking.ToDocument())
}

func (r *documentBookingRepository) FindRecent(ctx context.Context, limit int) ([]*model.Booking, error) {
	docs, err := r.store.List(ctx, CollectionName, limit)
	if err != nil {
		return nil, err
	}

	bookings := make([]*model.Booking, 0, len(docs))
	for _, doc := range docs {
		booking, err := model.BookingFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode booking record: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}
