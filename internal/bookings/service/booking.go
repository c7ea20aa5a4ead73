package service

//go:generate mockgen -source=booking.go -destination=mocks/mock_booking.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"surfaura/internal/bookings/repository"
	"surfaura/internal/bookings/validator"
	"surfaura/pkg/kafka"
	"surfaura/pkg/logger"
	"surfaura/pkg/metrics"
	"surfaura/pkg/model"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

type BookingService interface {
	// Submit validates input, stores it and returns the new booking id.
	Submit(ctx context.Context, input *model.BookingInput) (string, error)
	// ListRecent returns at most limit bookings, newest first.
	ListRecent(ctx context.Context, limit int) ([]*model.Booking, error)
}

// EventPublisher announces stored bookings to other systems.
type EventPublisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewBookingService wires the service. publisher and m may be nil.
func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

func (s *bookingService) Submit(ctx context.Context, input *model.BookingInput) (string, error) {
	booking, err := s.validator.Validate(input)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			s.metrics.IncValidationFailure()
		}
		return "", err
	}

	booking.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	id, err := s.repo.Create(ctx, booking)
	if err != nil {
		s.metrics.IncStoreError("create")
		s.log.Error("Failed to create booking", "collection", repository.CollectionName, "error", err)
		return "", err
	}
	booking.ID = id
	s.metrics.IncBookingSubmitted()

	s.log.Info("Booking created successfully",
		"id", id,
		"package", booking.Package,
		"date", booking.Date,
		"participants", booking.Participants,
	)

	s.publishCreated(ctx, booking)

	return id, nil
}

// publishCreated never fails the submission: the booking is already stored.
func (s *bookingService) publishCreated(ctx context.Context, booking *model.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.BookingCreated(ctx, booking); err != nil {
		var publishErr *kafka.PublishError
		transient := errors.As(err, &publishErr) && publishErr.IsTransient()
		s.log.Warn("Failed to publish booking event", "id", booking.ID, "transient", transient, "error", err)
	}
}

func (s *bookingService) ListRecent(ctx context.Context, limit int) ([]*model.Booking, error) {
	if err := s.validator.ValidateLimit(limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []*model.Booking{}, nil
	}
	if limit > MaxListLimit {
		s.log.Debug("Clamping list limit", "requested", limit, "max", MaxListLimit)
		limit = MaxListLimit
	}

	bookings, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		s.metrics.IncStoreError("list")
		s.log.Error("Failed to list bookings", "limit", limit, "error", err)
		return nil, err
	}

	return bookings, nil
}
