package events

import (
	"context"
	"fmt"
	"time"

	"surfaura/pkg/kafka"
	"surfaura/pkg/model"
)

const (
	EventTypeBookingCreated = "booking.created"
	SchemaVersion           = "1"
	Source                  = "surfaura-api"
)

// BookingCreated is the payload published after a booking has been stored.
type BookingCreated struct {
	BookingID    string    `json:"booking_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Package      string    `json:"package"`
	Date         string    `json:"date"`
	Participants int       `json:"participants"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type correlationKey struct{}

// WithCorrelationID attaches the id that ends up in the correlation-id header.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

type Publisher struct {
	producer MessagePublisher
	timeout  time.Duration
}

func NewPublisher(producer MessagePublisher, timeout time.Duration) *Publisher {
	return &Publisher{producer: producer, timeout: timeout}
}

// BookingCreated publishes the event for a stored booking. The write is detached
// from ctx cancellation so a client disconnect does not drop the event.
func (p *Publisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(BookingCreated{
			BookingID:    booking.ID,
			Name:         booking.Name,
			Email:        booking.Email,
			Phone:        booking.Phone,
			Package:      booking.Package,
			Date:         booking.Date,
			Participants: booking.Participants,
			Notes:        booking.Notes,
			CreatedAt:    booking.CreatedAt,
		}).
		WithEventID("").
		WithEventType(EventTypeBookingCreated).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(correlationID(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", EventTypeBookingCreated, err)
	}

	pubCtx := context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(pubCtx, p.timeout)
		defer cancel()
	}

	return p.producer.Publish(pubCtx, msg)
}
