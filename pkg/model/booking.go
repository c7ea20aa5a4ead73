package model

import (
	"fmt"
	"time"
)

const (
	DefaultParticipants = 1
	MinParticipants     = 1
	MaxParticipants     = 20
)

// Document keys used when a booking is persisted.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldPackage      = "package"
	FieldDate         = "date"
	FieldParticipants = "participants"
	FieldNotes        = "notes"
	FieldCreatedAt    = "created_at"
)

// BookingInput is a booking submission as received from a client. Pointers tell
// an absent field apart from an empty one: absence is rejected, empty strings are not.
// Participants may be omitted but not sent as null.
type BookingInput struct {
	Name         *string     `json:"name" validate:"required"`
	Email        *string     `json:"email" validate:"required"`
	Phone        *string     `json:"phone" validate:"required"`
	Package      *string     `json:"package" validate:"required"`
	Date         *string     `json:"date" validate:"required"`
	Participants OptionalInt `json:"participants" validate:"required,min=1,max=20"`
	Notes        *string     `json:"notes"`
}

type Booking struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Package      string    `json:"package"`
	Date         string    `json:"date"`
	Participants int       `json:"participants"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

// ToDocument flattens the booking into the map stored in the document store.
// The id is owned by the store and never written.
func (b *Booking) ToDocument() map[string]any {
	doc := map[string]any{
		FieldName:         b.Name,
		FieldEmail:        b.Email,
		FieldPhone:        b.Phone,
		FieldPackage:      b.Package,
		FieldDate:         b.Date,
		FieldParticipants: b.Participants,
		FieldNotes:        nil,
	}
	if b.Notes != nil {
		doc[FieldNotes] = *b.Notes
	}
	if !b.CreatedAt.IsZero() {
		doc[FieldCreatedAt] = b.CreatedAt
	}
	return doc
}

// BookingFromDocument is the inverse of ToDocument for records returned by the store.
func BookingFromDocument(doc map[string]any) (*Booking, error) {
	b := &Booking{
		ID:      stringValue(doc[FieldID]),
		Name:    stringValue(doc[FieldName]),
		Email:   stringValue(doc[FieldEmail]),
		Phone:   stringValue(doc[FieldPhone]),
		Package: stringValue(doc[FieldPackage]),
		Date:    stringValue(doc[FieldDate]),
	}

	participants, err := intValue(doc[FieldParticipants])
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	b.Participants = participants

	if notes, ok := doc[FieldNotes].(string); ok {
		b.Notes = &notes
	}
	if createdAt, ok := doc[FieldCreatedAt].(time.Time); ok {
		b.CreatedAt = createdAt.UTC()
	}

	return b, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

func intValue(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("participants has unexpected type %T", v)
	}
}
