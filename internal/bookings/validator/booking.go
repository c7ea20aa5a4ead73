package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	apperrors "surfaura/pkg/errors"
	"surfaura/pkg/logger"
	"surfaura/pkg/model"

	"github.com/go-playground/validator/v10"
)

const FieldBody = "body"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// AppError renders the list as a 422 response with one entry per field.
func (v ValidationErrors) AppError() *apperrors.AppError {
	fields := make([]apperrors.FieldError, 0, len(v))
	for _, e := range v {
		fields = append(fields, apperrors.FieldError{Field: e.Field, Message: e.Message})
	}
	return apperrors.Validation("validation failed", fields)
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the names clients send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(optionalIntValue, model.OptionalInt{})

	log.Debug("Booking validator initialized")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks a submission and returns the booking to persist. It has no side
// effects: the input is copied before the participants default is applied.
func (v *BookingValidator) Validate(input *model.BookingInput) (*model.Booking, error) {
	if input == nil {
		return nil, ValidationErrors{{Field: FieldBody, Message: "request body is required"}}
	}

	in := *input
	if !in.Participants.Set {
		in.Participants = model.NewOptionalInt(model.DefaultParticipants)
	}

	if err := v.validate.Struct(&in); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, v.translateValidationErrors(validationErrs)
		}
		return nil, err
	}

	booking := &model.Booking{
		Name:         *in.Name,
		Email:        *in.Email,
		Phone:        *in.Phone,
		Package:      *in.Package,
		Date:         *in.Date,
		Participants: *in.Participants.Value,
	}
	if in.Notes != nil {
		notes := *in.Notes
		booking.Notes = &notes
	}

	return booking, nil
}

// ValidateLimit rejects negative list sizes. Upper bounds are clamped by the caller.
func (v *BookingValidator) ValidateLimit(limit int) error {
	if limit < 0 {
		return ValidationErrors{{Field: "limit", Message: "limit must be at least 0"}}
	}
	return nil
}

// TranslateDecodeError turns JSON decoding failures into field errors. Errors that
// are not caused by the payload itself are returned unchanged.
func TranslateDecodeError(err error) error {
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = FieldBody
		}
		return ValidationErrors{{
			Field:   field,
			Message: fmt.Sprintf("%s must be %s", field, describeKind(typeErr.Type)),
		}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ValidationErrors{{Field: FieldBody, Message: "request body must be valid JSON"}}
	}
	if errors.Is(err, io.EOF) {
		return ValidationErrors{{Field: FieldBody, Message: "request body is required"}}
	}

	return err
}

// optionalIntValue exposes the wrapped integer to validation tags. A null
// value fails "required".
func optionalIntValue(field reflect.Value) any {
	o, ok := field.Interface().(model.OptionalInt)
	if !ok || o.Value == nil {
		return nil
	}
	return *o.Value
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Struct, reflect.Map:
		return "an object"
	default:
		return "a " + t.Kind().String()
	}
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
			if err.Field() == model.FieldParticipants {
				// Absent participants are defaulted, so only null gets here.
				message = "participants must be an integer"
			}
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	v.logger.Debug("Booking rejected", "errors", len(validationErrors))

	return validationErrors
}
