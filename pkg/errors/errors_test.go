package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type convertible struct{ field string }

func (c convertible) Error() string { return "bad " + c.field }

func (c convertible) AppError() *AppError {
	return Validation("invalid booking", []FieldError{{Field: c.field, Message: c.field + " is required"}})
}

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "validation failed", err.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode())
}

func TestInternal_Unwraps(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Internal("internal error", originalErr)

	assert.Same(t, originalErr, errors.Unwrap(wrapped))
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, http.StatusInternalServerError, wrapped.StatusCode())
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeBadRequest, Message: "bad limit"},
			expected: "BAD_REQUEST: bad limit",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Response(t *testing.T) {
	err := Validation("invalid booking", []FieldError{{Field: "participants", Message: "participants must be at most 20"}})

	data, marshalErr := json.Marshal(err.Response())
	require.NoError(t, marshalErr)
	assert.JSONEq(t,
		`{"detail":"invalid booking","code":"VALIDATION_ERROR","errors":[{"field":"participants","message":"participants must be at most 20"}]}`,
		string(data),
	)
}

func TestFromError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})

	t.Run("app error passes through", func(t *testing.T) {
		original := RateLimited("Rate limit exceeded")
		assert.Same(t, original, FromError(fmt.Errorf("handler: %w", original)))
	})

	t.Run("converter", func(t *testing.T) {
		appErr := FromError(fmt.Errorf("submit: %w", convertible{field: "name"}))
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode())
		require.Len(t, appErr.Fields, 1)
		assert.Equal(t, "name", appErr.Fields[0].Field)
	})

	t.Run("unknown error keeps its message", func(t *testing.T) {
		appErr := FromError(errors.New("connection refused"))
		assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode())
		assert.Equal(t, "connection refused", appErr.Message)
		assert.Equal(t, "connection refused", appErr.Response().Detail)
	})
}

func TestTimeout(t *testing.T) {
	err := Timeout("Request timeout")

	assert.Equal(t, CodeTimeout, err.Code)
	assert.Equal(t, http.StatusGatewayTimeout, err.HTTPStatus)
}

func TestPayloadTooLarge(t *testing.T) {
	err := PayloadTooLarge(1024)

	assert.Equal(t, http.StatusRequestEntityTooLarge, err.StatusCode())
	assert.Contains(t, err.Message, "1024")
}
