package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "surfaura/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation",
			err:        apperrors.Validation("invalid booking", []apperrors.FieldError{{Field: "participants", Message: "participants must be at most 20"}}),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"detail":"invalid booking","code":"VALIDATION_ERROR","errors":[{"field":"participants","message":"participants must be at most 20"}]}`,
		},
		{
			name:       "plain error becomes 500 with message as detail",
			err:        errors.New("document store is not configured"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"document store is not configured","code":"INTERNAL_ERROR"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, WriteError(w, tt.err))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestExtractLimit(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "absent uses fallback", query: "", want: 10},
		{name: "explicit", query: "?limit=3", want: 3},
		{name: "negative passes through", query: "?limit=-1", want: -1},
		{name: "not a number", query: "?limit=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bookings"+tt.query, nil)
			got, err := ExtractLimit(req, 10)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, http.StatusUnprocessableEntity, apperrors.FromError(err).StatusCode())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
