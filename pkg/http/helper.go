package http

import (
	"net/http"
	"strconv"

	apperrors "surfaura/pkg/errors"
)

// ExtractLimit reads the "limit" query parameter, returning fallback when it is absent.
// Range checks are left to the service layer.
func ExtractLimit(r *http.Request, fallback int) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.Validation("invalid query parameters", []apperrors.FieldError{{
			Field:   "limit",
			Message: "limit must be an integer, got: " + s,
		}})
	}
	return v, nil
}
