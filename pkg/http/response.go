package http

import (
	"encoding/json"
	"net/http"

	apperrors "surfaura/pkg/errors"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err through apperrors.FromError so every failure has the
// same {detail, code, errors} shape.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.FromError(err)
	return WriteJSON(w, appErr.StatusCode(), appErr.Response())
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, data)
}
