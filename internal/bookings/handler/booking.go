package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"surfaura/internal/bookings/events"
	"surfaura/internal/bookings/service"
	"surfaura/internal/bookings/validator"
	apperrors "surfaura/pkg/errors"
	httputil "surfaura/pkg/http"
	"surfaura/pkg/logger"
	"surfaura/pkg/middleware"
	"surfaura/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const BookingsPath = "/api/bookings"

type ListResponse struct {
	Bookings []*model.Booking `json:"bookings"`
}

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input model.BookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, "Create", decodeError(err))
		return
	}

	ctx := events.WithCorrelationID(r.Context(), middleware.RequestIDFromContext(r.Context()))

	id, err := h.service.Submit(ctx, &input)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.StatusResponse{Status: "success", ID: id}); err != nil {
		h.log.Error("failed to write success response", "handler", "Create", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := httputil.ExtractLimit(r, service.DefaultListLimit)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	bookings, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, ListResponse{Bookings: bookings}); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.PayloadTooLarge(maxErr.Limit)
	}
	return validator.TranslateDecodeError(err)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(BookingsPath, h.Create)
	router.GET(BookingsPath, h.List)
}
