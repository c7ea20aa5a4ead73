package catalog

import (
	"net/http"

	httputil "surfaura/pkg/http"
	"surfaura/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type PackagesResponse struct {
	Packages []Package `json:"packages"`
}

type EventsResponse struct {
	Events []Event `json:"events"`
}

type Handler struct {
	catalog *Catalog
	log     *logger.Logger
}

func NewHandler(catalog *Catalog, log *logger.Logger) *Handler {
	return &Handler{catalog: catalog, log: log}
}

func (h *Handler) Packages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, PackagesResponse{Packages: h.catalog.Packages()}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Packages", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) Events(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, EventsResponse{Events: h.catalog.Events()}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Events", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/packages", h.Packages)
	router.GET("/api/events", h.Events)
}
