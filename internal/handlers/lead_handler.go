package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fajar1211/remix-of-digitaldev/internal/service"
)

// LeadHandler serves the internal follow-up endpoints
type LeadHandler struct {
	service *service.LeadService
	logger  *slog.Logger
}

func NewLeadHandler(svc *service.LeadService, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{service: svc, logger: logger}
}

// List handles GET /internal/leads?limit=
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.ListLeads(r.Context(), queryInt(r, "limit", service.DefaultLeadLimit))
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, leads, h.logger)
}

// MarkRead handles POST /internal/leads/{leadId}/read
func (h *LeadHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadId")

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			WriteError(w, http.StatusNotFound, "Lead not found", h.logger)
			return
		}
		h.logger.Error("failed to mark lead read", "lead_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
