package handlers

import (
	"log/slog"
	"net/http"

	"github.com/fajar1211/remix-of-digitaldev/internal/availability"
	"github.com/fajar1211/remix-of-digitaldev/internal/domainsearch"
)

// DomainHandler handles domain availability requests
type DomainHandler struct {
	availability *availability.Service
	aggregator   *domainsearch.Aggregator
	logger       *slog.Logger
}

// NewDomainHandler creates a new domain handler
func NewDomainHandler(svc *availability.Service, aggregator *domainsearch.Aggregator, logger *slog.Logger) *DomainHandler {
	return &DomainHandler{
		availability: svc,
		aggregator:   aggregator,
		logger:       logger,
	}
}

type checkDomainRequest struct {
	Domain string `json:"domain"`
}

type providerErrorResponse struct {
	Error string         `json:"error"`
	Code  string         `json:"code"`
	Raw   map[string]any `json:"raw,omitempty"`
}

// Check handles POST /api/domains/check
func (h *DomainHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkDomainRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("failed to decode domain check request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	result, err := h.availability.Check(r.Context(), req.Domain)
	if err != nil {
		pe := availability.AsProviderError(err)
		WriteJSON(w, pe.Status, providerErrorResponse{Error: pe.Message, Code: pe.Code, Raw: pe.Raw}, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, result, h.logger)
}

// Suggestions handles GET /api/domains/suggestions?q=
// Every candidate is checked before the response is written.
func (h *DomainHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	state := h.aggregator.Aggregate(r.Context(), query)
	WriteJSON(w, http.StatusOK, state, h.logger)
}
