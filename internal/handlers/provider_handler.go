package handlers

import (
	"log/slog"
	"net/http"

	"github.com/fajar1211/remix-of-digitaldev/internal/service"
)

// ProviderHandler reports payment provider readiness
type ProviderHandler struct {
	service *service.ProviderService
	logger  *slog.Logger
}

func NewProviderHandler(svc *service.ProviderService, logger *slog.Logger) *ProviderHandler {
	return &ProviderHandler{service: svc, logger: logger}
}

// Readiness handles POST /api/payment-provider
func (h *ProviderHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	readiness, err := h.service.Readiness(r.Context())
	if err != nil {
		h.logger.Error("failed to read payment provider secrets", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error(), h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, readiness, h.logger)
}
