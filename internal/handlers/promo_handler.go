package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/pricing"
	"github.com/fajar1211/remix-of-digitaldev/internal/promo"
)

// PromoHandler handles HTTP requests for promo code evaluation
type PromoHandler struct {
	evaluator *promo.Evaluator
	logger    *slog.Logger
}

// NewPromoHandler creates a new PromoHandler
func NewPromoHandler(evaluator *promo.Evaluator, logger *slog.Logger) *PromoHandler {
	return &PromoHandler{
		evaluator: evaluator,
		logger:    logger,
	}
}

// Evaluate handles GET /api/promo/{code}?base_total=
// A missing or malformed base_total is treated as an unresolved total.
func (h *PromoHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	base := pricing.Unknown()
	if raw := r.URL.Query().Get("base_total"); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil {
			base = pricing.Known(v)
		}
	}

	out := h.evaluator.Evaluate(r.Context(), code, base)
	if out.Kind == promo.OutcomeInvalid {
		WriteJSON(w, http.StatusNotFound, out, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, out, h.logger)
}
