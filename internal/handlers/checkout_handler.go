package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fajar1211/remix-of-digitaldev/internal/checkout"
	"github.com/fajar1211/remix-of-digitaldev/internal/models"
	"github.com/fajar1211/remix-of-digitaldev/internal/pricing"
	"github.com/fajar1211/remix-of-digitaldev/internal/service"
)

// CheckoutHandler handles checkout session requests
type CheckoutHandler struct {
	registry   *checkout.Registry
	catalog    *service.CatalogService
	dispatcher *service.Dispatcher
	log        *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(registry *checkout.Registry, catalog *service.CatalogService, dispatcher *service.Dispatcher, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		registry:   registry,
		catalog:    catalog,
		dispatcher: dispatcher,
		log:        log,
	}
}

// SessionResponse is the body returned for every session request
type SessionResponse struct {
	ID    string              `json:"id"`
	State checkout.OrderState `json:"state"`
}

type namedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UpdateSessionRequest holds the fields a PATCH may change. Absent fields are left alone.
type UpdateSessionRequest struct {
	Domain             *string                 `json:"domain"`
	Template           *namedRef               `json:"template"`
	Package            *namedRef               `json:"package"`
	SubscriptionYears  *int                    `json:"subscription_years"`
	AddOns             map[string]int          `json:"add_ons"`
	SubscriptionAddOns map[string]bool         `json:"subscription_add_ons"`
	PromoCode          *string                 `json:"promo_code"`
	Details            *models.CustomerDetails `json:"details"`
}

type domainQueryRequest struct {
	Query string `json:"q"`
}

type applyPromoRequest struct {
	Code string `json:"code"`
}

// ApplyPromoResponse carries the outcome of an immediate promo evaluation
type ApplyPromoResponse struct {
	SessionResponse
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

// CreateSession handles POST /api/checkout/sessions
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.registry.Create()

	state, err := h.loadPriceBook(r.Context(), sess, "")
	if err != nil {
		h.log.Error("failed to load default price book", "session_id", sess.ID, "error", err)
		h.registry.Delete(sess.ID)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, SessionResponse{ID: sess.ID, State: state}, h.log)
	h.log.Info("checkout session created", "session_id", sess.ID)
}

// GetSession handles GET /api/checkout/sessions/{sessionId}
func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Touch()
	WriteJSON(w, http.StatusOK, SessionResponse{ID: sess.ID, State: sess.Snapshot()}, h.log)
}

// UpdateSession handles PATCH /api/checkout/sessions/{sessionId}
func (h *CheckoutHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req UpdateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.Warn("failed to decode session update", "session_id", sess.ID, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}
	if req.SubscriptionYears != nil && *req.SubscriptionYears < 0 {
		WriteError(w, http.StatusBadRequest, "Subscription years must not be negative", h.log)
		return
	}

	if req.Package == nil {
		state := sess.Apply(mutationsFor(req, "")...)
		WriteJSON(w, http.StatusOK, SessionResponse{ID: sess.ID, State: state}, h.log)
		return
	}

	book, defaultID, err := h.priceBook(r.Context(), req.Package.ID)
	if err != nil {
		if errors.Is(err, service.ErrPackageNotFound) {
			WriteError(w, http.StatusBadRequest, "Invalid package", h.log)
			return
		}
		h.log.Error("failed to load price book", "session_id", sess.ID, "package_id", req.Package.ID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	state := sess.ApplyWithPriceBook(book, defaultID, mutationsFor(req, book.PackageName)...)
	WriteJSON(w, http.StatusOK, SessionResponse{ID: sess.ID, State: state}, h.log)
}

// ApplyPromo handles POST /api/checkout/sessions/{sessionId}/promo
func (h *CheckoutHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req applyPromoRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	out, state := sess.ApplyPromo(r.Context(), req.Code)
	WriteJSON(w, http.StatusOK, ApplyPromoResponse{
		SessionResponse: SessionResponse{ID: sess.ID, State: state},
		Outcome:         string(out.Kind),
		Message:         out.Message,
	}, h.log)
}

// Pay handles POST /api/checkout/sessions/{sessionId}/pay
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state := sess.Snapshot()

	redirect, err := h.dispatcher.Dispatch(r.Context(), service.DispatchRequest{
		Selection:          state.Selection,
		EffectivePackageID: state.EffectivePackageID,
		FinalTotal:         state.Quote.FinalTotal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotReady):
			WriteError(w, http.StatusUnprocessableEntity, "Please complete all required fields", h.log)
		case errors.Is(err, service.ErrTotalUnavailable):
			WriteError(w, http.StatusUnprocessableEntity, "Total is not available yet", h.log)
		case errors.Is(err, service.ErrLeadSave), errors.Is(err, service.ErrInvoiceCreate):
			WriteError(w, http.StatusBadGateway, "Payment failed, please try again", h.log)
		default:
			h.log.Error("failed to dispatch payment", "session_id", sess.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, redirect, h.log)
	h.log.Info("payment dispatched", "session_id", sess.ID, "order_id", redirect.OrderID, "lead_id", redirect.LeadID)
}

// UpdateDomainQuery handles PUT /api/checkout/sessions/{sessionId}/domain-query.
// The lookup runs after the debounce window; poll Suggestions for the result.
func (h *CheckoutHandler) UpdateDomainQuery(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	suggester := sess.Suggester()
	if suggester == nil {
		WriteError(w, http.StatusNotFound, "Domain suggestions are not enabled", h.log)
		return
	}

	var req domainQueryRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	sess.Touch()
	suggester.Update(req.Query)
	WriteJSON(w, http.StatusAccepted, suggester.State(), h.log)
}

// Suggestions handles GET /api/checkout/sessions/{sessionId}/suggestions
func (h *CheckoutHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	suggester := sess.Suggester()
	if suggester == nil {
		WriteError(w, http.StatusNotFound, "Domain suggestions are not enabled", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, suggester.State(), h.log)
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	id := chi.URLParam(r, "sessionId")
	sess, err := h.registry.Get(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Checkout session not found", h.log)
		return nil, false
	}
	return sess, true
}

// loadPriceBook fetches pricing for packageID (default package when empty) into sess
func (h *CheckoutHandler) loadPriceBook(ctx context.Context, sess *checkout.Session, packageID string) (checkout.OrderState, error) {
	book, defaultID, err := h.priceBook(ctx, packageID)
	if err != nil {
		return checkout.OrderState{}, err
	}
	return sess.SetPriceBook(book, defaultID), nil
}

func (h *CheckoutHandler) priceBook(ctx context.Context, packageID string) (pricing.PriceBook, string, error) {
	defaultID, err := h.catalog.DefaultPackageID(ctx)
	if err != nil {
		return pricing.PriceBook{}, "", err
	}
	book, err := h.catalog.PriceBook(ctx, packageID)
	if err != nil {
		return pricing.PriceBook{}, "", err
	}
	return book, defaultID, nil
}

// mutationsFor turns a PATCH body into mutations. packageName names the package when the request omits it.
func mutationsFor(req UpdateSessionRequest, packageName string) []checkout.Mutation {
	var muts []checkout.Mutation
	if req.Domain != nil {
		muts = append(muts, checkout.SetDomain(*req.Domain))
	}
	if req.Template != nil {
		muts = append(muts, checkout.SelectTemplate(req.Template.ID, req.Template.Name))
	}
	if req.Package != nil {
		name := req.Package.Name
		if name == "" {
			name = packageName
		}
		muts = append(muts, checkout.SelectPackage(req.Package.ID, name))
	}
	if req.SubscriptionYears != nil {
		muts = append(muts, checkout.SetSubscriptionYears(*req.SubscriptionYears))
	}
	for key, qty := range req.AddOns {
		muts = append(muts, checkout.SetAddOn(key, qty))
	}
	for key, selected := range req.SubscriptionAddOns {
		muts = append(muts, checkout.SetSubscriptionAddOn(key, selected))
	}
	if req.PromoCode != nil {
		muts = append(muts, checkout.SetPromoCode(*req.PromoCode))
	}
	if req.Details != nil {
		muts = append(muts, checkout.SetDetails(*req.Details))
	}
	return muts
}
