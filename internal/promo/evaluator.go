package promo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
	"github.com/fajar1211/remix-of-digitaldev/internal/pricing"
)

// Validation is the answer of a promo validator for one (code, base total) pair
type Validation struct {
	OK       bool
	Promo    models.Promo
	Discount decimal.Decimal
}

// Validator computes the discount of a code against a base total
type Validator interface {
	Validate(ctx context.Context, code string, baseTotal decimal.Decimal) (Validation, error)
}

// OutcomeKind tells the caller what happened to the promo
type OutcomeKind string

const (
	OutcomeCleared OutcomeKind = "cleared"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeApplied OutcomeKind = "applied"
	OutcomeInvalid OutcomeKind = "invalid"
)

// Outcome of an evaluation. Applied is set only for OutcomeApplied.
type Outcome struct {
	Kind    OutcomeKind          `json:"outcome"`
	Applied *models.AppliedPromo `json:"applied_promo"`
	Message string               `json:"message"`
}

// Evaluator turns a promo code and a base total into an Outcome
type Evaluator struct {
	validator Validator
	logger    *slog.Logger
}

// NewEvaluator creates a new evaluator
func NewEvaluator(validator Validator, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		validator: validator,
		logger:    logger,
	}
}

// Evaluate resolves the promo for baseTotal. Only OutcomeApplied keeps a discount;
// every other outcome means any applied promo must be dropped.
func (e *Evaluator) Evaluate(ctx context.Context, code string, baseTotal pricing.Amount) Outcome {
	code = strings.TrimSpace(code)
	if code == "" {
		return Outcome{Kind: OutcomeCleared, Message: "Promo code cleared"}
	}

	base, ok := baseTotal.Get()
	if !ok || !base.IsPositive() {
		return Outcome{Kind: OutcomeSkipped, Message: "Total is not available yet"}
	}

	res, err := e.validator.Validate(ctx, code, base)
	if err != nil {
		e.logger.Warn("promo validation failed",
			"code", code,
			"base_total", base.String(),
			"error", err,
		)
		return Outcome{Kind: OutcomeInvalid, Message: "Promo code not found"}
	}
	if !res.OK {
		return Outcome{Kind: OutcomeInvalid, Message: "Promo code not found"}
	}

	applied := &models.AppliedPromo{
		ID:          res.Promo.ID,
		Code:        res.Promo.Code,
		PromoName:   res.Promo.PromoName,
		DiscountUSD: res.Discount,
	}
	return Outcome{
		Kind:    OutcomeApplied,
		Applied: applied,
		Message: fmt.Sprintf("%s (-%s)", applied.PromoName, applied.DiscountUSD.StringFixed(2)),
	}
}
