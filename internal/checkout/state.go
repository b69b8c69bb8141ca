package checkout

import (
	"strings"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
	"github.com/fajar1211/remix-of-digitaldev/internal/pricing"
	"github.com/fajar1211/remix-of-digitaldev/internal/promo"
)

// PromoStatus is where the promo code stands for the current state
type PromoStatus string

const (
	PromoIdle    PromoStatus = "idle"
	PromoPending PromoStatus = "pending"
	PromoApplied PromoStatus = "applied"
	PromoInvalid PromoStatus = "invalid"
	PromoSkipped PromoStatus = "skipped"
)

// OrderState is an immutable snapshot of a checkout session.
// Every transition produces a new value with Version incremented.
type OrderState struct {
	Version            uint64                `json:"version"`
	Selection          models.OrderSelection `json:"selection"`
	Quote              pricing.Quote         `json:"quote"`
	EffectivePackageID string                `json:"effective_package_id"`
	CanComplete        bool                  `json:"can_complete"`
	PromoStatus        PromoStatus           `json:"promo_status"`
	PromoMessage       string                `json:"promo_message,omitempty"`

	// PromoInputsVersion is the Version at which the promo code or base total last changed
	PromoInputsVersion uint64 `json:"promo_inputs_version"`
}

func (s OrderState) clone() OrderState {
	out := s
	out.Selection = s.Selection.Clone()
	return out
}

// Mutation changes one part of the selection
type Mutation func(*models.OrderSelection)

func SetDomain(domain string) Mutation {
	return func(s *models.OrderSelection) { s.Domain = strings.TrimSpace(domain) }
}

func SelectTemplate(id, name string) Mutation {
	return func(s *models.OrderSelection) {
		s.TemplateID = id
		s.TemplateName = name
	}
}

func SelectPackage(id, name string) Mutation {
	return func(s *models.OrderSelection) {
		s.PackageID = id
		s.PackageName = name
	}
}

// SetSubscriptionYears selects a duration; 0 clears it
func SetSubscriptionYears(years int) Mutation {
	return func(s *models.OrderSelection) {
		if years < 0 {
			years = 0
		}
		s.SubscriptionYears = years
	}
}

// SetAddOn sets an add-on quantity; a non-positive quantity removes it
func SetAddOn(key string, qty int) Mutation {
	return func(s *models.OrderSelection) {
		if qty <= 0 {
			delete(s.AddOns, key)
			return
		}
		if s.AddOns == nil {
			s.AddOns = make(map[string]int)
		}
		s.AddOns[key] = qty
	}
}

func SetSubscriptionAddOn(key string, selected bool) Mutation {
	return func(s *models.OrderSelection) {
		if !selected {
			delete(s.SubscriptionAddOns, key)
			return
		}
		if s.SubscriptionAddOns == nil {
			s.SubscriptionAddOns = make(map[string]bool)
		}
		s.SubscriptionAddOns[key] = true
	}
}

func SetPromoCode(code string) Mutation {
	return func(s *models.OrderSelection) { s.PromoCode = strings.TrimSpace(code) }
}

func SetDetails(details models.CustomerDetails) Mutation {
	return func(s *models.OrderSelection) { s.Details = details }
}

func statusFor(kind promo.OutcomeKind) PromoStatus {
	switch kind {
	case promo.OutcomeApplied:
		return PromoApplied
	case promo.OutcomeInvalid:
		return PromoInvalid
	case promo.OutcomeSkipped:
		return PromoSkipped
	default:
		return PromoIdle
	}
}
