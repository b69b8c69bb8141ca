package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// PriceBook is the resolved catalog for the effective package
type PriceBook struct {
	PackageID               string                     `json:"package_id"`
	PackageName             string                     `json:"package_name"`
	BasePrice               decimal.Decimal            `json:"base_price"` // monthly price for recurring packages
	Durations               []models.DurationRow       `json:"durations"`
	Plans                   []models.SubscriptionPlan  `json:"plans"`
	AddOnPrices             map[string]decimal.Decimal `json:"add_on_prices"`
	SubscriptionAddOnPrices map[string]decimal.Decimal `json:"subscription_add_on_prices"`
}

// Quote is the full price breakdown of a selection
type Quote struct {
	BillingMode          BillingMode     `json:"billing_mode"`
	DurationPrice        Amount          `json:"duration_price"`
	AddOnsTotal          decimal.Decimal `json:"add_ons_total"`
	AddOnsMultiplier     int             `json:"add_ons_multiplier"`
	EffectiveAddOnsTotal decimal.Decimal `json:"effective_add_ons_total"`
	BaseTotal            Amount          `json:"base_total"`
	Discount             decimal.Decimal `json:"discount"`
	FinalTotal           Amount          `json:"final_total"`
}

// Compute prices a selection against a price book
func Compute(sel models.OrderSelection, book PriceBook) Quote {
	name := book.PackageName
	if name == "" {
		name = sel.PackageName
	}
	mode := ClassifyPackage(name)

	duration := PriceDuration(DurationInput{
		Mode:         mode,
		MonthlyPrice: book.BasePrice,
		Years:        sel.SubscriptionYears,
		Discounts:    NewDiscountTable(book.Durations),
		Plans:        book.Plans,
	})

	addOns := addOnsTotal(sel, book)
	multiplier := 1
	if mode == RecurringMonthly && sel.SubscriptionYears > 0 {
		multiplier = sel.SubscriptionYears * 12
	}
	effectiveAddOns := addOns.Mul(decimal.NewFromInt(int64(multiplier)))

	base := Unknown()
	if sel.SubscriptionYears > 0 {
		base = duration.Add(Known(effectiveAddOns))
	}

	discount := decimal.Zero
	if sel.AppliedPromo != nil && sel.AppliedPromo.DiscountUSD.IsPositive() {
		discount = sel.AppliedPromo.DiscountUSD
	}

	return Quote{
		BillingMode:          mode,
		DurationPrice:        duration,
		AddOnsTotal:          addOns,
		AddOnsMultiplier:     multiplier,
		EffectiveAddOnsTotal: effectiveAddOns,
		BaseTotal:            base,
		Discount:             discount,
		FinalTotal:           FinalTotal(base, discount),
	}
}

// FinalTotal is max(0, round(base - discount)); unresolved base stays unresolved
func FinalTotal(base Amount, discount decimal.Decimal) Amount {
	v, ok := base.Get()
	if !ok {
		return Unknown()
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	total := v.Sub(discount).Round(0)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Known(total)
}

func addOnsTotal(sel models.OrderSelection, book PriceBook) decimal.Decimal {
	total := decimal.Zero
	for key, qty := range sel.AddOns {
		if qty <= 0 {
			continue
		}
		unit, ok := book.AddOnPrices[key]
		if !ok {
			continue
		}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(qty))))
	}
	for key, selected := range sel.SubscriptionAddOns {
		if !selected {
			continue
		}
		if unit, ok := book.SubscriptionAddOnPrices[key]; ok {
			total = total.Add(unit)
		}
	}
	return total
}

// CanComplete is the checkout readiness gate. Every required field must be present.
func CanComplete(sel models.OrderSelection, effectivePackageID string) bool {
	return strings.TrimSpace(sel.Domain) != "" &&
		sel.TemplateID != "" &&
		effectivePackageID != "" &&
		sel.SubscriptionYears > 0 &&
		strings.TrimSpace(sel.Details.Email) != "" &&
		sel.Details.AcceptedTerms
}

// EffectivePackageID falls back to the default package when none is selected
func EffectivePackageID(selected, defaultID string) string {
	if selected != "" {
		return selected
	}
	return defaultID
}
