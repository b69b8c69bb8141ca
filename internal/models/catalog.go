package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is a sellable website package.
// For recurring-monthly packages Price is the price of one month.
type Package struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"is_active"`
	IsDefault bool            `json:"is_default"`
}

// DurationRow maps a subscription length in months to a discount percentage
type DurationRow struct {
	DurationMonths  int             `json:"duration_months"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	IsActive        bool            `json:"is_active"`
}

// SubscriptionPlan is a flat price for a whole number of years
type SubscriptionPlan struct {
	Years    int             `json:"years"`
	PriceUSD decimal.Decimal `json:"price_usd"`
}

// AddOnPrice is the unit price of an add-on keyed by its add-on key
type AddOnPrice struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Promo discount types
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Promo is a promo code as stored in the catalog
type Promo struct {
	ID             string           `json:"id"`
	Code           string           `json:"code"`
	PromoName      string           `json:"promo_name"`
	DiscountType   string           `json:"discount_type"`
	DiscountValue  decimal.Decimal  `json:"discount_value"`
	MaxDiscountUSD *decimal.Decimal `json:"max_discount_usd"`
	MinOrderUSD    decimal.Decimal  `json:"min_order_usd"`
	MaxUses        int              `json:"max_uses"` // 0 means unlimited
	UsedCount      int              `json:"used_count"`
	IsActive       bool             `json:"is_active"`
	StartsAt       *time.Time       `json:"starts_at"`
	ExpiresAt      *time.Time       `json:"expires_at"`
}
