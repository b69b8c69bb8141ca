package promo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// Lookup finds a promo by its normalized code. A nil promo means not found.
type Lookup interface {
	FindPromoByCode(ctx context.Context, code string) (*models.Promo, error)
}

// CatalogValidator validates codes against the promo catalog
type CatalogValidator struct {
	lookup Lookup
	now    func() time.Time
}

// NewCatalogValidator creates a validator backed by lookup
func NewCatalogValidator(lookup Lookup) *CatalogValidator {
	return &CatalogValidator{
		lookup: lookup,
		now:    time.Now,
	}
}

// NormalizeCode trims and upper-cases a code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks that the promo is usable for baseTotal and computes its discount.
// The discount never exceeds baseTotal.
func (v *CatalogValidator) Validate(ctx context.Context, code string, baseTotal decimal.Decimal) (Validation, error) {
	normalized := NormalizeCode(code)
	if normalized == "" || !baseTotal.IsPositive() {
		return Validation{}, nil
	}

	p, err := v.lookup.FindPromoByCode(ctx, normalized)
	if err != nil {
		return Validation{}, fmt.Errorf("failed to find promo %q: %w", normalized, err)
	}
	if p == nil || !v.usable(p, baseTotal) {
		return Validation{}, nil
	}

	discount := Discount(*p, baseTotal)
	if !discount.IsPositive() {
		return Validation{}, nil
	}

	return Validation{OK: true, Promo: *p, Discount: discount}, nil
}

func (v *CatalogValidator) usable(p *models.Promo, baseTotal decimal.Decimal) bool {
	if !p.IsActive {
		return false
	}

	now := v.now()
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return false
	}

	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return false
	}

	return !baseTotal.LessThan(p.MinOrderUSD)
}

// Discount computes the promo discount for baseTotal, clamped to [0, baseTotal]
func Discount(p models.Promo, baseTotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.DiscountType {
	case models.DiscountPercent:
		d = baseTotal.Mul(p.DiscountValue).Div(decimal.NewFromInt(100))
		if p.MaxDiscountUSD != nil && p.MaxDiscountUSD.IsPositive() && d.GreaterThan(*p.MaxDiscountUSD) {
			d = *p.MaxDiscountUSD
		}
	case models.DiscountFixed:
		d = p.DiscountValue
	default:
		return decimal.Zero
	}

	d = d.Round(2)
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(baseTotal) {
		return baseTotal
	}
	return d
}
