package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// PromoRepository finds promo codes. A nil promo means the code is unknown.
type PromoRepository interface {
	FindPromoByCode(ctx context.Context, code string) (*models.Promo, error)
}

// InMemoryPromoRepository implements PromoRepository with in-memory storage
type InMemoryPromoRepository struct {
	mu     sync.RWMutex
	promos map[string]models.Promo
}

// NewInMemoryPromoRepository creates a promo repository seeded with promos
func NewInMemoryPromoRepository(promos ...models.Promo) *InMemoryPromoRepository {
	r := &InMemoryPromoRepository{promos: make(map[string]models.Promo, len(promos))}
	for _, p := range promos {
		r.promos[strings.ToUpper(p.Code)] = p
	}
	return r
}

// DefaultPromos is the seed used when no database is configured
func DefaultPromos() []models.Promo {
	capUSD := decimal.NewFromInt(500000)
	return []models.Promo{
		{ID: "promo-hemat", Code: "HEMAT10", PromoName: "Hemat 10%", DiscountType: models.DiscountPercent, DiscountValue: decimal.NewFromInt(10), MaxDiscountUSD: &capUSD, IsActive: true},
		{ID: "promo-launch", Code: "LAUNCH25", PromoName: "Launch discount", DiscountType: models.DiscountFixed, DiscountValue: decimal.NewFromInt(250000), MinOrderUSD: decimal.NewFromInt(1000000), IsActive: true},
	}
}

// FindPromoByCode returns a promo by its code, ignoring case
func (r *InMemoryPromoRepository) FindPromoByCode(ctx context.Context, code string) (*models.Promo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.promos[strings.ToUpper(strings.TrimSpace(code))]
	if !exists {
		return nil, nil
	}
	return &p, nil
}
