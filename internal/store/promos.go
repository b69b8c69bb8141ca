package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// PromoRepository reads order_promo_codes
type PromoRepository struct {
	pool *pgxpool.Pool
}

func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// FindPromoByCode matches case-insensitively and returns nil when absent.
func (r *PromoRepository) FindPromoByCode(ctx context.Context, code string) (*models.Promo, error) {
	const q = `
SELECT id, code, promo_name, discount_type, discount_value::text, max_discount_usd::text,
       min_order_usd::text, max_uses, used_count, is_active, starts_at, expires_at
FROM order_promo_codes
WHERE upper(code) = upper($1)
LIMIT 1
`
	var p models.Promo
	var value, minOrder string
	var maxDiscount *string
	err := r.pool.QueryRow(ctx, q, code).Scan(
		&p.ID,
		&p.Code,
		&p.PromoName,
		&p.DiscountType,
		&value,
		&maxDiscount,
		&minOrder,
		&p.MaxUses,
		&p.UsedCount,
		&p.IsActive,
		&p.StartsAt,
		&p.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if p.DiscountValue, err = parseDecimal("discount_value", value); err != nil {
		return nil, err
	}
	if p.MinOrderUSD, err = parseDecimal("min_order_usd", minOrder); err != nil {
		return nil, err
	}
	if maxDiscount != nil {
		d, err := parseDecimal("max_discount_usd", *maxDiscount)
		if err != nil {
			return nil, err
		}
		p.MaxDiscountUSD = &d
	}
	return &p, nil
}
