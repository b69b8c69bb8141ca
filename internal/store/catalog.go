package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// CatalogRepository reads packages and their pricing tables
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetPackage returns nil when the package does not exist.
func (r *CatalogRepository) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	const q = `
SELECT id, name, price::text, is_active, is_default
FROM packages
WHERE id = $1
LIMIT 1
`
	var p models.Package
	var price string
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &price, &p.IsActive, &p.IsDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if p.Price, err = parseDecimal("packages.price", price); err != nil {
		return nil, err
	}
	return &p, nil
}

// DefaultPackageID returns "" when no active package is flagged as default.
func (r *CatalogRepository) DefaultPackageID(ctx context.Context) (string, error) {
	const q = `SELECT id FROM packages WHERE is_default AND is_active LIMIT 1`
	var id string
	if err := r.pool.QueryRow(ctx, q).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// ListDurationRows includes inactive rows; callers filter on IsActive.
func (r *CatalogRepository) ListDurationRows(ctx context.Context, packageID string) ([]models.DurationRow, error) {
	const q = `
SELECT duration_months, discount_percent::text, is_active
FROM package_durations
WHERE package_id = $1
ORDER BY sort_order, duration_months
`
	rows, err := r.pool.Query(ctx, q, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DurationRow
	for rows.Next() {
		var d models.DurationRow
		var pct string
		if err := rows.Scan(&d.DurationMonths, &pct, &d.IsActive); err != nil {
			return nil, err
		}
		if d.DiscountPercent, err = parseDecimal("package_durations.discount_percent", pct); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) ListSubscriptionPlans(ctx context.Context, packageID string) ([]models.SubscriptionPlan, error) {
	const q = `
SELECT years, price_usd::text
FROM subscription_plans
WHERE package_id = $1 AND is_active
ORDER BY years
`
	rows, err := r.pool.Query(ctx, q, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SubscriptionPlan
	for rows.Next() {
		var p models.SubscriptionPlan
		var price string
		if err := rows.Scan(&p.Years, &price); err != nil {
			return nil, err
		}
		if p.PriceUSD, err = parseDecimal("subscription_plans.price_usd", price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) ListAddOnPrices(ctx context.Context, packageID string) ([]models.AddOnPrice, error) {
	const q = `
SELECT add_on_key, label, unit_price::text
FROM package_add_ons
WHERE package_id = $1 AND is_active
ORDER BY add_on_key
`
	return r.queryAddOns(ctx, q, packageID)
}

// ListSubscriptionAddOnPrices returns add-ons for packageID plus the ones offered with every package.
func (r *CatalogRepository) ListSubscriptionAddOnPrices(ctx context.Context, packageID string) ([]models.AddOnPrice, error) {
	const q = `
SELECT add_on_key, label, unit_price::text
FROM subscription_add_ons
WHERE (package_id = $1 OR package_id IS NULL) AND is_active
ORDER BY add_on_key
`
	return r.queryAddOns(ctx, q, packageID)
}

func (r *CatalogRepository) queryAddOns(ctx context.Context, q, packageID string) ([]models.AddOnPrice, error) {
	rows, err := r.pool.Query(ctx, q, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AddOnPrice
	for rows.Next() {
		var a models.AddOnPrice
		var price string
		if err := rows.Scan(&a.Key, &a.Label, &price); err != nil {
			return nil, err
		}
		if a.UnitPrice, err = parseDecimal("add-on unit_price", price); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
