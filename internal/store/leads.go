package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// LeadRepository persists order leads and audit records
type LeadRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLeadRepository returns a LeadRepository backed by Postgres.
func NewLeadRepository(pool *pgxpool.Pool, logger *slog.Logger) *LeadRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadRepository{pool: pool, logger: logger}
}

// SaveLead inserts a lead. ID and CreatedAt must already be set.
func (r *LeadRepository) SaveLead(ctx context.Context, l *models.OrderLead) error {
	addOns, err := json.Marshal(nonNilInts(l.AddOns))
	if err != nil {
		return fmt.Errorf("encode add_ons: %w", err)
	}
	subAddOns, err := json.Marshal(nonNilBools(l.SubscriptionAddOns))
	if err != nil {
		return fmt.Errorf("encode subscription_add_ons: %w", err)
	}

	const q = `
INSERT INTO order_leads (
    id, created_at, flow_type, domain, template_id, template_name, package_id, package_name,
    subscription_years, add_ons, subscription_add_ons, first_name, last_name, email, phone,
    business_name, province_code, province_name, city, amount_idr, promo_code, status, is_read
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
`
	_, err = r.pool.Exec(ctx, q,
		l.ID,
		l.CreatedAt,
		l.FlowType,
		l.Domain,
		l.TemplateID,
		l.TemplateName,
		l.PackageID,
		l.PackageName,
		l.SubscriptionYears,
		addOns,
		subAddOns,
		l.FirstName,
		l.LastName,
		l.Email,
		l.Phone,
		l.BusinessName,
		l.ProvinceCode,
		l.ProvinceName,
		l.City,
		l.AmountIDR,
		l.PromoCode,
		l.Status,
		l.IsRead,
	)
	if err != nil {
		r.logger.Error("lead repo: insert failed", "lead_id", l.ID, "error", err)
		return err
	}
	return nil
}

// ListLeads returns the newest leads first.
func (r *LeadRepository) ListLeads(ctx context.Context, limit int) ([]models.OrderLead, error) {
	const q = `
SELECT id::text, created_at, flow_type, domain, template_id, template_name, package_id, package_name,
       subscription_years, add_ons, subscription_add_ons, first_name, last_name, email, phone,
       business_name, province_code, province_name, city, amount_idr, promo_code, status, is_read
FROM order_leads
ORDER BY created_at DESC, id
LIMIT $1
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]models.OrderLead, 0)
	for rows.Next() {
		var l models.OrderLead
		var addOns, subAddOns []byte
		if err := rows.Scan(
			&l.ID,
			&l.CreatedAt,
			&l.FlowType,
			&l.Domain,
			&l.TemplateID,
			&l.TemplateName,
			&l.PackageID,
			&l.PackageName,
			&l.SubscriptionYears,
			&addOns,
			&subAddOns,
			&l.FirstName,
			&l.LastName,
			&l.Email,
			&l.Phone,
			&l.BusinessName,
			&l.ProvinceCode,
			&l.ProvinceName,
			&l.City,
			&l.AmountIDR,
			&l.PromoCode,
			&l.Status,
			&l.IsRead,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(addOns, &l.AddOns); err != nil {
			r.logger.Error("lead repo: decode add_ons", "lead_id", l.ID, "error", err)
			return nil, err
		}
		if err := json.Unmarshal(subAddOns, &l.SubscriptionAddOns); err != nil {
			r.logger.Error("lead repo: decode subscription_add_ons", "lead_id", l.ID, "error", err)
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// MarkLeadRead flags a lead as read. It reports false when no lead has that id.
func (r *LeadRepository) MarkLeadRead(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE order_leads SET is_read = TRUE WHERE id::text = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func nonNilInts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func nonNilBools(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}
