package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// AuditRepository appends to audit_logs
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) InsertAudit(ctx context.Context, rec *models.AuditRecord) error {
	meta := rec.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode audit metadata: %w", err)
	}

	const q = `
INSERT INTO audit_logs (id, actor, action, entity_type, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = r.pool.Exec(ctx, q, rec.ID, rec.Actor, rec.Action, rec.EntityType, metaJSON, rec.CreatedAt)
	return err
}

// ListAudit returns the newest records first.
func (r *AuditRepository) ListAudit(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	const q = `
SELECT id::text, actor, action, entity_type, metadata, created_at
FROM audit_logs
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AuditRecord
	for rows.Next() {
		var rec models.AuditRecord
		var meta []byte
		if err := rows.Scan(&rec.ID, &rec.Actor, &rec.Action, &rec.EntityType, &meta, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("decode audit metadata: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
