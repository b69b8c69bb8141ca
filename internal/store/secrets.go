package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// SecretRepository reads and writes integration_secrets
type SecretRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSecretRepository returns a SecretRepository backed by Postgres.
func NewSecretRepository(pool *pgxpool.Pool, logger *slog.Logger) *SecretRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SecretRepository{pool: pool, logger: logger}
}

// GetSecret returns nil when no secret is stored for provider/name.
func (r *SecretRepository) GetSecret(ctx context.Context, provider, name string) (*models.IntegrationSecret, error) {
	const q = `
SELECT provider, name, ciphertext, iv, updated_at
FROM integration_secrets
WHERE provider = $1 AND name = $2
LIMIT 1
`
	var s models.IntegrationSecret
	err := r.pool.QueryRow(ctx, q, provider, name).Scan(&s.Provider, &s.Name, &s.Ciphertext, &s.IV, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("secret repo: scan failed", "provider", provider, "name", name, "error", err)
		return nil, err
	}
	return &s, nil
}

// PutSecret inserts or replaces a secret.
func (r *SecretRepository) PutSecret(ctx context.Context, s models.IntegrationSecret) error {
	const q = `
INSERT INTO integration_secrets (provider, name, ciphertext, iv, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (provider, name) DO UPDATE
SET ciphertext = EXCLUDED.ciphertext,
    iv = EXCLUDED.iv,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, s.Provider, s.Name, s.Ciphertext, s.IV)
	return err
}
