package repository

import (
	"context"
	"sync"
	"time"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// InMemorySecretRepository implements integrations.SecretStore with in-memory storage
type InMemorySecretRepository struct {
	mu      sync.RWMutex
	secrets map[string]models.IntegrationSecret
}

func NewInMemorySecretRepository() *InMemorySecretRepository {
	return &InMemorySecretRepository{secrets: make(map[string]models.IntegrationSecret)}
}

func secretKey(provider, name string) string {
	return provider + "/" + name
}

// GetSecret returns nil when no secret is stored
func (r *InMemorySecretRepository) GetSecret(ctx context.Context, provider, name string) (*models.IntegrationSecret, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.secrets[secretKey(provider, name)]
	if !exists {
		return nil, nil
	}
	return &s, nil
}

func (r *InMemorySecretRepository) PutSecret(ctx context.Context, s models.IntegrationSecret) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.UpdatedAt = time.Now().UTC()
	r.secrets[secretKey(s.Provider, s.Name)] = s
	return nil
}
