package service

import (
	"context"

	"github.com/fajar1211/remix-of-digitaldev/internal/integrations"
	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// ProviderService reports which payment providers have usable credentials
type ProviderService struct {
	secrets integrations.SecretStore
}

func NewProviderService(secrets integrations.SecretStore) *ProviderService {
	return &ProviderService{secrets: secrets}
}

// Readiness checks the stored xendit key. A store error is returned as-is.
func (s *ProviderService) Readiness(ctx context.Context) (models.ProviderReadiness, error) {
	secret, err := s.secrets.GetSecret(ctx, integrations.ProviderXendit, integrations.SecretAPIKey)
	if err != nil {
		return models.ProviderReadiness{}, err
	}

	xenditReady := integrations.IsPlainSecretReady(secret)
	out := models.ProviderReadiness{
		OK:        true,
		Providers: map[string]bool{integrations.ProviderXendit: xenditReady},
	}
	if xenditReady {
		provider := integrations.ProviderXendit
		out.Provider = &provider
	}
	return out, nil
}
