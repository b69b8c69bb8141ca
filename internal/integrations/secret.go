// Package integrations answers whether stored third-party credentials can be used.
package integrations

import (
	"context"
	"strings"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// Known providers and secret names
const (
	ProviderXendit = "xendit"
	ProviderWhoapi = "whoapi"
	SecretAPIKey   = "api_key"

	// PlainMarker is the only storage marker whose value is usable as-is
	PlainMarker = "plain"
)

// SecretStore reads integration secrets. A nil secret means none is stored.
type SecretStore interface {
	GetSecret(ctx context.Context, provider, name string) (*models.IntegrationSecret, error)
}

// IsPlainSecretReady reports whether secret holds a usable plain-text value.
// Any other storage marker is treated as not ready.
func IsPlainSecretReady(secret *models.IntegrationSecret) bool {
	if secret == nil {
		return false
	}
	return secret.IV == PlainMarker && strings.TrimSpace(secret.Ciphertext) != ""
}

// PlainSecret returns the trimmed value of a ready secret
func PlainSecret(ctx context.Context, store SecretStore, provider, name string) (string, bool, error) {
	secret, err := store.GetSecret(ctx, provider, name)
	if err != nil {
		return "", false, err
	}
	if !IsPlainSecretReady(secret) {
		return "", false, nil
	}
	return strings.TrimSpace(secret.Ciphertext), true, nil
}
