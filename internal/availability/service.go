package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/fajar1211/remix-of-digitaldev/internal/cache"
	"github.com/fajar1211/remix-of-digitaldev/internal/integrations"
	"github.com/fajar1211/remix-of-digitaldev/internal/models"
	"github.com/fajar1211/remix-of-digitaldev/pkg/whoisclient"
)

// WhoisClient fetches the raw availability payload of a domain
type WhoisClient interface {
	CheckAvailability(ctx context.Context, domain, apiKey string) (map[string]any, error)
}

// Service checks domain availability against the WhoisJSON provider
type Service struct {
	secrets     integrations.SecretStore
	fallbackKey string
	client      WhoisClient
	cache       cache.AvailabilityCache
	logger      *slog.Logger

	group singleflight.Group
}

// NewService creates a new availability service.
// fallbackKey is used when no whoapi key is stored; it may be empty.
func NewService(secrets integrations.SecretStore, fallbackKey string, client WhoisClient, c cache.AvailabilityCache, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		secrets:     secrets,
		fallbackKey: strings.TrimSpace(fallbackKey),
		client:      client,
		cache:       c,
		logger:      logger,
	}
}

var protocolPrefix = regexp.MustCompile(`^https?://`)

// NormalizeDomain reduces raw input to a bare host name
func NormalizeDomain(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = protocolPrefix.ReplaceAllString(v, "")
	v = strings.TrimPrefix(v, "www.")
	if i := strings.Index(v, "/"); i >= 0 {
		v = v[:i]
	}
	return strings.Join(strings.Fields(v), "")
}

// Check looks up one domain. Errors are always *ProviderError.
func (s *Service) Check(ctx context.Context, raw string) (models.AvailabilityResult, error) {
	apiKey, err := s.apiKey(ctx)
	if err != nil {
		return models.AvailabilityResult{}, err
	}

	domain := NormalizeDomain(raw)
	if domain == "" || !strings.Contains(domain, ".") {
		return models.AvailabilityResult{}, invalidDomain()
	}

	if cached, err := s.cache.Get(ctx, domain); err == nil {
		s.logger.Debug("availability cache hit", "domain", domain)
		return *cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("availability cache read failed", "domain", domain, "error", err)
	}

	// Shared by every caller of domain, so detached from any single caller's cancellation
	shared := context.WithoutCancel(ctx)
	v, err, joined := s.group.Do(domain, func() (any, error) {
		return s.lookup(shared, domain, apiKey)
	})
	if err != nil {
		return models.AvailabilityResult{}, err
	}
	if joined {
		s.logger.Debug("availability lookup shared", "domain", domain)
	}
	return v.(models.AvailabilityResult), nil
}

func (s *Service) apiKey(ctx context.Context) (string, error) {
	key, ready, err := integrations.PlainSecret(ctx, s.secrets, integrations.ProviderWhoapi, integrations.SecretAPIKey)
	if err != nil {
		s.logger.Error("failed to read whoapi secret", "error", err)
		return "", &ProviderError{
			Status:  http.StatusInternalServerError,
			Code:    CodeInternal,
			Message: fmt.Sprintf("failed to read provider credentials: %v", err),
		}
	}
	if ready {
		return key, nil
	}
	if s.fallbackKey != "" {
		return s.fallbackKey, nil
	}
	return "", notConfigured()
}

func (s *Service) lookup(ctx context.Context, domain, apiKey string) (models.AvailabilityResult, error) {
	payload, err := s.client.CheckAvailability(ctx, domain, apiKey)
	if err != nil {
		return models.AvailabilityResult{}, s.mapClientError(domain, err)
	}

	status, registered := MapProviderStatus(payload)
	result := models.AvailabilityResult{
		Domain:     domain,
		Status:     status,
		Registered: registered,
		Raw:        payload,
	}

	if err := s.cache.Set(ctx, domain, &result); err != nil {
		s.logger.Warn("availability cache write failed", "domain", domain, "error", err)
	}
	return result, nil
}

func (s *Service) mapClientError(domain string, err error) *ProviderError {
	var se *whoisclient.StatusError
	switch {
	case errors.As(err, &se):
		s.logger.Warn("whois provider rejected request", "domain", domain, "status", se.Status, "error", se.Message)
		if se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden {
			return &ProviderError{Status: se.Status, Code: CodeInvalidCredential, Message: invalidCredentialMessage, Raw: se.Raw}
		}
		return &ProviderError{Status: se.Status, Code: CodeProviderError, Message: se.Message, Raw: se.Raw}
	case errors.Is(err, whoisclient.ErrCircuitOpen):
		return &ProviderError{
			Status:  http.StatusServiceUnavailable,
			Code:    CodeProviderError,
			Message: "domain availability provider is temporarily unavailable",
		}
	default:
		s.logger.Error("whois lookup failed", "domain", domain, "error", err)
		return &ProviderError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: err.Error()}
	}
}

// MapProviderStatus derives available/unavailable/unknown from a WhoisJSON payload.
// Explicit availability fields win over the registered flag.
func MapProviderStatus(payload map[string]any) (string, *string) {
	data, _ := payload["data"].(map[string]any)

	availableRaw := firstPresent(payload["available"], payload["availability"], payload["is_available"], data["available"])
	registeredRaw := firstPresent(payload["registered"], data["registered"])

	availableStr, availableIsStr := lowerString(availableRaw)
	registeredStr, registeredIsStr := lowerString(registeredRaw)

	var registered *string
	if registeredIsStr {
		registered = &registeredStr
	}

	switch {
	case availableRaw == true || (availableIsStr && (availableStr == "true" || availableStr == "available")):
		return string(models.StatusAvailable), registered
	case availableRaw == false || (availableIsStr && (availableStr == "false" || availableStr == "unavailable" || availableStr == "taken")):
		return string(models.StatusUnavailable), registered
	case registeredIsStr && (registeredStr == "yes" || registeredStr == "true"):
		return string(models.StatusUnavailable), registered
	case registeredIsStr && (registeredStr == "no" || registeredStr == "false"):
		return string(models.StatusAvailable), registered
	default:
		return string(models.StatusUnknown), registered
	}
}

func firstPresent(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func lowerString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.ToLower(s), true
}
