package availability

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fajar1211/remix-of-digitaldev/internal/cache"
	"github.com/fajar1211/remix-of-digitaldev/internal/models"
	"github.com/fajar1211/remix-of-digitaldev/pkg/whoisclient"
)

type stubSecrets struct {
	secret *models.IntegrationSecret
	err    error
}

func (s stubSecrets) GetSecret(ctx context.Context, provider, name string) (*models.IntegrationSecret, error) {
	return s.secret, s.err
}

type stubWhois struct {
	payload map[string]any
	err     error
	delay   time.Duration
	calls   int32
	lastKey atomic.Value

	// honorCtx fails the call when ctx is already done
	honorCtx bool
}

func (s *stubWhois) CheckAvailability(ctx context.Context, domain, apiKey string) (map[string]any, error) {
	atomic.AddInt32(&s.calls, 1)
	s.lastKey.Store(apiKey)
	if s.honorCtx {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.payload, s.err
}

func keySecret(v string) stubSecrets {
	return stubSecrets{secret: &models.IntegrationSecret{Provider: "whoapi", Name: "api_key", Ciphertext: v, IV: "plain"}}
}

func requireProviderError(t *testing.T, err error, status int, code string) *ProviderError {
	t.Helper()
	var pe *ProviderError
	require.True(t, errors.As(err, &pe), "expected ProviderError, got %v", err)
	assert.Equal(t, status, pe.Status)
	assert.Equal(t, code, pe.Code)
	return pe
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"  HTTPS://www.Acme.com/path ": "acme.com",
		"http://acme.co.id":            "acme.co.id",
		"www.acme.id":                  "acme.id",
		"acme .com":                    "acme.com",
		"":                             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDomain(in), "input %q", in)
	}
}

func TestCheck_NotConfigured(t *testing.T) {
	svc := NewService(stubSecrets{}, "", &stubWhois{}, nil, nil)

	_, err := svc.Check(context.Background(), "acme.com")
	requireProviderError(t, err, http.StatusPreconditionFailed, CodeNotConfigured)
}

func TestCheck_BlankStoredKeyUsesFallback(t *testing.T) {
	whois := &stubWhois{payload: map[string]any{"available": true}}
	svc := NewService(keySecret("   "), "env-key", whois, nil, nil)

	_, err := svc.Check(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.Equal(t, "env-key", whois.lastKey.Load())
}

func TestCheck_StoredKeyWins(t *testing.T) {
	whois := &stubWhois{payload: map[string]any{"available": true}}
	svc := NewService(keySecret(" stored-key\n"), "env-key", whois, nil, nil)

	_, err := svc.Check(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.Equal(t, "stored-key", whois.lastKey.Load())
}

func TestCheck_EncryptedSecretIsNotUsed(t *testing.T) {
	encrypted := stubSecrets{secret: &models.IntegrationSecret{
		Provider:   "whoapi",
		Name:       "api_key",
		Ciphertext: "b64-encrypted-blob",
		IV:         "a1b2c3",
	}}

	t.Run("no fallback", func(t *testing.T) {
		whois := &stubWhois{payload: map[string]any{"available": true}}
		svc := NewService(encrypted, "", whois, nil, nil)

		_, err := svc.Check(context.Background(), "acme.com")
		requireProviderError(t, err, http.StatusPreconditionFailed, CodeNotConfigured)
		assert.Equal(t, int32(0), atomic.LoadInt32(&whois.calls))
	})

	t.Run("fallback key", func(t *testing.T) {
		whois := &stubWhois{payload: map[string]any{"available": true}}
		svc := NewService(encrypted, "env-key", whois, nil, nil)

		_, err := svc.Check(context.Background(), "acme.com")
		require.NoError(t, err)
		assert.Equal(t, "env-key", whois.lastKey.Load())
	})
}

func TestCheck_SecretStoreError(t *testing.T) {
	svc := NewService(stubSecrets{err: errors.New("db down")}, "env-key", &stubWhois{}, nil, nil)

	_, err := svc.Check(context.Background(), "acme.com")
	requireProviderError(t, err, http.StatusInternalServerError, CodeInternal)
}

func TestCheck_InvalidDomain(t *testing.T) {
	svc := NewService(keySecret("k"), "", &stubWhois{}, nil, nil)

	for _, raw := range []string{"", "   ", "acme", "https://www./"} {
		_, err := svc.Check(context.Background(), raw)
		requireProviderError(t, err, http.StatusBadRequest, CodeInvalidDomain)
	}
}

func TestCheck_Success(t *testing.T) {
	whois := &stubWhois{payload: map[string]any{"registered": "No"}}
	svc := NewService(keySecret("k"), "", whois, nil, nil)

	res, err := svc.Check(context.Background(), "https://www.Acme.com/")
	require.NoError(t, err)
	assert.Equal(t, "acme.com", res.Domain)
	assert.Equal(t, "available", res.Status)
	require.NotNil(t, res.Registered)
	assert.Equal(t, "no", *res.Registered)
	assert.Equal(t, "No", res.Raw["registered"])
}

func TestCheck_ProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"unauthorized", &whoisclient.StatusError{Status: 401, Message: "nope"}, 401, CodeInvalidCredential, invalidCredentialMessage},
		{"forbidden", &whoisclient.StatusError{Status: 403, Message: "nope"}, 403, CodeInvalidCredential, invalidCredentialMessage},
		{"rate limited", &whoisclient.StatusError{Status: 429, Message: "slow down"}, 429, CodeProviderError, "slow down"},
		{"breaker open", whoisclient.ErrCircuitOpen, 503, CodeProviderError, "domain availability provider is temporarily unavailable"},
		{"transport", errors.New("dial tcp: refused"), 500, CodeInternal, "dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(keySecret("k"), "", &stubWhois{err: tt.err}, nil, nil)

			_, err := svc.Check(context.Background(), "acme.com")
			pe := requireProviderError(t, err, tt.wantStatus, tt.wantCode)
			assert.Equal(t, tt.wantMsg, pe.Message)
		})
	}
}

func TestCheck_CachesSuccessfulLookups(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	whois := &stubWhois{payload: map[string]any{"available": "Taken"}}
	svc := NewService(keySecret("k"), "", whois, cache.NewRedisCache(client, time.Minute), nil)

	first, err := svc.Check(context.Background(), "acme.com")
	require.NoError(t, err)
	second, err := svc.Check(context.Background(), "ACME.com")
	require.NoError(t, err)

	assert.Equal(t, "unavailable", first.Status)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&whois.calls))
}

func TestCheck_FailuresAreNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	whois := &stubWhois{err: &whoisclient.StatusError{Status: 500, Message: "boom"}}
	svc := NewService(keySecret("k"), "", whois, cache.NewRedisCache(client, time.Minute), nil)

	_, err := svc.Check(context.Background(), "acme.com")
	require.Error(t, err)
	_, err = svc.Check(context.Background(), "acme.com")
	require.Error(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&whois.calls))
}

func TestCheck_ConcurrentLookupsAreCollapsed(t *testing.T) {
	whois := &stubWhois{payload: map[string]any{"available": true}, delay: 50 * time.Millisecond}
	svc := NewService(keySecret("k"), "", whois, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Check(context.Background(), "acme.com")
			assert.NoError(t, err)
			assert.Equal(t, "available", res.Status)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&whois.calls))
}

func TestCheck_SharedLookupIgnoresCallerCancellation(t *testing.T) {
	whois := &stubWhois{payload: map[string]any{"available": true}, honorCtx: true}
	svc := NewService(keySecret("k"), "", whois, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Check(ctx, "acme.com")
	require.NoError(t, err)
	assert.Equal(t, "available", res.Status)
}

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"available bool", map[string]any{"available": true}, "available"},
		{"available false", map[string]any{"available": false}, "unavailable"},
		{"availability string", map[string]any{"availability": "AVAILABLE"}, "available"},
		{"is_available string false", map[string]any{"is_available": "false"}, "unavailable"},
		{"taken", map[string]any{"available": "taken"}, "unavailable"},
		{"nested data", map[string]any{"data": map[string]any{"available": true}}, "available"},
		{"registered yes", map[string]any{"registered": "yes"}, "unavailable"},
		{"nested registered no", map[string]any{"data": map[string]any{"registered": "no"}}, "available"},
		{"available wins over registered", map[string]any{"available": true, "registered": "yes"}, "available"},
		{"unrecognized available falls through", map[string]any{"available": "maybe", "registered": "true"}, "unavailable"},
		{"numeric ignored", map[string]any{"available": 1.0}, "unknown"},
		{"empty", map[string]any{}, "unknown"},
		{"nil", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := MapProviderStatus(tt.payload)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsProviderError(t *testing.T) {
	pe := AsProviderError(errors.New("plain"))
	assert.Equal(t, http.StatusInternalServerError, pe.Status)
	assert.Equal(t, CodeInternal, pe.Code)

	orig := notConfigured()
	assert.Same(t, orig, AsProviderError(orig))
}
