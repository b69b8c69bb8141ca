package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fajar1211/remix-of-digitaldev/internal/config"
)

func TestAPIKeyAuth(t *testing.T) {
	cfg := config.AuthConfig{
		APIKeys: []string{"apitest", "testkey123"},
	}

	// Create a test handler that returns 200 OK
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	})

	authHandler := APIKeyAuth(cfg)(testHandler)

	tests := []struct {
		name           string
		header         string
		apiKey         string
		expectedStatus int
	}{
		{
			name:           "valid key in X-API-Key",
			header:         "X-API-Key",
			apiKey:         "apitest",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid key in api_key",
			header:         "api_key",
			apiKey:         "testkey123",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing API key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid API key",
			header:         "X-API-Key",
			apiKey:         "wrongkey",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "prefix of a valid key",
			header:         "X-API-Key",
			apiKey:         "apites",
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/internal/leads", nil)
			if tt.apiKey != "" {
				req.Header.Set(tt.header, tt.apiKey)
			}

			w := httptest.NewRecorder()
			authHandler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus != http.StatusOK && w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON error body, got %q", w.Header().Get("Content-Type"))
			}
		})
	}
}
