package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/fajar1211/remix-of-digitaldev/internal/config"
)

// APIKeyAuth guards the internal endpoints.
// The key is read from the "X-API-Key" header, falling back to "api_key".
func APIKeyAuth(cfg config.AuthConfig) func(next http.Handler) http.Handler {
	keys := make([][]byte, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		keys = append(keys, []byte(k))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				apiKey = r.Header.Get("api_key")
			}

			if apiKey == "" {
				deny(w, http.StatusUnauthorized, "API key required")
				return
			}

			if !validKey(keys, []byte(apiKey)) {
				deny(w, http.StatusForbidden, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func validKey(keys [][]byte, candidate []byte) bool {
	valid := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k, candidate) == 1 {
			valid = true
		}
	}
	return valid
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
