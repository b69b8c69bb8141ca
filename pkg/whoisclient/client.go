// Package whoisclient is a client for the WhoisJSON domain availability API.
package whoisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

var ErrCircuitOpen = errors.New("whois circuit breaker is open")

// StatusError is returned for non-2xx provider responses
type StatusError struct {
	Status  int
	Message string
	Raw     map[string]any
}

func (e *StatusError) Error() string {
	return e.Message
}

// Client calls the availability endpoint through a circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[map[string]any]
}

// NewClient creates a new WhoisJSON client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[map[string]any](gobreaker.Settings{
			Name:        "whoisjson",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: isSuccessful,
		}),
	}
}

// AuthToken builds the Authorization header value from a stored key
func AuthToken(apiKey string) string {
	if strings.HasPrefix(strings.ToLower(apiKey), "token=") {
		return apiKey
	}
	return "TOKEN=" + apiKey
}

// CheckAvailability returns the raw provider payload for domain
func (c *Client) CheckAvailability(ctx context.Context, domain, apiKey string) (map[string]any, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("whois API base URL is not configured")
	}

	payload, err := c.breaker.Execute(func() (map[string]any, error) {
		return c.do(ctx, domain, apiKey)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return payload, err
}

// State exposes the breaker state for health reporting
func (c *Client) State() string {
	return c.breaker.State().String()
}

func (c *Client) do(ctx context.Context, domain, apiKey string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/api/v1/domain-availability?domain=%s", c.baseURL, url.QueryEscape(domain))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", AuthToken(apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request to whois API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read whois response: %w", err)
	}

	var payload map[string]any
	_ = json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Status:  resp.StatusCode,
			Message: errorMessage(payload, resp.StatusCode),
			Raw:     payload,
		}
	}

	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

func errorMessage(payload map[string]any, status int) string {
	for _, key := range []string{"error", "message", "detail"} {
		v, ok := payload[key]
		if !ok || v == nil {
			continue
		}
		if s := fmt.Sprint(v); s != "" && s != "false" {
			return s
		}
	}
	return fmt.Sprintf("WhoisJSON request failed (%d)", status)
}

// 4xx responses are caller errors and do not trip the breaker
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status < 500
	}
	return errors.Is(err, context.Canceled)
}
