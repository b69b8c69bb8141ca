// Package invoiceclient opens hosted invoices on the payment gateway.
package invoiceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// Client is a client for the payment gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new payment gateway client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateInvoice asks the gateway for a hosted invoice and returns where to send the customer.
func (c *Client) CreateInvoice(ctx context.Context, req models.InvoiceRequest) (models.Invoice, error) {
	if c.baseURL == "" {
		return models.Invoice{}, fmt.Errorf("payment gateway base URL is not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("failed to marshal invoice payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoices", bytes.NewBuffer(body))
	if err != nil {
		return models.Invoice{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("failed to execute request to payment gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.Invoice{}, fmt.Errorf("failed to read payment gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return models.Invoice{}, fmt.Errorf("payment gateway returned error status %d: %s", resp.StatusCode, gatewayMessage(raw))
	}

	var invoice models.Invoice
	if err := json.Unmarshal(raw, &invoice); err != nil {
		return models.Invoice{}, fmt.Errorf("failed to decode invoice response: %w", err)
	}
	if strings.TrimSpace(invoice.InvoiceURL) == "" {
		return models.Invoice{}, fmt.Errorf("payment gateway returned no invoice URL")
	}
	return invoice, nil
}

func gatewayMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
