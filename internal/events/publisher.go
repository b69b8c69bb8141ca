package events

import (
	"context"
	"log/slog"
	"time"
)

// Routing keys
const (
	LeadCreated = "lead.created"
)

// Publisher is the interface implemented by event publishers.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body any) error
	Close()
}

// LeadCreatedEvent notifies the follow-up dashboard about a new order lead
type LeadCreatedEvent struct {
	LeadID    string    `json:"lead_id"`
	FlowType  string    `json:"flow_type"`
	Domain    string    `json:"domain"`
	Email     string    `json:"email"`
	AmountIDR int64     `json:"amount_idr"`
	PromoCode string    `json:"promo_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FallbackPublisher only logs events; used when RabbitMQ is unavailable.
type FallbackPublisher struct {
	Logger *slog.Logger
}

func (p *FallbackPublisher) Publish(ctx context.Context, exchange, routingKey string, body any) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("event not published, broker unavailable",
		"exchange", exchange,
		"routing_key", routingKey,
		"body", body,
	)
	return nil
}

func (p *FallbackPublisher) Close() {}
