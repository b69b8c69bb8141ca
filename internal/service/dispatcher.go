package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fajar1211/remix-of-digitaldev/internal/events"
	"github.com/fajar1211/remix-of-digitaldev/internal/models"
	"github.com/fajar1211/remix-of-digitaldev/internal/pricing"
	"github.com/fajar1211/remix-of-digitaldev/internal/repository"
)

var (
	ErrNotReady         = errors.New("order is missing required fields")
	ErrTotalUnavailable = errors.New("total is not available yet")
	ErrLeadSave         = errors.New("failed to save order lead")
	ErrInvoiceCreate    = errors.New("failed to create invoice")
)

const (
	// FlowWebsite is the flow type recorded for website orders
	FlowWebsite = "website"

	anonymousActor = "anonymous"
	auditAction    = "order_website_pay"
	auditEntity    = "order"
)

// InvoiceCreator opens a hosted invoice on the payment gateway
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, req models.InvoiceRequest) (models.Invoice, error)
}

// DispatchRequest is a priced order ready to be paid
type DispatchRequest struct {
	Selection          models.OrderSelection
	EffectivePackageID string
	FinalTotal         pricing.Amount
	FlowType           string
	Actor              string
}

// Redirect tells the caller where to send the customer
type Redirect struct {
	InvoiceURL  string `json:"invoice_url"`
	OrderID     string `json:"order_id"`
	LeadID      string `json:"lead_id"`
	AmountIDR   int64  `json:"amount_idr"`
	AuditFailed bool   `json:"-"`
}

// Dispatcher records an order and hands it to the payment gateway
type Dispatcher struct {
	leads     repository.LeadRepository
	audit     repository.AuditRepository
	invoices  InvoiceCreator
	publisher events.Publisher
	exchange  string
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher creates a new dispatcher. publisher may be nil.
func NewDispatcher(
	leads repository.LeadRepository,
	audit repository.AuditRepository,
	invoices InvoiceCreator,
	publisher events.Publisher,
	exchange string,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		leads:     leads,
		audit:     audit,
		invoices:  invoices,
		publisher: publisher,
		exchange:  exchange,
		logger:    logger,
		now:       time.Now,
	}
}

// Dispatch audits the order, saves the lead and creates the invoice, in that order.
// Audit and event failures are logged and do not stop the payment.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (Redirect, error) {
	sel := req.Selection
	if !pricing.CanComplete(sel, req.EffectivePackageID) {
		return Redirect{}, ErrNotReady
	}
	amount, ok := req.FinalTotal.IntPart()
	if !ok {
		return Redirect{}, ErrTotalUnavailable
	}

	flow := req.FlowType
	if flow == "" {
		flow = FlowWebsite
	}
	actor := req.Actor
	if actor == "" {
		actor = anonymousActor
	}
	logger := d.logger.With("domain", sel.Domain, "amount_idr", amount)

	var redirect Redirect
	redirect.AmountIDR = amount

	if err := d.writeAudit(ctx, actor, sel, amount); err != nil {
		redirect.AuditFailed = true
		logger.Warn("order audit log failed", "error", err)
	}

	lead := buildLead(sel, flow, amount, d.now().UTC())
	if err := d.leads.SaveLead(ctx, &lead); err != nil {
		logger.Error("failed to save order lead", "error", err)
		return Redirect{}, fmt.Errorf("%w: %w", ErrLeadSave, err)
	}
	redirect.LeadID = lead.ID
	d.publishLead(ctx, lead)

	invoice, err := d.invoices.CreateInvoice(ctx, models.InvoiceRequest{
		LeadID:               lead.ID,
		AmountIDR:            amount,
		SubscriptionYears:    sel.SubscriptionYears,
		PromoCode:            sel.PromoCode,
		Domain:               sel.Domain,
		SelectedTemplateID:   sel.TemplateID,
		SelectedTemplateName: sel.TemplateName,
		CustomerName:         sel.Details.Name,
		CustomerEmail:        sel.Details.Email,
	})
	if err != nil {
		logger.Error("failed to create invoice", "lead_id", lead.ID, "error", err)
		return Redirect{}, fmt.Errorf("%w: %w", ErrInvoiceCreate, err)
	}

	redirect.InvoiceURL = invoice.InvoiceURL
	redirect.OrderID = invoice.OrderDBID
	logger.Info("invoice created", "lead_id", lead.ID, "order_id", invoice.OrderDBID)
	return redirect, nil
}

func (d *Dispatcher) writeAudit(ctx context.Context, actor string, sel models.OrderSelection, amount int64) error {
	if d.audit == nil {
		return errors.New("audit repository not configured")
	}
	first, last := splitName(sel.Details.Name)

	var businessName any
	if sel.Details.BusinessName != "" {
		businessName = sel.Details.BusinessName
	}

	return d.audit.InsertAudit(ctx, &models.AuditRecord{
		ID:         uuid.NewString(),
		Actor:      actor,
		Action:     auditAction,
		EntityType: auditEntity,
		CreatedAt:  d.now().UTC(),
		Metadata: map[string]any{
			"first_name":           first,
			"last_name":            last,
			"email":                sel.Details.Email,
			"phone":                sel.Details.Phone,
			"business_name":        businessName,
			"province":             sel.Details.ProvinceName,
			"city":                 sel.Details.City,
			"domain":               sel.Domain,
			"template_id":          sel.TemplateID,
			"template_name":        sel.TemplateName,
			"package_id":           sel.PackageID,
			"package_name":         sel.PackageName,
			"subscription_years":   sel.SubscriptionYears,
			"add_ons":              sel.AddOns,
			"subscription_add_ons": sel.SubscriptionAddOns,
			"promo_code":           sel.PromoCode,
			"amount_idr":           amount,
		},
	})
}

func (d *Dispatcher) publishLead(ctx context.Context, lead models.OrderLead) {
	if d.publisher == nil {
		return
	}
	event := events.LeadCreatedEvent{
		LeadID:    lead.ID,
		FlowType:  lead.FlowType,
		Domain:    lead.Domain,
		Email:     lead.Email,
		AmountIDR: lead.AmountIDR,
		PromoCode: lead.PromoCode,
		CreatedAt: lead.CreatedAt,
	}
	if err := d.publisher.Publish(ctx, d.exchange, events.LeadCreated, event); err != nil {
		d.logger.Warn("failed to publish lead event", "lead_id", lead.ID, "error", err)
	}
}

func buildLead(sel models.OrderSelection, flow string, amount int64, now time.Time) models.OrderLead {
	first, last := splitName(sel.Details.Name)
	return models.OrderLead{
		ID:                 uuid.NewString(),
		CreatedAt:          now,
		FlowType:           flow,
		Domain:             sel.Domain,
		TemplateID:         sel.TemplateID,
		TemplateName:       sel.TemplateName,
		PackageID:          sel.PackageID,
		PackageName:        sel.PackageName,
		SubscriptionYears:  sel.SubscriptionYears,
		AddOns:             sel.AddOns,
		SubscriptionAddOns: sel.SubscriptionAddOns,
		FirstName:          first,
		LastName:           last,
		Email:              strings.TrimSpace(sel.Details.Email),
		Phone:              sel.Details.Phone,
		BusinessName:       sel.Details.BusinessName,
		ProvinceCode:       sel.Details.ProvinceCode,
		ProvinceName:       sel.Details.ProvinceName,
		City:               sel.Details.City,
		AmountIDR:          amount,
		PromoCode:          sel.PromoCode,
		Status:             models.LeadStatusNew,
	}
}

// splitName returns the first word and the rest of a full name
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
