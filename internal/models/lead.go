package models

import "time"

// Lead statuses
const (
	LeadStatusNew = "new"
)

// OrderLead is the business record saved before an invoice is opened
type OrderLead struct {
	ID                 string          `json:"id"`
	CreatedAt          time.Time       `json:"created_at"`
	FlowType           string          `json:"flow_type"`
	Domain             string          `json:"domain"`
	TemplateID         string          `json:"template_id"`
	TemplateName       string          `json:"template_name"`
	PackageID          string          `json:"package_id"`
	PackageName        string          `json:"package_name"`
	SubscriptionYears  int             `json:"subscription_years"`
	AddOns             map[string]int  `json:"add_ons"`
	SubscriptionAddOns map[string]bool `json:"subscription_add_ons"`
	FirstName          string          `json:"first_name"`
	LastName           string          `json:"last_name"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	BusinessName       string          `json:"business_name"`
	ProvinceCode       string          `json:"province_code"`
	ProvinceName       string          `json:"province_name"`
	City               string          `json:"city"`
	AmountIDR          int64           `json:"amount_idr"`
	PromoCode          string          `json:"promo_code"`
	Status             string          `json:"status"`
	IsRead             bool            `json:"is_read"`
}

// AuditRecord is a best-effort log entry of a user action
type AuditRecord struct {
	ID         string         `json:"id"`
	Actor      string         `json:"actor"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}

// IntegrationSecret is a stored credential for a third-party provider.
// IV is the storage marker; only "plain" values are usable.
type IntegrationSecret struct {
	Provider   string    `json:"provider"`
	Name       string    `json:"name"`
	Ciphertext string    `json:"-"`
	IV         string    `json:"iv"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProviderReadiness reports which payment providers can be used
type ProviderReadiness struct {
	OK        bool            `json:"ok"`
	Provider  *string         `json:"provider"`
	Providers map[string]bool `json:"providers"`
}
