package models

import "github.com/shopspring/decimal"

// OrderSelection is everything the customer has chosen so far in the order flow.
// JSON field names match the order context used by the storefront.
type OrderSelection struct {
	Domain             string          `json:"domain"`
	TemplateID         string          `json:"selected_template_id"`
	TemplateName       string          `json:"selected_template_name"`
	PackageID          string          `json:"selected_package_id"`
	PackageName        string          `json:"selected_package_name"`
	SubscriptionYears  int             `json:"subscription_years"` // 0 until a duration is picked
	AddOns             map[string]int  `json:"add_ons"`
	SubscriptionAddOns map[string]bool `json:"subscription_add_ons"`
	PromoCode          string          `json:"promo_code"`
	AppliedPromo       *AppliedPromo   `json:"applied_promo"`
	Details            CustomerDetails `json:"details"`
}

// Clone returns a deep copy so callers can mutate maps without sharing.
func (s OrderSelection) Clone() OrderSelection {
	out := s
	if s.AddOns != nil {
		out.AddOns = make(map[string]int, len(s.AddOns))
		for k, v := range s.AddOns {
			out.AddOns[k] = v
		}
	}
	if s.SubscriptionAddOns != nil {
		out.SubscriptionAddOns = make(map[string]bool, len(s.SubscriptionAddOns))
		for k, v := range s.SubscriptionAddOns {
			out.SubscriptionAddOns[k] = v
		}
	}
	if s.AppliedPromo != nil {
		p := *s.AppliedPromo
		out.AppliedPromo = &p
	}
	return out
}

// CustomerDetails holds the contact form of the checkout
type CustomerDetails struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	BusinessName  string `json:"business_name"`
	ProvinceCode  string `json:"province_code"`
	ProvinceName  string `json:"province_name"`
	City          string `json:"city"`
	AcceptedTerms bool   `json:"accepted_terms"`
}

// AppliedPromo is a promo discount resolved against one specific base total
type AppliedPromo struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	PromoName   string          `json:"promo_name"`
	DiscountUSD decimal.Decimal `json:"discount_usd"`
}

// InvoiceRequest is sent to the payment gateway to open a hosted invoice
type InvoiceRequest struct {
	LeadID               string `json:"lead_id,omitempty"`
	AmountIDR            int64  `json:"amount_idr"`
	SubscriptionYears    int    `json:"subscription_years"`
	PromoCode            string `json:"promo_code,omitempty"`
	Domain               string `json:"domain"`
	SelectedTemplateID   string `json:"selected_template_id"`
	SelectedTemplateName string `json:"selected_template_name,omitempty"`
	CustomerName         string `json:"customer_name,omitempty"`
	CustomerEmail        string `json:"customer_email"`
}

// Invoice is the gateway response used to redirect the customer
type Invoice struct {
	OrderDBID  string `json:"order_db_id"`
	InvoiceURL string `json:"invoice_url"`
}
