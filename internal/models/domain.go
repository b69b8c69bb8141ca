package models

import "github.com/shopspring/decimal"

// AvailabilityStatus is the closed set of statuses shown for a suggested domain
type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusUnavailable AvailabilityStatus = "unavailable"
	StatusPremium     AvailabilityStatus = "premium"
	StatusBlocked     AvailabilityStatus = "blocked"
	StatusUnknown     AvailabilityStatus = "unknown"
)

// AvailabilityResult is the response of a single domain availability lookup.
// Status is the provider string and may fall outside AvailabilityStatus.
type AvailabilityResult struct {
	Domain     string         `json:"domain"`
	Status     string         `json:"status"`
	Registered *string        `json:"registered"`
	Raw        map[string]any `json:"raw,omitempty"`
}

// DomainSuggestionItem is one row of the suggestion list
type DomainSuggestionItem struct {
	Domain   string             `json:"domain"`
	Status   AvailabilityStatus `json:"status"`
	PriceUSD *decimal.Decimal   `json:"price_usd"`
	Currency *string            `json:"currency"`
}

// SuggestionState is the merged outcome of an availability run
type SuggestionState struct {
	Loading bool                   `json:"loading"`
	Error   *string                `json:"error"`
	Items   []DomainSuggestionItem `json:"items"`
}

// IdleSuggestions is the state for an empty query
func IdleSuggestions() SuggestionState {
	return SuggestionState{Items: []DomainSuggestionItem{}}
}
