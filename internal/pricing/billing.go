package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// BillingMode decides how a package's duration price is derived
type BillingMode string

const (
	// FlatMultiyear packages have a fixed price per whole-year plan
	FlatMultiyear BillingMode = "flat_multiyear"
	// RecurringMonthly packages are a monthly price times the months subscribed
	RecurringMonthly BillingMode = "recurring_monthly"
)

var recurringMarkers = []string{
	"full digital marketing",
	"blog + social media",
	"blog+social media",
}

var hundred = decimal.NewFromInt(100)

// ClassifyPackage picks the billing mode from the package name
func ClassifyPackage(name string) BillingMode {
	n := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	for _, marker := range recurringMarkers {
		if strings.Contains(n, marker) {
			return RecurringMonthly
		}
	}
	return FlatMultiyear
}

// DiscountTable maps a subscription length in months to a discount percent
type DiscountTable map[int]decimal.Decimal

// NewDiscountTable builds the table from catalog rows.
// Inactive rows and rows without a positive month count are skipped;
// a later row for the same month count wins.
func NewDiscountTable(rows []models.DurationRow) DiscountTable {
	table := make(DiscountTable, len(rows))
	for _, r := range rows {
		if !r.IsActive || r.DurationMonths <= 0 {
			continue
		}
		table[r.DurationMonths] = r.DiscountPercent
	}
	return table
}

// Percent returns the discount for months, 0 when absent
func (t DiscountTable) Percent(months int) decimal.Decimal {
	if p, ok := t[months]; ok {
		return p
	}
	return decimal.Zero
}

// DiscountedTotal is monthly × months × (1 - pct/100), rounded to whole units
func DiscountedTotal(monthly decimal.Decimal, months int, pct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return monthly.Mul(decimal.NewFromInt(int64(months))).Mul(factor).Round(0)
}

// DurationInput is what the duration pricer needs for one package
type DurationInput struct {
	Mode         BillingMode
	MonthlyPrice decimal.Decimal // recurring packages only
	Years        int             // 0 when no duration is selected
	Discounts    DiscountTable
	Plans        []models.SubscriptionPlan // flat packages only
}

// PriceDuration resolves the price of the selected duration.
// It is unresolved when no duration is selected, when a recurring package
// has no positive monthly price, or when a flat package has no positive plan
// for exactly the requested years.
func PriceDuration(in DurationInput) Amount {
	if in.Years <= 0 {
		return Unknown()
	}

	if in.Mode == RecurringMonthly {
		if !in.MonthlyPrice.IsPositive() {
			return Unknown()
		}
		months := in.Years * 12
		return Known(DiscountedTotal(in.MonthlyPrice, months, in.Discounts.Percent(months)))
	}

	for _, plan := range in.Plans {
		if plan.Years != in.Years {
			continue
		}
		if !plan.PriceUSD.IsPositive() {
			return Unknown()
		}
		return Known(plan.PriceUSD)
	}
	return Unknown()
}
