package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// CatalogRepository defines the interface for package pricing data access.
// Lookups of absent packages return nil without an error.
type CatalogRepository interface {
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	DefaultPackageID(ctx context.Context) (string, error)
	ListDurationRows(ctx context.Context, packageID string) ([]models.DurationRow, error)
	ListSubscriptionPlans(ctx context.Context, packageID string) ([]models.SubscriptionPlan, error)
	ListAddOnPrices(ctx context.Context, packageID string) ([]models.AddOnPrice, error)
	ListSubscriptionAddOnPrices(ctx context.Context, packageID string) ([]models.AddOnPrice, error)
}

// CatalogSeed is the content of an in-memory catalog, keyed by package id
type CatalogSeed struct {
	Packages           []models.Package
	Durations          map[string][]models.DurationRow
	Plans              map[string][]models.SubscriptionPlan
	AddOns             map[string][]models.AddOnPrice
	SubscriptionAddOns []models.AddOnPrice
}

// InMemoryCatalogRepository implements CatalogRepository with in-memory storage
type InMemoryCatalogRepository struct {
	mu   sync.RWMutex
	seed CatalogSeed
}

// NewInMemoryCatalogRepository creates a new in-memory catalog with seed data
func NewInMemoryCatalogRepository() *InMemoryCatalogRepository {
	d := decimal.NewFromInt
	return NewInMemoryCatalogRepositoryFrom(CatalogSeed{
		Packages: []models.Package{
			{ID: "starter", Name: "Starter Website", Price: d(1500000), IsActive: true, IsDefault: true},
			{ID: "business", Name: "Business Website", Price: d(3000000), IsActive: true},
			{ID: "growth", Name: "Full Digital Marketing", Price: d(100000), IsActive: true},
			{ID: "content", Name: "Blog + Social Media", Price: d(75000), IsActive: true},
		},
		Durations: map[string][]models.DurationRow{
			"growth": {
				{DurationMonths: 12, DiscountPercent: d(10), IsActive: true},
				{DurationMonths: 24, DiscountPercent: d(15), IsActive: true},
				{DurationMonths: 36, DiscountPercent: d(20), IsActive: true},
			},
			"content": {
				{DurationMonths: 12, DiscountPercent: d(5), IsActive: true},
				{DurationMonths: 24, DiscountPercent: d(10), IsActive: true},
			},
		},
		Plans: map[string][]models.SubscriptionPlan{
			"starter": {
				{Years: 1, PriceUSD: d(1500000)},
				{Years: 2, PriceUSD: d(2700000)},
				{Years: 3, PriceUSD: d(3750000)},
			},
			"business": {
				{Years: 1, PriceUSD: d(3000000)},
				{Years: 2, PriceUSD: d(5400000)},
				{Years: 3, PriceUSD: d(7500000)},
			},
		},
		AddOns: map[string][]models.AddOnPrice{
			"starter":  {{Key: "extra_page", Label: "Extra page", UnitPrice: d(250000)}},
			"business": {{Key: "extra_page", Label: "Extra page", UnitPrice: d(200000)}, {Key: "extra_email", Label: "Extra mailbox", UnitPrice: d(50000)}},
		},
		SubscriptionAddOns: []models.AddOnPrice{
			{Key: "seo", Label: "SEO boost", UnitPrice: d(150000)},
		},
	})
}

// NewInMemoryCatalogRepositoryFrom creates an in-memory catalog from seed
func NewInMemoryCatalogRepositoryFrom(seed CatalogSeed) *InMemoryCatalogRepository {
	return &InMemoryCatalogRepository{seed: seed}
}

// GetPackage returns a package by its ID
func (r *InMemoryCatalogRepository) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.seed.Packages {
		if p.ID == id {
			pkg := p
			return &pkg, nil
		}
	}
	return nil, nil
}

// DefaultPackageID returns the first active default package
func (r *InMemoryCatalogRepository) DefaultPackageID(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.seed.Packages {
		if p.IsDefault && p.IsActive {
			return p.ID, nil
		}
	}
	return "", nil
}

func (r *InMemoryCatalogRepository) ListDurationRows(ctx context.Context, packageID string) ([]models.DurationRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.DurationRow(nil), r.seed.Durations[packageID]...), nil
}

func (r *InMemoryCatalogRepository) ListSubscriptionPlans(ctx context.Context, packageID string) ([]models.SubscriptionPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plans := append([]models.SubscriptionPlan(nil), r.seed.Plans[packageID]...)
	sort.Slice(plans, func(i, j int) bool { return plans[i].Years < plans[j].Years })
	return plans, nil
}

func (r *InMemoryCatalogRepository) ListAddOnPrices(ctx context.Context, packageID string) ([]models.AddOnPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.AddOnPrice(nil), r.seed.AddOns[packageID]...), nil
}

// ListSubscriptionAddOnPrices returns the add-ons offered with every package
func (r *InMemoryCatalogRepository) ListSubscriptionAddOnPrices(ctx context.Context, packageID string) ([]models.AddOnPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.AddOnPrice(nil), r.seed.SubscriptionAddOns...), nil
}
