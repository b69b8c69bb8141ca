package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/pricing"
	"github.com/fajar1211/remix-of-digitaldev/internal/repository"
)

var ErrPackageNotFound = errors.New("package not found")

// CatalogService resolves the price book of a package
type CatalogService struct {
	repo repository.CatalogRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repository.CatalogRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// DefaultPackageID returns the package used when the customer has not picked one
func (s *CatalogService) DefaultPackageID(ctx context.Context) (string, error) {
	return s.repo.DefaultPackageID(ctx)
}

// PriceBook loads pricing for packageID, or for the default package when packageID is empty.
// With no package and no default an empty book is returned.
func (s *CatalogService) PriceBook(ctx context.Context, packageID string) (pricing.PriceBook, error) {
	if packageID == "" {
		def, err := s.repo.DefaultPackageID(ctx)
		if err != nil {
			return pricing.PriceBook{}, fmt.Errorf("load default package: %w", err)
		}
		if def == "" {
			return pricing.PriceBook{}, nil
		}
		packageID = def
	}

	pkg, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return pricing.PriceBook{}, fmt.Errorf("load package %s: %w", packageID, err)
	}
	if pkg == nil || !pkg.IsActive {
		return pricing.PriceBook{}, ErrPackageNotFound
	}

	durations, err := s.repo.ListDurationRows(ctx, packageID)
	if err != nil {
		return pricing.PriceBook{}, fmt.Errorf("load durations: %w", err)
	}
	plans, err := s.repo.ListSubscriptionPlans(ctx, packageID)
	if err != nil {
		return pricing.PriceBook{}, fmt.Errorf("load subscription plans: %w", err)
	}
	addOns, err := s.repo.ListAddOnPrices(ctx, packageID)
	if err != nil {
		return pricing.PriceBook{}, fmt.Errorf("load add-ons: %w", err)
	}
	subAddOns, err := s.repo.ListSubscriptionAddOnPrices(ctx, packageID)
	if err != nil {
		return pricing.PriceBook{}, fmt.Errorf("load subscription add-ons: %w", err)
	}

	book := pricing.PriceBook{
		PackageID:               pkg.ID,
		PackageName:             pkg.Name,
		BasePrice:               pkg.Price,
		Durations:               durations,
		Plans:                   plans,
		AddOnPrices:             make(map[string]decimal.Decimal, len(addOns)),
		SubscriptionAddOnPrices: make(map[string]decimal.Decimal, len(subAddOns)),
	}
	for _, a := range addOns {
		book.AddOnPrices[a.Key] = a.UnitPrice
	}
	for _, a := range subAddOns {
		book.SubscriptionAddOnPrices[a.Key] = a.UnitPrice
	}
	return book, nil
}
