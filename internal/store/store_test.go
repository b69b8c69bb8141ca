package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/migrate"
	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	const q = `TRUNCATE integration_secrets, audit_logs, order_leads, order_promo_codes,
subscription_add_ons, package_add_ons, subscription_plans, package_durations, packages RESTART IDENTITY CASCADE`
	if _, err := pool.Exec(ctx, q); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func TestSecretRepository_GetAndPut(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	repo := NewSecretRepository(pool, nil)

	got, err := repo.GetSecret(ctx, "xendit", "api_key")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil secret, got %+v", got)
	}

	if err := repo.PutSecret(ctx, models.IntegrationSecret{Provider: "xendit", Name: "api_key", Ciphertext: "old", IV: "plain"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.PutSecret(ctx, models.IntegrationSecret{Provider: "xendit", Name: "api_key", Ciphertext: "new", IV: "plain"}); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, err = repo.GetSecret(ctx, "xendit", "api_key")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Ciphertext != "new" || got.IV != "plain" {
		t.Fatalf("unexpected secret %+v", got)
	}
}

func TestLeadRepository_SaveListMarkRead(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	repo := NewLeadRepository(pool, nil)
	older := models.OrderLead{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().Add(-time.Hour).UTC(),
		FlowType:  "order",
		Domain:    "old.com",
		Status:    models.LeadStatusNew,
	}
	newer := models.OrderLead{
		ID:                 uuid.NewString(),
		CreatedAt:          time.Now().UTC(),
		FlowType:           "order",
		Domain:             "acme.com",
		SubscriptionYears:  2,
		AddOns:             map[string]int{"extra_page": 3},
		SubscriptionAddOns: map[string]bool{"seo": true},
		FirstName:          "Budi",
		LastName:           "Santoso",
		Email:              "budi@acme.com",
		AmountIDR:          1080000,
		PromoCode:          "HEMAT",
		Status:             models.LeadStatusNew,
	}
	for _, l := range []models.OrderLead{older, newer} {
		if err := repo.SaveLead(ctx, &l); err != nil {
			t.Fatalf("save lead: %v", err)
		}
	}

	leads, err := repo.ListLeads(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(leads) != 2 || leads[0].ID != newer.ID {
		t.Fatalf("unexpected order %+v", leads)
	}
	if leads[0].AddOns["extra_page"] != 3 || !leads[0].SubscriptionAddOns["seo"] {
		t.Fatalf("add-ons not round-tripped: %+v", leads[0])
	}
	if len(leads[1].AddOns) != 0 {
		t.Fatalf("expected empty add-ons, got %+v", leads[1].AddOns)
	}

	ok, err := repo.MarkLeadRead(ctx, newer.ID)
	if err != nil || !ok {
		t.Fatalf("mark read: ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkLeadRead(ctx, uuid.NewString())
	if err != nil || ok {
		t.Fatalf("mark unknown: ok=%v err=%v", ok, err)
	}
}

func TestAuditRepository_Insert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	repo := NewAuditRepository(pool)
	rec := &models.AuditRecord{
		ID:         uuid.NewString(),
		Actor:      "anonymous",
		Action:     "order_submitted",
		EntityType: "order",
		Metadata:   map[string]any{"domain": "acme.com"},
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.InsertAudit(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	list, err := repo.ListAudit(ctx, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Metadata["domain"] != "acme.com" {
		t.Fatalf("unexpected audit list %+v", list)
	}
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	seed := []string{
		`INSERT INTO packages (id, name, price, is_default) VALUES ('growth', 'Full Digital Marketing', 100000, TRUE)`,
		`INSERT INTO package_durations (package_id, duration_months, discount_percent, is_active) VALUES ('growth', 12, 10, TRUE), ('growth', 24, 20, FALSE)`,
		`INSERT INTO subscription_plans (package_id, years, price_usd) VALUES ('growth', 1, 100), ('growth', 2, 180.50)`,
		`INSERT INTO package_add_ons (package_id, add_on_key, label, unit_price) VALUES ('growth', 'extra_page', 'Extra page', 25)`,
		`INSERT INTO subscription_add_ons (package_id, add_on_key, label, unit_price) VALUES (NULL, 'seo', 'SEO', 15), ('growth', 'ads', 'Ads', 30)`,
	}
	for _, q := range seed {
		if _, err := pool.Exec(ctx, q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	repo := NewCatalogRepository(pool)

	pkg, err := repo.GetPackage(ctx, "growth")
	if err != nil || pkg == nil {
		t.Fatalf("get package: %v %+v", err, pkg)
	}
	if !pkg.Price.Equal(decimal.NewFromInt(100000)) || !pkg.IsDefault {
		t.Fatalf("unexpected package %+v", pkg)
	}

	missing, err := repo.GetPackage(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil package, got %+v err=%v", missing, err)
	}

	def, err := repo.DefaultPackageID(ctx)
	if err != nil || def != "growth" {
		t.Fatalf("default package: %q err=%v", def, err)
	}

	rows, err := repo.ListDurationRows(ctx, "growth")
	if err != nil || len(rows) != 2 {
		t.Fatalf("durations: %+v err=%v", rows, err)
	}

	plans, err := repo.ListSubscriptionPlans(ctx, "growth")
	if err != nil || len(plans) != 2 || !plans[1].PriceUSD.Equal(decimal.RequireFromString("180.5")) {
		t.Fatalf("plans: %+v err=%v", plans, err)
	}

	addOns, err := repo.ListAddOnPrices(ctx, "growth")
	if err != nil || len(addOns) != 1 || addOns[0].Key != "extra_page" {
		t.Fatalf("add-ons: %+v err=%v", addOns, err)
	}

	subs, err := repo.ListSubscriptionAddOnPrices(ctx, "growth")
	if err != nil || len(subs) != 2 {
		t.Fatalf("subscription add-ons: %+v err=%v", subs, err)
	}
}

func TestPromoRepository_FindPromoByCode(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	const q = `
INSERT INTO order_promo_codes (id, code, promo_name, discount_type, discount_value, max_discount_usd, min_order_usd, max_uses)
VALUES ('p1', 'HEMAT', 'Hemat', 'percent', 10, 25, 50, 100)
`
	if _, err := pool.Exec(ctx, q); err != nil {
		t.Fatalf("seed promo: %v", err)
	}

	repo := NewPromoRepository(pool)
	p, err := repo.FindPromoByCode(ctx, "hemat")
	if err != nil || p == nil {
		t.Fatalf("find: %+v err=%v", p, err)
	}
	if p.MaxDiscountUSD == nil || !p.MaxDiscountUSD.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected max discount %+v", p.MaxDiscountUSD)
	}
	if !p.MinOrderUSD.Equal(decimal.NewFromInt(50)) || p.StartsAt != nil || p.MaxUses != 100 {
		t.Fatalf("unexpected promo %+v", p)
	}

	none, err := repo.FindPromoByCode(ctx, "NOPE")
	if err != nil || none != nil {
		t.Fatalf("expected nil promo, got %+v err=%v", none, err)
	}
}
