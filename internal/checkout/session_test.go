package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
	"github.com/fajar1211/remix-of-digitaldev/internal/pricing"
	"github.com/fajar1211/remix-of-digitaldev/internal/promo"
)

const promoDelay = 10 * time.Millisecond

// stubValidator accepts HEMAT for a flat 10 off and records the base totals it saw
type stubValidator struct {
	mu    sync.Mutex
	bases []decimal.Decimal
	calls int32
	gate  chan struct{}
}

func (v *stubValidator) Validate(ctx context.Context, code string, baseTotal decimal.Decimal) (promo.Validation, error) {
	atomic.AddInt32(&v.calls, 1)
	if v.gate != nil {
		<-v.gate
	}
	v.mu.Lock()
	v.bases = append(v.bases, baseTotal)
	v.mu.Unlock()

	if code != "HEMAT" {
		return promo.Validation{}, nil
	}
	return promo.Validation{
		OK:       true,
		Promo:    models.Promo{ID: "promo-1", Code: "HEMAT", PromoName: "Hemat"},
		Discount: decimal.NewFromInt(10),
	}, nil
}

func (v *stubValidator) callCount() int {
	return int(atomic.LoadInt32(&v.calls))
}

func testBook() pricing.PriceBook {
	return pricing.PriceBook{
		PackageID:   "pkg-basic",
		PackageName: "Starter Website",
		Plans: []models.SubscriptionPlan{
			{Years: 1, PriceUSD: decimal.NewFromInt(100)},
			{Years: 2, PriceUSD: decimal.NewFromInt(180)},
		},
	}
}

func newTestSession(t *testing.T, v promo.Validator) *Session {
	t.Helper()
	s := NewSession("s-1", promo.NewEvaluator(v, nil), promoDelay, nil)
	t.Cleanup(s.Close)
	s.SetPriceBook(testBook(), "pkg-basic")
	return s
}

func waitForPromo(t *testing.T, s *Session, status PromoStatus) OrderState {
	t.Helper()
	var st OrderState
	require.Eventually(t, func() bool {
		st = s.Snapshot()
		return st.PromoStatus == status
	}, time.Second, 2*time.Millisecond)
	return st
}

func TestSession_TransitionsIncrementVersion(t *testing.T) {
	s := newTestSession(t, &stubValidator{})
	v0 := s.Snapshot().Version

	st := s.Apply(SetDomain(" acme.com "))
	assert.Equal(t, v0+1, st.Version)
	assert.Equal(t, "acme.com", st.Selection.Domain)

	st = s.Apply(SelectTemplate("tpl-1", "Clean"), SetSubscriptionYears(1))
	assert.Equal(t, v0+2, st.Version)
	assert.Equal(t, "tpl-1", st.Selection.TemplateID)
	assert.True(t, st.Quote.FinalTotal.Equal(pricing.KnownInt(100)))
}

func TestSession_ApplyWithPriceBookIsOneTransition(t *testing.T) {
	s := newTestSession(t, &stubValidator{})
	s.Apply(SetSubscriptionYears(1))
	v0 := s.Snapshot().Version

	business := pricing.PriceBook{
		PackageID:   "pkg-business",
		PackageName: "Business Website",
		Plans:       []models.SubscriptionPlan{{Years: 1, PriceUSD: decimal.NewFromInt(300)}},
	}
	st := s.ApplyWithPriceBook(business, "pkg-basic", SelectPackage("pkg-business", "Business Website"))

	assert.Equal(t, v0+1, st.Version)
	assert.Equal(t, "pkg-business", st.Selection.PackageID)
	assert.Equal(t, "pkg-business", st.EffectivePackageID)
	assert.True(t, st.Quote.FinalTotal.Equal(pricing.KnownInt(300)))
	assert.Equal(t, "pkg-business", s.PriceBook().PackageID)
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	s := newTestSession(t, &stubValidator{})
	s.Apply(SetAddOn("extra_page", 2))

	snap := s.Snapshot()
	snap.Selection.AddOns["extra_page"] = 99

	assert.Equal(t, 2, s.Snapshot().Selection.AddOns["extra_page"])
}

func TestSession_EffectivePackageAndReadiness(t *testing.T) {
	s := newTestSession(t, &stubValidator{})

	st := s.Apply(
		SetDomain("acme.com"),
		SelectTemplate("tpl-1", "Clean"),
		SetSubscriptionYears(1),
		SetDetails(models.CustomerDetails{Email: "a@acme.com", AcceptedTerms: true}),
	)
	assert.Equal(t, "pkg-basic", st.EffectivePackageID)
	assert.True(t, st.CanComplete)

	st = s.Apply(SetDetails(models.CustomerDetails{Email: "a@acme.com"}))
	assert.False(t, st.CanComplete)
}

func TestSession_DebouncedPromoApplies(t *testing.T) {
	v := &stubValidator{}
	s := newTestSession(t, v)

	s.Apply(SetSubscriptionYears(1))
	st := s.Apply(SetPromoCode("HEMAT"))
	assert.Equal(t, PromoPending, st.PromoStatus)
	assert.Nil(t, st.Selection.AppliedPromo)

	st = waitForPromo(t, s, PromoApplied)
	require.NotNil(t, st.Selection.AppliedPromo)
	assert.Equal(t, "promo-1", st.Selection.AppliedPromo.ID)
	assert.True(t, st.Quote.FinalTotal.Equal(pricing.KnownInt(90)))
	assert.Equal(t, 1, v.callCount())
}

func TestSession_ChangingDurationClearsAppliedPromo(t *testing.T) {
	v := &stubValidator{}
	s := newTestSession(t, v)

	s.Apply(SetSubscriptionYears(1), SetPromoCode("HEMAT"))
	waitForPromo(t, s, PromoApplied)

	st := s.Apply(SetSubscriptionYears(2))
	assert.Nil(t, st.Selection.AppliedPromo, "promo must not survive a base total change")
	assert.Equal(t, PromoPending, st.PromoStatus)
	assert.True(t, st.Quote.FinalTotal.Equal(pricing.KnownInt(180)))

	st = waitForPromo(t, s, PromoApplied)
	assert.True(t, st.Quote.FinalTotal.Equal(pricing.KnownInt(170)))

	v.mu.Lock()
	defer v.mu.Unlock()
	require.Len(t, v.bases, 2)
	assert.True(t, v.bases[1].Equal(decimal.NewFromInt(180)), "re-evaluated against the new total")
}

func TestSession_ClearingCodeClearsPromo(t *testing.T) {
	s := newTestSession(t, &stubValidator{})

	s.Apply(SetSubscriptionYears(1), SetPromoCode("HEMAT"))
	waitForPromo(t, s, PromoApplied)

	st := s.Apply(SetPromoCode("  "))
	assert.Nil(t, st.Selection.AppliedPromo)
	assert.Equal(t, PromoIdle, st.PromoStatus)
	assert.True(t, st.Quote.FinalTotal.Equal(pricing.KnownInt(100)))
}

func TestSession_UnresolvedTotalSkipsPromo(t *testing.T) {
	v := &stubValidator{}
	s := newTestSession(t, v)

	st := s.Apply(SetSubscriptionYears(3), SetPromoCode("HEMAT"))
	assert.Equal(t, PromoSkipped, st.PromoStatus)
	assert.False(t, st.Quote.BaseTotal.IsKnown())

	time.Sleep(5 * promoDelay)
	assert.Equal(t, 0, v.callCount())
}

func TestSession_UnrelatedChangeKeepsAppliedPromo(t *testing.T) {
	s := newTestSession(t, &stubValidator{})

	s.Apply(SetSubscriptionYears(1), SetPromoCode("HEMAT"))
	waitForPromo(t, s, PromoApplied)

	st := s.Apply(SetDomain("acme.id"))
	require.NotNil(t, st.Selection.AppliedPromo)
	assert.Equal(t, PromoApplied, st.PromoStatus)
}

func TestSession_StalePromoResultIsDiscarded(t *testing.T) {
	v := &stubValidator{gate: make(chan struct{})}
	s := newTestSession(t, v)

	s.Apply(SetSubscriptionYears(1), SetPromoCode("HEMAT"))
	require.Eventually(t, func() bool { return v.callCount() == 1 }, time.Second, time.Millisecond)

	// base total changes while the first evaluation is in flight
	s.Apply(SetSubscriptionYears(2))
	close(v.gate)

	st := waitForPromo(t, s, PromoApplied)
	assert.True(t, st.Quote.FinalTotal.Equal(pricing.KnownInt(170)))

	time.Sleep(5 * promoDelay)
	st = s.Snapshot()
	assert.True(t, st.Quote.FinalTotal.Equal(pricing.KnownInt(170)))
}

func TestSession_ApplyPromoImmediate(t *testing.T) {
	v := &stubValidator{}
	s := newTestSession(t, v)
	s.Apply(SetSubscriptionYears(1))

	out, st := s.ApplyPromo(context.Background(), " HEMAT ")
	assert.Equal(t, promo.OutcomeApplied, out.Kind)
	assert.Equal(t, PromoApplied, st.PromoStatus)
	assert.Equal(t, "HEMAT", st.Selection.PromoCode)
	assert.True(t, st.Quote.FinalTotal.Equal(pricing.KnownInt(90)))

	out, st = s.ApplyPromo(context.Background(), "NOPE")
	assert.Equal(t, promo.OutcomeInvalid, out.Kind)
	assert.Equal(t, PromoInvalid, st.PromoStatus)
	assert.Nil(t, st.Selection.AppliedPromo)

	out, st = s.ApplyPromo(context.Background(), "")
	assert.Equal(t, promo.OutcomeCleared, out.Kind)
	assert.Equal(t, PromoIdle, st.PromoStatus)

	time.Sleep(5 * promoDelay)
	assert.Equal(t, 2, v.callCount(), "immediate apply must not also run the debounced evaluation")
}

func TestSession_ApplyPromoWithoutTotal(t *testing.T) {
	v := &stubValidator{}
	s := newTestSession(t, v)

	out, st := s.ApplyPromo(context.Background(), "HEMAT")
	assert.Equal(t, promo.OutcomeSkipped, out.Kind)
	assert.Equal(t, PromoSkipped, st.PromoStatus)
	assert.Equal(t, 0, v.callCount())
}

func TestSession_CloseStopsPendingEvaluation(t *testing.T) {
	v := &stubValidator{}
	s := NewSession("s-2", promo.NewEvaluator(v, nil), promoDelay, nil)
	s.SetPriceBook(testBook(), "")

	s.Apply(SetSubscriptionYears(1), SetPromoCode("HEMAT"))
	s.Close()

	time.Sleep(5 * promoDelay)
	assert.Equal(t, 0, v.callCount())
}
