package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fajar1211/remix-of-digitaldev/internal/debounce"
	"github.com/fajar1211/remix-of-digitaldev/internal/domainsearch"
	"github.com/fajar1211/remix-of-digitaldev/internal/models"
	"github.com/fajar1211/remix-of-digitaldev/internal/pricing"
	"github.com/fajar1211/remix-of-digitaldev/internal/promo"
)

// Session owns the order state of one customer going through checkout
type Session struct {
	ID string

	evaluator *promo.Evaluator
	debouncer *debounce.Debouncer
	suggester *domainsearch.Suggester
	logger    *slog.Logger
	now       func() time.Time

	mu               sync.Mutex
	state            OrderState
	book             pricing.PriceBook
	defaultPackageID string
	lastActive       time.Time
}

// NewSession creates a session with an empty selection
func NewSession(id string, evaluator *promo.Evaluator, promoDelay time.Duration, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		ID:        id,
		evaluator: evaluator,
		debouncer: debounce.New(promoDelay),
		logger:    logger.With("session_id", id),
		now:       time.Now,
	}
	s.state = OrderState{
		PromoStatus: PromoIdle,
		Quote:       pricing.Compute(s.state.Selection, s.book),
	}
	s.lastActive = s.now()
	return s
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() OrderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// PriceBook returns the price book the quote is computed from
func (s *Session) PriceBook() pricing.PriceBook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book
}

// LastActive is the time of the last transition or read through the API
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch marks the session as active
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

// Apply runs mutations as one transition and returns the new state.
// A changed promo code or base total drops the applied promo and schedules
// a debounced re-evaluation.
func (s *Session) Apply(mutations ...Mutation) OrderState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.state.Selection.Clone()
	for _, m := range mutations {
		m(&sel)
	}
	next := s.transition(sel, true)
	return next.clone()
}

// SetPriceBook replaces the catalog prices and the default package id
func (s *Session) SetPriceBook(book pricing.PriceBook, defaultPackageID string) OrderState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.book = book
	s.defaultPackageID = defaultPackageID
	next := s.transition(s.state.Selection.Clone(), true)
	return next.clone()
}

// ApplyWithPriceBook swaps the catalog prices and runs mutations as one transition.
// Package changes go through it.
func (s *Session) ApplyWithPriceBook(book pricing.PriceBook, defaultPackageID string, mutations ...Mutation) OrderState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.book = book
	s.defaultPackageID = defaultPackageID

	sel := s.state.Selection.Clone()
	for _, m := range mutations {
		m(&sel)
	}
	next := s.transition(sel, true)
	return next.clone()
}

// ApplyPromo sets code and evaluates it right away, bypassing the debounce.
// The outcome is returned for messaging even when a newer transition made it stale.
func (s *Session) ApplyPromo(ctx context.Context, code string) (promo.Outcome, OrderState) {
	s.mu.Lock()
	sel := s.state.Selection.Clone()
	SetPromoCode(code)(&sel)
	pending := s.transition(sel, false)
	s.debouncer.Cancel()
	inputsVersion := pending.PromoInputsVersion
	base := pending.Quote.BaseTotal
	s.mu.Unlock()

	out := s.evaluator.Evaluate(ctx, sel.PromoCode, base)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.PromoInputsVersion != inputsVersion {
		s.logger.Debug("discarding stale promo result", "code", sel.PromoCode)
		return out, s.state.clone()
	}
	s.resolve(out)
	return out, s.state.clone()
}

// Suggester returns the domain suggester of the session, or nil when suggestions are disabled
func (s *Session) Suggester() *domainsearch.Suggester {
	return s.suggester
}

// Close cancels any pending promo evaluation and domain suggestion run
func (s *Session) Close() {
	s.debouncer.Stop()
	if s.suggester != nil {
		s.suggester.Close()
	}
}

// transition commits sel as the next state. Callers hold s.mu.
func (s *Session) transition(sel models.OrderSelection, schedule bool) OrderState {
	prev := s.state

	quote := pricing.Compute(sel, s.book)
	codeChanged := sel.PromoCode != prev.Selection.PromoCode
	baseChanged := !quote.BaseTotal.Equal(prev.Quote.BaseTotal)

	next := OrderState{
		Version:            prev.Version + 1,
		PromoStatus:        prev.PromoStatus,
		PromoMessage:       prev.PromoMessage,
		PromoInputsVersion: prev.PromoInputsVersion,
	}

	if codeChanged || baseChanged {
		sel.AppliedPromo = nil
		quote = pricing.Compute(sel, s.book)
		next.PromoInputsVersion = next.Version
		next.PromoMessage = ""

		switch {
		case sel.PromoCode == "":
			next.PromoStatus = PromoIdle
			s.debouncer.Cancel()
		case !quote.BaseTotal.IsPositive():
			next.PromoStatus = PromoSkipped
			s.debouncer.Cancel()
		default:
			next.PromoStatus = PromoPending
		}
	}

	next.Selection = sel
	next.Quote = quote
	next.EffectivePackageID = pricing.EffectivePackageID(sel.PackageID, s.defaultPackageID)
	next.CanComplete = pricing.CanComplete(sel, next.EffectivePackageID)

	s.state = next
	s.lastActive = s.now()

	if schedule && next.PromoStatus == PromoPending && next.PromoInputsVersion == next.Version {
		s.schedulePromo(next.PromoInputsVersion, sel.PromoCode, quote.BaseTotal)
	}
	return next
}

func (s *Session) schedulePromo(inputsVersion uint64, code string, base pricing.Amount) {
	s.debouncer.Schedule(func(ctx context.Context, gen uint64) {
		out := s.evaluator.Evaluate(ctx, code, base)

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.debouncer.Current(gen) || s.state.PromoInputsVersion != inputsVersion {
			s.logger.Debug("discarding stale promo result", "code", code, "generation", gen)
			return
		}
		s.resolve(out)
	})
}

// resolve applies a promo outcome as a new transition. Callers hold s.mu.
func (s *Session) resolve(out promo.Outcome) {
	next := s.state.clone()
	next.Version++
	next.Selection.AppliedPromo = out.Applied
	next.Quote = pricing.Compute(next.Selection, s.book)
	next.PromoStatus = statusFor(out.Kind)
	next.PromoMessage = out.Message
	s.state = next
	s.lastActive = s.now()

	s.logger.Debug("promo resolved",
		"code", next.Selection.PromoCode,
		"outcome", string(out.Kind),
		"version", next.Version,
	)
}
