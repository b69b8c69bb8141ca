package domainsearch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fajar1211/remix-of-digitaldev/internal/debounce"
	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// Suggester keeps the suggestion list for a live-typed query.
// Runs are debounced and a run only publishes while its generation is current.
type Suggester struct {
	aggregator *Aggregator
	debouncer  *debounce.Debouncer
	logger     *slog.Logger

	mu       sync.Mutex
	state    models.SuggestionState
	onChange func(models.SuggestionState)
}

// NewSuggester creates a suggester that waits delay after the last Update
func NewSuggester(aggregator *Aggregator, delay time.Duration, logger *slog.Logger) *Suggester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Suggester{
		aggregator: aggregator,
		debouncer:  debounce.New(delay),
		logger:     logger,
		state:      models.IdleSuggestions(),
	}
}

// OnChange registers a callback invoked with every published state
func (s *Suggester) OnChange(fn func(models.SuggestionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Update feeds a new raw query
func (s *Suggester) Update(query string) {
	keyword := NormalizeKeyword(query)
	if keyword == "" {
		s.debouncer.Cancel()
		s.set(models.IdleSuggestions())
		return
	}

	s.debouncer.Schedule(func(ctx context.Context, gen uint64) {
		s.publish(gen, func(prev models.SuggestionState) models.SuggestionState {
			return models.SuggestionState{Loading: true, Items: prev.Items}
		})

		next := s.aggregator.Aggregate(ctx, keyword)

		if !s.publish(gen, func(models.SuggestionState) models.SuggestionState { return next }) {
			s.logger.Debug("discarding stale domain suggestions", "keyword", keyword, "generation", gen)
		}
	})
}

// State returns the latest published state
func (s *Suggester) State() models.SuggestionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close cancels pending runs; in-flight runs will not publish
func (s *Suggester) Close() {
	s.debouncer.Stop()
}

func (s *Suggester) publish(gen uint64, next func(models.SuggestionState) models.SuggestionState) bool {
	s.mu.Lock()
	if !s.debouncer.Current(gen) {
		s.mu.Unlock()
		return false
	}
	s.state = next(s.state)
	state, cb := s.state, s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(state)
	}
	return true
}

func (s *Suggester) set(state models.SuggestionState) {
	s.mu.Lock()
	s.state = state
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(state)
	}
}
