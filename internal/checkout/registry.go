package checkout

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fajar1211/remix-of-digitaldev/internal/domainsearch"
	"github.com/fajar1211/remix-of-digitaldev/internal/promo"
)

var ErrSessionNotFound = errors.New("checkout session not found")

// Registry keeps live checkout sessions in memory
type Registry struct {
	evaluator  *promo.Evaluator
	promoDelay time.Duration
	logger     *slog.Logger
	now        func() time.Time

	newSuggester func() *domainsearch.Suggester

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. Sessions it creates debounce promo
// re-evaluation by promoDelay.
func NewRegistry(evaluator *promo.Evaluator, promoDelay time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		evaluator:  evaluator,
		promoDelay: promoDelay,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// SetSuggesterFactory gives every session created afterwards its own domain suggester
func (r *Registry) SetSuggesterFactory(f func() *domainsearch.Suggester) {
	r.mu.Lock()
	r.newSuggester = f
	r.mu.Unlock()
}

// Create starts a new session with a random id
func (r *Registry) Create() *Session {
	s := NewSession(uuid.New().String(), r.evaluator, r.promoDelay, r.logger)
	s.now = r.now

	r.mu.RLock()
	factory := r.newSuggester
	r.mu.RUnlock()
	if factory != nil {
		s.suggester = factory()
	}
	s.Touch()

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Debug("checkout session created", "session_id", s.ID)
	return s
}

// Get returns the session with id
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and removes a session; it reports whether it existed
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// ExpireIdle removes sessions inactive for longer than maxIdle and returns how many
func (r *Registry) ExpireIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.logger.Info("expired idle checkout sessions", "count", len(expired))
	}
	return len(expired)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops and removes every session
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
