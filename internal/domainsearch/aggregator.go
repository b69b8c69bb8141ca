package domainsearch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

const defaultCheckError = "domain check failed"

var errPanicked = errors.New(defaultCheckError)

// Checker looks up the availability of a single domain
type Checker interface {
	Check(ctx context.Context, domain string) (models.AvailabilityResult, error)
}

// Aggregator fans out availability checks across candidates and merges them
type Aggregator struct {
	checker Checker
	logger  *slog.Logger
}

// checkResult holds the outcome of one candidate lookup
type checkResult struct {
	index  int
	domain string
	status string
	err    error
}

// NewAggregator creates a new aggregator
func NewAggregator(checker Checker, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		checker: checker,
		logger:  logger,
	}
}

// Aggregate checks every candidate of query concurrently and waits for all of them.
// Failed candidates are dropped; the error is set only when every candidate failed,
// and is the failure of the earliest candidate in submission order.
func (a *Aggregator) Aggregate(ctx context.Context, query string) models.SuggestionState {
	candidates := BuildCandidates(query)
	if len(candidates) == 0 {
		return models.IdleSuggestions()
	}

	resultChan := make(chan checkResult, len(candidates))
	var wg sync.WaitGroup

	for i, domain := range candidates {
		wg.Add(1)
		go func(index int, domain string) {
			defer wg.Done()
			resultChan <- a.checkOne(ctx, index, domain)
		}(i, domain)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining submission order
	results := make([]checkResult, len(candidates))
	for result := range resultChan {
		results[result.index] = result
	}

	items := make([]models.DomainSuggestionItem, 0, len(results))
	var firstErr error
	for _, r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		items = append(items, models.DomainSuggestionItem{
			Domain: r.domain,
			Status: MapStatus(r.status),
		})
	}

	state := models.SuggestionState{Items: items}
	if len(items) == 0 && firstErr != nil {
		msg := firstErr.Error()
		if msg == "" {
			msg = defaultCheckError
		}
		state.Error = &msg
		a.logger.Warn("all domain checks failed",
			"query", query,
			"candidates", len(candidates),
			"error", msg,
		)
	}
	return state
}

func (a *Aggregator) checkOne(ctx context.Context, index int, domain string) (result checkResult) {
	result = checkResult{index: index, domain: domain}

	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("domain check panicked", "domain", domain, "panic", rec)
			result.err = errPanicked
		}
	}()

	res, err := a.checker.Check(ctx, domain)
	if err != nil {
		a.logger.Debug("domain check failed", "domain", domain, "error", err)
		result.err = err
		return result
	}
	result.status = res.Status
	return result
}

// MapStatus narrows a provider status to available, unavailable or unknown
func MapStatus(raw string) models.AvailabilityStatus {
	switch strings.ToLower(raw) {
	case string(models.StatusAvailable):
		return models.StatusAvailable
	case string(models.StatusUnavailable):
		return models.StatusUnavailable
	default:
		return models.StatusUnknown
	}
}
