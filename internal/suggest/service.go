// Package suggest resolves partial place names into suggestions with a
// local cache, a rolling rate limit and a soft timeout over the geocoder.
package suggest

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/metrics"
	"github.com/alexivanou/aqimap-api/internal/model"
)

var (
	// ErrRateLimited is returned when the search window is full
	ErrRateLimited = errors.New("too many searches")
	// ErrTimeout marks a lookup that did not answer within the soft timeout
	ErrTimeout = errors.New("search timed out")
)

// Result sources
const (
	SourceShort    = "short"
	SourceCache    = "cache"
	SourceNetwork  = "network"
	SourceFallback = "fallback"
)

// Searcher resolves a query against the upstream geocoder
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.PlaceSuggestion, error)
}

// Result is the outcome of a search. Places is never nil.
type Result struct {
	Places []model.PlaceSuggestion
	Source string
	// Err is the reason a fallback list was served
	Err error
}

// Degraded reports whether the fallback list was served
func (r *Result) Degraded() bool { return r.Source == SourceFallback }

// Option customises a Service
type Option func(*Service)

// WithClock replaces the wall clock used by the rate window
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimer replaces the timer used for the soft timeout
func WithTimer(after func(time.Duration) <-chan time.Time) Option {
	return func(s *Service) { s.after = after }
}

// WithFallback replaces the built-in fallback list
func WithFallback(places []model.PlaceSuggestion) Option {
	return func(s *Service) { s.fallback = places }
}

// Service is the place search pipeline. One instance serves all requests.
type Service struct {
	searcher Searcher
	cfg      config.SuggestConfig
	logger   *zap.Logger

	cache    *cache.Cache
	window   *Window
	group    singleflight.Group
	fallback []model.PlaceSuggestion

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewService creates a new search service
func NewService(searcher Searcher, cfg config.SuggestConfig, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		searcher: searcher,
		cfg:      cfg,
		logger:   logger,
		// entries never expire and the janitor is disabled
		cache:    cache.New(cache.NoExpiration, 0),
		window:   NewWindow(cfg.MaxRequests, cfg.Window),
		fallback: DefaultFallback(),
		now:      time.Now,
		after:    time.After,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search resolves a partial place name. Only ErrRateLimited is returned as
// an error; upstream failures and timeouts yield the fallback list.
func (s *Service) Search(ctx context.Context, query string) (*Result, error) {
	start := time.Now()
	res, err := s.search(ctx, query)
	metrics.SuggestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.SuggestRequestsTotal.WithLabelValues("rate_limited").Inc()
		return nil, err
	}
	metrics.SuggestRequestsTotal.WithLabelValues(res.Source).Inc()
	return res, nil
}

func (s *Service) search(ctx context.Context, query string) (*Result, error) {
	if utf8.RuneCountInString(query) <= s.cfg.ShortQueryMax {
		return &Result{Places: []model.PlaceSuggestion{}, Source: SourceShort}, nil
	}

	now := s.now()
	if s.window.Limited(now) {
		s.logger.Warn("Search rate limited", zap.String("query", query))
		return nil, ErrRateLimited
	}

	if places, ok := s.cached(query); ok {
		return &Result{Places: places, Source: SourceCache}, nil
	}

	if !s.window.Reserve(now) {
		return nil, ErrRateLimited
	}

	// The lookup outlives both the caller and the timer so a late answer
	// still lands in the cache.
	lookupCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(query, func() (interface{}, error) {
		places, err := s.searcher.Search(lookupCtx, query)
		if err != nil {
			return nil, err
		}
		if places == nil {
			places = []model.PlaceSuggestion{}
		}
		s.cache.Set(query, places, cache.NoExpiration)
		return places, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			s.logger.Warn("Search failed, serving fallback",
				zap.String("query", query),
				zap.Error(r.Err),
			)
			return s.fallbackResult(r.Err), nil
		}
		return &Result{Places: clonePlaces(r.Val.([]model.PlaceSuggestion)), Source: SourceNetwork}, nil
	case <-s.after(s.cfg.Timeout):
		s.logger.Warn("Search timed out, serving fallback",
			zap.String("query", query),
			zap.Duration("timeout", s.cfg.Timeout),
		)
		return s.fallbackResult(ErrTimeout), nil
	}
}

func (s *Service) cached(query string) ([]model.PlaceSuggestion, bool) {
	v, ok := s.cache.Get(query)
	if !ok {
		return nil, false
	}
	return clonePlaces(v.([]model.PlaceSuggestion)), true
}

func (s *Service) fallbackResult(reason error) *Result {
	return &Result{Places: clonePlaces(s.fallback), Source: SourceFallback, Err: reason}
}

// clonePlaces copies a shared list so callers cannot edit the cache
func clonePlaces(places []model.PlaceSuggestion) []model.PlaceSuggestion {
	out := make([]model.PlaceSuggestion, len(places))
	copy(out, places)
	return out
}

// Display filters places to the target countries and builds labels
func (s *Service) Display(places []model.PlaceSuggestion) []model.SuggestionItem {
	return Display(places, s.cfg.TargetCountries)
}

// RecordSelection returns the literal name that becomes the new input value
func (s *Service) RecordSelection(name string) string {
	s.logger.Info("Suggestion selected", zap.String("name", name))
	return name
}

// RetryAfter returns how long until a new network search is allowed
func (s *Service) RetryAfter() time.Duration {
	return s.window.RetryAfter(s.now())
}

// CachedQueries returns the number of cached queries
func (s *Service) CachedQueries() int {
	return s.cache.ItemCount()
}

// WindowRequests returns the number of network searches in the current window
func (s *Service) WindowRequests() int {
	return s.window.Count(s.now())
}
