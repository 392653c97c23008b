package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/realitycheck-api/internal/analytics"
	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/events"
	"github.com/phrazzld/realitycheck-api/internal/platform/logger"
	"github.com/phrazzld/realitycheck-api/internal/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Suggestions are only offered once the title is longer than this.
const minSuggestionTitleLength = 4

// Overview holds the headline numbers of the analytics screen.
type Overview struct {
	TotalDecisions     int                      `json:"total_decisions"`
	CompletedDecisions int                      `json:"completed_decisions"`
	CompletionRate     float64                  `json:"completion_rate"`
	AverageAccuracy    float64                  `json:"average_accuracy"`
	Streak             int                      `json:"streak"`
	TopRegretCategory  *analytics.CategoryScore `json:"top_regret_category,omitempty"`
}

// Dashboard bundles every analytics view computed from one snapshot.
type Dashboard struct {
	Overview         Overview                          `json:"overview"`
	RegretBuckets    map[string]float64                `json:"regret_buckets"`
	CategoryAccuracy map[domain.Category]float64       `json:"category_accuracy"`
	RegretByCategory map[domain.Category]float64       `json:"regret_by_category"`
	Trends           []analytics.WeeklyTrend           `json:"trends"`
	Overconfidence   []analytics.OverconfidencePattern `json:"overconfidence"`
	BlindSpots       []analytics.BlindSpot             `json:"blind_spots"`
	Insights         analytics.Insights                `json:"insights"`
	WeeklySummary    *analytics.WeeklySummary          `json:"weekly_summary,omitempty"`
}

// AnalyticsService serves analytics over the stored decisions. Each reload
// whose content differs publishes a new Aggregator; an Aggregator handed out
// by Snapshot never changes afterwards.
type AnalyticsService interface {
	events.EventHandler

	// Snapshot returns an Aggregator reflecting the current decisions.
	// Callers needing several views should take one Snapshot and read them
	// all from it.
	Snapshot(ctx context.Context) (*analytics.Aggregator, error)

	// Overview returns the headline numbers.
	Overview(ctx context.Context) (Overview, error)

	// Dashboard computes every view at once.
	Dashboard(ctx context.Context) (Dashboard, error)

	// Similar returns decisions resembling the decision with the given ID.
	Similar(ctx context.Context, id int64, limit int) ([]domain.Decision, error)

	// Suggest returns a warning or encouragement for a decision being drafted.
	// It reports false when there is nothing to say.
	Suggest(ctx context.Context, title string, category domain.Category) (analytics.PatternSuggestion, bool, error)
}

// RefreshObserver is notified after each snapshot reload.
type RefreshObserver interface {
	RecordRefresh(d time.Duration, changed bool, decisions int)
}

type nopRefreshObserver struct{}

func (nopRefreshObserver) RecordRefresh(time.Duration, bool, int) {}

// AnalyticsOption configures the analytics service.
type AnalyticsOption func(*analyticsServiceImpl)

// WithRefreshObserver reports snapshot reloads to o.
func WithRefreshObserver(o RefreshObserver) AnalyticsOption {
	return func(s *analyticsServiceImpl) {
		if o != nil {
			s.refreshObserver = o
		}
	}
}

// WithAggregatorOptions passes options to the underlying Aggregator.
func WithAggregatorOptions(opts ...analytics.AggregatorOption) AnalyticsOption {
	return func(s *analyticsServiceImpl) {
		s.aggregatorOpts = append(s.aggregatorOpts, opts...)
	}
}

type analyticsServiceImpl struct {
	decisions       store.DecisionStore
	aggregator      atomic.Pointer[analytics.Aggregator]
	aggregatorOpts  []analytics.AggregatorOption
	refreshObserver RefreshObserver
	logger          *slog.Logger

	refreshes singleflight.Group
	// version counts change events; loaded is the version the aggregator
	// was last refreshed at.
	version atomic.Int64
	loaded  atomic.Int64
}

// NewAnalyticsService creates an AnalyticsService reading from decisions.
// The first call that needs data loads the snapshot.
func NewAnalyticsService(
	decisions store.DecisionStore,
	logger *slog.Logger,
	opts ...AnalyticsOption,
) (AnalyticsService, error) {
	if decisions == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "decisions cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &analyticsServiceImpl{
		decisions:       decisions,
		refreshObserver: nopRefreshObserver{},
		logger:          logger.With("component", "analytics_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aggregator.Store(analytics.New(nil, s.aggregatorOpts...))
	s.version.Store(1)
	return s, nil
}

// HandleEvent marks the snapshot stale.
func (s *analyticsServiceImpl) HandleEvent(_ context.Context, event *events.DecisionEvent) error {
	s.version.Add(1)
	s.logger.Debug("analytics snapshot marked stale", "event_type", event.Type, "entity_id", event.EntityID)
	return nil
}

func (s *analyticsServiceImpl) Snapshot(ctx context.Context) (*analytics.Aggregator, error) {
	if s.loaded.Load() == s.version.Load() {
		return s.aggregator.Load(), nil
	}

	_, err, shared := s.refreshes.Do("refresh", func() (any, error) {
		return nil, s.refresh(ctx)
	})
	if err != nil {
		return nil, NewServiceError("refresh_analytics", "failed to load decisions", err)
	}
	if shared {
		logger.FromContextOrDefault(ctx, s.logger).Debug("joined in-flight analytics refresh")
	}
	return s.aggregator.Load(), nil
}

func (s *analyticsServiceImpl) refresh(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Events arriving during the load bump version past v and trigger
	// another refresh on the next call.
	v := s.version.Load()
	start := time.Now()

	decisions, err := s.decisions.List(ctx, store.DecisionFilter{})
	if err != nil {
		log.Error("failed to load decisions for analytics", "error", err)
		return err
	}

	changed := analytics.Fingerprint(decisions) != s.aggregator.Load().Fingerprint()
	if changed {
		s.aggregator.Store(analytics.New(decisions, s.aggregatorOpts...))
	}
	elapsed := time.Since(start)
	s.refreshObserver.RecordRefresh(elapsed, changed, len(decisions))
	s.loaded.Store(v)

	log.Debug("analytics snapshot refreshed",
		"decisions", len(decisions),
		"changed", changed,
		"duration", elapsed)
	return nil
}

func (s *analyticsServiceImpl) Overview(ctx context.Context) (Overview, error) {
	agg, err := s.Snapshot(ctx)
	if err != nil {
		return Overview{}, err
	}
	return OverviewOf(agg), nil
}

// OverviewOf reads the headline numbers from agg.
func OverviewOf(agg *analytics.Aggregator) Overview {
	o := Overview{
		TotalDecisions:     agg.TotalCount(),
		CompletedDecisions: agg.CompletedCount(),
		CompletionRate:     agg.CompletionRate(),
		AverageAccuracy:    agg.AverageAccuracy(),
		Streak:             agg.Streak(),
	}
	if top, ok := agg.TopRegretCategory(); ok {
		o.TopRegretCategory = &top
	}
	return o
}

func (s *analyticsServiceImpl) Dashboard(ctx context.Context) (Dashboard, error) {
	agg, err := s.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	// Each closure writes a distinct field.
	run(func() { d.Overview = OverviewOf(agg) })
	run(func() { d.RegretBuckets = agg.RegretBuckets() })
	run(func() { d.CategoryAccuracy = agg.CategoryAccuracy() })
	run(func() { d.RegretByCategory = agg.RegretScoreByCategory() })
	run(func() { d.Trends = agg.TimeTrends() })
	run(func() { d.Overconfidence = agg.OverconfidencePatterns() })
	run(func() { d.BlindSpots = agg.BlindSpots() })
	run(func() { d.Insights = agg.Insights() })
	run(func() {
		if w, ok := agg.WeeklySummary(); ok {
			d.WeeklySummary = &w
		}
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, NewServiceError("dashboard", "dashboard computation aborted", err)
	}
	return d, nil
}

func (s *analyticsServiceImpl) Similar(ctx context.Context, id int64, limit int) ([]domain.Decision, error) {
	target, err := s.decisions.Get(ctx, id)
	if err != nil {
		return nil, NewServiceError("similar_decisions", "failed to get decision", err)
	}

	agg, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return agg.FindSimilar(target, limit), nil
}

func (s *analyticsServiceImpl) Suggest(
	ctx context.Context,
	title string,
	category domain.Category,
) (analytics.PatternSuggestion, bool, error) {
	if category != "" && !category.IsValid() {
		return analytics.PatternSuggestion{}, false,
			domain.NewValidationError("category", "is not a known category", domain.ErrInvalidCategory)
	}
	if category == "" || utf8.RuneCountInString(strings.TrimSpace(title)) < minSuggestionTitleLength {
		return analytics.PatternSuggestion{}, false, nil
	}

	agg, err := s.Snapshot(ctx)
	if err != nil {
		return analytics.PatternSuggestion{}, false, err
	}
	if agg.TotalCount() == 0 {
		return analytics.PatternSuggestion{}, false, nil
	}

	suggestion, ok := agg.SuggestPattern(title, category)
	return suggestion, ok, nil
}
