package api

import (
	"net/http"

	"github.com/phrazzld/realitycheck-api/internal/analytics"
	"github.com/phrazzld/realitycheck-api/internal/api/shared"
	"github.com/phrazzld/realitycheck-api/internal/service"
)

// AnalyticsHandler serves the analytics endpoints.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	if analyticsService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("analytics service cannot be nil for AnalyticsHandler")
	}
	return &AnalyticsHandler{analytics: analyticsService}
}

// snapshot loads the aggregator and writes the error response on failure.
func (h *AnalyticsHandler) snapshot(w http.ResponseWriter, r *http.Request) (*analytics.Aggregator, bool) {
	agg, err := h.analytics.Snapshot(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load analytics")
		return nil, false
	}
	return agg, true
}

// Summary handles GET /api/analytics/summary.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	resp := SummaryResponse{Overview: service.OverviewOf(agg)}
	if weekly, ok := agg.WeeklySummary(); ok {
		resp.WeeklySummary = &weekly
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Dashboard handles GET /api/analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.analytics.Dashboard(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load analytics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, d)
}

// RegretBuckets handles GET /api/analytics/regret-buckets.
func (h *AnalyticsHandler) RegretBuckets(w http.ResponseWriter, r *http.Request) {
	if agg, ok := h.snapshot(w, r); ok {
		shared.RespondWithJSON(w, r, http.StatusOK, agg.RegretBuckets())
	}
}

// Categories handles GET /api/analytics/categories.
func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if agg, ok := h.snapshot(w, r); ok {
		shared.RespondWithJSON(w, r, http.StatusOK, CategoryAnalyticsResponse{
			Accuracy: agg.CategoryAccuracy(),
			Regret:   agg.RegretScoreByCategory(),
		})
	}
}

// Trends handles GET /api/analytics/trends.
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	if agg, ok := h.snapshot(w, r); ok {
		trends := agg.TimeTrends()
		if trends == nil {
			trends = []analytics.WeeklyTrend{}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, trends)
	}
}

// Streak handles GET /api/analytics/streak.
func (h *AnalyticsHandler) Streak(w http.ResponseWriter, r *http.Request) {
	if agg, ok := h.snapshot(w, r); ok {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]int{"streak": agg.Streak()})
	}
}

// Overconfidence handles GET /api/analytics/overconfidence.
func (h *AnalyticsHandler) Overconfidence(w http.ResponseWriter, r *http.Request) {
	if agg, ok := h.snapshot(w, r); ok {
		patterns := agg.OverconfidencePatterns()
		if patterns == nil {
			patterns = []analytics.OverconfidencePattern{}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, patterns)
	}
}

// BlindSpots handles GET /api/analytics/blind-spots.
func (h *AnalyticsHandler) BlindSpots(w http.ResponseWriter, r *http.Request) {
	if agg, ok := h.snapshot(w, r); ok {
		spots := agg.BlindSpots()
		if spots == nil {
			spots = []analytics.BlindSpot{}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, spots)
	}
}

// Insights handles GET /api/analytics/insights.
func (h *AnalyticsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	if agg, ok := h.snapshot(w, r); ok {
		shared.RespondWithJSON(w, r, http.StatusOK, agg.Insights())
	}
}

// Suggestion handles POST /api/analytics/suggestion.
func (h *AnalyticsHandler) Suggestion(w http.ResponseWriter, r *http.Request) {
	var req SuggestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	suggestion, ok, err := h.analytics.Suggest(r.Context(), req.Title, req.Category)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute suggestion")
		return
	}

	var resp SuggestionResponse
	if ok {
		resp.Suggestion = &suggestion
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
