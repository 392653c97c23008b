package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/realitycheck-api/internal/analytics"
	"github.com/phrazzld/realitycheck-api/internal/api/shared"
	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/platform/logger"
	"github.com/phrazzld/realitycheck-api/internal/service"
)

// DecisionHandler handles decision-related HTTP requests.
type DecisionHandler struct {
	decisions    service.DecisionService
	analytics    service.AnalyticsService
	clock        analytics.Clock
	similarLimit int
	logger       *slog.Logger
}

// NewDecisionHandler creates a new DecisionHandler.
func NewDecisionHandler(
	decisions service.DecisionService,
	analyticsService service.AnalyticsService,
	clock analytics.Clock,
	similarLimit int,
	logger *slog.Logger,
) *DecisionHandler {
	if decisions == nil || analyticsService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("services cannot be nil for DecisionHandler")
	}
	if clock == nil {
		clock = analytics.SystemClock{}
	}
	if similarLimit <= 0 {
		similarLimit = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionHandler{
		decisions:    decisions,
		analytics:    analyticsService,
		clock:        clock,
		similarLimit: similarLimit,
		logger:       logger.With(slog.String("component", "decision_handler")),
	}
}

// ListDecisions handles GET /api/decisions.
func (h *DecisionHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDecisionFilter(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	decisions, err := h.decisions.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decisions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decisionsToResponse(decisions, h.clock.Now()))
}

// CreateDecision handles POST /api/decisions.
func (h *DecisionHandler) CreateDecision(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateDecisionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	in := req.DecisionInput
	if req.TemplateID != "" {
		tmpl, ok := domain.TemplateByID(req.TemplateID)
		if !ok {
			HandleAPIError(w, r, service.ErrTemplateNotFound, "")
			return
		}
		in = tmpl.Apply(in)
	}

	decision, err := h.decisions.Create(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create decision")
		return
	}

	log.Debug("decision created", slog.Int64("decision_id", decision.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, decisionToResponse(decision, h.clock.Now()))
}

// GetDecision handles GET /api/decisions/{id}.
func (h *DecisionHandler) GetDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	decision, err := h.decisions.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get decision")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decisionToResponse(decision, h.clock.Now()))
}

// UpdateDecision handles PUT /api/decisions/{id}.
func (h *DecisionHandler) UpdateDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	var in domain.DecisionInput
	if err := shared.DecodeJSON(r, &in); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	decision, err := h.decisions.Update(r.Context(), id, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update decision")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decisionToResponse(decision, h.clock.Now()))
}

// DeleteDecision handles DELETE /api/decisions/{id}.
func (h *DecisionHandler) DeleteDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.decisions.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete decision")
		return
	}
	shared.RespondNoContent(w)
}

// RecordOutcome handles POST /api/decisions/{id}/outcome.
func (h *DecisionHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	var in domain.OutcomeInput
	if err := shared.DecodeJSON(r, &in); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	decision, err := h.decisions.RecordOutcome(r.Context(), id, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record outcome")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decisionToResponse(decision, h.clock.Now()))
}

// SimilarDecisions handles GET /api/decisions/{id}/similar.
func (h *DecisionHandler) SimilarDecisions(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	limit, err := parseLimit(r.URL.Query(), h.similarLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	similar, err := h.analytics.Similar(r.Context(), id, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to find similar decisions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decisionsToResponse(similar, h.clock.Now()))
}

// ListCategories handles GET /api/categories.
func (h *DecisionHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.decisions.Categories(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, categories)
}

// ListTags handles GET /api/tags.
func (h *DecisionHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.decisions.Tags(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tags)
}
