package api

import (
	"time"

	"github.com/phrazzld/realitycheck-api/internal/analytics"
	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/domain/scoring"
	"github.com/phrazzld/realitycheck-api/internal/service"
)

// TokenRequest defines the payload for the token endpoint.
type TokenRequest struct {
	Passphrase string `json:"passphrase" validate:"required,max=1024"`
}

// CreateDecisionRequest is a new decision, optionally pre-filled from a template.
type CreateDecisionRequest struct {
	domain.DecisionInput
	TemplateID string `json:"template_id,omitempty"`
}

// GroupRequest defines the payload for creating or updating a group.
type GroupRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color"       validate:"omitempty,hexcolor"`
}

func (r GroupRequest) input() service.GroupInput {
	return service.GroupInput{Name: r.Name, Description: r.Description, Color: r.Color}
}

// SuggestionRequest describes a decision being drafted.
type SuggestionRequest struct {
	Title    string          `json:"title"    validate:"max=200"`
	Category domain.Category `json:"category"`
}

// DecisionResponse is a decision together with its derived scores.
type DecisionResponse struct {
	domain.Decision
	Accuracy     *float64          `json:"accuracy,omitempty"`
	RegretIndex  *float64          `json:"regret_index,omitempty"`
	Indicator    scoring.Indicator `json:"indicator,omitempty"`
	CheckInLabel string            `json:"check_in_label,omitempty"`
}

func decisionToResponse(d domain.Decision, now time.Time) DecisionResponse {
	resp := DecisionResponse{
		Decision:     d,
		Indicator:    scoring.IndicatorFor(d),
		CheckInLabel: scoring.CheckInLabel(d, now),
	}
	if acc, ok := scoring.Accuracy(d); ok {
		resp.Accuracy = &acc
	}
	if idx, ok := scoring.RegretIndex(d); ok {
		resp.RegretIndex = &idx
	}
	return resp
}

func decisionsToResponse(ds []domain.Decision, now time.Time) []DecisionResponse {
	out := make([]DecisionResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, decisionToResponse(d, now))
	}
	return out
}

// SummaryResponse is the analytics headline plus the weekly digest.
type SummaryResponse struct {
	service.Overview
	WeeklySummary *analytics.WeeklySummary `json:"weekly_summary,omitempty"`
}

// CategoryAnalyticsResponse holds the per-category accuracy and regret.
type CategoryAnalyticsResponse struct {
	Accuracy map[domain.Category]float64 `json:"accuracy"`
	Regret   map[domain.Category]float64 `json:"regret"`
}

// SuggestionResponse carries a suggestion, or nothing when none applies.
type SuggestionResponse struct {
	Suggestion *analytics.PatternSuggestion `json:"suggestion"`
}
