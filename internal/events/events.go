package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	DecisionCreated         = "decision.created"
	DecisionUpdated         = "decision.updated"
	DecisionDeleted         = "decision.deleted"
	DecisionOutcomeRecorded = "decision.outcome_recorded"
	GroupDeleted            = "group.deleted"
)

// DecisionEvent describes a change to the stored decision set.
type DecisionEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the event type constants
	Type string `json:"type"`

	// EntityID is the ID of the decision or group that changed
	EntityID int64 `json:"entity_id"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewDecisionEvent creates a DecisionEvent of the given type.
func NewDecisionEvent(eventType string, entityID int64, at time.Time) *DecisionEvent {
	return &DecisionEvent{
		ID:        uuid.New(),
		Type:      eventType,
		EntityID:  entityID,
		CreatedAt: at,
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *DecisionEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *DecisionEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *DecisionEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *DecisionEvent) error
}
