package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/realitycheck-api/internal/analytics"
	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/events"
	"github.com/phrazzld/realitycheck-api/internal/platform/logger"
	"github.com/phrazzld/realitycheck-api/internal/store"
)

// DecisionService manages the decision log.
type DecisionService interface {
	// List returns decisions matching filter, newest first.
	List(ctx context.Context, filter store.DecisionFilter) ([]domain.Decision, error)

	// Get retrieves one decision.
	Get(ctx context.Context, id int64) (domain.Decision, error)

	// Create logs a new decision.
	Create(ctx context.Context, in domain.DecisionInput) (domain.Decision, error)

	// Update replaces the prediction side of a decision. Recorded outcomes
	// and the creation time are kept.
	Update(ctx context.Context, id int64, in domain.DecisionInput) (domain.Decision, error)

	// RecordOutcome records what actually happened.
	RecordOutcome(ctx context.Context, id int64, in domain.OutcomeInput) (domain.Decision, error)

	// Delete removes a decision.
	Delete(ctx context.Context, id int64) error

	// Categories returns the categories in use.
	Categories(ctx context.Context) ([]domain.Category, error)

	// Tags returns the tags in use.
	Tags(ctx context.Context) ([]string, error)
}

type decisionServiceImpl struct {
	decisions store.DecisionStore
	tx        store.Transactor
	emitter   events.EventEmitter
	clock     analytics.Clock
	logger    *slog.Logger
}

// NewDecisionService creates a DecisionService.
// It returns an error if any of the required dependencies are nil.
func NewDecisionService(
	decisions store.DecisionStore,
	tx store.Transactor,
	emitter events.EventEmitter,
	clock analytics.Clock,
	logger *slog.Logger,
) (DecisionService, error) {
	if decisions == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "decisions cannot be nil"}
	}
	if tx == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "transactor cannot be nil"}
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if clock == nil {
		clock = analytics.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &decisionServiceImpl{
		decisions: decisions,
		tx:        tx,
		emitter:   emitter,
		clock:     clock,
		logger:    logger.With("component", "decision_service"),
	}, nil
}

func (s *decisionServiceImpl) List(ctx context.Context, filter store.DecisionFilter) ([]domain.Decision, error) {
	decisions, err := s.decisions.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list_decisions", "failed to list decisions", err)
	}
	return decisions, nil
}

func (s *decisionServiceImpl) Get(ctx context.Context, id int64) (domain.Decision, error) {
	d, err := s.decisions.Get(ctx, id)
	if err != nil {
		return domain.Decision{}, NewServiceError("get_decision", "failed to get decision", err)
	}
	return d, nil
}

func (s *decisionServiceImpl) Create(ctx context.Context, in domain.DecisionInput) (domain.Decision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	d, err := domain.NewDecision(in, s.clock.Now().UTC())
	if err != nil {
		log.Debug("rejected decision input", "error", err)
		return domain.Decision{}, NewServiceError("create_decision", "invalid decision", err)
	}

	id, err := s.decisions.Insert(ctx, d)
	if err != nil {
		log.Error("failed to save decision", "error", err)
		return domain.Decision{}, NewServiceError("create_decision", "failed to save decision", err)
	}
	d.ID = id

	s.emit(ctx, events.DecisionCreated, id)
	return d, nil
}

func (s *decisionServiceImpl) Update(ctx context.Context, id int64, in domain.DecisionInput) (domain.Decision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now().UTC()

	fresh, err := domain.NewDecision(in, now)
	if err != nil {
		return domain.Decision{}, NewServiceError("update_decision", "invalid decision", err)
	}

	var updated domain.Decision
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.decisions.WithTx(tx)

		current, err := txStore.Get(ctx, id)
		if err != nil {
			return err
		}

		updated = current.Clone()
		updated.Title = fresh.Title
		updated.Description = fresh.Description
		updated.Prediction = fresh.Prediction
		updated.Category = fresh.Category
		updated.Tags = fresh.Tags
		updated.GroupID = fresh.GroupID
		updated.PredictedEnergy = fresh.PredictedEnergy
		updated.PredictedMood = fresh.PredictedMood
		updated.PredictedStress = fresh.PredictedStress
		updated.PredictedRegretChance = fresh.PredictedRegretChance
		updated.PredictedOverallImpact = fresh.PredictedOverallImpact
		updated.PredictionConfidence = fresh.PredictionConfidence
		if fresh.ReminderAt != nil {
			updated.ReminderAt = fresh.ReminderAt
		}

		return txStore.Update(ctx, updated)
	})
	if err != nil {
		log.Warn("failed to update decision", "error", err, "decision_id", id)
		return domain.Decision{}, NewServiceError("update_decision", "failed to update decision", err)
	}

	s.emit(ctx, events.DecisionUpdated, id)
	return updated, nil
}

func (s *decisionServiceImpl) RecordOutcome(
	ctx context.Context,
	id int64,
	in domain.OutcomeInput,
) (domain.Decision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now().UTC()

	var updated domain.Decision
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.decisions.WithTx(tx)

		current, err := txStore.Get(ctx, id)
		if err != nil {
			return err
		}
		updated, err = current.WithOutcome(in, now)
		if err != nil {
			return err
		}
		return txStore.Update(ctx, updated)
	})
	if err != nil {
		log.Warn("failed to record outcome", "error", err, "decision_id", id)
		return domain.Decision{}, NewServiceError("record_outcome", "failed to record outcome", err)
	}

	log.Info("outcome recorded", "decision_id", id, "followed", updated.Followed == domain.FollowYes)
	s.emit(ctx, events.DecisionOutcomeRecorded, id)
	return updated, nil
}

func (s *decisionServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.decisions.Delete(ctx, id); err != nil {
		return NewServiceError("delete_decision", "failed to delete decision", err)
	}
	s.emit(ctx, events.DecisionDeleted, id)
	return nil
}

func (s *decisionServiceImpl) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.decisions.Categories(ctx)
	if err != nil {
		return nil, NewServiceError("list_categories", "failed to list categories", err)
	}
	return categories, nil
}

func (s *decisionServiceImpl) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.decisions.Tags(ctx)
	if err != nil {
		return nil, NewServiceError("list_tags", "failed to list tags", err)
	}
	return tags, nil
}

// emit publishes a change event. Handler failures are logged and do not
// fail the mutation, which has already been committed.
func (s *decisionServiceImpl) emit(ctx context.Context, eventType string, id int64) {
	event := events.NewDecisionEvent(eventType, id, s.clock.Now())
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit event",
			"error", err,
			"event_type", eventType,
			"entity_id", id)
	}
}
