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

// GroupSummary is a group together with the number of decisions in it.
type GroupSummary struct {
	domain.DecisionGroup
	DecisionCount int `json:"decision_count"`
}

// GroupInput carries the editable fields of a group.
type GroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// GroupService manages decision groups.
type GroupService interface {
	// List returns all groups with their decision counts.
	List(ctx context.Context) ([]GroupSummary, error)

	// Create adds a group.
	Create(ctx context.Context, in GroupInput) (domain.DecisionGroup, error)

	// Update changes a group's name, description and color.
	Update(ctx context.Context, id int64, in GroupInput) (domain.DecisionGroup, error)

	// Delete removes a group. Its decisions are kept and become ungrouped.
	Delete(ctx context.Context, id int64) error

	// EnsureDefaults creates the default groups when none exist yet.
	EnsureDefaults(ctx context.Context) error
}

type groupServiceImpl struct {
	groups  store.GroupStore
	tx      store.Transactor
	emitter events.EventEmitter
	clock   analytics.Clock
	logger  *slog.Logger
}

// NewGroupService creates a GroupService.
// It returns an error if any of the required dependencies are nil.
func NewGroupService(
	groups store.GroupStore,
	tx store.Transactor,
	emitter events.EventEmitter,
	clock analytics.Clock,
	logger *slog.Logger,
) (GroupService, error) {
	if groups == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "groups cannot be nil"}
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

	return &groupServiceImpl{
		groups:  groups,
		tx:      tx,
		emitter: emitter,
		clock:   clock,
		logger:  logger.With("component", "group_service"),
	}, nil
}

func (s *groupServiceImpl) List(ctx context.Context) ([]GroupSummary, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, NewServiceError("list_groups", "failed to list groups", err)
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		n, err := s.groups.CountDecisions(ctx, g.ID)
		if err != nil {
			return nil, NewServiceError("list_groups", "failed to count decisions", err)
		}
		summaries = append(summaries, GroupSummary{DecisionGroup: g, DecisionCount: n})
	}
	return summaries, nil
}

func (s *groupServiceImpl) Create(ctx context.Context, in GroupInput) (domain.DecisionGroup, error) {
	g, err := domain.NewDecisionGroup(in.Name, in.Description, in.Color, s.clock.Now().UTC())
	if err != nil {
		return domain.DecisionGroup{}, NewServiceError("create_group", "invalid group", err)
	}

	id, err := s.groups.Insert(ctx, g)
	if err != nil {
		return domain.DecisionGroup{}, NewServiceError("create_group", "failed to save group", err)
	}
	g.ID = id
	return g, nil
}

func (s *groupServiceImpl) Update(ctx context.Context, id int64, in GroupInput) (domain.DecisionGroup, error) {
	now := s.clock.Now().UTC()

	var updated domain.DecisionGroup
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.groups.WithTx(tx)

		current, err := txStore.Get(ctx, id)
		if err != nil {
			return err
		}

		next, err := domain.NewDecisionGroup(in.Name, in.Description, in.Color, current.CreatedAt)
		if err != nil {
			return err
		}
		next.ID = current.ID
		next.UpdatedAt = now
		updated = next

		return txStore.Update(ctx, updated)
	})
	if err != nil {
		return domain.DecisionGroup{}, NewServiceError("update_group", "failed to update group", err)
	}
	return updated, nil
}

func (s *groupServiceImpl) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.groups.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return NewServiceError("delete_group", "failed to delete group", err)
	}

	// Detaching changes the group of every member decision.
	event := events.NewDecisionEvent(events.GroupDeleted, id, s.clock.Now())
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit event", "error", err, "event_type", event.Type, "entity_id", id)
	}
	return nil
}

func (s *groupServiceImpl) EnsureDefaults(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	return s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.groups.WithTx(tx)

		existing, err := txStore.List(ctx)
		if err != nil {
			return NewServiceError("ensure_default_groups", "failed to list groups", err)
		}
		if len(existing) > 0 {
			return nil
		}

		for _, g := range domain.DefaultGroups(s.clock.Now().UTC()) {
			if _, err := txStore.Insert(ctx, g); err != nil {
				return NewServiceError("ensure_default_groups", "failed to create default group", err)
			}
		}
		log.Info("created default groups")
		return nil
	})
}
