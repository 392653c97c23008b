package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/platform/logger"
	"github.com/phrazzld/realitycheck-api/internal/store"
)

const groupColumns = "id, name, description, color, created_at, updated_at"

// GroupStore implements store.GroupStore over database/sql.
type GroupStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewGroupStore creates a GroupStore running statements on db.
// If logger is nil, slog.Default is used.
func NewGroupStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *GroupStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "group_store")),
	}
}

var _ store.GroupStore = (*GroupStore)(nil)

func scanGroup(row scanner) (domain.DecisionGroup, error) {
	var g domain.DecisionGroup
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Color, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return domain.DecisionGroup{}, err
	}
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return g, nil
}

// List implements store.GroupStore.List.
func (s *GroupStore) List(ctx context.Context) ([]domain.DecisionGroup, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, "SELECT "+groupColumns+" FROM decision_groups ORDER BY name")
	if err != nil {
		log.Error("failed to list groups", slog.String("error", err.Error()))
		return nil, s.dialect.mapError(err)
	}
	defer func() { _ = rows.Close() }()

	groups := []domain.DecisionGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			log.Error("failed to scan group row", slog.String("error", err.Error()))
			return nil, s.dialect.mapError(err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, s.dialect.mapError(err)
	}
	return groups, nil
}

// Get implements store.GroupStore.Get.
func (s *GroupStore) Get(ctx context.Context, id int64) (domain.DecisionGroup, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.dialect.Rebind("SELECT " + groupColumns + " FROM decision_groups WHERE id = ?")
	g, err := scanGroup(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("group not found", slog.Int64("group_id", id))
		}
		return domain.DecisionGroup{}, s.dialect.notFoundOr(err, store.ErrGroupNotFound)
	}
	return g, nil
}

// Insert implements store.GroupStore.Insert.
func (s *GroupStore) Insert(ctx context.Context, g domain.DecisionGroup) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := g.Validate(); err != nil {
		log.Warn("group validation failed during insert", slog.String("error", err.Error()))
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO decision_groups (name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query),
		g.Name, g.Description, g.Color, g.CreatedAt.UTC(), g.UpdatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		if s.dialect.isDuplicate(err) {
			log.Warn("group name already exists", slog.String("name", g.Name))
			return 0, store.ErrGroupNameExists
		}
		log.Error("failed to insert group", slog.String("error", err.Error()))
		return 0, s.dialect.mapError(err)
	}

	log.Info("group created", slog.Int64("group_id", id), slog.String("name", g.Name))
	return id, nil
}

// Update implements store.GroupStore.Update.
func (s *GroupStore) Update(ctx context.Context, g domain.DecisionGroup) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := g.Validate(); err != nil {
		log.Warn("group validation failed during update", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `UPDATE decision_groups SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ?`
	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(query),
		g.Name, g.Description, g.Color, g.UpdatedAt.UTC(), g.ID)
	if err != nil {
		if s.dialect.isDuplicate(err) {
			return store.ErrGroupNameExists
		}
		log.Error("failed to update group",
			slog.String("error", err.Error()),
			slog.Int64("group_id", g.ID))
		return s.dialect.writeError("group", "update", "failed to update group", store.ErrUpdateFailed, err)
	}
	if err := checkRowsAffected(result, store.ErrGroupNotFound); err != nil {
		return err
	}

	log.Info("group updated", slog.Int64("group_id", g.ID))
	return nil
}

// Delete implements store.GroupStore.Delete. Decisions in the group are
// detached first; callers wanting atomicity run it inside a transaction.
func (s *GroupStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	detached, err := s.db.ExecContext(ctx,
		s.dialect.Rebind("UPDATE decisions SET group_id = NULL WHERE group_id = ?"), id)
	if err != nil {
		log.Error("failed to detach decisions from group",
			slog.String("error", err.Error()),
			slog.Int64("group_id", id))
		return s.dialect.writeError("group", "delete", "failed to detach decisions", store.ErrDeleteFailed, err)
	}

	result, err := s.db.ExecContext(ctx,
		s.dialect.Rebind("DELETE FROM decision_groups WHERE id = ?"), id)
	if err != nil {
		log.Error("failed to delete group",
			slog.String("error", err.Error()),
			slog.Int64("group_id", id))
		return s.dialect.writeError("group", "delete", "failed to delete group", store.ErrDeleteFailed, err)
	}
	if err := checkRowsAffected(result, store.ErrGroupNotFound); err != nil {
		return err
	}

	n, _ := detached.RowsAffected()
	log.Info("group deleted", slog.Int64("group_id", id), slog.Int64("detached", n))
	return nil
}

// CountDecisions implements store.GroupStore.CountDecisions.
func (s *GroupStore) CountDecisions(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind("SELECT COUNT(*) FROM decisions WHERE group_id = ?"), id).Scan(&n)
	if err != nil {
		return 0, s.dialect.mapError(err)
	}
	return n, nil
}

// WithTx implements store.GroupStore.WithTx.
func (s *GroupStore) WithTx(tx *sql.Tx) store.GroupStore {
	return &GroupStore{db: tx, dialect: s.dialect, logger: s.logger}
}
