package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/platform/logger"
	"github.com/phrazzld/realitycheck-api/internal/store"
)

// DecisionStore implements store.DecisionStore over database/sql.
type DecisionStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewDecisionStore creates a DecisionStore running statements on db.
// If logger is nil, slog.Default is used.
func NewDecisionStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *DecisionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "decision_store")),
	}
}

var _ store.DecisionStore = (*DecisionStore)(nil)

// List implements store.DecisionStore.List. Category, group and completion
// are filtered in SQL; tags and the date range are applied to the rows read.
func (s *DecisionStore) List(ctx context.Context, filter store.DecisionFilter) ([]domain.Decision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.GroupID != nil {
		where = append(where, "group_id = ?")
		args = append(args, *filter.GroupID)
	}
	if filter.CompletedOnly {
		where = append(where, `(outcome IS NOT NULL OR actual_energy IS NOT NULL OR actual_mood IS NOT NULL
			OR actual_stress IS NOT NULL OR actual_regret IS NOT NULL)`)
	}

	query := "SELECT " + decisionColumns + " FROM decisions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		log.Error("failed to list decisions", slog.String("error", err.Error()))
		return nil, s.dialect.mapError(err)
	}
	defer func() { _ = rows.Close() }()

	decisions := []domain.Decision{}
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			log.Error("failed to scan decision row", slog.String("error", err.Error()))
			return nil, s.dialect.mapError(err)
		}
		if filter.Matches(d) {
			decisions = append(decisions, d)
		}
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating decision rows", slog.String("error", err.Error()))
		return nil, s.dialect.mapError(err)
	}

	log.Debug("listed decisions", slog.Int("count", len(decisions)))
	return decisions, nil
}

// Get implements store.DecisionStore.Get.
func (s *DecisionStore) Get(ctx context.Context, id int64) (domain.Decision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := "SELECT " + decisionColumns + " FROM decisions WHERE id = ?"
	d, err := scanDecision(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("decision not found", slog.Int64("decision_id", id))
			return domain.Decision{}, store.ErrDecisionNotFound
		}
		log.Error("failed to get decision",
			slog.String("error", err.Error()),
			slog.Int64("decision_id", id))
		return domain.Decision{}, s.dialect.mapError(err)
	}
	return d, nil
}

// Insert implements store.DecisionStore.Insert.
func (s *DecisionStore) Insert(ctx context.Context, d domain.Decision) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := d.Validate(); err != nil {
		log.Warn("decision validation failed during insert", slog.String("error", err.Error()))
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO decisions (
		title, description, category, tags, prediction, outcome, group_id,
		created_at, reminder_at, outcome_recorded_at,
		predicted_energy, predicted_mood, predicted_stress, predicted_regret_chance,
		predicted_overall_impact, prediction_confidence,
		actual_energy, actual_mood, actual_stress, actual_regret, followed
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query), decisionArgs(d)...).Scan(&id)
	if err != nil {
		log.Error("failed to insert decision",
			slog.String("error", err.Error()),
			slog.String("category", string(d.Category)))
		return 0, s.dialect.mapError(err)
	}

	log.Info("decision created",
		slog.Int64("decision_id", id),
		slog.String("category", string(d.Category)))
	return id, nil
}

// Update implements store.DecisionStore.Update.
func (s *DecisionStore) Update(ctx context.Context, d domain.Decision) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := d.Validate(); err != nil {
		log.Warn("decision validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("decision_id", d.ID))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `UPDATE decisions SET
		title = ?, description = ?, category = ?, tags = ?, prediction = ?, outcome = ?, group_id = ?,
		created_at = ?, reminder_at = ?, outcome_recorded_at = ?,
		predicted_energy = ?, predicted_mood = ?, predicted_stress = ?, predicted_regret_chance = ?,
		predicted_overall_impact = ?, prediction_confidence = ?,
		actual_energy = ?, actual_mood = ?, actual_stress = ?, actual_regret = ?, followed = ?
	WHERE id = ?`

	args := append(decisionArgs(d), d.ID)
	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		log.Error("failed to update decision",
			slog.String("error", err.Error()),
			slog.Int64("decision_id", d.ID))
		return s.dialect.writeError("decision", "update", "failed to update decision", store.ErrUpdateFailed, err)
	}
	if err := checkRowsAffected(result, store.ErrDecisionNotFound); err != nil {
		log.Debug("decision not found for update", slog.Int64("decision_id", d.ID))
		return err
	}

	log.Info("decision updated", slog.Int64("decision_id", d.ID))
	return nil
}

// Delete implements store.DecisionStore.Delete.
func (s *DecisionStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.dialect.Rebind("DELETE FROM decisions WHERE id = ?"), id)
	if err != nil {
		log.Error("failed to delete decision",
			slog.String("error", err.Error()),
			slog.Int64("decision_id", id))
		return s.dialect.writeError("decision", "delete", "failed to delete decision", store.ErrDeleteFailed, err)
	}
	if err := checkRowsAffected(result, store.ErrDecisionNotFound); err != nil {
		log.Debug("decision not found for delete", slog.Int64("decision_id", id))
		return err
	}

	log.Info("decision deleted", slog.Int64("decision_id", id))
	return nil
}

// Categories implements store.DecisionStore.Categories.
func (s *DecisionStore) Categories(ctx context.Context) ([]domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM decisions WHERE category IS NOT NULL ORDER BY category")
	if err != nil {
		log.Error("failed to list categories", slog.String("error", err.Error()))
		return nil, s.dialect.mapError(err)
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, s.dialect.mapError(err)
		}
		categories = append(categories, domain.Category(c))
	}
	if err := rows.Err(); err != nil {
		return nil, s.dialect.mapError(err)
	}
	return categories, nil
}

// Tags implements store.DecisionStore.Tags.
func (s *DecisionStore) Tags(ctx context.Context) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT tags FROM decisions WHERE tags <> ''")
	if err != nil {
		log.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, s.dialect.mapError(err)
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[string]struct{})
	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return nil, s.dialect.mapError(err)
		}
		for _, t := range splitTags(joined) {
			seen[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, s.dialect.mapError(err)
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags, nil
}

// WithTx implements store.DecisionStore.WithTx.
func (s *DecisionStore) WithTx(tx *sql.Tx) store.DecisionStore {
	return &DecisionStore{db: tx, dialect: s.dialect, logger: s.logger}
}
