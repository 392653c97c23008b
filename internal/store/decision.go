package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/realitycheck-api/internal/domain"
)

// DecisionFilter narrows a decision listing. Zero values impose no constraint.
type DecisionFilter struct {
	// Category keeps decisions with exactly this category.
	Category domain.Category
	// Tags keeps decisions carrying any of these tags, compared case-insensitively.
	Tags []string
	// From and To bound CreatedAt exclusively. The range applies only when both are set.
	From *time.Time
	To   *time.Time
	// GroupID keeps decisions belonging to this group.
	GroupID *int64
	// CompletedOnly keeps decisions with a recorded outcome.
	CompletedOnly bool
}

// Matches reports whether d passes the filter.
func (f DecisionFilter) Matches(d domain.Decision) bool {
	if f.Category != "" && d.Category != f.Category {
		return false
	}
	if len(f.Tags) > 0 {
		found := false
		for _, t := range f.Tags {
			if d.HasTag(t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && f.To != nil {
		if !d.CreatedAt.After(*f.From) || !d.CreatedAt.Before(*f.To) {
			return false
		}
	}
	if f.GroupID != nil && (d.GroupID == nil || *d.GroupID != *f.GroupID) {
		return false
	}
	if f.CompletedOnly && !d.IsCompleted() {
		return false
	}
	return true
}

// DecisionStore defines the interface for decision persistence.
type DecisionStore interface {
	// List returns decisions matching filter, newest first.
	// Returns an empty slice if nothing matches.
	List(ctx context.Context, filter DecisionFilter) ([]domain.Decision, error)

	// Get retrieves a decision by ID.
	// Returns ErrDecisionNotFound if the decision does not exist.
	Get(ctx context.Context, id int64) (domain.Decision, error)

	// Insert saves a new decision and returns its assigned ID.
	// Returns ErrInvalidEntity if the decision fails validation.
	Insert(ctx context.Context, d domain.Decision) (int64, error)

	// Update replaces a stored decision with d.
	// Returns ErrDecisionNotFound if the decision does not exist.
	Update(ctx context.Context, d domain.Decision) error

	// Delete removes a decision.
	// Returns ErrDecisionNotFound if the decision does not exist.
	Delete(ctx context.Context, id int64) error

	// Categories returns the distinct categories in use, sorted.
	Categories(ctx context.Context) ([]domain.Category, error)

	// Tags returns the distinct tags in use, sorted.
	Tags(ctx context.Context) ([]string, error)

	// WithTx returns a DecisionStore that runs its statements in tx.
	WithTx(tx *sql.Tx) DecisionStore
}
