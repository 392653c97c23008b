package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/realitycheck-api/internal/domain"
)

// GroupStore defines the interface for decision group persistence.
type GroupStore interface {
	// List returns all groups ordered by name.
	List(ctx context.Context) ([]domain.DecisionGroup, error)

	// Get retrieves a group by ID.
	// Returns ErrGroupNotFound if the group does not exist.
	Get(ctx context.Context, id int64) (domain.DecisionGroup, error)

	// Insert saves a new group and returns its assigned ID.
	// Returns ErrGroupNameExists if the name is taken.
	Insert(ctx context.Context, g domain.DecisionGroup) (int64, error)

	// Update replaces a stored group.
	// Returns ErrGroupNotFound if the group does not exist.
	Update(ctx context.Context, g domain.DecisionGroup) error

	// Delete removes a group and detaches its decisions.
	// Returns ErrGroupNotFound if the group does not exist.
	Delete(ctx context.Context, id int64) error

	// CountDecisions returns how many decisions belong to the group.
	CountDecisions(ctx context.Context, id int64) (int, error)

	// WithTx returns a GroupStore that runs its statements in tx.
	WithTx(tx *sql.Tx) GroupStore
}
