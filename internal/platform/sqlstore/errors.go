package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/realitycheck-api/internal/store"
)

// checkRowsAffected returns notFound when result touched no rows.
func checkRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to checkRowsAffected")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// notFoundOr returns notFound for sql.ErrNoRows and the dialect mapping of
// err otherwise.
func (d Dialect) notFoundOr(err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return d.mapError(err)
}

// isDuplicate reports whether err maps to a uniqueness violation.
func (d Dialect) isDuplicate(err error) bool {
	return errors.Is(d.mapError(err), store.ErrDuplicate)
}

// writeError wraps a failed write in a *store.StoreError. The cause matches
// both failed and the dialect mapping of err.
func (d Dialect) writeError(entity, op, message string, failed, err error) error {
	return store.NewStoreError(entity, op, message, fmt.Errorf("%w: %w", failed, d.mapError(err)))
}
