// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/moodtune/internal/shared"
)

var sequenceTables = map[string]bool{
	"discoveries": true,
	"exports":     true,
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// NextSequence advances and returns the sequence counter for table.
//
// Only tables with a <table>_sequence companion are accepted.
func NextSequence(db *sql.DB, table string) (int64, error) {
	if !sequenceTables[table] {
		return 0, fmt.Errorf("%w: no sequence for table %q", shared.ErrInvalidArgument, table)
	}

	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)

	var next int64
	if err := db.QueryRow(query).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return next, nil
}

// affectedOne turns a zero-row result into a not-found error.
func affectedOne(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return nil
}

// IsNotFound reports whether err came from a lookup that matched no rows.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, shared.ErrCacheMiss)
}
