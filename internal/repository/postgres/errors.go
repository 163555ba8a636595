package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrDuplicate is returned when an insert or update violates a unique constraint
	ErrDuplicate = errors.New("duplicate key")
	// ErrReferenced is returned when a delete would orphan dependent rows
	ErrReferenced = errors.New("still referenced")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// wrapWriteError wraps err, translating unique violations into ErrDuplicate
func wrapWriteError(action string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("failed to %s: %w", action, ErrDuplicate)
		case foreignKeyViolation:
			return fmt.Errorf("failed to %s: %w", action, ErrReferenced)
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// wrapGetError maps sql.ErrNoRows to a not-found error for entity
func wrapGetError(entity string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s not found: %w", entity, err)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

// checkAffected returns a not-found error when result touched no rows
func checkAffected(result sql.Result, entity string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %w", entity, sql.ErrNoRows)
	}
	return nil
}
