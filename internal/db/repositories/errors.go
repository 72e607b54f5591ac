// errors.go defines the sentinel errors returned by the repositories.
package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the addressed row does not exist or nothing was affected.
	ErrNotFound = errors.New("record not found")
	// ErrReferenced is returned when a delete is rejected by a foreign key constraint.
	ErrReferenced = errors.New("record is still referenced")
	// ErrNoReplacement is returned when a soft-deleted configuration has no enabled
	// configuration to take over its conversations.
	ErrNoReplacement = errors.New("no replacement configuration available")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("record already exists")
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}

// mapUniqueViolation turns a unique constraint failure into ErrDuplicate.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// checkAffected maps a write that touched no rows to ErrNotFound.
func checkAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
