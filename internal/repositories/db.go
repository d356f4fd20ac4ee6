package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row does not exist or a conditional
	// update matched nothing (already-consumed token, unknown session).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on unique constraint violations (email,
	// oauth identity).
	ErrDuplicate = errors.New("record already exists")
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
