package ogm

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrConfigNotFound is returned when no .ogm.yaml is found.
	ErrConfigNotFound = errors.New("ogm: no .ogm.yaml found")

	// ErrUnknownRunner is returned when an unknown statement runner is requested.
	ErrUnknownRunner = errors.New("ogm: unknown statement runner")

	// ErrNoTransactionSupport is returned when a runner does not support transactions.
	ErrNoTransactionSupport = errors.New("ogm: runner does not support transactions")

	// ErrConstraintViolation is returned when the database rejected a write because
	// of a schema constraint (e.g. a uniqueness constraint on an assigned id).
	ErrConstraintViolation = errors.New("ogm: constraint violation")

	// ErrOptimisticLocking is returned when a versioned entity was saved or deleted
	// but the stored version did not match.
	ErrOptimisticLocking = errors.New("ogm: optimistic locking failure")

	// ErrDataAccess is returned for every other statement runner failure.
	ErrDataAccess = errors.New("ogm: data access failure")
)

// RunnerError is the error a statement runner reports when the database refuses
// a statement. Code is the server status code, if any.
type RunnerError struct {
	Code    string
	Message string
	Query   string
	Err     error
}

func (e *RunnerError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("statement failed: %s", e.Message)
	}

	return fmt.Sprintf("statement failed [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the underlying driver error.
func (e *RunnerError) Unwrap() error {
	return e.Err
}
