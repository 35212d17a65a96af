package ops

import "errors"

// Sentinel errors for the ops package.
var (
	// ErrNotFound is returned when no entity has the requested id.
	ErrNotFound = errors.New("ops: entity not found")

	// ErrUnknownType is returned for a type name the schema does not describe.
	ErrUnknownType = errors.New("ops: unknown entity type")

	// ErrMissingParameter is returned when a query refers to a parameter
	// that was not supplied.
	ErrMissingParameter = errors.New("ops: missing query parameter")

	// ErrTypeMismatch is returned by the generic helpers when an entity is not
	// of the requested type.
	ErrTypeMismatch = errors.New("ops: entity type mismatch")

	// ErrUnexpectedResult is returned when a generated statement returned rows
	// of an unexpected shape.
	ErrUnexpectedResult = errors.New("ops: unexpected statement result")
)
