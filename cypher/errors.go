package cypher

import "errors"

// Statement construction errors.
var (
	// ErrDuplicateParameter is returned when one parameter name is bound to
	// two different values within a statement.
	ErrDuplicateParameter = errors.New("cypher: duplicate parameter")

	// ErrEmptyPattern is returned when a reading or updating clause has no pattern.
	ErrEmptyPattern = errors.New("cypher: clause without pattern")

	// ErrEmptyProjection is returned when RETURN or WITH has no items.
	ErrEmptyProjection = errors.New("cypher: projection without items")
)
