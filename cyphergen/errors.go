package cyphergen

import "errors"

// Sentinel errors.
var (
	// ErrInternalMerge is returned when merging an entity whose id is internal.
	ErrInternalMerge = errors.New("cyphergen: cannot merge on an internal id")

	// ErrMissingType is returned when creating a dynamic relationship without a type.
	ErrMissingType = errors.New("cyphergen: relationship type required")
)
