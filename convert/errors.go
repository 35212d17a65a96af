package convert

import "errors"

// Sentinel errors.
var (
	// ErrFrozen is returned when registering a converter after Freeze.
	ErrFrozen = errors.New("convert: registry is frozen")

	// ErrUnknownType is returned when no converter is registered for a type.
	ErrUnknownType = errors.New("convert: no converter for type")

	// ErrNotConvertible is returned when a value cannot be converted.
	ErrNotConvertible = errors.New("convert: value not convertible")
)
