package mapping

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrMissingBinding is returned when a described type has no binding.
	ErrMissingBinding = errors.New("mapping: no binding for type")

	// ErrUnknownBinding is returned when a binding names a type the schema does not describe.
	ErrUnknownBinding = errors.New("mapping: binding for undescribed type")

	// ErrMissingAccessor is returned when a declared field has no accessor of the right kind.
	ErrMissingAccessor = errors.New("mapping: missing accessor")

	// ErrUnknownEntity is returned for values of a type without a binding.
	ErrUnknownEntity = errors.New("mapping: value has no binding")

	// ErrMissingID is returned when an entity or a result lacks a required id.
	ErrMissingID = errors.New("mapping: missing id")

	// ErrUnresolvedRelationship is returned when a related value does not
	// resolve to the relationship's target type.
	ErrUnresolvedRelationship = errors.New("mapping: unresolved relationship")

	// ErrAccessorType is returned when a value does not fit a field.
	ErrAccessorType = errors.New("mapping: value does not fit field")

	// ErrMissingGenerator is returned when no generator is registered for a generated id.
	ErrMissingGenerator = errors.New("mapping: id generator not registered")
)

// Error is a mapping failure of one entity. Path is the field path from the
// entity to the offending value.
type Error struct {
	Type string
	Path []string
	Err  error
}

func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("mapping %s: %v", e.Type, e.Err)
	}

	return fmt.Sprintf("mapping %s.%s: %v", e.Type, strings.Join(e.Path, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// fieldError wraps err for a field of typeName. An err that is already an
// *Error is prefixed with field.
func fieldError(typeName, field string, err error) error {
	var me *Error
	if errors.As(err, &me) {
		return &Error{Type: typeName, Path: append([]string{field}, me.Path...), Err: me.Err}
	}

	return &Error{Type: typeName, Path: []string{field}, Err: err}
}
