package schema

import "errors"

// Schema errors. They are raised by New and are fatal: a schema that fails
// validation cannot be used.
var (
	ErrDuplicateType                 = errors.New("schema: duplicate type")
	ErrDuplicateLabel                = errors.New("schema: duplicate primary label")
	ErrDuplicateField                = errors.New("schema: duplicate field")
	ErrDuplicateProperty             = errors.New("schema: duplicate property mapping")
	ErrUnknownTarget                 = errors.New("schema: unknown relationship target")
	ErrUnknownParent                 = errors.New("schema: unknown parent type")
	ErrInheritanceCycle              = errors.New("schema: inheritance cycle")
	ErrUnknownRelationshipProperties = errors.New("schema: unknown relationship properties type")
	ErrAmbiguousDynamicRelationship  = errors.New("schema: ambiguous dynamic relationship")
	ErrInvalidDynamicLabels          = errors.New("schema: dynamic labels field must be []string")
	ErrInternalIDProperty            = errors.New("schema: internal id cannot be stored in a property")
	ErrInvalidInternalID             = errors.New("schema: internal id field must be int64 or *int64")
	ErrMissingID                     = errors.New("schema: missing id")
	ErrMissingGenerator              = errors.New("schema: generated id without generator")
	ErrInvalidStrategy               = errors.New("schema: invalid id strategy")
	ErrInvalidDirection              = errors.New("schema: invalid relationship direction")
	ErrInvalidType                   = errors.New("schema: invalid field type")
	ErrInvalidVersion                = errors.New("schema: version property must be int64")
	ErrMissingRelationshipType       = errors.New("schema: relationship without type")
	ErrMissingTargetField            = errors.New("schema: relationship properties without target field")
)
