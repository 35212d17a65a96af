package ogm

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Type parsing errors.
var (
	ErrEmptyTypeString  = errors.New("empty type string")
	ErrInvalidMapType   = errors.New("invalid map type")
	ErrUnrecognizedType = errors.New("unrecognized type")
)

// TypeKind represents the kind of a property type.
type TypeKind string

// Type kind constants.
const (
	TypeKindPrimitive TypeKind = "primitive" // string, int64, bool, float64, etc.
	TypeKindSlice     TypeKind = "slice"     // []T
	TypeKindMap       TypeKind = "map"       // map[K]V
	TypeKindPointer   TypeKind = "pointer"   // *T
	TypeKindNamed     TypeKind = "named"     // time.Time, uuid.UUID, ogm.Point, etc.
)

// Type is the declared Go type of an entity field, written the way it appears
// in Go source (e.g. "[]string", "*int", "time.Time"). Property types are
// declared as strings so schemas can be loaded from YAML; the conversion
// registry is keyed by Type.String().
type Type struct {
	Kind TypeKind

	// Name is the type name. For named types it excludes the package.
	Name string

	// Package is the package qualifier of a named type ("time", "uuid", "ogm").
	Package string

	// Elem is the element type of slices, pointers and map values.
	Elem *Type

	// Key is the key type of maps.
	Key *Type
}

// String returns the canonical Go spelling of the type.
func (t *Type) String() string {
	if t == nil {
		return ""
	}

	switch t.Kind {
	case TypeKindSlice:
		return "[]" + t.Elem.String()
	case TypeKindMap:
		return "map[" + t.Key.String() + "]" + t.Elem.String()
	case TypeKindPointer:
		return "*" + t.Elem.String()
	case TypeKindNamed:
		if t.Package != "" {
			return t.Package + "." + t.Name
		}

		return t.Name
	default:
		return t.Name
	}
}

// IsStringSlice reports whether t is []string.
func (t *Type) IsStringSlice() bool {
	return t != nil && t.Kind == TypeKindSlice && t.Elem.Kind == TypeKindPrimitive && t.Elem.Name == "string"
}

// ParseTypeString parses a Go-style type string.
// Supports primitives, []T, *T, map[K]V and qualified names such as time.Time.
//
//	"string"         -> TypeKindPrimitive, Name="string"
//	"[]string"       -> TypeKindSlice, Elem=string
//	"*int"           -> TypeKindPointer, Elem=int
//	"map[string]any" -> TypeKindMap, Key=string, Elem=any
//	"uuid.UUID"      -> TypeKindNamed, Package="uuid", Name="UUID"
func ParseTypeString(s string) (*Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyTypeString
	}

	return parseType(s)
}

// MustParseType is like ParseTypeString but panics on malformed input.
// It is intended for package-level declarations.
func MustParseType(s string) *Type {
	t, err := ParseTypeString(s)
	if err != nil {
		panic(err)
	}

	return t
}

func parseType(s string) (*Type, error) {
	switch {
	case strings.HasPrefix(s, "[]"):
		elem, err := parseType(s[2:])
		if err != nil {
			return nil, err
		}

		return SliceOf(elem), nil

	case strings.HasPrefix(s, "*"):
		elem, err := parseType(s[1:])
		if err != nil {
			return nil, err
		}

		return PointerTo(elem), nil

	case strings.HasPrefix(s, "map["):
		keyEnd := matchingBracket(s, 3)
		if keyEnd == -1 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMapType, s)
		}

		key, err := parseType(s[4:keyEnd])
		if err != nil {
			return nil, fmt.Errorf("invalid map key type: %w", err)
		}

		value, err := parseType(s[keyEnd+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid map value type: %w", err)
		}

		return MapOf(key, value), nil
	}

	if idx := strings.LastIndex(s, "."); idx > 0 {
		pkg, name := s[:idx], s[idx+1:]
		if isIdentifier(pkg) && isIdentifier(name) {
			return NamedType(pkg, name), nil
		}
	}

	if isPrimitiveType(s) {
		return &Type{Kind: TypeKindPrimitive, Name: s}, nil
	}

	if isIdentifier(s) {
		return NamedType("", s), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnrecognizedType, s)
}

// matchingBracket returns the index of the ']' closing the '[' at open.
func matchingBracket(s string, open int) int {
	depth := 0

	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

func isPrimitiveType(s string) bool {
	switch s {
	case "bool", "string",
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"byte", "rune",
		"float32", "float64",
		"any":
		return true
	}

	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}

		if i > 0 && unicode.IsDigit(r) {
			continue
		}

		return false
	}

	return true
}

// Common property types.
var (
	TypeString  = &Type{Kind: TypeKindPrimitive, Name: "string"}
	TypeInt64   = &Type{Kind: TypeKindPrimitive, Name: "int64"}
	TypeFloat64 = &Type{Kind: TypeKindPrimitive, Name: "float64"}
	TypeBool    = &Type{Kind: TypeKindPrimitive, Name: "bool"}
	TypeAny     = &Type{Kind: TypeKindPrimitive, Name: "any"}
)

// SliceOf creates a slice type.
func SliceOf(elem *Type) *Type {
	return &Type{Kind: TypeKindSlice, Elem: elem}
}

// PointerTo creates a pointer type.
func PointerTo(elem *Type) *Type {
	return &Type{Kind: TypeKindPointer, Elem: elem}
}

// MapOf creates a map type.
func MapOf(key, value *Type) *Type {
	return &Type{Kind: TypeKindMap, Key: key, Elem: value}
}

// NamedType creates a named type.
func NamedType(pkg, name string) *Type {
	return &Type{Kind: TypeKindNamed, Package: pkg, Name: name}
}
