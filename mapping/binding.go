package mapping

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

type fieldKind int

const (
	kindValue fieldKind = iota
	kindOne
	kindMany
	kindDynamic
)

func (k fieldKind) String() string {
	switch k {
	case kindOne:
		return "one"
	case kindMany:
		return "many"
	case kindDynamic:
		return "dynamic"
	default:
		return "value"
	}
}

// accessor reads and writes one field of an entity. Entities are always
// pointers to the bound type.
type accessor struct {
	kind fieldKind

	get    func(e any) any
	set    func(e any, v any) error
	isZero func(e any) bool

	getRelated func(e any) []any
	setRelated func(e any, vs []any) error

	getDynamic func(e any) map[string][]any
	setDynamic func(e any, m map[string][]any) error
}

// Values holds constructor arguments by field name. Values are already
// converted to the field types.
type Values map[string]any

// Get returns the value of field as V. It returns the zero value when the
// field is absent or holds a different type.
func Get[V any](v Values, field string) V {
	out, _ := v[field].(V)

	return out
}

// Binding is the registered factory and field accessors of one type.
type Binding struct {
	typeName string
	matches  func(e any) bool
	factory  func(args Values) (any, error)
	fields   map[string]*accessor
}

// TypeName returns the name of the bound type.
func (b Binding) TypeName() string {
	return b.typeName
}

// Fields returns the bound field names, sorted.
func (b Binding) Fields() []string {
	out := slices.Collect(maps.Keys(b.fields))
	sort.Strings(out)

	return out
}

// FieldBinding binds one field of T.
type FieldBinding[T any] struct {
	name string
	acc  *accessor
}

// Bind binds T to typeName. factory creates an instance from its constructor
// arguments; a nil factory allocates a zero T.
func Bind[T any](typeName string, factory func(args Values) (*T, error), fields ...FieldBinding[T]) Binding {
	if factory == nil {
		factory = func(Values) (*T, error) { return new(T), nil }
	}

	b := Binding{
		typeName: typeName,
		matches: func(e any) bool {
			_, ok := e.(*T)

			return ok
		},
		factory: func(args Values) (any, error) {
			return factory(args)
		},
		fields: make(map[string]*accessor, len(fields)),
	}

	for _, f := range fields {
		b.fields[f.name] = f.acc
	}

	return b
}

// Field binds a property, id, version or dynamic labels field.
func Field[T, V any](name string, get func(*T) V, set func(*T, V)) FieldBinding[T] {
	return FieldBinding[T]{name: name, acc: &accessor{
		kind: kindValue,
		get: func(e any) any {
			return get(e.(*T))
		},
		set: func(e any, v any) error {
			var zero V
			if v == nil {
				set(e.(*T), zero)

				return nil
			}

			tv, ok := v.(V)
			if !ok {
				return fmt.Errorf("%w: %T is not %T", ErrAccessorType, v, zero)
			}

			set(e.(*T), tv)

			return nil
		},
		isZero: func(e any) bool {
			return isZero(get(e.(*T)))
		},
	}}
}

// One binds a field holding at most one related value. R is a pointer or an
// interface.
func One[T, R any](name string, get func(*T) R, set func(*T, R)) FieldBinding[T] {
	return FieldBinding[T]{name: name, acc: &accessor{
		kind: kindOne,
		getRelated: func(e any) []any {
			r := get(e.(*T))
			if isZero(r) {
				return nil
			}

			return []any{r}
		},
		setRelated: func(e any, vs []any) error {
			if len(vs) == 0 {
				return nil
			}

			r, ok := vs[0].(R)
			if !ok {
				var zero R

				return fmt.Errorf("%w: %T is not %T", ErrAccessorType, vs[0], zero)
			}

			set(e.(*T), r)

			return nil
		},
	}}
}

// Many binds a field holding a list of related values.
func Many[T, R any](name string, get func(*T) []R, set func(*T, []R)) FieldBinding[T] {
	return FieldBinding[T]{name: name, acc: &accessor{
		kind: kindMany,
		getRelated: func(e any) []any {
			rs := get(e.(*T))
			out := make([]any, 0, len(rs))

			for _, r := range rs {
				if !isZero(r) {
					out = append(out, r)
				}
			}

			return out
		},
		setRelated: func(e any, vs []any) error {
			rs, err := typed[R](vs)
			if err != nil {
				return err
			}

			set(e.(*T), rs)

			return nil
		},
	}}
}

// DynamicMany binds a field holding related values keyed by relationship type.
func DynamicMany[T, R any](name string, get func(*T) map[string][]R, set func(*T, map[string][]R)) FieldBinding[T] {
	return FieldBinding[T]{name: name, acc: &accessor{
		kind: kindDynamic,
		getDynamic: func(e any) map[string][]any {
			m := get(e.(*T))
			if len(m) == 0 {
				return nil
			}

			out := make(map[string][]any, len(m))

			for typ, rs := range m {
				for _, r := range rs {
					if !isZero(r) {
						out[typ] = append(out[typ], r)
					}
				}
			}

			return out
		},
		setDynamic: func(e any, m map[string][]any) error {
			out := make(map[string][]R, len(m))

			for typ, vs := range m {
				rs, err := typed[R](vs)
				if err != nil {
					return fmt.Errorf("%s: %w", typ, err)
				}

				out[typ] = rs
			}

			set(e.(*T), out)

			return nil
		},
	}}
}

func typed[R any](vs []any) ([]R, error) {
	out := make([]R, len(vs))

	for i, v := range vs {
		r, ok := v.(R)
		if !ok {
			var zero R

			return nil, fmt.Errorf("%w: %T is not %T", ErrAccessorType, v, zero)
		}

		out[i] = r
	}

	return out, nil
}

// isZero reports whether v equals the zero value of V. Values of
// non-comparable types are never zero.
func isZero[V any](v V) (zero bool) {
	defer func() {
		if recover() != nil {
			zero = false
		}
	}()

	var z V

	return any(v) == any(z)
}
