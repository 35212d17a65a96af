// Package convert converts field values to and from the values a statement
// runner accepts and returns.
package convert

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Converter converts one field type. ToGraph receives the field value and
// returns a wire value; FromGraph receives a wire value and returns a value of
// the field type. Both receive and return nil for absent values.
type Converter struct {
	ToGraph   func(v any) (any, error)
	FromGraph func(v any) (any, error)
}

// Registry maps type strings, as written in schema type descriptors, to
// converters. Registration is only allowed before Freeze; lookups after Freeze
// take no locks.
type Registry struct {
	mu         sync.RWMutex
	frozen     atomic.Bool
	converters map[string]Converter
	derived    map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		converters: map[string]Converter{},
		derived:    map[string]bool{},
	}
}

// Default returns a registry holding the default converters. It is not frozen.
func Default() *Registry {
	r := NewRegistry()
	registerDefaults(r)

	return r
}

// Register registers a converter for typeName, replacing any previous one.
func (r *Registry) Register(typeName string, c Converter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return fmt.Errorf("%w: %s", ErrFrozen, typeName)
	}

	r.converters[typeName] = c
	delete(r.derived, typeName)

	return nil
}

// registerDerived registers c unless an explicit converter exists.
func (r *Registry) registerDerived(typeName string, c Converter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return fmt.Errorf("%w: %s", ErrFrozen, typeName)
	}

	if _, ok := r.converters[typeName]; ok && !r.derived[typeName] {
		return nil
	}

	r.converters[typeName] = c
	r.derived[typeName] = true

	return nil
}

// Freeze disallows further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen.Store(true)
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Lookup returns the converter registered for typeName.
func (r *Registry) Lookup(typeName string) (Converter, error) {
	if !r.frozen.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	c, ok := r.converters[typeName]
	if !ok {
		return Converter{}, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	return c, nil
}

// Has reports whether a converter is registered for typeName.
func (r *Registry) Has(typeName string) bool {
	_, err := r.Lookup(typeName)

	return err == nil
}

// Types returns the registered type strings, sorted.
func (r *Registry) Types() []string {
	if !r.frozen.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	out := make([]string, 0, len(r.converters))
	for name := range r.converters {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// ToGraph converts a field value of type typeName to a wire value.
func (r *Registry) ToGraph(typeName string, v any) (any, error) {
	c, err := r.Lookup(typeName)
	if err != nil {
		return nil, err
	}

	return c.ToGraph(v)
}

// FromGraph converts a wire value to a value of type typeName.
func (r *Registry) FromGraph(typeName string, v any) (any, error) {
	c, err := r.Lookup(typeName)
	if err != nil {
		return nil, err
	}

	return c.FromGraph(v)
}

// Register registers typed conversions for name together with derived
// converters for "*name" (nil pointers are null) and "[]name" (wire lists).
// Explicit registrations of the derived names take precedence.
func Register[T any](r *Registry, name string, to func(T) (any, error), from func(any) (T, error)) error {
	if err := r.Register(name, Converter{
		ToGraph:   scalarTo(name, to),
		FromGraph: scalarFrom(from),
	}); err != nil {
		return err
	}

	if err := r.registerDerived("*"+name, Converter{
		ToGraph:   pointerTo(name, to),
		FromGraph: pointerFrom(from),
	}); err != nil {
		return err
	}

	return r.registerDerived("[]"+name, Converter{
		ToGraph:   sliceTo(name, to),
		FromGraph: sliceFrom(name, from),
	})
}

func mismatch(name string, v any) error {
	return fmt.Errorf("%w: %T is not %s", ErrNotConvertible, v, name)
}

func scalarTo[T any](name string, to func(T) (any, error)) func(any) (any, error) {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}

		t, ok := v.(T)
		if !ok {
			return nil, mismatch(name, v)
		}

		return to(t)
	}
}

func scalarFrom[T any](from func(any) (T, error)) func(any) (any, error) {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}

		return from(v)
	}
}

func pointerTo[T any](name string, to func(T) (any, error)) func(any) (any, error) {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}

		p, ok := v.(*T)
		if !ok {
			return nil, mismatch("*"+name, v)
		}

		if p == nil {
			return nil, nil
		}

		return to(*p)
	}
}

func pointerFrom[T any](from func(any) (T, error)) func(any) (any, error) {
	return func(v any) (any, error) {
		if v == nil {
			return (*T)(nil), nil
		}

		t, err := from(v)
		if err != nil {
			return nil, err
		}

		return &t, nil
	}
}

func sliceTo[T any](name string, to func(T) (any, error)) func(any) (any, error) {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}

		s, ok := v.([]T)
		if !ok {
			return nil, mismatch("[]"+name, v)
		}

		if s == nil {
			return nil, nil
		}

		out := make([]any, len(s))

		for i, e := range s {
			w, err := to(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}

			out[i] = w
		}

		return out, nil
	}
}

func sliceFrom[T any](name string, from func(any) (T, error)) func(any) (any, error) {
	return func(v any) (any, error) {
		if v == nil {
			return []T(nil), nil
		}

		var in []any

		switch l := v.(type) {
		case []any:
			in = l
		case []T:
			return l, nil
		default:
			return nil, mismatch("[]"+name, v)
		}

		out := make([]T, len(in))

		for i, e := range in {
			t, err := from(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}

			out[i] = t
		}

		return out, nil
	}
}
