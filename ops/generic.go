package ops

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Find returns the entity of type *T with id. T must be bound; the schema
// type is looked up from its binding.
func Find[T any](ctx context.Context, t *Template, id any) (*T, error) {
	d, err := t.mapper.Describe(new(T))
	if err != nil {
		return nil, err
	}

	v, err := t.FindByID(ctx, d.TypeName, id)
	if err != nil {
		return nil, err
	}

	out, ok := v.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not %T", ErrTypeMismatch, v, out)
	}

	return out, nil
}

// FindAllOf returns every entity of type *T. Entities of a more specific
// type with another binding are skipped.
func FindAllOf[T any](ctx context.Context, t *Template) ([]*T, error) {
	d, err := t.mapper.Describe(new(T))
	if err != nil {
		return nil, err
	}

	all, err := t.FindAll(ctx, d.TypeName)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(all))

	for _, v := range all {
		if e, ok := v.(*T); ok {
			out = append(out, e)
		}
	}

	return out, nil
}

// GeneratorFunc adapts a function to mapping.IDGenerator.
type GeneratorFunc func(primaryLabel string, entity any) (any, error)

// Generate calls f.
func (f GeneratorFunc) Generate(primaryLabel string, entity any) (any, error) {
	return f(primaryLabel, entity)
}

// UUIDGenerator generates random (version 4) UUIDs as strings. It is
// stateless.
type UUIDGenerator struct{}

// Generate returns a new UUID string.
func (UUIDGenerator) Generate(string, any) (any, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	return id.String(), nil
}
