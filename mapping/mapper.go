// Package mapping converts between result rows and object graphs.
//
// Types are bound explicitly with Bind and the Field, One, Many and
// DynamicMany accessors; the mapper never inspects entities by reflection.
// The read path (Materialize) builds object graphs from rows, reusing
// already materialized objects through a KnownObjects cache so cycles resolve
// to the same instances. The write path (Dematerialize, Relationships)
// flattens an entity into statement parameters and enumerates its related
// values; ProcessedRelationships keeps one save from writing an edge twice.
package mapping

import (
	"errors"
	"fmt"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/convert"
	"github.com/rlch/ogm/schema"
)

// Mapper maps entities of one schema. It is immutable and safe for
// concurrent use.
type Mapper struct {
	schema   *schema.Schema
	conv     *convert.Registry
	bindings map[string]*Binding
	order    []*Binding
}

// New creates a mapper, checking that every described type has a binding
// with accessors for all declared fields and that every property type has a
// converter. The registry is frozen.
func New(s *schema.Schema, conv *convert.Registry, bindings ...Binding) (*Mapper, error) {
	m := &Mapper{
		schema:   s,
		conv:     conv,
		bindings: make(map[string]*Binding, len(bindings)),
	}

	for i := range bindings {
		b := &bindings[i]

		_, node := s.Describe(b.typeName)
		_, rel := s.RelationshipProperties(b.typeName)

		if !node && !rel {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBinding, b.typeName)
		}

		m.bindings[b.typeName] = b
		m.order = append(m.order, b)
	}

	for _, d := range s.Descriptions() {
		if err := m.checkNode(d); err != nil {
			return nil, err
		}
	}

	for _, td := range s.Descriptors() {
		if !td.RelationshipProperties {
			continue
		}

		rp, _ := s.RelationshipProperties(td.Type)
		if err := m.checkRelationshipProperties(rp); err != nil {
			return nil, err
		}
	}

	conv.Freeze()

	return m, nil
}

func (m *Mapper) checkNode(d *schema.NodeDescription) error {
	b, ok := m.bindings[d.TypeName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingBinding, d.TypeName)
	}

	if err := m.checkField(b, d.ID.Field, kindValue, d.ID.Type.String()); err != nil {
		return err
	}

	for _, p := range d.Properties {
		if err := m.checkField(b, p.Field, kindValue, p.Type.String()); err != nil {
			return err
		}
	}

	if d.DynamicLabelsField != "" {
		if err := m.checkField(b, d.DynamicLabelsField, kindValue, ""); err != nil {
			return err
		}
	}

	for _, r := range d.Relationships {
		kind := kindOne

		switch {
		case r.Dynamic:
			kind = kindDynamic
		case r.Many:
			kind = kindMany
		}

		if err := m.checkField(b, r.Field, kind, ""); err != nil {
			return err
		}
	}

	return nil
}

func (m *Mapper) checkRelationshipProperties(rp *schema.RelationshipPropertiesDescription) error {
	b, ok := m.bindings[rp.TypeName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingBinding, rp.TypeName)
	}

	for _, p := range rp.Properties {
		if err := m.checkField(b, p.Field, kindValue, p.Type.String()); err != nil {
			return err
		}
	}

	return m.checkField(b, rp.TargetField, kindOne, "")
}

func (m *Mapper) checkField(b *Binding, field string, kind fieldKind, typ string) error {
	acc, ok := b.fields[field]
	if !ok || acc.kind != kind {
		return fmt.Errorf("%w: %s.%s needs a %s accessor", ErrMissingAccessor, b.typeName, field, kind)
	}

	if typ != "" && !m.conv.Has(typ) {
		return fmt.Errorf("%s.%s: %w", b.typeName, field, convert.ErrUnknownType)
	}

	return nil
}

// Schema returns the mapped schema.
func (m *Mapper) Schema() *schema.Schema {
	return m.schema
}

// Converters returns the frozen conversion registry.
func (m *Mapper) Converters() *convert.Registry {
	return m.conv
}

func (m *Mapper) bindingOf(entity any) (*Binding, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnknownEntity)
	}

	for _, b := range m.order {
		if b.matches(entity) {
			return b, nil
		}
	}

	return nil, fmt.Errorf("%w: %T", ErrUnknownEntity, entity)
}

// Describe returns the node description of an entity.
func (m *Mapper) Describe(entity any) (*schema.NodeDescription, error) {
	b, err := m.bindingOf(entity)
	if err != nil {
		return nil, err
	}

	d, ok := m.schema.Describe(b.typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a node type", ErrUnknownEntity, b.typeName)
	}

	return d, nil
}

// IDValue returns the wire value of an entity's id, or nil when it has none.
func (m *Mapper) IDValue(entity any) (any, error) {
	b, err := m.bindingOf(entity)
	if err != nil {
		return nil, err
	}

	d, err := m.Describe(entity)
	if err != nil {
		return nil, err
	}

	return m.idWire(b, d, entity)
}

func (m *Mapper) idWire(b *Binding, d *schema.NodeDescription, entity any) (any, error) {
	acc := b.fields[d.ID.Field]
	if acc.isZero(entity) {
		return nil, nil
	}

	wire, err := m.conv.ToGraph(d.ID.Type.String(), acc.get(entity))
	if err != nil {
		return nil, fieldError(d.TypeName, d.ID.Field, err)
	}

	return wire, nil
}

// ConvertID converts an id given by a caller to its wire value. Pointer id
// types also accept the pointed-to type.
func (m *Mapper) ConvertID(d *schema.NodeDescription, id any) (any, error) {
	wire, err := m.conv.ToGraph(d.ID.Type.String(), id)
	if err == nil || d.ID.Type.Kind != ogm.TypeKindPointer || !errors.Is(err, convert.ErrNotConvertible) {
		return wire, err
	}

	return m.conv.ToGraph(d.ID.Type.Elem.String(), id)
}

// SetInternalID stores the database-assigned identity on an entity with an
// internal id. It does nothing for other id strategies.
func (m *Mapper) SetInternalID(entity any, id int64) error {
	b, err := m.bindingOf(entity)
	if err != nil {
		return err
	}

	d, err := m.Describe(entity)
	if err != nil {
		return err
	}

	if !d.ID.IsInternal() {
		return nil
	}

	return m.setValue(b, d.TypeName, d.ID.Field, d.ID.Type, entity, id)
}

// SetVersion stores the version written by a save.
func (m *Mapper) SetVersion(entity any, version int64) error {
	b, err := m.bindingOf(entity)
	if err != nil {
		return err
	}

	d, err := m.Describe(entity)
	if err != nil {
		return err
	}

	if !d.HasVersion() {
		return nil
	}

	return m.setValue(b, d.TypeName, d.Version.Field, d.Version.Type, entity, version)
}

// setValue converts a wire value to typ and assigns it to field.
func (m *Mapper) setValue(b *Binding, typeName, field string, typ *ogm.Type, entity, wire any) error {
	v, err := m.conv.FromGraph(typ.String(), wire)
	if err != nil {
		return fieldError(typeName, field, err)
	}

	if err := b.fields[field].set(entity, v); err != nil {
		return fieldError(typeName, field, err)
	}

	return nil
}
