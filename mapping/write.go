package mapping

import (
	"fmt"
	"slices"
	"sort"

	"github.com/rlch/ogm/schema"
)

// IDGenerator produces ids for entities with generated ids. Implementations
// must be stateless or synchronized.
type IDGenerator interface {
	Generate(primaryLabel string, entity any) (any, error)
}

// Persistence tells how a node state is written.
type Persistence int

const (
	// Unknown entities have an assigned or generated id and no version; they
	// are merged on their id.
	Unknown Persistence = iota

	// Created entities are not stored yet.
	Created

	// Existing entities are updated.
	Existing
)

func (p Persistence) String() string {
	switch p {
	case Created:
		return "new"
	case Existing:
		return "existing"
	default:
		return "unknown"
	}
}

// NodeState is the flattened form of one entity.
type NodeState struct {
	Description *schema.NodeDescription
	Entity      any
	Persistence Persistence

	// ID is the wire id. It is nil for new entities with an internal id.
	ID any

	// Labels are the static labels followed by the dynamic labels.
	Labels        []string
	DynamicLabels []string

	// Properties are the wire values by graph property name. The internal id
	// is never among them.
	Properties map[string]any

	// Version is the stored version expected by an update, and NextVersion the
	// version written. Both are zero without a version property.
	Version     int64
	NextVersion int64
}

// Dematerialize flattens entity. A generated id that is not set yet is
// produced by the named generator, exactly once, and assigned to the entity.
func (m *Mapper) Dematerialize(entity any, generators map[string]IDGenerator) (*NodeState, error) {
	b, err := m.bindingOf(entity)
	if err != nil {
		return nil, err
	}

	d, err := m.Describe(entity)
	if err != nil {
		return nil, err
	}

	st := &NodeState{
		Description: d,
		Entity:      entity,
		Properties:  map[string]any{},
	}

	if err := m.resolveID(b, d, entity, st, generators); err != nil {
		return nil, err
	}

	if err := m.flatten(b, d.TypeName, d.Properties, entity, st.Properties); err != nil {
		return nil, err
	}

	if !d.ID.IsInternal() {
		st.Properties[d.ID.Property] = st.ID
	}

	if d.HasVersion() {
		if err := m.resolveVersion(b, d, entity, st); err != nil {
			return nil, err
		}
	}

	st.Labels = d.StaticLabels()

	if d.DynamicLabelsField != "" {
		dynamic, _ := b.fields[d.DynamicLabelsField].get(entity).([]string)

		for _, l := range dynamic {
			if !slices.Contains(st.Labels, l) {
				st.Labels = append(st.Labels, l)
				st.DynamicLabels = append(st.DynamicLabels, l)
			}
		}
	}

	return st, nil
}

func (m *Mapper) resolveID(b *Binding, d *schema.NodeDescription, entity any, st *NodeState, generators map[string]IDGenerator) error {
	id, err := m.idWire(b, d, entity)
	if err != nil {
		return err
	}

	switch d.ID.Strategy {
	case schema.StrategyInternal:
		st.ID = id
		st.Persistence = Existing

		if id == nil {
			st.Persistence = Created
		}

		return nil
	case schema.StrategyGenerated:
		if id == nil {
			gen, ok := generators[d.ID.Generator]
			if !ok {
				return &Error{Type: d.TypeName, Path: []string{d.ID.Field}, Err: fmt.Errorf("%w: %s", ErrMissingGenerator, d.ID.Generator)}
			}

			v, err := gen.Generate(d.PrimaryLabel, entity)
			if err != nil {
				return &Error{Type: d.TypeName, Path: []string{d.ID.Field}, Err: err}
			}

			if err := b.fields[d.ID.Field].set(entity, v); err != nil {
				return fieldError(d.TypeName, d.ID.Field, err)
			}

			if id, err = m.idWire(b, d, entity); err != nil {
				return err
			}

			st.ID = id
			st.Persistence = Created

			return nil
		}
	case schema.StrategyAssigned:
		if id == nil {
			return &Error{Type: d.TypeName, Path: []string{d.ID.Field}, Err: ErrMissingID}
		}
	}

	st.ID = id
	st.Persistence = Unknown

	return nil
}

// resolveVersion computes the expected and next versions. A nil version
// counts as -1, so new entities start at 0.
func (m *Mapper) resolveVersion(b *Binding, d *schema.NodeDescription, entity any, st *NodeState) error {
	acc := b.fields[d.Version.Field]

	wire, err := m.conv.ToGraph(d.Version.Type.String(), acc.get(entity))
	if err != nil {
		return fieldError(d.TypeName, d.Version.Field, err)
	}

	current := int64(-1)
	if v, ok := toInt64(wire); ok {
		current = v
	}

	if st.Persistence == Unknown {
		st.Persistence = Existing
		if wire == nil || acc.isZero(entity) {
			st.Persistence = Created
		}
	}

	st.Version = current
	st.NextVersion = current + 1
	st.Properties[d.Version.Name] = st.NextVersion

	return nil
}

func (m *Mapper) flatten(b *Binding, typeName string, props []*schema.PropertyDescription, entity any, out map[string]any) error {
	for _, p := range props {
		wire, err := m.conv.ToGraph(p.Type.String(), b.fields[p.Field].get(entity))
		if err != nil {
			return fieldError(typeName, p.Field, err)
		}

		out[p.Name] = wire
	}

	return nil
}

// RelatedValue is one related entity of a relationship field.
type RelatedValue struct {
	// Type is the relationship type, the map key for dynamic relationships.
	Type   string
	Entity any

	// Properties holds the wire relationship properties for relationships
	// with a properties type.
	Properties map[string]any
}

// RelationshipValue is the content of one relationship field.
type RelationshipValue struct {
	Relationship *schema.RelationshipDescription
	Related      []RelatedValue
}

// Relationships returns the non-empty relationship fields of entity, in
// declaration order. Dynamic relationships are ordered by type and skip the
// types claimed by static fields.
func (m *Mapper) Relationships(entity any) ([]RelationshipValue, error) {
	b, err := m.bindingOf(entity)
	if err != nil {
		return nil, err
	}

	d, err := m.Describe(entity)
	if err != nil {
		return nil, err
	}

	var out []RelationshipValue

	for _, rel := range d.Relationships {
		acc := b.fields[rel.Field]
		rv := RelationshipValue{Relationship: rel}

		if acc.kind == kindDynamic {
			byType := acc.getDynamic(entity)
			claimed := rel.ClaimedTypes()
			types := make([]string, 0, len(byType))

			for typ := range byType {
				if !slices.Contains(claimed, typ) {
					types = append(types, typ)
				}
			}

			sort.Strings(types)

			for _, typ := range types {
				for i, v := range byType[typ] {
					related, err := m.relatedValue(rel, typ, v)
					if err != nil {
						return nil, fieldError(d.TypeName, fmt.Sprintf("%s[%s][%d]", rel.Field, typ, i), err)
					}

					rv.Related = append(rv.Related, related)
				}
			}
		} else {
			for i, v := range acc.getRelated(entity) {
				related, err := m.relatedValue(rel, rel.Type, v)
				if err != nil {
					return nil, fieldError(d.TypeName, fmt.Sprintf("%s[%d]", rel.Field, i), err)
				}

				rv.Related = append(rv.Related, related)
			}
		}

		if len(rv.Related) > 0 {
			out = append(out, rv)
		}
	}

	return out, nil
}

func (m *Mapper) relatedValue(rel *schema.RelationshipDescription, typ string, v any) (RelatedValue, error) {
	out := RelatedValue{Type: typ, Entity: v}

	if rel.HasProperties() {
		rp := rel.Properties
		b, ok := m.bindings[rp.TypeName]

		if !ok || !b.matches(v) {
			return out, fmt.Errorf("%w: %T is not %s", ErrUnresolvedRelationship, v, rp.TypeName)
		}

		targets := b.fields[rp.TargetField].getRelated(v)
		if len(targets) == 0 {
			return out, fmt.Errorf("%w: %s.%s is empty", ErrUnresolvedRelationship, rp.TypeName, rp.TargetField)
		}

		out.Entity = targets[0]
		out.Properties = map[string]any{}

		if err := m.flatten(b, rp.TypeName, rp.Properties, v, out.Properties); err != nil {
			return out, err
		}
	}

	d, err := m.Describe(out.Entity)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrUnresolvedRelationship, err)
	}

	if !d.IsA(rel.Target) {
		return out, fmt.Errorf("%w: %s is not a %s", ErrUnresolvedRelationship, d.TypeName, rel.Target.TypeName)
	}

	return out, nil
}

// ProcessedRelationships records the edges written during one save so an
// edge reachable from both of its ends is written once.
type ProcessedRelationships struct {
	edges    map[edge]struct{}
	arrivals map[arrival]struct{}
}

type edge struct {
	start, end any
	typ        string
}

type arrival struct {
	entity any
	field  string
}

// NewProcessedRelationships returns an empty set.
func NewProcessedRelationships() *ProcessedRelationships {
	return &ProcessedRelationships{
		edges:    map[edge]struct{}{},
		arrivals: map[arrival]struct{}{},
	}
}

// orient returns the stored edge for from and to along rel.
func orient(rel *schema.RelationshipDescription, typ string, from, to any) edge {
	if rel.Direction == schema.Incoming {
		return edge{start: to, end: from, typ: typ}
	}

	return edge{start: from, end: to, typ: typ}
}

// Processed reports whether the edge between from and to along rel, or its
// obverse, was already written.
func (p *ProcessedRelationships) Processed(rel *schema.RelationshipDescription, typ string, from, to any) bool {
	e := orient(rel, typ, from, to)
	if _, ok := p.edges[e]; ok {
		return true
	}

	if rel.Direction == schema.Undirected {
		_, ok := p.edges[edge{start: to, end: from, typ: typ}]

		return ok
	}

	return false
}

// MarkProcessed records the edge between from and to along rel and that to
// was reached through it.
func (p *ProcessedRelationships) MarkProcessed(rel *schema.RelationshipDescription, typ string, from, to any) {
	p.edges[orient(rel, typ, from, to)] = struct{}{}

	if o, ok := rel.Obverse(); ok {
		p.arrivals[arrival{entity: to, field: o.Field}] = struct{}{}
	}

	if rel.Direction == schema.Undirected {
		p.arrivals[arrival{entity: to, field: rel.Field}] = struct{}{}
	}
}

// Arrived reports whether entity was reached through the obverse of rel. The
// stored edges of rel must then not be removed.
func (p *ProcessedRelationships) Arrived(entity any, rel *schema.RelationshipDescription) bool {
	_, ok := p.arrivals[arrival{entity: entity, field: rel.Field}]

	return ok
}

// Len returns the number of processed edges.
func (p *ProcessedRelationships) Len() int {
	return len(p.edges)
}
