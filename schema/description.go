package schema

import (
	"slices"

	"github.com/rlch/ogm"
)

// NodeDescription is the resolved, immutable description of a node type.
type NodeDescription struct {
	TypeName         string
	PrimaryLabel     string
	AdditionalLabels []string

	ID            *IDDescription
	Properties    []*PropertyDescription
	Relationships []*RelationshipDescription

	Parent   *NodeDescription
	Children []*NodeDescription

	// DynamicLabelsField is the field holding runtime labels, if any.
	DynamicLabelsField string

	// Version is the optimistic locking property, if any.
	Version *PropertyDescription

	staticLabels []string
	cyclic       bool
}

// StaticLabels returns the primary label, the additional labels and the
// labels of all ancestors, in that order, without duplicates.
func (d *NodeDescription) StaticLabels() []string {
	return slices.Clone(d.staticLabels)
}

// HasStaticLabel reports whether label is one of the static labels.
func (d *NodeDescription) HasStaticLabel(label string) bool {
	return slices.Contains(d.staticLabels, label)
}

// Property returns the property mapped from field.
func (d *NodeDescription) Property(field string) (*PropertyDescription, bool) {
	for _, p := range d.Properties {
		if p.Field == field {
			return p, true
		}
	}

	return nil, false
}

// PropertyNamed returns the property stored under the graph name.
func (d *NodeDescription) PropertyNamed(name string) (*PropertyDescription, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return nil, false
}

// Relationship returns the relationship declared on field.
func (d *NodeDescription) Relationship(field string) (*RelationshipDescription, bool) {
	for _, r := range d.Relationships {
		if r.Field == field {
			return r, true
		}
	}

	return nil, false
}

// HasVersion reports whether the type uses optimistic locking.
func (d *NodeDescription) HasVersion() bool {
	return d.Version != nil
}

// IsA reports whether d is other or one of its descendants.
func (d *NodeDescription) IsA(other *NodeDescription) bool {
	for cur := d; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}

	return false
}

// Descendants returns d followed by all of its descendants, depth first.
func (d *NodeDescription) Descendants() []*NodeDescription {
	out := []*NodeDescription{d}
	for _, c := range d.Children {
		out = append(out, c.Descendants()...)
	}

	return out
}

// Depth returns the number of ancestors.
func (d *NodeDescription) Depth() int {
	n := 0
	for cur := d.Parent; cur != nil; cur = cur.Parent {
		n++
	}

	return n
}

func (d *NodeDescription) String() string {
	return d.TypeName + "(:" + d.PrimaryLabel + ")"
}

// IDDescription describes how an entity is identified.
type IDDescription struct {
	Strategy Strategy

	// Field is the field holding the id.
	Field string

	// Property is the graph property holding the id. It is empty for internal ids.
	Property string

	// Type is the Go type of the id field.
	Type *ogm.Type

	// Generator names the id generator for generated ids.
	Generator string
}

// IsInternal reports whether the id is the database-assigned identity.
func (i *IDDescription) IsInternal() bool {
	return i.Strategy == StrategyInternal
}

// PropertyDescription maps a field to a graph property.
type PropertyDescription struct {
	Field       string
	Name        string
	Type        *ogm.Type
	Constructor bool
}

// RelationshipDescription is a resolved relationship declaration.
type RelationshipDescription struct {
	Field     string
	Type      string
	Dynamic   bool
	Direction Direction
	Many      bool

	Source *NodeDescription
	Target *NodeDescription

	// Properties describes the relationship properties type, if any.
	Properties *RelationshipPropertiesDescription

	obverse *RelationshipDescription
}

// Obverse returns the same relationship declared from the other end, if the
// target type declares one.
func (r *RelationshipDescription) Obverse() (*RelationshipDescription, bool) {
	return r.obverse, r.obverse != nil
}

// IsObverseOf reports whether r and o describe the same edge from opposite ends:
// same type, swapped endpoints and complementary directions.
func (r *RelationshipDescription) IsObverseOf(o *RelationshipDescription) bool {
	if r == o || r.Dynamic || o.Dynamic || r.Type != o.Type {
		return false
	}

	if r.Direction.Reverse() != o.Direction {
		return false
	}

	return related(r.Source, o.Target) && related(r.Target, o.Source)
}

func related(a, b *NodeDescription) bool {
	return a.IsA(b) || b.IsA(a)
}

// ClaimedTypes lists the relationship types that static fields of the source
// declare towards the target of a dynamic relationship. Those edges belong to
// the static fields, so the dynamic field neither reads nor writes them.
func (r *RelationshipDescription) ClaimedTypes() []string {
	if !r.Dynamic || r.Source == nil {
		return nil
	}

	var out []string

	for _, o := range r.Source.Relationships {
		if !o.Dynamic && o.Target == r.Target && !slices.Contains(out, o.Type) {
			out = append(out, o.Type)
		}
	}

	return out
}

// HasProperties reports whether the relationship carries a properties type.
func (r *RelationshipDescription) HasProperties() bool {
	return r.Properties != nil
}

// RelationshipPropertiesDescription describes a type holding the properties of
// a relationship together with the related entity.
type RelationshipPropertiesDescription struct {
	TypeName   string
	Properties []*PropertyDescription

	// TargetField holds the related entity.
	TargetField string
}

// Property returns the property mapped from field.
func (d *RelationshipPropertiesDescription) Property(field string) (*PropertyDescription, bool) {
	for _, p := range d.Properties {
		if p.Field == field {
			return p, true
		}
	}

	return nil, false
}
