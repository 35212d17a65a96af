package schema

import (
	"fmt"
	"slices"

	"github.com/rlch/ogm"
)

// Schema is the frozen mapping context: one NodeDescription per type, indexed
// by type name and primary label. It is safe for concurrent reads.
type Schema struct {
	nodes    []*NodeDescription
	byType   map[string]*NodeDescription
	byLabel  map[string]*NodeDescription
	relProps map[string]*RelationshipPropertiesDescription
	outgoing map[string][]*RelationshipDescription
	batch    []TypeDescriptor
}

// New validates a registration batch and builds the schema.
func New(batch []TypeDescriptor) (*Schema, error) {
	b := &builder{
		batch:    batch,
		pending:  map[string]*TypeDescriptor{},
		resolved: map[string]*NodeDescription{},
		visiting: map[string]bool{},
		s: &Schema{
			byType:   map[string]*NodeDescription{},
			byLabel:  map[string]*NodeDescription{},
			relProps: map[string]*RelationshipPropertiesDescription{},
			outgoing: map[string][]*RelationshipDescription{},
			batch:    slices.Clone(batch),
		},
	}

	if err := b.build(); err != nil {
		return nil, err
	}

	return b.s, nil
}

// MustNew is like New but panics on an invalid batch.
func MustNew(batch []TypeDescriptor) *Schema {
	s, err := New(batch)
	if err != nil {
		panic(err)
	}

	return s
}

// Describe returns the description of a node type.
func (s *Schema) Describe(typeName string) (*NodeDescription, bool) {
	d, ok := s.byType[typeName]

	return d, ok
}

// ByLabel returns the node type whose primary label is label.
func (s *Schema) ByLabel(label string) (*NodeDescription, bool) {
	d, ok := s.byLabel[label]

	return d, ok
}

// RelationshipProperties returns the description of a relationship
// properties type.
func (s *Schema) RelationshipProperties(typeName string) (*RelationshipPropertiesDescription, bool) {
	d, ok := s.relProps[typeName]

	return d, ok
}

// Descriptions returns all node descriptions in registration order.
func (s *Schema) Descriptions() []*NodeDescription {
	return slices.Clone(s.nodes)
}

// Descriptors returns the batch the schema was built from.
func (s *Schema) Descriptors() []TypeDescriptor {
	return slices.Clone(s.batch)
}

// OutgoingRelationships returns the relationships traversed from entities
// whose primary label is label: those declared on the type and inherited
// from its ancestors, in any direction.
func (s *Schema) OutgoingRelationships(label string) []*RelationshipDescription {
	return slices.Clone(s.outgoing[label])
}

// HasCycles reports whether the relationship graph reachable from d contains
// a cycle. Reads of cyclic types cannot be expressed as one nested projection.
func (s *Schema) HasCycles(d *NodeDescription) bool {
	return d.cyclic
}

// Concrete returns the most specific description among d and its descendants
// whose static labels are all contained in labels. It returns d when no
// descendant matches.
func (s *Schema) Concrete(d *NodeDescription, labels []string) *NodeDescription {
	best := d

	for _, c := range d.Descendants() {
		if c.Depth() <= best.Depth() {
			continue
		}

		matches := true

		for _, l := range c.staticLabels {
			if !slices.Contains(labels, l) {
				matches = false

				break
			}
		}

		if matches {
			best = c
		}
	}

	return best
}

type builder struct {
	batch    []TypeDescriptor
	pending  map[string]*TypeDescriptor
	resolved map[string]*NodeDescription
	visiting map[string]bool
	order    []*NodeDescription
	s        *Schema
}

func (b *builder) build() error {
	for i := range b.batch {
		td := &b.batch[i]

		if _, dup := b.pending[td.Type]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateType, td.Type)
		}

		if _, dup := b.s.relProps[td.Type]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateType, td.Type)
		}

		if td.RelationshipProperties {
			rp, err := relationshipProperties(td)
			if err != nil {
				return err
			}

			b.s.relProps[td.Type] = rp

			continue
		}

		b.pending[td.Type] = td
	}

	for i := range b.batch {
		td := &b.batch[i]
		if td.RelationshipProperties {
			continue
		}

		d, err := b.resolve(td.Type)
		if err != nil {
			return err
		}

		b.s.nodes = append(b.s.nodes, d)
	}

	for _, d := range b.order {
		if err := b.relationships(d); err != nil {
			return err
		}
	}

	for _, d := range b.order {
		for _, r := range d.Relationships {
			for _, o := range r.Target.Relationships {
				if r.IsObverseOf(o) {
					r.obverse = o

					break
				}
			}
		}

		d.cyclic = reachesCycle(d)
		b.s.outgoing[d.PrimaryLabel] = d.Relationships
	}

	return nil
}

func (b *builder) resolve(name string) (*NodeDescription, error) {
	if d, ok := b.resolved[name]; ok {
		return d, nil
	}

	td, ok := b.pending[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParent, name)
	}

	if b.visiting[name] {
		return nil, fmt.Errorf("%w: %s", ErrInheritanceCycle, name)
	}

	b.visiting[name] = true
	defer delete(b.visiting, name)

	var parent *NodeDescription

	if td.Parent != "" {
		p, err := b.resolve(td.Parent)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}

		parent = p
	}

	d, err := describe(td, parent)
	if err != nil {
		return nil, err
	}

	if other, dup := b.s.byLabel[d.PrimaryLabel]; dup {
		return nil, fmt.Errorf("%w: %s on %s and %s", ErrDuplicateLabel, d.PrimaryLabel, other.TypeName, d.TypeName)
	}

	if parent != nil {
		parent.Children = append(parent.Children, d)
	}

	b.resolved[name] = d
	b.s.byType[name] = d
	b.s.byLabel[d.PrimaryLabel] = d
	b.order = append(b.order, d)

	return d, nil
}

func describe(td *TypeDescriptor, parent *NodeDescription) (*NodeDescription, error) {
	d := &NodeDescription{
		TypeName:         td.Type,
		PrimaryLabel:     td.Label,
		AdditionalLabels: slices.Clone(td.Labels),
		Parent:           parent,
	}

	if d.PrimaryLabel == "" {
		d.PrimaryLabel = td.Type
	}

	d.staticLabels = appendUnique(nil, d.PrimaryLabel)
	d.staticLabels = appendUnique(d.staticLabels, d.AdditionalLabels...)

	if parent != nil {
		d.staticLabels = appendUnique(d.staticLabels, parent.staticLabels...)
		d.ID = parent.ID
		d.Properties = slices.Clone(parent.Properties)
		d.DynamicLabelsField = parent.DynamicLabelsField
		d.Version = parent.Version
	}

	if td.ID != nil {
		id, err := describeID(td.Type, td.ID)
		if err != nil {
			return nil, err
		}

		d.ID = id
	}

	if d.ID == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingID, td.Type)
	}

	props, err := describeProperties(td.Type, d.Properties, td.Properties, d.ID)
	if err != nil {
		return nil, err
	}

	d.Properties = props

	if td.DynamicLabels != nil {
		typ := td.DynamicLabels.Type
		if typ == "" {
			typ = "[]string"
		}

		t, err := ogm.ParseTypeString(typ)
		if err != nil || !t.IsStringSlice() {
			return nil, fmt.Errorf("%w: %s.%s is %s", ErrInvalidDynamicLabels, td.Type, td.DynamicLabels.Field, typ)
		}

		if _, clash := d.Property(td.DynamicLabels.Field); clash {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, td.Type, td.DynamicLabels.Field)
		}

		d.DynamicLabelsField = td.DynamicLabels.Field
	}

	if td.Version != "" {
		p, ok := d.Property(td.Version)
		if !ok || !isInt64(p.Type) {
			return nil, fmt.Errorf("%w: %s.%s", ErrInvalidVersion, td.Type, td.Version)
		}

		d.Version = p
	}

	return d, nil
}

func describeID(typeName string, id *IDDescriptor) (*IDDescription, error) {
	out := &IDDescription{
		Strategy:  id.Strategy,
		Field:     id.Field,
		Property:  id.Property,
		Generator: id.Generator,
	}

	if out.Field == "" {
		return nil, fmt.Errorf("%w: %s has no id field", ErrMissingID, typeName)
	}

	typ := id.Type

	switch id.Strategy {
	case StrategyInternal:
		if id.Property != "" {
			return nil, fmt.Errorf("%w: %s.%s", ErrInternalIDProperty, typeName, id.Field)
		}

		if typ == "" {
			typ = "*int64"
		}
	case StrategyAssigned, StrategyGenerated:
		if out.Property == "" {
			out.Property = id.Field
		}

		if typ == "" {
			typ = "string"
		}

		if id.Strategy == StrategyGenerated && id.Generator == "" {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingGenerator, typeName, id.Field)
		}
	default:
		return nil, fmt.Errorf("%w: %s on %s", ErrInvalidStrategy, id.Strategy, typeName)
	}

	t, err := ogm.ParseTypeString(typ)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidType, typeName, id.Field, err)
	}

	if id.Strategy == StrategyInternal && !isInt64(t) {
		return nil, fmt.Errorf("%w: %s.%s is %s", ErrInvalidInternalID, typeName, id.Field, typ)
	}

	out.Type = t

	return out, nil
}

func describeProperties(
	typeName string,
	inherited []*PropertyDescription,
	declared []PropertyDescriptor,
	id *IDDescription,
) ([]*PropertyDescription, error) {
	out := slices.Clone(inherited)

	for _, pd := range declared {
		name := pd.Property
		if name == "" {
			name = pd.Field
		}

		if pd.Field == id.Field {
			return nil, fmt.Errorf("%w: %s.%s is the id field", ErrDuplicateField, typeName, pd.Field)
		}

		if id.Property != "" && name == id.Property {
			return nil, fmt.Errorf("%w: %s.%s maps to id property %q", ErrDuplicateProperty, typeName, pd.Field, name)
		}

		for _, existing := range out {
			if existing.Field == pd.Field {
				return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, typeName, pd.Field)
			}

			if existing.Name == name {
				return nil, fmt.Errorf("%w: %s.%s and %s.%s both map to %q",
					ErrDuplicateProperty, typeName, existing.Field, typeName, pd.Field, name)
			}
		}

		t, err := ogm.ParseTypeString(pd.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidType, typeName, pd.Field, err)
		}

		out = append(out, &PropertyDescription{
			Field:       pd.Field,
			Name:        name,
			Type:        t,
			Constructor: pd.Constructor,
		})
	}

	return out, nil
}

func relationshipProperties(td *TypeDescriptor) (*RelationshipPropertiesDescription, error) {
	if td.Target == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingTargetField, td.Type)
	}

	props, err := describeProperties(td.Type, nil, td.Properties, &IDDescription{Field: td.Target})
	if err != nil {
		return nil, err
	}

	return &RelationshipPropertiesDescription{
		TypeName:    td.Type,
		Properties:  props,
		TargetField: td.Target,
	}, nil
}

func (b *builder) relationships(d *NodeDescription) error {
	if d.Parent != nil {
		for _, pr := range d.Parent.Relationships {
			r := *pr
			r.Source = d
			r.obverse = nil
			d.Relationships = append(d.Relationships, &r)
		}
	}

	td := b.pending[d.TypeName]

	for _, rd := range td.Relationships {
		if rd.Field == d.ID.Field || rd.Field == d.DynamicLabelsField {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateField, d.TypeName, rd.Field)
		}

		if _, clash := d.Property(rd.Field); clash {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateField, d.TypeName, rd.Field)
		}

		if _, clash := d.Relationship(rd.Field); clash {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateField, d.TypeName, rd.Field)
		}

		if !rd.Dynamic && rd.Type == "" {
			return fmt.Errorf("%w: %s.%s", ErrMissingRelationshipType, d.TypeName, rd.Field)
		}

		dir, err := ParseDirection(rd.Direction)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", d.TypeName, rd.Field, err)
		}

		target, ok := b.s.byType[rd.Target]
		if !ok {
			return fmt.Errorf("%w: %s.%s targets %q", ErrUnknownTarget, d.TypeName, rd.Field, rd.Target)
		}

		r := &RelationshipDescription{
			Field:     rd.Field,
			Type:      rd.Type,
			Dynamic:   rd.Dynamic,
			Direction: dir,
			Many:      rd.Many || rd.Dynamic,
			Source:    d,
			Target:    target,
		}

		if rd.Dynamic {
			r.Type = ""
		}

		if rd.Properties != "" {
			rp, ok := b.s.relProps[rd.Properties]
			if !ok {
				return fmt.Errorf("%w: %s.%s uses %q", ErrUnknownRelationshipProperties, d.TypeName, rd.Field, rd.Properties)
			}

			r.Properties = rp
		}

		d.Relationships = append(d.Relationships, r)
	}

	dynamicTargets := map[*NodeDescription]string{}

	for _, r := range d.Relationships {
		if !r.Dynamic {
			continue
		}

		if other, dup := dynamicTargets[r.Target]; dup {
			return fmt.Errorf("%w: %s.%s and %s.%s both target %s",
				ErrAmbiguousDynamicRelationship, d.TypeName, other, d.TypeName, r.Field, r.Target.TypeName)
		}

		dynamicTargets[r.Target] = r.Field
	}

	return nil
}

// reachesCycle reports whether a cycle is reachable from d. Edges lead from a
// type to the targets of its relationships and to their descendants.
func reachesCycle(d *NodeDescription) bool {
	const (
		white = iota
		grey
		black
	)

	color := map[*NodeDescription]int{}

	var visit func(n *NodeDescription) bool

	visit = func(n *NodeDescription) bool {
		color[n] = grey

		for _, r := range n.Relationships {
			for _, t := range r.Target.Descendants() {
				switch color[t] {
				case grey:
					return true
				case white:
					if visit(t) {
						return true
					}
				}
			}
		}

		color[n] = black

		return false
	}

	return visit(d)
}

func isInt64(t *ogm.Type) bool {
	if t.Kind == ogm.TypeKindPointer {
		t = t.Elem
	}

	return t.Kind == ogm.TypeKindPrimitive && t.Name == "int64"
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}

	return dst
}
