package cypher

import "slices"

// NodePattern is (name:`Label` {properties}).
type NodePattern struct {
	Name       SymbolicName
	Labels     []string
	Properties Expression
}

// Node creates a node pattern. An empty name creates an anonymous node.
func Node(name string, labels ...string) NodePattern {
	return NodePattern{Name: Name(name), Labels: slices.Clone(labels)}
}

// AnyNode creates a node pattern without labels.
func AnyNode(name string) NodePattern {
	return NodePattern{Name: Name(name)}
}

func (n NodePattern) Accept(v Visitor) { visit(v, n, n.Properties) }
func (NodePattern) isPatternElement()  {}

// Named returns a copy of the node under a different name.
func (n NodePattern) Named(name string) NodePattern {
	n.Name = Name(name)
	n.Labels = slices.Clone(n.Labels)

	return n
}

// WithProperties returns a copy of the node with an inline property map or
// parameter.
func (n NodePattern) WithProperties(props Expression) NodePattern {
	n.Labels = slices.Clone(n.Labels)
	n.Properties = props

	return n
}

// SymbolicName returns the name of the node.
func (n NodePattern) SymbolicName() SymbolicName { return n.Name }

// Property references a property of the node.
func (n NodePattern) Property(key string) Property { return n.Name.Property(key) }

// Project creates a map projection of the node.
func (n NodePattern) Project(items ...MapProjectionItem) MapProjection {
	return Project(n.Name, items...)
}

// HasLabels is the label predicate n:`A`.
func (n NodePattern) HasLabels(labels ...string) NodeLabels {
	return HasLabels(n.Name, labels...)
}

// RelationshipTo creates (n)-[:TYPE]->(other).
func (n NodePattern) RelationshipTo(other NodePattern, types ...string) RelationshipChain {
	return chainFrom(n).RelationshipTo(other, types...)
}

// RelationshipFrom creates (n)<-[:TYPE]-(other).
func (n NodePattern) RelationshipFrom(other NodePattern, types ...string) RelationshipChain {
	return chainFrom(n).RelationshipFrom(other, types...)
}

// RelationshipBetween creates (n)-[:TYPE]-(other).
func (n NodePattern) RelationshipBetween(other NodePattern, types ...string) RelationshipChain {
	return chainFrom(n).RelationshipBetween(other, types...)
}

// Direction is the direction of a relationship pattern.
type Direction int

// Relationship directions, relative to the left node.
const (
	Outgoing Direction = iota
	Incoming
	Undirected
)

// Length is the variable length of a relationship pattern. A zero Length
// with neither bound set renders as *.
type Length struct {
	Min    int
	Max    int
	HasMin bool
	HasMax bool
}

// RelationshipDetails is the bracketed part of a relationship pattern together
// with its arrow.
type RelationshipDetails struct {
	Direction  Direction
	Name       SymbolicName
	Types      []string
	Properties Expression
	Length     *Length
}

func (r RelationshipDetails) Accept(v Visitor) { visit(v, r, r.Properties) }

// Empty reports whether the relationship renders without brackets.
func (r RelationshipDetails) Empty() bool {
	return r.Name.Value == "" && len(r.Types) == 0 && r.Properties == nil && r.Length == nil
}

// Segment is one relationship and the node it leads to.
type Segment struct {
	Relationship RelationshipDetails
	Node         NodePattern
}

// RelationshipChain is (a)-[r]->(b)-[s]->(c). A single relationship is a
// chain of one segment; methods that configure a relationship apply to the
// last segment.
type RelationshipChain struct {
	Start    NodePattern
	Segments []Segment
}

func chainFrom(n NodePattern) RelationshipChain {
	return RelationshipChain{Start: n}
}

func (c RelationshipChain) Accept(v Visitor) {
	children := make([]Visitable, 0, 1+2*len(c.Segments))
	children = append(children, c.Start)

	for _, s := range c.Segments {
		children = append(children, s.Relationship, s.Node)
	}

	visit(v, c, children...)
}

func (RelationshipChain) isPatternElement() {}

func (c RelationshipChain) extend(dir Direction, other NodePattern, types []string) RelationshipChain {
	segments := make([]Segment, len(c.Segments), len(c.Segments)+1)
	copy(segments, c.Segments)

	segments = append(segments, Segment{
		Relationship: RelationshipDetails{Direction: dir, Types: slices.Clone(types)},
		Node:         other,
	})

	return RelationshipChain{Start: c.Start, Segments: segments}
}

// RelationshipTo appends -[:TYPE]->(other).
func (c RelationshipChain) RelationshipTo(other NodePattern, types ...string) RelationshipChain {
	return c.extend(Outgoing, other, types)
}

// RelationshipFrom appends <-[:TYPE]-(other).
func (c RelationshipChain) RelationshipFrom(other NodePattern, types ...string) RelationshipChain {
	return c.extend(Incoming, other, types)
}

// RelationshipBetween appends -[:TYPE]-(other).
func (c RelationshipChain) RelationshipBetween(other NodePattern, types ...string) RelationshipChain {
	return c.extend(Undirected, other, types)
}

func (c RelationshipChain) withLast(fn func(*RelationshipDetails)) RelationshipChain {
	if len(c.Segments) == 0 {
		return c
	}

	segments := slices.Clone(c.Segments)
	last := &segments[len(segments)-1]
	last.Relationship.Types = slices.Clone(last.Relationship.Types)
	fn(&last.Relationship)

	return RelationshipChain{Start: c.Start, Segments: segments}
}

// Named names the last relationship.
func (c RelationshipChain) Named(name string) RelationshipChain {
	return c.withLast(func(r *RelationshipDetails) { r.Name = Name(name) })
}

// WithProperties sets the inline properties of the last relationship.
func (c RelationshipChain) WithProperties(props Expression) RelationshipChain {
	return c.withLast(func(r *RelationshipDetails) { r.Properties = props })
}

// Unbounded makes the last relationship variable length: *.
func (c RelationshipChain) Unbounded() RelationshipChain {
	return c.withLast(func(r *RelationshipDetails) { r.Length = &Length{} })
}

// Length makes the last relationship variable length: *min..max.
func (c RelationshipChain) Length(minHops, maxHops int) RelationshipChain {
	return c.withLast(func(r *RelationshipDetails) {
		r.Length = &Length{Min: minHops, Max: maxHops, HasMin: true, HasMax: true}
	})
}

// Min makes the last relationship variable length with a lower bound: *min..
func (c RelationshipChain) Min(minHops int) RelationshipChain {
	return c.withLast(func(r *RelationshipDetails) {
		r.Length = &Length{Min: minHops, HasMin: true}
	})
}

// SymbolicName returns the name of the last relationship.
func (c RelationshipChain) SymbolicName() SymbolicName {
	if len(c.Segments) == 0 {
		return SymbolicName{}
	}

	return c.Segments[len(c.Segments)-1].Relationship.Name
}

// Property references a property of the last relationship.
func (c RelationshipChain) Property(key string) Property {
	return c.SymbolicName().Property(key)
}

// NamedPath is name = pattern.
type NamedPath struct {
	Name    SymbolicName
	Element PatternElement
}

// Path names a pattern.
func Path(name string, element PatternElement) NamedPath {
	return NamedPath{Name: Name(name), Element: element}
}

func (p NamedPath) Accept(v Visitor) { visit(v, p, p.Element) }
func (NamedPath) isPatternElement()  {}

// SymbolicName returns the name of the path.
func (p NamedPath) SymbolicName() SymbolicName { return p.Name }
