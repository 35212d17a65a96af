package cypher

import "slices"

// SymbolicName is a variable bound in a pattern, WITH or UNWIND.
type SymbolicName struct {
	Value string
}

// Name creates a symbolic name.
func Name(value string) SymbolicName {
	return SymbolicName{Value: value}
}

func (s SymbolicName) Accept(v Visitor) { visit(v, s) }
func (SymbolicName) isExpression()      {}

// Property references a property of the named element.
func (s SymbolicName) Property(key string) Property {
	return Property{Owner: s, Key: key}
}

// Project creates a map projection on the named element.
func (s SymbolicName) Project(items ...MapProjectionItem) MapProjection {
	return Project(s, items...)
}

// Property is a property lookup. It refers to its owner only by name.
type Property struct {
	Owner SymbolicName
	Key   string
}

// PropertyOf creates a property lookup on a symbolic name.
func PropertyOf(owner string, key string) Property {
	return Property{Owner: Name(owner), Key: key}
}

func (p Property) Accept(v Visitor) { visit(v, p) }
func (Property) isExpression()      {}
func (Property) isRemoveItem()      {}

// Parameter is a $placeholder. A bound parameter carries its value, which the
// renderer collects into the parameter map.
type Parameter struct {
	Name  string
	Value any
	Bound bool
}

// Param creates an unbound parameter. Its value is supplied when the statement
// is run.
func Param(name string) Parameter {
	return Parameter{Name: name}
}

// ParamWithValue creates a parameter bound to value.
func ParamWithValue(name string, value any) Parameter {
	return Parameter{Name: name, Value: value, Bound: true}
}

func (p Parameter) Accept(v Visitor) { visit(v, p) }
func (Parameter) isExpression()      {}

// Literal is a constant inlined into the query text. Supported values are
// nil, bool, string, integers, floats and slices and string-keyed maps of those.
type Literal struct {
	Value any
}

// LiteralOf creates a literal.
func LiteralOf(value any) Literal {
	return Literal{Value: value}
}

// Null is the NULL literal.
func Null() Literal {
	return Literal{}
}

func (l Literal) Accept(v Visitor) { visit(v, l) }
func (Literal) isExpression()      {}

// ListExpression is a list of expressions: [a, b].
type ListExpression struct {
	Elements []Expression
}

// ListOf creates a list expression.
func ListOf(elements ...Expression) ListExpression {
	return ListExpression{Elements: slices.Clone(elements)}
}

func (l ListExpression) Accept(v Visitor) {
	children := make([]Visitable, len(l.Elements))
	for i, e := range l.Elements {
		children[i] = e
	}

	visit(v, l, children...)
}

func (ListExpression) isExpression() {}

// MapEntry is one key: value pair of a map expression or map projection.
type MapEntry struct {
	Key   string
	Value Expression
}

// Entry creates a map entry.
func Entry(key string, value Expression) MapEntry {
	return MapEntry{Key: key, Value: value}
}

func (e MapEntry) Accept(v Visitor)   { visit(v, e, e.Value) }
func (MapEntry) isMapProjectionItem() {}

// MapExpression is a map literal with expression values: {k: v}. Entries
// render in the order given.
type MapExpression struct {
	Entries []MapEntry
}

// MapOf creates a map expression.
func MapOf(entries ...MapEntry) MapExpression {
	return MapExpression{Entries: slices.Clone(entries)}
}

func (m MapExpression) Accept(v Visitor) {
	children := make([]Visitable, len(m.Entries))
	for i, e := range m.Entries {
		children[i] = e
	}

	visit(v, m, children...)
}

func (MapExpression) isExpression() {}

// Asterisk is *. As a RETURN or WITH item it renders as the list of names in
// scope; as a function argument it renders as *.
type Asterisk struct{}

func (a Asterisk) Accept(v Visitor) { visit(v, a) }
func (Asterisk) isExpression()      {}

// Aliased is expression AS alias.
type Aliased struct {
	Expression Expression
	Alias      string
}

// As aliases an expression.
func As(e Expression, alias string) Aliased {
	return Aliased{Expression: e, Alias: alias}
}

func (a Aliased) Accept(v Visitor) { visit(v, a, a.Expression) }
func (Aliased) isExpression()      {}

// FunctionInvocation is a function call.
type FunctionInvocation struct {
	Name     string
	Distinct bool
	Args     []Expression
}

func (f FunctionInvocation) Accept(v Visitor) {
	children := make([]Visitable, len(f.Args))
	for i, a := range f.Args {
		children[i] = a
	}

	visit(v, f, children...)
}

func (FunctionInvocation) isExpression() {}
func (FunctionInvocation) isCondition()  {}

// MapProjectionItem is one item of a map projection.
type MapProjectionItem interface {
	Visitable
	isMapProjectionItem()
}

// AllProperties is the .* projection item.
type AllProperties struct{}

func (a AllProperties) Accept(v Visitor)   { visit(v, a) }
func (AllProperties) isMapProjectionItem() {}

// PropertySelector is the .key projection item.
type PropertySelector struct {
	Key string
}

// Select creates a .key projection item.
func Select(key string) PropertySelector {
	return PropertySelector{Key: key}
}

func (p PropertySelector) Accept(v Visitor)   { visit(v, p) }
func (PropertySelector) isMapProjectionItem() {}

// MapProjection is subject{.*, .key, key: expr}.
type MapProjection struct {
	Subject SymbolicName
	Items   []MapProjectionItem
}

// Project creates a map projection.
func Project(subject SymbolicName, items ...MapProjectionItem) MapProjection {
	return MapProjection{Subject: subject, Items: slices.Clone(items)}
}

// And returns a copy of the projection with more items.
func (m MapProjection) And(items ...MapProjectionItem) MapProjection {
	return MapProjection{Subject: m.Subject, Items: append(slices.Clone(m.Items), items...)}
}

func (m MapProjection) Accept(v Visitor) {
	children := make([]Visitable, len(m.Items))
	for i, it := range m.Items {
		children[i] = it
	}

	visit(v, m, children...)
}

func (MapProjection) isExpression() {}

// PatternComprehension is [pattern WHERE condition | projection]. Names
// declared in the pattern are local to the comprehension.
type PatternComprehension struct {
	Pattern    PatternElement
	Where      Condition
	Projection Expression
}

// Comprehend creates a pattern comprehension. where may be nil.
func Comprehend(pattern PatternElement, where Condition, projection Expression) PatternComprehension {
	return PatternComprehension{Pattern: pattern, Where: where, Projection: projection}
}

func (p PatternComprehension) Accept(v Visitor) {
	var where Visitable
	if p.Where != nil {
		where = Where{Condition: p.Where}
	}

	visit(v, p, p.Pattern, where, p.Projection)
}

func (PatternComprehension) isExpression() {}

// SortItem is one ORDER BY item.
type SortItem struct {
	Expression Expression
	Descending bool
}

// Asc sorts ascending by e.
func Asc(e Expression) SortItem {
	return SortItem{Expression: e}
}

// Desc sorts descending by e.
func Desc(e Expression) SortItem {
	return SortItem{Expression: e, Descending: true}
}

func (s SortItem) Accept(v Visitor) { visit(v, s, s.Expression) }
