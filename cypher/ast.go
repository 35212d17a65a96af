package cypher

// Visitor is called on entering and leaving every node of a syntax tree.
// Children are visited between the Enter and Leave of their parent, in
// source order.
type Visitor interface {
	Enter(node Visitable)
	Leave(node Visitable)
}

// Visitable is implemented by every syntax tree node.
type Visitable interface {
	Accept(v Visitor)
}

// Expression is any node that evaluates to a value.
type Expression interface {
	Visitable
	isExpression()
}

// Condition is an expression evaluating to a boolean.
type Condition interface {
	Expression
	isCondition()
}

// PatternElement is a node, a relationship chain or a named path.
type PatternElement interface {
	Visitable
	isPatternElement()
}

// Clause is one clause of a statement.
type Clause interface {
	Visitable
	isClause()
}

// SetItem is one item of a SET clause.
type SetItem interface {
	Visitable
	isSetItem()
}

// RemoveItem is one item of a REMOVE clause.
type RemoveItem interface {
	Visitable
	isRemoveItem()
}

// visit enters node, accepts each non-nil child and leaves node.
func visit(v Visitor, node Visitable, children ...Visitable) {
	v.Enter(node)

	for _, c := range children {
		if c != nil {
			c.Accept(v)
		}
	}

	v.Leave(node)
}

// Statement is a built, immutable statement. It is rendered once when built;
// Render can be used to render it again.
type Statement struct {
	clauses    []Clause
	cypher     string
	parameters map[string]any
	names      []string
}

// Accept visits the clauses of the statement in order.
func (s *Statement) Accept(v Visitor) {
	children := make([]Visitable, len(s.clauses))
	for i, c := range s.clauses {
		children[i] = c
	}

	visit(v, s, children...)
}

// Cypher returns the rendered query text.
func (s *Statement) Cypher() string {
	return s.cypher
}

// Parameters returns a copy of the bound parameter values.
func (s *Statement) Parameters() map[string]any {
	out := make(map[string]any, len(s.parameters))
	for k, v := range s.parameters {
		out[k] = v
	}

	return out
}

// ParameterNames returns the names of all parameters, bound or not, in order
// of first appearance.
func (s *Statement) ParameterNames() []string {
	return append([]string(nil), s.names...)
}

// Clauses returns the clauses of the statement.
func (s *Statement) Clauses() []Clause {
	return append([]Clause(nil), s.clauses...)
}

func (s *Statement) String() string {
	return s.cypher
}

func newStatement(clauses []Clause) (*Statement, error) {
	s := &Statement{clauses: clauses}

	r, err := Render(s)
	if err != nil {
		return nil, err
	}

	s.cypher = r.Cypher
	s.parameters = r.Parameters
	s.names = r.ParameterNames

	return s, nil
}
