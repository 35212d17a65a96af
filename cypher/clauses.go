package cypher

func patternChildren(patterns []PatternElement) []Visitable {
	children := make([]Visitable, len(patterns))
	for i, p := range patterns {
		children[i] = p
	}

	return children
}

func expressionChildren(exprs []Expression) []Visitable {
	children := make([]Visitable, len(exprs))
	for i, e := range exprs {
		children[i] = e
	}

	return children
}

// Where is WHERE condition, attached to MATCH, WITH or a pattern comprehension.
type Where struct {
	Condition Condition
}

func (w Where) Accept(v Visitor) { visit(v, w, w.Condition) }

func optionalWhere(c Condition) Visitable {
	if c = Unwrap(c); c == nil {
		return nil
	}

	return Where{Condition: c}
}

// MatchClause is [OPTIONAL] MATCH patterns [WHERE condition].
type MatchClause struct {
	Optional bool
	Patterns []PatternElement
	Where    Condition
}

func (m MatchClause) Accept(v Visitor) {
	visit(v, m, append(patternChildren(m.Patterns), optionalWhere(m.Where))...)
}

func (MatchClause) isClause() {}

// CreateClause is CREATE patterns.
type CreateClause struct {
	Patterns []PatternElement
}

func (c CreateClause) Accept(v Visitor) { visit(v, c, patternChildren(c.Patterns)...) }
func (CreateClause) isClause()          {}

// MergeClause is MERGE pattern.
type MergeClause struct {
	Pattern PatternElement
}

func (m MergeClause) Accept(v Visitor) { visit(v, m, m.Pattern) }
func (MergeClause) isClause()          {}

// SetOperator is the assignment operator of a SET item.
type SetOperator string

// SET operators.
const (
	SetAssign SetOperator = "="
	SetMutate SetOperator = "+="
)

// PropertyOperation is target = value or target += value, where target is a
// property or a symbolic name.
type PropertyOperation struct {
	Target   Expression
	Operator SetOperator
	Value    Expression
}

// SetTo is target = value.
func SetTo(target, value Expression) PropertyOperation {
	return PropertyOperation{Target: target, Operator: SetAssign, Value: value}
}

// MutateWith is target += value.
func MutateWith(target SymbolicName, value Expression) PropertyOperation {
	return PropertyOperation{Target: target, Operator: SetMutate, Value: value}
}

func (p PropertyOperation) Accept(v Visitor) { visit(v, p, p.Target, p.Value) }
func (PropertyOperation) isSetItem()         {}

// SetClause is SET items.
type SetClause struct {
	Items []SetItem
}

func (s SetClause) Accept(v Visitor) {
	children := make([]Visitable, len(s.Items))
	for i, it := range s.Items {
		children[i] = it
	}

	visit(v, s, children...)
}

func (SetClause) isClause() {}

// RemoveClause is REMOVE items.
type RemoveClause struct {
	Items []RemoveItem
}

func (r RemoveClause) Accept(v Visitor) {
	children := make([]Visitable, len(r.Items))
	for i, it := range r.Items {
		children[i] = it
	}

	visit(v, r, children...)
}

func (RemoveClause) isClause() {}

// DeleteClause is [DETACH] DELETE expressions.
type DeleteClause struct {
	Detach      bool
	Expressions []Expression
}

func (d DeleteClause) Accept(v Visitor) { visit(v, d, expressionChildren(d.Expressions)...) }
func (DeleteClause) isClause()          {}

// UnwindClause is UNWIND expression AS alias.
type UnwindClause struct {
	Expression Expression
	Alias      string
}

func (u UnwindClause) Accept(v Visitor) { visit(v, u, u.Expression) }
func (UnwindClause) isClause()          {}

// OrderBy is ORDER BY items.
type OrderBy struct {
	Items []SortItem
}

func (o OrderBy) Accept(v Visitor) {
	children := make([]Visitable, len(o.Items))
	for i, it := range o.Items {
		children[i] = it
	}

	visit(v, o, children...)
}

// Skip is SKIP expression.
type Skip struct {
	Expression Expression
}

func (s Skip) Accept(v Visitor) { visit(v, s, s.Expression) }

// Limit is LIMIT expression.
type Limit struct {
	Expression Expression
}

func (l Limit) Accept(v Visitor) { visit(v, l, l.Expression) }

// Projection is the body shared by RETURN and WITH.
type Projection struct {
	Distinct bool
	Items    []Expression
	Order    []SortItem
	Skip     Expression
	Limit    Expression
}

func (p Projection) children() []Visitable {
	children := expressionChildren(p.Items)

	if len(p.Order) > 0 {
		children = append(children, OrderBy{Items: p.Order})
	}

	if p.Skip != nil {
		children = append(children, Skip{Expression: p.Skip})
	}

	if p.Limit != nil {
		children = append(children, Limit{Expression: p.Limit})
	}

	return children
}

// ReturnClause is RETURN [DISTINCT] items [ORDER BY ...] [SKIP ...] [LIMIT ...].
type ReturnClause struct {
	Projection
}

func (r ReturnClause) Accept(v Visitor) { visit(v, r, r.children()...) }
func (ReturnClause) isClause()          {}

// WithClause is WITH [DISTINCT] items [ORDER BY ...] [SKIP ...] [LIMIT ...] [WHERE ...].
type WithClause struct {
	Projection
	Where Condition
}

func (w WithClause) Accept(v Visitor) { visit(v, w, append(w.children(), optionalWhere(w.Where))...) }
func (WithClause) isClause()          {}
