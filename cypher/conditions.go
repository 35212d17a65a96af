package cypher

import "slices"

// Operator is a comparison operator.
type Operator string

// Comparison operators.
const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "<>"
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpIn                 Operator = "IN"
	OpMatches            Operator = "=~"
	OpStartsWith         Operator = "STARTS WITH"
	OpEndsWith           Operator = "ENDS WITH"
	OpContains           Operator = "CONTAINS"
	OpIsNull             Operator = "IS NULL"
	OpIsNotNull          Operator = "IS NOT NULL"
)

// Unary reports whether the operator is postfix and takes no right operand.
func (o Operator) Unary() bool {
	return o == OpIsNull || o == OpIsNotNull
}

// Comparison is left operator right, or left operator for unary operators.
type Comparison struct {
	Left     Expression
	Operator Operator
	Right    Expression
}

func (c Comparison) Accept(v Visitor) { visit(v, c, c.Left, c.Right) }
func (Comparison) isExpression()      {}
func (Comparison) isCondition()       {}

func (c Comparison) And(other Condition) CompoundCondition { return And(c, other) }
func (c Comparison) Or(other Condition) CompoundCondition  { return Or(c, other) }
func (c Comparison) Xor(other Condition) CompoundCondition { return Xor(c, other) }
func (c Comparison) Not() NotCondition                     { return Not(c) }

func compare(l Expression, op Operator, r Expression) Comparison {
	return Comparison{Left: l, Operator: op, Right: r}
}

// Eq is l = r.
func Eq(l, r Expression) Comparison { return compare(l, OpEqual, r) }

// Ne is l <> r.
func Ne(l, r Expression) Comparison { return compare(l, OpNotEqual, r) }

// Lt is l < r.
func Lt(l, r Expression) Comparison { return compare(l, OpLessThan, r) }

// Lte is l <= r.
func Lte(l, r Expression) Comparison { return compare(l, OpLessThanOrEqual, r) }

// Gt is l > r.
func Gt(l, r Expression) Comparison { return compare(l, OpGreaterThan, r) }

// Gte is l >= r.
func Gte(l, r Expression) Comparison { return compare(l, OpGreaterThanOrEqual, r) }

// In is l IN r.
func In(l, r Expression) Comparison { return compare(l, OpIn, r) }

// Matches is l =~ pattern.
func Matches(l, pattern Expression) Comparison { return compare(l, OpMatches, pattern) }

// StartsWith is l STARTS WITH r.
func StartsWith(l, r Expression) Comparison { return compare(l, OpStartsWith, r) }

// EndsWith is l ENDS WITH r.
func EndsWith(l, r Expression) Comparison { return compare(l, OpEndsWith, r) }

// Contains is l CONTAINS r.
func Contains(l, r Expression) Comparison { return compare(l, OpContains, r) }

// IsNull is e IS NULL.
func IsNull(e Expression) Comparison { return compare(e, OpIsNull, nil) }

// IsNotNull is e IS NOT NULL.
func IsNotNull(e Expression) Comparison { return compare(e, OpIsNotNull, nil) }

// Logical is a boolean connective.
type Logical string

// Boolean connectives.
const (
	LogicalAnd Logical = "AND"
	LogicalOr  Logical = "OR"
	LogicalXor Logical = "XOR"
)

// CompoundCondition joins conditions with one connective. Nested conditions
// with a different connective are parenthesized when rendered.
type CompoundCondition struct {
	Operator   Logical
	Conditions []Condition
}

func (c CompoundCondition) Accept(v Visitor) {
	children := make([]Visitable, len(c.Conditions))
	for i, cond := range c.Conditions {
		children[i] = cond
	}

	visit(v, c, children...)
}

func (CompoundCondition) isExpression() {}
func (CompoundCondition) isCondition()  {}

func (c CompoundCondition) And(other Condition) CompoundCondition { return And(c, other) }
func (c CompoundCondition) Or(other Condition) CompoundCondition  { return Or(c, other) }
func (c CompoundCondition) Xor(other Condition) CompoundCondition { return Xor(c, other) }
func (c CompoundCondition) Not() NotCondition                     { return Not(c) }

func combine(op Logical, conds []Condition) CompoundCondition {
	out := CompoundCondition{Operator: op}

	for _, c := range conds {
		if c == nil {
			continue
		}

		if cc, ok := c.(CompoundCondition); ok && (cc.Operator == op || len(cc.Conditions) < 2) {
			out.Conditions = append(out.Conditions, cc.Conditions...)

			continue
		}

		out.Conditions = append(out.Conditions, c)
	}

	return out
}

// And joins conditions with AND. Nil conditions are skipped; nested AND
// conditions are flattened.
func And(conds ...Condition) CompoundCondition { return combine(LogicalAnd, conds) }

// Or joins conditions with OR.
func Or(conds ...Condition) CompoundCondition { return combine(LogicalOr, conds) }

// Xor joins conditions with XOR.
func Xor(conds ...Condition) CompoundCondition { return combine(LogicalXor, conds) }

// NotCondition negates a condition.
type NotCondition struct {
	Condition Condition
}

// Not negates c.
func Not(c Condition) NotCondition {
	return NotCondition{Condition: c}
}

func (n NotCondition) Accept(v Visitor) { visit(v, n, n.Condition) }
func (NotCondition) isExpression()      {}
func (NotCondition) isCondition()       {}

func (n NotCondition) And(other Condition) CompoundCondition { return And(n, other) }
func (n NotCondition) Or(other Condition) CompoundCondition  { return Or(n, other) }

// NodeLabels is subject:`A`:`B`. It is a label predicate in WHERE and a label
// operation in SET and REMOVE.
type NodeLabels struct {
	Subject SymbolicName
	Labels  []string
}

// HasLabels creates a label predicate or label operation.
func HasLabels(subject SymbolicName, labels ...string) NodeLabels {
	return NodeLabels{Subject: subject, Labels: slices.Clone(labels)}
}

func (n NodeLabels) Accept(v Visitor) { visit(v, n) }
func (NodeLabels) isExpression()      {}
func (NodeLabels) isCondition()       {}
func (NodeLabels) isSetItem()         {}
func (NodeLabels) isRemoveItem()      {}

func (n NodeLabels) And(other Condition) CompoundCondition { return And(n, other) }
func (n NodeLabels) Or(other Condition) CompoundCondition  { return Or(n, other) }
func (n NodeLabels) Not() NotCondition                     { return Not(n) }

// Unwrap returns the single condition of a compound with one operand, nil for
// an empty compound, and c itself otherwise.
func Unwrap(c Condition) Condition {
	cc, ok := c.(CompoundCondition)
	if !ok {
		return c
	}

	switch len(cc.Conditions) {
	case 0:
		return nil
	case 1:
		return cc.Conditions[0]
	default:
		return cc
	}
}
