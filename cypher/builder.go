package cypher

import "slices"

// chain is the list of clauses built so far. Every stage holds its own chain
// and never mutates a chain it was given.
type chain struct {
	clauses []Clause
}

func (c chain) append(clause Clause) chain {
	clauses := make([]Clause, len(c.clauses), len(c.clauses)+1)
	copy(clauses, c.clauses)

	return chain{clauses: append(clauses, clause)}
}

func (c chain) last() Clause {
	if len(c.clauses) == 0 {
		return nil
	}

	return c.clauses[len(c.clauses)-1]
}

func (c chain) replaceLast(clause Clause) chain {
	clauses := slices.Clone(c.clauses)
	clauses[len(clauses)-1] = clause

	return chain{clauses: clauses}
}

func (c chain) build() (*Statement, error) {
	return newStatement(slices.Clone(c.clauses))
}

func patterns(elements []PatternElement) []PatternElement {
	return slices.Clone(elements)
}

// Match starts a statement with MATCH patterns.
func Match(elements ...PatternElement) OngoingReading {
	return OngoingReading{continuation{chain{}.append(MatchClause{Patterns: patterns(elements)})}}
}

// OptionalMatch starts a statement with OPTIONAL MATCH patterns.
func OptionalMatch(elements ...PatternElement) OngoingReading {
	return OngoingReading{continuation{chain{}.append(MatchClause{Optional: true, Patterns: patterns(elements)})}}
}

// Create starts a statement with CREATE patterns.
func Create(elements ...PatternElement) OngoingUpdate {
	return OngoingUpdate{continuation{chain{}.append(CreateClause{Patterns: patterns(elements)})}}
}

// Merge starts a statement with MERGE pattern.
func Merge(element PatternElement) OngoingUpdate {
	return OngoingUpdate{continuation{chain{}.append(MergeClause{Pattern: element})}}
}

// Unwind starts a statement with UNWIND expression AS alias.
func Unwind(e Expression, alias string) OngoingReadingWithoutWhere {
	return OngoingReadingWithoutWhere{continuation{chain{}.append(UnwindClause{Expression: e, Alias: alias})}}
}

// Returning starts a statement that is only a RETURN.
func Returning(items ...Expression) OngoingReturn {
	return OngoingReturn{chain{}.append(ReturnClause{Projection{Items: slices.Clone(items)}})}
}

// continuation holds the calls legal after any reading or updating clause.
type continuation struct {
	c chain
}

// Match appends MATCH patterns.
func (o continuation) Match(elements ...PatternElement) OngoingReading {
	return OngoingReading{continuation{o.c.append(MatchClause{Patterns: patterns(elements)})}}
}

// OptionalMatch appends OPTIONAL MATCH patterns.
func (o continuation) OptionalMatch(elements ...PatternElement) OngoingReading {
	return OngoingReading{continuation{o.c.append(MatchClause{Optional: true, Patterns: patterns(elements)})}}
}

// Unwind appends UNWIND expression AS alias.
func (o continuation) Unwind(e Expression, alias string) OngoingReadingWithoutWhere {
	return OngoingReadingWithoutWhere{continuation{o.c.append(UnwindClause{Expression: e, Alias: alias})}}
}

// With appends WITH items.
func (o continuation) With(items ...Expression) OngoingWith {
	return OngoingWith{continuation{o.c.append(WithClause{Projection: Projection{Items: slices.Clone(items)}})}}
}

// WithDistinct appends WITH DISTINCT items.
func (o continuation) WithDistinct(items ...Expression) OngoingWith {
	return OngoingWith{continuation{o.c.append(WithClause{Projection: Projection{Distinct: true, Items: slices.Clone(items)}})}}
}

// Create appends CREATE patterns.
func (o continuation) Create(elements ...PatternElement) OngoingUpdate {
	return OngoingUpdate{continuation{o.c.append(CreateClause{Patterns: patterns(elements)})}}
}

// Merge appends MERGE pattern.
func (o continuation) Merge(element PatternElement) OngoingUpdate {
	return OngoingUpdate{continuation{o.c.append(MergeClause{Pattern: element})}}
}

// Set appends SET items. Label items without labels are dropped; a SET with
// no items is not appended.
func (o continuation) Set(items ...SetItem) OngoingUpdate {
	kept := make([]SetItem, 0, len(items))

	for _, it := range items {
		if l, ok := it.(NodeLabels); ok && len(l.Labels) == 0 {
			continue
		}

		kept = append(kept, it)
	}

	if len(kept) == 0 {
		return OngoingUpdate{o}
	}

	return OngoingUpdate{continuation{o.c.append(SetClause{Items: kept})}}
}

// Remove appends REMOVE items. Label items without labels are dropped; a
// REMOVE with no items is not appended.
func (o continuation) Remove(items ...RemoveItem) OngoingUpdate {
	kept := make([]RemoveItem, 0, len(items))

	for _, it := range items {
		if l, ok := it.(NodeLabels); ok && len(l.Labels) == 0 {
			continue
		}

		kept = append(kept, it)
	}

	if len(kept) == 0 {
		return OngoingUpdate{o}
	}

	return OngoingUpdate{continuation{o.c.append(RemoveClause{Items: kept})}}
}

// Delete appends DELETE expressions.
func (o continuation) Delete(exprs ...Expression) OngoingUpdate {
	return OngoingUpdate{continuation{o.c.append(DeleteClause{Expressions: slices.Clone(exprs)})}}
}

// DetachDelete appends DETACH DELETE expressions.
func (o continuation) DetachDelete(exprs ...Expression) OngoingUpdate {
	return OngoingUpdate{continuation{o.c.append(DeleteClause{Detach: true, Expressions: slices.Clone(exprs)})}}
}

// Returning appends RETURN items.
func (o continuation) Returning(items ...Expression) OngoingReturn {
	return OngoingReturn{o.c.append(ReturnClause{Projection{Items: slices.Clone(items)}})}
}

// ReturningDistinct appends RETURN DISTINCT items.
func (o continuation) ReturningDistinct(items ...Expression) OngoingReturn {
	return OngoingReturn{o.c.append(ReturnClause{Projection{Distinct: true, Items: slices.Clone(items)}})}
}

// OngoingReadingWithoutWhere follows UNWIND.
type OngoingReadingWithoutWhere struct {
	continuation
}

// OngoingReading follows MATCH and accepts a WHERE.
type OngoingReading struct {
	continuation
}

// Where attaches a condition to the preceding MATCH. A nil condition is ignored.
func (o OngoingReading) Where(c Condition) OngoingReadingWithWhere {
	return OngoingReadingWithWhere{o.continuation.where(c)}
}

func (o continuation) where(c Condition) continuation {
	c = Unwrap(c)
	if c == nil {
		return o
	}

	switch last := o.c.last().(type) {
	case MatchClause:
		last.Where = Unwrap(And(last.Where, c))

		return continuation{o.c.replaceLast(last)}
	case WithClause:
		last.Where = Unwrap(And(last.Where, c))

		return continuation{o.c.replaceLast(last)}
	}

	return o
}

func (o continuation) or(c Condition) continuation {
	c = Unwrap(c)
	if c == nil {
		return o
	}

	switch last := o.c.last().(type) {
	case MatchClause:
		last.Where = Unwrap(Or(last.Where, c))

		return continuation{o.c.replaceLast(last)}
	case WithClause:
		last.Where = Unwrap(Or(last.Where, c))

		return continuation{o.c.replaceLast(last)}
	}

	return o
}

// OngoingReadingWithWhere follows MATCH ... WHERE and accepts further conditions.
type OngoingReadingWithWhere struct {
	continuation
}

// And combines the current condition with c using AND.
func (o OngoingReadingWithWhere) And(c Condition) OngoingReadingWithWhere {
	return OngoingReadingWithWhere{o.continuation.where(c)}
}

// Or combines the current condition with c using OR.
func (o OngoingReadingWithWhere) Or(c Condition) OngoingReadingWithWhere {
	return OngoingReadingWithWhere{o.continuation.or(c)}
}

// OngoingWith follows WITH and accepts ordering and a WHERE.
type OngoingWith struct {
	continuation
}

func (o OngoingWith) update(fn func(*WithClause)) OngoingWith {
	w, ok := o.c.last().(WithClause)
	if !ok {
		return o
	}

	w.Items = slices.Clone(w.Items)
	w.Order = slices.Clone(w.Order)
	fn(&w)

	return OngoingWith{continuation{o.c.replaceLast(w)}}
}

// OrderBy orders the rows passed on by WITH.
func (o OngoingWith) OrderBy(items ...SortItem) OngoingWith {
	return o.update(func(w *WithClause) { w.Order = append(w.Order, items...) })
}

// Skip skips rows passed on by WITH.
func (o OngoingWith) Skip(e Expression) OngoingWith {
	return o.update(func(w *WithClause) { w.Skip = e })
}

// Limit limits rows passed on by WITH.
func (o OngoingWith) Limit(e Expression) OngoingWith {
	return o.update(func(w *WithClause) { w.Limit = e })
}

// Where filters the rows passed on by WITH.
func (o OngoingWith) Where(c Condition) OngoingReadingWithWhere {
	return OngoingReadingWithWhere{o.continuation.where(c)}
}

// OngoingUpdate follows an updating clause and can be built.
type OngoingUpdate struct {
	continuation
}

// Build finishes the statement.
func (o OngoingUpdate) Build() (*Statement, error) {
	return o.c.build()
}

func (c chain) updateReturn(fn func(*ReturnClause)) chain {
	r, ok := c.last().(ReturnClause)
	if !ok {
		return c
	}

	r.Items = slices.Clone(r.Items)
	r.Order = slices.Clone(r.Order)
	fn(&r)

	return c.replaceLast(r)
}

// OngoingReturn follows RETURN.
type OngoingReturn struct {
	c chain
}

// OrderBy orders the result.
func (o OngoingReturn) OrderBy(items ...SortItem) OngoingOrder {
	return OngoingOrder{o.c.updateReturn(func(r *ReturnClause) { r.Order = append(r.Order, items...) })}
}

// Skip skips result rows.
func (o OngoingReturn) Skip(e Expression) OngoingSkip {
	return OngoingSkip{o.c.updateReturn(func(r *ReturnClause) { r.Skip = e })}
}

// Limit limits the result.
func (o OngoingReturn) Limit(e Expression) OngoingLimit {
	return OngoingLimit{o.c.updateReturn(func(r *ReturnClause) { r.Limit = e })}
}

// Build finishes the statement.
func (o OngoingReturn) Build() (*Statement, error) { return o.c.build() }

// OngoingOrder follows ORDER BY.
type OngoingOrder struct {
	c chain
}

// Skip skips result rows.
func (o OngoingOrder) Skip(e Expression) OngoingSkip {
	return OngoingSkip{o.c.updateReturn(func(r *ReturnClause) { r.Skip = e })}
}

// Limit limits the result.
func (o OngoingOrder) Limit(e Expression) OngoingLimit {
	return OngoingLimit{o.c.updateReturn(func(r *ReturnClause) { r.Limit = e })}
}

// Build finishes the statement.
func (o OngoingOrder) Build() (*Statement, error) { return o.c.build() }

// OngoingSkip follows SKIP.
type OngoingSkip struct {
	c chain
}

// Limit limits the result.
func (o OngoingSkip) Limit(e Expression) OngoingLimit {
	return OngoingLimit{o.c.updateReturn(func(r *ReturnClause) { r.Limit = e })}
}

// Build finishes the statement.
func (o OngoingSkip) Build() (*Statement, error) { return o.c.build() }

// OngoingLimit follows LIMIT.
type OngoingLimit struct {
	c chain
}

// Build finishes the statement.
func (o OngoingLimit) Build() (*Statement, error) { return o.c.build() }
