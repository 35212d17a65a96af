package cypher

// Comparison shorthands on the common operand types.

func (p Property) IsEqualTo(other Expression) Comparison            { return Eq(p, other) }
func (p Property) IsNotEqualTo(other Expression) Comparison         { return Ne(p, other) }
func (p Property) LessThan(other Expression) Comparison             { return Lt(p, other) }
func (p Property) LessThanOrEqualTo(other Expression) Comparison    { return Lte(p, other) }
func (p Property) GreaterThan(other Expression) Comparison          { return Gt(p, other) }
func (p Property) GreaterThanOrEqualTo(other Expression) Comparison { return Gte(p, other) }
func (p Property) In(list Expression) Comparison                    { return In(p, list) }
func (p Property) Matches(pattern Expression) Comparison            { return Matches(p, pattern) }
func (p Property) StartsWith(other Expression) Comparison           { return StartsWith(p, other) }
func (p Property) EndsWith(other Expression) Comparison             { return EndsWith(p, other) }
func (p Property) Contains(other Expression) Comparison             { return Contains(p, other) }
func (p Property) IsNull() Comparison                               { return IsNull(p) }
func (p Property) IsNotNull() Comparison                            { return IsNotNull(p) }
func (p Property) As(alias string) Aliased                          { return As(p, alias) }
func (p Property) Ascending() SortItem                              { return Asc(p) }
func (p Property) Descending() SortItem                             { return Desc(p) }

func (p Parameter) IsEqualTo(other Expression) Comparison            { return Eq(p, other) }
func (p Parameter) IsNotEqualTo(other Expression) Comparison         { return Ne(p, other) }
func (p Parameter) LessThan(other Expression) Comparison             { return Lt(p, other) }
func (p Parameter) LessThanOrEqualTo(other Expression) Comparison    { return Lte(p, other) }
func (p Parameter) GreaterThan(other Expression) Comparison          { return Gt(p, other) }
func (p Parameter) GreaterThanOrEqualTo(other Expression) Comparison { return Gte(p, other) }
func (p Parameter) In(list Expression) Comparison                    { return In(p, list) }
func (p Parameter) Matches(pattern Expression) Comparison            { return Matches(p, pattern) }
func (p Parameter) StartsWith(other Expression) Comparison           { return StartsWith(p, other) }
func (p Parameter) EndsWith(other Expression) Comparison             { return EndsWith(p, other) }
func (p Parameter) Contains(other Expression) Comparison             { return Contains(p, other) }
func (p Parameter) IsNull() Comparison                               { return IsNull(p) }
func (p Parameter) IsNotNull() Comparison                            { return IsNotNull(p) }
func (p Parameter) As(alias string) Aliased                          { return As(p, alias) }
func (p Parameter) Ascending() SortItem                              { return Asc(p) }
func (p Parameter) Descending() SortItem                             { return Desc(p) }

func (s SymbolicName) IsEqualTo(other Expression) Comparison            { return Eq(s, other) }
func (s SymbolicName) IsNotEqualTo(other Expression) Comparison         { return Ne(s, other) }
func (s SymbolicName) LessThan(other Expression) Comparison             { return Lt(s, other) }
func (s SymbolicName) LessThanOrEqualTo(other Expression) Comparison    { return Lte(s, other) }
func (s SymbolicName) GreaterThan(other Expression) Comparison          { return Gt(s, other) }
func (s SymbolicName) GreaterThanOrEqualTo(other Expression) Comparison { return Gte(s, other) }
func (s SymbolicName) In(list Expression) Comparison                    { return In(s, list) }
func (s SymbolicName) Matches(pattern Expression) Comparison            { return Matches(s, pattern) }
func (s SymbolicName) StartsWith(other Expression) Comparison           { return StartsWith(s, other) }
func (s SymbolicName) EndsWith(other Expression) Comparison             { return EndsWith(s, other) }
func (s SymbolicName) Contains(other Expression) Comparison             { return Contains(s, other) }
func (s SymbolicName) IsNull() Comparison                               { return IsNull(s) }
func (s SymbolicName) IsNotNull() Comparison                            { return IsNotNull(s) }
func (s SymbolicName) As(alias string) Aliased                          { return As(s, alias) }
func (s SymbolicName) Ascending() SortItem                              { return Asc(s) }
func (s SymbolicName) Descending() SortItem                             { return Desc(s) }

func (f FunctionInvocation) IsEqualTo(other Expression) Comparison            { return Eq(f, other) }
func (f FunctionInvocation) IsNotEqualTo(other Expression) Comparison         { return Ne(f, other) }
func (f FunctionInvocation) LessThan(other Expression) Comparison             { return Lt(f, other) }
func (f FunctionInvocation) LessThanOrEqualTo(other Expression) Comparison    { return Lte(f, other) }
func (f FunctionInvocation) GreaterThan(other Expression) Comparison          { return Gt(f, other) }
func (f FunctionInvocation) GreaterThanOrEqualTo(other Expression) Comparison { return Gte(f, other) }
func (f FunctionInvocation) In(list Expression) Comparison                    { return In(f, list) }
func (f FunctionInvocation) Matches(pattern Expression) Comparison            { return Matches(f, pattern) }
func (f FunctionInvocation) StartsWith(other Expression) Comparison           { return StartsWith(f, other) }
func (f FunctionInvocation) EndsWith(other Expression) Comparison             { return EndsWith(f, other) }
func (f FunctionInvocation) Contains(other Expression) Comparison             { return Contains(f, other) }
func (f FunctionInvocation) IsNull() Comparison                               { return IsNull(f) }
func (f FunctionInvocation) IsNotNull() Comparison                            { return IsNotNull(f) }
func (f FunctionInvocation) As(alias string) Aliased                          { return As(f, alias) }
func (f FunctionInvocation) Ascending() SortItem                              { return Asc(f) }
func (f FunctionInvocation) Descending() SortItem                             { return Desc(f) }

func (m MapProjection) As(alias string) Aliased        { return As(m, alias) }
func (p PatternComprehension) As(alias string) Aliased { return As(p, alias) }
