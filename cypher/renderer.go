package cypher

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Rendered is the output of rendering a syntax tree.
type Rendered struct {
	// Cypher is the query text.
	Cypher string

	// Parameters holds the values of bound parameters.
	Parameters map[string]any

	// ParameterNames lists every parameter, bound or not, in order of first
	// appearance.
	ParameterNames []string
}

// Render renders a syntax tree. Each call uses a fresh renderer, so the same
// tree always renders to the same output.
func Render(node Visitable) (Rendered, error) {
	r := &renderer{parameters: map[string]any{}}
	node.Accept(r)

	if r.err != nil {
		return Rendered{}, r.err
	}

	return Rendered{
		Cypher:         r.b.String(),
		Parameters:     r.parameters,
		ParameterNames: r.names,
	}, nil
}

// frame is the rendering state of one open node.
type frame struct {
	node     Visitable
	children int
	// sep returns the text written before the child at index i.
	sep func(i int, child Visitable) string
	// close is written when the node is left.
	close string
}

type renderer struct {
	b      strings.Builder
	frames []*frame

	parameters map[string]any
	names      []string

	// scope holds the names visible to a RETURN * or WITH *.
	scope []string
	// declaring is set while inside MATCH, CREATE or MERGE patterns.
	declaring bool
	// local counts open pattern comprehensions, whose names do not escape.
	local int

	err error
}

var _ Visitor = (*renderer)(nil)

func (r *renderer) top() *frame {
	if len(r.frames) == 0 {
		return nil
	}

	return r.frames[len(r.frames)-1]
}

func (r *renderer) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func commaSep(i int, _ Visitable) string {
	if i == 0 {
		return ""
	}

	return ", "
}

func spaceSep(i int, _ Visitable) string {
	if i == 0 {
		return ""
	}

	return " "
}

// clauseSep separates list items with commas and trailing sub-clauses with a
// space.
func clauseSep(i int, child Visitable) string {
	switch child.(type) {
	case Where, OrderBy, Skip, Limit:
		return " "
	}

	return commaSep(i, child)
}

func (r *renderer) push(node Visitable, sep func(int, Visitable) string, open, closing string) {
	r.b.WriteString(open)
	r.frames = append(r.frames, &frame{node: node, sep: sep, close: closing})
}

func (r *renderer) Enter(node Visitable) {
	parent := r.top()
	if parent != nil {
		if parent.sep != nil {
			r.b.WriteString(parent.sep(parent.children, node))
		}

		parent.children++
	}

	switch n := node.(type) {
	case *Statement:
		r.push(n, spaceSep, "", "")
	case MatchClause:
		if len(n.Patterns) == 0 {
			r.fail(fmt.Errorf("%w: MATCH", ErrEmptyPattern))
		}

		open := "MATCH "
		if n.Optional {
			open = "OPTIONAL MATCH "
		}

		r.declaring = true
		r.push(n, clauseSep, open, "")
	case CreateClause:
		if len(n.Patterns) == 0 {
			r.fail(fmt.Errorf("%w: CREATE", ErrEmptyPattern))
		}

		r.declaring = true
		r.push(n, commaSep, "CREATE ", "")
	case MergeClause:
		if n.Pattern == nil {
			r.fail(fmt.Errorf("%w: MERGE", ErrEmptyPattern))
		}

		r.declaring = true
		r.push(n, nil, "MERGE ", "")
	case Where:
		r.declaring = false
		r.push(n, nil, "WHERE ", "")
	case SetClause:
		r.push(n, commaSep, "SET ", "")
	case RemoveClause:
		r.push(n, commaSep, "REMOVE ", "")
	case DeleteClause:
		open := "DELETE "
		if n.Detach {
			open = "DETACH DELETE "
		}

		r.push(n, commaSep, open, "")
	case UnwindClause:
		r.push(n, nil, "UNWIND ", " AS "+escapeName(n.Alias))
	case WithClause:
		if len(n.Items) == 0 {
			r.fail(fmt.Errorf("%w: WITH", ErrEmptyProjection))
		}

		r.push(n, clauseSep, projectionKeyword("WITH", n.Distinct), "")
	case ReturnClause:
		if len(n.Items) == 0 {
			r.fail(fmt.Errorf("%w: RETURN", ErrEmptyProjection))
		}

		r.push(n, clauseSep, projectionKeyword("RETURN", n.Distinct), "")
	case OrderBy:
		r.push(n, commaSep, "ORDER BY ", "")
	case Skip:
		r.push(n, nil, "SKIP ", "")
	case Limit:
		r.push(n, nil, "LIMIT ", "")
	case PropertyOperation:
		op := " " + string(n.Operator) + " "
		r.push(n, func(i int, _ Visitable) string {
			if i == 0 {
				return ""
			}

			return op
		}, "", "")
	default:
		r.enterPattern(node)
	}
}

func projectionKeyword(keyword string, distinct bool) string {
	if distinct {
		return keyword + " DISTINCT "
	}

	return keyword + " "
}

func (r *renderer) enterPattern(node Visitable) {
	switch n := node.(type) {
	case NodePattern:
		r.declare(n.Name)

		var b strings.Builder
		b.WriteString("(")
		b.WriteString(nameOrEmpty(n.Name))
		writeLabels(&b, n.Labels, ":")

		prefix := b.Len() > 1
		r.push(n, func(int, Visitable) string {
			if prefix {
				return " "
			}

			return ""
		}, b.String(), ")")
	case RelationshipDetails:
		r.declare(n.Name)
		r.enterRelationship(n)
	case RelationshipChain:
		r.push(n, nil, "", "")
	case NamedPath:
		r.declare(n.Name)
		r.push(n, nil, escapeName(n.Name.Value)+" = ", "")
	default:
		r.enterExpression(node)
	}
}

func (r *renderer) enterRelationship(n RelationshipDetails) {
	left, right := "-", "->"

	switch n.Direction {
	case Incoming:
		left, right = "<-", "-"
	case Undirected:
		left, right = "-", "-"
	}

	if n.Empty() {
		r.push(n, nil, left+right, "")

		return
	}

	var b strings.Builder
	b.WriteString(left)
	b.WriteString("[")
	b.WriteString(nameOrEmpty(n.Name))
	writeLabels(&b, n.Types, "|")

	if l := n.Length; l != nil {
		b.WriteString("*")

		switch {
		case l.HasMin && l.HasMax && l.Min == l.Max:
			b.WriteString(strconv.Itoa(l.Min))
		case l.HasMin || l.HasMax:
			if l.HasMin {
				b.WriteString(strconv.Itoa(l.Min))
			}

			b.WriteString("..")

			if l.HasMax {
				b.WriteString(strconv.Itoa(l.Max))
			}
		}
	}

	prefix := b.Len() > len(left)+1
	r.push(n, func(int, Visitable) string {
		if prefix {
			return " "
		}

		return ""
	}, b.String(), "]"+right)
}

func (r *renderer) enterExpression(node Visitable) {
	switch n := node.(type) {
	case SymbolicName:
		r.leaf(n, escapeName(n.Value))
	case Property:
		r.leaf(n, escapeName(n.Owner.Value)+"."+escapeName(n.Key))
	case Parameter:
		r.parameter(n)
		r.leaf(n, "$"+escapeName(n.Name))
	case Literal:
		text, err := literal(n.Value)
		if err != nil {
			r.fail(err)
		}

		r.leaf(n, text)
	case Asterisk:
		r.leaf(n, r.asterisk())
	case Aliased:
		r.push(n, nil, "", " AS "+escapeName(n.Alias))
	case ListExpression:
		r.push(n, commaSep, "[", "]")
	case MapExpression:
		r.push(n, commaSep, "{", "}")
	case MapEntry:
		r.push(n, nil, escapeName(n.Key)+": ", "")
	case FunctionInvocation:
		open := n.Name + "("
		if n.Distinct {
			open += "DISTINCT "
		}

		r.push(n, commaSep, open, ")")
	case MapProjection:
		r.push(n, commaSep, escapeName(n.Subject.Value)+"{", "}")
	case AllProperties:
		r.leaf(n, ".*")
	case PropertySelector:
		r.leaf(n, "."+escapeName(n.Key))
	case PatternComprehension:
		r.local++
		r.push(n, func(i int, child Visitable) string {
			switch {
			case i == 0:
				return ""
			case isWhere(child):
				return " "
			default:
				return " | "
			}
		}, "[", "]")
	case SortItem:
		closing := ""
		if n.Descending {
			closing = " DESC"
		}

		r.push(n, nil, "", closing)
	default:
		r.enterCondition(node)
	}
}

func isWhere(v Visitable) bool {
	_, ok := v.(Where)

	return ok
}

func (r *renderer) enterCondition(node Visitable) {
	open, closing := "", ""
	if r.needsParentheses(node) {
		open, closing = "(", ")"
	}

	switch n := node.(type) {
	case Comparison:
		op := " " + string(n.Operator) + " "
		if n.Operator.Unary() {
			closing = " " + string(n.Operator) + closing
		}

		r.push(n, func(i int, _ Visitable) string {
			if i == 0 {
				return ""
			}

			return op
		}, open, closing)
	case CompoundCondition:
		sep := " " + string(n.Operator) + " "
		r.push(n, func(i int, _ Visitable) string {
			if i == 0 {
				return ""
			}

			return sep
		}, open, closing)
	case NotCondition:
		r.push(n, nil, open+"NOT ", closing)
	case NodeLabels:
		var b strings.Builder
		b.WriteString(escapeName(n.Subject.Value))
		writeLabels(&b, n.Labels, ":")
		r.leaf(n, open+b.String()+closing)
	default:
		r.fail(fmt.Errorf("cypher: cannot render %T", node))
		r.push(node, nil, "", "")
	}
}

// needsParentheses reports whether a condition must be wrapped to keep its
// meaning inside its parent.
func (r *renderer) needsParentheses(node Visitable) bool {
	cc, ok := node.(CompoundCondition)
	if !ok || len(cc.Conditions) < 2 {
		return false
	}

	parent := r.top()
	if parent == nil {
		return false
	}

	switch p := parent.node.(type) {
	case CompoundCondition:
		return p.Operator != cc.Operator
	case Comparison, NotCondition:
		return true
	}

	return false
}

func (r *renderer) leaf(node Visitable, text string) {
	r.push(node, nil, text, "")
}

func (r *renderer) Leave(node Visitable) {
	f := r.top()
	if f == nil {
		return
	}

	r.frames = r.frames[:len(r.frames)-1]
	r.b.WriteString(f.close)

	switch n := node.(type) {
	case MatchClause, CreateClause, MergeClause:
		r.declaring = false
	case PatternComprehension:
		r.local--
	case UnwindClause:
		r.addScope(n.Alias)
	case WithClause:
		r.scope = projectedNames(n.Items, r.scope)
	}
}

func (r *renderer) declare(name SymbolicName) {
	if !r.declaring || r.local > 0 || name.Value == "" {
		return
	}

	r.addScope(name.Value)
}

func (r *renderer) addScope(name string) {
	if !slices.Contains(r.scope, name) {
		r.scope = append(r.scope, name)
	}
}

// projectedNames returns the names a WITH passes on.
func projectedNames(items []Expression, scope []string) []string {
	var out []string

	add := func(name string) {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}

	for _, it := range items {
		switch e := it.(type) {
		case Aliased:
			add(e.Alias)
		case SymbolicName:
			add(e.Value)
		case Asterisk:
			for _, s := range scope {
				add(s)
			}
		}
	}

	return out
}

// asterisk renders * as the names in scope when it is a projection item.
func (r *renderer) asterisk() string {
	parent := r.top()
	if parent == nil || len(r.scope) == 0 {
		return "*"
	}

	switch parent.node.(type) {
	case ReturnClause, WithClause:
		names := make([]string, len(r.scope))
		for i, s := range r.scope {
			names[i] = escapeName(s)
		}

		return strings.Join(names, ", ")
	}

	return "*"
}

func (r *renderer) parameter(p Parameter) {
	if !slices.Contains(r.names, p.Name) {
		r.names = append(r.names, p.Name)
	}

	if !p.Bound {
		return
	}

	if existing, ok := r.parameters[p.Name]; ok {
		if !reflect.DeepEqual(existing, p.Value) {
			r.fail(fmt.Errorf("%w: $%s bound to %v and %v", ErrDuplicateParameter, p.Name, existing, p.Value))
		}

		return
	}

	r.parameters[p.Name] = p.Value
}

func nameOrEmpty(name SymbolicName) string {
	if name.Value == "" {
		return ""
	}

	return escapeName(name.Value)
}

func writeLabels(b *strings.Builder, labels []string, sep string) {
	for i, l := range labels {
		if i == 0 {
			b.WriteString(":")
		} else {
			b.WriteString(sep)
		}

		b.WriteString(quote(l))
	}
}

// quote always backtick-quotes s.
func quote(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// escapeName quotes s only when it is not a plain identifier.
func escapeName(s string) string {
	if IsIdentifier(s) {
		return s
	}

	return quote(s)
}

// IsIdentifier reports whether s can be written without backticks.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		switch {
		case c == '_', unicode.IsLetter(c):
		case i > 0 && unicode.IsDigit(c):
		default:
			return false
		}
	}

	return true
}

func literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		return strconv.FormatBool(x), nil
	case string:
		return stringLiteral(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float32:
		return floatLiteral(float64(x)), nil
	case float64:
		return floatLiteral(x), nil
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			s, err := literal(e)
			if err != nil {
				return "", err
			}

			parts[i] = s
		}

		return "[" + strings.Join(parts, ", ") + "]", nil
	case []string:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = stringLiteral(e)
		}

		return "[" + strings.Join(parts, ", ") + "]", nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			s, err := literal(x[k])
			if err != nil {
				return "", err
			}

			parts[i] = escapeName(k) + ": " + s
		}

		return "{" + strings.Join(parts, ", ") + "}", nil
	}

	return "", fmt.Errorf("cypher: unsupported literal %T", v)
}

func stringLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)

	return "'" + r.Replace(s) + "'"
}

func floatLiteral(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}

	return s
}
