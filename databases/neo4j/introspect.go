package neo4j

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/schema"
)

const (
	nodePropertiesQuery = `CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName, propertyTypes, mandatory
RETURN nodeLabels, propertyName, propertyTypes, mandatory
ORDER BY propertyName`

	visualizationQuery = `CALL db.schema.visualization()
YIELD nodes, relationships
RETURN nodes, relationships`
)

// propertyInfo is one row of db.schema.nodeTypeProperties.
type propertyInfo struct {
	label     string
	name      string
	types     []string
	mandatory bool
}

// relationshipInfo is one relationship type between two labels.
type relationshipInfo struct {
	from string
	typ  string
	to   string
}

// Introspect derives a schema batch from the labels, properties and
// relationship types stored in the database. Every type gets an internal id
// stored in field ID. The result is a starting point to edit, not a
// complete mapping.
func (r *Runner) Introspect(ctx context.Context) ([]schema.TypeDescriptor, error) {
	res, err := r.Run(ctx, nodePropertiesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get node properties: %w", err)
	}

	var props []propertyInfo

	for _, row := range res.Rows {
		values := row.Values()
		if len(values) < 4 {
			continue
		}

		name, _ := values[1].(string)
		mandatory, _ := values[3].(bool)

		props = append(props, propertyInfo{
			label:     extractLabel(values[0]),
			name:      name,
			types:     stringList(values[2]),
			mandatory: mandatory,
		})
	}

	res, err = r.Run(ctx, visualizationQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship types: %w", err)
	}

	var rels []relationshipInfo

	for _, row := range res.Rows {
		rels = append(rels, visualized(row)...)
	}

	return descriptorsOf(props, rels), nil
}

// visualized reads the relationships of a db.schema.visualization row. The
// virtual nodes carry their label in the name property.
func visualized(row ogm.Row) []relationshipInfo {
	nodes, _ := row.Get("nodes")
	relationships, _ := row.Get("relationships")

	labels := map[int64]string{}

	list, _ := nodes.([]any)
	for _, v := range list {
		if n, ok := v.(ogm.Node); ok {
			name, _ := n.Props["name"].(string)
			labels[n.ID] = name
		}
	}

	var out []relationshipInfo

	list, _ = relationships.([]any)
	for _, v := range list {
		rel, ok := v.(ogm.Relationship)
		if !ok {
			continue
		}

		from, to := labels[rel.StartID], labels[rel.EndID]
		if from == "" || to == "" || rel.Type == "" {
			continue
		}

		out = append(out, relationshipInfo{from: from, typ: rel.Type, to: to})
	}

	return out
}

// descriptorsOf builds one type per label, sorted by name.
func descriptorsOf(props []propertyInfo, rels []relationshipInfo) []schema.TypeDescriptor {
	types := map[string]*schema.TypeDescriptor{}

	get := func(label string) *schema.TypeDescriptor {
		td, ok := types[label]
		if !ok {
			td = &schema.TypeDescriptor{
				Type: label,
				ID:   &schema.IDDescriptor{Strategy: schema.StrategyInternal, Field: "ID"},
			}
			types[label] = td
		}

		return td
	}

	for _, p := range props {
		if p.label == "" || p.name == "" {
			continue
		}

		td := get(p.label)
		td.Properties = append(td.Properties, schema.PropertyDescriptor{
			Field:    fieldName(p.name),
			Property: p.name,
			Type:     goType(p.types, p.mandatory),
		})
	}

	for _, rel := range rels {
		td := get(rel.from)
		get(rel.to)

		field := fieldName(rel.typ)

		for _, existing := range td.Relationships {
			if existing.Field == field {
				field += rel.to

				break
			}
		}

		td.Relationships = append(td.Relationships, schema.RelationshipDescriptor{
			Field:  field,
			Type:   rel.typ,
			Target: rel.to,
			Many:   true,
		})
	}

	out := make([]schema.TypeDescriptor, 0, len(types))
	for _, td := range types {
		sort.Slice(td.Properties, func(i, j int) bool {
			return td.Properties[i].Field < td.Properties[j].Field
		})

		out = append(out, *td)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })

	return out
}

func extractLabel(v any) string {
	switch t := v.(type) {
	case string:
		s := strings.TrimPrefix(t, ":")
		s = strings.Trim(s, `"`)
		s = strings.Trim(s, "`")

		return s
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}

	return ""
}

// goType maps the property types reported by the database to a Go type.
// Optional scalars become pointers.
func goType(types []string, mandatory bool) string {
	if len(types) == 0 {
		return "any"
	}

	var name string

	switch t := types[0]; {
	case strings.HasSuffix(t, "Array"):
		return "[]" + goType([]string{strings.TrimSuffix(t, "Array")}, true)
	case strings.Contains(t, "Long"), strings.Contains(t, "Integer"):
		name = "int64"
	case strings.Contains(t, "Double"), strings.Contains(t, "Float"):
		name = "float64"
	case strings.Contains(t, "Boolean"):
		name = "bool"
	case strings.Contains(t, "String"):
		name = "string"
	case t == "Date":
		name = "ogm.Date"
	case t == "LocalDateTime":
		name = "ogm.LocalDateTime"
	case t == "DateTime":
		name = "time.Time"
	case t == "Duration":
		name = "ogm.Duration"
	case t == "Point":
		name = "ogm.Point"
	default:
		return "any"
	}

	if !mandatory {
		return "*" + name
	}

	return name
}

// fieldName turns a property name or a relationship type into an exported
// field name.
func fieldName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, p := range parts {
		if strings.ToUpper(p) == p {
			p = strings.ToLower(p)
		}

		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}

	return strings.Join(parts, "")
}

func stringList(v any) []string {
	list, _ := v.([]any)

	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}

	return out
}
