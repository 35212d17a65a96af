package cyphergen

import (
	"slices"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/cypher"
	"github.com/rlch/ogm/schema"
)

// MatchAll reads every entity of d.
func (g *Generator) MatchAll(d *schema.NodeDescription) (*cypher.Statement, error) {
	return g.cached(cacheKey{shape: "match-all", typ: d.TypeName}, func() (*cypher.Statement, error) {
		return g.read(d, nil)
	})
}

// MatchByID reads the entity of d whose id is $__id__.
func (g *Generator) MatchByID(d *schema.NodeDescription) (*cypher.Statement, error) {
	return g.cached(cacheKey{shape: "match-by-id", typ: d.TypeName}, func() (*cypher.Statement, error) {
		return g.read(d, IDPredicate(d, anchor(d, RootAlias), ogm.ParamID))
	})
}

// MatchByIDs reads the entities of d whose ids are in $__ids__.
func (g *Generator) MatchByIDs(d *schema.NodeDescription) (*cypher.Statement, error) {
	return g.cached(cacheKey{shape: "match-by-ids", typ: d.TypeName}, func() (*cypher.Statement, error) {
		return g.read(d, idsPredicate(d, anchor(d, RootAlias)))
	})
}

// MatchWhere reads the entities of d matching condition. The condition refers
// to the entity as RootAlias.
func (g *Generator) MatchWhere(d *schema.NodeDescription, condition cypher.Condition) (*cypher.Statement, error) {
	return g.read(d, condition)
}

// Count counts the entities of d.
func (g *Generator) Count(d *schema.NodeDescription) (*cypher.Statement, error) {
	return g.cached(cacheKey{shape: "count", typ: d.TypeName}, func() (*cypher.Statement, error) {
		n := anchor(d, RootAlias)

		return cypher.Match(n).Returning(cypher.Count(n.SymbolicName()).As(ColumnCount)).Build()
	})
}

// ExistsByID reports whether the entity of d with id $__id__ exists.
func (g *Generator) ExistsByID(d *schema.NodeDescription) (*cypher.Statement, error) {
	return g.cached(cacheKey{shape: "exists-by-id", typ: d.TypeName}, func() (*cypher.Statement, error) {
		n := anchor(d, RootAlias)
		found := cypher.Gt(cypher.Count(n.SymbolicName()), cypher.LiteralOf(0))

		return cypher.Match(n).
			Where(IDPredicate(d, n, ogm.ParamID)).
			Returning(cypher.As(found, ColumnExists)).
			Build()
	})
}

// CurrentLabels reads the stored labels of the entity of d with id $__id__.
func (g *Generator) CurrentLabels(d *schema.NodeDescription) (*cypher.Statement, error) {
	return g.cached(cacheKey{shape: "current-labels", typ: d.TypeName}, func() (*cypher.Statement, error) {
		n := anchor(d, RootAlias)

		return cypher.Match(n).
			Where(IDPredicate(d, n, ogm.ParamID)).
			Returning(cypher.LabelsOf(n.SymbolicName()).As(ogm.KeyNodeLabels)).
			Build()
	})
}

func (g *Generator) read(d *schema.NodeDescription, condition cypher.Condition) (*cypher.Statement, error) {
	n := anchor(d, RootAlias)
	match := cypher.Match(n).Where(condition)

	if !g.schema.HasCycles(d) {
		return match.Returning(cypher.As(Projection(d, RootAlias), RootAlias)).Build()
	}

	// Cyclic graphs cannot be projected to a finite depth, so the related
	// nodes and relationships are returned flat and paired by the mapper.
	related := cypher.AnyNode(relatedNodes)
	path := cypher.AnyNode(RootAlias).RelationshipBetween(related, reachableTypes(d)...).Named(relatedRels).Unbounded()

	return match.
		OptionalMatch(path).
		Returning(
			n.SymbolicName().As(ogm.KeyStartNode),
			cypher.CollectDistinct(related.SymbolicName()).As(ogm.KeyRelatedNodes),
			cypher.CollectDistinct(path.SymbolicName()).As(ogm.KeyRelationships),
		).
		Build()
}

// Projection is the nested map projection of an acyclic description: the
// node properties, its internal id and labels, and one pattern comprehension
// per relationship field.
func Projection(d *schema.NodeDescription, alias string) cypher.MapProjection {
	subject := cypher.Name(alias)
	items := []cypher.MapProjectionItem{
		cypher.AllProperties{},
		cypher.Entry(ogm.KeyInternalID, cypher.ID(subject)),
		cypher.Entry(ogm.KeyNodeLabels, cypher.LabelsOf(subject)),
	}

	for _, rel := range d.Relationships {
		items = append(items, cypher.Entry(rel.Field, comprehension(rel, alias)))
	}

	return cypher.Project(subject, items...)
}

func comprehension(rel *schema.RelationshipDescription, alias string) cypher.PatternComprehension {
	targetAlias := alias + "_" + rel.Field
	relAlias := targetAlias + "_" + RelAlias
	target := cypher.Node(targetAlias, rel.Target.PrimaryLabel)

	var types []string
	if !rel.Dynamic {
		types = []string{rel.Type}
	}

	pattern := relate(rel, cypher.AnyNode(alias), target, types...).Named(relAlias)
	projection := Projection(rel.Target, targetAlias)

	if rel.Dynamic || rel.HasProperties() {
		projection = projection.And(cypher.Entry(ogm.KeyRelationship, cypher.Name(relAlias)))
	}

	return cypher.Comprehend(pattern, unclaimed(rel, relAlias), projection)
}

// unclaimed filters a dynamic relationship pattern down to the types no
// static field of the source declares towards the same target. It is nil
// when nothing is claimed.
func unclaimed(rel *schema.RelationshipDescription, relAlias string) cypher.Condition {
	claimed := rel.ClaimedTypes()
	if len(claimed) == 0 {
		return nil
	}

	types := make([]cypher.Expression, len(claimed))
	for i, t := range claimed {
		types[i] = cypher.LiteralOf(t)
	}

	return cypher.Not(cypher.In(cypher.TypeOf(cypher.Name(relAlias)), cypher.ListOf(types...)))
}

// reachableTypes lists the relationship types reachable from d. It returns
// nil, matching any type, when a dynamic relationship is reachable.
func reachableTypes(d *schema.NodeDescription) []string {
	var (
		types   []string
		seen    = map[*schema.NodeDescription]bool{}
		dynamic bool
	)

	var walk func(n *schema.NodeDescription)

	walk = func(n *schema.NodeDescription) {
		if seen[n] {
			return
		}

		seen[n] = true

		for _, rel := range n.Relationships {
			if rel.Dynamic {
				dynamic = true
			} else if !slices.Contains(types, rel.Type) {
				types = append(types, rel.Type)
			}

			for _, t := range rel.Target.Descendants() {
				walk(t)
			}
		}
	}

	walk(d)

	if dynamic {
		return nil
	}

	return types
}
