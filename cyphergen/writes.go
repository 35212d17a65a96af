package cyphergen

import (
	"slices"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/cypher"
	"github.com/rlch/ogm/schema"
)

// CreateNode creates an entity of d with labels, setting its properties to
// $__properties__. It returns the internal id under KeyInternalID.
func (g *Generator) CreateNode(d *schema.NodeDescription, labels []string) (*cypher.Statement, error) {
	labels = nodeLabels(d, labels)

	return g.cached(cacheKey{shape: "create-node", typ: d.TypeName, extra: labelsKey(labels)}, func() (*cypher.Statement, error) {
		n := cypher.Node(RootAlias, labels...)

		return cypher.Create(n).
			Set(cypher.SetTo(n.SymbolicName(), cypher.Param(ogm.ParamProperties))).
			Returning(cypher.ID(n.SymbolicName()).As(ogm.KeyInternalID)).
			Build()
	})
}

// UpdateNode updates the entity of d with id $__id__, merging
// $__properties__ into its properties, adding and removing labels. Versioned
// descriptions only match when the stored version equals $__version__, so no
// row is returned on a version conflict.
func (g *Generator) UpdateNode(d *schema.NodeDescription, addLabels, removeLabels []string) (*cypher.Statement, error) {
	key := cacheKey{shape: "update-node", typ: d.TypeName, extra: labelsKey(addLabels) + "-" + labelsKey(removeLabels)}

	return g.cached(key, func() (*cypher.Statement, error) {
		n := anchor(d, RootAlias)
		where := cypher.And(IDPredicate(d, n, ogm.ParamID), versionPredicate(d, n))

		return cypher.Match(n).
			Where(where).
			Set(
				cypher.MutateWith(n.SymbolicName(), cypher.Param(ogm.ParamProperties)),
				n.HasLabels(addLabels...),
			).
			Remove(n.HasLabels(removeLabels...)).
			Returning(cypher.ID(n.SymbolicName()).As(ogm.KeyInternalID)).
			Build()
	})
}

// MergeNode creates or updates the entity of d whose id property equals
// $__id__. It is only valid for assigned and generated ids.
func (g *Generator) MergeNode(d *schema.NodeDescription, addLabels, removeLabels []string) (*cypher.Statement, error) {
	if d.ID.IsInternal() {
		return nil, ErrInternalMerge
	}

	key := cacheKey{shape: "merge-node", typ: d.TypeName, extra: labelsKey(addLabels) + "-" + labelsKey(removeLabels)}

	return g.cached(key, func() (*cypher.Statement, error) {
		n := cypher.Node(RootAlias, d.PrimaryLabel).
			WithProperties(cypher.MapOf(cypher.Entry(d.ID.Property, cypher.Param(ogm.ParamID))))
		additional := slices.Concat(d.StaticLabels()[1:], addLabels)

		return cypher.Merge(n).
			Set(
				cypher.MutateWith(n.SymbolicName(), cypher.Param(ogm.ParamProperties)),
				n.HasLabels(additional...),
			).
			Remove(n.HasLabels(removeLabels...)).
			Returning(cypher.ID(n.SymbolicName()).As(ogm.KeyInternalID)).
			Build()
	})
}

// DeleteByID deletes the entity of d with id $__id__ and its relationships.
// When versioned is set and d has a version, only a node whose stored version
// equals $__version__ is deleted.
func (g *Generator) DeleteByID(d *schema.NodeDescription, versioned bool) (*cypher.Statement, error) {
	versioned = versioned && d.HasVersion()
	key := cacheKey{shape: "delete-by-id", typ: d.TypeName}

	if versioned {
		key.extra = "versioned"
	}

	return g.cached(key, func() (*cypher.Statement, error) {
		n := anchor(d, RootAlias)

		var where cypher.Condition = IDPredicate(d, n, ogm.ParamID)
		if versioned {
			where = cypher.And(where, versionPredicate(d, n))
		}

		return cypher.Match(n).Where(where).DetachDelete(n.SymbolicName()).Build()
	})
}

// DeleteAll deletes every entity of d and its relationships.
func (g *Generator) DeleteAll(d *schema.NodeDescription) (*cypher.Statement, error) {
	return g.cached(cacheKey{shape: "delete-all", typ: d.TypeName}, func() (*cypher.Statement, error) {
		n := anchor(d, RootAlias)

		return cypher.Match(n).DetachDelete(n.SymbolicName()).Build()
	})
}

// RemoveRelationships deletes the relationships of type typ along rel from
// the entity with id $fromId. An empty typ on a dynamic relationship removes
// relationships of every type to the target label except the types claimed by
// static fields.
func (g *Generator) RemoveRelationships(rel *schema.RelationshipDescription, typ string) (*cypher.Statement, error) {
	key := cacheKey{shape: "remove-relationships", typ: rel.Source.TypeName, extra: rel.Field + ":" + typ}

	return g.cached(key, func() (*cypher.Statement, error) {
		n := anchor(rel.Source, RootAlias)
		m := cypher.Node(RelatedAlias, rel.Target.PrimaryLabel)
		pattern := relate(rel, n, m, relationshipTypes(rel, typ)...).Named(RelAlias)

		var where cypher.Condition = IDPredicate(rel.Source, n, ogm.ParamFromID)
		if rel.Dynamic && typ == "" {
			where = cypher.And(where, unclaimed(rel, RelAlias))
		}

		return cypher.Match(pattern).
			Where(where).
			Delete(pattern.SymbolicName()).
			Build()
	})
}

// CreateRelationship creates a relationship of type typ along rel between the
// entities with ids $fromId and $toId, setting $__relProperties__ when rel has
// a properties type. It returns the relationship's internal id.
func (g *Generator) CreateRelationship(rel *schema.RelationshipDescription, typ string) (*cypher.Statement, error) {
	if typ == "" && rel.Type == "" {
		return nil, ErrMissingType
	}

	key := cacheKey{shape: "create-relationship", typ: rel.Source.TypeName, extra: rel.Field + ":" + typ}

	return g.cached(key, func() (*cypher.Statement, error) {
		n := anchor(rel.Source, RootAlias)
		m := cypher.Node(RelatedAlias, rel.Target.PrimaryLabel)
		edge := createEdge(rel, cypher.AnyNode(RelatedAlias), relationshipTypes(rel, typ)).Named(RelAlias)

		update := cypher.Match(n).
			Where(IDPredicate(rel.Source, n, ogm.ParamFromID)).
			Match(m).
			Where(IDPredicate(rel.Target, m, ogm.ParamToID)).
			Create(edge)

		if rel.HasProperties() {
			update = update.Set(cypher.SetTo(edge.SymbolicName(), cypher.Param(ogm.ParamRelationshipProperties)))
		}

		return update.Returning(cypher.ID(edge.SymbolicName()).As(ogm.KeyInternalID)).Build()
	})
}

// CreateRelatedNode creates a new entity with labels together with a
// relationship of type typ along rel from the entity with id $fromId. The new
// node's properties are $__properties__; the relationship's are
// $__relProperties__ when rel has a properties type. It returns the new
// node's internal id.
func (g *Generator) CreateRelatedNode(
	rel *schema.RelationshipDescription,
	target *schema.NodeDescription,
	typ string,
	labels []string,
) (*cypher.Statement, error) {
	if typ == "" && rel.Type == "" {
		return nil, ErrMissingType
	}

	labels = nodeLabels(target, labels)
	key := cacheKey{
		shape: "create-related-node",
		typ:   rel.Source.TypeName,
		extra: rel.Field + ":" + typ + ":" + labelsKey(labels),
	}

	return g.cached(key, func() (*cypher.Statement, error) {
		n := anchor(rel.Source, RootAlias)
		m := cypher.Node(RelatedAlias, labels...)

		edge := createEdge(rel, m, relationshipTypes(rel, typ)).Named(RelAlias)
		items := []cypher.SetItem{cypher.SetTo(m.SymbolicName(), cypher.Param(ogm.ParamProperties))}

		if rel.HasProperties() {
			items = append(items, cypher.SetTo(edge.SymbolicName(), cypher.Param(ogm.ParamRelationshipProperties)))
		}

		return cypher.Match(n).
			Where(IDPredicate(rel.Source, n, ogm.ParamFromID)).
			Create(edge).
			Set(items...).
			Returning(cypher.ID(m.SymbolicName()).As(ogm.KeyInternalID)).
			Build()
	})
}

// createEdge connects the root to related for CREATE. Undirected
// relationships are stored outgoing.
func createEdge(rel *schema.RelationshipDescription, related cypher.NodePattern, types []string) cypher.RelationshipChain {
	root := cypher.AnyNode(RootAlias)
	if rel.Direction == schema.Incoming {
		return root.RelationshipFrom(related, types...)
	}

	return root.RelationshipTo(related, types...)
}

// nodeLabels returns the static labels of d followed by labels not already
// among them.
func nodeLabels(d *schema.NodeDescription, labels []string) []string {
	out := d.StaticLabels()

	for _, l := range labels {
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}

	return out
}
