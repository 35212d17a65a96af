package cyphergen_test

import (
	"testing"

	"github.com/rlch/ogm/cypher"
	"github.com/rlch/ogm/cyphergen"
	"github.com/rlch/ogm/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()

	internal := &schema.IDDescriptor{Strategy: schema.StrategyInternal, Field: "ID"}

	s, err := schema.New([]schema.TypeDescriptor{
		{
			Type: "Thing",
			ID:   internal,
			Relationships: []schema.RelationshipDescriptor{
				{Field: "Has", Type: "HAS", Target: "Thing", Many: true},
			},
		},
		{
			Type: "Order",
			ID:   &schema.IDDescriptor{Strategy: schema.StrategyAssigned, Field: "Number", Property: "number"},
			Properties: []schema.PropertyDescriptor{
				{Field: "Version", Property: "version", Type: "int64"},
			},
			Relationships: []schema.RelationshipDescriptor{
				{Field: "Lines", Type: "CONTAINS", Target: "Line", Many: true},
			},
			Version: "Version",
		},
		{Type: "Line", Labels: []string{"Item"}, ID: internal},
		{
			Type: "Group",
			ID:   internal,
			Relationships: []schema.RelationshipDescriptor{
				{Field: "Members", Dynamic: true, Target: "Person"},
			},
		},
		{
			Type: "Person",
			ID:   &schema.IDDescriptor{Strategy: schema.StrategyAssigned, Field: "Name", Property: "name"},
		},
	})
	require.NoError(t, err)

	return s
}

func describe(t *testing.T, s *schema.Schema, name string) *schema.NodeDescription {
	t.Helper()

	d, ok := s.Describe(name)
	require.True(t, ok, name)

	return d
}

func relationship(t *testing.T, d *schema.NodeDescription, field string) *schema.RelationshipDescription {
	t.Helper()

	r, ok := d.Relationship(field)
	require.True(t, ok, field)

	return r
}

func TestGenerator_Statements(t *testing.T) {
	t.Parallel()

	s := testSchema(t)
	g, err := cyphergen.New(s, 16)
	require.NoError(t, err)

	thing := describe(t, s, "Thing")
	order := describe(t, s, "Order")
	line := describe(t, s, "Line")
	group := describe(t, s, "Group")
	person := describe(t, s, "Person")
	has := relationship(t, thing, "Has")
	members := relationship(t, group, "Members")
	lines := relationship(t, order, "Lines")

	tests := []struct {
		name  string
		build func() (*cypher.Statement, error)
		want  string
	}{
		{
			name:  "match all of cyclic type",
			build: func() (*cypher.Statement, error) { return g.MatchAll(thing) },
			want: "MATCH (n:`Thing`) OPTIONAL MATCH (n)-[__rs__:`HAS`*]-(__m__) " +
				"RETURN n AS __sn__, collect(DISTINCT __m__) AS __srn__, collect(DISTINCT __rs__) AS __sr__",
		},
		{
			name:  "match internal id",
			build: func() (*cypher.Statement, error) { return g.MatchByID(thing) },
			want: "MATCH (n:`Thing`) WHERE id(n) = $__id__ OPTIONAL MATCH (n)-[__rs__:`HAS`*]-(__m__) " +
				"RETURN n AS __sn__, collect(DISTINCT __m__) AS __srn__, collect(DISTINCT __rs__) AS __sr__",
		},
		{
			name:  "match all of acyclic type",
			build: func() (*cypher.Statement, error) { return g.MatchAll(order) },
			want: "MATCH (n:`Order`) RETURN n{.*, __internalId__: id(n), __nodeLabels__: labels(n), " +
				"Lines: [(n)-[n_Lines_r:`CONTAINS`]->(n_Lines:`Line`) | " +
				"n_Lines{.*, __internalId__: id(n_Lines), __nodeLabels__: labels(n_Lines)}]} AS n",
		},
		{
			name:  "match assigned ids",
			build: func() (*cypher.Statement, error) { return g.MatchByIDs(order) },
			want: "MATCH (n:`Order`) WHERE n.number IN $__ids__ RETURN n{.*, __internalId__: id(n), __nodeLabels__: labels(n), " +
				"Lines: [(n)-[n_Lines_r:`CONTAINS`]->(n_Lines:`Line`) | " +
				"n_Lines{.*, __internalId__: id(n_Lines), __nodeLabels__: labels(n_Lines)}]} AS n",
		},
		{
			name:  "additional labels are matched",
			build: func() (*cypher.Statement, error) { return g.MatchAll(line) },
			want:  "MATCH (n:`Line`:`Item`) RETURN n{.*, __internalId__: id(n), __nodeLabels__: labels(n)} AS n",
		},
		{
			name: "match where",
			build: func() (*cypher.Statement, error) {
				return g.MatchWhere(line, cypher.PropertyOf(cyphergen.RootAlias, "sku").StartsWith(cypher.Param("prefix")))
			},
			want: "MATCH (n:`Line`:`Item`) WHERE n.sku STARTS WITH $prefix " +
				"RETURN n{.*, __internalId__: id(n), __nodeLabels__: labels(n)} AS n",
		},
		{
			name:  "dynamic relationship projects the relationship",
			build: func() (*cypher.Statement, error) { return g.MatchAll(group) },
			want: "MATCH (n:`Group`) RETURN n{.*, __internalId__: id(n), __nodeLabels__: labels(n), " +
				"Members: [(n)-[n_Members_r]->(n_Members:`Person`) | " +
				"n_Members{.*, __internalId__: id(n_Members), __nodeLabels__: labels(n_Members), __relationship__: n_Members_r}]} AS n",
		},
		{
			name:  "count",
			build: func() (*cypher.Statement, error) { return g.Count(thing) },
			want:  "MATCH (n:`Thing`) RETURN count(n) AS count",
		},
		{
			name:  "exists by id",
			build: func() (*cypher.Statement, error) { return g.ExistsByID(person) },
			want:  "MATCH (n:`Person`) WHERE n.name = $__id__ RETURN count(n) > 0 AS exists",
		},
		{
			name:  "current labels",
			build: func() (*cypher.Statement, error) { return g.CurrentLabels(thing) },
			want:  "MATCH (n:`Thing`) WHERE id(n) = $__id__ RETURN labels(n) AS __nodeLabels__",
		},
		{
			name:  "create node with dynamic labels",
			build: func() (*cypher.Statement, error) { return g.CreateNode(line, []string{"Item", "Fragile"}) },
			want:  "CREATE (n:`Line`:`Item`:`Fragile`) SET n = $__properties__ RETURN id(n) AS __internalId__",
		},
		{
			name:  "update versioned node",
			build: func() (*cypher.Statement, error) { return g.UpdateNode(order, []string{"Rush"}, []string{"Draft"}) },
			want: "MATCH (n:`Order`) WHERE n.number = $__id__ AND n.version = $__version__ " +
				"SET n += $__properties__, n:`Rush` REMOVE n:`Draft` RETURN id(n) AS __internalId__",
		},
		{
			name:  "update without label changes",
			build: func() (*cypher.Statement, error) { return g.UpdateNode(thing, nil, nil) },
			want:  "MATCH (n:`Thing`) WHERE id(n) = $__id__ SET n += $__properties__ RETURN id(n) AS __internalId__",
		},
		{
			name:  "merge assigned id",
			build: func() (*cypher.Statement, error) { return g.MergeNode(person, nil, nil) },
			want:  "MERGE (n:`Person` {name: $__id__}) SET n += $__properties__ RETURN id(n) AS __internalId__",
		},
		{
			name:  "delete versioned",
			build: func() (*cypher.Statement, error) { return g.DeleteByID(order, true) },
			want:  "MATCH (n:`Order`) WHERE n.number = $__id__ AND n.version = $__version__ DETACH DELETE n",
		},
		{
			name:  "delete by id ignoring the version",
			build: func() (*cypher.Statement, error) { return g.DeleteByID(order, false) },
			want:  "MATCH (n:`Order`) WHERE n.number = $__id__ DETACH DELETE n",
		},
		{
			name:  "delete all",
			build: func() (*cypher.Statement, error) { return g.DeleteAll(thing) },
			want:  "MATCH (n:`Thing`) DETACH DELETE n",
		},
		{
			name:  "remove relationships",
			build: func() (*cypher.Statement, error) { return g.RemoveRelationships(has, "") },
			want:  "MATCH (n:`Thing`)-[r:`HAS`]->(m:`Thing`) WHERE id(n) = $fromId DELETE r",
		},
		{
			name:  "remove every dynamic relationship",
			build: func() (*cypher.Statement, error) { return g.RemoveRelationships(members, "") },
			want:  "MATCH (n:`Group`)-[r]->(m:`Person`) WHERE id(n) = $fromId DELETE r",
		},
		{
			name:  "create relationship",
			build: func() (*cypher.Statement, error) { return g.CreateRelationship(lines, "") },
			want: "MATCH (n:`Order`) WHERE n.number = $fromId MATCH (m:`Line`) WHERE id(m) = $toId " +
				"CREATE (n)-[r:`CONTAINS`]->(m) RETURN id(r) AS __internalId__",
		},
		{
			name:  "create dynamic relationship",
			build: func() (*cypher.Statement, error) { return g.CreateRelationship(members, "LEADS") },
			want: "MATCH (n:`Group`) WHERE id(n) = $fromId MATCH (m:`Person`) WHERE m.name = $toId " +
				"CREATE (n)-[r:`LEADS`]->(m) RETURN id(r) AS __internalId__",
		},
		{
			name:  "create related node",
			build: func() (*cypher.Statement, error) { return g.CreateRelatedNode(has, thing, "", nil) },
			want: "MATCH (n:`Thing`) WHERE id(n) = $fromId CREATE (n)-[r:`HAS`]->(m:`Thing`) " +
				"SET m = $__properties__ RETURN id(m) AS __internalId__",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stmt, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt.Cypher())
			assert.Empty(t, stmt.Parameters(), "generated statements leave parameters unbound")
		})
	}
}

func TestGenerator_Cache(t *testing.T) {
	t.Parallel()

	s := testSchema(t)
	g, err := cyphergen.New(s, 0)
	require.NoError(t, err)

	thing := describe(t, s, "Thing")

	first, err := g.MatchAll(thing)
	require.NoError(t, err)

	second, err := g.MatchAll(thing)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, g.CacheLen())

	_, err = g.MatchWhere(thing, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, g.CacheLen(), "conditional reads are not cached")

	a, err := g.CreateNode(thing, []string{"A"})
	require.NoError(t, err)

	b, err := g.CreateNode(thing, []string{"B"})
	require.NoError(t, err)
	assert.NotEqual(t, a.Cypher(), b.Cypher())
}

func TestGenerator_Errors(t *testing.T) {
	t.Parallel()

	s := testSchema(t)
	g, err := cyphergen.New(s, 4)
	require.NoError(t, err)

	_, err = g.MergeNode(describe(t, s, "Thing"), nil, nil)
	require.ErrorIs(t, err, cyphergen.ErrInternalMerge)

	members := relationship(t, describe(t, s, "Group"), "Members")

	_, err = g.CreateRelationship(members, "")
	require.ErrorIs(t, err, cyphergen.ErrMissingType)

	_, err = g.CreateRelatedNode(members, describe(t, s, "Person"), "", nil)
	require.ErrorIs(t, err, cyphergen.ErrMissingType)
}

func TestGenerator_DynamicSkipsClaimedTypes(t *testing.T) {
	t.Parallel()

	internal := &schema.IDDescriptor{Strategy: schema.StrategyInternal, Field: "ID"}

	s, err := schema.New([]schema.TypeDescriptor{
		{
			Type: "Team",
			ID:   internal,
			Relationships: []schema.RelationshipDescriptor{
				{Field: "Leader", Type: "LEADS", Target: "Member"},
				{Field: "Members", Dynamic: true, Target: "Member"},
			},
		},
		{Type: "Member", ID: internal},
	})
	require.NoError(t, err)

	g, err := cyphergen.New(s, 0)
	require.NoError(t, err)

	team := describe(t, s, "Team")
	members := relationship(t, team, "Members")

	assert.Equal(t, []string{"LEADS"}, members.ClaimedTypes())
	assert.Empty(t, relationship(t, team, "Leader").ClaimedTypes())

	read, err := g.MatchAll(team)
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (n:`Team`) RETURN n{.*, __internalId__: id(n), __nodeLabels__: labels(n), "+
			"Leader: [(n)-[n_Leader_r:`LEADS`]->(n_Leader:`Member`) | "+
			"n_Leader{.*, __internalId__: id(n_Leader), __nodeLabels__: labels(n_Leader)}], "+
			"Members: [(n)-[n_Members_r]->(n_Members:`Member`) WHERE NOT type(n_Members_r) IN ['LEADS'] | "+
			"n_Members{.*, __internalId__: id(n_Members), __nodeLabels__: labels(n_Members), __relationship__: n_Members_r}]} AS n",
		read.Cypher())

	remove, err := g.RemoveRelationships(members, "")
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (n:`Team`)-[r]->(m:`Member`) WHERE id(n) = $fromId AND NOT type(r) IN ['LEADS'] DELETE r",
		remove.Cypher())

	typed, err := g.RemoveRelationships(members, "MEMBER")
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Team`)-[r:`MEMBER`]->(m:`Member`) WHERE id(n) = $fromId DELETE r", typed.Cypher())
}
