package ops_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/cyphergen"
	"github.com/rlch/ogm/mapping"
	"github.com/rlch/ogm/ops"
)

func TestSave_ParentWithNewChild(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	tpl := newTemplate(t, runner)

	child := &Thing{Name: "child"}
	parent := &Thing{Name: "parent", Has: []*Thing{child}}

	trace, err := tpl.Save(context.Background(), parent)
	require.NoError(t, err)

	want := []string{
		"CREATE (n:`Thing`) SET n = $__properties__ RETURN id(n) AS __internalId__",
		"MATCH (n:`Thing`) WHERE id(n) = $fromId CREATE (n)-[r:`HAS`]->(m:`Thing`) " +
			"SET m = $__properties__ RETURN id(m) AS __internalId__",
	}

	if diff := cmp.Diff(want, runner.queries()); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, parent.ID)
	assert.Equal(t, int64(1), *parent.ID)
	require.NotNil(t, child.ID)
	assert.Equal(t, int64(2), *child.ID)

	assert.Equal(t, map[string]any{"name": "parent"}, runner.statements[0].params[ogm.ParamProperties])
	assert.Equal(t, int64(1), runner.statements[1].params[ogm.ParamFromID])
	assert.Equal(t, map[string]any{"name": "child"}, runner.statements[1].params[ogm.ParamProperties])

	assert.Equal(t, []string{"create-node", "create-related-node"}, trace.StepNames())
	assert.True(t, trace.Ok())
}

func TestSave_ExistingRemovesRelationshipsFirst(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	tpl := newTemplate(t, runner)

	child := &Thing{ID: ptr(int64(8)), Name: "child"}
	parent := &Thing{ID: ptr(int64(7)), Name: "parent", Has: []*Thing{child}}

	trace, err := tpl.Save(context.Background(), parent)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"update-node",
		"remove-relationships",
		"update-node",
		"create-relationship",
	}, trace.StepNames())

	queries := runner.queries()
	assert.Equal(t, "MATCH (n:`Thing`)-[r:`HAS`]->(m:`Thing`) WHERE id(n) = $fromId DELETE r", queries[1])
	assert.Equal(t, int64(7), runner.statements[1].params[ogm.ParamFromID])
	assert.Equal(t, int64(7), runner.statements[3].params[ogm.ParamFromID])
	assert.Equal(t, int64(8), runner.statements[3].params[ogm.ParamToID])
}

func TestSave_WriteCycleCreatesEachEdgeOnce(t *testing.T) {
	t.Parallel()

	t.Run("self-referencing type", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		tpl := newTemplate(t, runner)

		a := &Thing{Name: "a"}
		b := &Thing{Name: "b", Has: []*Thing{a}}
		a.Has = []*Thing{b}

		trace, err := tpl.Save(context.Background(), a)
		require.NoError(t, err)

		assert.Equal(t, []string{"create-node", "create-related-node", "create-relationship"}, trace.StepNames())
		assert.Equal(t, *a.ID, runner.statements[2].params[ogm.ParamToID])
		assert.Equal(t, *b.ID, runner.statements[2].params[ogm.ParamFromID])
	})

	t.Run("obverse relationships", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		tpl := newTemplate(t, runner)

		keanu := &Person{Name: "Keanu"}
		matrix := &Movie{Title: "The Matrix", Actors: []*Person{keanu}}
		keanu.ActedIn = []*Role{{Name: "Neo", Movie: matrix}}

		trace, err := tpl.Save(context.Background(), keanu)
		require.NoError(t, err)

		assert.Equal(t, []string{"merge-node", "remove-relationships", "create-related-node"}, trace.StepNames())

		created := runner.statements[2]
		assert.Equal(t,
			"MATCH (n:`Person`) WHERE n.name = $fromId CREATE (n)-[r:`ACTED_IN`]->(m:`Movie`) "+
				"SET m = $__properties__, r = $__relProperties__ RETURN id(m) AS __internalId__",
			created.query)
		assert.Equal(t, "Keanu", created.params[ogm.ParamFromID])
		assert.Equal(t, map[string]any{"role": "Neo"}, created.params[ogm.ParamRelationshipProperties])
		assert.Equal(t, "Keanu", keanu.Name, "assigned ids are preserved")
		require.NotNil(t, matrix.ID)
	})

	t.Run("obverse reached from the other end", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		tpl := newTemplate(t, runner)

		keanu := &Person{Name: "Keanu"}
		matrix := &Movie{ID: ptr(int64(3)), Title: "The Matrix", Actors: []*Person{keanu}}
		keanu.ActedIn = []*Role{{Name: "Neo", Movie: matrix}}

		trace, err := tpl.Save(context.Background(), matrix)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"update-node",
			"remove-relationships",
			"merge-node",
			"create-relationship",
		}, trace.StepNames(), "the person arrived through the obverse keeps its relationships")
	})
}

func TestSave_GeneratedIDs(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	gen := &countingGenerator{}
	tpl := newTemplate(t, runner, ops.WithIDGenerator("uuid", gen))

	rex := &Pet{Name: "Rex", Tags: []string{"Good"}}
	fido := &Pet{Name: "Fido", Friends: map[string][]*Pet{"LIKES": {rex}}}
	rex.Friends = map[string][]*Pet{"LIKES": {fido}}

	trace, err := tpl.Save(context.Background(), rex)
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls, "one id per entity")
	assert.Equal(t, "pet-1", rex.UUID)
	assert.Equal(t, "pet-2", fido.UUID)
	assert.Equal(t, ptr(int64(0)), rex.Version)
	assert.Equal(t, ptr(int64(0)), fido.Version)
	assert.Equal(t, []string{"create-node", "create-related-node", "create-relationship"}, trace.StepNames())
	assert.Equal(t, "CREATE (n:`Pet`:`Good`) SET n = $__properties__ RETURN id(n) AS __internalId__", runner.queries()[0])

	edge := runner.statements[2]
	assert.Equal(t, "pet-2", edge.params[ogm.ParamFromID])
	assert.Equal(t, "pet-1", edge.params[ogm.ParamToID])
	assert.Contains(t, edge.query, "[r:`LIKES`]")

	_, err = tpl.Save(context.Background(), rex)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls, "set ids are never regenerated")
	assert.Equal(t, ptr(int64(1)), rex.Version)
}

func TestSave_MissingGenerator(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	tpl := newTemplate(t, runner)

	_, err := tpl.Save(context.Background(), &Pet{Name: "Rex"})
	require.ErrorIs(t, err, mapping.ErrMissingGenerator)
	assert.Empty(t, runner.queries(), "no statement runs before the id is known")
}

func TestSave_DynamicLabelsAndOptimisticLocking(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		respond: func(query string, _ map[string]any) (*ogm.Result, error) {
			switch {
			case strings.Contains(query, "RETURN labels(n)"):
				return &ogm.Result{Rows: []ogm.Row{
					ogm.NewRow([]string{ogm.KeyNodeLabels}, []any{[]any{"Pet", "Old", "Good"}}),
				}}, nil
			case strings.Contains(query, "SET n +="):
				return &ogm.Result{}, nil
			}

			return nil, nil
		},
	}
	tpl := newTemplate(t, runner)

	rex := &Pet{UUID: "rex", Name: "Rex", Version: ptr(int64(3)), Tags: []string{"Good"}}

	trace, err := tpl.Save(context.Background(), rex)
	require.ErrorIs(t, err, ogm.ErrOptimisticLocking)

	assert.Equal(t, []string{"current-labels", "update-node"}, trace.StepNames())
	assert.Equal(t,
		"MATCH (n:`Pet`) WHERE n.uuid = $__id__ AND n.version = $__version__ "+
			"SET n += $__properties__, n:`Good` REMOVE n:`Old` RETURN id(n) AS __internalId__",
		runner.queries()[1])
	assert.Equal(t, int64(3), runner.statements[1].params[ogm.ParamVersion])
	assert.Equal(t, ptr(int64(3)), rex.Version, "a failed save leaves the version")
}

func TestSave_RunnerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "constraint violation",
			err: &ogm.RunnerError{
				Code:    "Neo.ClientError.Schema.ConstraintValidationFailed",
				Message: "Node(1) already exists with label `Person` and property `name` = 'Keanu'",
			},
			want: ogm.ErrConstraintViolation,
		},
		{
			name: "other runner error",
			err:  &ogm.RunnerError{Code: "Neo.TransientError.General.DatabaseUnavailable"},
			want: ogm.ErrDataAccess,
		},
		{
			name: "transport error",
			err:  errors.New("connection reset"),
			want: ogm.ErrDataAccess,
		},
		{
			name: "canceled",
			err:  context.Canceled,
			want: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{
				respond: func(string, map[string]any) (*ogm.Result, error) {
					return nil, tt.err
				},
			}
			tpl := newTemplate(t, runner)

			trace, err := tpl.Save(context.Background(), &Person{Name: "Keanu"})
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, tt.err, "the runner error stays in the chain")
			assert.False(t, trace.Ok())
			assert.Equal(t, 1, trace.Errors)
			assert.Len(t, runner.queries(), 1, "no retries")
		})
	}
}

func TestSaveAll_SharedEntitiesOnce(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	tpl := newTemplate(t, runner)

	shared := &Thing{Name: "shared"}
	a := &Thing{Name: "a", Has: []*Thing{shared}}
	b := &Thing{Name: "b", Has: []*Thing{shared}}

	trace, err := tpl.SaveAll(context.Background(), a, b)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"create-node",
		"create-related-node",
		"create-node",
		"create-relationship",
	}, trace.StepNames())
	assert.Equal(t, *shared.ID, runner.statements[3].params[ogm.ParamToID])
}

func teamRow() ogm.Row {
	member := func(id int64, name string, rel *ogm.Relationship) map[string]any {
		m := map[string]any{
			"name":            name,
			ogm.KeyInternalID: id,
			ogm.KeyNodeLabels: []any{"Member"},
		}
		if rel != nil {
			m[ogm.KeyRelationship] = *rel
		}

		return m
	}

	return ogm.NewRow([]string{cyphergen.RootAlias}, []any{map[string]any{
		"name":            "Core",
		ogm.KeyInternalID: int64(1),
		ogm.KeyNodeLabels: []any{"Team"},
		"Leader":          []any{member(2, "Ada", nil)},
		"Members": []any{
			member(2, "Ada", &ogm.Relationship{ID: 10, Type: "LEADS", StartID: 1, EndID: 2}),
			member(3, "Bob", &ogm.Relationship{ID: 11, Type: "MEMBER", StartID: 1, EndID: 3}),
		},
	}})
}

func TestSave_DynamicRelationshipKeepsStaticEdges(t *testing.T) {
	t.Parallel()

	wantSteps := []string{
		"update-node",
		"remove-relationships",
		"update-node",
		"create-relationship",
		"remove-relationships",
		"update-node",
		"create-relationship",
	}
	wantDeletes := []string{
		"MATCH (n:`Team`)-[r:`LEADS`]->(m:`Member`) WHERE id(n) = $fromId DELETE r",
		"MATCH (n:`Team`)-[r:`MEMBER`]->(m:`Member`) WHERE id(n) = $fromId DELETE r",
	}

	deletes := func(runner *fakeRunner) []string {
		var out []string

		for _, q := range runner.queries() {
			if strings.HasSuffix(q, "DELETE r") {
				out = append(out, q)
			}
		}

		return out
	}

	t.Run("read then save", func(t *testing.T) {
		t.Parallel()

		tpl := newTemplate(t, &fakeRunner{respond: rows(teamRow())})

		got, err := tpl.FindByID(context.Background(), "Team", int64(1))
		require.NoError(t, err)

		team, ok := got.(*Team)
		require.True(t, ok)
		require.NotNil(t, team.Leader)
		assert.Equal(t, "Ada", team.Leader.Name)
		require.Len(t, team.Members, 1, "the LEADS edge belongs to Leader")
		require.Len(t, team.Members["MEMBER"], 1)
		assert.Equal(t, "Bob", team.Members["MEMBER"][0].Name)

		runner := &fakeRunner{}

		trace, err := tpl.WithRunner(runner).Save(context.Background(), team)
		require.NoError(t, err)
		assert.Equal(t, wantSteps, trace.StepNames())

		if diff := cmp.Diff(wantDeletes, deletes(runner)); diff != "" {
			t.Errorf("deletes mismatch (-want +got):\n%s", diff)
		}

		last := runner.queries()[len(runner.queries())-1]
		assert.Contains(t, last, "CREATE (n)-[r:`MEMBER`]->(m)")
		assert.Contains(t, runner.queries()[3], "CREATE (n)-[r:`LEADS`]->(m)")
	})

	t.Run("claimed type set on the dynamic field", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		tpl := newTemplate(t, runner)

		ada := &Member{ID: ptr(int64(2)), Name: "Ada"}
		bob := &Member{ID: ptr(int64(3)), Name: "Bob"}
		team := &Team{
			ID:      ptr(int64(1)),
			Name:    "Core",
			Leader:  ada,
			Members: map[string][]*Member{"LEADS": {ada}, "MEMBER": {bob}},
		}

		trace, err := tpl.Save(context.Background(), team)
		require.NoError(t, err)
		assert.Equal(t, wantSteps, trace.StepNames())

		if diff := cmp.Diff(wantDeletes, deletes(runner)); diff != "" {
			t.Errorf("deletes mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSave_DynamicLabelsRoundTrip(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	tpl := newTemplate(t, runner)

	rex := &Pet{UUID: "rex", Name: "Rex", Tags: []string{"X", "Y"}}

	_, err := tpl.Save(context.Background(), rex)
	require.NoError(t, err)

	create := runner.statements[0]
	require.True(t, strings.HasPrefix(create.query, "CREATE (n:`Pet`:`X`:`Y`) "), create.query)

	props, ok := create.params[ogm.ParamProperties].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rex", props["uuid"])
	assert.Equal(t, int64(0), props["version"])
	assert.NotContains(t, props, "Tags")

	stored := ogm.Node{ID: 1, Labels: []string{"Pet", "X", "Y"}, Props: props}
	reader := &fakeRunner{respond: rows(ogm.NewRow(
		[]string{ogm.KeyStartNode, ogm.KeyRelatedNodes, ogm.KeyRelationships},
		[]any{stored, []any{}, []any{}},
	))}

	got, err := tpl.WithRunner(reader).FindByID(context.Background(), "Pet", "rex")
	require.NoError(t, err)

	pet, ok := got.(*Pet)
	require.True(t, ok)
	assert.Equal(t, "Rex", pet.Name)
	assert.Equal(t, []string{"X", "Y"}, pet.Tags)
}
