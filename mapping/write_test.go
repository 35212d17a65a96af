package mapping_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rlch/ogm/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDematerialize(t *testing.T) {
	t.Parallel()

	m := newMapper(t)

	tests := []struct {
		name   string
		entity any
		want   mapping.NodeState
	}{
		{
			name:   "new internal id",
			entity: &Thing{Name: "a"},
			want: mapping.NodeState{
				Persistence: mapping.Created,
				Labels:      []string{"Thing"},
				Properties:  map[string]any{"name": "a"},
			},
		},
		{
			name:   "existing internal id",
			entity: &Thing{ID: ptr(int64(4)), Name: "a"},
			want: mapping.NodeState{
				Persistence: mapping.Existing,
				ID:          int64(4),
				Labels:      []string{"Thing"},
				Properties:  map[string]any{"name": "a"},
			},
		},
		{
			name:   "assigned id without version is merged",
			entity: &Person{Name: "Keanu", Born: 1964},
			want: mapping.NodeState{
				Persistence: mapping.Unknown,
				ID:          "Keanu",
				Labels:      []string{"Person"},
				Properties:  map[string]any{"name": "Keanu", "born": int64(1964)},
			},
		},
		{
			name:   "versioned entity with a version exists",
			entity: &Pet{UUID: "rex", Name: "Rex", Version: ptr(int64(3)), Tags: []string{"Good", "Pet"}},
			want: mapping.NodeState{
				Persistence:   mapping.Existing,
				ID:            "rex",
				Labels:        []string{"Pet", "Good"},
				DynamicLabels: []string{"Good"},
				Properties:    map[string]any{"uuid": "rex", "name": "Rex", "version": int64(4)},
				Version:       3,
				NextVersion:   4,
			},
		},
		{
			name:   "versioned entity without a version is new",
			entity: &Pet{UUID: "rex", Name: "Rex"},
			want: mapping.NodeState{
				Persistence: mapping.Created,
				ID:          "rex",
				Labels:      []string{"Pet"},
				Properties:  map[string]any{"uuid": "rex", "name": "Rex", "version": int64(0)},
				Version:     -1,
				NextVersion: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := m.Dematerialize(tt.entity, nil)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, *got, cmpopts.IgnoreFields(mapping.NodeState{}, "Description", "Entity")); diff != "" {
				t.Errorf("Dematerialize() mismatch (-want +got):\n%s", diff)
			}

			assert.Same(t, tt.entity, got.Entity)
		})
	}
}

func TestDematerialize_GeneratedID(t *testing.T) {
	t.Parallel()

	m := newMapper(t)
	gen := &countingGenerator{}
	generators := map[string]mapping.IDGenerator{"uuid": gen}

	pet := &Pet{Name: "Rex"}

	st, err := m.Dematerialize(pet, generators)
	require.NoError(t, err)
	assert.Equal(t, mapping.Created, st.Persistence)
	assert.Equal(t, "Pet-1", pet.UUID)
	assert.Equal(t, "Pet-1", st.ID)
	assert.Equal(t, "Pet-1", st.Properties["uuid"])
	assert.Equal(t, 1, gen.calls)

	pet.Version = ptr(st.NextVersion)

	st, err = m.Dematerialize(pet, generators)
	require.NoError(t, err)
	assert.Equal(t, mapping.Existing, st.Persistence)
	assert.Equal(t, "Pet-1", st.ID)
	assert.Equal(t, 1, gen.calls, "an assigned id is never regenerated")
}

func TestDematerialize_Errors(t *testing.T) {
	t.Parallel()

	m := newMapper(t)

	_, err := m.Dematerialize(&Pet{Name: "Rex"}, nil)
	require.ErrorIs(t, err, mapping.ErrMissingGenerator)

	_, err = m.Dematerialize(&Person{Born: 1964}, nil)
	require.ErrorIs(t, err, mapping.ErrMissingID)

	_, err = m.Dematerialize(&Role{Name: "Neo"}, nil)
	require.ErrorIs(t, err, mapping.ErrUnknownEntity)
}

func TestRelationships(t *testing.T) {
	t.Parallel()

	m := newMapper(t)

	matrix := &Movie{Title: "The Matrix"}
	keanu := &Person{Name: "Keanu", ActedIn: []*Role{{Name: "Neo", Movie: matrix}}}

	got, err := m.Relationships(keanu)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ActedIn", got[0].Relationship.Field)
	require.Len(t, got[0].Related, 1)
	assert.Same(t, matrix, got[0].Related[0].Entity)
	assert.Equal(t, "ACTED_IN", got[0].Related[0].Type)
	assert.Equal(t, map[string]any{"role": "Neo"}, got[0].Related[0].Properties)

	fido, tom := &Pet{Name: "Fido"}, &Pet{Name: "Tom"}
	rex := &Pet{
		Name:    "Rex",
		Friends: map[string][]*Pet{"LIKES": {fido}, "CHASES": {tom, nil}},
	}

	got, err = m.Relationships(rex)
	require.NoError(t, err)
	require.Len(t, got, 1, "empty relationship fields are skipped")
	require.Len(t, got[0].Related, 2)
	assert.Equal(t, "CHASES", got[0].Related[0].Type)
	assert.Same(t, tom, got[0].Related[0].Entity)
	assert.Equal(t, "LIKES", got[0].Related[1].Type)
	assert.Same(t, fido, got[0].Related[1].Entity)
}

func TestRelationships_Unresolved(t *testing.T) {
	t.Parallel()

	m := newMapper(t)

	_, err := m.Relationships(&Person{Name: "Keanu", ActedIn: []*Role{{Name: "Neo"}}})
	require.ErrorIs(t, err, mapping.ErrUnresolvedRelationship)
	assert.Contains(t, err.Error(), "ActedIn[0]")
}

func TestProcessedRelationships(t *testing.T) {
	t.Parallel()

	m := newMapper(t)

	actedIn := relationship(t, m, "Person", "ActedIn")
	actors := relationship(t, m, "Movie", "Actors")
	siblings := relationship(t, m, "Pet", "Siblings")

	keanu, matrix := &Person{Name: "Keanu"}, &Movie{}

	p := mapping.NewProcessedRelationships()
	require.False(t, p.Processed(actedIn, "ACTED_IN", keanu, matrix))

	p.MarkProcessed(actedIn, "ACTED_IN", keanu, matrix)
	assert.True(t, p.Processed(actedIn, "ACTED_IN", keanu, matrix))
	assert.True(t, p.Processed(actors, "ACTED_IN", matrix, keanu), "the obverse names the same edge")
	assert.False(t, p.Processed(actedIn, "DIRECTED", keanu, matrix))
	assert.True(t, p.Arrived(matrix, actors))
	assert.False(t, p.Arrived(keanu, actedIn))

	rex, tom := &Pet{UUID: "rex"}, &Pet{UUID: "tom"}

	p.MarkProcessed(siblings, "SIBLING", rex, tom)
	assert.True(t, p.Processed(siblings, "SIBLING", tom, rex), "undirected edges match either way")
	assert.True(t, p.Arrived(tom, siblings))
	assert.Equal(t, 2, p.Len())
}
