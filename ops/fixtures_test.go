package ops_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/convert"
	"github.com/rlch/ogm/cyphergen"
	"github.com/rlch/ogm/mapping"
	"github.com/rlch/ogm/ops"
	"github.com/rlch/ogm/schema"
)

type Thing struct {
	ID   *int64
	Name string
	Has  []*Thing
}

type Person struct {
	Name    string
	ActedIn []*Role
}

type Movie struct {
	ID     *int64
	Title  string
	Actors []*Person
}

type Role struct {
	Name  string
	Movie *Movie
}

type Team struct {
	ID      *int64
	Name    string
	Leader  *Member
	Members map[string][]*Member
}

type Member struct {
	ID   *int64
	Name string
}

type Pet struct {
	UUID    string
	Name    string
	Version *int64
	Tags    []string
	Friends map[string][]*Pet
}

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()

	internal := &schema.IDDescriptor{Strategy: schema.StrategyInternal, Field: "ID"}

	s, err := schema.New([]schema.TypeDescriptor{
		{
			Type:       "Thing",
			ID:         internal,
			Properties: []schema.PropertyDescriptor{{Field: "Name", Property: "name", Type: "string"}},
			Relationships: []schema.RelationshipDescriptor{
				{Field: "Has", Type: "HAS", Target: "Thing", Many: true},
			},
		},
		{
			Type: "Person",
			ID:   &schema.IDDescriptor{Strategy: schema.StrategyAssigned, Field: "Name", Property: "name"},
			Relationships: []schema.RelationshipDescriptor{
				{Field: "ActedIn", Type: "ACTED_IN", Target: "Movie", Many: true, Properties: "Role"},
			},
		},
		{
			Type:       "Movie",
			ID:         internal,
			Properties: []schema.PropertyDescriptor{{Field: "Title", Property: "title", Type: "string"}},
			Relationships: []schema.RelationshipDescriptor{
				{Field: "Actors", Type: "ACTED_IN", Direction: "INCOMING", Target: "Person", Many: true},
			},
		},
		{
			Type:                   "Role",
			RelationshipProperties: true,
			Target:                 "Movie",
			Properties:             []schema.PropertyDescriptor{{Field: "Name", Property: "role", Type: "string"}},
		},
		{
			Type: "Pet",
			ID: &schema.IDDescriptor{
				Strategy:  schema.StrategyGenerated,
				Field:     "UUID",
				Property:  "uuid",
				Generator: "uuid",
			},
			Properties: []schema.PropertyDescriptor{
				{Field: "Name", Property: "name", Type: "string"},
				{Field: "Version", Property: "version", Type: "*int64"},
			},
			Relationships: []schema.RelationshipDescriptor{
				{Field: "Friends", Dynamic: true, Target: "Pet"},
			},
			DynamicLabels: &schema.FieldDescriptor{Field: "Tags"},
			Version:       "Version",
		},
		{
			Type:       "Team",
			ID:         internal,
			Properties: []schema.PropertyDescriptor{{Field: "Name", Property: "name", Type: "string"}},
			Relationships: []schema.RelationshipDescriptor{
				{Field: "Leader", Type: "LEADS", Target: "Member"},
				{Field: "Members", Dynamic: true, Target: "Member"},
			},
		},
		{
			Type:       "Member",
			ID:         internal,
			Properties: []schema.PropertyDescriptor{{Field: "Name", Property: "name", Type: "string"}},
		},
	})
	require.NoError(t, err)

	return s
}

func testBindings() []mapping.Binding {
	return []mapping.Binding{
		mapping.Bind[Thing]("Thing", nil,
			mapping.Field("ID", func(t *Thing) *int64 { return t.ID }, func(t *Thing, v *int64) { t.ID = v }),
			mapping.Field("Name", func(t *Thing) string { return t.Name }, func(t *Thing, v string) { t.Name = v }),
			mapping.Many("Has", func(t *Thing) []*Thing { return t.Has }, func(t *Thing, v []*Thing) { t.Has = v }),
		),
		mapping.Bind[Person]("Person", nil,
			mapping.Field("Name", func(p *Person) string { return p.Name }, func(p *Person, v string) { p.Name = v }),
			mapping.Many("ActedIn", func(p *Person) []*Role { return p.ActedIn }, func(p *Person, v []*Role) { p.ActedIn = v }),
		),
		mapping.Bind[Movie]("Movie", nil,
			mapping.Field("ID", func(m *Movie) *int64 { return m.ID }, func(m *Movie, v *int64) { m.ID = v }),
			mapping.Field("Title", func(m *Movie) string { return m.Title }, func(m *Movie, v string) { m.Title = v }),
			mapping.Many("Actors", func(m *Movie) []*Person { return m.Actors }, func(m *Movie, v []*Person) { m.Actors = v }),
		),
		mapping.Bind[Role]("Role", nil,
			mapping.Field("Name", func(r *Role) string { return r.Name }, func(r *Role, v string) { r.Name = v }),
			mapping.One("Movie", func(r *Role) *Movie { return r.Movie }, func(r *Role, v *Movie) { r.Movie = v }),
		),
		mapping.Bind[Pet]("Pet", nil,
			mapping.Field("UUID", func(p *Pet) string { return p.UUID }, func(p *Pet, v string) { p.UUID = v }),
			mapping.Field("Name", func(p *Pet) string { return p.Name }, func(p *Pet, v string) { p.Name = v }),
			mapping.Field("Version", func(p *Pet) *int64 { return p.Version }, func(p *Pet, v *int64) { p.Version = v }),
			mapping.Field("Tags", func(p *Pet) []string { return p.Tags }, func(p *Pet, v []string) { p.Tags = v }),
			mapping.DynamicMany("Friends",
				func(p *Pet) map[string][]*Pet { return p.Friends },
				func(p *Pet, v map[string][]*Pet) { p.Friends = v },
			),
		),
		mapping.Bind[Team]("Team", nil,
			mapping.Field("ID", func(t *Team) *int64 { return t.ID }, func(t *Team, v *int64) { t.ID = v }),
			mapping.Field("Name", func(t *Team) string { return t.Name }, func(t *Team, v string) { t.Name = v }),
			mapping.One("Leader", func(t *Team) *Member { return t.Leader }, func(t *Team, v *Member) { t.Leader = v }),
			mapping.DynamicMany("Members",
				func(t *Team) map[string][]*Member { return t.Members },
				func(t *Team, v map[string][]*Member) { t.Members = v },
			),
		),
		mapping.Bind[Member]("Member", nil,
			mapping.Field("ID", func(m *Member) *int64 { return m.ID }, func(m *Member, v *int64) { m.ID = v }),
			mapping.Field("Name", func(m *Member) string { return m.Name }, func(m *Member, v string) { m.Name = v }),
		),
	}
}

type statement struct {
	query  string
	params map[string]any
}

// fakeRunner records statements. Statements returning an internal id echo an
// int64 $__id__ or get increasing ids, unless respond answers them.
type fakeRunner struct {
	mu         sync.Mutex
	statements []statement
	respond    func(query string, params map[string]any) (*ogm.Result, error)
	nextID     int64
	closed     bool
}

func (r *fakeRunner) Run(_ context.Context, query string, params map[string]any) (*ogm.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statements = append(r.statements, statement{query: query, params: params})

	if r.respond != nil {
		res, err := r.respond(query, params)
		if res != nil || err != nil {
			return res, err
		}
	}

	if strings.HasSuffix(query, "AS "+ogm.KeyInternalID) {
		id, ok := params[ogm.ParamID].(int64)
		if !ok {
			r.nextID++
			id = r.nextID
		}

		return &ogm.Result{
			Keys: []string{ogm.KeyInternalID},
			Rows: []ogm.Row{ogm.NewRow([]string{ogm.KeyInternalID}, []any{id})},
		}, nil
	}

	return &ogm.Result{}, nil
}

func (r *fakeRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	return nil
}

func (r *fakeRunner) queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.statements))
	for i, s := range r.statements {
		out[i] = s.query
	}

	return out
}

type countingGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGenerator) Generate(label string, _ any) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++

	return fmt.Sprintf("%s-%d", strings.ToLower(label), g.calls), nil
}

func newTemplate(t *testing.T, runner ogm.StatementRunner, opts ...ops.Option) *ops.Template {
	t.Helper()

	s := testSchema(t)

	m, err := mapping.New(s, convert.Default(), testBindings()...)
	require.NoError(t, err)

	g, err := cyphergen.New(s, 0)
	require.NoError(t, err)

	return ops.New(runner, m, g, opts...)
}

func ptr[T any](v T) *T {
	return &v
}
