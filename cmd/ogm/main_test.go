package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/cyphergen"
	"github.com/rlch/ogm/schema"
)

const thingsYAML = `types:
  - type: Thing
    id:
      strategy: internal
      field: ID
    properties:
      - field: Name
        property: name
        type: string
    relationships:
      - field: Has
        type: HAS
        target: Thing
        many: true
`

const peopleYAML = `types:
  - type: Person
    id: {strategy: assigned, field: Name, property: name, type: string}
    relationships:
      - {field: Likes, type: LIKES, target: Thing, direction: incoming}
  - type: Counter
    id: {strategy: assigned, field: Number, property: number, type: int64}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func loadTestSchema(t *testing.T, contents ...string) *schema.Schema {
	t.Helper()

	dir := t.TempDir()

	var files []string

	for i, content := range contents {
		path := filepath.Join(dir, string(rune('a'+i))+".schema.yaml")
		writeFile(t, path, content)
		files = append(files, path)
	}

	s, err := schema.LoadFiles(files...)
	require.NoError(t, err)

	return s
}

func TestSchemaFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "things.schema.yaml"), thingsYAML)
	writeFile(t, filepath.Join(dir, "nested", "people.schema.yml"), peopleYAML)
	writeFile(t, filepath.Join(dir, "config.yaml"), "runner: neo4j\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# schema\n")

	single := filepath.Join(dir, "config.yaml")

	got, err := schemaFiles([]string{dir, single})
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "nested", "people.schema.yml"),
		filepath.Join(dir, "things.schema.yaml"),
		single,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schemaFiles() mismatch (-want +got):\n%s", diff)
	}

	_, err = schemaFiles([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)
}

func TestIsSchemaFile(t *testing.T) {
	t.Parallel()

	assert.True(t, isSchemaFile("movies.schema.yaml"))
	assert.True(t, isSchemaFile("movies.schema.yml"))
	assert.False(t, isSchemaFile("movies.yaml"))
	assert.False(t, isSchemaFile(".ogm.yaml"))
}

// runWith runs action under a command carrying the root and connection flags.
func runWith(t *testing.T, args []string, action cli.ActionFunc) {
	t.Helper()

	a := &app{}
	root := a.command()
	root.Before = nil
	root.Commands = nil
	root.Flags = append(root.Flags, connectionFlags()...)
	root.Action = action

	require.NoError(t, root.Run(context.Background(), append([]string{"ogm"}, args...)))
}

func TestLoadSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "things.schema.yaml"), thingsYAML)
	writeFile(t, filepath.Join(dir, "people.schema.yaml"), peopleYAML)

	t.Run("flag", func(t *testing.T) {
		t.Parallel()

		runWith(t, []string{"--schema", dir}, func(_ context.Context, cmd *cli.Command) error {
			s, files, err := loadSchema(cmd, &ogm.Config{})
			require.NoError(t, err)
			assert.Len(t, files, 2)
			assert.Len(t, s.Descriptions(), 3)

			return nil
		})
	})

	t.Run("config", func(t *testing.T) {
		t.Parallel()

		cfg := &ogm.Config{Schema: []string{filepath.Join(dir, "things.schema.yaml")}}

		runWith(t, nil, func(_ context.Context, cmd *cli.Command) error {
			s, files, err := loadSchema(cmd, cfg)
			require.NoError(t, err)
			assert.Len(t, files, 1)

			_, ok := s.Describe("Thing")
			assert.True(t, ok)

			return nil
		})
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		empty := t.TempDir()

		runWith(t, []string{"--schema", empty}, func(_ context.Context, cmd *cli.Command) error {
			_, _, err := loadSchema(cmd, &ogm.Config{})
			require.ErrorIs(t, err, ErrNoSchema)

			return nil
		})
	})
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "neo4j:\n  uri: bolt://db:7687\n")

	runWith(t, []string{"--config", path}, func(_ context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		require.NoError(t, err)
		require.NotNil(t, cfg.Neo4j)
		assert.Equal(t, "bolt://db:7687", cfg.Neo4j.URI)

		return nil
	})
}

func TestOpenRunner_NoURI(t *testing.T) {
	t.Parallel()

	runWith(t, nil, func(_ context.Context, cmd *cli.Command) error {
		_, err := openRunner(cmd, &ogm.Config{})
		require.ErrorIs(t, err, ErrNoConnectionURI)

		return nil
	})
}

func TestWriteSchema(t *testing.T) {
	t.Parallel()

	s := loadTestSchema(t, thingsYAML)

	var buf bytes.Buffer
	writeSchema(&buf, stylesFor(&buf), s)

	want := "\nThing :Thing\n" +
		"  id ID internal\n" +
		"  Name name string\n" +
		"  Has -[:HAS]-> Thing many\n"

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("writeSchema() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteStatements(t *testing.T) {
	t.Parallel()

	s := loadTestSchema(t, thingsYAML, peopleYAML)

	g, err := cyphergen.New(s, 0)
	require.NoError(t, err)

	t.Run("internal id", func(t *testing.T) {
		t.Parallel()

		thing, ok := s.Describe("Thing")
		require.True(t, ok)

		var buf bytes.Buffer
		require.NoError(t, writeStatements(&buf, styles{}, g, thing))

		out := buf.String()
		assert.Contains(t, out, "// count\nMATCH (n:`Thing`) RETURN count(n) AS count\n")
		assert.Contains(t, out, "// delete-all\nMATCH (n:`Thing`) DETACH DELETE n\n")
		assert.NotContains(t, out, "// merge-node")
	})

	t.Run("assigned id", func(t *testing.T) {
		t.Parallel()

		person, ok := s.Describe("Person")
		require.True(t, ok)

		var buf bytes.Buffer
		require.NoError(t, writeStatements(&buf, styles{}, g, person))

		assert.Contains(t, buf.String(),
			"// merge-node\nMERGE (n:`Person` {name: $__id__}) SET n += $__properties__ RETURN id(n) AS __internalId__\n")
	})
}

func TestArrow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel  schema.RelationshipDescription
		want string
	}{
		{schema.RelationshipDescription{Type: "HAS", Direction: schema.Outgoing}, "-[:HAS]->"},
		{schema.RelationshipDescription{Type: "LIKES", Direction: schema.Incoming}, "<-[:LIKES]-"},
		{schema.RelationshipDescription{Type: "KNOWS", Direction: schema.Undirected}, "-[:KNOWS]-"},
		{schema.RelationshipDescription{Dynamic: true, Direction: schema.Outgoing}, "-[*]->"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, arrow(&tt.rel))
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	s := loadTestSchema(t, thingsYAML, peopleYAML)

	describe := func(name string) *schema.NodeDescription {
		d, ok := s.Describe(name)
		require.True(t, ok)

		return d
	}

	id, err := parseID(describe("Thing"), "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = parseID(describe("Counter"), "7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	id, err = parseID(describe("Person"), "Keanu")
	require.NoError(t, err)
	assert.Equal(t, "Keanu", id)

	_, err = parseID(describe("Thing"), "abc")
	require.Error(t, err)
}

func TestCountOf(t *testing.T) {
	t.Parallel()

	count, err := countOf(&ogm.Result{Rows: []ogm.Row{
		ogm.NewRow([]string{cyphergen.ColumnCount}, []any{int64(3)}),
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = countOf(&ogm.Result{})
	require.ErrorIs(t, err, ogm.ErrDataAccess)
}

func TestWriteRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeRows(&buf, &ogm.Result{Rows: []ogm.Row{
		ogm.NewRow([]string{"name"}, []any{"Keanu"}),
		ogm.NewRow([]string{"name"}, []any{"Carrie"}),
	}}))

	assert.Equal(t, "{\n  \"name\": \"Keanu\"\n}\n{\n  \"name\": \"Carrie\"\n}\n", buf.String())
}

func TestStylesFor_NotTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	st := stylesFor(&buf)
	assert.False(t, st.enabled)
	assert.Equal(t, "Thing", st.Title("Thing"))
	assert.True(t, strings.HasPrefix(st.Relation("-[:HAS]->"), "-"))
}
