package schema_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rlch/ogm/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestLoad(t *testing.T) {
	t.Parallel()

	s, err := schema.Load(strings.NewReader(thingsYAML))
	require.NoError(t, err)

	thing, ok := s.Describe("Thing")
	require.True(t, ok)
	assert.Equal(t, "Thing", thing.PrimaryLabel)
	assert.True(t, thing.ID.IsInternal())

	has, ok := thing.Relationship("Has")
	require.True(t, ok)
	assert.Equal(t, "HAS", has.Type)
	assert.True(t, has.Many)
}

func TestLoad_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := schema.Load(strings.NewReader("types:\n  - type: A\n    lable: B\n"))
	require.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	t.Parallel()

	batch, err := schema.Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestWrite_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, schema.Write(&buf, movieBatch()))

	got, err := schema.Decode(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(movieBatch(), got); diff != "" {
		t.Errorf("Decode(Write()) mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	people := filepath.Join(dir, "people.yaml")
	require.NoError(t, os.WriteFile(people, []byte(`types:
  - type: Person
    id: {strategy: assigned, field: Name, property: name}
    relationships:
      - {field: Likes, type: LIKES, target: Thing}
`), 0o600))

	things := filepath.Join(dir, "things.yaml")
	require.NoError(t, os.WriteFile(things, []byte(thingsYAML), 0o600))

	s, err := schema.LoadFiles(people, things)
	require.NoError(t, err)
	assert.Len(t, s.Descriptions(), 2)

	_, err = schema.LoadFile(people)
	require.ErrorIs(t, err, schema.ErrUnknownTarget)

	_, err = schema.LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
