// Package cyphergen generates the statements the operations facade runs for
// node descriptions: reads, counts, node writes and relationship writes.
//
// Every parameter is left unbound; callers supply values under the reserved
// names in the ogm package.
package cyphergen

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rlch/ogm"
	"github.com/rlch/ogm/cypher"
	"github.com/rlch/ogm/schema"
)

// Aliases of generated statements.
const (
	RootAlias    = "n"
	RelatedAlias = "m"
	RelAlias     = "r"

	relatedNodes = "__m__"
	relatedRels  = "__rs__"
)

// Result columns of generated statements.
const (
	ColumnCount  = "count"
	ColumnExists = "exists"
)

// Generator builds statements for a schema. Statements that depend only on
// descriptions are cached; a Generator is safe for concurrent use.
type Generator struct {
	schema *schema.Schema
	cache  *lru.Cache[cacheKey, *cypher.Statement]
}

type cacheKey struct {
	shape string
	typ   string
	extra string
}

// New creates a generator holding at most cacheSize statements.
func New(s *schema.Schema, cacheSize int) (*Generator, error) {
	if cacheSize <= 0 {
		cacheSize = ogm.DefaultStatementCacheSize
	}

	cache, err := lru.New[cacheKey, *cypher.Statement](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating statement cache: %w", err)
	}

	return &Generator{schema: s, cache: cache}, nil
}

// Schema returns the schema statements are generated for.
func (g *Generator) Schema() *schema.Schema {
	return g.schema
}

// CacheLen returns the number of cached statements.
func (g *Generator) CacheLen() int {
	return g.cache.Len()
}

func (g *Generator) cached(key cacheKey, build func() (*cypher.Statement, error)) (*cypher.Statement, error) {
	if stmt, ok := g.cache.Get(key); ok {
		return stmt, nil
	}

	stmt, err := build()
	if err != nil {
		return nil, fmt.Errorf("generating %s for %s: %w", key.shape, key.typ, err)
	}

	g.cache.Add(key, stmt)

	return stmt, nil
}

// anchor matches a description on its primary label, adding the declared
// additional labels.
func anchor(d *schema.NodeDescription, alias string) cypher.NodePattern {
	labels := append([]string{d.PrimaryLabel}, d.AdditionalLabels...)

	return cypher.Node(alias, labels...)
}

// IDPredicate matches node by the id of d against param: id(n) = $param for
// internal ids and n.prop = $param otherwise.
func IDPredicate(d *schema.NodeDescription, node cypher.NodePattern, param string) cypher.Comparison {
	if d.ID.IsInternal() {
		return cypher.ID(node.SymbolicName()).IsEqualTo(cypher.Param(param))
	}

	return node.Property(d.ID.Property).IsEqualTo(cypher.Param(param))
}

func idsPredicate(d *schema.NodeDescription, node cypher.NodePattern) cypher.Comparison {
	if d.ID.IsInternal() {
		return cypher.ID(node.SymbolicName()).In(cypher.Param(ogm.ParamIDs))
	}

	return node.Property(d.ID.Property).In(cypher.Param(ogm.ParamIDs))
}

func versionPredicate(d *schema.NodeDescription, node cypher.NodePattern) cypher.Condition {
	if !d.HasVersion() {
		return nil
	}

	return node.Property(d.Version.Name).IsEqualTo(cypher.Param(ogm.ParamVersion))
}

func labelsKey(labels []string) string {
	return strings.Join(labels, ":")
}

// relate connects from and to along a relationship description.
func relate(rel *schema.RelationshipDescription, from, to cypher.NodePattern, types ...string) cypher.RelationshipChain {
	switch rel.Direction {
	case schema.Incoming:
		return from.RelationshipFrom(to, types...)
	case schema.Undirected:
		return from.RelationshipBetween(to, types...)
	default:
		return from.RelationshipTo(to, types...)
	}
}

func relationshipTypes(rel *schema.RelationshipDescription, typ string) []string {
	if typ == "" {
		typ = rel.Type
	}

	if typ == "" {
		return nil
	}

	return []string{typ}
}
