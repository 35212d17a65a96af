package ops

import (
	"context"
	"fmt"
	"maps"
	"reflect"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/cypher"
	"github.com/rlch/ogm/cyphergen"
	"github.com/rlch/ogm/mapping"
	"github.com/rlch/ogm/schema"
)

// FindByID returns the entity of typeName with id, or ErrNotFound.
func (t *Template) FindByID(ctx context.Context, typeName string, id any) (any, error) {
	d, err := t.describe(typeName)
	if err != nil {
		return nil, err
	}

	wire, err := t.mapper.ConvertID(d, id)
	if err != nil {
		return nil, err
	}

	stmt, err := t.generator.MatchByID(d)
	if err != nil {
		return nil, err
	}

	c := t.newCall(ctx, "find-by-id")
	defer c.finish()

	entities, err := c.materialize(d, "match-by-id", stmt, map[string]any{ogm.ParamID: wire})
	if err != nil {
		return nil, err
	}

	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: %s %v", ErrNotFound, typeName, id)
	}

	return entities[0], nil
}

// FindAllByID returns the entities of typeName whose ids are among ids.
// Missing ids are skipped.
func (t *Template) FindAllByID(ctx context.Context, typeName string, ids ...any) ([]any, error) {
	d, err := t.describe(typeName)
	if err != nil {
		return nil, err
	}

	wires := make([]any, len(ids))

	for i, id := range ids {
		if wires[i], err = t.mapper.ConvertID(d, id); err != nil {
			return nil, err
		}
	}

	stmt, err := t.generator.MatchByIDs(d)
	if err != nil {
		return nil, err
	}

	c := t.newCall(ctx, "find-all-by-id")
	defer c.finish()

	return c.materialize(d, "match-by-ids", stmt, map[string]any{ogm.ParamIDs: wires})
}

// FindAll returns every entity of typeName.
func (t *Template) FindAll(ctx context.Context, typeName string) ([]any, error) {
	d, err := t.describe(typeName)
	if err != nil {
		return nil, err
	}

	stmt, err := t.generator.MatchAll(d)
	if err != nil {
		return nil, err
	}

	c := t.newCall(ctx, "find-all")
	defer c.finish()

	return c.materialize(d, "match-all", stmt, nil)
}

// FindWhere returns the entities of typeName matching condition. The
// condition refers to the entity as cyphergen.RootAlias. Values bound in the
// condition and params are passed together.
func (t *Template) FindWhere(ctx context.Context, typeName string, condition cypher.Condition, params map[string]any) ([]any, error) {
	d, err := t.describe(typeName)
	if err != nil {
		return nil, err
	}

	stmt, err := t.generator.MatchWhere(d, condition)
	if err != nil {
		return nil, err
	}

	all := stmt.Parameters()

	for k, v := range params {
		if bound, ok := all[k]; ok && !reflect.DeepEqual(bound, v) {
			return nil, fmt.Errorf("%w: %s", cypher.ErrDuplicateParameter, k)
		}

		all[k] = v
	}

	if err := checkParameters(stmt.ParameterNames(), all); err != nil {
		return nil, err
	}

	c := t.newCall(ctx, "find-where")
	defer c.finish()

	return c.materialize(d, "match-where", stmt, all)
}

// Query runs hand-written Cypher and maps every row to an entity of
// typeName. Each row must hold the entity as a node, a map projection
// carrying the reserved keys, or flat property columns.
func (t *Template) Query(ctx context.Context, typeName, query string, params map[string]any) ([]any, error) {
	d, err := t.describe(typeName)
	if err != nil {
		return nil, err
	}

	names, err := cypher.ParameterNames(query)
	if err != nil {
		return nil, err
	}

	if err := checkParameters(names, params); err != nil {
		return nil, err
	}

	c := t.newCall(ctx, "query")
	defer c.finish()

	res, err := c.runText("query", typeName, query, maps.Clone(params))
	if err != nil {
		return nil, err
	}

	return c.mapRows(d, res)
}

func checkParameters(names []string, params map[string]any) error {
	for _, name := range names {
		if _, ok := params[name]; !ok {
			return fmt.Errorf("%w: $%s", ErrMissingParameter, name)
		}
	}

	return nil
}

// Count returns the number of entities of typeName.
func (t *Template) Count(ctx context.Context, typeName string) (int64, error) {
	d, err := t.describe(typeName)
	if err != nil {
		return 0, err
	}

	stmt, err := t.generator.Count(d)
	if err != nil {
		return 0, err
	}

	c := t.newCall(ctx, "count")
	defer c.finish()

	res, err := c.run("count", typeName, stmt, nil)
	if err != nil {
		return 0, err
	}

	row, ok := res.Single()
	if !ok {
		return 0, fmt.Errorf("%w: count returned %d rows", ErrUnexpectedResult, len(res.Rows))
	}

	v, _ := row.Get(cyphergen.ColumnCount)

	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: count is %T", ErrUnexpectedResult, v)
	}

	return n, nil
}

// ExistsByID reports whether an entity of typeName with id exists.
func (t *Template) ExistsByID(ctx context.Context, typeName string, id any) (bool, error) {
	d, err := t.describe(typeName)
	if err != nil {
		return false, err
	}

	wire, err := t.mapper.ConvertID(d, id)
	if err != nil {
		return false, err
	}

	stmt, err := t.generator.ExistsByID(d)
	if err != nil {
		return false, err
	}

	c := t.newCall(ctx, "exists-by-id")
	defer c.finish()

	res, err := c.run("exists-by-id", typeName, stmt, map[string]any{ogm.ParamID: wire})
	if err != nil {
		return false, err
	}

	row, ok := res.Single()
	if !ok {
		return false, nil
	}

	v, _ := row.Get(cyphergen.ColumnExists)
	exists, _ := v.(bool)

	return exists, nil
}

// DeleteByID deletes the entity of typeName with id and its relationships,
// whatever its version. It reports whether a node was deleted.
func (t *Template) DeleteByID(ctx context.Context, typeName string, id any) (bool, error) {
	d, err := t.describe(typeName)
	if err != nil {
		return false, err
	}

	wire, err := t.mapper.ConvertID(d, id)
	if err != nil {
		return false, err
	}

	stmt, err := t.generator.DeleteByID(d, false)
	if err != nil {
		return false, err
	}

	c := t.newCall(ctx, "delete-by-id")
	defer c.finish()

	res, err := c.run("delete-by-id", typeName, stmt, map[string]any{ogm.ParamID: wire})
	if err != nil {
		return false, err
	}

	return res.Summary.NodesDeleted > 0, nil
}

// Delete deletes entity and its relationships. A versioned entity is only
// deleted at its current version; otherwise ogm.ErrOptimisticLocking is
// returned.
func (t *Template) Delete(ctx context.Context, entity any) error {
	d, err := t.mapper.Describe(entity)
	if err != nil {
		return err
	}

	wire, err := t.mapper.IDValue(entity)
	if err != nil {
		return err
	}

	if wire == nil {
		return &mapping.Error{Type: d.TypeName, Path: []string{d.ID.Field}, Err: mapping.ErrMissingID}
	}

	stmt, err := t.generator.DeleteByID(d, true)
	if err != nil {
		return err
	}

	params := map[string]any{ogm.ParamID: wire}

	if d.HasVersion() {
		st, err := t.mapper.Dematerialize(entity, nil)
		if err != nil {
			return err
		}

		params[ogm.ParamVersion] = st.Version
	}

	c := t.newCall(ctx, "delete")
	defer c.finish()

	res, err := c.run("delete-by-id", d.TypeName, stmt, params)
	if err != nil {
		return err
	}

	if d.HasVersion() && res.Summary.NodesDeleted == 0 {
		return fmt.Errorf("%w: %s %v", ogm.ErrOptimisticLocking, d.TypeName, wire)
	}

	return nil
}

// DeleteAll deletes every entity of typeName and its relationships. It
// returns the number of deleted nodes.
func (t *Template) DeleteAll(ctx context.Context, typeName string) (int, error) {
	d, err := t.describe(typeName)
	if err != nil {
		return 0, err
	}

	stmt, err := t.generator.DeleteAll(d)
	if err != nil {
		return 0, err
	}

	c := t.newCall(ctx, "delete-all")
	defer c.finish()

	res, err := c.run("delete-all", typeName, stmt, nil)
	if err != nil {
		return 0, err
	}

	return res.Summary.NodesDeleted, nil
}

// materialize runs a read statement and maps its rows.
func (c *call) materialize(d *schema.NodeDescription, step string, stmt *cypher.Statement, params map[string]any) ([]any, error) {
	res, err := c.run(step, d.TypeName, stmt, params)
	if err != nil {
		return nil, err
	}

	return c.mapRows(d, res)
}

// mapRows maps every row to an entity of d. Objects are shared across rows.
func (c *call) mapRows(d *schema.NodeDescription, res *ogm.Result) ([]any, error) {
	cache := mapping.NewKnownObjects()
	out := make([]any, 0, len(res.Rows))

	for _, row := range res.Rows {
		e, err := c.t.mapper.Materialize(row, d, cache)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}
