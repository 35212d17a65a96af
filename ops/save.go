package ops

import (
	"context"
	"fmt"
	"slices"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/mapping"
)

// Save writes entity and every entity reachable through its relationship
// fields. Ids assigned by the database and written versions are stored on
// the entities.
//
// Relationships of entities that already existed are removed before they
// are written again, unless the entity was reached through the other end of
// the relationship during this save. Entities reachable more than once are
// written once, and every edge is created once.
func (t *Template) Save(ctx context.Context, entity any) (*Trace, error) {
	c := t.newCall(ctx, "save")

	_, err := c.save(entity)

	return c.finish(), err
}

// SaveAll saves entities in order within one operation. Entities shared by
// several graphs are written once.
func (t *Template) SaveAll(ctx context.Context, entities ...any) (*Trace, error) {
	c := t.newCall(ctx, "save-all")

	for _, e := range entities {
		if _, err := c.save(e); err != nil {
			return c.finish(), err
		}
	}

	return c.finish(), nil
}

// save writes entity if this call has not yet and returns its wire id.
func (c *call) save(entity any) (any, error) {
	if id, ok := c.saved[entity]; ok {
		return id, nil
	}

	st, err := c.t.mapper.Dematerialize(entity, c.t.generators)
	if err != nil {
		return nil, err
	}

	id, err := c.saveNode(st)
	if err != nil {
		return nil, err
	}

	c.saved[entity] = id

	if err := c.saveRelationships(st, id); err != nil {
		return nil, err
	}

	return id, nil
}

// saveNode writes the node of st and stores the internal id and the version
// on the entity.
func (c *call) saveNode(st *mapping.NodeState) (any, error) {
	d := st.Description
	g := c.t.generator

	remove, err := c.obsoleteLabels(st)
	if err != nil {
		return nil, err
	}

	params := map[string]any{ogm.ParamProperties: st.Properties}

	var (
		res  *ogm.Result
		step string
	)

	switch st.Persistence {
	case mapping.Created:
		step = "create-node"

		stmt, err := g.CreateNode(d, st.DynamicLabels)
		if err != nil {
			return nil, err
		}

		res, err = c.run(step, d.TypeName, stmt, params)
		if err != nil {
			return nil, err
		}
	case mapping.Existing:
		step = "update-node"

		stmt, err := g.UpdateNode(d, st.DynamicLabels, remove)
		if err != nil {
			return nil, err
		}

		params[ogm.ParamID] = st.ID
		if d.HasVersion() {
			params[ogm.ParamVersion] = st.Version
		}

		res, err = c.run(step, d.TypeName, stmt, params)
		if err != nil {
			return nil, err
		}

		if len(res.Rows) == 0 {
			if d.HasVersion() {
				return nil, fmt.Errorf("%w: %s %v at version %d", ogm.ErrOptimisticLocking, d.TypeName, st.ID, st.Version)
			}

			return nil, fmt.Errorf("%w: %s %v", ErrNotFound, d.TypeName, st.ID)
		}
	case mapping.Unknown:
		step = "merge-node"

		stmt, err := g.MergeNode(d, st.DynamicLabels, remove)
		if err != nil {
			return nil, err
		}

		params[ogm.ParamID] = st.ID

		res, err = c.run(step, d.TypeName, stmt, params)
		if err != nil {
			return nil, err
		}
	}

	return c.stored(st, step, res)
}

// stored applies the result of a node write to the entity of st.
func (c *call) stored(st *mapping.NodeState, step string, res *ogm.Result) (any, error) {
	d := st.Description

	internal, ok := internalID(res)
	if !ok {
		return nil, fmt.Errorf("%w: %s of %s returned no id", ErrUnexpectedResult, step, d.TypeName)
	}

	if err := c.t.mapper.SetInternalID(st.Entity, internal); err != nil {
		return nil, err
	}

	if d.HasVersion() {
		if err := c.t.mapper.SetVersion(st.Entity, st.NextVersion); err != nil {
			return nil, err
		}
	}

	if d.ID.IsInternal() {
		return internal, nil
	}

	return st.ID, nil
}

// obsoleteLabels reads the stored labels of an entity with dynamic labels
// and returns those no longer present.
func (c *call) obsoleteLabels(st *mapping.NodeState) ([]string, error) {
	d := st.Description
	if st.Persistence == mapping.Created || d.DynamicLabelsField == "" {
		return nil, nil
	}

	stmt, err := c.t.generator.CurrentLabels(d)
	if err != nil {
		return nil, err
	}

	res, err := c.run("current-labels", d.TypeName, stmt, map[string]any{ogm.ParamID: st.ID})
	if err != nil {
		return nil, err
	}

	var remove []string

	for _, row := range res.Rows {
		v, _ := row.Get(ogm.KeyNodeLabels)
		labels, _ := v.([]any)

		for _, l := range labels {
			s, ok := l.(string)
			if ok && !slices.Contains(st.Labels, s) && !slices.Contains(remove, s) {
				remove = append(remove, s)
			}
		}
	}

	return remove, nil
}

// saveRelationships writes the relationships of the entity of st, whose wire
// id is id.
func (c *call) saveRelationships(st *mapping.NodeState, id any) error {
	rels, err := c.t.mapper.Relationships(st.Entity)
	if err != nil {
		return err
	}

	for _, rv := range rels {
		rel := rv.Relationship

		if st.Persistence != mapping.Created && !c.processed.Arrived(st.Entity, rel) {
			if err := c.removeRelationships(rv, id); err != nil {
				return err
			}
		}

		for _, related := range rv.Related {
			if c.processed.Processed(rel, related.Type, st.Entity, related.Entity) {
				continue
			}

			c.processed.MarkProcessed(rel, related.Type, st.Entity, related.Entity)

			if err := c.saveRelated(rv, related, id); err != nil {
				return err
			}
		}
	}

	return nil
}

// removeRelationships deletes the stored relationships of a field before
// they are written again. Dynamic relationships are removed per type present
// in the field, never for a type a static field claims.
func (c *call) removeRelationships(rv mapping.RelationshipValue, id any) error {
	rel := rv.Relationship

	types := []string{""}
	if rel.Dynamic {
		types = types[:0]
		claimed := rel.ClaimedTypes()

		for _, related := range rv.Related {
			if !slices.Contains(types, related.Type) && !slices.Contains(claimed, related.Type) {
				types = append(types, related.Type)
			}
		}
	}

	for _, typ := range types {
		stmt, err := c.t.generator.RemoveRelationships(rel, typ)
		if err != nil {
			return err
		}

		if _, err := c.run("remove-relationships", rel.Source.TypeName, stmt, map[string]any{ogm.ParamFromID: id}); err != nil {
			return err
		}
	}

	return nil
}

// saveRelated writes one related entity and the edge reaching it. A new
// related entity is created together with its edge.
func (c *call) saveRelated(rv mapping.RelationshipValue, related mapping.RelatedValue, fromID any) error {
	rel := rv.Relationship
	g := c.t.generator

	if toID, ok := c.saved[related.Entity]; ok {
		return c.createRelationship(rv, related, fromID, toID)
	}

	st, err := c.t.mapper.Dematerialize(related.Entity, c.t.generators)
	if err != nil {
		return err
	}

	if st.Persistence != mapping.Created {
		toID, err := c.saveNode(st)
		if err != nil {
			return err
		}

		c.saved[related.Entity] = toID

		if err := c.saveRelationships(st, toID); err != nil {
			return err
		}

		return c.createRelationship(rv, related, fromID, toID)
	}

	stmt, err := g.CreateRelatedNode(rel, st.Description, related.Type, st.DynamicLabels)
	if err != nil {
		return err
	}

	params := map[string]any{
		ogm.ParamFromID:     fromID,
		ogm.ParamProperties: st.Properties,
	}

	if rel.HasProperties() {
		params[ogm.ParamRelationshipProperties] = related.Properties
	}

	res, err := c.run("create-related-node", st.Description.TypeName, stmt, params)
	if err != nil {
		return err
	}

	toID, err := c.stored(st, "create-related-node", res)
	if err != nil {
		return err
	}

	c.saved[related.Entity] = toID

	return c.saveRelationships(st, toID)
}

func (c *call) createRelationship(rv mapping.RelationshipValue, related mapping.RelatedValue, fromID, toID any) error {
	rel := rv.Relationship

	stmt, err := c.t.generator.CreateRelationship(rel, related.Type)
	if err != nil {
		return err
	}

	params := map[string]any{
		ogm.ParamFromID: fromID,
		ogm.ParamToID:   toID,
	}

	if rel.HasProperties() {
		params[ogm.ParamRelationshipProperties] = related.Properties
	}

	res, err := c.run("create-relationship", rel.Source.TypeName, stmt, params)
	if err != nil {
		return err
	}

	if len(res.Rows) == 0 {
		return fmt.Errorf("%w: %s.%s endpoints not found", ErrUnexpectedResult, rel.Source.TypeName, rel.Field)
	}

	return nil
}
