package mapping

import (
	"fmt"
	"slices"
	"sort"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/schema"
)

// KnownObjects maps node identities to the objects materialized for them
// during one call.
type KnownObjects struct {
	objects map[int64]any
}

// NewKnownObjects returns an empty cache.
func NewKnownObjects() *KnownObjects {
	return &KnownObjects{objects: map[int64]any{}}
}

// Get returns the object materialized for a node identity.
func (k *KnownObjects) Get(id int64) (any, bool) {
	v, ok := k.objects[id]

	return v, ok
}

// Put records the object materialized for a node identity.
func (k *KnownObjects) Put(id int64, v any) {
	k.objects[id] = v
}

// Len returns the number of known objects.
func (k *KnownObjects) Len() int {
	return len(k.objects)
}

// source is the property source of one entity: a node, a projected map or a
// flat row.
type source struct {
	id     int64
	hasID  bool
	labels []string
	props  map[string]any

	// related holds pre-aggregated related values by field. A nil map means
	// relationships must be found in the pool.
	related map[string]any

	// rel is the relationship through which a projected entity was reached.
	rel *ogm.Relationship
}

func nodeSource(n ogm.Node) *source {
	return &source{id: n.ID, hasID: true, labels: n.Labels, props: n.Props}
}

// mapSource reads a map projection, splitting reserved keys and the
// relationship fields of d from the properties.
func mapSource(m map[string]any, d *schema.NodeDescription) *source {
	src := &source{props: make(map[string]any, len(m)), related: map[string]any{}}

	for k, v := range m {
		switch k {
		case ogm.KeyInternalID:
			if id, ok := toInt64(v); ok {
				src.id, src.hasID = id, true
			}
		case ogm.KeyNodeLabels:
			src.labels = toStrings(v)
		case ogm.KeyRelationship:
			if r, ok := v.(ogm.Relationship); ok {
				src.rel = &r
			}
		default:
			src.props[k] = v
		}
	}

	for _, r := range d.Relationships {
		if v, ok := src.props[r.Field]; ok {
			src.related[r.Field] = v
			delete(src.props, r.Field)
		}
	}

	return src
}

// pool holds every node and relationship found anywhere in a row.
type pool struct {
	nodes map[int64]ogm.Node
	rels  []ogm.Relationship
}

func newPool(row ogm.Row) *pool {
	p := &pool{nodes: map[int64]ogm.Node{}}
	seen := map[int64]bool{}

	var walk func(v any)

	walk = func(v any) {
		switch t := v.(type) {
		case ogm.Node:
			p.nodes[t.ID] = t
		case ogm.Relationship:
			if !seen[t.ID] {
				seen[t.ID] = true
				p.rels = append(p.rels, t)
			}
		case ogm.Path:
			for _, n := range t.Nodes {
				walk(n)
			}

			for _, r := range t.Relationships {
				walk(r)
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		case map[string]any:
			for _, e := range t {
				walk(e)
			}
		}
	}

	for _, v := range row.Values() {
		walk(v)
	}

	sort.Slice(p.rels, func(i, j int) bool { return p.rels[i].ID < p.rels[j].ID })

	return p
}

// Materialize builds the entity of d held by row. Related entities are
// materialized recursively; objects already in cache are reused.
func (m *Mapper) Materialize(row ogm.Row, d *schema.NodeDescription, cache *KnownObjects) (any, error) {
	src := rootSource(row, d)
	if src == nil {
		return nil, &Error{Type: d.TypeName, Err: fmt.Errorf("%w: no %s in result", ErrMissingID, d.PrimaryLabel)}
	}

	return m.materialize(src, d, newPool(row), cache)
}

// rootSource picks the query root: the start node column, a node or map
// projection carrying the primary label, or the row itself.
func rootSource(row ogm.Row, d *schema.NodeDescription) *source {
	if v, ok := row.Get(ogm.KeyStartNode); ok {
		if n, ok := v.(ogm.Node); ok {
			return nodeSource(n)
		}
	}

	for _, v := range row.Values() {
		switch t := v.(type) {
		case ogm.Node:
			if t.HasLabel(d.PrimaryLabel) {
				return nodeSource(t)
			}
		case map[string]any:
			if slices.Contains(toStrings(t[ogm.KeyNodeLabels]), d.PrimaryLabel) {
				return mapSource(t, d)
			}
		}
	}

	flat := mapSource(row.Map(), d)
	if len(flat.props) == 0 && !flat.hasID {
		return nil
	}

	return flat
}

func (m *Mapper) materialize(src *source, d *schema.NodeDescription, p *pool, cache *KnownObjects) (any, error) {
	if src.hasID {
		if known, ok := cache.Get(src.id); ok {
			return known, nil
		}
	}

	if len(src.labels) > 0 {
		d = m.schema.Concrete(d, src.labels)
	}

	b, ok := m.bindings[d.TypeName]
	if !ok {
		return nil, &Error{Type: d.TypeName, Err: ErrMissingBinding}
	}

	entity, err := m.instantiate(b, d.TypeName, d.Properties, src.props)
	if err != nil {
		return nil, err
	}

	if err := m.readID(b, d, src, entity); err != nil {
		return nil, err
	}

	// Registered before recursing so back references resolve to this instance.
	if src.hasID {
		cache.Put(src.id, entity)
	}

	if err := m.readProperties(b, d.TypeName, d.Properties, src.props, entity); err != nil {
		return nil, err
	}

	if d.DynamicLabelsField != "" && src.labels != nil {
		var dynamic []string

		for _, l := range src.labels {
			if !d.HasStaticLabel(l) {
				dynamic = append(dynamic, l)
			}
		}

		if err := b.fields[d.DynamicLabelsField].set(entity, dynamic); err != nil {
			return nil, fieldError(d.TypeName, d.DynamicLabelsField, err)
		}
	}

	for _, rel := range d.Relationships {
		if err := m.readRelationship(b, rel, src, entity, p, cache); err != nil {
			return nil, err
		}
	}

	return entity, nil
}

// instantiate calls the factory with the constructor properties.
func (m *Mapper) instantiate(b *Binding, typeName string, props []*schema.PropertyDescription, values map[string]any) (any, error) {
	args := Values{}

	for _, p := range props {
		if !p.Constructor {
			continue
		}

		v, err := m.conv.FromGraph(p.Type.String(), values[p.Name])
		if err != nil {
			return nil, fieldError(typeName, p.Field, err)
		}

		args[p.Field] = v
	}

	entity, err := b.factory(args)
	if err != nil {
		return nil, &Error{Type: typeName, Err: err}
	}

	return entity, nil
}

func (m *Mapper) readID(b *Binding, d *schema.NodeDescription, src *source, entity any) error {
	if d.ID.IsInternal() {
		if !src.hasID {
			return &Error{Type: d.TypeName, Path: []string{d.ID.Field}, Err: ErrMissingID}
		}

		return m.setValue(b, d.TypeName, d.ID.Field, d.ID.Type, entity, src.id)
	}

	v, ok := src.props[d.ID.Property]
	if !ok || v == nil {
		return &Error{Type: d.TypeName, Path: []string{d.ID.Field}, Err: ErrMissingID}
	}

	return m.setValue(b, d.TypeName, d.ID.Field, d.ID.Type, entity, v)
}

func (m *Mapper) readProperties(b *Binding, typeName string, props []*schema.PropertyDescription, values map[string]any, entity any) error {
	for _, p := range props {
		if p.Constructor {
			continue
		}

		v, ok := values[p.Name]
		if !ok {
			continue
		}

		if err := m.setValue(b, typeName, p.Field, p.Type, entity, v); err != nil {
			return err
		}
	}

	return nil
}

// relatedSource is one related entity and the relationship reaching it.
type relatedSource struct {
	src *source
	rel *ogm.Relationship
}

func (m *Mapper) readRelationship(
	b *Binding,
	rel *schema.RelationshipDescription,
	src *source,
	entity any,
	p *pool,
	cache *KnownObjects,
) error {
	var found []relatedSource

	if raw, ok := src.related[rel.Field]; ok {
		for _, item := range toList(raw) {
			switch t := item.(type) {
			case map[string]any:
				child := mapSource(t, rel.Target)
				found = append(found, relatedSource{src: child, rel: child.rel})
			case ogm.Node:
				found = append(found, relatedSource{src: nodeSource(t)})
			}
		}
	} else if src.hasID {
		found = p.related(rel, src.id, rel.ClaimedTypes())
	}

	var (
		values  []any
		dynamic = map[string][]any{}
		claimed = rel.ClaimedTypes()
	)

	for _, f := range found {
		if f.rel != nil && slices.Contains(claimed, f.rel.Type) {
			continue
		}

		child, err := m.materialize(f.src, rel.Target, p, cache)
		if err != nil {
			return fieldError(rel.Source.TypeName, rel.Field, err)
		}

		value := child

		if rel.HasProperties() {
			value, err = m.relationshipProperties(rel.Properties, f.rel, child)
			if err != nil {
				return fieldError(rel.Source.TypeName, rel.Field, err)
			}
		}

		if rel.Dynamic {
			if f.rel == nil {
				return &Error{
					Type: rel.Source.TypeName,
					Path: []string{rel.Field},
					Err:  fmt.Errorf("%w: relationship type not in result", ErrUnresolvedRelationship),
				}
			}

			dynamic[f.rel.Type] = append(dynamic[f.rel.Type], value)

			continue
		}

		values = append(values, value)
	}

	acc := b.fields[rel.Field]

	var err error

	switch acc.kind {
	case kindDynamic:
		if len(dynamic) > 0 {
			err = acc.setDynamic(entity, dynamic)
		}
	default:
		if len(values) > 0 {
			err = acc.setRelated(entity, values)
		}
	}

	if err != nil {
		return fieldError(rel.Source.TypeName, rel.Field, err)
	}

	return nil
}

// relationshipProperties builds the relationship properties instance pairing
// the relationship's properties with the related entity.
func (m *Mapper) relationshipProperties(
	rp *schema.RelationshipPropertiesDescription,
	r *ogm.Relationship,
	related any,
) (any, error) {
	b, ok := m.bindings[rp.TypeName]
	if !ok {
		return nil, &Error{Type: rp.TypeName, Err: ErrMissingBinding}
	}

	var props map[string]any
	if r != nil {
		props = r.Props
	}

	value, err := m.instantiate(b, rp.TypeName, rp.Properties, props)
	if err != nil {
		return nil, err
	}

	if err := m.readProperties(b, rp.TypeName, rp.Properties, props, value); err != nil {
		return nil, err
	}

	if err := b.fields[rp.TargetField].setRelated(value, []any{related}); err != nil {
		return nil, fieldError(rp.TypeName, rp.TargetField, err)
	}

	return value, nil
}

// related pairs the relationships of the pool leaving id along rel with the
// nodes at their other end.
func (p *pool) related(rel *schema.RelationshipDescription, id int64, exclude []string) []relatedSource {
	var out []relatedSource

	for i := range p.rels {
		r := &p.rels[i]

		if rel.Dynamic {
			if slices.Contains(exclude, r.Type) {
				continue
			}
		} else if r.Type != rel.Type {
			continue
		}

		var other []int64

		switch rel.Direction {
		case schema.Outgoing:
			if r.StartID == id {
				other = append(other, r.EndID)
			}
		case schema.Incoming:
			if r.EndID == id {
				other = append(other, r.StartID)
			}
		case schema.Undirected:
			if r.StartID == id {
				other = append(other, r.EndID)
			}

			if r.EndID == id && r.StartID != id {
				other = append(other, r.StartID)
			}
		}

		for _, o := range other {
			n, ok := p.nodes[o]
			if !ok || !n.HasLabel(rel.Target.PrimaryLabel) {
				continue
			}

			out = append(out, relatedSource{src: nodeSource(n), rel: r})
		}
	}

	return out
}

func toList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case nil:
		return nil
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}

		return out
	}

	return []any{v}
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))

		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}

		return out
	}

	return nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	}

	return 0, false
}
