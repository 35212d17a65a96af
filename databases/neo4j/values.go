package neo4j

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/rlch/ogm"
)

// rowOf converts a driver record.
func rowOf(keys []string, values []any) ogm.Row {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = fromDriver(v)
	}

	return ogm.NewRow(keys, out)
}

// fromDriver converts a driver value to its wire value. Graph, temporal and
// spatial types become their ogm counterparts; lists and maps are converted
// element-wise.
func fromDriver(value any) any {
	switch v := value.(type) {
	case dbtype.Node:
		return nodeOf(v)
	case dbtype.Relationship:
		return relationshipOf(v)
	case dbtype.Path:
		p := ogm.Path{
			Nodes:         make([]ogm.Node, len(v.Nodes)),
			Relationships: make([]ogm.Relationship, len(v.Relationships)),
		}

		for i, n := range v.Nodes {
			p.Nodes[i] = nodeOf(n)
		}

		for i, r := range v.Relationships {
			p.Relationships[i] = relationshipOf(r)
		}

		return p
	case dbtype.Date:
		return ogm.DateOf(v.Time())
	case dbtype.LocalDateTime:
		return ogm.LocalDateTime{Time: v.Time()}
	case dbtype.LocalTime:
		return v.Time()
	case dbtype.Time:
		return v.Time()
	case dbtype.Duration:
		return ogm.Duration{Months: v.Months, Days: v.Days, Seconds: v.Seconds, Nanos: v.Nanos}
	case dbtype.Point2D:
		return ogm.Point{SRID: v.SpatialRefId, X: v.X, Y: v.Y, Dim: 2}
	case dbtype.Point3D:
		return ogm.Point{SRID: v.SpatialRefId, X: v.X, Y: v.Y, Z: v.Z, Dim: 3}
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = fromDriver(e)
		}

		return out
	case map[string]any:
		return fromDriverMap(v)
	default:
		return v
	}
}

func fromDriverMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = fromDriver(v)
	}

	return out
}

func nodeOf(n dbtype.Node) ogm.Node {
	return ogm.Node{
		ID:        n.Id, //nolint:staticcheck // id() is what generated statements return
		ElementID: n.ElementId,
		Labels:    n.Labels,
		Props:     fromDriverMap(n.Props),
	}
}

func relationshipOf(r dbtype.Relationship) ogm.Relationship {
	return ogm.Relationship{
		ID:        r.Id,      //nolint:staticcheck
		StartID:   r.StartId, //nolint:staticcheck
		EndID:     r.EndId,   //nolint:staticcheck
		ElementID: r.ElementId,
		Type:      r.Type,
		Props:     fromDriverMap(r.Props),
	}
}

// toDriver converts a wire value to a value the driver can send.
func toDriver(value any) any {
	switch v := value.(type) {
	case ogm.Date:
		return neo4j.DateOf(v.Time())
	case ogm.LocalDateTime:
		return neo4j.LocalDateTimeOf(v.Time)
	case ogm.Duration:
		return dbtype.Duration{Months: v.Months, Days: v.Days, Seconds: v.Seconds, Nanos: v.Nanos}
	case ogm.Point:
		if v.Dim == 3 {
			return dbtype.Point3D{X: v.X, Y: v.Y, Z: v.Z, SpatialRefId: v.SRID}
		}

		return dbtype.Point2D{X: v.X, Y: v.Y, SpatialRefId: v.SRID}
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = toDriver(e)
		}

		return out
	case map[string]any:
		return toDriverMap(v)
	default:
		return v
	}
}

func toDriverMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = toDriver(v)
	}

	return out
}

func summaryOf(c neo4j.Counters) ogm.Summary {
	return ogm.Summary{
		NodesCreated:         c.NodesCreated(),
		NodesDeleted:         c.NodesDeleted(),
		RelationshipsCreated: c.RelationshipsCreated(),
		RelationshipsDeleted: c.RelationshipsDeleted(),
		PropertiesSet:        c.PropertiesSet(),
		LabelsAdded:          c.LabelsAdded(),
		LabelsRemoved:        c.LabelsRemoved(),
	}
}
