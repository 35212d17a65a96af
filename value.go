package ogm

import (
	"fmt"
	"slices"
	"time"
)

// Node is a node value as returned by a statement runner.
type Node struct {
	ID        int64
	ElementID string
	Labels    []string
	Props     map[string]any
}

// HasLabel reports whether the node carries label.
func (n Node) HasLabel(label string) bool {
	return slices.Contains(n.Labels, label)
}

// Relationship is a relationship value as returned by a statement runner.
type Relationship struct {
	ID        int64
	ElementID string
	Type      string
	StartID   int64
	EndID     int64
	Props     map[string]any
}

// Path is an alternating sequence of nodes and relationships.
type Path struct {
	Nodes         []Node
	Relationships []Relationship
}

// Date is a calendar date without time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DateOf returns the date part of t.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// LocalDateTime is a date and wall clock time without time zone. The
// location of the wrapped time is ignored.
type LocalDateTime struct {
	time.Time
}

// Duration is a temporal amount as stored by the database: months and days
// are kept apart from the exact seconds because their length is calendar
// dependent.
type Duration struct {
	Months  int64
	Days    int64
	Seconds int64
	Nanos   int
}

// DurationOf converts an exact time.Duration. Months and Days are zero.
func DurationOf(d time.Duration) Duration {
	return Duration{
		Seconds: int64(d / time.Second),
		Nanos:   int(d % time.Second),
	}
}

// Exact returns the duration as a time.Duration, counting a day as 24h and a
// month as 30 days.
func (d Duration) Exact() time.Duration {
	days := d.Months*30 + d.Days

	return time.Duration(days)*24*time.Hour + time.Duration(d.Seconds)*time.Second + time.Duration(d.Nanos)
}

func (d Duration) String() string {
	return fmt.Sprintf("P%dM%dDT%d.%09dS", d.Months, d.Days, d.Seconds, d.Nanos)
}

// Point is a spatial point. Dim is 2 or 3; Z is ignored for 2D points.
type Point struct {
	SRID uint32
	X    float64
	Y    float64
	Z    float64
	Dim  int
}

// Row is one result record. Values are accessed by column name.
type Row struct {
	keys   []string
	values []any
}

// NewRow creates a row. keys and values must have the same length.
func NewRow(keys []string, values []any) Row {
	return Row{keys: keys, values: values}
}

// RowOf creates a row from a map, ordering the columns by key.
func RowOf(m map[string]any) Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}

	return Row{keys: keys, values: values}
}

// Get returns the value of the named column.
func (r Row) Get(key string) (any, bool) {
	for i, k := range r.keys {
		if k == key {
			return r.values[i], true
		}
	}

	return nil, false
}

// Keys returns the column names.
func (r Row) Keys() []string {
	return r.keys
}

// Values returns the column values in column order.
func (r Row) Values() []any {
	return r.values
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.keys)
}

// Map returns the row as a map keyed by column.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for i, k := range r.keys {
		m[k] = r.values[i]
	}

	return m
}

// Summary holds the update counters of a statement.
type Summary struct {
	NodesCreated         int `json:"nodes_created,omitempty"`
	NodesDeleted         int `json:"nodes_deleted,omitempty"`
	RelationshipsCreated int `json:"relationships_created,omitempty"`
	RelationshipsDeleted int `json:"relationships_deleted,omitempty"`
	PropertiesSet        int `json:"properties_set,omitempty"`
	LabelsAdded          int `json:"labels_added,omitempty"`
	LabelsRemoved        int `json:"labels_removed,omitempty"`
}

// Add accumulates the counters of o into s.
func (s *Summary) Add(o Summary) {
	s.NodesCreated += o.NodesCreated
	s.NodesDeleted += o.NodesDeleted
	s.RelationshipsCreated += o.RelationshipsCreated
	s.RelationshipsDeleted += o.RelationshipsDeleted
	s.PropertiesSet += o.PropertiesSet
	s.LabelsAdded += o.LabelsAdded
	s.LabelsRemoved += o.LabelsRemoved
}

// Result is the outcome of running one statement.
type Result struct {
	Keys    []string
	Rows    []Row
	Summary Summary
}

// Single returns the only row of the result.
func (r *Result) Single() (Row, bool) {
	if r == nil || len(r.Rows) != 1 {
		return Row{}, false
	}

	return r.Rows[0], true
}
