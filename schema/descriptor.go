package schema

import (
	"fmt"
	"strings"
)

// Strategy is an id strategy.
type Strategy string

// Id strategies.
const (
	// StrategyInternal uses the database-assigned identity. It has no property.
	StrategyInternal Strategy = "internal"

	// StrategyAssigned stores a caller-supplied id in a property.
	StrategyAssigned Strategy = "assigned"

	// StrategyGenerated stores an id produced by a named generator in a property.
	StrategyGenerated Strategy = "generated"
)

// Direction is the direction of a relationship relative to the declaring type.
type Direction string

// Relationship directions.
const (
	Outgoing   Direction = "OUTGOING"
	Incoming   Direction = "INCOMING"
	Undirected Direction = "UNDIRECTED"
)

// ParseDirection parses a direction case-insensitively. The empty string is
// Outgoing.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "OUTGOING", "OUT":
		return Outgoing, nil
	case "INCOMING", "IN":
		return Incoming, nil
	case "UNDIRECTED", "BOTH":
		return Undirected, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Reverse returns the direction seen from the other end.
func (d Direction) Reverse() Direction {
	switch d {
	case Outgoing:
		return Incoming
	case Incoming:
		return Outgoing
	default:
		return d
	}
}

// TypeDescriptor describes one type of the registration batch handed to New.
// It is what an annotation scanner, a code generator or a YAML file produces.
type TypeDescriptor struct {
	// Type is the type name bindings are registered under.
	Type string `yaml:"type"`

	// Label is the primary label. It defaults to Type.
	Label string `yaml:"label,omitempty"`

	// Labels are additional static labels.
	Labels []string `yaml:"labels,omitempty"`

	// Parent names the type this type inherits labels, id, properties and
	// relationships from.
	Parent string `yaml:"parent,omitempty"`

	// ID describes the id. Types with a parent inherit it.
	ID *IDDescriptor `yaml:"id,omitempty"`

	Properties    []PropertyDescriptor     `yaml:"properties,omitempty"`
	Relationships []RelationshipDescriptor `yaml:"relationships,omitempty"`

	// DynamicLabels names the field holding runtime labels.
	DynamicLabels *FieldDescriptor `yaml:"dynamic_labels,omitempty"`

	// Version names the property used for optimistic locking.
	Version string `yaml:"version,omitempty"`

	// RelationshipProperties marks a type holding the properties of a
	// relationship rather than a node. Target names its field holding the
	// related entity.
	RelationshipProperties bool   `yaml:"relationship_properties,omitempty"`
	Target                 string `yaml:"target,omitempty"`
}

// IDDescriptor describes an id.
type IDDescriptor struct {
	Strategy  Strategy `yaml:"strategy"`
	Field     string   `yaml:"field"`
	Property  string   `yaml:"property,omitempty"`
	Type      string   `yaml:"type,omitempty"`
	Generator string   `yaml:"generator,omitempty"`
}

// FieldDescriptor names a field and its Go type.
type FieldDescriptor struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type,omitempty"`
}

// PropertyDescriptor maps a field to a graph property.
type PropertyDescriptor struct {
	Field string `yaml:"field"`

	// Property is the graph property name. It defaults to Field.
	Property string `yaml:"property,omitempty"`

	// Type is the Go type of the field, e.g. "string", "[]int64", "time.Time".
	Type string `yaml:"type"`

	// Constructor marks properties passed to the type's factory.
	Constructor bool `yaml:"constructor,omitempty"`
}

// RelationshipDescriptor declares a relationship field.
type RelationshipDescriptor struct {
	Field string `yaml:"field"`

	// Type is the relationship type. It is empty for dynamic relationships.
	Type string `yaml:"type,omitempty"`

	// Dynamic relationships hold map[type][]related values.
	Dynamic bool `yaml:"dynamic,omitempty"`

	Direction string `yaml:"direction,omitempty"`
	Target    string `yaml:"target"`
	Many      bool   `yaml:"many,omitempty"`

	// Properties names a relationship properties type.
	Properties string `yaml:"properties,omitempty"`
}
