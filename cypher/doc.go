// Package cypher builds Cypher statements as immutable syntax trees and renders
// them to canonical query text.
//
// # Building
//
// Statements are assembled with a staged builder. Each stage is a distinct type
// that only exposes the calls that are legal at that point, so an out-of-order
// call does not compile:
//
//	n := cypher.Node("n", "Thing")
//	stmt, err := cypher.Match(n).
//		Where(n.Property("name").IsEqualTo(cypher.Param("name"))).
//		Returning(n.SymbolicName()).
//		Limit(cypher.LiteralOf(10)).
//		Build()
//
// # Rendering
//
// A Statement renders to the same text and the same parameters every time.
// Labels and relationship types are always backtick-quoted; symbolic names and
// property keys only when they are not plain identifiers. Parameter values are never
// inlined: bound parameters are collected into a separate map, and binding two
// different values to one name fails with ErrDuplicateParameter.
//
//	MATCH (n:`Thing`) WHERE n.name = $name RETURN n LIMIT 10
//
// # Hand-written queries
//
// ParameterNames scans arbitrary Cypher text for $placeholders, skipping string
// literals and comments.
package cypher
