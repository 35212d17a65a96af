package cypher

import "slices"

// Call invokes a function by name.
func Call(name string, args ...Expression) FunctionInvocation {
	return FunctionInvocation{Name: name, Args: slices.Clone(args)}
}

func callDistinct(name string, arg Expression) FunctionInvocation {
	return FunctionInvocation{Name: name, Distinct: true, Args: []Expression{arg}}
}

// ID is id(e), the internal identity of a node or relationship.
func ID(e Expression) FunctionInvocation { return Call("id", e) }

// ElementID is elementId(e).
func ElementID(e Expression) FunctionInvocation { return Call("elementId", e) }

// LabelsOf is labels(e).
func LabelsOf(e Expression) FunctionInvocation { return Call("labels", e) }

// TypeOf is type(r).
func TypeOf(e Expression) FunctionInvocation { return Call("type", e) }

// Count is count(e). Count(Asterisk{}) renders count(*).
func Count(e Expression) FunctionInvocation { return Call("count", e) }

// CountDistinct is count(DISTINCT e).
func CountDistinct(e Expression) FunctionInvocation { return callDistinct("count", e) }

// Collect is collect(e).
func Collect(e Expression) FunctionInvocation { return Call("collect", e) }

// CollectDistinct is collect(DISTINCT e).
func CollectDistinct(e Expression) FunctionInvocation { return callDistinct("collect", e) }

// NodesOf is nodes(path).
func NodesOf(e Expression) FunctionInvocation { return Call("nodes", e) }

// RelationshipsOf is relationships(path).
func RelationshipsOf(e Expression) FunctionInvocation { return Call("relationships", e) }

// Size is size(e).
func Size(e Expression) FunctionInvocation { return Call("size", e) }

// Coalesce is coalesce(e...).
func Coalesce(e ...Expression) FunctionInvocation { return Call("coalesce", e...) }

// Exists is exists(e).
func Exists(e Expression) FunctionInvocation { return Call("exists", e) }

// StartNode is startNode(r).
func StartNode(e Expression) FunctionInvocation { return Call("startNode", e) }

// EndNode is endNode(r).
func EndNode(e Expression) FunctionInvocation { return Call("endNode", e) }

// Head is head(list).
func Head(e Expression) FunctionInvocation { return Call("head", e) }
