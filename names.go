package ogm

// Runner names.
const (
	RunnerNeo4j = "neo4j"
)

// Reserved keys used in generated statements and their results. They are
// prefixed and suffixed with double underscores so they never collide with
// user property names.
const (
	// KeyInternalID carries the database-assigned identity of a node.
	KeyInternalID = "__internalId__"

	// KeyNodeLabels carries the full label set of a node.
	KeyNodeLabels = "__nodeLabels__"

	// KeyRelationship carries the relationship value next to a related node
	// inside a pattern comprehension.
	KeyRelationship = "__relationship__"

	// KeyStartNode, KeyRelatedNodes and KeyRelationships name the columns of
	// path-based reads used for cyclic schemas.
	KeyStartNode     = "__sn__"
	KeyRelatedNodes  = "__srn__"
	KeyRelationships = "__sr__"
)

// Reserved parameter names.
const (
	ParamID                     = "__id__"
	ParamIDs                    = "__ids__"
	ParamProperties             = "__properties__"
	ParamRelationshipProperties = "__relProperties__"
	ParamVersion                = "__version__"
	ParamFromID                 = "fromId"
	ParamToID                   = "toId"
)

// IsReservedKey reports whether key is one of the reserved result keys.
func IsReservedKey(key string) bool {
	switch key {
	case KeyInternalID, KeyNodeLabels, KeyRelationship, KeyStartNode, KeyRelatedNodes, KeyRelationships:
		return true
	}

	return false
}
