package entities

// TaskEdge is a directed dependency: Source must be considered before Target.
// ParentID is the scope the edge was drawn in. Edges that cross scopes are
// tolerated and simply ignored by scope-local queries.
type TaskEdge struct {
	ID       string  `json:"id" dynamodbav:"id"`
	Source   string  `json:"source" dynamodbav:"source"`
	Target   string  `json:"target" dynamodbav:"target"`
	ParentID *string `json:"parentId" dynamodbav:"parentId"`
}

// NewTaskEdge creates an edge scoped to parentID
func NewTaskEdge(id, source, target string, parentID *string) TaskEdge {
	return TaskEdge{
		ID:       id,
		Source:   source,
		Target:   target,
		ParentID: CloneScope(parentID),
	}
}

// Touches reports whether the edge has an endpoint in ids
func (e TaskEdge) Touches(ids map[string]struct{}) bool {
	_, src := ids[e.Source]
	_, dst := ids[e.Target]
	return src || dst
}

// Clone returns a copy that shares no pointers with e
func (e TaskEdge) Clone() TaskEdge {
	e.ParentID = CloneScope(e.ParentID)
	return e
}

// CloneEdges copies an edge slice
func CloneEdges(edges []TaskEdge) []TaskEdge {
	out := make([]TaskEdge, len(edges))
	for i, e := range edges {
		out[i] = e.Clone()
	}
	return out
}
