package services

import "github.com/makkenno/ittasu/domain/core/entities"

// SortByDependencies orders childNodes so that for every edge scoped to
// parentID whose endpoints are both present, the source precedes the target.
//
// The order is a depth-first post-order: each node is emitted after all of its
// predecessors. Nodes without dependency relations keep their input order.
// A visited set makes cyclic edges produce some consistent order instead of
// looping.
func SortByDependencies(childNodes []entities.TaskNode, edges []entities.TaskEdge, parentID *string) []entities.TaskNode {
	predecessors := make(map[string][]string)
	for _, e := range edges {
		if entities.SameScope(e.ParentID, parentID) {
			predecessors[e.Target] = append(predecessors[e.Target], e.Source)
		}
	}

	members := make(map[string]entities.TaskNode, len(childNodes))
	for _, n := range childNodes {
		if _, ok := members[n.ID]; !ok {
			members[n.ID] = n
		}
	}

	sorted := make([]entities.TaskNode, 0, len(childNodes))
	visited := make(IDSet, len(childNodes))

	var visit func(id string)
	visit = func(id string) {
		if visited.Has(id) {
			return
		}
		visited.Add(id)
		for _, source := range predecessors[id] {
			visit(source)
		}
		if n, ok := members[id]; ok {
			sorted = append(sorted, n)
		}
	}

	for _, n := range childNodes {
		visit(n.ID)
	}
	return sorted
}
