package services

import (
	"sort"

	"github.com/makkenno/ittasu/domain/core/entities"
)

// FindNextTask resolves the single task the user should work on next.
//
// Starting at the root scope it repeatedly picks one task per level:
// incomplete tasks, narrowed to those whose incoming dependencies are all
// completed, narrowed again to those not downstream of another candidate,
// then the top-most/left-most. A picked task with children becomes the next
// scope. When a scope has no incomplete children the scope itself is
// returned, which is ok=false at the root.
//
// Dependency checks look at every edge regardless of its scope.
func FindNextTask(nodes []entities.TaskNode, edges []entities.TaskEdge) (string, bool) {
	h := newHierarchy(nodes)
	g := newEdgeIndex(edges)

	var scope *string
	seen := make(IDSet)
	for {
		var incomplete []entities.TaskNode
		for _, n := range h.scope(scope) {
			if !n.Completed {
				incomplete = append(incomplete, n)
			}
		}
		if len(incomplete) == 0 {
			if scope == nil {
				return "", false
			}
			return *scope, true
		}

		candidates := readyTasks(incomplete, h, g)
		if len(candidates) == 0 {
			candidates = incomplete
		}
		if independent := independentTasks(candidates, g); len(independent) > 0 {
			candidates = independent
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Position.Before(candidates[j].Position)
		})
		picked := candidates[0]

		if !h.hasChildren(picked.ID) || seen.Has(picked.ID) {
			return picked.ID, true
		}
		seen.Add(picked.ID)
		scope = entities.ScopeOf(picked.ID)
	}
}

// edgeIndex holds forward and reverse adjacency over all edges
type edgeIndex struct {
	outgoing map[string][]string
	incoming map[string][]string
}

func newEdgeIndex(edges []entities.TaskEdge) *edgeIndex {
	g := &edgeIndex{
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
	for _, e := range edges {
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e.Target)
		g.incoming[e.Target] = append(g.incoming[e.Target], e.Source)
	}
	return g
}

// reachable returns every id reachable from start through one or more edges
func (g *edgeIndex) reachable(start string) IDSet {
	seen := make(IDSet)
	queue := append([]string(nil), g.outgoing[start]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen.Has(id) {
			continue
		}
		seen.Add(id)
		queue = append(queue, g.outgoing[id]...)
	}
	return seen
}

// readyTasks keeps tasks whose every predecessor is completed.
// A predecessor that is not in the node list counts as satisfied.
func readyTasks(tasks []entities.TaskNode, h *hierarchy, g *edgeIndex) []entities.TaskNode {
	var ready []entities.TaskNode
	for _, t := range tasks {
		ok := true
		for _, source := range g.incoming[t.ID] {
			if n, found := h.node(source); found && !n.Completed {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, t)
		}
	}
	return ready
}

// independentTasks drops candidates that are reachable from another candidate
func independentTasks(candidates []entities.TaskNode, g *edgeIndex) []entities.TaskNode {
	downstream := make(IDSet)
	for _, c := range candidates {
		for id := range g.reachable(c.ID) {
			if id != c.ID {
				downstream.Add(id)
			}
		}
	}

	var independent []entities.TaskNode
	for _, c := range candidates {
		if !downstream.Has(c.ID) {
			independent = append(independent, c)
		}
	}
	return independent
}
