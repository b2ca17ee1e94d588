package services

import "github.com/makkenno/ittasu/domain/core/entities"

// hierarchy indexes nodes by parent once per traversal so that recursive
// walks do not rescan the whole node list. Slices keep input order.
type hierarchy struct {
	roots    []entities.TaskNode
	children map[string][]entities.TaskNode
	byID     map[string]entities.TaskNode
}

func newHierarchy(nodes []entities.TaskNode) *hierarchy {
	h := &hierarchy{
		children: make(map[string][]entities.TaskNode),
		byID:     make(map[string]entities.TaskNode, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := h.byID[n.ID]; !dup {
			h.byID[n.ID] = n
		}
		if n.ParentID == nil {
			h.roots = append(h.roots, n)
			continue
		}
		h.children[*n.ParentID] = append(h.children[*n.ParentID], n)
	}
	return h
}

// scope returns the direct children of scope, or the roots for nil
func (h *hierarchy) scope(scope *string) []entities.TaskNode {
	if scope == nil {
		return h.roots
	}
	return h.children[*scope]
}

func (h *hierarchy) hasChildren(id string) bool {
	return len(h.children[id]) > 0
}

func (h *hierarchy) node(id string) (entities.TaskNode, bool) {
	n, ok := h.byID[id]
	return n, ok
}
