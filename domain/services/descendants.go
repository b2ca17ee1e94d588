package services

import "github.com/makkenno/ittasu/domain/core/entities"

// GetDescendantIDs returns rootID together with every node reachable through
// the parent/child relation. Edges play no part. Parent cycles are tolerated:
// each id is expanded at most once.
func GetDescendantIDs(nodes []entities.TaskNode, rootID string) IDSet {
	return newHierarchy(nodes).descendants(rootID)
}

func (h *hierarchy) descendants(rootID string) IDSet {
	result := NewIDSet(rootID)
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range h.children[id] {
			if result.Has(child.ID) {
				continue
			}
			result.Add(child.ID)
			stack = append(stack, child.ID)
		}
	}
	return result
}
