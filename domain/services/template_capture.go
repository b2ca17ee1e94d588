package services

import (
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// CaptureTemplate turns live nodes into a template. Selected nodes become the
// top-level tasks in store order, positioned relative to the top-left corner
// of the selection. Their descendants become nested children that keep their
// own canvas positions. Each level keeps the edges whose two endpoints belong
// to it. Unknown ids are ignored, as are selected nodes that already come
// along as a descendant of another selected node.
func CaptureTemplate(id, name, description string, selected IDSet, nodes []entities.TaskNode, edges []entities.TaskEdge) (entities.TaskTemplate, error) {
	if name == "" {
		return entities.TaskTemplate{}, pkgerrors.NewValidationError("template name cannot be empty")
	}

	h := newHierarchy(nodes)
	var top []entities.TaskNode
	for _, n := range nodes {
		if selected.Has(n.ID) && !hasSelectedAncestor(h, n, selected) {
			top = append(top, n)
		}
	}
	if len(top) == 0 {
		return entities.TaskTemplate{}, pkgerrors.NewValidationError("template selection is empty")
	}

	origin := top[0].Position
	for _, n := range top[1:] {
		if n.Position.X < origin.X {
			origin.X = n.Position.X
		}
		if n.Position.Y < origin.Y {
			origin.Y = n.Position.Y
		}
	}

	c := &templateCapture{h: h, edges: edges, visiting: make(IDSet)}
	tasks, levelEdges := c.level(top, func(n entities.TaskNode) valueobjects.Position {
		return n.Position.Sub(origin)
	})

	return entities.TaskTemplate{
		ID:          id,
		Name:        name,
		Description: description,
		Tasks:       tasks,
		Edges:       levelEdges,
	}, nil
}

func hasSelectedAncestor(h *hierarchy, n entities.TaskNode, selected IDSet) bool {
	seen := NewIDSet(n.ID)
	for parent := n.ParentID; parent != nil; {
		if seen.Has(*parent) {
			return false
		}
		if selected.Has(*parent) {
			return true
		}
		seen.Add(*parent)
		p, ok := h.node(*parent)
		if !ok {
			return false
		}
		parent = p.ParentID
	}
	return false
}

type templateCapture struct {
	h        *hierarchy
	edges    []entities.TaskEdge
	visiting IDSet
}

func (c *templateCapture) level(members []entities.TaskNode, place func(entities.TaskNode) valueobjects.Position) ([]entities.TemplateTask, []entities.TemplateEdge) {
	index := make(map[string]int, len(members))
	tasks := make([]entities.TemplateTask, 0, len(members))

	for _, n := range members {
		if _, dup := index[n.ID]; dup || c.visiting.Has(n.ID) {
			continue
		}
		index[n.ID] = len(tasks)

		task := entities.TemplateTask{
			Title:            n.Title,
			Memo:             n.Memo,
			RelativePosition: place(n),
		}

		c.visiting.Add(n.ID)
		if children := c.h.children[n.ID]; len(children) > 0 {
			task.Children, task.Edges = c.level(children, func(child entities.TaskNode) valueobjects.Position {
				return child.Position
			})
		}
		delete(c.visiting, n.ID)

		tasks = append(tasks, task)
	}

	var levelEdges []entities.TemplateEdge
	for _, e := range c.edges {
		src, okSource := index[e.Source]
		dst, okTarget := index[e.Target]
		if okSource && okTarget {
			levelEdges = append(levelEdges, entities.TemplateEdge{SourceIndex: src, TargetIndex: dst})
		}
	}
	return tasks, levelEdges
}
