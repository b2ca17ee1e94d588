package aggregates

import (
	"fmt"
	"unicode/utf8"

	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	"github.com/makkenno/ittasu/domain/events"
	"github.com/makkenno/ittasu/domain/services"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// ChildTaskSpec describes a task added to the current scope
type ChildTaskSpec struct {
	Title string
	// Position defaults to the configured default child position
	Position *valueobjects.Position
	// AutoPlace moves the task right until it no longer overlaps a sibling
	AutoPlace bool
}

// AddChildTask creates an incomplete task in the current scope and selects it
func (w *Workspace) AddChildTask(spec ChildTaskSpec) (entities.TaskNode, error) {
	if err := w.checkTitle(spec.Title); err != nil {
		return entities.TaskNode{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	position := valueobjects.Position{X: w.cfg.DefaultChildX, Y: w.cfg.DefaultChildY}
	if spec.Position != nil {
		if !spec.Position.IsValid() {
			return entities.TaskNode{}, pkgerrors.NewValidationError("invalid task position")
		}
		position = *spec.Position
	}

	scope := w.state.CurrentTaskID
	if spec.AutoPlace {
		var siblings []entities.TaskNode
		for _, n := range w.state.Nodes {
			if n.InScope(scope) {
				siblings = append(siblings, n)
			}
		}
		position = services.FindFreePosition(w.cfg, position, siblings)
	}

	now := w.clock()
	task := entities.NewTaskNode(w.ids.NewTaskID(), spec.Title, "", scope, position, now)

	next := w.state
	next.Nodes = appendNodes(w.state.Nodes, task)
	next.SelectedTaskID = entities.ScopeOf(task.ID)
	w.commit(next, events.NewTaskCreated(w.id, task.ID, entities.CloneScope(scope), position, now))

	return task.Clone(), nil
}

// UpdateTaskTitle renames a task
func (w *Workspace) UpdateTaskTitle(taskID, title string) error {
	if err := w.checkTitle(title); err != nil {
		return err
	}
	return w.updateTask(taskID, func(t entities.TaskNode) (entities.TaskNode, events.DomainEvent) {
		now := w.clock()
		return t.WithTitle(title, now), events.NewTaskTitleUpdated(w.id, taskID, t.Title, title, now)
	})
}

// UpdateTaskMemo replaces a task's markdown memo
func (w *Workspace) UpdateTaskMemo(taskID, memo string) error {
	if n := utf8.RuneCountInString(memo); n > w.cfg.MaxMemoLength {
		return pkgerrors.NewFieldValidationError("memo", "max",
			fmt.Sprintf("memo must be at most %d characters", w.cfg.MaxMemoLength))
	}
	return w.updateTask(taskID, func(t entities.TaskNode) (entities.TaskNode, events.DomainEvent) {
		now := w.clock()
		return t.WithMemo(memo, now), events.NewTaskMemoUpdated(w.id, taskID, len(memo), now)
	})
}

// ToggleTaskComplete flips a task between completed and incomplete
func (w *Workspace) ToggleTaskComplete(taskID string) (entities.TaskNode, error) {
	var toggled entities.TaskNode
	err := w.updateTask(taskID, func(t entities.TaskNode) (entities.TaskNode, events.DomainEvent) {
		now := w.clock()
		toggled = t.ToggleCompleted(now)
		return toggled, events.NewTaskCompletionToggled(w.id, taskID, toggled.Completed, now)
	})
	if err != nil {
		return entities.TaskNode{}, err
	}
	return toggled.Clone(), nil
}

// UpdateTaskPosition moves a task on its scope's canvas
func (w *Workspace) UpdateTaskPosition(taskID string, position valueobjects.Position) error {
	if !position.IsValid() {
		return pkgerrors.NewValidationError("invalid task position")
	}
	return w.updateTask(taskID, func(t entities.TaskNode) (entities.TaskNode, events.DomainEvent) {
		now := w.clock()
		return t.WithPosition(position, now), events.NewTaskMoved(w.id, taskID, t.Position, position, now)
	})
}

func (w *Workspace) updateTask(taskID string, apply func(entities.TaskNode) (entities.TaskNode, events.DomainEvent)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.state.nodeIndex(taskID)
	if i < 0 {
		return pkgerrors.NewNotFoundError("task " + taskID)
	}

	updated, evt := apply(w.state.Nodes[i])
	nodes := make([]entities.TaskNode, len(w.state.Nodes))
	copy(nodes, w.state.Nodes)
	nodes[i] = updated

	next := w.state
	next.Nodes = nodes
	w.commit(next, evt)
	return nil
}

// AddEdge draws a dependency from source to target in the current scope.
// Cycles are accepted; traversals tolerate them.
func (w *Workspace) AddEdge(source, target string) (entities.TaskEdge, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, id := range []string{source, target} {
		if w.state.nodeIndex(id) < 0 {
			return entities.TaskEdge{}, pkgerrors.NewNotFoundError("task " + id)
		}
	}

	edge := entities.NewTaskEdge(w.ids.NewEdgeID(), source, target, w.state.CurrentTaskID)
	next := w.state
	next.Edges = appendEdges(w.state.Edges, edge)
	w.commit(next, events.NewEdgeAdded(w.id, edge.ID, source, target, entities.CloneScope(edge.ParentID), w.clock()))

	return edge.Clone(), nil
}

// RemoveEdge deletes one edge
func (w *Workspace) RemoveEdge(edgeID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.edgeIndex(edgeID) < 0 {
		return pkgerrors.NewNotFoundError("edge " + edgeID)
	}

	edges := make([]entities.TaskEdge, 0, len(w.state.Edges)-1)
	for _, e := range w.state.Edges {
		if e.ID != edgeID {
			edges = append(edges, e)
		}
	}

	next := w.state
	next.Edges = edges
	w.commit(next, events.NewEdgeRemoved(w.id, edgeID, w.clock()))
	return nil
}

// RemoveTask deletes a task, all of its descendants and every edge touching
// them. When the viewed scope is removed the workspace navigates to the
// removed task's parent; a removed selection is cleared. It returns the ids
// of the removed tasks.
func (w *Workspace) RemoveTask(taskID string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.state.nodeIndex(taskID)
	if i < 0 {
		return nil, pkgerrors.NewNotFoundError("task " + taskID)
	}
	parent := w.state.Nodes[i].ParentID

	next, removed, removedEdges := w.cascade(taskID)
	if next.CurrentTaskID != nil && removed.Has(*next.CurrentTaskID) {
		next.CurrentTaskID = entities.CloneScope(parent)
		if parent != nil && removed.Has(*parent) {
			next.CurrentTaskID = nil
		}
	}
	if next.SelectedTaskID != nil && removed.Has(*next.SelectedTaskID) {
		next.SelectedTaskID = nil
	}

	ids := removedIDs(w.state.Nodes, removed)
	w.commit(next, events.NewTasksRemoved(w.id, taskID, ids, removedEdges, w.clock()))
	return ids, nil
}

// cascade computes the state without rootID's subtree. rootID itself need
// not exist. Callers must hold the write lock.
func (w *Workspace) cascade(rootID string) (Snapshot, services.IDSet, int) {
	removed := services.GetDescendantIDs(w.state.Nodes, rootID)

	nodes := make([]entities.TaskNode, 0, len(w.state.Nodes))
	for _, n := range w.state.Nodes {
		if !removed.Has(n.ID) {
			nodes = append(nodes, n)
		}
	}
	edges := make([]entities.TaskEdge, 0, len(w.state.Edges))
	for _, e := range w.state.Edges {
		if !e.Touches(removed) {
			edges = append(edges, e)
		}
	}

	next := w.state
	next.Nodes = nodes
	next.Edges = edges
	return next, removed, len(w.state.Edges) - len(edges)
}

// removedIDs lists the members of removed that exist in nodes, in store order
func removedIDs(nodes []entities.TaskNode, removed services.IDSet) []string {
	ids := make([]string, 0, len(removed))
	for _, n := range nodes {
		if removed.Has(n.ID) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func (w *Workspace) checkTitle(title string) error {
	if n := utf8.RuneCountInString(title); n > w.cfg.MaxTitleLength {
		return pkgerrors.NewFieldValidationError("title", "max",
			fmt.Sprintf("title must be at most %d characters", w.cfg.MaxTitleLength))
	}
	return nil
}

func appendNodes(existing []entities.TaskNode, added ...entities.TaskNode) []entities.TaskNode {
	out := make([]entities.TaskNode, 0, len(existing)+len(added))
	out = append(out, existing...)
	return append(out, added...)
}

func appendEdges(existing []entities.TaskEdge, added ...entities.TaskEdge) []entities.TaskEdge {
	out := make([]entities.TaskEdge, 0, len(existing)+len(added))
	out = append(out, existing...)
	return append(out, added...)
}
