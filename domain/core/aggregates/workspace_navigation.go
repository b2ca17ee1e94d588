package aggregates

import (
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/events"
	"github.com/makkenno/ittasu/domain/services"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// SetCurrentTaskID changes the viewed scope and clears the selection.
// A nil id views the root scope.
func (w *Workspace) SetCurrentTaskID(taskID *string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if taskID != nil && w.state.nodeIndex(*taskID) < 0 {
		return pkgerrors.NewNotFoundError("task " + *taskID)
	}
	w.commit(w.withPointers(taskID, nil))
	return nil
}

// GoToParent views the parent of the current scope. If the current scope
// refers to a task that no longer exists, the workspace returns to the root
// and removes whatever is still filed under the dangling id.
func (w *Workspace) GoToParent() {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.state.CurrentTaskID
	if current == nil {
		return
	}

	if i := w.state.nodeIndex(*current); i >= 0 {
		w.commit(w.withPointers(w.state.Nodes[i].ParentID, nil))
		return
	}

	danglingID := *current
	next, removed, removedEdges := w.cascade(danglingID)
	next.CurrentTaskID = nil
	next.SelectedTaskID = nil
	var evts []events.DomainEvent
	if ids := removedIDs(w.state.Nodes, removed); len(ids) > 0 || removedEdges > 0 {
		evts = append(evts, events.NewTasksRemoved(w.id, danglingID, ids, removedEdges, w.clock()))
	}
	w.commit(next, evts...)
}

// GoToNextTask navigates to the task FindNextTask recommends. It reports
// false and leaves the state unchanged when everything is done.
func (w *Workspace) GoToNextTask() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	nextID, ok := services.FindNextTask(w.state.Nodes, w.state.Edges)
	if !ok {
		return "", false
	}
	w.commit(w.withPointers(entities.ScopeOf(nextID), nil))
	return nextID, true
}

// SelectTask changes the selected task; nil clears the selection
func (w *Workspace) SelectTask(taskID *string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if taskID != nil && w.state.nodeIndex(*taskID) < 0 {
		return pkgerrors.NewNotFoundError("task " + *taskID)
	}
	w.commit(w.withPointers(w.state.CurrentTaskID, taskID))
	return nil
}

// NextTask returns the recommended task without navigating
func (w *Workspace) NextTask() (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return services.FindNextTask(w.state.Nodes, w.state.Edges)
}

// ScopeTasks returns the tasks of a scope in dependency order
func (w *Workspace) ScopeTasks(scope *string) []entities.TaskNode {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var members []entities.TaskNode
	for _, n := range w.state.Nodes {
		if n.InScope(scope) {
			members = append(members, n.Clone())
		}
	}
	return services.SortByDependencies(members, w.state.Edges, scope)
}
