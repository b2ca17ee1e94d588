package events

import (
	"time"

	"github.com/makkenno/ittasu/domain/core/valueobjects"
)

// Event type names as published on the bus
const (
	TypeTaskCreated           = "task.created"
	TypeTaskTitleUpdated      = "task.title_updated"
	TypeTaskMemoUpdated       = "task.memo_updated"
	TypeTaskMoved             = "task.moved"
	TypeTaskCompletionToggled = "task.completion_toggled"
	TypeTasksRemoved          = "task.removed"
	TypeEdgeAdded             = "edge.added"
	TypeEdgeRemoved           = "edge.removed"
	TypeSubgraphImported      = "subgraph.imported"
	TypeTemplateInstantiated  = "template.instantiated"
	TypeTemplateSaved         = "template.saved"
)

// Task events

// TaskCreated is raised when a child task is added to a scope
type TaskCreated struct {
	BaseEvent
	TaskID   string                `json:"task_id"`
	ParentID *string               `json:"parent_id"`
	Position valueobjects.Position `json:"position"`
}

// NewTaskCreated creates a TaskCreated event
func NewTaskCreated(workspaceID, taskID string, parentID *string, position valueobjects.Position, timestamp time.Time) TaskCreated {
	return TaskCreated{
		BaseEvent: newBase(workspaceID, TypeTaskCreated, timestamp),
		TaskID:    taskID,
		ParentID:  parentID,
		Position:  position,
	}
}

// TaskTitleUpdated is raised when a task is renamed
type TaskTitleUpdated struct {
	BaseEvent
	TaskID   string `json:"task_id"`
	OldTitle string `json:"old_title"`
	NewTitle string `json:"new_title"`
}

// NewTaskTitleUpdated creates a TaskTitleUpdated event
func NewTaskTitleUpdated(workspaceID, taskID, oldTitle, newTitle string, timestamp time.Time) TaskTitleUpdated {
	return TaskTitleUpdated{
		BaseEvent: newBase(workspaceID, TypeTaskTitleUpdated, timestamp),
		TaskID:    taskID,
		OldTitle:  oldTitle,
		NewTitle:  newTitle,
	}
}

// TaskMemoUpdated is raised when a task memo changes. The memo body is not
// carried; subscribers read it from the workspace.
type TaskMemoUpdated struct {
	BaseEvent
	TaskID     string `json:"task_id"`
	MemoLength int    `json:"memo_length"`
}

// NewTaskMemoUpdated creates a TaskMemoUpdated event
func NewTaskMemoUpdated(workspaceID, taskID string, memoLength int, timestamp time.Time) TaskMemoUpdated {
	return TaskMemoUpdated{
		BaseEvent:  newBase(workspaceID, TypeTaskMemoUpdated, timestamp),
		TaskID:     taskID,
		MemoLength: memoLength,
	}
}

// TaskMoved is raised when a task is repositioned on the canvas
type TaskMoved struct {
	BaseEvent
	TaskID      string                `json:"task_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewTaskMoved creates a TaskMoved event
func NewTaskMoved(workspaceID, taskID string, oldPos, newPos valueobjects.Position, timestamp time.Time) TaskMoved {
	return TaskMoved{
		BaseEvent:   newBase(workspaceID, TypeTaskMoved, timestamp),
		TaskID:      taskID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// TaskCompletionToggled is raised when a task is completed or reopened
type TaskCompletionToggled struct {
	BaseEvent
	TaskID    string `json:"task_id"`
	Completed bool   `json:"completed"`
}

// NewTaskCompletionToggled creates a TaskCompletionToggled event
func NewTaskCompletionToggled(workspaceID, taskID string, completed bool, timestamp time.Time) TaskCompletionToggled {
	return TaskCompletionToggled{
		BaseEvent: newBase(workspaceID, TypeTaskCompletionToggled, timestamp),
		TaskID:    taskID,
		Completed: completed,
	}
}

// TasksRemoved is raised when a task and its descendants are deleted
type TasksRemoved struct {
	BaseEvent
	RootTaskID   string   `json:"root_task_id"`
	RemovedIDs   []string `json:"removed_ids"`
	RemovedEdges int      `json:"removed_edges"`
}

// NewTasksRemoved creates a TasksRemoved event
func NewTasksRemoved(workspaceID, rootTaskID string, removedIDs []string, removedEdges int, timestamp time.Time) TasksRemoved {
	return TasksRemoved{
		BaseEvent:    newBase(workspaceID, TypeTasksRemoved, timestamp),
		RootTaskID:   rootTaskID,
		RemovedIDs:   removedIDs,
		RemovedEdges: removedEdges,
	}
}

// Edge events

// EdgeAdded is raised when a dependency edge is drawn
type EdgeAdded struct {
	BaseEvent
	EdgeID   string  `json:"edge_id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	ParentID *string `json:"parent_id"`
}

// NewEdgeAdded creates an EdgeAdded event
func NewEdgeAdded(workspaceID, edgeID, source, target string, parentID *string, timestamp time.Time) EdgeAdded {
	return EdgeAdded{
		BaseEvent: newBase(workspaceID, TypeEdgeAdded, timestamp),
		EdgeID:    edgeID,
		Source:    source,
		Target:    target,
		ParentID:  parentID,
	}
}

// EdgeRemoved is raised when a dependency edge is deleted
type EdgeRemoved struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
}

// NewEdgeRemoved creates an EdgeRemoved event
func NewEdgeRemoved(workspaceID, edgeID string, timestamp time.Time) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent: newBase(workspaceID, TypeEdgeRemoved, timestamp),
		EdgeID:    edgeID,
	}
}

// Bulk events

// SubgraphImported is raised when a transfer document is merged into a scope
type SubgraphImported struct {
	BaseEvent
	ParentID  *string `json:"parent_id"`
	NodeCount int     `json:"node_count"`
	EdgeCount int     `json:"edge_count"`
}

// NewSubgraphImported creates a SubgraphImported event
func NewSubgraphImported(workspaceID string, parentID *string, nodeCount, edgeCount int, timestamp time.Time) SubgraphImported {
	return SubgraphImported{
		BaseEvent: newBase(workspaceID, TypeSubgraphImported, timestamp),
		ParentID:  parentID,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}
}

// TemplateInstantiated is raised when a template is stamped into a scope
type TemplateInstantiated struct {
	BaseEvent
	TemplateID string  `json:"template_id"`
	ParentID   *string `json:"parent_id"`
	NodeCount  int     `json:"node_count"`
	EdgeCount  int     `json:"edge_count"`
}

// NewTemplateInstantiated creates a TemplateInstantiated event
func NewTemplateInstantiated(workspaceID, templateID string, parentID *string, nodeCount, edgeCount int, timestamp time.Time) TemplateInstantiated {
	return TemplateInstantiated{
		BaseEvent:  newBase(workspaceID, TypeTemplateInstantiated, timestamp),
		TemplateID: templateID,
		ParentID:   parentID,
		NodeCount:  nodeCount,
		EdgeCount:  edgeCount,
	}
}

// TemplateSaved is raised when live tasks are captured as a template
type TemplateSaved struct {
	BaseEvent
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	TaskCount  int    `json:"task_count"`
}

// NewTemplateSaved creates a TemplateSaved event
func NewTemplateSaved(workspaceID, templateID, name string, taskCount int, timestamp time.Time) TemplateSaved {
	return TemplateSaved{
		BaseEvent:  newBase(workspaceID, TypeTemplateSaved, timestamp),
		TemplateID: templateID,
		Name:       name,
		TaskCount:  taskCount,
	}
}
