package entities

import (
	"time"

	"github.com/makkenno/ittasu/domain/core/valueobjects"
)

// TaskNode is a task on the canvas. Its children are every node whose
// ParentID equals its ID; a nil ParentID places it in the root scope.
type TaskNode struct {
	ID          string                `json:"id" dynamodbav:"id"`
	Title       string                `json:"title" dynamodbav:"title"`
	Memo        string                `json:"memo" dynamodbav:"memo"`
	Completed   bool                  `json:"completed" dynamodbav:"completed"`
	ParentID    *string               `json:"parentId" dynamodbav:"parentId"`
	Position    valueobjects.Position `json:"position" dynamodbav:"position"`
	CreatedAt   time.Time             `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt" dynamodbav:"updatedAt"`
	CompletedAt *time.Time            `json:"completedAt" dynamodbav:"completedAt"`
}

// NewTaskNode creates an incomplete task in the given scope
func NewTaskNode(id, title, memo string, parentID *string, position valueobjects.Position, now time.Time) TaskNode {
	return TaskNode{
		ID:        id,
		Title:     title,
		Memo:      memo,
		ParentID:  CloneScope(parentID),
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsRoot reports whether the task lives in the root scope
func (t TaskNode) IsRoot() bool {
	return t.ParentID == nil
}

// InScope reports whether the task is a direct child of scope
func (t TaskNode) InScope(scope *string) bool {
	return SameScope(t.ParentID, scope)
}

// WithTitle returns a copy with a new title
func (t TaskNode) WithTitle(title string, now time.Time) TaskNode {
	t.Title = title
	t.UpdatedAt = now
	return t
}

// WithMemo returns a copy with a new memo
func (t TaskNode) WithMemo(memo string, now time.Time) TaskNode {
	t.Memo = memo
	t.UpdatedAt = now
	return t
}

// WithPosition returns a copy moved to position
func (t TaskNode) WithPosition(position valueobjects.Position, now time.Time) TaskNode {
	t.Position = position
	t.UpdatedAt = now
	return t
}

// ToggleCompleted returns a copy with the completion flag flipped.
// CompletedAt is set when the task becomes completed and cleared otherwise.
func (t TaskNode) ToggleCompleted(now time.Time) TaskNode {
	t.Completed = !t.Completed
	t.UpdatedAt = now
	if t.Completed {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	return t
}

// Clone returns a copy that shares no pointers with t
func (t TaskNode) Clone() TaskNode {
	t.ParentID = CloneScope(t.ParentID)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

// CloneNodes copies a node slice
func CloneNodes(nodes []TaskNode) []TaskNode {
	out := make([]TaskNode, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
