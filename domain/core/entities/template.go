package entities

import "github.com/makkenno/ittasu/domain/core/valueobjects"

// TemplateEdge is an index pair into the task list of one template level
type TemplateEdge struct {
	SourceIndex int `json:"sourceIndex" yaml:"sourceIndex" dynamodbav:"sourceIndex" validate:"min=0"`
	TargetIndex int `json:"targetIndex" yaml:"targetIndex" dynamodbav:"targetIndex" validate:"min=0"`
}

// TemplateTask is one task of a template. Children form a nested template level
// whose Edges index into Children.
type TemplateTask struct {
	Title            string                `json:"title" yaml:"title" dynamodbav:"title" validate:"required"`
	Memo             string                `json:"memo,omitempty" yaml:"memo,omitempty" dynamodbav:"memo,omitempty"`
	RelativePosition valueobjects.Position `json:"relativePosition" yaml:"relativePosition" dynamodbav:"relativePosition"`
	Children         []TemplateTask        `json:"children,omitempty" yaml:"children,omitempty" dynamodbav:"children,omitempty" validate:"omitempty,dive"`
	Edges            []TemplateEdge        `json:"edges,omitempty" yaml:"edges,omitempty" dynamodbav:"edges,omitempty" validate:"omitempty,dive"`
}

// TaskTemplate is a reusable graph fragment
type TaskTemplate struct {
	ID          string         `json:"id" yaml:"id" dynamodbav:"id" validate:"required"`
	Name        string         `json:"name" yaml:"name" dynamodbav:"name" validate:"required"`
	Description string         `json:"description" yaml:"description" dynamodbav:"description"`
	Tasks       []TemplateTask `json:"tasks" yaml:"tasks" dynamodbav:"tasks" validate:"required,min=1,dive"`
	Edges       []TemplateEdge `json:"edges" yaml:"edges" dynamodbav:"edges" validate:"omitempty,dive"`
}

// TaskCount returns the number of tasks at every depth
func (t TaskTemplate) TaskCount() int {
	return countTemplateTasks(t.Tasks)
}

func countTemplateTasks(tasks []TemplateTask) int {
	n := len(tasks)
	for _, task := range tasks {
		n += countTemplateTasks(task.Children)
	}
	return n
}

// Clone returns a copy sharing no slices with t
func (t TaskTemplate) Clone() TaskTemplate {
	t.Tasks = cloneTemplateTasks(t.Tasks)
	t.Edges = cloneTemplateEdges(t.Edges)
	return t
}

func cloneTemplateTasks(tasks []TemplateTask) []TemplateTask {
	if tasks == nil {
		return nil
	}
	out := make([]TemplateTask, len(tasks))
	for i, task := range tasks {
		task.Children = cloneTemplateTasks(task.Children)
		task.Edges = cloneTemplateEdges(task.Edges)
		out[i] = task
	}
	return out
}

func cloneTemplateEdges(edges []TemplateEdge) []TemplateEdge {
	if edges == nil {
		return nil
	}
	out := make([]TemplateEdge, len(edges))
	copy(out, edges)
	return out
}
