package services

import (
	"time"

	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
)

var fixtureTime = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func node(id string, parentID *string, completed bool, y float64) entities.TaskNode {
	return nodeAt(id, parentID, completed, 0, y)
}

func nodeAt(id string, parentID *string, completed bool, x, y float64) entities.TaskNode {
	n := entities.NewTaskNode(id, id, "", parentID, valueobjects.Position{X: x, Y: y}, fixtureTime)
	if completed {
		n = n.ToggleCompleted(fixtureTime)
	}
	return n
}

func memoNode(id, title, memo string, parentID *string) entities.TaskNode {
	return entities.NewTaskNode(id, title, memo, parentID, valueobjects.Position{}, fixtureTime)
}

func edge(source, target string, parentID *string) entities.TaskEdge {
	return entities.NewTaskEdge(source+"->"+target, source, target, parentID)
}

func ptr(s string) *string {
	return &s
}

func ids(nodes []entities.TaskNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
