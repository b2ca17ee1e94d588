package services

import (
	"time"

	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
)

// ExportFormatVersion tags every transfer document produced by this package
const ExportFormatVersion = 1

// ExportSubgraph extracts rootID and all of its descendants, plus every edge
// whose two endpoints are inside that set. Ids are kept as they are.
func ExportSubgraph(rootID string, nodes []entities.TaskNode, edges []entities.TaskEdge) entities.ExportedData {
	return exportIDs(GetDescendantIDs(nodes, rootID), nodes, edges)
}

// ExportSelectedNodes extracts exactly the nodes in ids, plus every edge whose
// two endpoints are in ids.
func ExportSelectedNodes(nodes []entities.TaskNode, edges []entities.TaskEdge, ids IDSet) entities.ExportedData {
	return exportIDs(ids, nodes, edges)
}

func exportIDs(ids IDSet, nodes []entities.TaskNode, edges []entities.TaskEdge) entities.ExportedData {
	data := entities.ExportedData{
		Version: ExportFormatVersion,
		Nodes:   []entities.TaskNode{},
		Edges:   []entities.TaskEdge{},
	}
	for _, n := range nodes {
		if ids.Has(n.ID) {
			data.Nodes = append(data.Nodes, n.Clone())
		}
	}
	for _, e := range edges {
		if ids.Has(e.Source) && ids.Has(e.Target) {
			data.Edges = append(data.Edges, e.Clone())
		}
	}
	return data
}

// ImportedData is the fragment produced from a transfer document, ready to be
// appended to the store.
type ImportedData struct {
	Nodes []entities.TaskNode
	Edges []entities.TaskEdge
	// IDMap maps original node ids to their new ids
	IDMap map[string]string
}

// GenerateImportedData gives every node and edge of data a fresh id and hangs
// the fragment under targetParentID. Nodes whose parent was exported with them
// keep that relationship; the rest (the boundary of the exported set) are
// reparented to targetParentID. Edges with an endpoint that was not exported
// are dropped. Content and positions are copied; timestamps are reset to now.
func GenerateImportedData(data entities.ExportedData, targetParentID *string, ids valueobjects.IDGenerator, now time.Time) ImportedData {
	idMap := make(map[string]string, len(data.Nodes))
	for _, n := range data.Nodes {
		if _, dup := idMap[n.ID]; dup {
			continue
		}
		idMap[n.ID] = ids.NewTaskID()
	}

	remapScope := func(parentID *string) *string {
		if parentID != nil {
			if mapped, ok := idMap[*parentID]; ok {
				return entities.ScopeOf(mapped)
			}
		}
		return entities.CloneScope(targetParentID)
	}

	result := ImportedData{
		Nodes: make([]entities.TaskNode, 0, len(data.Nodes)),
		Edges: make([]entities.TaskEdge, 0, len(data.Edges)),
		IDMap: idMap,
	}

	assigned := make(IDSet, len(data.Nodes))
	for _, n := range data.Nodes {
		if assigned.Has(n.ID) {
			continue
		}
		assigned.Add(n.ID)

		node := n.Clone()
		node.ID = idMap[n.ID]
		node.ParentID = remapScope(n.ParentID)
		node.CreatedAt = now
		node.UpdatedAt = now
		result.Nodes = append(result.Nodes, node)
	}

	for _, e := range data.Edges {
		source, okSource := idMap[e.Source]
		target, okTarget := idMap[e.Target]
		if !okSource || !okTarget {
			continue
		}
		result.Edges = append(result.Edges, entities.NewTaskEdge(ids.NewEdgeID(), source, target, remapScope(e.ParentID)))
	}
	return result
}
