package services

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transferGraph builds:
//
//	outside
//	root -> a (a1, a2 with a1 -> a2), b ; a -> b
//	edge root -> outside crosses the export boundary
func transferGraph() ([]entities.TaskNode, []entities.TaskEdge) {
	nodes := []entities.TaskNode{
		node("outside", nil, false, 0),
		nodeAt("root", nil, true, 40, 100),
		nodeAt("a", ptr("root"), false, 10, 20),
		nodeAt("b", ptr("root"), false, 300, 20),
		node("a1", ptr("a"), false, 0),
		node("a2", ptr("a"), false, 100),
	}
	nodes[2].Memo = "# details"
	edges := []entities.TaskEdge{
		edge("a", "b", ptr("root")),
		edge("a1", "a2", ptr("a")),
		edge("root", "outside", nil),
	}
	return nodes, edges
}

func TestExportSubgraph(t *testing.T) {
	nodes, edges := transferGraph()

	data := ExportSubgraph("a", nodes, edges)

	assert.Equal(t, ExportFormatVersion, data.Version)
	assert.Equal(t, []string{"a", "a1", "a2"}, ids(data.Nodes))
	require.Len(t, data.Edges, 1)
	assert.Equal(t, "a1->a2", data.Edges[0].ID)
}

func TestExportSubgraphDropsBoundaryEdges(t *testing.T) {
	nodes, edges := transferGraph()

	data := ExportSubgraph("root", nodes, edges)

	assert.Equal(t, []string{"root", "a", "b", "a1", "a2"}, ids(data.Nodes))
	for _, e := range data.Edges {
		assert.NotEqual(t, "outside", e.Target)
	}
	assert.Len(t, data.Edges, 2)
}

func TestExportSubgraphUnknownRoot(t *testing.T) {
	nodes, edges := transferGraph()

	data := ExportSubgraph("missing", nodes, edges)

	assert.NotNil(t, data.Nodes)
	assert.NotNil(t, data.Edges)
	assert.Empty(t, data.Nodes)
	assert.Empty(t, data.Edges)
}

func TestExportSelectedNodes(t *testing.T) {
	nodes, edges := transferGraph()

	data := ExportSelectedNodes(nodes, edges, NewIDSet("a", "b", "outside"))

	assert.Equal(t, []string{"outside", "a", "b"}, ids(data.Nodes))
	require.Len(t, data.Edges, 1)
	assert.Equal(t, "a->b", data.Edges[0].ID)
}

func TestExportDoesNotAliasStore(t *testing.T) {
	nodes, edges := transferGraph()

	data := ExportSubgraph("a", nodes, edges)
	*data.Nodes[0].ParentID = "changed"

	assert.Equal(t, "root", *nodes[2].ParentID)
}

func TestGenerateImportedData(t *testing.T) {
	nodes, edges := transferGraph()
	data := ExportSubgraph("a", nodes, edges)
	importedAt := fixtureTime.Add(time.Hour)

	got := GenerateImportedData(data, ptr("target"), valueobjects.NewSequenceGenerator(), importedAt)

	require.Len(t, got.Nodes, 3)
	require.Len(t, got.Edges, 1)
	assert.Equal(t, map[string]string{"a": "task-1", "a1": "task-2", "a2": "task-3"}, got.IDMap)

	a, a1, a2 := got.Nodes[0], got.Nodes[1], got.Nodes[2]
	assert.Equal(t, "target", *a.ParentID, "boundary node hangs under the target")
	assert.Equal(t, a.ID, *a1.ParentID)
	assert.Equal(t, a.ID, *a2.ParentID)

	assert.Equal(t, "# details", a.Memo)
	assert.Equal(t, valueobjects.Position{X: 10, Y: 20}, a.Position)
	for _, n := range got.Nodes {
		assert.Equal(t, importedAt, n.CreatedAt)
		assert.Equal(t, importedAt, n.UpdatedAt)
	}

	e := got.Edges[0]
	assert.Equal(t, "edge-4", e.ID)
	assert.Equal(t, a1.ID, e.Source)
	assert.Equal(t, a2.ID, e.Target)
	assert.Equal(t, a.ID, *e.ParentID)
}

func TestGenerateImportedDataAtRoot(t *testing.T) {
	nodes, edges := transferGraph()
	data := ExportSubgraph("root", nodes, edges)

	got := GenerateImportedData(data, nil, valueobjects.NewSequenceGenerator(), fixtureTime)

	require.Len(t, got.Nodes, 5)
	assert.Nil(t, got.Nodes[0].ParentID)
	assert.True(t, got.Nodes[0].Completed, "content is copied verbatim")
	require.NotNil(t, got.Nodes[0].CompletedAt)
}

func TestGenerateImportedDataDropsDanglingEdges(t *testing.T) {
	data := entities.ExportedData{
		Version: ExportFormatVersion,
		Nodes:   []entities.TaskNode{node("x", nil, false, 0)},
		Edges:   []entities.TaskEdge{edge("x", "ghost", nil), edge("ghost", "x", nil)},
	}

	got := GenerateImportedData(data, nil, valueobjects.NewSequenceGenerator(), fixtureTime)

	assert.Len(t, got.Nodes, 1)
	assert.Empty(t, got.Edges)
}

// shape replaces ids with their original counterparts so that an imported
// copy can be compared structurally with the exported subgraph
func shape(nodes []entities.TaskNode, edges []entities.TaskEdge, rename map[string]string, boundary *string) ([]entities.TaskNode, []entities.TaskEdge) {
	back := func(id string) string {
		if orig, ok := rename[id]; ok {
			return orig
		}
		return id
	}
	backScope := func(scope *string) *string {
		if scope == nil || entities.SameScope(scope, boundary) {
			return nil
		}
		return entities.ScopeOf(back(*scope))
	}

	outNodes := make([]entities.TaskNode, len(nodes))
	for i, n := range nodes {
		n = n.Clone()
		n.ID = back(n.ID)
		n.ParentID = backScope(n.ParentID)
		outNodes[i] = n
	}
	outEdges := make([]entities.TaskEdge, len(edges))
	for i, e := range edges {
		outEdges[i] = entities.TaskEdge{
			Source:   back(e.Source),
			Target:   back(e.Target),
			ParentID: backScope(e.ParentID),
		}
	}
	return outNodes, outEdges
}

func TestExportImportRoundTrip(t *testing.T) {
	nodes, edges := transferGraph()
	exported := ExportSubgraph("root", nodes, edges)
	gen := valueobjects.NewSequenceGenerator()

	first := GenerateImportedData(exported, ptr("dest"), gen, fixtureTime)
	second := GenerateImportedData(exported, ptr("dest"), gen, fixtureTime)

	reverse := make(map[string]string)
	for orig, fresh := range first.IDMap {
		reverse[fresh] = orig
	}
	gotNodes, gotEdges := shape(first.Nodes, first.Edges, reverse, ptr("dest"))
	wantNodes, wantEdges := shape(exported.Nodes, exported.Edges, nil, nil)

	opts := cmp.Options{
		cmpopts.IgnoreFields(entities.TaskNode{}, "CreatedAt", "UpdatedAt"),
	}
	if diff := cmp.Diff(wantNodes, gotNodes, opts); diff != "" {
		t.Errorf("imported nodes differ from the export (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantEdges, gotEdges); diff != "" {
		t.Errorf("imported edges differ from the export (-want +got):\n%s", diff)
	}

	seen := make(IDSet)
	for _, n := range append(first.Nodes, second.Nodes...) {
		assert.False(t, seen.Has(n.ID), "id %s reused across imports", n.ID)
		seen.Add(n.ID)
	}
}
