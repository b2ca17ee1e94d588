package aggregates

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/makkenno/ittasu/domain/config"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	"github.com/makkenno/ittasu/domain/events"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w, err := NewWorkspace("ws-1",
		WithIDGenerator(valueobjects.NewSequenceGenerator()),
		WithClock(valueobjects.FixedClock(testNow)),
	)
	require.NoError(t, err)
	return w
}

func addTask(t *testing.T, w *Workspace, title string, x, y float64) entities.TaskNode {
	t.Helper()
	pos := valueobjects.Position{X: x, Y: y}
	task, err := w.AddChildTask(ChildTaskSpec{Title: title, Position: &pos})
	require.NoError(t, err)
	return task
}

func enter(t *testing.T, w *Workspace, taskID string) {
	t.Helper()
	require.NoError(t, w.SetCurrentTaskID(&taskID))
}

func eventTypes(w *Workspace) []string {
	var out []string
	for _, e := range w.GetUncommittedEvents() {
		out = append(out, e.GetEventType())
	}
	return out
}

func TestNewWorkspace(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid workspace", id: "ws-1"},
		{name: "empty id", id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWorkspace(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Nil(t, w)
				return
			}
			require.NoError(t, err)
			snap := w.Snapshot()
			assert.NotNil(t, snap.Nodes)
			assert.NotNil(t, snap.Edges)
			assert.NotNil(t, snap.Templates)
			assert.Nil(t, snap.CurrentTaskID)
			assert.Equal(t, 0, w.Version())
		})
	}
}

func TestAddChildTask(t *testing.T) {
	w := newTestWorkspace(t)

	task, err := w.AddChildTask(ChildTaskSpec{})
	require.NoError(t, err)

	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, "", task.Title)
	assert.Nil(t, task.ParentID)
	assert.Equal(t, valueobjects.Position{X: 100, Y: 100}, task.Position)
	assert.Equal(t, testNow, task.CreatedAt)

	snap := w.Snapshot()
	require.Len(t, snap.Nodes, 1)
	require.NotNil(t, snap.SelectedTaskID)
	assert.Equal(t, task.ID, *snap.SelectedTaskID)
	assert.Equal(t, 1, w.Version())
	assert.Equal(t, []string{events.TypeTaskCreated}, eventTypes(w))
}

func TestAddChildTaskInCurrentScope(t *testing.T) {
	w := newTestWorkspace(t)
	parent := addTask(t, w, "parent", 0, 0)
	enter(t, w, parent.ID)

	child := addTask(t, w, "child", 10, 10)

	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestAddChildTaskAutoPlace(t *testing.T) {
	w := newTestWorkspace(t)
	addTask(t, w, "first", 100, 100)

	task, err := w.AddChildTask(ChildTaskSpec{AutoPlace: true})

	require.NoError(t, err)
	assert.Equal(t, valueobjects.Position{X: 350, Y: 100}, task.Position)
}

func TestAddChildTaskRejectsLongTitle(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxTitleLength = 3
	w, err := NewWorkspace("ws", WithDomainConfig(cfg))
	require.NoError(t, err)

	_, err = w.AddChildTask(ChildTaskSpec{Title: "toolong"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, w.Snapshot().Nodes)
	assert.Equal(t, 0, w.Version())
}

func TestUpdateTask(t *testing.T) {
	w := newTestWorkspace(t)
	task := addTask(t, w, "draft", 0, 0)

	require.NoError(t, w.UpdateTaskTitle(task.ID, "final"))
	require.NoError(t, w.UpdateTaskMemo(task.ID, "# notes"))
	require.NoError(t, w.UpdateTaskPosition(task.ID, valueobjects.Position{X: 7, Y: 8}))

	got, err := w.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "# notes", got.Memo)
	assert.Equal(t, valueobjects.Position{X: 7, Y: 8}, got.Position)
	assert.Equal(t, 4, w.Version())
}

func TestUpdateUnknownTask(t *testing.T) {
	w := newTestWorkspace(t)

	tests := []struct {
		name string
		op   func() error
	}{
		{name: "title", op: func() error { return w.UpdateTaskTitle("ghost", "x") }},
		{name: "memo", op: func() error { return w.UpdateTaskMemo("ghost", "x") }},
		{name: "position", op: func() error { return w.UpdateTaskPosition("ghost", valueobjects.Position{}) }},
		{name: "toggle", op: func() error { _, err := w.ToggleTaskComplete("ghost"); return err }},
		{name: "remove", op: func() error { _, err := w.RemoveTask("ghost"); return err }},
		{name: "remove edge", op: func() error { return w.RemoveEdge("ghost") }},
		{name: "select", op: func() error { return w.SelectTask(strPtr("ghost")) }},
		{name: "navigate", op: func() error { return w.SetCurrentTaskID(strPtr("ghost")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.Error(t, err)
			assert.True(t, pkgerrors.IsNotFound(err))
		})
	}
	assert.Equal(t, 0, w.Version())
}

func TestToggleTaskComplete(t *testing.T) {
	w := newTestWorkspace(t)
	task := addTask(t, w, "t", 0, 0)

	done, err := w.ToggleTaskComplete(task.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, testNow, *done.CompletedAt)

	reopened, err := w.ToggleTaskComplete(task.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
}

func TestAddAndRemoveEdge(t *testing.T) {
	w := newTestWorkspace(t)
	parent := addTask(t, w, "parent", 0, 0)
	enter(t, w, parent.ID)
	a := addTask(t, w, "a", 0, 0)
	b := addTask(t, w, "b", 0, 100)

	e, err := w.AddEdge(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, e.Source)
	assert.Equal(t, b.ID, e.Target)
	require.NotNil(t, e.ParentID)
	assert.Equal(t, parent.ID, *e.ParentID)

	_, err = w.AddEdge(a.ID, "ghost")
	assert.True(t, pkgerrors.IsNotFound(err))

	require.NoError(t, w.RemoveEdge(e.ID))
	assert.Empty(t, w.Snapshot().Edges)
}

func TestRemoveTaskCascades(t *testing.T) {
	w := newTestWorkspace(t)
	keep := addTask(t, w, "keep", 0, 0)
	root := addTask(t, w, "root", 0, 100)
	enter(t, w, root.ID)
	child := addTask(t, w, "child", 0, 0)
	enter(t, w, child.ID)
	grandchild := addTask(t, w, "grandchild", 0, 0)
	require.NoError(t, w.SetCurrentTaskID(nil))

	_, err := w.AddEdge(keep.ID, root.ID)
	require.NoError(t, err)
	_, err = w.AddEdge(keep.ID, keep.ID)
	require.NoError(t, err)

	removed, err := w.RemoveTask(root.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{root.ID, child.ID, grandchild.ID}, removed)
	snap := w.Snapshot()
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, keep.ID, snap.Nodes[0].ID)
	require.Len(t, snap.Edges, 1, "only the edge not touching a removed task survives")
	assert.Equal(t, keep.ID, snap.Edges[0].Target)
}

func TestRemoveViewedScopeNavigatesToParent(t *testing.T) {
	w := newTestWorkspace(t)
	top := addTask(t, w, "top", 0, 0)
	enter(t, w, top.ID)
	mid := addTask(t, w, "mid", 0, 0)
	enter(t, w, mid.ID)
	leaf := addTask(t, w, "leaf", 0, 0)
	enter(t, w, leaf.ID)

	_, err := w.RemoveTask(mid.ID)
	require.NoError(t, err)

	snap := w.Snapshot()
	require.NotNil(t, snap.CurrentTaskID)
	assert.Equal(t, top.ID, *snap.CurrentTaskID)
}

func TestRemoveSelectedTaskClearsSelection(t *testing.T) {
	w := newTestWorkspace(t)
	task := addTask(t, w, "t", 0, 0)
	require.NotNil(t, w.Snapshot().SelectedTaskID)

	_, err := w.RemoveTask(task.ID)
	require.NoError(t, err)

	assert.Nil(t, w.Snapshot().SelectedTaskID)
}

func TestNavigation(t *testing.T) {
	w := newTestWorkspace(t)
	top := addTask(t, w, "top", 0, 0)
	enter(t, w, top.ID)
	child := addTask(t, w, "child", 0, 0)

	require.NoError(t, w.SelectTask(&child.ID))
	enter(t, w, child.ID)
	snap := w.Snapshot()
	assert.Equal(t, child.ID, *snap.CurrentTaskID)
	assert.Nil(t, snap.SelectedTaskID, "navigation clears the selection")

	w.GoToParent()
	assert.Equal(t, top.ID, *w.Snapshot().CurrentTaskID)

	w.GoToParent()
	assert.Nil(t, w.Snapshot().CurrentTaskID)

	version := w.Version()
	w.GoToParent()
	assert.Equal(t, version, w.Version(), "going up from the root is a no-op")
}

func TestGoToParentFromDanglingScope(t *testing.T) {
	orphanParent := "gone"
	snapshot := EmptySnapshot()
	snapshot.Nodes = []entities.TaskNode{
		entities.NewTaskNode("orphan", "orphan", "", &orphanParent, valueobjects.Position{}, testNow),
		entities.NewTaskNode("kept", "kept", "", nil, valueobjects.Position{}, testNow),
	}
	snapshot.CurrentTaskID = &orphanParent
	w, err := ReconstructWorkspace("ws", snapshot, 3)
	require.NoError(t, err)

	w.GoToParent()

	snap := w.Snapshot()
	assert.Nil(t, snap.CurrentTaskID)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, "kept", snap.Nodes[0].ID)
	assert.Equal(t, 4, w.Version())
}

func TestGoToNextTask(t *testing.T) {
	w := newTestWorkspace(t)
	root := addTask(t, w, "root", 0, 0)
	enter(t, w, root.ID)
	first := addTask(t, w, "first", 0, 0)
	addTask(t, w, "second", 0, 100)
	require.NoError(t, w.SetCurrentTaskID(nil))

	id, ok := w.GoToNextTask()
	require.True(t, ok)
	assert.Equal(t, first.ID, id)
	assert.Equal(t, first.ID, *w.Snapshot().CurrentTaskID)

	for _, n := range w.Snapshot().Nodes {
		_, err := w.ToggleTaskComplete(n.ID)
		require.NoError(t, err)
	}
	version := w.Version()
	_, ok = w.GoToNextTask()
	assert.False(t, ok)
	assert.Equal(t, version, w.Version())
	assert.Equal(t, first.ID, *w.Snapshot().CurrentTaskID, "state unchanged when nothing is left")
}

func TestAddTemplate(t *testing.T) {
	w := newTestWorkspace(t)
	scope := addTask(t, w, "scope", 0, 0)
	enter(t, w, scope.ID)

	template := entities.TaskTemplate{
		ID:   "tpl",
		Name: "pair",
		Tasks: []entities.TemplateTask{
			{Title: "one", RelativePosition: valueobjects.Position{X: 0, Y: 0}},
			{Title: "two", RelativePosition: valueobjects.Position{X: 0, Y: 150},
				Children: []entities.TemplateTask{{Title: "inner"}}},
		},
		Edges: []entities.TemplateEdge{{SourceIndex: 0, TargetIndex: 1}},
	}

	result, err := w.AddTemplate(template, nil)
	require.NoError(t, err)
	assert.Len(t, result.Nodes, 3)
	assert.Len(t, result.Edges, 1)

	snap := w.Snapshot()
	assert.Len(t, snap.Nodes, 4)
	assert.Len(t, snap.Edges, 1)
	assert.Equal(t, valueobjects.Position{X: 0, Y: 150}, result.Nodes[1].Position, "nil anchor keeps template coordinates")
	assert.Equal(t, scope.ID, *result.Nodes[0].ParentID)
	assert.Contains(t, eventTypes(w), events.TypeTemplateInstantiated)
}

func TestSaveTemplate(t *testing.T) {
	w := newTestWorkspace(t)
	a := addTask(t, w, "a", 100, 100)
	b := addTask(t, w, "b", 300, 100)
	_, err := w.AddEdge(a.ID, b.ID)
	require.NoError(t, err)

	tpl, err := w.SaveTemplate("flow", "two steps", []string{a.ID, b.ID})
	require.NoError(t, err)

	assert.NotEmpty(t, tpl.ID)
	assert.Equal(t, 2, tpl.TaskCount())
	saved, ok := w.Template(tpl.ID)
	require.True(t, ok)
	assert.Equal(t, "flow", saved.Name)
	assert.Len(t, w.Templates(), 1)

	_, err = w.SaveTemplate("", "", []string{a.ID})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Len(t, w.Templates(), 1)
}

func TestImportSubgraph(t *testing.T) {
	source := newTestWorkspace(t)
	root := addTask(t, source, "root", 0, 0)
	enter(t, source, root.ID)
	a := addTask(t, source, "a", 0, 0)
	b := addTask(t, source, "b", 0, 100)
	_, err := source.AddEdge(a.ID, b.ID)
	require.NoError(t, err)

	exported, err := source.ExportSubgraph(root.ID)
	require.NoError(t, err)

	target := newTestWorkspace(t)
	dest := addTask(t, target, "dest", 0, 0)
	enter(t, target, dest.ID)

	imported, err := target.ImportSubgraph(exported)
	require.NoError(t, err)
	require.Len(t, imported.Nodes, 3)
	assert.Equal(t, dest.ID, *imported.Nodes[0].ParentID)

	snap := target.Snapshot()
	assert.Len(t, snap.Nodes, 4)
	assert.Len(t, snap.Edges, 1)
}

func TestImportSubgraphRejectsOversizedDocument(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxImportNodes = 1
	w, err := NewWorkspace("ws", WithDomainConfig(cfg))
	require.NoError(t, err)

	data := entities.ExportedData{
		Version: 1,
		Nodes: []entities.TaskNode{
			entities.NewTaskNode("x", "x", "", nil, valueobjects.Position{}, testNow),
			entities.NewTaskNode("y", "y", "", nil, valueobjects.Position{}, testNow),
		},
	}

	_, err = w.ImportSubgraph(data)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, w.Snapshot().Nodes)
}

func TestExportSelected(t *testing.T) {
	w := newTestWorkspace(t)
	a := addTask(t, w, "a", 0, 0)
	enter(t, w, a.ID)
	child := addTask(t, w, "child", 0, 0)
	require.NoError(t, w.SetCurrentTaskID(nil))
	b := addTask(t, w, "b", 0, 100)

	only := w.ExportSelected([]string{a.ID, b.ID}, false)
	assert.Len(t, only.Nodes, 2)

	withChildren := w.ExportSelected([]string{a.ID}, true)
	got := make([]string, 0, len(withChildren.Nodes))
	for _, n := range withChildren.Nodes {
		got = append(got, n.ID)
	}
	assert.Equal(t, []string{a.ID, child.ID}, got)
}

func TestMarkdownAndOutline(t *testing.T) {
	w := newTestWorkspace(t)
	task := addTask(t, w, "Plan", 0, 0)
	require.NoError(t, w.UpdateTaskMemo(task.ID, "# Goals"))

	doc, err := w.Markdown(&task.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, "# Plan"))
	assert.Contains(t, doc, "## Goals")

	outline, err := w.Outline(nil)
	require.NoError(t, err)
	require.Len(t, outline, 2)
	assert.Equal(t, "goals", outline[1].ID)

	_, err = w.Markdown(strPtr("ghost"))
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSnapshotIsACopy(t *testing.T) {
	w := newTestWorkspace(t)
	addTask(t, w, "t", 0, 0)

	snap := w.Snapshot()
	snap.Nodes[0].Title = "mutated"

	assert.Equal(t, "t", w.Snapshot().Nodes[0].Title)
}

func TestSnapshotTemplatesAreCopied(t *testing.T) {
	snapshot := EmptySnapshot()
	snapshot.Templates = []entities.TaskTemplate{{
		ID:   "tpl",
		Name: "Release",
		Tasks: []entities.TemplateTask{
			{Title: "build", Children: []entities.TemplateTask{{Title: "compile"}, {Title: "link"}},
				Edges: []entities.TemplateEdge{{SourceIndex: 0, TargetIndex: 1}}},
			{Title: "ship"},
		},
		Edges: []entities.TemplateEdge{{SourceIndex: 0, TargetIndex: 1}},
	}}
	w, err := ReconstructWorkspace("ws", snapshot, 0)
	require.NoError(t, err)

	snap := w.Snapshot()
	snap.Templates[0].Tasks[0].Title = "mutated"
	snap.Templates[0].Tasks[0].Children[1].Title = "mutated"
	snap.Templates[0].Tasks[0].Edges[0].TargetIndex = 0
	snap.Templates[0].Edges[0].SourceIndex = 1

	got := w.Snapshot().Templates[0]
	assert.Equal(t, "build", got.Tasks[0].Title)
	assert.Equal(t, "link", got.Tasks[0].Children[1].Title)
	assert.Equal(t, 1, got.Tasks[0].Edges[0].TargetIndex)
	assert.Equal(t, 0, got.Edges[0].SourceIndex)
}

func TestEventsAreCommitted(t *testing.T) {
	w := newTestWorkspace(t)
	addTask(t, w, "t", 0, 0)
	require.Len(t, w.GetUncommittedEvents(), 1)

	w.MarkEventsAsCommitted()

	assert.Empty(t, w.GetUncommittedEvents())
}

func TestPersistedVersion(t *testing.T) {
	w, err := ReconstructWorkspace("ws", EmptySnapshot(), 5)
	require.NoError(t, err)
	_, err = w.AddChildTask(ChildTaskSpec{})
	require.NoError(t, err)

	assert.Equal(t, 5, w.PersistedVersion())
	assert.Equal(t, 6, w.Version())

	w.MarkPersisted()
	assert.Equal(t, 6, w.PersistedVersion())
}

func TestConcurrentMutatorsAreSerialized(t *testing.T) {
	w := newTestWorkspace(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.AddChildTask(ChildTaskSpec{AutoPlace: true})
			_ = w.Snapshot()
		}()
	}
	wg.Wait()

	assert.Len(t, w.Snapshot().Nodes, 50)
	assert.Equal(t, 50, w.Version())
}

func strPtr(s string) *string {
	return &s
}
