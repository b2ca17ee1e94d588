package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/makkenno/ittasu/application/dto"
	"github.com/makkenno/ittasu/application/ports"
	"github.com/makkenno/ittasu/domain/config"
	"github.com/makkenno/ittasu/domain/core/aggregates"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	domainservices "github.com/makkenno/ittasu/domain/services"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// WorkspaceView is a consistent read of one workspace
type WorkspaceView struct {
	ID       string              `json:"id"`
	Version  int                 `json:"version"`
	Snapshot aggregates.Snapshot `json:"snapshot"`
}

// WorkspaceService runs store mutators and projections against persisted
// workspaces. Loaded aggregates are cached; every successful change is saved
// with an optimistic version check and its events are published afterwards.
type WorkspaceService struct {
	repo      ports.WorkspaceRepository
	catalog   ports.TemplateCatalog
	publisher ports.EventPublisher
	metrics   ports.Metrics
	cfg       *config.DomainConfig
	ids       valueobjects.IDGenerator
	clock     valueobjects.Clock
	logger    *zap.Logger

	mu    sync.Mutex
	cache map[string]*cachedWorkspace
}

type cachedWorkspace struct {
	// serializes mutate-then-save for one workspace
	mu sync.Mutex
	ws *aggregates.Workspace
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	repo ports.WorkspaceRepository,
	catalog ports.TemplateCatalog,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	cfg *config.DomainConfig,
	ids valueobjects.IDGenerator,
	clock valueobjects.Clock,
	logger *zap.Logger,
) *WorkspaceService {
	return &WorkspaceService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		metrics:   metrics,
		cfg:       cfg,
		ids:       ids,
		clock:     clock,
		logger:    logger,
		cache:     make(map[string]*cachedWorkspace),
	}
}

// entry returns the cache slot of a workspace, creating it empty
func (s *WorkspaceService) entry(id string) *cachedWorkspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[id]
	if !ok {
		e = &cachedWorkspace{}
		s.cache[id] = e
	}
	return e
}

// load returns the cached aggregate or reads it from the repository.
// A workspace that was never saved starts empty. Callers hold e.mu.
func (s *WorkspaceService) load(ctx context.Context, id string, e *cachedWorkspace) (*aggregates.Workspace, error) {
	if e.ws != nil {
		s.metrics.IncrementCounterBy("cache_hits", 1, nil)
		return e.ws, nil
	}
	s.metrics.IncrementCounterBy("cache_misses", 1, nil)

	opts := []aggregates.Option{
		aggregates.WithDomainConfig(s.cfg),
		aggregates.WithIDGenerator(s.ids),
		aggregates.WithClock(s.clock),
	}

	record, err := s.repo.Load(ctx, id)
	var ws *aggregates.Workspace
	switch {
	case err == nil:
		ws, err = aggregates.ReconstructWorkspace(id, record.Snapshot, record.Version, opts...)
	case pkgerrors.IsNotFound(err):
		s.logger.Debug("Starting empty workspace", zap.String("workspaceID", id))
		ws, err = aggregates.NewWorkspace(id, opts...)
	default:
		return nil, pkgerrors.Wrap(err, "failed to load workspace")
	}
	if err != nil {
		return nil, err
	}

	e.ws = ws
	return ws, nil
}

// read runs fn against a loaded workspace without changing it
func (s *WorkspaceService) read(ctx context.Context, id string, fn func(*aggregates.Workspace) error) error {
	if id == "" {
		return pkgerrors.NewValidationError("workspace id is required")
	}
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	ws, err := s.load(ctx, id, e)
	if err != nil {
		return err
	}
	return fn(ws)
}

// mutate runs fn, then persists and publishes the change. Nothing is saved
// when fn fails or leaves the version unchanged. When saving fails the
// cached aggregate is dropped, so the next holder of e.mu reloads stored
// state instead of building on the rejected change.
func (s *WorkspaceService) mutate(ctx context.Context, id, operation string, fn func(*aggregates.Workspace) error) error {
	if id == "" {
		return pkgerrors.NewValidationError("workspace id is required")
	}
	start := time.Now()
	tags := map[string]string{"operation": operation}
	defer func() {
		s.metrics.ObserveDuration("workspace_mutation", time.Since(start), tags)
	}()

	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	ws, err := s.load(ctx, id, e)
	if err != nil {
		return err
	}

	before := ws.Version()
	if err := fn(ws); err != nil {
		tags["status"] = "rejected"
		return err
	}
	if ws.Version() == before {
		tags["status"] = "noop"
		return nil
	}

	record := ports.WorkspaceRecord{
		ID:        id,
		Snapshot:  ws.Snapshot(),
		Version:   ws.Version(),
		UpdatedAt: s.clock(),
	}
	if err := s.repo.Save(ctx, record, ws.PersistedVersion()); err != nil {
		tags["status"] = "failed"
		e.ws = nil
		s.logger.Warn("Failed to save workspace",
			zap.String("workspaceID", id),
			zap.String("operation", operation),
			zap.Int("version", record.Version),
			zap.Error(err),
		)
		return err
	}
	ws.MarkPersisted()
	tags["status"] = "ok"

	pending := ws.GetUncommittedEvents()
	ws.MarkEventsAsCommitted()
	if len(pending) > 0 {
		if err := s.publisher.PublishBatch(ctx, pending); err != nil {
			// the change is already stored; delivery is best effort
			s.logger.Error("Failed to publish workspace events",
				zap.String("workspaceID", id),
				zap.Int("count", len(pending)),
				zap.Error(err),
			)
		}
	}

	s.logger.Debug("Workspace updated",
		zap.String("workspaceID", id),
		zap.String("operation", operation),
		zap.Int("version", record.Version),
	)
	return nil
}

// Get returns the current state of a workspace
func (s *WorkspaceService) Get(ctx context.Context, id string) (WorkspaceView, error) {
	var view WorkspaceView
	err := s.read(ctx, id, func(ws *aggregates.Workspace) error {
		view = WorkspaceView{ID: id, Version: ws.Version(), Snapshot: ws.Snapshot()}
		return nil
	})
	return view, err
}

// Delete removes a workspace from storage and the cache
func (s *WorkspaceService) Delete(ctx context.Context, id string) error {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	e.ws = nil
	s.logger.Info("Workspace deleted", zap.String("workspaceID", id))
	return nil
}

// Task operations

// AddChildTask adds a task to the current scope
func (s *WorkspaceService) AddChildTask(ctx context.Context, id string, spec aggregates.ChildTaskSpec) (entities.TaskNode, error) {
	var task entities.TaskNode
	err := s.mutate(ctx, id, "add_child_task", func(ws *aggregates.Workspace) error {
		var err error
		task, err = ws.AddChildTask(spec)
		return err
	})
	if err == nil {
		s.metrics.IncrementCounterBy("tasks_created", 1, nil)
	}
	return task, err
}

// UpdateTaskTitle renames a task
func (s *WorkspaceService) UpdateTaskTitle(ctx context.Context, id, taskID, title string) error {
	return s.mutate(ctx, id, "update_task_title", func(ws *aggregates.Workspace) error {
		return ws.UpdateTaskTitle(taskID, title)
	})
}

// UpdateTaskMemo replaces a task memo
func (s *WorkspaceService) UpdateTaskMemo(ctx context.Context, id, taskID, memo string) error {
	return s.mutate(ctx, id, "update_task_memo", func(ws *aggregates.Workspace) error {
		return ws.UpdateTaskMemo(taskID, memo)
	})
}

// UpdateTaskPosition moves a task
func (s *WorkspaceService) UpdateTaskPosition(ctx context.Context, id, taskID string, position valueobjects.Position) error {
	return s.mutate(ctx, id, "update_task_position", func(ws *aggregates.Workspace) error {
		return ws.UpdateTaskPosition(taskID, position)
	})
}

// ToggleTaskComplete flips completion of a task
func (s *WorkspaceService) ToggleTaskComplete(ctx context.Context, id, taskID string) (entities.TaskNode, error) {
	var task entities.TaskNode
	err := s.mutate(ctx, id, "toggle_task_complete", func(ws *aggregates.Workspace) error {
		var err error
		task, err = ws.ToggleTaskComplete(taskID)
		return err
	})
	return task, err
}

// RemoveTask deletes a task with its subtree
func (s *WorkspaceService) RemoveTask(ctx context.Context, id, taskID string) ([]string, error) {
	var removed []string
	err := s.mutate(ctx, id, "remove_task", func(ws *aggregates.Workspace) error {
		var err error
		removed, err = ws.RemoveTask(taskID)
		return err
	})
	if err == nil {
		s.metrics.IncrementCounterBy("tasks_deleted", float64(len(removed)), nil)
	}
	return removed, err
}

// AddEdge adds a dependency in the current scope
func (s *WorkspaceService) AddEdge(ctx context.Context, id, source, target string) (entities.TaskEdge, error) {
	var edge entities.TaskEdge
	err := s.mutate(ctx, id, "add_edge", func(ws *aggregates.Workspace) error {
		var err error
		edge, err = ws.AddEdge(source, target)
		return err
	})
	if err == nil {
		s.metrics.IncrementCounterBy("edges_created", 1, nil)
	}
	return edge, err
}

// RemoveEdge deletes a dependency
func (s *WorkspaceService) RemoveEdge(ctx context.Context, id, edgeID string) error {
	return s.mutate(ctx, id, "remove_edge", func(ws *aggregates.Workspace) error {
		return ws.RemoveEdge(edgeID)
	})
}

// Navigation

// SetCurrentTask changes the viewed scope; nil views the root
func (s *WorkspaceService) SetCurrentTask(ctx context.Context, id string, taskID *string) error {
	return s.mutate(ctx, id, "set_current_task", func(ws *aggregates.Workspace) error {
		return ws.SetCurrentTaskID(taskID)
	})
}

// GoToParent views the parent of the current scope
func (s *WorkspaceService) GoToParent(ctx context.Context, id string) error {
	return s.mutate(ctx, id, "go_to_parent", func(ws *aggregates.Workspace) error {
		ws.GoToParent()
		return nil
	})
}

// GoToNextTask navigates to the recommended task
func (s *WorkspaceService) GoToNextTask(ctx context.Context, id string) (string, bool, error) {
	var next string
	var ok bool
	err := s.mutate(ctx, id, "go_to_next_task", func(ws *aggregates.Workspace) error {
		next, ok = ws.GoToNextTask()
		return nil
	})
	return next, ok, err
}

// SelectTask changes the selection; nil clears it
func (s *WorkspaceService) SelectTask(ctx context.Context, id string, taskID *string) error {
	return s.mutate(ctx, id, "select_task", func(ws *aggregates.Workspace) error {
		return ws.SelectTask(taskID)
	})
}

// Projections

// NextTask returns the recommended task without navigating
func (s *WorkspaceService) NextTask(ctx context.Context, id string) (string, bool, error) {
	var next string
	var ok bool
	err := s.read(ctx, id, func(ws *aggregates.Workspace) error {
		next, ok = ws.NextTask()
		return nil
	})
	return next, ok, err
}

// ScopeTasks returns one scope's tasks in dependency order
func (s *WorkspaceService) ScopeTasks(ctx context.Context, id string, scope *string) ([]entities.TaskNode, error) {
	var tasks []entities.TaskNode
	err := s.read(ctx, id, func(ws *aggregates.Workspace) error {
		tasks = ws.ScopeTasks(scope)
		return nil
	})
	return tasks, err
}

// Markdown renders a task document; nil renders every root task
func (s *WorkspaceService) Markdown(ctx context.Context, id string, taskID *string) (string, error) {
	var doc string
	err := s.read(ctx, id, func(ws *aggregates.Workspace) error {
		var err error
		doc, err = ws.Markdown(taskID)
		return err
	})
	return doc, err
}

// Outline lists the headings of a task document
func (s *WorkspaceService) Outline(ctx context.Context, id string, taskID *string) ([]domainservices.MarkdownHeading, error) {
	var outline []domainservices.MarkdownHeading
	err := s.read(ctx, id, func(ws *aggregates.Workspace) error {
		var err error
		outline, err = ws.Outline(taskID)
		return err
	})
	return outline, err
}

// Transfer

// ExportSubgraph exports a task with its descendants
func (s *WorkspaceService) ExportSubgraph(ctx context.Context, id, rootID string) (entities.ExportedData, error) {
	var data entities.ExportedData
	err := s.read(ctx, id, func(ws *aggregates.Workspace) error {
		var err error
		data, err = ws.ExportSubgraph(rootID)
		return err
	})
	return data, err
}

// ExportSelected exports a set of tasks
func (s *WorkspaceService) ExportSelected(ctx context.Context, id string, taskIDs []string, withDescendants bool) (entities.ExportedData, error) {
	var data entities.ExportedData
	err := s.read(ctx, id, func(ws *aggregates.Workspace) error {
		data = ws.ExportSelected(taskIDs, withDescendants)
		return nil
	})
	return data, err
}

// ImportSubgraph validates a raw transfer document and merges it into the
// current scope. An invalid document changes nothing.
func (s *WorkspaceService) ImportSubgraph(ctx context.Context, id string, document []byte) (domainservices.ImportedData, error) {
	data, err := dto.DecodeExportedData(document)
	if err != nil {
		s.logger.Debug("Rejected import document", zap.String("workspaceID", id), zap.Error(err))
		return domainservices.ImportedData{}, err
	}
	return s.Import(ctx, id, data)
}

// Import merges an already decoded transfer document into the current scope
func (s *WorkspaceService) Import(ctx context.Context, id string, data entities.ExportedData) (domainservices.ImportedData, error) {
	var imported domainservices.ImportedData
	err := s.mutate(ctx, id, "import_subgraph", func(ws *aggregates.Workspace) error {
		var err error
		imported, err = ws.ImportSubgraph(data)
		return err
	})
	if err == nil {
		s.metrics.IncrementCounterBy("tasks_created", float64(len(imported.Nodes)), map[string]string{"source": "import"})
	}
	return imported, err
}

// Templates

// ListTemplates returns the catalog templates followed by the workspace's own
func (s *WorkspaceService) ListTemplates(ctx context.Context, id string) ([]entities.TaskTemplate, error) {
	builtIn, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	var saved []entities.TaskTemplate
	if err := s.read(ctx, id, func(ws *aggregates.Workspace) error {
		saved = ws.Templates()
		return nil
	}); err != nil {
		return nil, err
	}

	out := make([]entities.TaskTemplate, 0, len(builtIn)+len(saved))
	out = append(out, builtIn...)
	return append(out, saved...), nil
}

// InstantiateTemplate expands a saved or catalog template into the current scope
func (s *WorkspaceService) InstantiateTemplate(ctx context.Context, id, templateID string, anchor *valueobjects.Position) (domainservices.InstantiatedTemplate, error) {
	var result domainservices.InstantiatedTemplate
	err := s.mutate(ctx, id, "add_template", func(ws *aggregates.Workspace) error {
		template, ok := ws.Template(templateID)
		if !ok {
			var err error
			if template, err = s.catalog.Get(ctx, templateID); err != nil {
				return err
			}
		}
		var err error
		result, err = ws.AddTemplate(template, anchor)
		return err
	})
	if err == nil {
		s.metrics.IncrementCounterBy("tasks_created", float64(len(result.Nodes)), map[string]string{"source": "template"})
	}
	return result, err
}

// SaveTemplate captures tasks as a new workspace template
func (s *WorkspaceService) SaveTemplate(ctx context.Context, id, name, description string, taskIDs []string) (entities.TaskTemplate, error) {
	var template entities.TaskTemplate
	err := s.mutate(ctx, id, "save_template", func(ws *aggregates.Workspace) error {
		var err error
		template, err = ws.SaveTemplate(name, description, taskIDs)
		return err
	})
	return template, err
}
