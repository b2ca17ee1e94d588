package aggregates

import (
	"fmt"

	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	"github.com/makkenno/ittasu/domain/events"
	"github.com/makkenno/ittasu/domain/services"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// AddTemplate expands template into the current scope. Top-level tasks are
// placed around anchor; a nil anchor keeps the template's own coordinates.
// All nodes and edges of every level are committed together.
func (w *Workspace) AddTemplate(template entities.TaskTemplate, anchor *valueobjects.Position) (services.InstantiatedTemplate, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	at := valueobjects.Position{X: w.cfg.TemplateRecenterX, Y: w.cfg.TemplateRecenterY}
	if anchor != nil {
		if !anchor.IsValid() {
			return services.InstantiatedTemplate{}, pkgerrors.NewValidationError("invalid template anchor")
		}
		at = *anchor
	}

	now := w.clock()
	scope := w.state.CurrentTaskID
	result, err := w.instantiator.Instantiate(template, scope, at, now)
	if err != nil {
		return services.InstantiatedTemplate{}, err
	}

	next := w.state
	next.Nodes = appendNodes(w.state.Nodes, result.Nodes...)
	next.Edges = appendEdges(w.state.Edges, result.Edges...)
	w.commit(next, events.NewTemplateInstantiated(w.id, template.ID, entities.CloneScope(scope), len(result.Nodes), len(result.Edges), now))

	return result, nil
}

// SaveTemplate captures the selected tasks, with their descendants and the
// edges among them, as a new template stored in the workspace
func (w *Workspace) SaveTemplate(name, description string, taskIDs []string) (entities.TaskTemplate, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	template, err := services.CaptureTemplate(w.ids.NewTemplateID(), name, description,
		services.NewIDSet(taskIDs...), w.state.Nodes, w.state.Edges)
	if err != nil {
		return entities.TaskTemplate{}, err
	}

	templates := make([]entities.TaskTemplate, 0, len(w.state.Templates)+1)
	templates = append(templates, w.state.Templates...)
	templates = append(templates, template)

	next := w.state
	next.Templates = templates
	w.commit(next, events.NewTemplateSaved(w.id, template.ID, template.Name, template.TaskCount(), w.clock()))

	return template, nil
}

// Templates returns the templates saved in this workspace
func (w *Workspace) Templates() []entities.TaskTemplate {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]entities.TaskTemplate, len(w.state.Templates))
	copy(out, w.state.Templates)
	return out
}

// Template returns one saved template
func (w *Workspace) Template(templateID string) (entities.TaskTemplate, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, t := range w.state.Templates {
		if t.ID == templateID {
			return t, true
		}
	}
	return entities.TaskTemplate{}, false
}

// ImportSubgraph merges a transfer document into the current scope with
// fresh ids. Documents over the configured size limits are rejected
// before anything changes.
func (w *Workspace) ImportSubgraph(data entities.ExportedData) (services.ImportedData, error) {
	if len(data.Nodes) > w.cfg.MaxImportNodes {
		return services.ImportedData{}, pkgerrors.NewFieldValidationError("nodes", "max",
			fmt.Sprintf("import is limited to %d nodes", w.cfg.MaxImportNodes))
	}
	if len(data.Edges) > w.cfg.MaxImportEdges {
		return services.ImportedData{}, pkgerrors.NewFieldValidationError("edges", "max",
			fmt.Sprintf("import is limited to %d edges", w.cfg.MaxImportEdges))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock()
	scope := w.state.CurrentTaskID
	imported := services.GenerateImportedData(data, scope, w.ids, now)

	next := w.state
	next.Nodes = appendNodes(w.state.Nodes, imported.Nodes...)
	next.Edges = appendEdges(w.state.Edges, imported.Edges...)
	w.commit(next, events.NewSubgraphImported(w.id, entities.CloneScope(scope), len(imported.Nodes), len(imported.Edges), now))

	return imported, nil
}

// ExportSubgraph exports a task with all of its descendants
func (w *Workspace) ExportSubgraph(rootID string) (entities.ExportedData, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.state.nodeIndex(rootID) < 0 {
		return entities.ExportedData{}, pkgerrors.NewNotFoundError("task " + rootID)
	}
	return services.ExportSubgraph(rootID, w.state.Nodes, w.state.Edges), nil
}

// ExportSelected exports the given tasks. With withDescendants every
// selected task brings its subtree along. Unknown ids are ignored.
func (w *Workspace) ExportSelected(taskIDs []string, withDescendants bool) entities.ExportedData {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := services.NewIDSet(taskIDs...)
	if withDescendants {
		for _, id := range taskIDs {
			for d := range services.GetDescendantIDs(w.state.Nodes, id) {
				ids.Add(d)
			}
		}
	}
	return services.ExportSelectedNodes(w.state.Nodes, w.state.Edges, ids)
}

// Markdown renders the document for one task, or for every root task when
// taskID is nil
func (w *Workspace) Markdown(taskID *string) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if taskID != nil && w.state.nodeIndex(*taskID) < 0 {
		return "", pkgerrors.NewNotFoundError("task " + *taskID)
	}
	return w.markdown.Generate(w.state.Nodes, w.state.Edges, taskID), nil
}

// Outline lists the headings of the document Markdown renders
func (w *Workspace) Outline(taskID *string) ([]services.MarkdownHeading, error) {
	doc, err := w.Markdown(taskID)
	if err != nil {
		return nil, err
	}
	return services.ExtractHeadings(doc), nil
}
