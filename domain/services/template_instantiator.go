package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/makkenno/ittasu/domain/config"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// TemplateInstantiator expands templates into concrete nodes and edges
type TemplateInstantiator struct {
	cfg *config.DomainConfig
	ids valueobjects.IDGenerator
}

// NewTemplateInstantiator creates an instantiator; a nil config uses the defaults
func NewTemplateInstantiator(cfg *config.DomainConfig, ids valueobjects.IDGenerator) *TemplateInstantiator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &TemplateInstantiator{cfg: cfg, ids: ids}
}

// InstantiatedTemplate is the flat result of expanding every level of a template
type InstantiatedTemplate struct {
	Nodes []entities.TaskNode
	Edges []entities.TaskEdge
}

// Instantiate expands template under parentID. Top-level tasks are placed at
// anchor + relativePosition - recenter offset; nested tasks keep their
// relative position inside their own parent's canvas.
//
// Ids share one batch token and carry the task's index path, so they are
// unique across all levels of one call. Edges whose indices fall outside
// their level are skipped.
func (ti *TemplateInstantiator) Instantiate(template entities.TaskTemplate, parentID *string, anchor valueobjects.Position, now time.Time) (InstantiatedTemplate, error) {
	b := &templateBuild{
		ti:    ti,
		token: ti.ids.NewBatchToken(),
		now:   now,
	}
	offset := valueobjects.Position{
		X: anchor.X - ti.cfg.TemplateRecenterX,
		Y: anchor.Y - ti.cfg.TemplateRecenterY,
	}
	if err := b.level(template.Tasks, template.Edges, parentID, offset, "", 0); err != nil {
		return InstantiatedTemplate{}, err
	}
	return InstantiatedTemplate{Nodes: b.nodes, Edges: b.edges}, nil
}

type templateBuild struct {
	ti    *TemplateInstantiator
	token string
	now   time.Time
	nodes []entities.TaskNode
	edges []entities.TaskEdge
}

func (b *templateBuild) level(tasks []entities.TemplateTask, edges []entities.TemplateEdge, parentID *string, offset valueobjects.Position, path string, depth int) error {
	if depth >= b.ti.cfg.MaxTemplateDepth {
		return pkgerrors.NewValidationError(fmt.Sprintf("template nesting exceeds %d levels", b.ti.cfg.MaxTemplateDepth))
	}

	levelIDs := make([]string, len(tasks))
	for i, task := range tasks {
		taskPath := path + strconv.Itoa(i)
		id := "task-" + b.token + "-" + taskPath
		levelIDs[i] = id

		position := task.RelativePosition.Translate(offset.X, offset.Y)
		b.nodes = append(b.nodes, entities.NewTaskNode(id, task.Title, task.Memo, parentID, position, b.now))

		if len(task.Children) > 0 {
			if err := b.level(task.Children, task.Edges, entities.ScopeOf(id), valueobjects.Position{}, taskPath+"-", depth+1); err != nil {
				return err
			}
		}
	}

	for i, e := range edges {
		if e.SourceIndex < 0 || e.SourceIndex >= len(levelIDs) || e.TargetIndex < 0 || e.TargetIndex >= len(levelIDs) {
			continue
		}
		id := "edge-" + b.token + "-" + path + strconv.Itoa(i)
		b.edges = append(b.edges, entities.NewTaskEdge(id, levelIDs[e.SourceIndex], levelIDs[e.TargetIndex], parentID))
	}
	return nil
}
