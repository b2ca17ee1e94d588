package templates

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/makkenno/ittasu/domain/core/entities"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
	"github.com/makkenno/ittasu/pkg/utils"
)

//go:embed defaults.yaml
var defaultTemplates []byte

type catalogFile struct {
	Templates []entities.TaskTemplate `yaml:"templates" validate:"required,min=1,dive"`
}

// Catalog serves a fixed list of built-in templates
type Catalog struct {
	templates []entities.TaskTemplate
	byID      map[string]int
}

// LoadCatalog reads templates from path, or the embedded defaults when path is empty
func LoadCatalog(path string, logger *zap.Logger) (*Catalog, error) {
	data := defaultTemplates
	source := "embedded"
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read templates file: %w", err)
		}
		source = path
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}

	logger.Info("Template catalog loaded",
		zap.String("source", source),
		zap.Int("count", len(catalog.templates)),
	)
	return catalog, nil
}

// ParseCatalog decodes and validates a YAML template document
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid templates document: %v", err))
	}
	if err := utils.ValidateStruct(file); err != nil {
		return nil, err
	}

	c := &Catalog{
		templates: file.Templates,
		byID:      make(map[string]int, len(file.Templates)),
	}
	for i, tpl := range file.Templates {
		if _, dup := c.byID[tpl.ID]; dup {
			return nil, pkgerrors.NewFieldValidationError(fmt.Sprintf("templates[%d].id", i), "unique",
				fmt.Sprintf("duplicate template id %q", tpl.ID))
		}
		if err := checkEdges(fmt.Sprintf("templates[%d]", i), tpl.Tasks, tpl.Edges); err != nil {
			return nil, err
		}
		c.byID[tpl.ID] = i
	}
	return c, nil
}

// checkEdges verifies that every edge of a level indexes into that level
func checkEdges(path string, tasks []entities.TemplateTask, edges []entities.TemplateEdge) error {
	for i, e := range edges {
		if e.SourceIndex >= len(tasks) || e.TargetIndex >= len(tasks) {
			return pkgerrors.NewFieldValidationError(fmt.Sprintf("%s.edges[%d]", path, i), "index",
				fmt.Sprintf("edge references a task outside 0..%d", len(tasks)-1))
		}
	}
	for i, task := range tasks {
		if err := checkEdges(fmt.Sprintf("%s.tasks[%d]", path, i), task.Children, task.Edges); err != nil {
			return err
		}
	}
	return nil
}

// List returns the templates in file order
func (c *Catalog) List(ctx context.Context) ([]entities.TaskTemplate, error) {
	out := make([]entities.TaskTemplate, len(c.templates))
	copy(out, c.templates)
	return out, nil
}

// Get returns one template by id
func (c *Catalog) Get(ctx context.Context, id string) (entities.TaskTemplate, error) {
	i, ok := c.byID[id]
	if !ok {
		return entities.TaskTemplate{}, pkgerrors.NewNotFoundError(fmt.Sprintf("template %s", id))
	}
	return c.templates[i], nil
}
