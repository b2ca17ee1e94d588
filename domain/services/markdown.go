package services

import (
	"regexp"
	"strings"

	"github.com/makkenno/ittasu/domain/config"
	"github.com/makkenno/ittasu/domain/core/entities"
)

// lineHeader matches a run of '#' at the start of the memo or right after a newline
var lineHeader = regexp.MustCompile(`(?m)^#+`)

// MarkdownGenerator renders nested task trees to markdown
type MarkdownGenerator struct {
	cfg *config.DomainConfig
}

// NewMarkdownGenerator creates a generator; a nil config uses the defaults
func NewMarkdownGenerator(cfg *config.DomainConfig) *MarkdownGenerator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &MarkdownGenerator{cfg: cfg}
}

// GenerateMarkdown renders with the default configuration
func GenerateMarkdown(nodes []entities.TaskNode, edges []entities.TaskEdge, taskID *string) string {
	return NewMarkdownGenerator(nil).Generate(nodes, edges, taskID)
}

// Generate renders the subtree of taskID starting at heading level 1, or every
// root subtree in dependency order when taskID is nil. An unknown taskID
// renders as an empty string.
func (g *MarkdownGenerator) Generate(nodes []entities.TaskNode, edges []entities.TaskEdge, taskID *string) string {
	h := newHierarchy(nodes)

	if taskID == nil {
		roots := SortByDependencies(h.roots, edges, nil)
		blocks := make([]string, 0, len(roots))
		for _, root := range roots {
			blocks = append(blocks, g.renderTask(root, h, edges, 1, NewIDSet()))
		}
		return strings.Join(blocks, "\n")
	}

	task, ok := h.node(*taskID)
	if !ok {
		return ""
	}
	return g.renderTask(task, h, edges, 1, NewIDSet())
}

func (g *MarkdownGenerator) renderTask(task entities.TaskNode, h *hierarchy, edges []entities.TaskEdge, level int, path IDSet) string {
	displayLevel := g.cfg.HeadingLevel(level)

	lines := []string{strings.Repeat("#", displayLevel) + " " + task.Title, ""}
	if task.Memo != "" {
		lines = append(lines, g.ShiftHeaders(task.Memo, displayLevel), "")
	}

	// a parent cycle would otherwise recurse forever
	path.Add(task.ID)
	defer delete(path, task.ID)

	children := SortByDependencies(h.children[task.ID], edges, entities.ScopeOf(task.ID))
	for _, child := range children {
		if path.Has(child.ID) {
			continue
		}
		lines = append(lines, g.renderTask(child, h, edges, level+1, path))
	}
	return strings.Join(lines, "\n")
}

// ShiftHeaders deepens every line-leading header of memo by shift levels,
// clamped at the maximum heading level. '#' characters in the middle of a
// line are left alone.
func (g *MarkdownGenerator) ShiftHeaders(memo string, shift int) string {
	return lineHeader.ReplaceAllStringFunc(memo, func(hashes string) string {
		n := len(hashes) + shift
		if n > g.cfg.MaxHeadingLevel {
			n = g.cfg.MaxHeadingLevel
		}
		if n < len(hashes) {
			n = len(hashes)
		}
		return strings.Repeat("#", n)
	})
}
