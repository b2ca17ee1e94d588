package aggregates

import (
	"sync"

	"github.com/makkenno/ittasu/domain/config"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	"github.com/makkenno/ittasu/domain/events"
	"github.com/makkenno/ittasu/domain/services"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// Snapshot is the complete state of a workspace at one version. Slices held
// by a committed snapshot are never modified in place; mutators build new
// slices and replace the whole snapshot.
type Snapshot struct {
	Nodes          []entities.TaskNode     `json:"nodes" dynamodbav:"nodes"`
	Edges          []entities.TaskEdge     `json:"edges" dynamodbav:"edges"`
	Templates      []entities.TaskTemplate `json:"templates" dynamodbav:"templates"`
	CurrentTaskID  *string                 `json:"currentTaskId" dynamodbav:"currentTaskId"`
	SelectedTaskID *string                 `json:"selectedTaskId" dynamodbav:"selectedTaskId"`
}

// EmptySnapshot returns a snapshot with no tasks viewed at the root scope
func EmptySnapshot() Snapshot {
	return Snapshot{
		Nodes:     []entities.TaskNode{},
		Edges:     []entities.TaskEdge{},
		Templates: []entities.TaskTemplate{},
	}
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	templates := make([]entities.TaskTemplate, len(s.Templates))
	for i, t := range s.Templates {
		templates[i] = t.Clone()
	}
	return Snapshot{
		Nodes:          entities.CloneNodes(s.Nodes),
		Edges:          entities.CloneEdges(s.Edges),
		Templates:      templates,
		CurrentTaskID:  entities.CloneScope(s.CurrentTaskID),
		SelectedTaskID: entities.CloneScope(s.SelectedTaskID),
	}
}

func (s Snapshot) nodeIndex(id string) int {
	for i, n := range s.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s Snapshot) edgeIndex(id string) int {
	for i, e := range s.Edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Workspace is the aggregate root owning one task graph together with the
// viewed scope, the selection and the user's saved templates.
//
// Every mutator reads the committed snapshot, computes a replacement and
// commits it with a single assignment while holding the write lock, so
// readers never observe a partially applied change. A failed mutator leaves
// the snapshot untouched.
type Workspace struct {
	mu sync.RWMutex

	id               string
	state            Snapshot
	version          int
	persistedVersion int
	events           []events.DomainEvent

	cfg          *config.DomainConfig
	ids          valueobjects.IDGenerator
	clock        valueobjects.Clock
	instantiator *services.TemplateInstantiator
	markdown     *services.MarkdownGenerator
}

// Option customizes a Workspace
type Option func(*Workspace)

// WithIDGenerator sets the id source for new tasks, edges and templates
func WithIDGenerator(ids valueobjects.IDGenerator) Option {
	return func(w *Workspace) { w.ids = ids }
}

// WithClock sets the time source for timestamps
func WithClock(clock valueobjects.Clock) Option {
	return func(w *Workspace) { w.clock = clock }
}

// WithDomainConfig sets the engine constants
func WithDomainConfig(cfg *config.DomainConfig) Option {
	return func(w *Workspace) { w.cfg = cfg }
}

// NewWorkspace creates an empty workspace at version 0
func NewWorkspace(id string, opts ...Option) (*Workspace, error) {
	return ReconstructWorkspace(id, EmptySnapshot(), 0, opts...)
}

// ReconstructWorkspace recreates a workspace from a stored snapshot
func ReconstructWorkspace(id string, snapshot Snapshot, version int, opts ...Option) (*Workspace, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("workspace id is required")
	}
	if version < 0 {
		return nil, pkgerrors.NewValidationError("workspace version cannot be negative")
	}

	w := &Workspace{
		id:               id,
		version:          version,
		persistedVersion: version,
		events:           []events.DomainEvent{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.cfg == nil {
		w.cfg = config.DefaultDomainConfig()
	}
	if w.ids == nil {
		w.ids = valueobjects.NewUUIDGenerator()
	}
	if w.clock == nil {
		w.clock = valueobjects.SystemClock
	}
	w.instantiator = services.NewTemplateInstantiator(w.cfg, w.ids)
	w.markdown = services.NewMarkdownGenerator(w.cfg)

	w.state = normalize(snapshot)
	return w, nil
}

func normalize(s Snapshot) Snapshot {
	if s.Nodes == nil {
		s.Nodes = []entities.TaskNode{}
	}
	if s.Edges == nil {
		s.Edges = []entities.TaskEdge{}
	}
	if s.Templates == nil {
		s.Templates = []entities.TaskTemplate{}
	}
	return s
}

// ID returns the workspace id
func (w *Workspace) ID() string {
	return w.id
}

// Version returns the number of committed changes
func (w *Workspace) Version() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// PersistedVersion returns the version last loaded from or written to storage
func (w *Workspace) PersistedVersion() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.persistedVersion
}

// MarkPersisted records that the current version has been stored
func (w *Workspace) MarkPersisted() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.persistedVersion = w.version
}

// Snapshot returns a deep copy of the current state
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.Clone()
}

// Task returns a copy of one task
func (w *Workspace) Task(id string) (entities.TaskNode, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	i := w.state.nodeIndex(id)
	if i < 0 {
		return entities.TaskNode{}, pkgerrors.NewNotFoundError("task " + id)
	}
	return w.state.Nodes[i].Clone(), nil
}

// GetUncommittedEvents returns events raised since the last MarkEventsAsCommitted
func (w *Workspace) GetUncommittedEvents() []events.DomainEvent {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]events.DomainEvent, len(w.events))
	copy(out, w.events)
	return out
}

// MarkEventsAsCommitted clears the uncommitted events
func (w *Workspace) MarkEventsAsCommitted() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = []events.DomainEvent{}
}

// commit replaces the state and records the events of one change.
// Callers must hold the write lock.
func (w *Workspace) commit(next Snapshot, evts ...events.DomainEvent) {
	w.state = next
	w.version++
	w.events = append(w.events, evts...)
}

// withPointers returns a copy of the state with navigation pointers replaced.
// Callers must hold the write lock.
func (w *Workspace) withPointers(current, selected *string) Snapshot {
	next := w.state
	next.CurrentTaskID = entities.CloneScope(current)
	next.SelectedTaskID = entities.CloneScope(selected)
	return next
}
