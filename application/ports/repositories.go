package ports

import (
	"context"
	"time"

	"github.com/makkenno/ittasu/domain/core/aggregates"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/events"
)

// WorkspaceRecord is the persisted form of a workspace
type WorkspaceRecord struct {
	ID        string              `json:"id" dynamodbav:"id"`
	Snapshot  aggregates.Snapshot `json:"snapshot" dynamodbav:"snapshot"`
	Version   int                 `json:"version" dynamodbav:"version"`
	UpdatedAt time.Time           `json:"updatedAt" dynamodbav:"updatedAt"`
}

// WorkspaceRepository defines the interface for workspace persistence.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation.
type WorkspaceRepository interface {
	// Load retrieves a workspace; a NotFound AppError means it was never saved
	Load(ctx context.Context, id string) (WorkspaceRecord, error)

	// Save stores record if the stored version still equals expectedVersion
	// (0 for a workspace that was never saved). A mismatch is a Conflict AppError.
	Save(ctx context.Context, record WorkspaceRecord, expectedVersion int) error

	// Delete removes a workspace
	Delete(ctx context.Context, id string) error
}

// TemplateCatalog provides the built-in templates offered to every workspace
type TemplateCatalog interface {
	// List returns the templates in catalog order
	List(ctx context.Context) ([]entities.TaskTemplate, error)

	// Get returns one template; a NotFound AppError if it does not exist
	Get(ctx context.Context, id string) (entities.TaskTemplate, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Metrics records application measurements
type Metrics interface {
	IncrementCounterBy(name string, value float64, tags map[string]string)
	ObserveDuration(name string, d time.Duration, tags map[string]string)
}
