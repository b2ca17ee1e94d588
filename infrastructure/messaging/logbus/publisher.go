package logbus

import (
	"context"

	"go.uber.org/zap"

	"github.com/makkenno/ittasu/domain/events"
)

// Publisher writes workspace events to the structured log. It is the event
// bus for local runs where no broker is configured.
type Publisher struct {
	logger *zap.Logger
}

// NewPublisher creates a log-backed publisher
func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{logger: logger.Named("events")}
}

// Publish logs a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.logger.Info("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("workspaceID", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
		zap.Any("detail", event),
	)
	return nil
}

// PublishBatch logs events in order, stopping if ctx is cancelled
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
