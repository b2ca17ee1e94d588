package events

import "time"

// DomainEvent is the base interface for all domain events.
// Events describe a change that has already been applied to a workspace.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields. AggregateID is the workspace id.
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(workspaceID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: workspaceID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}
