package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/makkenno/ittasu/application/ports"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/events"
)

type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Load(ctx context.Context, id string) (ports.WorkspaceRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.WorkspaceRecord), args.Error(1)
}

func (m *MockWorkspaceRepository) Save(ctx context.Context, record ports.WorkspaceRecord, expectedVersion int) error {
	args := m.Called(ctx, record, expectedVersion)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTemplateCatalog struct {
	mock.Mock
}

func (m *MockTemplateCatalog) List(ctx context.Context) ([]entities.TaskTemplate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.TaskTemplate), args.Error(1)
}

func (m *MockTemplateCatalog) Get(ctx context.Context, id string) (entities.TaskTemplate, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(entities.TaskTemplate), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	args := m.Called(ctx, domainEvents)
	return args.Error(0)
}

// recordingMetrics keeps counter totals by name
type recordingMetrics struct {
	mu       sync.Mutex
	counters map[string]float64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counters: make(map[string]float64)}
}

func (r *recordingMetrics) IncrementCounterBy(name string, value float64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name] += value
}

func (r *recordingMetrics) ObserveDuration(string, time.Duration, map[string]string) {}

func (r *recordingMetrics) counter(name string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name]
}
