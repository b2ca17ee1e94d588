package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/makkenno/ittasu/application/ports"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// WorkspaceRepository keeps workspace records in process memory
type WorkspaceRepository struct {
	mu      sync.RWMutex
	records map[string]ports.WorkspaceRecord
}

// NewWorkspaceRepository creates an empty in-memory repository
func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{
		records: make(map[string]ports.WorkspaceRecord),
	}
}

// Load retrieves a copy of a stored record
func (r *WorkspaceRepository) Load(ctx context.Context, id string) (ports.WorkspaceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return ports.WorkspaceRecord{}, pkgerrors.NewNotFoundError(fmt.Sprintf("workspace %s", id))
	}

	record.Snapshot = record.Snapshot.Clone()
	return record, nil
}

// Save stores a copy of record when the stored version matches expectedVersion
func (r *WorkspaceRepository) Save(ctx context.Context, record ports.WorkspaceRecord, expectedVersion int) error {
	if record.ID == "" {
		return pkgerrors.NewValidationError("workspace id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := 0
	if stored, exists := r.records[record.ID]; exists {
		current = stored.Version
	}
	if current != expectedVersion {
		return pkgerrors.NewVersionConflictError("workspace "+record.ID, expectedVersion).WithDetail("current", current)
	}

	record.Snapshot = record.Snapshot.Clone()
	r.records[record.ID] = record
	return nil
}

// Delete removes a record; deleting an unknown id is not an error
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}

// Count returns the number of stored workspaces
func (r *WorkspaceRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
