package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/prasenjit/oas-minify/internal/models"
)

// MemoryStorage implements Storage interface with in-memory storage.
type MemoryStorage struct {
	mu    sync.RWMutex
	specs map[string]*models.Spec
	runs  map[string]*models.Run
}

// NewMemoryStorage creates a new in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		specs: make(map[string]*models.Spec),
		runs:  make(map[string]*models.Run),
	}
}

// CreateSpec creates a new spec.
func (m *MemoryStorage) CreateSpec(spec *models.Spec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.specs[spec.ID]; exists {
		return fmt.Errorf("spec with ID %s already exists", spec.ID)
	}

	m.specs[spec.ID] = spec
	return nil
}

// GetSpec retrieves a spec by ID.
func (m *MemoryStorage) GetSpec(id string) (*models.Spec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	spec, exists := m.specs[id]
	if !exists {
		return nil, fmt.Errorf("spec %w: %s", ErrNotFound, id)
	}

	return spec, nil
}

// GetAllSpecs retrieves all specs.
func (m *MemoryStorage) GetAllSpecs() ([]*models.Spec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	specs := make([]*models.Spec, 0, len(m.specs))
	for _, spec := range m.specs {
		specs = append(specs, spec)
	}

	// Sort by name
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Name < specs[j].Name
	})

	return specs, nil
}

// UpdateSpec updates a spec.
func (m *MemoryStorage) UpdateSpec(spec *models.Spec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.specs[spec.ID]; !exists {
		return fmt.Errorf("spec %w: %s", ErrNotFound, spec.ID)
	}

	m.specs[spec.ID] = spec
	return nil
}

// DeleteSpec deletes a spec.
func (m *MemoryStorage) DeleteSpec(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.specs[id]; !exists {
		return fmt.Errorf("spec %w: %s", ErrNotFound, id)
	}

	delete(m.specs, id)
	return nil
}

// CreateRun records a run.
func (m *MemoryStorage) CreateRun(run *models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("run with ID %s already exists", run.ID)
	}

	m.runs[run.ID] = run
	return nil
}

// GetRun retrieves a run by ID.
func (m *MemoryStorage) GetRun(id string) (*models.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[id]
	if !exists {
		return nil, fmt.Errorf("run %w: %s", ErrNotFound, id)
	}

	return run, nil
}

// GetRuns retrieves runs matching filter, newest first.
func (m *MemoryStorage) GetRuns(filter models.RunFilter) ([]*models.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*models.Run, 0)
	for _, run := range m.runs {
		if filter.SpecID != "" && run.SpecID != filter.SpecID {
			continue
		}
		if filter.Success != nil && run.Success != *filter.Success {
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(runs) {
			return []*models.Run{}, nil
		}
		runs = runs[filter.Offset:]
	}
	if filter.Limit > 0 && len(runs) > filter.Limit {
		runs = runs[:filter.Limit]
	}

	return runs, nil
}

// GetRunsBySpec retrieves all runs of a spec, newest first.
func (m *MemoryStorage) GetRunsBySpec(specID string) ([]*models.Run, error) {
	return m.GetRuns(models.RunFilter{SpecID: specID})
}

// DeleteRunsBySpec deletes all runs of a spec.
func (m *MemoryStorage) DeleteRunsBySpec(specID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, run := range m.runs {
		if run.SpecID == specID {
			delete(m.runs, id)
		}
	}

	return nil
}

// Close is a no-op for memory storage.
func (m *MemoryStorage) Close() error {
	return nil
}
