package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prasenjit/oas-minify/internal/models"
)

const (
	specsDir = "specs"
	runsDir  = "runs"
)

// FileStorage implements Storage interface with file-based persistence.
// Every record is one JSON file; reads are served from memory.
type FileStorage struct {
	mu       sync.Mutex
	basePath string
	memory   *MemoryStorage
}

// NewFileStorage creates a new file-based storage.
func NewFileStorage(basePath string) (*FileStorage, error) {
	for _, dir := range []string{basePath, filepath.Join(basePath, specsDir), filepath.Join(basePath, runsDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fs := &FileStorage{
		basePath: basePath,
		memory:   NewMemoryStorage(),
	}

	if err := loadDir(filepath.Join(basePath, specsDir), func(spec *models.Spec) {
		fs.memory.specs[spec.ID] = spec
	}); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(basePath, runsDir), func(run *models.Run) {
		fs.memory.runs[run.ID] = run
	}); err != nil {
		return nil, err
	}

	return fs, nil
}

// loadDir decodes every JSON file of dir. Unreadable files are skipped.
func loadDir[T any](dir string, add func(*T)) error {
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			continue
		}
		add(&v)
	}

	return nil
}

func (f *FileStorage) save(dir, id string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(f.basePath, dir, id+".json"), data, 0644)
}

func (f *FileStorage) remove(dir, id string) error {
	err := os.Remove(filepath.Join(f.basePath, dir, id+".json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// CreateSpec creates a new spec.
func (f *FileStorage) CreateSpec(spec *models.Spec) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.CreateSpec(spec); err != nil {
		return err
	}

	return f.save(specsDir, spec.ID, spec)
}

// GetSpec retrieves a spec by ID.
func (f *FileStorage) GetSpec(id string) (*models.Spec, error) {
	return f.memory.GetSpec(id)
}

// GetAllSpecs retrieves all specs.
func (f *FileStorage) GetAllSpecs() ([]*models.Spec, error) {
	return f.memory.GetAllSpecs()
}

// UpdateSpec updates a spec.
func (f *FileStorage) UpdateSpec(spec *models.Spec) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.UpdateSpec(spec); err != nil {
		return err
	}

	return f.save(specsDir, spec.ID, spec)
}

// DeleteSpec deletes a spec.
func (f *FileStorage) DeleteSpec(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.DeleteSpec(id); err != nil {
		return err
	}

	return f.remove(specsDir, id)
}

// CreateRun records a run.
func (f *FileStorage) CreateRun(run *models.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.CreateRun(run); err != nil {
		return err
	}

	return f.save(runsDir, run.ID, run)
}

// GetRun retrieves a run by ID.
func (f *FileStorage) GetRun(id string) (*models.Run, error) {
	return f.memory.GetRun(id)
}

// GetRuns retrieves runs matching filter, newest first.
func (f *FileStorage) GetRuns(filter models.RunFilter) ([]*models.Run, error) {
	return f.memory.GetRuns(filter)
}

// GetRunsBySpec retrieves all runs of a spec, newest first.
func (f *FileStorage) GetRunsBySpec(specID string) ([]*models.Run, error) {
	return f.memory.GetRunsBySpec(specID)
}

// DeleteRunsBySpec deletes all runs of a spec.
func (f *FileStorage) DeleteRunsBySpec(specID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	runs, err := f.memory.GetRunsBySpec(specID)
	if err != nil {
		return err
	}
	if err := f.memory.DeleteRunsBySpec(specID); err != nil {
		return err
	}

	for _, run := range runs {
		if err := f.remove(runsDir, run.ID); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the storage.
func (f *FileStorage) Close() error {
	return nil
}

// New opens the storage backend named by typ.
func New(typ, path string) (Storage, error) {
	switch typ {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "file":
		return NewFileStorage(path)
	}
	return nil, fmt.Errorf("unknown storage type %q", typ)
}
