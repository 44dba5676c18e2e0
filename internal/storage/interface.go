package storage

import (
	"errors"

	"github.com/prasenjit/oas-minify/internal/models"
)

// ErrNotFound is wrapped by lookups of missing records.
var ErrNotFound = errors.New("not found")

// Storage defines the interface for data persistence.
type Storage interface {
	// Spec operations
	CreateSpec(spec *models.Spec) error
	GetSpec(id string) (*models.Spec, error)
	GetAllSpecs() ([]*models.Spec, error)
	UpdateSpec(spec *models.Spec) error
	DeleteSpec(id string) error

	// Run operations
	CreateRun(run *models.Run) error
	GetRun(id string) (*models.Run, error)
	GetRuns(filter models.RunFilter) ([]*models.Run, error)
	GetRunsBySpec(specID string) ([]*models.Run, error)
	DeleteRunsBySpec(specID string) error

	// Utility
	Close() error
}
