package models

import (
	"time"
)

// Spec represents an uploaded OpenAPI document.
type Spec struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Version        string    `json:"version"`
	Description    string    `json:"description"`
	OpenAPI        string    `json:"openapi"`           // Value of the openapi field
	Content        string    `json:"content,omitempty"` // Raw document (YAML or JSON)
	OperationCount int       `json:"operationCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SpecInput represents input for creating a spec.
type SpecInput struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// SpecUpdate represents input for updating a spec.
type SpecUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
}
