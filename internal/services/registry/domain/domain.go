// Package domain holds the model registry types and ports
package domain

import (
	"context"
	"time"
)

// ModelVersion is one lexicon release known to the registry
type ModelVersion struct {
	Version     string     `json:"version"`
	Note        string     `json:"note,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
}

// RolloverInput describes a version activation request
type RolloverInput struct {
	Version string `json:"version" validate:"required,min=1,max=128"`
	Note    string `json:"note" validate:"max=512"`
}

// ServicePort is the registry surface the API mounts
type ServicePort interface {
	// Active returns the currently active version, if any
	Active(ctx context.Context) (*ModelVersion, error)

	// List returns known versions, newest first
	List(ctx context.Context) ([]ModelVersion, error)

	// Rollover activates the given version, registering it on first sight,
	// and deactivates whatever was active before
	Rollover(ctx context.Context, in RolloverInput) (*ModelVersion, error)
}
