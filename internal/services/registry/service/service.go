// Package service contains model registry workflows
package service

import (
	"context"

	"vibecheck/internal/modkit/repokit"
	perr "vibecheck/internal/platform/errors"
	"vibecheck/internal/services/registry/domain"
	"vibecheck/internal/services/registry/repo"
)

// Service defines the registry service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the registry service
type Svc struct {
	Repo   repo.Storage
	binder repokit.Binder[repo.Storage]
	db     repokit.TxRunner
}

// New constructs a registry service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Svc {
	if db == nil {
		panic("registry.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("registry.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db}
}

// Active returns the currently active model version
func (s *Svc) Active(ctx context.Context) (*domain.ModelVersion, error) {
	mv, err := s.Repo.Active(ctx)
	if err != nil {
		return nil, err
	}
	if mv == nil {
		return nil, perr.NotFoundf("no active model version")
	}
	return mv, nil
}

// List returns known versions, newest first
func (s *Svc) List(ctx context.Context) ([]domain.ModelVersion, error) {
	return s.Repo.List(ctx)
}

// Rollover activates in.Version inside one transaction so there is never
// more than one active row
func (s *Svc) Rollover(ctx context.Context, in domain.RolloverInput) (*domain.ModelVersion, error) {
	if in.Version == "" {
		return nil, perr.InvalidArgf("version is required")
	}

	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		if err := r.Deactivate(ctx); err != nil {
			return err
		}
		return r.Activate(ctx, in.Version, in.Note)
	})
	if err != nil {
		return nil, err
	}

	mv, err := s.Repo.Get(ctx, in.Version)
	if err != nil {
		return nil, err
	}
	if mv == nil {
		return nil, perr.Internalf("rollover committed but version %q not found", in.Version)
	}
	return mv, nil
}
