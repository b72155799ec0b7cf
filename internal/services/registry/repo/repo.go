// Package repo provides the model registry repository implementation
package repo

import (
	"context"

	"vibecheck/internal/modkit/repokit"
	"vibecheck/internal/services/registry/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the registry repository
type Storage interface {
	Active(ctx context.Context) (*domain.ModelVersion, error)
	List(ctx context.Context) ([]domain.ModelVersion, error)
	Deactivate(ctx context.Context) error
	Activate(ctx context.Context, version, note string) error
	Get(ctx context.Context, version string) (*domain.ModelVersion, error)
}

const versionCols = `version, note, active, created_at, activated_at`

// Active implements Storage
func (s *pg) Active(ctx context.Context) (*domain.ModelVersion, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+versionCols+`
		FROM model_versions
		WHERE active
		LIMIT 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return one(rows)
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, version string) (*domain.ModelVersion, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+versionCols+`
		FROM model_versions
		WHERE version = $1`,
		version,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return one(rows)
}

// List implements Storage
func (s *pg) List(ctx context.Context) ([]domain.ModelVersion, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+versionCols+`
		FROM model_versions
		ORDER BY created_at DESC, version DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ModelVersion
	for rows.Next() {
		var mv domain.ModelVersion
		if err := rows.Scan(&mv.Version, &mv.Note, &mv.Active, &mv.CreatedAt, &mv.ActivatedAt); err != nil {
			return nil, err
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}

// Deactivate implements Storage
func (s *pg) Deactivate(ctx context.Context) error {
	_, err := s.q.Exec(ctx, `UPDATE model_versions SET active = false WHERE active`)
	return err
}

// Activate implements Storage
// Registers the version on first sight; re-activations keep the original note
// unless a new one is supplied
func (s *pg) Activate(ctx context.Context, version, note string) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO model_versions (version, note, active, created_at, activated_at)
		VALUES ($1, $2, true, now(), now())
		ON CONFLICT (version) DO UPDATE
		SET active = true,
			activated_at = now(),
			note = COALESCE(NULLIF(EXCLUDED.note, ''), model_versions.note)`,
		version, note,
	)
	return err
}

func one(rows repokit.Rows) (*domain.ModelVersion, error) {
	if !rows.Next() {
		return nil, rows.Err()
	}
	var mv domain.ModelVersion
	if err := rows.Scan(&mv.Version, &mv.Note, &mv.Active, &mv.CreatedAt, &mv.ActivatedAt); err != nil {
		return nil, err
	}
	return &mv, rows.Err()
}
