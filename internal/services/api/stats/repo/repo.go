// Package repo provides the stats repository over ClickHouse
package repo

import (
	"context"
	"time"

	"vibecheck/internal/platform/store"
	"vibecheck/internal/services/api/stats/domain"
)

// Storage defines the stats repository
type Storage interface {
	ByLabel(ctx context.Context, since time.Time) ([]domain.ByLabelRow, error)
	ByLang(ctx context.Context, since time.Time) ([]domain.ByLangRow, error)
}

// NewCH constructs a ClickHouse backed stats repo
func NewCH(ch store.Clickhouse) Storage { return &chStore{ch: ch} }

type chStore struct{ ch store.Clickhouse }

// ByLabel implements Storage
func (s *chStore) ByLabel(ctx context.Context, since time.Time) ([]domain.ByLabelRow, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT
			toStartOfDay(at)  AS day,
			label,
			count()           AS requests,
			avg(confidence)   AS avg_confidence
		FROM scoring_events
		WHERE at >= ?
		GROUP BY day, label
		ORDER BY day ASC, label ASC`,
		since.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ByLabelRow
	for rows.Next() {
		var r domain.ByLabelRow
		if err := rows.Scan(&r.Day, &r.Label, &r.Requests, &r.AvgConfidence); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ByLang implements Storage
func (s *chStore) ByLang(ctx context.Context, since time.Time) ([]domain.ByLangRow, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT
			toStartOfDay(at)      AS day,
			lang,
			count()               AS requests,
			avg(toUInt8(cache_hit)) AS cache_hit_ratio
		FROM scoring_events
		WHERE at >= ?
		GROUP BY day, lang
		ORDER BY day ASC, lang ASC`,
		since.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ByLangRow
	for rows.Next() {
		var r domain.ByLangRow
		if err := rows.Scan(&r.Day, &r.Lang, &r.Requests, &r.CacheHit); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
