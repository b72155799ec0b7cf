// Package domain holds the stats DTOs and ports
package domain

import "time"

// WindowInput selects a day window ending now
type WindowInput struct {
	Days int `json:"days" validate:"omitempty,min=1,max=90"`
}

// SinceOrDefault resolves the window start, defaulting to 7 days
func (w WindowInput) SinceOrDefault(now time.Time) time.Time {
	days := w.Days
	if days <= 0 {
		days = 7
	}
	return now.UTC().AddDate(0, 0, -days)
}

// ByLabelRow is one day/label bucket of scored traffic
type ByLabelRow struct {
	Day           time.Time `json:"day"`
	Label         string    `json:"label"`
	Requests      uint64    `json:"requests"`
	AvgConfidence float64   `json:"avg_confidence"`
}

// ByLangRow is one day/language bucket of scored traffic
type ByLangRow struct {
	Day      time.Time `json:"day"`
	Lang     string    `json:"lang"`
	Requests uint64    `json:"requests"`
	CacheHit float64   `json:"cache_hit_ratio"`
}

// LiveRow is a point-in-time snapshot of the scoring core
type LiveRow struct {
	Queued       int    `json:"queued"`
	InFlight     int    `json:"in_flight"`
	CacheEntries int    `json:"cache_entries"`
	CacheCost    int64  `json:"cache_cost"`
	ModelVersion string `json:"model_version"`
}
