// Package domain holds the analyze DTOs and ports
package domain

import (
	"time"

	"vibecheck/internal/serving"
)

// AnalyzeInput is one text to score
type AnalyzeInput struct {
	Text       string `json:"text" validate:"required,max=10000"`
	Lang       string `json:"lang" validate:"omitempty,min=2,max=35"`
	DeadlineMS int    `json:"deadline_ms,omitempty" validate:"omitempty,min=1,max=30000"`
}

// BatchInput scores up to 64 texts in one call; DeadlineMS bounds the
// whole batch
type BatchInput struct {
	Items      []AnalyzeInput `json:"items" validate:"required,min=1,max=64,dive"`
	DeadlineMS int            `json:"deadline_ms,omitempty" validate:"omitempty,min=1,max=30000"`
}

// AnalyzeRow is the scored outcome of one text
type AnalyzeRow struct {
	Label        serving.Label             `json:"label"`
	Confidence   float64                   `json:"confidence"`
	Scores       map[serving.Label]float64 `json:"scores"`
	Language     string                    `json:"language,omitempty"`
	ModelVersion string                    `json:"model_version"`
	ComputedAt   time.Time                 `json:"computed_at"`
}

// BatchRow is one item of a batch response; exactly one of Result
// and Error is set
type BatchRow struct {
	Result *AnalyzeRow `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// BatchOutput preserves input order
type BatchOutput struct {
	Items []BatchRow `json:"items"`
	Count int        `json:"count"`
}
