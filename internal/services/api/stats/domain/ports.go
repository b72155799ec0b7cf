package domain

import "context"

// ServicePort is the stats surface the API mounts
type ServicePort interface {
	// ByLabel buckets scored traffic by day and sentiment label
	ByLabel(ctx context.Context, in WindowInput) ([]ByLabelRow, error)

	// ByLang buckets scored traffic by day and language
	ByLang(ctx context.Context, in WindowInput) ([]ByLangRow, error)

	// Live snapshots the scoring core counters
	Live(ctx context.Context) (LiveRow, error)

	// Languages lists the language codes the lexicon knows
	Languages(ctx context.Context) ([]string, error)

	// Labels lists the sentiment labels the core emits
	Labels(ctx context.Context) ([]string, error)
}
