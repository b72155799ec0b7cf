package domain

import "context"

// ServicePort is the analyze surface the API mounts
type ServicePort interface {
	Analyze(ctx context.Context, in AnalyzeInput) (AnalyzeRow, error)
	AnalyzeBatch(ctx context.Context, in BatchInput) (BatchOutput, error)
}
