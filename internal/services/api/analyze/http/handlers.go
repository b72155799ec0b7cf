// Package http provides http transport for analyze
package http

import (
	stdhttp "net/http"

	"vibecheck/internal/modkit/httpkit"
	"vibecheck/internal/services/api/analyze/domain"
	svc "vibecheck/internal/services/api/analyze/service"
)

// Register mounts analyze endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// score one text
	httpkit.PostJSON[domain.AnalyzeInput](r, "/", h.analyze)

	// score up to 64 texts, order preserving
	httpkit.PostJSON[domain.BatchInput](r, "/batch", h.analyzeBatch)
}

type handlers struct{ svc svc.Service }

// @Summary Score one text
// @Tags Analyze
// @Accept json
// @Produce json
// @Param payload body domain.AnalyzeInput true "Text to score"
// @Success 200 {object} domain.AnalyzeRow "ok"
// @Router /analyze [post]
func (h *handlers) analyze(r *stdhttp.Request, in domain.AnalyzeInput) (any, error) {
	return h.svc.Analyze(r.Context(), in)
}

// @Summary Score a batch of texts
// @Tags Analyze
// @Accept json
// @Produce json
// @Param payload body domain.BatchInput true "Texts to score"
// @Success 200 {object} domain.BatchOutput "ok"
// @Router /analyze/batch [post]
func (h *handlers) analyzeBatch(r *stdhttp.Request, in domain.BatchInput) (any, error) {
	return h.svc.AnalyzeBatch(r.Context(), in)
}
