// Package http provides http transport for stats
package http

import (
	stdhttp "net/http"

	"vibecheck/internal/modkit/httpkit"
	"vibecheck/internal/services/api/stats/domain"
	svc "vibecheck/internal/services/api/stats/service"
)

// Register mounts stats endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// buckets by label and day
	httpkit.PostJSON[domain.WindowInput](r, "/label", h.byLabel)

	// buckets by language and day
	httpkit.PostJSON[domain.WindowInput](r, "/lang", h.byLang)

	// point-in-time core counters
	httpkit.Get(r, "/live", h.live)

	// lexicon languages and emitted labels
	httpkit.Get(r, "/languages", h.languages)
	httpkit.Get(r, "/labels", h.labels)
}

type handlers struct{ svc svc.Service }

// @Summary Scored traffic by label and day
// @Tags Stats
// @Accept json
// @Produce json
// @Param payload body domain.WindowInput true "Window"
// @Success 200 {array} domain.ByLabelRow "ok"
// @Router /stats/label [post]
func (h *handlers) byLabel(r *stdhttp.Request, in domain.WindowInput) (any, error) {
	return h.svc.ByLabel(r.Context(), in)
}

// @Summary Scored traffic by language and day
// @Tags Stats
// @Accept json
// @Produce json
// @Param payload body domain.WindowInput true "Window"
// @Success 200 {array} domain.ByLangRow "ok"
// @Router /stats/lang [post]
func (h *handlers) byLang(r *stdhttp.Request, in domain.WindowInput) (any, error) {
	return h.svc.ByLang(r.Context(), in)
}

// @Summary Live scoring core counters
// @Tags Stats
// @Produce json
// @Success 200 {object} domain.LiveRow "ok"
// @Router /stats/live [get]
func (h *handlers) live(r *stdhttp.Request) (any, error) {
	return h.svc.Live(r.Context())
}

// @Summary Lexicon language codes
// @Tags Stats
// @Produce json
// @Success 200 {array} string "ok"
// @Router /stats/languages [get]
func (h *handlers) languages(r *stdhttp.Request) (any, error) {
	return h.svc.Languages(r.Context())
}

// @Summary Sentiment labels
// @Tags Stats
// @Produce json
// @Success 200 {array} string "ok"
// @Router /stats/labels [get]
func (h *handlers) labels(r *stdhttp.Request) (any, error) {
	return h.svc.Labels(r.Context())
}
