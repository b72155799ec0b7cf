// Package api provides the HTTP API for the application
package api

import (
	"context"
	"strings"

	"vibecheck/internal/platform/config"
	"vibecheck/internal/platform/logger"
	phttp "vibecheck/internal/platform/net/http"
	"vibecheck/internal/platform/store"

	"vibecheck/internal/modkit"
	"vibecheck/internal/modkit/httpkit"
	"vibecheck/internal/modkit/module"
	"vibecheck/internal/modkit/swaggerkit"

	"vibecheck/internal/core/langhint"
	"vibecheck/internal/core/lexicon"
	"vibecheck/internal/core/normalize"
	"vibecheck/internal/core/scorer"

	analyzemod "vibecheck/internal/services/api/analyze/module"
	metamod "vibecheck/internal/services/api/meta/module"
	statsmod "vibecheck/internal/services/api/stats/module"
	journalrepo "vibecheck/internal/services/journal/repo"
	journalsvc "vibecheck/internal/services/journal/service"
	regdom "vibecheck/internal/services/registry/domain"
	regrepo "vibecheck/internal/services/registry/repo"
	regsvc "vibecheck/internal/services/registry/service"

	"vibecheck/internal/serving"
	"vibecheck/internal/serving/engine"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Handle owns everything Mount started, so main can drain it on shutdown
type Handle struct {
	Engine  *engine.Engine
	journal *journalsvc.Svc
}

// Close drains the scoring core, then the journal
func (h *Handle) Close(ctx context.Context) error {
	err := h.Engine.Close(ctx)
	if h.journal != nil {
		if jerr := h.journal.Close(ctx); err == nil {
			err = jerr
		}
	}
	return err
}

// textPipeline adapts normalize+langhint to the serving.Normalizer seam;
// the caller hint wins over detection when present
type textPipeline struct {
	norm *normalize.Normalizer
}

func (p textPipeline) Normalize(raw, langHint string) (string, string) {
	text := p.norm.Normalize(raw)
	lang := strings.TrimSpace(langHint)
	if lang == "" {
		lang, _ = langhint.Detect(text)
	}
	return text, lang
}

// Mount mounts the API service onto the given router and returns a Handle
// for shutdown sequencing
func Mount(r phttp.Router, opt Options) *Handle {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	pack := lexicon.MustLoad()
	norm := textPipeline{norm: normalize.New(normalize.FromConfig(deps.Cfg))}

	// journal is optional; without ClickHouse events are simply not kept
	var (
		jsvc *journalsvc.Svc
		jrnl serving.Journal
	)
	if deps.CH != nil {
		jsvc = journalsvc.New(journalrepo.NewCH(deps.CH), journalsvc.FromConfig(deps.Cfg))
		jrnl = jsvc
	}

	// registry is optional; without Postgres the model version lives in memory
	var registry regdom.ServicePort
	if deps.PG != nil {
		registry = regsvc.New(deps.PG, regrepo.NewPG())
	}

	eng := engine.New(engine.FromConfig(deps.Cfg, scorer.New(pack), norm, jrnl))

	// the registry's active version wins over the configured default
	if registry != nil {
		if mv, err := registry.Active(context.Background()); err == nil && mv != nil {
			eng.SetModelVersion(mv.Version)
		}
	}

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{
			Engine:   eng,
			Registry: registry,
		})),
		analyzemod.New(deps, modkit.WithPorts(analyzemod.Ports{
			Engine: eng,
		})),
		statsmod.New(deps, modkit.WithPorts(statsmod.Ports{
			Engine: eng,
			Pack:   pack,
		})),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	return &Handle{Engine: eng, journal: jsvc}
}
