// Package module wires stats into the API using modkit
package module

import (
	"net/http"

	"vibecheck/internal/core/lexicon"
	modkit "vibecheck/internal/modkit"
	"vibecheck/internal/modkit/httpkit"
	str "vibecheck/internal/platform/strings"
	statshttp "vibecheck/internal/services/api/stats/http"
	statsrepo "vibecheck/internal/services/api/stats/repo"
	statssvc "vibecheck/internal/services/api/stats/service"
	"vibecheck/internal/serving/engine"
)

// Module implements the stats module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc statssvc.Service
}

// Ports declares the injected collaborators for this API module
type Ports struct {
	Engine *engine.Engine
	Pack   *lexicon.Pack
}

// New constructs the stats module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("stats"), modkit.WithPrefix("/stats")}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Engine == nil {
		panic("stats API module requires the scoring engine port")
	}
	if injected.Pack == nil {
		panic("stats API module requires the lexicon pack port")
	}

	var st statsrepo.Storage
	if deps.CH != nil {
		st = statsrepo.NewCH(deps.CH)
	}
	svc := statssvc.New(st, injected.Engine, injected.Pack)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptStatsPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		statshttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
