// Package module wires recordings retrieval into the API using modkit
package module

import (
	stdhttp "net/http"

	"callrec/internal/modkit"
	"callrec/internal/modkit/httpkit"
	rechttp "callrec/internal/services/api/recordings/http"
	recrepo "callrec/internal/services/api/recordings/repo"
	recsvc "callrec/internal/services/api/recordings/service"
)

// Module implements the recordings module
type Module struct {
	name   string
	prefix string
	mws    []func(stdhttp.Handler) stdhttp.Handler

	svc recsvc.Service

	register func(httpkit.Router)
}

// New constructs the recordings module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("recordings"),
		modkit.WithPrefix("/recordings"),
	}, opts...)...)

	svc := recsvc.New(deps.PG, recrepo.NewPG(), recsvc.Config{
		DefaultPageSize: deps.Cfg.MayInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     deps.Cfg.MayInt("MAX_PAGE_SIZE", 100),
	})

	m := &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		rechttp.Register(r, m.svc)
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
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }
