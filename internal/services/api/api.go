// Package api assembles the HTTP retrieval surface
package api

import (
	"time"

	"callrec/internal/modkit"
	"callrec/internal/modkit/swaggerkit"
	"callrec/internal/platform/config"
	"callrec/internal/platform/logger"
	phttp "callrec/internal/platform/net/http"
	"callrec/internal/platform/net/middleware"
	"callrec/internal/platform/store"

	recmod "callrec/internal/services/api/recordings/module"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	Logger        *logger.Logger
	EnableSwagger bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// common middleware stack; CORS answers preflights and stamps every response
	r.Use(
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Heartbeat("/health"),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 2 * time.Second}),
		middleware.StripSlashes(),
		middleware.Timeout(30*time.Second),
	)

	swaggerkit.Mount(r, opt.EnableSwagger)

	mods := []modkit.Module{
		recmod.New(deps),
	}
	for _, m := range mods {
		m.MountRoutes(r)
	}
}
