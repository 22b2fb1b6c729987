// Package modkit provides module wiring and core deps
package modkit

import (
	"net/http"

	"callrec/internal/modkit/repokit"
	"callrec/internal/platform/config"
	"callrec/internal/platform/logger"
	phttp "callrec/internal/platform/net/http"
	"callrec/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// Module is the common surface for API modules that can mount routes
// keep this tiny so modules stay decoupled
type Module interface {
	// MountRoutes mounts HTTP routes under the provided router seam
	MountRoutes(r phttp.Router)

	// Name returns the module name
	Name() string
}

// Option mutates build configuration for a module
type Option func(*Built)

// Built is the resolved option set handed back to module constructors
type Built struct {
	Name      string
	Prefix    string
	Mw        []func(http.Handler) http.Handler
	SwaggerOn bool
	Register  func(phttp.Router)
}

// Build resolves options into a Built
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}

// WithName sets a module name used in logs
func WithName(name string) Option {
	return func(c *Built) { c.Name = name }
}

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option {
	return func(c *Built) { c.Prefix = prefix }
}

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *Built) { c.Mw = append(c.Mw, mw...) }
}

// WithSwagger toggles swagger UI for this module when mounted
func WithSwagger(enabled bool) Option {
	return func(c *Built) { c.SwaggerOn = enabled }
}

// WithRegister sets an extra function that attaches endpoints to the module router
func WithRegister(fn func(phttp.Router)) Option {
	return func(c *Built) { c.Register = fn }
}
