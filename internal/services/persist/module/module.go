// Package module wires the persistence stage
package module

import (
	"context"

	"callrec/internal/modkit"
	"callrec/internal/platform/config"
	"callrec/internal/services/persist/domain"
	"callrec/internal/services/persist/repo"
	persvc "callrec/internal/services/persist/service"
)

// Options carry the collaborators and settings the stage needs
type Options struct {
	Blobs       domain.BlobStore
	InputBucket string
}

// FromConfig builds Options from the S3_* scope; the blob store is injected separately
func FromConfig(cfg config.Conf) Options {
	return Options{InputBucket: cfg.Prefix("S3_").MustString("INPUT_BUCKET")}
}

// Module implements the persist worker module
type Module struct {
	name string
	svc  persvc.Service
}

// New constructs the persist module
// the columnar event sink is attached only when deps carry a clickhouse seam
func New(deps modkit.Deps, opt Options) *Module {
	var sink domain.EventSink
	if deps.CH != nil {
		sink = repo.NewCHEvents(deps.CH)
	}
	svc := persvc.New(deps.PG, repo.NewPG(), opt.Blobs, sink, persvc.Config{
		InputBucket: opt.InputBucket,
	})
	return &Module{name: "persist", svc: svc}
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Handler returns the queue runner callback
func (m *Module) Handler() func(ctx context.Context, body []byte) error {
	return m.svc.HandleMessage
}
