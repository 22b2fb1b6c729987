// Package module wires the transcription submission stage
package module

import (
	"context"

	"callrec/internal/modkit"
	"callrec/internal/platform/config"
	"callrec/internal/services/transcribe/domain"
	transvc "callrec/internal/services/transcribe/service"
)

// Options carry the collaborators and settings the stage needs
type Options struct {
	Engine       domain.JobEngine
	OutputBucket string
	OutputPrefix string
}

// FromConfig builds Options from the S3_* scope; the engine is injected separately
func FromConfig(cfg config.Conf) Options {
	s3Cfg := cfg.Prefix("S3_")
	return Options{
		OutputBucket: s3Cfg.MustString("OUTPUT_BUCKET"),
		OutputPrefix: s3Cfg.MayString("OUTPUT_PREFIX", "transcription-outputs"),
	}
}

// Module implements the transcribe worker module
type Module struct {
	name string
	svc  transvc.Service
}

// New constructs the transcribe module
func New(_ modkit.Deps, opt Options) *Module {
	svc := transvc.New(opt.Engine, domain.OutputLocation{
		Bucket: opt.OutputBucket,
		Prefix: opt.OutputPrefix,
	})
	return &Module{name: "transcribe", svc: svc}
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Handler returns the queue runner callback
func (m *Module) Handler() func(ctx context.Context, body []byte) error {
	return m.svc.HandleMessage
}
