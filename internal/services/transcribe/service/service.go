// Package service contains the submission workflow for inbound notifications
package service

import (
	"context"

	"callrec/internal/core/envelope"
	perr "callrec/internal/platform/errors"
	"callrec/internal/platform/logger"
	"callrec/internal/services/transcribe/domain"

	"github.com/google/uuid"
)

// Service defines the transcribe service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the transcribe service
type Svc struct {
	engine domain.JobEngine
	out    domain.OutputLocation
	token  func() string
}

// New constructs a transcribe service
func New(engine domain.JobEngine, out domain.OutputLocation) *Svc {
	if engine == nil {
		panic("transcribe.Service requires a non nil JobEngine")
	}
	if out.Bucket == "" || out.Prefix == "" {
		panic("transcribe.Service requires an output bucket and prefix")
	}
	return &Svc{engine: engine, out: out, token: uuid.NewString}
}

// HandleMessage validates one delivered notification and submits its job
// any failure propagates so the transport redelivers the message
func (s *Svc) HandleMessage(ctx context.Context, body []byte) error {
	n, err := envelope.ParseNotification(body)
	if err != nil {
		return err
	}
	ctx = logger.WithCall(ctx, n.CallID)

	// a fresh token per delivery: a redelivered message submits a new job
	// instead of colliding with a half-failed earlier attempt
	req := domain.JobRequest{
		ClientToken: s.token(),
		InputS3URI:  n.AudioS3URI,
		OutputS3URI: s.out.URIFor(n.CallID),
	}

	ref, err := s.engine.Submit(ctx, req)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUpstream, "submit analysis job")
	}

	logger.C(ctx).Info().
		Str("invocation_arn", ref.InvocationARN).
		Str("output_uri", req.OutputS3URI).
		Msg("analysis job submitted")
	return nil
}
