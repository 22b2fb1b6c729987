// Package service contains the persistence workflow for completion events
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"callrec/internal/core/callhash"
	"callrec/internal/core/envelope"
	"callrec/internal/modkit/repokit"
	perr "callrec/internal/platform/errors"
	"callrec/internal/platform/logger"
	"callrec/internal/services/persist/domain"
	"callrec/internal/services/persist/repo"
)

// statusSuccess is the only status this stage records; failed jobs never
// produce a result object, so their completions never arrive here
const statusSuccess = "SUCCESS"

// Service defines the persist service contract
type Service interface {
	domain.ServicePort
}

// Config carries the stage settings that are not collaborators
type Config struct {
	InputBucket string
}

// Svc implements the persist service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	blobs  domain.BlobStore
	sink   domain.EventSink // nil when the columnar sink is not configured
	cfg    Config
	now    func() time.Time
}

// New constructs a persist service; sink may be nil
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], blobs domain.BlobStore, sink domain.EventSink, cfg Config) *Svc {
	if db == nil {
		panic("persist.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("persist.Service requires a non nil Repo binder")
	}
	if blobs == nil {
		panic("persist.Service requires a non nil BlobStore")
	}
	if cfg.InputBucket == "" {
		panic("persist.Service requires the input bucket name")
	}
	return &Svc{
		Repo:   binder.Bind(db),
		binder: binder,
		db:     db,
		blobs:  blobs,
		sink:   sink,
		cfg:    cfg,
		now:    time.Now,
	}
}

// resultBlob is the engine's output document; analytics live under a
// fixed inference_result envelope
type resultBlob struct {
	Inference domain.Analytics `json:"inference_result"`
}

// HandleMessage persists every result object announced by one completion body
// any failure propagates so the transport redelivers the message
func (s *Svc) HandleMessage(ctx context.Context, body []byte) error {
	refs, err := envelope.ParseCompletion(body)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := s.processObject(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

func (s *Svc) processObject(ctx context.Context, ref envelope.ObjectRef) error {
	if !envelope.IsResultKey(ref.Key) {
		logger.C(ctx).Info().Str("key", ref.Key).Msg("skipping non-result object")
		return nil
	}

	callID, err := envelope.ExtractCallID(ref.Key)
	if err != nil {
		return err
	}
	ctx = logger.WithCall(ctx, callID)

	raw, err := s.blobs.Fetch(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUpstream, "fetch result blob")
	}
	if len(raw) == 0 {
		return perr.Upstreamf("empty result blob s3://%s/%s", ref.Bucket, ref.Key)
	}

	var out resultBlob
	if err := json.Unmarshal(raw, &out); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "parse result blob")
	}

	now := s.now().UTC()
	outputURI := fmt.Sprintf("s3://%s/%s/", ref.Bucket, callID)
	rec := domain.Record{
		Hash:        callhash.Sum(callID),
		EpochTS:     now.UnixMilli(),
		CallID:      callID,
		S3InputURI:  fmt.Sprintf("s3://%s/%s", s.cfg.InputBucket, callID),
		S3OutputURI: &outputURI,
		// the originating invocation is not part of the completion event;
		// the field stays absent rather than fabricated
		InvocationARN: nil,
		Status:        statusSuccess,
		Analytics:     out.Inference,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Repo.Insert(ctx, rec); err != nil {
		return err
	}
	s.emit(ctx, rec)

	logger.C(ctx).Info().
		Str("hash", rec.Hash).
		Int64("epoch_ts", rec.EpochTS).
		Msg("persisted call recording analytics")
	return nil
}

// emit is best-effort; a sink failure is logged and never fails the message
func (s *Svc) emit(ctx context.Context, rec domain.Record) {
	if s.sink == nil {
		return
	}
	ev := domain.PipelineEvent{
		Stage:      "persist",
		CallID:     rec.CallID,
		Hash:       rec.Hash,
		Status:     rec.Status,
		Detail:     derefOr(rec.S3OutputURI, ""),
		OccurredAt: rec.CreatedAt,
	}
	if err := s.sink.Emit(ctx, ev); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("pipeline event emit failed")
	}
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
