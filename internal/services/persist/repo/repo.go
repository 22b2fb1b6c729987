// Package repo provides postgres access for persisted call records
package repo

import (
	"context"

	"callrec/internal/modkit/repokit"
	perr "callrec/internal/platform/errors"
	"callrec/internal/services/persist/domain"
)

// Repo is the minimal persistence surface for the stage
type Repo interface {
	Insert(ctx context.Context, rec domain.Record) error
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Insert(ctx context.Context, rec domain.Record) error {
	// timestamp-at-write keying makes concurrent duplicate deliveries land on
	// distinct keys; a same-millisecond duplicate of the same call is the same
	// logical write, so the conflict path just refreshes it
	const sql = `
insert into call_recordings (
  hash, epoch_ts, call_id, s3_input_uri, s3_output_uri, invocation_arn, status,
  call_summary, call_categories, topics, transcript, audio_summary, topic_summary,
  created_at, updated_at
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
on conflict (hash, epoch_ts) do update set
  s3_output_uri   = excluded.s3_output_uri,
  status          = excluded.status,
  call_summary    = excluded.call_summary,
  call_categories = excluded.call_categories,
  topics          = excluded.topics,
  transcript      = excluded.transcript,
  audio_summary   = excluded.audio_summary,
  topic_summary   = excluded.topic_summary,
  updated_at      = excluded.updated_at
`
	_, err := r.q.Exec(ctx, sql,
		rec.Hash, rec.EpochTS, rec.CallID, rec.S3InputURI, rec.S3OutputURI,
		rec.InvocationARN, rec.Status,
		rec.CallSummary, rec.Categories, rec.Topics,
		rec.Transcript, rec.AudioSummary, rec.TopicSummary,
		rec.CreatedAt, rec.UpdatedAt,
	)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert call recording")
}
