// Package repo provides postgres access for recordings retrieval
package repo

import (
	"context"
	"time"

	"callrec/internal/core/cursor"
	"callrec/internal/modkit/repokit"
	perr "callrec/internal/platform/errors"
)

// Row is one stored analytics row as read from postgres
type Row struct {
	Hash          string
	EpochTS       int64
	CallID        string
	S3InputURI    string
	S3OutputURI   *string
	InvocationARN *string
	Status        string
	CallSummary   *string
	Categories    []string
	Topics        []string
	Transcript    *string
	AudioSummary  *string
	TopicSummary  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Repo is the minimal read surface for retrieval
// callers pass limit = pageSize+1 to detect continuation
type Repo interface {
	// ByHash returns rows for one hash, most recent first
	// a non nil after resumes strictly below the marker's timestamp
	ByHash(ctx context.Context, hash string, after *cursor.Marker, limit int) ([]Row, error)

	// Recent returns rows in store-native (hash, epoch_ts) keyset order
	// page-to-page stability across concurrent writes is not guaranteed
	Recent(ctx context.Context, after *cursor.Marker, limit int) ([]Row, error)
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

const selectCols = `
select hash, epoch_ts, call_id, s3_input_uri, s3_output_uri, invocation_arn, status,
       call_summary, call_categories, topics, transcript, audio_summary, topic_summary,
       created_at, updated_at
from call_recordings
`

func (r *queries) ByHash(ctx context.Context, hash string, after *cursor.Marker, limit int) ([]Row, error) {
	const sql = selectCols + `
where hash = $1
and ($2::bigint = 0 or epoch_ts < $2)
order by epoch_ts desc
limit $3
`
	var before int64
	if after != nil {
		before = after.EpochTimestamp
	}
	rows, err := r.q.Query(ctx, sql, hash, before, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "query recordings by hash")
	}
	return collect(rows)
}

func (r *queries) Recent(ctx context.Context, after *cursor.Marker, limit int) ([]Row, error) {
	const sql = selectCols + `
where ($1::text = '' or (hash, epoch_ts) > ($1, $2))
order by hash asc, epoch_ts asc
limit $3
`
	var afterHash string
	var afterTS int64
	if after != nil {
		afterHash, afterTS = after.Hash, after.EpochTimestamp
	}
	rows, err := r.q.Query(ctx, sql, afterHash, afterTS, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan recordings")
	}
	return collect(rows)
}

func collect(rows repokit.Rows) ([]Row, error) {
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var rr Row
		if err := rows.Scan(
			&rr.Hash, &rr.EpochTS, &rr.CallID, &rr.S3InputURI, &rr.S3OutputURI,
			&rr.InvocationARN, &rr.Status,
			&rr.CallSummary, &rr.Categories, &rr.Topics,
			&rr.Transcript, &rr.AudioSummary, &rr.TopicSummary,
			&rr.CreatedAt, &rr.UpdatedAt,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan recording row")
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "iterate recording rows")
	}
	return out, nil
}
