package repo

import (
	"context"

	perr "callrec/internal/platform/errors"
	"callrec/internal/platform/store"
	"callrec/internal/services/persist/domain"
)

// CHEvents writes pipeline events to the columnar sink
type CHEvents struct{ ch store.Clickhouse }

// NewCHEvents wraps a clickhouse seam as an EventSink
func NewCHEvents(ch store.Clickhouse) *CHEvents {
	if ch == nil {
		panic("repo.NewCHEvents requires a non nil clickhouse seam")
	}
	return &CHEvents{ch: ch}
}

// Emit appends one event row
func (e *CHEvents) Emit(ctx context.Context, ev domain.PipelineEvent) error {
	const sql = `
insert into call_pipeline_events (stage, call_id, hash, status, detail, occurred_at)
values (?, ?, ?, ?, ?, ?)
`
	err := e.ch.Exec(ctx, sql, ev.Stage, ev.CallID, ev.Hash, ev.Status, ev.Detail, ev.OccurredAt)
	return perr.WrapIf(err, perr.ErrorCodeDB, "emit pipeline event")
}
