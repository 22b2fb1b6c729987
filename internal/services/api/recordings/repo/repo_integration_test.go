//go:build integration_pg
// +build integration_pg

package repo_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"callrec/internal/core/cursor"
	"callrec/internal/platform/store"
	recrepo "callrec/internal/services/api/recordings/repo"
	persistdomain "callrec/internal/services/persist/domain"
	persistrepo "callrec/internal/services/persist/repo"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

const ddl = `
create table if not exists call_recordings (
  hash            text        not null,
  epoch_ts        bigint      not null,
  call_id         text        not null,
  s3_input_uri    text        not null,
  s3_output_uri   text,
  invocation_arn  text,
  status          text        not null,
  call_summary    text,
  call_categories text[],
  topics          text[],
  transcript      text,
  audio_summary   text,
  topic_summary   text,
  created_at      timestamptz not null,
  updated_at      timestamptz not null,
  primary key (hash, epoch_ts)
)
`

func openStore(t *testing.T, dsn string) *store.Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	t.Cleanup(cancel)

	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, ddl); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return st
}

func seed(t *testing.T, st *store.Store, hash, callID string, n int) {
	t.Helper()
	pr := persistrepo.NewPG().Bind(st.PG)
	now := time.Now().UTC()
	summary := "summary"
	for i := 0; i < n; i++ {
		rec := persistdomain.Record{
			Hash:       hash,
			EpochTS:    int64(1_000_000 + i),
			CallID:     callID,
			S3InputURI: "s3://in/" + callID,
			Status:     "SUCCESS",
			Analytics: persistdomain.Analytics{
				CallSummary: &summary,
				Topics:      []string{"billing", "refund"},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := pr.Insert(context.Background(), rec); err != nil {
			t.Fatalf("seed insert %d: %v", i, err)
		}
	}
}

func TestRepoIntegrationKeyedPagingRoundTrip(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()
	st := openStore(t, dsn)

	seed(t, st, "hash-a", "call-a", 25)
	seed(t, st, "hash-b", "call-b", 3)

	rr := recrepo.NewPG().Bind(st.PG)
	ctx := context.Background()

	const pageSize = 10
	var (
		after *cursor.Marker
		seen  = map[int64]bool{}
		pages int
	)
	for {
		rows, err := rr.ByHash(ctx, "hash-a", after, pageSize+1)
		if err != nil {
			t.Fatalf("ByHash page %d: %v", pages, err)
		}
		hasMore := len(rows) > pageSize
		if hasMore {
			rows = rows[:pageSize]
		}
		for i, r := range rows {
			if r.Hash != "hash-a" {
				t.Fatalf("foreign row leaked: %+v", r)
			}
			if seen[r.EpochTS] {
				t.Fatalf("duplicate row across pages: %d", r.EpochTS)
			}
			seen[r.EpochTS] = true
			if i > 0 && rows[i-1].EpochTS <= r.EpochTS {
				t.Fatalf("keyed page not descending: %d then %d", rows[i-1].EpochTS, r.EpochTS)
			}
			if r.CallSummary == nil || *r.CallSummary != "summary" {
				t.Fatalf("call summary round trip: %v", r.CallSummary)
			}
			if len(r.Topics) != 2 {
				t.Fatalf("topics round trip: %v", r.Topics)
			}
			if r.Transcript != nil {
				t.Fatalf("absent field came back non nil: %v", *r.Transcript)
			}
		}
		pages++
		if !hasMore {
			break
		}
		last := rows[len(rows)-1]
		after = &cursor.Marker{Hash: last.Hash, EpochTimestamp: last.EpochTS, Scope: "hash-a"}
	}

	if len(seen) != 25 {
		t.Fatalf("paged %d distinct rows, want 25", len(seen))
	}
	if pages != 3 {
		t.Fatalf("paged in %d pages, want 3", pages)
	}
}

func TestRepoIntegrationRecentScanCoversAllRows(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()
	st := openStore(t, dsn)

	seed(t, st, "hash-a", "call-a", 7)
	seed(t, st, "hash-b", "call-b", 6)

	rr := recrepo.NewPG().Bind(st.PG)
	ctx := context.Background()

	const pageSize = 5
	var (
		after *cursor.Marker
		seen  = map[string]bool{}
	)
	for {
		rows, err := rr.Recent(ctx, after, pageSize+1)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		hasMore := len(rows) > pageSize
		if hasMore {
			rows = rows[:pageSize]
		}
		for _, r := range rows {
			key := fmt.Sprintf("%s/%d", r.Hash, r.EpochTS)
			if seen[key] {
				t.Fatalf("duplicate row across pages: %s", key)
			}
			seen[key] = true
		}
		if !hasMore {
			break
		}
		last := rows[len(rows)-1]
		after = &cursor.Marker{Hash: last.Hash, EpochTimestamp: last.EpochTS, Scope: cursor.ScopeRecent}
	}

	if len(seen) != 13 {
		t.Fatalf("scanned %d distinct rows, want 13", len(seen))
	}
}

func TestRepoIntegrationUpsertIsIdempotent(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()
	st := openStore(t, dsn)

	pr := persistrepo.NewPG().Bind(st.PG)
	now := time.Now().UTC()
	rec := persistdomain.Record{
		Hash:       "hash-x",
		EpochTS:    42,
		CallID:     "call-x",
		S3InputURI: "s3://in/call-x",
		Status:     "SUCCESS",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i := 0; i < 2; i++ {
		if err := pr.Insert(context.Background(), rec); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	rr := recrepo.NewPG().Bind(st.PG)
	rows, err := rr.ByHash(context.Background(), "hash-x", nil, 10)
	if err != nil {
		t.Fatalf("ByHash: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("duplicate key write produced %d rows, want 1", len(rows))
	}
}
