package service_test

import (
	"context"
	"testing"
	"time"

	"callrec/internal/core/callhash"
	"callrec/internal/core/cursor"
	"callrec/internal/modkit/repokit"
	perr "callrec/internal/platform/errors"
	"callrec/internal/services/api/recordings/domain"
	"callrec/internal/services/api/recordings/repo"
	recsvc "callrec/internal/services/api/recordings/service"
)

type stubDB struct{}

func (stubDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (stubDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (stubDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (s stubDB) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error { return fn(s) }

type fakeRepo struct {
	rows []repo.Row
	err  error

	lastHash  string
	lastAfter *cursor.Marker
	lastLimit int
	recent    bool
}

func (f *fakeRepo) ByHash(_ context.Context, hash string, after *cursor.Marker, limit int) ([]repo.Row, error) {
	f.lastHash, f.lastAfter, f.lastLimit, f.recent = hash, after, limit, false
	return f.page(after, limit)
}

func (f *fakeRepo) Recent(_ context.Context, after *cursor.Marker, limit int) ([]repo.Row, error) {
	f.lastAfter, f.lastLimit, f.recent = after, limit, true
	return f.page(after, limit)
}

func (f *fakeRepo) page(after *cursor.Marker, limit int) ([]repo.Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows := f.rows
	if after != nil {
		for i, r := range rows {
			if r.EpochTS < after.EpochTimestamp {
				rows = rows[i:]
				break
			}
		}
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func newSvc(r *fakeRepo, cfg recsvc.Config) *recsvc.Svc {
	binder := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return r })
	return recsvc.New(stubDB{}, binder, cfg)
}

func makeRows(hash string, n int) []repo.Row {
	now := time.Now()
	rows := make([]repo.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, repo.Row{
			Hash:       hash,
			EpochTS:    int64(1000 - i), // descending like the keyed query
			CallID:     "call-42",
			S3InputURI: "s3://in/call-42",
			Status:     "SUCCESS",
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return rows
}

func TestRetrievePageSizeClamping(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"missing uses default", "", 20},
		{"non-numeric uses default", "abc", 20},
		{"zero uses default", "0", 20},
		{"negative uses default", "-5", 20},
		{"valid passes through", "7", 7},
		{"over max clamps", "500", 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &fakeRepo{rows: makeRows("h", 3)}
			svc := newSvc(r, recsvc.Config{DefaultPageSize: 20, MaxPageSize: 100})

			page, err := svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: "h", PageSize: tc.raw})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.PageSize != tc.want {
				t.Fatalf("page size = %d, want %d", page.PageSize, tc.want)
			}
			if r.lastLimit != tc.want+1 {
				t.Fatalf("repo limit = %d, want %d", r.lastLimit, tc.want+1)
			}
		})
	}
}

func TestRetrieveHashWinsOverCallID(t *testing.T) {
	r := &fakeRepo{rows: makeRows("explicit", 1)}
	svc := newSvc(r, recsvc.Config{})

	_, err := svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: "explicit", CallID: "call-42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.lastHash != "explicit" {
		t.Fatalf("queried hash = %q, want explicit", r.lastHash)
	}
}

func TestRetrieveCallIDIsHashed(t *testing.T) {
	want := callhash.Sum("call-42")
	r := &fakeRepo{rows: makeRows(want, 1)}
	svc := newSvc(r, recsvc.Config{})

	_, err := svc.Retrieve(context.Background(), domain.RetrieveInput{CallID: "call-42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.lastHash != want {
		t.Fatalf("queried hash = %q, want %q", r.lastHash, want)
	}
}

func TestRetrieveNoTargetListsRecent(t *testing.T) {
	r := &fakeRepo{}
	svc := newSvc(r, recsvc.Config{})

	page, err := svc.Retrieve(context.Background(), domain.RetrieveInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.recent {
		t.Fatal("unscoped input did not hit the recent listing")
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("empty listing should be an empty page, got %v", page.Items)
	}
	if page.HasMore || page.NextToken != "" {
		t.Fatalf("empty listing claims continuation: %+v", page)
	}
}

func TestRetrieveContinuation(t *testing.T) {
	r := &fakeRepo{rows: makeRows("h", 5)}
	svc := newSvc(r, recsvc.Config{DefaultPageSize: 2})

	page, err := svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: "h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 2 || !page.HasMore || page.NextToken == "" {
		t.Fatalf("first page = %+v", page)
	}

	m, err := cursor.Decode(page.NextToken, "h")
	if err != nil {
		t.Fatalf("minted token does not decode: %v", err)
	}
	if m.EpochTimestamp != page.Items[len(page.Items)-1].EpochTimestamp {
		t.Fatalf("marker = %+v, last item ts = %d", m, page.Items[len(page.Items)-1].EpochTimestamp)
	}

	// replaying the token resumes below the marker
	page2, err := svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: "h", NextToken: page.NextToken})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if r.lastAfter == nil || r.lastAfter.EpochTimestamp != m.EpochTimestamp {
		t.Fatalf("repo after = %+v, want %+v", r.lastAfter, m)
	}
	if page2.Items[0].EpochTimestamp >= m.EpochTimestamp {
		t.Fatalf("second page did not advance: %+v", page2.Items[0])
	}
}

func TestRetrieveLastPageHasNoToken(t *testing.T) {
	r := &fakeRepo{rows: makeRows("h", 2)}
	svc := newSvc(r, recsvc.Config{DefaultPageSize: 5})

	page, err := svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: "h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.HasMore || page.NextToken != "" {
		t.Fatalf("exhausted page claims continuation: %+v", page)
	}
	if len(page.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(page.Items))
	}
}

func TestRetrieveKeyedMissIsNotFound(t *testing.T) {
	svc := newSvc(&fakeRepo{}, recsvc.Config{})

	_, err := svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: "missing"})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if perr.FieldOf(err) != "missing" {
		t.Fatalf("searched hash not carried on error: %q", perr.FieldOf(err))
	}
}

func TestRetrieveRejectsBadCursor(t *testing.T) {
	svc := newSvc(&fakeRepo{rows: makeRows("h", 1)}, recsvc.Config{})

	_, err := svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: "h", NextToken: "@@garbage@@"})
	if !perr.IsCode(err, perr.ErrorCodeCursor) {
		t.Fatalf("expected cursor error, got %v", err)
	}
}

func TestRetrieveRejectsForeignCursor(t *testing.T) {
	svc := newSvc(&fakeRepo{rows: makeRows("h", 1)}, recsvc.Config{})

	foreign := cursor.Encode(cursor.Marker{Hash: "other", EpochTimestamp: 500, Scope: "other"})
	_, err := svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: "h", NextToken: foreign})
	if !perr.IsCode(err, perr.ErrorCodeCursor) {
		t.Fatalf("expected cursor error, got %v", err)
	}
}

func TestRetrieveRejectsCrossShapeCursor(t *testing.T) {
	const h = "b6cd068155e7fdb2a63ed27b3184fcc6"
	r := &fakeRepo{rows: makeRows(h, 5)}
	svc := newSvc(r, recsvc.Config{DefaultPageSize: 2})

	// mint a token from a keyed query and replay it on the unscoped listing
	keyed, err := svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: h})
	if err != nil {
		t.Fatalf("keyed page: %v", err)
	}
	if keyed.NextToken == "" {
		t.Fatal("keyed page minted no token")
	}
	_, err = svc.Retrieve(context.Background(), domain.RetrieveInput{NextToken: keyed.NextToken})
	if !perr.IsCode(err, perr.ErrorCodeCursor) {
		t.Fatalf("keyed token accepted by unscoped listing: %v", err)
	}

	// mint a token from the unscoped listing and replay it on a keyed query
	// for the very hash the marker sits on
	recent, err := svc.Retrieve(context.Background(), domain.RetrieveInput{})
	if err != nil {
		t.Fatalf("recent page: %v", err)
	}
	if recent.NextToken == "" {
		t.Fatal("recent page minted no token")
	}
	_, err = svc.Retrieve(context.Background(), domain.RetrieveInput{Hash: h, NextToken: recent.NextToken})
	if !perr.IsCode(err, perr.ErrorCodeCursor) {
		t.Fatalf("unscoped token accepted by keyed query: %v", err)
	}
}
