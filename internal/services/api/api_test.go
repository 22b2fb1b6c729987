package api_test

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"callrec/internal/platform/config"
	phttp "callrec/internal/platform/net/http"
	"callrec/internal/platform/store"
	"callrec/internal/services/api"

	"github.com/go-chi/chi/v5"
)

// emptyRows is a result set with no rows
type emptyRows struct{}

func (emptyRows) Next() bool        { return false }
func (emptyRows) Scan(...any) error { return nil }
func (emptyRows) Err() error        { return nil }
func (emptyRows) Close()            {}
func (emptyRows) Columns() []string { return nil }

// emptyDB satisfies store.TxRunner and returns no data
type emptyDB struct{}

func (emptyDB) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (emptyDB) Query(context.Context, string, ...any) (store.Rows, error)      { return emptyRows{}, nil }
func (emptyDB) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (d emptyDB) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(d)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	m := chi.NewRouter()
	api.Mount(phttp.AdaptChi(m), api.Options{
		Config: config.New().Prefix("CORE_API_"),
		Store:  &store.Store{PG: emptyDB{}},
	})
	return httptest.NewServer(m)
}

func TestMountHealth(t *testing.T) {
	ts := newServer(t)
	defer ts.Close()

	resp, err := stdhttp.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}

func TestMountKeyedMissRendersNotFoundWithCORS(t *testing.T) {
	ts := newServer(t)
	defer ts.Close()

	req, _ := stdhttp.NewRequest(stdhttp.MethodGet, ts.URL+"/recordings/deadbeef", nil)
	req.Header.Set("Origin", "https://example.test")
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "No records found" || body["searchedHash"] != "deadbeef" {
		t.Fatalf("body = %v", body)
	}
}

func TestMountPreflight(t *testing.T) {
	ts := newServer(t)
	defer ts.Close()

	req, _ := stdhttp.NewRequest(stdhttp.MethodOptions, ts.URL+"/recordings", nil)
	req.Header.Set("Origin", "https://example.test")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "X-Api-Key")
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestMountBadTokenRendersBadRequest(t *testing.T) {
	ts := newServer(t)
	defer ts.Close()

	resp, err := stdhttp.Get(ts.URL + "/recordings?hash=abc&nextToken=%40%40%40")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Invalid pagination token" {
		t.Fatalf("body = %v", body)
	}
}
