// Package service contains the retrieval workflow and pagination protocol
package service

import (
	"context"
	"strconv"
	"time"

	"callrec/internal/core/callhash"
	"callrec/internal/core/cursor"
	"callrec/internal/modkit/repokit"
	perr "callrec/internal/platform/errors"
	"callrec/internal/services/api/recordings/domain"
	"callrec/internal/services/api/recordings/repo"
)

// Service defines the recordings service contract
type Service interface {
	domain.ServicePort
}

// Config carries the pagination bounds
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Svc implements the recordings service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	cfg    Config
}

// New constructs a recordings service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], cfg Config) *Svc {
	if db == nil {
		panic("recordings.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("recordings.Service requires a non nil Repo binder")
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, cfg: cfg}
}

// Retrieve resolves the query target, opens the cursor, and returns one page
// explicit hash wins over callId; neither means an unscoped recent listing
func (s *Svc) Retrieve(ctx context.Context, in domain.RetrieveInput) (domain.Page, error) {
	hash := in.Hash
	if hash == "" && in.CallID != "" {
		hash = callhash.Sum(in.CallID)
	}
	size := s.clampPageSize(in.PageSize)

	// the scope binds a token to the query shape that minted it; keyed and
	// unscoped tokens are never interchangeable
	scope := hash
	if scope == "" {
		scope = cursor.ScopeRecent
	}

	var after *cursor.Marker
	if in.NextToken != "" {
		m, err := cursor.Decode(in.NextToken, scope)
		if err != nil {
			return domain.Page{}, err
		}
		after = &m
	}

	if hash == "" {
		return s.listRecent(ctx, size, after)
	}
	return s.byHash(ctx, hash, size, after)
}

func (s *Svc) byHash(ctx context.Context, hash string, size int, after *cursor.Marker) (domain.Page, error) {
	rows, err := s.Repo.ByHash(ctx, hash, after, size+1)
	if err != nil {
		return domain.Page{}, err
	}
	if len(rows) == 0 {
		// the searched hash rides on the error's field so transport can echo it
		return domain.Page{}, perr.WithField(
			perr.NotFoundf("no call recording analytics found for the given hash"),
			hash,
		)
	}
	return buildPage(rows, size, hash, "Call recording analytics retrieved successfully"), nil
}

func (s *Svc) listRecent(ctx context.Context, size int, after *cursor.Marker) (domain.Page, error) {
	rows, err := s.Repo.Recent(ctx, after, size+1)
	if err != nil {
		return domain.Page{}, err
	}
	// an empty unscoped listing is a valid empty page, not a miss
	return buildPage(rows, size, cursor.ScopeRecent, "Recent call recordings retrieved successfully"), nil
}

// clampPageSize applies the default for missing or unusable input and the
// configured ceiling for valid input
func (s *Svc) clampPageSize(raw string) int {
	if raw == "" {
		return s.cfg.DefaultPageSize
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return s.cfg.DefaultPageSize
	}
	if v > s.cfg.MaxPageSize {
		return s.cfg.MaxPageSize
	}
	return v
}

// buildPage trims the extra row and mints the continuation token under the
// minting query's scope; fetching size+1 rows is what makes hasMore and the
// marker trustworthy
func buildPage(rows []repo.Row, size int, scope, message string) domain.Page {
	hasMore := len(rows) > size
	if hasMore {
		rows = rows[:size]
	}

	items := make([]domain.Record, 0, len(rows))
	for _, r := range rows {
		items = append(items, toWire(r))
	}

	var token string
	if hasMore {
		last := rows[len(rows)-1]
		token = cursor.Encode(cursor.Marker{Hash: last.Hash, EpochTimestamp: last.EpochTS, Scope: scope})
	}

	return domain.Page{
		Message:   message,
		Items:     items,
		PageSize:  size,
		NextToken: token,
		HasMore:   hasMore,
	}
}

func toWire(r repo.Row) domain.Record {
	return domain.Record{
		Hash:           r.Hash,
		EpochTimestamp: r.EpochTS,
		CallID:         r.CallID,
		S3InputURI:     r.S3InputURI,
		S3OutputURI:    r.S3OutputURI,
		InvocationARN:  r.InvocationARN,
		Status:         r.Status,
		CallSummary:    r.CallSummary,
		CallCategories: r.Categories,
		Topics:         r.Topics,
		Transcript:     r.Transcript,
		AudioSummary:   r.AudioSummary,
		TopicSummary:   r.TopicSummary,
		CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:      r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
