// Package cursor encodes the record store resume marker as an opaque
// pagination token. Tokens are base64 over the marker's JSON form; clients
// must treat them as opaque and replay them unchanged.
//
// A token is only valid for the query shape that minted it. The marker
// carries the scope of that shape (the queried hash for keyed queries, a
// sentinel for unscoped listings) and Decode requires an exact match, so a
// keyed descending token can never be replayed as an unscoped ascending
// position or vice versa.
package cursor

import (
	"encoding/base64"
	"encoding/json"

	perr "callrec/internal/platform/errors"
)

// ScopeRecent is the scope of tokens minted by unscoped recent listings
// it can never collide with a keyed scope, which is always a hex hash
const ScopeRecent = "recent"

// Marker is the resume position inside the record store
type Marker struct {
	Hash           string `json:"hash"`
	EpochTimestamp int64  `json:"epochTimestamp"`
	Scope          string `json:"scope"`
}

// Encode mints the opaque token for a marker
func Encode(m Marker) string {
	b, _ := json.Marshal(m)
	return base64.StdEncoding.EncodeToString(b)
}

// Decode opens a client-presented token and validates it against the query
// shape replaying it. scope is the queried hash for keyed queries and
// ScopeRecent for unscoped listings. Any defect in the token, including a
// scope minted by a different query shape, rejects it
func Decode(token, scope string) (Marker, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Marker{}, perr.Wrap(err, perr.ErrorCodeCursor, "pagination token is not valid base64")
	}
	var m Marker
	if err := json.Unmarshal(raw, &m); err != nil {
		return Marker{}, perr.Wrap(err, perr.ErrorCodeCursor, "pagination token is not a valid marker")
	}
	if m.Hash == "" || m.EpochTimestamp <= 0 || m.Scope == "" {
		return Marker{}, perr.Cursorf("pagination token is missing its resume position")
	}
	if m.Scope != scope {
		return Marker{}, perr.Cursorf("pagination token was issued for a different query")
	}
	return m, nil
}
