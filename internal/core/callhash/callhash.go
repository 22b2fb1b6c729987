// Package callhash derives the correlation key used to partition call records.
//
// The key is the lowercase hex MD5 digest of the business identifier. MD5 is
// used as a stable content address, not for security; the same call id must
// always land on the same storage partition.
package callhash

import (
	"crypto/md5" //nolint:gosec // content addressing, not auth
	"encoding/hex"
)

// Sum returns the correlation key for a business identifier
func Sum(callID string) string {
	d := md5.Sum([]byte(callID)) //nolint:gosec
	return hex.EncodeToString(d[:])
}
