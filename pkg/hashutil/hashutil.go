package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// shortDigestLen is the number of hex characters kept by ShortDigest
const shortDigestLen = 12

// Digest returns the hex encoded BLAKE3-256 hash of data.
func Digest(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortDigest returns a truncated Digest suitable for log lines and
// inline reports.
func ShortDigest(data []byte) string {
	return Digest(data)[:shortDigestLen]
}
