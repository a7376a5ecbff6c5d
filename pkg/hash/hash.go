package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// LocalPrefix marks content ids minted by the local fallback store, as
// opposed to IPFS CIDs returned by the pinning service.
const LocalPrefix = "local-"

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ContentID derives a content-addressed identifier for raw bytes stored
// in the local fallback store.
func ContentID(data []byte) string {
	h := sha256.Sum256(data)
	return LocalPrefix + hex.EncodeToString(h[:])
}

// IsLocalContentID reports whether the hash was minted by ContentID.
func IsLocalContentID(hash string) bool {
	return strings.HasPrefix(hash, LocalPrefix)
}

// ShortHex returns the first n characters of SHA256(input), for log
// correlation without writing raw identifiers.
func ShortHex(input string, n int) string {
	full := SHA256Hex(input)
	if n > len(full) {
		return full
	}
	return full[:n]
}
