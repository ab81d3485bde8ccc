package git

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// CacheKey builds a content-addressed key for the adapter's in-process
// result cache out of an operation name and its arguments, the way the
// wider toolchain hashes ref listings with blake3 to detect repo state
// changes cheaply.
func CacheKey(op string, args ...string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(op))
	for _, a := range args {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(a))
	}
	return hex.EncodeToString(h.Sum(nil))
}
