package git

import "strings"

var notFoundPrefixes = []string{
	"fatal: ambiguous argument",
	"fatal: unable to read",
	"fatal: bad object",
	"fatal: bad revision",
	"fatal: Path '",
	"fatal: path '",
}

// ErrorIsNotFound classifies git's stderr text as a "does not exist"
// failure rather than an I/O or transient error.
func ErrorIsNotFound(message string) bool {
	for _, s := range notFoundPrefixes {
		if strings.HasPrefix(message, s) {
			return true
		}
	}
	return false
}
