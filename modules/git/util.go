package git

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrBlankRevision = errors.New("empty revision")
	ErrBadRevision   = errors.New("revision can't start with '-'")
)

// ValidateRevision checks that a commit-ish/ref-ish string is safe to pass
// as a git subprocess argument: non-empty and not flag-shaped.
func ValidateRevision(revision string) error {
	if len(revision) == 0 {
		return ErrBlankRevision
	}
	if strings.HasPrefix(revision, "-") {
		return ErrBadRevision
	}
	return nil
}

// FallbackTimeValue is returned by ParseTimeFallback when a commit date
// can't be parsed. It's the maximum time value representable in Go.
// See https://gitlab.com/gitlab-org/gitaly/issues/556#note_40289573
var FallbackTimeValue = time.Unix(1<<63-62135596801, 999999999).UTC()

// ParseTimeFallback parses a git %aI/%cI-style ISO 8601 date string,
// normalising to UTC. On failure it returns FallbackTimeValue rather than
// an error, mirroring git log's own tolerance of odd author dates.
func ParseTimeFallback(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return FallbackTimeValue
}
