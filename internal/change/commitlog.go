package change

import "time"

// CommitLogEntry is one record parsed from the adapter's custom git log
// format: hash, parents, author/committer identity and date, an optional
// signing key id, and the dedented commit message body.
type CommitLogEntry struct {
	Hash           string
	Parents        []string
	Author         string
	AuthorDate     time.Time
	Committer      string
	CommitterDate  time.Time
	SignedByKeyID  string // empty means unsigned
	Message        string
}
