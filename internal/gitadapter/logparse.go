package gitadapter

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/antgroup/refhook/internal/change"
	"github.com/antgroup/refhook/modules/git"
)

// logFormatArg is the custom --format string the parser below is built
// against: a literal "commit" marker, hash, parent hashes (blank-line
// terminated), author identity, author date, committer identity,
// committer date, signing key (blank if unsigned), then the message body
// indented four spaces and blank-line terminated.
const logFormatArg = "--format=commit%n%H%n%P%n%n%aN <%aE>%n%aI%n%cN <%cE>%n%cI%n%GK%n%w(0,4,4)%B%n"

const messageIndent = 4

var errTruncatedLog = errors.New("git log output ended mid-record")

// parseLog consumes r and returns every well-formed record before the
// first malformed boundary; it never returns a partial/garbage entry.
func parseLog(r io.Reader) ([]change.CommitLogEntry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var entries []change.CommitLogEntry
	for sc.Scan() {
		line := sc.Text()
		if line != "commit" {
			continue
		}
		entry, err := parseOneRecord(sc)
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return entries, err
	}
	return entries, nil
}

func parseOneRecord(sc *bufio.Scanner) (change.CommitLogEntry, error) {
	var e change.CommitLogEntry

	hash, err := nextLine(sc)
	if err != nil {
		return e, err
	}
	e.Hash = hash

	e.Parents = collectUntilBlank(sc)

	authorLine, err := nextLine(sc)
	if err != nil {
		return e, err
	}
	// A root commit's %P line is empty, so the format's own blank separator
	// follows it as a second blank line; skip it to reach the identity.
	if len(e.Parents) == 0 && authorLine == "" {
		authorLine, err = nextLine(sc)
		if err != nil {
			return e, err
		}
	}
	authorSig := git.ParseSignatureLine(authorLine)
	e.Author = authorSig.String()

	authorDate, err := nextLine(sc)
	if err != nil {
		return e, err
	}
	e.AuthorDate = git.ParseTimeFallback(authorDate)

	committerLine, err := nextLine(sc)
	if err != nil {
		return e, err
	}
	committerSig := git.ParseSignatureLine(committerLine)
	e.Committer = committerSig.String()

	committerDate, err := nextLine(sc)
	if err != nil {
		return e, err
	}
	e.CommitterDate = git.ParseTimeFallback(committerDate)

	signedBy, err := nextLine(sc)
	if err != nil {
		return e, err
	}
	e.SignedByKeyID = signedBy

	e.Message = parseIndentedBody(sc)

	return e, nil
}

func nextLine(sc *bufio.Scanner) (string, error) {
	if !sc.Scan() {
		return "", errTruncatedLog
	}
	return sc.Text(), nil
}

func collectUntilBlank(sc *bufio.Scanner) []string {
	var out []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		// %P puts every parent of a merge on one space-separated line.
		out = append(out, strings.Fields(line)...)
	}
	return out
}

func parseIndentedBody(sc *bufio.Scanner) string {
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		if len(line) >= messageIndent {
			line = line[messageIndent:]
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
