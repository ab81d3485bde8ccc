package git

import (
	"fmt"
	"strings"
)

// Signature represents the author or committer identity attached to a
// commit log entry.
type Signature struct {
	Name  string
	Email string
}

func (s Signature) String() string {
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

// ParseSignatureLine splits a "Name <email>" identity line as emitted by
// `git log --format=%aN <%aE>` (and the committer equivalent). Malformed
// lines are returned verbatim as the Name with an empty Email, the same
// fail-soft posture the adapter applies to the rest of the log format.
func ParseSignatureLine(line string) Signature {
	start := strings.LastIndexByte(line, '<')
	end := strings.LastIndexByte(line, '>')
	if start == -1 || end == -1 || end < start {
		return Signature{Name: line}
	}
	name := strings.TrimSpace(line[:start])
	email := line[start+1 : end]
	return Signature{Name: name, Email: email}
}
