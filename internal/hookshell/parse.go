package hookshell

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RawChange is one (old, new, ref) triple as read off the wire, before
// resolution into a change.RefChange.
type RawChange struct {
	OldCommit string
	NewCommit string
	RefName   string
}

// ReadStdinChanges parses the pre-receive/post-receive line format:
// "<old> <new> <ref>", one change per line.
func ReadStdinChanges(r io.Reader) ([]RawChange, error) {
	var changes []RawChange
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 3 {
			return nil, fmt.Errorf("hookshell: malformed change line %q", line)
		}
		changes = append(changes, RawChange{OldCommit: parts[0], NewCommit: parts[1], RefName: parts[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// ParseUpdateArgs parses the update hook's three positional arguments:
// "<ref> <old> <new>".
func ParseUpdateArgs(args []string) (RawChange, error) {
	if len(args) != 3 {
		return RawChange{}, fmt.Errorf("hookshell: update hook expects 3 arguments, got %d", len(args))
	}
	return RawChange{RefName: args[0], OldCommit: args[1], NewCommit: args[2]}, nil
}
