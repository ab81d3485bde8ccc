package hookshell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadStdinChangesParsesLines(t *testing.T) {
	input := "aaaa1 bbbb2 refs/heads/main\ncccc3 dddd4 refs/heads/feature\n"
	changes, err := ReadStdinChanges(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []RawChange{
		{OldCommit: "aaaa1", NewCommit: "bbbb2", RefName: "refs/heads/main"},
		{OldCommit: "cccc3", NewCommit: "dddd4", RefName: "refs/heads/feature"},
	}, changes)
}

func TestReadStdinChangesSkipsBlankLines(t *testing.T) {
	changes, err := ReadStdinChanges(strings.NewReader("\naaaa1 bbbb2 refs/heads/main\n\n"))
	require.NoError(t, err)
	require.Len(t, changes, 1)
}

func TestReadStdinChangesRejectsMalformedLine(t *testing.T) {
	_, err := ReadStdinChanges(strings.NewReader("only two\n"))
	require.Error(t, err)
}

func TestParseUpdateArgs(t *testing.T) {
	rc, err := ParseUpdateArgs([]string{"refs/heads/main", "aaaa1", "bbbb2"})
	require.NoError(t, err)
	require.Equal(t, RawChange{RefName: "refs/heads/main", OldCommit: "aaaa1", NewCommit: "bbbb2"}, rc)
}

func TestParseUpdateArgsWrongCountRejected(t *testing.T) {
	_, err := ParseUpdateArgs([]string{"refs/heads/main", "aaaa1"})
	require.Error(t, err)
}
