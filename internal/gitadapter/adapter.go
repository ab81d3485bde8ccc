// Package gitadapter spawns git subprocesses and parses their textual
// output into the typed records the policy engine operates over. Every
// operation fails soft: a missing file, a non-zero exit, or a malformed
// record yields "absent" rather than propagating a process error, per
// spec.md §4.1/§7.
package gitadapter

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/antgroup/refhook/internal/change"
	"github.com/antgroup/refhook/modules/command"
	"github.com/antgroup/refhook/modules/git"
	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

// Adapter wraps one repository's worth of git subprocess calls. Its
// methods satisfy change.Adapter.
type Adapter struct {
	repoPath string
	cache    *resultCache
}

// New builds an Adapter rooted at repoPath. numCounters/maxCostMiB size
// the adapter-level memoization cache (see cache.go); pass zeroes to
// disable it.
func New(repoPath string, numCounters, maxCostMiB int64) (*Adapter, error) {
	c, err := newResultCache(numCounters, maxCostMiB)
	if err != nil {
		return nil, err
	}
	return &Adapter{repoPath: repoPath, cache: c}, nil
}

// logFailure reports a failed git invocation at Debug when stderr looks
// like an ordinary "object/path doesn't exist" condition, and at Warn
// otherwise — a missing commit on an Add is routine, a corrupt repository
// is not.
func logFailure(args []string, stderr []byte, err error) {
	fields := logrus.Fields{"command": shellquote.Join(append([]string{"git"}, args...)...)}
	if git.ErrorIsNotFound(string(stderr)) {
		logrus.WithError(err).WithFields(fields).Debug("gitadapter: git reported object not found")
		return
	}
	logrus.WithError(err).WithFields(fields).Warn("gitadapter: git invocation failed")
}

func (a *Adapter) runOneLine(ctx context.Context, args ...string) (string, bool) {
	stderr := command.NewStderr()
	cmd := command.NewFromOptions(ctx, &command.RunOpts{RepoPath: a.repoPath, Stderr: stderr}, "git", args...)
	out, err := cmd.OneLine()
	if err != nil {
		logFailure(args, stderr.Bytes(), err)
		return "", false
	}
	return out, true
}

func (a *Adapter) runOutput(ctx context.Context, args ...string) ([]byte, bool) {
	stderr := command.NewStderr()
	cmd := command.NewFromOptions(ctx, &command.RunOpts{RepoPath: a.repoPath, Stderr: stderr}, "git", args...)
	out, err := cmd.Output()
	if err != nil {
		logFailure(args, stderr.Bytes(), err)
		return nil, false
	}
	return out, true
}

// ShowFile returns the contents of path at HEAD of the default branch. A
// missing path and any other git failure both report absent; the captured
// stderr only selects the log level in logFailure.
func (a *Adapter) ShowFile(ctx context.Context, path string) (string, bool) {
	key := git.CacheKey("show-file", path)
	if v, ok := a.cache.get(key); ok {
		s, _ := v.(string)
		return s, v != nil
	}
	out, ok := a.runOutput(ctx, "show", "HEAD:"+path)
	if !ok {
		a.cache.setAbsent(key)
		return "", false
	}
	content := string(out)
	a.cache.set(key, content)
	return content, true
}

// Diff returns the unified diff between oldCommit and newCommit. Both ends
// of a diff are always resolved commit ids (never a branch name), so this
// checks the stricter git.ValidateHex rather than git.ValidateRevision.
func (a *Adapter) Diff(ctx context.Context, oldCommit, newCommit string) (string, bool) {
	if err := git.ValidateHex(oldCommit); err != nil {
		return "", false
	}
	if err := git.ValidateHex(newCommit); err != nil {
		return "", false
	}
	out, ok := a.runOutput(ctx, "diff", oldCommit+".."+newCommit)
	if !ok {
		return "", false
	}
	return string(out), true
}

// DiffNameStatus returns the diff --name-status entries between oldCommit
// and newCommit.
func (a *Adapter) DiffNameStatus(ctx context.Context, oldCommit, newCommit string) ([]change.FileStatusEntry, bool) {
	if err := git.ValidateHex(oldCommit); err != nil {
		return nil, false
	}
	if err := git.ValidateHex(newCommit); err != nil {
		return nil, false
	}
	out, ok := a.runOutput(ctx, "diff", "--name-status", oldCommit+".."+newCommit)
	if !ok {
		return nil, false
	}
	return parseNameStatus(string(out)), true
}

func parseNameStatus(output string) []change.FileStatusEntry {
	var entries []change.FileStatusEntry
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		status := change.ParseFileStatus(fields[0][0])
		// a rename/copy line carries a similarity-percentage status code
		// and two path columns (source, destination); the destination
		// path is what file-matching predicates scan.
		path := fields[len(fields)-1]
		entries = append(entries, change.FileStatusEntry{Status: status, Path: path})
	}
	return entries
}

// MergeBase returns the most recent common ancestor of left and right, if
// one exists.
func (a *Adapter) MergeBase(ctx context.Context, left, right string) (string, bool) {
	if err := git.ValidateRevision(left); err != nil {
		return "", false
	}
	if err := git.ValidateRevision(right); err != nil {
		return "", false
	}
	key := git.CacheKey("merge-base", left, right)
	if v, ok := a.cache.get(key); ok {
		s, _ := v.(string)
		return s, v != nil
	}
	out, ok := a.runOneLine(ctx, "merge-base", left, right)
	if !ok {
		a.cache.setAbsent(key)
		return "", false
	}
	a.cache.set(key, out)
	return out, true
}

// DefaultBranch returns the abbreviated HEAD ref name, if HEAD resolves.
func (a *Adapter) DefaultBranch(ctx context.Context) (string, bool) {
	return a.runOneLine(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// LogRange returns the commits in (from, to], oldest first. Both ends are
// always resolved commit ids, so this checks git.ValidateHex.
func (a *Adapter) LogRange(ctx context.Context, from, to string) []change.CommitLogEntry {
	if git.ValidateHex(from) != nil || git.ValidateHex(to) != nil {
		return nil
	}
	return a.streamLog(ctx, from+".."+to)
}

// LogLimited returns up to n of the most recent commits reachable from to,
// oldest first.
func (a *Adapter) LogLimited(ctx context.Context, n int, to string) []change.CommitLogEntry {
	if git.ValidateHex(to) != nil {
		return nil
	}
	return a.streamLog(ctx, "-n", strconv.Itoa(n), to)
}

func (a *Adapter) streamLog(ctx context.Context, revArgs ...string) []change.CommitLogEntry {
	args := append([]string{"log", "--reverse", logFormatArg}, revArgs...)
	reader, err := git.NewReader(ctx, &command.RunOpts{RepoPath: a.repoPath, Stderr: io.Discard}, args...)
	if err != nil {
		logrus.WithError(err).Warnf("gitadapter: failed to start %s", shellquote.Join(append([]string{"git"}, args...)...))
		return nil
	}
	defer reader.Close()
	entries, err := parseLog(reader)
	if err != nil {
		logrus.WithError(err).Debug("gitadapter: log parse stopped at malformed record boundary")
	}
	return entries
}
