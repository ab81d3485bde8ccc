package change

import (
	"context"
	"sync"
)

// Facts is the per-change lazy bundle of git-derived data: patch, commit
// log, and file-status list. Each fact is a deferred single-assignment
// cell (spec.md §4.2/§9): the underlying git subprocess runs at most once,
// on first access, and its result — success or failure — is memoised so a
// condition tree that probes the same fact twice never re-invokes git.
type Facts struct {
	adapter Adapter

	newCommit string

	// diff/file-status basis: for Update this is always the old tip; for
	// Add it's the merge base against the default branch (absent if none).
	diffBase    string
	hasDiffBase bool

	// log basis: (logBase, newCommit] when hasLogBase, else the most
	// recent logLimit commits reachable from newCommit.
	logBase    string
	hasLogBase bool

	patchOnce sync.Once
	patch     string
	patchOK   bool

	logOnce sync.Once
	log     []CommitLogEntry

	fileStatusOnce sync.Once
	fileStatus     []FileStatusEntry
	fileStatusOK   bool
}

// logLimit bounds log_limited when no merge base exists (spec.md §3:
// "otherwise up to 100 most recent commits reachable from new_commit").
const logLimit = 100

// NewFacts builds a lazy fact bundle for a change whose new tip is
// newCommit.
func NewFacts(adapter Adapter, newCommit, diffBase string, hasDiffBase bool, logBase string, hasLogBase bool) *Facts {
	return &Facts{
		adapter:     adapter,
		newCommit:   newCommit,
		diffBase:    diffBase,
		hasDiffBase: hasDiffBase,
		logBase:     logBase,
		hasLogBase:  hasLogBase,
	}
}

// Patch returns the unified diff against the fact bundle's diff basis.
// Absent (ok=false) if `git diff` fails or there's no basis to diff
// against (an Add whose merge base against the default branch is absent).
func (f *Facts) Patch(ctx context.Context) (string, bool) {
	f.patchOnce.Do(func() {
		if !f.hasDiffBase {
			return
		}
		f.patch, f.patchOK = f.adapter.Diff(ctx, f.diffBase, f.newCommit)
	})
	return f.patch, f.patchOK
}

// Log returns the ordered (oldest first) commit log covering
// (merge_base, new_commit] when a base exists, otherwise the most recent
// logLimit commits reachable from new_commit.
func (f *Facts) Log(ctx context.Context) []CommitLogEntry {
	f.logOnce.Do(func() {
		if f.hasLogBase {
			f.log = f.adapter.LogRange(ctx, f.logBase, f.newCommit)
			return
		}
		f.log = f.adapter.LogLimited(ctx, logLimit, f.newCommit)
	})
	return f.log
}

// FileStatus returns the diff --name-status entries for the fact bundle's
// diff basis. Absent (ok=false) under the same conditions as Patch.
func (f *Facts) FileStatus(ctx context.Context) ([]FileStatusEntry, bool) {
	f.fileStatusOnce.Do(func() {
		if !f.hasDiffBase {
			return
		}
		f.fileStatus, f.fileStatusOK = f.adapter.DiffNameStatus(ctx, f.diffBase, f.newCommit)
	})
	return f.fileStatus, f.fileStatusOK
}
