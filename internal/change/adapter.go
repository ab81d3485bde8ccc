package change

import "context"

// Adapter is the subset of the git adapter the lazy fact bundle needs. It
// is declared here, not in internal/gitadapter, so that this package stays
// free of any subprocess/cache concerns — gitadapter.Adapter satisfies
// this interface structurally.
type Adapter interface {
	Diff(ctx context.Context, oldCommit, newCommit string) (string, bool)
	DiffNameStatus(ctx context.Context, oldCommit, newCommit string) ([]FileStatusEntry, bool)
	LogRange(ctx context.Context, from, to string) []CommitLogEntry
	LogLimited(ctx context.Context, n int, to string) []CommitLogEntry
	MergeBase(ctx context.Context, a, b string) (string, bool)
}
