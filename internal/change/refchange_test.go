package change

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	mergeBase      map[string]string
	diffCalls      int
	logRangeCalls  int
	logLimitCalls  int
	nameStatus     []FileStatusEntry
}

func (f *fakeAdapter) Diff(ctx context.Context, oldCommit, newCommit string) (string, bool) {
	f.diffCalls++
	return "diff " + oldCommit + ".." + newCommit, true
}

func (f *fakeAdapter) DiffNameStatus(ctx context.Context, oldCommit, newCommit string) ([]FileStatusEntry, bool) {
	return f.nameStatus, true
}

func (f *fakeAdapter) LogRange(ctx context.Context, from, to string) []CommitLogEntry {
	f.logRangeCalls++
	return []CommitLogEntry{{Hash: to}}
}

func (f *fakeAdapter) LogLimited(ctx context.Context, n int, to string) []CommitLogEntry {
	f.logLimitCalls++
	return []CommitLogEntry{{Hash: to}}
}

func (f *fakeAdapter) MergeBase(ctx context.Context, a, b string) (string, bool) {
	base, ok := f.mergeBase[a+".."+b]
	return base, ok
}

func zero40() string { return "0000000000000000000000000000000000000000" }

func TestResolveBothZeroDiscarded(t *testing.T) {
	r := NewResolver(&fakeAdapter{}, "main")
	_, ok := r.Resolve(context.Background(), zero40(), zero40(), "refs/heads/x")
	require.False(t, ok)
}

func TestResolveAddHasMergeBase(t *testing.T) {
	a := &fakeAdapter{mergeBase: map[string]string{"main..newsha": "basesha"}}
	r := NewResolver(a, "main")
	rc, ok := r.Resolve(context.Background(), zero40(), "newsha", "refs/heads/feature")
	require.True(t, ok)
	require.Equal(t, KindAdd, rc.Kind)
	require.True(t, rc.HasMergeBase)
	require.Equal(t, "basesha", rc.MergeBase)
}

func TestResolveRemoveHasNoFacts(t *testing.T) {
	r := NewResolver(&fakeAdapter{}, "main")
	rc, ok := r.Resolve(context.Background(), "oldsha", zero40(), "refs/heads/gone")
	require.True(t, ok)
	require.Equal(t, KindRemove, rc.Kind)
	require.Equal(t, "oldsha", rc.Commit)
	require.Nil(t, rc.Facts)
}

func TestResolveUpdateForceInvariant(t *testing.T) {
	a := &fakeAdapter{mergeBase: map[string]string{"oldsha..newsha": "oldsha"}}
	r := NewResolver(a, "main")
	rc, ok := r.Resolve(context.Background(), "oldsha", "newsha", "refs/heads/main")
	require.True(t, ok)
	require.False(t, rc.Force)

	a2 := &fakeAdapter{mergeBase: map[string]string{"oldsha..newsha": "someothersha"}}
	r2 := NewResolver(a2, "main")
	rc2, _ := r2.Resolve(context.Background(), "oldsha", "newsha", "refs/heads/main")
	require.True(t, rc2.Force)

	a3 := &fakeAdapter{}
	r3 := NewResolver(a3, "main")
	rc3, _ := r3.Resolve(context.Background(), "oldsha", "newsha", "refs/heads/main")
	require.True(t, rc3.Force)
	require.False(t, rc3.HasMergeBase)
}

func TestFactsLogMaterializedOnce(t *testing.T) {
	a := &fakeAdapter{mergeBase: map[string]string{"oldsha..newsha": "oldsha"}}
	r := NewResolver(a, "main")
	rc, _ := r.Resolve(context.Background(), "oldsha", "newsha", "refs/heads/main")

	rc.Facts.Log(context.Background())
	rc.Facts.Log(context.Background())
	require.Equal(t, 1, a.logRangeCalls)
}

func TestFactsNeverTouchedNeverMaterialized(t *testing.T) {
	a := &fakeAdapter{mergeBase: map[string]string{"oldsha..newsha": "oldsha"}}
	r := NewResolver(a, "main")
	rc, _ := r.Resolve(context.Background(), "oldsha", "newsha", "refs/heads/main")
	_ = rc

	require.Equal(t, 0, a.logRangeCalls)
	require.Equal(t, 0, a.diffCalls)
}
