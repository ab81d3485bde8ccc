package change

import (
	"context"

	"github.com/antgroup/refhook/modules/git"
)

// RefChange is the tagged variant over the three ref-change shapes
// (spec.md §3). Exactly one of AddRef/RemoveRef/UpdateRef is populated;
// callers switch on Kind.
type Kind int

const (
	KindAdd Kind = iota
	KindRemove
	KindUpdate
)

type RefChange struct {
	Kind Kind
	Name string

	// AddRef / RemoveRef
	Commit string

	// UpdateRef
	OldCommit string
	NewCommit string
	MergeBase string // empty when HasMergeBase is false
	HasMergeBase bool
	Force     bool

	// Facts is nil on RemoveRef (spec.md §3: "empty semantics on Remove").
	Facts *Facts
}

// NewTip returns the commit a condition should treat as this change's new
// side: Commit for Add, NewCommit for Update. Callers must not call this
// for RemoveRef.
func (c *RefChange) NewTip() string {
	if c.Kind == KindAdd {
		return c.Commit
	}
	return c.NewCommit
}

// Resolver builds RefChange values from raw (old, new, ref) triples,
// computing the merge base needed for Force/Facts along the way.
type Resolver struct {
	adapter       Adapter
	defaultBranch string
}

func NewResolver(adapter Adapter, defaultBranch string) *Resolver {
	return &Resolver{adapter: adapter, defaultBranch: defaultBranch}
}

// Resolve classifies an (old, new, ref) triple and constructs the
// corresponding RefChange. It returns (nil, false) when both sides are the
// zero sentinel (spec.md §3: "on both sides the change is discarded
// upstream" — S4).
func (r *Resolver) Resolve(ctx context.Context, oldCommit, newCommit, ref string) (*RefChange, bool) {
	oldZero := git.IsHashZero(oldCommit)
	newZero := git.IsHashZero(newCommit)

	switch {
	case oldZero && newZero:
		return nil, false
	case oldZero:
		mergeBase, hasBase := r.adapter.MergeBase(ctx, r.defaultBranch, newCommit)
		return &RefChange{
			Kind:         KindAdd,
			Name:         ref,
			Commit:       newCommit,
			MergeBase:    mergeBase,
			HasMergeBase: hasBase,
			Facts:        NewFacts(r.adapter, newCommit, mergeBase, hasBase, mergeBase, hasBase),
		}, true
	case newZero:
		return &RefChange{
			Kind:   KindRemove,
			Name:   ref,
			Commit: oldCommit,
		}, true
	default:
		mergeBase, hasBase := r.adapter.MergeBase(ctx, oldCommit, newCommit)
		force := !hasBase || mergeBase != oldCommit
		return &RefChange{
			Kind:         KindUpdate,
			Name:         ref,
			OldCommit:    oldCommit,
			NewCommit:    newCommit,
			MergeBase:    mergeBase,
			HasMergeBase: hasBase,
			Force:        force,
			Facts:        NewFacts(r.adapter, newCommit, oldCommit, true, mergeBase, hasBase),
		}, true
	}
}
