package policy

import (
	"context"
	"strconv"

	"github.com/antgroup/refhook/internal/change"
	"github.com/antgroup/refhook/internal/hookconfig"
)

// EvaluateCondition walks a Condition tree against evalCtx, emitting
// before/after trace lines at depth (spec.md §4.4). depth starts at 0 at
// the hook's root rule/condition.
func EvaluateCondition(ctx context.Context, cond hookconfig.Condition, evalCtx *Context, depth int) (bool, error) {
	desc := describeCondition(cond)
	evalCtx.Trace.Enter(depth, desc)
	result, err := evaluateCondition(ctx, cond, evalCtx, depth)
	if err != nil {
		evalCtx.Trace.Result(depth, err.Error())
		return false, err
	}
	evalCtx.Trace.Result(depth, strconv.FormatBool(result))
	return result, nil
}

func evaluateCondition(ctx context.Context, cond hookconfig.Condition, evalCtx *Context, depth int) (bool, error) {
	if depth > maxDepth {
		return false, &ConditionError{Description: describeCondition(cond), Err: errDepthExceeded}
	}

	switch c := cond.(type) {
	case hookconfig.RefIsCondition:
		return evalCtx.Change.Name == c.Name, nil
	case hookconfig.RefMatchesCondition:
		return c.Pattern.MatchString(evalCtx.Change.Name), nil
	case hookconfig.IsTagCondition:
		return evalCtx.Change.Name == "refs/tags/"+c.Name, nil
	case hookconfig.RefAddCondition:
		return evalCtx.Change.Kind == change.KindAdd, nil
	case hookconfig.RefRemoveCondition:
		return evalCtx.Change.Kind == change.KindRemove, nil
	case hookconfig.RefUpdateCondition:
		return evalCtx.Change.Kind == change.KindUpdate, nil
	case hookconfig.LinearHistoryCondition:
		switch evalCtx.Change.Kind {
		case change.KindUpdate:
			return !evalCtx.Change.Force, nil
		default:
			return true, nil
		}
	case hookconfig.TrueCondition:
		return true, nil
	case hookconfig.FalseCondition:
		return false, nil
	case hookconfig.BypassRequestedCondition:
		return evalCtx.HasPushOption(c.Option), nil
	case hookconfig.DerivedFromDefaultBranchCondition:
		return isDerivedFrom(ctx, evalCtx, evalCtx.DefaultBranch, c.AcceptRemoves)
	case hookconfig.DerivedFromBranchCondition:
		return isDerivedFrom(ctx, evalCtx, c.Name, c.AcceptRemoves)
	case hookconfig.AnyCommitMessageMatchesCondition:
		if evalCtx.Change.Kind == change.KindRemove {
			return c.AcceptRemoves, nil
		}
		for _, entry := range evalCtx.Change.Facts.Log(ctx) {
			if c.Pattern.MatchString(entry.Message) {
				return true, nil
			}
		}
		return false, nil
	case hookconfig.ModifiedFileMatchesCondition:
		return anyFileMatches(ctx, evalCtx, c.AcceptRemoves, c.Pattern, change.StatusModified, change.StatusRenamed)
	case hookconfig.AddedFileMatchesCondition:
		return anyFileMatches(ctx, evalCtx, c.AcceptRemoves, c.Pattern, change.StatusAdded)
	case hookconfig.RemovedFileMatchesCondition:
		return anyFileMatches(ctx, evalCtx, c.AcceptRemoves, c.Pattern, change.StatusDeleted)
	case hookconfig.AllCommitsSignedCondition:
		return allCommitsSigned(ctx, evalCtx, c)
	case hookconfig.AndCondition:
		for _, sub := range c.Conditions {
			ok, err := EvaluateCondition(ctx, sub, evalCtx, depth+1)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case hookconfig.OrCondition:
		for _, sub := range c.Conditions {
			ok, err := EvaluateCondition(ctx, sub, evalCtx, depth+1)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case hookconfig.XorCondition:
		return evaluateXor(ctx, evalCtx, c.Conditions, depth)
	case hookconfig.NotCondition:
		ok, err := EvaluateCondition(ctx, c.Condition, evalCtx, depth+1)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case hookconfig.RuleCondition:
		result, err := EvaluateRule(ctx, c.Rule, evalCtx, depth+1)
		if err != nil {
			return false, &ConditionError{Description: describeCondition(cond), Err: err}
		}
		return result.Action != hookconfig.ActionReject, nil
	default:
		return false, &ConditionError{Description: describeCondition(cond), Err: errUnknownCondition}
	}
}

// evaluateXor returns true iff the children do not all agree. A
// single-child xor is vacuously true: preserved from the original source
// (`conditions.len() == 1 => Ok(true)`) per spec.md §9's first open
// question.
func evaluateXor(ctx context.Context, evalCtx *Context, conditions []hookconfig.Condition, depth int) (bool, error) {
	if len(conditions) == 1 {
		return true, nil
	}
	first, err := EvaluateCondition(ctx, conditions[0], evalCtx, depth+1)
	if err != nil {
		return false, err
	}
	for _, sub := range conditions[1:] {
		v, err := EvaluateCondition(ctx, sub, evalCtx, depth+1)
		if err != nil {
			return false, err
		}
		if v != first {
			return true, nil
		}
	}
	return false, nil
}

func isDerivedFrom(ctx context.Context, evalCtx *Context, refA string, acceptRemoves bool) (bool, error) {
	if evalCtx.Change.Kind == change.KindRemove {
		return acceptRemoves, nil
	}
	_, ok := evalCtx.Adapter.MergeBase(ctx, refA, evalCtx.Change.NewTip())
	return ok, nil
}

func anyFileMatches(ctx context.Context, evalCtx *Context, acceptRemoves bool, pattern patternMatcher, statuses ...change.FileStatus) (bool, error) {
	if evalCtx.Change.Kind == change.KindRemove {
		return acceptRemoves, nil
	}
	entries, _ := evalCtx.Change.Facts.FileStatus(ctx)
	for _, entry := range entries {
		if matchesAny(entry.Status, statuses) && pattern.MatchString(entry.Path) {
			return true, nil
		}
	}
	return false, nil
}

func matchesAny(status change.FileStatus, statuses []change.FileStatus) bool {
	for _, s := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

// allCommitsSigned implements spec.md §4.4/§9: with no allow-list, every
// log entry must carry a signing key; with an allow-list, every entry
// must both be signed and its key must be in the list. The with-allow-list
// case fixes the original source's apparent bug (its loop fell through to
// false even when every signed commit's key was allowed) per the second
// open question in spec.md §9.
func allCommitsSigned(ctx context.Context, evalCtx *Context, c hookconfig.AllCommitsSignedCondition) (bool, error) {
	if evalCtx.Change.Kind == change.KindRemove {
		return true, nil
	}
	for _, entry := range evalCtx.Change.Facts.Log(ctx) {
		if entry.SignedByKeyID == "" {
			return false, nil
		}
		if c.HasAllowList && !contains(c.AllowedKeyIDs, entry.SignedByKeyID) {
			return false, nil
		}
	}
	return true, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// patternMatcher is the subset of *regexp.Regexp the file-matching
// predicates need; declared as an interface purely so anyFileMatches
// doesn't import regexp just to name the parameter type.
type patternMatcher interface {
	MatchString(string) bool
}
