package policy

import (
	"context"

	"github.com/antgroup/refhook/internal/hookconfig"
)

// RuleResult is the outcome of evaluating a Rule node: an action plus the
// messages it contributes (spec.md §4.5).
type RuleResult struct {
	Action   hookconfig.RuleAction
	Messages []string
}

// WebhookInvoker is the subset of internal/webhook the rule evaluator
// needs. Declared here, not in internal/webhook, so this package stays
// free of net/http — the same boundary internal/change draws around its
// Adapter interface.
type WebhookInvoker interface {
	Invoke(ctx context.Context, rule hookconfig.WebhookRule, evalCtx *Context) (RuleResult, error)
}

// EvaluateRule walks a Rule tree against evalCtx, producing a RuleResult
// or an error wrapping whichever Condition/Webhook failure caused it.
func EvaluateRule(ctx context.Context, rule hookconfig.Rule, evalCtx *Context, depth int) (RuleResult, error) {
	if depth > maxDepth {
		return RuleResult{}, &RuleError{Description: describeRule(rule), Err: errDepthExceeded}
	}

	switch r := rule.(type) {
	case hookconfig.ChainRule:
		return evaluateChain(ctx, r, evalCtx, depth)
	case hookconfig.SelectRule:
		return evaluateSelect(ctx, r, evalCtx, depth)
	case hookconfig.ConditionalRule:
		return evaluateConditional(ctx, r, evalCtx, depth)
	case hookconfig.AcceptRule:
		return RuleResult{Action: hookconfig.ActionAccept, Messages: r.Messages}, nil
	case hookconfig.RejectRule:
		return RuleResult{Action: hookconfig.ActionReject, Messages: r.Messages}, nil
	case hookconfig.WebhookRule:
		return evaluateWebhook(ctx, r, evalCtx, depth)
	default:
		return RuleResult{}, &RuleError{Description: describeRule(rule), Err: errUnknownRule}
	}
}

// evaluateChain runs sub-rules in order, stopping at the first
// Accept/Reject; an all-Continue chain becomes Accept with the last
// sub-rule's messages (spec.md §8 invariant 3).
func evaluateChain(ctx context.Context, r hookconfig.ChainRule, evalCtx *Context, depth int) (RuleResult, error) {
	result := RuleResult{Action: hookconfig.ActionReject}
	for _, sub := range r.Rules {
		var err error
		result, err = EvaluateRule(ctx, sub, evalCtx, depth+1)
		if err != nil {
			return RuleResult{}, err
		}
		if result.Action != hookconfig.ActionContinue {
			return result, nil
		}
	}
	result.Action = hookconfig.ActionAccept
	return result, nil
}

// evaluateSelect scans branches in source order; the first whose
// condition is true has its rule evaluated and returned. With no match,
// the default rule runs if present, else {Reject, []} (spec.md §8
// invariant 4).
func evaluateSelect(ctx context.Context, r hookconfig.SelectRule, evalCtx *Context, depth int) (RuleResult, error) {
	for _, branch := range r.FirstOf {
		ok, err := EvaluateCondition(ctx, branch.Condition, evalCtx, depth+1)
		if err != nil {
			return RuleResult{}, &RuleError{Description: "select", Err: err}
		}
		if ok {
			return EvaluateRule(ctx, branch.Rule, evalCtx, depth+1)
		}
	}
	if r.Default != nil {
		return EvaluateRule(ctx, r.Default, evalCtx, depth+1)
	}
	return RuleResult{Action: hookconfig.ActionReject}, nil
}

// evaluateConditional is the untagged {condition, on_success?, on_failure?}
// shape: on_success/on_failure default to {Continue, []} / {Reject, []}.
func evaluateConditional(ctx context.Context, r hookconfig.ConditionalRule, evalCtx *Context, depth int) (RuleResult, error) {
	ok, err := EvaluateCondition(ctx, r.Condition, evalCtx, depth+1)
	if err != nil {
		return RuleResult{}, &RuleError{Description: "conditional", Err: err}
	}
	if ok {
		return outcomeResult(r.OnSuccess, hookconfig.ActionContinue), nil
	}
	return outcomeResult(r.OnFailure, hookconfig.ActionReject), nil
}

func outcomeResult(outcome *hookconfig.Outcome, defaultAction hookconfig.RuleAction) RuleResult {
	if outcome == nil {
		return RuleResult{Action: defaultAction}
	}
	return RuleResult{Action: outcome.Action, Messages: outcome.Messages}
}

func evaluateWebhook(ctx context.Context, r hookconfig.WebhookRule, evalCtx *Context, depth int) (RuleResult, error) {
	if evalCtx.Webhook == nil {
		return RuleResult{}, &RuleError{Description: describeRule(r), Err: errWebhookUnconfigured}
	}
	desc := describeRule(r)
	evalCtx.Trace.Enter(depth, desc)
	result, err := evalCtx.Webhook.Invoke(ctx, r, evalCtx)
	if err != nil {
		evalCtx.Trace.Result(depth, err.Error())
		return RuleResult{}, &RuleError{Description: desc, Err: err}
	}
	evalCtx.Trace.Result(depth, result.Action.String())
	return result, nil
}
