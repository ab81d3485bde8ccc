package policy

import (
	"context"
	"testing"

	"github.com/antgroup/refhook/internal/change"
	"github.com/antgroup/refhook/internal/hookconfig"
	"github.com/stretchr/testify/require"
)

func baseContext() *Context {
	rc := &change.RefChange{Kind: change.KindUpdate, Name: "refs/heads/main"}
	return &Context{Change: rc, PushOptions: NewPushOptions(nil), Adapter: &stubAdapter{}}
}

func TestChainStopsAtFirstAcceptOrReject(t *testing.T) {
	ctx := baseContext()
	rule := hookconfig.ChainRule{Rules: []hookconfig.Rule{
		hookconfig.ConditionalRule{Condition: hookconfig.TrueCondition{}}, // Continue
		hookconfig.RejectRule{Messages: []string{"stop here"}},
		hookconfig.AcceptRule{Messages: []string{"never reached"}},
	}}
	result, err := EvaluateRule(context.Background(), rule, ctx, 0)
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionReject, result.Action)
	require.Equal(t, []string{"stop here"}, result.Messages)
}

func TestChainAllContinueBecomesAccept(t *testing.T) {
	ctx := baseContext()
	rule := hookconfig.ChainRule{Rules: []hookconfig.Rule{
		hookconfig.ConditionalRule{Condition: hookconfig.TrueCondition{}, OnSuccess: &hookconfig.Outcome{Action: hookconfig.ActionContinue, Messages: []string{"a"}}},
		hookconfig.ConditionalRule{Condition: hookconfig.TrueCondition{}, OnSuccess: &hookconfig.Outcome{Action: hookconfig.ActionContinue, Messages: []string{"last"}}},
	}}
	result, err := EvaluateRule(context.Background(), rule, ctx, 0)
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionAccept, result.Action)
	require.Equal(t, []string{"last"}, result.Messages)
}

func TestSelectFirstMatchingBranchWins(t *testing.T) {
	ctx := baseContext()
	rule := hookconfig.SelectRule{FirstOf: []hookconfig.RuleBranch{
		{Condition: hookconfig.FalseCondition{}, Rule: hookconfig.AcceptRule{Messages: []string{"no"}}},
		{Condition: hookconfig.TrueCondition{}, Rule: hookconfig.AcceptRule{Messages: []string{"yes"}}},
	}}
	result, err := EvaluateRule(context.Background(), rule, ctx, 0)
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionAccept, result.Action)
	require.Equal(t, []string{"yes"}, result.Messages)
}

func TestSelectNoMatchNoDefaultRejectsEmpty(t *testing.T) {
	ctx := baseContext()
	rule := hookconfig.SelectRule{FirstOf: []hookconfig.RuleBranch{
		{Condition: hookconfig.FalseCondition{}, Rule: hookconfig.AcceptRule{}},
	}}
	result, err := EvaluateRule(context.Background(), rule, ctx, 0)
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionReject, result.Action)
	require.Empty(t, result.Messages)
}

func TestSelectNoMatchUsesDefault(t *testing.T) {
	ctx := baseContext()
	rule := hookconfig.SelectRule{
		FirstOf: []hookconfig.RuleBranch{{Condition: hookconfig.FalseCondition{}, Rule: hookconfig.AcceptRule{}}},
		Default: hookconfig.AcceptRule{Messages: []string{"default"}},
	}
	result, err := EvaluateRule(context.Background(), rule, ctx, 0)
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionAccept, result.Action)
	require.Equal(t, []string{"default"}, result.Messages)
}

func TestConditionalDefaultsOnSuccessContinueOnFailureReject(t *testing.T) {
	ctx := baseContext()
	rule := hookconfig.ConditionalRule{Condition: hookconfig.TrueCondition{}}
	result, err := EvaluateRule(context.Background(), rule, ctx, 0)
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionContinue, result.Action)

	rule2 := hookconfig.ConditionalRule{Condition: hookconfig.FalseCondition{}}
	result2, err := EvaluateRule(context.Background(), rule2, ctx, 0)
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionReject, result2.Action)
}

type stubInvoker struct {
	result RuleResult
	err    error
}

func (s *stubInvoker) Invoke(ctx context.Context, rule hookconfig.WebhookRule, evalCtx *Context) (RuleResult, error) {
	return s.result, s.err
}

func TestWebhookRuleDelegatesToInvoker(t *testing.T) {
	ctx := baseContext()
	ctx.Webhook = &stubInvoker{result: RuleResult{Action: hookconfig.ActionContinue, Messages: []string{"hi"}}}
	result, err := EvaluateRule(context.Background(), hookconfig.WebhookRule{URL: "http://stub/v"}, ctx, 0)
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionContinue, result.Action)
	require.Equal(t, []string{"hi"}, result.Messages)
}

func TestWebhookRuleWithoutInvokerErrors(t *testing.T) {
	ctx := baseContext()
	_, err := EvaluateRule(context.Background(), hookconfig.WebhookRule{URL: "http://stub/v"}, ctx, 0)
	require.Error(t, err)
}

func TestSelectPropagatesConditionError(t *testing.T) {
	ctx := baseContext()
	var deep hookconfig.Condition = hookconfig.TrueCondition{}
	for i := 0; i < maxDepth+5; i++ {
		deep = hookconfig.NotCondition{Condition: deep}
	}
	rule := hookconfig.SelectRule{FirstOf: []hookconfig.RuleBranch{
		{Condition: deep, Rule: hookconfig.AcceptRule{}},
	}}
	_, err := EvaluateRule(context.Background(), rule, ctx, 0)
	require.Error(t, err)
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
}

func TestRuleDepthCapReturnsError(t *testing.T) {
	ctx := baseContext()
	var rule hookconfig.Rule = hookconfig.AcceptRule{}
	for i := 0; i < maxDepth+5; i++ {
		rule = hookconfig.ChainRule{Rules: []hookconfig.Rule{rule}}
	}
	_, err := EvaluateRule(context.Background(), rule, ctx, 0)
	require.Error(t, err)
}
