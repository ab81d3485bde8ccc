package policy

import (
	"strings"

	"github.com/antgroup/refhook/internal/hookconfig"
)

// describeCondition renders a short human-readable label for trace output
// (spec.md §4.4: "a line of the form trace: {dashes}> {description}").
func describeCondition(cond hookconfig.Condition) string {
	switch c := cond.(type) {
	case hookconfig.RefIsCondition:
		return "ref-is(" + c.Name + ")"
	case hookconfig.RefMatchesCondition:
		return "ref-matches(" + c.Raw + ")"
	case hookconfig.IsTagCondition:
		return "is-tag(" + c.Name + ")"
	case hookconfig.RefAddCondition:
		return "ref-add"
	case hookconfig.RefRemoveCondition:
		return "ref-remove"
	case hookconfig.RefUpdateCondition:
		return "ref-update"
	case hookconfig.LinearHistoryCondition:
		return "linear-history"
	case hookconfig.TrueCondition:
		return "true"
	case hookconfig.FalseCondition:
		return "false"
	case hookconfig.BypassRequestedCondition:
		return "bypass-requested(" + c.Option + ")"
	case hookconfig.DerivedFromDefaultBranchCondition:
		return "derived-from-default-branch"
	case hookconfig.DerivedFromBranchCondition:
		return "derived-from-branch(" + c.Name + ")"
	case hookconfig.AnyCommitMessageMatchesCondition:
		return "any-commit-message-matches(" + c.Raw + ")"
	case hookconfig.ModifiedFileMatchesCondition:
		return "modified-file-matches(" + c.Raw + ")"
	case hookconfig.AddedFileMatchesCondition:
		return "added-file-matches(" + c.Raw + ")"
	case hookconfig.RemovedFileMatchesCondition:
		return "removed-file-matches(" + c.Raw + ")"
	case hookconfig.AllCommitsSignedCondition:
		if c.HasAllowList {
			return "all-commits-signed(" + strings.Join(c.AllowedKeyIDs, ",") + ")"
		}
		return "all-commits-signed"
	case hookconfig.AndCondition:
		return "and(" + describeList(c.Conditions) + ")"
	case hookconfig.OrCondition:
		return "or(" + describeList(c.Conditions) + ")"
	case hookconfig.XorCondition:
		return "xor(" + describeList(c.Conditions) + ")"
	case hookconfig.NotCondition:
		return "not(" + describeCondition(c.Condition) + ")"
	case hookconfig.RuleCondition:
		return "rule(" + describeRule(c.Rule) + ")"
	default:
		return "condition"
	}
}

func describeList(conditions []hookconfig.Condition) string {
	parts := make([]string, len(conditions))
	for i, c := range conditions {
		parts[i] = describeCondition(c)
	}
	return strings.Join(parts, ", ")
}

func describeRule(rule hookconfig.Rule) string {
	switch r := rule.(type) {
	case hookconfig.ChainRule:
		return "chain"
	case hookconfig.SelectRule:
		return "select"
	case hookconfig.WebhookRule:
		return "webhook(" + r.URL + ")"
	case hookconfig.AcceptRule:
		return "accept"
	case hookconfig.RejectRule:
		return "reject"
	case hookconfig.ConditionalRule:
		return "conditional(" + describeCondition(r.Condition) + ")"
	default:
		return "rule"
	}
}
