package hookconfig

import "fmt"

// decodeRule implements the tagged-first/untagged-fallback rule from
// spec.md §9: every Rule arm except Conditional carries a "type"
// discriminator; Conditional is recognised by shape (a "condition" key
// with no "type" key).
func decodeRule(v any, path string) (Rule, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, errAt(path, "must be an object")
	}
	typ, tagged := stringField(m, "type")
	if !tagged {
		if _, hasCondition := m["condition"]; hasCondition {
			return decodeConditionalRule(m, path)
		}
		return nil, errAt(path, "rule has no \"type\" and is not a conditional shape")
	}
	switch typ {
	case "chain":
		return decodeChainRule(m, path)
	case "select":
		return decodeSelectRule(m, path)
	case "webhook":
		return decodeWebhookRule(m, path)
	case "accept":
		msgs, _ := stringSliceField(m, "messages")
		return AcceptRule{Messages: msgs}, nil
	case "reject":
		msgs, _ := stringSliceField(m, "messages")
		return RejectRule{Messages: msgs}, nil
	default:
		return nil, errAt(path+".type", "unknown rule type %q", typ)
	}
}

func decodeChainRule(m map[string]any, path string) (Rule, error) {
	raw, ok := m["rules"]
	if !ok {
		return nil, errAt(path+".rules", "missing")
	}
	items, ok := asSlice(raw)
	if !ok || len(items) == 0 {
		return nil, errAt(path+".rules", "must be a non-empty array")
	}
	rules := make([]Rule, 0, len(items))
	for i, item := range items {
		r, err := decodeRule(item, fmt.Sprintf("%s.rules[%d]", path, i))
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return ChainRule{Rules: rules}, nil
}

func decodeSelectRule(m map[string]any, path string) (Rule, error) {
	raw, ok := m["first-of"]
	if !ok {
		return nil, errAt(path+".first-of", "missing")
	}
	items, ok := asSlice(raw)
	if !ok {
		return nil, errAt(path+".first-of", "must be an array")
	}
	branches := make([]RuleBranch, 0, len(items))
	for i, item := range items {
		branchPath := fmt.Sprintf("%s.first-of[%d]", path, i)
		bm, ok := asMap(item)
		if !ok {
			return nil, errAt(branchPath, "must be an object")
		}
		condVal, ok := bm["condition"]
		if !ok {
			return nil, errAt(branchPath+".condition", "missing")
		}
		cond, err := decodeCondition(condVal, branchPath+".condition")
		if err != nil {
			return nil, err
		}
		ruleVal, ok := bm["rule"]
		if !ok {
			return nil, errAt(branchPath+".rule", "missing")
		}
		rule, err := decodeRule(ruleVal, branchPath+".rule")
		if err != nil {
			return nil, err
		}
		branches = append(branches, RuleBranch{Condition: cond, Rule: rule})
	}
	sel := SelectRule{FirstOf: branches}
	if defVal, ok := m["default"]; ok {
		def, err := decodeRule(defVal, path+".default")
		if err != nil {
			return nil, err
		}
		sel.Default = def
	}
	return sel, nil
}

func decodeWebhookRule(m map[string]any, path string) (Rule, error) {
	url, ok := stringField(m, "url")
	if !ok || url == "" {
		return nil, errAt(path+".url", "must be a non-empty string")
	}
	w := WebhookRule{URL: url, Config: m["config"]}
	if d, present, err := durationField(m, "request-timeout"); err != nil {
		return nil, err
	} else if present {
		w.RequestTimeout, w.HasRequestTO = d, true
	}
	if d, present, err := durationField(m, "connect-timeout"); err != nil {
		return nil, err
	} else if present {
		w.ConnectTimeout, w.HasConnectTO = d, true
	}
	if msgs, ok := stringSliceField(m, "greeting-messages"); ok {
		w.GreetingMessages = msgs
	}
	return w, nil
}

func decodeOutcome(v any, path string) (*Outcome, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := asMap(v)
	if !ok {
		return nil, errAt(path, "must be an object")
	}
	actionStr, ok := stringField(m, "action")
	if !ok {
		return nil, errAt(path+".action", "missing")
	}
	var action RuleAction
	switch actionStr {
	case "accept":
		action = ActionAccept
	case "reject":
		action = ActionReject
	case "continue":
		action = ActionContinue
	default:
		return nil, errAt(path+".action", "unknown action %q", actionStr)
	}
	msgs, _ := stringSliceField(m, "messages")
	return &Outcome{Action: action, Messages: msgs}, nil
}

func decodeConditionalRule(m map[string]any, path string) (Rule, error) {
	condVal := m["condition"]
	cond, err := decodeCondition(condVal, path+".condition")
	if err != nil {
		return nil, err
	}
	cr := ConditionalRule{Condition: cond}
	if v, ok := m["on-success"]; ok {
		out, err := decodeOutcome(v, path+".on-success")
		if err != nil {
			return nil, err
		}
		cr.OnSuccess = out
	}
	if v, ok := m["on-failure"]; ok {
		out, err := decodeOutcome(v, path+".on-failure")
		if err != nil {
			return nil, err
		}
		cr.OnFailure = out
	}
	return cr, nil
}
