package hookconfig

import (
	"fmt"
	"regexp"
)

// decodeCondition decodes one Condition node. Every Condition arm,
// including the composites, carries a "type" discriminator (unlike Rule,
// there is no untagged arm here).
func decodeCondition(v any, path string) (Condition, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, errAt(path, "must be an object")
	}
	typ, ok := stringField(m, "type")
	if !ok {
		return nil, errAt(path+".type", "missing")
	}
	switch typ {
	case "ref-is":
		name, ok := stringField(m, "name")
		if !ok || name == "" {
			return nil, errAt(path+".name", "must be a non-empty string")
		}
		return RefIsCondition{Name: name}, nil
	case "is-tag":
		name, ok := stringField(m, "name")
		if !ok || name == "" {
			return nil, errAt(path+".name", "must be a non-empty string")
		}
		return IsTagCondition{Name: name}, nil
	case "ref-matches":
		raw, ok := stringField(m, "pattern")
		if !ok {
			return nil, errAt(path+".pattern", "missing")
		}
		re, err := compilePattern(path+".pattern", raw)
		if err != nil {
			return nil, err
		}
		return RefMatchesCondition{Raw: raw, Pattern: re}, nil
	case "ref-add":
		return RefAddCondition{}, nil
	case "ref-remove":
		return RefRemoveCondition{}, nil
	case "ref-update":
		return RefUpdateCondition{}, nil
	case "linear-history":
		return LinearHistoryCondition{}, nil
	case "true":
		return TrueCondition{}, nil
	case "false":
		return FalseCondition{}, nil
	case "bypass-requested":
		opt, ok := stringField(m, "option")
		if !ok || opt == "" {
			return nil, errAt(path+".option", "must be a non-empty string")
		}
		return BypassRequestedCondition{Option: opt}, nil
	case "derived-from-default-branch":
		return DerivedFromDefaultBranchCondition{AcceptRemoves: boolField(m, "accept-removes", false)}, nil
	case "derived-from-branch":
		name, ok := stringField(m, "name")
		if !ok || name == "" {
			return nil, errAt(path+".name", "must be a non-empty string")
		}
		return DerivedFromBranchCondition{Name: name, AcceptRemoves: boolField(m, "accept-removes", false)}, nil
	case "any-commit-message-matches":
		raw, re, err := decodePatternField(m, path)
		if err != nil {
			return nil, err
		}
		return AnyCommitMessageMatchesCondition{Raw: raw, Pattern: re, AcceptRemoves: boolField(m, "accept-removes", true)}, nil
	case "modified-file-matches":
		raw, re, err := decodePatternField(m, path)
		if err != nil {
			return nil, err
		}
		return ModifiedFileMatchesCondition{Raw: raw, Pattern: re, AcceptRemoves: boolField(m, "accept-removes", true)}, nil
	case "added-file-matches":
		raw, re, err := decodePatternField(m, path)
		if err != nil {
			return nil, err
		}
		return AddedFileMatchesCondition{Raw: raw, Pattern: re, AcceptRemoves: boolField(m, "accept-removes", true)}, nil
	case "removed-file-matches":
		raw, re, err := decodePatternField(m, path)
		if err != nil {
			return nil, err
		}
		return RemovedFileMatchesCondition{Raw: raw, Pattern: re, AcceptRemoves: boolField(m, "accept-removes", true)}, nil
	case "all-commits-signed":
		ids, has := stringSliceField(m, "allowed-key-ids")
		return AllCommitsSignedCondition{AllowedKeyIDs: ids, HasAllowList: has}, nil
	case "and":
		conds, err := decodeConditionList(m, path, "conditions")
		if err != nil {
			return nil, err
		}
		return AndCondition{Conditions: conds}, nil
	case "or":
		conds, err := decodeConditionList(m, path, "conditions")
		if err != nil {
			return nil, err
		}
		return OrCondition{Conditions: conds}, nil
	case "xor":
		conds, err := decodeConditionList(m, path, "conditions")
		if err != nil {
			return nil, err
		}
		return XorCondition{Conditions: conds}, nil
	case "not":
		inner, ok := m["condition"]
		if !ok {
			return nil, errAt(path+".condition", "missing")
		}
		c, err := decodeCondition(inner, path+".condition")
		if err != nil {
			return nil, err
		}
		return NotCondition{Condition: c}, nil
	case "rule":
		inner, ok := m["rule"]
		if !ok {
			return nil, errAt(path+".rule", "missing")
		}
		r, err := decodeRule(inner, path+".rule")
		if err != nil {
			return nil, err
		}
		return RuleCondition{Rule: r}, nil
	default:
		return nil, errAt(path+".type", "unknown condition type %q", typ)
	}
}

func decodePatternField(m map[string]any, path string) (string, *regexp.Regexp, error) {
	raw, ok := stringField(m, "pattern")
	if !ok {
		return "", nil, errAt(path+".pattern", "missing")
	}
	re, err := compilePattern(path+".pattern", raw)
	if err != nil {
		return "", nil, err
	}
	return raw, re, nil
}

func decodeConditionList(m map[string]any, path, key string) ([]Condition, error) {
	raw, ok := m[key]
	if !ok {
		return nil, errAt(path+"."+key, "missing")
	}
	items, ok := asSlice(raw)
	if !ok || len(items) == 0 {
		return nil, errAt(path+"."+key, "must be a non-empty array")
	}
	conds := make([]Condition, 0, len(items))
	for i, item := range items {
		c, err := decodeCondition(item, fmt.Sprintf("%s.%s[%d]", path, key, i))
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}
