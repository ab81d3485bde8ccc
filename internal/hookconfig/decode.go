package hookconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DecodeError reports a configuration-schema violation: an unknown rule or
// condition tag, a malformed pattern, an out-of-range timeout, or a
// structurally wrong node. Every DecodeError is treated as fail-open by the
// hook shell (spec.md §7): the process exits 0 without evaluating.
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func errAt(path, format string, args ...any) error {
	return &DecodeError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// Format identifies which decoder a discovery-order config file name uses
// (hooks.yaml and hooks.yml share FormatYAML).
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

// DiscoveryNames lists hooks.json/hooks.yaml/hooks.yml/hooks.toml in the
// priority order spec.md §6 mandates for config file discovery.
var DiscoveryNames = []struct {
	Name   string
	Format Format
}{
	{"hooks.json", FormatJSON},
	{"hooks.yaml", FormatYAML},
	{"hooks.yml", FormatYAML},
	{"hooks.toml", FormatTOML},
}

// Decode parses raw config bytes of the given format into a Configuration.
// All three formats funnel through the same generic-tree walk so the
// tagged-first/untagged-fallback Rule rule (spec.md §9) and kebab-case
// field names behave identically regardless of which format a repository
// picked.
func Decode(format Format, data []byte) (*Configuration, error) {
	tree, err := decodeTree(format, data)
	if err != nil {
		return nil, errAt("", "parse: %v", err)
	}
	root, ok := tree.(map[string]any)
	if !ok {
		return nil, errAt("", "configuration root must be an object")
	}
	version, ok := stringField(root, "version")
	if !ok || version != "1" {
		return nil, errAt("version", "unsupported or missing configuration version %q", version)
	}
	cfg := &Configuration{}
	if v, ok := root["pre-receive"]; ok {
		h, err := decodeHook(v, "pre-receive")
		if err != nil {
			return nil, err
		}
		cfg.PreReceive = h
	}
	if v, ok := root["update"]; ok {
		h, err := decodeHook(v, "update")
		if err != nil {
			return nil, err
		}
		cfg.Update = h
	}
	if v, ok := root["post-receive"]; ok {
		h, err := decodeHook(v, "post-receive")
		if err != nil {
			return nil, err
		}
		cfg.PostReceive = h
	}
	if v, ok := root["bypass"]; ok {
		b, err := decodeBypass(v)
		if err != nil {
			return nil, err
		}
		cfg.Bypass = b
	}
	if v, ok := root["trace"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, errAt("trace", "must be a boolean")
		}
		cfg.Trace = b
	}
	return cfg, nil
}

func decodeTree(format Format, data []byte) (any, error) {
	switch format {
	case FormatJSON:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return normalizeJSONTree(v), nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return normalizeYAMLTree(v), nil
	case FormatTOML:
		var v map[string]any
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown config format %d", format)
	}
}

// normalizeJSONTree converts json.Unmarshal's map[string]interface{}/
// []interface{} tree (already what we want) into itself; present for
// symmetry with normalizeYAMLTree and as a single choke point if
// json.Number decoding is ever introduced.
func normalizeJSONTree(v any) any {
	return v
}

// normalizeYAMLTree walks a yaml.v3-decoded tree and converts any
// map[any]any nodes (which yaml.v3 only produces for non-string keys) into
// map[string]any so the rest of the walker can assume string keys
// uniformly across all three formats.
func normalizeYAMLTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAMLTree(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAMLTree(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAMLTree(val)
		}
		return out
	default:
		return v
	}
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolField(m map[string]any, key string, def bool) bool {
	v, ok := m[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func stringSliceField(m map[string]any, key string) ([]string, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	raw, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// durationField reads a timeout either as a plain number of milliseconds
// (the wire format the original implementation used) or as a Go duration
// string like "100ms", matching serve.Duration's UnmarshalText tolerance
// for human-readable config.
func durationField(m map[string]any, key string) (time.Duration, bool, error) {
	v, ok := m[key]
	if !ok {
		return 0, false, nil
	}
	switch t := v.(type) {
	case float64:
		return time.Duration(t) * time.Millisecond, true, nil
	case int:
		return time.Duration(t) * time.Millisecond, true, nil
	case int64:
		return time.Duration(t) * time.Millisecond, true, nil
	case string:
		d, err := time.ParseDuration(t)
		if err != nil {
			return 0, false, errAt(key, "invalid duration %q: %v", t, err)
		}
		return d, true, nil
	default:
		return 0, false, errAt(key, "must be a number of milliseconds or a duration string")
	}
}

func compilePattern(path, raw string) (*regexp.Regexp, error) {
	if raw == "" {
		return nil, errAt(path, "pattern must not be empty")
	}
	re, err := regexp.Compile(raw)
	if err != nil {
		return nil, errAt(path, "invalid regular expression %q: %v", raw, err)
	}
	return re, nil
}

func decodeBypass(v any) (*HookBypass, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, errAt("bypass", "must be an object")
	}
	opt, ok := stringField(m, "push-option")
	if !ok || opt == "" {
		return nil, errAt("bypass.push-option", "must be a non-empty string")
	}
	msgs, _ := stringSliceField(m, "messages")
	return &HookBypass{PushOption: opt, Messages: msgs}, nil
}

func decodeHook(v any, path string) (*Hook, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, errAt(path, "must be an object")
	}
	ruleVal, ok := m["rule"]
	if !ok {
		return nil, errAt(path+".rule", "missing")
	}
	rule, err := decodeRule(ruleVal, path+".rule")
	if err != nil {
		return nil, err
	}
	return &Hook{Rule: rule, RejectOnError: boolField(m, "reject-on-error", true)}, nil
}
