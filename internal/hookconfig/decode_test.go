package hookconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeJSONHappyPathAccept(t *testing.T) {
	data := []byte(`{"version":"1","pre-receive":{"rule":{"type":"accept","messages":["ok"]}}}`)
	cfg, err := Decode(FormatJSON, data)
	require.NoError(t, err)
	require.NotNil(t, cfg.PreReceive)
	accept, ok := cfg.PreReceive.Rule.(AcceptRule)
	require.True(t, ok)
	require.Equal(t, []string{"ok"}, accept.Messages)
	require.True(t, cfg.PreReceive.RejectOnError)
}

func TestDecodeSelectWithDefault(t *testing.T) {
	data := []byte(`{
		"version":"1",
		"pre-receive":{"rule":{
			"type":"select",
			"first-of":[{"condition":{"type":"ref-matches","pattern":"^refs/heads/release/.*$"},
			             "rule":{"type":"reject","messages":["release branches are protected"]}}],
			"default":{"type":"accept","messages":[]}
		}}
	}`)
	cfg, err := Decode(FormatJSON, data)
	require.NoError(t, err)
	sel, ok := cfg.PreReceive.Rule.(SelectRule)
	require.True(t, ok)
	require.Len(t, sel.FirstOf, 1)
	require.NotNil(t, sel.Default)
}

func TestDecodeConditionalRuleUntagged(t *testing.T) {
	data := []byte(`{
		"version":"1",
		"update":{"rule":{"condition":{"type":"true"},"on-success":{"action":"continue","messages":[]}}}
	}`)
	cfg, err := Decode(FormatJSON, data)
	require.NoError(t, err)
	cond, ok := cfg.Update.Rule.(ConditionalRule)
	require.True(t, ok)
	require.NotNil(t, cond.OnSuccess)
	require.Equal(t, ActionContinue, cond.OnSuccess.Action)
}

func TestDecodeWebhookTimeouts(t *testing.T) {
	data := []byte(`{
		"version":"1",
		"pre-receive":{"rule":{"type":"webhook","url":"http://stub/v","request-timeout":100,"connect-timeout":100}}
	}`)
	cfg, err := Decode(FormatJSON, data)
	require.NoError(t, err)
	wh, ok := cfg.PreReceive.Rule.(WebhookRule)
	require.True(t, ok)
	require.Equal(t, 100_000_000, int(wh.RequestTimeout))
	require.Equal(t, 100_000_000, int(wh.ConnectTimeout))
}

func TestDecodeEmptyPatternRejected(t *testing.T) {
	data := []byte(`{
		"version":"1",
		"pre-receive":{"rule":{"type":"select","first-of":[
			{"condition":{"type":"ref-matches","pattern":""},"rule":{"type":"accept","messages":[]}}
		]}}
	}`)
	_, err := Decode(FormatJSON, data)
	require.Error(t, err)
}

func TestDecodeYAMLEquivalentToJSON(t *testing.T) {
	data := []byte("version: \"1\"\npre-receive:\n  rule:\n    type: accept\n    messages: [\"ok\"]\n")
	cfg, err := Decode(FormatYAML, data)
	require.NoError(t, err)
	accept, ok := cfg.PreReceive.Rule.(AcceptRule)
	require.True(t, ok)
	require.Equal(t, []string{"ok"}, accept.Messages)
}

func TestDecodeTOMLEquivalentToJSON(t *testing.T) {
	data := []byte("version = \"1\"\n\n[pre-receive.rule]\ntype = \"accept\"\nmessages = [\"ok\"]\n")
	cfg, err := Decode(FormatTOML, data)
	require.NoError(t, err)
	accept, ok := cfg.PreReceive.Rule.(AcceptRule)
	require.True(t, ok)
	require.Equal(t, []string{"ok"}, accept.Messages)
}

func TestDecodeUnsupportedVersionRejected(t *testing.T) {
	data := []byte(`{"version":"2"}`)
	_, err := Decode(FormatJSON, data)
	require.Error(t, err)
}

func TestDecodeBypass(t *testing.T) {
	data := []byte(`{"version":"1","bypass":{"push-option":"skip-hooks","messages":["bypassed"]}}`)
	cfg, err := Decode(FormatJSON, data)
	require.NoError(t, err)
	require.NotNil(t, cfg.Bypass)
	require.Equal(t, "skip-hooks", cfg.Bypass.PushOption)
}

func TestDecodeXorSingleChild(t *testing.T) {
	data := []byte(`{
		"version":"1",
		"pre-receive":{"rule":{"type":"select","first-of":[
			{"condition":{"type":"xor","conditions":[{"type":"true"}]},"rule":{"type":"accept","messages":[]}}
		],"default":{"type":"reject","messages":[]}}}
	}`)
	cfg, err := Decode(FormatJSON, data)
	require.NoError(t, err)
	sel := cfg.PreReceive.Rule.(SelectRule)
	xor, ok := sel.FirstOf[0].Condition.(XorCondition)
	require.True(t, ok)
	require.Len(t, xor.Conditions, 1)
}
