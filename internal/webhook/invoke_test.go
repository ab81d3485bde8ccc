package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/antgroup/refhook/internal/change"
	"github.com/antgroup/refhook/internal/hookconfig"
	"github.com/antgroup/refhook/internal/policy"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct{}

func (stubAdapter) Diff(ctx context.Context, oldCommit, newCommit string) (string, bool) {
	return "diff", true
}
func (stubAdapter) DiffNameStatus(ctx context.Context, oldCommit, newCommit string) ([]change.FileStatusEntry, bool) {
	return nil, true
}
func (stubAdapter) LogRange(ctx context.Context, from, to string) []change.CommitLogEntry {
	return []change.CommitLogEntry{{Hash: to}}
}
func (stubAdapter) LogLimited(ctx context.Context, n int, to string) []change.CommitLogEntry {
	return []change.CommitLogEntry{{Hash: to}}
}
func (stubAdapter) MergeBase(ctx context.Context, a, b string) (string, bool) { return "", false }

func updateChange() *change.RefChange {
	rc := &change.RefChange{
		Kind:      change.KindUpdate,
		Name:      "refs/heads/main",
		OldCommit: "oldsha",
		NewCommit: "newsha",
	}
	rc.Facts = change.NewFacts(stubAdapter{}, "newsha", "oldsha", true, "oldsha", true)
	return rc
}

func evalContext() *policy.Context {
	return &policy.Context{DefaultBranch: "main", PushOptions: policy.NewPushOptions(nil), Change: updateChange()}
}

// S6 — webhook translation (spec.md §8): HTTP 200 body ["hi"] yields
// Continue/["hi"]; HTTP 403 body ["nope"] yields Reject/["nope"].
func TestInvokeSuccessMapsToContinue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env envelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		require.Equal(t, "1", env.Version)
		require.Equal(t, "main", env.DefaultBranch)
		require.Len(t, env.Changes, 1)
		require.Equal(t, "update", env.Changes[0].Type)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`["hi"]`))
	}))
	defer srv.Close()

	inv := NewInvoker(nil, nil)
	rule := hookconfig.WebhookRule{URL: srv.URL}
	result, err := inv.Invoke(context.Background(), rule, evalContext())
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionContinue, result.Action)
	require.Equal(t, []string{"hi"}, result.Messages)
}

func TestInvokeFailureMapsToReject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`["nope"]`))
	}))
	defer srv.Close()

	inv := NewInvoker(nil, nil)
	rule := hookconfig.WebhookRule{URL: srv.URL}
	result, err := inv.Invoke(context.Background(), rule, evalContext())
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionReject, result.Action)
	require.Equal(t, []string{"nope"}, result.Messages)
}

func TestInvokeUndecodableBodyYieldsEmptyMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	inv := NewInvoker(nil, nil)
	result, err := inv.Invoke(context.Background(), hookconfig.WebhookRule{URL: srv.URL}, evalContext())
	require.NoError(t, err)
	require.Equal(t, hookconfig.ActionContinue, result.Action)
	require.Empty(t, result.Messages)
}

func TestInvokeRequestTimeoutExceedingMaximumIsValidationError(t *testing.T) {
	inv := NewInvoker(nil, nil)
	rule := hookconfig.WebhookRule{URL: "http://example.invalid", RequestTimeout: 30 * time.Second, HasRequestTO: true}
	_, err := inv.Invoke(context.Background(), rule, evalContext())
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestInvokeConnectTimeoutExceedingMaximumIsValidationError(t *testing.T) {
	inv := NewInvoker(nil, nil)
	rule := hookconfig.WebhookRule{URL: "http://example.invalid", ConnectTimeout: 10 * time.Second, HasConnectTO: true}
	_, err := inv.Invoke(context.Background(), rule, evalContext())
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestInvokeGreetingMessagesWrittenBeforeRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	inv := NewInvoker(&buf, nil)
	rule := hookconfig.WebhookRule{URL: srv.URL, GreetingMessages: []string{"hang on"}}
	_, err := inv.Invoke(context.Background(), rule, evalContext())
	require.NoError(t, err)
	require.Equal(t, "hang on\n", buf.String())
}

func TestInvokeTransportErrorIsRequestError(t *testing.T) {
	inv := NewInvoker(nil, nil)
	rule := hookconfig.WebhookRule{URL: "http://127.0.0.1:0"}
	_, err := inv.Invoke(context.Background(), rule, evalContext())
	require.Error(t, err)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
}
