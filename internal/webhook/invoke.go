// Package webhook is the outbound leaf of the rule evaluator: it serialises
// a change plus its evaluation context into the fixed JSON envelope,
// performs the single configured HTTP request, and decodes the response
// into a policy.RuleResult. Grounded on the original source's webhook.rs,
// translated from reqwest's blocking client to net/http.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/antgroup/refhook/internal/gitlabmeta"
	"github.com/antgroup/refhook/internal/hookconfig"
	"github.com/antgroup/refhook/internal/policy"
	"github.com/antgroup/refhook/internal/pushopt"
	"github.com/sirupsen/logrus"
)

// RequestError wraps a failure to encode or build the request, a transport
// failure, or a failure reading the response body (spec.md §7's
// Request-class webhook error). A response body that does not decode as a
// message list is not an error: it yields an empty message list.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("webhook request to %s failed: %s", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Invoker performs the single HTTP call a Webhook rule leaf describes. It
// satisfies policy.WebhookInvoker.
type Invoker struct {
	// Greeting is where GreetingMessages are written before the network
	// call (the pusher-visible accept stream); nil discards them.
	Greeting io.Writer
	Log      *logrus.Logger
}

// NewInvoker builds an Invoker writing greeting messages to w.
func NewInvoker(w io.Writer, log *logrus.Logger) *Invoker {
	return &Invoker{Greeting: w, Log: log}
}

func (inv *Invoker) Invoke(ctx context.Context, rule hookconfig.WebhookRule, evalCtx *policy.Context) (policy.RuleResult, error) {
	connectTimeout, requestTimeout, err := resolveTimeouts(rule.RequestTimeout, rule.HasRequestTO, rule.ConnectTimeout, rule.HasConnectTO)
	if err != nil {
		return policy.RuleResult{}, err
	}

	for _, msg := range rule.GreetingMessages {
		if inv.Greeting != nil {
			fmt.Fprintln(inv.Greeting, msg)
		}
	}

	body, err := json.Marshal(inv.buildEnvelope(ctx, rule, evalCtx))
	if err != nil {
		return policy.RuleResult{}, &RequestError{URL: rule.URL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rule.URL, bytes.NewReader(body))
	if err != nil {
		return policy.RuleResult{}, &RequestError{URL: rule.URL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := buildClient(connectTimeout, requestTimeout)
	resp, err := client.Do(req)
	if err != nil {
		return policy.RuleResult{}, &RequestError{URL: rule.URL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return policy.RuleResult{}, &RequestError{URL: rule.URL, Err: err}
	}

	var messages []string
	if jsonErr := json.Unmarshal(respBody, &messages); jsonErr != nil {
		if inv.Log != nil {
			inv.Log.WithError(jsonErr).WithField("url", rule.URL).Debug("webhook response body did not decode as a message list")
		}
		messages = nil
	}

	action := hookconfig.ActionReject
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		action = hookconfig.ActionContinue
	}
	return policy.RuleResult{Action: action, Messages: messages}, nil
}

func (inv *Invoker) buildEnvelope(ctx context.Context, rule hookconfig.WebhookRule, evalCtx *policy.Context) envelope {
	sig, hasSig := PushSignatureFromEnviron()
	meta, hasMeta := gitlabmeta.FromEnviron()

	var sigWire *signatureWire
	if hasSig {
		sigWire = buildSignatureWire(sig)
	}

	return envelope{
		Version:       "1",
		DefaultBranch: evalCtx.DefaultBranch,
		Config:        rule.Config,
		Changes:       []changeWire{buildChangeWire(ctx, evalCtx.Change)},
		PushOptions:   pushopt.FromEnviron(),
		Signature:     sigWire,
		Metadata:      buildMetadataWire(meta, hasMeta),
	}
}
