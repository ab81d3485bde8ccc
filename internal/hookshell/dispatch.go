package hookshell

import (
	"context"
	"fmt"
	"io"

	"github.com/antgroup/refhook/internal/change"
	"github.com/antgroup/refhook/internal/hookconfig"
	"github.com/antgroup/refhook/internal/policy"
	"github.com/antgroup/refhook/internal/pushopt"
	"github.com/antgroup/refhook/internal/trace"
	"github.com/sirupsen/logrus"
)

// ConfigSource is the subset of the git adapter the hook shell needs
// outside of a single change's facts: reading the policy file off the
// default branch and resolving which ref that branch is.
type ConfigSource interface {
	change.Adapter
	ShowFile(ctx context.Context, path string) (string, bool)
	DefaultBranch(ctx context.Context) (string, bool)
}

// LoadConfig tries each of hookconfig.DiscoveryNames in order against the
// repository's default branch, decoding the first one present. Absent any
// file, or a decode failure, it returns false — both are fail-open per
// spec.md §7 (a broken or missing policy must not block pushes).
func LoadConfig(ctx context.Context, source ConfigSource) (*hookconfig.Configuration, bool) {
	for _, candidate := range hookconfig.DiscoveryNames {
		content, ok := source.ShowFile(ctx, candidate.Name)
		if !ok {
			continue
		}
		config, err := hookconfig.Decode(candidate.Format, []byte(content))
		if err != nil {
			logrus.WithError(err).WithField("file", candidate.Name).Error("hookshell: configuration failed to decode; failing open")
			return nil, false
		}
		return config, true
	}
	return nil, false
}

// Outcome is the result of dispatching every change through a hook's rule.
type Outcome struct {
	ExitCode int
	Accept   []string
	Reject   []string
}

// Run evaluates hook's rule against each raw change in order (spec.md §5:
// stdin order, fully serialised), short of an earlier bypass. Accept
// messages accumulate from every Accept/Continue change; the first Reject
// or evaluation error (absent reject-on-error: false) ends evaluation with
// exit 1.
func Run(ctx context.Context, source ConfigSource, config *hookconfig.Configuration, hook *hookconfig.Hook, changes []RawChange, pushOptions []string, traceSink *trace.Sink, invoker policy.WebhookInvoker) Outcome {
	if config.Bypass != nil {
		for _, opt := range pushOptions {
			if opt == config.Bypass.PushOption {
				return Outcome{ExitCode: 0, Accept: config.Bypass.Messages}
			}
		}
	}

	defaultBranch, _ := source.DefaultBranch(ctx)
	resolver := change.NewResolver(source, defaultBranch)
	optionSet := policy.NewPushOptions(pushOptions)

	var accept, reject []string
	for _, raw := range changes {
		rc, ok := resolver.Resolve(ctx, raw.OldCommit, raw.NewCommit, raw.RefName)
		if !ok {
			continue
		}

		evalCtx := &policy.Context{
			DefaultBranch: defaultBranch,
			PushOptions:   optionSet,
			Change:        rc,
			Config:        config,
			Trace:         traceSink,
			Adapter:       source,
			Webhook:       invoker,
		}

		result, err := policy.EvaluateRule(ctx, hook.Rule, evalCtx, 0)
		if err != nil {
			if !hook.RejectOnError {
				accept = append(accept, fmt.Sprintf("policy evaluation error ignored for %s: %s", rc.Name, err))
				continue
			}
			reject = append(reject, fmt.Sprintf("policy evaluation error for %s: %s", rc.Name, err))
			return Outcome{ExitCode: 1, Accept: accept, Reject: reject}
		}

		switch result.Action {
		case hookconfig.ActionReject:
			reject = append(reject, result.Messages...)
			return Outcome{ExitCode: 1, Accept: accept, Reject: reject}
		default:
			accept = append(accept, result.Messages...)
		}
	}
	return Outcome{ExitCode: 0, Accept: accept, Reject: reject}
}

// PushOptionsFromEnviron re-exports pushopt.FromEnviron for callers that
// only import hookshell.
func PushOptionsFromEnviron() []string {
	return pushopt.FromEnviron()
}

// Write prints an Outcome's accept messages to stdout and reject messages
// to stderr, per spec.md §7's stream split.
func (o Outcome) Write(stdout, stderr io.Writer) {
	for _, msg := range o.Accept {
		fmt.Fprintln(stdout, msg)
	}
	for _, msg := range o.Reject {
		fmt.Fprintln(stderr, msg)
	}
}
