// Package policy implements the condition and rule evaluators: the
// recursive core that walks a hookconfig.Rule/Condition tree against one
// change and produces an accept/reject/continue outcome.
package policy

import (
	"github.com/antgroup/refhook/internal/change"
	"github.com/antgroup/refhook/internal/hookconfig"
	"github.com/antgroup/refhook/internal/trace"
	"github.com/emirpasic/gods/sets/hashset"
)

// Context is the ambient state every condition and rule evaluation reads
// from, threaded down through Evaluate rather than held in package state —
// spec.md §4.4 calls it out as {default_branch, push_options, change,
// config_root}.
type Context struct {
	DefaultBranch string
	PushOptions   *hashset.Set
	Change        *change.RefChange
	Config        *hookconfig.Configuration
	Trace         *trace.Sink

	// Adapter backs derived-from-* conditions, which need a merge-base
	// lookup against an arbitrary ref name rather than one of the
	// change's own precomputed bases.
	Adapter change.Adapter

	// Webhook is the invoker a Webhook rule leaf dispatches through. A
	// hook whose rule tree never reaches a Webhook node can leave this
	// nil.
	Webhook WebhookInvoker
}

// HasPushOption reports whether opt occurs in the pusher's push-option
// list, backing bypass-requested (SPEC_FULL.md §4.7). The top-level bypass
// check in hookshell.Run scans the raw push-option slice instead.
func (c *Context) HasPushOption(opt string) bool {
	if c.PushOptions == nil {
		return false
	}
	return c.PushOptions.Contains(opt)
}

// NewPushOptions builds the membership set the hook shell passes into a
// Context from the raw GIT_PUSH_OPTION_{i} values.
func NewPushOptions(options []string) *hashset.Set {
	values := make([]interface{}, len(options))
	for i, o := range options {
		values[i] = o
	}
	return hashset.New(values...)
}
