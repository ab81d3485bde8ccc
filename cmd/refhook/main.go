// Command refhook is the single binary all three server-side hook entry
// points symlink to; it tells them apart by argv[0] (see
// internal/hookshell.SelectHook).
package main

import (
	"context"
	"os"

	"github.com/antgroup/refhook/internal/gitadapter"
	"github.com/antgroup/refhook/internal/hookshell"
	"github.com/antgroup/refhook/internal/trace"
	"github.com/antgroup/refhook/internal/webhook"
	"github.com/sirupsen/logrus"
)

// resultCacheCounters/resultCacheMiB size the adapter's memoization cache;
// a hook invocation is short-lived so a modest cache is enough to avoid
// redundant merge-base and show-file calls across a rule tree's repeated
// probes of the same change.
const (
	resultCacheCounters = 1e4
	resultCacheMiB      = 8
)

func main() {
	os.Exit(run())
}

func run() int {
	repoPath, err := os.Getwd()
	if err != nil {
		logrus.WithError(err).Error("refhook: unable to determine repository path")
		return 0
	}

	adapter, err := gitadapter.New(repoPath, resultCacheCounters, resultCacheMiB)
	if err != nil {
		logrus.WithError(err).Error("refhook: unable to initialize git adapter")
		return 0
	}

	ctx := context.Background()
	config, ok := hookshell.LoadConfig(ctx, adapter)
	if !ok {
		// No policy file, or it failed to parse: fail open (spec.md §7).
		return 0
	}

	hook, kind, ok := hookshell.SelectHook(config, os.Args[0])
	if !ok {
		return 0
	}

	var changes []hookshell.RawChange
	switch kind {
	case hookshell.TypeUpdate:
		rc, err := hookshell.ParseUpdateArgs(os.Args[1:])
		if err != nil {
			logrus.WithError(err).Error("refhook: malformed update invocation")
			return 0
		}
		changes = []hookshell.RawChange{rc}
	default:
		changes, err = hookshell.ReadStdinChanges(os.Stdin)
		if err != nil {
			logrus.WithError(err).Error("refhook: malformed stdin change stream")
			return 0
		}
	}

	pushOptions := hookshell.PushOptionsFromEnviron()
	traceSink := trace.NewSink(os.Stderr, config.Trace)
	invoker := webhook.NewInvoker(os.Stdout, logrus.StandardLogger())

	outcome := hookshell.Run(ctx, adapter, config, hook, changes, pushOptions, traceSink, invoker)
	outcome.Write(os.Stdout, os.Stderr)
	return outcome.ExitCode
}
