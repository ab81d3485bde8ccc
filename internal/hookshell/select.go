// Package hookshell is the process-facing dispatch layer: it selects which
// of {pre-receive, update, post-receive} the current invocation is, reads
// the changes off stdin or os.Args, and drives each one through the policy
// evaluator to a process exit code. Grounded on the original source's
// configuration.rs (hook selection by executable name) and main.rs (stdin
// line / positional change parsing).
package hookshell

import (
	"path/filepath"
	"strings"

	"github.com/antgroup/refhook/internal/hookconfig"
)

// Type identifies which of the three hook entry points was invoked.
type Type int

const (
	TypePreReceive Type = iota
	TypeUpdate
	TypePostReceive
)

func (t Type) String() string {
	switch t {
	case TypePreReceive:
		return "pre-receive"
	case TypeUpdate:
		return "update"
	case TypePostReceive:
		return "post-receive"
	default:
		return "unknown"
	}
}

func hookByName(config *hookconfig.Configuration, name string) (*hookconfig.Hook, Type, bool) {
	switch name {
	case "pre-receive":
		if config.PreReceive != nil {
			return config.PreReceive, TypePreReceive, true
		}
	case "update":
		if config.Update != nil {
			return config.Update, TypeUpdate, true
		}
	case "post-receive":
		if config.PostReceive != nil {
			return config.PostReceive, TypePostReceive, true
		}
	}
	return nil, 0, false
}

// SelectHook matches argv0 against {pre-receive, update, post-receive} by
// its base name, falling back to the parent directory's name (with a
// trailing ".d" stripped) when the base name doesn't match — the layout
// git server implementations use for hook chaining (e.g.
// "hooks/pre-receive.d/50-policy").
func SelectHook(config *hookconfig.Configuration, argv0 string) (*hookconfig.Hook, Type, bool) {
	base := filepath.Base(argv0)
	if hook, kind, ok := hookByName(config, base); ok {
		return hook, kind, true
	}

	parent := filepath.Base(filepath.Dir(argv0))
	parent = strings.TrimSuffix(parent, ".d")
	return hookByName(config, parent)
}
