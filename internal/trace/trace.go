// Package trace implements the diagnostic tracing stream emitted by the
// condition evaluator when a configuration enables it. The wire format is
// fixed so external tooling can grep for it: external consumers match the
// literal "trace: " prefix, so the format must not go through logrus or
// pick up level/timestamp decoration.
package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Sink accumulates "before"/"after" trace lines for a single condition
// evaluation tree. A nil *Sink (or one built with Disabled) is a no-op,
// so callers can unconditionally thread a *Sink through the evaluator
// without branching on whether tracing is enabled.
type Sink struct {
	w       io.Writer
	enabled bool
}

// NewSink returns a Sink that writes to w when enabled is true, and
// discards everything otherwise.
func NewSink(w io.Writer, enabled bool) *Sink {
	if w == nil {
		w = os.Stderr
	}
	return &Sink{w: w, enabled: enabled}
}

// Disabled is a Sink that discards every trace line.
var Disabled = &Sink{enabled: false}

func (s *Sink) on() bool {
	return s != nil && s.enabled
}

// Enter writes the "before" line for a condition evaluation at the given
// depth: trace: {dashes of length depth}> {description}
func (s *Sink) Enter(depth int, description string) {
	if !s.on() {
		return
	}
	fmt.Fprintf(s.w, "trace: %s> %s\n", strings.Repeat("-", depth), description)
}

// Result writes the "after" line for a condition evaluation at the given
// depth: trace: {dashes}> Result: {value-or-error}
func (s *Sink) Result(depth int, value string) {
	if !s.on() {
		return
	}
	fmt.Fprintf(s.w, "trace: %s> Result: %s\n", strings.Repeat("-", depth), value)
}
