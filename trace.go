package spac

import (
	"fmt"
	"runtime"
	"strings"
)

// CallSite is a (file, line) pair captured at combinator construction time,
// the way a Scala macro captures source position for spac's original
// diagnostic traces. Go has no macros, so CallSite is captured with
// runtime.Caller instead, on every call to a constructor that records one;
// no constructor accepts a CallSite from its caller.
type CallSite struct {
	File string
	Line int
}

func (c CallSite) String() string {
	if c.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}

// here captures the call site of its caller's caller — i.e. call it from a
// combinator constructor such as And2 or NewSplitter, not from a helper.
func here(skip int) CallSite {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallSite{}
	}
	return CallSite{File: file, Line: line}
}

// A SpacTraceElement is one entry of a SpacTrace: a record of which
// combinator, splitter, or input witnessed a failure on its way to the
// surface.
type SpacTraceElement interface {
	traceString() string
}

// InInput records the event that first witnessed a failure.
type InInput struct{ Input any }

func (e InInput) traceString() string { return fmt.Sprintf("in input %v", e.Input) }

// InInputContext records the event together with its source location.
type InInputContext struct {
	Input    any
	Location any
}

func (e InInputContext) traceString() string {
	return fmt.Sprintf("in input %v at %v", e.Input, e.Location)
}

// InSplitter records that a failure passed through a splitter's sub-parser
// dispatch, naming the matcher that opened the sub-stream.
type InSplitter struct {
	Matcher  string
	CallSite CallSite
}

func (e InSplitter) traceString() string {
	return fmt.Sprintf("in splitter %s (%s)", e.Matcher, e.CallSite)
}

// InCompound records that a failure came from one branch of a tuple/product
// composition (And2/And3).
type InCompound struct {
	BranchIndex int
	BranchCount int
	CallSite    CallSite
}

func (e InCompound) traceString() string {
	return fmt.Sprintf("in compound branch %d/%d (%s)", e.BranchIndex+1, e.BranchCount, e.CallSite)
}

// InParse records that a failure passed through a named parser combinator's
// entry point.
type InParse struct {
	ParserName string
	MethodName string
	CallSite   CallSite
}

func (e InParse) traceString() string {
	return fmt.Sprintf("in %s.%s (%s)", e.ParserName, e.MethodName, e.CallSite)
}

// A SpacTrace is the ordered, prepend-on-unwind diagnostic trail attached to
// every SpacError. The trace only grows as an error unwinds: elements are
// never lost or reordered (spac.md §8, "trace monotonicity").
type SpacTrace []SpacTraceElement

// With returns a copy of t with elem prepended.
func (t SpacTrace) With(elem SpacTraceElement) SpacTrace {
	out := make(SpacTrace, 0, len(t)+1)
	out = append(out, elem)
	out = append(out, t...)
	return out
}

// String renders a human-readable, multi-line trace suitable for logging,
// in the spirit of jtree's SyntaxError.Error() but listing the full path
// instead of a single location.
func (t SpacTrace) String() string {
	if len(t) == 0 {
		return "(no trace)"
	}
	var b strings.Builder
	for i, elem := range t {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %d: %s", i, elem.traceString())
	}
	return b.String()
}
