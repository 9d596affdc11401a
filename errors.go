package spac

import "fmt"

// SpacError is the interface satisfied by every failure the engine raises.
// It carries a SpacTrace in addition to a message, the way
// github.com/creachadair/jtree's *SyntaxError carries a Location alongside
// its message. CaughtError and FallbackChainError implement Unwrap so
// errors.Is/errors.As reach the causes they wrap; the other concrete types
// carry no cause and have no Unwrap.
type SpacError interface {
	error
	Trace() SpacTrace
	withTrace(SpacTrace) SpacError
}

// asSpacError wraps err as a SpacError if it is not already one.
func asSpacError(err error) SpacError {
	if se, ok := err.(SpacError); ok {
		return se
	}
	return &CaughtError{Cause: err}
}

// addTrace returns a copy of se with elem prepended to its trace. It is the
// single place every trace-adding combinator (splitter dispatch, compound
// branches, parser entry points) goes through.
func addTrace(se SpacError, elem SpacTraceElement) SpacError {
	return se.withTrace(se.Trace().With(elem))
}

type baseError struct{ trace SpacTrace }

func (b baseError) Trace() SpacTrace { return b.trace }

// MissingFirstError is raised by First when the input ends before any value
// arrives.
type MissingFirstError struct {
	baseError
}

func (e *MissingFirstError) Error() string {
	return "spac: no input was available for First" + traceSuffix(e.trace)
}
func (e *MissingFirstError) withTrace(t SpacTrace) SpacError {
	return &MissingFirstError{baseError{t}}
}

// UnexpectedInputError is raised by ExpectInputs when an input fails the
// next expected predicate.
type UnexpectedInputError struct {
	baseError
	Input        any
	Expectations []string // labels of expectations not yet satisfied
}

func (e *UnexpectedInputError) Error() string {
	return fmt.Sprintf("spac: unexpected input %v, still expecting %v%s", e.Input, e.Expectations, traceSuffix(e.trace))
}
func (e *UnexpectedInputError) withTrace(t SpacTrace) SpacError {
	e2 := *e
	e2.trace = t
	return &e2
}

// UnfulfilledInputsError is raised by ExpectInputs when the stream ends
// with expectations still outstanding.
type UnfulfilledInputsError struct {
	baseError
	Expectations []string
}

func (e *UnfulfilledInputsError) Error() string {
	return fmt.Sprintf("spac: input ended with unfulfilled expectations %v%s", e.Expectations, traceSuffix(e.trace))
}
func (e *UnfulfilledInputsError) withTrace(t SpacTrace) SpacError {
	e2 := *e
	e2.trace = t
	return &e2
}

// FallbackChainError is raised by OrElse when every branch has failed. The
// order of UnderlyingErrors is the order in which each branch failed (not
// the order the branches appear in the chain) — see DESIGN.md's Open
// Question decision.
type FallbackChainError struct {
	baseError
	UnderlyingErrors []error
}

func (e *FallbackChainError) Error() string {
	return fmt.Sprintf("spac: all %d fallback branches failed: %v%s", len(e.UnderlyingErrors), e.UnderlyingErrors, traceSuffix(e.trace))
}
func (e *FallbackChainError) withTrace(t SpacTrace) SpacError {
	e2 := *e
	e2.trace = t
	return &e2
}
func (e *FallbackChainError) Unwrap() []error { return e.UnderlyingErrors }

// CaughtError wraps a non-engine error raised from user-supplied code (a
// map function, a fold step, a predicate), attaching a SpacTrace to it.
type CaughtError struct {
	baseError
	Cause error
}

func (e *CaughtError) Error() string {
	return fmt.Sprintf("spac: %v%s", e.Cause, traceSuffix(e.trace))
}
func (e *CaughtError) Unwrap() error { return e.Cause }
func (e *CaughtError) withTrace(t SpacTrace) SpacError {
	e2 := *e
	e2.trace = t
	return &e2
}

func traceSuffix(t SpacTrace) string {
	if len(t) == 0 {
		return ""
	}
	return "\n" + t.String()
}
