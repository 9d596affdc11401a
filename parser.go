package spac

import (
	"fmt"
	"io"
)

// A Parser is a stateless factory for Handler[In, Out] instances that each
// produce exactly one result. Parsers are immutable values: constructing
// one is cheap, and the same Parser may drive any number of independent
// parses concurrently, mirroring the "pure construction" contract jtree's
// parseHandler meets by never sharing state between calls to its own
// constructors.
type Parser[In, Out any] struct {
	newHandler func() Handler[In, Out]
	name       string

	// orElseBranches is non-nil only for a Parser built by OrElse; it holds
	// the flattened branch list so that p.OrElse(q).OrElse(r) produces one
	// three-way fallback chain instead of a chain of chains (spac.md §4.3:
	// "self-flattening").
	orElseBranches []Parser[In, Out]
}

// NewHandler produces a fresh Handler. Combinators call this once per
// parse; user code normally goes through Parse or ParseSeq instead.
func (p Parser[In, Out]) NewHandler() Handler[In, Out] { return p.newHandler() }

func namedParser[In, Out any](name string, newHandler func() Handler[In, Out]) Parser[In, Out] {
	return Parser[In, Out]{newHandler: newHandler, name: name}
}

// FromHandlerFactory builds a Parser around a caller-supplied Handler
// factory, the escape hatch for terminal handlers spac's core does not
// itself provide (a custom accumulator, a lookahead gate keyed on
// domain-specific input values, ...). name is used only for diagnostics,
// the same role it plays for every built-in combinator.
func FromHandlerFactory[In, Out any](name string, newHandler func() Handler[In, Out]) Parser[In, Out] {
	return namedParser(name, newHandler)
}

// Parse drives src through a fresh handler from p and returns its final
// result, the driver loop spac.md §4.1 describes: feed events one at a
// time until the handler finishes or the source ends, converting any
// SpacError raised along the way into a plain error return — the same role
// jtree's Stream.Parse plays for its own Handler. The error, if any, gets
// one InParse trace element naming this call site.
func (p Parser[In, Out]) Parse(src TokenSource[In]) (out Out, err error) {
	site := here(1)
	defer p.tracedRecover(&err, "Parse", site)
	h := p.newHandler()
	return drive(h, src)
}

// ParseSeq drives p over an in-memory sequence rather than a TokenSource,
// for tests and for callers who already have their events in a slice.
func (p Parser[In, Out]) ParseSeq(xs []In) (out Out, err error) {
	site := here(1)
	defer p.tracedRecover(&err, "ParseSeq", site)
	h := p.newHandler()
	src := sliceSource[In](xs)
	return drive[In, Out](h, &src)
}

func (p Parser[In, Out]) tracedRecover(errp *error, method string, site CallSite) {
	if r := recover(); r != nil {
		se, ok := r.(SpacError)
		if !ok {
			panic(r)
		}
		name := p.name
		if name == "" {
			name = "Parser"
		}
		*errp = addTrace(se, InParse{ParserName: name, MethodName: method, CallSite: site})
	}
}

// drive is the shared driver loop used by Parse/ParseSeq and by every
// combinator that needs to run a sub-parser to completion eagerly (none
// currently do; combinators instead forward events to still-live
// handlers). It is kept separate from Parse so the "end of input" and
// "error" cases are expressed exactly once.
func drive[In, Out any](h Handler[In, Out], src TokenSource[In]) (Out, error) {
	if h.Finished() {
		return h.HandleEnd(), nil
	}
	for {
		in, err := src.Next()
		if err != nil {
			return driveEnd(h, err)
		}
		if out, done := h.HandleInput(in); done {
			return out, nil
		}
	}
}

func driveEnd[In, Out any](h Handler[In, Out], srcErr error) (Out, error) {
	if srcErr == errEndOfInput || srcErr == io.EOF {
		return h.HandleEnd(), nil
	}
	if out, done := h.HandleError(srcErr); done {
		return out, nil
	}
	raise(asSpacError(srcErr))
	panic("unreachable")
}

// errEndOfInput is returned by sliceSource once exhausted. Concrete token
// sources use io.EOF; driveEnd treats either one as the end of input and
// any other error as a source failure.
var errEndOfInput = endOfInputError{}

type endOfInputError struct{}

func (endOfInputError) Error() string { return "spac: end of input" }

type sliceSource[In any] []In

func (s *sliceSource[In]) Next() (In, error) {
	if len(*s) == 0 {
		var zero In
		return zero, errEndOfInput
	}
	in := (*s)[0]
	*s = (*s)[1:]
	return in, nil
}

// Option is the Go stand-in for spac.md's Option<T>, used by FirstOpt.
type Option[T any] struct {
	Value   T
	Present bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] { return Option[T]{Value: v, Present: true} }

// None reports an absent value.
func None[T any]() Option[T] { var zero T; return Option[T]{Value: zero} }

// First builds a Parser that finishes with the first input it sees, or
// raises MissingFirstError if the stream ends before any input arrives.
func First[In any]() Parser[In, In] {
	return namedParser("First", func() Handler[In, In] {
		return &firstHandler[In]{}
	})
}

type firstHandler[In any] struct{ finishedFlag }

func (h *firstHandler[In]) HandleInput(in In) (In, bool) {
	h.finish()
	return in, true
}
func (h *firstHandler[In]) HandleError(err error) (In, bool) {
	var zero In
	return zero, false
}
func (h *firstHandler[In]) HandleEnd() In {
	raise(&MissingFirstError{})
	panic("unreachable")
}

// FirstOpt is like First but reports None instead of raising when the
// stream ends before any input arrives.
func FirstOpt[In any]() Parser[In, Option[In]] {
	return namedParser("FirstOpt", func() Handler[In, Option[In]] {
		return &firstOptHandler[In]{}
	})
}

type firstOptHandler[In any] struct{ finishedFlag }

func (h *firstOptHandler[In]) HandleInput(in In) (Option[In], bool) {
	h.finish()
	return Some(in), true
}
func (h *firstOptHandler[In]) HandleError(err error) (Option[In], bool) {
	return Option[In]{}, false
}
func (h *firstOptHandler[In]) HandleEnd() Option[In] { return None[In]() }

// ToList buffers every input it sees, never finishing on its own; its
// result is the buffered list, produced only when the stream ends.
func ToList[In any]() Parser[In, []In] {
	return namedParser("ToList", func() Handler[In, []In] {
		return &toListHandler[In]{}
	})
}

type toListHandler[In any] struct {
	finishedFlag
	items []In
}

func (h *toListHandler[In]) HandleInput(in In) ([]In, bool) {
	h.items = append(h.items, in)
	return nil, false
}
func (h *toListHandler[In]) HandleError(err error) ([]In, bool) { return nil, false }
func (h *toListHandler[In]) HandleEnd() []In {
	h.finish()
	return h.items
}

// Fold accumulates inputs with f, producing the final accumulator when the
// stream ends. If f panics, the panic is captured and re-raised as a
// CaughtError — jtree has no analogue since it never calls into arbitrary
// user closures mid-stream the way a fold does, so this is grounded
// directly on spac.md §4.2's own contract ("if f throws, fail with that
// error") rather than on teacher code.
func Fold[In, Acc any](init Acc, f func(Acc, In) Acc) Parser[In, Acc] {
	return namedParser("Fold", func() Handler[In, Acc] {
		return &foldHandler[In, Acc]{acc: init, f: f}
	})
}

type foldHandler[In, Acc any] struct {
	finishedFlag
	acc Acc
	f   func(Acc, In) Acc
}

func (h *foldHandler[In, Acc]) HandleInput(in In) (Acc, bool) {
	h.acc = callFold(h.f, h.acc, in)
	return h.acc, false
}
func (h *foldHandler[In, Acc]) HandleError(err error) (Acc, bool) {
	var zero Acc
	return zero, false
}
func (h *foldHandler[In, Acc]) HandleEnd() Acc {
	h.finish()
	return h.acc
}

func callFold[In, Acc any](f func(Acc, In) Acc, acc Acc, in In) (out Acc) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(SpacError); ok {
				panic(se)
			}
			raise(userPanicError(r))
		}
	}()
	return f(acc, in)
}

func userPanicError(r any) error {
	if err, ok := r.(error); ok {
		return &CaughtError{Cause: err}
	}
	return &CaughtError{Cause: fmt.Errorf("%v", r)}
}

// FoldEval is like Fold, but f may itself fail; a non-nil error is raised
// as a CaughtError rather than silently accumulated, matching spac.md's
// "f may return an effectful Result" contract.
func FoldEval[In, Acc any](init Acc, f func(Acc, In) (Acc, error)) Parser[In, Acc] {
	return namedParser("FoldEval", func() Handler[In, Acc] {
		return &foldEvalHandler[In, Acc]{acc: init, f: f}
	})
}

type foldEvalHandler[In, Acc any] struct {
	finishedFlag
	acc Acc
	f   func(Acc, In) (Acc, error)
}

func (h *foldEvalHandler[In, Acc]) HandleInput(in In) (Acc, bool) {
	next, err := h.f(h.acc, in)
	if err != nil {
		raise(&CaughtError{Cause: err})
	}
	h.acc = next
	return h.acc, false
}
func (h *foldEvalHandler[In, Acc]) HandleError(err error) (Acc, bool) {
	var zero Acc
	return zero, false
}
func (h *foldEvalHandler[In, Acc]) HandleEnd() Acc {
	h.finish()
	return h.acc
}

// Pure builds a Parser that finishes with v without examining its input,
// the moment the driver makes its first call (HandleInput or, if the
// stream is already empty, HandleEnd) — as close to "immediately" as a
// pull-based driver that has not yet looked at the source can express.
func Pure[In, Out any](v Out) Parser[In, Out] {
	return namedParser("Pure", func() Handler[In, Out] {
		return &pureHandler[In, Out]{value: v}
	})
}

type pureHandler[In, Out any] struct {
	finishedFlag
	value Out
}

func (h *pureHandler[In, Out]) HandleInput(in In) (Out, bool) {
	h.finish()
	return h.value, true
}
func (h *pureHandler[In, Out]) HandleError(err error) (Out, bool) {
	h.finish()
	return h.value, true
}
func (h *pureHandler[In, Out]) HandleEnd() Out {
	h.finish()
	return h.value
}

// Eval is like Pure, but its value comes from running an effect exactly
// once; a non-nil error is raised as a CaughtError.
func Eval[In, Out any](effect func() (Out, error)) Parser[In, Out] {
	return namedParser("Eval", func() Handler[In, Out] {
		return &evalHandler[In, Out]{effect: effect}
	})
}

type evalHandler[In, Out any] struct {
	finishedFlag
	effect func() (Out, error)
}

func (h *evalHandler[In, Out]) HandleInput(in In) (Out, bool) { return h.run() }
func (h *evalHandler[In, Out]) HandleError(err error) (Out, bool) {
	return h.run()
}
func (h *evalHandler[In, Out]) HandleEnd() Out {
	out, _ := h.run()
	return out
}
func (h *evalHandler[In, Out]) run() (Out, bool) {
	h.finish()
	out, err := h.effect()
	if err != nil {
		raise(&CaughtError{Cause: err})
	}
	return out, true
}
