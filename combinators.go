package spac

import "github.com/spacgo/spac/stackctx"

// Map returns a Parser whose result is f applied to base's result. It pulls
// exactly as many inputs as base would (spac.md §8 invariant 1): every
// HandleInput/HandleError/HandleEnd call is forwarded to base unchanged,
// and f is only ever invoked at the moment base actually finishes.
func Map[In, A, B any](base Parser[In, A], f func(A) B) Parser[In, B] {
	return namedParser("Map", func() Handler[In, B] {
		return &mapHandler[In, A, B]{base: base.NewHandler(), f: f}
	})
}

type mapHandler[In, A, B any] struct {
	finishedFlag
	base Handler[In, A]
	f    func(A) B
}

func (h *mapHandler[In, A, B]) HandleInput(in In) (B, bool) {
	a, done := h.base.HandleInput(in)
	if !done {
		var zero B
		return zero, false
	}
	h.finish()
	return callMapped(h.f, a), true
}
func (h *mapHandler[In, A, B]) HandleError(err error) (B, bool) {
	a, done := h.base.HandleError(err)
	if !done {
		var zero B
		return zero, false
	}
	h.finish()
	return callMapped(h.f, a), true
}
func (h *mapHandler[In, A, B]) HandleEnd() B {
	a := h.base.HandleEnd()
	h.finish()
	return callMapped(h.f, a)
}

// callMapped invokes f, converting a panic from user code into a raised
// CaughtError instead of letting it escape as a bare runtime panic — the
// same capture-and-wrap shape callFold uses for Fold's step function.
func callMapped[A, B any](f func(A) B, a A) (b B) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(SpacError); ok {
				panic(se)
			}
			raise(userPanicError(r))
		}
	}()
	return f(a)
}

// OrElse builds a fallback chain from p and others: every branch runs on
// every input; the first branch to finish with success wins, ties broken
// by position in the chain; if every branch fails, FallbackChainError
// carries the underlying errors in the order each branch failed. Chained
// calls self-flatten, so p.OrElse(q).OrElse(r) is one three-way chain.
func (p Parser[In, Out]) OrElse(others ...Parser[In, Out]) Parser[In, Out] {
	branches := append([]Parser[In, Out](nil), flattenBranches(p)...)
	for _, o := range others {
		branches = append(branches, flattenBranches(o)...)
	}
	out := namedParser("OrElse", func() Handler[In, Out] {
		hs := make([]Handler[In, Out], len(branches))
		alive := make([]bool, len(branches))
		for i, b := range branches {
			hs[i] = b.NewHandler()
			alive[i] = true
		}
		return &orElseHandler[In, Out]{branches: hs, alive: alive}
	})
	out.orElseBranches = branches
	return out
}

func flattenBranches[In, Out any](p Parser[In, Out]) []Parser[In, Out] {
	if p.orElseBranches != nil {
		return p.orElseBranches
	}
	return []Parser[In, Out]{p}
}

type orElseHandler[In, Out any] struct {
	finishedFlag
	branches []Handler[In, Out]
	alive    []bool
	failed   []error // in failure order, not branch order
}

func (h *orElseHandler[In, Out]) HandleInput(in In) (Out, bool) {
	var (
		won    Out
		anyWon bool
	)
	for i, b := range h.branches {
		if !h.alive[i] {
			continue
		}
		out, done, err := tryHandle(func() (Out, bool) { return b.HandleInput(in) })
		if err != nil {
			h.alive[i] = false
			h.failed = append(h.failed, err)
			continue
		}
		if done && !anyWon {
			won, anyWon = out, true
		}
	}
	if anyWon {
		h.finish()
		return won, true
	}
	if h.noneAlive() {
		h.raiseChainFailure()
	}
	var zero Out
	return zero, false
}

func (h *orElseHandler[In, Out]) HandleError(err error) (Out, bool) {
	var (
		won    Out
		anyWon bool
	)
	for i, b := range h.branches {
		if !h.alive[i] {
			continue
		}
		out, done, cerr := tryHandle(func() (Out, bool) { return b.HandleError(err) })
		if cerr != nil {
			h.alive[i] = false
			h.failed = append(h.failed, cerr)
			continue
		}
		if done && !anyWon {
			won, anyWon = out, true
		}
	}
	if anyWon {
		h.finish()
		return won, true
	}
	return won, false
}

func (h *orElseHandler[In, Out]) HandleEnd() Out {
	var (
		won    Out
		anyWon bool
	)
	for i, b := range h.branches {
		if !h.alive[i] {
			continue
		}
		out, err := tryEnd(b.HandleEnd)
		if err != nil {
			h.alive[i] = false
			h.failed = append(h.failed, err)
			continue
		}
		if !anyWon {
			won, anyWon = out, true
		}
	}
	h.finish()
	if anyWon {
		return won
	}
	h.raiseChainFailure()
	panic("unreachable")
}

func (h *orElseHandler[In, Out]) noneAlive() bool {
	for _, a := range h.alive {
		if a {
			return false
		}
	}
	return true
}

func (h *orElseHandler[In, Out]) raiseChainFailure() {
	raise(&FallbackChainError{UnderlyingErrors: h.failed})
}

// Try is the success/failure pair Attempt lifts a parser's effect-channel
// result into, and Rethrow/UnwrapSafe lower back out of.
type Try[T any] struct {
	Value T
	Err   error
}

// OK reports whether the Try holds a value rather than an error.
func (t Try[T]) OK() bool { return t.Err == nil }

// Attempt lifts base's failure into a successful Try result, so a
// downstream combinator can observe it instead of the failure unwinding
// through the effect channel.
func Attempt[In, Out any](base Parser[In, Out]) Parser[In, Try[Out]] {
	return namedParser("Attempt", func() Handler[In, Try[Out]] {
		return &attemptHandler[In, Out]{base: base.NewHandler()}
	})
}

type attemptHandler[In, Out any] struct {
	finishedFlag
	base Handler[In, Out]
}

func (h *attemptHandler[In, Out]) HandleInput(in In) (Try[Out], bool) {
	out, done, err := tryHandle(func() (Out, bool) { return h.base.HandleInput(in) })
	if err != nil {
		h.finish()
		return Try[Out]{Err: err}, true
	}
	if !done {
		return Try[Out]{}, false
	}
	h.finish()
	return Try[Out]{Value: out}, true
}
func (h *attemptHandler[In, Out]) HandleError(err error) (Try[Out], bool) {
	h.finish()
	return Try[Out]{Err: err}, true
}
func (h *attemptHandler[In, Out]) HandleEnd() Try[Out] {
	out, err := tryEnd(h.base.HandleEnd)
	h.finish()
	if err != nil {
		return Try[Out]{Err: err}
	}
	return Try[Out]{Value: out}
}

// Rethrow is Attempt's inverse: a success carrying an error is raised
// through the effect channel instead of being returned as a value, so
// p.Attempt().Rethrow() observes exactly what p itself would have
// (spac.md §8 invariant 5).
func Rethrow[In, Out any](base Parser[In, Try[Out]]) Parser[In, Out] {
	return namedParser("Rethrow", func() Handler[In, Out] {
		return &rethrowHandler[In, Out]{base: base.NewHandler()}
	})
}

// UnwrapSafe shares Rethrow's implementation: it is the general-purpose
// name for unwrapping any Try-shaped success (any Parser whose result type
// is Try[Out]) rather than specifically undoing an Attempt.
func UnwrapSafe[In, Out any](base Parser[In, Try[Out]]) Parser[In, Out] {
	return namedParser("UnwrapSafe", func() Handler[In, Out] {
		return &rethrowHandler[In, Out]{base: base.NewHandler()}
	})
}

type rethrowHandler[In, Out any] struct {
	finishedFlag
	base Handler[In, Try[Out]]
}

func (h *rethrowHandler[In, Out]) HandleInput(in In) (Out, bool) {
	t, done := h.base.HandleInput(in)
	if !done {
		var zero Out
		return zero, false
	}
	h.finish()
	if t.Err != nil {
		raise(asSpacError(t.Err))
	}
	return t.Value, true
}
func (h *rethrowHandler[In, Out]) HandleError(err error) (Out, bool) {
	var zero Out
	return zero, false
}
func (h *rethrowHandler[In, Out]) HandleEnd() Out {
	t := h.base.HandleEnd()
	h.finish()
	if t.Err != nil {
		raise(asSpacError(t.Err))
	}
	return t.Value
}

// Expectation is one step of an ExpectInputs guard: a human-readable label
// and the predicate the next input must satisfy.
type Expectation[In any] struct {
	Label string
	Test  func(In) bool
}

// ExpectInputs wraps a sequence of expectations, in order: the next input
// must satisfy each predicate in turn, or UnexpectedInputError is raised
// naming the failing input and the labels not yet satisfied. If the stream
// ends with expectations outstanding, UnfulfilledInputsError is raised.
// The result is the sequence of inputs that satisfied every expectation.
func ExpectInputs[In any](expectations []Expectation[In]) Parser[In, []In] {
	return namedParser("ExpectInputs", func() Handler[In, []In] {
		remaining := append([]Expectation[In](nil), expectations...)
		return &expectInputsHandler[In]{remaining: remaining}
	})
}

type expectInputsHandler[In any] struct {
	finishedFlag
	remaining []Expectation[In]
	seen      []In
}

func (h *expectInputsHandler[In]) HandleInput(in In) ([]In, bool) {
	if len(h.remaining) == 0 {
		h.finish()
		return h.seen, true
	}
	exp := h.remaining[0]
	if !exp.Test(in) {
		raise(&UnexpectedInputError{Input: in, Expectations: expectationLabels(h.remaining)})
	}
	h.seen = append(h.seen, in)
	h.remaining = h.remaining[1:]
	if len(h.remaining) == 0 {
		h.finish()
		return h.seen, true
	}
	return nil, false
}
func (h *expectInputsHandler[In]) HandleError(err error) ([]In, bool) { return nil, false }
func (h *expectInputsHandler[In]) HandleEnd() []In {
	if len(h.remaining) > 0 {
		raise(&UnfulfilledInputsError{Expectations: expectationLabels(h.remaining)})
	}
	h.finish()
	return h.seen
}

func expectationLabels[In any](exps []Expectation[In]) []string {
	out := make([]string, len(exps))
	for i, e := range exps {
		out[i] = e.Label
	}
	return out
}

// InterruptedBy runs base and interrupter on the same stream. The moment
// interrupter finishes, base is finalized via HandleEnd and the triggering
// input is not forwarded to it. If interrupter fails, the failure is
// raised; if base fails, interrupter is discarded and base's failure
// surfaces.
func InterruptedBy[In, Out, Interrupt any](base Parser[In, Out], interrupter Parser[In, Interrupt]) Parser[In, Out] {
	return namedParser("InterruptedBy", func() Handler[In, Out] {
		return &interruptedByHandler[In, Out, Interrupt]{
			base:        base.NewHandler(),
			interrupter: interrupter.NewHandler(),
		}
	})
}

type interruptedByHandler[In, Out, Interrupt any] struct {
	finishedFlag
	base        Handler[In, Out]
	interrupter Handler[In, Interrupt]
}

func (h *interruptedByHandler[In, Out, Interrupt]) HandleInput(in In) (Out, bool) {
	_, idone, ierr := tryHandle(func() (Interrupt, bool) { return h.interrupter.HandleInput(in) })
	if ierr != nil {
		raise(asSpacError(ierr))
	}
	if idone {
		h.finish()
		out, berr := tryEnd(h.base.HandleEnd)
		if berr != nil {
			raise(asSpacError(berr))
		}
		return out, true
	}
	out, done, berr := tryHandle(func() (Out, bool) { return h.base.HandleInput(in) })
	if berr != nil {
		raise(asSpacError(berr))
	}
	if done {
		h.finish()
	}
	return out, done
}
func (h *interruptedByHandler[In, Out, Interrupt]) HandleError(err error) (Out, bool) {
	return h.base.HandleError(err)
}
func (h *interruptedByHandler[In, Out, Interrupt]) HandleEnd() Out {
	h.finish()
	return h.base.HandleEnd()
}

// BeforeContext is the specialization of InterruptedBy spac.md §4.3
// describes: the interrupter fires the moment the context stack (tracked
// locally via strategy) first satisfies matcher after a push, and that
// triggering push is not forwarded to base.
func BeforeContext[In, S, C, Out any](base Parser[In, Out], strategy stackctx.StackableStrategy[In, S], matcher stackctx.Matcher[S, C]) Parser[In, Out] {
	interrupter := namedParser("BeforeContextInterrupter", func() Handler[In, C] {
		return &beforeContextHandler[In, S, C]{strategy: strategy, matcher: matcher, stack: &stackctx.Stack[S]{}}
	})
	return InterruptedBy(base, interrupter)
}

type beforeContextHandler[In, S, C any] struct {
	finishedFlag
	strategy stackctx.StackableStrategy[In, S]
	matcher  stackctx.Matcher[S, C]
	stack    *stackctx.Stack[S]
}

func (h *beforeContextHandler[In, S, C]) HandleInput(in In) (C, bool) {
	applyStack(h.stack, h.strategy, in)
	if v, ok := stackctx.MatchStack(h.matcher, h.stack); ok {
		h.finish()
		return v, true
	}
	var zero C
	return zero, false
}
func (h *beforeContextHandler[In, S, C]) HandleError(err error) (C, bool) {
	var zero C
	return zero, false
}
func (h *beforeContextHandler[In, S, C]) HandleEnd() C {
	var zero C
	return zero
}

// FollowedBy sequentially composes base with a follow-up parser built from
// base's result: k(t1). While base runs, every input is also applied to a
// shadow stack (via strategy) so that when base finishes, the inputs that
// pushed any frame still open are known; those are replayed into k(t1), in
// order, before the live stream resumes feeding it. If base only finishes
// at the end of input, the open frames are replayed and k(t1).HandleEnd()
// is called right away; with an empty shadow stack nothing is replayed and
// k(t1) goes straight to HandleEnd (spac.md §4.3, §8 invariant 7).
func FollowedBy[In, S, T1, T2 any](base Parser[In, T1], strategy stackctx.StackableStrategy[In, S], k func(T1) Parser[In, T2]) Parser[In, T2] {
	return namedParser("FollowedBy", func() Handler[In, T2] {
		return &followedByHandler[In, S, T1, T2]{
			base:     base.NewHandler(),
			strategy: strategy,
			shadow:   &stackctx.Stack[In]{},
			k:        k,
		}
	})
}

type followedByHandler[In, S, T1, T2 any] struct {
	finishedFlag
	base     Handler[In, T1]
	strategy stackctx.StackableStrategy[In, S]
	shadow   *stackctx.Stack[In]
	k        func(T1) Parser[In, T2]
	next     Handler[In, T2] // nil until base finishes
}

func (h *followedByHandler[In, S, T1, T2]) recordShadow(in In) {
	ip := h.strategy(in)
	wrapped := stackctx.Interpretation[In]{Op: ip.Op, ReplacePrev: ip.ReplacePrev}
	if ip.Op == stackctx.PushBefore || ip.Op == stackctx.PushAfter {
		wrapped.Frame = in
	}
	applyStack(h.shadow, func(In) stackctx.Interpretation[In] { return wrapped }, in)
}

func (h *followedByHandler[In, S, T1, T2]) HandleInput(in In) (T2, bool) {
	if h.next != nil {
		out, done := h.next.HandleInput(in)
		if done {
			h.finish()
		}
		return out, done
	}

	h.recordShadow(in)
	t1, done, err := tryHandle(func() (T1, bool) { return h.base.HandleInput(in) })
	if err != nil {
		raise(asSpacError(err))
	}
	if !done {
		var zero T2
		return zero, false
	}

	nh := h.k(t1).NewHandler()
	for _, f := range h.shadow.Frames() {
		if out, rdone := nh.HandleInput(f.Value); rdone {
			h.next = nh
			h.finish()
			return out, true
		}
	}
	h.next = nh
	var zero T2
	return zero, false
}

func (h *followedByHandler[In, S, T1, T2]) HandleError(err error) (T2, bool) {
	if h.next != nil {
		return h.next.HandleError(err)
	}
	var zero T2
	return zero, false
}

func (h *followedByHandler[In, S, T1, T2]) HandleEnd() T2 {
	if h.next != nil {
		h.finish()
		return h.next.HandleEnd()
	}
	t1, err := tryEnd(h.base.HandleEnd)
	if err != nil {
		raise(asSpacError(err))
	}
	nh := h.k(t1).NewHandler()
	h.finish()
	for _, f := range h.shadow.Frames() {
		if out, done := nh.HandleInput(f.Value); done {
			return out
		}
	}
	return nh.HandleEnd()
}

// Pair is the result of And2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// And2 composes two parsers that both run on the same stream; the combined
// handler finishes once both branches have. If either branch errors, the
// error propagates with an InCompound trace element naming which branch.
func And2[In, A, B any](pa Parser[In, A], pb Parser[In, B]) Parser[In, Pair[A, B]] {
	site := here(1)
	return namedParser("And2", func() Handler[In, Pair[A, B]] {
		return &and2Handler[In, A, B]{ha: pa.NewHandler(), hb: pb.NewHandler(), site: site}
	})
}

type and2Handler[In, A, B any] struct {
	finishedFlag
	ha           Handler[In, A]
	hb           Handler[In, B]
	a            A
	b            B
	aDone, bDone bool
	site         CallSite
}

func (h *and2Handler[In, A, B]) branchErr(idx int, err error) {
	raise(addTrace(asSpacError(err), InCompound{BranchIndex: idx, BranchCount: 2, CallSite: h.site}))
}

func (h *and2Handler[In, A, B]) HandleInput(in In) (Pair[A, B], bool) {
	if !h.aDone {
		out, done, err := tryHandle(func() (A, bool) { return h.ha.HandleInput(in) })
		if err != nil {
			h.branchErr(0, err)
		}
		if done {
			h.a, h.aDone = out, true
		}
	}
	if !h.bDone {
		out, done, err := tryHandle(func() (B, bool) { return h.hb.HandleInput(in) })
		if err != nil {
			h.branchErr(1, err)
		}
		if done {
			h.b, h.bDone = out, true
		}
	}
	if h.aDone && h.bDone {
		h.finish()
		return Pair[A, B]{h.a, h.b}, true
	}
	return Pair[A, B]{}, false
}
func (h *and2Handler[In, A, B]) HandleError(err error) (Pair[A, B], bool) {
	return Pair[A, B]{}, false
}
func (h *and2Handler[In, A, B]) HandleEnd() Pair[A, B] {
	if !h.aDone {
		a, err := tryEnd(h.ha.HandleEnd)
		if err != nil {
			h.branchErr(0, err)
		}
		h.a = a
	}
	if !h.bDone {
		b, err := tryEnd(h.hb.HandleEnd)
		if err != nil {
			h.branchErr(1, err)
		}
		h.b = b
	}
	h.finish()
	return Pair[A, B]{h.a, h.b}
}

// Triple is the result of And3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// And3 composes three parsers over the same stream, the same way And2
// composes two.
func And3[In, A, B, C any](pa Parser[In, A], pb Parser[In, B], pc Parser[In, C]) Parser[In, Triple[A, B, C]] {
	site := here(1)
	return namedParser("And3", func() Handler[In, Triple[A, B, C]] {
		return &and3Handler[In, A, B, C]{ha: pa.NewHandler(), hb: pb.NewHandler(), hc: pc.NewHandler(), site: site}
	})
}

type and3Handler[In, A, B, C any] struct {
	finishedFlag
	ha                  Handler[In, A]
	hb                  Handler[In, B]
	hc                  Handler[In, C]
	a                   A
	b                   B
	c                   C
	aDone, bDone, cDone bool
	site                CallSite
}

func (h *and3Handler[In, A, B, C]) branchErr(idx int, err error) {
	raise(addTrace(asSpacError(err), InCompound{BranchIndex: idx, BranchCount: 3, CallSite: h.site}))
}

func (h *and3Handler[In, A, B, C]) HandleInput(in In) (Triple[A, B, C], bool) {
	if !h.aDone {
		out, done, err := tryHandle(func() (A, bool) { return h.ha.HandleInput(in) })
		if err != nil {
			h.branchErr(0, err)
		}
		if done {
			h.a, h.aDone = out, true
		}
	}
	if !h.bDone {
		out, done, err := tryHandle(func() (B, bool) { return h.hb.HandleInput(in) })
		if err != nil {
			h.branchErr(1, err)
		}
		if done {
			h.b, h.bDone = out, true
		}
	}
	if !h.cDone {
		out, done, err := tryHandle(func() (C, bool) { return h.hc.HandleInput(in) })
		if err != nil {
			h.branchErr(2, err)
		}
		if done {
			h.c, h.cDone = out, true
		}
	}
	if h.aDone && h.bDone && h.cDone {
		h.finish()
		return Triple[A, B, C]{h.a, h.b, h.c}, true
	}
	return Triple[A, B, C]{}, false
}
func (h *and3Handler[In, A, B, C]) HandleError(err error) (Triple[A, B, C], bool) {
	return Triple[A, B, C]{}, false
}
func (h *and3Handler[In, A, B, C]) HandleEnd() Triple[A, B, C] {
	if !h.aDone {
		a, err := tryEnd(h.ha.HandleEnd)
		if err != nil {
			h.branchErr(0, err)
		}
		h.a = a
	}
	if !h.bDone {
		b, err := tryEnd(h.hb.HandleEnd)
		if err != nil {
			h.branchErr(1, err)
		}
		h.b = b
	}
	if !h.cDone {
		c, err := tryEnd(h.hc.HandleEnd)
		if err != nil {
			h.branchErr(2, err)
		}
		h.c = c
	}
	h.finish()
	return Triple[A, B, C]{h.a, h.b, h.c}
}
