package spac

import "github.com/spacgo/spac/stackctx"

// This file implements spac's "effect channel": the mechanism by which a
// combinator raises a failure without threading a Result through every
// intermediate call. It is grounded on the panic-then-recover-at-a-boundary
// shape github.com/creachadair/jtree/stream.go uses throughout
// (Stream.checkError panics a handlerError, Stream.syntaxError panics a
// *SyntaxError, and Stream.Parse recovers both in recoverParseError). Here
// the same shape is generalized: any combinator may "raise" a SpacError by
// panicking with it, and the nearest combinator that needs to *observe*
// sibling failures (OrElse, InterruptedBy, Attempt) recovers locally instead
// of letting the panic reach the top.

// raise panics with err, wrapping it as a SpacError first if it is not
// already one. This is the only way a combinator should signal failure.
func raise(err error) {
	panic(asSpacError(err))
}

// tryHandle invokes f and recovers any spac-raised failure, returning it as
// an ordinary error instead of letting it unwind further. Non-spac panics
// (programmer errors, out-of-bounds, nil dereference, ...) are re-raised
// unchanged, exactly as jtree's recoverParseError re-panics anything that
// isn't one of its own two known error shapes.
func tryHandle[Out any](f func() (Out, bool)) (out Out, done bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(SpacError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	out, done = f()
	return out, done, nil
}

// applyStack wraps stackctx.Apply for every combinator that drives a
// context stack, converting the *stackctx.UnderflowError panic a buggy
// StackableStrategy can trigger into a raised SpacError — the same
// recover-and-re-raise shape callFold uses to turn a user closure's panic
// into a CaughtError — so a pop against an empty stack comes back out of
// Parse/ParseSeq as an ordinary error instead of crashing the process.
func applyStack[In, S any](stack *stackctx.Stack[S], strategy stackctx.StackableStrategy[In, S], in In) (before bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*stackctx.UnderflowError); ok {
				raise(userPanicError(r))
				return
			}
			panic(r)
		}
	}()
	return stackctx.Apply(stack, strategy, in, nil)
}

// tryEnd is the HandleEnd analogue of tryHandle.
func tryEnd[Out any](f func() Out) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(SpacError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	out = f()
	return out, nil
}

