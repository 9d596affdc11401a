package stackctx

// A Matcher is a pure predicate over a Stack that, when satisfied, yields a
// context value C and the portion of the stack left unconsumed. Composition
// via Seq threads the remainder from one matcher into the next, the way
// github.com/creachadair/jtree/query.Seq and github.com/creachadair/jtree/tq.Seq
// thread a value through a sequence of query stages — except here the
// "value" being threaded is a suffix of the stack, not a JSON value.
//
// A Matcher must be monotone: once it matches at some stack state, it keeps
// matching as more frames are pushed on top, and stops only when one of the
// frames it consumed is popped. Matchers built from the constructors in this
// file satisfy that invariant by construction.
type Matcher[S, C any] interface {
	// Match consults frames (bottom to top) and reports the matched value
	// and the count of frames (from the bottom) it consumed, or false if it
	// does not match at all.
	Match(frames []Frame[S]) (value C, consumed int, ok bool)
}

// MatchStack applies m to the current state of stack and reports the
// matched value, if any.
func MatchStack[S, C any](m Matcher[S, C], stack *Stack[S]) (C, bool) {
	v, _, ok := m.Match(stack.Frames())
	return v, ok
}

// matcherFunc adapts a plain function to the Matcher interface.
type matcherFunc[S, C any] func(frames []Frame[S]) (C, int, bool)

func (f matcherFunc[S, C]) Match(frames []Frame[S]) (C, int, bool) { return f(frames) }

// Predicate builds a single-frame matcher: it matches the bottommost
// available frame against test, producing value when test succeeds.
func Predicate[S, C any](test func(S) (C, bool)) Matcher[S, C] {
	return matcherFunc[S, C](func(frames []Frame[S]) (C, int, bool) {
		var zero C
		if len(frames) == 0 {
			return zero, 0, false
		}
		v, ok := test(frames[0].Value)
		if !ok {
			return zero, 0, false
		}
		return v, 1, true
	})
}

// Any matches any single frame, regardless of its value, producing the raw
// frame value. This is the stack-matcher analogue of the "*" wildcard
// documented in spac.md's matcher DSL surface.
func Any[S any]() Matcher[S, S] {
	return Predicate[S, S](func(s S) (S, bool) { return s, true })
}

// Seq composes matchers in sequence: a \ b. The first matcher consumes a
// prefix of the stack; its remainder is handed to the second, and so on.
// The context value produced is the last matcher's value. An empty Seq
// matches the empty prefix and yields the zero value.
//
// Grounded directly on the structurally identical
// github.com/creachadair/jtree/query.Seq / tq.Seq sequential composition.
func Seq[S, C any](ms ...Matcher[S, C]) Matcher[S, C] {
	return matcherFunc[S, C](func(frames []Frame[S]) (C, int, bool) {
		var (
			zero  C
			total int
			last  C
			got   bool
		)
		rest := frames
		for _, m := range ms {
			v, n, ok := m.Match(rest)
			if !ok {
				return zero, 0, false
			}
			rest = rest[n:]
			total += n
			last, got = v, true
		}
		if !got {
			return zero, 0, true
		}
		return last, total, true
	})
}

// Alt tries each alternative in order and returns the first that matches.
// Grounded on github.com/creachadair/jtree/query.Alt / tq.Alt.
func Alt[S, C any](ms ...Matcher[S, C]) Matcher[S, C] {
	return matcherFunc[S, C](func(frames []Frame[S]) (C, int, bool) {
		for _, m := range ms {
			if v, n, ok := m.Match(frames); ok {
				return v, n, true
			}
		}
		var zero C
		return zero, 0, false
	})
}

// Map transforms the value produced by m with f, preserving its consumed
// count and monotonicity.
func Map[S, C, D any](m Matcher[S, C], f func(C) D) Matcher[S, D] {
	return matcherFunc[S, D](func(frames []Frame[S]) (D, int, bool) {
		v, n, ok := m.Match(frames)
		if !ok {
			var zero D
			return zero, 0, false
		}
		return f(v), n, true
	})
}
