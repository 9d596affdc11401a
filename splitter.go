package spac

import "github.com/spacgo/spac/stackctx"

// A Splitter is a stateless factory that turns a context-stack match into a
// sub-stream dispatch: spac.md §4.5 calls it "the heart" of the engine. It
// watches the running Stack[S] that strategy reconstructs from the input
// events, and whenever matcher newly matches, instantiates a fresh
// sub-handler from joiner(c) and routes every subsequent input into it
// until the match is no longer current.
//
// Grounded on jtree's own "open a sub-cursor when the path matches, close
// it when the traversal backs out past where it opened" shape
// (github.com/creachadair/jtree/cursor.Cursor plus query.Path), generalized
// from a post-hoc tree walk to a live one-event-at-a-time stream.
type Splitter[In, S, C, Out any] struct {
	strategy stackctx.StackableStrategy[In, S]
	matcher  stackctx.Matcher[S, C]
	joiner   func(C) Parser[In, Out]
	label    string
	site     CallSite
}

// NewSplitter builds a Splitter. strategy reconstructs the context stack
// from each input; matcher decides which stack states open a sub-stream and
// what context value C they expose; joiner builds the Parser that consumes
// that sub-stream, given the matched context.
func NewSplitter[In, S, C, Out any](strategy stackctx.StackableStrategy[In, S], matcher stackctx.Matcher[S, C], joiner func(C) Parser[In, Out]) Splitter[In, S, C, Out] {
	return Splitter[In, S, C, Out]{strategy: strategy, matcher: matcher, joiner: joiner, site: here(1)}
}

// Labeled attaches a human-readable matcher description (e.g. `"library" \
// "book"`), used only in diagnostics (InSplitter.Matcher).
func (sp Splitter[In, S, C, Out]) Labeled(label string) Splitter[In, S, C, Out] {
	sp.label = label
	return sp
}

// AsTransformer builds the Transformer spac.md §4.5 describes: one Out
// emitted downstream per matched-and-completed sub-stream.
func (sp Splitter[In, S, C, Out]) AsTransformer() Transformer[In, Out] {
	return newTransformer(func() stage[In, Out] {
		return &splitterStage[In, S, C, Out]{sp: sp}
	})
}

// ToList builds a Parser that collects every sub-stream result into a
// slice, the combination spac.md §8's Booklist example uses:
// `Splitter("library" \ "book").as[text].toList`.
func (sp Splitter[In, S, C, Out]) ToList() Parser[In, []Out] {
	return IntoParser(sp.AsTransformer(), ToList[Out]())
}

type splitterStage[In, S, C, Out any] struct {
	sp           Splitter[In, S, C, Out]
	stack        stackctx.Stack[S]
	active       bool
	depthAtStart int
	inner        Handler[In, Out]
}

func (s *splitterStage[In, S, C, Out]) push(in In, emit func(Out) bool) bool {
	wasActive := s.active
	before := applyStack(&s.stack, s.sp.strategy, in)
	if wasActive {
		s.feedActive(in, emit)
		s.closeIfUncovered(emit)
		return false
	}
	if v, ok := stackctx.MatchStack(s.sp.matcher, &s.stack); ok {
		s.open(v)
		if !before {
			s.feedActive(in, emit)
			s.closeIfUncovered(emit)
		}
	}
	return false
}

func (s *splitterStage[In, S, C, Out]) end(emit func(Out) bool) {
	if !s.active {
		return
	}
	out, err := tryEnd(func() Out { return s.inner.HandleEnd() })
	if err != nil {
		s.raiseWrapped(err)
	}
	emit(out)
	s.active = false
	s.inner = nil
}

func (s *splitterStage[In, S, C, Out]) open(c C) {
	s.inner = s.sp.joiner(c).NewHandler()
	s.depthAtStart = s.stack.Depth()
	s.active = true
}

func (s *splitterStage[In, S, C, Out]) feedActive(in In, emit func(Out) bool) {
	out, done, err := tryHandle(func() (Out, bool) { return s.inner.HandleInput(in) })
	if err != nil {
		s.raiseWrapped(err)
	}
	if done {
		emit(out)
		s.active = false
		s.inner = nil
	}
}

// closeIfUncovered finalizes the still-open sub-handler once the stack has
// unwound below the depth it started at — spac.md §4.5's "a pop that
// uncovers the stack below depthAtStart" cue, the splitter's half of
// matcher monotonicity.
func (s *splitterStage[In, S, C, Out]) closeIfUncovered(emit func(Out) bool) {
	if !s.active || s.stack.Depth() >= s.depthAtStart {
		return
	}
	out, err := tryEnd(func() Out { return s.inner.HandleEnd() })
	if err != nil {
		s.raiseWrapped(err)
	}
	emit(out)
	s.active = false
	s.inner = nil
}

func (s *splitterStage[In, S, C, Out]) raiseWrapped(err error) {
	label := s.sp.label
	if label == "" {
		label = "Splitter"
	}
	raise(addTrace(asSpacError(err), InSplitter{Matcher: label, CallSite: s.sp.site}))
}

// SplitOnMatch builds the degenerate stack-less splitter spac.md §4.5
// describes: consecutive inputs satisfying pred form one sub-stream, and
// the first non-matching input closes it (that input is not itself part of
// either sub-stream).
func SplitOnMatch[In, Out any](pred func(In) bool, joiner func() Parser[In, Out]) Transformer[In, Out] {
	return newTransformer(func() stage[In, Out] {
		return &splitOnMatchStage[In, Out]{pred: pred, joiner: joiner}
	})
}

type splitOnMatchStage[In, Out any] struct {
	pred   func(In) bool
	joiner func() Parser[In, Out]
	active bool
	inner  Handler[In, Out]
}

func (s *splitOnMatchStage[In, Out]) push(in In, emit func(Out) bool) bool {
	if !callPred(s.pred, in) {
		s.closeIfActive(emit)
		return false
	}
	if !s.active {
		s.inner = s.joiner().NewHandler()
		s.active = true
	}
	out, done, err := tryHandle(func() (Out, bool) { return s.inner.HandleInput(in) })
	if err != nil {
		raise(err)
	}
	if done {
		emit(out)
		s.active = false
		s.inner = nil
	}
	return false
}

func (s *splitOnMatchStage[In, Out]) end(emit func(Out) bool) {
	s.closeIfActive(emit)
}

func (s *splitOnMatchStage[In, Out]) closeIfActive(emit func(Out) bool) {
	if !s.active {
		return
	}
	out, err := tryEnd(func() Out { return s.inner.HandleEnd() })
	if err != nil {
		raise(err)
	}
	emit(out)
	s.active = false
	s.inner = nil
}
