package spac

// A Transformer is a stateless factory for stream-to-stream stages: given a
// downstream consumer, it produces a Handler that feeds that consumer
// zero or more Out values per In it sees. Go cannot express "for every
// downstream result type R" as a stored struct field the way a
// higher-kinded language would, so Transformer itself stays agnostic of R
// — each constructor below builds a stage that only ever talks about In
// and Out, emitting values through a callback. Into (and Then, for
// transformer/transformer composition) supply R only at the point they are
// generic free functions instantiated for a specific attachment, the same
// "attach at the edge, not in the middle" shape tq.Query's evaluation
// chain uses internally even though tq's own public surface commits to a
// single terminal type per query.
type Transformer[In, Out any] struct {
	newStage func() stage[In, Out]
}

// stage is a Transformer's internal per-run state machine. push processes
// one input, invoking emit zero or more times for each Out it produces;
// emit's bool result is true once the downstream consumer has finished, at
// which point the stage must stop calling it. push's own bool result is
// spac.md §4.4's Signal::Stop: true once the stage itself will never
// produce anything more, independent of whether downstream has finished.
type stage[In, Out any] interface {
	push(in In, emit func(Out) bool) (stop bool)
	end(emit func(Out) bool)
}

func newTransformer[In, Out any](newStage func() stage[In, Out]) Transformer[In, Out] {
	return Transformer[In, Out]{newStage: newStage}
}

// Into attaches down as the consumer of t's output, producing the combined
// Handler the driver actually runs — spac.md §4.4's `t >> parser` operator,
// spelled as a function since Go has no custom operators and a method
// cannot introduce R as a new type parameter.
func Into[In, Out, R any](t Transformer[In, Out], down Handler[Out, R]) Handler[In, R] {
	return &intoHandler[In, Out, R]{stage: t.newStage(), down: down}
}

// IntoParser is Into specialized to a Parser downstream, producing a
// Parser whose input type is t's input — `t >> parser` when parser is
// itself a Parser rather than another Transformer.
func IntoParser[In, Out, R any](t Transformer[In, Out], p Parser[Out, R]) Parser[In, R] {
	return namedParser("Into", func() Handler[In, R] {
		return Into(t, p.NewHandler())
	})
}

// Then composes two transformers: t1's output feeds t2's input.
func Then[In, Mid, Out any](t1 Transformer[In, Mid], t2 Transformer[Mid, Out]) Transformer[In, Out] {
	return newTransformer(func() stage[In, Out] {
		return &thenStage[In, Mid, Out]{s1: t1.newStage(), s2: t2.newStage()}
	})
}

type thenStage[In, Mid, Out any] struct {
	s1 stage[In, Mid]
	s2 stage[Mid, Out]
}

func (s *thenStage[In, Mid, Out]) push(in In, emit func(Out) bool) bool {
	downstreamDone := false
	stop := s.s1.push(in, func(m Mid) bool {
		if s.s2.push(m, emit) {
			downstreamDone = true
		}
		return downstreamDone
	})
	return stop || downstreamDone
}
func (s *thenStage[In, Mid, Out]) end(emit func(Out) bool) {
	s.s1.end(func(m Mid) bool {
		return s.s2.push(m, emit)
	})
	s.s2.end(emit)
}

type intoHandler[In, Out, R any] struct {
	finishedFlag
	stage  stage[In, Out]
	down   Handler[Out, R]
	result R
}

func (h *intoHandler[In, Out, R]) HandleInput(in In) (R, bool) {
	stop := h.stage.push(in, func(o Out) bool {
		out, done, err := tryHandle(func() (R, bool) { return h.down.HandleInput(o) })
		if err != nil {
			raise(asSpacError(err))
		}
		if done {
			h.result = out
			h.finish()
		}
		return h.Finished()
	})
	if h.Finished() {
		return h.result, true
	}
	if stop {
		h.finishFromStage()
		return h.result, true
	}
	var zero R
	return zero, false
}
func (h *intoHandler[In, Out, R]) HandleError(err error) (R, bool) {
	out, done := h.down.HandleError(err)
	if done {
		h.result = out
		h.finish()
	}
	return h.result, h.Finished()
}
func (h *intoHandler[In, Out, R]) HandleEnd() R {
	if h.Finished() {
		return h.result
	}
	h.stage.end(func(o Out) bool {
		out, done, err := tryHandle(func() (R, bool) { return h.down.HandleInput(o) })
		if err != nil {
			raise(asSpacError(err))
		}
		if done {
			h.result = out
			h.finish()
		}
		return h.Finished()
	})
	if !h.Finished() {
		h.result = h.down.HandleEnd()
		h.finish()
	}
	return h.result
}

func (h *intoHandler[In, Out, R]) finishFromStage() {
	h.stage.end(func(o Out) bool {
		out, done, err := tryHandle(func() (R, bool) { return h.down.HandleInput(o) })
		if err != nil {
			raise(asSpacError(err))
		}
		if done {
			h.result = out
			h.finish()
		}
		return h.Finished()
	})
	if !h.Finished() {
		h.result = h.down.HandleEnd()
		h.finish()
	}
}

// TMap builds a Transformer that applies f to every input, one Out per In.
func TMap[In, Out any](f func(In) Out) Transformer[In, Out] {
	return newTransformer(func() stage[In, Out] {
		return &mapStage[In, Out]{f: f}
	})
}

type mapStage[In, Out any] struct{ f func(In) Out }

func (s *mapStage[In, Out]) push(in In, emit func(Out) bool) bool {
	emit(callMapped(s.f, in))
	return false
}
func (s *mapStage[In, Out]) end(emit func(Out) bool) {}

// TMapFlatten builds a Transformer that expands each input into zero or
// more outputs, in order.
func TMapFlatten[In, Out any](f func(In) []Out) Transformer[In, Out] {
	return newTransformer(func() stage[In, Out] {
		return &mapFlattenStage[In, Out]{f: f}
	})
}

type mapFlattenStage[In, Out any] struct{ f func(In) []Out }

func (s *mapFlattenStage[In, Out]) push(in In, emit func(Out) bool) bool {
	for _, out := range callMapped(s.f, in) {
		if emit(out) {
			break
		}
	}
	return false
}
func (s *mapFlattenStage[In, Out]) end(emit func(Out) bool) {}

// TCollect builds a Transformer that keeps only the inputs for which f
// produces a present value, mapping them in the same step — the combined
// filter+map spac.md §4.4 lists as `collect`.
func TCollect[In, Out any](f func(In) (Out, bool)) Transformer[In, Out] {
	return newTransformer(func() stage[In, Out] {
		return &collectStage[In, Out]{f: f}
	})
}

type collectStage[In, Out any] struct{ f func(In) (Out, bool) }

func (s *collectStage[In, Out]) push(in In, emit func(Out) bool) bool {
	if out, ok := s.f(in); ok {
		emit(out)
	}
	return false
}
func (s *collectStage[In, Out]) end(emit func(Out) bool) {}

// TScan builds a Transformer that emits the running accumulator after
// folding each input into it with f, starting from init.
func TScan[In, Acc any](init Acc, f func(Acc, In) Acc) Transformer[In, Acc] {
	return newTransformer(func() stage[In, Acc] {
		return &scanStage[In, Acc]{acc: init, f: f}
	})
}

type scanStage[In, Acc any] struct {
	acc Acc
	f   func(Acc, In) Acc
}

func (s *scanStage[In, Acc]) push(in In, emit func(Acc) bool) bool {
	s.acc = callFold(s.f, s.acc, in)
	emit(s.acc)
	return false
}
func (s *scanStage[In, Acc]) end(emit func(Acc) bool) {}

// Filter builds a Transformer that forwards only the inputs satisfying
// pred.
func Filter[In any](pred func(In) bool) Transformer[In, In] {
	return newTransformer(func() stage[In, In] {
		return &filterStage[In]{pred: pred}
	})
}

type filterStage[In any] struct{ pred func(In) bool }

func (s *filterStage[In]) push(in In, emit func(In) bool) bool {
	if callPred(s.pred, in) {
		emit(in)
	}
	return false
}
func (s *filterStage[In]) end(emit func(In) bool) {}

// Take builds a Transformer that forwards only the first n inputs, then
// signals it has nothing more to contribute.
func Take[In any](n int) Transformer[In, In] {
	return newTransformer(func() stage[In, In] {
		return &takeStage[In]{limit: n}
	})
}

type takeStage[In any] struct {
	limit, seen int
}

func (s *takeStage[In]) push(in In, emit func(In) bool) bool {
	if s.seen >= s.limit {
		return true
	}
	emit(in)
	s.seen++
	return s.seen >= s.limit
}
func (s *takeStage[In]) end(emit func(In) bool) {}

// Drop builds a Transformer that discards the first n inputs and forwards
// the rest unchanged.
func Drop[In any](n int) Transformer[In, In] {
	return newTransformer(func() stage[In, In] {
		return &dropStage[In]{limit: n}
	})
}

type dropStage[In any] struct {
	limit, dropped int
}

func (s *dropStage[In]) push(in In, emit func(In) bool) bool {
	if s.dropped < s.limit {
		s.dropped++
		return false
	}
	emit(in)
	return false
}
func (s *dropStage[In]) end(emit func(In) bool) {}

// TakeWhile builds a Transformer that forwards inputs as long as pred
// holds, then stops forwarding (and contributing) as soon as it fails.
func TakeWhile[In any](pred func(In) bool) Transformer[In, In] {
	return newTransformer(func() stage[In, In] {
		return &takeWhileStage[In]{pred: pred}
	})
}

type takeWhileStage[In any] struct{ pred func(In) bool }

func (s *takeWhileStage[In]) push(in In, emit func(In) bool) bool {
	if !callPred(s.pred, in) {
		return true
	}
	emit(in)
	return false
}
func (s *takeWhileStage[In]) end(emit func(In) bool) {}

// DropWhile builds a Transformer that discards inputs while pred holds and
// forwards every input from the first failure onward (including that
// first failing input itself).
func DropWhile[In any](pred func(In) bool) Transformer[In, In] {
	return newTransformer(func() stage[In, In] {
		return &dropWhileStage[In]{pred: pred}
	})
}

type dropWhileStage[In any] struct {
	pred     func(In) bool
	dropping bool
	started  bool
}

func (s *dropWhileStage[In]) push(in In, emit func(In) bool) bool {
	if !s.started {
		s.started = true
		s.dropping = true
	}
	if s.dropping {
		if callPred(s.pred, in) {
			return false
		}
		s.dropping = false
	}
	emit(in)
	return false
}
func (s *dropWhileStage[In]) end(emit func(In) bool) {}

// Tap builds a Transformer that runs f for its side effect on every input
// and forwards the input unchanged.
func Tap[In any](f func(In)) Transformer[In, In] {
	return newTransformer(func() stage[In, In] {
		return &tapStage[In]{f: f}
	})
}

type tapStage[In any] struct{ f func(In) }

func (s *tapStage[In]) push(in In, emit func(In) bool) bool {
	callTap(s.f, in)
	emit(in)
	return false
}
func (s *tapStage[In]) end(emit func(In) bool) {}

func callPred[In any](pred func(In) bool, in In) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if se, isSE := r.(SpacError); isSE {
				panic(se)
			}
			raise(userPanicError(r))
		}
	}()
	return pred(in)
}

func callTap[In any](f func(In), in In) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(SpacError); ok {
				panic(se)
			}
			raise(userPanicError(r))
		}
	}()
	f(in)
}
