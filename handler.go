// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package spac implements a streaming, pull-based parser combinator engine
// for hierarchical event streams (XML and JSON being the primary
// instantiations via the sibling xmlsrc and jsonsrc packages).
//
// # Handlers
//
// Every runtime node — a parser, a transformer, a splitter's sub-parser — is
// a [Handler]. The driver loop advances a [TokenSource] one event at a time
// and feeds each event through the handler tree, exactly the way
// github.com/creachadair/jtree's Stream feeds tokens through a
// jtree.Handler. Where jtree's Handler has a method per JSON grammar
// production (BeginObject, EndObject, ...), spac's Handler is the single
// shared shape every combinator is built from: HandleInput, HandleError,
// HandleEnd, Finished.
//
// # Parsers, transformers, splitters
//
// A [Parser] is a stateless factory for Handlers that produce one result. A
// Transformer (see transformer.go) is a factory that, given a downstream
// handler, produces an upstream one — a stream-to-stream stage. A Splitter
// (see splitter.go) identifies sub-streams by matching the context
// stack and dispatches a fresh sub-parser per match.
package spac

// A TokenSource produces the events of a parse, one at a time, in document
// order. Next returns io.EOF when the input is exhausted. A TokenSource
// reports at most one error, and having reported one (or io.EOF) it is not
// read from again.
//
// Concrete token sources (lexical scanners, adapters from encoding/xml or
// encoding/json) are external collaborators: spac's core only depends on
// this contract, never on a particular tokenizer.
type TokenSource[In any] interface {
	Next() (In, error)
}

// Handler is the one-event-at-a-time state machine every runtime node in
// the engine is built from.
//
// HandleInput processes one input and reports whether the handler has
// finished (done == true), in which case out is the final result.
// HandleInput must not be called again once Finished reports true.
//
// HandleError notifies the handler that an upstream or sibling failure
// occurred (for example, one branch of an OrElse died, or a token source
// failed). Most handlers have nothing useful to do with this and should
// return the zero value and false, letting the error propagate; a handler
// that can recover (or that wants to take a final snapshot before the
// failure unwinds) returns true with its adopted result.
//
// HandleEnd is called at most once, only if the handler has not already
// finished, when the token source is exhausted. It returns whatever final
// result the handler can produce from what it has already seen.
//
// Finished reports whether the handler has already produced a result; once
// true it stays true for the life of the handler.
type Handler[In, Out any] interface {
	HandleInput(in In) (out Out, done bool)
	HandleError(err error) (out Out, done bool)
	HandleEnd() Out
	Finished() bool
}

// A HandlerFactory produces a fresh, independent Handler. A Parser is, at
// bottom, a HandlerFactory value; a Transformer or Splitter yields one once
// attached to a downstream Parser (IntoParser, Splitter.ToList). Each
// Handler produced owns no state shared with any other.
type HandlerFactory[In, Out any] func() Handler[In, Out]

// finishedFlag is embedded by handler implementations that need the common
// "done means done forever" bookkeeping, mirroring how jtree's parseHandler
// tracks its stk slice as the single source of truth for its own state.
type finishedFlag struct{ done bool }

func (f *finishedFlag) Finished() bool { return f.done }
func (f *finishedFlag) finish()        { f.done = true }
