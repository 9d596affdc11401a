package stackctx_test

import (
	"testing"

	"github.com/spacgo/spac/stackctx"
)

func tagFrame(name string) func(string) (string, bool) {
	return func(s string) (string, bool) {
		if s == name {
			return s, true
		}
		return "", false
	}
}

func TestMatcherSeq(t *testing.T) {
	var stack stackctx.Stack[string]
	stack.Push("library", nil)
	stack.Push("book", nil)

	m := stackctx.Seq[string, string](
		stackctx.Predicate(tagFrame("library")),
		stackctx.Predicate(tagFrame("book")),
	)

	v, ok := stackctx.MatchStack(m, &stack)
	if !ok || v != "book" {
		t.Fatalf("MatchStack = %q, %v; want book, true", v, ok)
	}

	// Monotone: pushing more frames on top keeps the match alive.
	stack.Push("chapter", nil)
	if _, ok := stackctx.MatchStack(m, &stack); !ok {
		t.Error("match should survive a push above the matched frames")
	}

	// Popping one of the consumed frames breaks the match.
	stack.Pop()
	stack.Pop()
	if _, ok := stackctx.MatchStack(m, &stack); ok {
		t.Error("match should not survive popping a consumed frame")
	}
}

func TestMatcherAlt(t *testing.T) {
	var stack stackctx.Stack[string]
	stack.Push("post", nil)

	m := stackctx.Alt[string, string](
		stackctx.Predicate(tagFrame("book")),
		stackctx.Predicate(tagFrame("post")),
	)
	v, ok := stackctx.MatchStack(m, &stack)
	if !ok || v != "post" {
		t.Fatalf("MatchStack = %q, %v; want post, true", v, ok)
	}
}

func TestMatcherAny(t *testing.T) {
	var stack stackctx.Stack[string]
	stack.Push("whatever", nil)

	v, ok := stackctx.MatchStack(stackctx.Any[string](), &stack)
	if !ok || v != "whatever" {
		t.Fatalf("MatchStack = %q, %v; want whatever, true", v, ok)
	}
}

func TestMatcherMap(t *testing.T) {
	var stack stackctx.Stack[string]
	stack.Push("book", nil)

	m := stackctx.Map(stackctx.Predicate(tagFrame("book")), func(s string) int { return len(s) })
	v, ok := stackctx.MatchStack(m, &stack)
	if !ok || v != 4 {
		t.Fatalf("MatchStack = %d, %v; want 4, true", v, ok)
	}
}
