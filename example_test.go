package spac_test

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/spacgo/spac"
	"github.com/spacgo/spac/stackctx"
	"github.com/spacgo/spac/xmlsrc"
)

// ExampleSplitter reproduces the Booklist worked example:
// Splitter("library" \ "book").as[text].toList over
// <library><book>A</book><book>B</book></library>.
func ExampleSplitter() {
	matcher := stackctx.Seq[xmlsrc.Frame, struct{}](
		stackctx.Map(xmlsrc.Tag("library"), func(xml.Name) struct{} { return struct{}{} }),
		stackctx.Map(xmlsrc.Tag("book"), func(xml.Name) struct{} { return struct{}{} }),
	)
	joiner := func(struct{}) spac.Parser[xmlsrc.Event, string] {
		return spac.Map(spac.First[xmlsrc.Event](), func(e xmlsrc.Event) string { return e.Text })
	}
	sp := spac.NewSplitter(xmlsrc.Stackable, matcher, joiner)

	src := xmlsrc.NewSource(stringsReader(`<library><book>A</book><book>B</book></library>`))
	var events []xmlsrc.Event
	for {
		e, err := src.Next()
		if err != nil {
			break
		}
		events = append(events, e)
	}

	out, err := sp.ToList().ParseSeq(events)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(out)
	// Output:
	// [A B]
}

// Example_orElse reproduces the unambiguous half of the OrElse worked
// example: on a non-empty stream, the branch that finishes on its very
// first input (firstOpt) wins over one that can only finish at end
// (toList), regardless of chain position.
func Example_orElse() {
	p1 := spac.Map(spac.FirstOpt[int](), func(spac.Option[int]) string { return "x" })
	p2 := spac.Map(spac.ToList[int](), func([]int) string { return "y" })

	out, err := p1.OrElse(p2).ParseSeq([]int{1, 2, 3})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(out)
	// Output:
	// x
}

// Example_expectInputs walks all three ExpectInputs outcomes spac.md §8
// names: full satisfaction, a mismatched input mid-sequence, and the
// stream ending with expectations still outstanding.
func Example_expectInputs() {
	newExpect := func() spac.Parser[int, []int] {
		return spac.ExpectInputs([]spac.Expectation[int]{
			{Label: "1", Test: func(n int) bool { return n == 1 }},
			{Label: "even", Test: func(n int) bool { return n%2 == 0 }},
			{Label: "3", Test: func(n int) bool { return n == 3 }},
		})
	}

	if out, err := newExpect().ParseSeq([]int{1, 2, 3}); err != nil {
		fmt.Println("error:", err)
	} else {
		fmt.Println(out)
	}

	if _, err := newExpect().ParseSeq([]int{1, 7, 3}); err != nil {
		var ui *spac.UnexpectedInputError
		errors.As(err, &ui)
		fmt.Println(ui.Input, ui.Expectations)
	}

	if _, err := newExpect().ParseSeq([]int{1}); err != nil {
		var uf *spac.UnfulfilledInputsError
		errors.As(err, &uf)
		fmt.Println(uf.Expectations)
	}
	// Output:
	// [1 2 3]
	// 7 [even 3]
	// [even 3]
}

// Example_interruptedBy reproduces the InterruptedBy worked example: base
// accumulates everything, but the interrupter (finishing on the value 0)
// cuts it off before 0 and everything after it is seen.
func Example_interruptedBy() {
	base := spac.ToList[int]()
	interrupter := spac.IntoParser(spac.Filter(func(n int) bool { return n == 0 }), spac.First[int]())
	out, err := spac.InterruptedBy(base, interrupter).ParseSeq([]int{3, 2, 1, 0, 5, 4})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(out)
	// Output:
	// [3 2 1]
}

// Example_followedBy reproduces the FollowedBy-with-stack-replay worked
// example: the stackable strategy pushes on multiples of 10 and pops on
// negatives; base finishes the instant it sees 42; the follow-up toList
// first replays whichever pushed frames are still open (10, 20, 30) before
// resuming the live stream (1, 2, 3).
func Example_followedBy() {
	strategy := func(n int) stackctx.Interpretation[int] {
		switch {
		case n > 0 && n%10 == 0:
			return stackctx.Push(n, true)
		case n < 0:
			return stackctx.Pop[int](true)
		default:
			return stackctx.None[int]()
		}
	}
	base := untilValue(42)
	p := spac.FollowedBy(base, strategy, func(string) spac.Parser[int, []int] {
		return spac.ToList[int]()
	})
	input := []int{10, 20, -20, -10, 10, 11, 20, 21, 30, 31, 40, -40, 42, 1, 2, 3}
	out, err := p.ParseSeq(input)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(out)
	// Output:
	// [10 20 30 1 2 3]
}

// Example_fallbackAllFail demonstrates the "failure order, not chain order"
// property spac.md §8/§9 calls out: branch two (chain position 1) here
// fails on the very first input, while branch one (chain position 0) only
// fails on the second — so FallbackChainError.UnderlyingErrors lists
// branch two's error before branch one's, even though branch one comes
// first in the chain.
func Example_fallbackAllFail() {
	branchOne := spac.ExpectInputs([]spac.Expectation[int]{
		{Label: "first", Test: func(n int) bool { return n == 1 }},
		{Label: "second", Test: func(n int) bool { return n == 2 }},
	})
	branchTwo := spac.ExpectInputs([]spac.Expectation[int]{
		{Label: "ninety-nine", Test: func(n int) bool { return n == 99 }},
	})

	_, err := branchOne.OrElse(branchTwo).ParseSeq([]int{1, 5})
	var fc *spac.FallbackChainError
	if !errors.As(err, &fc) {
		fmt.Println("error:", err)
		return
	}
	for _, e := range fc.UnderlyingErrors {
		fmt.Println(e)
	}
	// Output:
	// spac: unexpected input 1, still expecting [ninety-nine]
	// spac: unexpected input 5, still expecting [second]
}
