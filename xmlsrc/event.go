// Package xmlsrc adapts the standard library's encoding/xml token decoder
// into a spac.TokenSource of structural Events, the XML instance of the
// "concrete tokenizer" external collaborator spac.md §1 keeps out of the
// core engine. Source's channel-based pull loop (source.go) is grounded on
// github.com/arturoeanton/go-xml's xml.Stream[T].IterWithContext, which
// drives encoding/xml.Decoder.Token in a goroutine and hands decoded values
// back over a channel; Source keeps that shape but yields spac Events
// instead of decoding into a caller's struct, since spac's core needs the
// flat token stream, not a materialized value.
package xmlsrc

import (
	"encoding/xml"

	"github.com/spacgo/spac"
	"github.com/spacgo/spac/stackctx"
)

// Kind identifies the structural role of an Event.
type Kind int

const (
	ElementStart Kind = iota
	ElementEnd
	CharData
)

func (k Kind) String() string {
	switch k {
	case ElementStart:
		return "ElementStart"
	case ElementEnd:
		return "ElementEnd"
	case CharData:
		return "CharData"
	default:
		return "Invalid"
	}
}

// Event is one token of an XML event stream. Attrs and Text are only
// meaningful for the Kinds that produce them; encoding/xml's Comment,
// ProcInst and Directive tokens are skipped rather than surfaced, since
// nothing in spac.md's matcher DSL needs them and a Non-goal excludes
// format-specific metadata channels other than structure and content.
type Event struct {
	Kind Kind

	Name xml.Name   // ElementStart / ElementEnd
	Attr []xml.Attr // ElementStart

	Text string // CharData: the decoded character data

	Loc spac.Location
}

// Frame is the XML instantiation of a stackctx.Stack frame value: one open
// element, identified by its qualified name.
type Frame struct {
	Name xml.Name
}

// Stackable is the StackableStrategy for XML event streams. ElementStart
// pushes a frame carrying the element's name; ElementEnd pops it. CharData
// never changes the stack, matching the way spac.md's data model treats
// leaf content as inert with respect to context.
func Stackable(e Event) stackctx.Interpretation[Frame] {
	switch e.Kind {
	case ElementStart:
		return stackctx.Push(Frame{Name: e.Name}, true)
	case ElementEnd:
		return stackctx.Pop[Frame](true)
	default:
		return stackctx.None[Frame]()
	}
}
