package jsonsrc

import (
	"github.com/spacgo/spac"
	"github.com/spacgo/spac/stackctx"
)

// Kind identifies the structural role of an Event.
type Kind int

// The JSON event vocabulary. There is deliberately no FieldEnd: a member's
// end is implied by the next FieldStart or by ObjectEnd, the same way a
// real streaming JSON API (and spac's own spec) treats object members.
// Array elements, by contrast, get an explicit IndexStart/IndexEnd pair.
const (
	ObjectStart Kind = iota
	ObjectEnd
	ArrayStart
	ArrayEnd
	FieldStart
	IndexStart
	IndexEnd
	JString
	JNumber
	JBool
	JNull
)

func (k Kind) String() string {
	switch k {
	case ObjectStart:
		return "ObjectStart"
	case ObjectEnd:
		return "ObjectEnd"
	case ArrayStart:
		return "ArrayStart"
	case ArrayEnd:
		return "ArrayEnd"
	case FieldStart:
		return "FieldStart"
	case IndexStart:
		return "IndexStart"
	case IndexEnd:
		return "IndexEnd"
	case JString:
		return "JString"
	case JNumber:
		return "JNumber"
	case JBool:
		return "JBool"
	case JNull:
		return "JNull"
	default:
		return "Invalid"
	}
}

// Event is one token of a JSON event stream: an immutable value, per spac's
// data model (spac.md §3). Unlike a hand-rolled scanner's raw undecoded
// text, Text and Number already carry the decoded value encoding/json's
// own Decoder produced, the same way xmlsrc.Event.Text is the decoded
// character data encoding/xml's Decoder handed back.
type Event struct {
	Kind Kind

	Field string // FieldStart: the object member key
	Index int    // IndexStart / IndexEnd: the array offset

	Text   string // JString: the decoded string value
	Number string // JNumber: the literal number text, full precision preserved
	IsInt  bool   // JNumber: whether Number parses as an integer
	Bool   bool   // JBool: the decoded value

	Loc spac.Location
}

// FrameKind distinguishes the two container shapes a Frame can describe.
type FrameKind int

const (
	// ObjectFrame is pushed by ObjectStart and popped by ObjectEnd. Key
	// holds the most recently opened member's name, "" until the first
	// FieldStart of this object.
	ObjectFrame FrameKind = iota
	// ArrayFrame is pushed by ArrayStart and popped by ArrayEnd. It carries
	// no per-element state of its own — that lives in the nested IndexFrame
	// each element gets.
	ArrayFrame
	// IndexFrame is pushed by IndexStart and popped by IndexEnd.
	IndexFrame
)

// Frame is the JSON instantiation of a stackctx.Stack frame value.
type Frame struct {
	Kind  FrameKind
	Key   string // ObjectFrame only
	Index int    // IndexFrame only
}

// Stackable is the StackableStrategy for JSON event streams: the pure rule
// telling the engine how each Event affects a context stack of Frame
// values. ObjectStart/ArrayStart/IndexStart push; ObjectEnd/ArrayEnd/
// IndexEnd pop; FieldStart replaces the enclosing object's frame in place
// (see stackctx.Sibling) rather than opening a new depth level, since JSON
// gives members no end-of-member event of their own.
func Stackable(e Event) stackctx.Interpretation[Frame] {
	switch e.Kind {
	case ObjectStart:
		return stackctx.Push(Frame{Kind: ObjectFrame}, true)
	case ObjectEnd:
		return stackctx.Pop[Frame](true)
	case ArrayStart:
		return stackctx.Push(Frame{Kind: ArrayFrame}, true)
	case ArrayEnd:
		return stackctx.Pop[Frame](true)
	case FieldStart:
		return stackctx.Sibling(Frame{Kind: ObjectFrame, Key: e.Field}, true)
	case IndexStart:
		return stackctx.Push(Frame{Kind: IndexFrame, Index: e.Index}, true)
	case IndexEnd:
		return stackctx.Pop[Frame](true)
	default:
		return stackctx.None[Frame]()
	}
}
