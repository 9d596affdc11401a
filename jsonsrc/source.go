// Package jsonsrc adapts the standard library's encoding/json token
// decoder into a spac.TokenSource of structural Events, the JSON instance
// of the "concrete tokenizer" external collaborator spac.md §1 deliberately
// keeps out of the core engine.
//
// Source's channel-based pull loop is grounded on the same shape
// xmlsrc.Source uses for encoding/xml.Decoder.Token: the decode loop runs
// on its own goroutine, the usual Go idiom for turning a push-shaped
// generator into a pull-shaped iterator, and hands events back to Next over
// a channel. Unlike encoding/xml, encoding/json.Decoder.Token flattens
// objects and arrays into a bare sequence of Delim/key/value tokens with no
// structural markers of its own beyond '{', '}', '[', ']' and Decoder.More,
// so parseMembers/parseElements below replay jtree's Stream.parseMembers /
// parseElements recursive-descent shape on top of that flatter token
// stream, translating it into spac's richer FieldStart/IndexStart/IndexEnd
// vocabulary instead of driving a caller's Handler.
package jsonsrc

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spacgo/spac"
)

// A Source is a spac.TokenSource[Event] that reads JSON text and reports
// its structure as a flat sequence of Events. It is the concrete,
// out-of-core-scope "token source" spac.md §1 and §6 describe: the core
// engine never imports this package, only the TokenSource contract it
// satisfies.
type Source struct {
	p       *pull
	events  chan Event
	errc    chan error
	started bool
}

// NewSource constructs a Source that reads JSON text from r.
func NewSource(r io.Reader) *Source {
	tr := newOffsetTracker(r)
	dec := json.NewDecoder(tr)
	dec.UseNumber()
	return &Source{p: &pull{dec: dec, tracker: tr}}
}

// Next implements spac.TokenSource[Event]. It returns io.EOF once the
// document has been fully consumed.
func (s *Source) Next() (Event, error) {
	if !s.started {
		s.start()
	}
	e, ok := <-s.events
	if !ok {
		if err := <-s.errc; err != nil {
			return Event{}, err
		}
		return Event{}, io.EOF
	}
	return e, nil
}

func (s *Source) start() {
	s.started = true
	s.events = make(chan Event)
	s.errc = make(chan error, 1)
	s.p.out = s.events
	go func() {
		defer close(s.events)
		err := s.p.parseElement()
		if err == io.EOF {
			s.errc <- nil
			return
		}
		s.errc <- err
	}()
}

// offsetTracker wraps an io.Reader, recording the byte offset of every line
// break it sees so a byte offset reported by json.Decoder.InputOffset can
// later be translated into a 1-based line and 0-based column, the same
// bookkeeping a hand-rolled scanner would otherwise do itself one rune at a
// time.
type offsetTracker struct {
	r          io.Reader
	n          int
	lineStarts []int
}

func newOffsetTracker(r io.Reader) *offsetTracker {
	return &offsetTracker{r: r, lineStarts: []int{0}}
}

func (t *offsetTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == '\n' {
			t.lineStarts = append(t.lineStarts, t.n+i+1)
		}
	}
	t.n += n
	return n, err
}

func (t *offsetTracker) lineCol(offset int) (line, col int) {
	i := sort.SearchInts(t.lineStarts, offset+1) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - t.lineStarts[i]
}

// pull holds the state of one recursive-descent pass over a json.Decoder,
// emitting Events to out as it goes. Its method set mirrors jtree
// Stream.parseElement/parseMembers/parseElements one-for-one; the
// difference is each method sends spac Events instead of calling Handler
// methods, and the token-level lexing that jtree's scanner.go hand-rolls is
// delegated entirely to encoding/json.Decoder.Token.
type pull struct {
	dec     *json.Decoder
	tracker *offsetTracker
	out     chan<- Event
}

func (p *pull) loc() spac.Location {
	pos := int(p.dec.InputOffset())
	line, col := p.tracker.lineCol(pos)
	return spac.Location{
		Span:  spac.Span{Pos: pos, End: pos},
		First: spac.LineCol{Line: line, Column: col},
		Last:  spac.LineCol{Line: line, Column: col},
	}
}

// parseElement consumes a single JSON value of any type and emits the
// corresponding Event(s).
func (p *pull) parseElement() error {
	tok, err := p.dec.Token()
	if err != nil {
		return err
	}
	return p.emit(tok)
}

func (p *pull) emit(tok json.Token) error {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			p.out <- Event{Kind: ObjectStart, Loc: p.loc()}
			if err := p.parseMembers(); err != nil {
				return err
			}
			p.out <- Event{Kind: ObjectEnd, Loc: p.loc()}
		case '[':
			p.out <- Event{Kind: ArrayStart, Loc: p.loc()}
			if err := p.parseElements(); err != nil {
				return err
			}
			p.out <- Event{Kind: ArrayEnd, Loc: p.loc()}
		default:
			return fmt.Errorf("jsonsrc: unexpected delimiter %q", v)
		}
	case string:
		p.out <- Event{Kind: JString, Text: v, Loc: p.loc()}
	case json.Number:
		s := string(v)
		p.out <- Event{Kind: JNumber, Number: s, IsInt: !strings.ContainsAny(s, ".eE"), Loc: p.loc()}
	case bool:
		p.out <- Event{Kind: JBool, Bool: v, Loc: p.loc()}
	case nil:
		p.out <- Event{Kind: JNull, Loc: p.loc()}
	default:
		return fmt.Errorf("jsonsrc: unexpected token %T", tok)
	}
	return nil
}

// parseMembers consumes zero or more "key": value members, relying on
// Decoder.More to tell it when the enclosing object runs out rather than
// watching for comma/close-brace tokens itself.
// Precondition: the opening '{' has already been consumed.
func (p *pull) parseMembers() error {
	for p.dec.More() {
		keyTok, err := p.dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("jsonsrc: object key: got %T, want string", keyTok)
		}
		p.out <- Event{Kind: FieldStart, Field: key, Loc: p.loc()}
		if err := p.parseElement(); err != nil {
			return err
		}
	}
	_, err := p.dec.Token() // consume the closing '}'
	return err
}

// parseElements consumes zero or more array values.
// Precondition: the opening '[' has already been consumed.
func (p *pull) parseElements() error {
	idx := 0
	for p.dec.More() {
		p.out <- Event{Kind: IndexStart, Index: idx, Loc: p.loc()}
		if err := p.parseElement(); err != nil {
			return err
		}
		p.out <- Event{Kind: IndexEnd, Index: idx, Loc: p.loc()}
		idx++
	}
	_, err := p.dec.Token() // consume the closing ']'
	return err
}
