package xmlsrc

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/spacgo/spac"
)

// A Source is a spac.TokenSource[Event] that reads XML text and reports its
// structure as a flat sequence of Events. Like jsonsrc.Source, it is pull
// from the core engine's point of view but runs its decode loop on its own
// goroutine internally, the same shape
// github.com/arturoeanton/go-xml's Stream.IterWithContext uses to turn
// encoding/xml.Decoder's Token method into a channel of values.
type Source struct {
	dec     *xml.Decoder
	events  chan Event
	errc    chan error
	started bool
}

// NewSource constructs a Source that reads XML text from r.
func NewSource(r io.Reader) *Source {
	return &Source{dec: xml.NewDecoder(r)}
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
	go func() {
		defer close(s.events)
		for {
			tok, err := s.dec.Token()
			if err == io.EOF {
				s.errc <- nil
				return
			}
			if err != nil {
				s.errc <- fmt.Errorf("xmlsrc: %w", err)
				return
			}
			if e, ok := s.toEvent(tok); ok {
				s.events <- e
			}
		}
	}()
}

func (s *Source) loc() spac.Location {
	line, col := s.dec.InputPos()
	pos := int(s.dec.InputOffset())
	return spac.Location{
		Span:  spac.Span{Pos: pos, End: pos},
		First: spac.LineCol{Line: line, Column: col},
		Last:  spac.LineCol{Line: line, Column: col},
	}
}

// toEvent maps one encoding/xml token to a spac Event. Comment, ProcInst
// and Directive tokens report false and are skipped by the caller, the way
// jtree's scanner silently skips insignificant whitespace between tokens.
func (s *Source) toEvent(tok xml.Token) (Event, bool) {
	switch t := tok.(type) {
	case xml.StartElement:
		attrs := append([]xml.Attr(nil), t.Attr...)
		return Event{Kind: ElementStart, Name: t.Name, Attr: attrs, Loc: s.loc()}, true
	case xml.EndElement:
		return Event{Kind: ElementEnd, Name: t.Name, Loc: s.loc()}, true
	case xml.CharData:
		text := string(t)
		if isAllBlank(text) {
			return Event{}, false
		}
		return Event{Kind: CharData, Text: text, Loc: s.loc()}, true
	default:
		return Event{}, false
	}
}

func isAllBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return false
		}
	}
	return true
}
