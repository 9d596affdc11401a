package xmlsrc

import (
	"encoding/xml"

	"github.com/spacgo/spac/stackctx"
)

// Tag matches a single open-element frame with the given local name,
// ignoring namespace. It is the XML instantiation of the Matcher DSL
// spac.md §4.3 asks concrete sources to provide, built on stackctx.Predicate
// the same way jsonsrc.Field is.
func Tag(local string) stackctx.Matcher[Frame, xml.Name] {
	return stackctx.Predicate(func(f Frame) (xml.Name, bool) {
		if f.Name.Local == local {
			return f.Name, true
		}
		return xml.Name{}, false
	})
}

// NSTag matches a single open-element frame with the given namespace URI
// and local name.
func NSTag(space, local string) stackctx.Matcher[Frame, xml.Name] {
	return stackctx.Predicate(func(f Frame) (xml.Name, bool) {
		if f.Name.Space == space && f.Name.Local == local {
			return f.Name, true
		}
		return xml.Name{}, false
	})
}

// AnyTag matches any open-element frame and yields its qualified name.
func AnyTag() stackctx.Matcher[Frame, xml.Name] {
	return stackctx.Predicate(func(f Frame) (xml.Name, bool) {
		return f.Name, true
	})
}

// Attr extracts the value of the named attribute from an ElementStart
// Event, reporting false if the attribute is absent. Unlike Tag and
// AnyTag, this consults the Event directly rather than the context stack:
// spac.md's matcher DSL matches stack shape, but attribute values live on
// the triggering event itself, the same way a JSON FieldStart's key lives
// on the event rather than requiring a second frame.
func Attr(e Event, local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
