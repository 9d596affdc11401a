package jsonsrc

import "github.com/spacgo/spac/stackctx"

// Field matches a single stack frame that is an object member with the
// given key, consuming it from the prefix. It is the JSON instantiation of
// the Matcher DSL spac.md §4.3 asks concrete sources to provide, built
// directly on stackctx.Predicate the way stackctx's own Seq/Alt helpers
// are built on stackctx.Matcher.
func Field(key string) stackctx.Matcher[Frame, string] {
	return stackctx.Predicate(func(f Frame) (string, bool) {
		if f.Kind == ObjectFrame && f.Key == key {
			return f.Key, true
		}
		return "", false
	})
}

// AnyField matches any object-member frame, regardless of key, and yields
// the key it found.
func AnyField() stackctx.Matcher[Frame, string] {
	return stackctx.Predicate(func(f Frame) (string, bool) {
		if f.Kind == ObjectFrame && f.Key != "" {
			return f.Key, true
		}
		return "", false
	})
}

// Index matches a single array-element frame at exactly the given offset.
func Index(i int) stackctx.Matcher[Frame, int] {
	return stackctx.Predicate(func(f Frame) (int, bool) {
		if f.Kind == IndexFrame && f.Index == i {
			return f.Index, true
		}
		return 0, false
	})
}

// AnyIndex matches any array-element frame and yields its offset.
func AnyIndex() stackctx.Matcher[Frame, int] {
	return stackctx.Predicate(func(f Frame) (int, bool) {
		if f.Kind == IndexFrame {
			return f.Index, true
		}
		return 0, false
	})
}

// InObject matches an open object frame, keyed or not, ignoring its member
// name. Like every Predicate matcher it consumes that frame, so a Field
// after it in a Seq is tested against the next frame up, not this one.
// Useful as the first element of a Seq when a splitter only cares that it
// is inside some object, not which member.
func InObject() stackctx.Matcher[Frame, struct{}] {
	return stackctx.Predicate(func(f Frame) (struct{}, bool) {
		if f.Kind == ObjectFrame {
			return struct{}{}, true
		}
		return struct{}{}, false
	})
}

// InArray matches an open array frame.
func InArray() stackctx.Matcher[Frame, struct{}] {
	return stackctx.Predicate(func(f Frame) (struct{}, bool) {
		if f.Kind == ArrayFrame {
			return struct{}{}, true
		}
		return struct{}{}, false
	})
}
