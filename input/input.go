// Package input normalizes the heterogeneous change-event shapes produced by
// UI bindings into a single string value. Instead of sniffing shapes at
// runtime, each platform binding constructs a tagged Change and the adapter
// stays a total function over the closed set of kinds.
package input

// Kind tags the origin of an input change.
type Kind int

const (
	// KindUnknown is the zero value; Apply ignores it.
	KindUnknown Kind = iota
	// KindRaw is a plain string value.
	KindRaw
	// KindNativeEvent is a native text-change event carrying nativeEvent.text.
	KindNativeEvent
	// KindDOMEvent is a web form event carrying currentTarget.value.
	KindDOMEvent
)

// Change is one normalized input-change event.
type Change struct {
	Kind  Kind
	Value string
}

// Raw wraps a plain string value.
func Raw(value string) Change {
	return Change{Kind: KindRaw, Value: value}
}

// NativeEvent wraps the text of a native text-change event.
func NativeEvent(text string) Change {
	return Change{Kind: KindNativeEvent, Value: text}
}

// DOMEvent wraps the value of a web form event's current target.
func DOMEvent(value string) Change {
	return Change{Kind: KindDOMEvent, Value: value}
}

// Apply forwards the change's value to the setter exactly once. Unknown
// kinds, including the zero Change, do not invoke the setter at all; a
// malformed event must never clobber form state.
func Apply(change Change, setter func(string)) {
	if setter == nil {
		return
	}
	switch change.Kind {
	case KindRaw, KindNativeEvent, KindDOMEvent:
		setter(change.Value)
	}
}
