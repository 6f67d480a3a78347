// events.go defines the markup events consumed by the filter.
package posttext

// EventType represents the kind of a markup event.
type EventType int

const (
	EventOpen      EventType = iota // <tag attr="...">
	EventClose                      // </tag>
	EventText                       // text run between tags
	EventEntityRef                  // &name;
	EventCharRef                    // &#65; or &#x41;
)

// String returns a short name for the event type.
func (t EventType) String() string {
	switch t {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventText:
		return "text"
	case EventEntityRef:
		return "entityref"
	case EventCharRef:
		return "charref"
	default:
		return "unknown"
	}
}

// Attr is a single tag attribute. Keys are lower case.
type Attr struct {
	Key string
	Val string
}

// Event represents a single event from a markup stream.
type Event struct {
	Type  EventType
	Tag   string // set for Open and Close (lower case)
	Attrs []Attr // set for Open, in document order
	Data  string // text for Text, entity name for EntityRef, reference body ("65", "x41") for CharRef
}

// Open returns an open-tag event.
func Open(tag string, attrs ...Attr) Event {
	return Event{Type: EventOpen, Tag: tag, Attrs: attrs}
}

// Close returns a close-tag event.
func Close(tag string) Event {
	return Event{Type: EventClose, Tag: tag}
}

// Text returns a text event.
func Text(data string) Event {
	return Event{Type: EventText, Data: data}
}

// EntityRef returns a named entity reference event.
func EntityRef(name string) Event {
	return Event{Type: EventEntityRef, Data: name}
}

// CharRef returns a numeric character reference event.
func CharRef(ref string) Event {
	return Event{Type: EventCharRef, Data: ref}
}

// lookupAttr returns the value of the named attribute. When the key is
// repeated the last occurrence wins.
func lookupAttr(attrs []Attr, key string) (string, bool) {
	var (
		val   string
		found bool
	)
	for _, a := range attrs {
		if a.Key == key {
			val, found = a.Val, true
		}
	}
	return val, found
}
