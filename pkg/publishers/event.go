package publishers

// Event is a single payload published downstream. Body is carried verbatim.
type Event struct {
	Body        []byte
	ContentType string
	Properties  map[string]string
}

// NewEvent wraps body in an Event without modifying it.
func NewEvent(body string) Event {
	return Event{Body: []byte(body)}
}

// size approximates the wire footprint used for batch limits.
func (e Event) size() int {
	n := len(e.Body) + len(e.ContentType)
	for k, v := range e.Properties {
		n += len(k) + len(v)
	}
	return n
}

func (e Event) clone() Event {
	out := Event{ContentType: e.ContentType}
	if e.Body != nil {
		out.Body = append([]byte{}, e.Body...)
	}
	if len(e.Properties) > 0 {
		out.Properties = make(map[string]string, len(e.Properties))
		for k, v := range e.Properties {
			out.Properties[k] = v
		}
	}
	return out
}
