package core

// Event types carried by listeners.
const (
	EventClick   = "click"
	EventChange  = "change"
	EventBlur    = "blur"
	EventKeyDown = "keydown"
)

// EventTypes lists every event a host element can listen to, in the order
// hosts apply listener updates.
var EventTypes = []string{EventClick, EventChange, EventBlur, EventKeyDown}

// Event is the payload delivered to a Listener.
type Event struct {
	Type    string `json:"type"`
	Value   string `json:"value,omitempty"`
	Key     string `json:"key,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

// Listener is an event-listener handle. Two listeners are equal only if they
// are the same handle, so a component that creates a new handle on every
// render causes the host to rebind it.
type Listener struct {
	handle func(Event)
}

// On wraps fn in a new listener handle.
func On(fn func(Event)) *Listener {
	return &Listener{handle: fn}
}

// Invoke calls the listener. A nil listener does nothing.
func (l *Listener) Invoke(e Event) {
	if l == nil || l.handle == nil {
		return
	}
	l.handle(e)
}

// Props is the property bag of host and text elements.
type Props struct {
	ClassName   string `json:"className,omitempty"`
	NodeValue   string `json:"nodeValue,omitempty"`
	InputType   string `json:"type,omitempty"`
	Value       string `json:"value,omitempty"`
	Checked     *bool  `json:"checked,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`

	OnClick   *Listener `json:"-"`
	OnChange  *Listener `json:"-"`
	OnBlur    *Listener `json:"-"`
	OnKeyDown *Listener `json:"-"`
}

// Bool returns a pointer to b, for Props.Checked.
func Bool(b bool) *bool {
	return &b
}

// Listener returns the listener bound to the given event type.
func (p *Props) Listener(eventType string) *Listener {
	if p == nil {
		return nil
	}
	switch eventType {
	case EventClick:
		return p.OnClick
	case EventChange:
		return p.OnChange
	case EventBlur:
		return p.OnBlur
	case EventKeyDown:
		return p.OnKeyDown
	}
	return nil
}

// BoundEvents returns the event types that have a listener.
func (p *Props) BoundEvents() []string {
	var bound []string
	for _, eventType := range EventTypes {
		if p.Listener(eventType) != nil {
			bound = append(bound, eventType)
		}
	}
	return bound
}

// Equal is a shallow comparison: scalar fields by value, listeners by handle.
// A nil Props equals an empty one.
func (p *Props) Equal(other *Props) bool {
	if p == other {
		return true
	}
	a, b := p.orEmpty(), other.orEmpty()
	return a.ClassName == b.ClassName &&
		a.NodeValue == b.NodeValue &&
		a.InputType == b.InputType &&
		a.Value == b.Value &&
		boolPtrEqual(a.Checked, b.Checked) &&
		a.Placeholder == b.Placeholder &&
		a.OnClick == b.OnClick &&
		a.OnChange == b.OnChange &&
		a.OnBlur == b.OnBlur &&
		a.OnKeyDown == b.OnKeyDown
}

func (p *Props) orEmpty() *Props {
	if p == nil {
		return &Props{}
	}
	return p
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
