package vdom

// Props holds an element's attributes and event handlers. Class and ID are
// distinguished fields; everything else rides in Attrs. Attribute order is
// construction order and matters for emission, not for equality.
type Props struct {
	Class   string
	ID      string
	Attrs   []Attr         // Ordered generic attributes
	Events  []EventHandler // Ordered named event handlers
	OnClick func()         // Distinguished zero-arg click handler
}

// Attr is a single string attribute.
type Attr struct {
	Name  string
	Value string
}

// IsEmpty reports whether this is an empty/nil attribute.
func (a Attr) IsEmpty() bool { return a.Name == "" }

// Event is the payload delivered to a named event handler.
type Event struct {
	Type  string // Event name ("click", "input", ...)
	Value string // Control value for input-like events
}

// EventHandler binds a handler to a named display event.
type EventHandler struct {
	Name    string
	Handler func(Event)
}

// Equal compares attributes by effective name/value set and event handlers
// by name set only; handler functions are not comparable.
func (p Props) Equal(q Props) bool {
	pa, qa := p.attrMap(), q.attrMap()
	if len(pa) != len(qa) {
		return false
	}
	for name, value := range pa {
		if qv, ok := qa[name]; !ok || qv != value {
			return false
		}
	}
	pe, qe := p.EventNames(), q.EventNames()
	if len(pe) != len(qe) {
		return false
	}
	qset := q.eventSet()
	for _, name := range pe {
		if _, ok := qset[name]; !ok {
			return false
		}
	}
	return true
}

// HandlerFor returns the handler registered for the given event name.
// Explicit entries in Events win; OnClick answers for "click" otherwise.
func (p Props) HandlerFor(name string) (func(Event), bool) {
	for _, h := range p.Events {
		if h.Name == name && h.Handler != nil {
			return h.Handler, true
		}
	}
	if name == "click" && p.OnClick != nil {
		click := p.OnClick
		return func(Event) { click() }, true
	}
	return nil, false
}

// AttrList returns the effective attributes in emission order: class, id,
// then Attrs in construction order, with later duplicates overwriting
// earlier values in place.
func (p Props) AttrList() []Attr {
	out := make([]Attr, 0, len(p.Attrs)+2)
	idx := make(map[string]int, len(p.Attrs)+2)
	add := func(name, value string) {
		if name == "" {
			return
		}
		if i, ok := idx[name]; ok {
			out[i].Value = value
			return
		}
		idx[name] = len(out)
		out = append(out, Attr{Name: name, Value: value})
	}
	if p.Class != "" {
		add("class", p.Class)
	}
	if p.ID != "" {
		add("id", p.ID)
	}
	for _, a := range p.Attrs {
		add(a.Name, a.Value)
	}
	return out
}

// attrMap returns the effective attributes as a name to value map.
func (p Props) attrMap() map[string]string {
	list := p.AttrList()
	m := make(map[string]string, len(list))
	for _, a := range list {
		m[a.Name] = a.Value
	}
	return m
}

// EventNames returns the handled event names in emission order: "click"
// first when OnClick is set, then Events in construction order, deduplicated.
func (p Props) EventNames() []string {
	out := make([]string, 0, len(p.Events)+1)
	seen := make(map[string]struct{}, len(p.Events)+1)
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if p.OnClick != nil {
		add("click")
	}
	for _, h := range p.Events {
		if h.Handler != nil {
			add(h.Name)
		}
	}
	return out
}

// eventSet returns the handled event names as a set.
func (p Props) eventSet() map[string]struct{} {
	list := p.EventNames()
	set := make(map[string]struct{}, len(list))
	for _, name := range list {
		set[name] = struct{}{}
	}
	return set
}

// clone returns a copy with fresh attribute and event slices.
func (p Props) clone() Props {
	c := p
	if p.Attrs != nil {
		c.Attrs = append([]Attr(nil), p.Attrs...)
	}
	if p.Events != nil {
		c.Events = append([]EventHandler(nil), p.Events...)
	}
	return c
}
