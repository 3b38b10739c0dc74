// Package surface provides the reference display backend: an in-memory node
// tree that consumes patch batches the way a browser DOM would, plus an HTML
// serializer used for bootstrap pages and test assertions.
//
// The runtime commits component-free trees; surface nodes own mutable state
// and patches mutate them in place.
package surface

import (
	"sort"
	"strings"

	"github.com/loom-ui/loom/pkg/vdom"
)

// Node is a concrete display node.
type Node struct {
	Tag      string
	IsText   bool
	Text     string
	Attrs    []vdom.Attr // Emission order
	Events   map[string]struct{}
	Children []*Node
}

// Build constructs a display node from a committed virtual tree. Committed
// trees are component-free; a component node here means the runtime skipped
// reconciliation, which is a programming error.
func Build(v *vdom.VNode) *Node {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case vdom.KindText:
		return &Node{IsText: true, Text: v.Text}
	case vdom.KindComponent:
		panic("surface: component node reached the backend")
	}
	events := make(map[string]struct{})
	for _, name := range v.Props.EventNames() {
		events[name] = struct{}{}
	}
	n := &Node{
		Tag:    v.Tag,
		Attrs:  v.Props.AttrList(),
		Events: events,
	}
	if len(v.Children) > 0 {
		n.Children = make([]*Node, len(v.Children))
		for i, ch := range v.Children {
			n.Children[i] = Build(ch)
		}
	}
	return n
}

// Equal reports deep equality of two display nodes, comparing attrs as a
// name/value set and events as a name set.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.IsText != o.IsText {
		return false
	}
	if n.IsText {
		return n.Text == o.Text
	}
	if n.Tag != o.Tag {
		return false
	}
	if len(n.Attrs) != len(o.Attrs) {
		return false
	}
	oa := make(map[string]string, len(o.Attrs))
	for _, a := range o.Attrs {
		oa[a.Name] = a.Value
	}
	for _, a := range n.Attrs {
		if v, ok := oa[a.Name]; !ok || v != a.Value {
			return false
		}
	}
	if len(n.Events) != len(o.Events) {
		return false
	}
	for name := range n.Events {
		if _, ok := o.Events[name]; !ok {
			return false
		}
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// HTML serializes the subtree. Event listeners are not markup; they surface
// as a data-on attribute listing handled event names so a bootstrapping
// client can wire them before the first patch batch arrives.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.IsText {
		b.WriteString(escapeHTML(n.Text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}
	if len(n.Events) > 0 {
		names := make([]string, 0, len(n.Events))
		for name := range n.Events {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString(` data-on="`)
		b.WriteString(strings.Join(names, ","))
		b.WriteByte('"')
	}
	if vdom.IsVoidElement(n.Tag) {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, ch := range n.Children {
		ch.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// escapeAttr escapes text for attribute values, additionally covering
// whitespace that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
