package vdom

import "fmt"

// voidElements cannot have children when serialized.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement reports whether the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// ClickHandler is the distinguished zero-arg click handler form produced by
// OnClick and routed into Props.OnClick.
type ClickHandler func()

// createElement builds an element node from mixed arguments. Arguments can
// be nil, Attr, []Attr, EventHandler, ClickHandler, *VNode, []*VNode, or a
// string (text child shorthand). Nil entries are skipped so callers can
// build conditionally.
func createElement(tag string, args []any) *VNode {
	node := &VNode{Kind: KindElement, Tag: tag}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue

		case Attr:
			applyAttr(node, v)

		case []Attr:
			for _, a := range v {
				applyAttr(node, a)
			}

		case EventHandler:
			if v.Handler != nil {
				node.Props.Events = append(node.Props.Events, v)
			}

		case ClickHandler:
			if v != nil {
				node.Props.OnClick = v
			}

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			node.Children = append(node.Children, NewText(v))
		}
	}
	return node
}

func applyAttr(node *VNode, a Attr) {
	switch a.Name {
	case "":
		// Empty attrs come from conditional helpers like Disabled(false).
	case "class":
		node.Props.Class = a.Value
	case "id":
		node.Props.ID = a.Value
	default:
		node.Props.Attrs = append(node.Props.Attrs, a)
	}
}

// Text creates a text node.
func Text(s string) *VNode { return NewText(s) }

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return NewText(fmt.Sprintf(format, args...))
}

// Attribute helpers

// Class sets the class attribute.
func Class(v string) Attr { return Attr{Name: "class", Value: v} }

// ID sets the id attribute.
func ID(v string) Attr { return Attr{Name: "id", Value: v} }

// Style sets the style attribute.
func Style(v string) Attr { return Attr{Name: "style", Value: v} }

// AttrOf builds an arbitrary attribute.
func AttrOf(name, value string) Attr { return Attr{Name: name, Value: value} }

// Value sets the value attribute.
func Value(v string) Attr { return Attr{Name: "value", Value: v} }

// Placeholder sets the placeholder attribute.
func Placeholder(v string) Attr { return Attr{Name: "placeholder", Value: v} }

// Type sets the type attribute (input and button kinds).
func Type(v string) Attr { return Attr{Name: "type", Value: v} }

// Href sets the href attribute.
func Href(v string) Attr { return Attr{Name: "href", Value: v} }

// Src sets the src attribute.
func Src(v string) Attr { return Attr{Name: "src", Value: v} }

// Disabled emits the disabled attribute when b is true and nothing otherwise.
func Disabled(b bool) Attr {
	if !b {
		return Attr{}
	}
	return Attr{Name: "disabled", Value: "disabled"}
}

// Event helpers

// On binds a handler to a named event.
func On(name string, fn func(Event)) EventHandler {
	return EventHandler{Name: name, Handler: fn}
}

// OnClick binds a zero-argument click handler.
func OnClick(fn func()) ClickHandler { return ClickHandler(fn) }

// OnInput binds an input handler; the event carries the control's value.
func OnInput(fn func(Event)) EventHandler {
	return EventHandler{Name: "input", Handler: fn}
}

// OnChange binds a change handler.
func OnChange(fn func(Event)) EventHandler {
	return EventHandler{Name: "change", Handler: fn}
}

// OnSubmit binds a submit handler.
func OnSubmit(fn func(Event)) EventHandler {
	return EventHandler{Name: "submit", Handler: fn}
}

// Document structure elements

func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Article(args ...any) *VNode { return createElement("article", args) }

// Text content elements

func Div(args ...any) *VNode        { return createElement("div", args) }
func P(args ...any) *VNode          { return createElement("p", args) }
func Pre(args ...any) *VNode        { return createElement("pre", args) }
func Blockquote(args ...any) *VNode { return createElement("blockquote", args) }
func Ul(args ...any) *VNode         { return createElement("ul", args) }
func Ol(args ...any) *VNode         { return createElement("ol", args) }
func Li(args ...any) *VNode         { return createElement("li", args) }
func Hr(args ...any) *VNode         { return createElement("hr", args) }

// Headings

func H1(args ...any) *VNode { return createElement("h1", args) }
func H2(args ...any) *VNode { return createElement("h2", args) }
func H3(args ...any) *VNode { return createElement("h3", args) }
func H4(args ...any) *VNode { return createElement("h4", args) }

// Inline text elements

func Span(args ...any) *VNode   { return createElement("span", args) }
func A(args ...any) *VNode      { return createElement("a", args) }
func Strong(args ...any) *VNode { return createElement("strong", args) }
func Em(args ...any) *VNode     { return createElement("em", args) }
func Code(args ...any) *VNode   { return createElement("code", args) }
func Small(args ...any) *VNode  { return createElement("small", args) }
func Br(args ...any) *VNode     { return createElement("br", args) }

// Media

func Img(args ...any) *VNode { return createElement("img", args) }

// Forms

func Form(args ...any) *VNode     { return createElement("form", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Select(args ...any) *VNode   { return createElement("select", args) }
func Option(args ...any) *VNode   { return createElement("option", args) }
func Textarea(args ...any) *VNode { return createElement("textarea", args) }

// Tables

func Table(args ...any) *VNode { return createElement("table", args) }
func Thead(args ...any) *VNode { return createElement("thead", args) }
func Tbody(args ...any) *VNode { return createElement("tbody", args) }
func Tr(args ...any) *VNode    { return createElement("tr", args) }
func Th(args ...any) *VNode    { return createElement("th", args) }
func Td(args ...any) *VNode    { return createElement("td", args) }
