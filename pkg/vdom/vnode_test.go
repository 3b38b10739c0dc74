package vdom

import "testing"

func TestCreateElementMixedArgs(t *testing.T) {
	clicked := false
	node := Div(
		Class("card"),
		ID("main"),
		[]Attr{AttrOf("data-x", "1"), AttrOf("data-y", "2")},
		OnClick(func() { clicked = true }),
		Span("child"),
		"shorthand text",
		nil,
	)

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("Kind/Tag = %v/%v, want Element/div", node.Kind, node.Tag)
	}
	if node.Props.Class != "card" {
		t.Errorf("Class = %q, want card", node.Props.Class)
	}
	if node.Props.ID != "main" {
		t.Errorf("ID = %q, want main", node.Props.ID)
	}
	if len(node.Props.Attrs) != 2 {
		t.Errorf("Attrs = %v, want 2 entries", node.Props.Attrs)
	}
	if node.Props.OnClick == nil {
		t.Fatalf("OnClick not captured")
	}
	node.Props.OnClick()
	if !clicked {
		t.Errorf("OnClick handler did not run")
	}
	if len(node.Children) != 2 {
		t.Fatalf("Children = %d, want 2", len(node.Children))
	}
	if node.Children[1].Kind != KindText || node.Children[1].Text != "shorthand text" {
		t.Errorf("string arg should become a text child")
	}
}

func TestTextNodes(t *testing.T) {
	n := Textf("count: %d", 3)
	if n.Kind != KindText || n.Text != "count: 3" {
		t.Errorf("Textf = %+v, want text node 'count: 3'", n)
	}
	if len(n.Children) != 0 || n.Tag != "" {
		t.Errorf("text nodes carry no tag or children")
	}
}

func TestDisabledConditional(t *testing.T) {
	on := Button(Disabled(true))
	off := Button(Disabled(false))

	if len(on.Props.Attrs) != 1 || on.Props.Attrs[0].Name != "disabled" {
		t.Errorf("Disabled(true) should emit the attribute, got %v", on.Props.Attrs)
	}
	if len(off.Props.Attrs) != 0 {
		t.Errorf("Disabled(false) should emit nothing, got %v", off.Props.Attrs)
	}
}

func TestPropsEqual(t *testing.T) {
	a := Props{Class: "x", Attrs: []Attr{{Name: "href", Value: "/"}}}
	b := Props{Attrs: []Attr{{Name: "class", Value: "x"}, {Name: "href", Value: "/"}}}
	if !a.Equal(b) {
		t.Errorf("class via field and class via attr should be equal")
	}

	c := Props{Class: "x", Attrs: []Attr{{Name: "href", Value: "/other"}}}
	if a.Equal(c) {
		t.Errorf("differing attr values should not be equal")
	}

	d := Props{OnClick: func() {}}
	e := Props{Events: []EventHandler{{Name: "click", Handler: func(Event) {}}}}
	if !d.Equal(e) {
		t.Errorf("event handlers compare by name set only")
	}
}

func TestAttrListDedup(t *testing.T) {
	p := Props{Attrs: []Attr{{Name: "a", Value: "1"}, {Name: "a", Value: "2"}}}
	list := p.AttrList()
	if len(list) != 1 || list[0].Value != "2" {
		t.Errorf("AttrList = %v, want single a=2 (last wins)", list)
	}
}

func TestHandlerFor(t *testing.T) {
	var got Event
	p := Props{
		OnClick: func() {},
		Events:  []EventHandler{{Name: "input", Handler: func(e Event) { got = e }}},
	}

	if _, ok := p.HandlerFor("click"); !ok {
		t.Errorf("OnClick should answer for click")
	}
	h, ok := p.HandlerFor("input")
	if !ok {
		t.Fatalf("input handler missing")
	}
	h(Event{Type: "input", Value: "abc"})
	if got.Value != "abc" {
		t.Errorf("handler payload = %+v, want value abc", got)
	}
	if _, ok := p.HandlerFor("keydown"); ok {
		t.Errorf("unregistered event should report no handler")
	}
}

func TestVNodeEqual(t *testing.T) {
	a := Div(Class("x"), Span("hi"))
	b := Div(Class("x"), Span("hi"))
	c := Div(Class("x"), Span("bye"))

	if !a.Equal(b) {
		t.Errorf("structurally equal trees reported unequal")
	}
	if a.Equal(c) {
		t.Errorf("differing text reported equal")
	}
	if a.Equal(nil) {
		t.Errorf("nil comparison should be false")
	}
	var nilNode *VNode
	if !nilNode.Equal(nil) {
		t.Errorf("nil == nil")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Div(Class("x"), AttrOf("a", "1"), Span("hi"))
	cp := orig.Clone()

	if !orig.Equal(cp) {
		t.Fatalf("clone not equal to original")
	}

	cp.Children[0].Children[0].Text = "changed"
	cp.Props.Attrs[0].Value = "2"

	if orig.Children[0].Children[0].Text != "hi" {
		t.Errorf("mutating clone children leaked into original")
	}
	if orig.Props.Attrs[0].Value != "1" {
		t.Errorf("mutating clone attrs leaked into original")
	}
}

func TestPathString(t *testing.T) {
	if got := (Path{}).String(); got != "." {
		t.Errorf("root path = %q, want .", got)
	}
	if got := (Path{0, 2, 1}).String(); got != "0.2.1" {
		t.Errorf("path = %q, want 0.2.1", got)
	}
}

func TestPathChildDoesNotAlias(t *testing.T) {
	base := Path{1}
	a := base.Child(2)
	b := base.Child(3)
	if a.String() != "1.2" || b.String() != "1.3" {
		t.Errorf("Child paths alias: a=%v b=%v", a, b)
	}
}

func TestPatchString(t *testing.T) {
	p := Patch{Op: OpSetAttr, Path: Path{0, 1}, Name: "class", Value: "x"}
	if got := p.String(); got != `SetAttr(0.1, class="x")` {
		t.Errorf("String = %q", got)
	}
	unknown := Patch{Op: PatchOp(0xEE)}
	if got := unknown.String(); got != "Unknown(0xEE)" {
		t.Errorf("String = %q", got)
	}
}

func TestOpFromString(t *testing.T) {
	for _, op := range []PatchOp{OpReplace, OpUpdateText, OpSetAttr, OpRemoveAttr, OpInsertChild, OpRemoveChild, OpAddEvent, OpRemoveEvent} {
		got, ok := OpFromString(op.String())
		if !ok || got != op {
			t.Errorf("OpFromString(%s) = %v/%v", op, got, ok)
		}
	}
	if _, ok := OpFromString("Nope"); ok {
		t.Errorf("unknown name should not resolve")
	}
}

func TestIsVoidElement(t *testing.T) {
	if !IsVoidElement("br") || !IsVoidElement("input") {
		t.Errorf("br and input are void")
	}
	if IsVoidElement("div") {
		t.Errorf("div is not void")
	}
}
