package vdom

import "testing"

func TestDiffBothNil(t *testing.T) {
	patches := Diff(nil, nil)
	if len(patches) != 0 {
		t.Errorf("Expected 0 patches, got %d", len(patches))
	}
}

func TestDiffIdenticalTree(t *testing.T) {
	tree := Div(Class("box"),
		H1("Title"),
		Ul(Li("a"), Li("b")),
	)

	patches := Diff(tree, tree)

	if len(patches) != 0 {
		t.Errorf("Expected 0 patches for identical tree, got %d: %v", len(patches), patches)
	}
}

func TestDiffStructurallyEqualTrees(t *testing.T) {
	build := func() *VNode {
		return Div(Class("box"), ID("root"),
			Span("hello"),
			Button(OnClick(func() {}), "go"),
		)
	}

	prev := build()
	next := build()
	if !prev.Equal(next) {
		t.Fatalf("Expected trees to be structurally equal")
	}

	patches := Diff(prev, next)
	if len(patches) != 0 {
		t.Errorf("Expected 0 patches for equal trees, got %d: %v", len(patches), patches)
	}
}

func TestDiffTextChange(t *testing.T) {
	prev := Text("Hello")
	next := Text("World")

	patches := Diff(prev, next)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Op != OpUpdateText {
		t.Errorf("Op = %v, want UpdateText", patches[0].Op)
	}
	if patches[0].Value != "World" {
		t.Errorf("Value = %v, want World", patches[0].Value)
	}
	if len(patches[0].Path) != 0 {
		t.Errorf("Path = %v, want root", patches[0].Path)
	}
}

func TestDiffTextUnchanged(t *testing.T) {
	patches := Diff(Text("Hello"), Text("Hello"))
	if len(patches) != 0 {
		t.Errorf("Expected 0 patches for unchanged text, got %d", len(patches))
	}
}

func TestDiffKindChange(t *testing.T) {
	prev := Text("Hello")
	next := Div(Text("Hello"))

	patches := Diff(prev, next)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Op != OpReplace {
		t.Errorf("Op = %v, want Replace", patches[0].Op)
	}
	if patches[0].Node != next {
		t.Errorf("Node should carry the replacement tree")
	}
}

func TestDiffTagChange(t *testing.T) {
	patches := Diff(Div(), Span())

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Op != OpReplace {
		t.Errorf("Op = %v, want Replace", patches[0].Op)
	}
}

func TestDiffComponentAlwaysReplaces(t *testing.T) {
	// Two distinct component values, even of the same type, never diff
	// across the boundary.
	prev := NewComponent(&struct{ n int }{1})
	next := NewComponent(&struct{ n int }{1})

	patches := Diff(prev, next)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Op != OpReplace {
		t.Errorf("Op = %v, want Replace", patches[0].Op)
	}
}

func TestDiffComponentSameIdentity(t *testing.T) {
	c := &struct{ n int }{1}
	patches := Diff(NewComponent(c), NewComponent(c))
	if len(patches) != 0 {
		t.Errorf("Expected 0 patches for same component value, got %d", len(patches))
	}
}

func TestDiffComponentFuncsNeverIdentical(t *testing.T) {
	// Closures have no stable identity, so function components in two
	// distinct trees always replace.
	fn := func() int { return 1 }
	patches := Diff(NewComponent(fn), NewComponent(fn))
	if len(patches) != 1 || patches[0].Op != OpReplace {
		t.Fatalf("Expected a single Replace, got %v", patches)
	}
}

func TestDiffPropsCompleteness(t *testing.T) {
	prev := Div(AttrOf("a", "1"), AttrOf("b", "2"))
	next := Div(AttrOf("b", "3"), AttrOf("c", "4"))

	patches := Diff(prev, next)

	if len(patches) != 3 {
		t.Fatalf("Expected 3 patches, got %d: %v", len(patches), patches)
	}
	if patches[0].Op != OpRemoveAttr || patches[0].Name != "a" {
		t.Errorf("patches[0] = %v, want RemoveAttr(a)", patches[0])
	}
	if patches[1].Op != OpSetAttr || patches[1].Name != "b" || patches[1].Value != "3" {
		t.Errorf("patches[1] = %v, want SetAttr(b=3)", patches[1])
	}
	if patches[2].Op != OpSetAttr || patches[2].Name != "c" || patches[2].Value != "4" {
		t.Errorf("patches[2] = %v, want SetAttr(c=4)", patches[2])
	}
}

func TestDiffClassAndIDAsAttrs(t *testing.T) {
	prev := Div(Class("old"), ID("x"))
	next := Div(Class("new"))

	patches := Diff(prev, next)

	if len(patches) != 2 {
		t.Fatalf("Expected 2 patches, got %d: %v", len(patches), patches)
	}
	if patches[0].Op != OpSetAttr || patches[0].Name != "class" || patches[0].Value != "new" {
		t.Errorf("patches[0] = %v, want SetAttr(class=new)", patches[0])
	}
	if patches[1].Op != OpRemoveAttr || patches[1].Name != "id" {
		t.Errorf("patches[1] = %v, want RemoveAttr(id)", patches[1])
	}
}

func TestDiffEventNameSet(t *testing.T) {
	prev := Button(OnClick(func() {}))
	next := Button(OnInput(func(Event) {}))

	patches := Diff(prev, next)

	if len(patches) != 2 {
		t.Fatalf("Expected 2 patches, got %d: %v", len(patches), patches)
	}
	if patches[0].Op != OpRemoveEvent || patches[0].Name != "click" {
		t.Errorf("patches[0] = %v, want RemoveEvent(click)", patches[0])
	}
	if patches[1].Op != OpAddEvent || patches[1].Name != "input" {
		t.Errorf("patches[1] = %v, want AddEvent(input)", patches[1])
	}
}

func TestDiffHandlerSwapSameNameNoPatch(t *testing.T) {
	prev := Button(OnClick(func() {}))
	next := Button(OnClick(func() {}))

	patches := Diff(prev, next)

	if len(patches) != 0 {
		t.Errorf("Expected 0 patches for handler swap under same name, got %d: %v", len(patches), patches)
	}
}

func TestDiffChildrenGrow(t *testing.T) {
	prev := Ul(Li("a"), Li("b"), Li("c"))
	next := Ul(Li("a"), Li("b"), Li("c"), Li("d"), Li("e"))

	patches := Diff(prev, next)

	if len(patches) != 2 {
		t.Fatalf("Expected 2 patches, got %d: %v", len(patches), patches)
	}
	if patches[0].Op != OpInsertChild || patches[0].Index != 3 {
		t.Errorf("patches[0] = %v, want InsertChild at 3", patches[0])
	}
	if patches[1].Op != OpInsertChild || patches[1].Index != 4 {
		t.Errorf("patches[1] = %v, want InsertChild at 4", patches[1])
	}
}

func TestDiffChildrenShrink(t *testing.T) {
	prev := Ul(Li("a"), Li("b"), Li("c"), Li("d"), Li("e"))
	next := Ul(Li("a"), Li("b"), Li("c"))

	patches := Diff(prev, next)

	if len(patches) != 2 {
		t.Fatalf("Expected 2 patches, got %d: %v", len(patches), patches)
	}
	// Removes come out in descending index order so in-order application
	// stays index-stable.
	if patches[0].Op != OpRemoveChild || patches[0].Index != 4 {
		t.Errorf("patches[0] = %v, want RemoveChild at 4", patches[0])
	}
	if patches[1].Op != OpRemoveChild || patches[1].Index != 3 {
		t.Errorf("patches[1] = %v, want RemoveChild at 3", patches[1])
	}
}

func TestDiffListAppendOneInsert(t *testing.T) {
	prev := Ul(Li("milk"), Li("eggs"))
	next := Ul(Li("milk"), Li("eggs"), Li("bread"))

	patches := Diff(prev, next)

	if len(patches) != 1 {
		t.Fatalf("Expected exactly 1 patch, got %d: %v", len(patches), patches)
	}
	if patches[0].Op != OpInsertChild || patches[0].Index != 2 {
		t.Errorf("patches[0] = %v, want InsertChild at 2", patches[0])
	}
	if patches[0].Node == nil || len(patches[0].Node.Children) != 1 {
		t.Fatalf("InsertChild should carry the new subtree")
	}
	if patches[0].Node.Children[0].Text != "bread" {
		t.Errorf("inserted text = %q, want bread", patches[0].Node.Children[0].Text)
	}
}

func TestDiffNestedPath(t *testing.T) {
	prev := Div(
		Span("keep"),
		Div(
			P("old"),
		),
	)
	next := Div(
		Span("keep"),
		Div(
			P("new"),
		),
	)

	patches := Diff(prev, next)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d: %v", len(patches), patches)
	}
	p := patches[0]
	if p.Op != OpUpdateText {
		t.Errorf("Op = %v, want UpdateText", p.Op)
	}
	if p.Path.String() != "1.0.0" {
		t.Errorf("Path = %v, want 1.0.0", p.Path)
	}
	if p.Value != "new" {
		t.Errorf("Value = %q, want new", p.Value)
	}
}

func TestDiffPositionalShiftRewritesInPlace(t *testing.T) {
	// Positional matching: prepending an item rewrites every slot rather
	// than detecting the shift.
	prev := Ul(Li("b"), Li("c"))
	next := Ul(Li("a"), Li("b"), Li("c"))

	patches := Diff(prev, next)

	if len(patches) != 3 {
		t.Fatalf("Expected 3 patches, got %d: %v", len(patches), patches)
	}
	if patches[0].Op != OpUpdateText || patches[0].Path.String() != "0.0" || patches[0].Value != "a" {
		t.Errorf("patches[0] = %v, want UpdateText(0.0, a)", patches[0])
	}
	if patches[1].Op != OpUpdateText || patches[1].Path.String() != "1.0" || patches[1].Value != "b" {
		t.Errorf("patches[1] = %v, want UpdateText(1.0, b)", patches[1])
	}
	if patches[2].Op != OpInsertChild || patches[2].Index != 2 {
		t.Errorf("patches[2] = %v, want InsertChild at 2", patches[2])
	}
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	prev := Div(Class("a"), Span("x"))
	next := Div(Class("b"), Span("y"), Span("z"))
	prevCopy := prev.Clone()
	nextCopy := next.Clone()

	Diff(prev, next)

	if !prev.Equal(prevCopy) {
		t.Errorf("Diff mutated prev")
	}
	if !next.Equal(nextCopy) {
		t.Errorf("Diff mutated next")
	}
}

func BenchmarkDiffFlatList(b *testing.B) {
	items := make([]*VNode, 100)
	for i := range items {
		items[i] = Li(Textf("item %d", i))
	}
	prev := Ul(items)

	changed := make([]*VNode, 100)
	copy(changed, items)
	changed[50] = Li(Text("changed"))
	next := Ul(changed)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diff(prev, next)
	}
}

func BenchmarkDiffDeepTree(b *testing.B) {
	build := func(text string) *VNode {
		node := Text(text)
		for i := 0; i < 20; i++ {
			node = Div(node)
		}
		return node
	}
	prev := build("a")
	next := build("b")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diff(prev, next)
	}
}
