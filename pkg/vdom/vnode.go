// Package vdom provides the virtual display tree: the VNode model, the
// structural diff, and the patch protocol that carries diff results to a
// display backend. Trees are plain values with no runtime dependencies;
// component scheduling lives in pkg/loom.
package vdom

import "reflect"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindText      VKind = iota // Plain text node
	KindElement                // <div>, <button>, etc.
	KindComponent              // Nested component, resolved by the runtime
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// VNode is a virtual display-tree node. A tree is immutable once handed to
// Diff or a backend; each render builds a fresh tree.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes and event handlers
	Children []*VNode // Child nodes, order is meaningful
	Text     string   // For KindText
	Comp     any      // For KindComponent; opaque here, the runtime owns the contract
}

// NewText creates a text node.
func NewText(text string) *VNode {
	return &VNode{Kind: KindText, Text: text}
}

// NewElement creates an element node.
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	return &VNode{Kind: KindElement, Tag: tag, Props: props, Children: children}
}

// NewComponent wraps a component value in a node. The node model never calls
// into the component; mounting and rendering belong to the runtime.
func NewComponent(c any) *VNode {
	return &VNode{Kind: KindComponent, Comp: c}
}

// Equal reports deep structural equality. Text nodes compare by text,
// elements by tag, props, and children; component nodes compare by identity,
// so a freshly constructed component value is never equal to another.
func (v *VNode) Equal(o *VNode) bool {
	if v == o {
		return true
	}
	if v == nil || o == nil {
		return false
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindText:
		return v.Text == o.Text
	case KindComponent:
		return sameComp(v.Comp, o.Comp)
	}
	if v.Tag != o.Tag || !v.Props.Equal(o.Props) {
		return false
	}
	if len(v.Children) != len(o.Children) {
		return false
	}
	for i := range v.Children {
		if !v.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the tree. Event handler functions are shared
// with the original, not copied.
func (v *VNode) Clone() *VNode {
	if v == nil {
		return nil
	}
	c := *v
	c.Props = v.Props.clone()
	if v.Children != nil {
		c.Children = make([]*VNode, len(v.Children))
		for i, ch := range v.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// sameComp compares two component values by identity. Pointer-shaped values
// compare by address. Function values have no usable identity (closures from
// one source line share a code pointer while capturing different state), so
// they always compare as distinct, as do slices.
func sameComp(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() != bv.Kind() {
		return false
	}
	switch av.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan, reflect.Map:
		return av.Pointer() == bv.Pointer()
	case reflect.Func, reflect.Slice:
		return false
	}
	if av.Type() != bv.Type() || !av.Type().Comparable() {
		return false
	}
	return a == b
}
