package vdom

// Diff compares two trees and returns the patches that transform prev into
// next. It is pure: inputs are never mutated, and structurally equal trees
// produce an empty patch list. All paths in the result address positions in
// prev; appliers consume the batch in order.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diff(prev, next, nil, &patches)
	return patches
}

func diff(prev, next *VNode, path Path, patches *[]Patch) {
	if prev == next {
		return
	}
	if prev == nil || next == nil || prev.Kind != next.Kind {
		*patches = append(*patches, Patch{Op: OpReplace, Path: path, Node: next})
		return
	}
	switch prev.Kind {
	case KindText:
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{Op: OpUpdateText, Path: path, Value: next.Text})
		}
	case KindComponent:
		// Never diff across a component boundary: a different component
		// value replaces the subtree wholesale.
		if !sameComp(prev.Comp, next.Comp) {
			*patches = append(*patches, Patch{Op: OpReplace, Path: path, Node: next})
		}
	case KindElement:
		diffElement(prev, next, path, patches)
	}
}

func diffElement(prev, next *VNode, path Path, patches *[]Patch) {
	if prev.Tag != next.Tag {
		*patches = append(*patches, Patch{Op: OpReplace, Path: path, Node: next})
		return
	}
	diffProps(prev.Props, next.Props, path, patches)
	diffChildren(prev.Children, next.Children, path, patches)
}

// diffProps emits attribute patches (removed and changed in prev order, then
// added in next order), followed by event listener patches by name set.
// Handler identity is invisible here: a handler swap under an unchanged name
// produces no patch, and the runtime re-collects handlers after each commit.
func diffProps(prev, next Props, path Path, patches *[]Patch) {
	nextAttrs := next.attrMap()
	for _, a := range prev.AttrList() {
		nv, ok := nextAttrs[a.Name]
		if !ok {
			*patches = append(*patches, Patch{Op: OpRemoveAttr, Path: path, Name: a.Name})
		} else if nv != a.Value {
			*patches = append(*patches, Patch{Op: OpSetAttr, Path: path, Name: a.Name, Value: nv})
		}
	}
	prevAttrs := prev.attrMap()
	for _, a := range next.AttrList() {
		if _, ok := prevAttrs[a.Name]; !ok {
			*patches = append(*patches, Patch{Op: OpSetAttr, Path: path, Name: a.Name, Value: a.Value})
		}
	}

	nextEvents := next.eventSet()
	for _, name := range prev.EventNames() {
		if _, ok := nextEvents[name]; !ok {
			*patches = append(*patches, Patch{Op: OpRemoveEvent, Path: path, Name: name})
		}
	}
	prevEvents := prev.eventSet()
	for _, name := range next.EventNames() {
		if _, ok := prevEvents[name]; !ok {
			*patches = append(*patches, Patch{Op: OpAddEvent, Path: path, Name: name})
		}
	}
}

// diffChildren matches children strictly by position: the common prefix is
// diffed pairwise, extra next children become inserts in ascending index
// order, extra prev children become removes in descending index order so
// that in-order application against a live tree stays index-stable. There
// is no reordering detection; a moved element rewrites in place.
func diffChildren(prev, next []*VNode, path Path, patches *[]Patch) {
	n := len(prev)
	if len(next) < n {
		n = len(next)
	}
	for i := 0; i < n; i++ {
		diff(prev[i], next[i], path.Child(i), patches)
	}
	for i := n; i < len(next); i++ {
		*patches = append(*patches, Patch{Op: OpInsertChild, Path: path, Index: i, Node: next[i]})
	}
	for i := len(prev) - 1; i >= len(next); i-- {
		*patches = append(*patches, Patch{Op: OpRemoveChild, Path: path, Index: i})
	}
}
