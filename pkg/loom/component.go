package loom

import (
	"fmt"
	"reflect"

	"github.com/loom-ui/loom/pkg/vdom"
)

// Component is a renderable unit. Render receives the hook context for this
// render pass and returns the component's tree; returning nil renders as an
// empty text node. The context is only valid until Render returns.
//
// Identity matters: when a parent re-renders, a child component node is kept
// (state preserved) only if the new node carries the same component value as
// the old one, compared by pointer. Distinct values, including fresh
// closures, replace the old child wholesale. Components that should survive
// parent renders are therefore usually pointers held somewhere stable.
type Component interface {
	Render(ctx *Ctx) *vdom.VNode
}

// Func adapts a plain render function into a Component. Function values have
// no stable identity, so a Func child is remounted whenever its parent
// re-renders; use a pointer component where that matters.
type Func func(ctx *Ctx) *vdom.VNode

// Render implements Component.
func (f Func) Render(ctx *Ctx) *vdom.VNode { return f(ctx) }

// Backend is the display surface the runtime commits to. Mount receives the
// full initial tree, or nil to clear; Apply receives patch batches whose
// paths are absolute in the mounted tree and must be applied in order.
// Trees and patch payloads handed to a Backend never contain component
// nodes; the runtime expands those before committing.
type Backend interface {
	Mount(root *vdom.VNode) error
	Apply(patches []vdom.Patch) error
}

// instance is one mounted component: its hook slots, its latest rendered
// tree (with component placeholders left in), and its position in the
// committed display tree.
type instance struct {
	id       uint64
	comp     Component
	parentID uint64 // 0 for the root

	// children holds mounted child instance ids ordered by the pre-order
	// position of their placeholder in tree. expand relies on this order.
	children []uint64

	slots []hookSlot
	tree  *vdom.VNode
	path  vdom.Path // absolute position of this instance's root

	// ctxVals holds values provided via ProvideContext, keyed by type.
	ctxVals map[reflect.Type]any
}

func asComponent(v any) Component {
	c, ok := v.(Component)
	if !ok {
		panic(fmt.Sprintf("loom: component node holds %T, which does not implement Component", v))
	}
	return c
}
