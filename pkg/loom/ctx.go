package loom

import (
	"fmt"
	"log/slog"

	"github.com/loom-ui/loom/pkg/store"
)

// slotKind identifies which hook family owns a slot, for order validation.
type slotKind uint8

const (
	slotState slotKind = iota + 1
	slotMemo
	slotEffect
	slotRef
	slotReducer
)

// String returns a human-readable name for the slot kind.
func (k slotKind) String() string {
	switch k {
	case slotState:
		return "State"
	case slotMemo:
		return "Memo"
	case slotEffect:
		return "Effect"
	case slotRef:
		return "Ref"
	case slotReducer:
		return "Reducer"
	default:
		return "Unknown"
	}
}

// hookSlot is a tagged variant: exactly one arm matching kind is set. The
// arms are separately allocated cells so that closures (setters, effect
// bodies) can hold them across renders without caring about slice growth.
type hookSlot struct {
	kind   slotKind
	state  *stateCell  // slotState, slotReducer
	memo   *memoCell   // slotMemo
	effect *effectCell // slotEffect
	ref    any         // slotRef, holds a *Ref[T]
}

// stateCell stores the current value of a state or reducer slot.
type stateCell struct {
	value any
}

// memoCell stores a computed value and the deps it was computed under.
type memoCell struct {
	value any
	deps  Deps
	valid bool
}

// effectCell stores an effect slot's last deps and live cleanup. The body
// itself is requeued fresh each render that re-arms the effect, so it always
// closes over that render's values.
type effectCell struct {
	deps    Deps
	armed   bool
	cleanup Cleanup
}

// Ref is a stable mutable box. Mutations persist across renders and never
// schedule one.
type Ref[T any] struct {
	value T
}

// Current returns the boxed value.
func (r *Ref[T]) Current() T { return r.value }

// Set replaces the boxed value without scheduling a render.
func (r *Ref[T]) Set(v T) { r.value = v }

// Ctx is the hook context handed to Component.Render. It is valid only for
// the duration of that render; hooks called on a nil, stale, or foreign Ctx
// panic. A Ctx must not be retained or shared across goroutines.
type Ctx struct {
	rt     *Runtime
	inst   *instance
	cursor int
	active bool
}

// Runtime returns the runtime driving this render.
func (c *Ctx) Runtime() *Runtime { return c.rt }

// ComponentID returns the id of the component being rendered.
func (c *Ctx) ComponentID() uint64 { return c.inst.id }

// Store returns the runtime's global store.
func (c *Ctx) Store() *store.Store { return c.rt.store }

// Logger returns the runtime's logger.
func (c *Ctx) Logger() *slog.Logger { return c.rt.logger }

// advance claims the next hook slot, creating it with mk on first render and
// validating its kind on every later one. It returns a copy of the slot; the
// cell pointers inside stay stable across renders.
func (c *Ctx) advance(kind slotKind, mk func() hookSlot) hookSlot {
	if c == nil || !c.active {
		panic("loom: hook called outside render")
	}
	idx := c.cursor
	c.cursor++
	if idx < len(c.inst.slots) {
		s := c.inst.slots[idx]
		if s.kind != kind {
			panic(fmt.Sprintf("loom: hook order changed at index %d: expected %s, got %s",
				idx, s.kind, kind))
		}
		return s
	}
	s := mk()
	c.inst.slots = append(c.inst.slots, s)
	return s
}

func (c *Ctx) stateCell(kind slotKind, initial func() any) *stateCell {
	s := c.advance(kind, func() hookSlot {
		return hookSlot{kind: kind, state: &stateCell{value: initial()}}
	})
	return s.state
}

func (c *Ctx) memoCell() *memoCell {
	s := c.advance(slotMemo, func() hookSlot {
		return hookSlot{kind: slotMemo, memo: &memoCell{}}
	})
	return s.memo
}

func (c *Ctx) effectCell() *effectCell {
	s := c.advance(slotEffect, func() hookSlot {
		return hookSlot{kind: slotEffect, effect: &effectCell{}}
	})
	return s.effect
}

// finish closes the render. Calling fewer hooks than the previous render is
// the same contract violation as reordering them, so it panics too.
func (c *Ctx) finish() {
	c.active = false
	if c.cursor < len(c.inst.slots) {
		panic(fmt.Sprintf("loom: hook order changed: expected %d hooks, got %d",
			len(c.inst.slots), c.cursor))
	}
}

// slotValue recovers a typed value from a type-erased cell. A nil stored
// value yields the zero value; a mismatched type panics, since it means two
// differently-typed hook calls landed on the same slot.
func slotValue[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("loom: hook slot type mismatch: slot holds %T", v))
	}
	return t
}
