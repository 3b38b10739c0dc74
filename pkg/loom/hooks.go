package loom

import "reflect"

// Cleanup undoes an effect. It runs immediately before the effect's next
// body execution, or at unmount, whichever comes first, and exactly once.
type Cleanup func()

// UseState claims the next state slot, seeding it with initial on first
// render, and returns the stored value plus a setter.
//
// The returned value is a snapshot taken now; setter calls made after this
// hook returns do not change it until the component re-renders. The setter
// stores the new value, enqueues the owning component, and drains the queue
// unless a drain is already running. It stays safe to call after unmount:
// the stale id is dropped at drain time.
func UseState[T any](ctx *Ctx, initial T) (T, func(T)) {
	cell := ctx.stateCell(slotState, func() any { return initial })
	rt, id := ctx.rt, ctx.inst.id
	set := func(v T) {
		cell.value = v
		rt.invalidate(id)
	}
	return slotValue[T](cell.value), set
}

// UseSetState is the updater form of UseState: the setter receives the
// value currently in the slot, so several synchronous updates can build on
// one another instead of clobbering a shared snapshot.
func UseSetState[T any](ctx *Ctx, initial T) (T, func(func(T) T)) {
	cell := ctx.stateCell(slotState, func() any { return initial })
	rt, id := ctx.rt, ctx.inst.id
	update := func(fn func(T) T) {
		cell.value = fn(slotValue[T](cell.value))
		rt.invalidate(id)
	}
	return slotValue[T](cell.value), update
}

// UseMemo returns the cached value while deps compare equal to the previous
// render's, recomputing otherwise. Nil deps recompute every render.
func UseMemo[T any](ctx *Ctx, deps Deps, compute func() T) T {
	cell := ctx.memoCell()
	if !cell.valid || !depsEqual(cell.deps, deps) {
		cell.value = compute()
		cell.valid = true
	}
	cell.deps = deps
	return slotValue[T](cell.value)
}

// UseCallback memoizes a function value under the same deps rule as UseMemo,
// keeping handler identity stable across renders while deps are unchanged.
func UseCallback[F any](ctx *Ctx, deps Deps, fn F) F {
	return UseMemo(ctx, deps, func() F { return fn })
}

// UseEffect queues body to run in the effect phase after this pass's renders
// commit, whenever deps differ from the previous render's (always on first
// render). The cleanup returned by the previous body run executes
// immediately before the new body. Nil deps queue every render; DepsOf()
// queues once, with the cleanup deferred to unmount.
//
// Bodies run outside render, so hooks must not be called from them; setters
// are fine and coalesce into the next drain pass.
func UseEffect(ctx *Ctx, deps Deps, body func() Cleanup) {
	cell := ctx.effectCell()
	if cell.armed && depsEqual(cell.deps, deps) {
		cell.deps = deps
		return
	}
	cell.deps = deps
	cell.armed = true
	ctx.rt.queueEffect(ctx.inst.id, cell, body)
}

// UseRef returns a stable box tied to this slot. The same *Ref is returned
// on every render; mutations never schedule one.
func UseRef[T any](ctx *Ctx, initial T) *Ref[T] {
	s := ctx.advance(slotRef, func() hookSlot {
		return hookSlot{kind: slotRef, ref: &Ref[T]{value: initial}}
	})
	return slotValue[*Ref[T]](s.ref)
}

// UsePrevious returns the value passed to it on the previous render. ok is
// false on the first render, when there is no previous value.
func UsePrevious[T any](ctx *Ctx, value T) (T, bool) {
	ref := UseRef(ctx, previous[T]{})
	prev := ref.Current()
	ref.Set(previous[T]{value: value, ok: true})
	return prev.value, prev.ok
}

type previous[T any] struct {
	value T
	ok    bool
}

// UseReducer stores state evolved by a pure reducer. Dispatching an action
// folds it into the stored state and schedules the owning component, with
// the same drain semantics as a UseState setter.
func UseReducer[S, A any](ctx *Ctx, reducer func(S, A) S, initial S) (S, func(A)) {
	cell := ctx.stateCell(slotReducer, func() any { return initial })
	rt, id := ctx.rt, ctx.inst.id
	dispatch := func(action A) {
		cell.value = reducer(slotValue[S](cell.value), action)
		rt.invalidate(id)
	}
	return slotValue[S](cell.value), dispatch
}

// ProvideContext makes value visible to this component's subtree under T's
// type identity. Readers closer to a nested provider see that provider's
// value instead. Providing does not consume a hook slot, so it may be
// called conditionally.
func ProvideContext[T any](ctx *Ctx, value T) {
	if ctx == nil || !ctx.active {
		panic("loom: hook called outside render")
	}
	if ctx.inst.ctxVals == nil {
		ctx.inst.ctxVals = make(map[reflect.Type]any)
	}
	ctx.inst.ctxVals[reflect.TypeOf((*T)(nil)).Elem()] = value
}

// UseContext returns the nearest T provided by this component or an
// ancestor, walking up the mounted component tree. ok is false when no
// ancestor provides one. Reading does not consume a hook slot.
func UseContext[T any](ctx *Ctx) (T, bool) {
	if ctx == nil || !ctx.active {
		panic("loom: hook called outside render")
	}
	key := reflect.TypeOf((*T)(nil)).Elem()
	for inst := ctx.inst; inst != nil; inst = ctx.rt.registry[inst.parentID] {
		if v, ok := inst.ctxVals[key]; ok {
			return v.(T), true
		}
	}
	var zero T
	return zero, false
}
