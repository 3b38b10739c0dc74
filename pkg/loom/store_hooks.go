package loom

import "github.com/loom-ui/loom/pkg/store"

// UseAtom subscribes the component to an atom for its mounted lifetime and
// returns the atom's current value (zero until first set) plus its setter.
// A write to the atom, from anywhere, schedules every subscribed component;
// writes made while a drain is running land in the next pass.
func UseAtom[T any](ctx *Ctx, atom store.Atom[T]) (T, func(T)) {
	rt, id := ctx.rt, ctx.inst.id
	UseEffect(ctx, DepsOf(), func() Cleanup {
		return Cleanup(atom.Subscribe(func() {
			rt.invalidate(id)
		}))
	})
	v, _ := atom.Get()
	return v, atom.Set
}

// UseAtomKey is UseAtom over a named atom on the runtime's store, creating
// it with initial if this is its first use anywhere.
func UseAtomKey[T any](ctx *Ctx, key string, initial T) (T, func(T)) {
	atom := store.NewKeyedAtom(ctx.Store(), key, initial)
	return UseAtom(ctx, atom)
}

// UseSelector subscribes the component to a selector's source atom and
// returns the derived value, recomputed on every render.
func UseSelector[T, U any](ctx *Ctx, sel store.Selector[T, U]) U {
	rt, id := ctx.rt, ctx.inst.id
	UseEffect(ctx, DepsOf(), func() Cleanup {
		return Cleanup(sel.Subscribe(func() {
			rt.invalidate(id)
		}))
	})
	return sel.Get()
}

// UseDispatch subscribes the component to a reducer's state atom and returns
// the current state plus the dispatch function.
func UseDispatch[S, A any](ctx *Ctx, r *store.Reducer[S, A]) (S, func(A)) {
	rt, id := ctx.rt, ctx.inst.id
	UseEffect(ctx, DepsOf(), func() Cleanup {
		return Cleanup(r.Subscribe(func() {
			rt.invalidate(id)
		}))
	})
	return r.State(), r.Dispatch
}
