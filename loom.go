// Package loom re-exports the public API for the Loom component runtime.
//
// This is the recommended import for applications:
//
//	import (
//		"github.com/loom-ui/loom"
//		"github.com/loom-ui/loom/pkg/vdom"
//	)
//
//	type Counter struct{}
//
//	func (c *Counter) Render(ctx *loom.Ctx) *loom.VNode {
//		count, setCount := loom.UseState(ctx, 0)
//		return vdom.Button(
//			vdom.OnClick(func() { setCount(count + 1) }),
//			vdom.Textf("%d clicks", count),
//		)
//	}
//
// The underlying packages stay importable on their own: pkg/vdom for the
// node model, diff, and patch protocol; pkg/loom for the runtime and hooks;
// pkg/store for shared atoms; pkg/surface for the reference display tree;
// pkg/live for serving components over a WebSocket.
package loom

import (
	core "github.com/loom-ui/loom/pkg/loom"
	"github.com/loom-ui/loom/pkg/store"
	"github.com/loom-ui/loom/pkg/vdom"
)

// Runtime types.
type (
	// Component is a renderable unit; see pkg/loom.
	Component = core.Component
	// Func adapts a render function into a Component.
	Func = core.Func
	// Ctx is the hook context handed to Render.
	Ctx = core.Ctx
	// Runtime owns the registry, render queue, and effect queue.
	Runtime = core.Runtime
	// Config configures a Runtime.
	Config = core.Config
	// Backend is the display surface the runtime commits to.
	Backend = core.Backend
	// Metrics records runtime activity on a Prometheus registry.
	Metrics = core.Metrics
	// Deps is a hook dependency list; build one with DepsOf.
	Deps = core.Deps
	// Cleanup is an effect teardown function.
	Cleanup = core.Cleanup
)

// Node model types.
type (
	// VNode is a virtual tree node.
	VNode = vdom.VNode
	// Props carries an element's attributes and event handlers.
	Props = vdom.Props
	// Patch is one display mutation.
	Patch = vdom.Patch
	// Event is the payload delivered to named event handlers.
	Event = vdom.Event
)

// Store is the shared keyed value store; see pkg/store for Atom, Selector,
// and Reducer, which are generic and cannot be aliased here.
type Store = store.Store

// Runtime errors.
var (
	ErrBackendRequired  = core.ErrBackendRequired
	ErrAlreadyMounted   = core.ErrAlreadyMounted
	ErrUnknownComponent = core.ErrUnknownComponent
	ErrRenderStorm      = core.ErrRenderStorm
)

// New builds a runtime from cfg. See pkg/loom.Config for defaults.
func New(cfg Config) (*Runtime, error) { return core.New(cfg) }

// NewMetrics registers the runtime metric set; see pkg/loom.NewMetrics.
func NewMetrics(opts ...core.MetricsOption) *Metrics { return core.NewMetrics(opts...) }

// DepsOf builds a hook dependency list.
func DepsOf(values ...any) Deps { return core.DepsOf(values...) }

// Diff computes the patch sequence transforming prev into next.
func Diff(prev, next *VNode) []Patch { return vdom.Diff(prev, next) }

// Hooks. Each forwards to pkg/loom; they exist here so application code can
// use a single import.

func UseState[T any](ctx *Ctx, initial T) (T, func(T)) {
	return core.UseState(ctx, initial)
}

func UseSetState[T any](ctx *Ctx, initial T) (T, func(func(T) T)) {
	return core.UseSetState(ctx, initial)
}

func UseMemo[T any](ctx *Ctx, deps Deps, compute func() T) T {
	return core.UseMemo(ctx, deps, compute)
}

func UseCallback[F any](ctx *Ctx, deps Deps, fn F) F {
	return core.UseCallback(ctx, deps, fn)
}

func UseEffect(ctx *Ctx, deps Deps, body func() Cleanup) {
	core.UseEffect(ctx, deps, body)
}

func UseRef[T any](ctx *Ctx, initial T) *core.Ref[T] {
	return core.UseRef(ctx, initial)
}

func UsePrevious[T any](ctx *Ctx, value T) (T, bool) {
	return core.UsePrevious(ctx, value)
}

func UseReducer[S, A any](ctx *Ctx, reducer func(S, A) S, initial S) (S, func(A)) {
	return core.UseReducer(ctx, reducer, initial)
}

func ProvideContext[T any](ctx *Ctx, value T) {
	core.ProvideContext(ctx, value)
}

func UseContext[T any](ctx *Ctx) (T, bool) {
	return core.UseContext[T](ctx)
}

func UseAtom[T any](ctx *Ctx, atom store.Atom[T]) (T, func(T)) {
	return core.UseAtom(ctx, atom)
}

func UseAtomKey[T any](ctx *Ctx, key string, initial T) (T, func(T)) {
	return core.UseAtomKey(ctx, key, initial)
}

func UseSelector[T, U any](ctx *Ctx, sel store.Selector[T, U]) U {
	return core.UseSelector(ctx, sel)
}

func UseDispatch[S, A any](ctx *Ctx, r *store.Reducer[S, A]) (S, func(A)) {
	return core.UseDispatch(ctx, r)
}
