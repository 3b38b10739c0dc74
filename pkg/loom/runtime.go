package loom

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/loom-ui/loom/pkg/store"
	"github.com/loom-ui/loom/pkg/vdom"
)

// DefaultMaxDrainPasses is the drain pass cap applied when Config leaves
// MaxDrainPasses at zero. A legitimate cascade (render schedules effect,
// effect schedules render) settles within a handful of passes; anything
// approaching the cap is a feedback loop.
const DefaultMaxDrainPasses = 64

// Config configures a Runtime. Backend is the only required field.
type Config struct {
	// Backend receives the mounted tree and every committed patch batch.
	Backend Backend

	// Logger receives runtime diagnostics.
	// Default: slog.Default().
	Logger *slog.Logger

	// MaxDrainPasses caps render-then-effect passes within one Flush before
	// the drain aborts with ErrRenderStorm.
	// Default: DefaultMaxDrainPasses.
	MaxDrainPasses int

	// Metrics, when set, records renders, patches, effects, and queue depth.
	// Default: nil (no metrics).
	Metrics *Metrics

	// Tracer wraps mounts, flushes, renders, and effect phases in spans.
	// Default: the global tracer provider's "github.com/loom-ui/loom" tracer,
	// which is a no-op unless a provider is installed.
	Tracer trace.Tracer

	// BaseContext parents all span contexts.
	// Default: context.Background().
	BaseContext context.Context

	// Store backs UseAtomKey and Ctx.Store.
	// Default: a fresh store private to this runtime.
	Store *store.Store
}

// Runtime owns the component registry, the hook state of every mounted
// component, the render queue, and the effect queue. It is not safe for
// concurrent use: all entry points (Mount, Dispatch, Schedule, Flush,
// Unmount, and hook setters) must be called from one goroutine, typically
// an event loop that serializes inbound events.
type Runtime struct {
	backend Backend
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	baseCtx context.Context
	store   *store.Store

	maxPasses int

	nextID   uint64
	registry map[uint64]*instance
	rootID   uint64

	pending    []uint64
	pendingSet map[uint64]struct{}
	draining   bool

	effects []effectEntry
}

// effectEntry is one queued effect run: the owning component, the slot cell
// holding its cleanup, and the body captured by the render that queued it.
type effectEntry struct {
	id   uint64
	cell *effectCell
	body func() Cleanup
}

// New validates the config, fills in defaults, and returns a runtime with
// nothing mounted.
func New(cfg Config) (*Runtime, error) {
	if cfg.Backend == nil {
		return nil, ErrBackendRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/loom-ui/loom")
	}
	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	st := cfg.Store
	if st == nil {
		st = store.New()
	}
	maxPasses := cfg.MaxDrainPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxDrainPasses
	}
	return &Runtime{
		backend:    cfg.Backend,
		logger:     logger,
		metrics:    cfg.Metrics,
		tracer:     tracer,
		baseCtx:    baseCtx,
		store:      st,
		maxPasses:  maxPasses,
		registry:   make(map[uint64]*instance),
		pendingSet: make(map[uint64]struct{}),
	}, nil
}

// Store returns the runtime's global store.
func (rt *Runtime) Store() *store.Store { return rt.store }

// RootID returns the id of the mounted root, or 0 when nothing is mounted.
func (rt *Runtime) RootID() uint64 { return rt.rootID }

// Mounted returns the number of registered component instances.
func (rt *Runtime) Mounted() int { return len(rt.registry) }

// Pending returns the number of components waiting for a render.
func (rt *Runtime) Pending() int { return len(rt.pending) }

// Mount instantiates the component tree rooted at c, commits the expanded
// tree to the backend, runs the effects queued by the initial render wave,
// and drains any renders those effects scheduled. It returns the root's
// component id, which stays valid until Unmount.
//
// Render panics propagate to the caller; they are contract violations, not
// recoverable conditions.
func (rt *Runtime) Mount(c Component) (uint64, error) {
	if rt.rootID != 0 {
		return 0, ErrAlreadyMounted
	}

	ctx, span := rt.tracer.Start(rt.baseCtx, "loom.mount")
	defer span.End()

	rt.draining = true
	var inst *instance
	err := func() error {
		defer func() { rt.draining = false }()
		inst = rt.mountInstance(ctx, c, 0, vdom.Path{})
		rt.rootID = inst.id
		if err := rt.backend.Mount(rt.expand(inst)); err != nil {
			rt.unmount(inst)
			rt.rootID = 0
			rt.effects = nil
			return fmt.Errorf("mount backend: %w", err)
		}
		rt.runPendingEffects(ctx)
		return nil
	}()
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("loom.root_id", int64(inst.id)))
	rt.logger.Debug("mounted root",
		"component_id", inst.id, "instances", len(rt.registry))

	if err := rt.Flush(); err != nil {
		return inst.id, err
	}
	return inst.id, nil
}

// Unmount tears down the component and its descendants: children first in
// mount order, then the component's own effect cleanups in slot order, each
// exactly once. Unmounting the root clears the backend; unmounting a nested
// component blanks its display subtree.
func (rt *Runtime) Unmount(id uint64) error {
	inst := rt.registry[id]
	if inst == nil {
		return ErrUnknownComponent
	}

	if id == rt.rootID {
		rt.unmount(inst)
		rt.rootID = 0
		rt.logger.Debug("unmounted root", "component_id", id)
		return rt.backend.Mount(nil)
	}

	// The parent's stored tree keeps a placeholder for this child; blank it
	// so the parent's next diff starts from what the backend now shows.
	parent := rt.registry[inst.parentID]
	rel := inst.path[len(parent.path):]
	blank := vdom.NewText("")
	parent.tree = replaceNode(parent.tree, rel, blank)

	abs := inst.path.Clone()
	rt.unmount(inst)
	rt.logger.Debug("unmounted subtree", "component_id", id, "path", abs.String())
	return rt.backend.Apply([]vdom.Patch{{Op: vdom.OpReplace, Path: abs, Node: blank}})
}

// Schedule enqueues a re-render for id. Scheduling an id that is already
// pending is a no-op, which is what coalesces multiple synchronous updates
// into one render. Unknown ids are accepted and dropped at drain time, so
// setters remain safe after their component unmounts.
//
// Schedule does not drain; call Flush, or use Dispatch, or let a hook
// setter do it.
func (rt *Runtime) Schedule(id uint64) {
	if _, ok := rt.pendingSet[id]; ok {
		return
	}
	rt.pendingSet[id] = struct{}{}
	rt.pending = append(rt.pending, id)
	rt.metrics.setQueueDepth(len(rt.pending))
}

// invalidate is the setter path: enqueue, then drain unless one is already
// running, in which case the current drain picks the id up next pass.
func (rt *Runtime) invalidate(id uint64) {
	rt.Schedule(id)
	if rt.draining {
		return
	}
	if err := rt.Flush(); err != nil {
		rt.logger.Error("flush after state update failed",
			"component_id", id, "err", err)
	}
}

// Dispatch runs fn with the drain held so every update it schedules lands
// in one batch, then flushes. Event sources should deliver handlers through
// Dispatch: a handler that calls three setters renders its component once,
// not three times. Nested dispatches run fn inline. Panics from fn
// propagate after the drain guard is restored.
func (rt *Runtime) Dispatch(fn func()) error {
	if rt.draining {
		fn()
		return nil
	}
	rt.draining = true
	func() {
		defer func() { rt.draining = false }()
		fn()
	}()
	return rt.Flush()
}

// Flush drains the render queue. Each pass takes the entire pending set in
// insertion order, renders and commits every component in it, then runs the
// effects those renders queued. Updates scheduled during a pass land in the
// next one. Nested calls while a drain is running are no-ops.
//
// A drain that exceeds MaxDrainPasses aborts with ErrRenderStorm, leaving
// the queue intact for inspection.
func (rt *Runtime) Flush() error {
	if rt.draining || len(rt.pending) == 0 {
		return nil
	}
	rt.draining = true
	defer func() { rt.draining = false }()

	ctx, span := rt.tracer.Start(rt.baseCtx, "loom.flush")
	defer span.End()

	passes := 0
	for len(rt.pending) > 0 {
		if passes == rt.maxPasses {
			span.SetAttributes(attribute.Int("loom.passes", passes))
			rt.metrics.stormInc()
			rt.logger.Error("render storm: drain pass cap exceeded",
				"passes", passes, "queue_depth", len(rt.pending))
			return fmt.Errorf("%w after %d passes", ErrRenderStorm, passes)
		}
		passes++

		batch := rt.pending
		rt.pending = nil
		rt.pendingSet = make(map[uint64]struct{}, len(batch))
		rt.metrics.setQueueDepth(0)

		for _, id := range batch {
			inst := rt.registry[id]
			if inst == nil {
				rt.logger.Debug("dropping render for unmounted component",
					"component_id", id)
				continue
			}
			if err := rt.renderInstance(ctx, inst); err != nil {
				return err
			}
		}
		rt.runPendingEffects(ctx)
	}
	span.SetAttributes(attribute.Int("loom.passes", passes))
	return nil
}

// EachInstance visits every mounted instance in mount order with its root
// path and latest rendered tree. The tree still contains component
// placeholder nodes; those positions belong to child instances. Event
// sources use this to index handlers by display path.
func (rt *Runtime) EachInstance(fn func(id uint64, path vdom.Path, tree *vdom.VNode)) {
	ids := make([]uint64, 0, len(rt.registry))
	for id := range rt.registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		in := rt.registry[id]
		fn(id, in.path, in.tree)
	}
}

// mountInstance registers a fresh instance, renders it, and recursively
// mounts the component placeholders in its tree, leaving inst.children in
// pre-order.
func (rt *Runtime) mountInstance(ctx context.Context, comp Component, parentID uint64, path vdom.Path) *instance {
	rt.nextID++
	inst := &instance{
		id:       rt.nextID,
		comp:     comp,
		parentID: parentID,
		path:     path,
	}
	rt.registry[inst.id] = inst
	if parent := rt.registry[parentID]; parent != nil {
		parent.children = append(parent.children, inst.id)
	}
	rt.metrics.mountedAdd(1)

	_, span := rt.tracer.Start(ctx, "loom.render",
		trace.WithAttributes(attribute.Int64("loom.component_id", int64(inst.id))))
	start := time.Now()
	inst.tree = rt.callRender(inst)
	rt.metrics.renderObserved(time.Since(start), 0)
	span.End()

	rt.mountNested(ctx, inst, inst.tree, path)
	return inst
}

// mountNested walks a freshly rendered tree and mounts an instance for each
// component placeholder, parented to inst.
func (rt *Runtime) mountNested(ctx context.Context, inst *instance, v *vdom.VNode, abs vdom.Path) {
	if v == nil {
		return
	}
	switch v.Kind {
	case vdom.KindComponent:
		rt.mountInstance(ctx, asComponent(v.Comp), inst.id, abs)
	case vdom.KindElement:
		for i, ch := range v.Children {
			rt.mountNested(ctx, inst, ch, abs.Child(i))
		}
	}
}

// unmount tears down inst and its descendants. Children unwind first in
// mount order, then inst's effect cleanups run in slot order. Clearing each
// cleanup before calling it is what makes unmount-once semantics hold even
// if a cleanup panics.
func (rt *Runtime) unmount(inst *instance) {
	for _, cid := range append([]uint64(nil), inst.children...) {
		if child := rt.registry[cid]; child != nil {
			rt.unmount(child)
		}
	}
	for i := range inst.slots {
		s := inst.slots[i]
		if s.kind == slotEffect && s.effect != nil && s.effect.cleanup != nil {
			cl := s.effect.cleanup
			s.effect.cleanup = nil
			cl()
		}
	}
	inst.slots = nil
	if parent := rt.registry[inst.parentID]; parent != nil {
		for i, cid := range parent.children {
			if cid == inst.id {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}
	delete(rt.registry, inst.id)
	delete(rt.pendingSet, inst.id)
	rt.metrics.mountedAdd(-1)
}

// callRender runs the component's Render with a fresh hook context and
// normalizes a nil result to an empty text node.
func (rt *Runtime) callRender(inst *instance) *vdom.VNode {
	ctx := &Ctx{rt: rt, inst: inst, active: true}
	tree := inst.comp.Render(ctx)
	ctx.finish()
	if tree == nil {
		tree = vdom.NewText("")
	}
	return tree
}

// renderInstance re-renders a mounted component, diffs the result against
// its previous tree, resolves component placeholders in the patch batch,
// and commits it.
func (rt *Runtime) renderInstance(ctx context.Context, inst *instance) error {
	_, span := rt.tracer.Start(ctx, "loom.render",
		trace.WithAttributes(attribute.Int64("loom.component_id", int64(inst.id))))
	defer span.End()
	start := time.Now()

	prev := inst.tree
	next := rt.callRender(inst)
	inst.tree = next

	patches := vdom.Diff(prev, next)
	resolved := rt.resolvePatches(ctx, inst, patches)
	rt.rebuildChildren(inst)

	if len(resolved) > 0 {
		if err := rt.backend.Apply(resolved); err != nil {
			return fmt.Errorf("apply patches for component %d: %w", inst.id, err)
		}
	}

	d := time.Since(start)
	rt.metrics.renderObserved(d, len(resolved))
	span.SetAttributes(attribute.Int("loom.patches", len(resolved)))
	rt.logger.Debug("rendered",
		"component_id", inst.id, "patches", len(resolved), "duration", d)
	return nil
}

// resolvePatches rebases patch paths from inst-relative to absolute and
// resolves component placeholders: structural clobbers unmount the
// instances beneath them, and payload trees get their component nodes
// mounted and expanded before the backend sees them.
//
// Positional diffing keeps kept children at their indices, so resolution
// never needs to shift instance paths: a child either stays where it is,
// or its position is replaced outright.
func (rt *Runtime) resolvePatches(ctx context.Context, inst *instance, patches []vdom.Patch) []vdom.Patch {
	if len(patches) == 0 {
		return nil
	}
	out := make([]vdom.Patch, 0, len(patches))
	for _, p := range patches {
		abs := joinPath(inst.path, p.Path)
		switch p.Op {
		case vdom.OpReplace:
			rt.unmountUnder(abs, inst)
			p.Node = rt.expandFresh(ctx, inst, p.Node, abs)
		case vdom.OpInsertChild:
			p.Node = rt.expandFresh(ctx, inst, p.Node, abs.Child(p.Index))
		case vdom.OpRemoveChild:
			rt.unmountUnder(abs.Child(p.Index), inst)
		}
		p.Path = abs
		out = append(out, p)
	}
	return out
}

// unmountUnder unmounts every descendant of owner rooted at or below abs.
// The descendant check matters when a component renders directly to another
// component: the whole chain shares one display path, and a replace at that
// path must only take out the part below the renderer.
func (rt *Runtime) unmountUnder(abs vdom.Path, owner *instance) {
	var ids []uint64
	for id, in := range rt.registry {
		if id == owner.id || !pathHasPrefix(in.path, abs) {
			continue
		}
		if !rt.hasAncestor(in, owner.id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if in := rt.registry[id]; in != nil {
			rt.unmount(in)
		}
	}
}

func (rt *Runtime) hasAncestor(in *instance, ancestorID uint64) bool {
	for pid := in.parentID; pid != 0; {
		if pid == ancestorID {
			return true
		}
		p := rt.registry[pid]
		if p == nil {
			return false
		}
		pid = p.parentID
	}
	return false
}

// expand substitutes each component placeholder in inst's tree with the
// expanded tree of the matching child instance, producing the
// component-free tree the backend mounts. Subtrees without placeholders
// are shared, not copied.
func (rt *Runtime) expand(inst *instance) *vdom.VNode {
	next := 0
	out := rt.expandNode(inst, inst.tree, &next)
	if next != len(inst.children) {
		panic("loom: instance children out of sync with rendered tree")
	}
	return out
}

func (rt *Runtime) expandNode(inst *instance, v *vdom.VNode, next *int) *vdom.VNode {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case vdom.KindComponent:
		if *next >= len(inst.children) {
			panic("loom: instance children out of sync with rendered tree")
		}
		child := rt.registry[inst.children[*next]]
		*next++
		if child == nil {
			panic("loom: instance children out of sync with rendered tree")
		}
		return rt.expand(child)
	case vdom.KindText:
		return v
	}
	var copied []*vdom.VNode
	for i, ch := range v.Children {
		e := rt.expandNode(inst, ch, next)
		if e != ch && copied == nil {
			copied = make([]*vdom.VNode, len(v.Children))
			copy(copied, v.Children[:i])
		}
		if copied != nil {
			copied[i] = e
		}
	}
	if copied == nil {
		return v
	}
	cp := *v
	cp.Children = copied
	return &cp
}

// expandFresh mounts the component placeholders inside a patch payload and
// returns its component-free equivalent, rooted at abs in the display tree.
func (rt *Runtime) expandFresh(ctx context.Context, owner *instance, v *vdom.VNode, abs vdom.Path) *vdom.VNode {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case vdom.KindComponent:
		child := rt.mountInstance(ctx, asComponent(v.Comp), owner.id, abs)
		return rt.expand(child)
	case vdom.KindText:
		return v
	}
	var copied []*vdom.VNode
	for i, ch := range v.Children {
		e := rt.expandFresh(ctx, owner, ch, abs.Child(i))
		if e != ch && copied == nil {
			copied = make([]*vdom.VNode, len(v.Children))
			copy(copied, v.Children[:i])
		}
		if copied != nil {
			copied[i] = e
		}
	}
	if copied == nil {
		return v
	}
	cp := *v
	cp.Children = copied
	return &cp
}

// rebuildChildren reorders inst.children to match the pre-order of
// component placeholders in the current tree. Kept children never move
// position, so matching by absolute path is exact.
func (rt *Runtime) rebuildChildren(inst *instance) {
	positions := componentPositions(inst.tree)
	if len(positions) != len(inst.children) {
		panic("loom: instance children out of sync with rendered tree")
	}
	if len(positions) == 0 {
		return
	}
	byPath := make(map[string]uint64, len(inst.children))
	for _, cid := range inst.children {
		byPath[rt.registry[cid].path.String()] = cid
	}
	ordered := make([]uint64, 0, len(positions))
	for _, rel := range positions {
		cid, ok := byPath[joinPath(inst.path, rel).String()]
		if !ok {
			panic("loom: instance children out of sync with rendered tree")
		}
		ordered = append(ordered, cid)
	}
	inst.children = ordered
}

// queueEffect appends an effect to the phase queue; bodies run after the
// current pass's renders commit.
func (rt *Runtime) queueEffect(id uint64, cell *effectCell, body func() Cleanup) {
	rt.effects = append(rt.effects, effectEntry{id: id, cell: cell, body: body})
}

// runPendingEffects runs queued effect bodies in queue order, each preceded
// by its cell's previous cleanup. Effects whose component unmounted while
// queued are skipped; their cleanup already ran during unmount.
func (rt *Runtime) runPendingEffects(ctx context.Context) {
	if len(rt.effects) == 0 {
		return
	}
	_, span := rt.tracer.Start(ctx, "loom.effects",
		trace.WithAttributes(attribute.Int("loom.queued", len(rt.effects))))
	defer span.End()

	queue := rt.effects
	rt.effects = nil
	for _, e := range queue {
		if rt.registry[e.id] == nil {
			continue
		}
		if e.cell.cleanup != nil {
			cl := e.cell.cleanup
			e.cell.cleanup = nil
			cl()
		}
		e.cell.cleanup = e.body()
		rt.metrics.effectRun()
	}
}

func componentPositions(v *vdom.VNode) []vdom.Path {
	var out []vdom.Path
	var walk func(n *vdom.VNode, p vdom.Path)
	walk = func(n *vdom.VNode, p vdom.Path) {
		if n == nil {
			return
		}
		switch n.Kind {
		case vdom.KindComponent:
			out = append(out, p)
		case vdom.KindElement:
			for i, ch := range n.Children {
				walk(ch, p.Child(i))
			}
		}
	}
	walk(v, vdom.Path{})
	return out
}

func joinPath(base, rel vdom.Path) vdom.Path {
	out := make(vdom.Path, 0, len(base)+len(rel))
	out = append(out, base...)
	return append(out, rel...)
}

func pathHasPrefix(p, prefix vdom.Path) bool {
	if len(p) < len(prefix) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// replaceNode swaps the node at rel inside root, returning the new root,
// which is root itself unless rel is empty. The parent's child slot is
// rewritten in place.
func replaceNode(root *vdom.VNode, rel vdom.Path, n *vdom.VNode) *vdom.VNode {
	if len(rel) == 0 {
		return n
	}
	node := root
	for _, idx := range rel[:len(rel)-1] {
		node = node.Children[idx]
	}
	node.Children[rel[len(rel)-1]] = n
	return root
}
