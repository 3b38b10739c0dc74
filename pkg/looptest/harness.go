package looptest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/loom-ui/loom/pkg/loom"
	"github.com/loom-ui/loom/pkg/store"
	"github.com/loom-ui/loom/pkg/surface"
	"github.com/loom-ui/loom/pkg/vdom"
)

// Harness drives a runtime against an in-memory display tree and records
// every batch the runtime commits.
type Harness struct {
	tb   testing.TB
	rt   *loom.Runtime
	rec  *recorder
	root uint64
}

type config struct {
	store     *store.Store
	logger    *slog.Logger
	metrics   *loom.Metrics
	maxPasses int
}

// Option configures the harness runtime.
type Option func(*config)

// WithStore backs the harness with an existing global store, so tests can
// seed atoms before mounting or share state across harnesses.
func WithStore(s *store.Store) Option {
	return func(c *config) { c.store = s }
}

// WithLogger replaces the harness's discard logger, typically with
// slogt-style output routed through t.Log.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics attaches a metrics set, for tests asserting on collector values.
func WithMetrics(m *loom.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithMaxDrainPasses lowers the render storm threshold, so feedback-loop
// tests fail fast instead of spinning through the default cap.
func WithMaxDrainPasses(n int) Option {
	return func(c *config) { c.maxPasses = n }
}

// Mount builds a runtime over a fresh display tree, mounts root, and fails
// the test if the initial mount or its drain errors. The root is unmounted
// automatically at test cleanup, so effect cleanups always run.
//
// Example:
//
//	h := looptest.Mount(t, &Counter{Step: 2})
func Mount(tb testing.TB, root loom.Component, opts ...Option) *Harness {
	tb.Helper()
	cfg := config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	rec := &recorder{tree: surface.NewTree()}
	rt, err := loom.New(loom.Config{
		Backend:        rec,
		Logger:         cfg.logger,
		Metrics:        cfg.metrics,
		MaxDrainPasses: cfg.maxPasses,
		Store:          cfg.store,
	})
	if err != nil {
		tb.Fatalf("build runtime: %v", err)
	}
	id, err := rt.Mount(root)
	if err != nil {
		tb.Fatalf("mount root: %v", err)
	}

	tb.Cleanup(func() {
		if rt.RootID() != 0 {
			_ = rt.Unmount(rt.RootID())
		}
	})
	return &Harness{tb: tb, rt: rt, rec: rec, root: id}
}

// Runtime returns the underlying runtime for direct scheduling or store access.
func (h *Harness) Runtime() *loom.Runtime { return h.rt }

// RootID returns the mounted root's component id.
func (h *Harness) RootID() uint64 { return h.root }

// Tree returns the display tree the runtime commits to.
func (h *Harness) Tree() *surface.Tree { return h.rec.tree }

// HTML serializes the current display tree.
func (h *Harness) HTML() string { return h.rec.tree.HTML() }

// Click dispatches a click event to the element at the display path.
//
// Example:
//
//	h.Click("1")  // second child of the root element
func (h *Harness) Click(path string) {
	h.tb.Helper()
	h.Emit(path, "click", "")
}

// Input dispatches an input event carrying value, as typing would.
func (h *Harness) Input(path, value string) {
	h.tb.Helper()
	h.Emit(path, "input", value)
}

// Emit dispatches a named event to the element at the display path and
// drains the updates the handler schedules. Updates coalesce the way they
// would for a real event source: one render per component per pass.
func (h *Harness) Emit(path, event, value string) {
	h.tb.Helper()
	p, err := vdom.ParsePath(path)
	if err != nil {
		h.tb.Fatalf("emit %s: %v", event, err)
	}
	handler, ok := h.handlerAt(p, event)
	if !ok {
		h.tb.Fatalf("no %q handler at %s\ntree: %s", event, p, truncate(h.HTML(), 500))
	}
	if err := h.rt.Dispatch(func() {
		handler(vdom.Event{Type: event, Value: value})
	}); err != nil {
		h.tb.Fatalf("dispatch %s at %s: %v", event, p, err)
	}
}

// Dispatch runs fn with update coalescing, like an event handler would, and
// fails the test if the drain errors.
func (h *Harness) Dispatch(fn func()) {
	h.tb.Helper()
	if err := h.rt.Dispatch(fn); err != nil {
		h.tb.Fatalf("dispatch: %v", err)
	}
}

// Unmount tears down the root immediately instead of waiting for cleanup.
func (h *Harness) Unmount() {
	h.tb.Helper()
	if err := h.rt.Unmount(h.root); err != nil {
		h.tb.Fatalf("unmount root: %v", err)
	}
}

// Batches returns every patch batch committed since mount or the last Reset.
func (h *Harness) Batches() [][]vdom.Patch { return h.rec.batches }

// LastBatch returns the most recently committed batch, nil when none.
func (h *Harness) LastBatch() []vdom.Patch {
	if len(h.rec.batches) == 0 {
		return nil
	}
	return h.rec.batches[len(h.rec.batches)-1]
}

// Reset discards recorded batches; later assertions see only new commits.
func (h *Harness) Reset() { h.rec.batches = nil }

// handlerAt resolves the handler bound for event at the display path.
// Instance trees keep component placeholders; hitting one on the walk means
// the position belongs to a child instance, so the walk moves on to it.
func (h *Harness) handlerAt(path vdom.Path, event string) (func(vdom.Event), bool) {
	var found func(vdom.Event)
	h.rt.EachInstance(func(_ uint64, base vdom.Path, tree *vdom.VNode) {
		if found != nil || !pathHasPrefix(path, base) {
			return
		}
		n := tree
		for _, idx := range path[len(base):] {
			if n == nil || n.Kind != vdom.KindElement || idx >= len(n.Children) {
				return
			}
			n = n.Children[idx]
		}
		if n == nil || n.Kind != vdom.KindElement {
			return
		}
		if fn, ok := n.Props.HandlerFor(event); ok {
			found = fn
		}
	})
	return found, found != nil
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

// recorder wraps a surface tree so tests can inspect exactly what the
// runtime committed, batch by batch.
type recorder struct {
	tree    *surface.Tree
	batches [][]vdom.Patch
}

func (r *recorder) Mount(root *vdom.VNode) error {
	return r.tree.Mount(root)
}

func (r *recorder) Apply(patches []vdom.Patch) error {
	r.batches = append(r.batches, append([]vdom.Patch(nil), patches...))
	return r.tree.Apply(patches)
}
