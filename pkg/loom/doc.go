// Package loom is the reactive runtime: it mounts components, stores their
// hook state, schedules re-renders, diffs the resulting trees, and commits
// patch batches to a display backend.
//
// The runtime is single-threaded by design. All mutations flow through
// setters returned by hooks, which enqueue the owning component and drain
// the render queue. Event sources that may call several setters in one
// handler should deliver the handler through Runtime.Dispatch so the
// updates coalesce into a single render.
//
// Hooks follow the call-order contract: a component must call the same
// hooks in the same order on every render. Violations panic, in every
// build, because a silently misaligned slot corrupts state.
package loom
