package loom

import "errors"

// ErrBackendRequired is returned by New when the config carries no Backend.
// The runtime has nothing to commit trees or patches to without one.
var ErrBackendRequired = errors.New("loom: backend required")

// ErrAlreadyMounted is returned by Mount when a root component is already
// mounted. A runtime drives exactly one root; unmount it first.
var ErrAlreadyMounted = errors.New("loom: a root component is already mounted")

// ErrUnknownComponent is returned by Unmount for ids that are not (or are no
// longer) registered.
var ErrUnknownComponent = errors.New("loom: unknown component id")

// ErrRenderStorm is returned by Flush when a drain exceeds MaxDrainPasses,
// which means renders kept scheduling more renders without converging,
// usually a setter called unconditionally from a render body or an effect
// with misdeclared deps. The queue is left intact for inspection.
//
// Callers should treat this as a bug in component code, not a transient
// condition: retrying the flush will storm again.
var ErrRenderStorm = errors.New("loom: render storm: drain pass cap exceeded")
