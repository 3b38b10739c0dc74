package loom

import "reflect"

// Deps is a dependency list for UseEffect, UseMemo, and UseCallback,
// compared element-wise against the previous render's list. Two special
// shapes matter:
//
//   - nil Deps: never equal, so the hook re-arms every render.
//   - empty non-nil Deps (DepsOf with no arguments): always equal, so the
//     hook arms once at mount.
type Deps []any

// DepsOf builds a dependency list from its arguments. DepsOf() is the
// arm-once list; pass nil Deps directly for arm-every-render.
func DepsOf(values ...any) Deps {
	if values == nil {
		return Deps{}
	}
	return Deps(values)
}

func depsEqual(a, b Deps) bool {
	if a == nil || b == nil {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !depValueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// depValueEqual compares one dep element. Common scalar types get fast
// paths; everything else goes through reflect.DeepEqual so slices and
// structs in dep lists behave by value.
func depValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return reflect.DeepEqual(a, b)
}
