package loom

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/loom-ui/loom/pkg/vdom"
)

func TestUseStateSnapshot(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	var seen []int
	var set func(int)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		n, setN := UseState(ctx, 0)
		seen = append(seen, n)
		set = setN
		return vdom.Span(vdom.Textf("%d", n))
	}}

	mustMount(t, rt, comp)

	// The handler's snapshot does not move while it runs.
	err := rt.Dispatch(func() {
		before := seen[len(seen)-1]
		set(10)
		set(20)
		if got := seen[len(seen)-1]; got != before {
			t.Errorf("render observed mid-dispatch: seen = %v", seen)
		}
	})
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	want := []int{0, 20}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %v, want %v (snapshot then last write)", seen, want)
	}
}

func TestUseSetStateUpdaterComposes(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	var latest int
	var add func()
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		n, update := UseSetState(ctx, 0)
		latest = n
		add = func() { update(func(cur int) int { return cur + 1 }) }
		return vdom.Span(vdom.Textf("%d", n))
	}}

	mustMount(t, rt, comp)
	err := rt.Dispatch(func() {
		add()
		add()
		add()
	})
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if latest != 3 {
		t.Errorf("latest = %d, want 3 (updates compose, not clobber)", latest)
	}
}

func TestHookOutsideRenderPanics(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	var leaked *Ctx
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		leaked = ctx
		return vdom.Div()
	}}
	mustMount(t, rt, comp)

	assertPanicContains(t, "hook called outside render", func() {
		UseState(leaked, 0)
	})
	assertPanicContains(t, "hook called outside render", func() {
		UseState[int](nil, 0)
	})
	assertPanicContains(t, "hook called outside render", func() {
		ProvideContext(leaked, "theme")
	})
}

func TestHookOrderKindMismatchPanics(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	first := true
	var poke func(int)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		if first {
			first = false
			n, set := UseState(ctx, 0)
			poke = set
			return vdom.Span(vdom.Textf("%d", n))
		}
		UseRef(ctx, 0)
		return vdom.Span(vdom.Text("x"))
	}}

	mustMount(t, rt, comp)
	assertPanicContains(t, "hook order changed at index 0: expected State, got Ref", func() {
		_ = rt.Dispatch(func() { poke(1) })
	})
}

func TestHookCountShrinkPanics(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	first := true
	var poke func(int)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		n, set := UseState(ctx, 0)
		poke = set
		if first {
			first = false
			UseRef(ctx, "only on first render")
		}
		return vdom.Span(vdom.Textf("%d", n))
	}}

	mustMount(t, rt, comp)
	assertPanicContains(t, "expected 2 hooks, got 1", func() {
		_ = rt.Dispatch(func() { poke(1) })
	})
}

func TestHookSlotTypeMismatchPanics(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	first := true
	var poke func(int)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		if first {
			first = false
			n, set := UseState(ctx, 7)
			poke = set
			return vdom.Span(vdom.Textf("%d", n))
		}
		s, _ := UseState(ctx, "oops")
		return vdom.Span(vdom.Text(s))
	}}

	mustMount(t, rt, comp)
	assertPanicContains(t, "hook slot type mismatch", func() {
		_ = rt.Dispatch(func() { poke(1) })
	})
}

func TestUseMemoCachesByDeps(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	computes := 0
	var setA, setB func(int)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		a, sa := UseState(ctx, 1)
		b, sb := UseState(ctx, 1)
		setA, setB = sa, sb
		doubled := UseMemo(ctx, DepsOf(a), func() int {
			computes++
			return a * 2
		})
		return vdom.Span(vdom.Textf("%d-%d", doubled, b))
	}}

	mustMount(t, rt, comp)
	if computes != 1 {
		t.Fatalf("computes = %d after mount, want 1", computes)
	}

	// Unrelated state change: deps equal, cache hit.
	if err := rt.Dispatch(func() { setB(2) }); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if computes != 1 {
		t.Errorf("computes = %d after unrelated update, want 1", computes)
	}

	// Dep change: recompute.
	if err := rt.Dispatch(func() { setA(5) }); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if computes != 2 {
		t.Errorf("computes = %d after dep change, want 2", computes)
	}
}

func TestUseMemoNilDepsRecomputesEveryRender(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	computes := 0
	var bump func()
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		n, set := UseState(ctx, 0)
		bump = func() { set(n + 1) }
		UseMemo(ctx, nil, func() int {
			computes++
			return n
		})
		return vdom.Span(vdom.Textf("%d", n))
	}}

	mustMount(t, rt, comp)
	if err := rt.Dispatch(bump); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if computes != 2 {
		t.Errorf("computes = %d, want 2 (one per render)", computes)
	}
}

func TestUseCallbackStableIdentity(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	// Each render builds a closure capturing that render's sequence number;
	// calling the returned callback reveals which render's closure is cached.
	seq := 0
	var got []int
	var setA, setB func(int)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		seq++
		mine := seq
		a, sa := UseState(ctx, 1)
		b, sb := UseState(ctx, 1)
		setA, setB = sa, sb
		cb := UseCallback(ctx, DepsOf(a), func() int { return mine })
		got = append(got, cb())
		return vdom.Span(vdom.Textf("%d", b))
	}}

	mustMount(t, rt, comp)
	if err := rt.Dispatch(func() { setB(2) }); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if err := rt.Dispatch(func() { setA(2) }); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	want := []int{1, 1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("callback generations = %v, want %v (cached, cached, rebuilt)", got, want)
	}
}

func TestUseRefStableAndSilent(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	renders := 0
	var refs []*Ref[int]
	var bump func()
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		renders++
		n, set := UseState(ctx, 0)
		bump = func() { set(n + 1) }
		r := UseRef(ctx, 100)
		refs = append(refs, r)
		return vdom.Span(vdom.Textf("%d", n))
	}}

	mustMount(t, rt, comp)
	refs[0].Set(123)
	if renders != 1 {
		t.Fatalf("Ref.Set scheduled a render: renders = %d", renders)
	}

	if err := rt.Dispatch(bump); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if refs[0] != refs[1] {
		t.Errorf("UseRef returned a different box across renders")
	}
	if refs[1].Current() != 123 {
		t.Errorf("ref lost its value: %d, want 123", refs[1].Current())
	}
}

func TestUsePrevious(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	type obs struct {
		prev int
		ok   bool
	}
	var history []obs
	var set func(int)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		n, setN := UseState(ctx, 0)
		set = setN
		prev, ok := UsePrevious(ctx, n)
		history = append(history, obs{prev, ok})
		return vdom.Span(vdom.Textf("%d", n))
	}}

	mustMount(t, rt, comp)
	if err := rt.Dispatch(func() { set(4) }); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if err := rt.Dispatch(func() { set(9) }); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	want := []obs{{0, false}, {0, true}, {4, true}}
	if !reflect.DeepEqual(history, want) {
		t.Errorf("history = %v, want %v", history, want)
	}
}

func TestUseReducer(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	type action struct {
		op string
		n  int
	}
	reduce := func(s int, a action) int {
		switch a.op {
		case "add":
			return s + a.n
		case "reset":
			return 0
		}
		return s
	}

	var latest int
	var dispatch func(action)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		s, d := UseReducer(ctx, reduce, 10)
		latest, dispatch = s, d
		return vdom.Span(vdom.Textf("%d", s))
	}}

	mustMount(t, rt, comp)
	if latest != 10 {
		t.Fatalf("initial state = %d, want 10", latest)
	}

	if err := rt.Dispatch(func() {
		dispatch(action{op: "add", n: 5})
		dispatch(action{op: "add", n: 2})
	}); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if latest != 17 {
		t.Errorf("state = %d, want 17 (actions fold in order)", latest)
	}

	if err := rt.Dispatch(func() { dispatch(action{op: "reset"}) }); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if latest != 0 {
		t.Errorf("state = %d after reset, want 0", latest)
	}
}

func TestEffectCleanupBeforeNextBody(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	var order []string
	var set func(int)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		n, setN := UseState(ctx, 0)
		set = setN
		UseEffect(ctx, DepsOf(n), func() Cleanup {
			order = append(order, fmt.Sprintf("body:%d", n))
			return func() {
				order = append(order, fmt.Sprintf("cleanup:%d", n))
			}
		})
		return vdom.Span(vdom.Textf("%d", n))
	}}

	id := mustMount(t, rt, comp)
	if err := rt.Dispatch(func() { set(1) }); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if err := rt.Unmount(id); err != nil {
		t.Fatalf("Unmount error: %v", err)
	}

	want := []string{"body:0", "cleanup:0", "body:1", "cleanup:1"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestEffectMountOnce(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	runs := 0
	var bump func()
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		n, set := UseState(ctx, 0)
		bump = func() { set(n + 1) }
		UseEffect(ctx, DepsOf(), func() Cleanup {
			runs++
			return nil
		})
		return vdom.Span(vdom.Textf("%d", n))
	}}

	mustMount(t, rt, comp)
	if err := rt.Dispatch(bump); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if err := rt.Dispatch(bump); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if runs != 1 {
		t.Errorf("effect runs = %d, want 1 (mount only)", runs)
	}
}

func TestProvideAndUseContext(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	type theme struct {
		name string
	}

	var leafSaw theme
	var leafOK bool
	leaf := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		leafSaw, leafOK = UseContext[theme](ctx)
		return vdom.Em(vdom.Text(leafSaw.name))
	}}

	// The middle component overrides the root's value for its subtree.
	mid := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		ProvideContext(ctx, theme{name: "inner"})
		return vdom.Section(vdom.NewComponent(leaf))
	}}

	var rootSawInt bool
	root := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		ProvideContext(ctx, theme{name: "outer"})
		_, rootSawInt = UseContext[int](ctx)
		return vdom.Div(vdom.NewComponent(mid))
	}}

	mustMount(t, rt, root)

	if !leafOK || leafSaw.name != "inner" {
		t.Errorf("leaf context = (%v, %v), want nearest provider value inner", leafSaw, leafOK)
	}
	if rootSawInt {
		t.Errorf("UseContext[int] reported ok with no provider")
	}
}

func TestContextReadsNearestWithoutOverride(t *testing.T) {
	rt := newTestRuntime(t, &recordingBackend{})

	var saw string
	leaf := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		saw, _ = UseContext[string](ctx)
		return vdom.Em(vdom.Text(saw))
	}}
	mid := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		return vdom.Section(vdom.NewComponent(leaf))
	}}
	root := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		ProvideContext(ctx, "root-value")
		return vdom.Div(vdom.NewComponent(mid))
	}}

	mustMount(t, rt, root)
	if saw != "root-value" {
		t.Errorf("leaf saw %q, want value provided two levels up", saw)
	}
}
