// Package looptest provides testing helpers for loom components.
//
// The looptest package reduces boilerplate when testing stateful components
// by standing up a runtime over an in-memory display tree, recording every
// committed patch batch, and offering assertions on both the rendered HTML
// and the patch stream.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := looptest.Mount(t, &Counter{})
//	    h.ExpectContains("count: 0")
//
//	    h.Click("1")
//	    h.ExpectContains("count: 1")
//	}
//
// # Driving Events
//
// Events address elements by display path, the dot-joined child indexes a
// browser client would report:
//
//	h.Click("0.2")           // click the third child of the first child
//	h.Input("1.0", "hello")  // type into an input
//	h.Emit("0", "submit", "")
//
// Emit fails the test when no handler is bound at the path, printing the
// current tree so the path can be corrected.
//
// # Patch Assertions
//
// Every committed batch is recorded. Assert on what went over the wire, not
// just the final picture:
//
//	h.Reset()
//	h.Click("1")
//	h.ExpectOps(vdom.OpUpdateText)
//
// # Sharing State
//
// Tests that seed global state pass their own store:
//
//	st := store.New()
//	store.NewKeyedAtom(st, "user", "admin").Set("guest")
//	h := looptest.Mount(t, &Profile{}, looptest.WithStore(st))
package looptest
