package looptest

import (
	"strings"

	"github.com/loom-ui/loom/pkg/surface"
	"github.com/loom-ui/loom/pkg/vdom"
)

// RenderHTML serializes a component-free tree without a runtime. Useful for
// asserting on static fragments and view helpers.
//
// Example:
//
//	html := looptest.RenderHTML(badge("new"))
//	if !strings.Contains(html, "badge-new") {
//	    t.Error("missing badge class")
//	}
func RenderHTML(node *vdom.VNode) string {
	n := surface.Build(node)
	if n == nil {
		return ""
	}
	return n.HTML()
}

// ExpectHTML asserts the display tree serializes exactly to want.
func (h *Harness) ExpectHTML(want string) {
	h.tb.Helper()
	if got := h.HTML(); got != want {
		h.tb.Errorf("display tree mismatch\n got: %s\nwant: %s", got, want)
	}
}

// ExpectContains asserts the display tree contains the expected substring.
//
// Example:
//
//	h.ExpectContains("Welcome Admin")
func (h *Harness) ExpectContains(expected string) {
	h.tb.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		h.tb.Errorf("expected display tree to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts the display tree does not contain the substring.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.tb.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		h.tb.Errorf("expected display tree to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts the display tree contains an element with the tag.
func (h *Harness) ExpectElement(tag string) {
	h.tb.Helper()
	html := h.HTML()
	if !strings.Contains(html, "<"+tag) {
		h.tb.Errorf("expected display tree to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectOps asserts the last committed batch carried exactly these ops in order.
//
// Example:
//
//	h.Reset()
//	h.Click("2")
//	h.ExpectOps(vdom.OpInsertChild)
func (h *Harness) ExpectOps(ops ...vdom.PatchOp) {
	h.tb.Helper()
	batch := h.LastBatch()
	if len(batch) != len(ops) {
		h.tb.Errorf("expected %d patches, got %d: %s", len(ops), len(batch), describeBatch(batch))
		return
	}
	for i, op := range ops {
		if batch[i].Op != op {
			h.tb.Errorf("patch %d: expected %s, got %s", i, op, batch[i])
		}
	}
}

// ExpectNoPatches asserts nothing was committed since mount or the last Reset.
func (h *Harness) ExpectNoPatches() {
	h.tb.Helper()
	if n := len(h.rec.batches); n > 0 {
		h.tb.Errorf("expected no committed batches, got %d, last: %s",
			n, describeBatch(h.LastBatch()))
	}
}

func describeBatch(batch []vdom.Patch) string {
	if len(batch) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(batch))
	for i, p := range batch {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
