package live

import (
	"encoding/json"
	"fmt"

	"github.com/loom-ui/loom/pkg/surface"
	"github.com/loom-ui/loom/pkg/vdom"
)

// Frame is one server-to-client message. The first frame of a session is
// always a tree frame carrying the full initial HTML; every flush after that
// sends one patch frame per committed batch.
type Frame struct {
	T    string      `json:"t"`              // "tree" or "patch"
	HTML string      `json:"html,omitempty"` // tree frames
	Ops  []WirePatch `json:"ops,omitempty"`  // patch frames
}

// WirePatch is the JSON form of vdom.Patch. Node payloads travel as
// serialized HTML because the client materializes them straight into the
// document; everything else maps field for field.
type WirePatch struct {
	Op    string `json:"op"`
	Path  []int  `json:"path"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
	Index int    `json:"index,omitempty"`
	HTML  string `json:"html,omitempty"`
}

// EventFrame is one client-to-server message: a display event addressed by
// the node path the client computed from the document.
type EventFrame struct {
	T     string `json:"t"` // "event"
	Path  []int  `json:"path"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

func wirePatch(p vdom.Patch) WirePatch {
	w := WirePatch{
		Op:    p.Op.String(),
		Path:  append([]int(nil), p.Path...),
		Name:  p.Name,
		Value: p.Value,
		Index: p.Index,
	}
	if w.Path == nil {
		w.Path = []int{}
	}
	if p.Node != nil {
		w.HTML = surface.Build(p.Node).HTML()
	}
	return w
}

func decodeEvent(data []byte) (EventFrame, error) {
	var ev EventFrame
	if err := json.Unmarshal(data, &ev); err != nil {
		return EventFrame{}, err
	}
	if ev.T != "event" {
		return EventFrame{}, fmt.Errorf("unexpected frame type %q", ev.T)
	}
	return ev, nil
}

func wirePatches(patches []vdom.Patch) []WirePatch {
	out := make([]WirePatch, len(patches))
	for i, p := range patches {
		out[i] = wirePatch(p)
	}
	return out
}
