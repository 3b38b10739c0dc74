package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node as the sequence of child indexes walked from the
// root. An empty path is the root itself. Paths in a patch batch refer to
// the tree as it was before the batch; appliers apply patches in order,
// adjusting indexes as they mutate.
type Path []int

// Child returns the path extended by one child index. The result never
// aliases the receiver's backing array.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Clone returns a copy of the path.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// String renders the path as dot-joined indexes; the root path renders as ".".
func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// ParsePath inverts Path.String. "" and "." both parse to the root path.
func ParsePath(s string) (Path, error) {
	if s == "" || s == "." {
		return Path{}, nil
	}
	parts := strings.Split(s, ".")
	out := make(Path, len(parts))
	for i, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("bad path %q: segment %q", s, part)
		}
		out[i] = idx
	}
	return out, nil
}

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	OpReplace     PatchOp = 0x01 // Replace subtree at Path with Node
	OpUpdateText  PatchOp = 0x02 // Set text content at Path to Value
	OpSetAttr     PatchOp = 0x03 // Set attribute Name=Value at Path
	OpRemoveAttr  PatchOp = 0x04 // Remove attribute Name at Path
	OpInsertChild PatchOp = 0x05 // Insert Node at Index under Path
	OpRemoveChild PatchOp = 0x06 // Remove child at Index under Path
	OpAddEvent    PatchOp = 0x07 // Attach listener for event Name at Path
	OpRemoveEvent PatchOp = 0x08 // Detach listener for event Name at Path
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case OpReplace:
		return "Replace"
	case OpUpdateText:
		return "UpdateText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpInsertChild:
		return "InsertChild"
	case OpRemoveChild:
		return "RemoveChild"
	case OpAddEvent:
		return "AddEvent"
	case OpRemoveEvent:
		return "RemoveEvent"
	default:
		return "Unknown"
	}
}

// opNames maps wire names back to ops for decoding.
var opNames = map[string]PatchOp{
	"Replace":     OpReplace,
	"UpdateText":  OpUpdateText,
	"SetAttr":     OpSetAttr,
	"RemoveAttr":  OpRemoveAttr,
	"InsertChild": OpInsertChild,
	"RemoveChild": OpRemoveChild,
	"AddEvent":    OpAddEvent,
	"RemoveEvent": OpRemoveEvent,
}

// OpFromString resolves a patch op from its string form.
func OpFromString(s string) (PatchOp, bool) {
	op, ok := opNames[s]
	return op, ok
}

// Patch is a single display mutation. The op set is closed; consumers must
// treat ops they do not recognize as fatal protocol errors.
type Patch struct {
	Op    PatchOp
	Path  Path   // Target node; for insert/remove ops, the parent
	Name  string // Attribute or event name
	Value string // New attribute value or text content
	Node  *VNode // For OpReplace and OpInsertChild
	Index int    // Child position for OpInsertChild/OpRemoveChild
}

// String returns a compact diagnostic form, used in logs and test failures.
func (p Patch) String() string {
	switch p.Op {
	case OpReplace:
		return fmt.Sprintf("Replace(%s)", p.Path)
	case OpUpdateText:
		return fmt.Sprintf("UpdateText(%s, %q)", p.Path, p.Value)
	case OpSetAttr:
		return fmt.Sprintf("SetAttr(%s, %s=%q)", p.Path, p.Name, p.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("RemoveAttr(%s, %s)", p.Path, p.Name)
	case OpInsertChild:
		return fmt.Sprintf("InsertChild(%s, %d)", p.Path, p.Index)
	case OpRemoveChild:
		return fmt.Sprintf("RemoveChild(%s, %d)", p.Path, p.Index)
	case OpAddEvent:
		return fmt.Sprintf("AddEvent(%s, %s)", p.Path, p.Name)
	case OpRemoveEvent:
		return fmt.Sprintf("RemoveEvent(%s, %s)", p.Path, p.Name)
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(p.Op))
	}
}
