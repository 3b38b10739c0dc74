package surface

import (
	"errors"
	"fmt"

	"github.com/loom-ui/loom/pkg/vdom"
)

var (
	// ErrBadPath means a patch path does not resolve against the tree.
	ErrBadPath = errors.New("surface: path does not resolve")
	// ErrBadIndex means a child index is out of range for its parent.
	ErrBadIndex = errors.New("surface: child index out of range")
	// ErrBadPatch means a patch addressed a node of the wrong shape.
	ErrBadPatch = errors.New("surface: patch does not apply to node")
	// ErrUnknownOp means the batch carried an op outside the protocol.
	ErrUnknownOp = errors.New("surface: unknown patch op")
)

// Tree is a mutable display tree. It implements the runtime's backend
// contract and is the reference consumer of the patch protocol.
type Tree struct {
	root *Node
}

// NewTree returns an empty tree.
func NewTree() *Tree { return &Tree{} }

// Root returns the current root node, nil when nothing is mounted.
func (t *Tree) Root() *Node { return t.root }

// Mount replaces the whole tree. A nil root clears it.
func (t *Tree) Mount(root *vdom.VNode) error {
	if root == nil {
		t.root = nil
		return nil
	}
	t.root = Build(root)
	return nil
}

// HTML serializes the current tree; empty when nothing is mounted.
func (t *Tree) HTML() string {
	if t.root == nil {
		return ""
	}
	return t.root.HTML()
}

// Apply applies a patch batch in order. Paths address the tree as it stood
// before the batch; removals arrive in descending index order and inserts
// ascending, so literal in-order application stays consistent.
func (t *Tree) Apply(patches []vdom.Patch) error {
	for _, p := range patches {
		if err := t.apply(p); err != nil {
			return fmt.Errorf("apply %s: %w", p, err)
		}
	}
	return nil
}

func (t *Tree) apply(p vdom.Patch) error {
	switch p.Op {
	case vdom.OpReplace:
		return t.replace(p)

	case vdom.OpUpdateText:
		n, err := t.resolve(p.Path)
		if err != nil {
			return err
		}
		if !n.IsText {
			return fmt.Errorf("%w: UpdateText on element <%s>", ErrBadPatch, n.Tag)
		}
		n.Text = p.Value
		return nil

	case vdom.OpSetAttr:
		n, err := t.resolveElement(p.Path)
		if err != nil {
			return err
		}
		for i := range n.Attrs {
			if n.Attrs[i].Name == p.Name {
				n.Attrs[i].Value = p.Value
				return nil
			}
		}
		n.Attrs = append(n.Attrs, vdom.Attr{Name: p.Name, Value: p.Value})
		return nil

	case vdom.OpRemoveAttr:
		n, err := t.resolveElement(p.Path)
		if err != nil {
			return err
		}
		// Idempotent, like removeAttribute.
		for i := range n.Attrs {
			if n.Attrs[i].Name == p.Name {
				n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
				return nil
			}
		}
		return nil

	case vdom.OpInsertChild:
		n, err := t.resolveElement(p.Path)
		if err != nil {
			return err
		}
		if p.Node == nil {
			return fmt.Errorf("%w: InsertChild without node", ErrBadPatch)
		}
		if p.Index < 0 || p.Index > len(n.Children) {
			return fmt.Errorf("%w: insert at %d of %d", ErrBadIndex, p.Index, len(n.Children))
		}
		n.Children = append(n.Children, nil)
		copy(n.Children[p.Index+1:], n.Children[p.Index:])
		n.Children[p.Index] = Build(p.Node)
		return nil

	case vdom.OpRemoveChild:
		n, err := t.resolveElement(p.Path)
		if err != nil {
			return err
		}
		if p.Index < 0 || p.Index >= len(n.Children) {
			return fmt.Errorf("%w: remove at %d of %d", ErrBadIndex, p.Index, len(n.Children))
		}
		n.Children = append(n.Children[:p.Index], n.Children[p.Index+1:]...)
		return nil

	case vdom.OpAddEvent:
		n, err := t.resolveElement(p.Path)
		if err != nil {
			return err
		}
		if n.Events == nil {
			n.Events = make(map[string]struct{})
		}
		n.Events[p.Name] = struct{}{}
		return nil

	case vdom.OpRemoveEvent:
		n, err := t.resolveElement(p.Path)
		if err != nil {
			return err
		}
		delete(n.Events, p.Name)
		return nil

	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOp, uint8(p.Op))
	}
}

func (t *Tree) replace(p vdom.Patch) error {
	if len(p.Path) == 0 {
		if p.Node == nil {
			t.root = nil
			return nil
		}
		t.root = Build(p.Node)
		return nil
	}
	if p.Node == nil {
		return fmt.Errorf("%w: Replace without node", ErrBadPatch)
	}
	parent, err := t.resolve(p.Path[:len(p.Path)-1])
	if err != nil {
		return err
	}
	idx := p.Path[len(p.Path)-1]
	if parent.IsText || idx < 0 || idx >= len(parent.Children) {
		return ErrBadPath
	}
	parent.Children[idx] = Build(p.Node)
	return nil
}

func (t *Tree) resolve(path vdom.Path) (*Node, error) {
	n := t.root
	if n == nil {
		return nil, ErrBadPath
	}
	for _, idx := range path {
		if n.IsText || idx < 0 || idx >= len(n.Children) {
			return nil, ErrBadPath
		}
		n = n.Children[idx]
	}
	return n, nil
}

func (t *Tree) resolveElement(path vdom.Path) (*Node, error) {
	n, err := t.resolve(path)
	if err != nil {
		return nil, err
	}
	if n.IsText {
		return nil, fmt.Errorf("%w: expected element at %s", ErrBadPatch, path)
	}
	return n, nil
}
