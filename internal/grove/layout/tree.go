// Package layout models the workspace panel arrangement as a constrained
// binary split tree.
package layout

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Direction of a split node.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// PaneType is the functional panel a leaf hosts.
type PaneType string

const (
	PaneAgent      PaneType = "agent"
	PaneGrove      PaneType = "grove"
	PaneFilePicker PaneType = "file-picker"
	PaneShell      PaneType = "shell"
	PaneCustom     PaneType = "custom"
)

// Caps on the tree shape. Horizontal splits may nest twice (up to four
// columns), vertical splits once (up to two rows), and the whole tree holds
// at most eight panes.
const (
	MaxHorizontalDepth = 2
	MaxVerticalDepth   = 1
	MaxPanes           = 8
)

var (
	ErrUnknownNode   = errors.New("layout: unknown node")
	ErrNotAPane      = errors.New("layout: node is not a pane")
	ErrDepthExceeded = errors.New("layout: split depth limit reached")
	ErrPaneLimit     = errors.New("layout: pane limit reached")
	ErrLastPane      = errors.New("layout: cannot delete the last pane")
)

// NodeID addresses a node in the tree's arena.
type NodeID string

// Node is either a split (two children and a direction) or a pane (a type
// and, for custom panes, a command). Parent is empty for the root.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Split    bool
	Dir      Direction
	Children [2]NodeID

	Pane          PaneType
	CustomCommand string
}

// Tree is an arena of nodes addressed by opaque ids with explicit parent
// links.
type Tree struct {
	nodes map[NodeID]*Node
	root  NodeID
}

func newID() NodeID {
	return NodeID(uuid.NewString())
}

// NewTree returns a tree with a single pane of the given type.
func NewTree(pane PaneType) *Tree {
	root := &Node{ID: newID(), Pane: pane}
	return &Tree{
		nodes: map[NodeID]*Node{root.ID: root},
		root:  root.ID,
	}
}

// Root returns the root node id.
func (t *Tree) Root() NodeID {
	return t.root
}

// Node returns the node for id, if present.
func (t *Tree) Node(id NodeID) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// PaneCount returns the number of leaf panes.
func (t *Tree) PaneCount() int {
	count := 0
	for _, n := range t.nodes {
		if !n.Split {
			count++
		}
	}
	return count
}

// Panes returns the leaf panes in left-to-right, top-to-bottom order.
func (t *Tree) Panes() []Node {
	var out []Node
	t.walk(t.root, func(n *Node) {
		if !n.Split {
			out = append(out, *n)
		}
	})
	return out
}

func (t *Tree) walk(id NodeID, fn func(*Node)) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	fn(n)
	if n.Split {
		t.walk(n.Children[0], fn)
		t.walk(n.Children[1], fn)
	}
}

// splitDepth counts the ancestor splits of id in the given direction.
func (t *Tree) splitDepth(id NodeID, dir Direction) int {
	depth := 0
	for cur := t.nodes[id]; cur != nil && cur.Parent != ""; {
		parent := t.nodes[cur.Parent]
		if parent == nil {
			break
		}
		if parent.Split && parent.Dir == dir {
			depth++
		}
		cur = parent
	}
	return depth
}

// CanSplit reports whether the pane at id may be split in dir without
// violating the depth or pane caps.
func (t *Tree) CanSplit(id NodeID, dir Direction) bool {
	n, ok := t.nodes[id]
	if !ok || n.Split {
		return false
	}
	if t.PaneCount() >= MaxPanes {
		return false
	}
	limit := MaxHorizontalDepth
	if dir == Vertical {
		limit = MaxVerticalDepth
	}
	return t.splitDepth(id, dir) < limit
}

// SplitPane replaces the pane at id with a split node whose first child is
// the original pane re-keyed and whose second child is a fresh pane of
// newPane type. It returns the id of the new pane.
func (t *Tree) SplitPane(id NodeID, dir Direction, newPane PaneType) (NodeID, error) {
	target, ok := t.nodes[id]
	if !ok {
		return "", ErrUnknownNode
	}
	if target.Split {
		return "", ErrNotAPane
	}
	if t.PaneCount() >= MaxPanes {
		return "", ErrPaneLimit
	}
	if !t.CanSplit(id, dir) {
		return "", fmt.Errorf("%w: %s", ErrDepthExceeded, dir)
	}

	moved := &Node{
		ID:            newID(),
		Pane:          target.Pane,
		CustomCommand: target.CustomCommand,
	}
	fresh := &Node{ID: newID(), Pane: newPane}

	// The target node keeps its id and position but becomes the split.
	target.Split = true
	target.Dir = dir
	target.Pane = ""
	target.CustomCommand = ""
	target.Children = [2]NodeID{moved.ID, fresh.ID}
	moved.Parent = target.ID
	fresh.Parent = target.ID

	t.nodes[moved.ID] = moved
	t.nodes[fresh.ID] = fresh
	return fresh.ID, nil
}

// DeletePane removes the pane at id and contracts its parent split: the
// parent is replaced by the surviving sibling. Single-level contraction is
// sufficient under the depth caps. The last remaining pane cannot be
// deleted.
func (t *Tree) DeletePane(id NodeID) error {
	target, ok := t.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	if target.Split {
		return ErrNotAPane
	}
	if target.Parent == "" {
		return ErrLastPane
	}

	parent := t.nodes[target.Parent]
	sibling := t.nodes[parent.Children[0]]
	if sibling.ID == id {
		sibling = t.nodes[parent.Children[1]]
	}

	// The sibling takes the parent's place in the arena.
	sibling.Parent = parent.Parent
	if parent.Parent == "" {
		t.root = sibling.ID
	} else {
		grand := t.nodes[parent.Parent]
		if grand.Children[0] == parent.ID {
			grand.Children[0] = sibling.ID
		} else {
			grand.Children[1] = sibling.ID
		}
	}
	if sibling.Split {
		t.nodes[sibling.Children[0]].Parent = sibling.ID
		t.nodes[sibling.Children[1]].Parent = sibling.ID
	}

	delete(t.nodes, parent.ID)
	delete(t.nodes, id)
	return nil
}

// SetPaneType changes the pane's hosted panel. The custom command is kept
// only for custom panes.
func (t *Tree) SetPaneType(id NodeID, pane PaneType, customCommand string) error {
	n, ok := t.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	if n.Split {
		return ErrNotAPane
	}
	n.Pane = pane
	if pane == PaneCustom {
		n.CustomCommand = customCommand
	} else {
		n.CustomCommand = ""
	}
	return nil
}
