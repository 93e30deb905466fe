package outline

// Node is a single entry of a comment tree: it carries the subtree below it,
// a display depth, and an opaque payload consumed by the rendering layer.
// The zero value is a usable leaf.
//
// The engine never creates or destroys nodes; it only moves them between the
// visible sequence and the group table. The group flag and size are owned by
// the engine and read through IsGroup/GroupSize.
type Node struct {
	// Children is the ordered subtree below this node. The engine reads it
	// during collapse but never modifies it; collapsing changes only the
	// visible projection, not the topology.
	Children []*Node

	// Indent is the display depth. Purely presentational: the engine carries
	// it through untouched.
	Indent int

	// Payload holds named values for the rendering boundary (author, body,
	// score, ...). Opaque to the engine.
	Payload map[string]any

	group     bool
	groupSize int
}

// AddChild appends c to the node's subtree.
func (n *Node) AddChild(c *Node) {
	n.Children = append(n.Children, c)
}

// IsGroup reports whether the node currently stands in for a collapsed
// subtree (a single visible row hiding its descendants).
func (n *Node) IsGroup() bool {
	return n.group
}

// GroupSize returns the number of entries hidden behind this node while it is
// collapsed, and 0 otherwise. A nested collapsed group counts as one entry,
// not as its own hidden size.
func (n *Node) GroupSize() int {
	return n.groupSize
}

// HasChildren reports whether the node has any subtree to collapse.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Flatten returns the pre-order projection of the given roots: every node
// followed by its descendants, left to right. A node that is already a
// collapsed group contributes a single entry; its hidden descendants stay
// wherever that group's table entry keeps them.
//
// The traversal uses an explicit stack so arbitrarily deep trees cannot blow
// the call stack; children are pushed in reverse so they pop left to right.
func Flatten(roots ...*Node) []*Node {
	out := make([]*Node, 0, len(roots))
	stack := make([]*Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		if len(n.Children) > 0 && !n.group {
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
	}
	return out
}
