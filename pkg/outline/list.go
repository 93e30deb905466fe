// Package outline maintains a linear, displayable projection of a tree.
//
// A List owns the flat sequence of currently visible nodes, in the order a
// rendering layer iterates them by index. Collapsing a node removes its
// visible descendants from the sequence and parks them, in order, in a group
// table keyed by the node; expanding splices them back unchanged. The whole
// collapsed configuration can be captured as a list of indices (Snapshot) and
// replayed later (Restore).
//
// A List is not safe for concurrent use. Every operation is synchronous and
// bounded; callers confine all calls to one goroutine, typically a UI event
// loop.
package outline

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a position falls outside the flat sequence.
var ErrOutOfRange = errors.New("outline: position out of range")

// List is the visible projection of a tree plus the table of collapsed
// groups. The zero value is not usable; call NewList.
type List struct {
	entries []*Node
	groups  map[*Node][]*Node

	autoNotify bool
	observers  []func()
}

// NewList returns an empty list with auto-notification enabled.
func NewList() *List {
	return &List{
		groups:     make(map[*Node][]*Node),
		autoNotify: true,
	}
}

// Len returns the number of visible entries.
func (l *List) Len() int {
	return len(l.entries)
}

// At returns the visible node at pos.
func (l *List) At(pos int) (*Node, error) {
	if pos < 0 || pos >= len(l.entries) {
		return nil, fmt.Errorf("%w: position %d of %d", ErrOutOfRange, pos, len(l.entries))
	}
	return l.entries[pos], nil
}

// Entries returns the visible sequence itself, not a copy. It is valid until
// the next mutating call and must not be modified by the caller.
func (l *List) Entries() []*Node {
	return l.entries
}

// IndexOf returns the position of n in the visible sequence, or -1 when n is
// hidden or absent.
func (l *List) IndexOf(n *Node) int {
	for i, e := range l.entries {
		if e == n {
			return i
		}
	}
	return -1
}

// Collapsed returns the number of currently collapsed groups.
func (l *List) Collapsed() int {
	return len(l.groups)
}

// Add appends a node to the end of the visible sequence.
func (l *List) Add(n *Node) {
	l.entries = append(l.entries, n)
	l.changed()
}

// AddAll appends nodes in order. Seeding a list from a tree is
// l.AddAll(Flatten(roots...)...).
func (l *List) AddAll(nodes ...*Node) {
	l.entries = append(l.entries, nodes...)
	l.changed()
}

// Insert places n at pos, shifting later entries right. pos == Len appends.
func (l *List) Insert(pos int, n *Node) error {
	if pos < 0 || pos > len(l.entries) {
		return fmt.Errorf("%w: position %d of %d", ErrOutOfRange, pos, len(l.entries))
	}
	l.entries = append(l.entries, nil)
	copy(l.entries[pos+1:], l.entries[pos:])
	l.entries[pos] = n
	l.changed()
	return nil
}

// Remove deletes n from the visible sequence and purges any group-table entry
// keyed by it, discarding the hidden descendants along with it. It reports
// whether n was visible; removing a node hidden inside another group's entry
// is not supported and returns false without touching anything.
func (l *List) Remove(n *Node) bool {
	if !l.removeEntry(n) {
		return false
	}
	delete(l.groups, n)
	l.changed()
	return true
}

// Clear drops the whole sequence and every group entry.
func (l *List) Clear() {
	l.entries = nil
	l.groups = make(map[*Node][]*Node)
	l.changed()
}

// Collapse hides the subtree of the node at pos. The node's visible
// descendants are removed from the sequence and stored, in visitation order,
// as the node's group entry; the node itself stays as the single row
// representing them. Collapsing a leaf is a no-op.
//
// A descendant that is itself a collapsed group rides along as one atomic
// entry: its own group entry and hidden nodes are left untouched, and it
// counts as exactly one toward this node's group size.
func (l *List) Collapse(pos int) error {
	n, err := l.At(pos)
	if err != nil {
		return err
	}
	if len(n.Children) == 0 {
		return nil
	}

	hidden := make([]*Node, 0, len(n.Children))
	stack := make([]*Node, 0, len(n.Children))
	for i := len(n.Children) - 1; i >= 0; i-- {
		stack = append(stack, n.Children[i])
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		hidden = append(hidden, c)
		if len(c.Children) > 0 && !c.group {
			for i := len(c.Children) - 1; i >= 0; i-- {
				stack = append(stack, c.Children[i])
			}
		}
		l.removeEntry(c)
	}

	l.groups[n] = hidden
	n.group = true
	n.groupSize = len(hidden)
	l.changed()
	return nil
}

// Expand splices the hidden entries of the group at pos back into the
// sequence immediately after it, in stored order, and clears the node's group
// state. Expanding a node that is not a group is a no-op. Nested groups
// inside the restored fragment stay collapsed.
func (l *List) Expand(pos int) error {
	n, err := l.At(pos)
	if err != nil {
		return err
	}
	if !n.group {
		return nil
	}

	hidden := l.groups[n]
	delete(l.groups, n)

	out := make([]*Node, 0, len(l.entries)+len(hidden))
	out = append(out, l.entries[:pos+1]...)
	out = append(out, hidden...)
	out = append(out, l.entries[pos+1:]...)
	l.entries = out

	n.group = false
	n.groupSize = 0
	l.changed()
	return nil
}

// Toggle expands the node at pos when it is a group and collapses it
// otherwise. Safe to call blindly on any visible row.
func (l *List) Toggle(pos int) error {
	n, err := l.At(pos)
	if err != nil {
		return err
	}
	if n.group {
		return l.Expand(pos)
	}
	return l.Collapse(pos)
}

// removeEntry deletes n from the visible sequence by identity, reporting
// whether it was present.
func (l *List) removeEntry(n *Node) bool {
	for i, e := range l.entries {
		if e == n {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}
