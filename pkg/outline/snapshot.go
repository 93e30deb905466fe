package outline

import "fmt"

// Snapshot captures the current collapsed configuration as an ordered list of
// indices and leaves the sequence fully expanded. Call it when the projection
// is about to be rebuilt (a reload, a resort) and the collapse state should
// survive.
//
// The walk moves forward by current index: each group encountered is expanded
// in place, grows the sequence, and has its index recorded; the walk then
// continues over the entries the expansion just inserted, so nested groups
// are captured too. The result has no meaning except against a fully expanded
// sequence of the same shape, replayed through Restore.
//
// Observers see a single signal at the end instead of one per expansion.
func (l *List) Snapshot() []int {
	var indices []int
	l.batch(func() {
		for i := 0; i < len(l.entries); i++ {
			if l.entries[i].group {
				l.Expand(i)
				indices = append(indices, i)
			}
		}
	})
	return indices
}

// Restore replays a Snapshot result against a fully expanded sequence,
// collapsing each recorded index in reverse order. Highest first is required:
// collapsing an early index removes trailing entries and would invalidate the
// indices after it, while working from the end keeps every pending index
// stable.
//
// Each index is bounds-checked and an out-of-range one fails with a wrapped
// ErrOutOfRange, leaving the indices after it (in replay order) applied.
// Indices that are in bounds but were captured from a differently shaped
// sequence are the caller's problem: the result is undefined, not repaired.
// Observers see at most one signal, at the end.
func (l *List) Restore(indices []int) error {
	var err error
	l.batch(func() {
		for i := len(indices) - 1; i >= 0; i-- {
			if cerr := l.Collapse(indices[i]); cerr != nil {
				err = fmt.Errorf("restore index %d: %w", indices[i], cerr)
				return
			}
		}
	})
	return err
}
