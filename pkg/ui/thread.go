// thread.go - Windowed thread view over an outline.List.
//
// The view renders only the rows inside the viewport window and keeps the
// cursor visible with a small scroll margin. All fold operations go through
// the outline engine; the view itself owns nothing but cursor, window, and
// search match state.
package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/skein/pkg/outline"
)

// scrollMargin is the number of context rows kept visible above and below
// the cursor while scrolling.
const scrollMargin = 2

// ThreadModel manages cursor, scrolling, folding, and search over the flat
// comment sequence.
type ThreadModel struct {
	list  *outline.List
	rows  *RowRenderer
	theme Theme

	roots   []*outline.Node
	parents map[*outline.Node]*outline.Node
	byID    map[string]*outline.Node

	cursor         int
	viewportOffset int
	width          int
	height         int

	searchQuery    string
	searchMatches  []string
	searchMatchIdx int
}

// NewThreadModel creates an empty thread view; call SetList to populate it.
func NewThreadModel(theme Theme, rows *RowRenderer) ThreadModel {
	return ThreadModel{
		theme:   theme,
		rows:    rows,
		parents: make(map[*outline.Node]*outline.Node),
		byID:    make(map[string]*outline.Node),
	}
}

// SetList replaces the underlying list and reindexes the full topology.
// Cursor position is clamped; search matches are cleared because node
// identity does not survive a rebuild.
func (t *ThreadModel) SetList(l *outline.List, roots []*outline.Node) {
	t.list = l
	t.roots = roots
	t.parents = make(map[*outline.Node]*outline.Node)
	t.byID = make(map[string]*outline.Node)
	walkTopology(roots, func(n, parent *outline.Node) {
		t.parents[n] = parent
		if id, ok := n.Payload["id"].(string); ok {
			t.byID[id] = n
		}
	})
	t.searchQuery = ""
	t.searchMatches = nil
	t.searchMatchIdx = 0
	t.clampCursor()
	t.ensureCursorVisible()
}

// walkTopology visits every node of the tree with its parent, ignoring the
// collapse state: hidden nodes are visited too.
func walkTopology(roots []*outline.Node, visit func(n, parent *outline.Node)) {
	type frame struct{ n, parent *outline.Node }
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], nil})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(f.n, f.parent)
		for i := len(f.n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.n.Children[i], f.n})
		}
	}
}

// List exposes the underlying outline list.
func (t *ThreadModel) List() *outline.List {
	return t.list
}

// SetSize updates the viewport dimensions.
func (t *ThreadModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Len returns the number of visible rows.
func (t *ThreadModel) Len() int {
	if t.list == nil {
		return 0
	}
	return t.list.Len()
}

// SelectedNode returns the node under the cursor, or nil.
func (t *ThreadModel) SelectedNode() *outline.Node {
	if t.list == nil {
		return nil
	}
	n, err := t.list.At(t.cursor)
	if err != nil {
		return nil
	}
	return n
}

// SelectedID returns the comment id under the cursor, or "".
func (t *ThreadModel) SelectedID() string {
	if n := t.SelectedNode(); n != nil {
		if id, ok := n.Payload["id"].(string); ok {
			return id
		}
	}
	return ""
}

// SelectByID moves the cursor to the visible row with the given comment id.
// Reports whether the row was found.
func (t *ThreadModel) SelectByID(id string) bool {
	if t.list == nil || id == "" {
		return false
	}
	for i, n := range t.list.Entries() {
		if nid, ok := n.Payload["id"].(string); ok && nid == id {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// ── Cursor movement ──

func (t *ThreadModel) MoveDown() {
	if t.cursor < t.Len()-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

func (t *ThreadModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

func (t *ThreadModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

func (t *ThreadModel) JumpToBottom() {
	if n := t.Len(); n > 0 {
		t.cursor = n - 1
		t.ensureCursorVisible()
	}
}

// HalfPageDown moves the cursor down by half a viewport.
func (t *ThreadModel) HalfPageDown() {
	step := t.height / 2
	if step < 1 {
		step = 5
	}
	t.cursor += step
	t.clampCursor()
	t.ensureCursorVisible()
}

// HalfPageUp moves the cursor up by half a viewport.
func (t *ThreadModel) HalfPageUp() {
	step := t.height / 2
	if step < 1 {
		step = 5
	}
	t.cursor -= step
	t.clampCursor()
	t.ensureCursorVisible()
}

// JumpToParent moves the cursor to the parent of the selected comment.
// At a root, does nothing. A visible node always has a visible parent, so
// the lookup cannot miss.
func (t *ThreadModel) JumpToParent() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	parent := t.parents[n]
	if parent == nil {
		return
	}
	if i := t.list.IndexOf(parent); i >= 0 {
		t.cursor = i
		t.ensureCursorVisible()
	}
}

// ── Folding ──

// ToggleCursor collapses or expands the subtree under the cursor.
func (t *ThreadModel) ToggleCursor() {
	if t.list == nil {
		return
	}
	_ = t.list.Toggle(t.cursor)
	t.clampCursor()
	t.ensureCursorVisible()
}

// CollapseCursor folds the subtree under the cursor; a no-op on leaves and
// on rows that are already folded.
func (t *ThreadModel) CollapseCursor() {
	if t.list == nil {
		return
	}
	if n := t.SelectedNode(); n == nil || n.IsGroup() {
		return
	}
	_ = t.list.Collapse(t.cursor)
	t.clampCursor()
	t.ensureCursorVisible()
}

// ExpandCursor unfolds the group under the cursor; a no-op elsewhere.
func (t *ThreadModel) ExpandCursor() {
	if t.list == nil {
		return
	}
	_ = t.list.Expand(t.cursor)
	t.ensureCursorVisible()
}

// CollapseAll folds every subtree. The walk runs backward so a collapse at
// position i only ever removes rows at positions above i, which have already
// been visited.
func (t *ThreadModel) CollapseAll() {
	if t.list == nil {
		return
	}
	for i := t.list.Len() - 1; i >= 0; i-- {
		_ = t.list.Collapse(i)
	}
	t.clampCursor()
	t.ensureCursorVisible()
}

// ExpandAll unfolds everything, nested groups included.
func (t *ThreadModel) ExpandAll() {
	if t.list == nil {
		return
	}
	_ = t.list.Snapshot()
	t.ensureCursorVisible()
}

// CollapseToDepth shows reply depths 0..level-1 and folds everything deeper.
// Level 1 leaves only the roots visible. The sequence is fully expanded
// first so deeper folds are recorded on the nodes themselves, then refolded
// backward from the end.
func (t *ThreadModel) CollapseToDepth(level int) {
	if t.list == nil || level < 1 {
		return
	}
	selected := t.SelectedID()
	_ = t.list.Snapshot()
	for i := t.list.Len() - 1; i >= 0; i-- {
		n, err := t.list.At(i)
		if err != nil {
			continue
		}
		if n.Indent >= level-1 && n.HasChildren() {
			_ = t.list.Collapse(i)
		}
	}
	if selected == "" || !t.SelectByID(selected) {
		t.clampCursor()
	}
	t.ensureCursorVisible()
}

// CollapsedIndices returns the current collapse shape as snapshot indices,
// leaving the view unchanged. The round trip through Snapshot/Restore is the
// engine's own encoding; nothing here re-derives it.
func (t *ThreadModel) CollapsedIndices() []int {
	if t.list == nil {
		return nil
	}
	indices := t.list.Snapshot()
	_ = t.list.Restore(indices)
	return indices
}

// ── Search ──

// Search matches the query against comment id, author, and body of every
// node, hidden ones included, and reveals the first hit. Returns the number
// of matches; an empty query clears the match state.
func (t *ThreadModel) Search(query string) int {
	t.searchQuery = query
	t.searchMatches = nil
	t.searchMatchIdx = 0
	if query == "" {
		return 0
	}
	q := strings.ToLower(query)
	walkTopology(t.roots, func(n, _ *outline.Node) {
		id, _ := n.Payload["id"].(string)
		author, _ := n.Payload["author"].(string)
		body, _ := n.Payload["body"].(string)
		if strings.Contains(strings.ToLower(id), q) ||
			strings.Contains(strings.ToLower(author), q) ||
			strings.Contains(strings.ToLower(body), q) {
			t.searchMatches = append(t.searchMatches, id)
		}
	})
	if len(t.searchMatches) > 0 {
		t.revealID(t.searchMatches[0])
	}
	return len(t.searchMatches)
}

// ClearSearch drops the query and all match state.
func (t *ThreadModel) ClearSearch() {
	t.searchQuery = ""
	t.searchMatches = nil
	t.searchMatchIdx = 0
}

// HasMatches reports whether a search produced hits to cycle through.
func (t *ThreadModel) HasMatches() bool {
	return len(t.searchMatches) > 0
}

// NextMatch moves to the next search hit, wrapping around.
func (t *ThreadModel) NextMatch() {
	if len(t.searchMatches) == 0 {
		return
	}
	t.searchMatchIdx = (t.searchMatchIdx + 1) % len(t.searchMatches)
	t.revealID(t.searchMatches[t.searchMatchIdx])
}

// PrevMatch moves to the previous search hit, wrapping around.
func (t *ThreadModel) PrevMatch() {
	if len(t.searchMatches) == 0 {
		return
	}
	t.searchMatchIdx--
	if t.searchMatchIdx < 0 {
		t.searchMatchIdx = len(t.searchMatches) - 1
	}
	t.revealID(t.searchMatches[t.searchMatchIdx])
}

// MatchStatus describes the search position for the status line, e.g.
// "2/5" or "no matches".
func (t *ThreadModel) MatchStatus() string {
	if t.searchQuery == "" {
		return ""
	}
	if len(t.searchMatches) == 0 {
		return "no matches"
	}
	return fmt.Sprintf("%d/%d", t.searchMatchIdx+1, len(t.searchMatches))
}

// revealID expands the fold path down to the given comment and selects it.
// Ancestors are expanded outermost first so each index lookup happens
// against a sequence the previous expansion already made valid.
func (t *ThreadModel) revealID(id string) bool {
	n := t.byID[id]
	if n == nil || t.list == nil {
		return false
	}
	var path []*outline.Node
	for p := t.parents[n]; p != nil; p = t.parents[p] {
		path = append(path, p)
	}
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].IsGroup() {
			if idx := t.list.IndexOf(path[i]); idx >= 0 {
				_ = t.list.Expand(idx)
			}
		}
	}
	if idx := t.list.IndexOf(n); idx >= 0 {
		t.cursor = idx
		t.ensureCursorVisible()
		return true
	}
	return false
}

// ── Rendering ──

// View renders the visible window of rows plus a position indicator when
// the thread does not fit.
func (t *ThreadModel) View() string {
	if t.list == nil || t.list.Len() == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	start, end := t.visibleRange()
	entries := t.list.Entries()

	for i := start; i < end; i++ {
		line, err := t.rows.Render(entries[i], t.rowWidth())
		if err != nil {
			line = t.theme.MutedText.Render(fmt.Sprintf("render error: %v", err))
		}
		if i == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if t.list.Len() > t.effectiveVisibleCount() {
		sb.WriteString(t.renderPositionIndicator(start, end))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// rowWidth leaves a column free so selected-row padding cannot wrap.
func (t *ThreadModel) rowWidth() int {
	w := t.width
	if w <= 0 {
		w = 80
	}
	return w - 2
}

func (t *ThreadModel) renderEmptyState() string {
	r := t.theme.Renderer
	var sb strings.Builder
	sb.WriteString(r.NewStyle().Foreground(t.theme.Primary).Bold(true).Render("No comments"))
	sb.WriteString("\n\n")
	sb.WriteString(t.theme.MutedText.Render("The thread is empty. Press r to reload or q to quit."))
	return sb.String()
}

// renderPositionIndicator shows "12-31 of 214" while scrolling.
func (t *ThreadModel) renderPositionIndicator(start, end int) string {
	return t.theme.MutedText.Render(
		fmt.Sprintf(" %d-%d of %d", start+1, end, t.list.Len()))
}

// visibleRange returns the window [start, end) of rows to draw.
func (t *ThreadModel) visibleRange() (start, end int) {
	n := t.Len()
	if n == 0 {
		return 0, 0
	}
	visible := t.effectiveVisibleCount()
	start = t.viewportOffset
	if start < 0 {
		start = 0
	}
	end = start + visible
	if end > n {
		end = n
		start = end - visible
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// effectiveVisibleCount is the number of row lines the viewport can hold,
// reserving one line for the position indicator when scrolling is needed.
func (t *ThreadModel) effectiveVisibleCount() int {
	visible := t.height
	if visible <= 0 {
		visible = 20
	}
	if t.Len() > visible {
		visible--
	}
	if visible < 1 {
		visible = 1
	}
	return visible
}

// ensureCursorVisible scrolls the window so the cursor stays inside it with
// scrollMargin rows of context where the viewport allows.
func (t *ThreadModel) ensureCursorVisible() {
	n := t.Len()
	if n == 0 {
		t.viewportOffset = 0
		return
	}
	visible := t.effectiveVisibleCount()
	margin := scrollMargin
	if visible <= 2*margin {
		margin = 0
	}

	if t.cursor < t.viewportOffset+margin {
		t.viewportOffset = t.cursor - margin
	}
	if t.cursor >= t.viewportOffset+visible-margin {
		t.viewportOffset = t.cursor - visible + 1 + margin
	}

	maxOffset := n - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if t.viewportOffset > maxOffset {
		t.viewportOffset = maxOffset
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

func (t *ThreadModel) clampCursor() {
	if t.cursor >= t.Len() {
		t.cursor = t.Len() - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}
