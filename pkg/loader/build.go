package loader

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/skein/pkg/metrics"
	"github.com/vanderheijden86/skein/pkg/model"
	"github.com/vanderheijden86/skein/pkg/outline"
)

// BuildThread links a flat slice of comments into a reply tree.
// Duplicate IDs keep the first occurrence, orphaned replies are promoted to
// roots, and parent cycles are broken at their lowest-ID member. All three
// conditions are reported through warn when one is provided.
func BuildThread(comments []*model.Comment, warn func(string)) *model.Thread {
	defer metrics.Timer(metrics.ThreadBuild)()

	if warn == nil {
		warn = func(string) {}
	}

	t := &model.Thread{ByID: make(map[string]*model.Comment, len(comments))}
	var ordered []*model.Comment
	for _, c := range comments {
		if _, dup := t.ByID[c.ID]; dup {
			warn(fmt.Sprintf("duplicate comment id %q, keeping first occurrence", c.ID))
			continue
		}
		t.ByID[c.ID] = c
		ordered = append(ordered, c)
	}

	for _, c := range ordered {
		if c.ParentID == "" {
			t.Roots = append(t.Roots, c)
			continue
		}
		if c.ParentID == c.ID || cyclic(c, t.ByID) {
			warn(fmt.Sprintf("comment %q is part of a parent cycle, promoting to root", c.ID))
			c.ParentID = ""
			t.Roots = append(t.Roots, c)
			continue
		}
		parent, ok := t.ByID[c.ParentID]
		if !ok {
			warn(fmt.Sprintf("comment %q replies to unknown parent %q, promoting to root", c.ID, c.ParentID))
			t.Roots = append(t.Roots, c)
			continue
		}
		parent.Replies = append(parent.Replies, c)
	}

	// The post leads the thread regardless of file order.
	for i, c := range t.Roots {
		if c.Kind == model.KindPost {
			if i > 0 {
				copy(t.Roots[1:i+1], t.Roots[:i])
				t.Roots[0] = c
			}
			t.Title = titleFromBody(c.Body)
			break
		}
	}
	return t
}

// cyclic reports whether following parent links from c ever revisits c.
// Chains longer than the comment count are cycles by pigeonhole.
func cyclic(c *model.Comment, byID map[string]*model.Comment) bool {
	steps := 0
	cur := c
	for cur.ParentID != "" {
		next, ok := byID[cur.ParentID]
		if !ok {
			return false
		}
		if next == c {
			return true
		}
		steps++
		if steps > len(byID) {
			return true
		}
		cur = next
	}
	return false
}

func titleFromBody(body string) string {
	line := body
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(strings.TrimLeft(line, "# "))
	if len(line) > 80 {
		line = strings.TrimSpace(line[:80]) + "…"
	}
	return line
}

// BuildOptions controls how a thread is turned into outline nodes.
type BuildOptions struct {
	// ShowDeleted keeps deleted comments in the outline. When false, deleted
	// comments without replies are dropped; deleted comments that still anchor
	// replies are kept so their subtrees stay reachable.
	ShowDeleted bool
}

// BuildNodes converts a thread into outline nodes, one per comment, with
// Indent set to the reply depth and the comment exposed through the payload.
// Returned nodes are the thread roots; reply nodes hang off their parents.
func BuildNodes(t *model.Thread, opts BuildOptions) []*outline.Node {
	var roots []*outline.Node
	for _, c := range t.Roots {
		if n := buildNode(c, 0, opts); n != nil {
			roots = append(roots, n)
		}
	}
	return roots
}

func buildNode(c *model.Comment, depth int, opts BuildOptions) *outline.Node {
	var children []*outline.Node
	for _, r := range c.Replies {
		if n := buildNode(r, depth+1, opts); n != nil {
			children = append(children, n)
		}
	}
	if c.Deleted && !opts.ShowDeleted && len(children) == 0 {
		return nil
	}

	n := &outline.Node{
		Indent:  depth,
		Payload: payloadFor(c, len(children)),
	}
	for _, child := range children {
		n.AddChild(child)
	}
	return n
}

// payloadFor flattens a comment into the key-value form the presentation
// layer resolves columns against.
func payloadFor(c *model.Comment, replies int) map[string]any {
	p := map[string]any{
		"id":      c.ID,
		"author":  c.Author,
		"body":    c.Body,
		"score":   c.Score,
		"created": c.CreatedAt,
		"edited":  c.Edited(),
		"role":    c.Role,
		"pinned":  c.Pinned,
		"deleted": c.Deleted,
		"replies": replies,
	}
	if c.Avatar != "" {
		p["avatar"] = c.Avatar
	}
	if len(c.Labels) > 0 {
		p["labels"] = append([]string(nil), c.Labels...)
	}
	return p
}
