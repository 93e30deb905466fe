package model

import "sort"

// Thread represents one discussion: a comment forest linked up from a flat
// wire format, plus where it came from
type Thread struct {
	Title  string
	URL    string
	Source string

	// Roots holds the top-level entries in display order. A root post, when
	// the data has one, is the first root and carries KindPost.
	Roots []*Comment

	// ByID indexes every linked comment.
	ByID map[string]*Comment
}

// Post returns the root post if the thread has one
func (t *Thread) Post() *Comment {
	for _, c := range t.Roots {
		if c.Kind == KindPost {
			return c
		}
	}
	return nil
}

// Count returns the total number of comments including any root post
func (t *Thread) Count() int {
	return len(t.ByID)
}

// Walk visits every comment depth-first in display order, with its depth
// relative to the roots (roots are depth 0).
//
// Iterative on purpose: imported threads can nest deep enough that
// recursion is a liability.
func (t *Thread) Walk(fn func(c *Comment, depth int)) {
	type frame struct {
		c     *Comment
		depth int
	}
	stack := make([]frame, 0, len(t.Roots))
	for i := len(t.Roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{t.Roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(f.c, f.depth)
		for i := len(f.c.Replies) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.c.Replies[i], f.depth + 1})
		}
	}
}

// MaxDepth returns the deepest reply level, 0 for a thread of only roots
func (t *Thread) MaxDepth() int {
	max := 0
	t.Walk(func(_ *Comment, depth int) {
		if depth > max {
			max = depth
		}
	})
	return max
}

// Participants returns the number of distinct authors
func (t *Thread) Participants() int {
	authors := make(map[string]struct{})
	t.Walk(func(c *Comment, _ int) {
		if c.Author != "" {
			authors[c.Author] = struct{}{}
		}
	})
	return len(authors)
}

// SortReplies reorders every sibling list with the given less function,
// keeping equal siblings in their current order. Roots are left alone when a
// post leads the thread so it stays on top.
func (t *Thread) SortReplies(less func(a, b *Comment) bool) {
	var sortLevel func(cs []*Comment)
	sortLevel = func(cs []*Comment) {
		sort.SliceStable(cs, func(i, j int) bool { return less(cs[i], cs[j]) })
		for _, c := range cs {
			sortLevel(c.Replies)
		}
	}
	if post := t.Post(); post != nil && len(t.Roots) > 0 && t.Roots[0] == post {
		sortLevel(t.Roots[1:])
		sortLevel(post.Replies)
		return
	}
	sortLevel(t.Roots)
}

// ByCreated orders siblings oldest first, ties broken by ID
func ByCreated(a, b *Comment) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// ByScore orders siblings highest score first, ties broken by age then ID
func ByScore(a, b *Comment) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return ByCreated(a, b)
}
