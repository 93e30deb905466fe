package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/vanderheijden86/skein/pkg/model"
)

// DefaultHotLimit caps the Hot list in ThreadStats.
const DefaultHotLimit = 5

// PageRank parameters. 0.85 is the standard damping factor; the tolerance
// is tight enough that ranks are stable to well past display precision.
const (
	hotDamping   = 0.85
	hotTolerance = 1e-6
)

// HotComment is one entry in the hotness ranking.
type HotComment struct {
	ID      string  `json:"id"`
	Author  string  `json:"author"`
	Rank    float64 `json:"rank"`
	Replies int     `json:"replies"`
}

// HotRank ranks comments by PageRank over the reply graph. Every reply
// contributes an edge toward its parent, so rank flows upward and pools in
// the comments anchoring the busiest subtrees. Returns at most limit
// entries, highest rank first, ties broken by id.
func HotRank(t *model.Thread, limit int) []HotComment {
	if t == nil || limit <= 0 {
		return nil
	}

	var comments []*model.Comment
	t.Walk(func(c *model.Comment, depth int) {
		comments = append(comments, c)
	})

	// PageRank panics on an empty graph.
	if len(comments) == 0 {
		return nil
	}

	g := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(comments))
	nodeToID := make(map[int64]string, len(comments))

	for _, c := range comments {
		n := g.NewNode()
		g.AddNode(n)
		idToNode[c.ID] = n.ID()
		nodeToID[n.ID()] = c.ID
	}

	for _, c := range comments {
		if c.ParentID == "" {
			continue
		}
		u, ok := idToNode[c.ID]
		if !ok {
			continue
		}
		v, ok := idToNode[c.ParentID]
		if !ok {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(u), g.Node(v)))
	}

	ranks := network.PageRank(g, hotDamping, hotTolerance)

	hot := make([]HotComment, 0, len(comments))
	for _, c := range comments {
		hot = append(hot, HotComment{
			ID:      c.ID,
			Author:  c.Author,
			Rank:    ranks[idToNode[c.ID]],
			Replies: len(c.Replies),
		})
	}

	sort.Slice(hot, func(i, j int) bool {
		if hot[i].Rank != hot[j].Rank {
			return hot[i].Rank > hot[j].Rank
		}
		return hot[i].ID < hot[j].ID
	})

	if len(hot) > limit {
		hot = hot[:limit]
	}
	return hot
}
