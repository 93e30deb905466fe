// Package testutil provides deterministic thread fixture generators for
// reproducible tests. All topologies produce the same comments for the same
// seed.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/skein/pkg/model"
)

// TreeFixture describes a reply topology by parent index.
// ParentOf[i] is the index of comment i's parent, or -1 for a root.
// When HasPost is true, index 0 is the thread's root post.
type TreeFixture struct {
	Description string
	ParentOf    []int
	HasPost     bool
}

// Size returns the number of comments in the fixture.
func (f TreeFixture) Size() int { return len(f.ParentOf) }

// GeneratorConfig controls comment generation.
type GeneratorConfig struct {
	Seed       int64     // Random seed for determinism (0 = use current time)
	IDPrefix   string    // Prefix for comment IDs (default: "t")
	BaseTime   time.Time // Base time for timestamps (default: fixed time)
	Authors    []string  // Author pool (default: built-in names)
	MaxScore   int       // Upper bound for random scores (default: 50)
	WithLabels bool      // Attach labels to roughly a quarter of comments
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42, // Deterministic
		IDPrefix: "t",
		BaseTime: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		MaxScore: 50,
	}
}

var sampleAuthors = []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi"}

var sampleLabels = []string{"helpful", "answer", "source", "joke", "offtopic", "flagged"}

// Generator creates test fixtures with various reply topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "t"
	}
	if len(cfg.Authors) == 0 {
		cfg.Authors = sampleAuthors
	}
	if cfg.MaxScore <= 0 {
		cfg.MaxScore = 50
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Chain creates a single reply chain hanging off the post:
// post <- c1 <- c2 <- ... Reply depth grows by one per comment.
func (g *Generator) Chain(size int) TreeFixture {
	if size < 1 {
		size = 1
	}
	parents := make([]int, size)
	parents[0] = -1
	for i := 1; i < size; i++ {
		parents[i] = i - 1
	}
	return TreeFixture{
		Description: fmt.Sprintf("Reply chain of %d comments, depth %d", size, size-1),
		ParentOf:    parents,
		HasPost:     true,
	}
}

// Star creates a post with n direct replies and nothing deeper.
func (g *Generator) Star(replies int) TreeFixture {
	if replies < 0 {
		replies = 0
	}
	parents := make([]int, replies+1)
	parents[0] = -1
	for i := 1; i <= replies; i++ {
		parents[i] = 0
	}
	return TreeFixture{
		Description: fmt.Sprintf("Post with %d direct replies", replies),
		ParentOf:    parents,
		HasPost:     true,
	}
}

// Balanced creates a post where every comment above the depth limit has
// exactly breadth replies.
func (g *Generator) Balanced(depth, breadth int) TreeFixture {
	if depth < 0 {
		depth = 0
	}
	if breadth < 1 {
		breadth = 1
	}

	parents := []int{-1}
	level := []int{0}
	for d := 0; d < depth; d++ {
		var next []int
		for _, p := range level {
			for b := 0; b < breadth; b++ {
				parents = append(parents, p)
				next = append(next, len(parents)-1)
			}
		}
		level = next
	}

	return TreeFixture{
		Description: fmt.Sprintf("Balanced thread, depth=%d breadth=%d (%d comments)", depth, breadth, len(parents)),
		ParentOf:    parents,
		HasPost:     true,
	}
}

// TwoSided creates a post with two parallel reply chains of the given
// length, the shape of a back-and-forth argument.
func (g *Generator) TwoSided(length int) TreeFixture {
	if length < 1 {
		length = 1
	}
	parents := []int{-1}
	for side := 0; side < 2; side++ {
		prev := 0
		for i := 0; i < length; i++ {
			parents = append(parents, prev)
			prev = len(parents) - 1
		}
	}
	return TreeFixture{
		Description: fmt.Sprintf("Post with two reply chains of %d comments each", length),
		ParentOf:    parents,
		HasPost:     true,
	}
}

// Random creates a post where each later comment replies to a uniformly
// chosen earlier one. Always a valid tree.
func (g *Generator) Random(size int) TreeFixture {
	if size < 1 {
		size = 1
	}
	parents := make([]int, size)
	parents[0] = -1
	for i := 1; i < size; i++ {
		parents[i] = g.rng.Intn(i)
	}
	return TreeFixture{
		Description: fmt.Sprintf("Random reply tree of %d comments", size),
		ParentOf:    parents,
		HasPost:     true,
	}
}

// Flat creates size top-level comments with no post and no replies.
func (g *Generator) Flat(size int) TreeFixture {
	if size < 0 {
		size = 0
	}
	parents := make([]int, size)
	for i := range parents {
		parents[i] = -1
	}
	return TreeFixture{
		Description: fmt.Sprintf("%d top-level comments without a post", size),
		ParentOf:    parents,
	}
}

// ToComments converts a fixture to a flat comment slice in wire order.
// Timestamps ascend with the index so sibling order is stable under
// created-at sorting.
func (g *Generator) ToComments(f TreeFixture) []*model.Comment {
	comments := make([]*model.Comment, f.Size())
	for i := range comments {
		c := &model.Comment{
			ID:        fmt.Sprintf("%s-%d", g.cfg.IDPrefix, i),
			Author:    g.cfg.Authors[g.rng.Intn(len(g.cfg.Authors))],
			Score:     g.rng.Intn(g.cfg.MaxScore + 1),
			Kind:      model.KindComment,
			CreatedAt: g.cfg.BaseTime.Add(time.Duration(i) * time.Minute),
		}
		if f.HasPost && i == 0 {
			c.Kind = model.KindPost
			c.Role = model.RoleOP
			c.Body = fmt.Sprintf("Thread %s\n\nGenerated fixture: %s", g.cfg.IDPrefix, f.Description)
		} else {
			c.Body = fmt.Sprintf("Comment %d in the %s fixture.", i, g.cfg.IDPrefix)
		}
		if p := f.ParentOf[i]; p >= 0 {
			c.ParentID = fmt.Sprintf("%s-%d", g.cfg.IDPrefix, p)
		}
		if g.cfg.WithLabels && g.rng.Intn(4) == 0 {
			c.Labels = []string{sampleLabels[g.rng.Intn(len(sampleLabels))]}
		}
		comments[i] = c
	}
	return comments
}

// ToThread converts a fixture directly to a linked thread.
func (g *Generator) ToThread(f TreeFixture) *model.Thread {
	comments := g.ToComments(f)

	t := &model.Thread{ByID: make(map[string]*model.Comment, len(comments))}
	for _, c := range comments {
		t.ByID[c.ID] = c
	}
	for i, c := range comments {
		if p := f.ParentOf[i]; p >= 0 {
			comments[p].Replies = append(comments[p].Replies, c)
		} else {
			t.Roots = append(t.Roots, c)
		}
	}
	if post := t.Post(); post != nil {
		if i := strings.IndexByte(post.Body, '\n'); i > 0 {
			t.Title = post.Body[:i]
		} else {
			t.Title = post.Body
		}
	}
	return t
}

// ToJSONL converts comments to JSONL format (one JSON object per line).
func ToJSONL(comments []*model.Comment) string {
	var sb strings.Builder
	for _, c := range comments {
		data, err := json.Marshal(c)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Convenience constructors for the common cases.

// QuickChain creates a chain thread with default settings.
func QuickChain(size int) *model.Thread {
	gen := NewDefault()
	return gen.ToThread(gen.Chain(size))
}

// QuickStar creates a star thread with default settings.
func QuickStar(replies int) *model.Thread {
	gen := NewDefault()
	return gen.ToThread(gen.Star(replies))
}

// QuickBalanced creates a balanced thread with default settings.
func QuickBalanced(depth, breadth int) *model.Thread {
	gen := NewDefault()
	return gen.ToThread(gen.Balanced(depth, breadth))
}

// QuickRandom creates a random thread with default settings.
func QuickRandom(size int) *model.Thread {
	gen := NewDefault()
	return gen.ToThread(gen.Random(size))
}

// Empty returns a thread with no comments.
func Empty() *model.Thread {
	return &model.Thread{ByID: map[string]*model.Comment{}}
}

// Single returns a thread holding only a post.
func Single() *model.Thread {
	gen := NewDefault()
	return gen.ToThread(gen.Star(0))
}
