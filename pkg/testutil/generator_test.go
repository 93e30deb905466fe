package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/skein/pkg/model"
)

func TestChain(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name      string
		size      int
		wantSize  int
		wantDepth int
	}{
		{"chain_1", 1, 1, 0},
		{"chain_2", 2, 2, 1},
		{"chain_5", 5, 5, 4},
		{"chain_10", 10, 10, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := gen.Chain(tt.size)
			if f.Size() != tt.wantSize {
				t.Errorf("Chain(%d) size = %d, want %d", tt.size, f.Size(), tt.wantSize)
			}

			thread := gen.ToThread(f)
			AssertCommentCount(t, thread, tt.wantSize)
			AssertDepth(t, thread, tt.wantDepth)
		})
	}
}

func TestStar(t *testing.T) {
	gen := NewDefault()
	thread := gen.ToThread(gen.Star(6))

	AssertCommentCount(t, thread, 7)
	AssertDepth(t, thread, 1)

	post := thread.Post()
	if post == nil {
		t.Fatal("star thread should have a post")
	}
	if len(post.Replies) != 6 {
		t.Errorf("post has %d replies, want 6", len(post.Replies))
	}
}

func TestBalanced(t *testing.T) {
	gen := NewDefault()

	// depth 2, breadth 3: 1 + 3 + 9 comments
	thread := gen.ToThread(gen.Balanced(2, 3))
	AssertCommentCount(t, thread, 13)
	AssertDepth(t, thread, 2)

	for _, r := range thread.Post().Replies {
		if len(r.Replies) != 3 {
			t.Errorf("reply %s has %d children, want 3", r.ID, len(r.Replies))
		}
	}
}

func TestTwoSided(t *testing.T) {
	gen := NewDefault()
	thread := gen.ToThread(gen.TwoSided(4))

	AssertCommentCount(t, thread, 9)
	AssertDepth(t, thread, 4)

	post := thread.Post()
	if len(post.Replies) != 2 {
		t.Fatalf("post has %d direct replies, want 2 chain heads", len(post.Replies))
	}
}

func TestRandomIsValidTree(t *testing.T) {
	gen := NewDefault()
	f := gen.Random(40)

	if f.ParentOf[0] != -1 {
		t.Error("first comment must be the root")
	}
	for i := 1; i < f.Size(); i++ {
		if p := f.ParentOf[i]; p < 0 || p >= i {
			t.Errorf("comment %d has parent %d, want an earlier index", i, p)
		}
	}

	thread := gen.ToThread(f)
	AssertCommentCount(t, thread, 40)
}

func TestFlat(t *testing.T) {
	gen := NewDefault()
	thread := gen.ToThread(gen.Flat(5))

	AssertCommentCount(t, thread, 5)
	AssertDepth(t, thread, 0)
	if len(thread.Roots) != 5 {
		t.Errorf("got %d roots, want 5", len(thread.Roots))
	}
	if thread.Post() != nil {
		t.Error("flat fixture should not have a post")
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	a := New(GeneratorConfig{Seed: 7})
	b := New(GeneratorConfig{Seed: 7})

	ca := a.ToComments(a.Random(25))
	cb := b.ToComments(b.Random(25))

	if len(ca) != len(cb) {
		t.Fatalf("sizes differ: %d vs %d", len(ca), len(cb))
	}
	for i := range ca {
		if ca[i].ID != cb[i].ID || ca[i].Author != cb[i].Author ||
			ca[i].Score != cb[i].Score || ca[i].ParentID != cb[i].ParentID {
			t.Errorf("comment %d differs between runs: %+v vs %+v", i, ca[i], cb[i])
		}
	}
}

func TestGeneratedCommentsAreValid(t *testing.T) {
	gen := New(GeneratorConfig{Seed: 3, WithLabels: true})
	comments := gen.ToComments(gen.Balanced(3, 2))

	AssertAllValid(t, comments)
	AssertNoDuplicateIDs(t, comments)

	if comments[0].Kind != model.KindPost || comments[0].Role != model.RoleOP {
		t.Errorf("first comment = %s/%s, want the OP's post", comments[0].Kind, comments[0].Role)
	}
	for i := 1; i < len(comments); i++ {
		if comments[i].Kind != model.KindComment {
			t.Errorf("comment %d kind = %s", i, comments[i].Kind)
		}
		if !comments[i].CreatedAt.After(comments[i-1].CreatedAt) {
			t.Errorf("timestamps must ascend with index, broke at %d", i)
		}
	}
}

func TestToThreadLinks(t *testing.T) {
	gen := NewDefault()
	thread := gen.ToThread(gen.Chain(4))

	AssertReplyExists(t, thread, CommentID(0), CommentID(1))
	AssertReplyExists(t, thread, CommentID(1), CommentID(2))
	AssertReplyExists(t, thread, CommentID(2), CommentID(3))
	AssertWalkOrder(t, thread, "t-0", "t-1", "t-2", "t-3")

	if thread.Title == "" {
		t.Error("thread title should come from the post body")
	}
}

func TestToJSONLRoundTrip(t *testing.T) {
	gen := NewDefault()
	comments := gen.ToComments(gen.Star(3))

	lines := strings.Split(strings.TrimSpace(ToJSONL(comments)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}

	for i, line := range lines {
		var c model.Comment
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			t.Fatalf("line %d does not parse: %v", i, err)
		}
		if c.ID != CommentID(i) {
			t.Errorf("line %d id = %s, want %s", i, c.ID, CommentID(i))
		}
	}
}

func TestQuickHelpers(t *testing.T) {
	if got := QuickChain(5).Count(); got != 5 {
		t.Errorf("QuickChain(5) = %d comments", got)
	}
	if got := QuickStar(3).Count(); got != 4 {
		t.Errorf("QuickStar(3) = %d comments", got)
	}
	if got := QuickBalanced(1, 4).Count(); got != 5 {
		t.Errorf("QuickBalanced(1,4) = %d comments", got)
	}
	if got := QuickRandom(12).Count(); got != 12 {
		t.Errorf("QuickRandom(12) = %d comments", got)
	}
	if got := Empty().Count(); got != 0 {
		t.Errorf("Empty() = %d comments", got)
	}
	single := Single()
	if single.Count() != 1 || single.Post() == nil {
		t.Errorf("Single() should hold exactly the post")
	}
}

func TestWriteThreadFile(t *testing.T) {
	gen := NewDefault()
	comments := gen.ToComments(gen.Star(2))

	path := filepath.Join(t.TempDir(), "nested", "thread.jsonl")
	WriteThreadFile(t, path, comments)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 3 {
		t.Errorf("file has %d lines, want 3", got)
	}
}
