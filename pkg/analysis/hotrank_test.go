package analysis_test

import (
	"testing"

	"github.com/vanderheijden86/skein/pkg/analysis"
	"github.com/vanderheijden86/skein/pkg/testutil"
)

func TestHotRankPoolsAtChainRoot(t *testing.T) {
	thread := testutil.QuickChain(6)

	hot := analysis.HotRank(thread, 3)
	if len(hot) != 3 {
		t.Fatalf("got %d entries, want 3", len(hot))
	}
	// Rank flows reply -> parent, so the post collects the whole chain.
	if hot[0].ID != testutil.CommentID(0) {
		t.Errorf("hottest = %s, want %s", hot[0].ID, testutil.CommentID(0))
	}
	if hot[0].Rank <= hot[1].Rank {
		t.Errorf("rank should strictly decrease down the chain: %v vs %v", hot[0].Rank, hot[1].Rank)
	}
}

func TestHotRankStarFavorsHub(t *testing.T) {
	thread := testutil.QuickStar(8)

	hot := analysis.HotRank(thread, 1)
	if len(hot) != 1 {
		t.Fatalf("got %d entries, want 1", len(hot))
	}
	if hot[0].ID != testutil.CommentID(0) {
		t.Errorf("hottest = %s, want the hub %s", hot[0].ID, testutil.CommentID(0))
	}
	if hot[0].Replies != 8 {
		t.Errorf("hub replies = %d, want 8", hot[0].Replies)
	}
}

func TestHotRankTiesBreakByID(t *testing.T) {
	gen := testutil.NewDefault()
	thread := gen.ToThread(gen.Flat(4))

	// No edges, so every comment carries the same uniform rank.
	hot := analysis.HotRank(thread, 4)
	if len(hot) != 4 {
		t.Fatalf("got %d entries, want 4", len(hot))
	}
	for i, want := range []string{"t-0", "t-1", "t-2", "t-3"} {
		if hot[i].ID != want {
			t.Errorf("entry %d = %s, want %s", i, hot[i].ID, want)
		}
	}
}

func TestHotRankLimit(t *testing.T) {
	thread := testutil.QuickRandom(20)

	if got := len(analysis.HotRank(thread, 5)); got != 5 {
		t.Errorf("limit 5 returned %d entries", got)
	}
	if got := len(analysis.HotRank(thread, 100)); got != 20 {
		t.Errorf("oversized limit returned %d entries, want 20", got)
	}
	if got := analysis.HotRank(thread, 0); got != nil {
		t.Errorf("limit 0 returned %v, want nil", got)
	}
}

func TestHotRankEmptyAndNil(t *testing.T) {
	if got := analysis.HotRank(testutil.Empty(), 5); got != nil {
		t.Errorf("empty thread returned %v, want nil", got)
	}
	if got := analysis.HotRank(nil, 5); got != nil {
		t.Errorf("nil thread returned %v, want nil", got)
	}
}

func TestHotRankDeterministic(t *testing.T) {
	thread := testutil.QuickRandom(30)

	a := analysis.HotRank(thread, 10)
	b := analysis.HotRank(thread, 10)
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Rank != b[i].Rank {
			t.Errorf("entry %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
