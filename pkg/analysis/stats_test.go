package analysis_test

import (
	"math"
	"testing"
	"time"

	"github.com/vanderheijden86/skein/pkg/analysis"
	"github.com/vanderheijden86/skein/pkg/loader"
	"github.com/vanderheijden86/skein/pkg/model"
)

var statsBase = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// statThread builds a five-comment fixture with hand-picked scores:
//
//	p1 (10)
//	├── c1 (5)
//	│   └── c3 (1)
//	│       └── c4 (4, deleted)
//	└── c2 (20)
func statThread(t *testing.T) *model.Thread {
	t.Helper()
	comments := []*model.Comment{
		{ID: "p1", Author: "alice", Body: "How do you test time?", Score: 10, Kind: model.KindPost, CreatedAt: statsBase},
		{ID: "c1", ParentID: "p1", Author: "bob", Body: "Inject a clock.", Score: 5, CreatedAt: statsBase.Add(1 * time.Minute)},
		{ID: "c2", ParentID: "p1", Author: "carol", Body: "Fake timers.", Score: 20, CreatedAt: statsBase.Add(2 * time.Minute)},
		{ID: "c3", ParentID: "c1", Author: "dave", Body: "Which library?", Score: 1, CreatedAt: statsBase.Add(3 * time.Minute)},
		{ID: "c4", ParentID: "c3", Author: "alice", Body: "removed", Score: 4, Deleted: true, CreatedAt: statsBase.Add(4 * time.Minute)},
	}
	return loader.BuildThread(comments, nil)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzeCounts(t *testing.T) {
	stats := analysis.Analyze(statThread(t))

	if stats.Comments != 5 {
		t.Errorf("Comments = %d, want 5", stats.Comments)
	}
	if stats.Participants != 4 {
		t.Errorf("Participants = %d, want 4", stats.Participants)
	}
	if stats.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", stats.Deleted)
	}
	if stats.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", stats.MaxDepth)
	}
	if !almostEqual(stats.RepliesPerComment, 0.8) {
		t.Errorf("RepliesPerComment = %v, want 0.8", stats.RepliesPerComment)
	}
}

func TestAnalyzeScoreDistribution(t *testing.T) {
	stats := analysis.Analyze(statThread(t))
	s := stats.Scores

	if !almostEqual(s.Mean, 8) {
		t.Errorf("Mean = %v, want 8", s.Mean)
	}
	// Sorted scores are 1 4 5 10 20; sample variance is 222/4.
	if !almostEqual(s.StdDev, math.Sqrt(55.5)) {
		t.Errorf("StdDev = %v, want %v", s.StdDev, math.Sqrt(55.5))
	}
	if s.Min != 1 || s.Max != 20 {
		t.Errorf("Min/Max = %d/%d, want 1/20", s.Min, s.Max)
	}
	if !almostEqual(s.Q1, 4) || !almostEqual(s.Median, 5) || !almostEqual(s.Q3, 10) {
		t.Errorf("quartiles = %v/%v/%v, want 4/5/10", s.Q1, s.Median, s.Q3)
	}
}

func TestAnalyzeDepthHistogram(t *testing.T) {
	stats := analysis.Analyze(statThread(t))

	want := []int{1, 2, 1, 1}
	if len(stats.DepthHistogram) != len(want) {
		t.Fatalf("histogram has %d buckets, want %d", len(stats.DepthHistogram), len(want))
	}
	for d, n := range want {
		if stats.DepthHistogram[d] != n {
			t.Errorf("depth %d has %d comments, want %d", d, stats.DepthHistogram[d], n)
		}
	}
}

func TestAnalyzeTopAuthors(t *testing.T) {
	stats := analysis.Analyze(statThread(t))

	if len(stats.TopByComments) != 4 {
		t.Fatalf("TopByComments has %d entries, want 4", len(stats.TopByComments))
	}
	if stats.TopByComments[0].Author != "alice" || stats.TopByComments[0].Comments != 2 {
		t.Errorf("top commenter = %+v, want alice with 2", stats.TopByComments[0])
	}
	// Ties on count fall back to name order.
	if stats.TopByComments[1].Author != "bob" {
		t.Errorf("second commenter = %s, want bob", stats.TopByComments[1].Author)
	}

	if stats.TopByScore[0].Author != "carol" || stats.TopByScore[0].Score != 20 {
		t.Errorf("top scorer = %+v, want carol with 20", stats.TopByScore[0])
	}
	if stats.TopByScore[1].Author != "alice" || stats.TopByScore[1].Score != 14 {
		t.Errorf("second scorer = %+v, want alice with 14", stats.TopByScore[1])
	}
}

func TestAnalyzeActivitySpan(t *testing.T) {
	stats := analysis.Analyze(statThread(t))

	if !stats.FirstActivity.Equal(statsBase) {
		t.Errorf("FirstActivity = %v, want %v", stats.FirstActivity, statsBase)
	}
	if !stats.LastActivity.Equal(statsBase.Add(4 * time.Minute)) {
		t.Errorf("LastActivity = %v, want %v", stats.LastActivity, statsBase.Add(4*time.Minute))
	}
	if stats.Span() != 4*time.Minute {
		t.Errorf("Span = %v, want 4m", stats.Span())
	}
}

func TestAnalyzeIncludesHot(t *testing.T) {
	stats := analysis.Analyze(statThread(t))

	if len(stats.Hot) != 5 {
		t.Fatalf("Hot has %d entries, want 5", len(stats.Hot))
	}
	if stats.Hot[0].ID != "p1" {
		t.Errorf("hottest comment = %s, want the post", stats.Hot[0].ID)
	}
	if stats.Hot[0].Replies != 2 {
		t.Errorf("hottest comment replies = %d, want 2", stats.Hot[0].Replies)
	}
}

// Analyze must not panic on degenerate input. PageRank panics on
// zero-length matrices, so the empty case short-circuits before reaching it.
func TestAnalyzeEmptyThread(t *testing.T) {
	stats := analysis.Analyze(loader.BuildThread(nil, nil))

	if stats.Comments != 0 {
		t.Errorf("Comments = %d, want 0", stats.Comments)
	}
	if stats.Hot != nil {
		t.Errorf("Hot = %v, want nil", stats.Hot)
	}
	if stats.Span() != 0 {
		t.Errorf("Span = %v, want 0", stats.Span())
	}
}

func TestAnalyzeNilThread(t *testing.T) {
	stats := analysis.Analyze(nil)
	if stats.Comments != 0 {
		t.Errorf("Comments = %d, want 0", stats.Comments)
	}
}

func TestAnalyzeSingleComment(t *testing.T) {
	comments := []*model.Comment{
		{ID: "solo", Author: "alice", Body: "hi", Score: 3, CreatedAt: statsBase},
	}
	stats := analysis.Analyze(loader.BuildThread(comments, nil))

	if stats.Comments != 1 {
		t.Fatalf("Comments = %d, want 1", stats.Comments)
	}
	// One observation has no sample spread.
	if stats.Scores.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0", stats.Scores.StdDev)
	}
	if !almostEqual(stats.Scores.Mean, 3) {
		t.Errorf("Mean = %v, want 3", stats.Scores.Mean)
	}
}
