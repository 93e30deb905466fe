// Package analysis computes summary statistics and hotness rankings for a
// discussion thread. Everything is synchronous: threads top out at a few
// thousand comments, so one walk plus one PageRank run finishes well inside
// a render frame. Outputs are deterministic, with ties broken by id or name,
// so the insights view and exports are stable across runs.
package analysis

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/skein/pkg/metrics"
	"github.com/vanderheijden86/skein/pkg/model"
)

// DefaultTopAuthors caps the author leaderboards in ThreadStats.
const DefaultTopAuthors = 5

// AuthorActivity aggregates one author's contribution for the leaderboards.
type AuthorActivity struct {
	Author   string `json:"author"`
	Comments int    `json:"comments"`
	Score    int    `json:"score"`
}

// ScoreDistribution summarizes comment scores across a thread.
type ScoreDistribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    int     `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    int     `json:"max"`
}

// ThreadStats holds the results of Analyze.
type ThreadStats struct {
	Comments     int `json:"comments"`
	Participants int `json:"participants"`
	Deleted      int `json:"deleted"`
	MaxDepth     int `json:"max_depth"`

	Scores ScoreDistribution `json:"scores"`

	// RepliesPerComment is the mean direct-reply count over all comments,
	// leaves included.
	RepliesPerComment float64 `json:"replies_per_comment"`

	// DepthHistogram[d] counts comments at nesting depth d. The post sits at
	// depth 0.
	DepthHistogram []int `json:"depth_histogram"`

	TopByComments []AuthorActivity `json:"top_by_comments"`
	TopByScore    []AuthorActivity `json:"top_by_score"`

	FirstActivity time.Time `json:"first_activity"`
	LastActivity  time.Time `json:"last_activity"`

	// Hot lists the highest-gravity comments per HotRank.
	Hot []HotComment `json:"hot,omitempty"`
}

// Span returns the duration between the first and last comment.
func (s ThreadStats) Span() time.Duration {
	if s.FirstActivity.IsZero() || s.LastActivity.IsZero() {
		return 0
	}
	return s.LastActivity.Sub(s.FirstActivity)
}

// Analyze walks the thread once and returns its summary statistics,
// including the top DefaultHotLimit comments by HotRank.
func Analyze(t *model.Thread) ThreadStats {
	defer metrics.Timer(metrics.StatsCompute)()

	stats := ThreadStats{}
	if t == nil {
		return stats
	}

	var (
		scores    []float64
		replies   int
		byAuthor  = make(map[string]*AuthorActivity)
		histogram []int
	)

	t.Walk(func(c *model.Comment, depth int) {
		stats.Comments++
		if c.Deleted {
			stats.Deleted++
		}
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		for len(histogram) <= depth {
			histogram = append(histogram, 0)
		}
		histogram[depth]++

		scores = append(scores, float64(c.Score))
		replies += len(c.Replies)

		if c.Author != "" {
			a, ok := byAuthor[c.Author]
			if !ok {
				a = &AuthorActivity{Author: c.Author}
				byAuthor[c.Author] = a
			}
			a.Comments++
			a.Score += c.Score
		}

		if stats.FirstActivity.IsZero() || c.CreatedAt.Before(stats.FirstActivity) {
			stats.FirstActivity = c.CreatedAt
		}
		if c.CreatedAt.After(stats.LastActivity) {
			stats.LastActivity = c.CreatedAt
		}
	})

	if stats.Comments == 0 {
		return stats
	}

	stats.Participants = len(byAuthor)
	stats.DepthHistogram = histogram
	stats.RepliesPerComment = float64(replies) / float64(stats.Comments)
	stats.Scores = scoreDistribution(scores)
	stats.TopByComments = topAuthors(byAuthor, DefaultTopAuthors, func(a, b *AuthorActivity) bool {
		if a.Comments != b.Comments {
			return a.Comments > b.Comments
		}
		return a.Author < b.Author
	})
	stats.TopByScore = topAuthors(byAuthor, DefaultTopAuthors, func(a, b *AuthorActivity) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Author < b.Author
	})
	stats.Hot = HotRank(t, DefaultHotLimit)

	return stats
}

// scoreDistribution computes mean, stddev and quartiles. Quantile requires
// sorted input.
func scoreDistribution(scores []float64) ScoreDistribution {
	sort.Float64s(scores)

	d := ScoreDistribution{
		Min: int(scores[0]),
		Max: int(scores[len(scores)-1]),
	}
	d.Mean, d.StdDev = stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		// Sample stddev of one observation is NaN; report zero spread instead.
		d.StdDev = 0
	}
	d.Q1 = stat.Quantile(0.25, stat.Empirical, scores, nil)
	d.Median = stat.Quantile(0.5, stat.Empirical, scores, nil)
	d.Q3 = stat.Quantile(0.75, stat.Empirical, scores, nil)
	return d
}

func topAuthors(byAuthor map[string]*AuthorActivity, limit int, less func(a, b *AuthorActivity) bool) []AuthorActivity {
	ranked := make([]*AuthorActivity, 0, len(byAuthor))
	for _, a := range byAuthor {
		ranked = append(ranked, a)
	}
	sort.Slice(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]AuthorActivity, len(ranked))
	for i, a := range ranked {
		out[i] = *a
	}
	return out
}
