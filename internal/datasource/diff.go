package datasource

import (
	"fmt"
	"sort"
)

// SourceDiff represents differences between two data sources
type SourceDiff struct {
	// SourceA is the path of the first source
	SourceA string
	// SourceB is the path of the second source
	SourceB string
	// MissingInA contains comment IDs present in B but not in A
	MissingInA []string
	// MissingInB contains comment IDs present in A but not in B
	MissingInB []string
	// ScoreMismatch contains comments whose score differs between sources
	ScoreMismatch []ScoreDifference
	// CountA is the number of comments in source A
	CountA int
	// CountB is the number of comments in source B
	CountB int
}

// ScoreDifference represents a score mismatch for a single comment
type ScoreDifference struct {
	ID     string `json:"id"`
	ScoreA int    `json:"score_a"`
	ScoreB int    `json:"score_b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.ScoreMismatch) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d comments each)", d.CountA)
	}

	summary := fmt.Sprintf("Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)

	if d.CountA != d.CountB {
		summary += fmt.Sprintf("  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}

	if len(d.MissingInA) > 0 {
		summary += fmt.Sprintf("  - %d comments in %s but not %s\n", len(d.MissingInA), d.SourceB, d.SourceA)
		if len(d.MissingInA) <= 5 {
			for _, id := range d.MissingInA {
				summary += fmt.Sprintf("    - %s\n", id)
			}
		}
	}

	if len(d.MissingInB) > 0 {
		summary += fmt.Sprintf("  - %d comments in %s but not %s\n", len(d.MissingInB), d.SourceA, d.SourceB)
		if len(d.MissingInB) <= 5 {
			for _, id := range d.MissingInB {
				summary += fmt.Sprintf("    - %s\n", id)
			}
		}
	}

	if len(d.ScoreMismatch) > 0 {
		summary += fmt.Sprintf("  - %d comments with different scores\n", len(d.ScoreMismatch))
		if len(d.ScoreMismatch) <= 5 {
			for _, m := range d.ScoreMismatch {
				summary += fmt.Sprintf("    - %s: %d vs %d\n", m.ID, m.ScoreA, m.ScoreB)
			}
		}
	}

	return summary
}

// DiffSources loads two sources and compares their comment sets.
// Useful for checking that a JSONL export and the SQLite archive agree.
func DiffSources(a, b DataSource) (SourceDiff, error) {
	diff := SourceDiff{SourceA: a.Path, SourceB: b.Path}

	threadA, err := LoadFromSource(a)
	if err != nil {
		return diff, fmt.Errorf("failed to load %s: %w", a.Path, err)
	}
	threadB, err := LoadFromSource(b)
	if err != nil {
		return diff, fmt.Errorf("failed to load %s: %w", b.Path, err)
	}

	diff.CountA = threadA.Count()
	diff.CountB = threadB.Count()

	for id, ca := range threadA.ByID {
		cb, ok := threadB.ByID[id]
		if !ok {
			diff.MissingInB = append(diff.MissingInB, id)
			continue
		}
		if ca.Score != cb.Score {
			diff.ScoreMismatch = append(diff.ScoreMismatch, ScoreDifference{
				ID:     id,
				ScoreA: ca.Score,
				ScoreB: cb.Score,
			})
		}
	}
	for id := range threadB.ByID {
		if _, ok := threadA.ByID[id]; !ok {
			diff.MissingInA = append(diff.MissingInA, id)
		}
	}

	// Map iteration order is random; sort for stable output.
	sort.Strings(diff.MissingInA)
	sort.Strings(diff.MissingInB)
	sort.Slice(diff.ScoreMismatch, func(i, j int) bool {
		return diff.ScoreMismatch[i].ID < diff.ScoreMismatch[j].ID
	})

	return diff, nil
}
