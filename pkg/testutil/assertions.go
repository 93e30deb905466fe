package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/skein/pkg/model"
	"github.com/vanderheijden86/skein/pkg/outline"
)

// AssertCommentCount verifies the expected number of comments in a thread.
func AssertCommentCount(t *testing.T, thread *model.Thread, expected int) {
	t.Helper()
	if thread.Count() != expected {
		t.Errorf("expected %d comments, got %d", expected, thread.Count())
	}
}

// AssertNoDuplicateIDs verifies all comment IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, comments []*model.Comment) {
	t.Helper()
	seen := make(map[string]bool)
	for _, c := range comments {
		if seen[c.ID] {
			t.Errorf("duplicate comment ID: %s", c.ID)
		}
		seen[c.ID] = true
	}
}

// AssertAllValid verifies all comments pass validation.
func AssertAllValid(t *testing.T, comments []*model.Comment) {
	t.Helper()
	for i, c := range comments {
		if err := c.Validate(); err != nil {
			t.Errorf("comment %d (%s) invalid: %v", i, c.ID, err)
		}
	}
}

// AssertReplyExists verifies that childID hangs directly under parentID.
func AssertReplyExists(t *testing.T, thread *model.Thread, parentID, childID string) {
	t.Helper()
	parent, ok := thread.ByID[parentID]
	if !ok {
		t.Errorf("comment %s not found", parentID)
		return
	}
	for _, r := range parent.Replies {
		if r.ID == childID {
			return
		}
	}
	t.Errorf("expected %s to reply to %s", childID, parentID)
}

// AssertDepth verifies the thread's maximum reply depth.
func AssertDepth(t *testing.T, thread *model.Thread, expected int) {
	t.Helper()
	if got := thread.MaxDepth(); got != expected {
		t.Errorf("expected depth %d, got %d", expected, got)
	}
}

// AssertWalkOrder verifies the depth-first comment order of a thread.
func AssertWalkOrder(t *testing.T, thread *model.Thread, wantIDs ...string) {
	t.Helper()
	var got []string
	thread.Walk(func(c *model.Comment, _ int) { got = append(got, c.ID) })
	if strings.Join(got, " ") != strings.Join(wantIDs, " ") {
		t.Errorf("walk order = %v, want %v", got, wantIDs)
	}
}

// AssertVisible verifies the visible entry payload IDs of an outline list.
func AssertVisible(t *testing.T, list *outline.List, wantIDs ...string) {
	t.Helper()
	var got []string
	for _, n := range list.Entries() {
		id, _ := n.Payload["id"].(string)
		got = append(got, id)
	}
	if strings.Join(got, " ") != strings.Join(wantIDs, " ") {
		t.Errorf("visible entries = %v, want %v", got, wantIDs)
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		// Report the first differing line rather than dumping both files
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")

		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s",
					i+1, expLine, actLine)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// AssertJSON compares actual value as JSON against the golden file.
func (g *GoldenFile) AssertJSON(actual interface{}) {
	g.t.Helper()

	data, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		g.t.Fatalf("failed to marshal actual value: %v", err)
	}

	g.Assert(string(data))
}

// File helpers

// WriteThreadFile writes comments as JSONL to the given path, creating
// parent directories as needed.
func WriteThreadFile(t *testing.T, path string, comments []*model.Comment) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	content := ToJSONL(comments)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write thread file: %v", err)
	}
}

// Lookup helpers

// FindComment returns the comment with the given ID, or nil if not found.
func FindComment(thread *model.Thread, id string) *model.Comment {
	return thread.ByID[id]
}

// CountByAuthor returns a map of author -> comment count.
func CountByAuthor(thread *model.Thread) map[string]int {
	counts := make(map[string]int)
	thread.Walk(func(c *model.Comment, _ int) {
		counts[c.Author]++
	})
	return counts
}

// CommentID generates a standard test comment ID with the given index.
// Matches the IDs the default generator produces.
func CommentID(index int) string {
	return fmt.Sprintf("t-%d", index)
}
