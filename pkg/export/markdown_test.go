package export

import (
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/skein/pkg/loader"
	"github.com/vanderheijden86/skein/pkg/model"
)

var exportBase = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// exportThread builds the fixture used across transcript tests:
//
//	p1 alice +42 pinned OP
//	├── c1 bob +7
//	│   └── c2 carol -2 (deleted leaf)
//	└── c3 dave +0 (edited)
func exportThread(t *testing.T) *model.Thread {
	t.Helper()
	edited := exportBase.Add(20 * time.Minute)
	comments := []*model.Comment{
		{ID: "p1", Author: "alice", Body: "Generics in Go: worth it?\n\nI keep going back and forth.", Score: 42, Kind: model.KindPost, Role: model.RoleOP, Pinned: true, CreatedAt: exportBase},
		{ID: "c1", ParentID: "p1", Author: "bob", Body: "Worth it for libraries.", Score: 7, CreatedAt: exportBase.Add(5 * time.Minute)},
		{ID: "c2", ParentID: "c1", Author: "carol", Body: "Disagree.", Score: -2, Deleted: true, CreatedAt: exportBase.Add(10 * time.Minute)},
		{ID: "c3", ParentID: "p1", Author: "dave", Body: "What about build times?", Score: 0, EditedAt: &edited, CreatedAt: exportBase.Add(15 * time.Minute)},
	}
	return loader.BuildThread(comments, nil)
}

func TestMarkdownFullTranscript(t *testing.T) {
	got, err := Markdown(exportThread(t), MarkdownOptions{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	want := strings.Join([]string{
		"# Generics in Go: worth it?",
		"",
		"4 comments · 4 participants · depth 2 · span 15m",
		"",
		"- 📌 **alice** (+42, OP, start)",
		"  Generics in Go: worth it?",
		"  I keep going back and forth.",
		"  - **bob** (+7, +5m)",
		"    Worth it for libraries.",
		"    - **carol** (-2, +10m, deleted)",
		"      Disagree.",
		"  - **dave** (+0, +15m, edited)",
		"    What about build times?",
		"",
	}, "\n")

	if got != want {
		t.Errorf("transcript mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMarkdownDropsDeletedLeaves(t *testing.T) {
	got, err := Markdown(exportThread(t), MarkdownOptions{})
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	if strings.Contains(got, "carol") || strings.Contains(got, "Disagree") {
		t.Errorf("deleted leaf should be dropped entirely:\n%s", got)
	}
	// The stats line describes the thread, not the rendering.
	if !strings.Contains(got, "4 comments") {
		t.Errorf("stats line should still count the whole thread:\n%s", got)
	}
}

func TestMarkdownDeletedAnchorKeepsPosition(t *testing.T) {
	comments := []*model.Comment{
		{ID: "p1", Author: "alice", Body: "Post body", Score: 1, Kind: model.KindPost, CreatedAt: exportBase},
		{ID: "c1", ParentID: "p1", Author: "bob", Body: "Hot take.", Score: 3, Deleted: true, CreatedAt: exportBase.Add(time.Minute)},
		{ID: "c2", ParentID: "c1", Author: "carol", Body: "Reply to the hot take.", Score: 2, CreatedAt: exportBase.Add(2 * time.Minute)},
	}
	thread := loader.BuildThread(comments, nil)

	got, err := Markdown(thread, MarkdownOptions{})
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	if strings.Contains(got, "bob") || strings.Contains(got, "Hot take") {
		t.Errorf("deleted anchor should hide author and body:\n%s", got)
	}
	if !strings.Contains(got, "**[deleted]**") {
		t.Errorf("anchor placeholder missing:\n%s", got)
	}
	if !strings.Contains(got, "Reply to the hot take.") {
		t.Errorf("surviving child should still render:\n%s", got)
	}

	// The child stays at its original depth under the placeholder.
	if !strings.Contains(got, "    - **carol**") {
		t.Errorf("child lost its nesting level:\n%s", got)
	}
}

func TestMarkdownEmptyThread(t *testing.T) {
	got, err := Markdown(loader.BuildThread(nil, nil), MarkdownOptions{})
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	want := "# Untitled thread\n\nno comments\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteMarkdownNilThread(t *testing.T) {
	var sb strings.Builder
	if err := WriteMarkdown(&sb, nil, MarkdownOptions{}); err == nil {
		t.Error("expected an error for a nil thread")
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{37 * time.Second, "37s"},
		{5 * time.Minute, "5m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{3 * time.Hour, "3h"},
		{26 * time.Hour, "1d2h"},
		{48 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		if got := fmtDuration(tt.d); got != tt.want {
			t.Errorf("fmtDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFmtOffsetStart(t *testing.T) {
	if got := fmtOffset(0); got != "start" {
		t.Errorf("fmtOffset(0) = %q, want start", got)
	}
	if got := fmtOffset(90 * time.Second); got != "+1m" {
		t.Errorf("fmtOffset(90s) = %q, want +1m", got)
	}
}
