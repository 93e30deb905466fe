package export

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/skein/pkg/loader"
	"github.com/vanderheijden86/skein/pkg/model"
	"github.com/vanderheijden86/skein/pkg/testutil"
)

// mapThread builds a fixture with one comment per score bucket plus a
// deleted leaf and a pinned post.
func mapThread(t *testing.T) *model.Thread {
	t.Helper()
	comments := []*model.Comment{
		{ID: "p1", Author: "alice", Body: "Title line", Score: 60, Kind: model.KindPost, Pinned: true, CreatedAt: exportBase},
		{ID: "c1", ParentID: "p1", Author: "bob", Body: "mid", Score: 12, CreatedAt: exportBase.Add(1 * time.Minute)},
		{ID: "c2", ParentID: "c1", Author: "carol", Body: "low", Score: 3, CreatedAt: exportBase.Add(2 * time.Minute)},
		{ID: "c3", ParentID: "p1", Author: "dave", Body: "zero", Score: 0, CreatedAt: exportBase.Add(3 * time.Minute)},
		{ID: "c4", ParentID: "p1", Author: "erin", Body: "neg", Score: -4, CreatedAt: exportBase.Add(4 * time.Minute)},
		{ID: "c5", ParentID: "c3", Author: "frank", Body: "gone", Score: 1, Deleted: true, CreatedAt: exportBase.Add(5 * time.Minute)},
	}
	return loader.BuildThread(comments, nil)
}

func TestSaveMapSVGAndPNG(t *testing.T) {
	thread := mapThread(t)
	tmp := t.TempDir()

	cases := []struct {
		name string
		file string
	}{
		{"svg", "map.svg"},
		{"png", "map.png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(tmp, tc.file)
			err := SaveMap(thread, MapOptions{Path: path, IncludeDeleted: true})
			if err != nil {
				t.Fatalf("SaveMap: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("output missing: %v", err)
			}
			if info.Size() == 0 {
				t.Error("output file is empty")
			}
		})
	}
}

func TestSaveMapInfersFormatFromExtension(t *testing.T) {
	thread := mapThread(t)
	path := filepath.Join(t.TempDir(), "map.png")

	if err := SaveMap(thread, MapOptions{Path: path}); err != nil {
		t.Fatalf("SaveMap: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output does not start with the PNG signature")
	}
}

func TestSaveMapAppendsExtensionWhenMissing(t *testing.T) {
	thread := mapThread(t)
	path := filepath.Join(t.TempDir(), "map")

	if err := SaveMap(thread, MapOptions{Path: path}); err != nil {
		t.Fatalf("SaveMap: %v", err)
	}
	if _, err := os.Stat(path + ".svg"); err != nil {
		t.Errorf("expected %s.svg to exist: %v", path, err)
	}
}

func TestSaveMapRejectsUnknownFormat(t *testing.T) {
	err := SaveMap(mapThread(t), MapOptions{Path: "out.gif", Format: "gif"})
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("got %v, want unsupported format error", err)
	}
}

func TestSaveMapEmptyThread(t *testing.T) {
	if err := SaveMap(testutil.Empty(), MapOptions{Path: "out.svg"}); err == nil {
		t.Error("expected an error for an empty thread")
	}
	if err := SaveMap(nil, MapOptions{Path: "out.svg"}); err == nil {
		t.Error("expected an error for a nil thread")
	}
}

func TestSaveMapRequiresPath(t *testing.T) {
	err := SaveMap(mapThread(t), MapOptions{Format: "svg"})
	if err == nil || !strings.Contains(err.Error(), "output path") {
		t.Errorf("got %v, want output path error", err)
	}
}

func TestBuildMapLayoutGeometry(t *testing.T) {
	thread := mapThread(t)
	layout := buildMapLayout(thread, MapOptions{IncludeDeleted: true})

	if len(layout.Rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(layout.Rows))
	}

	// Walk order with depths 0,1,2,1,2,1.
	wantDepths := []int{0, 1, 2, 1, 2, 1}
	for i, want := range wantDepths {
		if layout.Rows[i].Depth != want {
			t.Errorf("row %d depth = %d, want %d", i, layout.Rows[i].Depth, want)
		}
	}

	for i, r := range layout.Rows {
		wantX := mapPadding + float64(r.Depth)*mapIndentW
		if r.X != wantX {
			t.Errorf("row %d X = %v, want %v", i, r.X, wantX)
		}
		// Every bar runs to the same right edge regardless of depth.
		if right := r.X + r.W; right != float64(layout.Width)-mapPadding {
			t.Errorf("row %d right edge = %v, want %v", i, right, float64(layout.Width)-mapPadding)
		}
		wantY := mapPadding + mapHeaderH + float64(i)*(mapRowH+mapRowGap)
		if r.Y != wantY {
			t.Errorf("row %d Y = %v, want %v", i, r.Y, wantY)
		}
	}

	if layout.Summary.Comments != 6 || layout.Summary.MaxDepth != 2 {
		t.Errorf("summary = %+v", layout.Summary)
	}
	if layout.Summary.Hottest == "n/a" {
		t.Error("hottest comment should be resolved for a non-empty thread")
	}
}

func TestBuildMapLayoutMaxRows(t *testing.T) {
	thread := mapThread(t)
	layout := buildMapLayout(thread, MapOptions{IncludeDeleted: true, MaxRows: 4})

	if len(layout.Rows) != 4 {
		t.Errorf("got %d rows, want 4", len(layout.Rows))
	}
	if layout.Summary.Truncated != 2 {
		t.Errorf("Truncated = %d, want 2", layout.Summary.Truncated)
	}
}

func TestBuildMapLayoutHidesDeletedLeaves(t *testing.T) {
	thread := mapThread(t)
	layout := buildMapLayout(thread, MapOptions{})

	for _, r := range layout.Rows {
		if r.ID == "c5" {
			t.Error("deleted leaf should not produce a row")
		}
	}
	if len(layout.Rows) != 5 {
		t.Errorf("got %d rows, want 5", len(layout.Rows))
	}
}

func TestScoreColorBuckets(t *testing.T) {
	tests := []struct {
		name string
		row  mapRow
		want string
	}{
		{"high", mapRow{Score: 60}, css(mapColorHigh)},
		{"mid", mapRow{Score: 12}, css(mapColorMid)},
		{"low", mapRow{Score: 3}, css(mapColorLow)},
		{"zero", mapRow{Score: 0}, css(mapColorZero)},
		{"negative", mapRow{Score: -4}, css(mapColorNeg)},
		{"deleted wins over score", mapRow{Score: 60, Deleted: true}, css(mapColorDeleted)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := css(scoreColor(tt.row)); got != tt.want {
				t.Errorf("scoreColor = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderMapSVGContent(t *testing.T) {
	thread := mapThread(t)
	layout := buildMapLayout(thread, MapOptions{IncludeDeleted: true, Title: "Fixture map"})

	var buf bytes.Buffer
	if err := renderMapSVGToWriter(&buf, layout); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatal("output is not an SVG document")
	}
	if !strings.Contains(out, "Fixture map") {
		t.Error("summary title missing")
	}
	if !strings.Contains(out, "hottest:") {
		t.Error("hottest line missing")
	}
	if !strings.Contains(out, css(mapColorHigh)) {
		t.Error("high score bucket color missing")
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Error("deleted bars should render with a dashed stroke")
	}
	if !strings.Contains(out, "alice +60") {
		t.Error("bar label missing")
	}

	// The document must stay well-formed XML.
	decoder := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v", err)
		}
	}
}
