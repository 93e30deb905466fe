package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/skein/pkg/analysis"
	"github.com/vanderheijden86/skein/pkg/metrics"
	"github.com/vanderheijden86/skein/pkg/model"
)

// MapOptions controls thread-map image export.
type MapOptions struct {
	Path           string // Output path; format inferred from extension when Format empty
	Format         string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title          string // Optional title for the summary block; falls back to the thread title
	IncludeDeleted bool   // Render deleted comments with their real score color
	MaxRows        int    // Cap on rendered rows; 0 means no cap
}

// SaveMap renders the whole thread as a static map image: one bar per
// comment in walk order, indented by depth, colored by score bucket. The
// map ignores collapse state so it always shows the full shape of the
// discussion. Both renderers draw from the same layout, so SVG and PNG
// output have identical geometry.
func SaveMap(t *model.Thread, opts MapOptions) error {
	defer metrics.Timer(metrics.ExportRender)()

	if t == nil || t.Count() == 0 {
		return fmt.Errorf("no comments to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	layout := buildMapLayout(t, opts)

	switch format {
	case "svg":
		return renderMapSVG(opts.Path, layout)
	case "png":
		return renderMapPNG(opts.Path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- layout computation ----------------------------------------------------

const (
	mapPadding  = 24.0
	mapHeaderH  = 128.0
	mapRowH     = 14.0
	mapRowGap   = 4.0
	mapIndentW  = 18.0
	mapMinWidth = 640

	// Score bucket boundaries.
	scoreMid  = 10
	scoreHigh = 50
)

type mapRow struct {
	ID      string
	Label   string
	Depth   int
	Score   int
	Deleted bool
	Pinned  bool
	X, Y    float64
	W, H    float64
}

type mapLayout struct {
	Rows    []mapRow
	Width   int
	Height  int
	Summary mapSummary
}

type mapSummary struct {
	Title        string
	Comments     int
	Participants int
	MaxDepth     int
	Hottest      string
	Truncated    int
}

func buildMapLayout(t *model.Thread, opts MapOptions) mapLayout {
	var rows []mapRow
	maxDepth := 0

	var collect func(c *model.Comment, depth int)
	collect = func(c *model.Comment, depth int) {
		if !commentVisible(c, opts.IncludeDeleted) {
			return
		}
		if depth > maxDepth {
			maxDepth = depth
		}
		rows = append(rows, mapRow{
			ID:      c.ID,
			Label:   barLabel(c, opts.IncludeDeleted),
			Depth:   depth,
			Score:   c.Score,
			Deleted: c.Deleted,
			Pinned:  c.Pinned,
		})
		for _, r := range c.Replies {
			collect(r, depth+1)
		}
	}
	for _, root := range t.Roots {
		collect(root, 0)
	}

	truncated := 0
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		truncated = len(rows) - opts.MaxRows
		rows = rows[:opts.MaxRows]
	}

	width := int(mapPadding*2 + float64(maxDepth)*mapIndentW + 360)
	if width < mapMinWidth {
		width = mapMinWidth
	}

	for i := range rows {
		rows[i].X = mapPadding + float64(rows[i].Depth)*mapIndentW
		rows[i].Y = mapPadding + mapHeaderH + float64(i)*(mapRowH+mapRowGap)
		rows[i].W = float64(width) - mapPadding - rows[i].X
		rows[i].H = mapRowH
	}

	height := int(mapPadding*2 + mapHeaderH + float64(len(rows))*(mapRowH+mapRowGap))
	if height < 360 {
		height = 360
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = strings.TrimSpace(t.Title)
	}
	if title == "" {
		title = "Thread map"
	}

	return mapLayout{
		Rows:   rows,
		Width:  width,
		Height: height,
		Summary: mapSummary{
			Title:        title,
			Comments:     t.Count(),
			Participants: t.Participants(),
			MaxDepth:     t.MaxDepth(),
			Hottest:      hottestLabel(t),
			Truncated:    truncated,
		},
	}
}

func barLabel(c *model.Comment, includeDeleted bool) string {
	if c.Deleted && !includeDeleted {
		return "[deleted]"
	}
	return fmt.Sprintf("%s %+d", c.Author, c.Score)
}

func hottestLabel(t *model.Thread) string {
	hot := analysis.HotRank(t, 1)
	if len(hot) == 0 {
		return "n/a"
	}
	if hot[0].Author == "" {
		return hot[0].ID
	}
	return fmt.Sprintf("%s (%s)", hot[0].ID, hot[0].Author)
}

// --- rendering -------------------------------------------------------------

var (
	mapColorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	mapColorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	mapColorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
	mapColorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	mapColorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	mapColorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}

	mapColorNeg     = color.RGBA{0xef, 0x9a, 0x9a, 0xff}
	mapColorZero    = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	mapColorLow     = color.RGBA{0xc8, 0xe6, 0xc9, 0xff}
	mapColorMid     = color.RGBA{0x81, 0xc7, 0x84, 0xff}
	mapColorHigh    = color.RGBA{0x38, 0x8e, 0x3c, 0xff}
	mapColorDeleted = color.RGBA{0xcf, 0xd8, 0xdc, 0xff}
	mapColorPin     = color.RGBA{0xf9, 0xa8, 0x25, 0xff}
)

func scoreColor(r mapRow) color.RGBA {
	switch {
	case r.Deleted:
		return mapColorDeleted
	case r.Score < 0:
		return mapColorNeg
	case r.Score == 0:
		return mapColorZero
	case r.Score < scoreMid:
		return mapColorLow
	case r.Score < scoreHigh:
		return mapColorMid
	default:
		return mapColorHigh
	}
}

// Labels only render where the bar is wide enough to hold them.
const labelMinBarW = 150.0

func renderMapSVG(path string, layout mapLayout) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderMapSVGToWriter(file, layout)
}

func renderMapSVGToWriter(w io.Writer, layout mapLayout) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(mapColorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, 96, 10, 10, fmt.Sprintf("fill:%s", css(mapColorHeaderBG)))

	drawMapSummarySVG(canvas, layout)
	drawMapLegendSVG(canvas, layout)

	for _, r := range layout.Rows {
		style := fmt.Sprintf("fill:%s", css(scoreColor(r)))
		if r.Deleted {
			style += fmt.Sprintf(";stroke:%s;stroke-width:1;stroke-dasharray:3,2", css(mapColorSubtle))
		} else if r.Pinned {
			style += fmt.Sprintf(";stroke:%s;stroke-width:2", css(mapColorPin))
		}
		canvas.Roundrect(int(r.X), int(r.Y), int(r.W), int(r.H), 2, 2, style)
		if r.Label != "" && r.W >= labelMinBarW {
			canvas.Text(int(r.X)+6, int(r.Y)+11, r.Label,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(mapColorText)))
		}
	}

	canvas.End()
	return nil
}

func renderMapPNG(path string, layout mapLayout) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(mapColorBackdrop)
	dc.Clear()

	dc.SetColor(mapColorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, 96, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)

	drawMapSummary(dc, layout)
	drawMapLegend(dc, layout)

	for _, r := range layout.Rows {
		dc.SetColor(scoreColor(r))
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 2)
		dc.Fill()
		switch {
		case r.Deleted:
			dc.SetColor(mapColorSubtle)
			dc.SetLineWidth(1)
			dc.SetDash(3, 2)
			dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 2)
			dc.Stroke()
			dc.SetDash()
		case r.Pinned:
			dc.SetColor(mapColorPin)
			dc.SetLineWidth(2)
			dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 2)
			dc.Stroke()
		}
		if r.Label != "" && r.W >= labelMinBarW {
			dc.SetColor(mapColorText)
			dc.DrawStringAnchored(r.Label, r.X+6, r.Y+r.H/2, 0, 0.35)
		}
	}

	return dc.SavePNG(path)
}

func drawMapSummary(dc *gg.Context, layout mapLayout) {
	s := layout.Summary
	dc.SetColor(mapColorText)
	dc.DrawStringAnchored(s.Title, 32, 40, 0, 0.5)
	dc.SetColor(mapColorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("comments: %d  participants: %d  depth: %d", s.Comments, s.Participants, s.MaxDepth), 32, 60, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("hottest: %s", s.Hottest), 32, 76, 0, 0.5)
	if s.Truncated > 0 {
		dc.DrawStringAnchored(fmt.Sprintf("showing first %d rows (%d more)", len(layout.Rows), s.Truncated), 32, 92, 0, 0.5)
	}
}

func drawMapSummarySVG(canvas *svg.SVG, layout mapLayout) {
	s := layout.Summary
	canvas.Text(32, 40, s.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(mapColorText)))
	canvas.Text(32, 60, fmt.Sprintf("comments: %d  participants: %d  depth: %d", s.Comments, s.Participants, s.MaxDepth),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(mapColorSubtle)))
	canvas.Text(32, 76, fmt.Sprintf("hottest: %s", s.Hottest),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(mapColorSubtle)))
	if s.Truncated > 0 {
		canvas.Text(32, 92, fmt.Sprintf("showing first %d rows (%d more)", len(layout.Rows), s.Truncated),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(mapColorSubtle)))
	}
}

type legendRow struct {
	color color.RGBA
	label string
}

var mapLegendRows = []legendRow{
	{mapColorHigh, fmt.Sprintf("score ≥ %d", scoreHigh)},
	{mapColorMid, fmt.Sprintf("score %d..%d", scoreMid, scoreHigh-1)},
	{mapColorLow, fmt.Sprintf("score 1..%d", scoreMid-1)},
	{mapColorZero, "score 0"},
	{mapColorNeg, "score < 0"},
	{mapColorDeleted, "deleted"},
}

func drawMapLegend(dc *gg.Context, layout mapLayout) {
	boxW := 180.0
	boxH := 18.0 + float64(len(mapLegendRows))*16.0 + 8.0
	x := float64(layout.Width) - boxW - 20
	y := 20.0
	dc.SetColor(mapColorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Fill()
	dc.SetColor(mapColorStroke)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Stroke()

	dc.SetColor(mapColorText)
	dc.DrawStringAnchored("Legend", x+12, y+16, 0, 0.5)
	for i, row := range mapLegendRows {
		ry := y + 34 + float64(i)*16
		dc.SetColor(row.color)
		dc.DrawRoundedRectangle(x+12, ry-8, 14, 14, 3)
		dc.Fill()
		dc.SetColor(mapColorStroke)
		dc.DrawRoundedRectangle(x+12, ry-8, 14, 14, 3)
		dc.Stroke()
		dc.SetColor(mapColorSubtle)
		dc.DrawStringAnchored(row.label, x+32, ry, 0, 0.5)
	}
}

func drawMapLegendSVG(canvas *svg.SVG, layout mapLayout) {
	boxW := 180
	boxH := 18 + len(mapLegendRows)*16 + 8
	x := layout.Width - boxW - 20
	y := 20
	canvas.Roundrect(x, y, boxW, boxH, 10, 10, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(mapColorLegendBG), css(mapColorStroke)))
	canvas.Text(x+12, y+16, "Legend", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(mapColorText)))
	for i, row := range mapLegendRows {
		ry := y + 34 + i*16
		canvas.Roundrect(x+12, ry-8, 14, 14, 3, 3, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(row.color), css(mapColorStroke)))
		canvas.Text(x+32, ry, row.label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(mapColorSubtle)))
	}
}

// --- helpers ---------------------------------------------------------------

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
