// rows.go - Column cell resolution for thread rows.
//
// Each visible row is assembled from the node payload: the configured columns
// are resolved to strings through an optional embedder-supplied Binder, with
// built-in coercion as the fallback. Mapping a column to a kind the renderer
// cannot draw is a configuration error surfaced at construction, never a
// silently skipped cell.
package ui

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vanderheijden86/skein/pkg/config"
	"github.com/vanderheijden86/skein/pkg/outline"
)

// CellKind classifies how a column cell is drawn.
type CellKind int

const (
	CellText CellKind = iota
	CellToggle
	CellIcon
	CellBadge
)

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellToggle:
		return "toggle"
	case CellIcon:
		return "icon"
	case CellBadge:
		return "badge"
	default:
		return fmt.Sprintf("cellkind(%d)", int(k))
	}
}

// ErrUnsupportedCell reports a column/kind combination the renderer cannot
// draw. Returned from NewRowRenderer; callers treat it as fatal.
var ErrUnsupportedCell = errors.New("unsupported cell")

// Binder lets the embedder intercept cell rendering before default coercion.
// Returning handled=false passes the cell back to the built-in rules; an
// error aborts the row.
type Binder interface {
	Bind(kind CellKind, key string, value any, text string) (string, bool, error)
}

// builtinColumns maps the column names accepted in config to their cell kind.
var builtinColumns = map[string]CellKind{
	"pinned":  CellToggle,
	"author":  CellText,
	"score":   CellBadge,
	"age":     CellText,
	"avatar":  CellIcon,
	"replies": CellText,
	"role":    CellBadge,
	"edited":  CellToggle,
}

// payloadKeys maps a column name to the payload key it reads. Columns not
// listed read the key with their own name.
var payloadKeys = map[string]string{
	"age": "created",
}

type column struct {
	name string
	key  string
	kind CellKind
}

// RowRenderer turns outline nodes into styled single-line rows.
type RowRenderer struct {
	theme   Theme
	cfg     config.Config
	binder  Binder
	columns []column
}

// NewRowRenderer validates the configured columns and builds a renderer.
// An unknown column name or unknown cell kind fails with ErrUnsupportedCell.
func NewRowRenderer(theme Theme, cfg config.Config, binder Binder) (*RowRenderer, error) {
	cols := make([]column, 0, len(cfg.Columns))
	for _, name := range cfg.Columns {
		kind, ok := builtinColumns[name]
		if !ok {
			return nil, fmt.Errorf("%w: no drawer for column %q", ErrUnsupportedCell, name)
		}
		if kind < CellText || kind > CellBadge {
			return nil, fmt.Errorf("%w: column %q has kind %s", ErrUnsupportedCell, name, kind)
		}
		key := name
		if k, ok := payloadKeys[name]; ok {
			key = k
		}
		cols = append(cols, column{name: name, key: key, kind: kind})
	}
	return &RowRenderer{theme: theme, cfg: cfg, binder: binder, columns: cols}, nil
}

// Columns returns the configured column names in render order.
func (r *RowRenderer) Columns() []string {
	names := make([]string, len(r.columns))
	for i, c := range r.columns {
		names[i] = c.name
	}
	return names
}

// Render produces the display line for one node. Selection styling is applied
// by the caller so the same line can be reused across frames.
func (r *RowRenderer) Render(n *outline.Node, width int) (string, error) {
	if n == nil {
		return "", nil
	}
	if width <= 0 {
		width = 80
	}

	deleted, _ := n.Payload["deleted"].(bool)

	var sb strings.Builder

	indent := n.Indent
	if indent > r.cfg.UI.MaxIndent {
		indent = r.cfg.UI.MaxIndent
	}
	sb.WriteString(strings.Repeat(" ", indent*r.cfg.UI.IndentWidth))

	sb.WriteString(r.theme.MutedText.Render(expandIndicator(n)))
	sb.WriteString(" ")

	for _, col := range r.columns {
		text, err := r.cell(col, n.Payload)
		if err != nil {
			return "", err
		}
		if text == "" {
			continue
		}
		sb.WriteString(r.styleCell(col, n.Payload, text, deleted))
		sb.WriteString(" ")
	}

	if n.IsGroup() {
		sb.WriteString(r.theme.GroupHint.Render(fmt.Sprintf("[%d hidden]", n.GroupSize())))
		sb.WriteString(" ")
	}

	body, _ := n.Payload["body"].(string)
	line := snippet(body)
	if deleted {
		line = "[deleted]"
	}
	remaining := width - lipgloss.Width(sb.String())
	if remaining > 1 && line != "" {
		text := truncate(line, remaining-1)
		if deleted {
			text = r.theme.DeletedText.Render(text)
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}

// cell resolves one column against the payload: binder first, then the
// default coercion rules.
func (r *RowRenderer) cell(col column, payload map[string]any) (string, error) {
	value := payload[col.key]
	text := ""
	if value != nil {
		text = fmt.Sprint(value)
	}

	if r.binder != nil {
		s, handled, err := r.binder.Bind(col.kind, col.name, value, text)
		if err != nil {
			return "", fmt.Errorf("binding column %q: %w", col.name, err)
		}
		if handled {
			return s, nil
		}
	}

	if b, ok := value.(bool); ok {
		return toggleGlyph(b), nil
	}
	switch col.kind {
	case CellText, CellToggle, CellBadge:
		return text, nil
	case CellIcon:
		return r.iconCell(value, text), nil
	default:
		return "", fmt.Errorf("%w: column %q has kind %s", ErrUnsupportedCell, col.name, col.kind)
	}
}

// iconCell tries the value as a numeric icon id first and falls back to
// treating it as a URI, abbreviated for display.
func (r *RowRenderer) iconCell(value any, text string) string {
	switch v := value.(type) {
	case int:
		return r.cfg.Icon(v)
	case int64:
		return r.cfg.Icon(int(v))
	case float64:
		return r.cfg.Icon(int(v))
	case string:
		if id, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return r.cfg.Icon(id)
		}
		return abbreviateURI(v)
	default:
		return text
	}
}

func toggleGlyph(on bool) string {
	if on {
		return "✓"
	}
	return ""
}

// abbreviateURI shortens an avatar URI to something that fits a cell: the
// final path segment, or the host when the path is empty.
func abbreviateURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return truncate(uri, 12)
	}
	seg := strings.Trim(u.Path, "/")
	if i := strings.LastIndexByte(seg, '/'); i >= 0 {
		seg = seg[i+1:]
	}
	if seg == "" {
		seg = u.Host
	}
	return truncate(seg, 12)
}

// styleCell applies the theme style for a known column.
func (r *RowRenderer) styleCell(col column, payload map[string]any, text string, deleted bool) string {
	if deleted {
		return r.theme.DeletedText.Render(text)
	}
	switch col.name {
	case "author":
		return r.theme.AuthorText.Render(text)
	case "score":
		if s, ok := payload["score"].(int); ok && s < 0 {
			return r.theme.ScoreNeg.Render(text)
		}
		return r.theme.ScorePos.Render(text)
	case "age":
		return r.theme.MutedText.Render(text)
	case "pinned":
		return r.theme.PinnedText.Render(text)
	case "role":
		return r.theme.Renderer.NewStyle().Foreground(r.theme.RoleColor(text)).Bold(true).Render(text)
	case "replies":
		return r.theme.MutedText.Render(text)
	default:
		return text
	}
}

// expandIndicator marks a row's fold state: a collapsed group, an expanded
// parent, or a leaf.
func expandIndicator(n *outline.Node) string {
	if n.IsGroup() {
		return "▸"
	}
	if n.HasChildren() {
		return "▾"
	}
	return "·"
}

// threadBinder is the binder sk installs for its own rows: pin and edit
// markers, signed scores, reply counts, and config-driven timestamps.
type threadBinder struct {
	relTime bool
}

func (b threadBinder) Bind(kind CellKind, key string, value any, text string) (string, bool, error) {
	switch key {
	case "pinned":
		if on, ok := value.(bool); ok {
			if on {
				return "⚑", true, nil
			}
			return "", true, nil
		}
	case "edited":
		if on, ok := value.(bool); ok {
			if on {
				return "~", true, nil
			}
			return "", true, nil
		}
	case "score":
		if s, ok := value.(int); ok {
			return formatScore(s), true, nil
		}
	case "replies":
		if c, ok := value.(int); ok {
			if c == 0 {
				return "", true, nil
			}
			return fmt.Sprintf("(%d)", c), true, nil
		}
	case "age":
		if ts, ok := value.(time.Time); ok {
			if b.relTime {
				return FormatTimeRel(ts), true, nil
			}
			return FormatTimeAbs(ts), true, nil
		}
	case "role":
		if role, ok := value.(interface{ Tag() string }); ok {
			return role.Tag(), true, nil
		}
	}
	return "", false, nil
}
