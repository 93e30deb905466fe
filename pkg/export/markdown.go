// Package export renders a thread for consumption outside the TUI: a
// markdown transcript, a static thread-map image (SVG or PNG), and an
// interactive wizard that collects the options for either.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vanderheijden86/skein/pkg/metrics"
	"github.com/vanderheijden86/skein/pkg/model"
)

// MarkdownOptions controls transcript rendering.
type MarkdownOptions struct {
	// IncludeDeleted renders deleted comments with their stored author and
	// body. When false, deleted leaves are dropped and deleted comments with
	// surviving replies collapse to a [deleted] placeholder.
	IncludeDeleted bool
}

// Markdown renders the thread as a markdown transcript.
func Markdown(t *model.Thread, opts MarkdownOptions) (string, error) {
	var sb strings.Builder
	if err := WriteMarkdown(&sb, t, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteMarkdown writes the transcript to w: a title header, one stats line,
// then the comment tree as a nested list. Each comment renders as a header
// item carrying author, signed score, role tag and age relative to the
// first comment, with the body on indented continuation lines.
func WriteMarkdown(w io.Writer, t *model.Thread, opts MarkdownOptions) error {
	defer metrics.Timer(metrics.ExportRender)()

	if t == nil {
		return fmt.Errorf("no thread to export")
	}

	var sb strings.Builder

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Untitled thread"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	count := t.Count()
	if count == 0 {
		sb.WriteString("no comments\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	start, end := activityBounds(t)
	sb.WriteString(fmt.Sprintf("%d %s · %d %s · depth %d",
		count, plural(count, "comment"),
		t.Participants(), plural(t.Participants(), "participant"),
		t.MaxDepth()))
	if span := end.Sub(start); span > 0 {
		sb.WriteString(" · span " + fmtDuration(span))
	}
	sb.WriteString("\n\n")

	for _, root := range t.Roots {
		writeComment(&sb, root, 0, start, opts)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeComment(sb *strings.Builder, c *model.Comment, depth int, start time.Time, opts MarkdownOptions) {
	if !commentVisible(c, opts.IncludeDeleted) {
		return
	}

	indent := strings.Repeat("  ", depth)
	author := c.Author
	body := c.Body

	// A hidden deleted comment only appears here because replies below it
	// survive; keep the position, not the content.
	placeholder := c.Deleted && !opts.IncludeDeleted
	if placeholder || (c.Deleted && strings.TrimSpace(body) == "") {
		body = "[deleted]"
	}
	if placeholder {
		author = "[deleted]"
	}

	var marks []string
	marks = append(marks, fmt.Sprintf("%+d", c.Score))
	if tag := c.Role.Tag(); tag != "" {
		marks = append(marks, tag)
	}
	marks = append(marks, fmtOffset(c.CreatedAt.Sub(start)))
	if c.EditedAt != nil {
		marks = append(marks, "edited")
	}
	if c.Deleted && opts.IncludeDeleted {
		marks = append(marks, "deleted")
	}

	pin := ""
	if c.Pinned {
		pin = "📌 "
	}

	sb.WriteString(fmt.Sprintf("%s- %s**%s** (%s)\n", indent, pin, author, strings.Join(marks, ", ")))
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		sb.WriteString(indent + "  " + line + "\n")
	}

	for _, r := range c.Replies {
		writeComment(sb, r, depth+1, start, opts)
	}
}

// commentVisible reports whether c or anything beneath it should render.
func commentVisible(c *model.Comment, includeDeleted bool) bool {
	if !c.Deleted || includeDeleted {
		return true
	}
	for _, r := range c.Replies {
		if commentVisible(r, includeDeleted) {
			return true
		}
	}
	return false
}

// activityBounds returns the earliest and latest comment timestamps.
func activityBounds(t *model.Thread) (time.Time, time.Time) {
	var first, last time.Time
	t.Walk(func(c *model.Comment, depth int) {
		if first.IsZero() || c.CreatedAt.Before(first) {
			first = c.CreatedAt
		}
		if c.CreatedAt.After(last) {
			last = c.CreatedAt
		}
	})
	return first, last
}

// fmtOffset renders a comment's age relative to the thread start.
func fmtOffset(d time.Duration) string {
	if d <= 0 {
		return "start"
	}
	return "+" + fmtDuration(d)
}

func fmtDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		if m := int(d.Minutes()) % 60; m != 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	default:
		days := int(d.Hours()) / 24
		if h := int(d.Hours()) % 24; h != 0 {
			return fmt.Sprintf("%dd%dh", days, h)
		}
		return fmt.Sprintf("%dd", days)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
