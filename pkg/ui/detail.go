package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/glamour"
	"github.com/vanderheijden86/skein/pkg/model"
)

// NewMarkdownRenderer builds a glamour renderer matched to the terminal's
// background and color depth. A nil return is tolerated by
// renderCommentDetail, which then falls back to the raw body.
func NewMarkdownRenderer(wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	style := glamour.WithAutoStyle()
	if TermProfile < colorprofile.ANSI256 {
		// Auto styles downconvert badly on 16-color terminals.
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

// renderCommentDetail renders the full comment for the detail pane: a
// metadata header followed by the glamour-formatted body.
func renderCommentDetail(c *model.Comment, md *glamour.TermRenderer, t Theme, width int, relTime bool) string {
	if c == nil {
		return t.MutedText.Render("Nothing selected.")
	}
	if width < 20 {
		width = 20
	}

	var sb strings.Builder

	author := c.Author
	if c.Deleted && author == "" {
		author = "[deleted]"
	}
	sb.WriteString(t.AuthorText.Render(author))
	if tag := c.Role.Tag(); tag != "" {
		sb.WriteString(" ")
		sb.WriteString(t.Renderer.NewStyle().Foreground(t.RoleColor(tag)).Bold(true).Render(tag))
	}
	if c.Pinned {
		sb.WriteString(" ")
		sb.WriteString(t.PinnedText.Render("⚑ pinned"))
	}
	sb.WriteString("\n")

	scoreStyle := t.ScorePos
	if c.Score < 0 {
		scoreStyle = t.ScoreNeg
	}
	meta := []string{scoreStyle.Render(formatScore(c.Score))}
	if relTime {
		meta = append(meta, FormatTimeRel(c.CreatedAt))
	} else {
		meta = append(meta, FormatTimeAbs(c.CreatedAt))
	}
	if c.Edited() {
		meta = append(meta, "edited")
	}
	if c.Deleted {
		meta = append(meta, "deleted")
	}
	if n := len(c.Replies); n > 0 {
		meta = append(meta, fmt.Sprintf("%d replies", n))
	}
	sb.WriteString(t.MutedText.Render(strings.Join(meta, " · ")))
	sb.WriteString("\n")

	if len(c.Labels) > 0 {
		sb.WriteString(t.MutedText.Render("labels: " + strings.Join(c.Labels, ", ")))
		sb.WriteString("\n")
	}
	sb.WriteString(t.MutedText.Render(c.ID))
	sb.WriteString("\n")
	sb.WriteString(RenderDivider(width, t))
	sb.WriteString("\n")

	body := c.Body
	if c.Deleted && body == "" {
		body = "[deleted]"
	}
	if md != nil {
		if rendered, err := md.Render(body); err == nil {
			// Strip trailing whitespace that glamour pads the block with.
			body = strings.TrimRight(rendered, "\n ") + "\n"
		}
	}
	sb.WriteString(body)

	return sb.String()
}
