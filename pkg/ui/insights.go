// insights.go - Thread statistics overlay.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vanderheijden86/skein/pkg/analysis"
)

// renderInsights draws the statistics overlay for the current thread,
// centered in the available area.
func renderInsights(s analysis.ThreadStats, t Theme, width, height int) string {
	r := t.Renderer

	titleStyle := r.NewStyle().Foreground(t.Primary).Bold(true)
	sectionStyle := r.NewStyle().Foreground(t.Secondary).Bold(true)
	labelStyle := r.NewStyle().Foreground(t.Muted)
	valueStyle := t.Base

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Thread Insights"))
	sb.WriteString("\n\n")

	line := func(label, value string) {
		sb.WriteString(labelStyle.Render(padRight(label, 16)))
		sb.WriteString(valueStyle.Render(value))
		sb.WriteString("\n")
	}

	sb.WriteString(sectionStyle.Render("Activity"))
	sb.WriteString("\n")
	line("comments", fmt.Sprintf("%d (%d deleted)", s.Comments, s.Deleted))
	line("participants", fmt.Sprintf("%d", s.Participants))
	line("max depth", fmt.Sprintf("%d", s.MaxDepth))
	line("replies/comment", fmt.Sprintf("%.2f", s.RepliesPerComment))
	if span := s.Span(); span > 0 {
		line("span", formatSpan(span))
	}
	sb.WriteString("\n")

	sb.WriteString(sectionStyle.Render("Scores"))
	sb.WriteString("\n")
	line("mean / stddev", fmt.Sprintf("%.1f / %.1f", s.Scores.Mean, s.Scores.StdDev))
	line("min / max", fmt.Sprintf("%d / %d", s.Scores.Min, s.Scores.Max))
	line("quartiles", fmt.Sprintf("%.0f · %.0f · %.0f", s.Scores.Q1, s.Scores.Median, s.Scores.Q3))
	sb.WriteString("\n")

	if len(s.DepthHistogram) > 0 {
		sb.WriteString(sectionStyle.Render("Depth"))
		sb.WriteString("\n")
		max := 0
		for _, n := range s.DepthHistogram {
			if n > max {
				max = n
			}
		}
		for depth, n := range s.DepthHistogram {
			frac := 0.0
			if max > 0 {
				frac = float64(n) / float64(max)
			}
			sb.WriteString(labelStyle.Render(fmt.Sprintf("  %2d ", depth)))
			sb.WriteString(RenderMiniBar(frac, 20, t))
			sb.WriteString(valueStyle.Render(fmt.Sprintf(" %d", n)))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(s.TopByComments) > 0 {
		sb.WriteString(sectionStyle.Render("Top authors"))
		sb.WriteString("\n")
		for _, a := range s.TopByComments {
			sb.WriteString(labelStyle.Render("  "))
			sb.WriteString(t.AuthorText.Render(padRight(truncate(a.Author, 18), 19)))
			sb.WriteString(valueStyle.Render(fmt.Sprintf("%3d comments, score %+d", a.Comments, a.Score)))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(s.Hot) > 0 {
		sb.WriteString(sectionStyle.Render("Hot comments"))
		sb.WriteString("\n")
		for i, h := range s.Hot {
			sb.WriteString(labelStyle.Render(fmt.Sprintf("  %d. ", i+1)))
			sb.WriteString(valueStyle.Render(padRight(truncate(h.ID, 14), 15)))
			sb.WriteString(t.AuthorText.Render(padRight(truncate(h.Author, 14), 15)))
			sb.WriteString(t.MutedText.Render(fmt.Sprintf("%d replies", h.Replies)))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(t.MutedText.Render("Press i or esc to close."))

	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(1, 3).
		Render(sb.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// formatSpan renders a thread's first-to-last activity duration in the
// largest useful unit.
func formatSpan(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
