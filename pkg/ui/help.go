// help.go - Key binding overlay.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpEntry struct {
	key   string
	desc  string
	blank bool
}

var helpEntries = []helpEntry{
	{key: "Navigation", desc: "", blank: true},
	{key: "j/k, ↓/↑", desc: "move cursor"},
	{key: "g / G", desc: "first / last comment"},
	{key: "ctrl+d / ctrl+u", desc: "half page down / up"},
	{key: "p", desc: "jump to parent"},
	{key: "", desc: ""},
	{key: "Folding", desc: "", blank: true},
	{key: "enter/space/tab", desc: "toggle fold"},
	{key: "c / e", desc: "collapse / expand"},
	{key: "C / E", desc: "collapse all / expand all"},
	{key: "1-9", desc: "show replies to depth"},
	{key: "", desc: ""},
	{key: "Search", desc: "", blank: true},
	{key: "/", desc: "search id, author, body"},
	{key: "n / N", desc: "next / previous match"},
	{key: "esc", desc: "clear search"},
	{key: "", desc: ""},
	{key: "Actions", desc: "", blank: true},
	{key: "y / Y", desc: "copy body / id"},
	{key: "d", desc: "detail pane focus"},
	{key: "i", desc: "thread insights"},
	{key: "s", desc: "cycle sort (created/score)"},
	{key: "x", desc: "toggle deleted comments"},
	{key: "r", desc: "reload from disk"},
	{key: "?", desc: "this help"},
	{key: "q", desc: "quit"},
}

// renderHelpOverlay draws the key reference centered in the available area.
func renderHelpOverlay(t Theme, width, height int) string {
	r := t.Renderer

	titleStyle := r.NewStyle().Foreground(t.Primary).Bold(true)
	sectionStyle := r.NewStyle().Foreground(t.Secondary).Bold(true)
	keyStyle := r.NewStyle().Foreground(t.Primary)
	descStyle := t.Base

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("sk · keys"))
	sb.WriteString("\n\n")
	for _, e := range helpEntries {
		if e.blank {
			sb.WriteString(sectionStyle.Render(e.key))
			sb.WriteString("\n")
			continue
		}
		if e.key == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(keyStyle.Render(padRight(e.key, 18)))
		sb.WriteString(descStyle.Render(e.desc))
		sb.WriteString("\n")
	}

	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(1, 3).
		Render(sb.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
