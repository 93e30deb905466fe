package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given background color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep the
// terminal's own background instead of a down-converted approximation
// that may clash with palettes like Solarized.
func ThemeBg(c lipgloss.AdaptiveColor) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return c
}

// ThemeFg returns the given foreground color for ANSI256+ terminals and a
// safe ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(c lipgloss.AdaptiveColor) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return c
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Comment accents
	ScoreUp   lipgloss.AdaptiveColor
	ScoreDown lipgloss.AdaptiveColor
	Pinned    lipgloss.AdaptiveColor
	Deleted   lipgloss.AdaptiveColor
	OP        lipgloss.AdaptiveColor
	Mod       lipgloss.AdaptiveColor
	Bot       lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed row styles, created once at startup instead of per-frame
	MutedText   lipgloss.Style // age, counts
	AuthorText  lipgloss.Style // author names
	ScorePos    lipgloss.Style // non-negative scores
	ScoreNeg    lipgloss.Style // negative scores
	PinnedText  lipgloss.Style // pin marker
	DeletedText lipgloss.Style // tombstoned rows
	PrimaryBold lipgloss.Style // selection indicator, search bar
	GroupHint   lipgloss.Style // "[N hidden]" suffix
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ColorPrimary,
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"}, // Dim

		ScoreUp:   ColorScoreUp,
		ScoreDown: ColorScoreDown,
		Pinned:    ColorPinned,
		Deleted:   ColorDeleted,
		OP:        ColorRoleOP,
		Mod:       ColorRoleMod,
		Bot:       ColorRoleBot,

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	// On low-color terminals the selection keeps only the border and bold;
	// the background tint would down-convert to a jarring block.
	t.Selected = r.NewStyle().
		Background(ThemeBg(t.Highlight)).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.AuthorText = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.ScorePos = r.NewStyle().Foreground(t.ScoreUp)
	t.ScoreNeg = r.NewStyle().Foreground(t.ScoreDown)
	t.PinnedText = r.NewStyle().Foreground(t.Pinned)
	t.DeletedText = r.NewStyle().Foreground(t.Deleted).Faint(true)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.GroupHint = r.NewStyle().Foreground(t.Muted).Italic(true)

	return t
}

// RoleColor maps a role badge tag to its accent color.
func (t Theme) RoleColor(tag string) lipgloss.AdaptiveColor {
	switch tag {
	case "OP":
		return t.OP
	case "MOD":
		return t.Mod
	case "BOT":
		return t.Bot
	default:
		return t.Subtext
	}
}

// ApplyBackgroundPreference forces the renderer's background assumption when
// the config names an explicit theme. "auto" leaves lipgloss' own detection
// in place.
func ApplyBackgroundPreference(r *lipgloss.Renderer, pref string) {
	switch strings.ToLower(pref) {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
