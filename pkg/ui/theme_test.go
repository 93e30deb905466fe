package ui

import (
	"io"
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func TestDefaultTheme(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	theme := DefaultTheme(renderer)

	if theme.Renderer != renderer {
		t.Error("DefaultTheme renderer mismatch")
	}
	if theme.Primary.Light == "" && theme.Primary.Dark == "" {
		t.Error("DefaultTheme Primary color is empty")
	}
	if theme.ScoreUp.Light == "" && theme.ScoreUp.Dark == "" {
		t.Error("DefaultTheme ScoreUp color is empty")
	}
}

func TestRoleColor(t *testing.T) {
	theme := DefaultTheme(lipgloss.NewRenderer(nil))

	tests := []struct {
		tag  string
		want lipgloss.AdaptiveColor
	}{
		{"OP", theme.OP},
		{"MOD", theme.Mod},
		{"BOT", theme.Bot},
		{"unknown", theme.Subtext},
		{"", theme.Subtext},
	}
	for _, tt := range tests {
		if got := theme.RoleColor(tt.tag); got != tt.want {
			t.Errorf("RoleColor(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestThemeBgByProfile(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	c := lipgloss.AdaptiveColor{Light: "#D4EDDA", Dark: "#1A3D2A"}

	TermProfile = colorprofile.TrueColor
	if _, ok := ThemeBg(c).(lipgloss.NoColor); ok {
		t.Error("TrueColor should keep the background color")
	}

	for _, p := range []colorprofile.Profile{colorprofile.ANSI256, colorprofile.ANSI, colorprofile.NoTTY} {
		TermProfile = p
		if _, ok := ThemeBg(c).(lipgloss.NoColor); !ok {
			t.Errorf("profile %v should suppress the background, got %T", p, ThemeBg(c))
		}
	}
}

func TestThemeFgByProfile(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	c := lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}

	TermProfile = colorprofile.ANSI256
	if _, ok := ThemeFg(c).(lipgloss.ANSIColor); ok {
		t.Error("ANSI256 should keep the foreground color")
	}

	TermProfile = colorprofile.ANSI
	got, ok := ThemeFg(c).(lipgloss.ANSIColor)
	if !ok {
		t.Fatalf("ANSI should fall back to an ANSIColor, got %T", ThemeFg(c))
	}
	if got != 7 {
		t.Errorf("ANSI fallback = %d, want 7", got)
	}
}

func TestApplyBackgroundPreference(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)

	ApplyBackgroundPreference(r, "dark")
	if !r.HasDarkBackground() {
		t.Error("dark preference not applied")
	}
	ApplyBackgroundPreference(r, "light")
	if r.HasDarkBackground() {
		t.Error("light preference not applied")
	}

	// auto leaves whatever detection produced
	before := r.HasDarkBackground()
	ApplyBackgroundPreference(r, "auto")
	if r.HasDarkBackground() != before {
		t.Error("auto should not change the background assumption")
	}
}
