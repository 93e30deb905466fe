package export

import (
	"strings"
	"testing"
)

func TestSuggestPath(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"md", "thread.md"},
		{"svg", "thread-map.svg"},
		{"png", "thread-map.png"},
		{"", "thread-map.svg"},
	}
	for _, tt := range tests {
		if got := suggestPath(tt.format); got != tt.want {
			t.Errorf("suggestPath(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestWizardChoiceMapOptions(t *testing.T) {
	choice := WizardChoice{Format: "png", Path: "out/map.png", IncludeDeleted: true}
	opts := choice.MapOptions()

	if opts.Format != "png" || opts.Path != "out/map.png" || !opts.IncludeDeleted {
		t.Errorf("MapOptions lost fields: %+v", opts)
	}
}

// Test runners never attach a TTY to stdin, so the guard must trip here.
func TestRunWizardRequiresTerminal(t *testing.T) {
	_, err := RunWizard(WizardChoice{})
	if err == nil {
		t.Fatal("expected an error without a terminal")
	}
	if !strings.Contains(err.Error(), "interactive terminal") {
		t.Errorf("error should point at the TTY requirement: %v", err)
	}
}
