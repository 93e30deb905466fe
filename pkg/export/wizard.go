package export

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// WizardChoice is the export configuration collected by RunWizard.
type WizardChoice struct {
	Format         string // "md", "svg" or "png"
	Path           string
	IncludeDeleted bool
}

// MapOptions converts the choice for the image renderers. Only meaningful
// when Format is svg or png.
func (c WizardChoice) MapOptions() MapOptions {
	return MapOptions{
		Path:           c.Path,
		Format:         c.Format,
		IncludeDeleted: c.IncludeDeleted,
	}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func suggestPath(format string) string {
	switch format {
	case "md":
		return "thread.md"
	case "png":
		return "thread-map.png"
	default:
		return "thread-map.svg"
	}
}

// RunWizard walks the user through an export interactively and returns the
// collected choice; the caller performs the actual export. Requires an
// interactive terminal.
func RunWizard(defaults WizardChoice) (*WizardChoice, error) {
	if !isTerminal() {
		return nil, fmt.Errorf("the export wizard needs an interactive terminal; use --export and --out instead")
	}

	choice := defaults
	if choice.Format == "" {
		choice.Format = "svg"
	}

	fmt.Println("Export Thread")
	fmt.Println("─────────────")

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Export format").
				Options(
					huh.NewOption("Markdown transcript", "md"),
					huh.NewOption("Thread map (SVG)", "svg"),
					huh.NewOption("Thread map (PNG)", "png"),
				).
				Value(&choice.Format),
			huh.NewInput().
				Title("Output path").
				Description("Leave empty for a default name in the current directory").
				Value(&choice.Path).
				Placeholder(suggestPath(choice.Format)),
			huh.NewConfirm().
				Title("Include deleted comments?").
				Value(&choice.IncludeDeleted),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	if choice.Path == "" {
		choice.Path = suggestPath(choice.Format)
	}

	fmt.Println("")
	return &choice, nil
}
