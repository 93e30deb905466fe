package main

import (
	"os"
	"strings"
)

// init runs before Bubble Tea acquires the terminal.
//
// Under PTY capture (CI jobs, scripted runs), Bubble Tea's startup triggers
// Lipgloss/Termenv background detection, which can write OSC/DSR control
// sequences to stdout. Harmless in a real terminal, but they corrupt piped
// output from the non-interactive modes. Termenv skips TTY probing when CI
// is set, so set it early for invocations that never reach the TUI.
func init() {
	if os.Getenv("CI") != "" {
		return
	}

	if !shouldSuppressTTYQueries(os.Args, os.Getenv("SK_ROBOT") == "1", os.Getenv("SK_TEST_MODE") != "") {
		return
	}

	_ = os.Setenv("CI", "1")
}

// shouldSuppressTTYQueries reports whether this invocation only produces
// plain text on stdout. --export-wizard stays interactive and --thread
// opens the TUI, so neither suppresses.
func shouldSuppressTTYQueries(args []string, envRobot, envTest bool) bool {
	if envRobot || envTest {
		return true
	}

	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		switch name {
		case "version", "help", "export", "list", "check-sources":
			return true
		}
	}

	return false
}
