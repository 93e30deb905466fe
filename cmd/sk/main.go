package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/vanderheijden86/skein/internal/datasource"
	"github.com/vanderheijden86/skein/pkg/config"
	"github.com/vanderheijden86/skein/pkg/debug"
	"github.com/vanderheijden86/skein/pkg/export"
	"github.com/vanderheijden86/skein/pkg/loader"
	"github.com/vanderheijden86/skein/pkg/metrics"
	"github.com/vanderheijden86/skein/pkg/model"
	"github.com/vanderheijden86/skein/pkg/ui"
	"github.com/vanderheijden86/skein/pkg/version"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	exportFormat := flag.String("export", "", "Export the thread and exit: md, svg or png")
	outPath := flag.String("out", "", "Output path for --export (md defaults to stdout, maps to thread-map.<ext>)")
	includeDeleted := flag.Bool("include-deleted", false, "Include deleted comments in exports")
	exportWizard := flag.Bool("export-wizard", false, "Pick export format and path interactively, then exit")
	listThreads := flag.Bool("list", false, "List the threads in a SQLite archive or directory and exit")
	threadID := flag.String("thread", "", "Open a specific thread from a SQLite archive by ID")
	checkSources := flag.Bool("check-sources", false, "Discover data sources, cross-check them, and exit")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: sk [options] [path]")
		fmt.Println("\nA TUI viewer for threaded discussions.")
		fmt.Println("With no path, sk looks in SKEIN_DIR and then the current directory.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("sk %s\n", version.Version)
		os.Exit(0)
	}

	// Positional path may name a thread file, an archive, or a directory to
	// scan. SKEIN_DIR and cwd fallbacks live in the loader.
	path := flag.Arg(0)

	if *checkSources {
		os.Exit(runCheckSources(path))
	}

	if *listThreads {
		os.Exit(runListThreads(path))
	}

	t, err := resolveThread(path, *threadID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading thread: %v\n", err)
		fmt.Fprintln(os.Stderr, "Pass a .jsonl or .db thread export, or run sk in a directory containing one.")
		os.Exit(1)
	}

	if *exportWizard {
		choice, err := export.RunWizard(export.WizardChoice{
			Format:         *exportFormat,
			Path:           *outPath,
			IncludeDeleted: *includeDeleted,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export wizard: %v\n", err)
			os.Exit(1)
		}
		os.Exit(runExport(t, *choice))
	}

	if *exportFormat != "" {
		os.Exit(runExport(t, export.WizardChoice{
			Format:         *exportFormat,
			Path:           *outPath,
			IncludeDeleted: *includeDeleted,
		}))
	}

	if t.Count() == 0 {
		fmt.Printf("No comments in %s yet.\n", t.Source)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "sk needs a terminal for the interactive view.")
		fmt.Fprintln(os.Stderr, "Use --export md to write a transcript to stdout instead.")
		os.Exit(1)
	}

	// Load sk config for columns, icons, and collapse behavior
	appCfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		appCfg = config.DefaultConfig()
	}

	// Launch TUI
	m, err := ui.NewModel(t, t.Source, appCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running thread viewer: %v\n", err)
		os.Exit(1)
	}
	logTimings()
}

// logTimings dumps accumulated operation timings for profiling sessions.
func logTimings() {
	if !debug.Enabled() {
		return
	}
	for _, s := range metrics.AllTimingStats() {
		debug.Log("timing %s: n=%d avg=%.2fms max=%.2fms", s.Name, s.Count, s.AvgMs, s.MaxMs)
	}
}

// resolveThread loads the thread to display. --thread forces the SQLite
// archive route; otherwise discovery under path picks the best source.
func resolveThread(path, threadID string) (*model.Thread, error) {
	if threadID == "" {
		return datasource.LoadThread(path)
	}

	source, err := findArchive(path)
	if err != nil {
		return nil, err
	}
	r, err := datasource.NewSQLiteReader(source)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadThread(threadID)
}

// findArchive locates the SQLite archive that --list and --thread operate on.
func findArchive(path string) (datasource.DataSource, error) {
	opts := datasource.DiscoveryOptions{ValidateAfterDiscovery: true}
	if info, err := os.Stat(path); path != "" && err == nil && !info.IsDir() {
		opts = datasource.DiscoveryOptions{ExplicitPath: path}
	} else {
		opts.Dir = path
	}

	sources, err := datasource.DiscoverSources(opts)
	if err != nil {
		return datasource.DataSource{}, err
	}
	for _, s := range sources {
		if s.Type == datasource.SourceTypeSQLite {
			return s, nil
		}
	}
	return datasource.DataSource{}, fmt.Errorf("no SQLite archive found (--list and --thread need a .db export)")
}

func runListThreads(path string) int {
	source, err := findArchive(path)
	if err != nil {
		// No archive around; list the loose thread files instead.
		return runListDir(path)
	}
	r, err := datasource.NewSQLiteReader(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening archive: %v\n", err)
		return 1
	}
	defer r.Close()

	threads, err := r.ListThreads()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing threads: %v\n", err)
		return 1
	}
	if len(threads) == 0 {
		fmt.Printf("No threads in %s.\n", source.Path)
		return 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMMENTS\tUPDATED\tTITLE")
	for _, ti := range threads {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", ti.ID, ti.Comments, ti.Updated.Format("2006-01-02 15:04"), ti.Title)
	}
	w.Flush()
	return 0
}

// runListDir lists the thread JSONL files of a directory, newest first.
func runListDir(path string) int {
	dir, err := loader.ResolveDir(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	summaries, err := loader.LoadDir(context.Background(), dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning %s: %v\n", dir, err)
		return 1
	}
	if len(summaries) == 0 {
		fmt.Printf("No thread files in %s.\n", dir)
		return 1
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tCOMMENTS\tUPDATED\tTITLE")
	for _, s := range summaries {
		if s.Error != nil {
			fmt.Fprintf(w, "%s\t-\t-\tunreadable: %v\n", filepath.Base(s.Path), s.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", filepath.Base(s.Path), s.Comments, s.Modified.Format("2006-01-02 15:04"), s.Title)
	}
	w.Flush()
	return 0
}

func runCheckSources(path string) int {
	opts := datasource.DiscoveryOptions{
		ValidateAfterDiscovery: true,
		IncludeInvalid:         true,
	}
	if info, err := os.Stat(path); path != "" && err == nil && !info.IsDir() {
		opts.ExplicitPath = path
	} else {
		opts.Dir = path
	}

	sources, err := datasource.DiscoverSources(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering sources: %v\n", err)
		return 1
	}
	if len(sources) == 0 {
		fmt.Println("No data sources found.")
		return 1
	}

	fmt.Printf("Found %d source(s):\n", len(sources))
	for _, s := range sources {
		fmt.Printf("  %s\n", s)
	}

	if len(sources) < 2 {
		return 0
	}

	// Sources arrive freshest-first; cross-check the two best.
	diff, err := datasource.DiffSources(sources[0], sources[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error comparing sources: %v\n", err)
		return 1
	}
	fmt.Println()
	fmt.Println(diff.Summary())
	if diff.HasInconsistencies() {
		return 1
	}
	return 0
}

func runExport(t *model.Thread, choice export.WizardChoice) int {
	format := strings.ToLower(strings.TrimSpace(choice.Format))
	switch format {
	case "md", "markdown":
		mdOpts := export.MarkdownOptions{IncludeDeleted: choice.IncludeDeleted}
		if choice.Path == "" || choice.Path == "-" {
			if err := export.WriteMarkdown(os.Stdout, t, mdOpts); err != nil {
				fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
				return 1
			}
			return 0
		}
		f, err := os.Create(choice.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create %s: %v\n", choice.Path, err)
			return 1
		}
		if err := export.WriteMarkdown(f, t, mdOpts); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			return 1
		}
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			return 1
		}
		fmt.Printf("Exported %d comments to %s\n", t.Count(), choice.Path)
		return 0

	case "svg", "png":
		if choice.Path == "" {
			choice.Path = defaultOutPath(format)
		}
		if err := export.SaveMap(t, choice.MapOptions()); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			return 1
		}
		fmt.Printf("Wrote thread map to %s\n", choice.Path)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown export format %q (want md, svg or png)\n", choice.Format)
		return 2
	}
}

// defaultOutPath names the output file when --out is omitted for map exports.
func defaultOutPath(format string) string {
	return "thread-map." + format
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set SK_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("SK_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
