package loader

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ThreadSummary describes one thread file found in a directory scan.
// Error is set when the file could not be parsed; the scan itself still
// succeeds so one corrupt file cannot hide its neighbors.
type ThreadSummary struct {
	Path     string
	Title    string
	Comments int
	Modified time.Time
	Error    error
}

// LoadDir scans a directory for thread JSONL files and loads each one
// concurrently. Summaries are returned newest first. Backup artifacts and
// hidden files are skipped with the same rules FindThreadFile applies.
func LoadDir(ctx context.Context, dir string) ([]ThreadSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".jsonl") || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.Contains(name, ".backup") ||
			strings.Contains(name, ".orig") ||
			strings.Contains(name, ".bak") ||
			strings.HasSuffix(name, "~") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}

	summaries := make([]ThreadSummary, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	// Bounded so a directory of hundreds of threads does not exhaust file descriptors.
	g.SetLimit(8)

	for i, path := range paths {
		i, path := i, path

		g.Go(func() error {
			select {
			case <-ctx.Done():
				summaries[i] = ThreadSummary{Path: path, Error: ctx.Err()}
				return nil
			default:
			}

			s := ThreadSummary{Path: path}
			if info, err := os.Stat(path); err == nil {
				s.Modified = info.ModTime()
			}
			thread, err := LoadThreadWithOptions(path, ParseOptions{WarningHandler: func(string) {}})
			if err != nil {
				s.Error = err
			} else {
				s.Title = thread.Title
				s.Comments = thread.Count()
			}
			summaries[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summaries, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Modified.After(summaries[j].Modified)
	})
	return summaries, nil
}
