package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/skein/pkg/metrics"
	"github.com/vanderheijden86/skein/pkg/model"
)

// SkeinDirEnvVar overrides where thread files are looked up.
const SkeinDirEnvVar = "SKEIN_DIR"

// PreferredJSONLNames defines the priority order for looking up thread files.
var PreferredJSONLNames = []string{"thread.jsonl", "comments.jsonl"}

// DefaultMaxBufferSize is the default maximum line size for the reader (10MB).
// Comment bodies arrive JSON-escaped on a single line, so one comment can get big.
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ResolveDir returns the directory to search for thread files, respecting
// SKEIN_DIR. Falls back to the given path, then the working directory.
func ResolveDir(path string) (string, error) {
	if envDir := os.Getenv(SkeinDirEnvVar); envDir != "" {
		return envDir, nil
	}
	if path != "" {
		return path, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return wd, nil
}

// FindThreadFile locates the thread JSONL file in the given directory.
// Preferred names win; otherwise the newest non-empty candidate does.
// Backup files and sync artifacts are skipped.
func FindThreadFile(dir string) (string, error) {
	return FindThreadFileWithWarnings(dir, nil)
}

// FindThreadFileWithWarnings is like FindThreadFile but optionally reports
// skipped backup artifacts via the provided callback.
func FindThreadFileWithWarnings(dir string, warnFunc func(msg string)) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read thread directory: %w", err)
	}

	var candidates []string
	var artifacts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		if strings.HasPrefix(name, ".") {
			continue
		}
		// Editor and sync leftovers are never the live thread.
		if strings.Contains(name, ".backup") ||
			strings.Contains(name, ".orig") ||
			strings.Contains(name, ".bak") ||
			strings.HasSuffix(name, "~") {
			artifacts = append(artifacts, name)
			continue
		}
		candidates = append(candidates, name)
	}

	if len(artifacts) > 0 && warnFunc != nil {
		warnFunc(fmt.Sprintf("Backup artifact files detected and ignored: %s", strings.Join(artifacts, ", ")))
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("no thread JSONL file found in %s", dir)
	}

	for _, preferred := range PreferredJSONLNames {
		for _, name := range candidates {
			if name == preferred {
				path := filepath.Join(dir, name)
				if info, err := os.Stat(path); err == nil && info.Size() > 0 {
					return path, nil
				}
			}
		}
	}

	// No preferred name matched. Newest non-empty candidate wins.
	sort.Slice(candidates, func(i, j int) bool {
		ii, ierr := os.Stat(filepath.Join(dir, candidates[i]))
		ji, jerr := os.Stat(filepath.Join(dir, candidates[j]))
		if ierr != nil || jerr != nil {
			return candidates[i] < candidates[j]
		}
		return ii.ModTime().After(ji.ModTime())
	})
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return path, nil
		}
	}
	return filepath.Join(dir, candidates[0]), nil
}

// ParseOptions configures the behavior of ParseComments.
type ParseOptions struct {
	// WarningHandler is called with warning messages (e.g., malformed JSON).
	// If nil, warnings are printed to os.Stderr unless SK_TEST_MODE=1.
	WarningHandler func(string)

	// BufferSize sets the maximum line size (in bytes) to read at once.
	// Lines longer than this are skipped with a warning.
	// If 0, uses DefaultMaxBufferSize (10MB).
	BufferSize int

	// Filter optionally drops parsed comments. Return false to exclude.
	Filter func(*model.Comment) bool
}

// LoadThread reads, links, and orders a thread from a JSONL file.
func LoadThread(path string) (*model.Thread, error) {
	return LoadThreadWithOptions(path, ParseOptions{})
}

// LoadThreadWithOptions reads a thread with custom parse options.
func LoadThreadWithOptions(path string, opts ParseOptions) (*model.Thread, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no thread found at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open thread file: %w", err)
	}
	defer file.Close()

	comments, err := ParseCommentsWithOptions(file, opts)
	if err != nil {
		return nil, err
	}

	thread := BuildThread(comments, opts.WarningHandler)
	thread.Source = path
	if thread.Title == "" {
		thread.Title = titleFromFilename(path)
	}
	thread.SortReplies(model.ByCreated)
	return thread, nil
}

// ParseComments parses JSONL content from a reader into comments.
// Handles UTF-8 BOM stripping, overlong lines, and validation.
func ParseComments(r io.Reader) ([]*model.Comment, error) {
	return ParseCommentsWithOptions(r, ParseOptions{})
}

// ParseCommentsWithOptions parses JSONL content with custom options.
// Malformed and invalid lines are skipped with a warning rather than
// failing the whole thread.
func ParseCommentsWithOptions(r io.Reader, opts ParseOptions) ([]*model.Comment, error) {
	defer metrics.Timer(metrics.JSONParsing)()

	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}
	reader := bufio.NewReaderSize(r, maxCapacity)
	warn := warnFunc(opts)

	var comments []*model.Comment
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading thread stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}

		if lineNum == 1 {
			line = stripBOM(line)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var c model.Comment
		if err := json.Unmarshal(line, &c); err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}
		if c.Kind == "" {
			c.Kind = model.KindComment
		}
		if err := c.Validate(); err != nil {
			warn(fmt.Sprintf("skipping invalid comment on line %d: %v", lineNum, err))
			continue
		}
		if opts.Filter != nil && !opts.Filter(&c) {
			continue
		}
		comments = append(comments, &c)
	}

	return comments, nil
}

func warnFunc(opts ParseOptions) func(string) {
	if opts.WarningHandler != nil {
		return opts.WarningHandler
	}
	if os.Getenv("SK_TEST_MODE") == "1" {
		return func(string) {}
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

func titleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return base
}
