// Package datasource provides multi-source data detection and selection
// for skein. It discovers, validates, and selects the freshest valid source
// from SQLite archives and thread JSONL files.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/skein/pkg/loader"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite archive (skein.db)
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSONL is a thread JSONL file
	SourceTypeJSONL SourceType = "jsonl"
)

// Priority values for source types (higher = more authoritative)
const (
	PriorityExplicit = 100
	PrioritySQLite   = 80
	PriorityJSONL    = 50
)

// DataSource represents a potential source of thread data
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Priority determines preference when timestamps are equal (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// CommentCount is the number of comments in the source (set during validation)
	CommentCount int `json:"comment_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, comments=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.CommentCount, status)
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Dir is the directory to scan (optional, auto-detected if empty)
	Dir string
	// ExplicitPath names one source directly, bypassing the scan
	ExplicitPath string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// DiscoverSources finds all potential data sources for a thread
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	// An explicit path bypasses the scan entirely.
	if opts.ExplicitPath != "" {
		info, err := os.Stat(opts.ExplicitPath)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", opts.ExplicitPath, err)
		}
		s := DataSource{
			Type:     classifyPath(opts.ExplicitPath),
			Path:     opts.ExplicitPath,
			Priority: PriorityExplicit,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		}
		if opts.ValidateAfterDiscovery {
			if err := ValidateSource(&s); err != nil && opts.Verbose {
				opts.Logger(fmt.Sprintf("Validation failed for %s: %v", s.Path, err))
			}
		}
		return []DataSource{s}, nil
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = loader.ResolveDir("")
		if err != nil {
			return nil, err
		}
	}

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovering sources in: %s", dir))
	}

	var sources []DataSource

	sqliteSources, err := discoverSQLiteSources(dir, opts)
	if err != nil && opts.Verbose {
		opts.Logger(fmt.Sprintf("SQLite discovery warning: %v", err))
	}
	sources = append(sources, sqliteSources...)

	jsonlSources, err := discoverJSONLSources(dir, opts)
	if err != nil && opts.Verbose {
		opts.Logger(fmt.Sprintf("JSONL discovery warning: %v", err))
	}
	sources = append(sources, jsonlSources...)

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil && opts.Verbose {
				opts.Logger(fmt.Sprintf("Validation failed for %s: %v", sources[i].Path, err))
			}
		}
	}

	if opts.ValidateAfterDiscovery && !opts.IncludeInvalid {
		var validSources []DataSource
		for _, s := range sources {
			if s.Valid {
				validSources = append(validSources, s)
			}
		}
		sources = validSources
	}

	// Freshest first; priority breaks ties.
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	}

	return sources, nil
}

// discoverSQLiteSources finds SQLite archives in the directory
func discoverSQLiteSources(dir string, opts DiscoveryOptions) ([]DataSource, error) {
	var sources []DataSource

	dbPath := filepath.Join(dir, "skein.db")
	info, err := os.Stat(dbPath)
	if err == nil {
		sources = append(sources, DataSource{
			Type:     SourceTypeSQLite,
			Path:     dbPath,
			Priority: PrioritySQLite,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found SQLite: %s (mod=%s)", dbPath, info.ModTime().Format(time.RFC3339)))
		}
	}

	return sources, nil
}

// discoverJSONLSources finds thread JSONL files in the directory
func discoverJSONLSources(dir string, opts DiscoveryOptions) ([]DataSource, error) {
	var sources []DataSource

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read thread directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		if !strings.HasSuffix(name, ".jsonl") || strings.HasPrefix(name, ".") {
			continue
		}
		// Skip backups and sync artifacts
		if strings.Contains(name, ".backup") ||
			strings.Contains(name, ".orig") ||
			strings.Contains(name, ".bak") ||
			strings.HasSuffix(name, "~") {
			continue
		}

		path := filepath.Join(dir, name)
		info, err := e.Info()
		if err != nil {
			continue
		}

		sources = append(sources, DataSource{
			Type:     SourceTypeJSONL,
			Path:     path,
			Priority: PriorityJSONL,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})

		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found JSONL: %s (mod=%s)", path, info.ModTime().Format(time.RFC3339)))
		}
	}

	return sources, nil
}

// ValidateSource checks that a source can actually be read and counts its
// comments. The source is mutated in place with the validation outcome.
func ValidateSource(s *DataSource) error {
	switch s.Type {
	case SourceTypeJSONL:
		f, err := os.Open(s.Path)
		if err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
		defer f.Close()
		comments, err := loader.ParseCommentsWithOptions(f, loader.ParseOptions{
			WarningHandler: func(string) {},
		})
		if err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
		if len(comments) == 0 {
			s.Valid = false
			s.ValidationError = "no comments"
			return fmt.Errorf("no comments in %s", s.Path)
		}
		s.Valid = true
		s.ValidationError = ""
		s.CommentCount = len(comments)
		return nil

	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(*s)
		if err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
		defer reader.Close()
		count, err := reader.CountComments()
		if err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
		if count == 0 {
			s.Valid = false
			s.ValidationError = "no comments"
			return fmt.Errorf("no comments in %s", s.Path)
		}
		s.Valid = true
		s.ValidationError = ""
		s.CommentCount = count
		return nil

	default:
		s.Valid = false
		s.ValidationError = fmt.Sprintf("unknown source type: %s", s.Type)
		return fmt.Errorf("unknown source type: %s", s.Type)
	}
}

// SelectBestSource returns the first valid source in priority order.
// Sources must already be sorted by DiscoverSources.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	if len(sources) > 0 {
		// Nothing validated; the freshest candidate is still the best guess.
		return sources[0], fmt.Errorf("no valid sources among %d candidates", len(sources))
	}
	return DataSource{}, fmt.Errorf("no sources available")
}

// classifyPath maps a file path to a source type by extension
func classifyPath(path string) SourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite
	default:
		return SourceTypeJSONL
	}
}
