package datasource

import (
	"fmt"
	"os"

	"github.com/vanderheijden86/skein/pkg/loader"
	"github.com/vanderheijden86/skein/pkg/model"
)

// LoadThread performs smart multi-source detection and loading.
// A path naming a file is used directly. A path naming a directory (or an
// empty path, meaning SKEIN_DIR or the working directory) is scanned for
// sources; the freshest valid one wins, with the SQLite archive preferred
// over JSONL at comparable freshness since archives carry curated metadata.
//
// Falls back to plain JSONL lookup via loader.FindThreadFile if smart
// detection finds no valid sources.
func LoadThread(path string) (*model.Thread, error) {
	if path != "" {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return loadExplicit(path)
		}
	}

	dir, err := loader.ResolveDir(path)
	if err != nil {
		return nil, err
	}

	thread, smartErr := loadSmart(dir)
	if smartErr == nil {
		return thread, nil
	}

	// Fall back to plain JSONL loading
	jsonlPath, err := loader.FindThreadFile(dir)
	if err != nil {
		return nil, fmt.Errorf("no thread data in %s: %w", dir, smartErr)
	}
	return loader.LoadThread(jsonlPath)
}

// loadExplicit loads one named source file without discovery.
func loadExplicit(path string) (*model.Thread, error) {
	sources, err := DiscoverSources(DiscoveryOptions{ExplicitPath: path})
	if err != nil {
		return nil, err
	}
	return LoadFromSource(sources[0])
}

// loadSmart discovers sources, validates, selects the best, and loads from it.
func loadSmart(dir string) (*model.Thread, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         false,
	})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid sources discovered")
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, err
	}

	return LoadFromSource(best)
}

// LoadFromSource loads a thread from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(source DataSource) (*model.Thread, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.ReadNewestThread()

	case SourceTypeJSONL:
		return loader.LoadThread(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
