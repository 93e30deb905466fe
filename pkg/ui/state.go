// state.go - Collapse-state persistence for the thread view.
//
// The collapsed shape is saved to .skein/view-state.json next to the source
// file so reopening a thread restores the reader's place. The file carries a
// content hash of the fully expanded comment order; state recorded against a
// different thread content is discarded rather than replayed, since collapse
// indices only have meaning against the exact sequence they were taken from.
package ui

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/skein/pkg/config"
	"github.com/vanderheijden86/skein/pkg/debug"
	"github.com/vanderheijden86/skein/pkg/outline"
)

// ViewStateVersion is the current schema version for view persistence.
const ViewStateVersion = 1

const (
	stateDirName  = ".skein"
	stateFileName = "view-state.json"
)

// ViewState is the persisted shape of the thread view.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "source": "/path/to/thread.jsonl",
//	  "hash": "9f2c1a77d54e10b3",
//	  "collapsed": [4, 1]
//	}
//
// The collapsed indices replay against the fully expanded sequence, highest
// first. Corrupted or mismatched files are discarded silently; the thread
// then opens fully expanded.
type ViewState struct {
	Version   int    `json:"version"`
	Source    string `json:"source"`
	Hash      string `json:"hash"`
	Collapsed []int  `json:"collapsed"`
}

// StateStore reads and writes the view state for one source file. The
// preferred location is a .skein directory beside the source; when that is
// not writable (read-only checkouts, mounted archives) writes fall back to
// the XDG state directory keyed by the source path.
type StateStore struct {
	primary  string
	fallback string
	dirty    bool
}

// NewStateStore builds a store for the given source path. An empty source
// disables persistence entirely.
func NewStateStore(sourcePath string) *StateStore {
	s := &StateStore{}
	if sourcePath == "" {
		return s
	}
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		abs = sourcePath
	}
	s.primary = filepath.Join(filepath.Dir(abs), stateDirName, stateFileName)
	if dir := config.StateDir(); dir != "" {
		s.fallback = filepath.Join(dir, "views", pathKey(abs)+".json")
	}
	return s
}

// pathKey derives a stable filename for a source path.
func pathKey(abs string) string {
	h := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(h[:])[:16]
}

// Path returns the preferred state file location.
func (s *StateStore) Path() string {
	return s.primary
}

// MarkDirty records that the collapse state changed since the last save.
// Registered as an outline observer, so it must stay cheap.
func (s *StateStore) MarkDirty() {
	s.dirty = true
}

// Dirty reports whether there are unsaved collapse changes.
func (s *StateStore) Dirty() bool {
	return s.dirty
}

// Save writes the view state, trying the source-adjacent location first and
// the state-dir fallback second. A successful save clears the dirty flag.
func (s *StateStore) Save(source, hash string, collapsed []int) error {
	if s.primary == "" {
		s.dirty = false
		return nil
	}
	if collapsed == nil {
		collapsed = []int{}
	}
	state := ViewState{
		Version:   ViewStateVersion,
		Source:    source,
		Hash:      hash,
		Collapsed: collapsed,
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling view state: %w", err)
	}

	err = writeState(s.primary, data)
	if err != nil && s.fallback != "" {
		debug.Log("view state: %s not writable (%v), using %s", s.primary, err, s.fallback)
		err = writeState(s.fallback, data)
	}
	if err != nil {
		return fmt.Errorf("writing view state: %w", err)
	}
	s.dirty = false
	return nil
}

func writeState(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads the persisted view state, preferring the source-adjacent file.
// Missing or corrupt files return nil; loading never fails the caller.
func (s *StateStore) Load() *ViewState {
	for _, path := range []string{s.primary, s.fallback} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var state ViewState
		if err := json.Unmarshal(data, &state); err != nil {
			debug.Log("view state: invalid file %s, ignoring: %v", path, err)
			continue
		}
		return &state
	}
	return nil
}

// Matches reports whether the loaded state may be replayed against a thread
// with the given content hash.
func (s *StateStore) Matches(state *ViewState, hash string) bool {
	return state != nil && state.Version == ViewStateVersion && state.Hash == hash
}

// ContentHash fingerprints the fully expanded comment order of the given
// roots. Two threads hash equal iff their expanded sequences carry the same
// comment ids in the same order, which is exactly the precondition for
// replaying collapse indices. Unlike outline.Flatten, the walk descends into
// collapsed groups: the hash describes the content, not the current view.
func ContentHash(roots ...*outline.Node) string {
	h := sha256.New()
	stack := make([]*outline.Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id, ok := n.Payload["id"].(string); ok {
			h.Write([]byte(id))
		}
		h.Write([]byte{0})
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
