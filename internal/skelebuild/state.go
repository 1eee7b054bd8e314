// Package skelebuild implements the incremental skeleton assembly engine
// (§4.7): a persistent, append-only document builder that composes
// rendered excerpts, manual prose injections, and raw source snippets
// into one output file, preserving entry order and identity across
// invocations.
//
// Grounded on original_source/src/skelebuild/{state.rs,rebuild.rs,mod.rs}.
package skelebuild

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// EntryKind tags the variant held by one Entry.
type EntryKind string

const (
	EntryTarget    EntryKind = "target"
	EntryInjection EntryKind = "injection"
	EntryRawSource EntryKind = "raw_source"
)

// Entry is one unit of the skelebuild document, a tagged union over the
// three entry kinds. CanonicalKey is a stable identifier independent of
// position, used by Update/Remove/after-target lookups so reordering
// never breaks a reference - it supplements the original's path-string
// matching with a uuid assigned at Add time (§9's "richer Entry shape").
type Entry struct {
	Kind         EntryKind `json:"type"`
	CanonicalKey string    `json:"canonical_key"`

	// EntryTarget fields.
	Path           string `json:"path,omitempty"`
	Implementation bool   `json:"implementation,omitempty"`
	RawSourceFlag  bool   `json:"raw_source,omitempty"`

	// EntryInjection fields.
	Content string `json:"content,omitempty"`

	// EntryRawSource fields.
	File      string `json:"file,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

// MatchesSpec reports whether a target/update/remove spec string names
// this entry, matching against its path, its canonical key and its
// raw-source file.
func (e Entry) MatchesSpec(spec string) bool {
	return spec != "" && (e.Path == spec || e.CanonicalKey == spec || e.File == spec)
}

// State is the full persisted skelebuild document.
type State struct {
	OutputPath string  `json:"output_path,omitempty"`
	Entries    []Entry `json:"entries"`
	Plain      bool    `json:"plain,omitempty"`
}

// StateFile returns the path to the persisted state file, under the XDG
// state directory (falling back to ~/.local/state) the way the original
// implementation does via the `dirs` crate.
func StateFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "ripdoc", "skelebuild.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "state", "ripdoc", "skelebuild.json")
}

// Load reads the persisted state, returning an empty State if no file
// exists yet or it can't be parsed - skelebuild never fails to start.
func Load() State {
	path := StateFile()
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}
	}
	return st
}

// Save persists the state atomically: write to a temp file in the same
// directory, then rename over the target, so a crash mid-write never
// corrupts the existing state.
func (st State) Save() error {
	path := StateFile()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("skelebuild: create state dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("skelebuild: marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".skelebuild-*.tmp")
	if err != nil {
		return fmt.Errorf("skelebuild: create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("skelebuild: write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("skelebuild: close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("skelebuild: rename temp state file: %w", err)
	}
	return nil
}

func newCanonicalKey() string { return uuid.NewString() }

// --- Action application ---

// AddTarget appends a target entry, returning its canonical key.
func (st *State) AddTarget(path string, implementation, rawSource bool) string {
	key := newCanonicalKey()
	st.Entries = append(st.Entries, Entry{
		Kind: EntryTarget, CanonicalKey: key,
		Path: path, Implementation: implementation, RawSourceFlag: rawSource,
	})
	return key
}

// AddInjection inserts a prose entry at an explicit index, after/before a
// matching target spec, or (absent all three) at the end - mirroring the
// original's Inject action's positional options.
func (st *State) AddInjection(content string, at *int, afterTarget, beforeTarget string) string {
	key := newCanonicalKey()
	entry := Entry{Kind: EntryInjection, CanonicalKey: key, Content: content}

	switch {
	case at != nil:
		idx := *at
		if idx < 0 {
			idx = 0
		}
		if idx > len(st.Entries) {
			idx = len(st.Entries)
		}
		st.Entries = append(st.Entries, Entry{})
		copy(st.Entries[idx+1:], st.Entries[idx:])
		st.Entries[idx] = entry
	case afterTarget != "":
		idx := st.indexOfSpec(afterTarget)
		if idx < 0 {
			st.Entries = append(st.Entries, entry)
		} else {
			st.insertAt(idx+1, entry)
		}
	case beforeTarget != "":
		idx := st.indexOfSpec(beforeTarget)
		if idx < 0 {
			st.Entries = append(st.Entries, entry)
		} else {
			st.insertAt(idx, entry)
		}
	default:
		st.Entries = append(st.Entries, entry)
	}
	return key
}

// AddRawSource appends a raw, unelided source-span entry.
func (st *State) AddRawSource(file string, startLine, endLine int) string {
	key := newCanonicalKey()
	st.Entries = append(st.Entries, Entry{
		Kind: EntryRawSource, CanonicalKey: key,
		File: file, StartLine: startLine, EndLine: endLine,
	})
	return key
}

func (st *State) insertAt(idx int, e Entry) {
	st.Entries = append(st.Entries, Entry{})
	copy(st.Entries[idx+1:], st.Entries[idx:])
	st.Entries[idx] = e
}

func (st *State) indexOfSpec(spec string) int {
	for i, e := range st.Entries {
		if e.MatchesSpec(spec) {
			return i
		}
	}
	return -1
}

// Update mutates an existing target entry's flags in place.
func (st *State) Update(spec string, implementation, rawSource *bool) bool {
	idx := st.indexOfSpec(spec)
	if idx < 0 || st.Entries[idx].Kind != EntryTarget {
		return false
	}
	if implementation != nil {
		st.Entries[idx].Implementation = *implementation
	}
	if rawSource != nil {
		st.Entries[idx].RawSourceFlag = *rawSource
	}
	return true
}

// Remove deletes the first entry matching spec, reporting whether one was
// found.
func (st *State) Remove(spec string) bool {
	idx := st.indexOfSpec(spec)
	if idx < 0 {
		return false
	}
	st.Entries = append(st.Entries[:idx], st.Entries[idx+1:]...)
	return true
}

// Reset clears every entry but preserves OutputPath/Plain settings.
func (st *State) Reset() { st.Entries = nil }

// AddChangedResolved atomically appends a batch of resolved target specs
// and raw-source specs discovered by the git-diff bridge, per §4.7's
// AddChangedResolved action.
func (st *State) AddChangedResolved(targetPaths []string, rawSpecs []RawSpec) {
	for _, path := range targetPaths {
		st.AddTarget(path, false, false)
	}
	for _, r := range rawSpecs {
		st.AddRawSource(r.File, r.StartLine, r.EndLine)
	}
}

// RawSpec is one `PATH[:start[:end]]` raw-source addition.
type RawSpec struct {
	File      string
	StartLine int
	EndLine   int
}
