package skelebuild

import (
	"path/filepath"
	"testing"
)

func TestMatchesSpec(t *testing.T) {
	t.Parallel()

	e := Entry{Path: "src/lib.rs::Widget", CanonicalKey: "abc-123", File: "src/lib.rs"}

	tests := []struct {
		spec string
		want bool
	}{
		{"src/lib.rs::Widget", true},
		{"abc-123", true},
		{"src/lib.rs", true},
		{"nope", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := e.MatchesSpec(tt.spec); got != tt.want {
			t.Errorf("MatchesSpec(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestAddTargetAppendsAndReturnsKey(t *testing.T) {
	t.Parallel()

	var st State
	key := st.AddTarget("src/lib.rs::Widget", true, false)
	if key == "" {
		t.Fatal("expected a non-empty canonical key")
	}
	if len(st.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(st.Entries))
	}
	e := st.Entries[0]
	if e.Kind != EntryTarget || e.Path != "src/lib.rs::Widget" || !e.Implementation || e.RawSourceFlag {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestAddInjectionPositions(t *testing.T) {
	t.Parallel()

	var st State
	a := st.AddTarget("a", false, false)
	_ = a
	st.AddTarget("b", false, false)
	st.AddTarget("c", false, false)

	// Insert "mid" after "b".
	st.AddInjection("mid", nil, "b", "")
	if len(st.Entries) != 4 || st.Entries[2].Content != "mid" {
		t.Fatalf("expected injection after b at index 2, got %+v", st.Entries)
	}

	// Insert "front" before "a".
	st.AddInjection("front", nil, "", "a")
	if st.Entries[0].Content != "front" {
		t.Fatalf("expected injection before a at index 0, got %+v", st.Entries)
	}

	// Insert "at-idx" at an explicit index.
	idx := 1
	st.AddInjection("at-idx", &idx, "", "")
	if st.Entries[1].Content != "at-idx" {
		t.Fatalf("expected explicit-index injection at index 1, got %+v", st.Entries)
	}

	// Absent all three positional options: appended at the end.
	st.AddInjection("tail", nil, "", "")
	last := st.Entries[len(st.Entries)-1]
	if last.Content != "tail" {
		t.Fatalf("expected tail injection at the end, got %+v", st.Entries)
	}
}

func TestAddInjectionUnmatchedSpecAppendsAtEnd(t *testing.T) {
	t.Parallel()

	var st State
	st.AddTarget("a", false, false)
	st.AddInjection("orphan", nil, "does-not-exist", "")

	last := st.Entries[len(st.Entries)-1]
	if last.Content != "orphan" {
		t.Fatalf("expected unmatched afterTarget spec to append at the end, got %+v", st.Entries)
	}
}

func TestAddInjectionClampsOutOfRangeIndex(t *testing.T) {
	t.Parallel()

	var st State
	st.AddTarget("a", false, false)

	neg := -5
	st.AddInjection("clamped-low", &neg, "", "")
	if st.Entries[0].Content != "clamped-low" {
		t.Fatalf("expected negative index clamped to 0, got %+v", st.Entries)
	}

	big := 1000
	st.AddInjection("clamped-high", &big, "", "")
	last := st.Entries[len(st.Entries)-1]
	if last.Content != "clamped-high" {
		t.Fatalf("expected oversized index clamped to the end, got %+v", st.Entries)
	}
}

func TestUpdateMutatesFlags(t *testing.T) {
	t.Parallel()

	var st State
	key := st.AddTarget("a", false, false)

	impl := true
	if ok := st.Update(key, &impl, nil); !ok {
		t.Fatal("expected Update to find the target")
	}
	if !st.Entries[0].Implementation {
		t.Error("expected Implementation flag set")
	}
	if st.Entries[0].RawSourceFlag {
		t.Error("expected RawSourceFlag untouched")
	}
}

func TestUpdateMissingSpecReturnsFalse(t *testing.T) {
	t.Parallel()

	var st State
	impl := true
	if st.Update("nope", &impl, nil) {
		t.Error("expected Update to report false for an unknown spec")
	}
}

func TestUpdateRejectsNonTargetEntry(t *testing.T) {
	t.Parallel()

	var st State
	key := st.AddInjection("hello", nil, "", "")
	impl := true
	if st.Update(key, &impl, nil) {
		t.Error("expected Update to reject an injection entry")
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	var st State
	st.AddTarget("a", false, false)
	bKey := st.AddTarget("b", false, false)
	st.AddTarget("c", false, false)

	if !st.Remove(bKey) {
		t.Fatal("expected Remove to find b")
	}
	if len(st.Entries) != 2 {
		t.Fatalf("expected 2 remaining entries, got %d", len(st.Entries))
	}
	for _, e := range st.Entries {
		if e.CanonicalKey == bKey {
			t.Error("expected b removed from entries")
		}
	}
	if st.Remove("nope") {
		t.Error("expected Remove to report false for an unknown spec")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	st := State{OutputPath: "out.md", Plain: true}
	st.AddTarget("a", false, false)
	st.Reset()

	if len(st.Entries) != 0 {
		t.Errorf("expected entries cleared, got %d", len(st.Entries))
	}
	if st.OutputPath != "out.md" || !st.Plain {
		t.Error("expected OutputPath/Plain preserved across Reset")
	}
}

func TestAddChangedResolved(t *testing.T) {
	t.Parallel()

	var st State
	st.AddChangedResolved(
		[]string{"a", "b"},
		[]RawSpec{{File: "src/lib.rs", StartLine: 1, EndLine: 5}},
	)
	if len(st.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(st.Entries))
	}
	if st.Entries[0].Kind != EntryTarget || st.Entries[1].Kind != EntryTarget {
		t.Error("expected the first two entries to be targets")
	}
	if st.Entries[2].Kind != EntryRawSource || st.Entries[2].File != "src/lib.rs" || st.Entries[2].EndLine != 5 {
		t.Errorf("unexpected raw-source entry: %+v", st.Entries[2])
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	st := State{OutputPath: "skeleton.md", Plain: true}
	st.AddTarget("src/lib.rs::Widget", true, false)
	st.AddInjection("hand-written prose", nil, "", "")

	if err := st.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	wantPath := filepath.Join(dir, "ripdoc", "skelebuild.json")
	if StateFile() != wantPath {
		t.Fatalf("StateFile() = %q, want %q", StateFile(), wantPath)
	}

	got := Load()
	if got.OutputPath != st.OutputPath || got.Plain != st.Plain {
		t.Errorf("round-tripped state mismatch: got %+v, want %+v", got, st)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 round-tripped entries, got %d", len(got.Entries))
	}
	if got.Entries[0].Path != "src/lib.rs::Widget" || !got.Entries[0].Implementation {
		t.Errorf("unexpected first entry: %+v", got.Entries[0])
	}
}

func TestLoadMissingFileReturnsEmptyState(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	got := Load()
	if len(got.Entries) != 0 || got.OutputPath != "" {
		t.Errorf("expected empty state for a missing file, got %+v", got)
	}
}
