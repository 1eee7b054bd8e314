package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

func strp(s string) *string { return &s }

func sampleCrate() *rustdoc.CrateData {
	root := rustdoc.ItemID("0:0")
	return &rustdoc.CrateData{
		Root: root,
		Items: map[rustdoc.ItemID]*rustdoc.Item{
			root: {
				ID: root, Name: strp("tiny"), Kind: rustdoc.KindModule,
				Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
				Inner:      []byte(`{"children":[],"is_crate_root":true}`),
			},
		},
		PackageName:    "tiny",
		PackageVersion: "0.1.0",
	}
}

func TestNewKeySortsFeatures(t *testing.T) {
	t.Parallel()

	a := NewKey("Cargo.toml", "tiny@0.1.0", []string{"b", "a"}, false, "stable")
	b := NewKey("Cargo.toml", "tiny@0.1.0", []string{"a", "b"}, false, "stable")
	if a.Hash() != b.Hash() {
		t.Error("expected feature order to not affect the key hash")
	}
	if a.Features[0] != "a" || a.Features[1] != "b" {
		t.Errorf("expected sorted features, got %v", a.Features)
	}
}

func TestHashDiffersOnAnyField(t *testing.T) {
	t.Parallel()

	base := NewKey("Cargo.toml", "tiny@0.1.0", nil, false, "stable")
	variants := []Key{
		NewKey("other.toml", "tiny@0.1.0", nil, false, "stable"),
		NewKey("Cargo.toml", "tiny@0.2.0", nil, false, "stable"),
		NewKey("Cargo.toml", "tiny@0.1.0", []string{"x"}, false, "stable"),
		NewKey("Cargo.toml", "tiny@0.1.0", nil, true, "stable"),
		NewKey("Cargo.toml", "tiny@0.1.0", nil, false, "nightly"),
	}
	for i, v := range variants {
		if v.Hash() == base.Hash() {
			t.Errorf("variant %d unexpectedly hashed the same as base", i)
		}
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewAt(t.TempDir())
	k := NewKey("Cargo.toml", "tiny@0.1.0", nil, false, "stable")
	cd := sampleCrate()

	if err := c.Put(k, cd); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get(k)
	if !ok {
		t.Fatal("expected a cache hit after Put")
	}
	if got.PackageName != cd.PackageName || got.Root != cd.Root {
		t.Errorf("round-tripped crate data mismatch: got %+v", got)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	t.Parallel()

	c := NewAt(t.TempDir())
	k := NewKey("Cargo.toml", "tiny@0.1.0", nil, false, "stable")

	_, ok := c.Get(k)
	if ok {
		t.Error("expected a miss for a never-written key")
	}
}

func TestGetPurgesCorruptEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := NewAt(dir)
	k := NewKey("Cargo.toml", "tiny@0.1.0", nil, false, "stable")

	p := filepath.Join(dir, k.Hash()[:2], k.Hash()[2:]+".gob.zst")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(p, []byte("not a valid zstd blob"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, ok := c.Get(k)
	if ok {
		t.Error("expected a corrupt blob to report a miss")
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Error("expected the corrupt blob to be purged from disk")
	}
}

func TestRemoveByHash(t *testing.T) {
	t.Parallel()

	c := NewAt(t.TempDir())
	k := NewKey("Cargo.toml", "tiny@0.1.0", nil, false, "stable")
	if err := c.Put(k, sampleCrate()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := c.RemoveByHash(k.Hash()); err != nil {
		t.Fatalf("RemoveByHash: %v", err)
	}
	if _, ok := c.Get(k); ok {
		t.Error("expected a miss after RemoveByHash")
	}

	// Removing an absent entry is not an error.
	if err := c.RemoveByHash(k.Hash()); err != nil {
		t.Errorf("expected removing an already-absent entry to succeed, got %v", err)
	}
}

func TestRemoveByHashRejectsShortHash(t *testing.T) {
	t.Parallel()

	c := NewAt(t.TempDir())
	if err := c.RemoveByHash("a"); err == nil {
		t.Error("expected an error for a too-short hash")
	}
}
