package cachedb

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "catalog.duckdb")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertThenList(t *testing.T) {
	db := openTestDB(t)

	e := Entry{
		Name: "serde", Version: "1.0.0", FeatureFlags: "derive",
		PrivateItems: false, Toolchain: "stable", Hash: "abc123", SizeBytes: 4096,
	}
	if err := db.Upsert(e); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	entries, err := db.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Name != "serde" || got.Hash != "abc123" || got.SizeBytes != 4096 {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestUpsertRefreshesOnHashConflict(t *testing.T) {
	db := openTestDB(t)

	first := Entry{Name: "serde", Version: "1.0.0", Hash: "abc123", SizeBytes: 100, Toolchain: "stable"}
	if err := db.Upsert(first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second := Entry{Name: "serde", Version: "1.0.0", Hash: "abc123", SizeBytes: 200, Toolchain: "stable"}
	if err := db.Upsert(second); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	entries, err := db.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single deduplicated row, got %d", len(entries))
	}
	if entries[0].SizeBytes != 200 {
		t.Errorf("expected the conflict update to refresh size_bytes to 200, got %d", entries[0].SizeBytes)
	}
}

func TestByName(t *testing.T) {
	db := openTestDB(t)

	db.Upsert(Entry{Name: "serde", Version: "1.0.0", Hash: "hash-a", Toolchain: "stable"})
	db.Upsert(Entry{Name: "tokio", Version: "1.0.0", Hash: "hash-b", Toolchain: "stable"})

	entries, err := db.ByName("serde")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "serde" {
		t.Errorf("expected exactly one serde entry, got %+v", entries)
	}
}

func TestRemove(t *testing.T) {
	db := openTestDB(t)

	db.Upsert(Entry{Name: "serde", Version: "1.0.0", Hash: "hash-a", Toolchain: "stable"})

	removed, err := db.Remove("hash-a")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Error("expected Remove to report true for an existing hash")
	}

	removed, err = db.Remove("hash-a")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed {
		t.Error("expected a second Remove of the same hash to report false")
	}
}

func TestTotalSize(t *testing.T) {
	db := openTestDB(t)

	db.Upsert(Entry{Name: "a", Hash: "h1", Toolchain: "stable", SizeBytes: 100})
	db.Upsert(Entry{Name: "b", Hash: "h2", Toolchain: "stable", SizeBytes: 250})

	total, err := db.TotalSize()
	if err != nil {
		t.Fatalf("TotalSize: %v", err)
	}
	if total != 350 {
		t.Errorf("got %d, want 350", total)
	}
}

func TestTotalSizeEmpty(t *testing.T) {
	db := openTestDB(t)

	total, err := db.TotalSize()
	if err != nil {
		t.Fatalf("TotalSize: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 for an empty catalog, got %d", total)
	}
}
