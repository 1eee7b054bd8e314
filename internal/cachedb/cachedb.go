// Package cachedb keeps a small catalog of the crate cache entries stored
// by internal/cache, for the "ripdoc cache list"/"ripdoc cache gc" family
// of introspection commands. Adapted from the teacher's internal/db/duckdb.go,
// trimmed to a single crates table: no vss extension, no embeddings, no
// semantic backlinks, since ripdoc's search is lexical/regex (§3), not
// embedding-based.
package cachedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// DB wraps the catalog connection.
type DB struct {
	conn *sql.DB
}

// New opens (creating if absent) the catalog database at dbPath.
func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_crate_id START 1;`,
		`CREATE TABLE IF NOT EXISTS crates (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			feature_flags TEXT NOT NULL,
			private_items BOOLEAN NOT NULL,
			toolchain TEXT NOT NULL,
			hash TEXT NOT NULL,
			fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			size_bytes BIGINT NOT NULL,
			UNIQUE(hash)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crates_name ON crates (name)`,
		`CREATE INDEX IF NOT EXISTS idx_crates_hash ON crates (hash)`,
	}
	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("executing %q: %w", q, err)
		}
	}
	return nil
}

// Entry is one catalogued cache blob.
type Entry struct {
	ID            int
	Name          string
	Version       string
	FeatureFlags  string
	PrivateItems  bool
	Toolchain     string
	Hash          string
	FetchedAt     time.Time
	SizeBytes     int64
}

// Upsert records (or refreshes fetched_at/size for) one cache entry,
// keyed by its blob hash.
func (db *DB) Upsert(e Entry) error {
	_, err := db.conn.Exec(
		`INSERT INTO crates (id, name, version, feature_flags, private_items, toolchain, hash, size_bytes)
		 VALUES (nextval('seq_crate_id'), ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (hash) DO UPDATE SET fetched_at = CURRENT_TIMESTAMP, size_bytes = EXCLUDED.size_bytes`,
		e.Name, e.Version, e.FeatureFlags, e.PrivateItems, e.Toolchain, e.Hash, e.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("upserting cache entry: %w", err)
	}
	return nil
}

// List returns every catalogued entry, newest first.
func (db *DB) List() ([]Entry, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, version, feature_flags, private_items, toolchain, hash, fetched_at, size_bytes
		 FROM crates ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Version, &e.FeatureFlags, &e.PrivateItems, &e.Toolchain, &e.Hash, &e.FetchedAt, &e.SizeBytes); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ByName returns every catalogued entry for a given crate name.
func (db *DB) ByName(name string) ([]Entry, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, version, feature_flags, private_items, toolchain, hash, fetched_at, size_bytes
		 FROM crates WHERE name = ? ORDER BY fetched_at DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("querying cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Version, &e.FeatureFlags, &e.PrivateItems, &e.Toolchain, &e.Hash, &e.FetchedAt, &e.SizeBytes); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Remove deletes the catalog row for hash, returning whether one existed.
func (db *DB) Remove(hash string) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM crates WHERE hash = ?`, hash)
	if err != nil {
		return false, fmt.Errorf("removing cache entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking removal result: %w", err)
	}
	return n > 0, nil
}

// TotalSize sums size_bytes across every catalogued entry.
func (db *DB) TotalSize() (int64, error) {
	var total sql.NullInt64
	if err := db.conn.QueryRow(`SELECT SUM(size_bytes) FROM crates`).Scan(&total); err != nil {
		return 0, fmt.Errorf("summing cache size: %w", err)
	}
	return total.Int64, nil
}
