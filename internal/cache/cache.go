// Package cache implements the §6 cache contract: a content-addressed,
// zstd-compressed store of decoded CrateData, keyed by the extraction
// parameters that produced it (manifest path, package identity, feature
// selection, visibility flag, toolchain version). Adapted from the
// teacher's internal/cas/cas.go, generalized from markdown-string blobs to
// gob-encoded CrateData and from a global package to an instance so tests
// don't fight over a shared package-level directory.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/Alb-O/ripdoc/internal/config"
	"github.com/Alb-O/ripdoc/internal/rerr"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

// Key identifies one extraction's cacheable result. Features is sorted and
// deduplicated by NewKey so two requests differing only in flag order still
// hit the same entry.
type Key struct {
	ManifestPath  string
	PackageSpec   string // "name@version"
	Features      []string
	IncludePrivate bool
	Toolchain     string
}

// NewKey builds a Key with Features sorted, per §6's key definition.
func NewKey(manifestPath, packageSpec string, features []string, includePrivate bool, toolchain string) Key {
	sorted := append([]string(nil), features...)
	sort.Strings(sorted)
	return Key{
		ManifestPath:   manifestPath,
		PackageSpec:    packageSpec,
		Features:       sorted,
		IncludePrivate: includePrivate,
		Toolchain:      toolchain,
	}
}

// Hash returns the sha256 hex digest identifying this key, also used by
// internal/cachedb to key its catalog rows against the same blob.
func (k Key) Hash() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%s\n%t\n%s", k.ManifestPath, k.PackageSpec, strings.Join(k.Features, ","), k.IncludePrivate, k.Toolchain)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(b.String())))
}

// Cache is a directory-backed CrateData store.
type Cache struct {
	dir string
}

// New opens a Cache rooted at config.CASDir().
func New() *Cache {
	return &Cache{dir: config.CASDir()}
}

// NewAt opens a Cache rooted at an explicit directory, for tests.
func NewAt(dir string) *Cache {
	return &Cache{dir: dir}
}

// path returns the sharded file path for a key: <dir>/<first2>/<rest>.gob.zst
func (c *Cache) path(k Key) string {
	return c.pathForHash(k.Hash())
}

func (c *Cache) pathForHash(h string) string {
	return filepath.Join(c.dir, h[:2], h[2:]+".gob.zst")
}

// RemoveByHash deletes the blob stored under a key's hash, for "ripdoc
// cache gc" - cachedb catalogs entries by this same hash, so the two
// stores stay in sync under one removal call.
func (c *Cache) RemoveByHash(hash string) error {
	if len(hash) < 2 {
		return rerr.New(rerr.Io, "invalid cache hash")
	}
	if err := os.Remove(c.pathForHash(hash)); err != nil && !os.IsNotExist(err) {
		return rerr.Wrap(rerr.Io, "removing cache blob", err)
	}
	return nil
}

// Get reads cached CrateData, reporting a miss on any absence or decode
// failure. A decode failure also purges the stale entry, per §6's "decode
// failures purge the entry and treat it as a miss".
func (c *Cache) Get(k Key) (*rustdoc.CrateData, bool) {
	p := c.path(k)
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}

	zr, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		c.purge(p)
		return nil, false
	}
	defer zr.Close()

	var cd rustdoc.CrateData
	if err := gob.NewDecoder(zr).Decode(&cd); err != nil {
		c.purge(p)
		return nil, false
	}
	return &cd, true
}

func (c *Cache) purge(p string) {
	_ = os.Remove(p)
}

// Put stores cd under k, compressing with zstd and writing atomically (temp
// file in the shard directory, then rename) so a crash mid-write never
// leaves a corrupt entry to be mistaken for a good one.
func (c *Cache) Put(k Key, cd *rustdoc.CrateData) error {
	p := c.path(k)
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rerr.Wrap(rerr.Io, "creating cache directory", err)
	}

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return rerr.Wrap(rerr.Serialization, "creating zstd writer", err)
	}
	if err := gob.NewEncoder(zw).Encode(cd); err != nil {
		zw.Close()
		return rerr.Wrap(rerr.Serialization, "encoding crate data", err)
	}
	if err := zw.Close(); err != nil {
		return rerr.Wrap(rerr.Serialization, "closing zstd writer", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return rerr.Wrap(rerr.Io, "creating temp cache file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return rerr.Wrap(rerr.Io, "writing temp cache file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return rerr.Wrap(rerr.Io, "closing temp cache file", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		os.Remove(tmpPath)
		return rerr.Wrap(rerr.Io, "renaming temp cache file", err)
	}
	return nil
}
