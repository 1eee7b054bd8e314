package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Alb-O/ripdoc/internal/cache"
	"github.com/Alb-O/ripdoc/internal/cachedb"
	"github.com/Alb-O/ripdoc/internal/config"
	"github.com/Alb-O/ripdoc/internal/extractor"
	"github.com/Alb-O/ripdoc/internal/index"
	"github.com/Alb-O/ripdoc/internal/rerr"
	"github.com/Alb-O/ripdoc/internal/resolve"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/sig"
	"github.com/Alb-O/ripdoc/internal/skelebuild"
)

// crateLoader is the out-of-scope "crate acquisition" collaborator §6
// leaves to the caller: given a target spec, find its manifest, extract or
// load cached CrateData, build a search index, and hand back a
// skelebuild.Crate. Shared by the skelebuild rebuild planner, the search
// and render commands, and the MCP server (internal/mcpserver.Server).
type crateLoader struct {
	cfg   *config.Config
	cache *cache.Cache
	db    *cachedb.DB // optional catalog; nil disables cataloguing
	ex    extractor.Extractor

	mu     sync.Mutex
	loaded map[string]skelebuild.Crate // keyed by package root
}

func newCrateLoader(cfg *config.Config, db *cachedb.DB) *crateLoader {
	cargoPath := cfg.Toolchain.Path
	if cargoPath == "" {
		cargoPath = cfg.Toolchain.Name
	}
	return &crateLoader{
		cfg:    cfg,
		cache:  cache.New(),
		db:     db,
		ex:     &extractor.CargoExtractor{CargoPath: cargoPath},
		loaded: make(map[string]skelebuild.Crate),
	}
}

// Load resolves targetSpec into its owning crate, per the skelebuild.CrateLoader
// contract: targetSpec is "<path-or-crate>::<item-path>" or a bare item
// path resolved against the manifest nearest the working directory.
func (l *crateLoader) Load(targetSpec string) (skelebuild.Crate, error) {
	pathPart, _ := splitTargetSpec(targetSpec)
	start := pathPart
	if start == "" {
		start = "."
	}

	manifestPath, pkgRoot, err := extractor.FindManifest(start)
	if err != nil {
		return skelebuild.Crate{}, rerr.Wrap(rerr.ManifestParse, fmt.Sprintf("locating Cargo.toml for %q", targetSpec), err)
	}

	l.mu.Lock()
	if c, ok := l.loaded[pkgRoot]; ok {
		l.mu.Unlock()
		return c, nil
	}
	l.mu.Unlock()

	crateName, err := extractor.ManifestPackageName(manifestPath)
	if err != nil {
		return skelebuild.Crate{}, rerr.Wrap(rerr.ManifestParse, "reading package name", err)
	}

	cd, err := l.loadCrateData(manifestPath, crateName)
	if err != nil {
		return skelebuild.Crate{}, err
	}

	ix := index.Build(cd, l.cfg.Render.PrivateItems, sig.Render)
	c := skelebuild.Crate{
		PkgRoot:   pkgRoot,
		Data:      cd,
		Index:     ix,
		CrateName: crateName,
		IsLocal:   localTo(pkgRoot),
	}

	l.mu.Lock()
	l.loaded[pkgRoot] = c
	l.mu.Unlock()
	return c, nil
}

func (l *crateLoader) loadCrateData(manifestPath, crateName string) (*rustdoc.CrateData, error) {
	toolchain := l.cfg.Toolchain.Name
	key := cache.NewKey(manifestPath, crateName, l.cfg.Features.Default, l.cfg.Render.PrivateItems, toolchain)
	if cd, ok := l.cache.Get(key); ok {
		return cd, nil
	}

	cd, err := l.ex.Extract(context.Background(), extractor.Options{
		ManifestPath:      manifestPath,
		Features:          l.cfg.Features.Default,
		AllFeatures:       l.cfg.Features.AllFeatures,
		NoDefaultFeatures: l.cfg.Features.NoDefaultFeatures,
		PrivateItems:      l.cfg.Render.PrivateItems,
	})
	if err != nil {
		return nil, err
	}

	if err := l.cache.Put(key, cd); err != nil {
		return nil, err
	}
	if l.db != nil {
		_ = l.db.Upsert(cachedb.Entry{
			Name:         crateName,
			Version:      cd.PackageVersion,
			FeatureFlags: strings.Join(l.cfg.Features.Default, ","),
			PrivateItems: l.cfg.Render.PrivateItems,
			Toolchain:    toolchain,
			Hash:         key.Hash(),
		})
	}
	return cd, nil
}

// localTo builds an IsLocalFunc scoped to one package root: a search
// result is local when its recorded source file lives under pkgRoot.
func localTo(pkgRoot string) resolve.IsLocalFunc {
	abs, err := filepath.Abs(pkgRoot)
	if err != nil {
		abs = pkgRoot
	}
	return func(r index.SearchResult) bool {
		if r.SourceFile == "" {
			return false
		}
		f := r.SourceFile
		if !filepath.IsAbs(f) {
			f = filepath.Join(abs, f)
		}
		rel, err := filepath.Rel(abs, f)
		if err != nil {
			return false
		}
		return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
	}
}

// splitTargetSpec separates a target spec's leading path component (a
// filesystem path to a crate or manifest file) from its item path, the
// same "::"-delimited convention the original implementation's
// cargo_utils::target::Target::parse uses. The longest existing-path
// prefix wins; if none exists, the whole spec is treated as a bare item
// path resolved against the nearest ancestor manifest.
func splitTargetSpec(spec string) (pathPart, itemPath string) {
	segs := strings.Split(spec, "::")
	for i := len(segs); i > 0; i-- {
		candidate := strings.Join(segs[:i], "::")
		if pathExists(candidate) {
			return candidate, strings.Join(segs[i:], "::")
		}
	}
	return "", spec
}

func pathExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
