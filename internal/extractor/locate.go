package extractor

import (
	"os"
	"path/filepath"
)

// FindManifest walks up from start (a file or directory) looking for a
// Cargo.toml, the same "nearest ancestor manifest" convention cargo itself
// uses for package discovery. Returns the manifest path and its containing
// directory (the package root).
func FindManifest(start string) (manifestPath, pkgRoot string, err error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", "", err
	}
	dir := abs
	if !info.IsDir() {
		if filepath.Base(abs) == "Cargo.toml" {
			return abs, filepath.Dir(abs), nil
		}
		dir = filepath.Dir(abs)
	}

	for {
		candidate := filepath.Join(dir, "Cargo.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", os.ErrNotExist
		}
		dir = parent
	}
}
