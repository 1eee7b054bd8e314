// Package extractor is the §6 "documentation extractor" collaborator: it
// invokes the local Rust toolchain's `cargo rustdoc` to produce rustdoc
// JSON for one manifest, then converts that JSON into the core's
// simplified CrateData shape (internal/rustdoc). Adapted from the
// teacher's internal/docs/fetch.go (subprocess/network invocation, decode,
// hand result to a parser) generalized from an HTTP GET against docs.rs to
// a local subprocess invocation against the workspace's own toolchain -
// ripdoc documents local crates, not published ones.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Alb-O/ripdoc/internal/rerr"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

// Options mirrors §6's extractor input: a manifest path, feature
// selection, the private-items flag, a quiet flag, and an optional named
// target (binary name; empty selects the library target).
type Options struct {
	ManifestPath      string
	Features          []string
	AllFeatures       bool
	NoDefaultFeatures bool
	PrivateItems      bool
	Quiet             bool
	Target            string // binary name, or "" for the lib target
}

// Extractor produces a CrateData value from one manifest + option set.
type Extractor interface {
	Extract(ctx context.Context, opts Options) (*rustdoc.CrateData, error)
}

// CargoExtractor shells out to `cargo rustdoc` using the nightly unstable
// JSON output format, the only way to obtain rustdoc's structured item
// graph from the command line.
type CargoExtractor struct {
	// CargoPath overrides the `cargo` binary looked up on PATH, mirroring
	// internal/config.ToolchainConfig.Path.
	CargoPath string
}

func (e *CargoExtractor) cargoPath() string {
	if e.CargoPath != "" {
		return e.CargoPath
	}
	return "cargo"
}

// Extract runs cargo rustdoc for opts.ManifestPath and converts the
// resulting JSON into CrateData. Toolchain-missing and compile failures
// both surface as rerr.Generate, per §6's documented failure modes.
func (e *CargoExtractor) Extract(ctx context.Context, opts Options) (*rustdoc.CrateData, error) {
	path, err := exec.LookPath(e.cargoPath())
	if err != nil {
		return nil, rerr.Wrap(rerr.Generate, "cargo not found on PATH", err)
	}

	args := e.buildArgs(opts)
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = filepath.Dir(opts.ManifestPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if opts.Quiet {
		cmd.Stdout = nil
	}

	if err := cmd.Run(); err != nil {
		return nil, rerr.Wrap(rerr.Generate, fmt.Sprintf("cargo rustdoc failed: %s", strings.TrimSpace(stderr.String())), err)
	}

	jsonPath, err := locateOutput(opts)
	if err != nil {
		return nil, rerr.Wrap(rerr.Generate, "locating rustdoc JSON output", err)
	}
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, rerr.Wrap(rerr.Io, "reading rustdoc JSON output", err)
	}

	var rc RawCrate
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, rerr.Wrap(rerr.Serialization, "unmarshaling rustdoc JSON", err)
	}
	return convert(&rc)
}

func (e *CargoExtractor) buildArgs(opts Options) []string {
	args := []string{"rustdoc", "--manifest-path", opts.ManifestPath}
	if opts.Target != "" {
		args = append(args, "--bin", opts.Target)
	} else {
		args = append(args, "--lib")
	}
	if opts.AllFeatures {
		args = append(args, "--all-features")
	}
	if opts.NoDefaultFeatures {
		args = append(args, "--no-default-features")
	}
	if len(opts.Features) > 0 {
		args = append(args, "--features", strings.Join(opts.Features, ","))
	}
	args = append(args, "--", "-Z", "unstable-options", "--output-format", "json")
	if opts.PrivateItems {
		args = append(args, "--document-private-items")
	}
	return args
}

// locateOutput finds the JSON file cargo rustdoc wrote: <target-dir>/doc/<crate>.json.
func locateOutput(opts Options) (string, error) {
	targetDir := filepath.Join(filepath.Dir(opts.ManifestPath), "target", "doc")
	crateName, err := ManifestPackageName(opts.ManifestPath)
	if err != nil {
		return "", err
	}
	p := filepath.Join(targetDir, strings.ReplaceAll(crateName, "-", "_")+".json")
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("expected rustdoc output at %s: %w", p, err)
	}
	return p, nil
}

// ManifestPackageName does a minimal scrape of Cargo.toml's [package] name
// field, avoiding a full TOML dependency for this one lookup - the rest of
// the manifest's structure is irrelevant to locating rustdoc's output file.
func ManifestPackageName(manifestPath string) (string, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("reading manifest: %w", err)
	}
	inPackage := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			inPackage = line == "[package]"
			continue
		}
		if !inPackage || !strings.HasPrefix(line, "name") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[1])
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("no [package] name found in %s", manifestPath)
}
