package skelebuild

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/Alb-O/ripdoc/internal/index"
	"github.com/Alb-O/ripdoc/internal/render"
	"github.com/Alb-O/ripdoc/internal/resolve"
	"github.com/Alb-O/ripdoc/internal/rlog"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/selection"
)

// Crate bundles everything rebuild needs about one resolved package root:
// its parsed item graph, a built search index, its declared crate name,
// and a locality predicate scoped to that package root.
type Crate struct {
	PkgRoot   string
	Data      *rustdoc.CrateData
	Index     *index.Index
	CrateName string
	IsLocal   resolve.IsLocalFunc
}

// CrateLoader resolves one target spec's crate collaborator, out of
// scope here (§6): acquiring the crate, invoking the extractor, and
// caching the result belongs to the caller. Rebuild only asks "what crate
// does this path belong to" and groups consecutive same-root targets to
// avoid redundant loads and choppy output.
type CrateLoader interface {
	Load(targetPath string) (Crate, error)
}

// group is one contiguous run of same-root targets, or a single
// injection/raw-source entry, in the order they'll be emitted.
type group struct {
	pkgRoot string
	targets []Entry
	entry   *Entry // set for injection/raw-source groups
}

// BuildOutput assembles the final document text from st's entries,
// without writing it to disk. Per-entry and per-target failures are
// logged and skipped rather than aborting the whole build, matching the
// original's error-tolerant rebuild loop.
func BuildOutput(st State, loader CrateLoader) (string, error) {
	var sf singleflight.Group
	crates := map[string]Crate{}

	loadCached := func(targetPath string) (Crate, error) {
		v, err, _ := sf.Do(targetPath, func() (any, error) {
			return loader.Load(targetPath)
		})
		if err != nil {
			return Crate{}, err
		}
		c := v.(Crate)
		crates[c.PkgRoot] = c
		return c, nil
	}

	groups := groupEntries(st.Entries)

	var out strings.Builder
	var currentFile string
	hadErrors := false

	for _, g := range groups {
		switch {
		case g.entry != nil && g.entry.Kind == EntryInjection:
			ensureBlockSep(&out)
			out.WriteString(g.entry.Content)
			ensureBlockSep(&out)

		case g.entry != nil && g.entry.Kind == EntryRawSource:
			ensureBlockSep(&out)
			if err := renderRawSource(&out, *g.entry); err != nil {
				hadErrors = true
				rlog.Printf("raw source render failed for %q: %v", g.entry.File, err)
			}
			ensureBlockSep(&out)

		default:
			crate, ok := crates[g.pkgRoot]
			if !ok {
				var err error
				if len(g.targets) == 0 {
					continue
				}
				crate, err = loadCached(g.targets[0].Path)
				if err != nil {
					hadErrors = true
					rlog.Printf("failed to load crate for %q: %v", g.targets[0].Path, err)
					continue
				}
			}
			rendered, newFile, err := renderGroup(crate, g.targets, st.Plain, currentFile)
			if err != nil {
				hadErrors = true
				rlog.Printf("failed to render group in %q: %v", g.pkgRoot, err)
				continue
			}
			ensureBlockSep(&out)
			out.WriteString(rendered)
			currentFile = newFile
		}
	}

	if hadErrors {
		rlog.Printf("completed with errors; output may be incomplete")
	}
	return out.String(), nil
}

// Rebuild writes BuildOutput's result to st.OutputPath (default
// skeleton.md).
func Rebuild(st State, loader CrateLoader) error {
	output, err := BuildOutput(st, loader)
	if err != nil {
		return err
	}
	path := st.OutputPath
	if path == "" {
		path = "skeleton.md"
	}
	return os.WriteFile(path, []byte(output), 0o644)
}

func groupEntries(entries []Entry) []group {
	var groups []group
	for _, e := range entries {
		e := e
		switch e.Kind {
		case EntryTarget:
			// targets are grouped by package root lazily, during render,
			// since the root isn't known until the loader resolves the
			// path; here we group consecutive raw Target entries together
			// and let renderGroup subdivide by resolved root if needed.
			if n := len(groups); n > 0 && groups[n-1].entry == nil {
				groups[n-1].targets = append(groups[n-1].targets, e)
				continue
			}
			groups = append(groups, group{targets: []Entry{e}})
		default:
			groups = append(groups, group{entry: &e})
		}
	}
	return groups
}

// ensureBlockSep guarantees a blank-line separator before the next block,
// per the original's ensure_markdown_block_sep.
func ensureBlockSep(out *strings.Builder) {
	s := out.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	if strings.HasSuffix(s, "\n") {
		out.WriteByte('\n')
	} else {
		out.WriteString("\n\n")
	}
}

func renderRawSource(out *strings.Builder, raw Entry) error {
	content, err := os.ReadFile(raw.File)
	if err != nil {
		return err
	}
	lines := strings.Split(string(content), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	start, end := raw.StartLine, raw.EndLine
	if start == 0 && end == 0 {
		start, end = 1, maxInt(len(lines), 1)
	}
	if len(lines) == 0 {
		fmt.Fprintf(out, "### Raw source: %s\n\n```rust\n```\n", raw.File)
		return nil
	}
	if start == 0 || end == 0 {
		return fmt.Errorf("raw source line numbers are 1-based (must be >= 1)")
	}
	if start > end {
		return fmt.Errorf("raw source line range is invalid: start (%d) > end (%d)", start, end)
	}
	if start > len(lines) {
		return fmt.Errorf("raw source start line %d exceeds file length (%d lines): %s", start, len(lines), raw.File)
	}
	if end > len(lines) {
		end = len(lines)
	}

	fmt.Fprintf(out, "### Raw source: %s:%d:%d\n\n", raw.File, start, end)
	out.WriteString("```rust\n")
	out.WriteString(strings.Join(lines[start-1:end], "\n"))
	out.WriteString("\n```\n")
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// renderGroup renders every target in targets against one resolved crate,
// accumulating a single selection across the whole group the way the
// original builds one render_selection per crate group rather than one
// per target, so shared ancestors/impls only render once.
func renderGroup(crate Crate, targets []Entry, plain bool, initialCurrentFile string) (string, string, error) {
	var matched []rustdoc.ItemID
	fullSource := selection.IDSet{}
	var rawFiles []string

	for _, t := range targets {
		m, err := resolve.ValidateAddTarget(crate.Index, crate.Data, crate.CrateName, crate.PkgRoot, t.Path, crate.IsLocal, false, false)
		if err != nil {
			rlog.Printf("no matches found for %q: %v", t.Path, err)
			continue
		}
		id := m.Result.ItemID
		if m.HasImpl {
			id = m.ImplID
			fullSource.Add(m.ImplID)
		}
		matched = append(matched, id)

		if t.RawSourceFlag {
			if it, ok := crate.Data.Get(m.Result.ItemID); ok && it.Span != nil {
				rawFiles = append(rawFiles, it.Span.Filename)
			}
		}

		if t.Implementation {
			addImplementationSpans(crate, m.Result, fullSource)
		}
	}

	var out strings.Builder
	for _, f := range dedupStringsKeepOrder(rawFiles) {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(crate.PkgRoot, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			rlog.Printf("source not found at %q: %v", path, err)
			continue
		}
		fmt.Fprintf(&out, "// ripdoc:source: %s\n\n%s\n\n", f, string(content))
	}

	if len(matched) == 0 && len(fullSource) == 0 && out.Len() == 0 {
		rlog.Printf("no renderable targets found in this section")
	}

	sel := selection.Build(crate.Data, crate.Index, matched, true, fullSource)
	text, finalFile, err := render.RenderExt(crate.Data, render.Options{
		Format:             render.FormatMarkdown,
		RenderPrivateItems: false,
		RenderSourceLabels: true,
		Plain:              plain,
		SourceRoot:         crate.PkgRoot,
		InitialCurrentFile: initialCurrentFile,
		Selection:          sel,
		Visited:            render.NewVisitedSet(),
	})
	if err != nil {
		return "", "", err
	}
	out.WriteString(text)
	return out.String(), finalFile, nil
}

// addImplementationSpans pulls a matched type's (or function's) full body
// into fullSource, preferring whole impl blocks local to the package root
// over individual method spans, then adds every local descendant path
// under the matched item so the whole subtree participates in the
// selection.
func addImplementationSpans(crate Crate, base index.SearchResult, fullSource selection.IDSet) {
	switch base.Kind {
	case rustdoc.KindFunction, rustdoc.KindMethod:
		fullSource.Add(base.ItemID)
		return
	}

	it, ok := crate.Data.Get(base.ItemID)
	if !ok {
		return
	}
	var implIDs []rustdoc.ItemID
	switch it.Kind {
	case rustdoc.KindStruct:
		if s, err := it.AsStruct(); err == nil {
			implIDs = s.Impls
		}
	case rustdoc.KindEnum:
		if e, err := it.AsEnum(); err == nil {
			implIDs = e.Impls
		}
	case rustdoc.KindUnion:
		if u, err := it.AsUnion(); err == nil {
			implIDs = u.Impls
		}
	case rustdoc.KindTrait:
		if t, err := it.AsTrait(); err == nil {
			implIDs = t.Items
		}
	}
	for _, implID := range implIDs {
		implItem, ok := crate.Data.Get(implID)
		if !ok || implItem.Span == nil {
			continue
		}
		if crate.IsLocal(index.SearchResult{IndexEntry: index.IndexEntry{ItemID: implID}}) {
			fullSource.Add(implID)
		}
	}

	prefix := base.PathString + "::"
	for _, entry := range crate.Index.Entries {
		if !strings.HasPrefix(entry.PathString, prefix) {
			continue
		}
		if !crate.IsLocal(index.SearchResult{IndexEntry: entry}) {
			continue
		}
		if entry.Kind == rustdoc.KindFunction || entry.Kind == rustdoc.KindMethod {
			fullSource.Add(entry.ItemID)
		}
	}
}

func dedupStringsKeepOrder(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
