package render

import (
	"strings"

	"github.com/Alb-O/ripdoc/internal/rerr"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/selection"
)

// Format selects the renderer's output shape.
type Format int

const (
	FormatRust Format = iota
	FormatMarkdown
)

// Options configures one render pass, per §4.3.
type Options struct {
	Format             Format
	RenderAutoImpls    bool
	RenderPrivateItems bool
	RenderSourceLabels bool
	Filter             string
	Plain              bool
	SourceRoot         string
	InitialCurrentFile string
	Selection          *selection.RenderSelection // nil = render everything, no filtering
	Visited            *VisitedSet                // nil = private to this render pass
}

const gapMarker = "// ..."

// FilterMatch classifies how a filter string relates to a candidate path,
// per §4.3's filter semantics.
type filterMatch int

const (
	filterHit filterMatch = iota
	filterPrefix
	filterSuffix
	filterMiss
)

// gapState tracks whether a gap marker is owed before the next rendered
// child.
type gapState int

const (
	gapClear gapState = iota
	gapPending
)

// renderState is the mutable context threaded through one render pass,
// grounded on render/state.rs::RenderState.
type renderState struct {
	cd      *rustdoc.CrateData
	opts    *Options
	visited map[rustdoc.ItemID]bool // module/impl-exempt local visited bookkeeping for THIS pass
	shared  *VisitedSet             // cross-pass shared set, checked for non-module/impl items

	filterMatched bool
	gap           gapState
	currentFile   string
}

func newRenderState(cd *rustdoc.CrateData, opts *Options) *renderState {
	rs := &renderState{
		cd:          cd,
		opts:        opts,
		visited:     map[rustdoc.ItemID]bool{},
		shared:      opts.Visited,
		currentFile: opts.InitialCurrentFile,
	}
	return rs
}

func (rs *renderState) selectionActive() bool { return rs.opts.Selection != nil }

func (rs *renderState) selectionContextContains(id rustdoc.ItemID) bool {
	if !rs.selectionActive() {
		return true
	}
	return rs.opts.Selection.Context.Has(id)
}

func (rs *renderState) selectionMatches(id rustdoc.ItemID) bool {
	if !rs.selectionActive() {
		return false
	}
	return rs.opts.Selection.Matches.Has(id)
}

func (rs *renderState) selectionExpands(id rustdoc.ItemID) bool {
	if !rs.selectionActive() {
		return true
	}
	return rs.opts.Selection.Expanded.Has(id)
}

func (rs *renderState) selectionIsFullSource(id rustdoc.ItemID) bool {
	if !rs.selectionActive() {
		return false
	}
	return rs.opts.Selection.FullSource.Has(id)
}

func (rs *renderState) selectionAllowsChild(parentID, childID rustdoc.ItemID) bool {
	if !rs.selectionActive() {
		return true
	}
	return rs.selectionExpands(parentID) || rs.selectionContextContains(childID)
}

func (rs *renderState) markSkipped() {
	if rs.selectionActive() {
		rs.gap = gapPending
	}
}

func (rs *renderState) clearPendingGap() { rs.gap = gapClear }

func (rs *renderState) shouldEmitGap() bool {
	return rs.selectionActive() && rs.gap == gapPending
}

func endsWithGap(output string) bool {
	trimmed := strings.TrimRight(output, "\n")
	idx := strings.LastIndexByte(trimmed, '\n')
	last := trimmed[idx+1:]
	return strings.TrimLeft(last, " \t") == gapMarker
}

func startsWithGap(output string) bool {
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return strings.TrimLeft(line, " \t") == gapMarker
	}
	return false
}

func dedupGapMarkers(output string) string {
	var out strings.Builder
	inGapBlock := false
	emittedBlankAfterGap := false
	lines := strings.Split(output, "\n")
	// strings.Split on input ending in \n produces a trailing "" element;
	// drop it so the loop mirrors Rust's .lines() iterator exactly.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for _, line := range lines {
		isGap := strings.TrimLeft(line, " \t") == gapMarker
		isBlank := strings.TrimSpace(line) == ""

		if isGap {
			if inGapBlock {
				continue
			}
			inGapBlock = true
			emittedBlankAfterGap = false
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		if inGapBlock {
			if isBlank {
				if emittedBlankAfterGap {
					continue
				}
				emittedBlankAfterGap = true
				out.WriteString(line)
				out.WriteByte('\n')
				continue
			}
			inGapBlock = false
		}

		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}

// gapController centralizes gap marker insertion, grounded on
// render/state.rs::GapController.
type gapController struct {
	indent string
}

func newGapController(indent string) gapController { return gapController{indent: indent} }

func (g gapController) emitIfNeeded(rs *renderState, output *strings.Builder, nextBlock string) {
	if !rs.shouldEmitGap() {
		return
	}
	if !endsWithGap(output.String()) && !startsWithGap(nextBlock) {
		output.WriteString(g.indent)
		output.WriteString(gapMarker)
		output.WriteByte('\n')
	}
	rs.gap = gapClear
}

// ppush joins a path prefix and a name with `::`.
func ppush(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "::" + name
}

func (rs *renderState) shouldFilter(pathPrefix string, it *rustdoc.Item) bool {
	if it.ID == rs.cd.Root {
		return false
	}
	if rs.opts.Filter == "" {
		return false
	}
	switch rs.filterMatch(pathPrefix, it) {
	case filterHit:
		rs.filterMatched = true
		return false
	case filterPrefix, filterSuffix:
		return false
	default:
		return true
	}
}

func (rs *renderState) filterMatch(pathPrefix string, it *rustdoc.Item) filterMatch {
	if it.Name == nil {
		return filterPrefix
	}
	itemPath := ppush(pathPrefix, *it.Name)
	filterComponents := strings.Split(rs.opts.Filter, "::")
	itemComponents := strings.Split(itemPath, "::")
	if len(itemComponents) > 0 {
		itemComponents = itemComponents[1:] // skip crate-root segment
	}

	if equalSlices(filterComponents, itemComponents) {
		return filterHit
	}
	if hasPrefix(filterComponents, itemComponents) {
		return filterPrefix
	}
	if hasPrefix(itemComponents, filterComponents) {
		return filterSuffix
	}
	return filterMiss
}

func (rs *renderState) shouldModuleDoc(pathPrefix string, it *rustdoc.Item) bool {
	if rs.opts.Filter == "" {
		return true
	}
	m := rs.filterMatch(pathPrefix, it)
	return m == filterHit || m == filterSuffix
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPrefix(longer, prefix []string) bool {
	if len(prefix) > len(longer) {
		return false
	}
	for i := range prefix {
		if longer[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (rs *renderState) isVisible(it *rustdoc.Item) bool {
	return it.Visibility.RenderVisible(rs.opts.RenderPrivateItems)
}

// filterNotMatchedErr surfaces §7's FilterNotMatched signal.
func (rs *renderState) filterNotMatchedErr() error {
	if rs.opts.Filter != "" && !rs.filterMatched {
		return rerr.FilterNotMatchedErr(rs.opts.Filter)
	}
	return nil
}
