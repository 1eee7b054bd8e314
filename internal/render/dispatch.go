package render

import (
	"fmt"
	"strings"

	"github.com/Alb-O/ripdoc/internal/rlog"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/sig"
	"github.com/Alb-O/ripdoc/internal/source"
)

// Render drives one top-down pass over cd starting at its crate root,
// producing the skeleton text described by opts. Grounded on the original
// implementation's render/core.rs::Renderer::render / render_ext and
// render/items/mod.rs::render_item.
func Render(cd *rustdoc.CrateData, opts Options) (string, error) {
	text, _, err := RenderExt(cd, opts)
	return text, err
}

// RenderExt is Render plus the final current-source-file tracked during
// the pass, so a caller chaining multiple render passes into one document
// (skelebuild's rebuild) can carry source-label continuity across calls
// via the next pass's InitialCurrentFile.
func RenderExt(cd *rustdoc.CrateData, opts Options) (string, string, error) {
	rs := newRenderState(cd, &opts)

	root, ok := cd.Get(cd.Root)
	if !ok {
		return "", "", fmt.Errorf("render: crate root %q not found", cd.Root)
	}

	var out strings.Builder
	renderItem(rs, &out, root, "", 0)

	if err := rs.filterNotMatchedErr(); err != nil {
		return "", "", err
	}

	text := dedupGapMarkers(out.String())
	if opts.Format == FormatMarkdown {
		text = toMarkdown(text)
	} else {
		text = formatRust(text)
	}
	return text, rs.currentFile, nil
}

func indentStr(level int) string { return strings.Repeat("\t", level) }

// renderItem is the central dispatcher: it applies visibility, filter,
// selection and visited-set gating uniformly before delegating to a
// per-kind emitter, and owns source-label and gap-marker bookkeeping
// around the call. forcePrivate is false for every ordinary tree-walk
// call; it is only set by renderResolvedUse, whose group members must
// render regardless of their own visibility once reached through a
// public re-export, matching the original implementation's render_item
// force_private parameter.
func renderItem(rs *renderState, out *strings.Builder, it *rustdoc.Item, pathPrefix string, indent int) {
	renderItemForced(rs, out, it, pathPrefix, indent, false)
}

func renderItemForced(rs *renderState, out *strings.Builder, it *rustdoc.Item, pathPrefix string, indent int, forcePrivate bool) {
	body, ok := computeItemBody(rs, it, pathPrefix, indent, forcePrivate)
	if !ok {
		rs.markSkipped()
		return
	}
	gc := newGapController(indentStr(indent))
	gc.emitIfNeeded(rs, out, body)
	out.WriteString(body)
	rs.clearPendingGap()
}

// computeItemBody performs the full per-item gating (visibility, filter,
// selection context, visited dedup) and per-kind dispatch, returning the
// item's rendered text with no gap-marker side effects of its own -
// renderResolvedUse calls this directly, for each member of a resolved
// use-expansion group, so the group can apply a single gap-marker unit
// around its whole block instead of one per member (§9's "glob expansion
// as group" design note).
func computeItemBody(rs *renderState, it *rustdoc.Item, pathPrefix string, indent int, forcePrivate bool) (string, bool) {
	if !forcePrivate && !rs.isVisible(it) {
		return "", false
	}
	if rs.shouldFilter(pathPrefix, it) {
		return "", false
	}
	if !rs.selectionContextContains(it.ID) {
		return "", false
	}

	exempt := it.Kind == rustdoc.KindModule || it.Kind == rustdoc.KindImpl
	if !exempt {
		// Per-pass dedup, always active within a single Render call -
		// grounded on render/items/mod.rs::render_item's unconditional
		// `state.visited` check, distinct from the optional cross-call
		// rs.shared handle used by skelebuild groups (§5).
		if rs.visited[it.ID] {
			return "", false
		}
		if rs.shared != nil && !rs.shared.Insert(it.ID) {
			return "", false
		}
	}

	var body strings.Builder
	emitSourceLabel(rs, &body, it, indent)

	if rs.selectionIsFullSource(it.ID) && it.Span != nil {
		if emitFullSource(rs, &body, it, indent) {
			if !exempt {
				rs.visited[it.ID] = true
			}
			return body.String(), true
		}
	}

	switch it.Kind {
	case rustdoc.KindModule:
		renderModule(rs, &body, it, pathPrefix, indent)
	case rustdoc.KindStruct:
		renderStruct(rs, &body, it, indent)
	case rustdoc.KindEnum:
		renderEnum(rs, &body, it, indent)
	case rustdoc.KindUnion:
		renderUnion(rs, &body, it, indent)
	case rustdoc.KindTrait:
		renderTrait(rs, &body, it, indent)
	case rustdoc.KindTraitAlias:
		renderTraitAlias(rs, &body, it, indent)
	case rustdoc.KindImpl:
		renderImpl(rs, &body, it, indent)
	case rustdoc.KindFunction, rustdoc.KindMethod:
		renderFunction(rs, &body, it, indent)
	case rustdoc.KindConstant, rustdoc.KindAssocConst:
		renderConstant(rs, &body, it, indent)
	case rustdoc.KindStatic:
		renderStatic(rs, &body, it, indent)
	case rustdoc.KindTypeAlias, rustdoc.KindAssocType:
		renderTypeAlias(rs, &body, it, indent)
	case rustdoc.KindMacro:
		renderMacro(rs, &body, it, indent)
	case rustdoc.KindProcMacro:
		renderProcMacro(rs, &body, it, indent)
	case rustdoc.KindUse:
		renderUse(rs, &body, it, pathPrefix, indent)
	default:
		// struct fields, enum variants, and other body-only kinds are
		// rendered by their container, never reached directly here.
	}

	if body.Len() == 0 {
		return "", false
	}
	if !exempt {
		rs.visited[it.ID] = true
	}
	return body.String(), true
}

// emitSourceLabel writes a `// ripdoc:source: <path>` comment when the
// item's originating file differs from the last one emitted, per §4.3.
// Suppressed for use items and, in plain mode, for module headers.
func emitSourceLabel(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	if !rs.opts.RenderSourceLabels || it.Span == nil {
		return
	}
	if it.Kind == rustdoc.KindUse {
		return
	}
	if rs.opts.Plain && it.Kind == rustdoc.KindModule {
		return
	}
	if it.Span.Filename == rs.currentFile {
		return
	}
	rs.currentFile = it.Span.Filename
	out.WriteString(indentStr(indent))
	out.WriteString(fmt.Sprintf("// ripdoc:source: %s\n", it.Span.Filename))
}

// emitFullSource attempts to satisfy a full-source selection by extracting
// the item's original text verbatim. It reports false when the extracted
// text doesn't look like a standalone item, so the caller falls back to
// the normal skeleton emitter instead of embedding a dangling fragment.
func emitFullSource(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) bool {
	text, err := source.Extract(it.Span, rs.opts.SourceRoot)
	if err != nil || text == "" {
		return false
	}
	if !extractedSourceLooksLikeItem(text) {
		return false
	}
	prefix := indentStr(indent)
	for _, line := range strings.Split(text, "\n") {
		out.WriteString(prefix)
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return true
}

// extractedSourceLooksLikeItem is a conservative heuristic: a verbatim
// source span is safe to embed only if its first non-blank, non-attribute,
// non-comment line starts with a recognizable item keyword.
func extractedSourceLooksLikeItem(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") {
			continue
		}
		return startsWithItemKeyword(t) || strings.HasPrefix(t, "r#")
	}
	return false
}

func startsWithItemKeyword(s string) bool {
	for _, kw := range []string{
		"pub ", "pub(", "impl ", "impl<", "fn ", "async fn ", "const fn ",
		"unsafe fn ", "struct ", "enum ", "union ", "trait ", "type ",
		"const ", "static ", "use ", "mod ", "macro_rules!",
	} {
		if strings.HasPrefix(s, kw) {
			return true
		}
	}
	return false
}

func warnFormatFailure(context string, err error) {
	if rlog.WarnFormatEnabled() {
		rlog.Printf("best-effort format pass skipped for %s: %v", context, err)
	}
}

func docBlock(it *rustdoc.Item, indent int) string {
	d := sig.DocComment(it)
	if d == "" {
		return ""
	}
	if indent == 0 {
		return d
	}
	prefix := indentStr(indent)
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(d, "\n"), "\n") {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
