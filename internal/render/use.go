package render

import (
	"strings"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/sig"
)

// renderUse emits a use statement. Per spec.md §4.5 and the ground-truth
// render_use, a use with a resolved target renders the resolved item(s) in
// place, once, as a single gap-grouped block - this is how the common
// `mod private; pub use private::Thing;` idiom ends up with Thing's own
// declaration actually reachable somewhere in the output, rather than a
// dangling `pub use private::Thing;` pointing at a definition the renderer
// never visits. Only a use that resolves to nothing falls back to literal
// `pub use SOURCE [as ALIAS];` / `pub use SOURCE::*;` text.
func renderUse(rs *renderState, out *strings.Builder, it *rustdoc.Item, pathPrefix string, indent int) {
	u, err := it.AsUse()
	if err != nil {
		return
	}

	if resolution, ok := resolveUse(rs, u); ok {
		renderResolvedUse(rs, out, resolution, pathPrefix, indent)
		return
	}

	out.WriteString(indentStr(indent))
	out.WriteString(useLiteralText(it, u))
	out.WriteByte('\n')
}

// useLiteralText renders the fallback `pub use` form: aliased when the
// bound name differs from the source path's last segment, simple
// otherwise. Grounded on render/items/use_stmt.rs::resolve_alias_use.
func useLiteralText(it *rustdoc.Item, u rustdoc.UseInner) string {
	if u.IsGlob || u.Name == nil {
		return sig.UseSimple(it, u)
	}
	segments := strings.Split(u.Source, "::")
	lastSegment := segments[len(segments)-1]
	if *u.Name == lastSegment {
		return sig.UseSimple(it, u)
	}
	return sig.UseAlias(it, u, sig.EscapeIdent(*u.Name))
}

// useResolution mirrors use_stmt.rs::UseResolution's Items variant: a use
// statement that resolves to one or more already-known item ids, rendered
// at this location instead of emitted as literal text.
type useResolution struct {
	items []rustdoc.ItemID
}

// resolveUse decides whether it resolves to concrete items. ok is false
// when nothing resolved and the caller should fall back to literal text.
func resolveUse(rs *renderState, u rustdoc.UseInner) (useResolution, bool) {
	if u.IsGlob {
		return resolveGlobUse(rs, u)
	}
	if u.ResolvedID != nil {
		if _, ok := rs.cd.Get(*u.ResolvedID); ok {
			return useResolution{items: []rustdoc.ItemID{*u.ResolvedID}}, true
		}
	}
	return useResolution{}, false
}

// resolveGlobUse expands a glob whose source resolves to a module or enum
// into its visible children/variants. Grounded on use_stmt.rs's
// resolve_glob_use: the candidate list is filtered by the ordinary
// visibility policy (not forcePrivate), matching the original's use of
// plain is_visible here rather than the force_private bypass applied when
// the members are actually rendered.
func resolveGlobUse(rs *renderState, u rustdoc.UseInner) (useResolution, bool) {
	if u.ResolvedID == nil {
		return useResolution{}, false
	}
	source, ok := rs.cd.Get(*u.ResolvedID)
	if !ok {
		return useResolution{}, false
	}

	var candidates []rustdoc.ItemID
	switch source.Kind {
	case rustdoc.KindModule:
		m, err := source.AsModule()
		if err != nil {
			return useResolution{}, false
		}
		candidates = m.Children
	case rustdoc.KindEnum:
		e, err := source.AsEnum()
		if err != nil {
			return useResolution{}, false
		}
		candidates = e.Variants
	default:
		return useResolution{}, false
	}

	var items []rustdoc.ItemID
	for _, id := range candidates {
		child, ok := rs.cd.Get(id)
		if ok && rs.isVisible(child) {
			items = append(items, id)
		}
	}
	return useResolution{items: items}, true
}

// renderResolvedUse renders every member of a resolved use-expansion as a
// single gap-grouped block: members skipped before the first rendered one
// contribute to the group's own pending-gap signal, but once any member has
// rendered, later skips inside the group never emit an internal marker -
// grounded on use_stmt.rs's Items branch ("we don't emit gap markers
// between items that originated from the same use").
func renderResolvedUse(rs *renderState, out *strings.Builder, resolution useResolution, pathPrefix string, indent int) {
	gc := newGapController(indentStr(indent))
	anyRendered := false

	for _, id := range resolution.items {
		item, ok := rs.cd.Get(id)
		if !ok {
			continue
		}
		body, rendered := computeItemBody(rs, item, pathPrefix, indent, true)
		if rendered {
			gc.emitIfNeeded(rs, out, body)
			out.WriteString(body)
			anyRendered = true
		} else if !anyRendered {
			rs.markSkipped()
		}
	}
	// Matches the original's unconditional clear at the end of the Items
	// branch: a pending gap from skips inside this group never leaks out
	// as the group's own "something before me was skipped" signal - the
	// caller sees this group as empty (and marks it skipped itself) when
	// nothing rendered, or as a normal non-empty block otherwise.
	rs.clearPendingGap()
}
