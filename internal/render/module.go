package render

import (
	"strings"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/sig"
)

// renderModule walks a module's children in declaration order and wraps
// the body in `mod name { ... }`, including at the crate root - the
// original implementation's render_item dispatches the root module
// through the same render_module as any nested one, so `render(tiny) ==
// pub mod tiny { ... }` rather than a bare, unwrapped child list. Under
// Plain, the wrapper (and its doc header) is suppressed entirely and
// children are emitted as a flat list, matching the original's
// `is_plain` branch - used by skelebuild's per-group rendering, where a
// selection snippet shouldn't be reintroduced inside a synthetic
// `mod crate_name { ... }`.
func renderModule(rs *renderState, out *strings.Builder, it *rustdoc.Item, pathPrefix string, indent int) {
	m, err := it.AsModule()
	if err != nil {
		return
	}

	childPrefix := ppush(pathPrefix, derefName(it))
	childIndent := indent
	if !rs.opts.Plain {
		childIndent++
	}

	var body strings.Builder
	for _, childID := range m.Children {
		child, ok := rs.cd.Get(childID)
		if !ok {
			continue
		}
		if !rs.selectionAllowsChild(it.ID, childID) {
			rs.markSkipped()
			continue
		}
		renderItem(rs, &body, child, childPrefix, childIndent)
	}

	if rs.opts.Plain {
		out.WriteString(body.String())
		return
	}

	if rs.shouldModuleDoc(pathPrefix, it) {
		out.WriteString(docBlock(it, indent))
	}
	out.WriteString(indentStr(indent))
	out.WriteString(moduleHeader(it))

	if body.Len() == 0 {
		// empty module still renders as a header, matching the original
		// implementation's "modules never disappear even when hollow".
		out.WriteString(" {}\n")
		return
	}

	out.WriteString(" {\n")
	out.WriteString(body.String())
	out.WriteString(indentStr(indent))
	out.WriteString("}\n")
}

func moduleHeader(it *rustdoc.Item) string {
	vis := ""
	switch it.Visibility.Kind {
	case rustdoc.VisibilityPublic:
		vis = "pub "
	case rustdoc.VisibilityCrate:
		vis = "pub(crate) "
	}
	return vis + "mod " + sig.DisplayName(it)
}

func derefName(it *rustdoc.Item) string {
	if it.Name == nil {
		return ""
	}
	return *it.Name
}
