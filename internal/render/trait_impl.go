package render

import (
	"fmt"
	"strings"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/sig"
)

// renderTrait emits a trait declaration with its associated items.
func renderTrait(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	t, err := it.AsTrait()
	if err != nil {
		return
	}
	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	out.WriteString(sig.TraitHeader(it, t, t.Generics.Params))
	out.WriteString(" {\n")

	for _, iid := range t.Items {
		member, ok := rs.cd.Get(iid)
		if !ok {
			continue
		}
		if !rs.selectionAllowsChild(it.ID, iid) {
			rs.markSkipped()
			continue
		}
		renderItem(rs, out, member, "", indent+1)
	}

	out.WriteString(indentStr(indent))
	out.WriteString("}\n")
}

func renderTraitAlias(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	ta, err := it.AsTraitAlias()
	if err != nil {
		return
	}
	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	bounds := strings.Join(ta.Bounds, " + ")
	out.WriteString(fmt.Sprintf("trait %s%s = %s;\n", sig.DisplayName(it), ta.Generics.Params, bounds))
}

// shouldRenderImpl applies the auto-trait suppression policy: synthetic
// impls of compiler auto traits (Send, Sync, Unpin, ...) are hidden unless
// RenderAutoImpls is set, since they carry no author-written content.
func shouldRenderImpl(rs *renderState, impl rustdoc.ImplInner) bool {
	if !impl.IsSynthetic || rs.opts.RenderAutoImpls {
		return true
	}
	if impl.Trait == nil {
		return true
	}
	return !sig.IsAutoImplTrait(shortTraitName(*impl.Trait))
}

// renderImpl emits an impl block header and its body items. Derive-trait
// collapsing happens one level up, in renderImplsFor, before this is ever
// reached for a derivable trait impl.
func renderImpl(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	impl, err := it.AsImpl()
	if err != nil {
		return
	}
	if !shouldRenderImpl(rs, impl) {
		rs.markSkipped()
		return
	}

	out.WriteString(indentStr(indent))
	out.WriteString(implHeader(impl))
	if len(impl.Items) == 0 {
		out.WriteString(" {}\n")
		return
	}
	out.WriteString(" {\n")
	for _, iid := range impl.Items {
		member, ok := rs.cd.Get(iid)
		if !ok {
			continue
		}
		if !rs.selectionAllowsChild(it.ID, iid) {
			rs.markSkipped()
			continue
		}
		renderItem(rs, out, member, "", indent+1)
	}
	out.WriteString(indentStr(indent))
	out.WriteString("}\n")
}

func implHeader(impl rustdoc.ImplInner) string {
	neg := ""
	if impl.IsNegative {
		neg = "!"
	}
	if impl.Trait != nil {
		return fmt.Sprintf("impl%s %s%s for %s%s", impl.Generics.Params, neg, *impl.Trait, impl.Target, impl.WhereClause)
	}
	return fmt.Sprintf("impl%s %s%s", impl.Generics.Params, impl.Target, impl.WhereClause)
}
