package render

import (
	"strings"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/sig"
)

// renderStruct emits a struct declaration in the form dictated by its
// StructKind, followed by its inherent/trait impl blocks.
func renderStruct(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	s, err := it.AsStruct()
	if err != nil {
		return
	}

	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))

	switch s.StructKind {
	case rustdoc.StructUnit:
		out.WriteString(sig.StructHeader(it, s, s.Generics.Params, s.Generics.WhereClause))
		out.WriteByte('\n')
	case rustdoc.StructTuple:
		out.WriteString(sig.StructHeader(it, s, s.Generics.Params, ""))
		out.WriteString("(")
		fields := make([]string, 0, len(s.Fields))
		for _, fid := range s.Fields {
			field, ok := rs.cd.Get(fid)
			visible := ok && rs.isVisible(field)
			fields = append(fields, sig.TupleStructFieldType(rs.cd, &fid, visible))
		}
		out.WriteString(strings.Join(fields, ", "))
		out.WriteString(")")
		out.WriteString(s.Generics.WhereClause)
		out.WriteString(";\n")
	default: // plain
		out.WriteString(sig.StructHeader(it, s, s.Generics.Params, s.Generics.WhereClause))
		out.WriteString(" {\n")
		for _, fid := range s.Fields {
			field, ok := rs.cd.Get(fid)
			if !ok || !rs.isVisible(field) {
				rs.markSkipped()
				continue
			}
			fi, err := field.AsStructField()
			if err != nil {
				continue
			}
			out.WriteString(sig.StructFieldLine(field, fi))
		}
		out.WriteString(indentStr(indent))
		out.WriteString("}\n")
	}

	renderImplsFor(rs, out, it.ID, s.Impls, indent)
}

func renderUnion(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	u, err := it.AsUnion()
	if err != nil {
		return
	}
	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	out.WriteString("union ")
	out.WriteString(sig.DisplayName(it))
	out.WriteString(u.Generics.Params)
	out.WriteString(" {\n")
	for _, fid := range u.Fields {
		field, ok := rs.cd.Get(fid)
		if !ok || !rs.isVisible(field) {
			rs.markSkipped()
			continue
		}
		fi, err := field.AsStructField()
		if err != nil {
			continue
		}
		out.WriteString(sig.StructFieldLine(field, fi))
	}
	out.WriteString(indentStr(indent))
	out.WriteString("}\n")

	renderImplsFor(rs, out, it.ID, u.Impls, indent)
}

// renderImplsFor renders each impl in implIDs that clears visibility and
// selection gating, collapsing derivable trait impls into a single
// #[derive(...)] attribute rather than one block per trait, per §4.5.
func renderImplsFor(rs *renderState, out *strings.Builder, targetID rustdoc.ItemID, implIDs []rustdoc.ItemID, indent int) {
	var deriveNames []string
	var rest []rustdoc.ItemID

	for _, id := range implIDs {
		it, ok := rs.cd.Get(id)
		if !ok {
			continue
		}
		inner, err := it.AsImpl()
		if err != nil {
			continue
		}
		if inner.Trait != nil && sig.IsDeriveTrait(shortTraitName(*inner.Trait)) {
			deriveNames = append(deriveNames, shortTraitName(*inner.Trait))
			continue
		}
		rest = append(rest, id)
	}

	if len(deriveNames) > 0 {
		out.WriteString(indentStr(indent))
		out.WriteString(sig.DeriveAttr(deriveNames))
	}

	for _, id := range rest {
		impl, ok := rs.cd.Get(id)
		if !ok {
			continue
		}
		if !rs.selectionAllowsChild(targetID, id) {
			rs.markSkipped()
			continue
		}
		renderItem(rs, out, impl, "", indent)
	}
}

func shortTraitName(traitPath string) string {
	if i := strings.LastIndex(traitPath, "::"); i >= 0 {
		return traitPath[i+2:]
	}
	return traitPath
}
