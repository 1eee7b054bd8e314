package render

import (
	"strings"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/sig"
)

// renderEnum emits an enum declaration with its variants and impl blocks.
func renderEnum(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	e, err := it.AsEnum()
	if err != nil {
		return
	}

	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	out.WriteString(sig.EnumHeader(it, e.Generics.Params, e.Generics.WhereClause))
	out.WriteString(" {\n")

	for _, vid := range e.Variants {
		variant, ok := rs.cd.Get(vid)
		if !ok || !rs.isVisible(variant) {
			rs.markSkipped()
			continue
		}
		vi, err := variant.AsEnumVariant()
		if err != nil {
			continue
		}
		out.WriteString(indentStr(indent))
		out.WriteString(renderVariant(rs, variant, vi, indent))
	}

	out.WriteString(indentStr(indent))
	out.WriteString("}\n")

	renderImplsFor(rs, out, it.ID, e.Impls, indent)
}

func renderVariant(rs *renderState, it *rustdoc.Item, v rustdoc.EnumVariantInner, indent int) string {
	var fieldTypes []string
	for _, fid := range v.TupleFields {
		if fid == nil {
			fieldTypes = append(fieldTypes, "_")
			continue
		}
		field, ok := rs.cd.Get(*fid)
		visible := ok && rs.isVisible(field)
		fieldTypes = append(fieldTypes, sig.TupleStructFieldType(rs.cd, fid, visible))
	}

	var structFieldLines []string
	for _, fid := range v.StructFields {
		field, ok := rs.cd.Get(fid)
		if !ok || !rs.isVisible(field) {
			rs.markSkipped()
			continue
		}
		fi, err := field.AsStructField()
		if err != nil {
			continue
		}
		structFieldLines = append(structFieldLines, sig.StructFieldLine(field, fi))
	}

	return sig.EnumVariantLine(it, v, fieldTypes, structFieldLines)
}
