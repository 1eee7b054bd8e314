package render

import (
	"strings"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/sig"
)

func renderFunction(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	fn, err := it.AsFunction()
	if err != nil {
		return
	}
	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	out.WriteString(sig.FunctionDecl(it, fn, fn.Generics.Params+fn.Generics.WhereClause))
	out.WriteByte('\n')
}

func renderConstant(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	c, err := it.AsConstant()
	if err != nil {
		return
	}
	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	out.WriteString(sig.ConstantDecl(it, c))
	out.WriteByte('\n')
}

func renderStatic(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	s, err := it.AsStatic()
	if err != nil {
		return
	}
	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	out.WriteString(sig.StaticDecl(it, s))
	out.WriteByte('\n')
}

func renderTypeAlias(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	t, err := it.AsTypeAlias()
	if err != nil {
		return
	}
	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	out.WriteString(sig.TypeAliasDecl(it, t))
	out.WriteByte('\n')
}

func renderMacro(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	out.WriteString(sig.MacroDecl(it))
	out.WriteByte('\n')
}

func renderProcMacro(rs *renderState, out *strings.Builder, it *rustdoc.Item, indent int) {
	pm, err := it.AsProcMacro()
	if err != nil {
		return
	}
	out.WriteString(docBlock(it, indent))
	out.WriteString(indentStr(indent))
	switch pm.MacroKind {
	case rustdoc.ProcMacroDerive:
		out.WriteString("#[proc_macro_derive(")
		out.WriteString(sig.DisplayName(it))
		out.WriteString(")]\n")
	case rustdoc.ProcMacroAttribute:
		out.WriteString("#[proc_macro_attribute]\n")
		out.WriteString(indentStr(indent))
		out.WriteString("pub fn ")
		out.WriteString(sig.DisplayName(it))
		out.WriteString("(attr: TokenStream, item: TokenStream) -> TokenStream {}\n")
		return
	default:
		out.WriteString("#[proc_macro]\n")
		out.WriteString(indentStr(indent))
		out.WriteString("pub fn ")
		out.WriteString(sig.DisplayName(it))
		out.WriteString("(input: TokenStream) -> TokenStream {}\n")
		return
	}
	out.WriteString(indentStr(indent))
	out.WriteString("pub fn ")
	out.WriteString(sig.DisplayName(it))
	out.WriteString("(input: TokenStream) -> TokenStream {}\n")
}
