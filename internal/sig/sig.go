// Package sig is the signature formatter: pure, per-kind functions that
// produce Rust-looking declaration text for a single item.
//
// These are atomic building blocks. Container kinds (struct, enum, trait,
// impl, module) expose only their header line here - the renderer (see
// internal/render) owns selection-aware recursion into children, gap
// markers, and indentation, composing full container bodies out of these
// atoms. This mirrors how the original implementation splits per-kind
// emitters (render/items/*.rs) from the stateful walk (render/state.rs,
// render/core.rs).
package sig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

// reservedWords lists Rust 2021 keywords and reserved identifiers that
// require raw-identifier escaping. crate/self/super/Self are excluded per
// §4.5: they pass through unescaped even though they are keywords.
var reservedWords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "dyn": true,
	"else": true, "enum": true, "extern": true, "false": true, "fn": true,
	"for": true, "if": true, "impl": true, "in": true, "let": true,
	"loop": true, "match": true, "mod": true, "move": true, "mut": true,
	"pub": true, "ref": true, "return": true, "static": true, "struct": true,
	"trait": true, "true": true, "type": true, "unsafe": true, "use": true,
	"where": true, "while": true, "async": true, "await": true, "try": true,
	"abstract": true, "become": true, "box": true, "do": true, "final": true,
	"macro": true, "override": true, "priv": true, "typeof": true,
	"unsized": true, "virtual": true, "yield": true,
}

var passThrough = map[string]bool{"crate": true, "self": true, "super": true, "Self": true}

// EscapeIdent wraps reserved words in r#... except crate/self/super/Self.
func EscapeIdent(name string) string {
	if passThrough[name] {
		return name
	}
	if reservedWords[name] {
		return "r#" + name
	}
	return name
}

// DisplayName returns an item's raw name, escaped, or "" for nameless
// items (impl blocks, glob uses).
func DisplayName(it *rustdoc.Item) string {
	if it.Name == nil {
		return ""
	}
	return EscapeIdent(*it.Name)
}

func renderVis(it *rustdoc.Item) string {
	switch it.Visibility.Kind {
	case rustdoc.VisibilityPublic:
		return "pub "
	case rustdoc.VisibilityCrate:
		return "pub(crate) "
	case rustdoc.VisibilityRestricted:
		return fmt.Sprintf("pub(in %s) ", it.Visibility.RestrictedIn)
	default:
		return ""
	}
}

// DocComment renders an item's docs as `///` lines, empty string if none.
func DocComment(it *rustdoc.Item) string {
	if it.Docs == nil || *it.Docs == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(*it.Docs, "\n") {
		b.WriteString("/// ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// autoImplTraits are compiler-synthesized impls excluded by default.
var autoImplTraits = map[string]bool{
	"Send": true, "Sync": true, "Unpin": true, "RefUnwindSafe": true, "UnwindSafe": true,
}

// IsAutoImplTrait reports whether traitName names an auto trait.
func IsAutoImplTrait(traitName string) bool { return autoImplTraits[traitName] }

// deriveTraits is the fixed list of traits whose impls collapse into a
// #[derive(...)] attribute rather than a full impl block.
var deriveTraits = map[string]bool{
	"Clone": true, "Copy": true, "Debug": true, "Default": true, "Eq": true,
	"Hash": true, "Ord": true, "PartialEq": true, "PartialOrd": true,
	"Serialize": true, "Deserialize": true,
}

// IsDeriveTrait reports whether traitName collapses into #[derive(...)].
func IsDeriveTrait(traitName string) bool { return deriveTraits[traitName] }

// DeriveAttr renders a sorted #[derive(...)] line from a set of trait
// names, per §9's "alphabetical by trait name for determinism".
func DeriveAttr(traitNames []string) string {
	if len(traitNames) == 0 {
		return ""
	}
	sorted := append([]string(nil), traitNames...)
	sort.Strings(sorted)
	return fmt.Sprintf("#[derive(%s)]\n", strings.Join(sorted, ", "))
}

// FunctionDecl renders a function/method/proc-macro-function declaration
// line. fn.HasBody controls whether it ends in " {}" (has a body) or ";"
// (trait method declaration without a body).
func FunctionDecl(it *rustdoc.Item, fn rustdoc.FunctionInner, generics string) string {
	var header strings.Builder
	if fn.Header.Const {
		header.WriteString("const ")
	}
	if fn.Header.Async {
		header.WriteString("async ")
	}
	if fn.Header.Unsafe {
		header.WriteString("unsafe ")
	}
	if fn.Header.ExternABI != "" {
		header.WriteString(fmt.Sprintf("extern %q ", fn.Header.ExternABI))
	}
	suffix := " {}"
	if !fn.HasBody {
		suffix = ";"
	}
	return fmt.Sprintf("%s%sfn %s%s%s%s", renderVis(it), header.String(), DisplayName(it), generics, fn.Signature, suffix)
}

// StructHeader renders the struct keyword line, without body braces for
// plain structs (the renderer appends `{ ... }` itself); unit and tuple
// structs are complete declarations on their own.
func StructHeader(it *rustdoc.Item, s rustdoc.StructInner, generics, whereClause string) string {
	switch s.StructKind {
	case rustdoc.StructUnit:
		return fmt.Sprintf("%sstruct %s%s;", renderVis(it), DisplayName(it), generics)
	default:
		return fmt.Sprintf("%sstruct %s%s", renderVis(it), DisplayName(it), generics+whereClause)
	}
}

// TupleStructFieldType renders one tuple-struct field's type, or "_" when
// the field is hidden (private/non-local, per §4.5's tuple-field rule).
func TupleStructFieldType(cd *rustdoc.CrateData, fieldID *rustdoc.ItemID, visible bool) string {
	if fieldID == nil || !visible {
		return "_"
	}
	field, ok := cd.Get(*fieldID)
	if !ok {
		return "_"
	}
	fi, err := field.AsStructField()
	if err != nil {
		return "_"
	}
	return fi.Type
}

// StructFieldLine renders one named struct field, doc-commented, on its
// own indented line.
func StructFieldLine(it *rustdoc.Item, field rustdoc.StructFieldInner) string {
	return fmt.Sprintf("%s\t%s%s: %s,\n", DocComment(it), renderVis(it), DisplayName(it), field.Type)
}

// EnumHeader renders the enum keyword line.
func EnumHeader(it *rustdoc.Item, generics, whereClause string) string {
	return fmt.Sprintf("%senum %s%s", renderVis(it), DisplayName(it), generics+whereClause)
}

// EnumVariantLine renders one variant. fieldTypes is the already-filtered,
// already-rendered list of field type strings for tuple variants;
// structFields is pre-rendered lines for struct variants.
func EnumVariantLine(it *rustdoc.Item, v rustdoc.EnumVariantInner, fieldTypes []string, structFieldLines []string) string {
	var b strings.Builder
	b.WriteString(DocComment(it))
	b.WriteString("\t")
	b.WriteString(DisplayName(it))
	switch v.VariantKind {
	case rustdoc.VariantTuple:
		b.WriteString("(")
		b.WriteString(strings.Join(fieldTypes, ", "))
		b.WriteString(")")
	case rustdoc.VariantStruct:
		b.WriteString(" {\n")
		for _, l := range structFieldLines {
			b.WriteString(l)
		}
		b.WriteString("\t}")
	}
	if v.Discriminant != nil {
		b.WriteString(" = ")
		b.WriteString(v.Discriminant.Expr)
	}
	b.WriteString(",\n")
	return b.String()
}

// TraitHeader renders the trait keyword line including supertrait bounds.
func TraitHeader(it *rustdoc.Item, t rustdoc.TraitInner, generics string) string {
	bounds := ""
	if len(t.Bounds) > 0 {
		bounds = ": " + strings.Join(t.Bounds, " + ")
	}
	return fmt.Sprintf("%strait %s%s%s%s", renderVis(it), DisplayName(it), generics, bounds, t.Generics.WhereClause)
}

// ImplHeader renders `impl<G> Trait for Type where ...` or
// `impl<G> Type where ...` for an inherent impl.
func ImplHeader(impl rustdoc.ImplInner) string {
	generics := impl.Generics.Params
	if impl.Trait != nil {
		return fmt.Sprintf("impl%s %s for %s%s", generics, *impl.Trait, impl.Target, impl.WhereClause)
	}
	return fmt.Sprintf("impl%s %s%s", generics, impl.Target, impl.WhereClause)
}

// ConstantDecl renders a const declaration.
func ConstantDecl(it *rustdoc.Item, c rustdoc.ConstantInner) string {
	return fmt.Sprintf("%sconst %s: %s = %s;", renderVis(it), DisplayName(it), c.Type, c.Expr)
}

// StaticDecl renders a static declaration.
func StaticDecl(it *rustdoc.Item, s rustdoc.StaticInner) string {
	mut := ""
	if s.Mutable {
		mut = "mut "
	}
	return fmt.Sprintf("%sstatic %s%s: %s = %s;", renderVis(it), mut, DisplayName(it), s.Type, s.Expr)
}

// TypeAliasDecl renders a type alias declaration.
func TypeAliasDecl(it *rustdoc.Item, t rustdoc.TypeAliasInner) string {
	return fmt.Sprintf("%stype %s%s = %s;", renderVis(it), DisplayName(it), t.Generics.Params, t.Type)
}

// MacroDecl renders a macro_rules! declaration. The body is elided per the
// skeleton philosophy: only the callable shape is shown.
func MacroDecl(it *rustdoc.Item) string {
	return fmt.Sprintf("macro_rules! %s { ($($tt:tt)*) => {}; }", DisplayName(it))
}

// UseSimple renders `pub use SOURCE;`.
func UseSimple(it *rustdoc.Item, u rustdoc.UseInner) string {
	if u.IsGlob {
		return fmt.Sprintf("%suse %s::*;", renderVis(it), u.Source)
	}
	return fmt.Sprintf("%suse %s;", renderVis(it), u.Source)
}

// UseAlias renders `pub use SOURCE as ALIAS;`.
func UseAlias(it *rustdoc.Item, u rustdoc.UseInner, alias string) string {
	return fmt.Sprintf("%suse %s as %s;", renderVis(it), u.Source, alias)
}

// Render is the dispatcher used by the search index to cache a compact,
// single-declaration signature per item (header only for container
// kinds - member items are indexed and signed separately).
func Render(cd *rustdoc.CrateData, it *rustdoc.Item) string {
	switch it.Kind {
	case rustdoc.KindFunction, rustdoc.KindMethod:
		if fn, err := it.AsFunction(); err == nil {
			return FunctionDecl(it, fn, fn.Generics.Params+fn.Generics.WhereClause)
		}
	case rustdoc.KindStruct:
		if s, err := it.AsStruct(); err == nil {
			return StructHeader(it, s, s.Generics.Params, s.Generics.WhereClause)
		}
	case rustdoc.KindEnum:
		if e, err := it.AsEnum(); err == nil {
			return EnumHeader(it, e.Generics.Params, e.Generics.WhereClause)
		}
	case rustdoc.KindTrait:
		if t, err := it.AsTrait(); err == nil {
			return TraitHeader(it, t, t.Generics.Params)
		}
	case rustdoc.KindImpl:
		if i, err := it.AsImpl(); err == nil {
			return ImplHeader(i)
		}
	case rustdoc.KindConstant, rustdoc.KindAssocConst:
		if c, err := it.AsConstant(); err == nil {
			return ConstantDecl(it, c)
		}
	case rustdoc.KindStatic:
		if s, err := it.AsStatic(); err == nil {
			return StaticDecl(it, s)
		}
	case rustdoc.KindTypeAlias, rustdoc.KindAssocType:
		if t, err := it.AsTypeAlias(); err == nil {
			return TypeAliasDecl(it, t)
		}
	case rustdoc.KindMacro:
		return MacroDecl(it)
	case rustdoc.KindUse:
		if u, err := it.AsUse(); err == nil {
			if it.Name != nil {
				return UseAlias(it, u, EscapeIdent(*it.Name))
			}
			return UseSimple(it, u)
		}
	case rustdoc.KindStructField:
		if f, err := it.AsStructField(); err == nil {
			return fmt.Sprintf("%s: %s", DisplayName(it), f.Type)
		}
	case rustdoc.KindModule:
		return fmt.Sprintf("%smod %s", renderVis(it), DisplayName(it))
	}
	return DisplayName(it)
}
