package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Alb-O/ripdoc/internal/rerr"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

// convert turns one decoded rustdoc JSON document into CrateData, mapping
// rustdoc's richer type-AST payloads down to the core's pre-rendered
// string fragments (Generics.Params, field/type text, function
// signatures) - reconstructing Rust syntax from a structured AST is
// explicitly out of the core's scope (rustdoc.Generics's doc
// comment), so this printer is deliberately best-effort: it covers the
// Type variants that appear in ordinary library code (paths, primitives,
// references, generics, tuples, slices) and falls back to a placeholder
// comment for anything more exotic (raw trait objects with many bounds,
// function pointer types, impl Trait with multiple bounds), rather than
// failing the whole extraction over one unprintable type.
func convert(rc *RawCrate) (*rustdoc.CrateData, error) {
	cd := &rustdoc.CrateData{
		Root:           rustdoc.ItemID(rc.Root),
		Items:          make(map[rustdoc.ItemID]*rustdoc.Item, len(rc.Index)),
		ExternalCrates: make(map[string]string, len(rc.ExternalCrates)),
	}
	for _, ec := range rc.ExternalCrates {
		cd.ExternalCrates[ec.Name] = ec.Name
	}
	if rc.CrateVersion != nil {
		cd.PackageVersion = *rc.CrateVersion
	}

	for id, raw := range rc.Index {
		item, err := convertItem(id, &raw)
		if err != nil {
			return nil, rerr.Wrap(rerr.Generate, fmt.Sprintf("converting item %s", id), err)
		}
		if item != nil {
			cd.Items[rustdoc.ItemID(id)] = item
		}
	}

	if root, ok := cd.Items[cd.Root]; ok && root.Name != nil {
		cd.PackageName = *root.Name
	}

	return cd, nil
}

func convertItem(id string, raw *RawItem) (*rustdoc.Item, error) {
	tag, payload, ok := innerTag(raw.Inner)
	if !ok {
		return nil, nil // stripped item (no inner payload) - not renderable
	}

	kind, inner, err := convertInner(tag, payload)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		return nil, nil // intentionally unmapped tag (e.g. extern_crate, primitive)
	}

	return &rustdoc.Item{
		ID:         rustdoc.ItemID(id),
		Name:       raw.Name,
		Visibility: convertVisibility(raw.Visibility),
		Docs:       raw.Docs,
		Span:       convertSpan(raw.Span),
		Kind:       kind,
		Inner:      inner,
	}, nil
}

func convertSpan(s *RawSpan) *rustdoc.Span {
	if s == nil {
		return nil
	}
	return &rustdoc.Span{Filename: s.Filename, Begin: s.Begin[0], End: s.End[0]}
}

func convertVisibility(v RawVisibility) rustdoc.Visibility {
	if v.Restricted != nil {
		return rustdoc.Visibility{Kind: rustdoc.VisibilityRestricted, RestrictedIn: v.Restricted.Path}
	}
	switch v.Simple {
	case "public":
		return rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}
	case "crate":
		return rustdoc.Visibility{Kind: rustdoc.VisibilityCrate}
	default:
		return rustdoc.Visibility{Kind: rustdoc.VisibilityPrivate}
	}
}

// convertInner dispatches on the raw tag name, producing the core's Kind
// plus a re-encoded Inner payload matching that Kind's *Inner struct's own
// json tags (rustdoc.ModuleInner, rustdoc.StructInner, ...).
func convertInner(tag string, payload json.RawMessage) (rustdoc.Kind, json.RawMessage, error) {
	switch tag {
	case "module":
		var m rawModule
		if err := json.Unmarshal(payload, &m); err != nil {
			return "", nil, err
		}
		children := make([]rustdoc.ItemID, len(m.Items))
		for i, id := range m.Items {
			children[i] = rustdoc.ItemID(id)
		}
		return encodeInner(rustdoc.KindModule, rustdoc.ModuleInner{Children: children, IsCrateRoot: m.IsCrateRoot})

	case "struct":
		var s rawStruct
		if err := json.Unmarshal(payload, &s); err != nil {
			return "", nil, err
		}
		params, where := printGenerics(s.Generics)
		sk := rustdoc.StructPlain
		switch s.Kind {
		case "unit":
			sk = rustdoc.StructUnit
		case "tuple":
			sk = rustdoc.StructTuple
		}
		return encodeInner(rustdoc.KindStruct, rustdoc.StructInner{
			StructKind: sk,
			Fields:     idList(s.Fields),
			Generics:   rustdoc.Generics{Params: params, WhereClause: where},
			Impls:      idList(s.Impls),
		})

	case "enum":
		var e rawEnum
		if err := json.Unmarshal(payload, &e); err != nil {
			return "", nil, err
		}
		params, where := printGenerics(e.Generics)
		return encodeInner(rustdoc.KindEnum, rustdoc.EnumInner{
			Variants: idList(e.Variants),
			Generics: rustdoc.Generics{Params: params, WhereClause: where},
			Impls:    idList(e.Impls),
		})

	case "union":
		var u rawUnion
		if err := json.Unmarshal(payload, &u); err != nil {
			return "", nil, err
		}
		params, where := printGenerics(u.Generics)
		return encodeInner(rustdoc.KindUnion, rustdoc.UnionInner{
			Fields:   idList(u.Fields),
			Generics: rustdoc.Generics{Params: params, WhereClause: where},
			Impls:    idList(u.Impls),
		})

	case "variant":
		var v rawVariant
		if err := json.Unmarshal(payload, &v); err != nil {
			return "", nil, err
		}
		return convertVariant(v)

	case "struct_field":
		return encodeInner(rustdoc.KindStructField, rustdoc.StructFieldInner{Type: printType(payload)})

	case "trait":
		var t rawTrait
		if err := json.Unmarshal(payload, &t); err != nil {
			return "", nil, err
		}
		params, where := printGenerics(t.Generics)
		return encodeInner(rustdoc.KindTrait, rustdoc.TraitInner{
			Items:    idList(t.Items),
			Generics: rustdoc.Generics{Params: params, WhereClause: where},
			Bounds:   printTypeList(t.Bounds),
		})

	case "trait_alias":
		var t rawTraitAlias
		if err := json.Unmarshal(payload, &t); err != nil {
			return "", nil, err
		}
		params, where := printGenerics(t.Generics)
		return encodeInner(rustdoc.KindTraitAlias, rustdoc.TraitAliasInner{
			Generics: rustdoc.Generics{Params: params, WhereClause: where},
			Bounds:   printTypeList(t.Params),
		})

	case "function", "method":
		var f rawFunction
		if err := json.Unmarshal(payload, &f); err != nil {
			return "", nil, err
		}
		params, where := printGenerics(f.Generics)
		sig := printFunctionSignature(f)
		k := rustdoc.KindFunction
		if tag == "method" {
			k = rustdoc.KindMethod
		}
		return encodeInner(k, rustdoc.FunctionInner{
			Signature: sig,
			Header: rustdoc.FunctionHeader{
				Const:     f.Header.Const,
				Async:     f.Header.Async,
				Unsafe:    f.Header.Unsafe,
				ExternABI: printABI(f.Header.ABI),
			},
			HasBody:  f.HasBody,
			Generics: rustdoc.Generics{Params: params, WhereClause: where},
		})

	case "constant", "assoc_const":
		var c rawConstant
		if err := json.Unmarshal(payload, &c); err != nil {
			return "", nil, err
		}
		k := rustdoc.KindConstant
		if tag == "assoc_const" {
			k = rustdoc.KindAssocConst
		}
		return encodeInner(k, rustdoc.ConstantInner{Type: printType(c.Type), Expr: c.Const.Expr})

	case "static":
		var s rawStatic
		if err := json.Unmarshal(payload, &s); err != nil {
			return "", nil, err
		}
		return encodeInner(rustdoc.KindStatic, rustdoc.StaticInner{Type: printType(s.Type), Expr: s.Expr, Mutable: s.Mutable})

	case "type_alias", "assoc_type":
		var t rawTypeAlias
		if err := json.Unmarshal(payload, &t); err != nil {
			return "", nil, err
		}
		params, where := printGenerics(t.Generics)
		k := rustdoc.KindTypeAlias
		if tag == "assoc_type" {
			k = rustdoc.KindAssocType
		}
		return encodeInner(k, rustdoc.TypeAliasInner{Type: printType(t.Type), Generics: rustdoc.Generics{Params: params, WhereClause: where}})

	case "use", "import":
		var u rawUse
		if err := json.Unmarshal(payload, &u); err != nil {
			return "", nil, err
		}
		var name *string
		if u.Name != "" {
			name = &u.Name
		}
		var resolved *rustdoc.ItemID
		if u.ID != nil {
			id := rustdoc.ItemID(*u.ID)
			resolved = &id
		}
		return encodeInner(rustdoc.KindUse, rustdoc.UseInner{Source: u.Source, Name: name, IsGlob: u.Glob, ResolvedID: resolved})

	case "macro":
		var decl rawMacro
		if err := json.Unmarshal(payload, &decl); err != nil {
			return "", nil, err
		}
		return encodeInner(rustdoc.KindMacro, rustdoc.MacroInner{Decl: string(decl)})

	case "proc_macro":
		var p rawProcMacro
		if err := json.Unmarshal(payload, &p); err != nil {
			return "", nil, err
		}
		return encodeInner(rustdoc.KindProcMacro, rustdoc.ProcMacroInner{MacroKind: procMacroKind(p.Kind)})

	case "impl":
		var i rawImpl
		if err := json.Unmarshal(payload, &i); err != nil {
			return "", nil, err
		}
		var traitName *string
		if i.Trait != nil {
			s := printType(*i.Trait)
			traitName = &s
		}
		var blanket *string
		if i.BlanketImpl != nil {
			s := printType(*i.BlanketImpl)
			blanket = &s
		}
		params, where := printGenerics(i.Generics)
		return encodeInner(rustdoc.KindImpl, rustdoc.ImplInner{
			Target:      printType(i.For),
			Trait:       traitName,
			Generics:    rustdoc.Generics{Params: params, WhereClause: where},
			WhereClause: where,
			Items:       idList(i.Items),
			IsSynthetic: i.Synthetic,
			IsNegative:  i.Negative,
			Blanket:     blanket,
		})

	default:
		// extern_crate, primitive, keyword, and other non-renderable tags
		// intentionally have no Kind mapping; their items are dropped.
		return "", nil, nil
	}
}

func convertVariant(v rawVariant) (rustdoc.Kind, json.RawMessage, error) {
	var tag string
	var payload json.RawMessage
	var kindStr string
	if err := json.Unmarshal(v.Kind, &kindStr); err == nil {
		tag = kindStr
	} else {
		t, p, ok := innerTag(v.Kind)
		if !ok {
			return "", nil, fmt.Errorf("unrecognized variant kind")
		}
		tag, payload = t, p
	}

	var disc *rustdoc.Discriminant
	if v.Discriminant != nil {
		disc = &rustdoc.Discriminant{Expr: v.Discriminant.Expr, Value: v.Discriminant.Value}
	}

	switch tag {
	case "plain":
		return encodeInner(rustdoc.KindEnumVariant, rustdoc.EnumVariantInner{VariantKind: rustdoc.VariantPlain, Discriminant: disc})
	case "tuple":
		var ids []*string
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &ids); err != nil {
				return "", nil, err
			}
		}
		fields := make([]*rustdoc.ItemID, len(ids))
		for i, s := range ids {
			if s == nil {
				continue
			}
			id := rustdoc.ItemID(*s)
			fields[i] = &id
		}
		return encodeInner(rustdoc.KindEnumVariant, rustdoc.EnumVariantInner{VariantKind: rustdoc.VariantTuple, TupleFields: fields, Discriminant: disc})
	case "struct":
		var s struct {
			Fields []string `json:"fields"`
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &s); err != nil {
				return "", nil, err
			}
		}
		return encodeInner(rustdoc.KindEnumVariant, rustdoc.EnumVariantInner{VariantKind: rustdoc.VariantStruct, StructFields: idList(s.Fields), Discriminant: disc})
	default:
		return "", nil, fmt.Errorf("unknown variant kind %q", tag)
	}
}

func procMacroKind(k string) rustdoc.ProcMacroKind {
	switch k {
	case "derive":
		return rustdoc.ProcMacroDerive
	case "attr":
		return rustdoc.ProcMacroAttribute
	default:
		return rustdoc.ProcMacroFunction
	}
}

func idList(in []string) []rustdoc.ItemID {
	if in == nil {
		return nil
	}
	out := make([]rustdoc.ItemID, len(in))
	for i, s := range in {
		out[i] = rustdoc.ItemID(s)
	}
	return out
}

func encodeInner(kind rustdoc.Kind, v any) (rustdoc.Kind, json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	return kind, raw, nil
}

func printABI(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "Rust" {
			return ""
		}
		return s
	}
	return ""
}

func printFunctionSignature(f rawFunction) string {
	parts := make([]string, 0, len(f.Sig.Inputs))
	for _, pair := range f.Sig.Inputs {
		var name string
		_ = json.Unmarshal(pair[0], &name)
		parts = append(parts, fmt.Sprintf("%s: %s", name, printType(pair[1])))
	}
	sig := "(" + strings.Join(parts, ", ") + ")"
	if out := printType(f.Sig.Output); out != "" && out != "()" {
		sig += " -> " + out
	}
	return sig
}

func printTypeList(raws []json.RawMessage) []string {
	out := make([]string, 0, len(raws))
	for _, r := range raws {
		out = append(out, printType(r))
	}
	return out
}

// printType renders a rustdoc JSON Type value to Rust syntax, covering the
// variants that show up in ordinary signatures. Anything outside that set
// degrades to a placeholder rather than failing the whole conversion.
func printType(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "()"
		}
		return s
	}

	tag, payload, ok := innerTag(raw)
	if !ok {
		return "/* type */"
	}

	switch tag {
	case "resolved_path":
		var p struct {
			Name string            `json:"name"`
			Args *json.RawMessage  `json:"args"`
		}
		if json.Unmarshal(payload, &p) == nil {
			if p.Args != nil {
				if args := printGenericArgs(*p.Args); args != "" {
					return p.Name + args
				}
			}
			return p.Name
		}
	case "primitive":
		var name string
		if json.Unmarshal(payload, &name) == nil {
			return name
		}
	case "generic":
		var name string
		if json.Unmarshal(payload, &name) == nil {
			return name
		}
	case "tuple":
		var items []json.RawMessage
		if json.Unmarshal(payload, &items) == nil {
			return "(" + strings.Join(printTypeList(items), ", ") + ")"
		}
	case "slice":
		return "[" + printType(payload) + "]"
	case "array":
		var a struct {
			Type json.RawMessage `json:"type"`
			Len  string          `json:"len"`
		}
		if json.Unmarshal(payload, &a) == nil {
			return "[" + printType(a.Type) + "; " + a.Len + "]"
		}
	case "raw_pointer":
		var p struct {
			Mutable bool            `json:"mutable"`
			Type    json.RawMessage `json:"type"`
		}
		if json.Unmarshal(payload, &p) == nil {
			if p.Mutable {
				return "*mut " + printType(p.Type)
			}
			return "*const " + printType(p.Type)
		}
	case "borrowed_ref":
		var r struct {
			Lifetime *string         `json:"lifetime"`
			Mutable  bool            `json:"mutable"`
			Type     json.RawMessage `json:"type"`
		}
		if json.Unmarshal(payload, &r) == nil {
			var b strings.Builder
			b.WriteByte('&')
			if r.Lifetime != nil {
				b.WriteString(*r.Lifetime)
				b.WriteByte(' ')
			}
			if r.Mutable {
				b.WriteString("mut ")
			}
			b.WriteString(printType(r.Type))
			return b.String()
		}
	case "qualified_path":
		var q struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(payload, &q) == nil {
			return q.Name
		}
	}
	return "/* type */"
}

func printGenericArgs(raw json.RawMessage) string {
	tag, payload, ok := innerTag(raw)
	if !ok || tag != "angle_bracketed" {
		return ""
	}
	var ab struct {
		Args []json.RawMessage `json:"args"`
	}
	if json.Unmarshal(payload, &ab) != nil || len(ab.Args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ab.Args))
	for _, a := range ab.Args {
		t, p, ok := innerTag(a)
		if !ok {
			continue
		}
		if t == "type" {
			parts = append(parts, printType(p))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
