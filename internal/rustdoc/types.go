// Package rustdoc is the entity store: an in-memory, read-only view over
// CrateData, the item graph produced by the (out-of-scope) documentation
// extractor.
//
// Items carry a tagged-sum Inner payload. Rather than a closed Go type
// switch over ~20 concrete struct types, Inner keeps the raw JSON alongside
// a Kind discriminator and decodes lazily via the As* accessors - the same
// shape the teacher uses for RustdocItem.Inner (see the ferrisfetch
// internal/docs package this module descends from).
package rustdoc

import "encoding/json"

// ItemID is an opaque, stable token naming an item within one CrateData.
// It is comparable and totally ordered (string) only so callers can sort
// output deterministically; ordering carries no other meaning.
type ItemID string

// Visibility classifies how broadly an item is reachable.
type Visibility struct {
	Kind         VisibilityKind
	RestrictedIn string // set only when Kind == VisibilityRestricted
}

type VisibilityKind int

const (
	VisibilityPublic VisibilityKind = iota
	VisibilityCrate
	VisibilityRestricted
	VisibilityPrivate
)

// Span locates an item's declaration in its originating source file.
// Lines are 1-based.
type Span struct {
	Filename string
	Begin    int
	End      int
}

// Kind tags the variant held in an Item's Inner payload.
type Kind string

const (
	KindModule      Kind = "module"
	KindStruct      Kind = "struct"
	KindEnum        Kind = "enum"
	KindUnion       Kind = "union"
	KindEnumVariant Kind = "enum_variant"
	KindStructField Kind = "struct_field"
	KindTrait       Kind = "trait"
	KindTraitAlias  Kind = "trait_alias"
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindConstant    Kind = "constant"
	KindStatic      Kind = "static"
	KindTypeAlias   Kind = "type_alias"
	KindUse         Kind = "use"
	KindMacro       Kind = "macro"
	KindProcMacro   Kind = "proc_macro"
	KindPrimitive   Kind = "primitive"
	KindImpl        Kind = "impl"
	KindAssocConst  Kind = "assoc_const"
	KindAssocType   Kind = "assoc_type"
)

// Item is a single node in the item graph.
type Item struct {
	ID         ItemID
	Name       *string // absent for impl blocks and glob uses
	Visibility Visibility
	Docs       *string
	Span       *Span
	Kind       Kind
	Inner      json.RawMessage
}

// CrateData is the immutable input to the core: the full item graph for one
// crate, produced once by the extractor and borrowed by every downstream
// component.
type CrateData struct {
	Root           ItemID
	Items          map[ItemID]*Item
	ExternalCrates map[string]string // crate name -> display name, for unresolved refs
	PackageName    string
	PackageVersion string
}

// Get looks up an item, returning false for identifiers belonging to named
// external crates (treated as unresolved per the CrateData contract).
func (c *CrateData) Get(id ItemID) (*Item, bool) {
	it, ok := c.Items[id]
	return it, ok
}

// --- Inner payload shapes, decoded lazily from Item.Inner ---

type ModuleInner struct {
	Children   []ItemID `json:"children"`
	IsCrateRoot bool    `json:"is_crate_root"`
}

type StructKind string

const (
	StructUnit  StructKind = "unit"
	StructTuple StructKind = "tuple"
	StructPlain StructKind = "plain"
)

type StructInner struct {
	StructKind StructKind `json:"struct_kind"`
	Fields     []ItemID   `json:"fields"` // nil for unit
	Generics   Generics   `json:"generics"`
	Impls      []ItemID   `json:"impls"`
}

type EnumInner struct {
	Variants []ItemID `json:"variants"`
	Generics Generics `json:"generics"`
	Impls    []ItemID `json:"impls"`
}

type UnionInner struct {
	Fields   []ItemID `json:"fields"`
	Generics Generics `json:"generics"`
	Impls    []ItemID `json:"impls"`
}

type VariantKind string

const (
	VariantPlain  VariantKind = "plain"
	VariantTuple  VariantKind = "tuple"
	VariantStruct VariantKind = "struct"
)

type EnumVariantInner struct {
	VariantKind  VariantKind `json:"variant_kind"`
	TupleFields  []*ItemID   `json:"tuple_fields,omitempty"` // nil entries for stripped/private fields
	StructFields []ItemID    `json:"struct_fields,omitempty"`
	Discriminant *Discriminant `json:"discriminant,omitempty"`
}

type Discriminant struct {
	Expr  string `json:"expr"`
	Value string `json:"value"`
}

type StructFieldInner struct {
	Type string `json:"type"`
}

type TraitInner struct {
	Items    []ItemID `json:"items"`
	Generics Generics `json:"generics"`
	Bounds   []string `json:"bounds"`
}

type TraitAliasInner struct {
	Generics Generics `json:"generics"`
	Bounds   []string `json:"bounds"`
}

type FunctionHeader struct {
	Const    bool   `json:"const"`
	Async    bool   `json:"async"`
	Unsafe   bool   `json:"unsafe"`
	ExternABI string `json:"extern_abi,omitempty"`
}

type FunctionInner struct {
	Signature string         `json:"signature"`
	Header    FunctionHeader `json:"header"`
	HasBody   bool           `json:"has_body"`
	Generics  Generics       `json:"generics"`
}

type ConstantInner struct {
	Type string `json:"type"`
	Expr string `json:"expr"`
}

type StaticInner struct {
	Type    string `json:"type"`
	Expr    string `json:"expr"`
	Mutable bool   `json:"mutable"`
}

type TypeAliasInner struct {
	Type     string   `json:"type"`
	Generics Generics `json:"generics"`
}

type UseInner struct {
	Source     string  `json:"source"`
	Name       *string `json:"name"` // renamed name, when `as alias` was used
	IsGlob     bool    `json:"is_glob"`
	ResolvedID *ItemID `json:"resolved_id"`
}

type MacroInner struct {
	Decl string `json:"decl"`
}

type ProcMacroKind string

const (
	ProcMacroFunction  ProcMacroKind = "function"
	ProcMacroDerive    ProcMacroKind = "derive"
	ProcMacroAttribute ProcMacroKind = "attribute"
)

type ProcMacroInner struct {
	MacroKind ProcMacroKind `json:"macro_kind"`
}

type ImplInner struct {
	Target       string   `json:"target"`
	Trait        *string  `json:"trait"`
	Generics     Generics `json:"generics"`
	WhereClause  string   `json:"where_clause"`
	Items        []ItemID `json:"items"`
	IsSynthetic  bool     `json:"is_synthetic"`
	IsNegative   bool     `json:"is_negative"`
	Blanket      *string  `json:"blanket"`
	TargetItemID *ItemID  `json:"target_item_id"` // resolved id of the struct/enum this targets, if local
}

// Generics carries the pre-rendered generic parameter list and where-clause
// text, since reconstructing Rust generics syntax from a structured AST is
// outside the core's scope - the extractor hands us printable fragments.
type Generics struct {
	Params      string `json:"params"`
	WhereClause string `json:"where_clause"`
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

func (it *Item) AsModule() (ModuleInner, error)         { return decode[ModuleInner](it.Inner) }
func (it *Item) AsStruct() (StructInner, error)         { return decode[StructInner](it.Inner) }
func (it *Item) AsEnum() (EnumInner, error)             { return decode[EnumInner](it.Inner) }
func (it *Item) AsUnion() (UnionInner, error)           { return decode[UnionInner](it.Inner) }
func (it *Item) AsEnumVariant() (EnumVariantInner, error) { return decode[EnumVariantInner](it.Inner) }
func (it *Item) AsStructField() (StructFieldInner, error) { return decode[StructFieldInner](it.Inner) }
func (it *Item) AsTrait() (TraitInner, error)           { return decode[TraitInner](it.Inner) }
func (it *Item) AsTraitAlias() (TraitAliasInner, error) { return decode[TraitAliasInner](it.Inner) }
func (it *Item) AsFunction() (FunctionInner, error)     { return decode[FunctionInner](it.Inner) }
func (it *Item) AsConstant() (ConstantInner, error)     { return decode[ConstantInner](it.Inner) }
func (it *Item) AsStatic() (StaticInner, error)         { return decode[StaticInner](it.Inner) }
func (it *Item) AsTypeAlias() (TypeAliasInner, error)   { return decode[TypeAliasInner](it.Inner) }
func (it *Item) AsUse() (UseInner, error)               { return decode[UseInner](it.Inner) }
func (it *Item) AsMacro() (MacroInner, error)           { return decode[MacroInner](it.Inner) }
func (it *Item) AsProcMacro() (ProcMacroInner, error)   { return decode[ProcMacroInner](it.Inner) }
func (it *Item) AsImpl() (ImplInner, error)             { return decode[ImplInner](it.Inner) }

// IsPublic reports whether the item is directly public (ignoring any
// re-export aliasing, which the search index handles separately).
func (it *Item) IsPublic() bool { return it.Visibility.Kind == VisibilityPublic }

// IndexVisible implements the search index's visibility policy (§4.1):
// pub(crate) items are reachable from the crate root "at crate scope"
// regardless of includePrivate - only restricted/private items require it.
func (v Visibility) IndexVisible(includePrivate bool) bool {
	if includePrivate {
		return true
	}
	switch v.Kind {
	case VisibilityPublic, VisibilityCrate:
		return true
	default:
		return false
	}
}

// RenderVisible implements the renderer's visibility policy (§4.3): a child
// renders only if public, or if renderPrivateItems is set (which also
// admits pub(crate)).
func (v Visibility) RenderVisible(renderPrivateItems bool) bool {
	if renderPrivateItems {
		return true
	}
	return v.Kind == VisibilityPublic
}
