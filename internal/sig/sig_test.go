package sig

import (
	"testing"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

func strp(s string) *string { return &s }

func TestEscapeIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"type", "r#type"},
		{"match", "r#match"},
		{"crate", "crate"},
		{"self", "self"},
		{"super", "super"},
		{"Self", "Self"},
		{"plain_name", "plain_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeIdent(tt.name); got != tt.want {
				t.Errorf("EscapeIdent(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	named := &rustdoc.Item{Name: strp("type")}
	if got := DisplayName(named); got != "r#type" {
		t.Errorf("got %q, want r#type", got)
	}

	nameless := &rustdoc.Item{}
	if got := DisplayName(nameless); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestDocComment(t *testing.T) {
	t.Parallel()

	noDocs := &rustdoc.Item{}
	if got := DocComment(noDocs); got != "" {
		t.Errorf("expected empty docs, got %q", got)
	}

	withDocs := &rustdoc.Item{Docs: strp("line one\nline two")}
	want := "/// line one\n/// line two\n"
	if got := DocComment(withDocs); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIsAutoImplTrait(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Send", "Sync", "Unpin", "RefUnwindSafe", "UnwindSafe"} {
		if !IsAutoImplTrait(name) {
			t.Errorf("expected %s to be an auto trait", name)
		}
	}
	if IsAutoImplTrait("Clone") {
		t.Error("Clone should not be an auto trait")
	}
}

func TestIsDeriveTrait(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Clone", "Copy", "Debug", "PartialEq", "Serialize"} {
		if !IsDeriveTrait(name) {
			t.Errorf("expected %s to be a derive trait", name)
		}
	}
	if IsDeriveTrait("Send") {
		t.Error("Send should not be a derive trait")
	}
}

func TestDeriveAttr(t *testing.T) {
	t.Parallel()

	if got := DeriveAttr(nil); got != "" {
		t.Errorf("expected empty for no traits, got %q", got)
	}

	got := DeriveAttr([]string{"PartialEq", "Clone", "Debug"})
	want := "#[derive(Clone, Debug, PartialEq)]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFunctionDecl(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		it   *rustdoc.Item
		fn   rustdoc.FunctionInner
		want string
	}{
		{
			name: "simple_public",
			it:   &rustdoc.Item{Name: strp("hi"), Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}},
			fn:   rustdoc.FunctionInner{Signature: "()", HasBody: true},
			want: "pub fn hi() {}",
		},
		{
			name: "const_unsafe_async",
			it:   &rustdoc.Item{Name: strp("danger"), Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}},
			fn: rustdoc.FunctionInner{
				Signature: "()",
				Header:    rustdoc.FunctionHeader{Const: true, Async: true, Unsafe: true},
				HasBody:   true,
			},
			want: "pub const async unsafe fn danger() {}",
		},
		{
			name: "trait_method_no_body",
			// trait members carry rustdoc's "default" visibility, which
			// the extractor converts to VisibilityPrivate.
			it:   &rustdoc.Item{Name: strp("save"), Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPrivate}},
			fn:   rustdoc.FunctionInner{Signature: "(&self)", HasBody: false},
			want: "fn save(&self);",
		},
		{
			name: "extern_abi",
			it:   &rustdoc.Item{Name: strp("ffi_call"), Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}},
			fn: rustdoc.FunctionInner{
				Signature: "()",
				Header:    rustdoc.FunctionHeader{ExternABI: "C"},
				HasBody:   true,
			},
			want: `pub extern "C" fn ffi_call() {}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FunctionDecl(tt.it, tt.fn, "")
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructHeader(t *testing.T) {
	t.Parallel()

	unit := &rustdoc.Item{Name: strp("Unit"), Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}}
	got := StructHeader(unit, rustdoc.StructInner{StructKind: rustdoc.StructUnit}, "", "")
	if want := "pub struct Unit;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	plain := &rustdoc.Item{Name: strp("Plain"), Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}}
	got = StructHeader(plain, rustdoc.StructInner{StructKind: rustdoc.StructPlain}, "<T>", "")
	if want := "pub struct Plain<T>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTupleStructFieldType(t *testing.T) {
	t.Parallel()

	fieldID := rustdoc.ItemID("0:5")
	field := &rustdoc.Item{ID: fieldID, Kind: rustdoc.KindStructField, Inner: []byte(`{"type":"u32"}`)}
	cd := &rustdoc.CrateData{Items: map[rustdoc.ItemID]*rustdoc.Item{fieldID: field}}

	if got := TupleStructFieldType(cd, &fieldID, true); got != "u32" {
		t.Errorf("got %q, want u32", got)
	}
	if got := TupleStructFieldType(cd, &fieldID, false); got != "_" {
		t.Errorf("got %q, want _ for hidden field", got)
	}
	if got := TupleStructFieldType(cd, nil, true); got != "_" {
		t.Errorf("got %q, want _ for nil field id", got)
	}
}

func TestImplHeader(t *testing.T) {
	t.Parallel()

	inherent := ImplHeader(rustdoc.ImplInner{Target: "Widget"})
	if want := "impl Widget"; inherent != want {
		t.Errorf("got %q, want %q", inherent, want)
	}

	trait := "Display"
	traitImpl := ImplHeader(rustdoc.ImplInner{Target: "Widget", Trait: &trait})
	if want := "impl Display for Widget"; traitImpl != want {
		t.Errorf("got %q, want %q", traitImpl, want)
	}
}

func TestMacroDecl(t *testing.T) {
	t.Parallel()

	it := &rustdoc.Item{Name: strp("my_macro")}
	got := MacroDecl(it)
	want := "macro_rules! my_macro { ($($tt:tt)*) => {}; }"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUseSimpleAndAlias(t *testing.T) {
	t.Parallel()

	it := &rustdoc.Item{Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}}
	simple := UseSimple(it, rustdoc.UseInner{Source: "std::fmt::Display"})
	if want := "pub use std::fmt::Display;"; simple != want {
		t.Errorf("got %q, want %q", simple, want)
	}

	glob := UseSimple(it, rustdoc.UseInner{Source: "inner", IsGlob: true})
	if want := "pub use inner::*;"; glob != want {
		t.Errorf("got %q, want %q", glob, want)
	}

	alias := UseAlias(it, rustdoc.UseInner{Source: "std::fmt::Display"}, "Show")
	if want := "pub use std::fmt::Display as Show;"; alias != want {
		t.Errorf("got %q, want %q", alias, want)
	}
}

func TestRenderDispatchByKind(t *testing.T) {
	t.Parallel()

	cd := &rustdoc.CrateData{Items: map[rustdoc.ItemID]*rustdoc.Item{}}

	fn := &rustdoc.Item{
		Name:       strp("hi"),
		Kind:       rustdoc.KindFunction,
		Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
		Inner:      []byte(`{"signature":"()","header":{},"has_body":true}`),
	}
	if got, want := Render(cd, fn), "pub fn hi() {}"; got != want {
		t.Errorf("function: got %q, want %q", got, want)
	}

	typeAlias := &rustdoc.Item{
		Name:       strp("Bytes"),
		Kind:       rustdoc.KindTypeAlias,
		Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
		Inner:      []byte(`{"type":"Vec<u8>"}`),
	}
	if got, want := Render(cd, typeAlias), "pub type Bytes = Vec<u8>;"; got != want {
		t.Errorf("type alias: got %q, want %q", got, want)
	}
}
