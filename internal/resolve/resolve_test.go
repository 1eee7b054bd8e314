package resolve

import (
	"testing"

	"github.com/Alb-O/ripdoc/internal/index"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

func strp(s string) *string { return &s }

func noSig(*rustdoc.CrateData, *rustdoc.Item) string { return "" }

func allLocal(index.SearchResult) bool { return true }

// traitImplFixture builds a crate with a public struct Widget, a public
// trait Greet, and an impl of Greet for Widget, plus a plain free function
// `standalone` - enough surface to exercise BuildQueryCandidates, Best,
// Impl, and ValidateAddTarget.
func traitImplFixture() (*rustdoc.CrateData, *index.Index) {
	root := rustdoc.ItemID("0:0")
	widget := rustdoc.ItemID("0:1")
	greet := rustdoc.ItemID("0:2")
	impl := rustdoc.ItemID("0:3")
	standalone := rustdoc.ItemID("0:4")

	items := map[rustdoc.ItemID]*rustdoc.Item{
		root: {
			ID: root, Name: strp("tiny"), Kind: rustdoc.KindModule,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"children":["0:1","0:2","0:3","0:4"],"is_crate_root":true}`),
		},
		widget: {
			ID: widget, Name: strp("Widget"), Kind: rustdoc.KindStruct,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"struct_kind":"plain","fields":[],"impls":["0:3"]}`),
		},
		greet: {
			ID: greet, Name: strp("Greet"), Kind: rustdoc.KindTrait,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"items":[],"bounds":[]}`),
		},
		impl: {
			ID: impl, Kind: rustdoc.KindImpl,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"target":"Widget","trait":"Greet","items":[],"target_item_id":"0:1"}`),
		},
		standalone: {
			ID: standalone, Name: strp("standalone"), Kind: rustdoc.KindFunction,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"signature":"()","header":{},"has_body":true}`),
		},
	}
	cd := &rustdoc.CrateData{Root: root, Items: items, PackageName: "tiny"}
	ix := index.Build(cd, false, noSig)
	return cd, ix
}

func TestBuildQueryCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query     string
		crateName string
		want      []string
	}{
		{"foo", "tiny", []string{"foo"}},
		{"tiny::foo", "tiny", []string{"tiny::foo", "foo"}},
		{"other::foo", "tiny", []string{"other::foo", "tiny::foo", "foo"}},
		{"other::foo", "other", []string{"other::foo", "foo"}},
	}
	for _, tt := range tests {
		got := BuildQueryCandidates(tt.query, tt.crateName)
		if len(got) != len(tt.want) {
			t.Errorf("BuildQueryCandidates(%q, %q) = %v, want %v", tt.query, tt.crateName, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("BuildQueryCandidates(%q, %q) = %v, want %v", tt.query, tt.crateName, got, tt.want)
				break
			}
		}
	}
}

func TestBestFindsExactPath(t *testing.T) {
	t.Parallel()

	_, ix := traitImplFixture()
	m, ok := Best(ix, "tiny", "tiny", "standalone", allLocal, false)
	if !ok {
		t.Fatal("expected Best to find standalone")
	}
	if m.PathString != "standalone" {
		t.Errorf("got %q, want %q", m.PathString, "standalone")
	}
}

func TestBestNoMatchReturnsFalse(t *testing.T) {
	t.Parallel()

	_, ix := traitImplFixture()
	_, ok := Best(ix, "tiny", "tiny", "nonexistent", allLocal, false)
	if ok {
		t.Error("expected no match for a nonexistent path")
	}
}

func TestBestPrefersLocal(t *testing.T) {
	t.Parallel()

	_, ix := traitImplFixture()
	calls := 0
	isLocal := func(r index.SearchResult) bool {
		calls++
		// Only the struct is "local"; everything else pretends to be
		// a leaked dependency item.
		return r.PathString == "Widget"
	}
	m, ok := Best(ix, "tiny", "tiny", "Widget", isLocal, false)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.PathString != "Widget" {
		t.Errorf("got %q, want Widget", m.PathString)
	}
	if calls == 0 {
		t.Error("expected isLocal to be consulted")
	}
}

func TestImplResolvesTraitTarget(t *testing.T) {
	t.Parallel()

	cd, ix := traitImplFixture()
	m, ok := Impl(ix, cd, "tiny", "tiny", "Widget::Greet", allLocal, false)
	if !ok {
		t.Fatal("expected Impl to resolve Widget::Greet")
	}
	if !m.HasImpl {
		t.Error("expected HasImpl true")
	}
	if m.ImplID != rustdoc.ItemID("0:3") {
		t.Errorf("got ImplID %q, want 0:3", m.ImplID)
	}
	if m.Result.PathString != "Widget" {
		t.Errorf("expected the resolved type to be Widget, got %q", m.Result.PathString)
	}
}

func TestImplRejectsNonTraitLastSegment(t *testing.T) {
	t.Parallel()

	cd, ix := traitImplFixture()
	_, ok := Impl(ix, cd, "tiny", "tiny", "Widget::NoSuchTrait", allLocal, false)
	if ok {
		t.Error("expected Impl to fail for an unimplemented trait")
	}
}

func TestImplRejectsQueryWithoutDoubleColon(t *testing.T) {
	t.Parallel()

	cd, ix := traitImplFixture()
	_, ok := Impl(ix, cd, "tiny", "tiny", "Widget", allLocal, false)
	if ok {
		t.Error("expected Impl to require a Type::Trait-shaped query")
	}
}

func TestValidateAddTargetDirectMatch(t *testing.T) {
	t.Parallel()

	cd, ix := traitImplFixture()
	m, err := ValidateAddTarget(ix, cd, "tiny", "tiny", "standalone", allLocal, false, false)
	if err != nil {
		t.Fatalf("ValidateAddTarget: %v", err)
	}
	if m.Result.PathString != "standalone" {
		t.Errorf("got %q, want standalone", m.Result.PathString)
	}
}

// ValidateAddTarget's impl fallback is only reachable once Best has
// already failed every BuildQueryCandidates variant for the raw query -
// for a query ending in "::TraitName" where TraitName is itself a locally
// indexed item (as in this fixture), Best's own bare-suffix candidate
// matches the trait directly before Impl ever runs. That path is
// exercised directly by TestImplResolvesTraitTarget instead; impl
// fallback through ValidateAddTarget only fires in practice for external
// (non-indexed) traits, which this in-memory fixture can't represent.

func TestValidateAddTargetMismatchedCratePrefixStillResolves(t *testing.T) {
	t.Parallel()

	// BuildQueryCandidates always tries the bare suffix after the first
	// "::" segment, so a query prefixed with the wrong crate name still
	// resolves via Best's own candidate fallback - independent of the
	// strict flag, since that only gates the explicit `crate::` rewrite
	// reached after Best and Impl have both already failed.
	cd, ix := traitImplFixture()
	for _, strict := range []bool{false, true} {
		m, err := ValidateAddTarget(ix, cd, "tiny", "tiny", "other::standalone", allLocal, false, strict)
		if err != nil {
			t.Fatalf("ValidateAddTarget(strict=%v): %v", strict, err)
		}
		if m.Result.PathString != "standalone" {
			t.Errorf("strict=%v: got %q, want standalone", strict, m.Result.PathString)
		}
	}
}

func TestValidateAddTargetStrictRejectsWhenNothingResolves(t *testing.T) {
	t.Parallel()

	cd, ix := traitImplFixture()
	_, err := ValidateAddTarget(ix, cd, "tiny", "tiny", "other::nonexistent", allLocal, false, true)
	if err == nil {
		t.Error("expected strict mode to still fail for a path that resolves nowhere")
	}
}

func TestValidateAddTargetUnresolvableReturnsSuggestionError(t *testing.T) {
	t.Parallel()

	cd, ix := traitImplFixture()
	_, err := ValidateAddTarget(ix, cd, "tiny", "tiny", "nonexistent::path", allLocal, false, false)
	if err == nil {
		t.Fatal("expected an error for an unresolvable target")
	}
}
