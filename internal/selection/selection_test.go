package selection

import (
	"testing"

	"github.com/Alb-O/ripdoc/internal/index"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

func strp(s string) *string { return &s }
func idp(id rustdoc.ItemID) *rustdoc.ItemID { return &id }

// fixture builds: crate root -> mod m -> struct Widget (impl WidgetImpl) and
// a sibling fn helper.
func fixture() (*rustdoc.CrateData, *index.Index) {
	root := rustdoc.ItemID("0:0")
	mod := rustdoc.ItemID("0:1")
	widget := rustdoc.ItemID("0:2")
	implID := rustdoc.ItemID("0:3")
	implMethod := rustdoc.ItemID("0:4")
	helper := rustdoc.ItemID("0:5")

	items := map[rustdoc.ItemID]*rustdoc.Item{
		root: {ID: root, Name: strp("tiny"), Kind: rustdoc.KindModule,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"children":["0:1"],"is_crate_root":true}`)},
		mod: {ID: mod, Name: strp("m"), Kind: rustdoc.KindModule,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"children":["0:2","0:5"],"is_crate_root":false}`)},
		widget: {ID: widget, Name: strp("Widget"), Kind: rustdoc.KindStruct,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"struct_kind":"unit","fields":[],"impls":["0:3"]}`)},
		implID: {ID: implID, Kind: rustdoc.KindImpl,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"target":"Widget","items":["0:4"],"target_item_id":"0:2"}`)},
		implMethod: {ID: implMethod, Name: strp("save"), Kind: rustdoc.KindMethod,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"signature":"(&self)","header":{},"has_body":true}`)},
		helper: {ID: helper, Name: strp("helper"), Kind: rustdoc.KindFunction,
			Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityPublic},
			Inner:      []byte(`{"signature":"()","header":{},"has_body":true}`)},
	}
	cd := &rustdoc.CrateData{Root: root, Items: items}
	ix := index.Build(cd, false, func(*rustdoc.CrateData, *rustdoc.Item) string { return "" })
	return cd, ix
}

func TestBuildMatchAddsAncestors(t *testing.T) {
	t.Parallel()

	cd, ix := fixture()
	sel := Build(cd, ix, []rustdoc.ItemID{"0:5"}, false, nil)

	if !sel.Matches.Has("0:5") {
		t.Error("expected helper fn in matches")
	}
	if !sel.Context.Has("0:5") {
		t.Error("expected the match itself in context, not just its ancestors")
	}
	if !sel.Context.Has("0:0") || !sel.Context.Has("0:1") {
		t.Error("expected crate root and mod in context as ancestors")
	}
	if sel.Expanded.Has("0:1") {
		t.Error("module should not be expanded when expandContainers is false")
	}
}

func TestBuildImplCohesion(t *testing.T) {
	t.Parallel()

	cd, ix := fixture()
	sel := Build(cd, ix, []rustdoc.ItemID{"0:3"}, false, nil)

	if !sel.Matches.Has("0:3") {
		t.Error("expected impl block in matches")
	}
	if !sel.Context.Has("0:2") {
		t.Error("expected impl's target type (Widget) pulled into context")
	}
	if !sel.Context.Has("0:0") || !sel.Context.Has("0:1") {
		t.Error("expected target type's ancestors pulled into context")
	}
}

func TestBuildExpandContainers(t *testing.T) {
	t.Parallel()

	cd, ix := fixture()
	sel := Build(cd, ix, []rustdoc.ItemID{"0:1"}, true, nil)

	if !sel.Expanded.Has("0:1") {
		t.Error("expected matched module to be expanded")
	}
	if !sel.Context.Has("0:2") || !sel.Context.Has("0:5") {
		t.Error("expected module's children in context after expansion")
	}
}

func TestBuildFullSourceOverlay(t *testing.T) {
	t.Parallel()

	cd, ix := fixture()
	full := IDSet{"0:5": true}
	sel := Build(cd, ix, []rustdoc.ItemID{"0:5"}, false, full)

	if !sel.FullSource.Has("0:5") {
		t.Error("expected full-source overlay to carry through")
	}
}

func TestEverythingSelection(t *testing.T) {
	t.Parallel()

	cd, ix := fixture()
	sel := Everything(cd, ix)

	if !sel.Matches.Has("0:5") || !sel.Context.Has("0:5") {
		t.Error("expected every reachable item in both matches and context")
	}
	if !sel.Expanded.Has("0:1") {
		t.Error("expected containers auto-expanded in absent-selection arithmetic")
	}
}
