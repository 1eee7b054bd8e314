// Package selection builds a RenderSelection - the set of identifiers that
// directs the renderer's inclusion policy - from a search result set or an
// explicit id set.
//
// Grounded on the original implementation's src/core_api/search/selection.rs:
// the same three-set-plus-overlay shape (matches, context, expanded,
// full_source) and the same impl-cohesion and container-expansion rules.
package selection

import (
	"github.com/Alb-O/ripdoc/internal/index"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

// IDSet is a simple identifier set, used throughout for membership tests.
type IDSet map[rustdoc.ItemID]bool

func (s IDSet) Add(id rustdoc.ItemID)      { s[id] = true }
func (s IDSet) Has(id rustdoc.ItemID) bool { return s[id] }

// RenderSelection directs the renderer's traversal.
type RenderSelection struct {
	Matches    IDSet
	Context    IDSet
	Expanded   IDSet
	FullSource IDSet
}

func newSelection() *RenderSelection {
	return &RenderSelection{
		Matches:    IDSet{},
		Context:    IDSet{},
		Expanded:   IDSet{},
		FullSource: IDSet{},
	}
}

// isContainer reports whether items of kind k can be "expanded": modules,
// structs, traits and enums. The crate root is itself a module, so
// KindModule covers it.
func isContainer(k rustdoc.Kind) bool {
	switch k {
	case rustdoc.KindModule, rustdoc.KindStruct, rustdoc.KindTrait, rustdoc.KindEnum:
		return true
	default:
		return false
	}
}

// Build constructs a RenderSelection from a set of matched item ids.
// fullSourceIDs may be nil.
func Build(cd *rustdoc.CrateData, ix *index.Index, matchedIDs []rustdoc.ItemID, expandContainers bool, fullSourceIDs IDSet) *RenderSelection {
	sel := newSelection()
	if fullSourceIDs != nil {
		for id := range fullSourceIDs {
			sel.FullSource.Add(id)
			sel.Context.Add(id)
		}
	}

	for _, id := range matchedIDs {
		sel.Matches.Add(id)
		sel.Context.Add(id)
		addAncestors(sel, ix, id)

		it, ok := cd.Get(id)
		if !ok {
			continue
		}

		// Impl cohesion (§4.2): an impl match pulls its target type, and
		// the target type's own ancestors, into context.
		if it.Kind == rustdoc.KindImpl {
			if inner, err := it.AsImpl(); err == nil && inner.TargetItemID != nil {
				sel.Context.Add(*inner.TargetItemID)
				addAncestors(sel, ix, *inner.TargetItemID)
			}
		}

		if expandContainers && isContainer(it.Kind) {
			expand(sel, cd, id)
		}
	}

	return sel
}

// addAncestors inserts every ancestor of id (as recorded by the index) into
// context.
func addAncestors(sel *RenderSelection, ix *index.Index, id rustdoc.ItemID) {
	for _, e := range ix.ByID(id) {
		for _, anc := range e.Ancestors {
			sel.Context.Add(anc)
		}
	}
}

// expand marks containerID as expanded and transitively adds every
// descendant container (and its own descendants' ancestors) to context,
// per §4.2: "transitively adds every descendant container to context and
// itself to expanded."
func expand(sel *RenderSelection, cd *rustdoc.CrateData, containerID rustdoc.ItemID) {
	if sel.Expanded.Has(containerID) {
		return
	}
	sel.Expanded.Add(containerID)
	sel.Context.Add(containerID)

	it, ok := cd.Get(containerID)
	if !ok {
		return
	}

	children := childrenOf(cd, it)
	for _, childID := range children {
		sel.Context.Add(childID)
		child, ok := cd.Get(childID)
		if !ok {
			continue
		}
		if isContainer(child.Kind) {
			expand(sel, cd, childID)
		}
	}
}

func childrenOf(cd *rustdoc.CrateData, it *rustdoc.Item) []rustdoc.ItemID {
	switch it.Kind {
	case rustdoc.KindModule:
		if m, err := it.AsModule(); err == nil {
			return m.Children
		}
	case rustdoc.KindStruct:
		if s, err := it.AsStruct(); err == nil {
			ids := append([]rustdoc.ItemID{}, s.Fields...)
			return append(ids, s.Impls...)
		}
	case rustdoc.KindEnum:
		if e, err := it.AsEnum(); err == nil {
			ids := append([]rustdoc.ItemID{}, e.Variants...)
			return append(ids, e.Impls...)
		}
	case rustdoc.KindTrait:
		if t, err := it.AsTrait(); err == nil {
			return t.Items
		}
	}
	return nil
}

// Everything builds the "absent selection" arithmetic from §4.2: matches =
// context = every reachable item, expand_containers = true, full_source
// empty.
func Everything(cd *rustdoc.CrateData, ix *index.Index) *RenderSelection {
	sel := newSelection()
	for _, e := range ix.Entries {
		sel.Matches.Add(e.ItemID)
		sel.Context.Add(e.ItemID)
		for _, anc := range e.Ancestors {
			sel.Context.Add(anc)
		}
	}
	sel.Context.Add(cd.Root)
	for id := range sel.Matches {
		if it, ok := cd.Get(id); ok && isContainer(it.Kind) {
			sel.Expanded.Add(id)
		}
	}
	return sel
}
