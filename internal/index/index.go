// Package index builds the canonical, ancestor-aware search index over a
// CrateData and evaluates multi-domain queries against it.
//
// Construction is grounded on the depth-first crate-walk pattern the
// teacher uses to flatten a rustdoc tree into linear records (see
// internal/docs/parse.go's item walk in ferrisfetch), generalized here to
// carry ancestor chains and to implement the re-export shadowing and
// visibility rules spec'd for this project.
package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/sig"
)

func displayName(it *rustdoc.Item) string { return sig.DisplayName(it) }
func escapeIdent(name string) string      { return sig.EscapeIdent(name) }

// Domain is a bit in the SearchOptions.Domains bitset.
type Domain uint8

const (
	DomainNames Domain = 1 << iota
	DomainDocs
	DomainPaths
	DomainSignatures
)

// DefaultDomains matches §4.1: {names, docs, signatures}.
const DefaultDomains = DomainNames | DomainDocs | DomainSignatures

// IndexEntry is the search index's per-item record.
type IndexEntry struct {
	ItemID      rustdoc.ItemID
	Kind        rustdoc.Kind
	RawName     string
	DisplayName string // raw-identifier-escaped for reserved words
	PathSegments []string
	PathString  string
	Ancestors   []rustdoc.ItemID // crate root down to the item's parent
	Signature   string
	SourceFile  string
	SourceLine  int
	Docs        string

	// Hierarchical is false for Method entries (Type::method,
	// Type::Trait::method): they participate in search but are excluded
	// from hierarchical listings per §4.1.
	Hierarchical bool
}

// Index is the built, queryable set of entries plus lookup maps used by
// selection building and the path resolver.
type Index struct {
	Entries []IndexEntry
	byID    map[rustdoc.ItemID][]*IndexEntry // an item may have >1 entry (original + alias)
	crate   *rustdoc.CrateData
}

// ByID returns every entry recorded for an item id (usually one; more when
// a re-export creates an alias alongside the original under
// include_private=true).
func (ix *Index) ByID(id rustdoc.ItemID) []*IndexEntry {
	return ix.byID[id]
}

// SignatureFunc renders an item's display signature; supplied by the sig
// package to avoid an import cycle (index is a leaf the renderer/resolver
// both depend on, sig depends on rustdoc only).
type SignatureFunc func(cd *rustdoc.CrateData, it *rustdoc.Item) string

type builder struct {
	cd             *rustdoc.CrateData
	includePrivate bool
	sig            SignatureFunc
	entries        []IndexEntry
	visitedModules map[rustdoc.ItemID]bool // guards against re-export cycles
}

// Build performs the depth-first crate-root walk described in §4.1.
func Build(cd *rustdoc.CrateData, includePrivate bool, sig SignatureFunc) *Index {
	b := &builder{
		cd:             cd,
		includePrivate: includePrivate,
		sig:            sig,
		visitedModules: map[rustdoc.ItemID]bool{},
	}
	root, ok := cd.Get(cd.Root)
	if ok {
		b.walkModule(root, nil, nil)
	}
	b.collectExportedMacros()
	b.collectMethods()

	ix := &Index{Entries: b.entries, byID: map[rustdoc.ItemID][]*IndexEntry{}, crate: cd}
	for i := range ix.Entries {
		e := &ix.Entries[i]
		ix.byID[e.ItemID] = append(ix.byID[e.ItemID], e)
	}
	return ix
}

func (b *builder) walkModule(mod *rustdoc.Item, pathPrefix []string, ancestors []rustdoc.ItemID) {
	if b.visitedModules[mod.ID] {
		return
	}
	b.visitedModules[mod.ID] = true

	minner, err := mod.AsModule()
	if err != nil {
		return
	}

	childAncestors := append(append([]rustdoc.ItemID{}, ancestors...), mod.ID)

	for _, childID := range minner.Children {
		child, ok := b.cd.Get(childID)
		if !ok {
			continue // external/unresolved
		}
		b.walkChild(child, pathPrefix, childAncestors)
	}
}

func (b *builder) walkChild(item *rustdoc.Item, pathPrefix []string, ancestors []rustdoc.ItemID) {
	switch item.Kind {
	case rustdoc.KindModule:
		if !item.Visibility.IndexVisible(b.includePrivate) {
			// Not directly visible: still descend when include_private is
			// set, so originals are recorded alongside any public alias
			// created elsewhere by a re-export. When include_private is
			// false we deliberately skip: any publicly-reachable content
			// inside only becomes visible via an explicit `pub use`,
			// which is handled at the use site, producing the shadowing
			// behavior required by §8.
			if !b.includePrivate {
				return
			}
		}
		name := displayName(item)
		segs := append(append([]string{}, pathPrefix...), name)
		b.emit(item, segs, ancestors, false)
		b.walkModule(item, segs, ancestors)

	case rustdoc.KindUse:
		b.walkUse(item, pathPrefix, ancestors)

	default:
		if !item.Visibility.IndexVisible(b.includePrivate) {
			return
		}
		name := displayName(item)
		segs := append(append([]string{}, pathPrefix...), name)
		b.emit(item, segs, ancestors, true)
	}
}

func (b *builder) walkUse(use *rustdoc.Item, pathPrefix []string, ancestors []rustdoc.ItemID) {
	inner, err := use.AsUse()
	if err != nil {
		return
	}

	if inner.IsGlob {
		if inner.ResolvedID == nil {
			return // unresolved glob is opaque to the index
		}
		target, ok := b.cd.Get(*inner.ResolvedID)
		if !ok {
			return
		}
		b.expandGlob(target, pathPrefix, ancestors)
		return
	}

	if inner.ResolvedID == nil {
		return // unresolved simple/alias use: nothing to index as a target
	}
	target, ok := b.cd.Get(*inner.ResolvedID)
	if !ok {
		return
	}
	// Record the alias entry at the re-export site using the *target's*
	// kind/docs/signature but the alias's path - this is what makes
	// re-export shadowing work: if target lives in a private module we
	// never descended into, this is the only entry it gets.
	name := displayName(use)
	if use.Name != nil {
		name = escapeIdent(*use.Name)
	} else if target.Name != nil {
		name = escapeIdent(*target.Name)
	}
	segs := append(append([]string{}, pathPrefix...), name)
	b.emitAliased(target, segs, ancestors)
}

// expandGlob handles `use foo::*`: one entry per visible child of the
// source module, or one per variant for an enum-glob.
func (b *builder) expandGlob(target *rustdoc.Item, pathPrefix []string, ancestors []rustdoc.ItemID) {
	switch target.Kind {
	case rustdoc.KindModule:
		minner, err := target.AsModule()
		if err != nil {
			return
		}
		for _, childID := range minner.Children {
			child, ok := b.cd.Get(childID)
			if !ok || !child.Visibility.IndexVisible(b.includePrivate) {
				continue
			}
			name := displayName(child)
			segs := append(append([]string{}, pathPrefix...), name)
			b.emitAliased(child, segs, ancestors)
		}
	case rustdoc.KindEnum:
		einner, err := target.AsEnum()
		if err != nil {
			return
		}
		for _, vid := range einner.Variants {
			v, ok := b.cd.Get(vid)
			if !ok {
				continue
			}
			name := displayName(v)
			segs := append(append([]string{}, pathPrefix...), name)
			b.emitAliased(v, segs, ancestors)
		}
	}
}

func (b *builder) emit(item *rustdoc.Item, segs []string, ancestors []rustdoc.ItemID, hierarchical bool) {
	e := b.makeEntry(item, segs, ancestors, hierarchical)
	b.entries = append(b.entries, e)
}

// emitAliased records an entry for target under an alias path, without
// recursing - used for re-export sites. Hierarchical is true unless the
// target is a method-ineligible kind handled elsewhere.
func (b *builder) emitAliased(target *rustdoc.Item, segs []string, ancestors []rustdoc.ItemID) {
	e := b.makeEntry(target, segs, ancestors, target.Kind != rustdoc.KindModule)
	b.entries = append(b.entries, e)
	if target.Kind == rustdoc.KindModule {
		// A `pub use priv_mod::*` style re-export of a module: its own
		// children remain reachable only through further globbing by the
		// caller; we don't auto-descend here because the alias path for
		// nested children isn't well-defined without another glob.
	}
}

func (b *builder) makeEntry(item *rustdoc.Item, segs []string, ancestors []rustdoc.ItemID, hierarchical bool) IndexEntry {
	docs := ""
	if item.Docs != nil {
		docs = *item.Docs
	}
	sourceFile, sourceLine := "", 0
	if item.Span != nil {
		sourceFile, sourceLine = item.Span.Filename, item.Span.Begin
	}
	sig := ""
	if b.sig != nil {
		sig = b.sig(b.cd, item)
	}
	raw := ""
	if item.Name != nil {
		raw = *item.Name
	}
	return IndexEntry{
		ItemID:       item.ID,
		Kind:         item.Kind,
		RawName:      raw,
		DisplayName:  displayName(item),
		PathSegments: segs,
		PathString:   strings.Join(segs, "::"),
		Ancestors:    ancestors,
		Signature:    sig,
		SourceFile:   sourceFile,
		SourceLine:   sourceLine,
		Docs:         docs,
		Hierarchical: hierarchical,
	}
}

// collectExportedMacros hoists macro_rules! items flagged for whole-crate
// export to the crate root, regardless of their defining module, per
// §4.1's final construction rule.
func (b *builder) collectExportedMacros() {
	root, ok := b.cd.Get(b.cd.Root)
	if !ok {
		return
	}
	rootName := displayName(root)
	for _, it := range allItems(b.cd) {
		if it.Kind != rustdoc.KindMacro {
			continue
		}
		if !macroExported(it) {
			continue
		}
		if alreadyIndexed(b.entries, it.ID) {
			continue
		}
		name := displayName(it)
		b.emit(it, []string{rootName, name}, []rustdoc.ItemID{b.cd.Root}, true)
	}
}

// collectMethods indexes impl and trait body items as Method entries with
// path Type::method (or Type::Trait::method for trait impls), per §4.1's
// "Impl methods are indexed as Method entries" clause. These are
// non-hierarchical: present for search, absent from module-tree listings.
func (b *builder) collectMethods() {
	for _, it := range allItems(b.cd) {
		switch it.Kind {
		case rustdoc.KindStruct, rustdoc.KindEnum, rustdoc.KindUnion:
			b.collectImplsFor(it)
		case rustdoc.KindTrait:
			b.collectTraitItemsFor(it)
		}
	}
}

func (b *builder) collectImplsFor(owner *rustdoc.Item) {
	var implIDs []rustdoc.ItemID
	switch owner.Kind {
	case rustdoc.KindStruct:
		if s, err := owner.AsStruct(); err == nil {
			implIDs = s.Impls
		}
	case rustdoc.KindEnum:
		if e, err := owner.AsEnum(); err == nil {
			implIDs = e.Impls
		}
	case rustdoc.KindUnion:
		if u, err := owner.AsUnion(); err == nil {
			implIDs = u.Impls
		}
	}
	ownerName := displayName(owner)
	for _, implID := range implIDs {
		impl, ok := b.cd.Get(implID)
		if !ok {
			continue
		}
		inner, err := impl.AsImpl()
		if err != nil || inner.IsSynthetic {
			continue
		}
		traitSeg := ""
		if inner.Trait != nil {
			traitSeg = lastSegment(*inner.Trait) + "::"
		}
		for _, memberID := range inner.Items {
			member, ok := b.cd.Get(memberID)
			if !ok || !member.Visibility.IndexVisible(b.includePrivate) {
				continue
			}
			name := displayName(member)
			path := fmt.Sprintf("%s::%s%s", ownerName, traitSeg, name)
			e := b.makeEntry(member, strings.Split(path, "::"), nil, false)
			e.PathString = path
			e.Kind = rustdoc.KindMethod
			b.entries = append(b.entries, e)
		}
	}
}

func (b *builder) collectTraitItemsFor(tr *rustdoc.Item) {
	inner, err := tr.AsTrait()
	if err != nil {
		return
	}
	trName := displayName(tr)
	for _, memberID := range inner.Items {
		member, ok := b.cd.Get(memberID)
		if !ok || !member.Visibility.IndexVisible(b.includePrivate) {
			continue
		}
		name := displayName(member)
		path := trName + "::" + name
		e := b.makeEntry(member, strings.Split(path, "::"), nil, false)
		e.PathString = path
		e.Kind = rustdoc.KindMethod
		b.entries = append(b.entries, e)
	}
}

func alreadyIndexed(entries []IndexEntry, id rustdoc.ItemID) bool {
	for _, e := range entries {
		if e.ItemID == id {
			return true
		}
	}
	return false
}

func allItems(cd *rustdoc.CrateData) []*rustdoc.Item {
	out := make([]*rustdoc.Item, 0, len(cd.Items))
	for _, it := range cd.Items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func macroExported(it *rustdoc.Item) bool {
	// The extractor marks whole-crate-exported macros by giving them
	// public visibility at a synthetic location; absent a dedicated flag
	// in CrateData, public visibility on a Macro item is the signal.
	return it.IsPublic()
}

func lastSegment(path string) string {
	parts := strings.Split(path, "::")
	return parts[len(parts)-1]
}

// KindRank orders kinds for tie-breaking during disambiguation: struct/
// enum/trait rank above module, which ranks above everything else.
func KindRank(k rustdoc.Kind) int {
	switch k {
	case rustdoc.KindStruct, rustdoc.KindEnum, rustdoc.KindTrait:
		return 0
	case rustdoc.KindModule:
		return 1
	default:
		return 2
	}
}
