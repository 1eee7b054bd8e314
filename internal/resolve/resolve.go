// Package resolve implements the path resolver (§4.6): turning a
// user-typed target string into a single matched item against a built
// search index, with locality preference, kind/path-length tie-breaking,
// ambiguity warnings, and a `crate::` fallback rewrite.
//
// Grounded on original_source/src/skelebuild/resolver.rs
// (build_query_candidates, resolve_best_path_match, resolve_impl_target,
// validate_add_target_or_error), with the cargo-target-parsing and
// crate-acquisition portions of that file left out: those belong to the
// external extractor/acquisition collaborator (§6, out of scope here).
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Alb-O/ripdoc/internal/index"
	"github.com/Alb-O/ripdoc/internal/rerr"
	"github.com/Alb-O/ripdoc/internal/rlog"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

// IsLocalFunc reports whether a search result's originating span belongs
// to the package currently being resolved against (as opposed to a
// dependency whose items leaked into the index via re-export).
type IsLocalFunc func(index.SearchResult) bool

// Match is a single resolved target, naming both the matched path and
// (for impl-block targets) the underlying impl item id rather than the
// type's own id.
type Match struct {
	Result   index.SearchResult
	ImplID   rustdoc.ItemID // set only when the query resolved to Type::Trait
	HasImpl  bool
}

// BuildQueryCandidates generates the ordered list of path variants tried
// for one query: the query as typed, the query with its crate-name
// prefix normalized, and the query with its first segment stripped.
func BuildQueryCandidates(baseQuery string, crateName string) []string {
	candidates := []string{baseQuery}
	if first, rest, ok := strings.Cut(baseQuery, "::"); ok {
		if crateName != "" && first != crateName {
			candidates = append(candidates, crateName+"::"+rest)
		}
		candidates = append(candidates, rest)
	}
	return dedupStrings(candidates)
}

func dedupStrings(in []string) []string {
	out := in[:0:0]
	seen := map[string]bool{}
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Best resolves baseQuery to the single best-matching search result,
// preferring local matches, then non-module kinds, then shorter paths.
// Ambiguous resolutions log a warning naming the chosen candidate but
// still return it, per §4.6.
func Best(ix *index.Index, crateName, pkgLabel, baseQuery string, isLocal IsLocalFunc, includePrivate bool) (index.SearchResult, bool) {
	for _, candidate := range BuildQueryCandidates(baseQuery, crateName) {
		opts := index.SearchOptions{
			Query:          candidate,
			Domains:        index.DomainPaths,
			IncludePrivate: includePrivate,
		}
		results := index.Search(ix, opts)

		if strings.Contains(candidate, "::") {
			filtered := results[:0:0]
			suffix := "::" + candidate
			for _, r := range results {
				if r.PathString == candidate || strings.HasSuffix(r.PathString, suffix) {
					filtered = append(filtered, r)
				}
			}
			results = filtered
		}

		var local []index.SearchResult
		for _, r := range results {
			if isLocal(r) {
				local = append(local, r)
			}
		}
		pool := results
		if len(local) > 0 {
			pool = local
		}
		if len(pool) == 0 {
			continue
		}

		sort.SliceStable(pool, func(i, j int) bool {
			li, lj := isLocal(pool[i]), isLocal(pool[j])
			if li != lj {
				return li // local sorts first
			}
			ri, rj := index.KindRank(pool[i].Kind), index.KindRank(pool[j].Kind)
			if ri != rj {
				return ri < rj
			}
			return len(pool[i].PathString) < len(pool[j].PathString)
		})

		if len(pool) > 1 {
			rlog.Printf("ambiguous match for `%s` in `%s`; using `%s`", baseQuery, pkgLabel, pool[0].PathString)
		}
		return pool[0], true
	}
	return index.SearchResult{}, false
}

// Impl resolves a `Type::Trait` query to the impl item implementing
// trait_name for the type matched by type_query.
func Impl(ix *index.Index, cd *rustdoc.CrateData, crateName, pkgLabel, baseQuery string, isLocal IsLocalFunc, includePrivate bool) (Match, bool) {
	typeQuery, traitName, ok := cutLastDoubleColon(baseQuery)
	if !ok || traitName == "" {
		return Match{}, false
	}

	tyMatch, ok := Best(ix, crateName, pkgLabel, typeQuery, isLocal, includePrivate)
	if !ok {
		return Match{}, false
	}
	switch tyMatch.Kind {
	case rustdoc.KindStruct, rustdoc.KindEnum, rustdoc.KindUnion:
	default:
		return Match{}, false
	}

	traitOpts := index.SearchOptions{
		Query:          traitName,
		Domains:        index.DomainNames | index.DomainPaths,
		IncludePrivate: includePrivate,
	}
	var traitResults []index.SearchResult
	for _, r := range index.Search(ix, traitOpts) {
		if r.Kind == rustdoc.KindTrait || r.Kind == rustdoc.KindTraitAlias {
			traitResults = append(traitResults, r)
		}
	}
	if len(traitResults) == 0 {
		return Match{}, false
	}
	sort.SliceStable(traitResults, func(i, j int) bool {
		ei, ej := traitResults[i].RawName != traitName, traitResults[j].RawName != traitName
		if ei != ej {
			return !ei
		}
		li, lj := isLocal(traitResults[i]), isLocal(traitResults[j])
		if li != lj {
			return li
		}
		return len(traitResults[i].PathString) < len(traitResults[j].PathString)
	})
	traitMatch := traitResults[0]

	tyItem, ok := cd.Get(tyMatch.ItemID)
	if !ok {
		return Match{}, false
	}
	var implIDs []rustdoc.ItemID
	switch tyItem.Kind {
	case rustdoc.KindStruct:
		if s, err := tyItem.AsStruct(); err == nil {
			implIDs = s.Impls
		}
	case rustdoc.KindEnum:
		if e, err := tyItem.AsEnum(); err == nil {
			implIDs = e.Impls
		}
	case rustdoc.KindUnion:
		if u, err := tyItem.AsUnion(); err == nil {
			implIDs = u.Impls
		}
	}

	for _, implID := range implIDs {
		implItem, ok := cd.Get(implID)
		if !ok {
			continue
		}
		inner, err := implItem.AsImpl()
		if err != nil || inner.Trait == nil {
			continue
		}
		if traitTargetID(cd, *inner.Trait) == traitMatch.ItemID {
			return Match{Result: tyMatch, ImplID: implID, HasImpl: true}, true
		}
	}
	return Match{}, false
}

// traitTargetID resolves a trait-path string back to a trait item id by
// scanning cd's items for a trait whose name equals the path's last
// segment; it returns "" when no such trait exists.
func traitTargetID(cd *rustdoc.CrateData, traitPath string) rustdoc.ItemID {
	name := traitPath
	if i := strings.LastIndex(traitPath, "::"); i >= 0 {
		name = traitPath[i+2:]
	}
	for id, it := range cd.Items {
		if it.Kind == rustdoc.KindTrait && it.Name != nil && *it.Name == name {
			return id
		}
	}
	return ""
}

func cutLastDoubleColon(s string) (before, after string, ok bool) {
	i := strings.LastIndex(s, "::")
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+2:], true
}

// ValidateAddTarget resolves baseQuery against ix/cd the way skelebuild's
// add action does: try as typed, then as an impl target, then with a
// `crate::` rewrite of the first segment (unless strict), before failing
// with actionable suggestions.
func ValidateAddTarget(ix *index.Index, cd *rustdoc.CrateData, crateName, pkgLabel, baseQuery string, isLocal IsLocalFunc, includePrivate, strict bool) (Match, error) {
	if m, ok := Best(ix, crateName, pkgLabel, baseQuery, isLocal, includePrivate); ok {
		return Match{Result: m}, nil
	}
	if m, ok := Impl(ix, cd, crateName, pkgLabel, baseQuery, isLocal, includePrivate); ok {
		return m, nil
	}

	if !strict {
		if first, rest, ok := strings.Cut(baseQuery, "::"); ok && first != crateName && first != "crate" {
			crateQuery := "crate::" + rest
			if m, ok := Best(ix, crateName, pkgLabel, crateQuery, isLocal, includePrivate); ok {
				rlog.Printf("interpreted `%s` as `%s`", baseQuery, crateQuery)
				return Match{Result: m}, nil
			}
			if m, ok := Impl(ix, cd, crateName, pkgLabel, crateQuery, isLocal, includePrivate); ok {
				rlog.Printf("interpreted `%s` as `%s`", baseQuery, crateQuery)
				return m, nil
			}
		}
	}

	return Match{}, suggestionError(ix, pkgLabel, baseQuery, isLocal)
}

func suggestionError(ix *index.Index, pkgLabel, baseQuery string, isLocal IsLocalFunc) error {
	lastSeg := baseQuery
	if i := strings.LastIndex(baseQuery, "::"); i >= 0 {
		lastSeg = baseQuery[i+2:]
	}

	opts := index.SearchOptions{
		Query:          lastSeg,
		Domains:        index.DomainPaths | index.DomainNames,
		IncludePrivate: true,
	}
	var results []index.SearchResult
	for _, r := range index.Search(ix, opts) {
		if isLocal(r) {
			results = append(results, r)
		}
	}

	suffix := "::" + baseQuery
	sort.SliceStable(results, func(i, j int) bool {
		ni, nj := results[i].RawName != lastSeg, results[j].RawName != lastSeg
		if ni != nj {
			return !ni
		}
		var si, sj bool
		if strings.Contains(baseQuery, "::") {
			si = !strings.HasSuffix(results[i].PathString, suffix)
			sj = !strings.HasSuffix(results[j].PathString, suffix)
		} else {
			si, sj = true, true
		}
		if si != sj {
			return !si
		}
		return len(results[i].PathString) < len(results[j].PathString)
	})
	if len(results) > 5 {
		results = results[:5]
	}

	var sb strings.Builder
	if len(results) > 0 {
		sb.WriteString("\nDid you mean:\n")
		for _, r := range results {
			sb.WriteString("  - ")
			sb.WriteString(r.PathString)
			sb.WriteByte('\n')
		}
	}
	msg := fmt.Sprintf("no path match found for `%s` in `%s`.%s", baseQuery, pkgLabel, sb.String())
	return rerr.New(rerr.InvalidTarget, msg)
}
