package index

import "testing"

func entries(names ...string) *Index {
	var es []IndexEntry
	for _, n := range names {
		es = append(es, IndexEntry{RawName: n, PathString: n})
	}
	return &Index{Entries: es}
}

func TestSearchORQuery(t *testing.T) {
	t.Parallel()

	ix := entries("Widget", "helper", "render")
	results := Search(ix, SearchOptions{Query: "Widget|helper", Domains: DomainNames})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	names := map[string]bool{}
	for _, r := range results {
		names[r.RawName] = true
	}
	if !names["Widget"] || !names["helper"] {
		t.Errorf("expected Widget and helper, got %v", names)
	}
}

func TestSearchORQueryCaseSensitive(t *testing.T) {
	t.Parallel()

	ix := entries("Widget", "helper", "render")
	results := Search(ix, SearchOptions{Query: "widget|HELPER", Domains: DomainNames, CaseSensitive: true})
	if len(results) != 0 {
		t.Fatalf("expected 0 case-sensitive matches, got %d", len(results))
	}

	results = Search(ix, SearchOptions{Query: "Widget|HELPER", Domains: DomainNames, CaseSensitive: true})
	if len(results) != 1 || results[0].RawName != "Widget" {
		t.Fatalf("expected only Widget, got %v", results)
	}
}

func TestSearchSubstringMatch(t *testing.T) {
	t.Parallel()

	ix := entries("render_all", "renderer", "other")
	results := Search(ix, SearchOptions{Query: "render", Domains: DomainNames})
	if len(results) != 2 {
		t.Fatalf("expected 2 substring matches, got %d", len(results))
	}
}

func TestSearchDocsDomainNormalization(t *testing.T) {
	t.Parallel()

	ix := &Index{Entries: []IndexEntry{
		{RawName: "foo", Docs: "fn foo() -> u32 does a thing"},
	}}
	results := Search(ix, SearchOptions{Query: "fn foo  u32", Domains: DomainDocs})
	if len(results) != 1 {
		t.Fatalf("expected normalized docs match, got %d results", len(results))
	}
}

func TestSearchSignatureDomainNormalization(t *testing.T) {
	t.Parallel()

	ix := &Index{Entries: []IndexEntry{
		{RawName: "foo", Signature: "pub fn foo() -> u32"},
	}}
	results := Search(ix, SearchOptions{Query: "fn foo  u32", Domains: DomainSignatures})
	if len(results) != 1 {
		t.Fatalf("expected normalized signature match, got %d results", len(results))
	}
}

func TestSearchEmptyQueryMatchesEverything(t *testing.T) {
	t.Parallel()

	ix := entries("a", "b", "c")
	results := Search(ix, SearchOptions{Query: "", Domains: DomainNames})
	if len(results) != 3 {
		t.Fatalf("expected empty query to match all entries, got %d", len(results))
	}
}

func TestSearchDefaultDomains(t *testing.T) {
	t.Parallel()

	ix := &Index{Entries: []IndexEntry{
		{RawName: "target", PathString: "some::path::target"},
	}}
	// PathString alone contains "path" but names/docs/signatures (the
	// default domain set) do not, so a path-only query should miss when
	// Domains is left at its zero value.
	results := Search(ix, SearchOptions{Query: "some::path"})
	if len(results) != 0 {
		t.Fatalf("expected default domains to exclude paths, got %d", len(results))
	}
}

func TestEscapeRegexPreservingPipes(t *testing.T) {
	t.Parallel()

	got := escapeRegexPreservingPipes("foo.txt|bar*")
	want := `foo\.txt|bar\*`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStripSymbolsPreservingPipes(t *testing.T) {
	t.Parallel()

	got := stripSymbolsPreservingPipes("fn foo() -> u32")
	want := "fn foo  u32"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
