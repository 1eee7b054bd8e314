package index

import (
	"regexp"
	"strings"
)

// SearchOptions controls a single query evaluation against a built Index.
type SearchOptions struct {
	Query             string
	Domains           Domain
	CaseSensitive     bool
	IncludePrivate    bool
	ExpandContainers  bool
}

// SearchResult is an IndexEntry plus the domain bitset that produced the
// match.
type SearchResult struct {
	IndexEntry
	Matched Domain
}

// matcher evaluates one query against arbitrary text, implementing §4.1's
// OR-vs-substring rule.
type matcher struct {
	isOR          bool
	re            *regexp.Regexp
	needle        string
	caseSensitive bool
}

func newMatcher(query string, caseSensitive bool) *matcher {
	m := &matcher{caseSensitive: caseSensitive}
	if strings.Contains(query, "|") {
		m.isOR = true
		pattern := escapeRegexPreservingPipes(query)
		if !caseSensitive {
			pattern = "(?i)" + pattern
		}
		// A malformed pattern (shouldn't happen: only `|` is unescaped)
		// degrades to substring matching against the raw query.
		re, err := regexp.Compile(pattern)
		if err == nil {
			m.re = re
			return m
		}
		m.isOR = false
	}
	if caseSensitive {
		m.needle = query
	} else {
		m.needle = strings.ToLower(query)
	}
	return m
}

func (m *matcher) match(text string) bool {
	if m.isOR {
		return m.re.MatchString(text)
	}
	if m.needle == "" {
		return true
	}
	if m.caseSensitive {
		return strings.Contains(text, m.needle)
	}
	return strings.Contains(strings.ToLower(text), m.needle)
}

// Search evaluates opts against ix, returning results in stable index
// order (§4.1's "Tie-breaking").
func Search(ix *Index, opts SearchOptions) []SearchResult {
	domains := opts.Domains
	if domains == 0 {
		domains = DefaultDomains
	}

	m := newMatcher(opts.Query, opts.CaseSensitive)
	var normM *matcher
	if domains&(DomainDocs|DomainSignatures) != 0 {
		normQuery := stripSymbolsPreservingPipes(opts.Query)
		normM = newMatcher(normQuery, opts.CaseSensitive)
	}

	var results []SearchResult
	for _, e := range ix.Entries {
		var matched Domain
		if domains&DomainNames != 0 && m.match(e.RawName) {
			matched |= DomainNames
		}
		if domains&DomainPaths != 0 && m.match(e.PathString) {
			matched |= DomainPaths
		}
		if domains&DomainDocs != 0 && normM.match(stripSymbolsPreservingPipes(e.Docs)) {
			matched |= DomainDocs
		}
		if domains&DomainSignatures != 0 && normM.match(stripSymbolsPreservingPipes(e.Signature)) {
			matched |= DomainSignatures
		}
		if matched != 0 {
			results = append(results, SearchResult{IndexEntry: e, Matched: matched})
		}
	}
	return results
}
