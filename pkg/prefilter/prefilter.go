package prefilter

import (
	"github.com/cloudflare/ahocorasick"
	"github.com/what-go/what/pkg/types"
)

// Prefilter uses Aho-Corasick to skip patterns whose required literal
// prefix does not occur in the text.
type Prefilter struct {
	matcher           *ahocorasick.Matcher
	keywords          []string                    // keyword at each index
	keywordPatterns   map[string][]*types.Pattern // keyword -> patterns needing it
	noKeywordPatterns []*types.Pattern            // always checked
}

// New creates a prefilter from patterns.
func New(patterns []*types.Pattern) *Prefilter {
	pf := &Prefilter{
		keywordPatterns:   make(map[string][]*types.Pattern),
		noKeywordPatterns: make([]*types.Pattern, 0),
	}

	for _, p := range patterns {
		keyword := Keyword(p.BorderlessSource)
		if keyword == "" {
			pf.noKeywordPatterns = append(pf.noKeywordPatterns, p)
			continue
		}
		if _, seen := pf.keywordPatterns[keyword]; !seen {
			pf.keywords = append(pf.keywords, keyword)
		}
		pf.keywordPatterns[keyword] = append(pf.keywordPatterns[keyword], p)
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}

	return pf
}

// Filter returns the patterns that might match content: those without a
// keyword plus those whose keyword occurs in content. It is safe for
// concurrent use.
func (pf *Prefilter) Filter(content []byte) []*types.Pattern {
	result := make([]*types.Pattern, 0, len(pf.noKeywordPatterns))
	result = append(result, pf.noKeywordPatterns...)

	if pf.matcher == nil {
		return result
	}

	seen := make(map[int]bool)
	for _, hit := range pf.matcher.MatchThreadSafe(content) {
		if seen[hit] {
			continue
		}
		seen[hit] = true
		result = append(result, pf.keywordPatterns[pf.keywords[hit]]...)
	}

	return result
}

// Keywords returns the distinct keywords in the automaton.
func (pf *Prefilter) Keywords() []string {
	return pf.keywords
}
