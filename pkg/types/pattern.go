package types

import (
	"slices"

	"github.com/dlclark/regexp2"
)

// Pattern is a compiled catalog entry. It is built once and never mutated,
// so it can be shared by every matching goroutine without locking.
type Pattern struct {
	Name             string   // display label, not unique
	Source           string   // pattern text as written in the catalog
	BorderlessSource string   // Source with unescaped ^ and $ outside brackets removed
	Rarity           float64  // 0 (rare, specific) .. 1 (common, generic)
	Tags             []string // lowercase
	Description      string   // optional
	Exploit          string   // optional
	URL              string   // optional reference link prefix

	Bordered   *regexp2.Regexp
	Borderless *regexp2.Regexp
}

// Regexp returns the compiled variant selected by the borderless flag.
func (p *Pattern) Regexp(borderless bool) *regexp2.Regexp {
	if borderless {
		return p.Borderless
	}
	return p.Bordered
}

// HasTag reports whether the pattern carries tag (already lowercased).
func (p *Pattern) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}
