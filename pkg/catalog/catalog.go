package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/what-go/what/pkg/types"
)

// MatchTimeout bounds a single regex evaluation to prevent catastrophic
// backtracking from stalling a scan.
const MatchTimeout = 5 * time.Second

// Catalog is the immutable, compiled set of patterns together with the tag
// vocabulary they define. It is safe for concurrent use.
type Catalog struct {
	patterns []*types.Pattern
	tags     []string
	tagSet   map[string]struct{}
	dropped  []DroppedPattern
}

// DroppedPattern records a definition excluded because one of its variants
// did not compile.
type DroppedPattern struct {
	Name string
	Err  error
}

// Build compiles every definition in order. A definition whose bordered or
// borderless form fails to compile is left out of the catalog; this is not
// an error so that one bad entry cannot take the whole catalog down.
func Build(defs []Definition) *Catalog {
	c := &Catalog{
		patterns: make([]*types.Pattern, 0, len(defs)),
		tagSet:   make(map[string]struct{}),
	}

	for _, d := range defs {
		p, err := compile(d)
		if err != nil {
			c.dropped = append(c.dropped, DroppedPattern{Name: d.Name, Err: err})
			continue
		}
		c.patterns = append(c.patterns, p)
		for _, tag := range p.Tags {
			c.tagSet[tag] = struct{}{}
		}
	}

	c.tags = make([]string, 0, len(c.tagSet))
	for tag := range c.tagSet {
		c.tags = append(c.tags, tag)
	}
	slices.Sort(c.tags)

	return c
}

// LoadBuiltin loads and compiles the embedded catalog.
func LoadBuiltin() (*Catalog, error) {
	defs, err := NewLoader().LoadBuiltin()
	if err != nil {
		return nil, fmt.Errorf("loading builtin catalog: %w", err)
	}
	return Build(defs), nil
}

// LoadFile loads and compiles a catalog file (YAML or JSON).
func LoadFile(path string) (*Catalog, error) {
	defs, err := NewLoader().LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(defs), nil
}

// Patterns returns the compiled patterns in catalog order. The slice is
// shared; callers must not modify it.
func (c *Catalog) Patterns() []*types.Pattern {
	return c.patterns
}

// Len returns the number of compiled patterns.
func (c *Catalog) Len() int {
	return len(c.patterns)
}

// Tags returns the sorted union of all tags of compiled patterns. This is
// the only valid vocabulary for include and exclude filters.
func (c *Catalog) Tags() []string {
	return slices.Clone(c.tags)
}

// HasTag reports whether tag (lowercase) belongs to the catalog vocabulary.
func (c *Catalog) HasTag(tag string) bool {
	_, ok := c.tagSet[tag]
	return ok
}

// Dropped returns the definitions that were excluded at build time.
func (c *Catalog) Dropped() []DroppedPattern {
	return slices.Clone(c.dropped)
}

func compile(d Definition) (*types.Pattern, error) {
	borderlessSource := StripAnchors(d.Regex)

	bordered, err := compileRegexp(d.Regex)
	if err != nil {
		return nil, fmt.Errorf("bordered: %w", err)
	}
	borderless, err := compileRegexp(borderlessSource)
	if err != nil {
		return nil, fmt.Errorf("borderless: %w", err)
	}

	p := &types.Pattern{
		Name:             d.Name,
		Source:           d.Regex,
		BorderlessSource: borderlessSource,
		Rarity:           d.Rarity,
		Tags:             normalizeTags(d.Tags),
		Description:      d.Description,
		Exploit:          d.Exploit,
		URL:              d.URL,
		Bordered:         bordered,
		Borderless:       borderless,
	}
	return p, nil
}

// compileRegexp tries RE2-compatible mode first and falls back to the
// default Perl-like mode for constructs RE2 mode rejects.
func compileRegexp(expr string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.RE2)
	if err != nil {
		re, err = regexp2.Compile(expr, regexp2.None)
		if err != nil {
			return nil, err
		}
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}
