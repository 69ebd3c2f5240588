// Package filter decides which catalog patterns take part in a scan.
package filter

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/what-go/what/pkg/types"
)

// DefaultRarity is the range used when none is given.
const DefaultRarity = "0.1:1"

// ErrInvalidRarity is returned for a rarity range that cannot be used.
var ErrInvalidRarity = errors.New("invalid rarity range")

// UnknownTagsError lists include or exclude tags that no catalog pattern
// carries. It is a configuration error and callers should abort on it.
type UnknownTagsError struct {
	Tags []string
}

func (e *UnknownTagsError) Error() string {
	return "invalid tags: " + strings.Join(e.Tags, ", ")
}

// TagSet is the tag vocabulary a filter is validated against.
type TagSet interface {
	HasTag(tag string) bool
}

// Config holds the raw filter inputs.
type Config struct {
	Rarity     string // "min:max", empty means DefaultRarity
	Borderless bool
	Include    string // comma-separated tags
	Exclude    string // comma-separated tags
}

// Filter is an immutable eligibility predicate for patterns.
type Filter struct {
	min, max   float64
	borderless bool
	include    []string
	exclude    []string
}

// New validates cfg against the known tag vocabulary and builds a Filter.
func New(cfg Config, known TagSet) (*Filter, error) {
	rarity := cfg.Rarity
	if rarity == "" {
		rarity = DefaultRarity
	}
	minR, maxR, err := ParseRarity(rarity)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		min:        minR,
		max:        maxR,
		borderless: cfg.Borderless,
		include:    ParseTags(cfg.Include),
		exclude:    ParseTags(cfg.Exclude),
	}

	var unknown []string
	for _, tag := range slices.Concat(f.include, f.exclude) {
		if !known.HasTag(tag) && !slices.Contains(unknown, tag) {
			unknown = append(unknown, tag)
		}
	}
	if len(unknown) > 0 {
		return nil, &UnknownTagsError{Tags: unknown}
	}

	return f, nil
}

// ParseRarity parses "min:max" with 0 <= min and max <= 1.
func ParseRarity(s string) (minR, maxR float64, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w %q: expected min:max", ErrInvalidRarity, s)
	}

	minR, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q: bad minimum: %v", ErrInvalidRarity, s, err)
	}
	maxR, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q: bad maximum: %v", ErrInvalidRarity, s, err)
	}

	if math.IsNaN(minR) || math.IsNaN(maxR) {
		return 0, 0, fmt.Errorf("%w %q: NaN is not a rarity", ErrInvalidRarity, s)
	}
	if minR < 0 {
		return 0, 0, fmt.Errorf("%w %q: minimum must be at least 0", ErrInvalidRarity, s)
	}
	if maxR > 1 {
		return 0, 0, fmt.Errorf("%w %q: maximum must be at most 1", ErrInvalidRarity, s)
	}
	if minR > maxR {
		return 0, 0, fmt.Errorf("%w %q: minimum is greater than maximum", ErrInvalidRarity, s)
	}
	return minR, maxR, nil
}

// ParseTags splits a comma-separated tag list, lowercasing and trimming
// each entry. Empty entries are dropped.
func ParseTags(csv string) []string {
	if csv == "" {
		return []string{}
	}

	parts := strings.Split(csv, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.ToLower(strings.TrimSpace(p))
		if tag != "" && !slices.Contains(result, tag) {
			result = append(result, tag)
		}
	}
	return result
}

// IsExcluded reports whether p must be skipped. Rarity is a closed interval.
func (f *Filter) IsExcluded(p *types.Pattern) bool {
	if p.Rarity < f.min || p.Rarity > f.max {
		return true
	}
	for _, tag := range f.exclude {
		if p.HasTag(tag) {
			return true
		}
	}
	if len(f.include) == 0 {
		return false
	}
	for _, tag := range f.include {
		if p.HasTag(tag) {
			return false
		}
	}
	return true
}

// Borderless reports which regex variant to use.
func (f *Filter) Borderless() bool {
	return f.borderless
}
