package main

import (
	"cmp"
	"slices"

	"github.com/what-go/what/pkg/types"
)

const (
	keyName    = "name"
	keyRarity  = "rarity"
	keyMatched = "matched"
	keyNone    = "none"
)

var sortKeys = []string{keyName, keyRarity, keyMatched, keyNone}

// sortMatches orders matches in place by key. The sort is stable, so
// matches with equal keys keep their discovery order. With keyNone the
// slice is left untouched, reverse included.
func sortMatches(matches []types.Match, key string, reverse bool) {
	var compare func(a, b types.Match) int
	switch key {
	case keyName:
		compare = func(a, b types.Match) int { return cmp.Compare(a.Name, b.Name) }
	case keyRarity:
		compare = func(a, b types.Match) int { return cmp.Compare(a.Rarity, b.Rarity) }
	case keyMatched:
		compare = func(a, b types.Match) int { return cmp.Compare(a.MatchedOn, b.MatchedOn) }
	default:
		return
	}

	if reverse {
		forward := compare
		compare = func(a, b types.Match) int { return forward(b, a) }
	}
	slices.SortStableFunc(matches, compare)
}
