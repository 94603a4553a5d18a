// Package search implements the waste-item autocomplete used by the app and
// the public website.
package search

import (
	"strings"

	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
)

// MinQueryLen is the minimum number of normalized characters a query needs
// before any matching is attempted.
const MinQueryLen = 2

// MatchKind tells whether an item matched at the start of a term or inside it.
type MatchKind string

const (
	MatchPrefix    MatchKind = "prefix"
	MatchSubstring MatchKind = "substring"
)

// Result is one matched item.
type Result struct {
	Item  models.WasteItem `json:"item"`
	Match MatchKind        `json:"match"`
}

// Search matches query against each item's precomputed SearchTerms.
//
// Prefix matches come first, then substring-only matches; both groups keep
// catalog order and an item appears at most once. Queries shorter than
// MinQueryLen normalized runes return an empty, non-nil slice.
func Search(query string, items []models.WasteItem) []Result {
	q := normalize.Fold(query)
	if len([]rune(q)) < MinQueryLen {
		return []Result{}
	}

	var prefix, substring []Result
	for _, it := range items {
		switch classify(q, it.SearchTerms) {
		case MatchPrefix:
			prefix = append(prefix, Result{Item: it, Match: MatchPrefix})
		case MatchSubstring:
			substring = append(substring, Result{Item: it, Match: MatchSubstring})
		}
	}

	out := make([]Result, 0, len(prefix)+len(substring))
	out = append(out, prefix...)
	return append(out, substring...)
}

// Items is Search without the match annotations.
func Items(query string, items []models.WasteItem) []models.WasteItem {
	res := Search(query, items)
	out := make([]models.WasteItem, len(res))
	for i, r := range res {
		out[i] = r.Item
	}
	return out
}

func classify(q string, terms []string) MatchKind {
	var kind MatchKind
	for _, term := range terms {
		if strings.HasPrefix(term, q) {
			return MatchPrefix
		}
		if kind == "" && strings.Contains(term, q) {
			kind = MatchSubstring
		}
	}
	return kind
}

// BuildTerms produces the normalized, de-duplicated search terms for an
// item from its names and keywords. Each full phrase is kept, along with
// every word of it, so "papier recyclé" matches both "pap" and "rec".
func BuildTerms(values ...string) []string {
	seen := make(map[string]struct{})
	var terms []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		terms = append(terms, s)
	}
	for _, v := range values {
		folded := normalize.Fold(v)
		add(folded)
		for _, w := range strings.Fields(folded) {
			add(w)
		}
	}
	return terms
}
