package router

import (
	"regexp"
	"sort"
	"strings"
)

// ResolveScope extracts the (bank, category, product_name) triple mentioned
// in utterance by matching against the live entity registry. It never
// fails: an utterance matching nothing returns an empty Scope.
//
// Matching priority is product name, then category, then bank — product
// names win ties because they are the most specific entity. Within each
// entity kind, the longest matching alias wins, and matching is on whole-
// word boundaries except for product names, which may contain internal
// punctuation.
func ResolveScope(utterance string, reg EntityRegistry) Scope {
	lower := strings.ToLower(utterance)

	productMatch, productAlias := longestProductMatch(lower, reg.ProductNames())
	bankMatches := allMatches(lower, reg.Banks())
	categoryMatch := longestAliasMatch(lower, reg.Categories())

	scope := Scope{}

	if productMatch != "" {
		scope.ProductName = productMatch
		// A product name resolved without an explicit bank inherits the
		// owning bank from the registry.
		if len(bankMatches) == 0 && productAlias.Bank != "" {
			scope.Bank = productAlias.Bank
		}
	}

	if len(bankMatches) > 0 {
		scope.Bank = bankMatches[0]
		if len(bankMatches) > 1 {
			scope.AltBanks = bankMatches[1:]
		}
	}

	if categoryMatch != "" {
		scope.Category = categoryMatch
	}

	scope.ScopeStrength = scopeStrength(scope)
	return scope
}

func scopeStrength(s Scope) float64 {
	have := 0
	if s.HasBank() {
		have++
	}
	if s.HasCategory() {
		have++
	}
	switch have {
	case 0:
		return 0.0
	case 1:
		return 0.5
	default:
		return 1.0
	}
}

// longestAliasMatch returns the canonical entity whose longest alias
// appears in lower, preferring longer aliases on overlap.
func longestAliasMatch(lower string, entities []Alias) string {
	best := ""
	bestLen := 0
	for _, e := range entities {
		for _, alias := range e.Aliases {
			if len(alias) <= bestLen {
				continue
			}
			if wordBoundaryContains(lower, alias) {
				best = e.Canonical
				bestLen = len(alias)
			}
		}
	}
	return best
}

// allMatches returns every entity matched in textual order of first
// occurrence, used for bank detection so a second mentioned bank can be
// recorded in AltBanks for COMPARE.
func allMatches(lower string, entities []Alias) []string {
	type hit struct {
		canonical string
		pos       int
	}
	var hits []hit
	for _, e := range entities {
		bestPos := -1
		for _, alias := range e.Aliases {
			idx := wordBoundaryIndex(lower, alias)
			if idx >= 0 && (bestPos == -1 || idx < bestPos) {
				bestPos = idx
			}
		}
		if bestPos >= 0 {
			hits = append(hits, hit{canonical: e.Canonical, pos: bestPos})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.canonical)
	}
	return out
}

// longestProductMatch scans product aliases allowing internal punctuation
// rather than strict word boundaries, since product names ("SBI SimplyCLICK
// Card") routinely embed punctuation and mixed case.
func longestProductMatch(lower string, products []ProductAlias) (string, ProductAlias) {
	best := ""
	var bestAlias ProductAlias
	bestLen := 0
	for _, p := range products {
		name := strings.ToLower(p.Name)
		if len(name) <= bestLen {
			continue
		}
		if strings.Contains(lower, name) {
			best = p.Name
			bestAlias = p
			bestLen = len(name)
		}
	}
	return best, bestAlias
}

func wordBoundaryContains(haystack, needle string) bool {
	return wordBoundaryIndex(haystack, needle) >= 0
}

func wordBoundaryIndex(haystack, needle string) int {
	if needle == "" {
		return -1
	}
	pattern := `(^|[^a-z0-9])` + regexp.QuoteMeta(needle) + `($|[^a-z0-9])`
	re := regexp.MustCompile(pattern)
	loc := re.FindStringIndex(haystack)
	if loc == nil {
		return -1
	}
	// Advance past the leading boundary character we captured, if any.
	start := loc[0]
	if start < len(haystack) && !isWordChar(rune(haystack[start])) {
		start++
	}
	return start
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
