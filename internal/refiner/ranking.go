package refiner

import (
	"regexp"
	"strings"
)

var integerTokenPattern = regexp.MustCompile(`-?[0-9]+`)

// ExtractRanking implements spec.md §4.8's rag-contract rule: pull
// every integer token out of text in order, drop anything
// non-numeric, and deduplicate while preserving first occurrence.
func ExtractRanking(text string) Outcome {
	tokens := integerTokenPattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(tokens))
	ordered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		ordered = append(ordered, t)
	}
	if len(ordered) == 0 {
		return Outcome{Text: "", UsedFallback: true, FallbackKind: "FORMAT_FALLBACK"}
	}
	return Outcome{Text: strings.Join(ordered, ",")}
}
