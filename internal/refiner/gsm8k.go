package refiner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	gsm8kFooterPattern = regexp.MustCompile(`####\s*(-?[0-9][0-9,]*\.?[0-9]*)`)
	numericTokenPattern = regexp.MustCompile(`-?[0-9][0-9,]*\.?[0-9]*`)
)

// ExtractGSM8K implements spec.md §4.8's math-contract rule: if an
// existing `#### N` footer is present, keep it (normalized); else
// append one built from the last numeric token in the text.
func ExtractGSM8K(text string) Outcome {
	if locs := gsm8kFooterPattern.FindAllStringSubmatchIndex(text, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		raw := text[last[2]:last[3]]
		n := normalizeNumber(raw)
		truncated := strings.TrimSpace(text[:last[0]])
		return Outcome{Text: fmt.Sprintf("%s\n#### %s", truncated, n)}
	}

	tokens := numericTokenPattern.FindAllString(text, -1)
	if len(tokens) == 0 {
		return Outcome{Text: fmt.Sprintf("%s\n#### 0", strings.TrimSpace(text)), UsedFallback: true, FallbackKind: "FORMAT_FALLBACK"}
	}
	n := normalizeNumber(tokens[len(tokens)-1])
	return Outcome{Text: fmt.Sprintf("%s\n#### %s", strings.TrimSpace(text), n)}
}

// normalizeNumber strips thousands separators and produces a plain
// decimal with no separators, per spec.md §4.5's gsm8k contract.
func normalizeNumber(raw string) string {
	cleaned := strings.ReplaceAll(raw, ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return cleaned
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
