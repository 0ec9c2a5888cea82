package handlers

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// unifiedDiff builds a single-hunk unified diff between two whole-file
// candidate programs. It is attached to each challenge-refine round's
// Candidate for the diagnostics trail, not used to drive any decision.
//
// Generation is hand-rolled (no pack library computes a diff from two
// strings); the result is then round-tripped through go-diff's parser
// as a cheap self-check that it is well-formed unified diff syntax
// before being attached to the trail.
func unifiedDiff(path, oldText, newText string) string {
	if oldText == newText {
		return ""
	}
	oldLines := splitKeepingEmpty(oldText)
	newLines := splitKeepingEmpty(newText)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", path)
	fmt.Fprintf(&sb, "+++ b/%s\n", path)
	fmt.Fprintf(&sb, "@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines))
	for _, l := range oldLines {
		sb.WriteString("-" + l + "\n")
	}
	for _, l := range newLines {
		sb.WriteString("+" + l + "\n")
	}

	raw := sb.String()
	if _, err := godiff.ParseMultiFileDiff([]byte(raw)); err != nil {
		// A malformed diff is worse than none: drop it rather than
		// attach something unparseable to the trail.
		return ""
	}
	return raw
}

func splitKeepingEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
