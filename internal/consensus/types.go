// Package consensus implements the cross-cutting voting and
// verification primitives category handlers build on: sample
// aggregation (self_consistency), primary/verifier weighted voting
// (hierarchical_consensus), and iterative critique (challenge_refine).
package consensus

// Sample is one independent model response, already reduced to its
// extracted answer (a letter, a number, a short string — whatever the
// handler's format contract expects).
type Sample struct {
	ModelID  string
	Answer   string
	Weight   float64 // 2.0 for elite/primary models, 1.0 otherwise
}

// Decision is the outcome of any consensus strategy: the winning
// answer, whether it was unanimous, the vote tally, and a confidence
// score in [0,1] derived from how dominant the winner was.
type Decision struct {
	Answer     string
	Unanimous  bool
	Confidence float64
	Tally      map[string]float64
	Strategy   string
}

// AnswerKind selects the similarity/normalization rule used to decide
// whether two extracted answers agree (spec.md §4.7).
type AnswerKind string

const (
	AnswerNumeric AnswerKind = "numeric"
	AnswerLetter  AnswerKind = "letter"
	AnswerFreeText AnswerKind = "free_text"
)
