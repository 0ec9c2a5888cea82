package consensus

import "context"

// Critique is one round's verdict from the critic function passed to
// ChallengeRefine: whether the current answer passed, and if not, the
// feedback to feed back into the refiner.
type Critique struct {
	Passed   bool
	Feedback string
}

// ChallengeRefineResult is the outcome of a ChallengeRefine run.
type ChallengeRefineResult struct {
	Answer   string
	Verified bool
	Rounds   int
}

// ChallengeRefine iterates: critic checks the current answer; if it
// fails, refiner is given the exact feedback and produces a new
// answer. Stops as soon as critic passes, or after maxRounds attempts
// total (the coding handler calls this with maxRounds=3 and a
// sandbox-backed critic, per spec.md §4.6's "never report success
// without sandbox confirmation").
func ChallengeRefine(
	ctx context.Context,
	initial string,
	critic func(ctx context.Context, answer string) (Critique, error),
	refiner func(ctx context.Context, answer, feedback string) (string, error),
	maxRounds int,
) (ChallengeRefineResult, error) {
	answer := initial
	for round := 1; round <= maxRounds; round++ {
		critique, err := critic(ctx, answer)
		if err != nil {
			return ChallengeRefineResult{Answer: answer, Rounds: round}, err
		}
		if critique.Passed {
			return ChallengeRefineResult{Answer: answer, Verified: true, Rounds: round}, nil
		}
		if round == maxRounds {
			return ChallengeRefineResult{Answer: answer, Verified: false, Rounds: round}, nil
		}
		refined, err := refiner(ctx, answer, critique.Feedback)
		if err != nil {
			return ChallengeRefineResult{Answer: answer, Rounds: round}, err
		}
		answer = refined
	}
	return ChallengeRefineResult{Answer: answer, Verified: false, Rounds: maxRounds}, nil
}
