package refiner

import (
	"context"

	"github.com/llmhive/llmhive/internal/prompttpl"
)

// Options carries the category-specific inputs a handler already has
// at refine time: the highest-scoring choice for the letter fallback,
// and the expected function name for the code contract. Fields unused
// by the active contract are simply ignored.
type Options struct {
	HighestScoringChoice string
	ExpectedFunctionName string
}

// Refine dispatches raw handler output to the extractor matching
// contract and returns the contract-satisfying Outcome. long_context
// and free-text contracts pass through unchanged: the long_context
// contract is enforced by the handler itself (it controls the model's
// entire output), and free text has no format to enforce.
func Refine(ctx context.Context, contract prompttpl.Contract, raw string, opts Options) (Outcome, error) {
	switch contract {
	case prompttpl.ContractLetter:
		return ExtractLetter(raw, opts.HighestScoringChoice), nil
	case prompttpl.ContractGSM8K:
		return ExtractGSM8K(raw), nil
	case prompttpl.ContractCode:
		return ExtractCode(ctx, raw, opts.ExpectedFunctionName)
	case prompttpl.ContractRanking:
		return ExtractRanking(raw), nil
	default:
		return Outcome{Text: raw}, nil
	}
}
