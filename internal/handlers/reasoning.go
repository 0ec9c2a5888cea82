package handlers

import (
	"context"

	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/consensus"
	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/refiner"
)

// eliteVoterCount is how many diverse-provider elite models vote on a
// complex reasoning query before falling back to verifiers.
const eliteVoterCount = 3

// ReasoningHandler implements multiple-choice reasoning: simple
// queries go to a single highest-capability model; medium/complex
// queries fan out to eliteVoterCount diverse-provider models and take
// a weighted majority vote, escalating to verifiers on a tie
// (spec.md §4.6).
type ReasoningHandler struct {
	Deps Deps
}

func (h ReasoningHandler) Handle(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	if len(req.Models) == 0 {
		return orchestrator.HandlerResult{}, errNoModelsRouted(req.Analysis.Category)
	}

	if req.Analysis.Complexity == classifier.ComplexitySimple {
		return h.singleModel(ctx, req)
	}
	return h.votedConsensus(ctx, req)
}

func (h ReasoningHandler) singleModel(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	model := req.Models[0]
	toolText := renderToolResults(req.ToolResults)
	resp := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
	if resp.ErrorKind != "" {
		return orchestrator.HandlerResult{ModelsUsed: modelsUsedFrom(resp), StrategyID: "reasoning_single_model", CostUSD: costFrom(resp)}, nil
	}
	return orchestrator.HandlerResult{
		RawText:    resp.RawText,
		ModelsUsed: modelsUsedFrom(resp),
		ToolsUsed:  toolsUsedFrom(req.ToolResults),
		StrategyID: "reasoning_single_model",
		Verified:   false,
		CostUSD:    costFrom(resp),
	}, nil
}

func (h ReasoningHandler) votedConsensus(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	toolText := renderToolResults(req.ToolResults)
	primaries := req.Models
	if len(primaries) > eliteVoterCount {
		primaries = primaries[:eliteVoterCount]
	}

	responses := make([]orchestrator.ModelResponse, 0, len(primaries))
	samples := make([]consensus.Sample, 0, len(primaries))
	for _, model := range primaries {
		resp := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
		responses = append(responses, resp)
		if resp.ErrorKind != "" {
			continue
		}
		letter := refiner.ExtractLetter(resp.RawText, "").Text
		samples = append(samples, consensus.Sample{ModelID: model.ID, Answer: letter, Weight: 2.0})
	}

	if len(samples) == 0 {
		return orchestrator.HandlerResult{ModelsUsed: modelsUsedFrom(responses...), StrategyID: "reasoning_weighted_vote", CostUSD: costFrom(responses...)}, nil
	}

	decision := consensus.SelfConsistency(consensus.AnswerLetter, samples)
	strategy := "reasoning_weighted_vote"
	confirmed := decision.Unanimous || consensus.StrictlyDominant(decision)

	if !confirmed && len(req.Models) > len(primaries) {
		// Tie: escalate to verifiers from the next tier and revote once.
		verifiers := req.Models[len(primaries):]
		verifierSamples := make([]consensus.Sample, 0, len(verifiers))
		for _, model := range verifiers {
			resp := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
			responses = append(responses, resp)
			if resp.ErrorKind != "" {
				continue
			}
			letter := refiner.ExtractLetter(resp.RawText, "").Text
			verifierSamples = append(verifierSamples, consensus.Sample{ModelID: model.ID, Answer: letter, Weight: 1.0})
		}
		decision = consensus.HierarchicalConsensus(consensus.AnswerLetter, samples, verifierSamples, consensus.DefaultSimilarityThreshold)
		strategy = "reasoning_hierarchical_consensus"
		confirmed = decision.Unanimous || consensus.StrictlyDominant(decision)
	}

	if !confirmed {
		// Second tie: fall back to the single highest-capability model's
		// own answer, with confidence capped per spec.md §4.6.
		if resp, ok := responseFor(responses, req.Models[0].ID); ok {
			decision.Answer = refiner.ExtractLetter(resp.RawText, "").Text
		}
		decision.Confidence = minFloat(decision.Confidence, 0.6)
	}

	return orchestrator.HandlerResult{
		RawText:    decision.Answer,
		ModelsUsed: modelsUsedFrom(responses...),
		ToolsUsed:  toolsUsedFrom(req.ToolResults),
		Consensus:  &decision,
		StrategyID: strategy,
		Verified:   confirmed,
		CostUSD:    costFrom(responses...),
	}, nil
}

// responseFor returns the first non-error response in responses that
// came from modelID, so the second-tie fallback can recover the
// highest-capability model's own answer regardless of which voting
// round actually called it.
func responseFor(responses []orchestrator.ModelResponse, modelID string) (orchestrator.ModelResponse, bool) {
	for _, r := range responses {
		if r.ModelID == modelID && r.ErrorKind == "" {
			return r, true
		}
	}
	return orchestrator.ModelResponse{}, false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
