package handlers

import (
	"context"

	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/consensus"
	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/refiner"
)

// crossLingualConfidenceCap is the confidence ceiling applied when the
// detected-language answer and the English cross-check answer
// disagree (spec.md §4.6).
const crossLingualConfidenceCap = 0.5

// MultilingualHandler answers in the detected language without
// translating the question, then separately asks the same model for
// an English answer and requires the two extracted answer letters to
// agree textually; disagreement caps confidence rather than silently
// picking one.
type MultilingualHandler struct {
	Deps Deps
}

func (h MultilingualHandler) Handle(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	if len(req.Models) == 0 {
		return orchestrator.HandlerResult{}, errNoModelsRouted(req.Analysis.Category)
	}
	model := req.Models[0]
	toolText := renderToolResults(req.ToolResults)

	native := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
	if native.ErrorKind != "" {
		return orchestrator.HandlerResult{ModelsUsed: modelsUsedFrom(native), StrategyID: "multilingual_native_answer", CostUSD: costFrom(native)}, nil
	}

	if req.Analysis.DetectedLanguage == "" || req.Analysis.DetectedLanguage == "en" {
		return orchestrator.HandlerResult{
			RawText:    native.RawText,
			ModelsUsed: modelsUsedFrom(native),
			ToolsUsed:  toolsUsedFrom(req.ToolResults),
			StrategyID: "multilingual_native_answer",
			Verified:   true,
			CostUSD:    costFrom(native),
		}, nil
	}

	englishAnalysis := req.Analysis
	englishAnalysis.Category = classifier.CategoryReasoning // reuse the letter contract/preamble for the cross-check
	englishAnalysis.DetectedLanguage = "en"
	english := h.Deps.callModel(ctx, englishAnalysis, toolText, model, req.Temperature)

	confidence := 1.0
	verified := true
	nativeLetter := ""
	if english.ErrorKind != "" {
		confidence = crossLingualConfidenceCap
		verified = false
	} else {
		nativeLetter = refiner.ExtractLetter(native.RawText, "").Text
		englishLetter := refiner.ExtractLetter(english.RawText, "").Text
		if nativeLetter == "" || nativeLetter != englishLetter {
			confidence = crossLingualConfidenceCap
			verified = false
		}
	}

	// Confidence has no vote behind it here; Decision is reused purely
	// as the vehicle the orchestrator reads final confidence from.
	decision := consensus.Decision{Answer: nativeLetter, Confidence: confidence, Strategy: "multilingual_cross_check"}

	return orchestrator.HandlerResult{
		RawText:    native.RawText,
		ModelsUsed: modelsUsedFrom(native, english),
		ToolsUsed:  toolsUsedFrom(req.ToolResults),
		StrategyID: "multilingual_cross_check",
		Verified:   verified,
		Consensus:  &decision,
		CostUSD:    costFrom(native, english),
	}, nil
}
