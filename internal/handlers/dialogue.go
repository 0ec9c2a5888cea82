package handlers

import (
	"context"
	"regexp"
	"strings"

	"github.com/llmhive/llmhive/internal/orchestrator"
)

// DialogueHandler answers with a single high-score dialogue model, no
// voting, then applies the safety filters before returning
// (spec.md §4.6/§7).
type DialogueHandler struct {
	Deps Deps
}

func (h DialogueHandler) Handle(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	if len(req.Models) == 0 {
		return orchestrator.HandlerResult{}, errNoModelsRouted(req.Analysis.Category)
	}
	model := req.Models[0]
	toolText := renderToolResults(req.ToolResults)

	resp := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
	if resp.ErrorKind != "" {
		return orchestrator.HandlerResult{ModelsUsed: modelsUsedFrom(resp), StrategyID: "dialogue_single_model", CostUSD: costFrom(resp)}, nil
	}

	text, blocked := applySafetyFilters(resp.RawText)
	if blocked {
		h.Deps.Log.Warn("dialogue response blocked by safety filter", "model", model.ID)
	}

	return orchestrator.HandlerResult{
		RawText:    text,
		ModelsUsed: modelsUsedFrom(resp),
		ToolsUsed:  toolsUsedFrom(req.ToolResults),
		StrategyID: "dialogue_single_model",
		Verified:   false,
		CostUSD:    costFrom(resp),
	}, nil
}

// unsafeContentPatterns are the narrow, literal refusal triggers this
// engine enforces itself rather than trusting upstream providers
// alone to have caught (spec.md §7: defense in depth, not a
// replacement for provider-side moderation).
var unsafeContentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhow to (make|build|synthesize) (a )?(bomb|explosive|nerve agent)\b`),
	regexp.MustCompile(`(?i)\bself[- ]harm instructions\b`),
}

const safetyRefusalText = "I can't help with that request."

func applySafetyFilters(text string) (filtered string, blocked bool) {
	for _, pattern := range unsafeContentPatterns {
		if pattern.MatchString(text) {
			return safetyRefusalText, true
		}
	}
	return strings.TrimSpace(text), false
}
