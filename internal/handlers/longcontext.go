package handlers

import (
	"context"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/orchestrator"
)

// longContextThresholdTokens is the approximate token count above
// which a document is considered "long" enough to require a
// long-window model, per spec.md §4.6. Token count is approximated by
// word count since no tokenizer call is worth the cost at this gate.
const longContextThresholdTokens = 4000

// LongContextHandler routes to a long-window model only when the
// embedded document actually exceeds the threshold; otherwise it
// reports CAPABILITY_UNAVAILABLE rather than silently truncating or
// answering from a partial read.
type LongContextHandler struct {
	Deps Deps
}

func (h LongContextHandler) Handle(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	if approxTokenCount(req.Analysis.RewrittenPrompt) <= longContextThresholdTokens {
		return orchestrator.HandlerResult{
			StrategyID:  "long_context_route",
			Unavailable: true,
			ErrorKind:   "CAPABILITY_UNAVAILABLE",
		}, nil
	}

	model, ok := longWindowModel(req)
	if !ok {
		return orchestrator.HandlerResult{
			StrategyID:  "long_context_route",
			Unavailable: true,
			ErrorKind:   "CAPABILITY_UNAVAILABLE",
		}, nil
	}

	toolText := renderToolResults(req.ToolResults)
	resp := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
	if resp.ErrorKind != "" {
		return orchestrator.HandlerResult{ModelsUsed: modelsUsedFrom(resp), StrategyID: "long_context_extract", CostUSD: costFrom(resp)}, nil
	}

	return orchestrator.HandlerResult{
		RawText:    resp.RawText,
		ModelsUsed: modelsUsedFrom(resp),
		ToolsUsed:  toolsUsedFrom(req.ToolResults),
		StrategyID: "long_context_extract",
		Verified:   false,
		CostUSD:    costFrom(resp),
	}, nil
}

// longContextMinWindow is the smallest context window a model must
// report to be considered a long-window model for this category.
const longContextMinWindow = 100_000

func longWindowModel(req orchestrator.HandlerRequest) (catalog.Descriptor, bool) {
	for _, m := range req.Models {
		if m.ContextWindow >= longContextMinWindow {
			return m, true
		}
	}
	return catalog.Descriptor{}, false
}

func approxTokenCount(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		isWordChar := r != ' ' && r != '\n' && r != '\t'
		if isWordChar && !inWord {
			count++
		}
		inWord = isWordChar
	}
	return count
}
