package handlers

import (
	"context"
	"regexp"
	"strings"

	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/tools"
)

// ToolUseHandler prefers the calculator over an LLM's own arithmetic
// whenever the query has a numeric sub-answer, and otherwise falls
// back to a lenient extractor over the model's own prose (spec.md
// §4.6: number regex, trailing sentence, or explicit "Answer: ...").
type ToolUseHandler struct {
	Deps Deps
}

func (h ToolUseHandler) Handle(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	if len(req.Models) == 0 {
		return orchestrator.HandlerResult{}, errNoModelsRouted(req.Analysis.Category)
	}

	for _, r := range req.ToolResults {
		if r.Tool == tools.ToolCalculator && r.Status == tools.StatusOK {
			// The broker already ran the calculator on an extractable
			// expression; its result is authoritative over any model
			// arithmetic, so skip calling a model altogether.
			return orchestrator.HandlerResult{
				RawText:    "Answer: " + calculatorValue(r.Text),
				ToolsUsed:  toolsUsedFrom(req.ToolResults),
				StrategyID: "tool_use_calculator_authoritative",
				Verified:   true,
			}, nil
		}
	}

	model := req.Models[0]
	toolText := renderToolResults(req.ToolResults)
	resp := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
	if resp.ErrorKind != "" {
		return orchestrator.HandlerResult{ModelsUsed: modelsUsedFrom(resp), StrategyID: "tool_use_lenient_extract", CostUSD: costFrom(resp)}, nil
	}

	return orchestrator.HandlerResult{
		RawText:    extractLenientAnswer(resp.RawText),
		ModelsUsed: modelsUsedFrom(resp),
		ToolsUsed:  toolsUsedFrom(req.ToolResults),
		StrategyID: "tool_use_lenient_extract",
		Verified:   false,
		CostUSD:    costFrom(resp),
	}, nil
}

var (
	explicitAnswerPattern = regexp.MustCompile(`(?i)answer:\s*(.+)`)
	trailingNumberPattern = regexp.MustCompile(`-?\d[\d,]*\.?\d*\s*$`)
)

// extractLenientAnswer tries an explicit "Answer: ..." line first,
// then a trailing numeric token, then the last full sentence.
func extractLenientAnswer(text string) string {
	if m := explicitAnswerPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	trimmed := strings.TrimSpace(text)
	if m := trailingNumberPattern.FindString(trimmed); m != "" {
		return strings.TrimSpace(m)
	}
	sentences := strings.Split(strings.TrimRight(trimmed, "."), ".")
	if len(sentences) > 0 {
		return strings.TrimSpace(sentences[len(sentences)-1]) + "."
	}
	return trimmed
}

// calculatorValue pulls the "= value" tail off the broker's rendered
// calculator result line ("expr = value").
func calculatorValue(rendered string) string {
	parts := strings.SplitN(rendered, "=", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(rendered)
	}
	return strings.TrimSpace(parts[1])
}
