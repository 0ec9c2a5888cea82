package handlers

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/tools"
)

// MathHandler decomposes a word problem into steps with a single
// model, then re-derives every step's numeric result with the
// calculator rather than trusting the model's arithmetic: the
// calculator result is authoritative, the model's plan is not
// (spec.md §4.6's "math: calculator-authoritative" invariant).
type MathHandler struct {
	Deps Deps
}

// stepExpressionPattern extracts one arithmetic step per line, where
// an operand is either a literal number or a reference to the
// previous step's result (result/previous/prev), so steps can chain
// without the model ever doing its own arithmetic.
var stepExpressionPattern = regexp.MustCompile(`(?mi)^\s*(?:Step\s*\d+\s*:?\s*)?((?:[-+]?[\d.]+|result|previous|prev)(?:\s*[-+*/^%]\s*(?:[-+]?[\d.]+|result|previous|prev))+)\s*$`)

func (h MathHandler) Handle(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	if len(req.Models) == 0 {
		return orchestrator.HandlerResult{}, errNoModelsRouted(req.Analysis.Category)
	}
	model := req.Models[0]

	toolText := renderToolResults(req.ToolResults)
	plan := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
	if plan.ErrorKind != "" {
		return orchestrator.HandlerResult{
			ModelsUsed: modelsUsedFrom(plan),
			StrategyID: "math_single_model_cot",
			CostUSD:    costFrom(plan),
		}, nil
	}

	steps := stepExpressionPattern.FindAllStringSubmatch(plan.RawText, -1)
	if len(steps) == 0 {
		// No extractable expression: fall back to trusting the model's
		// own CoT answer, unverified by the calculator.
		return orchestrator.HandlerResult{
			RawText:    plan.RawText,
			ModelsUsed: modelsUsedFrom(plan),
			ToolsUsed:  toolsUsedFrom(req.ToolResults),
			StrategyID: "math_single_model_cot_fallback",
			Verified:   false,
			CostUSD:    costFrom(plan),
		}, nil
	}

	var lastValue float64
	var lines []string
	var toolsUsed []tools.ToolName
	prevValue := ""

	for i, m := range steps {
		expr := m[1]
		if prevValue != "" {
			expr = substituteResult(expr, prevValue)
		}
		result, err := h.Deps.Broker.RunCalculator(expr)
		toolsUsed = append(toolsUsed, tools.ToolCalculator)
		if err != nil || result.Status != tools.StatusOK {
			// A malformed step breaks the chain: report what we have,
			// unverified, rather than silently guessing.
			lines = append(lines, "Step "+strconv.Itoa(i+1)+": could not evaluate \""+expr+"\"")
			return orchestrator.HandlerResult{
				RawText:    strings.Join(lines, "\n"),
				ModelsUsed: modelsUsedFrom(plan),
				ToolsUsed:  append(toolsUsed, toolsUsedFrom(req.ToolResults)...),
				StrategyID: "math_calculator_authoritative",
				Verified:   false,
				CostUSD:    costFrom(plan),
			}, nil
		}
		lastValue = result.Value
		prevValue = formatNumber(result.Value)
		lines = append(lines, "Step "+strconv.Itoa(i+1)+": "+expr+" = "+prevValue)
	}

	lines = append(lines, "#### "+formatNumber(lastValue))

	return orchestrator.HandlerResult{
		RawText:    strings.Join(lines, "\n"),
		ModelsUsed: modelsUsedFrom(plan),
		ToolsUsed:  append(toolsUsed, toolsUsedFrom(req.ToolResults)...),
		StrategyID: "math_calculator_authoritative",
		Verified:   true,
		CostUSD:    costFrom(plan),
	}, nil
}

// substituteResult replaces every standalone "result", "previous" or
// "prev" keyword in expr with the previous step's calculator result
// (expr is returned unchanged when none occurs), letting step N+1
// reference "the answer from step N" the way a human solving a
// multi-step word problem would.
func substituteResult(expr, prevValue string) string {
	re := regexp.MustCompile(`\bresult\b|\bprevious\b|\bprev\b`)
	if re.MatchString(expr) {
		return re.ReplaceAllString(expr, prevValue)
	}
	return expr
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
