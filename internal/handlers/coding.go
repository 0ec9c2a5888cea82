package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/llmhive/llmhive/internal/consensus"
	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/refiner"
	"github.com/llmhive/llmhive/internal/tools"
)

// maxCodingAttempts bounds the generate-test-refine loop (spec.md
// §4.6: "max 3 attempts, never report success without sandbox
// confirmation").
const maxCodingAttempts = 3

// CodingHandler implements the plan-implement-self-check loop: an
// initial implementation is sandboxed against the visible tests; on
// failure, the exact failing-test output is fed back with an
// instruction to fix only the broken logic, up to maxCodingAttempts.
type CodingHandler struct {
	Deps Deps
}

func (h CodingHandler) Handle(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	if len(req.Models) == 0 {
		return orchestrator.HandlerResult{}, errNoModelsRouted(req.Analysis.Category)
	}
	if len(req.VisibleTests) == 0 {
		return orchestrator.HandlerResult{}, fmt.Errorf("handlers: coding category requires at least one visible test")
	}
	model := req.Models[0]
	toolText := renderToolResults(req.ToolResults)

	initial := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
	if initial.ErrorKind != "" {
		return orchestrator.HandlerResult{ModelsUsed: modelsUsedFrom(initial), StrategyID: "coding_generate_test_refine", CostUSD: costFrom(initial)}, nil
	}

	var candidates []orchestrator.Candidate
	var refineResponses []orchestrator.ModelResponse
	var prevCode string
	haveCandidate := false

	critic := func(ctx context.Context, answer string) (consensus.Critique, error) {
		outcome, err := refiner.ExtractCode(ctx, answer, req.ExpectedFunctionName)
		if err != nil {
			return consensus.Critique{}, err
		}
		program := buildSandboxProgram(outcome.Text, req.ExpectedFunctionName)
		result, err := h.Deps.Broker.RunSandbox(ctx, program, req.VisibleTests)
		if err != nil {
			return consensus.Critique{}, err
		}

		var diff string
		if haveCandidate {
			diff = unifiedDiff("solution.py", prevCode, outcome.Text)
		}
		prevCode = outcome.Text
		haveCandidate = true
		candidates = append(candidates, orchestrator.Candidate{
			Response:          orchestrator.ModelResponse{ModelID: model.ID, RawText: outcome.Text},
			VerificationScore: passRatio(result),
			Critique:          failureSummary(result),
			Diff:              diff,
		})

		if result.AllPass {
			return consensus.Critique{Passed: true}, nil
		}
		return consensus.Critique{Passed: false, Feedback: failureSummary(result)}, nil
	}

	refine := func(ctx context.Context, answer, feedback string) (string, error) {
		prompt := req.Analysis
		prompt.RewrittenPrompt = fmt.Sprintf(
			"Your previous solution failed the following test(s):\n%s\n\nHere is your previous solution:\n%s\n\nFix only the broken logic. Keep the same function signature.",
			feedback, answer,
		)
		resp := h.Deps.callModel(ctx, prompt, "", model, req.Temperature)
		refineResponses = append(refineResponses, resp)
		if resp.ErrorKind != "" {
			return "", fmt.Errorf("handlers: refine call failed: %s", resp.ErrorKind)
		}
		return resp.RawText, nil
	}

	result, err := consensus.ChallengeRefine(ctx, initial.RawText, critic, refine, maxCodingAttempts)
	if err != nil {
		return orchestrator.HandlerResult{}, err
	}

	return orchestrator.HandlerResult{
		RawText:    result.Answer,
		Candidates: candidates,
		ModelsUsed: modelsUsedFrom(append([]orchestrator.ModelResponse{initial}, refineResponses...)...),
		ToolsUsed:  append([]tools.ToolName{tools.ToolSandbox}, toolsUsedFrom(req.ToolResults)...),
		StrategyID: "coding_generate_test_refine",
		Verified:   result.Verified,
		CostUSD:    costFrom(initial) + costFrom(refineResponses...),
	}, nil
}

// buildSandboxProgram appends a stdin-driven call harness to the
// extracted function: the sandbox runs the candidate as a standalone
// script (spec.md's black-box test convention), so the function alone
// is never invoked unless something calls it. Each test's Input is one
// Python literal per line, parsed with ast.literal_eval so a test can
// pass a list, tuple, dict, string, or number as a positional argument
// (e.g. spec.md §8's has_close_elements(numbers, threshold), where
// numbers is a list) rather than only ever a bare scalar token.
func buildSandboxProgram(fn, funcName string) string {
	return fmt.Sprintf(`%s

import ast
import sys

_args = [ast.literal_eval(line) for line in sys.stdin.read().splitlines() if line.strip()]
_result = %s(*_args)
if _result is not None:
    print(_result)
`, fn, funcName)
}

func passRatio(result tools.SandboxResult) float64 {
	if len(result.Outcomes) == 0 {
		return 0
	}
	passed := 0
	for _, o := range result.Outcomes {
		if o.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(result.Outcomes))
}

func failureSummary(result tools.SandboxResult) string {
	var sb strings.Builder
	for _, o := range result.Outcomes {
		if o.Passed {
			continue
		}
		if o.TimedOut {
			fmt.Fprintf(&sb, "test %q timed out\n", o.Name)
			continue
		}
		fmt.Fprintf(&sb, "test %q failed: got %q, stderr %q\n", o.Name, o.Got, o.Stderr)
	}
	return sb.String()
}
