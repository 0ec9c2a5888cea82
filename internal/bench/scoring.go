package bench

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/llmhive/llmhive/internal/refiner"
	"github.com/llmhive/llmhive/internal/tools"
)

// Scorer evaluates a single suite item's scoring rules against an
// engine's raw output and produces the objective half of the
// composite score (spec.md §4.10).
type Scorer struct {
	Sandbox *tools.Sandbox
}

// NewScorer returns a Scorer; sandbox may be nil if the suite under
// test has no code_tests_pass items.
func NewScorer(sandbox *tools.Sandbox) *Scorer {
	return &Scorer{Sandbox: sandbox}
}

// Evaluate runs every rule declared on item against rawText and
// reports whether all of them passed, alongside a human-readable
// failure reason for the first rule that didn't.
func (s *Scorer) Evaluate(ctx context.Context, item PromptItem, rawText string) (passed bool, reason string) {
	if len(item.Rules) == 0 {
		return true, ""
	}
	for _, rule := range item.Rules {
		ok, why, err := s.evalRule(ctx, rule, item, rawText)
		if err != nil {
			return false, fmt.Sprintf("%s: %v", rule, err)
		}
		if !ok {
			return false, why
		}
	}
	return true, ""
}

func (s *Scorer) evalRule(ctx context.Context, rule ScoringRule, item PromptItem, rawText string) (bool, string, error) {
	switch rule {
	case RuleExactContains:
		if strings.Contains(rawText, item.Expected.Contains) {
			return true, "", nil
		}
		return false, fmt.Sprintf("output does not contain %q", item.Expected.Contains), nil

	case RuleNotContains:
		if !strings.Contains(rawText, item.Expected.NotContains) {
			return true, "", nil
		}
		return false, fmt.Sprintf("output unexpectedly contains %q", item.Expected.NotContains), nil

	case RuleRegex:
		re, err := regexp.Compile(item.Expected.Regex)
		if err != nil {
			return false, "", fmt.Errorf("invalid regex %q: %w", item.Expected.Regex, err)
		}
		if re.MatchString(rawText) {
			return true, "", nil
		}
		return false, fmt.Sprintf("output does not match /%s/", item.Expected.Regex), nil

	case RuleNumericEqual:
		return s.evalNumericEqual(item, rawText)

	case RuleRankingMRRAtK:
		return s.evalRankingMRR(item, rawText)

	case RuleCodeTestsPass:
		return s.evalCodeTestsPass(ctx, item, rawText)

	default:
		return false, "", fmt.Errorf("unknown scoring rule %q", rule)
	}
}

func (s *Scorer) evalNumericEqual(item PromptItem, rawText string) (bool, string, error) {
	if item.Expected.Numeric == nil {
		return false, "", fmt.Errorf("numeric_equal rule requires expected.numeric")
	}
	got, err := extractTrailingNumber(rawText)
	if err != nil {
		return false, "no numeric value found in output", nil
	}
	want := item.Expected.Numeric.Value
	tol := item.Expected.Numeric.Tolerance
	if diff := got - want; diff <= tol && diff >= -tol {
		return true, "", nil
	}
	return false, fmt.Sprintf("got %v, want %v ± %v", got, want, tol), nil
}

var trailingNumberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// extractTrailingNumber mirrors the convention the math contract uses
// for its "####" terminator: the last number-shaped token in the text
// is the candidate's final answer.
func extractTrailingNumber(text string) (float64, error) {
	matches := trailingNumberPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no number found")
	}
	return strconv.ParseFloat(matches[len(matches)-1], 64)
}

// evalRankingMRR scores a single ranking item as pass/fail: it passes
// when Expected.RelevantID appears within the first Expected.RankAtK
// entries of the model's comma-joined ranking (all entries when
// RankAtK is not set) and fails otherwise. The graded 1/rank value is
// computed separately by RankReciprocal.
func (s *Scorer) evalRankingMRR(item PromptItem, rawText string) (bool, string, error) {
	outcome := refiner.ExtractRanking(rawText)
	ids := strings.Split(outcome.Text, ",")
	k := item.Expected.RankAtK
	if k <= 0 {
		k = len(ids)
	}
	for i, id := range ids {
		if i >= k {
			break
		}
		if strings.TrimSpace(id) == item.Expected.RelevantID {
			return true, "", nil
		}
	}
	return false, fmt.Sprintf("relevant id %q not found in top %d of ranking %q", item.Expected.RelevantID, k, outcome.Text), nil
}

// RankReciprocal returns 1/rank of Expected.RelevantID within the
// model's ranking (0 if absent or beyond RankAtK), a graded
// counterpart to evalRankingMRR's pass/fail. The aggregator does not
// call it; run reports carry only the pass/fail result.
func RankReciprocal(item PromptItem, rawText string) float64 {
	outcome := refiner.ExtractRanking(rawText)
	ids := strings.Split(outcome.Text, ",")
	k := item.Expected.RankAtK
	if k <= 0 {
		k = len(ids)
	}
	for i, id := range ids {
		if i >= k {
			break
		}
		if strings.TrimSpace(id) == item.Expected.RelevantID {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

func (s *Scorer) evalCodeTestsPass(ctx context.Context, item PromptItem, rawText string) (bool, string, error) {
	if s.Sandbox == nil {
		return false, "", fmt.Errorf("code_tests_pass rule requires a sandbox")
	}
	outcome, err := refiner.ExtractCode(ctx, rawText, item.Expected.FunctionName)
	if err != nil {
		return false, "", err
	}
	tests := make([]tools.TestCase, len(item.Expected.VisibleTests))
	for i, t := range item.Expected.VisibleTests {
		tests[i] = tools.TestCase{Name: t.Name, Input: t.Input, Want: t.Want}
	}
	program := buildSandboxHarness(outcome.Text, item.Expected.FunctionName)
	result, err := s.Sandbox.Run(ctx, program, tests)
	if err != nil {
		return false, "", err
	}
	if result.AllPass {
		return true, "", nil
	}
	var failed []string
	for _, o := range result.Outcomes {
		if !o.Passed {
			failed = append(failed, o.Name)
		}
	}
	return false, fmt.Sprintf("failed tests: %s", strings.Join(failed, ", ")), nil
}

// buildSandboxHarness wraps an extracted function in a stdin-driven
// call harness, identical in shape to the coding handler's own
// harness: the sandbox always executes a complete script, never a bare
// function definition. Each test's Input is one Python literal per
// line, parsed with ast.literal_eval, so a compound-typed argument
// (a list, tuple, dict, ...) round-trips as a real Python object
// instead of being flattened into scalar tokens.
func buildSandboxHarness(fn, funcName string) string {
	return fmt.Sprintf(`%s

import ast
import sys

_args = [ast.literal_eval(line) for line in sys.stdin.read().splitlines() if line.strip()]
_result = %s(*_args)
if _result is not None:
    print(_result)
`, fn, funcName)
}

// CompositeScore combines the objective rule evaluation with a rubric
// signal (the engine's own reported confidence, standing in for a
// human/LLM rubric rater) per the suite item's configured weights
// (spec.md §4.10: "Composite score is the configured weighted sum").
func CompositeScore(item PromptItem, objectivePassed bool, rubricScore float64) float64 {
	objective := 0.0
	if objectivePassed {
		objective = 1.0
	}
	weightSum := item.Scoring.ObjectiveWeight + item.Scoring.RubricWeight
	if weightSum == 0 {
		return objective
	}
	return (item.Scoring.ObjectiveWeight*objective + item.Scoring.RubricWeight*rubricScore) / weightSum
}
