package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/gateway"
	"github.com/llmhive/llmhive/internal/orchestrator"
)

func TestMathHandler_CalculatorAuthoritativeOverridesModelArithmetic(t *testing.T) {
	// The model proposes the plan but must never compute the arithmetic
	// itself; the calculator derives both step values.
	backend := &fakeBackend{texts: []string{"Step 1: 16-3\nStep 2: result-4"}}
	deps := testDeps(backend)
	h := MathHandler{Deps: deps}

	req := orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryMath, "Janet has 16 eggs, sells 3, then 4 more. How many are left?"),
		Models:   []catalog.Descriptor{testModel("gpt")},
	}

	result, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Contains(t, result.RawText, "#### 9")
	assert.NotContains(t, result.RawText, "#### 16")
}

func TestMathHandler_NoExtractableExpressionFallsBackUnverified(t *testing.T) {
	backend := &fakeBackend{texts: []string{"I believe the answer is forty-two."}}
	h := MathHandler{Deps: testDeps(backend)}

	req := orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryMath, "What is the answer to everything?"),
		Models:   []catalog.Descriptor{testModel("gpt")},
	}

	result, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "math_single_model_cot_fallback", result.StrategyID)
}

func TestMathHandler_ReportsCostFromUsageAndCatalogRate(t *testing.T) {
	backend := &fakeBackend{
		texts: []string{"Step 1: 16-3\nStep 2: result-4"},
		usage: gateway.Usage{PromptTokens: 100, CompletionTokens: 50},
	}
	h := MathHandler{Deps: testDeps(backend)}

	model := testModel("gpt")
	model.CostPer1KTokens = 0.02

	req := orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryMath, "Janet has 16 eggs, sells 3, then 4 more. How many are left?"),
		Models:   []catalog.Descriptor{model},
	}

	result, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 0.003, result.CostUSD, 1e-9, "(100+50)/1000 * 0.02")
}

func TestMathHandler_RequiresAtLeastOneModel(t *testing.T) {
	h := MathHandler{Deps: testDeps(&fakeBackend{})}
	_, err := h.Handle(context.Background(), orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryMath, "2+2"),
	})
	assert.Error(t, err)
}
