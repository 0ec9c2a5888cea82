package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/tools"
)

func TestToolUseHandler_CalculatorResultIsAuthoritativeAndSkipsModel(t *testing.T) {
	backend := &fakeBackend{texts: []string{"the model would have said 99"}}
	h := ToolUseHandler{Deps: testDeps(backend)}

	req := orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryToolUse, "What is 12 * 4?"),
		Models:   []catalog.Descriptor{testModel("gpt")},
		ToolResults: []tools.Result{
			{Tool: tools.ToolCalculator, Status: tools.StatusOK, Text: "12 * 4 = 48"},
		},
	}

	result, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "Answer: 48", result.RawText)
	assert.Equal(t, "tool_use_calculator_authoritative", result.StrategyID)
	assert.Equal(t, 0, backend.calls)
}

func TestToolUseHandler_FallsBackToLenientExtractionWithoutCalculator(t *testing.T) {
	backend := &fakeBackend{texts: []string{"After checking the schedule, Answer: Tuesday"}}
	h := ToolUseHandler{Deps: testDeps(backend)}

	req := orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryToolUse, "Which day is the meeting?"),
		Models:   []catalog.Descriptor{testModel("gpt")},
	}

	result, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "Tuesday", result.RawText)
	assert.Equal(t, "tool_use_lenient_extract", result.StrategyID)
}

func TestToolUseHandler_RequiresAtLeastOneModel(t *testing.T) {
	h := ToolUseHandler{Deps: testDeps(&fakeBackend{})}
	_, err := h.Handle(context.Background(), orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryToolUse, "x"),
	})
	assert.Error(t, err)
}
