package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	return logging.New(logging.Config{Level: logging.LevelError, Quiet: true})
}

func TestExtractExpression_FindsArithmeticSubstring(t *testing.T) {
	expr, ok := ExtractExpression("Janet makes 16 - 3 - 4 eggs left over each day.")
	require.True(t, ok)
	assert.Contains(t, expr, "16")
}

func TestExtractExpression_NoExpressionFound(t *testing.T) {
	_, ok := ExtractExpression("There is no math here at all.")
	assert.False(t, ok)
}

func TestBroker_MaybeRun_CalculatorRunsOnMathHint(t *testing.T) {
	b := New(testLogger(t))
	analysis := classifier.Analysis{
		Category:  classifier.CategoryMath,
		ToolHints: []classifier.ToolHint{classifier.ToolHintCalculator},
	}
	results := b.MaybeRun(context.Background(), analysis, "What is 6 * 7?")
	require.Len(t, results, 1)
	assert.Equal(t, ToolCalculator, results[0].Tool)
	assert.Equal(t, StatusOK, results[0].Status)
	assert.Contains(t, results[0].Text, "42")
}

func TestBroker_MaybeRun_NeverRunsWebSearchWithoutHint(t *testing.T) {
	b := New(testLogger(t), WithSearcher(NewWebSearcher("http://example.invalid", "key")))
	analysis := classifier.Analysis{Category: classifier.CategoryGeneral}
	results := b.MaybeRun(context.Background(), analysis, "What is the capital of France?")
	for _, r := range results {
		assert.NotEqual(t, ToolWebSearch, r.Tool)
	}
}

func TestBroker_MaybeRun_SkipsToolsNotConfigured(t *testing.T) {
	b := New(testLogger(t))
	analysis := classifier.Analysis{
		Category:  classifier.CategoryRAG,
		ToolHints: []classifier.ToolHint{classifier.ToolHintRetriever, classifier.ToolHintReranker},
	}
	results := b.MaybeRun(context.Background(), analysis, "rank these passages")
	assert.Empty(t, results)
}

func TestBroker_RunSandbox_ErrorsWithoutConfiguredSandbox(t *testing.T) {
	b := New(testLogger(t))
	_, err := b.RunSandbox(context.Background(), "print(1)", []TestCase{{Name: "t1", Want: "1"}})
	require.Error(t, err)
}

func TestRenderBlock_JoinsEachResult(t *testing.T) {
	block := RenderBlock([]Result{
		{Tool: ToolCalculator, Status: StatusOK, Text: "2 + 2 = 4"},
	})
	assert.Contains(t, block, "calculator:ok")
	assert.Contains(t, block, "2 + 2 = 4")
}
