package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/orchestrator"
)

func TestReasoningHandler_SimpleComplexityUsesSingleModel(t *testing.T) {
	backend := &fakeBackend{texts: []string{"Eliminate B, C, D.\nA"}}
	h := ReasoningHandler{Deps: testDeps(backend)}

	analysis := testAnalysis(classifier.CategoryReasoning, "Which is correct?")
	analysis.Complexity = classifier.ComplexitySimple

	result, err := h.Handle(context.Background(), orchestrator.HandlerRequest{
		Analysis: analysis,
		Models:   []catalog.Descriptor{testModel("gpt")},
	})
	require.NoError(t, err)
	assert.Equal(t, "reasoning_single_model", result.StrategyID)
	assert.Equal(t, 1, backend.calls)
}

func TestReasoningHandler_UnanimousVoteIsVerified(t *testing.T) {
	backend := &fakeBackend{texts: []string{"A", "A", "A"}}
	h := ReasoningHandler{Deps: testDeps(backend)}

	analysis := testAnalysis(classifier.CategoryReasoning, "Which is correct?")
	analysis.Complexity = classifier.ComplexityComplex

	result, err := h.Handle(context.Background(), orchestrator.HandlerRequest{
		Analysis: analysis,
		Models:   []catalog.Descriptor{testModel("a"), testModel("b"), testModel("c")},
	})
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "A", result.RawText)
	assert.True(t, result.Consensus.Unanimous)
}

func TestReasoningHandler_TieEscalatesToVerifiers(t *testing.T) {
	// Primaries split 1-1 (third call fails, leaving exactly a tie), so
	// a verifier must be consulted and the strategy escalates.
	backend := &fakeBackend{texts: []string{"A", "B", "", "B"}, errOnCalls: map[int]bool{2: true}}
	h := ReasoningHandler{Deps: testDeps(backend)}

	analysis := testAnalysis(classifier.CategoryReasoning, "Which is correct?")
	analysis.Complexity = classifier.ComplexityComplex

	result, err := h.Handle(context.Background(), orchestrator.HandlerRequest{
		Analysis: analysis,
		Models:   []catalog.Descriptor{testModel("a"), testModel("b"), testModel("c"), testModel("verifier")},
	})
	require.NoError(t, err)
	assert.Equal(t, "reasoning_hierarchical_consensus", result.StrategyID)
}

func TestReasoningHandler_SecondTieFallsBackToHighestCapabilityModel(t *testing.T) {
	// Primaries three-way split (no dominant answer) and the verifier's
	// vote isn't enough to break it either, so the decision stays
	// unconfirmed after hierarchical consensus. The fallback must be
	// model "a"'s own answer, since it is req.Models[0].
	backend := &fakeBackend{texts: []string{"A", "B", "C", "D"}}
	h := ReasoningHandler{Deps: testDeps(backend)}

	analysis := testAnalysis(classifier.CategoryReasoning, "Which is correct?")
	analysis.Complexity = classifier.ComplexityComplex

	result, err := h.Handle(context.Background(), orchestrator.HandlerRequest{
		Analysis: analysis,
		Models:   []catalog.Descriptor{testModel("a"), testModel("b"), testModel("c"), testModel("verifier")},
	})
	require.NoError(t, err)
	assert.Equal(t, "reasoning_hierarchical_consensus", result.StrategyID)
	assert.False(t, result.Verified)
	assert.Equal(t, "A", result.RawText, "second tie must fall back to the highest-capability model's own answer")
	assert.LessOrEqual(t, result.Consensus.Confidence, 0.6)
}

func TestReasoningHandler_RequiresAtLeastOneModel(t *testing.T) {
	h := ReasoningHandler{Deps: testDeps(&fakeBackend{})}
	_, err := h.Handle(context.Background(), orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryReasoning, "x"),
	})
	assert.Error(t, err)
}
