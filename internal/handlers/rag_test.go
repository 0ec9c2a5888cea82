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

const rerankedPassages = "[1] The quick brown fox jumps over the lazy dog\n[2] Completely unrelated text about car engines\n"

func TestRAGHandler_TrustsLLMRankingWhenSanityCheckPasses(t *testing.T) {
	backend := &fakeBackend{texts: []string{"The most relevant is passage 1, then 2."}}
	h := RAGHandler{Deps: testDeps(backend)}

	req := orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryRAG, "Tell me about the quick brown fox"),
		Models:   []catalog.Descriptor{testModel("gpt")},
		ToolResults: []tools.Result{
			{Tool: tools.ToolRetriever, Status: tools.StatusOK, Text: rerankedPassages},
		},
	}

	result, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "rag_llm_rerank", result.StrategyID)
	assert.Equal(t, "1,2", result.RawText)
}

func TestRAGHandler_FallsBackToFusedOrderWhenSanityCheckFails(t *testing.T) {
	// The model ranks the unrelated passage first; it shares no content
	// tokens with the query, so the fused order is trusted instead.
	backend := &fakeBackend{texts: []string{"Passage 2 is most relevant."}}
	h := RAGHandler{Deps: testDeps(backend)}

	req := orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryRAG, "Tell me about the quick brown fox"),
		Models:   []catalog.Descriptor{testModel("gpt")},
		ToolResults: []tools.Result{
			{Tool: tools.ToolRetriever, Status: tools.StatusOK, Text: rerankedPassages},
		},
	}

	result, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "rag_fused_ranking_fallback", result.StrategyID)
	assert.Equal(t, "1,2", result.RawText)
}

func TestRAGHandler_UnavailableWithoutRetrievalResult(t *testing.T) {
	h := RAGHandler{Deps: testDeps(&fakeBackend{})}
	req := orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryRAG, "Tell me about foxes"),
		Models:   []catalog.Descriptor{testModel("gpt")},
	}

	result, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Unavailable)
	assert.Equal(t, "RETRIEVAL_UNAVAILABLE", result.ErrorKind)
}

func TestRAGHandler_RequiresAtLeastOneModel(t *testing.T) {
	h := RAGHandler{Deps: testDeps(&fakeBackend{})}
	_, err := h.Handle(context.Background(), orchestrator.HandlerRequest{
		Analysis: testAnalysis(classifier.CategoryRAG, "x"),
	})
	assert.Error(t, err)
}
