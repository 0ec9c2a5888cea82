package handlers

import (
	"context"
	"regexp"
	"strings"

	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/refiner"
	"github.com/llmhive/llmhive/internal/tools"
)

// minSanityCheckWords is the minimum word count a top-ranked passage
// must have to be trusted over the fused sparse+dense ranking.
const minSanityCheckWords = 4

// ragPassageLinePattern matches the Tool Broker's rendered passage
// lines ("[id] passage text"), letting the handler recover the fused
// ranking order and passage text for the sanity check without the
// broker exposing its internal Passage structs across the package
// boundary.
var ragPassageLinePattern = regexp.MustCompile(`(?m)^\[([^\]]+)\]\s(.*)$`)

// RAGHandler implements the retrieve-then-rerank pipeline: the Tool
// Broker already fused sparse+dense retrieval and applied the
// cross-encoder/lexical reranker before this handler runs; the
// handler restricts the LLM to ranking only the already-fetched top-K
// passages, and sanity-checks its ranking before trusting it over the
// fused order (spec.md §4.6).
type RAGHandler struct {
	Deps Deps
}

func (h RAGHandler) Handle(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	if len(req.Models) == 0 {
		return orchestrator.HandlerResult{}, errNoModelsRouted(req.Analysis.Category)
	}

	var retrieved tools.Result
	found := false
	for _, r := range req.ToolResults {
		if r.Tool == tools.ToolRetriever {
			retrieved = r
			found = true
			break
		}
	}
	if !found || retrieved.Status != tools.StatusOK {
		return orchestrator.HandlerResult{
			StrategyID:  "rag_fused_ranking",
			Unavailable: true,
			ErrorKind:   "RETRIEVAL_UNAVAILABLE",
		}, nil
	}

	passageIDs, passages := parseRenderedPassages(retrieved.Text)
	fusedOrder := strings.Join(passageIDs, ",")

	model := req.Models[0]
	toolText := tools.RenderBlock(req.ToolResults)
	resp := h.Deps.callModel(ctx, req.Analysis, toolText, model, req.Temperature)
	if resp.ErrorKind != "" {
		return orchestrator.HandlerResult{
			RawText:    fusedOrder,
			ModelsUsed: modelsUsedFrom(resp),
			ToolsUsed:  toolsUsedFrom(req.ToolResults),
			StrategyID: "rag_fused_ranking",
			CostUSD:    costFrom(resp),
		}, nil
	}

	outcome := refiner.ExtractRanking(resp.RawText)
	topID := firstID(outcome.Text)
	topPassage, ok := passages[topID]

	if !ok || !sanityCheck(req.Analysis.RewrittenPrompt, topPassage) {
		return orchestrator.HandlerResult{
			RawText:    fusedOrder,
			ModelsUsed: modelsUsedFrom(resp),
			ToolsUsed:  toolsUsedFrom(req.ToolResults),
			StrategyID: "rag_fused_ranking_fallback",
			Verified:   false,
			CostUSD:    costFrom(resp),
		}, nil
	}

	return orchestrator.HandlerResult{
		RawText:    outcome.Text,
		ModelsUsed: modelsUsedFrom(resp),
		ToolsUsed:  toolsUsedFrom(req.ToolResults),
		StrategyID: "rag_llm_rerank",
		Verified:   true,
		CostUSD:    costFrom(resp),
	}, nil
}

// parseRenderedPassages recovers both the fused ranking's id order and
// an id->text lookup from the broker's rendered block, in the order
// the broker wrote them (first-occurrence order of the regex matches).
func parseRenderedPassages(text string) (ids []string, byID map[string]string) {
	byID = make(map[string]string)
	for _, m := range ragPassageLinePattern.FindAllStringSubmatch(text, -1) {
		if _, seen := byID[m[1]]; !seen {
			ids = append(ids, m[1])
		}
		byID[m[1]] = m[2]
	}
	return ids, byID
}

func firstID(ranking string) string {
	parts := strings.SplitN(ranking, ",", 2)
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

var wordPattern = regexp.MustCompile(`\w+`)

func sanityCheck(query, passage string) bool {
	words := wordPattern.FindAllString(passage, -1)
	if len(words) < minSanityCheckWords {
		return false
	}
	return sharedTokenCount(query, passage) >= 2
}

func sharedTokenCount(a, b string) int {
	setA := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(a), -1) {
		setA[w] = true
	}
	count := 0
	seen := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(b), -1) {
		if setA[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}
