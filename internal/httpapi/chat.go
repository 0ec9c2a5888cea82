package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/orchestrator"
)

var chatValidator = validator.New()

// handleChat serves POST /v1/chat (spec.md §6). tier and category map
// onto Query's routing hints; max_latency is copied into
// Query.MaxLatencyTier, which routing does not read. models and
// criteria are accepted but not passed on: the router always selects
// by category and tier rather than an explicit caller-supplied model
// list, matching the fixed Classify->Route pipeline (spec.md §3).
func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ChatResponse{Errors: []string{"INVALID_REQUEST"}})
		return
	}
	if err := chatValidator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, ChatResponse{Errors: []string{"INVALID_REQUEST"}})
		return
	}

	q := orchestrator.Query{
		Prompt:           req.Prompt,
		TierHint:         catalog.Tier(req.Tier),
		CategoryOverride: classifier.Category(req.Category),
		MaxLatencyTier:   latencyTierFor(req.MaxLatency),
		Temperature:      req.Temperature,
	}

	result, err := s.Orchestrator.Run(c.Request.Context(), q)
	if err != nil {
		if s.Log != nil {
			s.Log.ErrorContext(c.Request.Context(), "chat request failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, ChatResponse{Errors: []string{"ORCHESTRATION_ERROR"}})
		return
	}

	resp := ChatResponse{
		FinalText:  result.FinalText,
		Category:   string(result.Category),
		ModelsUsed: result.ModelsUsed,
		Strategy:   result.StrategyID,
		Confidence: result.Confidence,
		Verified:   result.Verified,
		LatencyMS:  result.StageLatency["total"].Milliseconds(),
		CostUSD:    result.CostUSD,
	}
	for _, t := range result.ToolsUsed {
		resp.ToolsUsed = append(resp.ToolsUsed, string(t))
	}
	if result.ErrorKind != "" {
		resp.Errors = append(resp.Errors, result.ErrorKind)
	}
	c.JSON(http.StatusOK, resp)
}

// latencyTierFor parses a request's optional max_latency hint,
// defaulting to the catalog's LatencyTier zero value on anything
// unrecognised rather than rejecting the request outright. That zero
// value is LatencyFast, so every input yields LatencyFast.
func latencyTierFor(s string) catalog.LatencyTier {
	switch s {
	case "fast":
		return catalog.LatencyFast
	default:
		return catalog.LatencyTier(0)
	}
}
