// Package handlers implements the eight category handlers
// (math, coding, reasoning, rag, long_context, multilingual, tool_use,
// dialogue), each satisfying orchestrator.Handler. They depend on
// orchestrator for domain types but are wired into a running
// orchestrator by the caller (cmd/llmhive-server), never the other
// way around.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/gateway"
	"github.com/llmhive/llmhive/internal/logging"
	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/prompttpl"
	"github.com/llmhive/llmhive/internal/tools"
)

// Deps are the collaborators every category handler needs. Handlers
// hold a Deps value rather than each importing gateway/prompttpl/tools
// construction logic themselves.
type Deps struct {
	Gateway *gateway.Gateway
	Prompts *prompttpl.Builder
	Broker  *tools.Broker
	Log     *logging.Logger
}

// callModel builds the PromptEnvelope for analysis, sends it to model
// through the gateway, and returns a populated ModelResponse. Gateway
// errors are reported via ErrorKind rather than returned, so a single
// failing model never aborts a handler that is fanning out to several.
func (d Deps) callModel(ctx context.Context, analysis classifier.Analysis, toolResultsText string, model catalog.Descriptor, temperature *float32) orchestrator.ModelResponse {
	envelope := d.Prompts.Build(analysis, toolResultsText)
	messages := []gateway.Message{
		{Role: "system", Content: envelope.SystemText},
		{Role: "user", Content: envelope.UserText},
	}

	start := time.Now()
	resp, err := d.Gateway.Call(ctx, model.ID, messages, gateway.Params{Temperature: temperature})
	latency := time.Since(start)

	if err != nil {
		kind := "unknown"
		var gwErr *gateway.Error
		if asGatewayError(err, &gwErr) {
			kind = string(gwErr.Kind)
		}
		d.Log.Warn("model call failed", "model", model.ID, "error", err)
		return orchestrator.ModelResponse{ModelID: model.ID, Latency: latency, ErrorKind: kind}
	}

	return orchestrator.ModelResponse{
		ModelID:          model.ID,
		RawText:          resp.Text,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		CostUSD:          costFor(model, resp.Usage),
		Latency:          latency,
	}
}

// costFor prices a single gateway call against the catalog's blended
// per-1K-token rate for the model that served it (catalog.Descriptor
// carries one rate covering both prompt and completion tokens, not a
// split input/output rate).
func costFor(model catalog.Descriptor, usage gateway.Usage) float64 {
	tokens := usage.PromptTokens + usage.CompletionTokens
	return float64(tokens) / 1000 * model.CostPer1KTokens
}

// costFrom sums CostUSD across every model call a handler made,
// including calls that errored (their CostUSD is always zero, since
// callModel never reaches the pricing line on a gateway error), so a
// handler's HandlerResult.CostUSD reflects every round/voter it ran,
// not just its final successful call.
func costFrom(responses ...orchestrator.ModelResponse) float64 {
	var total float64
	for _, r := range responses {
		total += r.CostUSD
	}
	return total
}

func asGatewayError(err error, target **gateway.Error) bool {
	if e, ok := err.(*gateway.Error); ok {
		*target = e
		return true
	}
	return false
}

// renderToolResults builds the delimited tool-result block for the
// prompt from whatever the broker already ran, or "" if nothing ran.
func renderToolResults(results []tools.Result) string {
	if len(results) == 0 {
		return ""
	}
	return tools.RenderBlock(results)
}

// modelsUsedFrom extracts the ordered, deduplicated list of model ids
// that actually produced a non-error response, so HandlerResult.ModelsUsed
// never claims a model that errored out or was never called.
func modelsUsedFrom(responses ...orchestrator.ModelResponse) []string {
	var used []string
	seen := make(map[string]bool)
	for _, r := range responses {
		if r.ErrorKind != "" || seen[r.ModelID] {
			continue
		}
		seen[r.ModelID] = true
		used = append(used, r.ModelID)
	}
	return used
}

// toolsUsedFrom extracts the distinct tool names actually present in
// results, regardless of status, since a tool that ran and errored was
// still invoked.
func toolsUsedFrom(results []tools.Result) []tools.ToolName {
	var used []tools.ToolName
	seen := make(map[tools.ToolName]bool)
	for _, r := range results {
		if seen[r.Tool] {
			continue
		}
		seen[r.Tool] = true
		used = append(used, r.Tool)
	}
	return used
}

// errNoModelsRouted is returned when the catalog could not route any
// model for a category. Handlers return it as a plain error, so the
// query fails with that error; it is not turned into a
// CAPABILITY_UNAVAILABLE result.
func errNoModelsRouted(category classifier.Category) error {
	return fmt.Errorf("handlers: no models routed for category %q", category)
}
