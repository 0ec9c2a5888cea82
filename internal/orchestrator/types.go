// Package orchestrator drives a classified query through routing, the
// tool broker, a category handler, consensus/refine, and emission of
// a final OrchestrationResult, per spec.md §3/§4.9. It depends only on
// the lower-level packages (classifier, catalog, tools, prompttpl,
// refiner, consensus, logging, telemetry); concrete category handlers live in
// internal/handlers and are wired in by the caller through the
// Handler interface, so this package never imports internal/handlers.
package orchestrator

import (
	"context"
	"time"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/consensus"
	"github.com/llmhive/llmhive/internal/tools"
)

// Query is the orchestrator's external input.
type Query struct {
	Prompt           string
	PriorContext     string
	TierHint         catalog.Tier
	CategoryOverride classifier.Category
	MaxLatencyTier   catalog.LatencyTier
	Temperature      *float32

	// VisibleTests are the black-box test cases the coding category
	// checks a candidate solution against before reporting it verified.
	// Every other category ignores this field.
	VisibleTests []tools.TestCase
	// ExpectedFunctionName is the signature name the coding category's
	// extractor and sandbox driver look for. Ignored by other categories.
	ExpectedFunctionName string
}

// ToolRequest names a single tool invocation a handler asked the
// broker to perform. It exists alongside tools.Result so handlers can
// report exactly which tools they asked for, independent of whether
// the broker actually ran them (spec.md §3: "never fabricated").
type ToolRequest struct {
	Tool    tools.ToolName
	Payload string
}

// ModelResponse is one model's raw answer to a PromptEnvelope.
type ModelResponse struct {
	ModelID          string
	RawText          string
	ExtractedAnswer  string
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
	Latency          time.Duration
	ErrorKind        string // empty when ok
}

// Candidate enriches a ModelResponse with a verification score and an
// optional critique, for the benchmark harness and diagnostics trail.
type Candidate struct {
	Response          ModelResponse
	VerificationScore float64
	Critique          string
	Diff              string // unified diff from the previous round, coding handler only
}

// HandlerRequest is everything a category handler needs to produce a
// HandlerResult: the classified query, any tool results the broker
// already ran, and the models the router selected for this category.
type HandlerRequest struct {
	Analysis             classifier.Analysis
	ToolResults          []tools.Result
	Models               []catalog.Descriptor
	Temperature          *float32
	VisibleTests         []tools.TestCase
	ExpectedFunctionName string
}

// HandlerResult is what a category handler returns to the
// orchestrator: raw (pre-refine) text, the candidate trail, and
// bookkeeping the orchestrator needs to build the final
// OrchestrationResult without re-deriving it.
type HandlerResult struct {
	RawText     string
	Candidates  []Candidate
	Consensus   *consensus.Decision
	ModelsUsed  []string
	ToolsUsed   []tools.ToolName
	Verified    bool
	StrategyID  string
	CostUSD     float64 // sum of every model call this handler made, across all rounds/voters
	Unavailable bool    // set by handlers that cannot serve this query at all (e.g. CAPABILITY_UNAVAILABLE)
	ErrorKind   string  // populated when Unavailable
}

// Handler is implemented once per category in internal/handlers.
type Handler interface {
	Handle(ctx context.Context, req HandlerRequest) (HandlerResult, error)
}

// OrchestrationResult is the orchestrator's external output.
type OrchestrationResult struct {
	FinalText      string
	Category       classifier.Category
	ModelsUsed     []string
	ToolsUsed      []tools.ToolName
	StrategyID     string
	Confidence     float64
	Verified       bool
	StageLatency   map[string]time.Duration
	CostUSD        float64
	ErrorKind      string
	RulesetVersion string
}
