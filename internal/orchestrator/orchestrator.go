package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/logging"
	"github.com/llmhive/llmhive/internal/prompttpl"
	"github.com/llmhive/llmhive/internal/refiner"
	"github.com/llmhive/llmhive/internal/telemetry"
	"github.com/llmhive/llmhive/internal/tools"
)

// Config configures an Orchestrator.
type Config struct {
	Classifier *classifier.Classifier
	Catalog    *catalog.Catalog
	Broker     *tools.Broker
	Handlers   map[classifier.Category]Handler
	Log        *logging.Logger

	RoutingK int // top-K models routed per category; default 3
}

// Orchestrator drives the fixed pipeline
// Classify -> Route -> Tool-Broker -> Handler -> Refine -> Emit.
type Orchestrator struct {
	classifier *classifier.Classifier
	catalog    *catalog.Catalog
	broker     *tools.Broker
	handlers   map[classifier.Category]Handler
	log        *logging.Logger
	routingK   int
}

// New returns a ready Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Classifier == nil || cfg.Catalog == nil || cfg.Broker == nil || cfg.Log == nil {
		return nil, fmt.Errorf("orchestrator: classifier, catalog, broker, and log are required")
	}
	if cfg.RoutingK <= 0 {
		cfg.RoutingK = 3
	}
	return &Orchestrator{
		classifier: cfg.Classifier,
		catalog:    cfg.Catalog,
		broker:     cfg.Broker,
		handlers:   cfg.Handlers,
		log:        cfg.Log,
		routingK:   cfg.RoutingK,
	}, nil
}

// Run drives one Query through the full pipeline and returns exactly
// one OrchestrationResult (spec.md §3 Lifecycles: "each Query produces
// exactly one OrchestrationResult").
func (o *Orchestrator) Run(ctx context.Context, q Query) (OrchestrationResult, error) {
	stageLatency := make(map[string]time.Duration)
	start := time.Now()

	// Classify
	classifyStart := time.Now()
	analysis := o.classifier.Classify(q.Prompt)
	if q.CategoryOverride != "" {
		analysis.Category = q.CategoryOverride
	}
	stageLatency["classify"] = time.Since(classifyStart)

	// Route
	routeStart := time.Now()
	tier := q.TierHint
	if tier == "" {
		tier = catalog.TierElite
	}
	selection := o.catalog.TopFor(string(analysis.Category), o.routingK, tier)
	stageLatency["route"] = time.Since(routeStart)

	// Tool-Broker
	brokerStart := time.Now()
	toolResults := o.broker.MaybeRun(ctx, analysis, q.Prompt)
	stageLatency["tool_broker"] = time.Since(brokerStart)

	handler, ok := o.handlers[analysis.Category]
	if !ok {
		return OrchestrationResult{}, fmt.Errorf("orchestrator: no handler registered for category %q", analysis.Category)
	}

	// Handler
	handlerStart := time.Now()
	result, err := handler.Handle(ctx, HandlerRequest{
		Analysis:             analysis,
		ToolResults:          toolResults,
		Models:               selection.Models,
		Temperature:          q.Temperature,
		VisibleTests:         q.VisibleTests,
		ExpectedFunctionName: q.ExpectedFunctionName,
	})
	stageLatency["handler"] = time.Since(handlerStart)
	if err != nil {
		return OrchestrationResult{}, fmt.Errorf("orchestrator: handler %q: %w", analysis.Category, err)
	}

	if result.Unavailable {
		o.log.WarnContext(ctx, "handler reported capability unavailable", "category", analysis.Category, "error_kind", result.ErrorKind)
		return OrchestrationResult{
			Category:       analysis.Category,
			StrategyID:     result.StrategyID,
			StageLatency:   stageLatency,
			CostUSD:        result.CostUSD,
			ErrorKind:      result.ErrorKind,
			RulesetVersion: analysis.RulesetVersion,
		}, nil
	}

	// Refine
	refineStart := time.Now()
	contract := prompttpl.ContractFor(analysis.Category)
	outcome, err := refiner.Refine(ctx, contract, result.RawText, refinerOptions(result, q))
	stageLatency["refine"] = time.Since(refineStart)
	if err != nil {
		return OrchestrationResult{}, fmt.Errorf("orchestrator: refine: %w", err)
	}

	confidence := 1.0
	if result.Consensus != nil {
		confidence = result.Consensus.Confidence
	}

	total := time.Since(start)
	stageLatency["total"] = total

	for _, tool := range result.ToolsUsed {
		telemetry.RecordToolCall(string(tool), "ok", total.Seconds())
	}
	telemetry.RecordOrchestration(string(analysis.Category), outcomeLabel(result), total.Seconds())

	return OrchestrationResult{
		FinalText:      outcome.Text,
		Category:       analysis.Category,
		ModelsUsed:     result.ModelsUsed,
		ToolsUsed:      result.ToolsUsed,
		StrategyID:     result.StrategyID,
		Confidence:     confidence,
		Verified:       result.Verified,
		StageLatency:   stageLatency,
		CostUSD:        result.CostUSD,
		RulesetVersion: analysis.RulesetVersion,
	}, nil
}

func refinerOptions(result HandlerResult, q Query) refiner.Options {
	opts := refiner.Options{ExpectedFunctionName: q.ExpectedFunctionName}
	if result.Consensus != nil {
		opts.HighestScoringChoice = result.Consensus.Answer
	}
	return opts
}

func outcomeLabel(result HandlerResult) string {
	if result.Verified {
		return "verified"
	}
	return "unverified"
}
