package bench

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/llmhive/llmhive/internal/logging"
)

// Runner drives one benchmark run end to end: sampling, dispatch to a
// System, scoring, and checkpointing (spec.md §4.10).
type Runner struct {
	System     System
	Scorer     *Scorer
	Checkpoint *CheckpointStore
	Log        *logging.Logger
}

// NewRunID returns a fresh run identifier for a benchmark invocation
// that did not pin one explicitly.
func NewRunID() string {
	return uuid.NewString()
}

// Run executes cfg against r.System, returning a complete RunReport.
// If r.Checkpoint is non-nil, every item result is persisted as it
// completes and a previously checkpointed result for the same
// (suite version, item id, run index) is reused instead of re-queried,
// so an interrupted run resumes where it left off.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (RunReport, error) {
	suite := cfg.Suite
	started := time.Now()

	items := FilterPrompts(suite.Prompts, cfg.Categories, cfg.PromptIDs, cfg.CriticalOnly)
	seed := SeedFor(suite.Metadata.Version, cfg.Seed)
	order := SampleOrder(len(items), seed)
	scheduled := Ordered(items, order, cfg.RunsPerCase)

	report := RunReport{
		RunID:        cfg.RunID,
		SuiteName:    suite.Metadata.SuiteName,
		SuiteVersion: suite.Metadata.Version,
		Seed:         seed,
		SampleOrder:  order,
		StartedAt:    started,
	}

	runIndex := make(map[string]int, len(items))
	for _, item := range scheduled {
		select {
		case <-ctx.Done():
			report.FinishedAt = time.Now()
			return report, ctx.Err()
		default:
		}

		idx := runIndex[item.ID]
		runIndex[item.ID] = idx + 1

		itemCtx := ctx
		var itemCancel context.CancelFunc
		if cfg.PerItemTimeout > 0 {
			itemCtx, itemCancel = context.WithTimeout(ctx, cfg.PerItemTimeout)
		}
		result, err := r.runOne(itemCtx, suite.Metadata.Version, item, idx)
		if itemCancel != nil {
			itemCancel()
		}
		if err != nil {
			if r.Log != nil {
				r.Log.Warn("bench item failed", "item_id", item.ID, "error", err)
			}
			result.ErrorKind = "RUNNER_ERROR"
			result.FailReason = err.Error()
		}
		report.Items = append(report.Items, result)
	}

	report.FinishedAt = time.Now()
	aggregated := Aggregate(report.Items, cfg.FailureRateMax)
	report.Categories = aggregated.Categories
	report.MeanConfidence = aggregated.MeanConfidence
	report.MeanLatency = aggregated.MeanLatency
	report.TotalCostUSD = aggregated.TotalCostUSD
	report.FailureRate = aggregated.FailureRate
	report.CriticalFailures = aggregated.CriticalFailures
	report.GatePassed = aggregated.GatePassed
	report.GateReason = aggregated.GateReason
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, suiteVersion string, item PromptItem, runIndex int) (ItemResult, error) {
	if r.Checkpoint != nil {
		if cached, ok, err := r.Checkpoint.Get(suiteVersion, item.ID, runIndex); err == nil && ok {
			return cached, nil
		}
	}

	outcome, err := r.System.RunQuery(ctx, item)
	result := ItemResult{
		ItemID:     item.ID,
		RunIndex:   runIndex,
		Category:   item.Category,
		CostUSD:    outcome.CostUSD,
		LatencyMS:  outcome.Latency.Milliseconds(),
		Confidence: outcome.Confidence,
		Verified:   outcome.Verified,
		StrategyID: outcome.StrategyID,
		FinalText:  outcome.FinalText,
		ErrorKind:  outcome.ErrorKind,
		Critical:   item.Scoring.Critical,
		Timestamp:  time.Now(),
	}
	if err != nil {
		result.Passed = false
		result.FailReason = err.Error()
		r.checkpointResult(suiteVersion, result)
		return result, err
	}

	objectiveOK, reason := r.Scorer.Evaluate(ctx, item, outcome.FinalText)
	result.ObjectiveOK = objectiveOK
	result.RubricScore = outcome.Confidence
	result.Score = CompositeScore(item, objectiveOK, outcome.Confidence)
	result.Passed = objectiveOK
	result.FailReason = reason

	r.checkpointResult(suiteVersion, result)
	return result, nil
}

func (r *Runner) checkpointResult(suiteVersion string, result ItemResult) {
	if r.Checkpoint == nil {
		return
	}
	if err := r.Checkpoint.Put(suiteVersion, result); err != nil && r.Log != nil {
		r.Log.Warn("bench: failed to checkpoint item", "item_id", result.ItemID, "error", err)
	}
}
