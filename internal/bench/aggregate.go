package bench

import "time"

// Aggregated is the set of derived statistics Aggregate computes from
// a run's item results.
type Aggregated struct {
	Categories       []CategoryAggregate
	MeanConfidence   float64
	MeanLatency      time.Duration
	TotalCostUSD     float64
	FailureRate      float64
	CriticalFailures []string
	GatePassed       bool
	GateReason       string
}

// Aggregate computes per-category accuracy, overall means, the
// critical-failure list, and the regression gate verdict for one
// run's items (spec.md §4.10).
func Aggregate(items []ItemResult, failureRateMax float64) Aggregated {
	byCategory := make(map[string][]ItemResult)
	for _, it := range items {
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}

	var categories []CategoryAggregate
	for category, results := range byCategory {
		categories = append(categories, aggregateCategory(category, results))
	}

	var (
		confidenceSum float64
		latencySum    time.Duration
		costSum       float64
		failCount     int
		criticalFails []string
	)
	for _, it := range items {
		confidenceSum += it.Confidence
		latencySum += time.Duration(it.LatencyMS) * time.Millisecond
		costSum += it.CostUSD
		if !it.Passed {
			failCount++
			if it.Critical {
				criticalFails = append(criticalFails, it.ItemID)
			}
		}
	}

	n := len(items)
	agg := Aggregated{
		Categories:       categories,
		TotalCostUSD:     costSum,
		CriticalFailures: criticalFails,
	}
	if n > 0 {
		agg.MeanConfidence = confidenceSum / float64(n)
		agg.MeanLatency = latencySum / time.Duration(n)
		agg.FailureRate = float64(failCount) / float64(n)
	}

	agg.GatePassed, agg.GateReason = Gate(agg.FailureRate, criticalFails, failureRateMax)
	return agg
}

func aggregateCategory(category string, results []ItemResult) CategoryAggregate {
	agg := CategoryAggregate{Category: category, ItemCount: len(results)}
	var scoreSum float64
	var latencySum time.Duration
	for _, it := range results {
		if it.Passed {
			agg.PassCount++
		}
		scoreSum += it.Score
		latencySum += time.Duration(it.LatencyMS) * time.Millisecond
	}
	if len(results) > 0 {
		agg.Accuracy = float64(agg.PassCount) / float64(len(results))
		agg.MeanScore = scoreSum / float64(len(results))
		agg.MeanLatency = latencySum / time.Duration(len(results))
	}
	return agg
}

// Gate decides whether a run passes the regression gate: any critical
// item failure fails the run outright, otherwise the run fails if the
// overall failure rate exceeds the configured threshold (spec.md
// §4.10: "fails the run if any item marked critical fails, or if the
// overall failure rate exceeds a configurable threshold").
func Gate(failureRate float64, criticalFailures []string, failureRateMax float64) (bool, string) {
	if len(criticalFailures) > 0 {
		return false, "critical item(s) failed: " + joinIDs(criticalFailures)
	}
	if failureRateMax > 0 && failureRate > failureRateMax {
		return false, "overall failure rate exceeded threshold"
	}
	return true, ""
}

func joinIDs(ids []string) string {
	out := ids[0]
	for _, id := range ids[1:] {
		out += ", " + id
	}
	return out
}

// CompareRuns builds a RegressionReport of current against previous.
func CompareRuns(previous, current RunReport) RegressionReport {
	prevAccuracy := meanAccuracy(previous.Categories)
	currAccuracy := meanAccuracy(current.Categories)

	var newCritical []string
	prevCritical := toSet(previous.CriticalFailures)
	for _, id := range current.CriticalFailures {
		if !prevCritical[id] {
			newCritical = append(newCritical, id)
		}
	}

	accuracyDelta := currAccuracy - prevAccuracy
	return RegressionReport{
		PreviousRunID:    previous.RunID,
		AccuracyDelta:    accuracyDelta,
		MeanLatencyDelta: current.MeanLatency - previous.MeanLatency,
		MeanCostDelta:    current.TotalCostUSD - previous.TotalCostUSD,
		NewCriticalFails: newCritical,
		Improved:         accuracyDelta >= 0 && len(newCritical) == 0,
	}
}

func meanAccuracy(categories []CategoryAggregate) float64 {
	if len(categories) == 0 {
		return 0
	}
	var sum float64
	for _, c := range categories {
		sum += c.Accuracy
	}
	return sum / float64(len(categories))
}
