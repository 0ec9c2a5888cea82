// Package telemetry holds the process-wide Prometheus metrics and
// OpenTelemetry tracing setup shared by every orchestration component.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "llmhive",
		Subsystem: "gateway",
		Name:      "call_latency_seconds",
		Help:      "Provider Gateway call latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 60},
	}, []string{"model", "status"})

	gatewayCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llmhive",
		Subsystem: "gateway",
		Name:      "calls_total",
		Help:      "Total Provider Gateway calls by model and status",
	}, []string{"model", "status"})

	gatewayTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llmhive",
		Subsystem: "gateway",
		Name:      "tokens_total",
		Help:      "Total prompt/completion tokens consumed",
	}, []string{"model", "kind"})

	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "llmhive",
		Subsystem: "gateway",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state per model (0=closed, 1=half_open, 2=open)",
	}, []string{"model"})

	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llmhive",
		Subsystem: "tools",
		Name:      "calls_total",
		Help:      "Total tool broker invocations by tool and status",
	}, []string{"tool", "status"})

	toolCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "llmhive",
		Subsystem: "tools",
		Name:      "call_latency_seconds",
		Help:      "Tool broker invocation latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"tool"})

	consensusRoundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llmhive",
		Subsystem: "consensus",
		Name:      "rounds_total",
		Help:      "Total consensus/verification rounds by strategy and outcome",
	}, []string{"strategy", "outcome"})

	orchestrationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "llmhive",
		Subsystem: "orchestrator",
		Name:      "request_latency_seconds",
		Help:      "End-to-end orchestration latency in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"category"})

	orchestrationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llmhive",
		Subsystem: "orchestrator",
		Name:      "outcomes_total",
		Help:      "Orchestration outcomes by category and result",
	}, []string{"category", "result"})
)

// CircuitBreakerStateValue maps a breaker state name to the gauge value
// used on the Prometheus side.
func CircuitBreakerStateValue(state string) float64 {
	switch state {
	case "half_open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordGatewayCall records the outcome of a single Provider Gateway call.
func RecordGatewayCall(model, status string, durationSec float64, promptTokens, completionTokens int) {
	gatewayCallLatency.WithLabelValues(model, status).Observe(durationSec)
	gatewayCallsTotal.WithLabelValues(model, status).Inc()
	if promptTokens > 0 {
		gatewayTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		gatewayTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}

// RecordCircuitBreakerState reports the current state of a model's breaker.
func RecordCircuitBreakerState(model, state string) {
	circuitBreakerState.WithLabelValues(model).Set(CircuitBreakerStateValue(state))
}

// RecordToolCall records a single tool broker invocation.
func RecordToolCall(tool, status string, durationSec float64) {
	toolCallsTotal.WithLabelValues(tool, status).Inc()
	toolCallLatency.WithLabelValues(tool).Observe(durationSec)
}

// RecordConsensusRound records one round of a consensus/verification
// strategy reaching an outcome such as "agreement", "escalated", or
// "max_rounds".
func RecordConsensusRound(strategy, outcome string) {
	consensusRoundsTotal.WithLabelValues(strategy, outcome).Inc()
}

// RecordOrchestration records the end-to-end result of a single query.
func RecordOrchestration(category, result string, durationSec float64) {
	orchestrationLatency.WithLabelValues(category).Observe(durationSec)
	orchestrationOutcomes.WithLabelValues(category, result).Inc()
}
