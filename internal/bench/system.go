package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/orchestrator"
)

// QueryOutcome is a System's answer to one suite item, normalised away
// from whether it came from an in-process Orchestrator or a deployed
// HTTP instance.
type QueryOutcome struct {
	FinalText  string
	Confidence float64
	Verified   bool
	StrategyID string
	CostUSD    float64
	Latency    time.Duration
	ErrorKind  string
}

// System is anything the benchmark CLI can drive a suite against:
// an in-process Orchestrator (`--mode local`) or a deployed instance
// reachable over HTTP (`--mode http`).
type System interface {
	Name() string
	RunQuery(ctx context.Context, item PromptItem) (QueryOutcome, error)
}

// LocalSystem drives suite items directly through an in-process
// Orchestrator, skipping the network entirely.
type LocalSystem struct {
	Name_        string
	Orchestrator *orchestrator.Orchestrator
	Temperature  *float32
}

func (s *LocalSystem) Name() string { return s.Name_ }

func (s *LocalSystem) RunQuery(ctx context.Context, item PromptItem) (QueryOutcome, error) {
	start := time.Now()
	q := orchestrator.Query{
		Prompt:           item.Prompt,
		CategoryOverride: classifier.Category(item.Category),
		Temperature:      s.Temperature,
	}
	if item.Expected.FunctionName != "" {
		q.ExpectedFunctionName = item.Expected.FunctionName
	}
	result, err := s.Orchestrator.Run(ctx, q)
	latency := time.Since(start)
	if err != nil {
		return QueryOutcome{Latency: latency, ErrorKind: "ORCHESTRATION_ERROR"}, err
	}
	return QueryOutcome{
		FinalText:  result.FinalText,
		Confidence: result.Confidence,
		Verified:   result.Verified,
		StrategyID: result.StrategyID,
		CostUSD:    result.CostUSD,
		Latency:    latency,
		ErrorKind:  result.ErrorKind,
	}, nil
}

// chatRequest and chatResponse mirror the wire shapes of POST /v1/chat
// (spec.md §6 "External Interfaces").
type chatRequest struct {
	Prompt      string   `json:"prompt"`
	Category    string   `json:"category,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
}

type chatResponse struct {
	FinalText  string   `json:"final_text"`
	Category   string   `json:"category"`
	ModelsUsed []string `json:"models_used"`
	ToolsUsed  []string `json:"tools_used"`
	Strategy   string   `json:"strategy"`
	Confidence float64  `json:"confidence"`
	Verified   bool     `json:"verified"`
	LatencyMS  int64    `json:"latency_ms"`
	CostUSD    float64  `json:"cost_usd"`
	Errors     []string `json:"errors"`
}

// HTTPSystem drives suite items against a deployed instance's
// POST /v1/chat endpoint, so the harness can validate an instance
// running behind a real network boundary, not just an in-process
// wiring of the same binary.
type HTTPSystem struct {
	Name_       string
	BaseURL     string
	APIKey      string
	Client      *resty.Client
	Temperature *float32
}

// NewHTTPSystem returns an HTTPSystem with sane request timeouts.
func NewHTTPSystem(name, baseURL, apiKey string, timeout time.Duration) *HTTPSystem {
	client := resty.New().SetTimeout(timeout).SetBaseURL(baseURL)
	return &HTTPSystem{Name_: name, BaseURL: baseURL, APIKey: apiKey, Client: client}
}

func (s *HTTPSystem) Name() string { return s.Name_ }

func (s *HTTPSystem) RunQuery(ctx context.Context, item PromptItem) (QueryOutcome, error) {
	start := time.Now()
	var body chatResponse
	req := s.Client.R().
		SetContext(ctx).
		SetBody(chatRequest{Prompt: item.Prompt, Category: item.Category, Temperature: s.Temperature}).
		SetResult(&body)
	if s.APIKey != "" {
		req.SetHeader("X-API-Key", s.APIKey)
	}
	resp, err := req.Post("/v1/chat")
	latency := time.Since(start)
	if err != nil {
		return QueryOutcome{Latency: latency, ErrorKind: "HTTP_TRANSPORT_ERROR"}, err
	}
	if resp.IsError() {
		return QueryOutcome{Latency: latency, ErrorKind: "HTTP_STATUS_ERROR"},
			fmt.Errorf("bench: %s returned %s", s.BaseURL, resp.Status())
	}
	var errorKind string
	if len(body.Errors) > 0 {
		errorKind = body.Errors[0]
	}
	return QueryOutcome{
		FinalText:  body.FinalText,
		Confidence: body.Confidence,
		Verified:   body.Verified,
		StrategyID: body.Strategy,
		CostUSD:    body.CostUSD,
		Latency:    latency,
		ErrorKind:  errorKind,
	}, nil
}
