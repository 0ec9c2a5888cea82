// Package httpapi exposes the orchestration engine over HTTP: POST
// /v1/chat, GET /v1/status/diagnostics/config, and GET /v1/providers
// (spec.md §6 "External Interfaces"). It depends on internal/orchestrator,
// internal/gateway, and internal/config, and never reaches into
// internal/handlers directly — the caller wires a ready *orchestrator.Orchestrator
// in, the same way cmd/bench does.
package httpapi

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Prompt      string   `json:"prompt" validate:"required"`
	Tier        string   `json:"tier,omitempty"`
	Models      []string `json:"models,omitempty"`
	Category    string   `json:"category,omitempty"`
	Criteria    string   `json:"criteria,omitempty"`
	MaxLatency  string   `json:"max_latency,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
}

// ChatResponse is the body of a successful POST /v1/chat response.
type ChatResponse struct {
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

// DiagnosticsResponse is the body of GET /v1/status/diagnostics/config.
type DiagnosticsResponse struct {
	ProvidersLoaded map[string]bool `json:"providers_loaded"`
	ProviderCount   int             `json:"provider_count"`
	IsValid         bool            `json:"is_valid"`
	Warnings        []string        `json:"warnings"`
	Timestamp       string          `json:"timestamp"`
}

// ProviderEntry is one provider's row in GET /v1/providers. RateLimitRPS
// and Breakers are the supplemented fields beyond spec.md's bare
// booleans (see SPEC_FULL.md "Provider discovery response shape").
type ProviderEntry struct {
	Name         string            `json:"name"`
	RateLimitRPS float64           `json:"rate_limit_rps"`
	RateLimit    int               `json:"rate_limit_burst"`
	Breakers     map[string]string `json:"breakers,omitempty"`
}

// ProvidersResponse is the body of GET /v1/providers.
type ProvidersResponse struct {
	AvailableProviders   []ProviderEntry `json:"available_providers"`
	UnavailableProviders []string        `json:"unavailable_providers"`
	FailOnStub           bool            `json:"fail_on_stub"`
}
