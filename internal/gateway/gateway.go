package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/llmhive/llmhive/internal/logging"
	"github.com/llmhive/llmhive/internal/telemetry"
)

// Gateway is the single entry point every category handler and
// consensus strategy calls through. It dispatches to the Backend
// registered for a model's provider prefix, wrapping each call with a
// per-model token-bucket rate limiter, a per-model circuit breaker, and
// bounded exponential-backoff retries for transient failures.
type Gateway struct {
	log      *logging.Logger
	limiters *limiterRegistry

	mu       sync.Mutex
	backends map[string]Backend // provider name -> Backend
	breakers map[string]*breaker

	maxRetries int
}

// Option configures a Gateway at construction time.
type Option func(*Gateway)

// WithRateLimit overrides the default per-model token bucket (5 req/s,
// burst 10).
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Gateway) { g.limiters = newLimiterRegistry(rps, burst) }
}

// WithMaxRetries overrides the default retry budget (3 attempts).
func WithMaxRetries(n int) Option {
	return func(g *Gateway) { g.maxRetries = n }
}

// New builds a Gateway with no backends registered. Call Register for
// each provider prefix before use.
func New(log *logging.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		log:        log,
		limiters:   newLimiterRegistry(5, 10),
		backends:   make(map[string]Backend),
		breakers:   make(map[string]*breaker),
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register associates a provider prefix (e.g. "openai", "anthropic")
// with the Backend that serves it. Model names passed to Call are
// expected to be prefixed "<provider>:<model>", e.g. "openai:gpt-4o".
func (g *Gateway) Register(provider string, backend Backend) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.backends[provider] = backend
}

// Providers returns the provider prefixes with a Backend registered,
// in no particular order. Used by status endpoints to report which
// providers are actually reachable rather than merely configured
// (spec.md §6 "GET /v1/providers").
func (g *Gateway) Providers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.backends))
	for p := range g.backends {
		out = append(out, p)
	}
	return out
}

// RateLimit returns the token-bucket ceiling every model's limiter was
// constructed with (see WithRateLimit).
func (g *Gateway) RateLimit() (rps float64, burst int) {
	return g.limiters.rps, g.limiters.burst
}

// BreakerStates reports the circuit breaker state of every model of
// the given provider that has handled at least one call so far. A
// model with no breaker yet is implicitly BreakerClosed and is not
// included here.
func (g *Gateway) BreakerStates(provider string) map[string]BreakerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	prefix := provider + ":"
	states := make(map[string]BreakerState)
	for model, b := range g.breakers {
		if strings.HasPrefix(model, prefix) {
			states[model] = b.State()
		}
	}
	return states
}

func splitModel(model string) (provider, name string, err error) {
	for i := 0; i < len(model); i++ {
		if model[i] == ':' {
			return model[:i], model[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("gateway: model %q is not provider-prefixed (expected provider:model)", model)
}

func (g *Gateway) breakerFor(model string) *breaker {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.breakers[model]
	if !ok {
		b = newBreaker(defaultBreakerConfig())
		g.breakers[model] = b
	}
	return b
}

// Call performs one chat completion against model, enforcing rate
// limiting, circuit breaking, and retries. model must be of the form
// "provider:name" (see Register).
func (g *Gateway) Call(ctx context.Context, model string, messages []Message, params Params) (Response, error) {
	provider, name, err := splitModel(model)
	if err != nil {
		return Response{}, &Error{Kind: ErrorKindInvalidModel, Model: model, Err: err}
	}

	g.mu.Lock()
	backend, ok := g.backends[provider]
	g.mu.Unlock()
	if !ok {
		return Response{}, &Error{Kind: ErrorKindInvalidModel, Model: model, Err: fmt.Errorf("no backend registered for provider %q", provider)}
	}

	br := g.breakerFor(model)
	if !br.Allow() {
		telemetry.RecordCircuitBreakerState(model, string(br.State()))
		return Response{}, &Error{Kind: ErrorKindTransient, Model: model, Err: fmt.Errorf("circuit breaker open for %s", model)}
	}

	if err := g.limiters.wait(ctx, model); err != nil {
		return Response{}, &Error{Kind: ErrorKindTimeout, Model: model, Err: err}
	}

	var resp Response
	op := func() (Response, error) {
		start := time.Now()
		r, callErr := backend.Chat(ctx, name, messages, params)
		elapsed := time.Since(start).Seconds()
		if callErr != nil {
			gwErr := classify(model, callErr)
			telemetry.RecordGatewayCall(model, "error", elapsed, 0, 0)
			if gwErr.Retryable() {
				return Response{}, gwErr
			}
			return Response{}, backoff.Permanent(gwErr)
		}
		telemetry.RecordGatewayCall(model, "success", elapsed, r.Usage.PromptTokens, r.Usage.CompletionTokens)
		return r, nil
	}

	resp, err = backoff.Retry(ctx, op,
		backoff.WithMaxTries(uint(g.maxRetries)),
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
	)

	if err != nil {
		br.RecordFailure()
		telemetry.RecordCircuitBreakerState(model, string(br.State()))
		g.log.ErrorContext(ctx, "gateway call failed", "model", model, "error", err)
		var gwErr *Error
		if e, ok := err.(*Error); ok {
			gwErr = e
		} else {
			gwErr = &Error{Kind: ErrorKindUnknown, Model: model, Err: err}
		}
		return Response{}, gwErr
	}

	br.RecordSuccess()
	telemetry.RecordCircuitBreakerState(model, string(br.State()))
	return resp, nil
}

// classify turns an opaque backend error into a gateway Error. Backend
// implementations may already return *Error (e.g. on HTTP 401/429); any
// other error is treated as transient so a single flaky call does not
// permanently disable a model.
func classify(model string, err error) *Error {
	if gwErr, ok := err.(*Error); ok {
		return gwErr
	}
	return &Error{Kind: ErrorKindTransient, Model: model, Err: err}
}
