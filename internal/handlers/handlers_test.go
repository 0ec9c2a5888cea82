package handlers

import (
	"context"
	"testing"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/gateway"
	"github.com/llmhive/llmhive/internal/logging"
	"github.com/llmhive/llmhive/internal/prompttpl"
	"github.com/llmhive/llmhive/internal/tools"
)

type fakeBackend struct {
	texts      []string // one response per call, in order; last repeats if exhausted
	calls      int
	err        error
	errOnCalls map[int]bool // 0-based call indices that should fail instead of returning texts
	usage      gateway.Usage // reported on every successful call, zero value if unset
}

func (f *fakeBackend) Chat(ctx context.Context, model string, messages []gateway.Message, params gateway.Params) (gateway.Response, error) {
	idx := f.calls
	f.calls++
	if f.err != nil || f.errOnCalls[idx] {
		if f.err != nil {
			return gateway.Response{}, f.err
		}
		return gateway.Response{}, &gateway.Error{Kind: gateway.ErrorKindAuth, Model: model}
	}
	if idx >= len(f.texts) {
		idx = len(f.texts) - 1
	}
	return gateway.Response{Text: f.texts[idx], Usage: f.usage}, nil
}

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

func testDeps(backend gateway.Backend) Deps {
	gw := gateway.New(testLogger(), gateway.WithRateLimit(1000, 1000))
	gw.Register("test", backend)
	return Deps{
		Gateway: gw,
		Prompts: prompttpl.NewBuilder(nil),
		Broker:  tools.New(testLogger(), tools.WithSandbox(tools.NewSandbox(tools.DefaultSandboxConfig()))),
		Log:     testLogger(),
	}
}

func testModel(id string) catalog.Descriptor {
	return catalog.Descriptor{ID: "test:" + id, Provider: "test", ContextWindow: 8000}
}

func testAnalysis(category classifier.Category, prompt string) classifier.Analysis {
	return classifier.Analysis{
		Category:        category,
		Complexity:      classifier.ComplexitySimple,
		RewrittenPrompt: prompt,
		RulesetVersion:  classifier.RulesetVersion,
	}
}
