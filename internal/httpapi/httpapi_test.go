package httpapi

import (
	"context"
	"testing"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/gateway"
	"github.com/llmhive/llmhive/internal/logging"
	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/tools"
)

type fakeHandler struct {
	result orchestrator.HandlerResult
	err    error
}

func (h fakeHandler) Handle(ctx context.Context, req orchestrator.HandlerRequest) (orchestrator.HandlerResult, error) {
	return h.result, h.err
}

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

// testServer builds a Server wired with a minimal real Orchestrator (a
// fake Handler registered for CategoryDialogue so the free-text
// contract passes raw text through unchanged) and a Gateway with one
// provider registered, matching the wiring cmd/llmhive-server performs
// for real.
func testServer(t *testing.T, handler orchestrator.Handler) *Server {
	t.Helper()
	log := testLogger()
	cat := catalog.FromDescriptors([]catalog.Descriptor{
		{ID: "openai:gpt-4o", Provider: "openai", CategoryScores: map[string]float64{"dialogue": 0.9}, Tier: catalog.TierElite},
	})
	broker := tools.New(log)
	orch, err := orchestrator.New(orchestrator.Config{
		Classifier: classifier.New(),
		Catalog:    cat,
		Broker:     broker,
		Log:        log,
		Handlers: map[classifier.Category]orchestrator.Handler{
			classifier.CategoryDialogue: handler,
		},
	})
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}

	gw := gateway.New(log)
	gw.Register("openai", nil)

	return &Server{Orchestrator: orch, Gateway: gw, Log: log}
}
