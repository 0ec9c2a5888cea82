// Command llmhive-server runs the orchestration engine as an HTTP
// service: POST /v1/chat, GET /v1/status/diagnostics/config, and
// GET /v1/providers (spec.md §6 "External Interfaces").
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/config"
	"github.com/llmhive/llmhive/internal/gateway"
	"github.com/llmhive/llmhive/internal/handlers"
	"github.com/llmhive/llmhive/internal/httpapi"
	"github.com/llmhive/llmhive/internal/logging"
	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/prompttpl"
	"github.com/llmhive/llmhive/internal/telemetry"
	"github.com/llmhive/llmhive/internal/tools"
)

func main() {
	log := logging.New(logging.Config{Level: levelOrDefault(), Service: "llmhive-server", JSON: true})
	defer log.Close()

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		shutdown, err := telemetry.InitTracer(context.Background(), endpoint, "llmhive-server")
		if err != nil {
			log.Warn("tracer init failed, continuing without tracing", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	orch, gw, err := buildOrchestrator(log)
	if err != nil {
		log.Error("failed to build orchestrator", "error", err)
		os.Exit(1)
	}

	srv := &httpapi.Server{Orchestrator: orch, Gateway: gw, Log: log}
	port := os.Getenv("LLMHIVE_PORT")
	if port == "" {
		port = "8080"
	}

	httpServer := &http.Server{Addr: ":" + port, Handler: srv.NewRouter()}

	go func() {
		log.Info("llmhive-server listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server exited", "error", err)
			os.Exit(1)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func levelOrDefault() logging.Level {
	switch config.LogLevel() {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// buildOrchestrator wires every component the server depends on, the
// same way cmd/bench's --mode local does, so both entrypoints exercise
// the identical category-handler wiring.
func buildOrchestrator(log *logging.Logger) (*orchestrator.Orchestrator, *gateway.Gateway, error) {
	catalogPath := envOrDefault("LLMHIVE_CATALOG_PATH", "data/models.yaml")
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, nil, err
	}

	gw, err := gateway.FromEnv(log)
	if err != nil {
		return nil, nil, err
	}

	cheatsheetDir := envOrDefault("LLMHIVE_CHEATSHEETS_DIR", "data/cheatsheets")
	sheets, err := prompttpl.LoadCheatSheets(cheatsheetDir)
	if err != nil {
		return nil, nil, err
	}

	sandbox := tools.NewSandbox(tools.DefaultSandboxConfig())
	broker := tools.New(log, tools.WithSandbox(sandbox))

	deps := handlers.Deps{Gateway: gw, Prompts: prompttpl.NewBuilder(sheets), Broker: broker, Log: log}

	cfg := orchestrator.Config{
		Classifier: classifier.New(),
		Catalog:    cat,
		Broker:     broker,
		Log:        log,
		Handlers: map[classifier.Category]orchestrator.Handler{
			classifier.CategoryMath:         handlers.MathHandler{Deps: deps},
			classifier.CategoryCoding:       handlers.CodingHandler{Deps: deps},
			classifier.CategoryReasoning:    handlers.ReasoningHandler{Deps: deps},
			classifier.CategoryRAG:          handlers.RAGHandler{Deps: deps},
			classifier.CategoryLongContext:  handlers.LongContextHandler{Deps: deps},
			classifier.CategoryMultilingual: handlers.MultilingualHandler{Deps: deps},
			classifier.CategoryToolUse:      handlers.ToolUseHandler{Deps: deps},
			classifier.CategoryDialogue:     handlers.DialogueHandler{Deps: deps},
		},
	}
	orch, err := orchestrator.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return orch, gw, nil
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
