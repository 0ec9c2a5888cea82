// Command bench runs a labeled prompt suite against one or more
// systems and reports per-category accuracy, cost, and latency,
// failing the process if the run trips the regression gate
// (spec.md §4.10, §6 "Benchmark CLI").
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/llmhive/llmhive/internal/bench"
	"github.com/llmhive/llmhive/internal/catalog"
	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/gateway"
	"github.com/llmhive/llmhive/internal/handlers"
	"github.com/llmhive/llmhive/internal/logging"
	"github.com/llmhive/llmhive/internal/orchestrator"
	"github.com/llmhive/llmhive/internal/prompttpl"
	"github.com/llmhive/llmhive/internal/tools"
)

// Exit codes (spec.md §6).
const (
	exitSuccess    = 0
	exitRegression = 1
	exitSetupError = 2
	exitCancelled  = 3
)

var (
	suitePath     string
	systemsFlag   string
	runsPerCase   int
	mode          string
	outdir        string
	temperature   float32
	maxTokens     int
	timeoutSec    int
	categoryFlag  string
	promptsFlag   string
	criticalOnly  bool
	verbose       bool
	catalogPath   string
	cheatsheetDir string
	checkpointDir string
	failRateMax   float64

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a labeled prompt suite against one or more systems",
		RunE:  runBench,
	}

	rootCmd = &cobra.Command{
		Use:   "bench",
		Short: "Benchmark harness for the llmhive orchestration engine",
	}
)

func init() {
	runCmd.Flags().StringVar(&suitePath, "suite", "", "path to the suite YAML file (required)")
	runCmd.Flags().StringVar(&systemsFlag, "systems", "local", "comma-separated system names to benchmark")
	runCmd.Flags().IntVar(&runsPerCase, "runs-per-case", 1, "repetitions per prompt item")
	runCmd.Flags().StringVar(&mode, "mode", "local", "local|http")
	runCmd.Flags().StringVar(&outdir, "outdir", "./bench-results", "directory to write report.json/report.md/cases/")
	runCmd.Flags().Float32Var(&temperature, "temperature", 0, "sampling temperature passed to the system under test")
	runCmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "unused by local mode; reserved for http systems with token caps")
	runCmd.Flags().IntVar(&timeoutSec, "timeout", 120, "per-item timeout in seconds")
	runCmd.Flags().StringVar(&categoryFlag, "category", "", "comma-separated category filter")
	runCmd.Flags().StringVar(&promptsFlag, "prompts", "", "comma-separated prompt id filter")
	runCmd.Flags().BoolVar(&criticalOnly, "critical-only", false, "run only items marked critical")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "emit debug-level logs")
	runCmd.Flags().StringVar(&catalogPath, "catalog", "data/models.yaml", "model catalog YAML path (--mode local)")
	runCmd.Flags().StringVar(&cheatsheetDir, "cheatsheets", "data/cheatsheets", "cheat sheet directory (--mode local)")
	runCmd.Flags().StringVar(&checkpointDir, "checkpoint-dir", "", "badger checkpoint directory; empty disables resumability")
	runCmd.Flags().Float64Var(&failRateMax, "failure-rate-max", 0.1, "overall failure rate that trips the regression gate")

	rootCmd.AddCommand(runCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == exitSuccess {
			return exitSetupError
		}
		return exitCode
	}
	return exitCode
}

// exitCode is set by runBench since cobra's RunE only reports error
// vs. no error, not which of our four exit codes applies.
var exitCode = exitSuccess

func runBench(cmd *cobra.Command, args []string) error {
	log := logging.New(logging.Config{Level: levelFor(verbose), Service: "bench", JSON: false})
	defer log.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	suite, err := bench.LoadSuite(suitePath)
	if err != nil {
		exitCode = exitSetupError
		return err
	}

	systemNames := splitCSV(systemsFlag)
	if len(systemNames) == 0 {
		exitCode = exitSetupError
		return fmt.Errorf("bench: --systems must name at least one system")
	}

	systems, err := buildSystems(systemNames, log)
	if err != nil {
		exitCode = exitSetupError
		return err
	}

	var checkpoint *bench.CheckpointStore
	if checkpointDir != "" {
		checkpoint, err = bench.OpenCheckpointStore(checkpointDir)
		if err != nil {
			exitCode = exitSetupError
			return err
		}
		defer checkpoint.Close()
	}

	cfgBase := bench.RunConfig{
		Suite:          suite,
		RunsPerCase:    runsPerCase,
		Categories:     splitCSV(categoryFlag),
		PromptIDs:      splitCSV(promptsFlag),
		CriticalOnly:   criticalOnly,
		FailureRateMax: failRateMax,
		PerItemTimeout: time.Duration(timeoutSec) * time.Second,
	}

	overallPassed := true
	for _, sys := range systems {
		cfg := cfgBase
		cfg.RunID = bench.NewRunID()
		cfg.Seed = time.Now().UnixNano()

		scorer := bench.NewScorer(tools.NewSandbox(tools.DefaultSandboxConfig()))
		runner := &bench.Runner{System: sys, Scorer: scorer, Checkpoint: checkpoint, Log: log}

		report, runErr := runner.Run(ctx, cfg)

		if runErr == context.Canceled || runErr == context.DeadlineExceeded {
			exitCode = exitCancelled
			return runErr
		}
		if runErr != nil {
			exitCode = exitSetupError
			return runErr
		}

		sysOutdir := filepath.Join(outdir, sys.Name())
		if prev, perr := bench.LoadPreviousReport(filepath.Join(sysOutdir, "report.json")); perr == nil && prev != nil {
			reg := bench.CompareRuns(*prev, report)
			report.Regression = &reg
		}

		if err := bench.WriteReport(sysOutdir, sys.Name(), report); err != nil {
			exitCode = exitSetupError
			return err
		}

		fmt.Fprintln(os.Stdout, bench.RenderTerminalSummary(report))
		if !report.GatePassed {
			overallPassed = false
		}
	}

	if !overallPassed {
		exitCode = exitRegression
		return nil
	}
	exitCode = exitSuccess
	return nil
}

// temperaturePtr returns nil when --temperature was left at its zero
// value, so handlers fall back to their own per-category default
// rather than forcing temperature 0 on every request.
func temperaturePtr() *float32 {
	if temperature == 0 {
		return nil
	}
	t := temperature
	return &t
}

func levelFor(verbose bool) logging.Level {
	if verbose {
		return logging.LevelDebug
	}
	return logging.LevelInfo
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// buildSystems constructs one bench.System per name, either wiring a
// full in-process orchestrator (--mode local) or an HTTP client
// pointed at a deployed instance (--mode http, where each name is
// treated as a base URL).
func buildSystems(names []string, log *logging.Logger) ([]bench.System, error) {
	systems := make([]bench.System, 0, len(names))
	switch mode {
	case "local":
		for _, name := range names {
			orch, err := buildLocalOrchestrator(log)
			if err != nil {
				return nil, err
			}
			systems = append(systems, &bench.LocalSystem{Name_: name, Orchestrator: orch, Temperature: temperaturePtr()})
		}
	case "http":
		for _, name := range names {
			apiKey, _ := os.LookupEnv("LLMHIVE_BENCH_API_KEY")
			httpSys := bench.NewHTTPSystem(name, name, apiKey, time.Duration(timeoutSec)*time.Second)
			httpSys.Temperature = temperaturePtr()
			systems = append(systems, httpSys)
		}
	default:
		return nil, fmt.Errorf("bench: unknown --mode %q (want local|http)", mode)
	}
	return systems, nil
}

// buildLocalOrchestrator wires a full Orchestrator the same way
// cmd/llmhive-server does, so `--mode local` benchmarks the exact
// category-handler wiring the server ships.
func buildLocalOrchestrator(log *logging.Logger) (*orchestrator.Orchestrator, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("bench: load catalog: %w", err)
	}
	gw, err := gateway.FromEnv(log)
	if err != nil {
		return nil, fmt.Errorf("bench: build gateway: %w", err)
	}
	sheets, err := prompttpl.LoadCheatSheets(cheatsheetDir)
	if err != nil {
		return nil, fmt.Errorf("bench: load cheat sheets: %w", err)
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
	return orchestrator.New(cfg)
}
