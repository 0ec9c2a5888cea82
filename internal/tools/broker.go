package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/llmhive/llmhive/internal/classifier"
	"github.com/llmhive/llmhive/internal/logging"
)

// Broker detects tool needs from a classified query and runs the
// tools it decides are warranted, in this order: calculator first
// (authoritative numbers), then web search, then retrieval. MaybeRun
// never runs the sandbox.
type Broker struct {
	log       *logging.Logger
	calc      *Calculator
	sandbox   *Sandbox
	search    *WebSearcher
	retriever *Retriever
	reranker  *Reranker
	embed     func(ctx context.Context, text string) ([]float32, error)
}

// Option configures a Broker.
type Option func(*Broker)

func WithSearcher(s *WebSearcher) Option      { return func(b *Broker) { b.search = s } }
func WithRetriever(r *Retriever) Option       { return func(b *Broker) { b.retriever = r } }
func WithReranker(r *Reranker) Option         { return func(b *Broker) { b.reranker = r } }
func WithSandbox(s *Sandbox) Option           { return func(b *Broker) { b.sandbox = s } }
func WithEmbedder(f func(ctx context.Context, text string) ([]float32, error)) Option {
	return func(b *Broker) { b.embed = f }
}

// New returns a Broker. The calculator is always available; other
// tools are optional and simply skipped if not configured (e.g. no
// Weaviate URL configured, mirroring the teacher's lightweight-mode
// fallback).
func New(log *logging.Logger, opts ...Option) *Broker {
	b := &Broker{log: log, calc: NewCalculator()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var arithmeticExprPattern = regexp.MustCompile(`[0-9][0-9\.\s\+\-\*/\^%\(\)a-zA-Z,]*[0-9\)]`)

// ExtractExpression pulls the first arithmetic-looking substring out
// of text; MaybeRun uses it to find the calculator input in the
// prompt. Returns "", false if nothing looks like an expression.
func ExtractExpression(text string) (string, bool) {
	match := arithmeticExprPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.TrimSpace(match), true
}

// MaybeRun inspects analysis's tool hints and runs the corresponding
// tools against prompt, returning one Result per tool attempted. It
// never runs web search for a query the classifier did not flag as
// needing it (spec.md §4.2: "never invoked for static-knowledge
// queries").
func (b *Broker) MaybeRun(ctx context.Context, analysis classifier.Analysis, prompt string) []Result {
	var results []Result

	if analysis.HasToolHint(classifier.ToolHintCalculator) {
		if expr, ok := ExtractExpression(prompt); ok {
			results = append(results, b.runCalculator(expr))
		}
	}

	if analysis.HasToolHint(classifier.ToolHintWebSearch) && b.search != nil {
		results = append(results, b.runWebSearch(ctx, prompt))
	}

	if analysis.HasToolHint(classifier.ToolHintRetriever) && b.retriever != nil {
		results = append(results, b.runRetrieve(ctx, prompt))
	}

	return results
}

// RunCalculator evaluates a single expression directly. The math
// handler calls this once per decomposed step so each step's result
// is calculator-authoritative, not just the final answer (spec.md
// §4.6's "math: calculator-authoritative" invariant).
func (b *Broker) RunCalculator(expr string) (CalculatorResult, error) {
	return b.calc.Evaluate(expr)
}

func (b *Broker) runCalculator(expr string) Result {
	calcResult, err := b.calc.Evaluate(expr)
	if err != nil {
		b.log.Warn("calculator rejected expression", "expression", expr, "error", err)
		return Result{Tool: ToolCalculator, Status: StatusMalformed, Err: err, Text: fmt.Sprintf("MALFORMED_EXPRESSION: %q", expr)}
	}
	return Result{
		Tool:   ToolCalculator,
		Status: StatusOK,
		Text:   fmt.Sprintf("%s = %g", expr, calcResult.Value),
	}
}

func (b *Broker) runWebSearch(ctx context.Context, query string) Result {
	hits, err := b.search.Search(ctx, query, 5)
	if err != nil {
		b.log.WarnContext(ctx, "web search failed", "error", err)
		return Result{Tool: ToolWebSearch, Status: StatusError, Err: err}
	}
	var sb strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", h.Title, h.URL, h.Snippet)
	}
	return Result{Tool: ToolWebSearch, Status: StatusOK, Text: sb.String()}
}

func (b *Broker) runRetrieve(ctx context.Context, query string) Result {
	var vector []float32
	if b.embed != nil {
		v, err := b.embed(ctx, query)
		if err != nil {
			b.log.WarnContext(ctx, "query embedding failed, falling back to sparse-only retrieval", "error", err)
		} else {
			vector = v
		}
	}

	passages, err := b.retriever.Query(ctx, vector, query, 8)
	if err != nil {
		b.log.WarnContext(ctx, "retrieval failed", "error", err)
		return Result{Tool: ToolRetriever, Status: StatusError, Err: err}
	}

	if b.reranker != nil {
		reranked, err := b.reranker.Rerank(ctx, query, passages)
		if err != nil {
			b.log.WarnContext(ctx, "reranking failed, using retrieval order", "error", err)
		} else {
			passages = reranked
		}
	}

	var sb strings.Builder
	for _, p := range passages {
		fmt.Fprintf(&sb, "[%s] %s\n", p.ID, p.Text)
	}
	return Result{Tool: ToolRetriever, Status: StatusOK, Text: sb.String()}
}

// RunSandbox executes program against tests. It is invoked directly
// by the coding handler's generate-test-refine loop rather than via
// MaybeRun, because it needs the candidate program text the model
// just produced, not the original prompt.
func (b *Broker) RunSandbox(ctx context.Context, program string, tests []TestCase) (SandboxResult, error) {
	if b.sandbox == nil {
		return SandboxResult{}, fmt.Errorf("tools: no sandbox configured")
	}
	return b.sandbox.Run(ctx, program, tests)
}

// RenderBlock joins results into the single delimited block the
// prompt template injects into the envelope.
func RenderBlock(results []Result) string {
	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "[%s:%s]\n%s\n", r.Tool, r.Status, r.Text)
	}
	return sb.String()
}
