// Package classifier implements the rule-driven query classifier
// (PromptOps): category, complexity, clarification policy, tool hints,
// and prompt rewriting, all from a deterministic, versioned ruleset.
package classifier

// Category is the disjoint task class assigned to a query.
type Category string

const (
	CategoryMath         Category = "math"
	CategoryCoding       Category = "coding"
	CategoryReasoning    Category = "reasoning"
	CategoryRAG          Category = "rag"
	CategoryLongContext  Category = "long_context"
	CategoryMultilingual Category = "multilingual"
	CategoryToolUse      Category = "tool_use"
	CategoryDialogue     Category = "dialogue"
	CategoryGeneral      Category = "general"
)

// Complexity is the classifier's estimate of how much decomposition a
// query needs.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// ToolHint names a tool the broker should consider running before the
// category handler runs.
type ToolHint string

const (
	ToolHintCalculator ToolHint = "calculator"
	ToolHintSandbox    ToolHint = "code_sandbox"
	ToolHintWebSearch  ToolHint = "web_search"
	ToolHintRetriever  ToolHint = "retrieve"
	ToolHintReranker   ToolHint = "rerank"
)

// Analysis is the classifier's complete verdict on a single query. The
// RulesetVersion field is always populated so the engine can prove
// stable classification across runs (spec.md §8 invariant 4).
type Analysis struct {
	Category          Category
	Complexity        Complexity
	ToolHints         []ToolHint
	NeedsClarification bool
	RewrittenPrompt   string
	DetectedLanguage  string
	RulesetVersion    string
}

// HasToolHint reports whether hint is present in the analysis.
func (a Analysis) HasToolHint(hint ToolHint) bool {
	for _, h := range a.ToolHints {
		if h == hint {
			return true
		}
	}
	return false
}
