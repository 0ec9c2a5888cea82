// Package prompttpl builds category-specific PromptEnvelopes: a fixed
// preamble, an optional cheat sheet, any tool-result block, and the
// output-format contract the refiner later enforces.
package prompttpl

import (
	"fmt"
	"strings"

	"github.com/llmhive/llmhive/internal/classifier"
)

// Contract names the output-format contract a category handler must
// satisfy, bit-exact where spec.md §4.5 requires it.
type Contract string

const (
	ContractLetter  Contract = "letter"        // reasoning: trailing A-E
	ContractGSM8K   Contract = "gsm8k"         // math: trailing "#### N"
	ContractCode    Contract = "code_block"    // coding: fenced function def
	ContractRanking Contract = "ranking"       // rag: comma-separated passage ids
	ContractNeedle  Contract = "needle_exact"  // long_context: literal needle only
	ContractFree    Contract = "free_text"     // dialogue, tool_use, multilingual, general
)

// contractByCategory pins each category to its format contract per
// spec.md §4.5. long_context and rag have dedicated contracts;
// everything else that doesn't appear here defaults to free text.
var contractByCategory = map[classifier.Category]Contract{
	classifier.CategoryReasoning:   ContractLetter,
	classifier.CategoryMath:        ContractGSM8K,
	classifier.CategoryCoding:      ContractCode,
	classifier.CategoryRAG:         ContractRanking,
	classifier.CategoryLongContext: ContractNeedle,
}

// ContractFor returns the format contract a category's answers must
// satisfy.
func ContractFor(category classifier.Category) Contract {
	if c, ok := contractByCategory[category]; ok {
		return c
	}
	return ContractFree
}

// Envelope is the fully-assembled prompt handed to the Provider
// Gateway: system text, user text, an optional tool-results block, and
// the contract instruction baked into the system text so every model
// sees the same rule.
type Envelope struct {
	SystemText     string
	UserText       string
	ToolResultsText string
	Contract       Contract
}

// preambleByCategory is the fixed task description injected before any
// cheat sheet or contract instruction.
var preambleByCategory = map[classifier.Category]string{
	classifier.CategoryMath:         "You are solving a grade-school arithmetic word problem. Decompose it into explicit steps.",
	classifier.CategoryCoding:       "You are implementing a Python function to satisfy the given signature and tests.",
	classifier.CategoryReasoning:    "You are answering a multiple-choice question. Consider and eliminate each option before deciding.",
	classifier.CategoryRAG:          "You are ranking retrieved passages by relevance to the query.",
	classifier.CategoryLongContext:  "You are extracting a single literal fact from a long document.",
	classifier.CategoryMultilingual: "You are answering in the language the user wrote in.",
	classifier.CategoryToolUse:      "You are answering a question that may require a calculator or other tool.",
	classifier.CategoryDialogue:     "You are having a direct, concise conversation with the user.",
	classifier.CategoryGeneral:      "You are answering a general-purpose question as helpfully as possible.",
}

func contractInstruction(c Contract) string {
	switch c {
	case ContractLetter:
		return "End your response with a single uppercase letter A-E on its own line, and nothing after it."
	case ContractGSM8K:
		return `End your response with "#### N" where N is the final numeric answer, written as a plain decimal with no thousands separators.`
	case ContractCode:
		return "Respond with exactly one fenced code block containing a complete function definition matching the given signature. Do not include prose inside the block."
	case ContractRanking:
		return "Respond with only a comma-separated list of passage IDs, most relevant first, and nothing else."
	case ContractNeedle:
		return "Respond with the exact literal string requested and nothing else: no punctuation, no explanation."
	default:
		return ""
	}
}

// Builder assembles Envelopes, optionally injecting a cheat sheet
// loaded from the Configuration Data component.
type Builder struct {
	cheatSheets *CheatSheets
}

// NewBuilder returns a Builder. cheatSheets may be nil, in which case
// no cheat sheet is ever injected.
func NewBuilder(cheatSheets *CheatSheets) *Builder {
	return &Builder{cheatSheets: cheatSheets}
}

// Build assembles the Envelope for a single category handler
// invocation. toolResultsText should be the already-formatted,
// delimited block the Tool Broker produced, or "" if no tools ran.
func (b *Builder) Build(analysis classifier.Analysis, toolResultsText string) Envelope {
	category := analysis.Category
	var sb strings.Builder

	sb.WriteString(preambleByCategory[category])
	sb.WriteString("\n\n")

	if b.cheatSheets != nil {
		if sheet, ok := b.cheatSheets.For(category); ok {
			sb.WriteString(sheet)
			sb.WriteString("\n\n")
		}
	}

	contract := ContractFor(category)
	if instr := contractInstruction(contract); instr != "" {
		sb.WriteString(instr)
		sb.WriteString("\n")
	}

	if toolResultsText != "" {
		sb.WriteString(fmt.Sprintf("\n--- TOOL RESULTS (authoritative where applicable) ---\n%s\n--- END TOOL RESULTS ---\n", toolResultsText))
	}

	return Envelope{
		SystemText:      sb.String(),
		UserText:        analysis.RewrittenPrompt,
		ToolResultsText: toolResultsText,
		Contract:        contract,
	}
}
