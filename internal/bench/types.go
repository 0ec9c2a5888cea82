// Package bench implements the benchmark harness: loading labelled
// suites, sampling and running their items against the orchestration
// engine, scoring the results, checkpointing progress to a resumable
// store, and aggregating a regression-gated report (spec.md §4.10).
package bench

import "time"

// ScoringRule names one of the composite-score ingredients a suite
// item can be graded with (spec.md §4.10).
type ScoringRule string

const (
	RuleExactContains ScoringRule = "exact_contains"
	RuleRegex         ScoringRule = "regex"
	RuleNumericEqual  ScoringRule = "numeric_equal"
	RuleNotContains   ScoringRule = "not_contains"
	RuleRankingMRRAtK ScoringRule = "ranking_mrr_at_k"
	RuleCodeTestsPass ScoringRule = "code_tests_pass"
)

// SuiteMetadata identifies a suite and the set of categories its items
// draw from.
type SuiteMetadata struct {
	SuiteName  string   `yaml:"suite_name" validate:"required"`
	Version    string   `yaml:"version" validate:"required"`
	Categories []string `yaml:"categories" validate:"required,min=1"`
}

// NumericExpected is the expected-value envelope for numeric_equal
// scoring.
type NumericExpected struct {
	Value     float64 `yaml:"value"`
	Tolerance float64 `yaml:"tolerance"`
}

// Expected holds every scoring-relevant expectation a suite item may
// declare. Which fields are populated depends on the item's scoring
// rules; a field left zero-valued is simply not checked.
type Expected struct {
	Contains      string           `yaml:"contains,omitempty"`
	Regex         string           `yaml:"regex,omitempty"`
	NotContains   string           `yaml:"not_contains,omitempty"`
	Numeric       *NumericExpected `yaml:"numeric,omitempty"`
	JSONSchema    string           `yaml:"jsonschema,omitempty"`
	RankingIDs    []string         `yaml:"ranking_ids,omitempty"`
	RelevantID    string           `yaml:"relevant_id,omitempty"`
	RankAtK       int              `yaml:"rank_at_k,omitempty"`
	FunctionName  string           `yaml:"function_name,omitempty"`
	VisibleTests  []ExpectedTest   `yaml:"visible_tests,omitempty"`
}

// ExpectedTest is one black-box case for code_tests_pass scoring,
// mirroring tools.TestCase without importing internal/tools into the
// suite schema.
type ExpectedTest struct {
	Name  string `yaml:"name"`
	Input string `yaml:"input"`
	Want  string `yaml:"want"`
}

// Requirements flags capability preconditions a prompt item depends
// on. The flags are parsed from the suite file and kept on the item;
// the runner does not read them and does not skip items on them.
type Requirements struct {
	RequiresRAG              bool `yaml:"requires_rag,omitempty"`
	RequiresTools            bool `yaml:"requires_tools,omitempty"`
	RequiresSandbox          bool `yaml:"requires_sandbox,omitempty"`
	RequiresNoClarification  bool `yaml:"requires_no_clarification,omitempty"`
	RequiresClarification    bool `yaml:"requires_clarification,omitempty"`
}

// Scoring configures how a prompt item's raw rule evaluation becomes
// a composite score, and whether its failure gates the whole run.
type Scoring struct {
	ObjectiveWeight float64 `yaml:"objective_weight" validate:"gte=0"`
	RubricWeight    float64 `yaml:"rubric_weight" validate:"gte=0"`
	Critical        bool    `yaml:"critical,omitempty"`
}

// PromptItem is one labelled suite entry.
type PromptItem struct {
	ID       string        `yaml:"id" validate:"required"`
	Category string        `yaml:"category" validate:"required"`
	Prompt   string        `yaml:"prompt" validate:"required"`
	Rules    []ScoringRule `yaml:"rules,omitempty"`
	Expected Expected      `yaml:"expected"`
	Requires Requirements  `yaml:"requirements"`
	Scoring  Scoring       `yaml:"scoring"`
	Notes    string        `yaml:"notes,omitempty"`
}

// Suite is a fully loaded and validated benchmark suite.
type Suite struct {
	Metadata SuiteMetadata `yaml:"metadata" validate:"required"`
	Prompts  []PromptItem  `yaml:"prompts" validate:"required,min=1,dive"`
}

// RunConfig configures one benchmark run.
type RunConfig struct {
	Suite          *Suite
	RunID          string
	Seed           int64
	RunsPerCase    int
	Categories     []string // empty means all
	PromptIDs      []string // empty means all
	CriticalOnly   bool
	FailureRateMax float64 // regression gate threshold, e.g. 0.1 for 10%
	PerItemTimeout time.Duration
}

// ItemResult is the outcome of running one suite item once.
type ItemResult struct {
	ItemID       string
	RunIndex     int
	Category     string
	Passed       bool
	ObjectiveOK  bool
	RubricScore  float64
	Score        float64
	Critical     bool
	CostUSD      float64
	LatencyMS    int64
	Confidence   float64
	Verified     bool
	StrategyID   string
	FinalText    string
	ErrorKind    string
	FailReason   string
	Timestamp    time.Time
}

// CategoryAggregate summarises every item result within one category.
type CategoryAggregate struct {
	Category     string
	ItemCount    int
	PassCount    int
	Accuracy     float64
	MeanScore    float64
	MeanLatency  time.Duration
}

// RegressionReport compares this run's aggregate against a prior run.
type RegressionReport struct {
	PreviousRunID     string
	AccuracyDelta     float64
	MeanLatencyDelta  time.Duration
	MeanCostDelta     float64
	NewCriticalFails  []string
	Improved          bool
}

// RunReport is the complete, serialisable result of a benchmark run.
type RunReport struct {
	RunID            string
	SuiteName        string
	SuiteVersion     string
	Seed             int64
	SampleOrder      []int
	StartedAt        time.Time
	FinishedAt       time.Time
	Items            []ItemResult
	Categories       []CategoryAggregate
	MeanConfidence   float64
	MeanLatency      time.Duration
	TotalCostUSD     float64
	FailureRate      float64
	CriticalFailures []string
	Regression       *RegressionReport
	GatePassed       bool
	GateReason       string
}
