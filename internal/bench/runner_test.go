package bench

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSystem struct {
	name  string
	calls int
	texts map[string]string
}

func (f *fakeSystem) Name() string { return f.name }

func (f *fakeSystem) RunQuery(ctx context.Context, item PromptItem) (QueryOutcome, error) {
	f.calls++
	return QueryOutcome{FinalText: f.texts[item.ID], Confidence: 0.8}, nil
}

func testSuite() *Suite {
	return &Suite{
		Metadata: SuiteMetadata{SuiteName: "smoke", Version: "1.0.0", Categories: []string{"math"}},
		Prompts: []PromptItem{
			{
				ID: "m1", Category: "math", Prompt: "2+2",
				Rules:    []ScoringRule{RuleNumericEqual},
				Expected: Expected{Numeric: &NumericExpected{Value: 4}},
				Scoring:  Scoring{ObjectiveWeight: 1},
			},
			{
				ID: "m2", Category: "math", Prompt: "3+3",
				Rules:    []ScoringRule{RuleNumericEqual},
				Expected: Expected{Numeric: &NumericExpected{Value: 6}},
				Scoring:  Scoring{ObjectiveWeight: 1},
			},
		},
	}
}

func TestRunner_Run_ScoresEachItemAndAggregates(t *testing.T) {
	sys := &fakeSystem{name: "local", texts: map[string]string{"m1": "#### 4", "m2": "#### 6"}}
	runner := &Runner{System: sys, Scorer: NewScorer(nil)}

	report, err := runner.Run(context.Background(), RunConfig{Suite: testSuite(), RunsPerCase: 1, Seed: 1})
	require.NoError(t, err)
	assert.Len(t, report.Items, 2)
	assert.Equal(t, 0.0, report.FailureRate)
	assert.True(t, report.GatePassed)
}

func TestRunner_Run_FailingItemLowersAccuracy(t *testing.T) {
	sys := &fakeSystem{name: "local", texts: map[string]string{"m1": "#### 4", "m2": "#### wrong"}}
	runner := &Runner{System: sys, Scorer: NewScorer(nil)}

	report, err := runner.Run(context.Background(), RunConfig{Suite: testSuite(), RunsPerCase: 1, Seed: 1, FailureRateMax: 0.1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, report.FailureRate, 0.0001)
	assert.False(t, report.GatePassed)
}

func TestRunner_Run_CheckspointedItemsAreNotReQueried(t *testing.T) {
	store, err := OpenCheckpointStore(filepath.Join(t.TempDir(), "ckpt"))
	require.NoError(t, err)
	defer store.Close()

	sys := &fakeSystem{name: "local", texts: map[string]string{"m1": "#### 4", "m2": "#### 6"}}
	runner := &Runner{System: sys, Scorer: NewScorer(nil), Checkpoint: store}

	cfg := RunConfig{Suite: testSuite(), RunsPerCase: 1, Seed: 1}
	_, err = runner.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, sys.calls)

	_, err = runner.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, sys.calls, "resumed run should reuse checkpointed results instead of re-querying")
}

func TestRunner_Run_CancelledContextStopsEarly(t *testing.T) {
	sys := &fakeSystem{name: "local", texts: map[string]string{"m1": "#### 4", "m2": "#### 6"}}
	runner := &Runner{System: sys, Scorer: NewScorer(nil)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Run(ctx, RunConfig{Suite: testSuite(), RunsPerCase: 1, Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Items)
}
