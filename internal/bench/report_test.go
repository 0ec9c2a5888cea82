package bench

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() RunReport {
	return RunReport{
		RunID:        "run-1",
		SuiteName:    "smoke",
		SuiteVersion: "1.0.0",
		Seed:         42,
		StartedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC),
		Items: []ItemResult{
			{ItemID: "m1", RunIndex: 0, Category: "math", Passed: true, Score: 1},
		},
		Categories:     []CategoryAggregate{{Category: "math", ItemCount: 1, PassCount: 1, Accuracy: 1}},
		MeanConfidence: 0.9,
		MeanLatency:    200 * time.Millisecond,
		TotalCostUSD:   0.05,
		FailureRate:    0,
		GatePassed:     true,
	}
}

func TestWriteReport_WritesJSONMarkdownAndCases(t *testing.T) {
	outdir := t.TempDir()
	report := sampleReport()

	require.NoError(t, WriteReport(outdir, "local", report))

	assert.FileExists(t, filepath.Join(outdir, "report.json"))
	assert.FileExists(t, filepath.Join(outdir, "report.md"))
	assert.FileExists(t, filepath.Join(outdir, "cases", "m1_local_0.json"))
}

func TestLoadPreviousReport_MissingFileIsNotAnError(t *testing.T) {
	report, err := LoadPreviousReport(filepath.Join(t.TempDir(), "report.json"))
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestLoadPreviousReport_RoundTripsAWrittenReport(t *testing.T) {
	outdir := t.TempDir()
	report := sampleReport()
	require.NoError(t, WriteReport(outdir, "local", report))

	loaded, err := LoadPreviousReport(filepath.Join(outdir, "report.json"))
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, report.RunID, loaded.RunID)
	assert.Equal(t, report.SuiteVersion, loaded.SuiteVersion)
}

func TestLoadPreviousReport_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err := LoadPreviousReport(path)
	assert.Error(t, err)
}

func TestRenderMarkdown_IncludesGateAndCategoryTable(t *testing.T) {
	report := sampleReport()
	md := RenderMarkdown(report)
	assert.Contains(t, md, "# Benchmark Report: smoke")
	assert.Contains(t, md, "| math |")
	assert.Contains(t, md, "**PASSED**")
}

func TestRenderMarkdown_FailedGateShowsReason(t *testing.T) {
	report := sampleReport()
	report.GatePassed = false
	report.GateReason = "overall failure rate exceeded threshold"
	md := RenderMarkdown(report)
	assert.Contains(t, md, "**FAILED**: overall failure rate exceeded threshold")
}

func TestRenderMarkdown_IncludesRegressionSection(t *testing.T) {
	report := sampleReport()
	report.Regression = &RegressionReport{
		PreviousRunID:    "run-0",
		AccuracyDelta:    0.1,
		NewCriticalFails: []string{"m2"},
	}
	md := RenderMarkdown(report)
	assert.Contains(t, md, "## Regression vs previous run")
	assert.Contains(t, md, "run-0")
	assert.Contains(t, md, "m2")
}

func TestRenderTerminalSummary_ShowsCriticalFailures(t *testing.T) {
	report := sampleReport()
	report.GatePassed = false
	report.GateReason = "critical item(s) failed: m1"
	report.CriticalFailures = []string{"m1"}
	summary := RenderTerminalSummary(report)
	assert.Contains(t, summary, "FAILED")
	assert.Contains(t, summary, "m1")
}
