package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	reportPassStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7"))
	reportFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	reportMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
	reportBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// LoadPreviousReport reads a prior run's report.json for regression
// comparison. A missing file is not an error: the caller treats it as
// "no previous run to compare against".
func LoadPreviousReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("bench: read previous report %s: %w", path, err)
	}
	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("bench: parse previous report %s: %w", path, err)
	}
	return &report, nil
}

// WriteReport writes report.json, report.md, and one cases/<id>_<system>_<run>.json
// file per item into outdir (spec.md §6: "Output: report.json ... report.md
// ... cases/<id>_<system>_<run>.json per case").
func WriteReport(outdir, systemName string, report RunReport) error {
	if err := os.MkdirAll(filepath.Join(outdir, "cases"), 0o755); err != nil {
		return fmt.Errorf("bench: create outdir %s: %w", outdir, err)
	}

	jsonPath := filepath.Join(outdir, "report.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("bench: marshal report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("bench: write %s: %w", jsonPath, err)
	}

	mdPath := filepath.Join(outdir, "report.md")
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(report)), 0o644); err != nil {
		return fmt.Errorf("bench: write %s: %w", mdPath, err)
	}

	for _, item := range report.Items {
		caseData, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return fmt.Errorf("bench: marshal case %s: %w", item.ItemID, err)
		}
		casePath := filepath.Join(outdir, "cases", fmt.Sprintf("%s_%s_%d.json", item.ItemID, systemName, item.RunIndex))
		if err := os.WriteFile(casePath, caseData, 0o644); err != nil {
			return fmt.Errorf("bench: write %s: %w", casePath, err)
		}
	}
	return nil
}

// RenderMarkdown renders the human-readable report.md body.
func RenderMarkdown(report RunReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Benchmark Report: %s\n\n", report.SuiteName))
	sb.WriteString(fmt.Sprintf("- Run ID: `%s`\n", report.RunID))
	sb.WriteString(fmt.Sprintf("- Suite version: `%s`\n", report.SuiteVersion))
	sb.WriteString(fmt.Sprintf("- Seed: `%d`\n", report.Seed))
	sb.WriteString(fmt.Sprintf("- Duration: %s\n", report.FinishedAt.Sub(report.StartedAt)))
	sb.WriteString(fmt.Sprintf("- Mean confidence: %.3f\n", report.MeanConfidence))
	sb.WriteString(fmt.Sprintf("- Mean latency: %s\n", report.MeanLatency))
	sb.WriteString(fmt.Sprintf("- Total cost: $%.4f\n", report.TotalCostUSD))
	sb.WriteString(fmt.Sprintf("- Failure rate: %.1f%%\n\n", report.FailureRate*100))

	sb.WriteString("## Per-category accuracy\n\n")
	sb.WriteString("| Category | Items | Passed | Accuracy | Mean Score | Mean Latency |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	categories := append([]CategoryAggregate(nil), report.Categories...)
	sort.Slice(categories, func(i, j int) bool { return categories[i].Category < categories[j].Category })
	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.1f%% | %.3f | %s |\n",
			c.Category, c.ItemCount, c.PassCount, c.Accuracy*100, c.MeanScore, c.MeanLatency))
	}

	if len(report.CriticalFailures) > 0 {
		sb.WriteString("\n## Critical failures\n\n")
		for _, id := range report.CriticalFailures {
			sb.WriteString(fmt.Sprintf("- %s\n", id))
		}
	}

	if report.Regression != nil {
		sb.WriteString("\n## Regression vs previous run\n\n")
		sb.WriteString(fmt.Sprintf("- Previous run: `%s`\n", report.Regression.PreviousRunID))
		sb.WriteString(fmt.Sprintf("- Accuracy delta: %+.3f\n", report.Regression.AccuracyDelta))
		sb.WriteString(fmt.Sprintf("- Mean latency delta: %s\n", report.Regression.MeanLatencyDelta))
		sb.WriteString(fmt.Sprintf("- Total cost delta: $%+.4f\n", report.Regression.MeanCostDelta))
		if len(report.Regression.NewCriticalFails) > 0 {
			sb.WriteString(fmt.Sprintf("- New critical failures: %s\n", strings.Join(report.Regression.NewCriticalFails, ", ")))
		}
	}

	sb.WriteString("\n## Gate\n\n")
	if report.GatePassed {
		sb.WriteString("**PASSED**\n")
	} else {
		sb.WriteString(fmt.Sprintf("**FAILED**: %s\n", report.GateReason))
	}
	return sb.String()
}

// RenderTerminalSummary renders a compact, styled summary for
// printing to stdout at the end of a `bench run` invocation.
func RenderTerminalSummary(report RunReport) string {
	title := reportTitleStyle.Render(fmt.Sprintf("Benchmark: %s", report.SuiteName))
	status := reportPassStyle.Render("PASSED")
	if !report.GatePassed {
		status = reportFailStyle.Render("FAILED: " + report.GateReason)
	}
	body := fmt.Sprintf(
		"%s\n\nitems: %d   mean confidence: %.3f   mean latency: %s   cost: $%.4f   failure rate: %.1f%%\n\n%s",
		title, len(report.Items), report.MeanConfidence, report.MeanLatency, report.TotalCostUSD, report.FailureRate*100, status,
	)
	if len(report.CriticalFailures) > 0 {
		body += "\n" + reportMutedStyle.Render(fmt.Sprintf("critical failures: %s", strings.Join(report.CriticalFailures, ", ")))
	}
	return reportBoxStyle.Render(body)
}
