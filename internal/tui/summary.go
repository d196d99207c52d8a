package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dunamismax/avatarforge/internal/batch"
)

type SummaryRow struct {
	Label string
	Value string
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		lines = append(lines, fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value)))
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// ReportRows summarizes a finished batch.
func ReportRows(report batch.Report) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Logos processed", Value: fmt.Sprintf("%d", report.Succeeded)},
		{Label: "Circular cutouts", Value: fmt.Sprintf("%d", report.Circular)},
		{Label: "Unchanged (skipped)", Value: fmt.Sprintf("%d", report.Skipped)},
		{Label: "Failed", Value: fmt.Sprintf("%d", report.Failed)},
		{Label: "Duration", Value: report.Duration.Round(time.Millisecond).String()},
	}
	if report.RunID != "" {
		rows = append([]SummaryRow{{Label: "Run", Value: report.RunID}}, rows...)
	}
	return rows
}

// RenderFailures lists every failed input with its error kind.
func RenderFailures(report batch.Report) string {
	var lines []string
	for _, out := range report.Outcomes {
		if !out.Failed() {
			continue
		}
		lines = append(lines, errorStyle.Render("✗ "+out.Task.Name)+" "+warnStyle.Render(string(out.Kind))+" "+dimStyle.Render(out.Message))
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
