package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"ucreport/internal/report"
)

// WriteMarkdown renders the human-readable report.md next to the CSVs.
func (w *Writer) WriteMarkdown(results []*report.Result, meta report.Metadata) (string, error) {
	path := filepath.Join(w.dir, ReportFile)
	if err := os.WriteFile(path, []byte(RenderMarkdown(results, meta)), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", ReportFile, err)
	}
	w.log.Info("wrote output file", zap.String("path", path))
	return path, nil
}

// RenderMarkdown builds the full markdown document.
func RenderMarkdown(results []*report.Result, meta report.Metadata) string {
	var sb strings.Builder

	sb.WriteString("# Universal Credit: published figures vs model estimates\n\n")
	fmt.Fprintf(&sb, "- Generated: %s\n", meta.Generated.Format(time.RFC3339))
	fmt.Fprintf(&sb, "- Model version: %s\n", meta.ModelVersion)
	fmt.Fprintf(&sb, "- Reference: %s\n", meta.ReferenceReport)
	fmt.Fprintf(&sb, "- Run: %s\n\n", meta.RunID)

	for _, res := range results {
		fmt.Fprintf(&sb, "## Tax year %d\n\n", res.Year)

		sb.WriteString("### Comparison\n\n")
		writeTable(&sb,
			[]string{"Metric", "Report", "Model", "Diff", "Status", "Note"},
			comparisonCells(res.Comparison))

		if len(res.Policy) > 0 {
			sb.WriteString("### Policy impacts\n\n")
			writeTable(&sb,
				[]string{"Category", "Metric", "Value"},
				policyCells(res.Policy))
		}

		if len(res.Elements) > 0 {
			sb.WriteString("### UC elements\n\n")
			writeTable(&sb,
				[]string{"Element", "Expenditure (£bn)", "% of gross maximum"},
				elementCells(res.Elements))
		}
	}

	return sb.String()
}

// RenderReformMarkdown builds the reform cost-delta document.
func RenderReformMarkdown(results []report.ReformResult) string {
	var sb strings.Builder
	if len(results) == 0 {
		return ""
	}
	fmt.Fprintf(&sb, "# Reform: %s × %s\n\n", results[0].Element, num(results[0].Factor))
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Year),
			fmt.Sprintf("£%sbn", num(r.BaselineBn)),
			fmt.Sprintf("£%sbn", num(r.ReformedBn)),
			fmt.Sprintf("£%sbn", num(r.DeltaBn)),
		})
	}
	writeTable(&sb, []string{"Year", "Baseline", "Reformed", "Delta"}, rows)
	return sb.String()
}

func comparisonCells(rows []report.ComparisonRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		ref := valueWithUnit(r.RefValue, r.RefUnit)
		if r.RefPct != nil {
			ref += fmt.Sprintf(" (%s%%)", num(*r.RefPct))
		}
		mod := valueWithUnit(r.ModelValue, r.ModelUnit)
		if r.ModelPct != nil {
			mod += fmt.Sprintf(" (%s%%)", num(*r.ModelPct))
		}
		out = append(out, []string{r.Metric, ref, mod, num(r.DiffValue), string(r.Status), r.Note})
	}
	return out
}

func policyCells(rows []report.PolicyRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Category, r.Metric, valueWithUnit(r.Value, r.Unit)})
	}
	return out
}

func elementCells(rows []report.ElementRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Element, num(r.ExpenditureBn), num(r.PctGross)})
	}
	return out
}

// valueWithUnit renders "£1030", "£183m", "8.5m", "26%", "86bn".
func valueWithUnit(v float64, unit string) string {
	switch unit {
	case "£":
		return "£" + num(v)
	case "£m":
		return "£" + num(v) + "m"
	case "£bn":
		return "£" + num(v) + "bn"
	case "":
		return num(v)
	default:
		return num(v) + unit
	}
}

// writeTable emits a GitHub-style markdown table with padded columns.
func writeTable(sb *strings.Builder, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(sb, " %-*s |", widths[i], cell)
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sb.WriteString("|")
	for _, w := range widths {
		sb.WriteString(" " + strings.Repeat("-", w) + " |")
	}
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	sb.WriteString("\n")
}
