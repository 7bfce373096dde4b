package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"ucreport/internal/report"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	closeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	driftStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	farStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
)

// Summary renders a terminal table of the comparison rows, one block per
// year, with a match marker per row.
func Summary(results []*report.Result) string {
	var sb strings.Builder
	for _, res := range results {
		sb.WriteString(titleStyle.Render(fmt.Sprintf("Tax year %d", res.Year)))
		sb.WriteString("\n")
		sb.WriteString(summaryTable(res.Comparison))
		sb.WriteString("\n")
	}
	return sb.String()
}

func summaryTable(rows []report.ComparisonRow) string {
	headers := []string{"", "Metric", "Report", "Model", "Diff"}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			statusMarker(r.Status),
			r.Metric,
			valueWithUnit(r.RefValue, r.RefUnit),
			valueWithUnit(r.ModelValue, r.ModelUnit),
			num(r.DiffValue),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(headerStyle.Width(widths[i] + 2).Render(h))
	}
	sb.WriteString("\n")
	for _, row := range cells {
		for i, c := range row {
			sb.WriteString(cellStyle.Width(widths[i] + 2).Render(c))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func statusMarker(s report.Status) string {
	switch s {
	case report.StatusClose:
		return closeStyle.Render("✓")
	case report.StatusModerate:
		return driftStyle.Render("~")
	default:
		return farStyle.Render("!")
	}
}

// RenderTerminal runs markdown through glamour for --render previews.
// Falls back to the raw markdown if the renderer cannot be built.
func RenderTerminal(markdown string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
