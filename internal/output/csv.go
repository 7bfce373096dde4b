// Package output serializes run results: CSV files for the dashboard, a
// markdown report, and styled console summaries.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ucreport/internal/report"
)

// Dashboard file names. The dashboard reads these by name, so they are
// fixed.
const (
	ComparisonFile = "comparison.csv"
	PolicyFile     = "policy_impacts.csv"
	ElementsFile   = "uc_elements.csv"
	MetadataFile   = "metadata.csv"
	ReformFile     = "reform.csv"
	ReportFile     = "report.md"
)

// Writer emits result files into one output directory.
type Writer struct {
	dir string
	log *zap.Logger
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{dir: dir, log: logger}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteAll writes the four dashboard CSVs plus the markdown report and
// returns the paths written.
func (w *Writer) WriteAll(results []*report.Result, meta report.Metadata) ([]string, error) {
	var paths []string
	for _, step := range []func([]*report.Result, report.Metadata) (string, error){
		w.WriteComparison, w.WritePolicy, w.WriteElements, w.WriteMetadata, w.WriteMarkdown,
	} {
		p, err := step(results, meta)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// WriteComparison writes comparison.csv.
func (w *Writer) WriteComparison(results []*report.Result, _ report.Metadata) (string, error) {
	header := []string{
		"year", "category", "metric",
		"ref_value", "ref_unit", "ref_pct",
		"model_value", "model_unit", "model_pct",
		"diff_value", "diff_pct", "status", "note",
	}
	var rows [][]string
	for _, res := range results {
		for _, r := range res.Comparison {
			rows = append(rows, []string{
				strconv.Itoa(r.Year), r.Category, r.Metric,
				num(r.RefValue), r.RefUnit, optNum(r.RefPct),
				num(r.ModelValue), r.ModelUnit, optNum(r.ModelPct),
				num(r.DiffValue), optNum(r.DiffPct), string(r.Status), r.Note,
			})
		}
	}
	return w.writeCSV(ComparisonFile, header, rows)
}

// WritePolicy writes policy_impacts.csv.
func (w *Writer) WritePolicy(results []*report.Result, _ report.Metadata) (string, error) {
	header := []string{"year", "category", "metric", "value", "unit"}
	var rows [][]string
	for _, res := range results {
		for _, r := range res.Policy {
			rows = append(rows, []string{
				strconv.Itoa(r.Year), r.Category, r.Metric, num(r.Value), r.Unit,
			})
		}
	}
	return w.writeCSV(PolicyFile, header, rows)
}

// WriteElements writes uc_elements.csv.
func (w *Writer) WriteElements(results []*report.Result, _ report.Metadata) (string, error) {
	header := []string{"year", "element", "expenditure_bn", "pct_gross"}
	var rows [][]string
	for _, res := range results {
		for _, r := range res.Elements {
			rows = append(rows, []string{
				strconv.Itoa(r.Year), r.Element, num(r.ExpenditureBn), num(r.PctGross),
			})
		}
	}
	return w.writeCSV(ElementsFile, header, rows)
}

// WriteMetadata writes metadata.csv (a single data row).
func (w *Writer) WriteMetadata(_ []*report.Result, meta report.Metadata) (string, error) {
	header := []string{"generated", "run_id", "model_version", "years", "reference_report"}
	years := make([]string, len(meta.Years))
	for i, y := range meta.Years {
		years[i] = strconv.Itoa(y)
	}
	rows := [][]string{{
		meta.Generated.Format(time.RFC3339),
		meta.RunID,
		meta.ModelVersion,
		strings.Join(years, " "),
		meta.ReferenceReport,
	}}
	return w.writeCSV(MetadataFile, header, rows)
}

// WriteReform writes reform.csv.
func (w *Writer) WriteReform(results []report.ReformResult) (string, error) {
	header := []string{"year", "element", "factor", "baseline_bn", "reformed_bn", "delta_bn"}
	var rows [][]string
	for _, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(r.Year), r.Element, num(r.Factor),
			num(r.BaselineBn), num(r.ReformedBn), num(r.DeltaBn),
		})
	}
	return w.writeCSV(ReformFile, header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) (string, error) {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("failed to write %s header: %w", name, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", name, err)
	}
	w.log.Info("wrote output file", zap.String("path", path), zap.Int("rows", len(rows)))
	return path, nil
}

// num renders a float with no trailing zeros, matching the dashboard's
// existing parsers.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optNum(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}
