package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucreport/internal/report"
)

func sampleResults() []*report.Result {
	p := func(v float64) *float64 { return &v }
	return []*report.Result{{
		Year: 2025,
		Comparison: []report.ComparisonRow{{
			Year: 2025, Category: report.CategoryCore, Metric: "Working-age adults in UC",
			RefValue: 8.5, RefUnit: "m", RefPct: p(26),
			ModelValue: 7.9, ModelUnit: "m", ModelPct: p(24.2),
			DiffValue: -0.6, DiffPct: p(-1.8),
			Status:    report.StatusClose, Note: "report projects April 2026",
		}, {
			Year: 2025, Category: report.CategoryCore, Metric: "Annual UC expenditure",
			RefValue: 86, RefUnit: "bn",
			ModelValue: 79.3, ModelUnit: "bn",
			DiffValue: -6.7,
			Status:    report.StatusClose,
		}},
		Policy: []report.PolicyRow{
			{Year: 2025, Category: report.CategoryBenefitCap, Metric: "Households affected", Value: 84, Unit: "k"},
		},
		Elements: []report.ElementRow{
			{Year: 2025, Element: "Standard Allowance", ExpenditureBn: 31.2, PctGross: 38.4},
		},
	}}
}

func sampleMetadata() report.Metadata {
	return report.Metadata{
		Generated:       time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC),
		RunID:           "run-1",
		ModelVersion:    "frs-2022.4",
		Years:           []int{2025},
		ReferenceReport: "Resolution Foundation, Listen and Learn (January 2026)",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)

	paths, err := w.WriteAll(sampleResults(), sampleMetadata())
	require.NoError(t, err)
	require.Len(t, paths, 5)

	for _, name := range []string{ComparisonFile, PolicyFile, ElementsFile, MetadataFile, ReportFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestComparisonCSVShape(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)

	path, err := w.WriteComparison(sampleResults(), sampleMetadata())
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)

	wantHeader := []string{
		"year", "category", "metric",
		"ref_value", "ref_unit", "ref_pct",
		"model_value", "model_unit", "model_pct",
		"diff_value", "diff_pct", "status", "note",
	}
	if diff := cmp.Diff(wantHeader, rows[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	first := rows[1]
	assert.Equal(t, "2025", first[0])
	assert.Equal(t, "7.9", first[6])
	assert.Equal(t, "24.2", first[8])
	assert.Equal(t, "close_match", first[11])

	// Rows without percentage forms leave those cells empty.
	second := rows[2]
	assert.Equal(t, "", second[5])
	assert.Equal(t, "", second[8])
	assert.Equal(t, "", second[10])
}

func TestMetadataCSV(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)

	path, err := w.WriteMetadata(nil, sampleMetadata())
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-02-03T12:00:00Z", rows[1][0])
	assert.Equal(t, "run-1", rows[1][1])
	assert.Equal(t, "frs-2022.4", rows[1][2])
	assert.Equal(t, "2025", rows[1][3])
}

func TestWriteReform(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)

	path, err := w.WriteReform([]report.ReformResult{
		{Year: 2025, Element: "uc_child_element", Factor: 1.1, BaselineBn: 79.3, ReformedBn: 81.1, DeltaBn: 1.8},
	})
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2025", "uc_child_element", "1.1", "79.3", "81.1", "1.8"}, rows[1])
}

func TestNumTrimsTrailingZeros(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{86, "86"},
		{-0.6, "-0.6"},
		{24.2, "24.2"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
