// Package report turns microsimulation queries into the comparison,
// policy-impact and element-breakdown tables the dashboard consumes.
package report

import (
	"time"

	"ucreport/internal/model"
)

// Calculator is the query surface the builders need from the model. The
// production implementation is *model.Model; tests use stubs.
type Calculator interface {
	Calculate(variable string, year int, mapTo model.Entity) (*model.Series, error)
}

// Row categories.
const (
	CategoryCore       = "core"
	CategoryAdditional = "additional"
	CategoryBenefitCap = "benefit_cap"
	CategorySelfEmp    = "self_employment"
	CategoryCarers     = "carers"
	CategoryTFC        = "tax_free_childcare"
)

// ComparisonRow is one metric compared between the published report and the
// model estimate. Pct fields are nil when the metric has no share form.
type ComparisonRow struct {
	Year       int
	Category   string
	Metric     string
	RefValue   float64
	RefUnit    string
	RefPct     *float64
	ModelValue float64
	ModelUnit  string
	ModelPct   *float64
	DiffValue  float64
	DiffPct    *float64
	Status     Status
	Note       string
}

// PolicyRow is one model-only policy impact figure (no published
// counterpart to compare against).
type PolicyRow struct {
	Year     int
	Category string
	Metric   string
	Value    float64
	Unit     string
}

// ElementRow is one UC element's share of gross maximum entitlement.
type ElementRow struct {
	Year          int
	Element       string
	ExpenditureBn float64
	PctGross      float64
}

// Result bundles everything computed for one tax year.
type Result struct {
	Year       int
	Comparison []ComparisonRow
	Policy     []PolicyRow
	Elements   []ElementRow
}

// ReformResult is the cost delta of scaling one UC element by a factor.
// Entitlements are clamped at zero, so the delta of a cut is smaller in
// magnitude than the naive element total times the factor change.
type ReformResult struct {
	Year       int
	Element    string
	Factor     float64
	BaselineBn float64
	ReformedBn float64
	DeltaBn    float64
}

// Metadata describes one run, written alongside the data files.
type Metadata struct {
	Generated       time.Time
	RunID           string
	ModelVersion    string
	Years           []int
	ReferenceReport string
}

func pct(v float64) *float64 { return &v }
