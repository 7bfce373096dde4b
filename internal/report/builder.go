package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ucreport/internal/model"
	"ucreport/internal/reference"
)

// Options control the aggregation thresholds. Defaults follow the published
// report's methodology notes.
type Options struct {
	// WorkingAgeMin/Max bound working age, inclusive.
	WorkingAgeMin int
	WorkingAgeMax int
	// ChildAgeLimit: a child is strictly younger than this.
	ChildAgeLimit int
	// SubstantialChildcareMonthly filters childcare claims to match the
	// report's counting methodology (GBP per month).
	SubstantialChildcareMonthly float64
	// ClosePct / ModeratePct are status classification thresholds, as a
	// percentage of the published value.
	ClosePct    float64
	ModeratePct float64
}

// DefaultOptions returns the thresholds used by the published comparison.
func DefaultOptions() Options {
	return Options{
		WorkingAgeMin:               16,
		WorkingAgeMax:               64,
		ChildAgeLimit:               16,
		SubstantialChildcareMonthly: 190,
		ClosePct:                    10,
		ModeratePct:                 50,
	}
}

// ucElements maps UC element variables to their display labels, in output
// order.
var ucElements = []struct {
	Variable string
	Label    string
}{
	{"uc_standard_allowance", "Standard Allowance"},
	{"uc_child_element", "Child Element"},
	{"uc_housing_costs_element", "Housing Costs"},
	{"uc_childcare_element", "Childcare Element"},
	{"uc_disability_elements", "Disability Elements"},
	{"uc_carer_element", "Carer Element"},
}

// Builder computes per-year results against one reference figure set.
type Builder struct {
	calc Calculator
	ref  reference.Figures
	opts Options
	log  *zap.Logger
}

// NewBuilder wires a builder. A nil logger is replaced with a no-op.
func NewBuilder(calc Calculator, ref reference.Figures, opts Options, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{calc: calc, ref: ref, opts: opts, log: logger}
}

// Years computes results for each year concurrently and returns them in
// ascending year order.
func (b *Builder) Years(ctx context.Context, years []int) ([]*Result, error) {
	results := make([]*Result, len(years))
	g, ctx := errgroup.WithContext(ctx)
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := b.Year(year)
			if err != nil {
				return fmt.Errorf("year %d: %w", year, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Year < results[j].Year })
	return results, nil
}

// Metadata stamps one run.
func (b *Builder) Metadata(years []int, modelVersion string) Metadata {
	return Metadata{
		Generated:       time.Now(),
		RunID:           uuid.NewString(),
		ModelVersion:    modelVersion,
		Years:           years,
		ReferenceReport: reference.ReportCitation,
	}
}

// Year computes the full statistic set for one tax year.
func (b *Builder) Year(year int) (*Result, error) {
	start := time.Now()

	benunitUC, err := b.calc.Calculate("universal_credit", year, model.EntityBenUnit)
	if err != nil {
		return nil, err
	}
	personUC, err := b.calc.Calculate("universal_credit", year, model.EntityPerson)
	if err != nil {
		return nil, err
	}
	age, err := b.calc.Calculate("age", year, model.EntityPerson)
	if err != nil {
		return nil, err
	}

	personInUC := personUC.Gt(0)
	workingAge := age.Ge(float64(b.opts.WorkingAgeMin)).And(age.Le(float64(b.opts.WorkingAgeMax)))
	isChild := age.Lt(float64(b.opts.ChildAgeLimit))
	onUC := benunitUC.Gt(0)

	totalWorkingAge := workingAge.Count()
	workingAgeInUC := workingAge.And(personInUC).Count()
	pctWorkingAgeInUC := share(workingAgeInUC, totalWorkingAge)

	totalChildren := isChild.Count()
	childrenInUC := isChild.And(personInUC).Count()
	pctChildrenInUC := share(childrenInUC, totalChildren)

	totalUCExpenditure := benunitUC.Sum()
	recipientBenUnits := onUC.Count()
	avgMonthlyUC := ratio(totalUCExpenditure, recipientBenUnits) / 12

	// Families with children.
	countChildren, err := b.calc.Calculate("benunit_count_children", year, model.EntityBenUnit)
	if err != nil {
		return nil, err
	}
	ucFamiliesWithChildren := onUC.And(countChildren.Gt(0)).Count()
	pctUCWithChildren := share(ucFamiliesWithChildren, recipientBenUnits)

	// Childcare element: count all claimants, then the substantial subset
	// matching the report's methodology.
	ucChildcare, err := b.calc.Calculate("uc_childcare_element", year, model.EntityBenUnit)
	if err != nil {
		return nil, err
	}
	substantialAnnual := b.opts.SubstantialChildcareMonthly * 12
	childcareAll := onUC.And(ucChildcare.Gt(0)).Count()
	substantial := onUC.And(ucChildcare.Gt(substantialAnnual))
	childcareSubstantial := substantial.Count()
	avgChildcareMonthly := ratio(ucChildcare.SumWhere(substantial), childcareSubstantial) / 12

	// METRs among working-age earners.
	pctMETRAbove70 := 0.0
	metrNote := ""
	if metr, ok, err := b.optional("marginal_tax_rate", year, model.EntityPerson); err != nil {
		return nil, err
	} else if ok {
		earnings, err := b.calc.Calculate("employment_income", year, model.EntityPerson)
		if err != nil {
			return nil, err
		}
		earners := workingAge.And(earnings.Gt(0))
		pctMETRAbove70 = share(metr.Gt(0.70).And(earners).Count(), earners.Count())
	} else {
		metrNote = "marginal_tax_rate not available in dataset"
	}

	res := &Result{Year: year}
	res.Comparison = b.comparisonRows(year, comparisonInputs{
		workingAgeInUC:       workingAgeInUC,
		pctWorkingAgeInUC:    pctWorkingAgeInUC,
		childrenInUC:         childrenInUC,
		pctChildrenInUC:      pctChildrenInUC,
		totalUCExpenditure:   totalUCExpenditure,
		avgMonthlyUC:         avgMonthlyUC,
		pctUCWithChildren:    pctUCWithChildren,
		childcareAll:         childcareAll,
		childcareSubstantial: childcareSubstantial,
		avgChildcareMonthly:  avgChildcareMonthly,
		pctMETRAbove70:       pctMETRAbove70,
		metrNote:             metrNote,
	})

	// Participation tax rates are only present in newer dataset builds;
	// emit the row only when the variable exists.
	if ptr, ok, err := b.optional("participation_tax_rate", year, model.EntityPerson); err != nil {
		return nil, err
	} else if ok {
		earnings, err := b.calc.Calculate("employment_income", year, model.EntityPerson)
		if err != nil {
			return nil, err
		}
		earners := workingAge.And(earnings.Gt(0))
		pctPTR := share(ptr.Gt(0.70).And(earners).Count(), earners.Count())
		res.Comparison = append(res.Comparison, ComparisonRow{
			Year: year, Category: CategoryAdditional, Metric: "Workers with PTR > 70%",
			RefValue: b.ref.PTRAbove70Pct, RefUnit: "%",
			ModelValue: round1(pctPTR), ModelUnit: "%",
			DiffValue: round1(pctPTR - b.ref.PTRAbove70Pct),
			Status:    classify(b.ref.PTRAbove70Pct, pctPTR, b.opts.ClosePct, b.opts.ModeratePct),
		})
	}

	policy, err := b.policyRows(year, personInUC, workingAge)
	if err != nil {
		return nil, err
	}
	res.Policy = policy

	elements, err := b.elementRows(year)
	if err != nil {
		return nil, err
	}
	res.Elements = elements

	b.log.Debug("year computed",
		zap.Int("year", year),
		zap.Float64("uc_expenditure", totalUCExpenditure),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

type comparisonInputs struct {
	workingAgeInUC       float64
	pctWorkingAgeInUC    float64
	childrenInUC         float64
	pctChildrenInUC      float64
	totalUCExpenditure   float64
	avgMonthlyUC         float64
	pctUCWithChildren    float64
	childcareAll         float64
	childcareSubstantial float64
	avgChildcareMonthly  float64
	pctMETRAbove70       float64
	metrNote             string
}

func (b *Builder) comparisonRows(year int, in comparisonInputs) []ComparisonRow {
	ref := b.ref
	status := func(refValue, estimate float64) Status {
		return classify(refValue, estimate, b.opts.ClosePct, b.opts.ModeratePct)
	}

	workingAgeM := in.workingAgeInUC / 1e6
	childrenM := in.childrenInUC / 1e6
	expenditureBn := in.totalUCExpenditure / 1e9
	childcareK := in.childcareSubstantial / 1e3

	return []ComparisonRow{
		{
			Year: year, Category: CategoryCore, Metric: "Working-age adults in UC",
			RefValue: ref.WorkingAgeInUCMillions, RefUnit: "m", RefPct: pct(ref.WorkingAgeInUCPct),
			ModelValue: round1(workingAgeM), ModelUnit: "m", ModelPct: pct(round1(in.pctWorkingAgeInUC)),
			DiffValue: round1(workingAgeM - ref.WorkingAgeInUCMillions),
			DiffPct:   pct(round1(in.pctWorkingAgeInUC - ref.WorkingAgeInUCPct)),
			Status:    status(ref.WorkingAgeInUCMillions, workingAgeM),
			Note:      fmt.Sprintf("report projects April 2026; model shows %d entitlement", year),
		},
		{
			Year: year, Category: CategoryCore, Metric: "Children in UC households",
			RefValue: ref.ChildrenInUCMillions, RefUnit: "m", RefPct: pct(ref.ChildrenInUCPct),
			ModelValue: round1(childrenM), ModelUnit: "m", ModelPct: pct(round1(in.pctChildrenInUC)),
			DiffValue: round1(childrenM - ref.ChildrenInUCMillions),
			DiffPct:   pct(round1(in.pctChildrenInUC - ref.ChildrenInUCPct)),
			Status:    status(ref.ChildrenInUCMillions, childrenM),
			Note:      fmt.Sprintf("model counts children under %d", b.opts.ChildAgeLimit),
		},
		{
			Year: year, Category: CategoryCore, Metric: "Annual UC expenditure",
			RefValue: ref.UCExpenditureBillions, RefUnit: "bn",
			ModelValue: round1(expenditureBn), ModelUnit: "bn",
			DiffValue: round1(expenditureBn - ref.UCExpenditureBillions),
			Status:    status(ref.UCExpenditureBillions, expenditureBn),
			Note:      fmt.Sprintf("report figure is %s; model is %d", ref.UCExpenditureYear, year),
		},
		{
			Year: year, Category: CategoryAdditional, Metric: "Average monthly UC award",
			RefValue: ref.AvgMonthlyUCAward, RefUnit: "£",
			ModelValue: math.Round(in.avgMonthlyUC), ModelUnit: "£",
			DiffValue: math.Round(in.avgMonthlyUC - ref.AvgMonthlyUCAward),
			DiffPct:   pct(round1(share(in.avgMonthlyUC-ref.AvgMonthlyUCAward, ref.AvgMonthlyUCAward))),
			Status:    status(ref.AvgMonthlyUCAward, in.avgMonthlyUC),
		},
		{
			Year: year, Category: CategoryAdditional, Metric: "UC families with children",
			RefValue: ref.PctUCFamiliesWithChildren, RefUnit: "%",
			ModelValue: round1(in.pctUCWithChildren), ModelUnit: "%",
			DiffValue: round1(in.pctUCWithChildren - ref.PctUCFamiliesWithChildren),
			Status:    status(ref.PctUCFamiliesWithChildren, in.pctUCWithChildren),
		},
		{
			Year: year, Category: CategoryAdditional, Metric: "UC childcare recipients",
			RefValue: ref.UCChildcareRecipientsThousand, RefUnit: "k",
			ModelValue: math.Round(childcareK), ModelUnit: "k",
			DiffValue: math.Round(childcareK - ref.UCChildcareRecipientsThousand),
			Status:    status(ref.UCChildcareRecipientsThousand, childcareK),
			Note: fmt.Sprintf("filtered to >£%.0f/mo to match report methodology; any-amount total = %.0fk",
				b.opts.SubstantialChildcareMonthly, in.childcareAll/1e3),
		},
		{
			Year: year, Category: CategoryAdditional, Metric: "Avg monthly childcare element",
			RefValue: ref.AvgMonthlyChildcareElement, RefUnit: "£",
			ModelValue: math.Round(in.avgChildcareMonthly), ModelUnit: "£",
			DiffValue: math.Round(in.avgChildcareMonthly - ref.AvgMonthlyChildcareElement),
			Status:    status(ref.AvgMonthlyChildcareElement, in.avgChildcareMonthly),
			Note:      fmt.Sprintf("model average over substantial claimants (>£%.0f/mo)", b.opts.SubstantialChildcareMonthly),
		},
		{
			Year: year, Category: CategoryAdditional, Metric: "Workers with METR > 70%",
			RefValue: ref.METRAbove70Pct, RefUnit: "%",
			ModelValue: round1(in.pctMETRAbove70), ModelUnit: "%",
			DiffValue: round1(in.pctMETRAbove70 - ref.METRAbove70Pct),
			Status:    status(ref.METRAbove70Pct, in.pctMETRAbove70),
			Note:      in.metrNote,
		},
	}
}

// policyRows computes the model-only policy impact block: benefit cap,
// self-employment, carers and tax-free childcare. Every block degrades to
// zero rows when its variable is missing from the dataset.
func (b *Builder) policyRows(year int, personInUC, workingAge *model.Mask) ([]PolicyRow, error) {
	var rows []PolicyRow

	var cappedBenUnits, totalCapReduction, avgCapLossMonthly float64
	if capReduction, ok, err := b.optional("benefit_cap_reduction", year, model.EntityBenUnit); err != nil {
		return nil, err
	} else if ok {
		capped := capReduction.Gt(0)
		cappedBenUnits = capped.Count()
		totalCapReduction = capReduction.Sum()
		avgCapLossMonthly = ratio(totalCapReduction, cappedBenUnits) / 12
	}
	rows = append(rows,
		PolicyRow{Year: year, Category: CategoryBenefitCap, Metric: "Households affected", Value: math.Round(cappedBenUnits / 1e3), Unit: "k"},
		PolicyRow{Year: year, Category: CategoryBenefitCap, Metric: "Total annual reduction", Value: math.Round(totalCapReduction / 1e6), Unit: "£m"},
		PolicyRow{Year: year, Category: CategoryBenefitCap, Metric: "Average monthly loss", Value: math.Round(avgCapLossMonthly), Unit: "£"},
	)

	selfEmpIncome, err := b.calc.Calculate("self_employment_income", year, model.EntityPerson)
	if err != nil {
		return nil, err
	}
	selfEmpOnUC := selfEmpIncome.Gt(0).And(personInUC).And(workingAge).Count()
	rows = append(rows, PolicyRow{
		Year: year, Category: CategorySelfEmp, Metric: "Self-employed on UC",
		Value: round2(selfEmpOnUC / 1e6), Unit: "m",
	})

	carersOnUC, err := b.carersOnUC(year, personInUC)
	if err != nil {
		return nil, err
	}
	rows = append(rows, PolicyRow{
		Year: year, Category: CategoryCarers, Metric: "Carers on UC",
		Value: round2(carersOnUC / 1e6), Unit: "m",
	})

	if tfc, ok, err := b.optional("tax_free_childcare", year, model.EntityHousehold); err != nil {
		return nil, err
	} else if ok {
		recipients := tfc.Gt(0)
		rows = append(rows,
			PolicyRow{Year: year, Category: CategoryTFC, Metric: "Households receiving TFC", Value: math.Round(recipients.Count() / 1e3), Unit: "k"},
			PolicyRow{Year: year, Category: CategoryTFC, Metric: "Total annual TFC spend", Value: math.Round(tfc.Sum() / 1e6), Unit: "£m"},
		)
	}

	return rows, nil
}

// carersOnUC prefers the dedicated carer flag and falls back to a positive
// Carer's Allowance award; datasets carrying neither report zero.
func (b *Builder) carersOnUC(year int, personInUC *model.Mask) (float64, error) {
	if isCarer, ok, err := b.optional("is_carer_for_benefits", year, model.EntityPerson); err != nil {
		return 0, err
	} else if ok {
		return isCarer.Gt(0).And(personInUC).Count(), nil
	}
	if ca, ok, err := b.optional("carers_allowance", year, model.EntityPerson); err != nil {
		return 0, err
	} else if ok {
		return ca.Gt(0).And(personInUC).Count(), nil
	}
	b.log.Warn("no carer variable in dataset, reporting zero carers", zap.Int("year", year))
	return 0, nil
}

// elementRows breaks the gross maximum entitlement down by element. Absent
// elements emit zero rows so the dashboard's table shape is stable.
func (b *Builder) elementRows(year int) ([]ElementRow, error) {
	ucMax, err := b.calc.Calculate("uc_maximum_amount", year, model.EntityBenUnit)
	if err != nil {
		return nil, err
	}
	totalMax := ucMax.Sum()

	rows := make([]ElementRow, 0, len(ucElements))
	for _, el := range ucElements {
		row := ElementRow{Year: year, Element: el.Label}
		if s, ok, err := b.optional(el.Variable, year, model.EntityBenUnit); err != nil {
			return nil, err
		} else if ok {
			total := s.Sum()
			row.ExpenditureBn = round1(total / 1e9)
			row.PctGross = round1(share(total, totalMax))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReformDelta scales one UC element by factor and reports the expenditure
// change per year. Per-family entitlements are clamped at zero before
// summation.
func (b *Builder) ReformDelta(ctx context.Context, element string, factor float64, years []int) ([]ReformResult, error) {
	results := make([]ReformResult, len(years))
	g, ctx := errgroup.WithContext(ctx)
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			uc, err := b.calc.Calculate("universal_credit", year, model.EntityBenUnit)
			if err != nil {
				return fmt.Errorf("year %d: %w", year, err)
			}
			elem, err := b.calc.Calculate(element, year, model.EntityBenUnit)
			if err != nil {
				return fmt.Errorf("year %d: %w", year, err)
			}
			baseline := uc.Sum()
			reformed := uc.AddScaled(elem, factor-1).ClampMin(0).Sum()
			results[i] = ReformResult{
				Year:       year,
				Element:    element,
				Factor:     factor,
				BaselineBn: round2(baseline / 1e9),
				ReformedBn: round2(reformed / 1e9),
				DeltaBn:    round2((reformed - baseline) / 1e9),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Year < results[j].Year })
	return results, nil
}

func (b *Builder) optional(variable string, year int, mapTo model.Entity) (*model.Series, bool, error) {
	s, err := b.calc.Calculate(variable, year, mapTo)
	if errors.Is(err, model.ErrUnknownVariable) {
		b.log.Debug("optional variable absent", zap.String("variable", variable), zap.Int("year", year))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// share returns 100*part/total, or zero when the denominator is zero.
func share(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * part / total
}

// ratio guards division by zero the same way.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
