// Package reference embeds the published Universal Credit figures the model
// estimates are compared against.
package reference

import "fmt"

// ReportCitation identifies the source publication for the default figures.
const ReportCitation = "Resolution Foundation, Listen and Learn (January 2026)"

// Figures holds the headline UC statistics from the Resolution Foundation's
// "Listen and Learn" report (January 2026). Monetary figures are GBP.
// Collected from the published report; the expenditure projection is for
// the 2029-30 fiscal year while the counts project April 2026.
type Figures struct {
	WorkingAgeInUCMillions        float64 // working-age adults receiving UC
	WorkingAgeInUCPct             float64 // share of all working-age adults
	ChildrenInUCMillions          float64 // children in UC households
	ChildrenInUCPct               float64 // share of all children
	UCExpenditureBillions         float64 // annual UC expenditure
	UCExpenditureYear             string  // fiscal year of the expenditure figure
	AvgMonthlyUCAward             float64 // mean monthly award per recipient family
	PctUCFamiliesWithChildren     float64 // share of UC families with children
	UCChildcareRecipientsThousand float64 // families receiving the childcare element
	AvgMonthlyChildcareElement    float64 // mean monthly childcare element
	METRAbove70Pct                float64 // workers with marginal tax rate > 70%
	PTRAbove70Pct                 float64 // workers with participation tax rate > 70%
}

// Default returns the figures as published.
func Default() Figures {
	return Figures{
		WorkingAgeInUCMillions:        8.5,
		WorkingAgeInUCPct:             26.0,
		ChildrenInUCMillions:          6.5,
		ChildrenInUCPct:               54.0,
		UCExpenditureBillions:         86.0,
		UCExpenditureYear:             "2029-30",
		AvgMonthlyUCAward:             1030,
		PctUCFamiliesWithChildren:     46.0,
		UCChildcareRecipientsThousand: 190,
		AvgMonthlyChildcareElement:    420,
		METRAbove70Pct:                3.0,
		PTRAbove70Pct:                 9.0,
	}
}

// Apply overrides figures by key, for what-if comparisons from config.
// Unknown keys are rejected so typos don't silently compare against the
// published value.
func (f *Figures) Apply(overrides map[string]float64) error {
	for key, v := range overrides {
		switch key {
		case "working_age_in_uc_millions":
			f.WorkingAgeInUCMillions = v
		case "working_age_in_uc_pct":
			f.WorkingAgeInUCPct = v
		case "children_in_uc_millions":
			f.ChildrenInUCMillions = v
		case "children_in_uc_pct":
			f.ChildrenInUCPct = v
		case "uc_expenditure_billions":
			f.UCExpenditureBillions = v
		case "avg_monthly_uc_award":
			f.AvgMonthlyUCAward = v
		case "pct_uc_families_with_children":
			f.PctUCFamiliesWithChildren = v
		case "uc_childcare_recipients_thousands":
			f.UCChildcareRecipientsThousand = v
		case "avg_monthly_childcare_element":
			f.AvgMonthlyChildcareElement = v
		case "metr_above_70_pct":
			f.METRAbove70Pct = v
		case "ptr_above_70_pct":
			f.PTRAbove70Pct = v
		default:
			return fmt.Errorf("unknown reference figure %q", key)
		}
	}
	return nil
}
