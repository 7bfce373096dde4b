package report

import "math"

// Status labels how closely a model estimate tracks the published figure.
type Status string

const (
	StatusClose    Status = "close_match"
	StatusModerate Status = "moderate_diff"
	StatusLarge    Status = "large_diff"
)

// classify buckets the relative difference between a published figure and a
// model estimate. Thresholds are percentages of the published value.
func classify(ref, estimate, closePct, moderatePct float64) Status {
	if ref == 0 {
		if estimate == 0 {
			return StatusClose
		}
		return StatusLarge
	}
	rel := 100 * math.Abs(estimate-ref) / math.Abs(ref)
	switch {
	case rel < closePct:
		return StatusClose
	case rel < moderatePct:
		return StatusModerate
	default:
		return StatusLarge
	}
}
