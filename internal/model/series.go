// Package model exposes the microsimulation query surface used by the
// report builders. The tax-benefit rule evaluation itself happens upstream;
// this package answers Calculate(variable, year, entity) queries against a
// pre-computed variable store and does the weighted survey arithmetic.
package model

import (
	"errors"
	"fmt"
)

// ErrUnknownVariable is returned by Calculate when the backing dataset has
// no values for a (variable, year) pair. Optional statistics branch on it.
var ErrUnknownVariable = errors.New("unknown variable")

// Series is a weighted micro-array: one value per entity record, aligned
// with the survey weight of that record. All aggregates are weighted, so
// Sum() of a currency variable is a population total, not a sample total.
type Series struct {
	values  []float64
	weights []float64
}

// NewSeries builds a Series from aligned value and weight slices.
func NewSeries(values, weights []float64) (*Series, error) {
	if len(values) != len(weights) {
		return nil, fmt.Errorf("series length mismatch: %d values, %d weights", len(values), len(weights))
	}
	return &Series{values: values, weights: weights}, nil
}

// Len returns the number of records in the series.
func (s *Series) Len() int { return len(s.values) }

// Sum returns the weighted population total of the series.
func (s *Series) Sum() float64 {
	var total float64
	for i, v := range s.values {
		total += v * s.weights[i]
	}
	return total
}

// SumWhere returns the weighted total over records selected by the mask.
func (s *Series) SumWhere(m *Mask) float64 {
	s.check(len(m.bits))
	var total float64
	for i, v := range s.values {
		if m.bits[i] {
			total += v * s.weights[i]
		}
	}
	return total
}

// Scale returns a new series with every value multiplied by f. Weights are
// shared, not copied.
func (s *Series) Scale(f float64) *Series {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = v * f
	}
	return &Series{values: out, weights: s.weights}
}

// AddScaled returns a new series with o's values scaled by f added in.
// Both series must come from the same frame.
func (s *Series) AddScaled(o *Series, f float64) *Series {
	s.check(len(o.values))
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = v + o.values[i]*f
	}
	return &Series{values: out, weights: s.weights}
}

// ClampMin returns a new series with every value raised to at least x.
// Used for entitlements, which cannot go negative under a reform.
func (s *Series) ClampMin(x float64) *Series {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		if v < x {
			out[i] = x
		} else {
			out[i] = v
		}
	}
	return &Series{values: out, weights: s.weights}
}

// Gt returns the mask of records with value strictly greater than x.
func (s *Series) Gt(x float64) *Mask { return s.mask(func(v float64) bool { return v > x }) }

// Ge returns the mask of records with value greater than or equal to x.
func (s *Series) Ge(x float64) *Mask { return s.mask(func(v float64) bool { return v >= x }) }

// Lt returns the mask of records with value strictly less than x.
func (s *Series) Lt(x float64) *Mask { return s.mask(func(v float64) bool { return v < x }) }

// Le returns the mask of records with value less than or equal to x.
func (s *Series) Le(x float64) *Mask { return s.mask(func(v float64) bool { return v <= x }) }

func (s *Series) mask(pred func(float64) bool) *Mask {
	bits := make([]bool, len(s.values))
	for i, v := range s.values {
		bits[i] = pred(v)
	}
	return &Mask{bits: bits, weights: s.weights}
}

func (s *Series) check(n int) {
	if n != len(s.values) {
		panic(fmt.Sprintf("model: mask from a different frame (%d records vs %d)", n, len(s.values)))
	}
}

// Mask is a boolean selection over one entity frame, carrying the frame's
// weights so selections can be counted at population scale.
type Mask struct {
	bits    []bool
	weights []float64
}

// Count returns the weighted number of selected records.
func (m *Mask) Count() float64 {
	var total float64
	for i, b := range m.bits {
		if b {
			total += m.weights[i]
		}
	}
	return total
}

// And returns the intersection of two masks over the same frame.
func (m *Mask) And(o *Mask) *Mask {
	m.checkLen(o)
	bits := make([]bool, len(m.bits))
	for i := range m.bits {
		bits[i] = m.bits[i] && o.bits[i]
	}
	return &Mask{bits: bits, weights: m.weights}
}

// Or returns the union of two masks over the same frame.
func (m *Mask) Or(o *Mask) *Mask {
	m.checkLen(o)
	bits := make([]bool, len(m.bits))
	for i := range m.bits {
		bits[i] = m.bits[i] || o.bits[i]
	}
	return &Mask{bits: bits, weights: m.weights}
}

// Not returns the complement of the mask.
func (m *Mask) Not() *Mask {
	bits := make([]bool, len(m.bits))
	for i := range m.bits {
		bits[i] = !m.bits[i]
	}
	return &Mask{bits: bits, weights: m.weights}
}

func (m *Mask) checkLen(o *Mask) {
	if len(m.bits) != len(o.bits) {
		panic(fmt.Sprintf("model: combining masks from different frames (%d vs %d records)", len(m.bits), len(o.bits)))
	}
}
