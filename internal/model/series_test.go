package model

import (
	"math"
	"testing"
)

func mustSeries(t *testing.T, values, weights []float64) *Series {
	t.Helper()
	s, err := NewSeries(values, weights)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	return s
}

func TestNewSeriesLengthMismatch(t *testing.T) {
	if _, err := NewSeries([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestSeriesSum(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		weights []float64
		want    float64
	}{
		{"Empty", nil, nil, 0},
		{"UnitWeights", []float64{1, 2, 3}, []float64{1, 1, 1}, 6},
		{"SurveyWeights", []float64{100, 200}, []float64{1000, 500}, 200000},
		{"NegativeValues", []float64{-5, 5}, []float64{2, 1}, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSeries(t, tt.values, tt.weights)
			if got := s.Sum(); got != tt.want {
				t.Errorf("Sum() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaskCountIsWeighted(t *testing.T) {
	age := mustSeries(t, []float64{10, 30, 70}, []float64{1000, 2000, 3000})

	workingAge := age.Ge(16).And(age.Le(64))
	if got := workingAge.Count(); got != 2000 {
		t.Errorf("working-age count = %v, want 2000", got)
	}
	child := age.Lt(16)
	if got := child.Count(); got != 1000 {
		t.Errorf("child count = %v, want 1000", got)
	}
	if got := workingAge.Or(child).Count(); got != 3000 {
		t.Errorf("union count = %v, want 3000", got)
	}
	if got := workingAge.Not().Count(); got != 4000 {
		t.Errorf("complement count = %v, want 4000", got)
	}
}

func TestSumWhere(t *testing.T) {
	uc := mustSeries(t, []float64{12000, 0, 6000}, []float64{10, 10, 10})
	onUC := uc.Gt(0)
	if got := uc.SumWhere(onUC); got != 180000 {
		t.Errorf("SumWhere = %v, want 180000", got)
	}
}

func TestScaleAndAddScaled(t *testing.T) {
	uc := mustSeries(t, []float64{1200, 600}, []float64{1, 1})
	elem := mustSeries(t, []float64{300, 0}, []float64{1, 1})

	monthly := uc.Scale(1.0 / 12)
	if got := monthly.Sum(); math.Abs(got-150) > 1e-9 {
		t.Errorf("Scale sum = %v, want 150", got)
	}

	// +50% on the element adds half the element total.
	reformed := uc.AddScaled(elem, 0.5)
	if got := reformed.Sum(); got != 1950 {
		t.Errorf("AddScaled sum = %v, want 1950", got)
	}
}

func TestClampMin(t *testing.T) {
	// A cut larger than the award clamps at zero instead of going negative.
	uc := mustSeries(t, []float64{1000, 200}, []float64{1, 1})
	cut := mustSeries(t, []float64{0, 500}, []float64{1, 1})

	reformed := uc.AddScaled(cut, -1).ClampMin(0)
	if got := reformed.Sum(); got != 1000 {
		t.Errorf("clamped sum = %v, want 1000", got)
	}
}

func TestMaskFrameMismatchPanics(t *testing.T) {
	a := mustSeries(t, []float64{1}, []float64{1})
	b := mustSeries(t, []float64{1, 2}, []float64{1, 1})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic combining masks from different frames")
		}
	}()
	a.Gt(0).And(b.Gt(0))
}
