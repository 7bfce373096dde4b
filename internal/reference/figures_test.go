package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFigures(t *testing.T) {
	f := Default()
	assert.Equal(t, 8.5, f.WorkingAgeInUCMillions)
	assert.Equal(t, 54.0, f.ChildrenInUCPct)
	assert.Equal(t, 86.0, f.UCExpenditureBillions)
	assert.Equal(t, "2029-30", f.UCExpenditureYear)
	assert.Equal(t, 1030.0, f.AvgMonthlyUCAward)
	assert.Equal(t, 9.0, f.PTRAbove70Pct)
}

func TestApplyOverrides(t *testing.T) {
	f := Default()
	err := f.Apply(map[string]float64{
		"avg_monthly_uc_award":    1100,
		"uc_expenditure_billions": 90,
	})
	require.NoError(t, err)
	assert.Equal(t, 1100.0, f.AvgMonthlyUCAward)
	assert.Equal(t, 90.0, f.UCExpenditureBillions)
	// Everything else is untouched.
	assert.Equal(t, 6.5, f.ChildrenInUCMillions)
}

func TestApplyRejectsUnknownKey(t *testing.T) {
	f := Default()
	err := f.Apply(map[string]float64{"avg_monthly_award": 1100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "avg_monthly_award")
}

func TestApplyEmpty(t *testing.T) {
	f := Default()
	require.NoError(t, f.Apply(nil))
	assert.Equal(t, Default(), f)
}
