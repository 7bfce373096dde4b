package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucreport/internal/dataset"
	"ucreport/internal/model"
	"ucreport/internal/reference"
)

// TestBuilderOverSQLiteStore runs the whole path: CSV import -> SQLite ->
// model -> builder, for two tax years. The population matches the stub
// fixture so the expectations line up with the unit tests.
func TestBuilderOverSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("households.csv", "id,weight\n1,1000000\n2,1000000\n3,1000000\n")
	write("benunits.csv", "id,household_id,weight\n1,1,1000000\n2,2,1000000\n3,3,1000000\n")
	write("persons.csv", "id,benunit_id,household_id,weight\n"+
		"1,1,1,1000000\n2,1,1,1000000\n3,2,2,1000000\n4,3,3,1000000\n")

	values := "variable,year,entity,entity_id,value\n"
	for _, year := range []int{2025, 2026} {
		values += fmt.Sprintf("age,%d,person,1,30\n", year)
		values += fmt.Sprintf("age,%d,person,2,10\n", year)
		values += fmt.Sprintf("age,%d,person,3,40\n", year)
		values += fmt.Sprintf("age,%d,person,4,70\n", year)
		values += fmt.Sprintf("universal_credit,%d,benunit,1,12000\n", year)
		values += fmt.Sprintf("universal_credit,%d,benunit,3,6000\n", year)
		values += fmt.Sprintf("benunit_count_children,%d,benunit,1,1\n", year)
		values += fmt.Sprintf("uc_childcare_element,%d,benunit,1,3000\n", year)
		values += fmt.Sprintf("self_employment_income,%d,person,1,5000\n", year)
		values += fmt.Sprintf("employment_income,%d,person,1,20000\n", year)
		values += fmt.Sprintf("employment_income,%d,person,3,30000\n", year)
		values += fmt.Sprintf("marginal_tax_rate,%d,person,1,0.8\n", year)
		values += fmt.Sprintf("marginal_tax_rate,%d,person,3,0.3\n", year)
		values += fmt.Sprintf("uc_maximum_amount,%d,benunit,1,15000\n", year)
		values += fmt.Sprintf("uc_maximum_amount,%d,benunit,3,8000\n", year)
		values += fmt.Sprintf("uc_standard_allowance,%d,benunit,1,4000\n", year)
		values += fmt.Sprintf("uc_standard_allowance,%d,benunit,3,5000\n", year)
	}
	write("values.csv", values)

	store, err := dataset.Open(":memory:", nil)
	require.NoError(t, err)
	defer store.Close()
	_, err = store.Import(dir, "frs-2022.4")
	require.NoError(t, err)

	b := NewBuilder(model.New(store), reference.Default(), DefaultOptions(), nil)
	results, err := b.Years(context.Background(), []int{2026, 2025})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2025, results[0].Year)
	assert.Equal(t, 2026, results[1].Year)

	for _, res := range results {
		spend := findRow(t, res.Comparison, "Annual UC expenditure")
		assert.Equal(t, 18.0, spend.ModelValue)

		award := findRow(t, res.Comparison, "Average monthly UC award")
		assert.Equal(t, 750.0, award.ModelValue)

		metr := findRow(t, res.Comparison, "Workers with METR > 70%")
		assert.Equal(t, 50.0, metr.ModelValue)

		// Carers and benefit cap are absent from this dataset build.
		assert.Zero(t, res.Policy[4].Value)
		assert.Equal(t, 9.0, res.Elements[0].ExpenditureBn)
	}

	meta := b.Metadata([]int{2025, 2026}, store.Version())
	assert.Equal(t, "frs-2022.4", meta.ModelVersion)
}
