package dataset

import (
	"errors"
	"testing"

	"ucreport/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", nil)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedTestStore(t *testing.T, store *Store) {
	t.Helper()
	stmts := []string{
		`INSERT INTO households (id, weight) VALUES (1, 100), (2, 200)`,
		`INSERT INTO benunits (id, household_id, weight) VALUES (1, 1, 100), (2, 2, 200)`,
		`INSERT INTO persons (id, benunit_id, household_id, weight) VALUES
			(1, 1, 1, 100), (2, 1, 1, 100), (3, 2, 2, 200)`,
		`INSERT INTO variable_values (variable, year, entity, entity_id, value) VALUES
			('age', 2025, 'person', 1, 30),
			('age', 2025, 'person', 2, 8),
			('age', 2025, 'person', 3, 45),
			('universal_credit', 2025, 'benunit', 1, 12000)`,
	}
	for _, stmt := range stmts {
		if _, err := store.db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	for _, table := range []string{"persons", "benunits", "households", "variable_values"} {
		if _, ok := stats[table]; !ok {
			t.Errorf("Stats missing table %s", table)
		}
	}
}

func TestMetaRoundtrip(t *testing.T) {
	store := openTestStore(t)

	if v, err := store.Meta("missing"); err != nil || v != "" {
		t.Errorf("Meta(missing) = %q, %v; want empty, nil", v, err)
	}
	if err := store.SetMeta(MetaVersionKey, "frs-2022.4"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if got := store.Version(); got != "frs-2022.4" {
		t.Errorf("Version() = %q, want frs-2022.4", got)
	}
	// Overwrite wins.
	if err := store.SetMeta(MetaVersionKey, "frs-2023.1"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if got := store.Version(); got != "frs-2023.1" {
		t.Errorf("Version() after overwrite = %q, want frs-2023.1", got)
	}
}

func TestVersionUnsetReadsUnknown(t *testing.T) {
	store := openTestStore(t)
	if got := store.Version(); got != "unknown" {
		t.Errorf("Version() = %q, want unknown", got)
	}
}

func TestFrame(t *testing.T) {
	store := openTestStore(t)
	seedTestStore(t, store)

	persons, err := store.Frame(model.EntityPerson)
	if err != nil {
		t.Fatalf("Frame(person): %v", err)
	}
	if len(persons.IDs) != 3 || len(persons.Weights) != 3 {
		t.Fatalf("person frame size = %d ids / %d weights, want 3/3", len(persons.IDs), len(persons.Weights))
	}
	if persons.BenUnits[1] != 1 || persons.BenUnits[2] != 2 {
		t.Errorf("person benunit links = %v", persons.BenUnits)
	}

	benunits, err := store.Frame(model.EntityBenUnit)
	if err != nil {
		t.Fatalf("Frame(benunit): %v", err)
	}
	if len(benunits.BenUnits) != 0 {
		t.Errorf("benunit frame should not carry benunit links")
	}
	if benunits.Households[1] != 2 {
		t.Errorf("benunit household links = %v", benunits.Households)
	}

	if _, err := store.Frame(model.Entity("family")); err == nil {
		t.Error("expected error for unknown entity")
	}
}

func TestFrameEmptyDataset(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Frame(model.EntityPerson); err == nil {
		t.Fatal("expected error on empty dataset")
	}
}

func TestColumn(t *testing.T) {
	store := openTestStore(t)
	seedTestStore(t, store)

	entity, col, err := store.Column("universal_credit", 2025)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if entity != model.EntityBenUnit {
		t.Errorf("entity = %s, want benunit", entity)
	}
	if col[1] != 12000 {
		t.Errorf("col[1] = %v, want 12000", col[1])
	}

	// Sparse: benunit 2 has no row.
	if _, ok := col[2]; ok {
		t.Error("benunit 2 should be absent from the sparse column")
	}
}

func TestColumnUnknownVariable(t *testing.T) {
	store := openTestStore(t)
	seedTestStore(t, store)

	_, _, err := store.Column("universal_credit", 2030)
	if !errors.Is(err, model.ErrUnknownVariable) {
		t.Fatalf("err = %v, want ErrUnknownVariable", err)
	}
	_, _, err = store.Column("participation_tax_rate", 2025)
	if !errors.Is(err, model.ErrUnknownVariable) {
		t.Fatalf("err = %v, want ErrUnknownVariable", err)
	}
}

func TestVariables(t *testing.T) {
	store := openTestStore(t)
	seedTestStore(t, store)

	vars, err := store.Variables()
	if err != nil {
		t.Fatalf("Variables: %v", err)
	}
	if years := vars["age"]; len(years) != 1 || years[0] != 2025 {
		t.Errorf("age years = %v, want [2025]", years)
	}
}

func TestModelOverStore(t *testing.T) {
	store := openTestStore(t)
	seedTestStore(t, store)

	m := model.New(store)
	personUC, err := m.Calculate("universal_credit", 2025, model.EntityPerson)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	// Both members of benunit 1 (weight 100 each) carry its award.
	if got := personUC.Gt(0).Count(); got != 200 {
		t.Errorf("persons in UC = %v, want 200", got)
	}
}
