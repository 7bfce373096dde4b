package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"ucreport/internal/model"
)

// Import file names expected inside the microdata directory.
const (
	householdsFile = "households.csv"
	benunitsFile   = "benunits.csv"
	personsFile    = "persons.csv"
	valuesFile     = "values.csv"
)

// ImportResult reports how many rows each table received.
type ImportResult struct {
	Households int
	BenUnits   int
	Persons    int
	Values     int
}

// Import loads microdata CSVs from dir into the store inside a single
// transaction, replacing rows with matching keys. The expected files are
// households.csv (id, weight), benunits.csv (id, household_id, weight),
// persons.csv (id, benunit_id, household_id, weight) and values.csv
// (variable, year, entity, entity_id, value), each with a header row.
func (s *Store) Import(dir, version string) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	res := &ImportResult{}

	res.Households, err = importCSV(filepath.Join(dir, householdsFile), 2, func(rec []string) error {
		id, weight, err := idWeight(rec[0], rec[1])
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT OR REPLACE INTO households (id, weight) VALUES (?, ?)`, id, weight)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", householdsFile, err)
	}

	res.BenUnits, err = importCSV(filepath.Join(dir, benunitsFile), 3, func(rec []string) error {
		id, weight, err := idWeight(rec[0], rec[2])
		if err != nil {
			return err
		}
		household, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bad household_id %q: %w", rec[1], err)
		}
		_, err = tx.Exec(`INSERT OR REPLACE INTO benunits (id, household_id, weight) VALUES (?, ?, ?)`,
			id, household, weight)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", benunitsFile, err)
	}

	res.Persons, err = importCSV(filepath.Join(dir, personsFile), 4, func(rec []string) error {
		id, weight, err := idWeight(rec[0], rec[3])
		if err != nil {
			return err
		}
		benunit, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bad benunit_id %q: %w", rec[1], err)
		}
		household, err := strconv.ParseInt(rec[2], 10, 64)
		if err != nil {
			return fmt.Errorf("bad household_id %q: %w", rec[2], err)
		}
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO persons (id, benunit_id, household_id, weight) VALUES (?, ?, ?, ?)`,
			id, benunit, household, weight)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", personsFile, err)
	}

	res.Values, err = importCSV(filepath.Join(dir, valuesFile), 5, func(rec []string) error {
		year, err := strconv.Atoi(rec[1])
		if err != nil {
			return fmt.Errorf("bad year %q: %w", rec[1], err)
		}
		entity, err := model.ParseEntity(rec[2])
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			return fmt.Errorf("bad entity_id %q: %w", rec[3], err)
		}
		value, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return fmt.Errorf("bad value %q: %w", rec[4], err)
		}
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO variable_values (variable, year, entity, entity_id, value) VALUES (?, ?, ?, ?, ?)`,
			rec[0], year, entity, id, value)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", valuesFile, err)
	}

	if version != "" {
		if _, err := tx.Exec(
			`INSERT INTO meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			MetaVersionKey, version); err != nil {
			return nil, fmt.Errorf("failed to record version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	s.log.Info("microdata imported",
		zap.String("dir", dir),
		zap.Int("households", res.Households),
		zap.Int("benunits", res.BenUnits),
		zap.Int("persons", res.Persons),
		zap.Int("values", res.Values))
	return res, nil
}

// importCSV streams one CSV file, skipping the header row, and applies fn to
// each record. Returns the number of records applied.
func importCSV(path string, fields int, fn func([]string) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	r.TrimLeadingSpace = true

	if _, err := r.Read(); err != nil { // header
		if err == io.EOF {
			return 0, fmt.Errorf("empty file")
		}
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("record %d: %w", n+1, err)
		}
		if err := fn(rec); err != nil {
			return n, fmt.Errorf("record %d: %w", n+1, err)
		}
		n++
	}
}

func idWeight(idField, weightField string) (int64, float64, error) {
	id, err := strconv.ParseInt(idField, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad id %q: %w", idField, err)
	}
	weight, err := strconv.ParseFloat(weightField, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad weight %q: %w", weightField, err)
	}
	return id, weight, nil
}
