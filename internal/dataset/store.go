// Package dataset persists pre-computed microsimulation output in SQLite:
// entity frames (persons, benefit units, households) with survey weights,
// and per-(variable, year) value columns. It is the production backend for
// the model package.
package dataset

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"ucreport/internal/model"
)

// MetaVersionKey is the meta row holding the dataset/model build id.
const MetaVersionKey = "model_version"

// Store is a SQLite-backed microdata store. A single connection is used;
// SQLite handles one writer anyway and this keeps WAL checkpointing simple.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	log    *zap.Logger
}

// Open initializes the database at path, creating the schema when absent.
// Pass ":memory:" for an ephemeral store (tests).
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logger.Debug("failed to set sqlite synchronous=NORMAL", zap.Error(err))
	}

	s := &Store{db: db, dbPath: path, log: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug("dataset opened", zap.String("path", path))
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the location of the backing database file.
func (s *Store) Path() string { return s.dbPath }

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS households (
			id     INTEGER PRIMARY KEY,
			weight REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS benunits (
			id           INTEGER PRIMARY KEY,
			household_id INTEGER NOT NULL REFERENCES households(id),
			weight       REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS persons (
			id           INTEGER PRIMARY KEY,
			benunit_id   INTEGER NOT NULL REFERENCES benunits(id),
			household_id INTEGER NOT NULL REFERENCES households(id),
			weight       REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS variable_values (
			variable  TEXT NOT NULL,
			year      INTEGER NOT NULL,
			entity    TEXT NOT NULL,
			entity_id INTEGER NOT NULL,
			value     REAL NOT NULL,
			PRIMARY KEY (variable, year, entity_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_variable_values_lookup
			ON variable_values(variable, year)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// SetMeta stores one metadata key/value pair, replacing any prior value.
func (s *Store) SetMeta(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta %q: %w", key, err)
	}
	return nil
}

// Meta returns a metadata value, or "" when the key is absent.
func (s *Store) Meta(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read meta %q: %w", key, err)
	}
	return value, nil
}

// Version implements model.Backend. An unset version reads as "unknown"
// rather than erroring so reports stay usable on hand-built datasets.
func (s *Store) Version() string {
	v, err := s.Meta(MetaVersionKey)
	if err != nil || v == "" {
		return "unknown"
	}
	return v
}

// Frame implements model.Backend.
func (s *Store) Frame(entity model.Entity) (*model.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var query string
	switch entity {
	case model.EntityPerson:
		query = `SELECT id, weight, benunit_id, household_id FROM persons ORDER BY id`
	case model.EntityBenUnit:
		query = `SELECT id, weight, 0, household_id FROM benunits ORDER BY id`
	case model.EntityHousehold:
		query = `SELECT id, weight, 0, 0 FROM households ORDER BY id`
	default:
		return nil, fmt.Errorf("unknown entity %q", entity)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s frame: %w", entity, err)
	}
	defer rows.Close()

	f := &model.Frame{}
	for rows.Next() {
		var id, benunit, household int64
		var weight float64
		if err := rows.Scan(&id, &weight, &benunit, &household); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", entity, err)
		}
		f.IDs = append(f.IDs, id)
		f.Weights = append(f.Weights, weight)
		if entity == model.EntityPerson {
			f.BenUnits = append(f.BenUnits, benunit)
		}
		if entity != model.EntityHousehold {
			f.Households = append(f.Households, household)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s frame: %w", entity, err)
	}
	if len(f.IDs) == 0 {
		return nil, fmt.Errorf("dataset has no %s records (run `ucreport load` first)", entity)
	}
	return f, nil
}

// Column implements model.Backend. Absent (variable, year) pairs map to
// model.ErrUnknownVariable so callers can treat variables as optional.
func (s *Store) Column(variable string, year int) (model.Entity, map[int64]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT entity, entity_id, value FROM variable_values WHERE variable = ? AND year = ?`,
		variable, year)
	if err != nil {
		return "", nil, fmt.Errorf("failed to query %q: %w", variable, err)
	}
	defer rows.Close()

	col := make(map[int64]float64)
	var entity model.Entity
	for rows.Next() {
		var ent string
		var id int64
		var value float64
		if err := rows.Scan(&ent, &id, &value); err != nil {
			return "", nil, fmt.Errorf("failed to scan %q row: %w", variable, err)
		}
		entity = model.Entity(ent)
		col[id] = value
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("failed to iterate %q: %w", variable, err)
	}
	if len(col) == 0 {
		return "", nil, fmt.Errorf("%q for %d: %w", variable, year, model.ErrUnknownVariable)
	}
	return entity, col, nil
}

// Variables lists the distinct (variable, year) pairs present in the store.
func (s *Store) Variables() (map[string][]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT DISTINCT variable, year FROM variable_values ORDER BY variable, year`)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]int)
	for rows.Next() {
		var variable string
		var year int
		if err := rows.Scan(&variable, &year); err != nil {
			return nil, fmt.Errorf("failed to scan variable row: %w", err)
		}
		out[variable] = append(out[variable], year)
	}
	return out, rows.Err()
}

// Stats returns record counts per table, for the version command.
func (s *Store) Stats() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int)
	for _, table := range []string{"persons", "benunits", "households", "variable_values"} {
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = n
	}
	return stats, nil
}
