package dictionary

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fidde/fprime_openmct/pkg/models"
	_ "modernc.org/sqlite"
)

//go:embed migrations/001_dictionary_schema.up.sql
var migrationSQL string

// SQLiteLoader reads the dictionary from a SQLite database written by
// WriteSQLite. Each Load runs fresh queries; rows are returned in the
// position order they were written in.
type SQLiteLoader struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(migrationSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// NewSQLiteLoader opens the database at path.
func NewSQLiteLoader(path string) (*SQLiteLoader, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteLoader{db: db, path: path}, nil
}

// Close closes the database.
func (l *SQLiteLoader) Close() error {
	return l.db.Close()
}

// Load reads the dictionary row and all measurements.
func (l *SQLiteLoader) Load(ctx context.Context) (*models.Dictionary, error) {
	dict := &models.Dictionary{}

	err := l.db.QueryRowContext(ctx, `SELECT name, key FROM dictionary WHERE id = 1`).Scan(&dict.Name, &dict.Key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.FetchError{Source: l.path, Err: errors.New("no dictionary stored")}
		}
		return nil, &models.FetchError{Source: l.path, Err: err}
	}

	rows, err := l.db.QueryContext(ctx, `SELECT key, name, vals FROM measurements ORDER BY position`)
	if err != nil {
		return nil, &models.FetchError{Source: l.path, Err: err}
	}
	defer rows.Close()

	dict.Measurements = []models.Measurement{}
	for rows.Next() {
		var (
			m    models.Measurement
			vals string
		)
		if err := rows.Scan(&m.Key, &m.Name, &vals); err != nil {
			return nil, &models.FetchError{Source: l.path, Err: err}
		}
		if err := json.Unmarshal([]byte(vals), &m.Values); err != nil {
			return nil, &models.ParseError{Source: l.path, Err: fmt.Errorf("measurement %q values: %w", m.Key, err)}
		}
		dict.Measurements = append(dict.Measurements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.FetchError{Source: l.path, Err: err}
	}

	if err := dict.Validate(); err != nil {
		return nil, &models.ParseError{Source: l.path, Err: err}
	}
	return dict, nil
}

// WriteSQLite replaces the dictionary stored in db with dict.
func WriteSQLite(ctx context.Context, db *sql.DB, dict *models.Dictionary) error {
	if err := dict.Validate(); err != nil {
		return fmt.Errorf("validating dictionary: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM measurements`); err != nil {
		return fmt.Errorf("clearing measurements: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dictionary (id, name, key) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, key = excluded.key`,
		dict.Name, dict.Key); err != nil {
		return fmt.Errorf("writing dictionary: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO measurements (position, key, name, vals) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range dict.Measurements {
		vals := m.Values
		if vals == nil {
			vals = []models.ValueDescriptor{}
		}
		data, err := json.Marshal(vals)
		if err != nil {
			return fmt.Errorf("encoding values of %q: %w", m.Key, err)
		}
		if _, err := stmt.ExecContext(ctx, i, m.Key, m.Name, string(data)); err != nil {
			return fmt.Errorf("writing measurement %q: %w", m.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
