package sources

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SourceDB manages the datasheet_sources SQLite table. It stores where
// bundles come from, never what was extracted from them.
type SourceDB struct {
	db *sql.DB
}

// OpenSourceDB opens (or creates) the SQLite database at path and ensures the
// datasheet_sources table exists.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS datasheet_sources (
		name         TEXT PRIMARY KEY,
		url          TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		last_check   INTEGER,
		last_status  INTEGER,
		last_error   TEXT,
		updated_at   INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create datasheet_sources table: %w", err)
	}

	return &SourceDB{db: db}, nil
}

// Close closes the database.
func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed inserts catalog rows with INSERT OR IGNORE: existing rows are left
// untouched so that manual URL overrides survive restarts.
func (s *SourceDB) Seed(srcs []Source) error {
	const q = `INSERT OR IGNORE INTO datasheet_sources
		(name, url, description, updated_at)
		VALUES (?, ?, ?, ?)`

	now := time.Now().Unix()
	for _, src := range srcs {
		if err := src.Validate(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if _, err := s.db.Exec(q, src.Name, src.URL, src.Description, now); err != nil {
			return fmt.Errorf("seed %s: %w", src.Name, err)
		}
	}
	return nil
}

// Get returns one source by name.
func (s *SourceDB) Get(name string) (Source, error) {
	row := s.db.QueryRow(`SELECT name, url, description, last_check, last_status, last_error, updated_at
		FROM datasheet_sources WHERE name = ?`, name)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	if err != nil {
		return Source{}, fmt.Errorf("get source %s: %w", name, err)
	}
	return src, nil
}

// SetURL updates the URL of a source and records the change timestamp.
func (s *SourceDB) SetURL(name, url string) error {
	if err := (Source{Name: name, URL: url}).Validate(); err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE datasheet_sources SET url = ?, updated_at = ? WHERE name = ?`,
		url, time.Now().Unix(), name,
	)
	if err != nil {
		return fmt.Errorf("set url for %s: %w", name, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	return nil
}

// UpdateCheck persists the result of an availability check.
func (s *SourceDB) UpdateCheck(name string, status int, checkErr string) error {
	var errPtr *string
	if checkErr != "" {
		errPtr = &checkErr
	}
	_, err := s.db.Exec(
		`UPDATE datasheet_sources SET last_check = ?, last_status = ?, last_error = ? WHERE name = ?`,
		time.Now().Unix(), status, errPtr, name,
	)
	if err != nil {
		return fmt.Errorf("update check for %s: %w", name, err)
	}
	return nil
}

// List returns all sources ordered by name.
func (s *SourceDB) List() ([]Source, error) {
	rows, err := s.db.Query(`SELECT name, url, description, last_check, last_status, last_error, updated_at
		FROM datasheet_sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var srcs []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		srcs = append(srcs, src)
	}
	return srcs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (Source, error) {
	var src Source
	err := row.Scan(&src.Name, &src.URL, &src.Description,
		&src.LastCheck, &src.LastStatus, &src.LastError, &src.UpdatedAt)
	return src, err
}
