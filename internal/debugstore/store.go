// Package debugstore keeps numbered debug snapshots in a directory. Each
// snapshot name is assigned a canonical file name "NNN_<name>" the first
// time it is written; the assignment and the counter live in a SQLite index
// inside the directory so that they survive across runs.
package debugstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// IndexFile is the name of the SQLite index inside the debug directory.
const IndexFile = ".index.db"

// mu serializes every store in the process.
var mu sync.Mutex

// Store is a debug directory with its name index.
type Store struct {
	dir string
	db  *sql.DB
}

// Open opens or creates the store at dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("debug directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating debug directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("opening debug index: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating debug index schema: %w", err)
	}
	return &Store{dir: dir, db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS names (
			base TEXT PRIMARY KEY,
			canonical TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS counter (
			id INTEGER PRIMARY KEY CHECK (id = 0),
			value INTEGER NOT NULL
		);

		INSERT OR IGNORE INTO counter (id, value) VALUES (0, 0);
	`
	_, err := db.Exec(schema)
	return err
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

// Close closes the index.
func (s *Store) Close() error {
	return s.db.Close()
}

// PathFor returns the file path assigned to name, assigning the next
// sequence number if name is new. Only the base of name is used.
func (s *Store) PathFor(name string) (string, error) {
	mu.Lock()
	defer mu.Unlock()
	canonical, err := s.canonical(filepath.Base(name))
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, canonical), nil
}

func (s *Store) canonical(base string) (string, error) {
	var canonical string
	err := s.db.QueryRow(`SELECT canonical FROM names WHERE base = ?`, base).Scan(&canonical)
	if err == nil {
		return canonical, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("looking up %s: %w", base, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRow(`UPDATE counter SET value = value + 1 WHERE id = 0 RETURNING value`).Scan(&n); err != nil {
		return "", fmt.Errorf("advancing counter: %w", err)
	}

	seq := fmt.Sprintf("%03d", n)
	canonical = seq + "_" + base
	for i := 1; exists(filepath.Join(s.dir, canonical)); i++ {
		canonical = fmt.Sprintf("%s_%02d_%s", seq, i, base)
	}

	if _, err := tx.Exec(`INSERT INTO names (base, canonical) VALUES (?, ?)`, base, canonical); err != nil {
		return "", fmt.Errorf("recording %s: %w", base, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	return canonical, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Write stores content under name, replacing any earlier snapshot of the
// same name.
func (s *Store) Write(name, content string) error {
	path, err := s.PathFor(name)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(content, "\n") && content != "" {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteLines stores one line per element.
func (s *Store) WriteLines(name string, lines []string) error {
	return s.Write(name, strings.Join(lines, "\n"))
}

// Names returns the canonical file names in assignment order.
func (s *Store) Names() ([]string, error) {
	mu.Lock()
	defer mu.Unlock()
	rows, err := s.db.Query(`SELECT canonical FROM names ORDER BY canonical`)
	if err != nil {
		return nil, fmt.Errorf("listing names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Reset removes every snapshot file and clears the index.
func (s *Store) Reset() error {
	names, err := s.Names()
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	for _, c := range names {
		if err := os.Remove(filepath.Join(s.dir, c)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", c, err)
		}
	}
	if _, err := s.db.Exec(`DELETE FROM names; UPDATE counter SET value = 0 WHERE id = 0;`); err != nil {
		return fmt.Errorf("clearing debug index: %w", err)
	}
	return nil
}
