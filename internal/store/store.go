package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"spotify-tools/internal/schema"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTables executes the definition of each table in order. The
// generated DDL uses IF NOT EXISTS, so a database that already has a
// table keeps the schema inferred by its first load.
func (s *Store) CreateTables(tables ...schema.Table) error {
	for _, table := range tables {
		if _, err := s.db.Exec(table.DDL()); err != nil {
			return fmt.Errorf("creating table %s: %w", table.Name, err)
		}
	}
	return nil
}

func (s *Store) TableExists(name string) (bool, error) {
	row := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name)
	var found string
	err := row.Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", name, err)
	}
	return true, nil
}
