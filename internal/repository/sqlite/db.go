package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"library-stats/internal/repository"
)

const (
	driverName     = "sqlite"
	dialectSQLite3 = "sqlite3"
)

var dialect = goqu.Dialect(dialectSQLite3)

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// single connection so the foreign_keys pragma sticks
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

func wrap(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, driverName)
}

// NewRepositories returns the sqlite repositories sharing db.
func NewRepositories(db *sql.DB) repository.Set {
	return repository.Set{
		Books: NewBookRepository(db),
		Users: NewUserRepository(db),
		Loans: NewLoanRepository(db),
	}
}
