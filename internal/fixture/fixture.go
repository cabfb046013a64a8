// Package fixture builds real SQLite database files with a stock schema,
// using the actual SQLite C library via mattn/go-sqlite3, for the engine
// package's tests to read back with this module's own decoder. Those tests
// compare decoded rows with the User values BuildUsersDB returns; they do
// not query the file through database/sql.
package fixture

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// User is one row of the fixture "users" table.
type User struct {
	ID       int64
	Username string
	Email    string
}

// Options configures fixture generation.
type Options struct {
	// Dir is the directory the fixture file is written into (typically a
	// test's t.TempDir()).
	Dir string

	// RowCount is how many users rows to insert.
	RowCount int

	// PageSize is passed to SQLite's PRAGMA page_size before the first
	// write, so tests can exercise non-default page sizes.
	PageSize int
}

// BuildUsersDB creates a SQLite database at <Dir>/fixture.db containing a
// "users" table (id INTEGER PRIMARY KEY, username TEXT UNIQUE, email TEXT
// UNIQUE) with RowCount rows, and returns the path plus the rows inserted
// in row-id order.
func BuildUsersDB(opts Options) (string, []User, error) {
	path := filepath.Join(opts.Dir, "fixture.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return "", nil, fmt.Errorf("fixture: open: %w", err)
	}
	defer db.Close()

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = 4096
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA page_size = %d", pageSize)); err != nil {
		return "", nil, fmt.Errorf("fixture: set page_size: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL
	)`); err != nil {
		return "", nil, fmt.Errorf("fixture: create table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO users (username, email) VALUES (?, ?)`)
	if err != nil {
		return "", nil, fmt.Errorf("fixture: prepare insert: %w", err)
	}
	defer stmt.Close()

	rows := make([]User, 0, opts.RowCount)
	for i := 1; i <= opts.RowCount; i++ {
		username := fmt.Sprintf("user%d", i)
		email := fmt.Sprintf("user%d@example.com", i)
		if _, err := stmt.Exec(username, email); err != nil {
			return "", nil, fmt.Errorf("fixture: insert row %d: %w", i, err)
		}
		rows = append(rows, User{ID: int64(i), Username: username, Email: email})
	}

	// Force SQLite to flush the final tree shape to disk so the bytes the
	// reader sees back reflect committed pages, not journal state.
	if _, err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		// Not every build of the driver supports WAL; ignore if unsupported.
		_ = err
	}

	return path, rows, nil
}
