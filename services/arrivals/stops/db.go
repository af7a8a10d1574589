package stops

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Blank import for sql drivers is "standard"
)

var (
	// ErrDatabaseNotSetup is returned if an operation is performed on a created but not opened database
	ErrDatabaseNotSetup = errors.New("database not setup")
	// ErrInvalidStop is returned if a stop is missing its name or URL.
	ErrInvalidStop = errors.New("stop name and url are required")
)

// DB is the persisted set of stops and the map pages showing their arrivals.
type DB struct {
	db *sql.DB
}

// Open attempts to load the sqlite file at the specified path.
// Once Open succeeds the caller should be sure to invoke Close when it is finished with the handle.
func (db *DB) Open(fname string) error {
	sqldb, err := sql.Open("sqlite3", fname)
	if err != nil {
		return err
	}

	db.db = sqldb
	return db.setupDB()
}

// Close releases the handle to sqlite.
func (db *DB) Close() {
	if db.db != nil {
		db.db.Close()
	}
}

func (db *DB) setupDB() error {
	setupCmd := `CREATE TABLE IF NOT EXISTS stops(
		stop_name TEXT NOT NULL PRIMARY KEY,
		stop_url TEXT NOT NULL
		);`

	_, err := db.db.Exec(setupCmd)
	return err
}

// StopNames returns the names of every stop, sorted.
func (db *DB) StopNames(ctx context.Context) ([]string, error) {
	if db.db == nil {
		return nil, ErrDatabaseNotSetup
	}

	cmd := `SELECT stop_name FROM stops ORDER BY stop_name;`

	rows, err := db.db.QueryContext(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// LookupStop returns the map page URL of the named stop.
// The second return value is false if the stop is not known.
func (db *DB) LookupStop(ctx context.Context, name string) (string, bool, error) {
	if db.db == nil {
		return "", false, ErrDatabaseNotSetup
	}

	cmd := `SELECT stop_url FROM stops WHERE stop_name = ?;`

	var url string
	err := db.db.QueryRowContext(ctx, cmd, strings.TrimSpace(name)).Scan(&url)
	if err == sql.ErrNoRows {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}

	return url, true, nil
}

// PutStop creates the stop, or replaces the URL of an existing stop.
func (db *DB) PutStop(ctx context.Context, name string, url string) error {
	if db.db == nil {
		return ErrDatabaseNotSetup
	}

	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if len(name) < 1 || len(url) < 1 {
		return ErrInvalidStop
	}

	cmd := `INSERT INTO stops(
		stop_name,
		stop_url
		) VALUES
		(?, ?)
		ON CONFLICT(stop_name) DO UPDATE SET stop_url=excluded.stop_url;`

	stmt, err := db.db.PrepareContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, name, url)
	return err
}

// DeleteStop removes the named stop. Removing an unknown stop is not an error.
func (db *DB) DeleteStop(ctx context.Context, name string) error {
	if db.db == nil {
		return ErrDatabaseNotSetup
	}

	cmd := `DELETE FROM stops WHERE stop_name = ?;`

	_, err := db.db.ExecContext(ctx, cmd, strings.TrimSpace(name))
	return err
}
