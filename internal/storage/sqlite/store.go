// Package sqlite persists calibration runs: the record of how solved
// lines compared against real putts, used to tune physics constants
// between releases.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the calibration database connection.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the calibration database at path and
// applies the session pragmas. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}

	return &Store{db}, nil
}

// isSQLiteBusy reports whether err is a transient lock contention error.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy runs fn, retrying with backoff while the database reports
// lock contention. Non-busy errors return immediately.
func retryOnBusy(fn func() error) error {
	const maxRetries = 5
	backoff := 10 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = fn()
		if !isSQLiteBusy(err) {
			return err
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
