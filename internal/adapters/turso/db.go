// Package turso implements the repository ports over a libsql database,
// either a local SQLite file or a remote Turso instance.
package turso

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

// NewDB opens a database connection. url may be a local path
// ("file:learnlog.db" or ":memory:") or a remote libsql URL, in which case
// authToken is appended.
func NewDB(url, authToken string) (*sql.DB, error) {
	connStr := url
	if authToken != "" && !strings.HasPrefix(url, "file:") {
		connStr = url + "?authToken=" + authToken
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, err
	}

	// Turso's Hrana protocol closes idle streams aggressively; keeping no
	// idle connections avoids "stream not found" errors on stale handles.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
