package sqlite

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

// Registers a driver with the pragmas every connection needs. Similarity
// ranking happens in Go, so no native vector extension is loaded.
func init() {
	sql.Register("sqlite3_medassist", &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			_, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;", nil)
			return err
		},
	})
}
