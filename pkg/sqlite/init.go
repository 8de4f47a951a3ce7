// Package sqlite registers the application SQLite driver.
//
// The corpus relevance index relies on FTS5, so binaries (and tests that
// touch the database) must be built with -tags sqlite_fts5.
package sqlite

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

const DriverName = "sqlite3_pitchside"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// WAL keeps concurrent session turns from blocking readers;
			// busy_timeout covers writer contention across transports.
			_, err := conn.Exec(`
				PRAGMA journal_mode = WAL;
				PRAGMA busy_timeout = 5000;
				PRAGMA foreign_keys = ON;
			`, nil)
			return err
		},
	})
}
