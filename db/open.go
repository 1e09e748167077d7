// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/matryer/try"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Supported database types
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

const (
	pingAttempts = 5
	pingBackoff  = time.Second
)

// Open connects to the database and waits until it answers a ping
func Open(ctx context.Context, dbType, url string) (*sql.DB, error) {
	if dbType != Postgres && dbType != SQLite {
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	if dbType == SQLite {
		conn.SetMaxOpenConns(1)
	}

	err = try.Do(func(attempt int) (bool, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err := conn.PingContext(pingCtx)
		if err != nil && attempt < pingAttempts {
			slog.Warn("database ping failed, retrying", "attempt", attempt, "error", err)
			time.Sleep(pingBackoff)
		}
		return attempt < pingAttempts, err
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return conn, nil
}

// IsUniqueViolation reports whether err is a primary key or unique constraint failure
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
