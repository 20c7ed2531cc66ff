// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go translation
// of the SQLite C code.
//
// WHY sqlx ON TOP OF database/sql?
// sqlx keeps the database/sql model (same *sql.DB underneath, same drivers) and
// adds struct scanning via `db:"..."` tags: GetContext for one row, SelectContext
// for many. The row-to-struct mapping is declared once on userRow instead of
// repeating Scan(&a, &b, &c) in every query.
//
// ONE CONNECTION:
// The store is built for a single logical caller. New caps the pool at one open
// connection, which also keeps ":memory:" databases coherent: every statement
// sees the same in-memory schema.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB owns the SQLite connection and hands out repositories bound to it.
type DB struct {
	conn   *sqlx.DB
	logger *zap.Logger
}

// New opens the SQLite database at dbPath and makes sure the schema exists.
//
// dbPath examples:
//   - "data/accountkit.db"  → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests; lost on close)
func New(dbPath string, logger *zap.Logger) (*DB, error) {
	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	// sqlx.Open does not connect; Ping surfaces a bad path right away.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight (file databases only;
	// ":memory:" reports "memory" and carries on).
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn, logger: logger}

	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: creating schema: %w", err)
	}

	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserRepository {
	return NewUserRepository(db.conn, db.logger)
}

// ensureSchema creates the users table when it is missing.
//
// CREATE TABLE IF NOT EXISTS is idempotent, so this runs on every start.
// There is no schema versioning: the table shape is fixed.
func (db *DB) ensureSchema() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	return nil
}
