package database

import (
	"database/sql"
	"fmt"
	"strings"

	"vocabdrill/internal/config"
)

// DB wraps the database connection with dialect support
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the database selected by the configuration
func Open(cfg *config.Config) (*DB, error) {
	dialect, err := NewDialect(cfg.DatabaseType)
	if err != nil {
		return nil, err
	}

	dialectConfig := DialectConfig{URL: cfg.DatabaseURL}
	if _, ok := dialect.(*SQLiteDialect); ok {
		dialectConfig = DialectConfig{Path: cfg.DatabasePath}
	}

	return open(dialect, dialectConfig)
}

// OpenSQLite connects to a SQLite database file
func OpenSQLite(path string) (*DB, error) {
	return open(NewSQLiteDialect(), DialectConfig{Path: path})
}

func open(dialect Dialect, dialectConfig DialectConfig) (*DB, error) {
	db, err := sql.Open(dialect.DriverName(), dialect.DSN(dialectConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Query executes a query with automatic placeholder rewriting
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.Query(db.Dialect.RewriteQuery(query), args...)
}

// QueryRow executes a query that returns a single row with automatic placeholder rewriting
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRow(db.Dialect.RewriteQuery(query), args...)
}

// Exec executes a query that doesn't return rows with automatic placeholder rewriting
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(db.Dialect.RewriteQuery(query), args...)
}

// ExecReturningID executes an INSERT query and returns the new row's ID
func (db *DB) ExecReturningID(query string, args ...interface{}) (int64, error) {
	return execReturningID(db.DB, db.Dialect, query, args...)
}

// execer is the subset of *sql.DB and *sql.Tx used for inserts
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

func execReturningID(e execer, dialect Dialect, query string, args ...interface{}) (int64, error) {
	rewritten := dialect.RewriteQuery(query)

	if dialect.SupportsLastInsertId() {
		result, err := e.Exec(rewritten, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	rewritten = strings.TrimSuffix(strings.TrimSpace(rewritten), ";") + " RETURNING id"

	var id int64
	if err := e.QueryRow(rewritten, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
