// Package driver provides database driver abstraction for SQLite and
// PostgreSQL.
package driver

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Dialect represents the database dialect.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Driver abstracts database operations for SQLite and PostgreSQL.
type Driver interface {
	// Connection
	Open(dsn string) error
	Close() error

	// Queries. Statements are written with ? placeholders; Rebind converts
	// them for the dialect.
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row

	// Transactions
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)

	// Migrations
	Migrate(ctx context.Context, schemaFS fs.FS) error

	// Dialect-specific
	Dialect() Dialect
	Rebind(query string) string

	// Raw access (for advanced operations)
	DB() *sql.DB
}

// New creates a driver for the given dialect.
func New(dialect Dialect) (Driver, error) {
	switch dialect {
	case DialectSQLite:
		return NewSQLite(), nil
	case DialectPostgres:
		return NewPostgres(), nil
	default:
		return nil, fmt.Errorf("unknown dialect: %s", dialect)
	}
}

// rebindDollar converts ? placeholders to $1, $2, ... for PostgreSQL.
func rebindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// migrate applies pending schema migrations from schemaFS. Migration files
// are named NNN_description.sql and applied in sorted order inside a
// transaction each.
func migrate(ctx context.Context, db *sql.DB, schemaFS fs.FS, versionTable string) error {
	if _, err := db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS "+versionTable+" (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.QueryContext(ctx, "SELECT version FROM "+versionTable)
	if err != nil {
		return fmt.Errorf("query migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate migrations: %w", err)
	}

	names, err := fs.Glob(schemaFS, "*.sql")
	if err != nil {
		return fmt.Errorf("glob schema files: %w", err)
	}

	for _, name := range names {
		version := extractVersion(name)
		if version == 0 || applied[version] {
			continue
		}

		content, err := fs.ReadFile(schemaFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO "+versionTable+" (version) VALUES ("+strconv.Itoa(version)+")"); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

// extractVersion parses the numeric prefix of a migration filename.
// "001_init.sql" yields 1; unparseable names yield 0.
func extractVersion(name string) int {
	idx := strings.IndexByte(name, '_')
	if idx < 0 {
		return 0
	}
	v, err := strconv.Atoi(name[:idx])
	if err != nil {
		return 0
	}
	return v
}
