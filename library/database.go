package library

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Database provides the Store over a SQL connection pool.
type Database struct {
	*queries
	db      *sql.DB
	dialect dialect
}

var _ Store = (*Database)(nil)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ---------------------------------------------------------------------------
// Dialects
// ---------------------------------------------------------------------------

type dialect struct {
	name string
	// dollar switches ? placeholders to $1..$n.
	dollar bool
	// returning fetches inserted ids with RETURNING instead of LastInsertId.
	returning bool
	types     *strings.Replacer
}

var dialects = map[string]dialect{
	"sqlite3": {
		name:  "sqlite3",
		types: strings.NewReplacer("{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{float}}", "REAL"),
	},
	"pgx": {
		name:      "pgx",
		dollar:    true,
		returning: true,
		types:     strings.NewReplacer("{{pk}}", "BIGSERIAL PRIMARY KEY", "{{float}}", "DOUBLE PRECISION"),
	},
	"mysql": {
		name:  "mysql",
		types: strings.NewReplacer("{{pk}}", "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY", "{{float}}", "DOUBLE"),
	},
}

func lookupDialect(driver string) (dialect, error) {
	switch driver {
	case "sqlite", "":
		driver = "sqlite3"
	case "postgres", "postgresql":
		driver = "pgx"
	}
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
	return d, nil
}

func (d dialect) rebind(query string) string {
	if !d.dollar {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// Open / close
// ---------------------------------------------------------------------------

// NewDatabase opens (or creates) the SQLite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return Open("sqlite3", dbPath)
}

// Open connects with the named driver, applies schema migrations and returns
// the Store. For sqlite3 the dsn may be a plain file path.
func Open(driver, dsn string) (*Database, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}

	if d.name == "sqlite3" && !strings.HasPrefix(dsn, "file:") {
		// Ensure directory exists so first-run succeeds.
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		// Immediate transactions take the write lock up front, so a
		// read-check-write inside InTx cannot interleave with another writer.
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", dsn)
	}

	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	if err := applyMigrations(db, d); err != nil {
		db.Close()
		return nil, err
	}

	return &Database{queries: &queries{db: db, dialect: d}, db: db, dialect: d}, nil
}

// Close closes the connection pool.
func (d *Database) Close() error { return d.db.Close() }

// Dialect names the SQL dialect in use.
func (d *Database) Dialect() string { return d.dialect.name }

// InTx runs fn in a transaction, committing when fn returns nil.
func (d *Database) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx, dialect: d.dialect}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS books (
        id {{pk}},
        title VARCHAR(255) NOT NULL,
        author VARCHAR(255) NOT NULL,
        description TEXT,
        copies INTEGER NOT NULL DEFAULT 0,
        copies_available INTEGER NOT NULL DEFAULT 0,
        category VARCHAR(255),
        img TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS checkouts (
        id {{pk}},
        user_email VARCHAR(255) NOT NULL,
        checkout_date VARCHAR(10) NOT NULL,
        return_date VARCHAR(10) NOT NULL,
        book_id BIGINT NOT NULL,
        UNIQUE (user_email, book_id)
    )`,
	`CREATE TABLE IF NOT EXISTS histories (
        id {{pk}},
        user_email VARCHAR(255) NOT NULL,
        checkout_date VARCHAR(10) NOT NULL,
        returned_date VARCHAR(10) NOT NULL,
        title VARCHAR(255) NOT NULL,
        author VARCHAR(255) NOT NULL,
        description TEXT,
        img TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS reviews (
        id {{pk}},
        user_email VARCHAR(255) NOT NULL,
        review_date VARCHAR(10) NOT NULL,
        rating {{float}} NOT NULL,
        book_id BIGINT NOT NULL,
        review_description TEXT,
        UNIQUE (user_email, book_id)
    )`,
	`CREATE TABLE IF NOT EXISTS messages (
        id {{pk}},
        user_email VARCHAR(255) NOT NULL,
        title VARCHAR(255) NOT NULL,
        question TEXT NOT NULL,
        admin_email VARCHAR(255),
        response TEXT,
        closed BOOLEAN NOT NULL DEFAULT FALSE
    )`,
	`CREATE TABLE IF NOT EXISTS payments (
        id {{pk}},
        user_email VARCHAR(255) NOT NULL UNIQUE,
        amount {{float}} NOT NULL DEFAULT 0
    )`,
}

// storedSchemaVersion returns the recorded schema version, or 0 for a fresh
// database.
func storedSchemaVersion(db *sql.DB) (int, error) {
	var raw string
	err := db.QueryRow(`SELECT meta_value FROM schema_meta WHERE meta_key='schema_version'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("bad schema version %q: %w", raw, err)
	}
	return v, nil
}

func applyMigrations(db *sql.DB, d dialect) error {
	if d.name == "sqlite3" {
		// WAL improves write concurrency.
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enable WAL: %w", err)
		}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_meta (meta_key VARCHAR(64) PRIMARY KEY, meta_value VARCHAR(255))`); err != nil {
		return fmt.Errorf("create schema_meta: %w", err)
	}

	current, err := storedSchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range schemaStatements {
		if _, err := tx.Exec(d.types.Replace(stmt)); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM schema_meta WHERE meta_key='schema_version'`); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	if _, err := tx.Exec(d.rebind(`INSERT INTO schema_meta(meta_key, meta_value) VALUES('schema_version', ?)`), strconv.Itoa(schemaVersion)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Dates
// ---------------------------------------------------------------------------

const dateLayout = "2006-01-02"

// civil truncates t to its calendar day.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string { return t.Format(dateLayout) }

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse date %q", s)
	}
	return t, nil
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}
