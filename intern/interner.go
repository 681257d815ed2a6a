// Package intern implements the per-column string interner: a
// write-through cache over a uniquely-indexed `<col>_names` sqlite table
// that maps a string to a stable surrogate integer id. A cache miss
// inserts a new row; a conflicting insert (another writer or an earlier
// run that already holds the name) falls back to a lookup rather than
// failing the write.
package intern

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"nexidx/logger"
)

// ErrIllegalString is returned when a value is empty or the literal
// "null" after trimming — data that would silently corrupt downstream
// joins if interned.
var ErrIllegalString = errors.New("intern: illegal string")

// DB is the subset of *sql.DB / *sql.Tx that Interner needs. Accepting it
// instead of a concrete type lets the writer run every interner and every
// insert against the same open transaction, so every table write in an
// ingestion run commits or rolls back together.
type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Prepare(query string) (*sql.Stmt, error)
}

// Interner is a write-through cache over one <col>_names(id, name UNIQUE)
// table. It is not safe for concurrent use: the interners are
// private to the single writer goroutine of an ingestion run.
type Interner struct {
	db     DB
	column string
	cache  map[string]int64

	insertStmt *sql.Stmt
	selectStmt *sql.Stmt
}

// New opens an Interner over the given column, creating its backing table
// if absent (idempotent: CREATE TABLE IF NOT EXISTS) and preparing its
// insert/select statements. initialCap sizes the in-memory cache map; it
// is advisory only.
func New(db DB, column string, initialCap int) (*Interner, error) {
	table := namesTable(column)

	if _, err := db.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY, name VARCHAR NOT NULL UNIQUE)`, table,
	)); err != nil {
		return nil, fmt.Errorf("intern: creating %s: %w", table, err)
	}

	insertStmt, err := db.Prepare(fmt.Sprintf(`INSERT INTO %s(name) VALUES(?)`, table))
	if err != nil {
		return nil, fmt.Errorf("intern: preparing insert on %s: %w", table, err)
	}
	selectStmt, err := db.Prepare(fmt.Sprintf(`SELECT id FROM %s WHERE name=?`, table))
	if err != nil {
		return nil, fmt.Errorf("intern: preparing select on %s: %w", table, err)
	}

	return &Interner{
		db:         db,
		column:     column,
		cache:      make(map[string]int64, initialCap),
		insertStmt: insertStmt,
		selectStmt: selectStmt,
	}, nil
}

// namesTable returns the backing table name for a column label.
func namesTable(column string) string { return column + "_names" }

// Intern returns value's surrogate id, inserting it into the names table
// on first sight. Empty or literal "null" (after trim) is rejected with
// ErrIllegalString.
func (in *Interner) Intern(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "null" {
		return 0, fmt.Errorf("%w: column %s, value %q", ErrIllegalString, in.column, value)
	}

	if id, ok := in.cache[trimmed]; ok {
		return id, nil
	}

	result, err := in.insertStmt.Exec(trimmed)
	if err == nil {
		id, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("intern: reading inserted id for %s: %w", in.column, err)
		}
		in.cache[trimmed] = id
		logger.TraceIf("intern", "interned new %s value %q as id %d", in.column, trimmed, id)
		return id, nil
	}

	if !isUniqueViolation(err) {
		return 0, fmt.Errorf("intern: inserting into %s: %w", namesTable(in.column), err)
	}

	// Another writer (or an earlier trim-normalized alias) already holds
	// this name; fall back to a lookup rather than treat the race as fatal.
	var id int64
	if err := in.selectStmt.QueryRow(trimmed).Scan(&id); err != nil {
		return 0, fmt.Errorf("intern: resolving existing %s value %q after unique violation: %w", in.column, trimmed, err)
	}
	in.cache[trimmed] = id
	return id, nil
}

// InternOptional interns value if present; a nil value returns a nil id.
// A present-but-illegal value (empty, "null") is still a fatal error,
// not silently treated as absent — only a genuinely absent *string
// short-circuits.
func (in *Interner) InternOptional(value *string) (*int64, error) {
	if value == nil {
		return nil, nil
	}
	id, err := in.Intern(*value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Preload inserts a curated list of frequent names ahead of any ingest
// traffic, so that the small set of very-common values get low integer
// ids (smaller variable-length encodings, better locality). Names
// already present (from an earlier run against the same database) are
// tolerated via the same UNIQUE-violation fallback as Intern.
func (in *Interner) Preload(names []string) error {
	for _, name := range names {
		if _, err := in.Intern(name); err != nil {
			return fmt.Errorf("intern: preloading %s: %w", in.column, err)
		}
	}
	logger.Debug("preloaded %d top-N %s names", len(names), in.column)
	return nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE-constraint
// failure. go-sqlite3 surfaces this as a *sqlite3.Error with an
// ErrConstraintUnique extended code; matching on the error string avoids
// a direct import of the driver package here, keeping Interner usable
// against any database/sql driver that reports the violation similarly.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}

// Close releases the interner's prepared statements.
func (in *Interner) Close() error {
	var errs []error
	if err := in.insertStmt.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := in.selectStmt.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
