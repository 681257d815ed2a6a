// Package store owns the relational schema the ingestion pipeline writes
// to, and the one smoke query the core exposes beyond ingestion itself:
// schema DDL and the find_versions lookup, expressed as database/sql
// statements against the mattn/go-sqlite3 driver.
package store

import (
	"database/sql"
	"fmt"
)

// namesColumns lists the six columns with a dedicated <col>_names table.
// classifier and packaging each get their own table; packaging's table is
// also used for the extension column ("shared packaging/
// extension interner").
var namesColumns = []string{"group", "artifact", "name", "desc", "packaging", "classifier"}

// DB is the subset of *sql.DB / *sql.Tx that CreateSchema needs, so it can
// run as part of the single ingestion transaction rather than
// only against a committed connection.
type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// CreateSchema creates the six names tables and the versions fact table
// if they don't already exist. Safe to call at the start of every
// ingestion run: created idempotently.
func CreateSchema(db DB) error {
	for _, col := range namesColumns {
		stmt := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s_names (id INTEGER PRIMARY KEY, name VARCHAR NOT NULL UNIQUE)`, col,
		)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: creating %s_names: %w", col, err)
		}
	}

	const versionsDDL = `
CREATE TABLE IF NOT EXISTS versions (
	id                     INTEGER PRIMARY KEY,
	group_id               INTEGER NOT NULL REFERENCES group_names(id),
	artifact_id            INTEGER NOT NULL REFERENCES artifact_names(id),
	version                VARCHAR NOT NULL,
	classifier_id          INTEGER REFERENCES classifier_names(id),
	extension_id           INTEGER REFERENCES packaging_names(id),
	packaging_id           INTEGER NOT NULL REFERENCES packaging_names(id),
	last_modified_seconds  INTEGER NOT NULL,
	size                   INTEGER,
	checksum_hex           VARCHAR,
	source_attached        BOOLEAN,
	javadoc_attached       BOOLEAN,
	signature_attached     BOOLEAN,
	name_id                INTEGER REFERENCES name_names(id),
	desc_id                INTEGER REFERENCES desc_names(id)
)`
	if _, err := db.Exec(versionsDDL); err != nil {
		return fmt.Errorf("store: creating versions: %w", err)
	}
	return nil
}

// FindVersions runs the smoke query: every version string
// recorded for a given group/artifact pair, in SQL order (not sorted).
func FindVersions(db *sql.DB, group, artifact string) ([]string, error) {
	const q = `
SELECT version FROM versions
WHERE group_id = (SELECT id FROM group_names WHERE name = ?)
  AND artifact_id = (SELECT id FROM artifact_names WHERE name = ?)`

	rows, err := db.Query(q, group, artifact)
	if err != nil {
		return nil, fmt.Errorf("store: find_versions(%s, %s): %w", group, artifact, err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("store: find_versions(%s, %s): scanning row: %w", group, artifact, err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: find_versions(%s, %s): %w", group, artifact, err)
	}
	return versions, nil
}
