package store

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := CreateSchema(db); err != nil {
		t.Fatal(err)
	}
	if err := CreateSchema(db); err != nil {
		t.Fatalf("second CreateSchema call should be a no-op, got: %v", err)
	}
}

func TestFindVersions(t *testing.T) {
	db := openTestDB(t)
	if err := CreateSchema(db); err != nil {
		t.Fatal(err)
	}

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatal(err)
		}
	}

	mustExec(`INSERT INTO group_names(id, name) VALUES (1, 'com.google.guava')`)
	mustExec(`INSERT INTO artifact_names(id, name) VALUES (1, 'guava')`)
	mustExec(`INSERT INTO packaging_names(id, name) VALUES (1, 'jar')`)
	mustExec(`INSERT INTO versions(group_id, artifact_id, version, packaging_id, last_modified_seconds) VALUES (1, 1, '31.0.1-jre', 1, 1000)`)
	mustExec(`INSERT INTO versions(group_id, artifact_id, version, packaging_id, last_modified_seconds) VALUES (1, 1, '32.0.0-jre', 1, 2000)`)

	versions, err := FindVersions(db, "com.google.guava", "guava")
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2: %v", len(versions), versions)
	}

	none, err := FindVersions(db, "does.not", "exist")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no versions, got %v", none)
	}
}
